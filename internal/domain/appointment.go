package domain

import "time"

// Appointment status constants.
const (
	AppointmentStatusPending   = "pending"
	AppointmentStatusConfirmed = "confirmed"
	AppointmentStatusCompleted = "completed"
	AppointmentStatusCancelled = "cancelled"
)

// Appointment transition actions.
const (
	AppointmentActionConfirm  = "confirm"
	AppointmentActionComplete = "complete"
	AppointmentActionCancel   = "cancel"
)

// Animal type constants.
const (
	AnimalTypeCattle  = "cattle"
	AnimalTypeGoat    = "goat"
	AnimalTypeSheep   = "sheep"
	AnimalTypePoultry = "poultry"
	AnimalTypeOther   = "other"
)

// Urgency constants.
const (
	UrgencyEmergency = "emergency"
	UrgencyUrgent    = "urgent"
	UrgencyNormal    = "normal"
)

// Appointment represents a veterinary appointment between a requester and a
// provider. Status moves along a fixed directed graph; completed and cancelled
// are terminal.
type Appointment struct {
	ID            string     `json:"id"`
	ProviderID    string     `json:"provider_id"`
	RequesterID   string     `json:"requester_id"`
	AnimalType    string     `json:"animal_type"`
	Urgency       string     `json:"urgency"`
	ScheduledAt   time.Time  `json:"scheduled_at"`
	Status        string     `json:"status"`
	CancelReason  string     `json:"cancel_reason,omitempty"`
	ProviderNotes string     `json:"provider_notes,omitempty"`
	ConfirmedAt   *time.Time `json:"confirmed_at,omitempty"`
	CompletedAt   *time.Time `json:"completed_at,omitempty"`
	CancelledAt   *time.Time `json:"cancelled_at,omitempty"`
	CreatedAt     time.Time  `json:"created_at"`
	UpdatedAt     time.Time  `json:"updated_at"`
}

// ValidAppointmentStatuses returns all valid appointment statuses.
func ValidAppointmentStatuses() []string {
	return []string{
		AppointmentStatusPending,
		AppointmentStatusConfirmed,
		AppointmentStatusCompleted,
		AppointmentStatusCancelled,
	}
}

// IsValidAppointmentStatus checks if a status string is valid.
func IsValidAppointmentStatus(status string) bool {
	for _, s := range ValidAppointmentStatuses() {
		if s == status {
			return true
		}
	}
	return false
}

// ValidAnimalTypes returns all valid animal types.
func ValidAnimalTypes() []string {
	return []string{
		AnimalTypeCattle,
		AnimalTypeGoat,
		AnimalTypeSheep,
		AnimalTypePoultry,
		AnimalTypeOther,
	}
}

// IsValidAnimalType checks if an animal type string is valid.
func IsValidAnimalType(t string) bool {
	for _, a := range ValidAnimalTypes() {
		if a == t {
			return true
		}
	}
	return false
}

// ValidUrgencies returns all valid urgency levels.
func ValidUrgencies() []string {
	return []string{UrgencyEmergency, UrgencyUrgent, UrgencyNormal}
}

// IsValidUrgency checks if an urgency string is valid.
func IsValidUrgency(u string) bool {
	for _, v := range ValidUrgencies() {
		if v == u {
			return true
		}
	}
	return false
}

// AppointmentTransitions defines, per current status, which actions are legal
// and the status each action leads to. This table is the only source of
// transition legality; terminal statuses have no entries.
func AppointmentTransitions() map[string]map[string]string {
	return map[string]map[string]string{
		AppointmentStatusPending: {
			AppointmentActionConfirm: AppointmentStatusConfirmed,
			AppointmentActionCancel:  AppointmentStatusCancelled,
		},
		AppointmentStatusConfirmed: {
			AppointmentActionComplete: AppointmentStatusCompleted,
			AppointmentActionCancel:   AppointmentStatusCancelled,
		},
		AppointmentStatusCompleted: {},
		AppointmentStatusCancelled: {},
	}
}

// NextStatus returns the status the given action leads to from the
// appointment's current status, or false if the action is not legal.
func (a *Appointment) NextStatus(action string) (string, bool) {
	actions, ok := AppointmentTransitions()[a.Status]
	if !ok {
		return "", false
	}
	next, ok := actions[action]
	return next, ok
}

// IsTerminal reports whether the appointment has reached a terminal status.
func (a *Appointment) IsTerminal() bool {
	return a.Status == AppointmentStatusCompleted || a.Status == AppointmentStatusCancelled
}
