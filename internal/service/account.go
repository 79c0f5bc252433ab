package service

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/SHANTO612/poshur-sheba-hub-sub000/internal/domain"
	"github.com/SHANTO612/poshur-sheba-hub-sub000/internal/event"
	"github.com/SHANTO612/poshur-sheba-hub-sub000/internal/repository"
	apperrors "github.com/SHANTO612/poshur-sheba-hub-sub000/pkg/errors"
)

// CascadeDeleter removes one dependent resource type owned by (or involving)
// an account. Implementations must tolerate absent rows so a cascade can be
// re-invoked after a partial failure.
type CascadeDeleter interface {
	// Name identifies the dependent resource type in logs.
	Name() string

	// DeleteFor removes all dependents of the account.
	DeleteFor(ctx context.Context, accountID string) error
}

// AccountService implements account registration, lookup, and the cascading
// delete orchestrator.
type AccountService struct {
	accounts repository.AccountRepository
	deleters []CascadeDeleter
	producer event.Publisher
	logger   *slog.Logger
}

// NewAccountService creates a new account service. The deleters slice is the
// dependent-resource graph; adding a new dependent type means adding a deleter
// here, not touching the orchestrator.
func NewAccountService(accounts repository.AccountRepository, deleters []CascadeDeleter, producer event.Publisher, logger *slog.Logger) *AccountService {
	return &AccountService{
		accounts: accounts,
		deleters: deleters,
		producer: producer,
		logger:   logger,
	}
}

// RegisterInput holds the parameters for registering an account.
type RegisterInput struct {
	Email string
	Name  string
	Phone string
	Role  string
}

// Register creates a new role-tagged account. Email must be unique.
func (s *AccountService) Register(ctx context.Context, input RegisterInput) (*domain.Account, error) {
	if strings.TrimSpace(input.Email) == "" {
		return nil, apperrors.InvalidInput("email is required")
	}
	if strings.TrimSpace(input.Name) == "" {
		return nil, apperrors.InvalidInput("name is required")
	}
	if !domain.IsValidRole(input.Role) {
		return nil, apperrors.InvalidInput(fmt.Sprintf("invalid role %q", input.Role))
	}

	now := time.Now().UTC()
	account := &domain.Account{
		ID:        uuid.New().String(),
		Email:     strings.ToLower(strings.TrimSpace(input.Email)),
		Name:      strings.TrimSpace(input.Name),
		Phone:     strings.TrimSpace(input.Phone),
		Role:      input.Role,
		Rating:    0,
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := s.accounts.Create(ctx, account); err != nil {
		return nil, fmt.Errorf("create account: %w", err)
	}

	s.logger.InfoContext(ctx, "account registered",
		slog.String("account_id", account.ID),
		slog.String("role", account.Role),
	)

	return account, nil
}

// GetAccount retrieves an account by ID.
func (s *AccountService) GetAccount(ctx context.Context, id string) (*domain.Account, error) {
	account, err := s.accounts.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get account by id: %w", err)
	}
	return account, nil
}

// ListProviders returns a paginated list of veterinarian accounts.
func (s *AccountService) ListProviders(ctx context.Context, page, perPage int) ([]domain.Account, int, error) {
	if page <= 0 {
		page = 1
	}
	if perPage <= 0 {
		perPage = 20
	}
	if perPage > 100 {
		perPage = 100
	}

	role := domain.RoleVeterinarian
	accounts, total, err := s.accounts.List(ctx, repository.AccountFilter{
		Role:    &role,
		Page:    page,
		PerPage: perPage,
	})
	if err != nil {
		return nil, 0, fmt.Errorf("list providers: %w", err)
	}

	return accounts, total, nil
}

// DeleteAccount removes an account and fans out concurrently over all
// dependent deleters. A dependent failure is logged and never blocks the
// remaining dependents or the primary delete; re-invoking the cascade after a
// partial failure is safe because every deleter tolerates absent rows.
func (s *AccountService) DeleteAccount(ctx context.Context, accountID string, actor Actor) error {
	account, err := s.accounts.GetByID(ctx, accountID)
	if err != nil {
		return fmt.Errorf("get account: %w", err)
	}

	if actor.ID != accountID && !actor.IsAdmin() {
		return apperrors.Forbidden("you cannot delete this account")
	}
	if account.Role == domain.RoleAdmin && actor.ID != accountID {
		return apperrors.Forbidden("admin accounts cannot be deleted by another admin")
	}

	var wg sync.WaitGroup
	for _, deleter := range s.deleters {
		wg.Add(1)
		go func(d CascadeDeleter) {
			defer wg.Done()
			if err := d.DeleteFor(ctx, accountID); err != nil {
				s.logger.ErrorContext(ctx, "cascade dependent delete failed",
					slog.String("account_id", accountID),
					slog.String("dependent", d.Name()),
					slog.String("error", err.Error()),
				)
			}
		}(deleter)
	}
	wg.Wait()

	if err := s.accounts.Delete(ctx, accountID); err != nil {
		return fmt.Errorf("delete account: %w", err)
	}

	if err := s.producer.PublishAccountDeleted(ctx, accountID, account.Role, actor.ID); err != nil {
		s.logger.ErrorContext(ctx, "failed to publish account.deleted event",
			slog.String("account_id", accountID),
			slog.String("error", err.Error()),
		)
	}

	s.logger.InfoContext(ctx, "account deleted",
		slog.String("account_id", accountID),
		slog.String("role", account.Role),
		slog.String("actor_id", actor.ID),
	)

	return nil
}
