// Package main implements a standalone seed script that populates the
// marketplace with realistic test data: accounts for every role, livestock
// listings, produce, ratings against the veterinarians, and appointments
// walked through their status transitions. Everything goes through the HTTP
// API of a running service; tokens are signed locally with the same shared
// secret the service validates against.
package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"math/rand"
	"net/http"
	"os"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// --------------------------------------------------------------------------
// Configuration helpers
// --------------------------------------------------------------------------

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

// --------------------------------------------------------------------------
// Token helpers
// --------------------------------------------------------------------------

func signToken(secret, accountID, email, role string) (string, error) {
	claims := jwt.MapClaims{
		"account_id": accountID,
		"email":      email,
		"role":       role,
		"exp":        time.Now().Add(time.Hour).Unix(),
		"iat":        time.Now().Unix(),
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
}

// --------------------------------------------------------------------------
// HTTP helpers
// --------------------------------------------------------------------------

func doJSON(method, url, token string, body any) (map[string]any, error) {
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("marshal body: %w", err)
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequest(method, url, reader)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("execute request: %w", err)
	}
	defer resp.Body.Close()

	respBody, _ := io.ReadAll(resp.Body)
	if resp.StatusCode >= 400 {
		return nil, fmt.Errorf("HTTP %d: %s", resp.StatusCode, string(respBody))
	}

	var result map[string]any
	if len(respBody) > 0 {
		if err := json.Unmarshal(respBody, &result); err != nil {
			return nil, fmt.Errorf("unmarshal response: %w", err)
		}
	}
	return result, nil
}

func httpPost(url, token string, body any) (map[string]any, error) {
	return doJSON(http.MethodPost, url, token, body)
}

func httpPut(url, token string, body any) (map[string]any, error) {
	return doJSON(http.MethodPut, url, token, body)
}

// dataField extracts a field from the "data" envelope of a response.
func dataField(resp map[string]any, field string) string {
	data, ok := resp["data"].(map[string]any)
	if !ok {
		return ""
	}
	v, _ := data[field].(string)
	return v
}

// --------------------------------------------------------------------------
// Seed data definitions
// --------------------------------------------------------------------------

type accountDef struct {
	email string
	name  string
	phone string
	role  string
	id    string // populated after insert
	token string // populated after insert
}

type listingDef struct {
	sellerEmail string
	title       string
	description string
	category    string
	price       int64 // smallest currency unit
}

type productDef struct {
	sellerEmail string
	name        string
	description string
	price       int64
	quantity    int
}

type ratingDef struct {
	reviewerEmail string
	providerEmail string
	score         int
	review        string
	experience    string
}

type appointmentDef struct {
	requesterEmail string
	providerEmail  string
	animalType     string
	urgency        string
	hoursFromNow   int
	actions        []string // transitions to apply in order
	cancelReason   string
}

// --------------------------------------------------------------------------
// main
// --------------------------------------------------------------------------

func main() {
	log.SetFlags(log.Ltime | log.Lmsgprefix)
	log.SetPrefix("[seed] ")

	baseURL := getEnv("MARKETPLACE_URL", "http://localhost:8080")
	jwtSecret := getEnv("JWT_SECRET", "dev-secret")
	apiURL := baseURL + "/api/v1"

	// ---------------------------------------------------------------
	// 1. Register accounts for every role
	// ---------------------------------------------------------------
	accounts := []accountDef{
		{email: "rahim.farmer@example.com", name: "Rahim Uddin", phone: "+8801711000001", role: "farmer"},
		{email: "karim.farmer@example.com", name: "Karim Mia", phone: "+8801711000002", role: "farmer"},
		{email: "salma.seller@example.com", name: "Salma Begum", phone: "+8801711000003", role: "seller"},
		{email: "dr.hasan@example.com", name: "Dr. Hasan Ali", phone: "+8801711000004", role: "veterinarian"},
		{email: "dr.nusrat@example.com", name: "Dr. Nusrat Jahan", phone: "+8801711000005", role: "veterinarian"},
		{email: "tariq.buyer@example.com", name: "Tariq Rahman", phone: "+8801711000006", role: "buyer"},
	}

	log.Println("Registering accounts...")
	accountMap := make(map[string]*accountDef)
	for i := range accounts {
		a := &accounts[i]
		resp, err := httpPost(apiURL+"/accounts", "", map[string]any{
			"email": a.email,
			"name":  a.name,
			"phone": a.phone,
			"role":  a.role,
		})
		if err != nil {
			log.Printf("  WARNING: account %q: %v", a.email, err)
			continue
		}
		a.id = dataField(resp, "id")
		a.token, err = signToken(jwtSecret, a.id, a.email, a.role)
		if err != nil {
			log.Fatalf("sign token for %q: %v", a.email, err)
		}
		accountMap[a.email] = a
		log.Printf("  Account: %s (%s, id=%s)", a.name, a.role, a.id)
	}

	// ---------------------------------------------------------------
	// 2. Livestock listings
	// ---------------------------------------------------------------
	listings := []listingDef{
		{sellerEmail: "rahim.farmer@example.com", title: "Holstein cross dairy cow, 3 years", description: "Giving 12L per day, vaccinated, gentle temperament.", category: "cattle", price: 9500000},
		{sellerEmail: "rahim.farmer@example.com", title: "Black Bengal goat pair", description: "Healthy breeding pair, dewormed last month.", category: "goat", price: 1800000},
		{sellerEmail: "karim.farmer@example.com", title: "Sahiwal bull for qurbani", description: "Well fed, around 350kg live weight.", category: "cattle", price: 14000000},
		{sellerEmail: "salma.seller@example.com", title: "Sonali chicken flock (50 birds)", description: "8 weeks old, fully vaccinated.", category: "poultry", price: 900000},
	}

	log.Println("Seeding listings...")
	for _, l := range listings {
		seller, ok := accountMap[l.sellerEmail]
		if !ok {
			continue
		}
		resp, err := httpPost(apiURL+"/listings", seller.token, map[string]any{
			"title":       l.title,
			"description": l.description,
			"category":    l.category,
			"price":       l.price,
		})
		if err != nil {
			log.Printf("  WARNING: listing %q: %v", l.title, err)
			continue
		}
		log.Printf("  Listing: %s (id=%s)", l.title, dataField(resp, "id"))
	}

	// ---------------------------------------------------------------
	// 3. Produce
	// ---------------------------------------------------------------
	products := []productDef{
		{sellerEmail: "rahim.farmer@example.com", name: "Raw cow milk (per litre)", description: "Morning milking, delivered chilled.", price: 9000, quantity: 40},
		{sellerEmail: "salma.seller@example.com", name: "Free range eggs (dozen)", description: "Collected daily from sonali hens.", price: 16000, quantity: 120},
		{sellerEmail: "karim.farmer@example.com", name: "Organic compost (25kg sack)", description: "Well rotted cow dung compost.", price: 35000, quantity: 60},
	}

	log.Println("Seeding products...")
	for _, p := range products {
		seller, ok := accountMap[p.sellerEmail]
		if !ok {
			continue
		}
		resp, err := httpPost(apiURL+"/products", seller.token, map[string]any{
			"name":        p.name,
			"description": p.description,
			"price":       p.price,
			"quantity":    p.quantity,
		})
		if err != nil {
			log.Printf("  WARNING: product %q: %v", p.name, err)
			continue
		}
		log.Printf("  Product: %s (id=%s)", p.name, dataField(resp, "id"))
	}

	// ---------------------------------------------------------------
	// 4. Ratings against the veterinarians
	// ---------------------------------------------------------------
	ratings := []ratingDef{
		{reviewerEmail: "rahim.farmer@example.com", providerEmail: "dr.hasan@example.com", score: 5, review: "Saved my cow from milk fever.", experience: "Came within an hour of calling, treatment worked the same day."},
		{reviewerEmail: "karim.farmer@example.com", providerEmail: "dr.hasan@example.com", score: 4, review: "Knows his work.", experience: "Routine vaccination visit for the whole herd, efficient and careful."},
		{reviewerEmail: "salma.seller@example.com", providerEmail: "dr.nusrat@example.com", score: 5, review: "", experience: "Diagnosed a ranikhet outbreak early and told us exactly what to do."},
		{reviewerEmail: "tariq.buyer@example.com", providerEmail: "dr.nusrat@example.com", score: 3, review: "Good advice but hard to reach.", experience: "Phone consultation about a sick goat, had to call several times."},
	}

	log.Println("Seeding ratings...")
	for _, r := range ratings {
		reviewer, ok := accountMap[r.reviewerEmail]
		if !ok {
			continue
		}
		provider, ok := accountMap[r.providerEmail]
		if !ok {
			continue
		}
		_, err := httpPost(apiURL+"/ratings", reviewer.token, map[string]any{
			"provider_id": provider.id,
			"score":       r.score,
			"review":      r.review,
			"experience":  r.experience,
		})
		if err != nil {
			log.Printf("  WARNING: rating %s -> %s: %v", r.reviewerEmail, r.providerEmail, err)
			continue
		}
		log.Printf("  Rating: %s -> %s (%d stars)", reviewer.name, provider.name, r.score)
	}

	// ---------------------------------------------------------------
	// 5. Appointments, including worked transitions
	// ---------------------------------------------------------------
	appointments := []appointmentDef{
		{requesterEmail: "rahim.farmer@example.com", providerEmail: "dr.hasan@example.com", animalType: "cattle", urgency: "urgent", hoursFromNow: 6, actions: []string{"confirm", "complete"}},
		{requesterEmail: "karim.farmer@example.com", providerEmail: "dr.hasan@example.com", animalType: "goat", urgency: "normal", hoursFromNow: 30, actions: []string{"confirm"}},
		{requesterEmail: "salma.seller@example.com", providerEmail: "dr.nusrat@example.com", animalType: "poultry", urgency: "emergency", hoursFromNow: 2, actions: nil},
		{requesterEmail: "tariq.buyer@example.com", providerEmail: "dr.nusrat@example.com", animalType: "other", urgency: "normal", hoursFromNow: 48, actions: []string{"cancel"}, cancelReason: "Travelling to the upazila clinic that week."},
	}

	log.Println("Seeding appointments...")
	for _, a := range appointments {
		requester, ok := accountMap[a.requesterEmail]
		if !ok {
			continue
		}
		provider, ok := accountMap[a.providerEmail]
		if !ok {
			continue
		}
		resp, err := httpPost(apiURL+"/appointments", requester.token, map[string]any{
			"provider_id":  provider.id,
			"animal_type":  a.animalType,
			"urgency":      a.urgency,
			"scheduled_at": time.Now().Add(time.Duration(a.hoursFromNow) * time.Hour).Format(time.RFC3339),
		})
		if err != nil {
			log.Printf("  WARNING: appointment %s -> %s: %v", a.requesterEmail, a.providerEmail, err)
			continue
		}
		id := dataField(resp, "id")
		log.Printf("  Appointment: %s with %s (id=%s)", requester.name, provider.name, id)

		for _, action := range a.actions {
			body := map[string]any{"action": action}
			if action == "cancel" {
				body["reason"] = a.cancelReason
			}
			if _, err := httpPut(fmt.Sprintf("%s/appointments/%s/status", apiURL, id), provider.token, body); err != nil {
				log.Printf("  WARNING: %s appointment %s: %v", action, id, err)
				break
			}
			log.Printf("    -> %s", action)
			// Small jitter so created/updated timestamps are not identical.
			time.Sleep(time.Duration(50+rand.Intn(100)) * time.Millisecond)
		}
	}

	log.Println("Seed complete.")
}
