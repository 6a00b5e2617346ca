package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"os"
)

const baseURL = "http://localhost:8080"

type loginResponse struct {
	Token string `json:"token"`
	User  struct {
		ID    string `json:"id"`
		Email string `json:"email"`
	} `json:"user"`
}

type bankAccountEnvelope struct {
	BankAccount struct {
		ID            string `json:"id"`
		Name          string `json:"name"`
		AccountNumber string `json:"account_number"`
	} `json:"bank_account"`
}

type summaryResponse struct {
	BankAccountID string  `json:"bank_account_id"`
	TotalFunds    float64 `json:"total_funds"`
}

func main() {
	fmt.Println("=== Membership Backend Integration Test ===")

	email := envOr("ADMIN_EMAIL", "admin@example.com")
	password := envOr("ADMIN_PASSWORD", "admin123!")

	// 1. Login
	fmt.Println("\n1. Logging in...")
	var login loginResponse
	doJSON("POST", "/v1/auth/login", "", map[string]string{
		"email":    email,
		"password": password,
	}, http.StatusOK, &login)
	if login.Token == "" {
		log.Fatal("login returned no token")
	}
	fmt.Println("✓ Logged in as", login.User.Email)

	// 2. Profile resolution
	fmt.Println("\n2. Fetching profile...")
	doJSON("GET", "/v1/auth/me", login.Token, nil, http.StatusOK, nil)
	fmt.Println("✓ Profile resolved")

	// 3. Bank account lifecycle
	fmt.Println("\n3. Creating bank account...")
	var created bankAccountEnvelope
	doJSON("POST", "/v1/bank-accounts", login.Token, map[string]string{
		"name":           "Integration Test Pool",
		"account_number": "INT-TEST-0001",
	}, http.StatusCreated, &created)
	fmt.Println("✓ Bank account created:", created.BankAccount.ID)

	fmt.Println("\n4. Checking funds summary...")
	var summary summaryResponse
	doJSON("GET", "/v1/bank-accounts/"+created.BankAccount.ID+"/summary", login.Token, nil, http.StatusOK, &summary)
	if summary.TotalFunds != 0 {
		log.Fatalf("expected zero funds for fresh bank account, got %f", summary.TotalFunds)
	}
	fmt.Println("✓ Summary reports zero funds")

	fmt.Println("\n5. Deleting bank account...")
	doJSON("DELETE", "/v1/bank-accounts/"+created.BankAccount.ID, login.Token, nil, http.StatusOK, nil)
	fmt.Println("✓ Bank account deleted")

	// 6. Logout revokes the token
	fmt.Println("\n6. Logging out...")
	doJSON("POST", "/v1/auth/logout", login.Token, nil, http.StatusOK, nil)
	fmt.Println("✓ Logged out")

	fmt.Println("\n=== All checks passed ===")
}

func doJSON(method, path, token string, body any, wantStatus int, out any) {
	var reader *bytes.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			log.Fatal("marshal request:", err)
		}
		reader = bytes.NewReader(data)
	} else {
		reader = bytes.NewReader(nil)
	}

	req, err := http.NewRequest(method, baseURL+path, reader)
	if err != nil {
		log.Fatal("build request:", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		log.Fatalf("%s %s: %v", method, path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != wantStatus {
		log.Fatalf("%s %s: got status %d, want %d", method, path, resp.StatusCode, wantStatus)
	}
	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			log.Fatalf("%s %s: decode response: %v", method, path, err)
		}
	}
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
