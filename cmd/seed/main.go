package main

import (
	"bytes"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
)

// Seeds a running server with demo ingredients and recipes so the counter
// and kitchen UIs have something to work with during development.
func main() {
	baseURL := flag.String("url", "http://localhost:8081", "API base URL")
	email := flag.String("email", "", "Admin email address")
	password := flag.String("password", "", "Admin password")
	flag.Parse()

	// Fall back to environment variables
	if *email == "" {
		*email = os.Getenv("SEED_EMAIL")
	}
	if *password == "" {
		*password = os.Getenv("SEED_PASSWORD")
	}

	// Fall back to the dev defaults from cmd/server
	if *email == "" {
		*email = "admin@lumina.local"
	}
	if *password == "" {
		*password = "admin123"
		log.Println("WARNING: Using the default dev admin password.")
	}

	token, err := login(*baseURL, *email, *password)
	if err != nil {
		log.Fatalf("login: %v", err)
	}

	ingredients := []map[string]interface{}{
		{"name": "Beef Patty", "category": "Protein", "unit": "pcs", "on_hand": "40", "reorder_level": "10"},
		{"name": "Brioche Bun", "category": "Bakery", "unit": "pcs", "on_hand": "48", "reorder_level": "12"},
		{"name": "Cheddar Slice", "category": "Dairy", "unit": "pcs", "on_hand": "60", "reorder_level": "20"},
		{"name": "Fries", "category": "Frozen", "unit": "g", "on_hand": "8000", "reorder_level": "2000"},
		{"name": "Cola Syrup", "category": "Beverage", "unit": "ml", "on_hand": "5000", "reorder_level": "1000"},
	}

	ids := make(map[string]string)
	for _, ing := range ingredients {
		var created struct {
			ID   string `json:"id"`
			Name string `json:"name"`
		}
		if err := post(*baseURL+"/ingredients", token, ing, &created); err != nil {
			log.Fatalf("create ingredient %v: %v", ing["name"], err)
		}
		ids[created.Name] = created.ID
		log.Printf("Created ingredient %s (%s)", created.Name, created.ID)
	}

	recipes := []struct {
		productID string
		lines     []map[string]interface{}
	}{
		{"prod-cheeseburger", []map[string]interface{}{
			{"ingredient_id": ids["Beef Patty"], "qty": "1"},
			{"ingredient_id": ids["Brioche Bun"], "qty": "1"},
			{"ingredient_id": ids["Cheddar Slice"], "qty": "2"},
		}},
		{"prod-fries", []map[string]interface{}{
			{"ingredient_id": ids["Fries"], "qty": "150"},
		}},
		{"prod-cola", []map[string]interface{}{
			{"ingredient_id": ids["Cola Syrup"], "qty": "50"},
		}},
	}

	for _, r := range recipes {
		if err := put(*baseURL+"/recipes/"+r.productID, token, map[string]interface{}{"lines": r.lines}, nil); err != nil {
			log.Fatalf("save recipe %s: %v", r.productID, err)
		}
		log.Printf("Saved recipe for %s", r.productID)
	}

	log.Println("Seed complete")
}

func login(baseURL, email, password string) (string, error) {
	var resp struct {
		AccessToken string `json:"access_token"`
	}
	body := map[string]string{"email": email, "password": password}
	if err := request(http.MethodPost, baseURL+"/auth/login", "", body, &resp); err != nil {
		return "", err
	}
	if resp.AccessToken == "" {
		return "", fmt.Errorf("no access token in login response")
	}
	return resp.AccessToken, nil
}

func post(url, token string, body, out interface{}) error {
	return request(http.MethodPost, url, token, body, out)
}

func put(url, token string, body, out interface{}) error {
	return request(http.MethodPut, url, token, body, out)
}

func request(method, url, token string, body, out interface{}) error {
	b, err := json.Marshal(body)
	if err != nil {
		return err
	}

	req, err := http.NewRequest(method, url, bytes.NewReader(b))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		var apiErr struct {
			Error string `json:"error"`
		}
		json.NewDecoder(resp.Body).Decode(&apiErr)
		return fmt.Errorf("%s %s: status %d: %s", method, url, resp.StatusCode, apiErr.Error)
	}

	if out != nil {
		return json.NewDecoder(resp.Body).Decode(out)
	}
	return nil
}
