package main

import (
	"campuslink/config"
	"campuslink/database"
	"campuslink/services"
	"context"
	"encoding/csv"
	"log"
	"os"
	"strings"
)

// Imports admin accounts from a CSV with name,email,password columns.
// Usage: go run ./scripts [admins.csv]
func main() {
	// Load config and connect to database
	config.LoadConfig()
	database.ConnectDb()

	svc := services.New(database.Database.Db, services.Options{PasswordCost: config.AppConfig.SaltRound})

	path := "admins.csv"
	if len(os.Args) > 1 {
		path = os.Args[1]
	}

	// Open CSV file
	file, err := os.Open(path)
	if err != nil {
		log.Fatalf("Failed to open CSV file: %v", err)
	}
	defer file.Close()

	// Read all records
	records, err := csv.NewReader(file).ReadAll()
	if err != nil {
		log.Fatalf("Failed to read CSV: %v", err)
	}

	if len(records) < 2 {
		log.Fatal("CSV file is empty or has only headers")
	}

	// Map header indices
	headerIndex := make(map[string]int)
	for i, h := range records[0] {
		headerIndex[strings.ToLower(strings.TrimSpace(h))] = i
	}

	created := 0
	existing := 0
	skipped := 0

	for i, row := range records[1:] {
		name := getField(row, headerIndex, "name")
		email := getField(row, headerIndex, "email")
		password := getField(row, headerIndex, "password")

		if email == "" || password == "" {
			log.Printf("Row %d: missing email or password, skipped", i+2)
			skipped++
			continue
		}

		user, err := svc.Profiles.CreateAdmin(context.Background(), name, email, password)
		switch {
		case err == nil:
			log.Printf("Created admin %s (id=%d)", user.Email, user.ID)
			created++
		case services.KindOf(err) == services.KindDuplicate:
			existing++
		default:
			log.Printf("Row %d: failed to create admin %s: %v", i+2, email, err)
			skipped++
		}
	}

	log.Printf("=== Import Complete ===")
	log.Printf("Created: %d", created)
	log.Printf("Already registered: %d", existing)
	log.Printf("Skipped: %d", skipped)
}

// getField safely gets a field from the row by header name
func getField(row []string, headerIndex map[string]int, field string) string {
	if idx, ok := headerIndex[field]; ok && idx < len(row) {
		return strings.TrimSpace(row[idx])
	}
	return ""
}
