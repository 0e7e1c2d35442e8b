package main

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"golang.org/x/crypto/argon2"
	"gopkg.in/yaml.v3"
)

type usersFile struct {
	Users []userEntry `yaml:"users"`
}

type userEntry struct {
	ID          string `yaml:"id"`
	Email       string `yaml:"email"`
	Password    string `yaml:"password"`
	DisplayName string `yaml:"display_name"`
	Company     string `yaml:"company"`
}

func main() {
	databaseURL := os.Getenv("DATABASE_URL")
	if databaseURL == "" {
		fmt.Fprintln(os.Stderr, "DATABASE_URL is required")
		os.Exit(1)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	pool, err := pgxpool.New(ctx, databaseURL)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to connect: %v\n", err)
		os.Exit(1)
	}
	defer pool.Close()

	fmt.Println("Seeding site database...")

	fmt.Println("  Seeding users from YAML...")
	users, err := seedUsers(ctx, pool)
	if err != nil {
		fmt.Fprintf(os.Stderr, "seed users: %v\n", err)
		os.Exit(1)
	}

	// --- Optional: pre-connect the first user to HubSpot ---

	devAccess := os.Getenv("HUBSPOT_DEV_ACCESS_TOKEN")
	if devAccess != "" && len(users) > 0 {
		fmt.Println("  Storing dev HubSpot token for", users[0].Email)
		if err := seedHubSpotToken(ctx, pool, users[0].ID, devAccess, os.Getenv("HUBSPOT_DEV_REFRESH_TOKEN")); err != nil {
			fmt.Fprintf(os.Stderr, "  WARNING: store dev hubspot token failed: %v\n", err)
		}
	} else {
		fmt.Println("  HUBSPOT_DEV_ACCESS_TOKEN not set, skipping HubSpot token seed.")
	}

	fmt.Println()
	fmt.Println("Seed complete!")
	fmt.Println()
	for _, u := range users {
		fmt.Printf("  Login: %s / %s\n", u.Email, u.Password)
	}
}

// seedUsers reads seeds/site/users.yaml and upserts rows into the users table.
func seedUsers(ctx context.Context, pool *pgxpool.Pool) ([]userEntry, error) {
	// Resolve path relative to this source file so it works regardless of cwd.
	_, thisFile, _, _ := runtime.Caller(0)
	yamlPath := filepath.Join(filepath.Dir(thisFile), "users.yaml")

	data, err := os.ReadFile(yamlPath)
	if err != nil {
		return nil, fmt.Errorf("read users.yaml: %w", err)
	}

	var uf usersFile
	if err := yaml.Unmarshal(data, &uf); err != nil {
		return nil, fmt.Errorf("parse users.yaml: %w", err)
	}

	for _, u := range uf.Users {
		fmt.Printf("    Upserting user %s (%s)\n", u.ID, u.Email)

		passwordHash, err := hashPassword(u.Password)
		if err != nil {
			return nil, fmt.Errorf("hash password for %s: %w", u.Email, err)
		}

		var company *string
		if u.Company != "" {
			company = &u.Company
		}

		_, err = pool.Exec(ctx,
			`INSERT INTO users (id, email, password_hash, display_name, company, created_at, updated_at)
			 VALUES ($1, $2, $3, $4, $5, now(), now())
			 ON CONFLICT (email) DO UPDATE SET
			   display_name = EXCLUDED.display_name,
			   company = EXCLUDED.company,
			   updated_at = now()`,
			u.ID, u.Email, passwordHash, u.DisplayName, company)
		if err != nil {
			return nil, fmt.Errorf("upsert user %s: %w", u.Email, err)
		}
	}

	return uf.Users, nil
}

// seedHubSpotToken upserts a stored HubSpot connection so the connect flow
// can be skipped during local development.
func seedHubSpotToken(ctx context.Context, pool *pgxpool.Pool, userID, accessToken, refreshToken string) error {
	var refresh *string
	if refreshToken != "" {
		refresh = &refreshToken
	}
	expiresAt := time.Now().Add(30 * time.Minute)

	_, err := pool.Exec(ctx,
		`INSERT INTO hubspot_tokens (user_id, access_token, refresh_token, expires_at, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, now(), now())
		 ON CONFLICT (user_id) DO UPDATE SET
		   access_token = EXCLUDED.access_token,
		   refresh_token = COALESCE(EXCLUDED.refresh_token, hubspot_tokens.refresh_token),
		   expires_at = EXCLUDED.expires_at,
		   updated_at = now()`,
		userID, accessToken, refresh, expiresAt)
	return err
}

func hashPassword(password string) (string, error) {
	salt := make([]byte, 16)
	if _, err := rand.Read(salt); err != nil {
		return "", err
	}

	hash := argon2.IDKey([]byte(password), salt, 3, 65536, 4, 32)

	return fmt.Sprintf("$argon2id$v=19$m=65536,t=3,p=4$%s$%s",
		base64.RawStdEncoding.EncodeToString(salt),
		base64.RawStdEncoding.EncodeToString(hash)), nil
}
