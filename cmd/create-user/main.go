// CLI tool to create a user with a bcrypt-hashed password and an empty body
// profile, ready for the profile form on first login.
// Usage: go run ./cmd/create-user (from the repo root)
package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/joho/godotenv"
	"golang.org/x/crypto/bcrypt"
)

// minPasswordLen matches what the login form enforces client-side.
const minPasswordLen = 8

type newUser struct {
	Username string
	Email    string
	Password string
}

func main() {
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		fmt.Fprintf(os.Stderr, "Error loading .env file: %v\n", err)
		os.Exit(1)
	}

	ctx := context.Background()
	conn, err := pgx.Connect(ctx, os.Getenv("DB_URL"))
	if err != nil {
		fmt.Fprintf(os.Stderr, "Unable to connect to database: %v\n", err)
		os.Exit(1)
	}
	defer conn.Close(ctx)

	u, err := promptUser(os.Stdin, os.Stdout)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Invalid input: %v\n", err)
		os.Exit(1)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(u.Password), bcrypt.DefaultCost)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error hashing password: %v\n", err)
		os.Exit(1)
	}
	authToken := uuid.NewString()

	var userID int
	err = pgx.BeginFunc(ctx, conn, func(tx pgx.Tx) error {
		err := tx.QueryRow(ctx,
			`INSERT INTO users (username, email, password, auth_token)
			 VALUES ($1, $2, $3, $4) RETURNING id`,
			u.Username, u.Email, string(hash), authToken,
		).Scan(&userID)
		if err != nil {
			return fmt.Errorf("creating user: %w", err)
		}
		if _, err := tx.Exec(ctx, `INSERT INTO profiles (user_id) VALUES ($1)`, userID); err != nil {
			return fmt.Errorf("creating profile: %w", err)
		}
		return nil
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("\nUser created successfully!\n")
	fmt.Printf("  ID:         %d\n", userID)
	fmt.Printf("  Username:   %s\n", u.Username)
	fmt.Printf("  Auth Token: %s\n", authToken)
	fmt.Printf("  Next:       PUT /api/profile to set body metrics and get a calorie target\n")
}

// promptUser reads username, email and password line by line from r,
// writing prompts to w.
func promptUser(r io.Reader, w io.Writer) (newUser, error) {
	reader := bufio.NewReader(r)
	read := func(prompt string) string {
		fmt.Fprint(w, prompt)
		line, _ := reader.ReadString('\n')
		return strings.TrimSpace(line)
	}

	u := newUser{
		Username: read("Username: "),
		Email:    read("Email: "),
		Password: read("Password: "),
	}
	return u, u.validate()
}

func (u newUser) validate() error {
	switch {
	case u.Username == "":
		return errors.New("username is required")
	case strings.ContainsAny(u.Username, " \t"):
		return errors.New("username must not contain spaces")
	case !strings.Contains(u.Email, "@"):
		return errors.New("email must contain @")
	case len(u.Password) < minPasswordLen:
		return fmt.Errorf("password must be at least %d characters", minPasswordLen)
	}
	return nil
}
