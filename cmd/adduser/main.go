// Command adduser creates a user directly in the database.
package main

import (
	"bufio"
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"

	"golang.org/x/term"
	"gorm.io/gorm/logger"

	"wallet-server/auth"
	"wallet-server/config"
	"wallet-server/database"
	"wallet-server/logging"
	"wallet-server/repository"
)

const defaultDatabaseURL = "sqlite:./wallet.db"

func main() {
	if err := config.LoadDotEnv(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	if err := run(os.Args[1:], os.Stdin, os.Stdout, os.Stderr); err != nil {
		if err == flag.ErrHelp {
			os.Exit(0)
		}
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run(args []string, stdin io.Reader, stdout, stderr io.Writer) error {
	fs := flag.NewFlagSet("adduser", flag.ContinueOnError)
	fs.SetOutput(stderr)

	username := fs.String("username", "", "Username")
	email := fs.String("email", "", "Email address")
	passwordFlag := fs.String("password", "", "Password (optional, will prompt if omitted)")
	dbURL := fs.String("db", "", "Database URL (defaults to DATABASE_URL)")

	if err := fs.Parse(args); err != nil {
		return err
	}

	*email = strings.TrimSpace(*email)
	if *username == "" || *email == "" {
		fmt.Fprintln(stdout, "Usage: adduser -username <name> -email <email> [-password <password>] [-db <url>]")
		fs.PrintDefaults()
		return fmt.Errorf("missing required flags: username, email")
	}
	if !auth.ValidEmail(*email) {
		return fmt.Errorf("invalid email %q", *email)
	}

	password := *passwordFlag
	if password == "" {
		fmt.Fprint(stdout, "Password: ")
		var err error
		password, err = readPassword(stdin)
		if err != nil {
			return fmt.Errorf("failed to read password: %w", err)
		}
		fmt.Fprintln(stdout)
	}
	if strings.TrimSpace(password) == "" {
		return fmt.Errorf("password cannot be empty")
	}

	url := *dbURL
	if url == "" {
		url = os.Getenv("DATABASE_URL")
	}
	if url == "" {
		url = defaultDatabaseURL
	}

	ctx := context.Background()
	db, dialect, err := database.Open(url, logger.Default.LogMode(logger.Silent))
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer database.Close(db)

	log := logging.NewWithOutput("warn", "text", stderr)
	if _, err := database.NewMigrator(db, dialect, log).Up(ctx); err != nil {
		return fmt.Errorf("failed to migrate database: %w", err)
	}

	store := repository.New(db)
	if existing, err := store.GetUserByUsername(ctx, *username); err != nil {
		return err
	} else if existing != nil {
		return fmt.Errorf("user %s already exists", *username)
	}
	if existing, err := store.GetUserByEmail(ctx, *email); err != nil {
		return err
	} else if existing != nil {
		return fmt.Errorf("email %s already exists", *email)
	}

	hash, err := auth.HashPassword(password)
	if err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}
	user, err := store.CreateUser(ctx, *username, *email, hash)
	if err != nil {
		return fmt.Errorf("failed to create user: %w", err)
	}

	fmt.Fprintf(stdout, "User %s created successfully with ID %d\n", user.Username, user.ID)
	return nil
}

func readPassword(stdin io.Reader) (string, error) {
	if f, ok := stdin.(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		b, err := term.ReadPassword(int(f.Fd()))
		if err != nil {
			return "", err
		}
		return string(b), nil
	}

	// pipes and tests
	scanner := bufio.NewScanner(stdin)
	if scanner.Scan() {
		return scanner.Text(), nil
	}
	if err := scanner.Err(); err != nil {
		return "", err
	}
	return "", io.EOF
}
