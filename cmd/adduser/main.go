// Command adduser creates an Expense Tracker account from the terminal.
package main

import (
	"bufio"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"

	"golang.org/x/term"

	"expensetracker/internal/database"
	apperrors "expensetracker/internal/errors"
	"expensetracker/internal/services"
)

const minPasswordLength = 6

func main() {
	if err := run(os.Args[1:], os.Stdin, os.Stdout, os.Stderr); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			os.Exit(0)
		}
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run(args []string, stdin io.Reader, stdout, stderr io.Writer) error {
	fs := flag.NewFlagSet("adduser", flag.ContinueOnError)
	fs.SetOutput(stderr)

	name := fs.String("name", "", "Display name")
	email := fs.String("email", "", "Email address used to log in")
	passwordFlag := fs.String("password", "", "Password (optional, will prompt if omitted)")
	dbPath := fs.String("db", "", "sqlite database file (defaults to the DB_* environment)")

	if err := fs.Parse(args); err != nil {
		return err
	}

	if *name == "" || *email == "" {
		fmt.Fprintln(stdout, "Usage: adduser -name <name> -email <email> [-password <password>] [-db <db_path>]")
		fs.PrintDefaults()
		return fmt.Errorf("missing required flags: name, email")
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
	if len(password) < minPasswordLength {
		return fmt.Errorf("password must be at least %d characters", minPasswordLength)
	}

	cfg, err := database.NewConfig()
	if err != nil {
		return fmt.Errorf("failed to load database configuration: %w", err)
	}
	if *dbPath != "" {
		cfg.Driver = database.DriverSQLite
		cfg.Path = *dbPath
	}

	manager, err := database.NewManager(cfg)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer manager.Close()

	if err := manager.Migrate(); err != nil {
		return fmt.Errorf("failed to migrate database: %w", err)
	}

	// No queue: accounts created here get no welcome message.
	users := services.NewUserService(manager.DB(), nil)
	user, err := users.CreateUser(*name, *email, password)
	if err != nil {
		if errors.Is(err, apperrors.ErrDuplicateEmail) {
			return fmt.Errorf("user %s already exists", strings.ToLower(strings.TrimSpace(*email)))
		}
		return fmt.Errorf("failed to create user: %w", err)
	}

	fmt.Fprintf(stdout, "User %s created successfully with ID %s\n", user.Email, user.ID)
	return nil
}

func readPassword(stdin io.Reader) (string, error) {
	if f, ok := stdin.(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		bytePassword, err := term.ReadPassword(int(f.Fd()))
		if err != nil {
			return "", err
		}
		return string(bytePassword), nil
	}

	// Pipes and tests
	scanner := bufio.NewScanner(stdin)
	if scanner.Scan() {
		return scanner.Text(), nil
	}
	if err := scanner.Err(); err != nil {
		return "", err
	}
	return "", io.EOF
}
