package commands

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	"golang.org/x/term"

	"github.com/balkashynov/punch/internal/db"
	"github.com/balkashynov/punch/internal/models"
)

const passwordEnv = "PUNCH_PASSWORD"

var errNotAdmin = errors.New("this command requires an administrator")

// credentials resolves the username and password from flags, the
// environment or an interactive prompt
func credentials() (string, string, error) {
	username := strings.TrimSpace(loginUser)
	if username == "" {
		if !term.IsTerminal(int(os.Stdin.Fd())) {
			return "", "", errors.New("no username given; use --user")
		}
		fmt.Print("Username: ")
		line, err := bufio.NewReader(os.Stdin).ReadString('\n')
		if err != nil {
			return "", "", fmt.Errorf("failed to read username: %w", err)
		}
		username = strings.TrimSpace(line)
	}

	password := loginPass
	if password == "" {
		password = os.Getenv(passwordEnv)
	}
	if password == "" {
		if !term.IsTerminal(int(os.Stdin.Fd())) {
			return "", "", fmt.Errorf("no password given; use --password or %s", passwordEnv)
		}
		fmt.Print("Password: ")
		raw, err := term.ReadPassword(int(os.Stdin.Fd()))
		fmt.Println()
		if err != nil {
			return "", "", fmt.Errorf("failed to read password: %w", err)
		}
		password = string(raw)
	}

	return username, password, nil
}

// signIn authenticates the caller against the store
func signIn(ctx context.Context) (*models.Identity, error) {
	username, password, err := credentials()
	if err != nil {
		return nil, err
	}

	identity, err := current.store.Authenticate(ctx, username, password)
	if errors.Is(err, db.ErrNotFound) {
		return nil, errors.New("invalid username or password")
	}
	return identity, err
}

// signInAdmin authenticates the caller and requires the admin role
func signInAdmin(ctx context.Context) (*models.Identity, error) {
	identity, err := signIn(ctx)
	if err != nil {
		return nil, err
	}
	if !identity.IsAdmin() {
		return nil, errNotAdmin
	}
	return identity, nil
}
