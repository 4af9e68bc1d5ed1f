package main

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/huh"

	"github.com/squarehq/square/internal/session"
	"github.com/squarehq/square/internal/validate"
	"github.com/squarehq/square/pkg/client"
)

// runLogin prompts for credentials and establishes a session. On success the
// caller drops straight into the TUI.
func runLogin(c *client.Client, store *session.Store) error {
	var email, password string
	form := huh.NewForm(huh.NewGroup(
		huh.NewInput().
			Title("Email").
			Value(&email).
			Validate(func(s string) error {
				if strings.TrimSpace(s) == "" {
					return fmt.Errorf("email is required")
				}
				return nil
			}),
		huh.NewInput().
			Title("Password").
			EchoMode(huh.EchoModePassword).
			Value(&password),
	))
	if err := form.Run(); err != nil {
		return fmt.Errorf("login prompt: %w", err)
	}

	in := validate.LoginInput{Email: strings.ToLower(strings.TrimSpace(email)), Password: password}
	if err := in.Validate(); err != nil {
		return err
	}

	ctx := context.Background()
	token, err := c.Login(ctx, in.Email, in.Password)
	if err != nil {
		return fmt.Errorf("login: %s", client.Message(err, "request failed"))
	}
	if err := store.Login(token); err != nil {
		return err
	}

	// Best effort. A missing profile never undoes the login.
	if id, err := session.UserIDFromToken(token); err == nil {
		if u, err := c.UserProfile(ctx, id); err == nil {
			store.SetUser(u)
		}
	}

	if u := store.User(); u != nil {
		fmt.Printf("Signed in as %s\n\n", u.Name)
	} else {
		fmt.Print("Signed in.\n\n")
	}
	return nil
}

// runRegister prompts for account details and creates the account. Signing in
// stays a separate step, same as the web flow.
func runRegister(c *client.Client) error {
	var name, email, password, confirm string
	form := huh.NewForm(huh.NewGroup(
		huh.NewInput().
			Title("Name").
			Value(&name),
		huh.NewInput().
			Title("Email").
			Value(&email),
		huh.NewInput().
			Title("Password").
			Description("At least 8 characters with upper, lower, digit, and symbol").
			EchoMode(huh.EchoModePassword).
			Value(&password),
		huh.NewInput().
			Title("Confirm password").
			EchoMode(huh.EchoModePassword).
			Value(&confirm),
	))
	if err := form.Run(); err != nil {
		return fmt.Errorf("register prompt: %w", err)
	}

	in := validate.RegisterInput{
		Name:            strings.TrimSpace(name),
		Email:           strings.ToLower(strings.TrimSpace(email)),
		Password:        password,
		ConfirmPassword: confirm,
	}
	if err := in.Validate(); err != nil {
		return err
	}

	if err := c.Register(context.Background(), client.RegisterRequest{
		Name:            in.Name,
		Email:           in.Email,
		Password:        in.Password,
		ConfirmPassword: in.ConfirmPassword,
	}); err != nil {
		return fmt.Errorf("register: %s", client.Message(err, "request failed"))
	}
	fmt.Println("Account created. Run 'square login' to sign in.")
	return nil
}

// runLogout clears the local session and notifies the server.
func runLogout(store *session.Store) error {
	if !store.IsAuthenticated() {
		fmt.Println("Already logged out.")
		return nil
	}
	store.Logout(context.Background())
	fmt.Println("Logged out.")
	return nil
}
