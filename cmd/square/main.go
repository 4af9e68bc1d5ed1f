package main

import (
	"fmt"
	"os"
	"path/filepath"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/squarehq/square/internal/cache"
	"github.com/squarehq/square/internal/logging"
	"github.com/squarehq/square/internal/session"
	"github.com/squarehq/square/internal/tui"
	"github.com/squarehq/square/pkg/client"
)

// version is set at build time via -ldflags "-X main.version=..."
var version = "dev"

const (
	defaultAPIURL = "https://api.squarehq.app"
	defaultAppURL = "https://squarehq.app"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

// configDir returns ~/.square, creating nothing.
func configDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("get home dir: %w", err)
	}
	return filepath.Join(home, ".square"), nil
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func run() error {
	apiURL := envOr("SQUARE_API_URL", defaultAPIURL)
	appURL := envOr("SQUARE_APP_URL", defaultAppURL)

	dir, err := configDir()
	if err != nil {
		return err
	}

	logger, err := logging.New(filepath.Join(dir, "square.log"))
	if err != nil {
		return fmt.Errorf("open log: %w", err)
	}
	defer logger.Sync() //nolint:errcheck

	store := session.New(filepath.Join(dir, "auth.json"))
	store.SetLogger(logger)
	if os.Getenv("SQUARE_ENV") != "production" {
		// Mirror the raw token so other tooling can check the session
		// without parsing the auth record.
		store.SetTokenMirror(filepath.Join(dir, "token"))
	}

	c := client.New(apiURL, store.Token)
	c.SetLogger(logger)
	store.SetNotify(c.Logout)

	if len(os.Args) > 1 {
		switch os.Args[1] {
		case "--version", "version", "-v":
			fmt.Println("square " + version)
			return nil
		case "help", "--help", "-h":
			printHelp()
			return nil
		case "login":
			store.Hydrate()
			if err := runLogin(c, store); err != nil {
				return err
			}
			return launchTUI(c, store, appURL)
		case "register":
			return runRegister(c)
		case "logout":
			store.Hydrate()
			return runLogout(store)
		default:
			printHelp()
			return fmt.Errorf("unknown command %q", os.Args[1])
		}
	}

	store.Hydrate()
	if !store.IsAuthenticated() {
		printSquareGreeting()
		return nil
	}
	return launchTUI(c, store, appURL)
}

func launchTUI(c *client.Client, store *session.Store, appURL string) error {
	app := tui.NewApp(c, store, cache.New(), appURL, version)
	p := tea.NewProgram(app, tea.WithAltScreen())

	// A 401 anywhere clears the session and drops the TUI back on login.
	c.OnUnauthorized(func() {
		store.ForceLogout()
		p.Send(tui.SessionExpiredMsg{})
	})

	if _, err := p.Run(); err != nil {
		return fmt.Errorf("tui error: %w", err)
	}
	return nil
}
