package session

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/squarehq/square/pkg/domain"
)

func newTestStore(t *testing.T) (*Store, string) {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "auth.json")
	return New(path), path
}

func TestHydrate_MissingRecordIsAnonymous(t *testing.T) {
	s, _ := newTestStore(t)
	if got := s.State(); got != StateUnhydrated {
		t.Errorf("State before Hydrate = %v, want unhydrated", got)
	}
	s.Hydrate()
	if got := s.State(); got != StateAnonymous {
		t.Errorf("State = %v, want anonymous", got)
	}
	if !s.Hydrated() {
		t.Error("Hydrated() = false after Hydrate")
	}
}

func TestHydrate_RoundTrip(t *testing.T) {
	s, path := newTestStore(t)
	s.Hydrate()
	if err := s.Login("tok-abc"); err != nil {
		t.Fatalf("Login() error: %v", err)
	}
	s.SetUser(&domain.User{ID: "u1", Name: "Ada", Email: "ada@b.co"})

	// A fresh process sees the persisted session.
	s2 := New(path)
	s2.Hydrate()
	if got := s2.State(); got != StateAuthenticated {
		t.Fatalf("State = %v, want authenticated", got)
	}
	if s2.Token() != "tok-abc" {
		t.Errorf("Token = %q, want tok-abc", s2.Token())
	}
	if u := s2.User(); u == nil || u.Name != "Ada" {
		t.Errorf("User = %+v, want Ada", u)
	}
}

func TestHydrate_FlipsOnce(t *testing.T) {
	s, path := newTestStore(t)
	s.Hydrate()

	// State written after the first hydrate must not be re-read by a
	// second call.
	if err := os.WriteFile(path, []byte(`{"access_token":"late","is_authenticated":true}`), 0o600); err != nil {
		t.Fatal(err)
	}
	s.Hydrate()
	if s.IsAuthenticated() {
		t.Error("second Hydrate re-read persisted state")
	}
}

func TestHydrate_CorruptRecord(t *testing.T) {
	s, path := newTestStore(t)
	if err := os.WriteFile(path, []byte("{not json"), 0o600); err != nil {
		t.Fatal(err)
	}
	s.Hydrate()
	if got := s.State(); got != StateAnonymous {
		t.Errorf("State = %v, want anonymous for corrupt record", got)
	}
}

func TestHydrate_AuthenticatedWithoutTokenDropped(t *testing.T) {
	s, path := newTestStore(t)
	if err := os.WriteFile(path, []byte(`{"access_token":"","is_authenticated":true}`), 0o600); err != nil {
		t.Fatal(err)
	}
	s.Hydrate()
	if s.IsAuthenticated() {
		t.Error("record without token must hydrate to anonymous")
	}
}

func TestLogin_RequiresToken(t *testing.T) {
	s, _ := newTestStore(t)
	s.Hydrate()
	if err := s.Login("   "); err == nil {
		t.Error("Login with blank token should fail")
	}
	if s.IsAuthenticated() {
		t.Error("failed login must not authenticate")
	}
}

func TestLogout_NotifiesThenClears(t *testing.T) {
	s, _ := newTestStore(t)
	s.Hydrate()
	if err := s.Login("tok"); err != nil {
		t.Fatal(err)
	}

	var notified int
	s.SetNotify(func(context.Context) error {
		notified++
		if !s.IsAuthenticated() {
			t.Error("notify ran after local clear; the server call needs the token")
		}
		return nil
	})

	s.Logout(context.Background())
	if notified != 1 {
		t.Errorf("notified = %d, want 1", notified)
	}
	if s.IsAuthenticated() || s.Token() != "" || s.User() != nil {
		t.Error("logout left session state behind")
	}

	// Idempotent, and the failure of the notification never blocks it.
	s.SetNotify(func(context.Context) error { return errors.New("server gone") })
	s.Logout(context.Background())
	if s.IsAuthenticated() {
		t.Error("repeat logout changed state")
	}
}

func TestForceLogout_SkipsNotify(t *testing.T) {
	s, _ := newTestStore(t)
	s.Hydrate()
	if err := s.Login("tok"); err != nil {
		t.Fatal(err)
	}
	s.SetNotify(func(context.Context) error {
		t.Error("ForceLogout must not notify the server")
		return nil
	})
	s.ForceLogout()
	if s.IsAuthenticated() {
		t.Error("ForceLogout left session authenticated")
	}
}

func TestTokenMirror(t *testing.T) {
	s, path := newTestStore(t)
	mirror := filepath.Join(filepath.Dir(path), "token")
	s.SetTokenMirror(mirror)
	s.Hydrate()

	if err := s.Login("tok-xyz"); err != nil {
		t.Fatal(err)
	}
	data, err := os.ReadFile(mirror)
	if err != nil {
		t.Fatalf("read mirror: %v", err)
	}
	if string(data) != "tok-xyz" {
		t.Errorf("mirror = %q, want raw token", data)
	}

	s.ForceLogout()
	if _, err := os.ReadFile(mirror); !errors.Is(err, os.ErrNotExist) {
		t.Errorf("mirror still present after logout: %v", err)
	}
}
