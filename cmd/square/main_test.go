package main

import "testing"

func TestEnvOr(t *testing.T) {
	t.Setenv("SQUARE_TEST_KEY", "from-env")
	if got := envOr("SQUARE_TEST_KEY", "fallback"); got != "from-env" {
		t.Errorf("envOr = %q, want env value", got)
	}
	if got := envOr("SQUARE_TEST_MISSING", "fallback"); got != "fallback" {
		t.Errorf("envOr = %q, want fallback", got)
	}
}

func TestGreetingsNonEmpty(t *testing.T) {
	for i, g := range squareGreetings {
		if g == "" {
			t.Errorf("greeting %d is empty", i)
		}
	}
}
