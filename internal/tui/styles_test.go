package tui

import (
	"strings"
	"testing"

	"github.com/squarehq/square/pkg/domain"
)

func TestRenderShimmerLogo(t *testing.T) {
	out := renderShimmerLogo(0)
	for _, ch := range []string{"S", "Q", "U", "A", "R", "E"} {
		if !strings.Contains(out, ch) {
			t.Errorf("logo missing %q: %q", ch, out)
		}
	}
}

func TestClampByte(t *testing.T) {
	if got := clampByte(-3); got != 0 {
		t.Errorf("clampByte(-3) = %d", got)
	}
	if got := clampByte(300); got != 255 {
		t.Errorf("clampByte(300) = %d", got)
	}
	if got := clampByte(128.7); got != 128 {
		t.Errorf("clampByte(128.7) = %d", got)
	}
}

func TestStatusStyleRenders(t *testing.T) {
	for _, s := range append(domain.StatusOrder, "unknown") {
		rendered := statusStyle(s).Render(s.Label())
		if !strings.Contains(rendered, s.Label()) {
			t.Errorf("statusStyle(%q) did not render the label: %q", s, rendered)
		}
	}
}

func TestHelpEntryFormat(t *testing.T) {
	result := helpEntry("q", "quit")
	if !strings.Contains(result, "q") || !strings.Contains(result, "quit") {
		t.Errorf("helpEntry missing key or label: %q", result)
	}
}
