package color

import (
	"regexp"
	"testing"
)

var hexColorRe = regexp.MustCompile(`^#[0-9A-F]{6}$`)

func TestForUser_Deterministic(t *testing.T) {
	a := ForUser("user-dana")
	b := ForUser("user-dana")
	if a != b {
		t.Errorf("ForUser not deterministic: %q vs %q", a, b)
	}
}

func TestForUser_HexFormat(t *testing.T) {
	for _, id := range []string{"user-dana", "user-riley", "", "x"} {
		c := ForUser(id)
		if !hexColorRe.MatchString(c) {
			t.Errorf("ForUser(%q) = %q, not a hex color", id, c)
		}
	}
}

func TestForUser_VariesByUser(t *testing.T) {
	if ForUser("user-dana") == ForUser("user-riley") {
		t.Error("expected different colors for different users")
	}
}
