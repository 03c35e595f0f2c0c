package instance

import "testing"

func TestGetIDPrefersDyno(t *testing.T) {
	t.Setenv("DYNO", "web.2")
	if got := GetID(); got != "web.2" {
		t.Fatalf("expected web.2 got %q", got)
	}
}

func TestGetIDFallsBack(t *testing.T) {
	t.Setenv("DYNO", "")
	if got := GetID(); got == "" {
		t.Fatal("expected non-empty instance id")
	}
}
