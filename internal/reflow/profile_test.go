package reflow

import (
	"testing"
	"time"
)

func TestBuiltinProfilesAreValid(t *testing.T) {
	c, err := NewCatalog(BuiltinProfiles()...)
	if err != nil {
		t.Fatalf("builtin profiles rejected: %v", err)
	}
	if c.Len() != 2 {
		t.Fatalf("builtin catalog size = %d, want 2", c.Len())
	}
}

func TestSelectNextWrapsAround(t *testing.T) {
	c := BuiltinCatalog()
	if got := c.SelectNext(0); got != 1 {
		t.Errorf("SelectNext(0) = %d, want 1", got)
	}
	if got := c.SelectNext(c.Len() - 1); got != 0 {
		t.Errorf("SelectNext(last) = %d, want 0", got)
	}
	if got := c.SelectNext(99); got != 1 {
		t.Errorf("SelectNext(out of range) = %d, want 1", got)
	}
}

func TestProfileFallsBackForBadIndex(t *testing.T) {
	c := BuiltinCatalog()
	want := c.Profile(0).Name
	if got := c.Profile(-1).Name; got != want {
		t.Errorf("Profile(-1) = %q, want %q", got, want)
	}
	if got := c.Profile(42).Name; got != want {
		t.Errorf("Profile(42) = %q, want %q", got, want)
	}
}

func TestNewCatalogRejectsBadProfiles(t *testing.T) {
	valid := BuiltinProfiles()[0]

	noName := valid
	noName.Name = ""

	badExit := valid
	badExit.Phases[1].ExitTempC = 0

	maxBelowMin := valid
	maxBelowMin.Phases[2].MinDuration = time.Minute
	maxBelowMin.Phases[2].MaxDuration = 30 * time.Second

	cases := []struct {
		name    string
		profile Profile
	}{
		{"missing name", noName},
		{"non-positive exit temperature", badExit},
		{"max duration below min duration", maxBelowMin},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := NewCatalog(tc.profile); err == nil {
				t.Fatalf("expected error, got nil")
			}
		})
	}

	if _, err := NewCatalog(); err == nil {
		t.Fatalf("expected error for empty catalog, got nil")
	}
}

func TestNamesMatchCatalogOrder(t *testing.T) {
	c := BuiltinCatalog()
	names := c.Names()
	if len(names) != c.Len() {
		t.Fatalf("Names() returned %d entries, want %d", len(names), c.Len())
	}
	for i, name := range names {
		if name != c.Profile(i).Name {
			t.Errorf("names[%d] = %q, want %q", i, name, c.Profile(i).Name)
		}
	}
}
