package reflow

import (
	"fmt"
	"time"
)

// PhasesPerProfile is the number of interior phases every profile carries.
// The runtime schedule brackets them with the Idle and Cooling sentinels.
const PhasesPerProfile = 4

// Profile is a complete soldering temperature curve: four interior phases
// run in order between the Idle and Cooling sentinels.
type Profile struct {
	Name   string
	Phases [PhasesPerProfile]Phase
}

// Catalog is the ordered set of profiles the oven can run. Selection rotates
// through it; the selected index is what gets persisted across restarts.
type Catalog struct {
	profiles []Profile
}

// NewCatalog builds a catalog from the given profiles.
func NewCatalog(profiles ...Profile) (*Catalog, error) {
	if len(profiles) == 0 {
		return nil, fmt.Errorf("catalog needs at least one profile")
	}
	if len(profiles) > 0xFE {
		return nil, fmt.Errorf("too many profiles: %d", len(profiles))
	}
	for i, p := range profiles {
		if err := validateProfile(p); err != nil {
			return nil, fmt.Errorf("profile %d (%s): %w", i, p.Name, err)
		}
	}
	return &Catalog{profiles: profiles}, nil
}

func validateProfile(p Profile) error {
	if p.Name == "" {
		return fmt.Errorf("missing name")
	}
	for i, ph := range p.Phases {
		if ph.Name == "" {
			return fmt.Errorf("phase %d: missing name", i)
		}
		if ph.ExitTempC <= 0 {
			return fmt.Errorf("phase %d (%s): exit temperature must be positive", i, ph.Name)
		}
		if ph.MinDuration < 0 || ph.MaxDuration < 0 || ph.TargetDuration < 0 {
			return fmt.Errorf("phase %d (%s): durations must not be negative", i, ph.Name)
		}
		if ph.MaxDuration > 0 && ph.MaxDuration < ph.MinDuration {
			return fmt.Errorf("phase %d (%s): max duration below min duration", i, ph.Name)
		}
	}
	return nil
}

// Len returns the number of profiles in the catalog.
func (c *Catalog) Len() int { return len(c.profiles) }

// Profile returns the profile at index i. Out-of-range indices fall back to
// the first profile so a stale persisted index can never crash the engine.
func (c *Catalog) Profile(i int) Profile {
	if i < 0 || i >= len(c.profiles) {
		return c.profiles[0]
	}
	return c.profiles[i]
}

// Clamp maps an arbitrary index onto a valid catalog index.
func (c *Catalog) Clamp(i int) int {
	if i < 0 || i >= len(c.profiles) {
		return 0
	}
	return i
}

// SelectNext returns the index that follows current, wrapping to the first
// profile after the last.
func (c *Catalog) SelectNext(current int) int {
	return (c.Clamp(current) + 1) % len(c.profiles)
}

// Names lists the profile names in catalog order.
func (c *Catalog) Names() []string {
	names := make([]string, len(c.profiles))
	for i, p := range c.profiles {
		names[i] = p.Name
	}
	return names
}

// BuiltinProfiles returns the factory profiles: a lead-free SAC305 curve and
// a lower-temperature leaded Sn63/Pb37 curve.
func BuiltinProfiles() []Profile {
	return []Profile{
		{
			Name: "lead-free",
			Phases: [PhasesPerProfile]Phase{
				{
					Name:           "pre-heat",
					ExitTempC:      150,
					Direction:      Rising,
					TargetDuration: 90 * time.Second,
					HeaterPattern:  [HeaterCount]uint8{0xFF, 0xAA, 0x00},
				},
				{
					Name:           "soak",
					ExitTempC:      205,
					Direction:      Rising,
					MinDuration:    30 * time.Second,
					MaxDuration:    120 * time.Second,
					TargetDuration: 80 * time.Second,
					HeaterPattern:  [HeaterCount]uint8{0xAA, 0x88, 0x00},
				},
				{
					Name:           "liquidus",
					ExitTempC:      235,
					Direction:      Rising,
					MinDuration:    30 * time.Second,
					MaxDuration:    90 * time.Second,
					TargetDuration: 45 * time.Second,
					HeaterPattern:  [HeaterCount]uint8{0xFF, 0xEE, 0xAA},
					AlarmOnExit:    true,
				},
				{
					Name:           "reflow",
					ExitTempC:      225,
					Direction:      Falling,
					MinDuration:    30 * time.Second,
					MaxDuration:    90 * time.Second,
					TargetDuration: 40 * time.Second,
					HeaterPattern:  [HeaterCount]uint8{0x88, 0x00, 0x00},
				},
			},
		},
		{
			Name: "leaded",
			Phases: [PhasesPerProfile]Phase{
				{
					Name:           "pre-heat",
					ExitTempC:      140,
					Direction:      Rising,
					TargetDuration: 75 * time.Second,
					HeaterPattern:  [HeaterCount]uint8{0xFF, 0xAA, 0x00},
				},
				{
					Name:           "soak",
					ExitTempC:      180,
					Direction:      Rising,
					MinDuration:    30 * time.Second,
					MaxDuration:    120 * time.Second,
					TargetDuration: 70 * time.Second,
					HeaterPattern:  [HeaterCount]uint8{0xAA, 0x88, 0x00},
				},
				{
					Name:           "liquidus",
					ExitTempC:      215,
					Direction:      Rising,
					MinDuration:    30 * time.Second,
					MaxDuration:    90 * time.Second,
					TargetDuration: 40 * time.Second,
					HeaterPattern:  [HeaterCount]uint8{0xFF, 0xCC, 0x88},
					AlarmOnExit:    true,
				},
				{
					Name:           "reflow",
					ExitTempC:      205,
					Direction:      Falling,
					MinDuration:    30 * time.Second,
					MaxDuration:    90 * time.Second,
					TargetDuration: 40 * time.Second,
					HeaterPattern:  [HeaterCount]uint8{0x88, 0x00, 0x00},
				},
			},
		},
	}
}

// BuiltinCatalog returns a catalog holding only the factory profiles.
func BuiltinCatalog() *Catalog {
	c, err := NewCatalog(BuiltinProfiles()...)
	if err != nil {
		panic(err)
	}
	return c
}
