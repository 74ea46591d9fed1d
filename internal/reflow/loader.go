package reflow

import (
	"errors"
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// profileFile is the on-disk shape of a user profile file.
type profileFile struct {
	Profiles []profileSpec `yaml:"profiles"`
}

type profileSpec struct {
	Name   string      `yaml:"name"`
	Phases []phaseSpec `yaml:"phases"`
}

type phaseSpec struct {
	Name           string   `yaml:"name"`
	ExitTempC      float64  `yaml:"exit_temp_c"`
	Direction      string   `yaml:"direction"`
	MinDuration    duration `yaml:"min_duration"`
	MaxDuration    duration `yaml:"max_duration"`
	TargetDuration duration `yaml:"target_duration"`
	Heaters        []uint8  `yaml:"heaters"`
	AlarmOnExit    bool     `yaml:"alarm_on_exit"`
}

// duration decodes Go duration strings like "90s" or "2m" from YAML.
type duration time.Duration

func (d *duration) UnmarshalYAML(value *yaml.Node) error {
	var s string
	if err := value.Decode(&s); err != nil {
		return err
	}
	v, err := time.ParseDuration(s)
	if err != nil {
		return fmt.Errorf("parse duration %q: %w", s, err)
	}
	*d = duration(v)
	return nil
}

// LoadProfiles parses extra profiles from a YAML file. The returned profiles
// are validated but not yet part of any catalog; callers append them to the
// builtins before building the catalog.
func LoadProfiles(path string) ([]Profile, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read profile file: %w", err)
	}
	var f profileFile
	if err := yaml.Unmarshal(b, &f); err != nil {
		return nil, fmt.Errorf("parse profile file: %w", err)
	}

	profiles := make([]Profile, 0, len(f.Profiles))
	for i, ps := range f.Profiles {
		p, err := ps.toProfile()
		if err != nil {
			return nil, fmt.Errorf("profile %d (%s): %w", i, ps.Name, err)
		}
		if err := validateProfile(p); err != nil {
			return nil, fmt.Errorf("profile %d (%s): %w", i, ps.Name, err)
		}
		profiles = append(profiles, p)
	}
	return profiles, nil
}

// LoadCatalog builds the runtime catalog: the factory profiles plus, when
// path is non-empty and the file exists, the user profiles appended after
// them. A missing file is not an error; a malformed one is.
func LoadCatalog(path string) (*Catalog, error) {
	profiles := BuiltinProfiles()
	if path != "" {
		extra, err := LoadProfiles(path)
		if err != nil {
			if errors.Is(err, os.ErrNotExist) {
				return NewCatalog(profiles...)
			}
			return nil, err
		}
		profiles = append(profiles, extra...)
	}
	return NewCatalog(profiles...)
}

func (ps profileSpec) toProfile() (Profile, error) {
	var p Profile
	p.Name = ps.Name
	if len(ps.Phases) != PhasesPerProfile {
		return p, fmt.Errorf("want %d phases, got %d", PhasesPerProfile, len(ps.Phases))
	}
	for i, phs := range ps.Phases {
		ph, err := phs.toPhase()
		if err != nil {
			return p, fmt.Errorf("phase %d: %w", i, err)
		}
		p.Phases[i] = ph
	}
	return p, nil
}

func (ps phaseSpec) toPhase() (Phase, error) {
	var dir Direction
	switch ps.Direction {
	case "rising", "":
		dir = Rising
	case "falling":
		dir = Falling
	default:
		return Phase{}, fmt.Errorf("unknown direction %q", ps.Direction)
	}
	if len(ps.Heaters) > HeaterCount {
		return Phase{}, fmt.Errorf("want at most %d heater masks, got %d", HeaterCount, len(ps.Heaters))
	}
	var pattern [HeaterCount]uint8
	copy(pattern[:], ps.Heaters)
	return Phase{
		Name:           ps.Name,
		ExitTempC:      ps.ExitTempC,
		Direction:      dir,
		MinDuration:    time.Duration(ps.MinDuration),
		MaxDuration:    time.Duration(ps.MaxDuration),
		TargetDuration: time.Duration(ps.TargetDuration),
		HeaterPattern:  pattern,
		AlarmOnExit:    ps.AlarmOnExit,
	}, nil
}
