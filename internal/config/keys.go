package config

import (
	"fmt"
	"slices"

	"github.com/san-kum/forcelayout/internal/physics"
)

// physicsKeys maps the file keys of the numeric physics settings to their
// fields.
var physicsKeys = map[string]func(*physics.Settings) *float64{
	"spring_length":             func(s *physics.Settings) *float64 { return &s.SpringLength },
	"spring_coefficient":        func(s *physics.Settings) *float64 { return &s.SpringCoefficient },
	"gravity":                   func(s *physics.Settings) *float64 { return &s.Gravity },
	"theta":                     func(s *physics.Settings) *float64 { return &s.Theta },
	"drag_coefficient":          func(s *physics.Settings) *float64 { return &s.DragCoefficient },
	"time_step":                 func(s *physics.Settings) *float64 { return &s.TimeStep },
	"adaptive_time_step_weight": func(s *physics.Settings) *float64 { return &s.AdaptiveTimeStepWeight },
}

// SetPhysics sets the numeric physics setting named by its file key.
func SetPhysics(s *physics.Settings, key string, v float64) error {
	field, ok := physicsKeys[key]
	if !ok {
		if repl, legacy := legacyKeys[key]; legacy {
			return fmt.Errorf("%w: %q is now %q", physics.ErrLegacySetting, key, repl)
		}
		return fmt.Errorf("unknown physics setting: %s (available: %v)", key, PhysicsKeys())
	}
	*field(s) = v
	return nil
}

// PhysicsKeys lists the keys SetPhysics accepts.
func PhysicsKeys() []string {
	keys := make([]string, 0, len(physicsKeys))
	for k := range physicsKeys {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	return keys
}
