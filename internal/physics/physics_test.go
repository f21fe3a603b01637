package physics

import (
	"errors"
	"math"
	"testing"
)

func TestAxisName(t *testing.T) {
	tests := []struct {
		axis int
		want string
	}{
		{0, "x"},
		{1, "y"},
		{2, "z"},
		{3, "c4"},
		{9, "c10"},
	}
	for _, tt := range tests {
		if got := AxisName(tt.axis); got != tt.want {
			t.Errorf("AxisName(%d) = %q, want %q", tt.axis, got, tt.want)
		}
	}
}

func TestExpandAxes(t *testing.T) {
	got, err := ExpandAxes(4, "pos.{var} += d[{i}]")
	if err != nil {
		t.Fatalf("ExpandAxes: %v", err)
	}
	want := []string{"pos.x += d[0]", "pos.y += d[1]", "pos.z += d[2]", "pos.c4 += d[3]"}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("ExpandAxes[%d] = %q, want %q", i, got[i], want[i])
		}
	}

	joined, err := JoinAxes(3, "{var}", ",")
	if err != nil || joined != "x,y,z" {
		t.Errorf("JoinAxes = %q, %v, want x,y,z", joined, err)
	}

	for _, d := range []int{0, -1} {
		if _, err := ExpandAxes(d, "{var}"); !errors.Is(err, ErrInvalidDimension) {
			t.Errorf("ExpandAxes(%d) error = %v, want ErrInvalidDimension", d, err)
		}
	}
}

func TestSettingsValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Settings)
		wantErr error
	}{
		{"defaults", func(*Settings) {}, nil},
		{"zero dims", func(s *Settings) { s.Dimensions = 0 }, ErrInvalidDimension},
		{"nan gravity", func(s *Settings) { s.Gravity = math.NaN() }, ErrInvalidParameter},
		{"inf drag", func(s *Settings) { s.DragCoefficient = math.Inf(1) }, ErrInvalidParameter},
		{"zero step", func(s *Settings) { s.TimeStep = 0 }, ErrInvalidParameter},
		{"negative theta", func(s *Settings) { s.Theta = -0.1 }, ErrInvalidParameter},
		{"exact theta", func(s *Settings) { s.Theta = 0 }, nil},
		{"hyper", func(s *Settings) { s.Dimensions = 7 }, nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := DefaultSettings()
			tt.mutate(&s)
			err := s.Validate()
			if tt.wantErr == nil && err != nil {
				t.Errorf("Validate() = %v, want nil", err)
			}
			if tt.wantErr != nil && !errors.Is(err, tt.wantErr) {
				t.Errorf("Validate() = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestParameterErrorName(t *testing.T) {
	err := CheckFinite("springLength", math.Inf(-1))
	var pe *ParameterError
	if !errors.As(err, &pe) {
		t.Fatalf("CheckFinite error = %T, want *ParameterError", err)
	}
	if pe.Name != "springLength" {
		t.Errorf("Name = %q, want springLength", pe.Name)
	}
}

func TestBodySetPosition(t *testing.T) {
	b := NewBody(3, 1, 2)
	if b.Pos[0] != 1 || b.Pos[1] != 2 || b.Pos[2] != 0 {
		t.Fatalf("Pos = %v, want [1 2 0]", b.Pos)
	}
	if b.Mass != 1 {
		t.Errorf("Mass = %v, want 1", b.Mass)
	}

	if err := b.SetPosition(4); err != nil {
		t.Fatalf("SetPosition(4) = %v", err)
	}
	if b.Pos[0] != 4 || b.Pos[1] != 0 || b.Pos[2] != 0 {
		t.Errorf("Pos = %v, want [4 0 0]", b.Pos)
	}
	if err := b.SetPosition(math.NaN()); err != nil {
		t.Errorf("SetPosition without debug = %v, want nil", err)
	}

	b.Debug = true
	b.Pos[0] = 5
	err := b.SetPosition(3, math.Inf(1))
	if !errors.Is(err, ErrInvalidParameter) {
		t.Fatalf("SetPosition(inf) = %v, want ErrInvalidParameter", err)
	}
	if b.Pos[0] != 5 {
		t.Errorf("Pos[0] = %v after rejected update, want 5", b.Pos[0])
	}
	if err := b.SetAxis(3, 1); !errors.Is(err, ErrInvalidDimension) {
		t.Errorf("SetAxis(3) = %v, want ErrInvalidDimension", err)
	}
}

func TestBodyReset(t *testing.T) {
	b := NewBody(2)
	b.Force[0], b.Force[1] = 3, 4
	b.SpringCount, b.SpringLength = 2, 7
	b.Reset()
	if b.Force.Norm() != 0 || b.SpringCount != 0 || b.SpringLength != 0 {
		t.Errorf("Reset left force=%v count=%d length=%v", b.Force, b.SpringCount, b.SpringLength)
	}
}

func TestSpringDefaults(t *testing.T) {
	s := NewSpring(NewBody(2), NewBody(2), -5, -2)
	if s.Length != Unset || s.Coefficient != Unset {
		t.Fatalf("NewSpring = %v/%v, want Unset", s.Length, s.Coefficient)
	}
	if got := s.RestLength(10); got != 10 {
		t.Errorf("RestLength = %v, want 10", got)
	}
	if got := s.Stiffness(0.8); got != 0.8 {
		t.Errorf("Stiffness = %v, want 0.8", got)
	}
	own := NewSpring(nil, nil, 0, 0.3)
	if own.RestLength(10) != 0 || own.Stiffness(0.8) != 0.3 {
		t.Errorf("own spring = %v/%v, want 0/0.3", own.RestLength(10), own.Stiffness(0.8))
	}
}
