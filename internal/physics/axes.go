package physics

import (
	"strconv"
	"strings"
)

var axisNames = [...]string{"x", "y", "z"}

// AxisName returns the conventional name of axis i: x, y and z for the first
// three, then c4, c5 and so on.
func AxisName(i int) string {
	if i >= 0 && i < len(axisNames) {
		return axisNames[i]
	}
	return "c" + strconv.Itoa(i+1)
}

// AxisNames lists the names of the first dims axes.
func AxisNames(dims int) []string {
	names := make([]string, 0, max(dims, 0))
	for i := 0; i < dims; i++ {
		names = append(names, AxisName(i))
	}
	return names
}

// ExpandAxes renders template once per axis, replacing {var} with the axis
// name and {i} with its index.
func ExpandAxes(dims int, template string) ([]string, error) {
	if err := CheckDimensions(dims); err != nil {
		return nil, err
	}
	out := make([]string, dims)
	for i := range out {
		r := strings.NewReplacer("{var}", AxisName(i), "{i}", strconv.Itoa(i))
		out[i] = r.Replace(template)
	}
	return out, nil
}

// JoinAxes expands template and joins the pieces with sep.
func JoinAxes(dims int, template, sep string) (string, error) {
	parts, err := ExpandAxes(dims, template)
	if err != nil {
		return "", err
	}
	return strings.Join(parts, sep), nil
}
