package schedule

import "slices"

// Diff compares two tables group by group. Entry i is true when group i+1
// differs in any slot. Tables must have the same shape.
func Diff(a, b Table) ([]bool, error) {
	if len(a) != len(b) {
		return nil, &ShapeError{A: len(a), B: len(b)}
	}
	changed := make([]bool, len(a))
	for i := range a {
		if len(a[i]) != len(b[i]) {
			return nil, &ShapeError{Group: i + 1, A: len(a[i]), B: len(b[i])}
		}
		changed[i] = !slices.Equal(a[i], b[i])
	}
	return changed, nil
}

// Equal reports whether two same-shaped tables are identical.
func Equal(a, b Table) (bool, error) {
	changed, err := Diff(a, b)
	if err != nil {
		return false, err
	}
	return !slices.Contains(changed, true), nil
}

// Changed returns the 1-based group numbers marked in a Diff result.
func Changed(diff []bool) []int {
	var groups []int
	for i, c := range diff {
		if c {
			groups = append(groups, i+1)
		}
	}
	return groups
}
