package schedule

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleTable() Table {
	return Table{
		group("zvvzvmvzzzzzzzzzzzzzzzzz"),
		group("zzzzzzzzzzzzzzzzzzzzzzzz"),
		group("zzzzzzzzzzzzzzzzzzzvvvvv"),
	}
}

func TestDiffSameTable(t *testing.T) {
	a := sampleTable()

	diff, err := Diff(a, a)
	require.NoError(t, err)
	assert.Equal(t, []bool{false, false, false}, diff)
	assert.Empty(t, Changed(diff))

	eq, err := Equal(a, a.Clone())
	require.NoError(t, err)
	assert.True(t, eq)
}

func TestDiffSingleSlot(t *testing.T) {
	a := sampleTable()
	b := a.Clone()
	b[1][14] = StateMaybeOff

	diff, err := Diff(a, b)
	require.NoError(t, err)
	assert.Equal(t, []bool{false, true, false}, diff)
	assert.Equal(t, []int{2}, Changed(diff))

	eq, err := Equal(a, b)
	require.NoError(t, err)
	assert.False(t, eq)

	assert.Equal(t, StateOff, a[1][14], "clone must not share storage")
}

func TestDiffShapeMismatch(t *testing.T) {
	a := sampleTable()

	_, err := Diff(a, a[:2])
	require.ErrorIs(t, err, ErrShape)
	var se *ShapeError
	require.ErrorAs(t, err, &se)
	assert.Equal(t, 0, se.Group)
	assert.Equal(t, 3, se.A)
	assert.Equal(t, 2, se.B)

	b := a.Clone()
	b[2] = b[2][:23]
	_, err = Diff(a, b)
	require.ErrorAs(t, err, &se)
	assert.Equal(t, 3, se.Group)

	_, err = Equal(a, b)
	assert.ErrorIs(t, err, ErrShape)
}
