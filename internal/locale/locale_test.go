package locale

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"shutdowns-bot/internal/schedule"
)

func hour(h int) *int { return &h }

func TestNormalize(t *testing.T) {
	for in, want := range map[string]string{
		"uk":    Ukrainian,
		"uk-UA": Ukrainian,
		"UK":    Ukrainian,
		"en":    English,
		"ru":    English,
		"":      English,
	} {
		assert.Equal(t, want, Normalize(in), in)
	}
}

func TestTFallsBackToEnglish(t *testing.T) {
	assert.Equal(t, en[Welcome], T("de", Welcome))
	assert.Equal(t, uk[Welcome], T(Ukrainian, Welcome))
	assert.Equal(t, "nosuchkey", T(English, "nosuchkey"))
}

func TestTablesHaveSameKeys(t *testing.T) {
	for key := range en {
		assert.Contains(t, uk, key)
	}
	for key := range uk {
		assert.Contains(t, en, key)
	}
}

func TestFormatSchedule(t *testing.T) {
	ivs := []schedule.Interval{
		{Start: 1, End: hour(3)},
		{Start: 22},
	}
	got := FormatSchedule(English, 5, ivs, false)
	assert.Equal(t, "Shutdown schedule for group 5:\n💡01:00-03:00\n💡22:00-\n", got)

	got = FormatSchedule(English, 5, ivs[:1], true)
	assert.Equal(t, "Shutdown schedule for group 5 for tomorrow:\n💡01:00-03:00\n", got)
}

func TestFormatScheduleEmpty(t *testing.T) {
	got := FormatSchedule(Ukrainian, 2, nil, false)
	assert.Contains(t, got, uk[NoShutdowns])
	assert.Contains(t, got, "групи 2:")
}

func TestFormatWarning(t *testing.T) {
	assert.Equal(t, en[Warning]+"\nTurning on at 05:00", FormatWarning(English, hour(5)))
	assert.Equal(t, en[Warning], FormatWarning(English, nil))
}
