package main

import (
	"bytes"
	"strings"
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"shutdowns-bot/internal/locale"
	"shutdowns-bot/internal/schedule"
)

func TestPrintSchedule(t *testing.T) {
	g1 := make(schedule.Group, schedule.HoursPerDay)
	g1[5] = schedule.StateOn
	g2 := make(schedule.Group, schedule.HoursPerDay)
	table := schedule.Table{g1, g2}

	var out bytes.Buffer
	cmd := &cobra.Command{}
	cmd.SetOut(&out)

	require.NoError(t, printSchedule(cmd, table, 0, locale.English, false))
	text := out.String()
	assert.Contains(t, text, "group 1:\n💡05:00-06:00")
	assert.Contains(t, text, "group 2:\n"+locale.T(locale.English, locale.NoShutdowns))

	out.Reset()
	require.NoError(t, printSchedule(cmd, table, 1, locale.English, true))
	assert.True(t, strings.HasPrefix(out.String(), "Shutdown schedule for group 1 for tomorrow:"))

	assert.ErrorIs(t, printSchedule(cmd, table, 3, locale.English, false), schedule.ErrNoSuchGroup)
}

func TestCommandsRegistered(t *testing.T) {
	names := map[string]bool{}
	for _, c := range rootCmd.Commands() {
		names[c.Name()] = true
	}
	for _, want := range []string{"serve", "show", "events"} {
		assert.True(t, names[want], want)
	}
}
