// Package locale holds the bot texts and the shared schedule formatting.
package locale

import (
	"fmt"
	"strings"

	"shutdowns-bot/internal/schedule"
)

// Normalize maps any Telegram language code to a supported language.
func Normalize(lang string) string {
	if strings.HasPrefix(strings.ToLower(lang), Ukrainian) {
		return Ukrainian
	}
	return English
}

// T returns the text for key in lang, falling back to English.
func T(lang, key string) string {
	if msg, ok := tables[lang][key]; ok {
		return msg
	}
	if msg, ok := en[key]; ok {
		return msg
	}
	return key
}

// FormatHour renders an hour of day as HH:00.
func FormatHour(h int) string {
	return fmt.Sprintf("%02d:00", h)
}

// FormatSchedule renders the outage intervals of a group, one per line.
// An open interval keeps its end blank.
func FormatSchedule(lang string, group int, intervals []schedule.Interval, tomorrow bool) string {
	var b strings.Builder
	b.WriteString(T(lang, InfoMessage))
	fmt.Fprintf(&b, " %d", group)
	if tomorrow {
		b.WriteString(" " + T(lang, ForTomorrow))
	}
	b.WriteString(":\n")

	if len(intervals) == 0 {
		b.WriteString(T(lang, NoShutdowns))
		b.WriteString("\n")
		return b.String()
	}
	for _, iv := range intervals {
		b.WriteString("💡" + FormatHour(iv.Start) + "-")
		if iv.End != nil {
			b.WriteString(FormatHour(*iv.End))
		}
		b.WriteString("\n")
	}
	return b.String()
}

// FormatWarning renders the one-hour warning. turnOn is nil when the
// turn-on time is unknown.
func FormatWarning(lang string, turnOn *int) string {
	msg := T(lang, Warning)
	if turnOn != nil {
		msg += "\n" + T(lang, TurningOn) + " " + FormatHour(*turnOn)
	}
	return msg
}

// FormatChanged prefixes a group schedule with the change notice.
func FormatChanged(lang string, group int, intervals []schedule.Interval) string {
	return T(lang, Changed) + "\n\n" + FormatSchedule(lang, group, intervals, false)
}
