package bot

import (
	"context"
	"errors"
	"regexp"
	"strconv"

	"shutdowns-bot/internal/locale"
	"shutdowns-bot/internal/schedule"
)

var numericText = regexp.MustCompile(`^\d+$`)

// language returns the stored language of a user, English when unknown.
func (b *Bot) language(ctx context.Context, id int64) string {
	sub, ok, err := b.subs.Get(ctx, id)
	if err != nil {
		log.Warnf("get subscriber %d: %v", id, err)
		return locale.English
	}
	if !ok || sub.Language == "" {
		return locale.English
	}
	return locale.Normalize(sub.Language)
}

func (b *Bot) setWaiting(id int64, on bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if on {
		b.waiting[id] = true
	} else {
		delete(b.waiting, id)
	}
}

// takeWaiting reports whether id was waiting for a group number and clears it.
func (b *Bot) takeWaiting(id int64) bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	ok := b.waiting[id]
	delete(b.waiting, id)
	return ok
}

// errorText maps a failure to the message shown to the user.
func errorText(lang string, err error) string {
	switch {
	case errors.Is(err, schedule.ErrNetwork):
		return locale.T(lang, locale.FetchError)
	case errors.Is(err, schedule.ErrParse), errors.Is(err, schedule.ErrShape):
		return locale.T(lang, locale.ParseError)
	case errors.Is(err, schedule.ErrNoSuchGroup):
		return locale.T(lang, locale.GroupDoesNotExist)
	default:
		return locale.T(lang, locale.Error)
	}
}

// ── /start & /changegroup ────────────────────────────────────────────

func (b *Bot) onStart(ctx context.Context, id int64, languageCode string) (reply, error) {
	lang := locale.Normalize(languageCode)
	if err := b.subs.SetLanguage(ctx, id, lang); err != nil {
		return reply{text: locale.T(lang, locale.Error)}, err
	}
	b.setWaiting(id, true)
	return reply{text: locale.T(lang, locale.Welcome), markup: groupMenu(b.groupCount)}, nil
}

func (b *Bot) onChangeGroup(ctx context.Context, id int64) (reply, error) {
	b.setWaiting(id, true)
	return reply{text: locale.T(b.language(ctx, id), locale.ChangeGroup), markup: groupMenu(b.groupCount)}, nil
}

// ── /info & /tomorrow ────────────────────────────────────────────────

func (b *Bot) onInfo(ctx context.Context, id int64, tomorrow bool) (reply, error) {
	lang := b.language(ctx, id)
	sub, ok, err := b.subs.Get(ctx, id)
	if err != nil {
		return reply{text: locale.T(lang, locale.Error)}, err
	}
	if !ok || !sub.HasGroup() {
		return reply{text: locale.T(lang, locale.NoGroupSelected), markup: changeGroupMenu}, nil
	}
	return b.scheduleReply(ctx, lang, sub.Group, tomorrow)
}

func (b *Bot) scheduleReply(ctx context.Context, lang string, group int, tomorrow bool) (reply, error) {
	table, err := b.tables.GetTable(ctx, schedule.Options{Next: tomorrow})
	if err != nil {
		return reply{text: errorText(lang, err)}, err
	}
	intervals, err := table.Intervals(group)
	if err != nil {
		return reply{text: errorText(lang, err)}, nil
	}
	return reply{text: locale.FormatSchedule(lang, group, intervals, tomorrow)}, nil
}

// ── /language & /stop ────────────────────────────────────────────────

func (b *Bot) onLanguage(ctx context.Context, id int64) (reply, error) {
	lang := locale.Ukrainian
	if b.language(ctx, id) == locale.Ukrainian {
		lang = locale.English
	}
	if err := b.subs.SetLanguage(ctx, id, lang); err != nil {
		return reply{text: locale.T(lang, locale.Error)}, err
	}
	return reply{text: locale.T(lang, locale.Language)}, nil
}

func (b *Bot) onStop(ctx context.Context, id int64) (reply, error) {
	lang := b.language(ctx, id)
	b.setWaiting(id, false)
	if err := b.subs.Delete(ctx, id); err != nil {
		return reply{text: locale.T(lang, locale.Error)}, err
	}
	return reply{text: locale.T(lang, locale.Unsubscribed), markup: removeMenu}, nil
}

// ── Numeric text ─────────────────────────────────────────────────────

// onText handles a group number: it either completes a group selection or
// shows that group's schedule. Other text is ignored.
func (b *Bot) onText(ctx context.Context, id int64, text string) (reply, error) {
	if !numericText.MatchString(text) {
		return reply{}, nil
	}
	lang := b.language(ctx, id)

	group, err := strconv.Atoi(text)
	if err != nil || group < 1 || group > b.groupCount {
		return reply{text: locale.T(lang, locale.GroupDoesNotExist)}, nil
	}

	if b.takeWaiting(id) {
		if err := b.subs.SetGroup(ctx, id, group); err != nil {
			b.setWaiting(id, true)
			return reply{text: locale.T(lang, locale.Error)}, err
		}
		log.Infof("user %d subscribed to group %d", id, group)
		return reply{text: locale.T(lang, locale.GroupSelected), markup: removeMenu}, nil
	}

	return b.scheduleReply(ctx, lang, group, false)
}
