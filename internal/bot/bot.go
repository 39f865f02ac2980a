package bot

import (
	"context"
	"fmt"
	"strconv"
	"sync"
	"time"

	tele "gopkg.in/telebot.v3"

	"shutdowns-bot/internal/logger"
	"shutdowns-bot/internal/schedule"
	"shutdowns-bot/internal/store"
)

var log = logger.New("bot")

// TableSource is the schedule cache as seen by the bot.
type TableSource interface {
	GetTable(ctx context.Context, opts schedule.Options) (schedule.Table, error)
}

// Bot wraps the Telegram bot and the group selection flow.
type Bot struct {
	bot        *tele.Bot
	subs       store.Store
	tables     TableSource
	groupCount int

	// users who were shown the group keyboard and whose next number picks a group
	waiting map[int64]bool
	mu      sync.Mutex
}

// reply is what a handler answers with; markup may be nil.
type reply struct {
	text   string
	markup *tele.ReplyMarkup
}

var removeMenu = &tele.ReplyMarkup{RemoveKeyboard: true}

// groupMenu lays the group numbers out three per row.
func groupMenu(groupCount int) *tele.ReplyMarkup {
	var rows [][]tele.ReplyButton
	var row []tele.ReplyButton
	for g := 1; g <= groupCount; g++ {
		row = append(row, tele.ReplyButton{Text: strconv.Itoa(g)})
		if len(row) == 3 {
			rows = append(rows, row)
			row = nil
		}
	}
	if len(row) > 0 {
		rows = append(rows, row)
	}
	return &tele.ReplyMarkup{ResizeKeyboard: true, OneTimeKeyboard: true, ReplyKeyboard: rows}
}

var changeGroupMenu = &tele.ReplyMarkup{
	ResizeKeyboard:  true,
	OneTimeKeyboard: true,
	ReplyKeyboard:   [][]tele.ReplyButton{{{Text: "/changegroup"}}},
}

func newBot(subs store.Store, tables TableSource, groupCount int) *Bot {
	return &Bot{
		subs:       subs,
		tables:     tables,
		groupCount: groupCount,
		waiting:    make(map[int64]bool),
	}
}

// New creates and configures the Telegram bot.
func New(token string, subs store.Store, tables TableSource, groupCount int) (*Bot, error) {
	pref := tele.Settings{
		Token:  token,
		Poller: &tele.LongPoller{Timeout: 10 * time.Second},
	}

	b, err := tele.NewBot(pref)
	if err != nil {
		return nil, fmt.Errorf("create bot: %w", err)
	}

	bot := newBot(subs, tables, groupCount)
	bot.bot = b
	bot.registerHandlers()

	if err := b.SetCommands([]tele.Command{
		{Text: "info", Description: "Графік на сьогодні"},
		{Text: "tomorrow", Description: "Графік на завтра"},
		{Text: "changegroup", Description: "Змінити групу"},
		{Text: "language", Description: "Українська / English"},
		{Text: "stop", Description: "Відписатися від сповіщень"},
	}); err != nil {
		log.Warnf("failed to set commands: %v", err)
	}

	return bot, nil
}

// Start begins polling for Telegram updates. Call as a goroutine.
func (b *Bot) Start() {
	log.Infof("starting Telegram bot polling...")
	b.bot.Start()
}

// Stop gracefully stops the bot.
func (b *Bot) Stop() {
	b.bot.Stop()
}

// TeleBot returns the underlying telebot instance (used by the sender).
func (b *Bot) TeleBot() *tele.Bot {
	return b.bot
}

func (b *Bot) registerHandlers() {
	b.bot.Handle("/start", b.handle(func(ctx context.Context, c tele.Context) (reply, error) {
		return b.onStart(ctx, c.Sender().ID, c.Sender().LanguageCode)
	}))
	b.bot.Handle("/changegroup", b.handle(func(ctx context.Context, c tele.Context) (reply, error) {
		return b.onChangeGroup(ctx, c.Sender().ID)
	}))
	b.bot.Handle("/info", b.handle(func(ctx context.Context, c tele.Context) (reply, error) {
		return b.onInfo(ctx, c.Sender().ID, false)
	}))
	b.bot.Handle("/tomorrow", b.handle(func(ctx context.Context, c tele.Context) (reply, error) {
		return b.onInfo(ctx, c.Sender().ID, true)
	}))
	b.bot.Handle("/language", b.handle(func(ctx context.Context, c tele.Context) (reply, error) {
		return b.onLanguage(ctx, c.Sender().ID)
	}))
	b.bot.Handle("/stop", b.handle(func(ctx context.Context, c tele.Context) (reply, error) {
		return b.onStop(ctx, c.Sender().ID)
	}))
	b.bot.Handle(tele.OnText, b.handle(func(ctx context.Context, c tele.Context) (reply, error) {
		return b.onText(ctx, c.Sender().ID, c.Text())
	}))
}

// handle adapts a reply function to telebot. An empty reply sends nothing.
func (b *Bot) handle(fn func(context.Context, tele.Context) (reply, error)) tele.HandlerFunc {
	return func(c tele.Context) error {
		ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
		defer cancel()

		log.Debugf("%q from user %d (@%s)", c.Text(), c.Sender().ID, c.Sender().Username)
		r, err := fn(ctx, c)
		if err != nil {
			log.Errorf("handler error for user %d: %v", c.Sender().ID, err)
		}
		if r.text == "" {
			return nil
		}
		if r.markup != nil {
			return c.Send(r.text, r.markup)
		}
		return c.Send(r.text)
	}
}
