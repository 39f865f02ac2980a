package bot

import (
	"context"
	"errors"

	tele "gopkg.in/telebot.v3"
)

// Forgetter drops a subscriber that can no longer be reached.
type Forgetter interface {
	Delete(ctx context.Context, telegramID int64) error
}

// TelegramSender delivers job notifications to users.
type TelegramSender struct {
	bot  *tele.Bot
	subs Forgetter
}

func NewSender(b *tele.Bot, subs Forgetter) *TelegramSender {
	return &TelegramSender{bot: b, subs: subs}
}

// Send delivers text to a user's private chat. Users who blocked the bot or
// deleted their account are removed from the subscriber list.
func (s *TelegramSender) Send(ctx context.Context, chatID int64, text string, silent bool) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	_, err := s.bot.Send(&tele.Chat{ID: chatID}, text, &tele.SendOptions{DisableNotification: silent})
	if err == nil {
		return nil
	}
	if isUnreachable(err) && s.subs != nil {
		log.Infof("user %d is unreachable (%v), removing subscription", chatID, err)
		if delErr := s.subs.Delete(ctx, chatID); delErr != nil {
			log.Errorf("failed to remove subscriber %d: %v", chatID, delErr)
		}
	}
	return err
}

// isUnreachable reports whether a Telegram API error means the user can't be
// messaged anymore.
func isUnreachable(err error) bool {
	return errors.Is(err, tele.ErrBlockedByUser) ||
		errors.Is(err, tele.ErrUserIsDeactivated) ||
		errors.Is(err, tele.ErrChatNotFound)
}
