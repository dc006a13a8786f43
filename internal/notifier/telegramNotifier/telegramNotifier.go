package telegramNotifier

import (
	"context"
	"log/slog"

	"github.com/ljwu/holdings-monitor/config"
	"github.com/ljwu/holdings-monitor/utils"
	tele "gopkg.in/telebot.v4"
)

// TelegramNotifier mirrors the push message into a Telegram chat. The bot is
// send-only; no poller is started.
type TelegramNotifier struct {
	bot    *tele.Bot
	chatID int64
}

func New(cfg *config.Config) (*TelegramNotifier, error) {
	settings := tele.Settings{
		Token:   cfg.Telegram.Token,
		Offline: false,
	}

	b, err := tele.NewBot(settings)
	if err != nil {
		slog.Error("error while tele.NewBot", slog.String("err", err.Error()))
		return nil, err
	}

	return &TelegramNotifier{bot: b, chatID: cfg.Telegram.ChatID}, nil
}

func (n *TelegramNotifier) Name() string { return "telegram" }

func (n *TelegramNotifier) Enabled() bool { return n.chatID != 0 }

func (n *TelegramNotifier) Deliver(ctx context.Context, title, body string) bool {
	rqID := utils.GetRequestIDFromCtx(ctx)
	op := "TelegramNotifier.Deliver"

	msg := title + "\n" + body
	_, err := n.bot.Send(tele.ChatID(n.chatID), msg, tele.ModeDefault)
	if err != nil {
		slog.Error("telegram delivery failed", slog.String("rqID", rqID), slog.String("op", op), slog.String("err", err.Error()))
		return false
	}

	return true
}
