// Package notify sends workflow notifications to the operator's
// Telegram chat. Everything here is best-effort: a failed send is
// logged and never fails the operation that triggered it.
package notify

import (
	"fmt"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"

	"pliqo-backend/config"
	"pliqo-backend/models"
)

type Telegram struct {
	bot    *tgbotapi.BotAPI
	chatID int64
	log    *zap.Logger
}

// NewTelegram connects the notification bot. Returns (nil, nil) when no
// token is configured, which callers treat as "notifications off".
func NewTelegram(cfg *config.Config, log *zap.Logger) (*Telegram, error) {
	if cfg.TelegramBotToken == "" || cfg.TelegramAdminChatID == 0 {
		return nil, nil
	}
	bot, err := tgbotapi.NewBotAPI(cfg.TelegramBotToken)
	if err != nil {
		return nil, fmt.Errorf("telegram bot init: %w", err)
	}
	if log == nil {
		log = zap.NewNop()
	}
	log.Info("telegram notifications enabled", zap.String("bot", bot.Self.UserName))
	return &Telegram{bot: bot, chatID: cfg.TelegramAdminChatID, log: log}, nil
}

func (t *Telegram) send(text string) {
	msg := tgbotapi.NewMessage(t.chatID, text)
	if _, err := t.bot.Send(msg); err != nil {
		t.log.Warn("telegram send failed", zap.Error(err))
	}
}

// ActivationRequested announces a new payment claim to review.
func (t *Telegram) ActivationRequested(user, sponsor models.User) {
	t.send(fmt.Sprintf("💰 %s claims to have paid plan $%d to %s — review the activation request",
		user.Name, user.Plan, sponsor.Name))
}

// Activated announces a closed activation.
func (t *Telegram) Activated(user, sponsor models.User) {
	t.send(fmt.Sprintf("✅ %s activated %s (plan $%d)", sponsor.Name, user.Name, user.Plan))
}
