package services

import (
	"fmt"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/sirupsen/logrus"
)

// TelegramService pushes task and security notifications into a team chat.
// A nil service (no token configured) silently skips every send.
type TelegramService struct {
	bot    *tgbotapi.BotAPI
	chatID int64
	log    *logrus.Logger
}

func NewTelegramService(botToken string, chatID int64, log *logrus.Logger) (*TelegramService, error) {
	if botToken == "" || chatID == 0 {
		return nil, nil
	}
	bot, err := tgbotapi.NewBotAPI(botToken)
	if err != nil {
		return nil, fmt.Errorf("telegram bot init: %w", err)
	}
	return &TelegramService{bot: bot, chatID: chatID, log: log}, nil
}

func (t *TelegramService) send(text string) {
	if t == nil || t.bot == nil {
		return
	}
	msg := tgbotapi.NewMessage(t.chatID, text)
	msg.ParseMode = tgbotapi.ModeHTML
	msg.DisableWebPagePreview = true
	if _, err := t.bot.Send(msg); err != nil {
		t.log.WithField("operation", "services.Telegram.send").
			WithError(err).Warn("telegram send failed")
	}
}

func (t *TelegramService) NotifyTaskAssigned(title, assigneeName string) {
	t.send(fmt.Sprintf("📌 Task assigned to <b>%s</b>: %s", assigneeName, title))
}

func (t *TelegramService) NotifyStatusChanged(title, from, to string) {
	t.send(fmt.Sprintf("🔄 Task <b>%s</b>: %s → %s", title, from, to))
}

func (t *TelegramService) NotifyAccountLocked(email string) {
	t.send(fmt.Sprintf("🔒 Account locked after repeated failed logins: <b>%s</b>", email))
}
