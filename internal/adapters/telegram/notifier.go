package telegram

import (
	"fmt"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"

	"github.com/selivandex/market-scanner/internal/adapters/config"
	"github.com/selivandex/market-scanner/pkg/logger"
)

// Notifier sends scanner messages to the configured Telegram channel.
// Delivery is best-effort: callers log failures and move on, they never abort
// a cycle over a missed message.
type Notifier struct {
	api     *tgbotapi.BotAPI
	chatID  int64
	enabled bool
}

// NewNotifier creates Telegram notifier. Missing credentials produce a
// disabled notifier that drops messages with a warning instead of failing
// startup.
func NewNotifier(cfg *config.TelegramConfig) (*Notifier, error) {
	if !cfg.NotificationsEnabled() {
		logger.Warn("telegram credentials not set, notifications disabled")
		return &Notifier{enabled: false}, nil
	}

	bot, err := tgbotapi.NewBotAPI(cfg.BotToken)
	if err != nil {
		return nil, fmt.Errorf("failed to create bot API: %w", err)
	}

	bot.Debug = false

	logger.Info("telegram notifier initialized",
		zap.String("bot_username", bot.Self.UserName),
	)

	return &Notifier{
		api:     bot,
		chatID:  cfg.ChatID,
		enabled: true,
	}, nil
}

// Send sends a plain text message
func (n *Notifier) Send(text string) error {
	if !n.enabled {
		logger.Debug("notification dropped, notifier disabled")
		return nil
	}

	msg := tgbotapi.NewMessage(n.chatID, text)
	msg.ParseMode = "Markdown"

	if _, err := n.api.Send(msg); err != nil {
		return fmt.Errorf("failed to send message: %w", err)
	}

	return nil
}

// SendWithLink sends a message with a single inline URL button
func (n *Notifier) SendWithLink(text, label, url string) error {
	if !n.enabled {
		logger.Debug("notification dropped, notifier disabled")
		return nil
	}

	msg := tgbotapi.NewMessage(n.chatID, text)
	msg.ParseMode = "Markdown"
	msg.ReplyMarkup = tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonURL(label, url),
		),
	)

	if _, err := n.api.Send(msg); err != nil {
		return fmt.Errorf("failed to send message: %w", err)
	}

	return nil
}
