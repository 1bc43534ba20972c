package notify

import (
	"context"
	"errors"
	"fmt"
	"html"
	"strconv"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

// MaxMessageLength is the Bot API limit for a single text message.
const MaxMessageLength = 4096

const (
	preOpen  = "<pre>"
	preClose = "</pre>"
)

type botSender interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
}

// TelegramChannel posts messages through the Telegram Bot API.
type TelegramChannel struct {
	bot botSender
}

// TelegramOpener returns an Opener that logs the bot in with token.
func TelegramOpener(token string) Opener {
	return func(ctx context.Context) (Channel, error) {
		if token == "" {
			return nil, errors.New("telegram: empty bot token")
		}
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		bot, err := tgbotapi.NewBotAPI(token)
		if err != nil {
			return nil, fmt.Errorf("telegram: login: %w", err)
		}
		return &TelegramChannel{bot: bot}, nil
	}
}

// Send delivers msg to dest, a numeric chat id or an @channel username.
// Text over MaxMessageLength is split on line boundaries into several
// messages sent in order.
func (t *TelegramChannel) Send(ctx context.Context, dest string, msg Message) error {
	limit := MaxMessageLength
	if msg.Monospace {
		limit -= len(preOpen) + len(preClose)
	}

	for _, chunk := range splitText(msg.Text, limit) {
		if err := ctx.Err(); err != nil {
			return err
		}
		cfg, err := newMessage(dest, chunk)
		if err != nil {
			return err
		}
		if msg.Monospace {
			cfg.Text = preOpen + html.EscapeString(chunk) + preClose
			cfg.ParseMode = tgbotapi.ModeHTML
		}
		if _, err := t.bot.Send(cfg); err != nil {
			return fmt.Errorf("telegram: send to %s: %w", dest, err)
		}
	}
	return nil
}

func (t *TelegramChannel) Close() error {
	t.bot = nil
	return nil
}

func newMessage(dest, text string) (tgbotapi.MessageConfig, error) {
	dest = strings.TrimSpace(dest)
	if strings.HasPrefix(dest, "@") {
		return tgbotapi.NewMessageToChannel(dest, text), nil
	}
	id, err := strconv.ParseInt(dest, 10, 64)
	if err != nil {
		return tgbotapi.MessageConfig{}, fmt.Errorf("telegram: invalid chat id %q", dest)
	}
	return tgbotapi.NewMessage(id, text), nil
}

// splitText cuts s into pieces of at most limit runes, breaking after a
// newline where possible.
func splitText(s string, limit int) []string {
	if len([]rune(s)) <= limit {
		return []string{s}
	}

	var chunks []string
	var cur []rune
	flush := func() {
		if chunk := strings.TrimRight(string(cur), "\n"); chunk != "" {
			chunks = append(chunks, chunk)
		}
		cur = cur[:0]
	}

	for _, line := range strings.SplitAfter(s, "\n") {
		r := []rune(line)
		if len(cur)+len(r) > limit {
			flush()
		}
		for len(r) > limit {
			chunks = append(chunks, string(r[:limit]))
			r = r[limit:]
		}
		cur = append(cur, r...)
	}
	flush()
	return chunks
}
