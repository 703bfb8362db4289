package apps

import (
	"context"
	"fmt"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

type Accepter interface {
	AcceptCommand(command string) (bool, func(ctx context.Context, chatId int64) error)
	AcceptButton(button string) (bool, func(ctx context.Context, chatId int64) error)
	AcceptCallback(query *tgbotapi.CallbackQuery) (bool, func(ctx context.Context, query *tgbotapi.CallbackQuery) error)
}

// Sender is the part of *tgbotapi.BotAPI the applications talk to.
type Sender interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
}

// SendText sends a new message when messageId is nil and edits it otherwise.
// Markdown texts are sent as MarkdownV2.
func SendText(bot Sender, chatId int64, messageId *int, text string, markdown bool, keyboard *tgbotapi.InlineKeyboardMarkup) (tgbotapi.Message, error) {
	var cfg tgbotapi.Chattable
	if messageId == nil {
		msg := tgbotapi.NewMessage(chatId, text)
		if markdown {
			msg.ParseMode = tgbotapi.ModeMarkdownV2
		}
		if keyboard != nil {
			msg.ReplyMarkup = *keyboard
		}
		cfg = msg
	} else {
		msg := tgbotapi.NewEditMessageText(chatId, *messageId, text)
		if markdown {
			msg.ParseMode = tgbotapi.ModeMarkdownV2
		}
		msg.ReplyMarkup = keyboard
		cfg = msg
	}
	return bot.Send(cfg)
}

// CodeBlock wraps a title and a rendered table in a MarkdownV2 code block.
func CodeBlock(title, body string) string {
	r := strings.NewReplacer("\\", "\\\\", "`", "\\`")
	return fmt.Sprintf("```\n%s\n\n%s```", r.Replace(title), r.Replace(body))
}

// SplitCallback splits callback data and reports whether it belongs to
// subcommand and carries at least n arguments.
func SplitCallback(data, subcommand string, n int) ([]string, bool) {
	parts := strings.Split(data, ":")
	if parts[0] != subcommand || len(parts)-1 < n {
		return nil, false
	}
	return parts[1:], true
}
