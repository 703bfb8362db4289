package apps

import (
	"testing"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recorder struct {
	sent []tgbotapi.Chattable
}

func (r *recorder) Send(c tgbotapi.Chattable) (tgbotapi.Message, error) {
	r.sent = append(r.sent, c)
	return tgbotapi.Message{MessageID: len(r.sent)}, nil
}

func TestSendTextNewAndEdit(t *testing.T) {
	r := &recorder{}
	keyboard := tgbotapi.NewInlineKeyboardMarkup(tgbotapi.NewInlineKeyboardRow(tgbotapi.NewInlineKeyboardButtonData("a", "b")))

	msg, err := SendText(r, 1, nil, "hello", true, &keyboard)
	require.NoError(t, err)
	assert.Equal(t, 1, msg.MessageID)

	id := 5
	_, err = SendText(r, 1, &id, "bye", false, nil)
	require.NoError(t, err)

	require.Len(t, r.sent, 2)
	first := r.sent[0].(tgbotapi.MessageConfig)
	assert.Equal(t, tgbotapi.ModeMarkdownV2, first.ParseMode)
	assert.Equal(t, keyboard, first.ReplyMarkup)
	edit := r.sent[1].(tgbotapi.EditMessageTextConfig)
	assert.Equal(t, 5, edit.MessageID)
	assert.Equal(t, "", edit.ParseMode)
	assert.Nil(t, edit.ReplyMarkup)
}

func TestCodeBlockEscapes(t *testing.T) {
	assert.Equal(t, "```\nA\\`B\n\nx\\\\y```", CodeBlock("A`B", "x\\y"))
}

func TestSplitCallback(t *testing.T) {
	args, ok := SplitCallback("schedule:2025:1", "schedule", 2)
	assert.True(t, ok)
	assert.Equal(t, []string{"2025", "1"}, args)

	_, ok = SplitCallback("schedule:2025", "schedule", 2)
	assert.False(t, ok)
	_, ok = SplitCallback("results:1", "schedule", 0)
	assert.False(t, ok)
}
