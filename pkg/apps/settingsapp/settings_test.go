package settingsapp

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"f1schedulebot/pkg/menus"
	"f1schedulebot/pkg/settings"

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

type menuer struct{}

func (menuer) Menu() tgbotapi.ReplyKeyboardMarkup {
	return tgbotapi.NewReplyKeyboard(tgbotapi.NewKeyboardButtonRow(tgbotapi.NewKeyboardButton("Settings")))
}

func newApp(t *testing.T) (*SettingsApp, *recorder, *settings.Manager) {
	sm, err := settings.NewManager(filepath.Join(t.TempDir(), "settings.db"))
	require.NoError(t, err)
	t.Cleanup(func() { sm.Close() })

	r := &recorder{}
	sa := NewSettingsApp(r, sm, menus.NewApplicationMenu("Settings", "menu", menuer{}))
	sa.now = func() time.Time { return time.Date(2026, 10, 19, 0, 0, 0, 0, time.UTC) }
	return sa, r, sm
}

func callback(data string) *tgbotapi.CallbackQuery {
	return &tgbotapi.CallbackQuery{
		Data:    data,
		Message: &tgbotapi.Message{MessageID: 9, Chat: &tgbotapi.Chat{ID: 5}},
	}
}

func TestSettingsButtonRendersDefaults(t *testing.T) {
	sa, r, _ := newApp(t)

	ok, handler := sa.AcceptButton("Settings")
	require.True(t, ok)
	require.NoError(t, handler(context.Background(), 5))

	msg := r.sent[0].(tgbotapi.MessageConfig)
	assert.Equal(t, "Settings\n\n🔕 Race weekend notifications\n📅 Season: current (2026)", msg.Text)
	keyboard := msg.ReplyMarkup.(tgbotapi.InlineKeyboardMarkup)
	require.Len(t, keyboard.InlineKeyboard, 3)
	assert.Equal(t, "settings_notify", *keyboard.InlineKeyboard[0][0].CallbackData)
	seasons := keyboard.InlineKeyboard[1]
	require.Len(t, seasons, 4)
	assert.Equal(t, "2023", seasons[0].Text)
	assert.Equal(t, "settings_season:2026", *seasons[3].CallbackData)
	assert.Equal(t, "✅ Current", keyboard.InlineKeyboard[2][0].Text)
}

func TestSettingsToggleNotify(t *testing.T) {
	sa, r, sm := newApp(t)

	query := callback("settings_notify")
	ok, handler := sa.AcceptCallback(query)
	require.True(t, ok)
	require.NoError(t, handler(context.Background(), query))

	s, err := sm.Get(5)
	require.NoError(t, err)
	assert.True(t, s.Notify)

	edit := r.sent[0].(tgbotapi.EditMessageTextConfig)
	assert.Equal(t, 9, edit.MessageID)
	assert.Contains(t, edit.Text, "🔔 Race weekend notifications")
}

func TestSettingsSelectSeason(t *testing.T) {
	sa, r, sm := newApp(t)

	query := callback("settings_season:2024")
	ok, handler := sa.AcceptCallback(query)
	require.True(t, ok)
	require.NoError(t, handler(context.Background(), query))

	s, err := sm.Get(5)
	require.NoError(t, err)
	assert.Equal(t, 2024, s.Season)

	edit := r.sent[0].(tgbotapi.EditMessageTextConfig)
	assert.Contains(t, edit.Text, "Season: 2024")
	assert.Equal(t, "✅ 2024", edit.ReplyMarkup.InlineKeyboard[1][1].Text)

	ok, _ = sa.AcceptCallback(callback("settings_season:soon"))
	assert.False(t, ok)
}
