package settingsapp

import (
	"context"
	"fmt"
	"log"
	"strconv"
	"time"

	"f1schedulebot/pkg/apps"
	"f1schedulebot/pkg/menus"
	"f1schedulebot/pkg/settings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

const (
	subcommandNotify = "settings_notify"
	subcommandSeason = "settings_season"
	seasonsShown     = 4

	inlineKeyboardNotifications = "Race weekends"
	inlineKeyboardCurrent       = "Current"
	symbolSelected              = "✅"
)

type Store interface {
	Get(chatID int64) (settings.ChatSettings, error)
	SetSeason(chatID int64, season int) error
	ToggleNotify(chatID int64) (settings.ChatSettings, error)
}

type SettingsApp struct {
	bot     apps.Sender
	sm      Store
	appMenu menus.ApplicationMenu
	now     func() time.Time
}

func NewSettingsApp(bot apps.Sender, sm Store, appMenu menus.ApplicationMenu) *SettingsApp {
	return &SettingsApp{
		bot:     bot,
		sm:      sm,
		appMenu: appMenu,
		now:     time.Now,
	}
}

func (sa *SettingsApp) AcceptCommand(command string) (bool, func(ctx context.Context, chatId int64) error) {
	return false, nil
}

func (sa *SettingsApp) AcceptButton(button string) (bool, func(ctx context.Context, chatId int64) error) {
	if button == sa.appMenu.Name {
		return true, sa.renderSettings(nil)
	}
	return false, nil
}

func (sa *SettingsApp) AcceptCallback(query *tgbotapi.CallbackQuery) (bool, func(ctx context.Context, query *tgbotapi.CallbackQuery) error) {
	if _, ok := apps.SplitCallback(query.Data, subcommandNotify, 0); ok {
		return true, func(ctx context.Context, query *tgbotapi.CallbackQuery) error {
			if _, err := sa.sm.ToggleNotify(query.Message.Chat.ID); err != nil {
				return sa.renderFailure(query.Message.Chat.ID, "Could not change the notification status", err)
			}
			return sa.renderSettings(&query.Message.MessageID)(ctx, query.Message.Chat.ID)
		}
	}
	if data, ok := apps.SplitCallback(query.Data, subcommandSeason, 1); ok {
		season, err := strconv.Atoi(data[0])
		if err != nil || season < 0 {
			return false, nil
		}
		return true, func(ctx context.Context, query *tgbotapi.CallbackQuery) error {
			if err := sa.sm.SetSeason(query.Message.Chat.ID, season); err != nil {
				return sa.renderFailure(query.Message.Chat.ID, "Could not change the season", err)
			}
			return sa.renderSettings(&query.Message.MessageID)(ctx, query.Message.Chat.ID)
		}
	}
	return false, nil
}

func (sa *SettingsApp) renderFailure(chatId int64, message string, err error) error {
	log.Printf("An error occured: %s", err)
	msg := tgbotapi.NewMessage(chatId, message)
	msg.ReplyMarkup = sa.appMenu.PrevMenu()
	_, err = sa.bot.Send(msg)
	return err
}

func (sa *SettingsApp) renderSettings(messageID *int) func(ctx context.Context, chatId int64) error {
	return func(ctx context.Context, chatId int64) error {
		s, err := sa.sm.Get(chatId)
		if err != nil {
			return sa.renderFailure(chatId, "Could not read the chat settings", err)
		}
		keyboard := sa.inlineKeyboard(s)
		_, err = apps.SendText(sa.bot, chatId, messageID, sa.text(s), false, &keyboard)
		return err
	}
}

func (sa *SettingsApp) text(s settings.ChatSettings) string {
	season := fmt.Sprintf("%d", s.Season)
	if s.Season == 0 {
		season = fmt.Sprintf("current (%d)", sa.now().Year())
	}
	return fmt.Sprintf("Settings\n\n%s Race weekend notifications\n📅 Season: %s", s.NotifySymbol(), season)
}

func (sa *SettingsApp) inlineKeyboard(s settings.ChatSettings) tgbotapi.InlineKeyboardMarkup {
	seasonButton := func(label string, season int) tgbotapi.InlineKeyboardButton {
		if s.Season == season {
			label = symbolSelected + " " + label
		}
		return tgbotapi.NewInlineKeyboardButtonData(label, fmt.Sprintf("%s:%d", subcommandSeason, season))
	}

	current := sa.now().Year()
	seasons := []tgbotapi.InlineKeyboardButton{}
	for year := current - seasonsShown + 1; year <= current; year++ {
		seasons = append(seasons, seasonButton(strconv.Itoa(year), year))
	}

	return tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData(inlineKeyboardNotifications+" "+s.NotifySymbol(), subcommandNotify),
		),
		seasons,
		tgbotapi.NewInlineKeyboardRow(seasonButton(inlineKeyboardCurrent, 0)),
	)
}
