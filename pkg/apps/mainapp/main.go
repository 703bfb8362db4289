package mainapp

import (
	"context"
	"fmt"

	"f1schedulebot/pkg/apps"
	"f1schedulebot/pkg/apps/results"
	"f1schedulebot/pkg/apps/schedule"
	"f1schedulebot/pkg/apps/settingsapp"
	"f1schedulebot/pkg/menus"
	"f1schedulebot/pkg/openf1"
	"f1schedulebot/pkg/settings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

const (
	menuStart      = "/start"
	menuMenu       = "/menu"
	buttonSchedule = "Schedule"
	buttonSettings = "Settings"
	appName        = "menu"
)

var (
	menuKeyboard = tgbotapi.NewReplyKeyboard(
		tgbotapi.NewKeyboardButtonRow(
			tgbotapi.NewKeyboardButton(buttonSchedule),
			tgbotapi.NewKeyboardButton(buttonSettings),
		),
	)
)

type menuer struct{}

func (m menuer) Menu() tgbotapi.ReplyKeyboardMarkup {
	return menuKeyboard
}

type MainApp struct {
	bot       apps.Sender
	accepters []apps.Accepter
}

func NewMainApp(bot apps.Sender, client *openf1.Client, sm *settings.Manager) *MainApp {
	scheduleAppMenu := menus.NewApplicationMenu(buttonSchedule, appName, menuer{})
	scheduleApp := schedule.NewScheduleApp(bot, client, sm, scheduleAppMenu)

	resultsApp := results.NewResultsApp(bot, client)

	settingsAppMenu := menus.NewApplicationMenu(buttonSettings, appName, menuer{})
	settingsApp := settingsapp.NewSettingsApp(bot, sm, settingsAppMenu)

	return &MainApp{
		bot:       bot,
		accepters: []apps.Accepter{scheduleApp, resultsApp, settingsApp},
	}
}

func (m *MainApp) AcceptCommand(command string) (bool, func(ctx context.Context, chatId int64) error) {
	if command == menuStart {
		return true, m.renderStart()
	} else if command == menuMenu {
		return true, m.renderMenu()
	}
	for _, accepter := range m.accepters {
		accept, handler := accepter.AcceptCommand(command)
		if accept {
			return true, handler
		}
	}

	return false, nil
}

func (m *MainApp) AcceptCallback(query *tgbotapi.CallbackQuery) (bool, func(ctx context.Context, query *tgbotapi.CallbackQuery) error) {
	for _, accepter := range m.accepters {
		accept, handler := accepter.AcceptCallback(query)
		if accept {
			return true, handler
		}
	}

	return false, nil
}

func (m *MainApp) AcceptButton(button string) (bool, func(ctx context.Context, chatId int64) error) {
	for _, accepter := range m.accepters {
		accept, handler := accepter.AcceptButton(button)
		if accept {
			return true, handler
		}
	}
	return false, nil
}

func (m *MainApp) renderStart() func(ctx context.Context, chatId int64) error {
	return func(ctx context.Context, chatId int64) error {
		message := "Hi, I am a bot that shows the Formula 1 schedule and race results.\n\n"
		message += "You can use these commands:\n\n"
		message += fmt.Sprintf("%s - Shows the bot menu\n", menuMenu)
		message += "/schedule <year> - Shows the schedule of a season\n"
		message += "/results_<meeting> - Shows the race results of a meeting\n"
		msg := tgbotapi.NewMessage(chatId, message)
		msg.ReplyMarkup = menuKeyboard
		_, err := m.bot.Send(msg)
		return err
	}
}

func (m *MainApp) renderMenu() func(ctx context.Context, chatId int64) error {
	return func(ctx context.Context, chatId int64) error {
		message := "Bot menu.\n\n"
		msg := tgbotapi.NewMessage(chatId, message)
		msg.ReplyMarkup = menuKeyboard
		_, err := m.bot.Send(msg)
		return err
	}
}
