package schedule

import (
	"context"
	"fmt"
	"log"
	"strconv"
	"strings"
	"sync"
	"time"

	"f1schedulebot/pkg/apps"
	"f1schedulebot/pkg/menus"
	"f1schedulebot/pkg/render"
	"f1schedulebot/pkg/settings"
	"f1schedulebot/pkg/views"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

const (
	commandSchedule    = "/schedule"
	subcommandSchedule = "schedule"
	subcommandResults  = "results"
	MeetingsPerPage    = 8
	buttonsPerRow      = 4

	symbolFirst = "⏮"
	symbolPrev  = "◀️"
	symbolNext  = "▶️"
	symbolLast  = "⏭"
)

type SeasonGetter interface {
	Get(chatID int64) (settings.ChatSettings, error)
}

type ScheduleApp struct {
	bot     apps.Sender
	fetcher views.ScheduleFetcher
	seasons SeasonGetter
	appMenu menus.ApplicationMenu
	now     func() time.Time

	mu    sync.Mutex
	views map[int64]*views.ScheduleView
}

func NewScheduleApp(bot apps.Sender, fetcher views.ScheduleFetcher, seasons SeasonGetter, appMenu menus.ApplicationMenu) *ScheduleApp {
	return &ScheduleApp{
		bot:     bot,
		fetcher: fetcher,
		seasons: seasons,
		appMenu: appMenu,
		now:     time.Now,
		views:   map[int64]*views.ScheduleView{},
	}
}

func (sa *ScheduleApp) AcceptCommand(command string) (bool, func(ctx context.Context, chatId int64) error) {
	fields := strings.Fields(command)
	if len(fields) == 0 || fields[0] != commandSchedule {
		return false, nil
	}
	if len(fields) == 1 {
		return true, sa.renderSchedule(0)
	}
	year, err := strconv.Atoi(fields[1])
	if err != nil || year < 1950 {
		return true, func(ctx context.Context, chatId int64) error {
			msg := tgbotapi.NewMessage(chatId, fmt.Sprintf("Invalid season %q. Usage: %s <year>", fields[1], commandSchedule))
			_, err := sa.bot.Send(msg)
			return err
		}
	}
	return true, sa.renderSchedule(year)
}

func (sa *ScheduleApp) AcceptButton(button string) (bool, func(ctx context.Context, chatId int64) error) {
	if button == sa.appMenu.Name {
		return true, sa.renderSchedule(0)
	}
	return false, nil
}

func (sa *ScheduleApp) AcceptCallback(query *tgbotapi.CallbackQuery) (bool, func(ctx context.Context, query *tgbotapi.CallbackQuery) error) {
	data, ok := apps.SplitCallback(query.Data, subcommandSchedule, 2)
	if !ok {
		return false, nil
	}
	return true, func(ctx context.Context, query *tgbotapi.CallbackQuery) error {
		year, _ := strconv.Atoi(data[0])
		page, _ := strconv.Atoi(data[1])
		return sa.handlePagerCallbackQuery(ctx, query.Message.Chat.ID, query.Message.MessageID, year, page)
	}
}

func (sa *ScheduleApp) view(chatId int64) *views.ScheduleView {
	sa.mu.Lock()
	defer sa.mu.Unlock()
	v, ok := sa.views[chatId]
	if !ok {
		v = views.NewScheduleView(sa.fetcher)
		sa.views[chatId] = v
	}
	return v
}

// season resolves the season to show: an explicit year, else the chat's
// default, else the current year.
func (sa *ScheduleApp) season(chatId int64, year int) int {
	if year > 0 {
		return year
	}
	if sa.seasons != nil {
		s, err := sa.seasons.Get(chatId)
		if err != nil {
			log.Printf("An error occured: %s", err)
		} else if s.Season > 0 {
			return s.Season
		}
	}
	return sa.now().Year()
}

func (sa *ScheduleApp) renderSchedule(year int) func(ctx context.Context, chatId int64) error {
	return func(ctx context.Context, chatId int64) error {
		year := sa.season(chatId, year)
		placeholder, err := apps.SendText(sa.bot, chatId, nil, render.MessageLoadingSchedule, false, nil)
		if err != nil {
			return err
		}
		state, latest := sa.view(chatId).LoadLatest(ctx, year)
		if !latest {
			// the newer request answers in its own message
			_, err := apps.SendText(sa.bot, chatId, &placeholder.MessageID, render.MessageSuperseded, false, nil)
			return err
		}
		return sa.sendSchedule(chatId, &placeholder.MessageID, state, 0)
	}
}

func (sa *ScheduleApp) handlePagerCallbackQuery(ctx context.Context, chatId int64, messageId, year, page int) error {
	v := sa.view(chatId)
	state := v.State()
	if state.Status != views.Success || state.Year != year {
		var latest bool
		if state, latest = v.LoadLatest(ctx, year); !latest {
			return nil
		}
	}
	return sa.sendSchedule(chatId, &messageId, state, page)
}

func (sa *ScheduleApp) sendSchedule(chatId int64, messageId *int, state views.ScheduleState, page int) error {
	if text, ok := render.ScheduleMessage(state); ok {
		_, err := apps.SendText(sa.bot, chatId, messageId, text, false, nil)
		return err
	}

	rows := state.Rows()
	page = clampPage(page, Pages(len(rows)))
	start := page * MeetingsPerPage
	end := start + MeetingsPerPage
	if end > len(rows) {
		end = len(rows)
	}
	pageRows := rows[start:end]

	text := apps.CodeBlock(render.ScheduleTitle(state.Year), render.ScheduleTable(pageRows))
	keyboard := inlineKeyboard(state.Year, page, Pages(len(rows)), pageRows)
	_, err := apps.SendText(sa.bot, chatId, messageId, text, true, &keyboard)
	return err
}

func Pages(count int) int {
	if count == 0 {
		return 1
	}
	return (count + MeetingsPerPage - 1) / MeetingsPerPage
}

func clampPage(page, pages int) int {
	if page < 0 {
		return 0
	}
	if page >= pages {
		return pages - 1
	}
	return page
}

func inlineKeyboard(year, page, pages int, rows []views.ScheduleRow) tgbotapi.InlineKeyboardMarkup {
	keyboard := [][]tgbotapi.InlineKeyboardButton{}

	var current []tgbotapi.InlineKeyboardButton
	for _, row := range rows {
		current = append(current, tgbotapi.NewInlineKeyboardButtonData(
			fmt.Sprintf("R%d", row.Round),
			fmt.Sprintf("%s:%d", subcommandResults, row.MeetingKey),
		))
		if len(current) == buttonsPerRow {
			keyboard = append(keyboard, current)
			current = nil
		}
	}
	if len(current) > 0 {
		keyboard = append(keyboard, current)
	}

	if pages > 1 {
		pager := func(symbol string, target int) tgbotapi.InlineKeyboardButton {
			return tgbotapi.NewInlineKeyboardButtonData(symbol, fmt.Sprintf("%s:%d:%d", subcommandSchedule, year, clampPage(target, pages)))
		}
		keyboard = append(keyboard, tgbotapi.NewInlineKeyboardRow(
			pager(symbolFirst, 0),
			pager(symbolPrev, page-1),
			pager(symbolNext, page+1),
			pager(symbolLast, pages-1),
		))
	}
	return tgbotapi.NewInlineKeyboardMarkup(keyboard...)
}
