package results

import (
	"context"
	"fmt"
	"log"
	"strconv"
	"strings"
	"sync"

	"f1schedulebot/pkg/apps"
	"f1schedulebot/pkg/render"
	"f1schedulebot/pkg/views"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

const (
	commandResults    = "/results_"
	subcommandResults = "results"
	subcommandChart   = "results_chart"
	subcommandRefresh = "results_refresh"

	inlineKeyboardChart   = "Chart"
	inlineKeyboardRefresh = "Refresh"
	symbolChart           = "📊"
	symbolRefresh         = "🔄"
)

type ResultsApp struct {
	bot     apps.Sender
	fetcher views.ResultsFetcher

	mu    sync.Mutex
	views map[int64]*views.ResultsView
}

func NewResultsApp(bot apps.Sender, fetcher views.ResultsFetcher) *ResultsApp {
	return &ResultsApp{
		bot:     bot,
		fetcher: fetcher,
		views:   map[int64]*views.ResultsView{},
	}
}

func (ra *ResultsApp) AcceptCommand(command string) (bool, func(ctx context.Context, chatId int64) error) {
	if !strings.HasPrefix(command, commandResults) {
		return false, nil
	}
	// commands may come suffixed with the bot name in groups
	arg := strings.SplitN(strings.TrimPrefix(command, commandResults), "@", 2)[0]
	meetingKey, err := strconv.Atoi(strings.TrimSpace(arg))
	if err != nil || meetingKey <= 0 {
		return true, func(ctx context.Context, chatId int64) error {
			msg := tgbotapi.NewMessage(chatId, fmt.Sprintf("Invalid meeting %q", arg))
			_, err := ra.bot.Send(msg)
			return err
		}
	}
	return true, ra.renderResults(meetingKey)
}

func (ra *ResultsApp) AcceptButton(button string) (bool, func(ctx context.Context, chatId int64) error) {
	return false, nil
}

func (ra *ResultsApp) AcceptCallback(query *tgbotapi.CallbackQuery) (bool, func(ctx context.Context, query *tgbotapi.CallbackQuery) error) {
	for _, subcommand := range []string{subcommandResults, subcommandChart, subcommandRefresh} {
		data, ok := apps.SplitCallback(query.Data, subcommand, 1)
		if !ok {
			continue
		}
		meetingKey, err := strconv.Atoi(data[0])
		if err != nil {
			return false, nil
		}
		switch subcommand {
		case subcommandChart:
			return true, func(ctx context.Context, query *tgbotapi.CallbackQuery) error {
				return ra.sendChart(ctx, query.Message.Chat.ID, meetingKey)
			}
		case subcommandRefresh:
			return true, func(ctx context.Context, query *tgbotapi.CallbackQuery) error {
				return ra.refresh(ctx, query.Message.Chat.ID, query.Message.MessageID, meetingKey)
			}
		default:
			return true, func(ctx context.Context, query *tgbotapi.CallbackQuery) error {
				return ra.renderResults(meetingKey)(ctx, query.Message.Chat.ID)
			}
		}
	}
	return false, nil
}

func (ra *ResultsApp) view(chatId int64) *views.ResultsView {
	ra.mu.Lock()
	defer ra.mu.Unlock()
	v, ok := ra.views[chatId]
	if !ok {
		v = views.NewResultsView(ra.fetcher)
		ra.views[chatId] = v
	}
	return v
}

func (ra *ResultsApp) renderResults(meetingKey int) func(ctx context.Context, chatId int64) error {
	return func(ctx context.Context, chatId int64) error {
		placeholder, err := apps.SendText(ra.bot, chatId, nil, render.MessageLoadingResults, false, nil)
		if err != nil {
			return err
		}
		state, latest := ra.view(chatId).LoadLatest(ctx, meetingKey)
		if !latest {
			// the newer request answers in its own message
			_, err := apps.SendText(ra.bot, chatId, &placeholder.MessageID, render.MessageSuperseded, false, nil)
			return err
		}
		return ra.sendResults(chatId, &placeholder.MessageID, state)
	}
}

func (ra *ResultsApp) refresh(ctx context.Context, chatId int64, messageId, meetingKey int) error {
	state, latest := ra.view(chatId).LoadLatest(ctx, meetingKey)
	if !latest {
		return nil
	}
	return ra.sendResults(chatId, &messageId, state)
}

func (ra *ResultsApp) sendResults(chatId int64, messageId *int, state views.ResultsState) error {
	keyboard := inlineKeyboard(state.MeetingKey)
	if text, ok := render.ResultsMessage(state); ok {
		_, err := apps.SendText(ra.bot, chatId, messageId, text, false, &keyboard)
		return err
	}
	text := apps.CodeBlock(resultsTitle(state), render.ResultsTable(state.Rows()))
	_, err := apps.SendText(ra.bot, chatId, messageId, text, true, &keyboard)
	return err
}

func (ra *ResultsApp) sendChart(ctx context.Context, chatId int64, meetingKey int) error {
	v := ra.view(chatId)
	state := v.State()
	if state.Status != views.Success || state.MeetingKey != meetingKey {
		var latest bool
		if state, latest = v.LoadLatest(ctx, meetingKey); !latest {
			return nil
		}
	}
	if text, ok := render.ResultsMessage(state); ok {
		_, err := apps.SendText(ra.bot, chatId, nil, text, false, nil)
		return err
	}

	data, err := render.ResultsChartPNG(state.Rows())
	if err != nil {
		log.Printf("An error occured: %s", err)
		_, err = apps.SendText(ra.bot, chatId, nil, render.ErrorMessage(err.Error()), false, nil)
		return err
	}
	photo := tgbotapi.NewPhoto(chatId, tgbotapi.FileBytes{Name: fmt.Sprintf("results-%d.png", meetingKey), Bytes: data})
	photo.Caption = fmt.Sprintf("%s %s", symbolChart, resultsTitle(state))
	_, err = ra.bot.Send(photo)
	return err
}

func resultsTitle(state views.ResultsState) string {
	if state.Session == nil {
		return render.ResultsTitle()
	}
	return fmt.Sprintf("%s - %s", render.ResultsTitle(), state.Session.SessionName)
}

func inlineKeyboard(meetingKey int) tgbotapi.InlineKeyboardMarkup {
	return tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData(inlineKeyboardChart+" "+symbolChart, fmt.Sprintf("%s:%d", subcommandChart, meetingKey)),
			tgbotapi.NewInlineKeyboardButtonData(inlineKeyboardRefresh+" "+symbolRefresh, fmt.Sprintf("%s:%d", subcommandRefresh, meetingKey)),
		),
	)
}
