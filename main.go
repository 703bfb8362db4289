package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"f1schedulebot/pkg/apps"
	"f1schedulebot/pkg/apps/mainapp"
	"f1schedulebot/pkg/config"
	"f1schedulebot/pkg/mockapi"
	"f1schedulebot/pkg/notification"
	"f1schedulebot/pkg/openf1"
	"f1schedulebot/pkg/settings"
	"f1schedulebot/pkg/webserver"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"golang.org/x/sync/errgroup"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Panic(err)
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	apiURL := cfg.OpenF1URL
	if cfg.MockAPI {
		mock, err := mockapi.NewServer()
		if err != nil {
			log.Panic(err)
		}
		apiURL, err = mock.Start(ctx, "127.0.0.1:0")
		if err != nil {
			log.Panic(err)
		}
	}
	client := openf1.NewClient(apiURL, nil)

	sm, err := settings.NewManager(cfg.SettingsDB)
	if err != nil {
		log.Panic(err)
	}
	defer sm.Close()

	g, ctx := errgroup.WithContext(ctx)

	wm := webserver.NewManager(cfg.WebserverAddress, client)
	if cfg.Debug {
		wm.Debug()
	}
	g.Go(func() error {
		return wm.Serve(ctx)
	})

	if cfg.TelegramToken == "" {
		log.Println("TELEGRAM_TOKEN is not set, only the web front is served")
	} else {
		bot, err := tgbotapi.NewBotAPI(cfg.TelegramToken)
		if err != nil {
			// Abort if something is wrong
			log.Panic(err)
		}

		// DEBUG=true logs all interactions with telegram servers
		bot.Debug = cfg.Debug

		mainApp := mainapp.NewMainApp(bot, client, sm)

		nm := notification.NewManager(bot, client, sm, cfg.NotificationInterval)
		g.Go(func() error {
			nm.Start(ctx)
			return nil
		})

		u := tgbotapi.NewUpdate(0)
		u.Timeout = 60
		updates := bot.GetUpdatesChan(u)
		g.Go(func() error {
			receiveUpdates(ctx, bot, mainApp, updates)
			bot.StopReceivingUpdates()
			return nil
		})

		log.Println("Start listening for updates. Press Ctrl-C to stop it")
	}

	if err := g.Wait(); err != nil {
		log.Printf("An error occured: %s", err)
	}
}

type requester interface {
	apps.Sender
	Request(c tgbotapi.Chattable) (*tgbotapi.APIResponse, error)
}

func receiveUpdates(ctx context.Context, bot requester, accepter apps.Accepter, updates tgbotapi.UpdatesChannel) {
	for {
		select {
		// stop looping if ctx is cancelled
		case <-ctx.Done():
			return
		case update := <-updates:
			// handlers wait on the API, so one slow chat must not hold the rest
			go handleUpdate(ctx, bot, accepter, update)
		}
	}
}

func handleUpdate(ctx context.Context, bot requester, accepter apps.Accepter, update tgbotapi.Update) {
	switch {
	case update.Message != nil:
		handleMessage(ctx, bot, accepter, update.Message)
	case update.CallbackQuery != nil:
		handleCallbackQuery(ctx, bot, accepter, update.CallbackQuery)
	}
}

func handleMessage(ctx context.Context, bot requester, accepter apps.Accepter, message *tgbotapi.Message) {
	text := strings.TrimSpace(message.Text)
	if text == "" {
		return
	}
	log.Printf("%s wrote %s", userName(message.From), text)

	var accepted bool
	var handler func(ctx context.Context, chatId int64) error
	if strings.HasPrefix(text, "/") {
		accepted, handler = accepter.AcceptCommand(text)
	} else {
		accepted, handler = accepter.AcceptButton(text)
	}
	if !accepted {
		msg := tgbotapi.NewMessage(message.Chat.ID, "Unknown command. Try /menu")
		if _, err := bot.Send(msg); err != nil {
			log.Printf("An error occured: %s", err)
		}
		return
	}
	if err := handler(ctx, message.Chat.ID); err != nil {
		log.Printf("An error occured: %s", err)
	}
}

func handleCallbackQuery(ctx context.Context, bot requester, accepter apps.Accepter, query *tgbotapi.CallbackQuery) {
	if _, err := bot.Request(tgbotapi.NewCallback(query.ID, "")); err != nil {
		log.Printf("An error occured: %s", err)
	}
	if query.Message == nil {
		return
	}
	accepted, handler := accepter.AcceptCallback(query)
	if !accepted {
		log.Printf("Unhandled callback %q", query.Data)
		return
	}
	if err := handler(ctx, query); err != nil {
		log.Printf("An error occured: %s", err)
	}
}

func userName(u *tgbotapi.User) string {
	if u == nil {
		return "someone"
	}
	if u.UserName != "" {
		return u.UserName
	}
	return u.FirstName
}
