package notification

import (
	"context"
	"fmt"
	"log"
	"time"

	"f1schedulebot/pkg/helper"
	"f1schedulebot/pkg/openf1"

	"github.com/nikoksr/notify"
)

const subject = "🏁 Race weekend starting:"

type ScheduleFetcher interface {
	FetchSchedule(ctx context.Context, year int) ([]openf1.Meeting, error)
}

type Store interface {
	ListNotifiedChats() ([]int64, error)
	IsMeetingNotified(meetingKey int) (bool, error)
	MarkMeetingNotified(meetingKey int) (bool, error)
}

type Manager struct {
	bot      Sender
	fetcher  ScheduleFetcher
	store    Store
	interval time.Duration
	now      func() time.Time
}

func NewManager(bot Sender, fetcher ScheduleFetcher, store Store, interval time.Duration) *Manager {
	return &Manager{
		bot:      bot,
		fetcher:  fetcher,
		store:    store,
		interval: interval,
		now:      time.Now,
	}
}

// Start checks the schedule right away and then on every tick until ctx is
// done.
func (m *Manager) Start(ctx context.Context) {
	ticker := time.NewTicker(m.interval)
	defer ticker.Stop()

	for {
		if err := m.Check(ctx); err != nil {
			log.Printf("Error checking race weekends: %s", err)
		}
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
	}
}

// Check notifies the subscribed chats about every meeting of the current
// season starting today that was not notified before.
func (m *Manager) Check(ctx context.Context) error {
	today := m.now().UTC()
	meetings, err := m.fetcher.FetchSchedule(ctx, today.Year())
	if err != nil {
		return err
	}
	meetings = helper.SortByDate(meetings)

	var firstErr error
	for _, meeting := range meetings {
		start, err := meeting.StartDate()
		if err != nil || !sameDay(start.UTC(), today) {
			continue
		}
		done, err := m.store.IsMeetingNotified(meeting.MeetingKey)
		if err != nil {
			return err
		}
		if done {
			continue
		}
		// one failing meeting must not hold back the others of the day
		if err := m.handleNotification(ctx, meetings, meeting); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

func (m *Manager) handleNotification(ctx context.Context, meetings []openf1.Meeting, meeting openf1.Meeting) error {
	receipients, err := m.store.ListNotifiedChats()
	if err != nil {
		log.Printf("Error listing chats for race weekend: %s", err)
		return err
	}
	log.Printf("Sending notification for %s to %d telegram chats\n", meeting.MeetingName, len(receipients))
	if len(receipients) == 0 {
		return nil
	}

	tg := &Telegram{}
	tg.SetClient(m.bot)
	tg.AddReceivers(receipients...)

	n := notify.NewWithServices(tg)
	sendErr := n.Send(ctx, subject, Message(meetings, meeting))
	if sendErr != nil {
		log.Printf("Error notifying chats: %s", sendErr)
		if failure := tg.Failure(); failure != nil {
			sendErr = failure
		}
	}
	// chats that already got the message must not get it again on the next tick
	if len(tg.Delivered()) == 0 {
		return sendErr
	}
	if _, err := m.store.MarkMeetingNotified(meeting.MeetingKey); err != nil {
		return err
	}
	return sendErr
}

func Message(meetings []openf1.Meeting, meeting openf1.Meeting) string {
	return fmt.Sprintf("Round %d: %s (%s)\n%s\n/results_%d",
		helper.RoundNumber(meetings, meeting),
		meeting.MeetingName,
		meeting.CircuitShortName,
		helper.DateRange(meeting),
		meeting.MeetingKey,
	)
}

func sameDay(a, b time.Time) bool {
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	return ay == by && am == bm && ad == bd
}
