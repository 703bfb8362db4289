package views

import (
	"context"
	"log"
	"sync"

	"f1schedulebot/pkg/helper"
	"f1schedulebot/pkg/openf1"
	"f1schedulebot/pkg/pubsub"
)

type ScheduleFetcher interface {
	FetchSchedule(ctx context.Context, year int) ([]openf1.Meeting, error)
}

type ScheduleState struct {
	Status     Status           `json:"status"`
	Year       int              `json:"year"`
	Meetings   []openf1.Meeting `json:"meetings"`
	Error      string           `json:"error,omitempty"`
	Generation uint64           `json:"generation"`
}

type ScheduleRow struct {
	Round       int    `json:"round"`
	MeetingKey  int    `json:"meetingKey"`
	MeetingName string `json:"meetingName"`
	Circuit     string `json:"circuit"`
	Dates       string `json:"dates"`
}

// Rows derives the rendered schedule from the sorted meetings.
func (s ScheduleState) Rows() []ScheduleRow {
	rows := make([]ScheduleRow, 0, len(s.Meetings))
	for _, m := range s.Meetings {
		rows = append(rows, ScheduleRow{
			Round:       helper.RoundNumber(s.Meetings, m),
			MeetingKey:  m.MeetingKey,
			MeetingName: m.MeetingName,
			Circuit:     m.CircuitShortName,
			Dates:       helper.DateRange(m),
		})
	}
	return rows
}

// ScheduleView holds the schedule of one season for one consumer.
type ScheduleView struct {
	fetcher    ScheduleFetcher
	mu         sync.Mutex
	generation uint64
	state      ScheduleState
	updates    *pubsub.PubSub[ScheduleState]
}

func NewScheduleView(fetcher ScheduleFetcher) *ScheduleView {
	return &ScheduleView{
		fetcher: fetcher,
		state:   ScheduleState{Status: Idle, Meetings: []openf1.Meeting{}},
		updates: pubsub.NewPubSub[ScheduleState](pubsub.DefaultBufferSize),
	}
}

func (v *ScheduleView) State() ScheduleState {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.state
}

// Subscribe streams every state the view enters from now on.
func (v *ScheduleView) Subscribe() (<-chan ScheduleState, func()) {
	return v.updates.Subscribe(topicState)
}

// Load fetches the schedule of year and returns the state the view ends in.
// If another load was started meanwhile, this one's outcome is discarded and
// the newer state is returned.
func (v *ScheduleView) Load(ctx context.Context, year int) ScheduleState {
	state, _ := v.LoadLatest(ctx, year)
	return state
}

// LoadLatest is Load that also reports whether this load is still the latest
// one, false meaning a newer load owns the returned state.
func (v *ScheduleView) LoadLatest(ctx context.Context, year int) (ScheduleState, bool) {
	gen := v.begin(year)

	next := ScheduleState{Year: year, Generation: gen, Meetings: []openf1.Meeting{}}
	meetings, err := v.fetcher.FetchSchedule(ctx, year)
	if err != nil {
		next.Status = Failure
		next.Error = errorMessage(err, fallbackScheduleError)
	} else {
		next.Status = Success
		next.Meetings = helper.SortByDate(meetings)
	}
	return v.apply(next)
}

// Close discards any load still in flight and stops all subscriptions.
func (v *ScheduleView) Close() {
	v.mu.Lock()
	v.generation++
	v.state = ScheduleState{Status: Idle, Meetings: []openf1.Meeting{}, Generation: v.generation}
	v.mu.Unlock()
	v.updates.Close(topicState)
}

func (v *ScheduleView) begin(year int) uint64 {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.generation++
	v.state = ScheduleState{
		Status:     Loading,
		Year:       year,
		Meetings:   []openf1.Meeting{},
		Generation: v.generation,
	}
	v.updates.Publish(topicState, v.state)
	return v.generation
}

func (v *ScheduleView) apply(next ScheduleState) (ScheduleState, bool) {
	v.mu.Lock()
	defer v.mu.Unlock()
	if next.Generation != v.generation {
		log.Printf("Discarding stale schedule for %d (generation %d, latest %d)", next.Year, next.Generation, v.generation)
		return v.state, false
	}
	v.state = next
	v.updates.Publish(topicState, v.state)
	return v.state, true
}
