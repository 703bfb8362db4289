package views

import (
	"context"
	"log"
	"sync"

	"f1schedulebot/pkg/helper"
	"f1schedulebot/pkg/openf1"
	"f1schedulebot/pkg/pubsub"

	"golang.org/x/sync/errgroup"
)

type ResultsFetcher interface {
	FetchRaceSession(ctx context.Context, meetingKey int) (openf1.Session, error)
	FetchResults(ctx context.Context, sessionKey int) ([]openf1.Result, error)
	FetchDrivers(ctx context.Context, sessionKey int) ([]openf1.Driver, error)
}

type ResultsState struct {
	Status     Status                `json:"status"`
	MeetingKey int                   `json:"meetingKey"`
	Session    *openf1.Session       `json:"session,omitempty"`
	Results    []openf1.Result       `json:"results"`
	Drivers    map[int]openf1.Driver `json:"drivers"`
	Error      string                `json:"error,omitempty"`
	Generation uint64                `json:"generation"`
}

type ResultRow struct {
	Position     int     `json:"position"`
	DriverNumber int     `json:"driverNumber"`
	Code         string  `json:"code"`
	Name         string  `json:"name"`
	Team         string  `json:"team"`
	TeamColour   string  `json:"teamColour"`
	Laps         int     `json:"laps"`
	Gap          string  `json:"gap"`
	Points       float64 `json:"points"`
}

// Rows joins every result with its driver, keeping the server order.
func (s ResultsState) Rows() []ResultRow {
	rows := make([]ResultRow, 0, len(s.Results))
	for _, r := range s.Results {
		var driver *openf1.Driver
		if d, ok := s.Drivers[r.DriverNumber]; ok {
			driver = &d
		}
		row := ResultRow{
			Position:     r.Position,
			DriverNumber: r.DriverNumber,
			Code:         helper.DriverCode(driver, r.DriverNumber),
			Name:         helper.DriverName(driver, r.DriverNumber),
			TeamColour:   helper.TeamColour(driver),
			Laps:         r.NumberOfLaps,
			Gap:          helper.GapText(r),
			Points:       r.Points,
		}
		if driver != nil {
			row.Team = driver.TeamName
		}
		rows = append(rows, row)
	}
	return rows
}

// ResultsView holds the race classification of one meeting for one consumer.
type ResultsView struct {
	fetcher    ResultsFetcher
	mu         sync.Mutex
	generation uint64
	state      ResultsState
	updates    *pubsub.PubSub[ResultsState]
}

func NewResultsView(fetcher ResultsFetcher) *ResultsView {
	return &ResultsView{
		fetcher: fetcher,
		state:   emptyResults(Idle, 0, 0),
		updates: pubsub.NewPubSub[ResultsState](pubsub.DefaultBufferSize),
	}
}

func (v *ResultsView) State() ResultsState {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.state
}

func (v *ResultsView) Subscribe() (<-chan ResultsState, func()) {
	return v.updates.Subscribe(topicState)
}

// Load resolves the race session of meetingKey and then fetches its results
// and drivers together. A failure at any step leaves the view with no data.
func (v *ResultsView) Load(ctx context.Context, meetingKey int) ResultsState {
	state, _ := v.LoadLatest(ctx, meetingKey)
	return state
}

// LoadLatest is Load that also reports whether this load is still the latest
// one.
func (v *ResultsView) LoadLatest(ctx context.Context, meetingKey int) (ResultsState, bool) {
	gen := v.begin(meetingKey)

	next := emptyResults(Success, meetingKey, gen)
	session, results, drivers, err := v.fetch(ctx, meetingKey)
	if err != nil {
		next.Status = Failure
		next.Error = errorMessage(err, fallbackResultsError)
		return v.apply(next)
	}

	next.Session = &session
	if results != nil {
		next.Results = results
	}
	for _, d := range drivers {
		next.Drivers[d.DriverNumber] = d
	}
	return v.apply(next)
}

func (v *ResultsView) Close() {
	v.mu.Lock()
	v.generation++
	v.state = emptyResults(Idle, 0, v.generation)
	v.mu.Unlock()
	v.updates.Close(topicState)
}

func (v *ResultsView) fetch(ctx context.Context, meetingKey int) (openf1.Session, []openf1.Result, []openf1.Driver, error) {
	session, err := v.fetcher.FetchRaceSession(ctx, meetingKey)
	if err != nil {
		return openf1.Session{}, nil, nil, err
	}

	var (
		results []openf1.Result
		drivers []openf1.Driver
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		results, err = v.fetcher.FetchResults(gctx, session.SessionKey)
		return err
	})
	g.Go(func() error {
		var err error
		drivers, err = v.fetcher.FetchDrivers(gctx, session.SessionKey)
		return err
	})
	if err := g.Wait(); err != nil {
		return openf1.Session{}, nil, nil, err
	}
	return session, results, drivers, nil
}

func (v *ResultsView) begin(meetingKey int) uint64 {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.generation++
	v.state = emptyResults(Loading, meetingKey, v.generation)
	v.updates.Publish(topicState, v.state)
	return v.generation
}

func (v *ResultsView) apply(next ResultsState) (ResultsState, bool) {
	v.mu.Lock()
	defer v.mu.Unlock()
	if next.Generation != v.generation {
		log.Printf("Discarding stale results for meeting %d (generation %d, latest %d)", next.MeetingKey, next.Generation, v.generation)
		return v.state, false
	}
	v.state = next
	v.updates.Publish(topicState, v.state)
	return v.state, true
}

func emptyResults(status Status, meetingKey int, gen uint64) ResultsState {
	return ResultsState{
		Status:     status,
		MeetingKey: meetingKey,
		Results:    []openf1.Result{},
		Drivers:    map[int]openf1.Driver{},
		Generation: gen,
	}
}
