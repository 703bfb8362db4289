package webserver

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"f1schedulebot/pkg/export"
	"f1schedulebot/pkg/openf1"
	"f1schedulebot/pkg/views"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

type fakeFetcher struct {
	mu    sync.Mutex
	gates map[int]chan struct{}
}

func (f *fakeFetcher) FetchSchedule(ctx context.Context, year int) ([]openf1.Meeting, error) {
	f.mu.Lock()
	gate := f.gates[year]
	f.mu.Unlock()
	if gate != nil {
		<-gate
	}
	switch year {
	case 2025:
		return []openf1.Meeting{
			{MeetingKey: 1256, MeetingName: "Chinese Grand Prix", CircuitShortName: "Shanghai", DateStart: "2025-03-21T03:30:00+00:00", Year: 2025},
			{MeetingKey: 1255, MeetingName: "Australian Grand Prix", CircuitShortName: "Melbourne & <Albert Park>", DateStart: "2025-03-14T01:30:00+00:00", Year: 2025},
		}, nil
	case 2024:
		return []openf1.Meeting{
			{MeetingKey: 1229, MeetingName: "Bahrain Grand Prix", CircuitShortName: "Sakhir", DateStart: "2024-02-29T11:30:00+00:00", Year: 2024},
		}, nil
	case 2023:
		return nil, &openf1.RemoteError{StatusCode: 500, StatusText: "Internal Server Error"}
	}
	return []openf1.Meeting{}, nil
}

func (f *fakeFetcher) FetchRaceSession(_ context.Context, meetingKey int) (openf1.Session, error) {
	if meetingKey != 1255 && meetingKey != 1256 {
		return openf1.Session{}, &openf1.NotFoundError{Resource: "session", Query: "meeting"}
	}
	return openf1.Session{MeetingKey: meetingKey, SessionKey: meetingKey * 10, SessionName: "Race"}, nil
}

func (f *fakeFetcher) FetchResults(_ context.Context, sessionKey int) ([]openf1.Result, error) {
	if sessionKey == 12560 {
		return []openf1.Result{}, nil
	}
	return []openf1.Result{
		{Position: 1, DriverNumber: 4, NumberOfLaps: 57, Points: 25, Duration: openf1.Interval{Seconds: 6126.5, Valid: true}},
		{Position: 2, DriverNumber: 1, NumberOfLaps: 57, Points: 18, GapToLeader: openf1.Interval{Seconds: 0.895, Valid: true}},
	}, nil
}

func (f *fakeFetcher) FetchDrivers(context.Context, int) ([]openf1.Driver, error) {
	return []openf1.Driver{
		{DriverNumber: 4, FirstName: "Lando", LastName: "Norris", NameAcronym: "NOR", TeamName: "McLaren", TeamColour: "F47600"},
	}, nil
}

func newServer(t *testing.T, f *fakeFetcher) *httptest.Server {
	m := NewManager(":0", f)
	m.now = func() time.Time { return time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC) }
	srv := httptest.NewServer(m.Router())
	t.Cleanup(srv.Close)
	return srv
}

func get(t *testing.T, url string) (*http.Response, string) {
	resp, err := http.Get(url)
	require.NoError(t, err)
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp, string(body)
}

func TestIndex(t *testing.T) {
	srv := newServer(t, &fakeFetcher{})

	resp, body := get(t, srv.URL+"/")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, body, `href="/f1/schedule/2025"`)
}

func TestRoutes(t *testing.T) {
	m := NewManager(":0", &fakeFetcher{})

	routes := m.Routes()
	assert.Contains(t, routes, "/ GET")
	assert.Contains(t, routes, "/f1/schedule/{year} GET")
	assert.Contains(t, routes, "/f1/results/{meetingId}/results.xlsx GET")
	assert.Contains(t, routes, "/ws/schedule/{year}")
	assert.Len(t, routes, 6)
}

func TestSchedulePage(t *testing.T) {
	srv := newServer(t, &fakeFetcher{})

	resp, body := get(t, srv.URL+"/f1/schedule/2025")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, body, "Formula 1 - 2025 Schedule")
	assert.Contains(t, body, "<b>Round 1:</b>")
	assert.Contains(t, body, "Melbourne &amp; &lt;Albert Park&gt;")
	assert.Contains(t, body, "3/14-3/16")
	assert.Contains(t, body, `<a href="/f1/results/1256">View Round</a>`)
	assert.Less(t, strings.Index(body, "/f1/results/1255"), strings.Index(body, "/f1/results/1256"))
}

func TestSchedulePageStates(t *testing.T) {
	srv := newServer(t, &fakeFetcher{})

	resp, body := get(t, srv.URL+"/f1/schedule/2023")
	assert.Equal(t, http.StatusBadGateway, resp.StatusCode)
	assert.Contains(t, body, "Error: API error: 500 Internal Server Error")

	resp, body = get(t, srv.URL+"/f1/schedule/1990")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, body, "No races found")

	resp, _ = get(t, srv.URL+"/f1/schedule/next")
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestResultsPage(t *testing.T) {
	srv := newServer(t, &fakeFetcher{})

	resp, body := get(t, srv.URL+"/f1/results/1255")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, body, "Lando Norris")
	assert.Contains(t, body, "Driver #1")
	assert.Contains(t, body, "+0.895s")
	assert.Contains(t, body, `src="/f1/results/1255/chart.svg"`)

	resp, body = get(t, srv.URL+"/f1/results/1")
	assert.Equal(t, http.StatusBadGateway, resp.StatusCode)
	assert.Contains(t, body, "Error: no session found for meeting")

	resp, body = get(t, srv.URL+"/f1/results/1256")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, body, "No results found")
}

func TestResultsXLSX(t *testing.T) {
	srv := newServer(t, &fakeFetcher{})

	resp, body := get(t, srv.URL+"/f1/results/1255/results.xlsx")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, export.ContentType, resp.Header.Get("Content-Type"))

	f, err := excelize.OpenReader(bytes.NewReader([]byte(body)))
	require.NoError(t, err)
	defer f.Close()
	name, err := f.GetCellValue(export.SheetResults, "C2")
	require.NoError(t, err)
	assert.Equal(t, "Lando Norris", name)

	resp, _ = get(t, srv.URL+"/f1/results/0/results.xlsx")
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestResultsChart(t *testing.T) {
	srv := newServer(t, &fakeFetcher{})

	resp, body := get(t, srv.URL+"/f1/results/1255/chart.svg")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "image/svg+xml", resp.Header.Get("Content-Type"))
	assert.Contains(t, body, "<svg")

	resp, _ = get(t, srv.URL+"/f1/results/1256/chart.svg")
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func readFrame(t *testing.T, c *websocket.Conn) ScheduleFrame {
	require.NoError(t, c.SetReadDeadline(time.Now().Add(5*time.Second)))
	_, payload, err := c.ReadMessage()
	require.NoError(t, err)
	var frame ScheduleFrame
	require.NoError(t, json.Unmarshal(payload, &frame))
	return frame
}

func readUntil(t *testing.T, c *websocket.Conn, status views.Status) ScheduleFrame {
	for {
		frame := readFrame(t, c)
		if frame.Status == status {
			return frame
		}
	}
}

func TestScheduleWebsocket(t *testing.T) {
	srv := newServer(t, &fakeFetcher{})

	c, _, err := websocket.DefaultDialer.Dial("ws"+strings.TrimPrefix(srv.URL, "http")+"/ws/schedule/2025", nil)
	require.NoError(t, err)
	defer c.Close()

	frame := readUntil(t, c, views.Success)
	assert.Equal(t, 2025, frame.Year)
	require.Len(t, frame.Rows, 2)
	assert.Equal(t, 1255, frame.Rows[0].MeetingKey)
	assert.Equal(t, 1, frame.Rows[0].Round)

	require.NoError(t, c.WriteMessage(websocket.TextMessage, []byte(`{"year":2023}`)))
	frame = readUntil(t, c, views.Failure)
	assert.Equal(t, 2023, frame.Year)
	assert.Empty(t, frame.Meetings)
	assert.Contains(t, frame.Error, "500")
}

func TestScheduleWebsocketDiscardsStaleLoad(t *testing.T) {
	slow := make(chan struct{})
	srv := newServer(t, &fakeFetcher{gates: map[int]chan struct{}{2025: slow}})

	c, _, err := websocket.DefaultDialer.Dial("ws"+strings.TrimPrefix(srv.URL, "http")+"/ws/schedule/2025", nil)
	require.NoError(t, err)
	defer c.Close()

	frame := readFrame(t, c)
	assert.Equal(t, views.Loading, frame.Status)
	assert.Equal(t, 2025, frame.Year)

	require.NoError(t, c.WriteMessage(websocket.TextMessage, []byte(`{"year":2024}`)))
	frame = readUntil(t, c, views.Success)
	assert.Equal(t, 2024, frame.Year)

	close(slow)

	// the 2025 load finishes last and must not replace the 2024 state
	require.NoError(t, c.WriteMessage(websocket.TextMessage, []byte(`{"year":1990}`)))
	frame = readUntil(t, c, views.Success)
	assert.Equal(t, 1990, frame.Year)
	assert.Empty(t, frame.Rows)
}
