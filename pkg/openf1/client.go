package openf1

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/pkg/errors"
)

const (
	DefaultBaseURL = "https://api.openf1.org/v1"

	pathMeetings      = "/meetings"
	pathSessions      = "/sessions"
	pathSessionResult = "/session_result"
	pathDrivers       = "/drivers"
)

// Client reads schedule and results data from the OpenF1 API.
// It holds no state besides its configuration and is safe for concurrent use.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

func NewClient(baseURL string, httpClient *http.Client) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: httpClient,
	}
}

func (c *Client) BaseURL() string {
	return c.baseURL
}

// FetchSchedule returns the meetings of a season in the order the API sends them.
func (c *Client) FetchSchedule(ctx context.Context, year int) ([]Meeting, error) {
	var meetings []Meeting
	query := url.Values{"year": {strconv.Itoa(year)}}
	if err := c.get(ctx, pathMeetings, query, &meetings); err != nil {
		log.Printf("Failed to fetch schedule: %s", err)
		return nil, err
	}
	return meetings, nil
}

// FetchSession returns the first session of a meeting matching sessionName.
// An empty sessionName looks up the race.
func (c *Client) FetchSession(ctx context.Context, meetingKey int, sessionName string) (Session, error) {
	if sessionName == "" {
		sessionName = SessionRace
	}
	var sessions []Session
	query := url.Values{
		"meeting_key":  {strconv.Itoa(meetingKey)},
		"session_name": {sessionName},
	}
	if err := c.get(ctx, pathSessions, query, &sessions); err != nil {
		log.Printf("Failed to fetch session: %s", err)
		return Session{}, err
	}
	if len(sessions) == 0 {
		err := &NotFoundError{
			Resource: "session",
			Query:    fmt.Sprintf("meeting %d and session name %q", meetingKey, sessionName),
		}
		log.Printf("Failed to fetch session: %s", err)
		return Session{}, err
	}
	return sessions[0], nil
}

func (c *Client) FetchRaceSession(ctx context.Context, meetingKey int) (Session, error) {
	return c.FetchSession(ctx, meetingKey, SessionRace)
}

// FetchResults returns the classification of a session. The position field
// sent by the API is authoritative and the server order is kept.
func (c *Client) FetchResults(ctx context.Context, sessionKey int) ([]Result, error) {
	var results []Result
	query := url.Values{"session_key": {strconv.Itoa(sessionKey)}}
	if err := c.get(ctx, pathSessionResult, query, &results); err != nil {
		log.Printf("Failed to fetch results: %s", err)
		return nil, err
	}
	return results, nil
}

func (c *Client) FetchDrivers(ctx context.Context, sessionKey int) ([]Driver, error) {
	var drivers []Driver
	query := url.Values{"session_key": {strconv.Itoa(sessionKey)}}
	if err := c.get(ctx, pathDrivers, query, &drivers); err != nil {
		log.Printf("Failed to fetch drivers: %s", err)
		return nil, err
	}
	return drivers, nil
}

func (c *Client) get(ctx context.Context, path string, query url.Values, out any) error {
	u := c.baseURL + path
	if len(query) > 0 {
		u += "?" + query.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return errors.Wrapf(err, "build request for %s", path)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return &TransportError{URL: u, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return &RemoteError{
			StatusCode: resp.StatusCode,
			StatusText: statusText(resp),
		}
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return &TransportError{URL: u, Err: err}
	}

	if err := json.Unmarshal(body, out); err != nil {
		return errors.Wrapf(err, "decode %s response", strings.TrimPrefix(path, "/"))
	}
	return nil
}

// statusText prefers the reason phrase sent by the server.
func statusText(resp *http.Response) string {
	text := strings.TrimSpace(strings.TrimPrefix(resp.Status, strconv.Itoa(resp.StatusCode)))
	if text == "" {
		text = http.StatusText(resp.StatusCode)
	}
	return text
}
