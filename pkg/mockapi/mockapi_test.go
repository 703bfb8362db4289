package mockapi

import (
	"context"
	"net/http/httptest"
	"strings"
	"testing"

	"f1schedulebot/pkg/helper"
	"f1schedulebot/pkg/openf1"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newClient(t *testing.T) *openf1.Client {
	s, err := NewServer()
	require.NoError(t, err)
	srv := httptest.NewServer(s.Handler())
	t.Cleanup(srv.Close)
	return openf1.NewClient(srv.URL+"/v1", srv.Client())
}

func TestScheduleScenario(t *testing.T) {
	c := newClient(t)

	meetings, err := c.FetchSchedule(context.Background(), 2025)
	require.NoError(t, err)
	require.Len(t, meetings, 3)

	sorted := helper.SortByDate(meetings)
	assert.Equal(t, []int{1254, 1255, 1256}, []int{sorted[0].MeetingKey, sorted[1].MeetingKey, sorted[2].MeetingKey})
	assert.Equal(t, 2, helper.RoundNumber(sorted, sorted[1]))
	assert.Equal(t, "3/14-3/16", helper.DateRange(sorted[1]))
}

func TestResultsFlow(t *testing.T) {
	c := newClient(t)
	ctx := context.Background()

	session, err := c.FetchRaceSession(ctx, 1255)
	require.NoError(t, err)
	assert.Equal(t, 9693, session.SessionKey)

	results, err := c.FetchResults(ctx, session.SessionKey)
	require.NoError(t, err)
	require.Len(t, results, 6)
	assert.Equal(t, "+1 LAP", results[4].GapToLeader.Text)
	assert.Equal(t, "DNF", results[5].Status())

	drivers, err := c.FetchDrivers(ctx, session.SessionKey)
	require.NoError(t, err)
	assert.Len(t, drivers, 5)

	_, err = c.FetchRaceSession(ctx, 1254)
	assert.True(t, openf1.IsNotFound(err))
}

func TestStart(t *testing.T) {
	s, err := NewServer()
	require.NoError(t, err)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	baseURL, err := s.Start(ctx, "127.0.0.1:0")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(baseURL, "http://127.0.0.1:"))

	meetings, err := openf1.NewClient(baseURL, nil).FetchSchedule(ctx, 2024)
	require.NoError(t, err)
	assert.Len(t, meetings, 1)
}
