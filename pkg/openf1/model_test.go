package openf1

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIntervalQualifyingParts(t *testing.T) {
	var r Result
	require.NoError(t, json.Unmarshal([]byte(`{"gap_to_leader": [0.2, 0.31, null], "duration": [80.1, 79.5, null]}`), &r))
	assert.Equal(t, 0.31, r.GapToLeader.Seconds)
	assert.Equal(t, 79.5, r.Duration.Seconds)
}

func TestIntervalRejectsObjects(t *testing.T) {
	var i Interval
	assert.Error(t, json.Unmarshal([]byte(`{"a": 1}`), &i))
}

func TestIntervalMarshal(t *testing.T) {
	b, err := json.Marshal([]Interval{{}, {Seconds: 1.5, Valid: true}, {Text: "+2 LAPS", Valid: true}})
	require.NoError(t, err)
	assert.JSONEq(t, `[null, 1.5, "+2 LAPS"]`, string(b))
}

func TestParseDate(t *testing.T) {
	d, err := ParseDate("2025-03-14T01:30:00+00:00")
	require.NoError(t, err)
	assert.Equal(t, 14, d.Day())

	d, err = ParseDate("2025-03-07")
	require.NoError(t, err)
	assert.Equal(t, 7, d.Day())

	_, err = ParseDate("next friday")
	assert.Error(t, err)
}

func TestResultStatus(t *testing.T) {
	assert.Equal(t, "", Result{}.Status())
	assert.Equal(t, "DSQ", Result{DSQ: true, DNF: true}.Status())
	assert.Equal(t, "DNS", Result{DNS: true}.Status())
}
