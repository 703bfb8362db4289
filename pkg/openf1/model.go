package openf1

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/pkg/errors"
)

const (
	SessionRace = "Race"
)

var dateLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02",
}

// Meeting is a race weekend within a season.
type Meeting struct {
	MeetingKey          int    `json:"meeting_key"`
	MeetingName         string `json:"meeting_name"`
	MeetingOfficialName string `json:"meeting_official_name,omitempty"`
	CircuitShortName    string `json:"circuit_short_name"`
	Location            string `json:"location,omitempty"`
	CountryName         string `json:"country_name,omitempty"`
	CountryCode         string `json:"country_code,omitempty"`
	DateStart           string `json:"date_start"`
	Year                int    `json:"year"`
}

// StartDate parses DateStart keeping whatever offset the API sent.
// Date-only values are taken as UTC.
func (m Meeting) StartDate() (time.Time, error) {
	return ParseDate(m.DateStart)
}

type Session struct {
	MeetingKey  int    `json:"meeting_key"`
	SessionKey  int    `json:"session_key"`
	SessionName string `json:"session_name"`
	SessionType string `json:"session_type,omitempty"`
	DateStart   string `json:"date_start,omitempty"`
	DateEnd     string `json:"date_end,omitempty"`
}

type Result struct {
	Position     int      `json:"position"`
	DriverNumber int      `json:"driver_number"`
	NumberOfLaps int      `json:"number_of_laps"`
	Points       float64  `json:"points"`
	DNF          bool     `json:"dnf"`
	DNS          bool     `json:"dns"`
	DSQ          bool     `json:"dsq"`
	GapToLeader  Interval `json:"gap_to_leader"`
	Duration     Interval `json:"duration"`
	MeetingKey   int      `json:"meeting_key"`
	SessionKey   int      `json:"session_key"`
}

// Status is the classification shown instead of a gap for drivers that
// did not finish the session.
func (r Result) Status() string {
	switch {
	case r.DSQ:
		return "DSQ"
	case r.DNS:
		return "DNS"
	case r.DNF:
		return "DNF"
	}
	return ""
}

type Driver struct {
	DriverNumber  int    `json:"driver_number"`
	BroadcastName string `json:"broadcast_name"`
	FullName      string `json:"full_name"`
	FirstName     string `json:"first_name"`
	LastName      string `json:"last_name"`
	NameAcronym   string `json:"name_acronym,omitempty"`
	TeamName      string `json:"team_name"`
	TeamColour    string `json:"team_colour"`
}

// Interval holds a timing value that the API sends either as seconds, as a
// text such as "+1 LAP", or as null. Qualifying sessions send one value per
// part; the last non-null part is kept.
type Interval struct {
	Seconds float64
	Text    string
	Valid   bool
}

func (i *Interval) UnmarshalJSON(data []byte) error {
	raw := strings.TrimSpace(string(data))
	if raw == "null" || raw == "" {
		*i = Interval{}
		return nil
	}

	var seconds float64
	if err := json.Unmarshal(data, &seconds); err == nil {
		*i = Interval{Seconds: seconds, Valid: true}
		return nil
	}

	var text string
	if err := json.Unmarshal(data, &text); err == nil {
		*i = Interval{Text: text, Valid: true}
		return nil
	}

	var parts []Interval
	if err := json.Unmarshal(data, &parts); err == nil {
		*i = Interval{}
		for _, part := range parts {
			if part.Valid {
				*i = part
			}
		}
		return nil
	}

	return errors.Errorf("unsupported interval value %s", raw)
}

func (i Interval) MarshalJSON() ([]byte, error) {
	switch {
	case !i.Valid:
		return []byte("null"), nil
	case i.Text != "":
		return json.Marshal(i.Text)
	}
	return json.Marshal(i.Seconds)
}

func (i Interval) String() string {
	switch {
	case !i.Valid:
		return ""
	case i.Text != "":
		return i.Text
	}
	return fmt.Sprintf("%.3f", i.Seconds)
}

// ParseDate parses the date formats found in OpenF1 payloads.
func ParseDate(value string) (time.Time, error) {
	value = strings.TrimSpace(value)
	for _, layout := range dateLayouts {
		t, err := time.Parse(layout, value)
		if err == nil {
			return t, nil
		}
	}
	return time.Time{}, errors.Errorf("invalid date %q", value)
}
