package views

import (
	"strings"

	"github.com/pkg/errors"
)

const (
	topicState = "state"

	fallbackScheduleError = "Failed to load schedule"
	fallbackResultsError  = "Failed to load results"
)

// Status is the lifecycle of a list view. Every load goes through Loading and
// ends in Success or Failure; both can be left again by a new load.
type Status int

const (
	Idle Status = iota
	Loading
	Success
	Failure
)

var statusNames = map[Status]string{
	Idle:    "idle",
	Loading: "loading",
	Success: "success",
	Failure: "failure",
}

func (s Status) String() string {
	if name, ok := statusNames[s]; ok {
		return name
	}
	return "unknown"
}

func (s Status) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

func (s *Status) UnmarshalText(text []byte) error {
	for status, name := range statusNames {
		if name == string(text) {
			*s = status
			return nil
		}
	}
	return errors.Errorf("unknown status %q", text)
}

// errorMessage is the text shown to users for a failed load.
func errorMessage(err error, fallback string) string {
	if err == nil {
		return fallback
	}
	msg := strings.TrimSpace(err.Error())
	if msg == "" {
		return fallback
	}
	return msg
}
