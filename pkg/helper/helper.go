package helper

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"f1schedulebot/pkg/openf1"
)

// weekend length assumed for every meeting, counting the start day
const weekendExtraDays = 2

// SortByDate returns a copy of meetings ordered by start date. Meetings with
// an unparseable date sort first. The input slice is left untouched.
func SortByDate(meetings []openf1.Meeting) []openf1.Meeting {
	sorted := make([]openf1.Meeting, len(meetings))
	copy(sorted, meetings)
	sort.SliceStable(sorted, func(i, j int) bool {
		return startOf(sorted[i]).Before(startOf(sorted[j]))
	})
	return sorted
}

// RoundNumber is the 1-based position of meeting in the chronological order
// of meetings, matched by meeting key. It returns 0 if the key is absent.
func RoundNumber(meetings []openf1.Meeting, meeting openf1.Meeting) int {
	for idx, m := range SortByDate(meetings) {
		if m.MeetingKey == meeting.MeetingKey {
			return idx + 1
		}
	}
	return 0
}

// FormatDateRange renders a race weekend as "month/day-month/day" from start
// to two days later.
func FormatDateRange(start time.Time) string {
	end := start.AddDate(0, 0, weekendExtraDays)
	return fmt.Sprintf("%d/%d-%d/%d", int(start.Month()), start.Day(), int(end.Month()), end.Day())
}

// DateRange formats the weekend of a meeting, or "-" if its date can't be read.
func DateRange(m openf1.Meeting) string {
	start, err := m.StartDate()
	if err != nil {
		return "-"
	}
	return FormatDateRange(start)
}

func startOf(m openf1.Meeting) time.Time {
	t, _ := m.StartDate()
	return t
}

// method to convert from seconds to minutes:seconds:milliseconds
func SecondsToMinutes(seconds float64) string {
	if seconds <= 0 {
		return "-"
	}
	hours := int(seconds / 3600)
	seconds = seconds - float64(hours*3600)
	minutes := int(seconds / 60)
	seconds = seconds - float64(minutes*60)
	milliseconds := int((seconds - float64(int(seconds))) * 1000)
	if hours > 0 {
		return fmt.Sprintf("%d:%02d:%02d.%03d", hours, minutes, int(seconds), milliseconds)
	}
	return fmt.Sprintf("%02d:%02d.%03d", minutes, int(seconds), milliseconds)
}

func SecondsToDiff(seconds float64) string {
	if seconds <= 0 {
		return "-"
	}
	return fmt.Sprintf("+%.3fs", seconds)
}

// GapText is what the results list shows in the gap column.
func GapText(r openf1.Result) string {
	if status := r.Status(); status != "" {
		return status
	}
	if r.Position == 1 {
		return SecondsToMinutes(r.Duration.Seconds)
	}
	if r.GapToLeader.Text != "" {
		return r.GapToLeader.Text
	}
	return SecondsToDiff(r.GapToLeader.Seconds)
}

// DriverName is "First Last" for a known driver and "Driver #N" otherwise.
func DriverName(d *openf1.Driver, number int) string {
	if d == nil {
		return fmt.Sprintf("Driver #%d", number)
	}
	name := strings.TrimSpace(d.FirstName + " " + d.LastName)
	if name == "" {
		name = d.FullName
	}
	if name == "" {
		return fmt.Sprintf("Driver #%d", number)
	}
	return name
}

// DriverCode prefers the acronym sent by the API and derives one from the
// name when it is missing.
func DriverCode(d *openf1.Driver, number int) string {
	if d == nil {
		return fmt.Sprintf("#%d", number)
	}
	if d.NameAcronym != "" {
		return d.NameAcronym
	}
	return GetDriverCodeName(DriverName(d, number))
}

func GetDriverCodeName(name string) string {
	// first letter of the name and the first 2 letters of the surname
	name = strings.TrimSpace(name)
	if name == "" {
		return ""
	}
	words := strings.Fields(name)
	first := []rune(words[0])
	code := string(first[0])
	if len(words) > 1 {
		last := []rune(words[len(words)-1])
		if len(last) > 2 {
			code += string(last[:2])
		} else {
			code += string(last)
		}
	} else {
		if len(first) > 2 {
			code += string(first[1:3])
		} else {
			code += string(first)
		}
	}
	return strings.ToUpper(code)
}

// TeamColour returns the team colour as a CSS/RGB hex string with a leading '#'.
func TeamColour(d *openf1.Driver) string {
	if d == nil || d.TeamColour == "" {
		return "#888888"
	}
	return "#" + strings.TrimPrefix(d.TeamColour, "#")
}
