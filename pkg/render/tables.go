package render

import (
	"bytes"
	"fmt"
	"html"
	"strconv"

	"f1schedulebot/pkg/views"

	"github.com/jedib0t/go-pretty/v6/table"
)

const (
	MessageLoadingSchedule = "Loading schedule..."
	MessageLoadingResults  = "Loading results..."
	MessageNoRaces         = "No races found"
	MessageNoResults       = "No results found"
	MessageSuperseded      = "Superseded by a newer request"

	headerRound   = "RND"
	headerCircuit = "Circuit"
	headerDates   = "Dates"
	headerPos     = "POS"
	headerDriver  = "PIL"
	headerTeam    = "Team"
	headerLaps    = "Laps"
	headerGap     = "Gap"
	headerPoints  = "Pts"
)

// ScheduleMessage returns the placeholder for a schedule state that has no
// list to show, and false when the list should be rendered.
func ScheduleMessage(s views.ScheduleState) (string, bool) {
	switch s.Status {
	case views.Idle, views.Loading:
		return MessageLoadingSchedule, true
	case views.Failure:
		return ErrorMessage(s.Error), true
	}
	if len(s.Meetings) == 0 {
		return MessageNoRaces, true
	}
	return "", false
}

func ResultsMessage(s views.ResultsState) (string, bool) {
	switch s.Status {
	case views.Idle, views.Loading:
		return MessageLoadingResults, true
	case views.Failure:
		return ErrorMessage(s.Error), true
	}
	if len(s.Results) == 0 {
		return MessageNoResults, true
	}
	return "", false
}

func ErrorMessage(msg string) string {
	return fmt.Sprintf("Error: %s", msg)
}

func ScheduleTitle(year int) string {
	return fmt.Sprintf("Formula 1 - %d Schedule", year)
}

func ResultsTitle() string {
	return "Race Results"
}

// ScheduleTable renders schedule rows as a monospaced table.
func ScheduleTable(rows []views.ScheduleRow) string {
	var b bytes.Buffer
	t := table.NewWriter()
	t.SetOutputMirror(&b)
	t.SetStyle(table.StyleRounded)
	t.AppendHeader(table.Row{headerRound, headerCircuit, headerDates})
	for _, row := range rows {
		t.AppendRow(table.Row{row.Round, row.Circuit, row.Dates})
	}
	t.Render()
	return b.String()
}

func ResultsTable(rows []views.ResultRow) string {
	var b bytes.Buffer
	t := table.NewWriter()
	t.SetOutputMirror(&b)
	t.SetStyle(table.StyleRounded)
	t.AppendHeader(table.Row{headerPos, headerDriver, headerGap, headerPoints})
	for _, row := range rows {
		t.AppendRow(table.Row{position(row.Position), row.Code, row.Gap, points(row.Points)})
	}
	t.Render()
	return b.String()
}

// ScheduleHTML renders the schedule with a link to each round's results.
func ScheduleHTML(rows []views.ScheduleRow) string {
	t := htmlWriter("schedule")
	t.AppendHeader(table.Row{"Round", headerCircuit, headerDates, ""})
	for _, row := range rows {
		t.AppendRow(table.Row{
			fmt.Sprintf("<b>Round %d:</b>", row.Round),
			html.EscapeString(row.Circuit),
			html.EscapeString(row.Dates),
			fmt.Sprintf(`<a href="/f1/results/%d">View Round</a>`, row.MeetingKey),
		})
	}
	return t.RenderHTML()
}

func ResultsHTML(rows []views.ResultRow) string {
	t := htmlWriter("results")
	t.AppendHeader(table.Row{"Pos", "Driver", headerTeam, headerLaps, headerGap, headerPoints})
	for _, row := range rows {
		t.AppendRow(table.Row{
			position(row.Position),
			html.EscapeString(row.Name),
			fmt.Sprintf(`<span style="color:%s">%s</span>`, html.EscapeString(row.TeamColour), html.EscapeString(row.Team)),
			row.Laps,
			html.EscapeString(row.Gap),
			points(row.Points),
		})
	}
	return t.RenderHTML()
}

func htmlWriter(class string) table.Writer {
	t := table.NewWriter()
	style := table.StyleDefault
	style.HTML = table.HTMLOptions{
		CSSClass:    class,
		EmptyColumn: "&nbsp;",
		EscapeText:  false,
		Newline:     "<br/>",
	}
	t.SetStyle(style)
	return t
}

func position(p int) string {
	if p <= 0 {
		return "-"
	}
	return strconv.Itoa(p)
}

func points(p float64) string {
	return strconv.FormatFloat(p, 'f', -1, 64)
}
