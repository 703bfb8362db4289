package webserver

import (
	"fmt"
	"html/template"
	"log"
	"net/http"

	"f1schedulebot/pkg/export"
	"f1schedulebot/pkg/render"
	"f1schedulebot/pkg/views"
)

type Page struct {
	Title   string
	Message string
	Links   []Link
	Body    template.HTML
	Chart   string
}

type Link struct {
	URL  string
	Text string
}

var pageTemplate = template.Must(template.New("page").Parse(`<!DOCTYPE html>
<html>
<head>
<meta charset="utf-8">
<title>{{.Title}}</title>
<style>
body { font-family: sans-serif; background: #15151e; color: #fff; margin: 2em; }
a { color: #e10600; }
table { border-collapse: collapse; }
td, th { padding: 0.3em 0.8em; border-bottom: 1px solid #38383f; text-align: left; }
</style>
</head>
<body>
<h1>{{.Title}}</h1>
{{range .Links}}<a href="{{.URL}}">{{.Text}}</a> {{end}}
{{if .Message}}<p class="message">{{.Message}}</p>{{end}}
{{.Body}}
{{if .Chart}}<p><img src="{{.Chart}}" alt="Laps completed by driver" width="600"></p>{{end}}
</body>
</html>
`))

func writePage(w http.ResponseWriter, status int, p Page) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	if err := pageTemplate.Execute(w, p); err != nil {
		log.Printf("An error occured: %s", err)
	}
}

func badRequest(w http.ResponseWriter, err error) {
	writePage(w, http.StatusBadRequest, Page{Title: "Bad request", Message: render.ErrorMessage(err.Error())})
}

func (m *Manager) indexHandler() func(w http.ResponseWriter, r *http.Request) {
	return func(w http.ResponseWriter, r *http.Request) {
		year := m.now().Year()
		writePage(w, http.StatusOK, Page{
			Title: "Formula 1",
			Links: []Link{
				{URL: fmt.Sprintf("/f1/schedule/%d", year), Text: fmt.Sprintf("%d Schedule", year)},
				{URL: fmt.Sprintf("/f1/schedule/%d", year-1), Text: fmt.Sprintf("%d Schedule", year-1)},
			},
		})
	}
}

func (m *Manager) scheduleHandler() func(w http.ResponseWriter, r *http.Request) {
	return func(w http.ResponseWriter, r *http.Request) {
		year, err := intVar(r, "year")
		if err != nil {
			badRequest(w, err)
			return
		}

		state := views.NewScheduleView(m.fetcher).Load(r.Context(), year)
		p := Page{
			Title: render.ScheduleTitle(year),
			Links: []Link{
				{URL: fmt.Sprintf("/f1/schedule/%d", year-1), Text: "◀️ Previous season"},
				{URL: fmt.Sprintf("/f1/schedule/%d", year+1), Text: "Next season ▶️"},
			},
		}
		if msg, ok := render.ScheduleMessage(state); ok {
			p.Message = msg
			writePage(w, statusFor(state.Status), p)
			return
		}
		p.Body = template.HTML(render.ScheduleHTML(state.Rows()))
		writePage(w, http.StatusOK, p)
	}
}

func (m *Manager) resultsHandler() func(w http.ResponseWriter, r *http.Request) {
	return func(w http.ResponseWriter, r *http.Request) {
		meetingKey, err := intVar(r, "meetingId")
		if err != nil {
			badRequest(w, err)
			return
		}

		state := views.NewResultsView(m.fetcher).Load(r.Context(), meetingKey)
		p := Page{Title: render.ResultsTitle()}
		if msg, ok := render.ResultsMessage(state); ok {
			p.Message = msg
			writePage(w, statusFor(state.Status), p)
			return
		}
		p.Links = []Link{{URL: fmt.Sprintf("/f1/results/%d/results.xlsx", meetingKey), Text: "Download spreadsheet"}}
		p.Body = template.HTML(render.ResultsHTML(state.Rows()))
		p.Chart = fmt.Sprintf("/f1/results/%d/chart.svg", meetingKey)
		writePage(w, http.StatusOK, p)
	}
}

func (m *Manager) resultsXLSXHandler() func(w http.ResponseWriter, r *http.Request) {
	return func(w http.ResponseWriter, r *http.Request) {
		meetingKey, err := intVar(r, "meetingId")
		if err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}

		state := views.NewResultsView(m.fetcher).Load(r.Context(), meetingKey)
		if state.Status == views.Failure {
			http.Error(w, render.ErrorMessage(state.Error), http.StatusBadGateway)
			return
		}

		w.Header().Set("Content-Type", export.ContentType)
		w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=results-%d.xlsx", meetingKey))
		w.Header().Set("Content-Transfer-Encoding", "binary")
		if err := export.WriteResults(w, state.Rows()); err != nil {
			log.Printf("An error occured: %s", err)
		}
	}
}

func (m *Manager) resultsChartHandler() func(w http.ResponseWriter, r *http.Request) {
	return func(w http.ResponseWriter, r *http.Request) {
		meetingKey, err := intVar(r, "meetingId")
		if err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}

		state := views.NewResultsView(m.fetcher).Load(r.Context(), meetingKey)
		if msg, ok := render.ResultsMessage(state); ok {
			status := statusFor(state.Status)
			if status == http.StatusOK {
				status = http.StatusNotFound
			}
			http.Error(w, msg, status)
			return
		}

		data, err := render.ResultsChartSVG(state.Rows())
		if err != nil {
			http.Error(w, render.ErrorMessage(err.Error()), http.StatusInternalServerError)
			return
		}
		w.Header().Set("Content-Type", "image/svg+xml")
		w.Write(data)
	}
}

func statusFor(s views.Status) int {
	if s == views.Failure {
		return http.StatusBadGateway
	}
	return http.StatusOK
}
