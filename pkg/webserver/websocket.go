package webserver

import (
	"context"
	"log"
	"net/http"

	"f1schedulebot/pkg/caster"
	"f1schedulebot/pkg/views"

	"github.com/gorilla/websocket"
)

var upgrader = websocket.Upgrader{} // use default options

// ScheduleFrame is sent to websocket clients on every schedule state change.
type ScheduleFrame struct {
	views.ScheduleState
	Rows []views.ScheduleRow `json:"rows"`
}

// ScheduleRequest re-parameterises the streamed schedule.
type ScheduleRequest struct {
	Year int `json:"year"`
}

func (m *Manager) scheduleWebsocketHandler() func(w http.ResponseWriter, r *http.Request) {
	frames := caster.JSONCaster[ScheduleFrame]{}
	requests := caster.JSONCaster[ScheduleRequest]{}

	return func(w http.ResponseWriter, r *http.Request) {
		year, err := intVar(r, "year")
		if err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}

		c, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			log.Print("upgrade:", err)
			return
		}
		defer c.Close()

		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()

		view := views.NewScheduleView(m.fetcher)
		states, unsubscribe := view.Subscribe()
		defer unsubscribe()

		done := make(chan struct{})
		go func() {
			defer close(done)
			for state := range states {
				payload, err := frames.To(ScheduleFrame{ScheduleState: state, Rows: state.Rows()})
				if err != nil {
					log.Println("marshal:", err)
					continue
				}
				if err := c.WriteMessage(websocket.TextMessage, payload); err != nil {
					log.Println("write:", err)
					cancel()
					c.Close()
					return
				}
			}
		}()

		// loads may overlap; the view only applies the latest one
		go view.Load(ctx, year)
		for {
			_, message, err := c.ReadMessage()
			if err != nil {
				log.Println("read:", err)
				break
			}
			req, err := requests.From(message)
			if err != nil || req.Year <= 0 {
				log.Printf("Ignoring websocket request %q", message)
				continue
			}
			go view.Load(ctx, req.Year)
		}

		cancel()
		view.Close()
		<-done
	}
}
