package webserver

import (
	"context"
	"log"
	"net/http"
	"strconv"
	"strings"
	"time"

	"f1schedulebot/pkg/views"

	"github.com/gorilla/mux"
	"github.com/pkg/errors"
)

type Fetcher interface {
	views.ScheduleFetcher
	views.ResultsFetcher
}

type Manager struct {
	r       *mux.Router
	addr    string
	fetcher Fetcher
	now     func() time.Time
}

func NewManager(addr string, fetcher Fetcher) *Manager {
	m := &Manager{
		r:       mux.NewRouter(),
		addr:    addr,
		fetcher: fetcher,
		now:     time.Now,
	}

	m.rootHandlers()
	return m
}

func (m *Manager) Router() http.Handler {
	return m.r
}

func (m *Manager) rootHandlers() {
	m.r.HandleFunc("/", m.indexHandler()).Methods(http.MethodGet)
	m.r.HandleFunc("/f1/schedule/{year}", m.scheduleHandler()).Methods(http.MethodGet)
	m.r.HandleFunc("/f1/results/{meetingId}", m.resultsHandler()).Methods(http.MethodGet)
	m.r.HandleFunc("/f1/results/{meetingId}/results.xlsx", m.resultsXLSXHandler()).Methods(http.MethodGet)
	m.r.HandleFunc("/f1/results/{meetingId}/chart.svg", m.resultsChartHandler()).Methods(http.MethodGet)
	m.r.HandleFunc("/ws/schedule/{year}", m.scheduleWebsocketHandler())
}

// Debug logs every registered route.
func (m *Manager) Debug() {
	for _, route := range m.Routes() {
		log.Println("ROUTE:", route)
	}
}

// Routes lists the registered path templates, each followed by its methods
// when the route restricts them.
func (m *Manager) Routes() []string {
	var routes []string
	_ = m.r.Walk(func(route *mux.Route, router *mux.Router, ancestors []*mux.Route) error {
		pathTemplate, err := route.GetPathTemplate()
		if err != nil {
			return nil
		}
		if methods, err := route.GetMethods(); err == nil {
			pathTemplate += " " + strings.Join(methods, ",")
		}
		routes = append(routes, pathTemplate)
		return nil
	})
	return routes
}

// Serve runs the web server until ctx is done and then shuts it down
// gracefully.
func (m *Manager) Serve(ctx context.Context) error {
	srv := &http.Server{
		Addr:         m.addr,
		WriteTimeout: time.Second * 15,
		ReadTimeout:  time.Second * 15,
		IdleTimeout:  time.Second * 60,
		Handler:      m.r,
	}

	errs := make(chan error, 1)
	go func() {
		log.Printf("webserver listening on %s\n", m.addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errs <- err
		}
		close(errs)
	}()

	select {
	case err := <-errs:
		return err
	case <-ctx.Done():
	}

	// Doesn't block if no connections, but will otherwise wait
	// until the timeout deadline.
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	err := srv.Shutdown(shutdownCtx)
	log.Println("webserver shutting down")
	return err
}

func intVar(r *http.Request, name string) (int, error) {
	v, err := strconv.Atoi(mux.Vars(r)[name])
	if err != nil || v <= 0 {
		return 0, errors.Errorf("invalid %s %q", name, mux.Vars(r)[name])
	}
	return v, nil
}
