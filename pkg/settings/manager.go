package settings

import (
	"database/sql"
	"log"
	"sync"

	_ "github.com/mattn/go-sqlite3"
)

// ChatSettings are the preferences of a single Telegram chat. A zero Season
// means the current season.
type ChatSettings struct {
	ChatID int64
	Season int
	Notify bool
}

func (c ChatSettings) NotifySymbol() string {
	return symbolStatus(c.Notify)
}

func symbolStatus(enabled bool) string {
	if enabled {
		return "🔔"
	}
	return "🔕"
}

type Manager struct {
	db *sql.DB
	mu sync.Mutex
}

func NewManager(dbName string) (*Manager, error) {
	db, err := sql.Open("sqlite3", dbName)
	if err != nil {
		log.Printf("error opening database: %s\n", err)
		return nil, err
	}

	for _, stmt := range buildCreateTables() {
		if _, err = db.Exec(stmt); err != nil {
			log.Printf("error init database: %s\n", err)
			db.Close()
			return nil, err
		}
	}

	return &Manager{
		db: db,
		mu: sync.Mutex{},
	}, nil
}

func (m *Manager) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	return m.db.Close()
}

func (m *Manager) Get(chatID int64) (ChatSettings, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	return m.get(chatID)
}

func (m *Manager) SetSeason(chatID int64, season int) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	s, err := m.get(chatID)
	if err != nil {
		return err
	}
	s.Season = season
	return m.save(s)
}

// ToggleNotify flips the race-weekend notification flag and returns the
// stored settings.
func (m *Manager) ToggleNotify(chatID int64) (ChatSettings, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	s, err := m.get(chatID)
	if err != nil {
		return s, err
	}
	s.Notify = !s.Notify
	return s, m.save(s)
}

func (m *Manager) ListNotifiedChats() ([]int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	query, args, read := buildSelectNotifiedChats()
	rows, err := m.db.Query(query, args...)
	if err != nil {
		return []int64{}, err
	}
	return read(rows)
}

// MarkMeetingNotified records the meeting and reports whether it was new.
func (m *Manager) MarkMeetingNotified(meetingKey int) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	query, args := buildInsertNotifiedMeeting(meetingKey)
	res, err := m.db.Exec(query, args...)
	if err != nil {
		log.Printf("error updating database: %s\n", err)
		return false, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n == 1, nil
}

func (m *Manager) IsMeetingNotified(meetingKey int) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	query, args, read := buildSelectNotifiedMeeting(meetingKey)
	rows, err := m.db.Query(query, args...)
	if err != nil {
		return false, err
	}
	return read(rows)
}

func (m *Manager) get(chatID int64) (ChatSettings, error) {
	query, args, read := buildSelectChat(chatID)
	rows, err := m.db.Query(query, args...)
	if err != nil {
		return ChatSettings{ChatID: chatID}, err
	}
	return read(rows)
}

func (m *Manager) save(s ChatSettings) error {
	query, args := buildUpsertChat(s)
	if _, err := m.db.Exec(query, args...); err != nil {
		log.Printf("error updating database: %s\n", err)
		return err
	}
	return nil
}
