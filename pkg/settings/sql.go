package settings

import (
	"database/sql"
)

func buildCreateTables() []string {
	return []string{
		`CREATE TABLE IF NOT EXISTS chat_settings (
		chatid INTEGER PRIMARY KEY,
		season INTEGER NOT NULL DEFAULT 0,
		notify INTEGER NOT NULL DEFAULT 0);`,
		`CREATE TABLE IF NOT EXISTS notified_meetings (
		meeting_key INTEGER PRIMARY KEY,
		notified_at TEXT NOT NULL DEFAULT CURRENT_TIMESTAMP);`,
	}
}

func buildSelectChat(chatID int64) (string, []any, func(*sql.Rows) (ChatSettings, error)) {
	read := func(rows *sql.Rows) (ChatSettings, error) {
		defer rows.Close()

		s := ChatSettings{ChatID: chatID}
		// only can be one row
		if rows.Next() {
			var notify int
			if err := rows.Scan(&s.Season, &notify); err != nil {
				return s, err
			}
			s.Notify = notify == 1
			return s, nil
		}
		return s, rows.Err()
	}
	return `SELECT season, notify FROM chat_settings WHERE chatid = ?`, []any{chatID}, read
}

func buildUpsertChat(s ChatSettings) (string, []any) {
	notify := 0
	if s.Notify {
		notify = 1
	}
	return `INSERT OR REPLACE INTO chat_settings (chatid, season, notify) VALUES (?, ?, ?)`,
		[]any{s.ChatID, s.Season, notify}
}

func buildSelectNotifiedChats() (string, []any, func(*sql.Rows) ([]int64, error)) {
	return `SELECT chatid FROM chat_settings WHERE notify = 1 ORDER BY chatid`, nil, processChatIDRows
}

func processChatIDRows(rows *sql.Rows) ([]int64, error) {
	defer rows.Close()

	chats := make([]int64, 0)
	for rows.Next() {
		var chatID int64
		if err := rows.Scan(&chatID); err != nil {
			return chats, err
		}
		chats = append(chats, chatID)
	}
	return chats, rows.Err()
}

func buildInsertNotifiedMeeting(meetingKey int) (string, []any) {
	return `INSERT OR IGNORE INTO notified_meetings (meeting_key) VALUES (?)`, []any{meetingKey}
}

func buildSelectNotifiedMeeting(meetingKey int) (string, []any, func(*sql.Rows) (bool, error)) {
	read := func(rows *sql.Rows) (bool, error) {
		defer rows.Close()
		found := rows.Next()
		return found, rows.Err()
	}
	return `SELECT meeting_key FROM notified_meetings WHERE meeting_key = ?`, []any{meetingKey}, read
}
