// Package sqlite caches the last known roster, unread counts and contact
// presence of every account.
package sqlite

import (
	"database/sql"
	"fmt"
	"path/filepath"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/meszmate/sessionroster/internal/domain"
)

// DB is the cache database
type DB struct {
	db *sql.DB
}

// New opens the cache database in dataDir, creating it if needed
func New(dataDir string) (*DB, error) {
	dbPath := filepath.Join(dataDir, "sessionroster.db")

	db, err := sql.Open("sqlite3", dbPath+"?_journal_mode=WAL&_foreign_keys=on")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	store := &DB{db: db}
	if err := store.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}

	return store, nil
}

// Close closes the database
func (d *DB) Close() error {
	return d.db.Close()
}

func (d *DB) migrate() error {
	migrations := []string{
		`CREATE TABLE IF NOT EXISTS roster_cache (
			account TEXT NOT NULL,
			group_name TEXT NOT NULL,
			group_position INTEGER NOT NULL,
			item_position INTEGER NOT NULL,
			jid TEXT NOT NULL,
			subscription TEXT,
			PRIMARY KEY (account, group_name, jid)
		)`,
		`CREATE INDEX IF NOT EXISTS idx_roster_cache_account ON roster_cache(account)`,

		`CREATE TABLE IF NOT EXISTS roster_sync (
			account TEXT PRIMARY KEY,
			last_synced INTEGER NOT NULL
		)`,

		`CREATE TABLE IF NOT EXISTS chat_state (
			account TEXT NOT NULL,
			jid TEXT NOT NULL,
			unread INTEGER DEFAULT 0,
			last_message_at INTEGER,
			PRIMARY KEY (account, jid)
		)`,

		`CREATE TABLE IF NOT EXISTS contact_last_presence (
			account TEXT NOT NULL,
			contact_jid TEXT NOT NULL,
			their_show TEXT,
			their_status_msg TEXT,
			last_updated INTEGER,
			PRIMARY KEY (account, contact_jid)
		)`,
	}

	for _, migration := range migrations {
		if _, err := d.db.Exec(migration); err != nil {
			return fmt.Errorf("migration failed: %w", err)
		}
	}
	return nil
}

// SaveRoster replaces the cached roster of account
func (d *DB) SaveRoster(account domain.AccountID, r domain.Roster) error {
	tx, err := d.db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.Exec("DELETE FROM roster_cache WHERE account = ?", account); err != nil {
		return err
	}

	for gi, g := range r.Groups {
		for ii, item := range g.Items {
			_, err := tx.Exec(`
				INSERT OR REPLACE INTO roster_cache (account, group_name, group_position, item_position, jid, subscription)
				VALUES (?, ?, ?, ?, ?, ?)
			`, account, g.Name, gi, ii, item.JID, item.Subscription)
			if err != nil {
				return err
			}
		}
	}

	if _, err := tx.Exec(`
		INSERT INTO roster_sync (account, last_synced) VALUES (?, ?)
		ON CONFLICT(account) DO UPDATE SET last_synced = excluded.last_synced
	`, account, time.Now().Unix()); err != nil {
		return err
	}

	return tx.Commit()
}

// GetRoster returns the cached roster of account. ok is false if the roster
// was never saved.
func (d *DB) GetRoster(account domain.AccountID) (r domain.Roster, ok bool, err error) {
	var synced int64
	err = d.db.QueryRow(`SELECT last_synced FROM roster_sync WHERE account = ?`, account).Scan(&synced)
	if err == sql.ErrNoRows {
		return domain.Roster{}, false, nil
	}
	if err != nil {
		return domain.Roster{}, false, err
	}

	rows, err := d.db.Query(`
		SELECT group_name, jid, subscription
		FROM roster_cache
		WHERE account = ?
		ORDER BY group_position, item_position
	`, account)
	if err != nil {
		return domain.Roster{}, false, err
	}
	defer rows.Close()

	r.Groups = []domain.RosterGroup{}
	for rows.Next() {
		var group string
		var item domain.RosterItem
		var subscription sql.NullString

		if err := rows.Scan(&group, &item.JID, &subscription); err != nil {
			return domain.Roster{}, false, err
		}
		if subscription.Valid {
			item.Subscription = subscription.String
		}

		if n := len(r.Groups); n == 0 || r.Groups[n-1].Name != group {
			r.Groups = append(r.Groups, domain.RosterGroup{Name: group})
		}
		last := &r.Groups[len(r.Groups)-1]
		last.Items = append(last.Items, item)
	}
	return r, true, rows.Err()
}

// SaveActiveChats replaces the cached conversations of account
func (d *DB) SaveActiveChats(account domain.AccountID, chats map[domain.AccountID]domain.ActiveChat) error {
	tx, err := d.db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.Exec("DELETE FROM chat_state WHERE account = ?", account); err != nil {
		return err
	}
	for jid, c := range chats {
		var at sql.NullInt64
		if !c.LastMessageAt.IsZero() {
			at = sql.NullInt64{Int64: c.LastMessageAt.Unix(), Valid: true}
		}
		_, err := tx.Exec(`
			INSERT INTO chat_state (account, jid, unread, last_message_at)
			VALUES (?, ?, ?, ?)
		`, account, jid, c.NumberOfUnreadMessages, at)
		if err != nil {
			return err
		}
	}
	return tx.Commit()
}

// GetActiveChats returns the cached conversations of account
func (d *DB) GetActiveChats(account domain.AccountID) (map[domain.AccountID]domain.ActiveChat, error) {
	rows, err := d.db.Query(`
		SELECT jid, unread, last_message_at FROM chat_state
		WHERE account = ?
	`, account)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	chats := make(map[domain.AccountID]domain.ActiveChat)
	for rows.Next() {
		var c domain.ActiveChat
		var at sql.NullInt64
		if err := rows.Scan(&c.JID, &c.NumberOfUnreadMessages, &at); err != nil {
			return nil, err
		}
		if at.Valid {
			c.LastMessageAt = time.Unix(at.Int64, 0)
		}
		chats[c.JID] = c
	}
	return chats, rows.Err()
}

// GetUnreadCount returns the cached unread count of a conversation
func (d *DB) GetUnreadCount(account, jid domain.AccountID) (int, error) {
	var count int
	err := d.db.QueryRow(`
		SELECT unread FROM chat_state
		WHERE account = ? AND jid = ?
	`, account, jid).Scan(&count)

	if err == sql.ErrNoRows {
		return 0, nil
	}
	return count, err
}

// SaveLastPresences records the presence of every available contact.
// Contacts missing from presences keep their previous record.
func (d *DB) SaveLastPresences(account domain.AccountID, presences map[domain.AccountID]domain.Presence) error {
	tx, err := d.db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	now := time.Now().Unix()
	for jid, p := range presences {
		_, err := tx.Exec(`
			INSERT OR REPLACE INTO contact_last_presence (account, contact_jid, their_show, their_status_msg, last_updated)
			VALUES (?, ?, ?, ?, ?)
		`, account, jid, p.Show, p.Status, now)
		if err != nil {
			return err
		}
	}
	return tx.Commit()
}

// GetContactLastPresence returns the last presence seen for a contact
func (d *DB) GetContactLastPresence(account, contact domain.AccountID) (p domain.Presence, lastUpdated time.Time, err error) {
	var showNull, statusNull sql.NullString
	var lastUpdatedUnix int64

	err = d.db.QueryRow(`
		SELECT their_show, their_status_msg, last_updated FROM contact_last_presence
		WHERE account = ? AND contact_jid = ?
	`, account, contact).Scan(&showNull, &statusNull, &lastUpdatedUnix)

	if err == sql.ErrNoRows {
		return domain.Presence{}, time.Time{}, nil
	}
	if err != nil {
		return domain.Presence{}, time.Time{}, err
	}

	if showNull.Valid {
		p.Show = showNull.String
	}
	if statusNull.Valid {
		p.Status = statusNull.String
	}
	return p, time.Unix(lastUpdatedUnix, 0), nil
}
