// Copyright (c) 2025 The ADR Ledger developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package eventdb persists ledger notifications in SQLite and answers
// filtered queries over them.
package eventdb

import (
	"database/sql"

	_ "github.com/mattn/go-sqlite3"
	"github.com/pkg/errors"

	"github.com/adranet/adrd/adr"
	"github.com/adranet/adrd/staking"
)

const eventTableSchema = `CREATE TABLE IF NOT EXISTS event (
	seq INTEGER PRIMARY KEY AUTOINCREMENT,
	type TEXT NOT NULL,
	actor BLOB NOT NULL,
	field TEXT,
	oldValue TEXT,
	newValue TEXT,
	amount INTEGER NOT NULL DEFAULT 0,
	reward INTEGER NOT NULL DEFAULT 0,
	total INTEGER NOT NULL DEFAULT 0,
	period INTEGER NOT NULL DEFAULT 0,
	startTime INTEGER NOT NULL DEFAULT 0,
	unlockTime INTEGER NOT NULL DEFAULT 0,
	reason TEXT,
	timestamp INTEGER NOT NULL
);
CREATE INDEX IF NOT EXISTS event_type ON event(type);
CREATE INDEX IF NOT EXISTS event_actor ON event(actor);
CREATE INDEX IF NOT EXISTS event_timestamp ON event(timestamp);`

// OrderType result ordering by sequence.
type OrderType string

const (
	ASC  OrderType = "ASC"
	DESC OrderType = "DESC"
)

// Range limits events by timestamp, both bounds included.
// A To of zero leaves the range unbounded above.
type Range struct {
	From uint64 `json:"from"`
	To   uint64 `json:"to"`
}

// Options pagination options.
type Options struct {
	Offset uint64 `json:"offset"`
	Limit  uint64 `json:"limit"`
}

// Filter describes an event query.
type Filter struct {
	Type    string       `json:"type"`
	Actor   *adr.Address `json:"actor"`
	Order   OrderType    `json:"order"` // default asc
	Range   *Range       `json:"range"`
	Options *Options     `json:"options"`
}

// Stored is an event together with its assigned sequence number.
type Stored struct {
	Sequence int64 `json:"sequence"`
	staking.Event
}

// EventDB manages all persisted events.
type EventDB struct {
	path string
	db   *sql.DB
}

// New opens an event db, creating the schema when absent.
func New(path string) (*EventDB, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, errors.Wrap(err, "open event db")
	}
	if _, err := db.Exec(eventTableSchema); err != nil {
		return nil, errors.Wrap(err, "create event schema")
	}
	return &EventDB{
		path: path,
		db:   db,
	}, nil
}

// NewMem creates a memory-backed event db.
func NewMem() (*EventDB, error) {
	return New(":memory:")
}

// Path returns the db file path.
func (db *EventDB) Path() string {
	return db.path
}

// Close closes the event db.
func (db *EventDB) Close() error {
	return db.db.Close()
}

// Append inserts one event. It implements staking.Sink.
func (db *EventDB) Append(ev *staking.Event) error {
	_, err := db.db.Exec(
		"INSERT INTO event(type, actor, field, oldValue, newValue, amount, reward, total, period, startTime, unlockTime, reason, timestamp) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?);",
		ev.Type,
		ev.Actor.Bytes(),
		ev.Field,
		ev.OldValue,
		ev.NewValue,
		int64(ev.Amount),
		int64(ev.Reward),
		int64(ev.Total),
		int64(ev.Period),
		int64(ev.StartTime),
		int64(ev.UnlockTime),
		ev.Reason,
		int64(ev.Timestamp),
	)
	return errors.Wrap(err, "insert event")
}

// Filter returns events matching the filter. A nil filter returns
// everything in insertion order.
func (db *EventDB) Filter(filter *Filter) ([]*Stored, error) {
	if filter == nil {
		return db.query("SELECT * FROM event ORDER BY seq ASC")
	}

	var args []interface{}
	stmt := "SELECT * FROM event WHERE 1"
	if filter.Type != "" {
		args = append(args, filter.Type)
		stmt += " AND type = ?"
	}
	if filter.Actor != nil {
		args = append(args, filter.Actor.Bytes())
		stmt += " AND actor = ?"
	}
	if filter.Range != nil {
		args = append(args, int64(filter.Range.From))
		stmt += " AND timestamp >= ?"
		// To of zero leaves the range unbounded above
		if filter.Range.To != 0 && filter.Range.To >= filter.Range.From {
			args = append(args, int64(filter.Range.To))
			stmt += " AND timestamp <= ?"
		}
	}
	if filter.Order == DESC {
		stmt += " ORDER BY seq DESC"
	} else {
		stmt += " ORDER BY seq ASC"
	}
	if filter.Options != nil {
		stmt += " LIMIT ? OFFSET ?"
		args = append(args, int64(filter.Options.Limit), int64(filter.Options.Offset))
	}
	return db.query(stmt, args...)
}

func (db *EventDB) query(stmt string, args ...interface{}) ([]*Stored, error) {
	rows, err := db.db.Query(stmt, args...)
	if err != nil {
		return nil, errors.Wrap(err, "query events")
	}
	defer rows.Close()

	var events []*Stored
	for rows.Next() {
		var (
			ev         Stored
			actor      []byte
			amount     int64
			reward     int64
			total      int64
			period     int64
			startTime  int64
			unlockTime int64
			timestamp  int64
		)
		if err := rows.Scan(
			&ev.Sequence,
			&ev.Type,
			&actor,
			&ev.Field,
			&ev.OldValue,
			&ev.NewValue,
			&amount,
			&reward,
			&total,
			&period,
			&startTime,
			&unlockTime,
			&ev.Reason,
			&timestamp,
		); err != nil {
			return nil, errors.Wrap(err, "scan event")
		}
		ev.Actor = adr.BytesToAddress(actor)
		ev.Amount = uint64(amount)
		ev.Reward = uint64(reward)
		ev.Total = uint64(total)
		ev.Period = staking.Period(period)
		ev.StartTime = uint64(startTime)
		ev.UnlockTime = uint64(unlockTime)
		ev.Timestamp = uint64(timestamp)
		events = append(events, &ev)
	}
	return events, rows.Err()
}
