// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

// Package recorder persists published odometry to SQLite so runs can be
// replayed and compared after the fact.
package recorder

import (
	"database/sql"
	"fmt"
	"math"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"github.com/relabs-tech/wheel_odometry/internal/nav"
)

const schema = `
	CREATE TABLE IF NOT EXISTS sessions (
		session_id   TEXT PRIMARY KEY,
		started_at   TEXT NOT NULL,
		note         TEXT
	);
	CREATE TABLE IF NOT EXISTS odometry (
		session_id   TEXT NOT NULL,
		seq          BIGINT NOT NULL,
		stamp        TEXT NOT NULL,
		x            DOUBLE,
		y            DOUBLE,
		heading      DOUBLE,
		linear       DOUBLE,
		angular      DOUBLE,
		FOREIGN KEY(session_id) REFERENCES sessions(session_id)
	);
	CREATE INDEX IF NOT EXISTS odometry_session_seq ON odometry(session_id, seq);
`

// Store is an odometry recording database.
type Store struct {
	db *sql.DB
}

// Session describes one recording run.
type Session struct {
	ID        string
	StartedAt time.Time
	Note      string
	Points    int
}

// TrackPoint is one recorded odometry message.
type TrackPoint struct {
	Seq     uint64
	Stamp   time.Time
	X       float64
	Y       float64
	Heading float64
	Linear  float64
	Angular float64
}

// Open creates or opens the database at path.
func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open recorder db: %w", err)
	}
	// sqlite allows a single writer
	db.SetMaxOpenConns(1)

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("create recorder schema: %w", err)
	}
	return &Store{db: db}, nil
}

// Close closes the database.
func (s *Store) Close() error {
	return s.db.Close()
}

// StartSession registers a new run and returns its id.
func (s *Store) StartSession(note string, startedAt time.Time) (string, error) {
	id := uuid.NewString()
	_, err := s.db.Exec(
		`INSERT INTO sessions (session_id, started_at, note) VALUES (?, ?, ?)`,
		id, startedAt.UTC().Format(time.RFC3339Nano), note,
	)
	if err != nil {
		return "", fmt.Errorf("start session: %w", err)
	}
	return id, nil
}

// Record appends one odometry message to a session.
func (s *Store) Record(sessionID string, o nav.Odometry) error {
	p := o.PlanarPose()
	_, err := s.db.Exec(
		`INSERT INTO odometry (session_id, seq, stamp, x, y, heading, linear, angular)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		sessionID, int64(o.Header.Seq), o.Header.Stamp,
		p.X, p.Y, p.Heading, o.Twist.Twist.Linear.X, o.Twist.Twist.Angular.Z,
	)
	if err != nil {
		return fmt.Errorf("record odometry seq %d: %w", o.Header.Seq, err)
	}
	return nil
}

// Track returns a session's points in publish order.
func (s *Store) Track(sessionID string) ([]TrackPoint, error) {
	rows, err := s.db.Query(
		`SELECT seq, stamp, x, y, heading, linear, angular
		 FROM odometry WHERE session_id = ? ORDER BY seq`, sessionID)
	if err != nil {
		return nil, fmt.Errorf("query track: %w", err)
	}
	defer rows.Close()

	var track []TrackPoint
	for rows.Next() {
		var (
			tp    TrackPoint
			seq   int64
			stamp string
		)
		if err := rows.Scan(&seq, &stamp, &tp.X, &tp.Y, &tp.Heading, &tp.Linear, &tp.Angular); err != nil {
			return nil, fmt.Errorf("scan track: %w", err)
		}
		tp.Seq = uint64(seq)
		if tp.Stamp, err = time.Parse(time.RFC3339Nano, stamp); err != nil {
			return nil, fmt.Errorf("parse stamp %q: %w", stamp, err)
		}
		track = append(track, tp)
	}
	return track, rows.Err()
}

// Sessions lists all runs, oldest first.
func (s *Store) Sessions() ([]Session, error) {
	rows, err := s.db.Query(`
		SELECT s.session_id, s.started_at, COALESCE(s.note, ''), COUNT(o.seq)
		FROM sessions s LEFT JOIN odometry o ON o.session_id = s.session_id
		GROUP BY s.session_id
		ORDER BY s.started_at`)
	if err != nil {
		return nil, fmt.Errorf("query sessions: %w", err)
	}
	defer rows.Close()

	var sessions []Session
	for rows.Next() {
		var (
			sess    Session
			started string
		)
		if err := rows.Scan(&sess.ID, &started, &sess.Note, &sess.Points); err != nil {
			return nil, fmt.Errorf("scan session: %w", err)
		}
		if sess.StartedAt, err = time.Parse(time.RFC3339Nano, started); err != nil {
			return nil, fmt.Errorf("parse started_at %q: %w", started, err)
		}
		sessions = append(sessions, sess)
	}
	return sessions, rows.Err()
}

// PathLength is the distance travelled along a track, in meters.
func PathLength(track []TrackPoint) float64 {
	var d float64
	for i := 1; i < len(track); i++ {
		d += math.Hypot(track[i].X-track[i-1].X, track[i].Y-track[i-1].Y)
	}
	return d
}
