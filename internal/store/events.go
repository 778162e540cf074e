package store

import (
	"context"
	"strings"
	"time"

	"github.com/goccy/go-json"
	"github.com/google/uuid"

	"checklist-cli/internal/model"
)

// AppendEvent records one command in the local event log.
func (s Store) AppendEvent(ctx context.Context, author, typ, entityID string, payload any) (model.Event, error) {
	db, err := s.openSQLite(ctx)
	if err != nil {
		return model.Event{}, err
	}
	defer db.Close()

	pb, err := json.Marshal(payload)
	if err != nil {
		return model.Event{}, err
	}
	ev := model.Event{
		ID:       uuid.NewString(),
		TS:       time.Now().UTC(),
		Author:   strings.TrimSpace(author),
		Type:     typ,
		EntityID: entityID,
		Payload:  payload,
	}
	if _, err := db.ExecContext(ctx, `INSERT INTO events(id, ts_unixms, author, type, entity_id, payload_json) VALUES(?, ?, ?, ?, ?, ?)`,
		ev.ID, ev.TS.UnixMilli(), ev.Author, ev.Type, ev.EntityID, string(pb)); err != nil {
		return model.Event{}, err
	}
	return ev, nil
}

// ReadEvents returns the most recent events in chronological order. limit <= 0 means all.
// A non-empty entityID restricts the result to that entity.
func (s Store) ReadEvents(ctx context.Context, entityID string, limit int) ([]model.Event, error) {
	db, err := s.openSQLite(ctx)
	if err != nil {
		return nil, err
	}
	defer db.Close()

	q := `SELECT id, ts_unixms, author, type, entity_id, payload_json FROM events`
	var args []any
	if entityID != "" {
		q += ` WHERE entity_id = ?`
		args = append(args, entityID)
	}
	q += ` ORDER BY ts_unixms DESC, rowid DESC`
	if limit > 0 {
		q += ` LIMIT ?`
		args = append(args, limit)
	}

	rows, err := db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []model.Event{}
	for rows.Next() {
		var (
			ev   model.Event
			ts   int64
			body string
		)
		if err := rows.Scan(&ev.ID, &ts, &ev.Author, &ev.Type, &ev.EntityID, &body); err != nil {
			return nil, err
		}
		ev.TS = time.UnixMilli(ts).UTC()
		if body != "" && body != "null" {
			var payload any
			if err := json.Unmarshal([]byte(body), &payload); err != nil {
				return nil, err
			}
			ev.Payload = payload
		}
		out = append(out, ev)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	for i, j := 0, len(out)-1; i < j; i, j = i+1, j-1 {
		out[i], out[j] = out[j], out[i]
	}
	return out, nil
}
