package store

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"

	"github.com/goccy/go-json"

	"checklist-cli/internal/model"
	"checklist-cli/internal/outline"
)

const initialVersion = "1.0"

// TemplateInfo is the listing view of a template.
type TemplateInfo struct {
	ID        int64     `json:"id" yaml:"id"`
	Name      string    `json:"name" yaml:"name"`
	Category  string    `json:"category" yaml:"category"`
	Version   string    `json:"version" yaml:"version"`
	IsActive  bool      `json:"is_active" yaml:"is_active"`
	Items     int       `json:"items" yaml:"items"`
	HasDraft  bool      `json:"has_draft" yaml:"has_draft"`
	Revisions int       `json:"revisions" yaml:"revisions"`
	UpdatedAt time.Time `json:"updated_at" yaml:"updated_at"`
}

type rowQuerier interface {
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// CreateTemplate stores a new template as both the published baseline and the working draft.
// Items get fresh ids; an empty version starts at 1.0.
func (s Store) CreateTemplate(ctx context.Context, tpl model.Template) (model.Template, error) {
	tpl = prepare(tpl)
	if strings.TrimSpace(tpl.Name) == "" {
		return model.Template{}, errors.New("template name is required")
	}
	if strings.TrimSpace(tpl.Version) == "" {
		tpl.Version = initialVersion
	}
	for i := range tpl.Items {
		tpl.Items[i].ID = nil
	}

	db, err := s.openSQLite(ctx)
	if err != nil {
		return model.Template{}, err
	}
	defer db.Close()

	tx, err := db.BeginTx(ctx, &sql.TxOptions{})
	if err != nil {
		return model.Template{}, err
	}
	defer func() { _ = tx.Rollback() }()

	if err := assignIDs(ctx, tx, tpl.Items); err != nil {
		return model.Template{}, err
	}

	nowMs := time.Now().UTC().UnixMilli()
	res, err := tx.ExecContext(ctx, `INSERT INTO templates(name, category, version, is_active, json, created_at_unixms, updated_at_unixms) VALUES(?, ?, ?, ?, '{}', ?, ?)`,
		tpl.Name, tpl.Category, tpl.Version, boolToInt(bool(tpl.IsActive)), nowMs, nowMs)
	if err != nil {
		return model.Template{}, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return model.Template{}, err
	}
	tpl.ID = &id

	raw, err := json.Marshal(tpl)
	if err != nil {
		return model.Template{}, err
	}
	if _, err := tx.ExecContext(ctx, `UPDATE templates SET json = ? WHERE id = ?`, string(raw), id); err != nil {
		return model.Template{}, err
	}
	if _, err := tx.ExecContext(ctx, `INSERT INTO drafts(template_id, json, updated_at_unixms) VALUES(?, ?, ?)`, id, string(raw), nowMs); err != nil {
		return model.Template{}, err
	}
	if err := tx.Commit(); err != nil {
		return model.Template{}, err
	}
	return tpl, nil
}

// LoadTemplate returns the published baseline.
func (s Store) LoadTemplate(ctx context.Context, id int64) (model.Template, error) {
	db, err := s.openSQLite(ctx)
	if err != nil {
		return model.Template{}, err
	}
	defer db.Close()
	return loadTemplate(ctx, db, id)
}

// LoadDraft returns the working draft, falling back to the published baseline.
func (s Store) LoadDraft(ctx context.Context, id int64) (model.Template, error) {
	db, err := s.openSQLite(ctx)
	if err != nil {
		return model.Template{}, err
	}
	defer db.Close()

	draft, ok, err := loadDraft(ctx, db, id)
	if err != nil {
		return model.Template{}, err
	}
	if ok {
		return draft, nil
	}
	return loadTemplate(ctx, db, id)
}

// SaveDraft replaces the working draft. Items without an id are assigned one; the returned
// template carries them.
func (s Store) SaveDraft(ctx context.Context, tpl model.Template) (model.Template, error) {
	if tpl.ID == nil {
		return model.Template{}, errors.New("save draft: template id is required")
	}
	tpl = prepare(tpl)
	id := *tpl.ID

	db, err := s.openSQLite(ctx)
	if err != nil {
		return model.Template{}, err
	}
	defer db.Close()

	tx, err := db.BeginTx(ctx, &sql.TxOptions{})
	if err != nil {
		return model.Template{}, err
	}
	defer func() { _ = tx.Rollback() }()

	if err := templateExists(ctx, tx, id); err != nil {
		return model.Template{}, err
	}
	if err := assignIDs(ctx, tx, tpl.Items); err != nil {
		return model.Template{}, err
	}
	raw, err := json.Marshal(tpl)
	if err != nil {
		return model.Template{}, err
	}
	if _, err := tx.ExecContext(ctx, `INSERT OR REPLACE INTO drafts(template_id, json, updated_at_unixms) VALUES(?, ?, ?)`,
		id, string(raw), time.Now().UTC().UnixMilli()); err != nil {
		return model.Template{}, err
	}
	if err := tx.Commit(); err != nil {
		return model.Template{}, err
	}
	return tpl, nil
}

func (s Store) ListTemplates(ctx context.Context) ([]TemplateInfo, error) {
	db, err := s.openSQLite(ctx)
	if err != nil {
		return nil, err
	}
	defer db.Close()

	rows, err := db.QueryContext(ctx, `
		SELECT t.id, t.name, t.category, t.version, t.is_active, t.json, t.updated_at_unixms,
			(SELECT COUNT(1) FROM drafts d WHERE d.template_id = t.id AND d.json <> t.json),
			(SELECT COUNT(1) FROM revisions r WHERE r.template_id = t.id)
		FROM templates t
		ORDER BY t.id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []TemplateInfo{}
	for rows.Next() {
		var (
			info     TemplateInfo
			active   int
			js       string
			updated  int64
			dirty    int
			revCount int
		)
		if err := rows.Scan(&info.ID, &info.Name, &info.Category, &info.Version, &active, &js, &updated, &dirty, &revCount); err != nil {
			return nil, err
		}
		var tpl model.Template
		if err := json.Unmarshal([]byte(js), &tpl); err != nil {
			return nil, err
		}
		info.IsActive = active != 0
		info.Items = len(tpl.Items)
		info.HasDraft = dirty > 0
		info.Revisions = revCount
		info.UpdatedAt = time.UnixMilli(updated).UTC()
		out = append(out, info)
	}
	return out, rows.Err()
}

// DeleteTemplate removes the template with its draft and revision history.
func (s Store) DeleteTemplate(ctx context.Context, id int64) error {
	db, err := s.openSQLite(ctx)
	if err != nil {
		return err
	}
	defer db.Close()

	res, err := db.ExecContext(ctx, `DELETE FROM templates WHERE id = ?`, id)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return errNotFound("template", id)
	}
	return nil
}

// prepare returns a store-ready copy: flattened, renumbered, upload status dropped.
func prepare(tpl model.Template) model.Template {
	tpl = tpl.Clone()
	tpl.Items = outline.NewEditor(tpl.Items).Items()
	for i := range tpl.Items {
		for j := range tpl.Items[i].SampleImages {
			tpl.Items[i].SampleImages[j].Status = ""
		}
		for j := range tpl.Items[i].SampleVideos {
			tpl.Items[i].SampleVideos[j].Status = ""
		}
	}
	return tpl
}

func assignIDs(ctx context.Context, tx *sql.Tx, items []model.ChecklistItem) error {
	for i := range items {
		if items[i].ID != nil {
			continue
		}
		n, err := nextSeq(ctx, tx, "item")
		if err != nil {
			return err
		}
		items[i].ID = &n
	}
	return nil
}

func templateExists(ctx context.Context, q rowQuerier, id int64) error {
	var one int
	err := q.QueryRowContext(ctx, `SELECT 1 FROM templates WHERE id = ?`, id).Scan(&one)
	if errors.Is(err, sql.ErrNoRows) {
		return errNotFound("template", id)
	}
	return err
}

func loadTemplate(ctx context.Context, q rowQuerier, id int64) (model.Template, error) {
	var js string
	err := q.QueryRowContext(ctx, `SELECT json FROM templates WHERE id = ?`, id).Scan(&js)
	if errors.Is(err, sql.ErrNoRows) {
		return model.Template{}, errNotFound("template", id)
	}
	if err != nil {
		return model.Template{}, err
	}
	var tpl model.Template
	if err := json.Unmarshal([]byte(js), &tpl); err != nil {
		return model.Template{}, err
	}
	return tpl, nil
}

func loadDraft(ctx context.Context, q rowQuerier, id int64) (model.Template, bool, error) {
	var js string
	err := q.QueryRowContext(ctx, `SELECT json FROM drafts WHERE template_id = ?`, id).Scan(&js)
	if errors.Is(err, sql.ErrNoRows) {
		return model.Template{}, false, nil
	}
	if err != nil {
		return model.Template{}, false, err
	}
	var tpl model.Template
	if err := json.Unmarshal([]byte(js), &tpl); err != nil {
		return model.Template{}, false, err
	}
	return tpl, true, nil
}
