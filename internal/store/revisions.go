package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/goccy/go-json"

	"checklist-cli/internal/model"
	"checklist-cli/internal/revision"
)

type PublishOptions struct {
	// Description is the user's revision note; blank falls back to the generated summary.
	Description string
	// Version overrides the automatic minor bump.
	Version string
	Author  string
	// VersionedName appends "(vX.Y)" to the template name.
	VersionedName bool
}

// Changes diffs the working draft against the published baseline.
func (s Store) Changes(ctx context.Context, templateID int64) (model.ChangeSet, error) {
	db, err := s.openSQLite(ctx)
	if err != nil {
		return model.ChangeSet{}, err
	}
	defer db.Close()

	base, err := loadTemplate(ctx, db, templateID)
	if err != nil {
		return model.ChangeSet{}, err
	}
	draft, ok, err := loadDraft(ctx, db, templateID)
	if err != nil {
		return model.ChangeSet{}, err
	}
	if !ok {
		draft = base
	}
	return revision.Diff(base, draft), nil
}

// Publish promotes the working draft to the published baseline and records a revision with the
// change set against the previous baseline. Returns ErrNoChanges when there is nothing to publish.
func (s Store) Publish(ctx context.Context, templateID int64, opts PublishOptions) (model.Revision, error) {
	db, err := s.openSQLite(ctx)
	if err != nil {
		return model.Revision{}, err
	}
	defer db.Close()

	tx, err := db.BeginTx(ctx, &sql.TxOptions{})
	if err != nil {
		return model.Revision{}, err
	}
	defer func() { _ = tx.Rollback() }()

	base, err := loadTemplate(ctx, tx, templateID)
	if err != nil {
		return model.Revision{}, err
	}
	draft, ok, err := loadDraft(ctx, tx, templateID)
	if err != nil {
		return model.Revision{}, err
	}
	if !ok {
		return model.Revision{}, ErrNoChanges
	}

	cs := revision.Diff(base, draft)
	if cs.Empty() {
		return model.Revision{}, ErrNoChanges
	}

	version := strings.TrimSpace(opts.Version)
	if version == "" {
		version = revision.NextVersion(base.Version)
	}
	published := draft.Clone()
	published.ID = &templateID
	published.Version = version
	if opts.VersionedName {
		published.Name = revision.VersionedName(published.Name, version)
	}

	var last int
	if err := tx.QueryRowContext(ctx, `SELECT COALESCE(MAX(revision_number), 0) FROM revisions WHERE template_id = ?`, templateID).Scan(&last); err != nil {
		return model.Revision{}, err
	}
	if published.QualityDocument != nil {
		published.QualityDocument.RevisionNumber = last + 1
	}

	details := revision.Details(cs)
	if details == "" {
		details = revision.Summary(cs)
	}
	now := time.Now().UTC()
	rev := model.Revision{
		TemplateID:     templateID,
		RevisionNumber: last + 1,
		Version:        version,
		Description:    revision.Description(opts.Description, cs),
		ChangesSummary: details,
		ItemsAdded:     len(cs.ItemsAdded),
		ItemsRemoved:   len(cs.ItemsRemoved),
		ItemsModified:  len(cs.ItemsModified),
		Changes:        cs,
		Snapshot:       published,
		CreatedBy:      strings.TrimSpace(opts.Author),
		CreatedAt:      now,
	}

	res, err := tx.ExecContext(ctx, `INSERT INTO revisions(template_id, revision_number, version, created_by, json, created_at_unixms) VALUES(?, ?, ?, ?, '{}', ?)`,
		templateID, rev.RevisionNumber, rev.Version, rev.CreatedBy, now.UnixMilli())
	if err != nil {
		return model.Revision{}, err
	}
	if rev.ID, err = res.LastInsertId(); err != nil {
		return model.Revision{}, err
	}
	if published.QualityDocument != nil {
		published.QualityDocument.RevisionID = rev.ID
		rev.Snapshot = published
	}

	revRaw, err := json.Marshal(rev)
	if err != nil {
		return model.Revision{}, err
	}
	if _, err := tx.ExecContext(ctx, `UPDATE revisions SET json = ? WHERE id = ?`, string(revRaw), rev.ID); err != nil {
		return model.Revision{}, err
	}

	tplRaw, err := json.Marshal(published)
	if err != nil {
		return model.Revision{}, err
	}
	if _, err := tx.ExecContext(ctx, `UPDATE templates SET name = ?, category = ?, version = ?, is_active = ?, json = ?, updated_at_unixms = ? WHERE id = ?`,
		published.Name, published.Category, published.Version, boolToInt(bool(published.IsActive)), string(tplRaw), now.UnixMilli(), templateID); err != nil {
		return model.Revision{}, err
	}
	if _, err := tx.ExecContext(ctx, `INSERT OR REPLACE INTO drafts(template_id, json, updated_at_unixms) VALUES(?, ?, ?)`,
		templateID, string(tplRaw), now.UnixMilli()); err != nil {
		return model.Revision{}, err
	}

	if err := tx.Commit(); err != nil {
		return model.Revision{}, err
	}
	return rev, nil
}

func (s Store) ListRevisions(ctx context.Context, templateID int64) ([]model.Revision, error) {
	db, err := s.openSQLite(ctx)
	if err != nil {
		return nil, err
	}
	defer db.Close()

	if err := templateExists(ctx, db, templateID); err != nil {
		return nil, err
	}
	revs, err := readJSONRows[model.Revision](ctx, db, `SELECT json FROM revisions WHERE template_id = ? ORDER BY revision_number`, templateID)
	if err != nil {
		return nil, err
	}
	if revs == nil {
		revs = []model.Revision{}
	}
	return revs, nil
}

func (s Store) GetRevision(ctx context.Context, templateID int64, number int) (model.Revision, error) {
	db, err := s.openSQLite(ctx)
	if err != nil {
		return model.Revision{}, err
	}
	defer db.Close()

	var js string
	err = db.QueryRowContext(ctx, `SELECT json FROM revisions WHERE template_id = ? AND revision_number = ?`, templateID, number).Scan(&js)
	if errors.Is(err, sql.ErrNoRows) {
		return model.Revision{}, errNotFound("revision", fmt.Sprintf("%d#%d", templateID, number))
	}
	if err != nil {
		return model.Revision{}, err
	}
	var rev model.Revision
	if err := json.Unmarshal([]byte(js), &rev); err != nil {
		return model.Revision{}, err
	}
	return rev, nil
}
