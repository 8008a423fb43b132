package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/feedtailor/feedtailor/internal/common"
	"github.com/feedtailor/feedtailor/internal/model"
)

// CreateSession registers a new curation session for a source file.
func (s *SQLiteStorage) CreateSession(ctx context.Context, sourceFile string) (*model.Session, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	if err := validateString(sourceFile, "sourceFile"); err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	session := &model.Session{
		ID:         uuid.NewString(),
		SourceFile: sourceFile,
		CreatedAt:  now,
		UpdatedAt:  now,
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO sessions (id, source_file, created_at, updated_at)
		VALUES (?, ?, ?, ?)
	`, session.ID, session.SourceFile, session.CreatedAt, session.UpdatedAt)
	if err != nil {
		return nil, fmt.Errorf("failed to create session: %w", err)
	}

	return session, nil
}

// GetSession fetches a session by ID.
func (s *SQLiteStorage) GetSession(ctx context.Context, id string) (*model.Session, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	if err := validateString(id, "id"); err != nil {
		return nil, err
	}

	var session model.Session
	err := s.db.QueryRowContext(ctx, `
		SELECT id, source_file, created_at, updated_at
		FROM sessions
		WHERE id = ?
	`, id).Scan(&session.ID, &session.SourceFile, &session.CreatedAt, &session.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("session %s: %w", id, common.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get session: %w", err)
	}

	return &session, nil
}

// TouchSession bumps a session's updated_at timestamp.
func (s *SQLiteStorage) TouchSession(ctx context.Context, id string) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if err := validateString(id, "id"); err != nil {
		return err
	}

	result, err := s.db.ExecContext(ctx, `
		UPDATE sessions SET updated_at = ? WHERE id = ?
	`, time.Now().UTC(), id)
	if err != nil {
		return fmt.Errorf("failed to touch session: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check touch result: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("session %s: %w", id, common.ErrNotFound)
	}
	return nil
}

// ListSessions returns all sessions, most recently updated first.
func (s *SQLiteStorage) ListSessions(ctx context.Context) ([]model.Session, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, source_file, created_at, updated_at
		FROM sessions
		ORDER BY updated_at DESC
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to list sessions: %w", err)
	}
	defer func() {
		_ = rows.Close()
	}()

	var sessions []model.Session
	for rows.Next() {
		var session model.Session
		if err := rows.Scan(&session.ID, &session.SourceFile, &session.CreatedAt, &session.UpdatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan session: %w", err)
		}
		sessions = append(sessions, session)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read sessions: %w", err)
	}

	return sessions, nil
}

// SaveSelection replaces a session's column selection wholesale. Entry
// order is preserved for retrieval.
func (s *SQLiteStorage) SaveSelection(ctx context.Context, sessionID string, entries []model.SelectionEntry) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if err := validateString(sessionID, "sessionID"); err != nil {
		return err
	}
	if entries == nil {
		return fmt.Errorf("%w: entries", ErrNilParameter)
	}

	return s.withTx(ctx, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx,
			`DELETE FROM selections WHERE session_id = ?`, sessionID); err != nil {
			return fmt.Errorf("failed to clear selection: %w", err)
		}
		for i, e := range entries {
			if _, err := tx.ExecContext(ctx, `
				INSERT INTO selections (session_id, position, column_name, keep)
				VALUES (?, ?, ?, ?)
			`, sessionID, i, e.Column, e.Keep); err != nil {
				return fmt.Errorf("failed to save selection entry %q: %w", e.Column, err)
			}
		}
		return nil
	})
}

// GetSelection returns a session's selection in saved order. A session
// with no saved selection yields an empty slice.
func (s *SQLiteStorage) GetSelection(ctx context.Context, sessionID string) ([]model.SelectionEntry, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	if err := validateString(sessionID, "sessionID"); err != nil {
		return nil, err
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT column_name, keep
		FROM selections
		WHERE session_id = ?
		ORDER BY position
	`, sessionID)
	if err != nil {
		return nil, fmt.Errorf("failed to get selection: %w", err)
	}
	defer func() {
		_ = rows.Close()
	}()

	var entries []model.SelectionEntry
	for rows.Next() {
		var e model.SelectionEntry
		if err := rows.Scan(&e.Column, &e.Keep); err != nil {
			return nil, fmt.Errorf("failed to scan selection entry: %w", err)
		}
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read selection: %w", err)
	}
	return entries, nil
}

// SaveFilterSpec replaces a session's filter choices wholesale.
func (s *SQLiteStorage) SaveFilterSpec(ctx context.Context, sessionID string, spec model.FilterSpec) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if err := validateString(sessionID, "sessionID"); err != nil {
		return err
	}

	return s.withTx(ctx, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx,
			`DELETE FROM filter_choices WHERE session_id = ?`, sessionID); err != nil {
			return fmt.Errorf("failed to clear filter choices: %w", err)
		}
		for column, values := range spec {
			for i, v := range values {
				if _, err := tx.ExecContext(ctx, `
					INSERT INTO filter_choices (session_id, column_name, position, value)
					VALUES (?, ?, ?, ?)
				`, sessionID, column, i, v); err != nil {
					return fmt.Errorf("failed to save filter choice %q: %w", column, err)
				}
			}
		}
		return nil
	})
}

// GetFilterSpec reassembles a session's filter choices. A session with
// no choices yields an empty, non-nil spec.
func (s *SQLiteStorage) GetFilterSpec(ctx context.Context, sessionID string) (model.FilterSpec, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	if err := validateString(sessionID, "sessionID"); err != nil {
		return nil, err
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT column_name, value
		FROM filter_choices
		WHERE session_id = ?
		ORDER BY column_name, position
	`, sessionID)
	if err != nil {
		return nil, fmt.Errorf("failed to get filter choices: %w", err)
	}
	defer func() {
		_ = rows.Close()
	}()

	spec := make(model.FilterSpec)
	for rows.Next() {
		var column, value string
		if err := rows.Scan(&column, &value); err != nil {
			return nil, fmt.Errorf("failed to scan filter choice: %w", err)
		}
		spec[column] = append(spec[column], value)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read filter choices: %w", err)
	}
	return spec, nil
}

// SaveResolutionEdits upserts resolution edits. A value resolved again
// keeps its original position but takes the new generic colour, so
// re-resolving never reorders the merge.
func (s *SQLiteStorage) SaveResolutionEdits(ctx context.Context, sessionID string, edits []model.ResolutionEdit) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if err := validateString(sessionID, "sessionID"); err != nil {
		return err
	}

	return s.withTx(ctx, func(tx *sql.Tx) error {
		var next int
		err := tx.QueryRowContext(ctx, `
			SELECT COALESCE(MAX(position), -1) + 1
			FROM resolution_edits
			WHERE session_id = ?
		`, sessionID).Scan(&next)
		if err != nil {
			return fmt.Errorf("failed to get next edit position: %w", err)
		}

		// Positions may end up with gaps after upserts; only their
		// relative order matters.
		for _, e := range edits {
			if _, err := tx.ExecContext(ctx, `
				INSERT INTO resolution_edits (session_id, position, value, generic_colour)
				VALUES (?, ?, ?, ?)
				ON CONFLICT(session_id, value) DO UPDATE SET
					generic_colour = excluded.generic_colour
			`, sessionID, next, e.Value, e.GenericColour); err != nil {
				return fmt.Errorf("failed to save resolution edit %q: %w", e.Value, err)
			}
			next++
		}
		return nil
	})
}

// GetResolutionEdits returns a session's edits in first-resolved order.
func (s *SQLiteStorage) GetResolutionEdits(ctx context.Context, sessionID string) ([]model.ResolutionEdit, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	if err := validateString(sessionID, "sessionID"); err != nil {
		return nil, err
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT value, generic_colour
		FROM resolution_edits
		WHERE session_id = ?
		ORDER BY position
	`, sessionID)
	if err != nil {
		return nil, fmt.Errorf("failed to get resolution edits: %w", err)
	}
	defer func() {
		_ = rows.Close()
	}()

	var edits []model.ResolutionEdit
	for rows.Next() {
		var e model.ResolutionEdit
		if err := rows.Scan(&e.Value, &e.GenericColour); err != nil {
			return nil, fmt.Errorf("failed to scan resolution edit: %w", err)
		}
		edits = append(edits, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read resolution edits: %w", err)
	}
	return edits, nil
}

// DeleteResolutionEdit removes one edit by value.
func (s *SQLiteStorage) DeleteResolutionEdit(ctx context.Context, sessionID, value string) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if err := validateString(sessionID, "sessionID"); err != nil {
		return err
	}
	if err := validateString(value, "value"); err != nil {
		return err
	}

	_, err := s.db.ExecContext(ctx, `
		DELETE FROM resolution_edits
		WHERE session_id = ? AND value = ?
	`, sessionID, value)
	if err != nil {
		return fmt.Errorf("failed to delete resolution edit: %w", err)
	}
	return nil
}
