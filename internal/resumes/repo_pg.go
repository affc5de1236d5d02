package resumes

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"cv-backend/internal/cvform"
)

// PGRepo implements Repo using Postgres. The form fields are stored as one
// JSONB document.
type PGRepo struct {
	DB *sql.DB
}

const selectColumns = `id, owner_id, form, formatted_resume_doc, career_history_doc, created_at, updated_at`

// Create inserts a record.
func (r *PGRepo) Create(ctx context.Context, rec Record) error {
	form, err := json.Marshal(rec.CV)
	if err != nil {
		return fmt.Errorf("marshal form: %w", err)
	}
	const query = `
INSERT INTO resumes (
    id, owner_id, form, formatted_resume_doc, career_history_doc, created_at, updated_at
) VALUES ($1, $2, $3, $4, $5, $6, $7)`
	_, err = r.DB.ExecContext(ctx, query,
		rec.ID,
		rec.OwnerID,
		form,
		nullString(rec.FormattedResumeDoc),
		nullString(rec.CareerHistoryDoc),
		rec.CreatedAt,
		rec.UpdatedAt,
	)
	return err
}

// Update writes the non-nil patch members and refreshes updated_at.
func (r *PGRepo) Update(ctx context.Context, id string, patch Patch, now time.Time) (Record, error) {
	sets := []string{"updated_at = $2"}
	args := []any{id, now}
	if patch.Form != nil {
		form, err := json.Marshal(patch.Form)
		if err != nil {
			return Record{}, fmt.Errorf("marshal form: %w", err)
		}
		args = append(args, form)
		sets = append(sets, fmt.Sprintf("form = $%d", len(args)))
	}
	if patch.FormattedResumeDoc != nil {
		args = append(args, *patch.FormattedResumeDoc)
		sets = append(sets, fmt.Sprintf("formatted_resume_doc = $%d", len(args)))
	}
	if patch.CareerHistoryDoc != nil {
		args = append(args, *patch.CareerHistoryDoc)
		sets = append(sets, fmt.Sprintf("career_history_doc = $%d", len(args)))
	}

	query := `
UPDATE resumes
SET ` + strings.Join(sets, ", ") + `
WHERE id = $1
RETURNING ` + selectColumns
	rec, err := scanRecord(r.DB.QueryRowContext(ctx, query, args...))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Record{}, ErrNotFound
		}
		return Record{}, err
	}
	return rec, nil
}

// Delete removes a record.
func (r *PGRepo) Delete(ctx context.Context, id string) error {
	const query = `DELETE FROM resumes WHERE id = $1`
	res, err := r.DB.ExecContext(ctx, query, id)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

// GetByID returns a record by ID.
func (r *PGRepo) GetByID(ctx context.Context, id string) (Record, error) {
	const query = `
SELECT ` + selectColumns + `
FROM resumes
WHERE id = $1
LIMIT 1`
	rec, err := scanRecord(r.DB.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Record{}, ErrNotFound
		}
		return Record{}, err
	}
	return rec, nil
}

// ListByOwner lists an owner's records ordered by updated_at descending.
func (r *PGRepo) ListByOwner(ctx context.Context, ownerID string) ([]Record, error) {
	const query = `
SELECT ` + selectColumns + `
FROM resumes
WHERE owner_id = $1
ORDER BY updated_at DESC, id ASC`

	rows, err := r.DB.QueryContext(ctx, query, ownerID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]Record, 0)
	for rows.Next() {
		rec, err := scanRecord(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, rec)
	}
	return out, rows.Err()
}

type scanner interface {
	Scan(dest ...any) error
}

func scanRecord(row scanner) (Record, error) {
	var (
		rec           Record
		form          []byte
		resumeDoc     sql.NullString
		careerHistory sql.NullString
	)
	if err := row.Scan(
		&rec.ID,
		&rec.OwnerID,
		&form,
		&resumeDoc,
		&careerHistory,
		&rec.CreatedAt,
		&rec.UpdatedAt,
	); err != nil {
		return Record{}, err
	}
	var cv cvform.CV
	if err := json.Unmarshal(form, &cv); err != nil {
		return Record{}, fmt.Errorf("decode form for %s: %w", rec.ID, err)
	}
	rec.CV = normalizeStored(cv)
	if resumeDoc.Valid {
		rec.FormattedResumeDoc = &resumeDoc.String
	}
	if careerHistory.Valid {
		rec.CareerHistoryDoc = &careerHistory.String
	}
	return rec, nil
}

// normalizeStored keeps slices non-nil for rows written with JSON nulls.
func normalizeStored(cv cvform.CV) cvform.CV {
	if cv.Education == nil {
		cv.Education = []cvform.Education{}
	}
	if cv.Experience == nil {
		cv.Experience = []cvform.Experience{}
	}
	if cv.Certifications == nil {
		cv.Certifications = []cvform.Certification{}
	}
	if cv.Skills.Selected == nil {
		cv.Skills.Selected = []string{}
	}
	return cv
}

func nullString(s *string) any {
	if s == nil {
		return nil
	}
	return *s
}

var _ Repo = (*PGRepo)(nil)
