package history

import (
	"context"
	"database/sql"
	"time"
)

type Repository interface {
	CreateEntry(ctx context.Context, entry *Entry, data []byte) error
	GetEntry(ctx context.Context, id string) (*Entry, error)
	GetEntryData(ctx context.Context, id string) ([]byte, error)
	ListEntries(ctx context.Context) ([]*Entry, error)
	DeleteEntry(ctx context.Context, id string) error
	DeleteAllEntries(ctx context.Context) (int, error)
	EntryStats(ctx context.Context) (Stats, error)

	CreateJob(ctx context.Context, job *Job) error
	GetJob(ctx context.Context, id string) (*Job, error)
	ListJobs(ctx context.Context, limit int) ([]*Job, error)
	UpdateJobStatus(ctx context.Context, id, status, errorMsg string) error
	UpdateJobProgress(ctx context.Context, id string, progress int) error
	CompleteJob(ctx context.Context, id, historyID string) error

	GetConfig(ctx context.Context, key string) (string, error)
	SetConfig(ctx context.Context, key, value string) error
}

type SQLiteRepository struct {
	db  *sql.DB
	now func() time.Time
}

func NewRepository(db *sql.DB) *SQLiteRepository {
	return &SQLiteRepository{db: db, now: time.Now}
}

const entryColumns = `id, file_name, size, frame_count, average_delay_ms, width, height, created_at`

func (r *SQLiteRepository) CreateEntry(ctx context.Context, e *Entry, data []byte) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO history_entries (id, file_name, size, frame_count, average_delay_ms, width, height, data, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, e.ID, e.FileName, e.Size, e.FrameCount, e.AverageDelayMs, e.Width, e.Height, data, formatTime(e.CreatedAt))
	return err
}

func (r *SQLiteRepository) GetEntry(ctx context.Context, id string) (*Entry, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+entryColumns+` FROM history_entries WHERE id = ?`, id)
	e, err := scanEntry(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	return e, err
}

// GetEntryData returns nil without error when the entry does not exist.
func (r *SQLiteRepository) GetEntryData(ctx context.Context, id string) ([]byte, error) {
	var data []byte
	err := r.db.QueryRowContext(ctx, "SELECT data FROM history_entries WHERE id = ?", id).Scan(&data)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	return data, err
}

// ListEntries returns entries newest first.
func (r *SQLiteRepository) ListEntries(ctx context.Context) ([]*Entry, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT `+entryColumns+` FROM history_entries ORDER BY seq DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var entries []*Entry
	for rows.Next() {
		e, err := scanEntry(rows)
		if err != nil {
			return nil, err
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

func (r *SQLiteRepository) DeleteEntry(ctx context.Context, id string) error {
	_, err := r.db.ExecContext(ctx, "DELETE FROM history_entries WHERE id = ?", id)
	return err
}

func (r *SQLiteRepository) DeleteAllEntries(ctx context.Context) (int, error) {
	res, err := r.db.ExecContext(ctx, "DELETE FROM history_entries")
	if err != nil {
		return 0, err
	}
	n, err := res.RowsAffected()
	return int(n), err
}

func (r *SQLiteRepository) EntryStats(ctx context.Context) (Stats, error) {
	var s Stats
	err := r.db.QueryRowContext(ctx, "SELECT COUNT(*), COALESCE(SUM(size), 0) FROM history_entries").Scan(&s.Count, &s.TotalBytes)
	return s, err
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanEntry(row rowScanner) (*Entry, error) {
	var e Entry
	var createdAt string
	if err := row.Scan(&e.ID, &e.FileName, &e.Size, &e.FrameCount, &e.AverageDelayMs, &e.Width, &e.Height, &createdAt); err != nil {
		return nil, err
	}
	e.CreatedAt = parseTime(createdAt)
	return &e, nil
}

func (r *SQLiteRepository) CreateJob(ctx context.Context, j *Job) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO encode_jobs (id, status, frame_count, background, progress, history_id, error, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, j.ID, j.Status, j.FrameCount, j.Background, j.Progress, nullString(j.HistoryID), nullString(j.Error),
		formatTime(j.CreatedAt), formatTime(j.UpdatedAt))
	return err
}

const jobColumns = `id, status, frame_count, background, progress, history_id, error, created_at, updated_at`

func (r *SQLiteRepository) GetJob(ctx context.Context, id string) (*Job, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+jobColumns+` FROM encode_jobs WHERE id = ?`, id)
	j, err := scanJob(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	return j, err
}

func (r *SQLiteRepository) ListJobs(ctx context.Context, limit int) ([]*Job, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := r.db.QueryContext(ctx, `
		SELECT `+jobColumns+` FROM encode_jobs ORDER BY created_at DESC, rowid DESC LIMIT ?
	`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var jobs []*Job
	for rows.Next() {
		j, err := scanJob(rows)
		if err != nil {
			return nil, err
		}
		jobs = append(jobs, j)
	}
	return jobs, rows.Err()
}

func scanJob(row rowScanner) (*Job, error) {
	var j Job
	var historyID, errMsg sql.NullString
	var createdAt, updatedAt string

	if err := row.Scan(&j.ID, &j.Status, &j.FrameCount, &j.Background, &j.Progress, &historyID, &errMsg, &createdAt, &updatedAt); err != nil {
		return nil, err
	}
	j.HistoryID = historyID.String
	j.Error = errMsg.String
	j.CreatedAt = parseTime(createdAt)
	j.UpdatedAt = parseTime(updatedAt)
	return &j, nil
}

func (r *SQLiteRepository) UpdateJobStatus(ctx context.Context, id, status, errorMsg string) error {
	_, err := r.db.ExecContext(ctx, `
		UPDATE encode_jobs SET status = ?, error = ?, updated_at = ? WHERE id = ?
	`, status, nullString(errorMsg), formatTime(r.now()), id)
	return err
}

func (r *SQLiteRepository) UpdateJobProgress(ctx context.Context, id string, progress int) error {
	_, err := r.db.ExecContext(ctx, `
		UPDATE encode_jobs SET progress = ?, updated_at = ? WHERE id = ?
	`, progress, formatTime(r.now()), id)
	return err
}

// CompleteJob marks the job done. historyID may be empty when the artifact
// was not kept.
func (r *SQLiteRepository) CompleteJob(ctx context.Context, id, historyID string) error {
	_, err := r.db.ExecContext(ctx, `
		UPDATE encode_jobs SET status = ?, progress = 100, history_id = ?, error = NULL, updated_at = ? WHERE id = ?
	`, JobStatusCompleted, nullString(historyID), formatTime(r.now()), id)
	return err
}

func (r *SQLiteRepository) GetConfig(ctx context.Context, key string) (string, error) {
	var value string
	err := r.db.QueryRowContext(ctx, "SELECT value FROM config WHERE key = ?", key).Scan(&value)
	if err == sql.ErrNoRows {
		return "", nil
	}
	return value, err
}

func (r *SQLiteRepository) SetConfig(ctx context.Context, key, value string) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO config (key, value) VALUES (?, ?)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value
	`, key, value)
	return err
}

func formatTime(t time.Time) string {
	return t.UTC().Format(time.RFC3339Nano)
}

func parseTime(s string) time.Time {
	t, err := time.Parse(time.RFC3339Nano, s)
	if err != nil {
		// Rows written by SQLite's datetime('now').
		t, _ = time.Parse(time.DateTime, s)
	}
	return t
}

func nullString(s string) sql.NullString {
	if s == "" {
		return sql.NullString{}
	}
	return sql.NullString{String: s, Valid: true}
}
