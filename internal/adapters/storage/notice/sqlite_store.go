package notice

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"noticeboard/internal/adapters/storage"
	domain "noticeboard/internal/domain/notice"
)

const timeLayout = "2006-01-02T15:04:05Z07:00"

// SQLiteStore implements Store using SQLite.
type SQLiteStore struct {
	db storage.SQLDB
}

// Compile-time check that *SQLiteStore satisfies Store.
var _ Store = (*SQLiteStore)(nil)

// NewSQLiteStore creates a new SQLiteStore.
func NewSQLiteStore(db storage.SQLDB) *SQLiteStore {
	return &SQLiteStore{db: db}
}

const noticeColumns = `notice_seq, title, is_notice, contents, author_id, read_count,
		created_by, created_at, updated_by, updated_at`

// ListAll returns every notice, newest first.
// PRE: none
// POST: Returns all notices ordered by notice_seq DESC; empty slice on empty board
func (s *SQLiteStore) ListAll(ctx context.Context) ([]domain.Notice, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+noticeColumns+` FROM notice ORDER BY notice_seq DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanNotices(rows)
}

// Insert persists a new notice and returns the generated id.
// PRE: n has been validated; n.ID is ignored
// POST: Row inserted with a store-assigned id
func (s *SQLiteStore) Insert(ctx context.Context, n domain.Notice) (int64, error) {
	res, err := s.db.ExecContext(ctx,
		`INSERT INTO notice (title, is_notice, contents, author_id, read_count,
		   created_by, created_at, updated_by, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		n.Title, n.IsNotice, n.Contents, n.AuthorID, n.ReadCount,
		n.CreatedBy, n.CreatedAt.Format(timeLayout),
		n.UpdatedBy, n.UpdatedAt.Format(timeLayout))
	if err != nil {
		return 0, fmt.Errorf("insert notice: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("insert notice id: %w", err)
	}
	return id, nil
}

// GetByID fetches a notice, optionally bumping the read count first.
// The increment is a single UPDATE statement, so concurrent counted reads on
// the same id serialize inside SQLite and no increment is ever lost.
// PRE: id > 0
// POST: With increment, read_count is one higher and the returned record
// reflects the post-increment state; without, no mutation occurs
func (s *SQLiteStore) GetByID(ctx context.Context, id int64, incrementReadCount bool) (domain.Notice, error) {
	if incrementReadCount {
		res, err := s.db.ExecContext(ctx,
			`UPDATE notice SET read_count = read_count + 1 WHERE notice_seq = ?`, id)
		if err != nil {
			return domain.Notice{}, fmt.Errorf("increment read count: %w", err)
		}
		affected, err := res.RowsAffected()
		if err != nil {
			return domain.Notice{}, fmt.Errorf("increment read count: %w", err)
		}
		if affected == 0 {
			return domain.Notice{}, ErrNotFound
		}
	}

	row := s.db.QueryRowContext(ctx,
		`SELECT `+noticeColumns+` FROM notice WHERE notice_seq = ?`, id)
	n, err := scanNotice(row)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.Notice{}, ErrNotFound
	}
	return n, err
}

// Update overwrites the mutable columns and stamps updated_by/updated_at.
// The existence check and the mutation are one statement, so a concurrent
// delete cannot slip between them.
// PRE: id > 0, fields have been validated
// POST: Row updated, or ErrNotFound if the id has no record
func (s *SQLiteStore) Update(ctx context.Context, id int64, fields UpdateFields, now time.Time) error {
	res, err := s.db.ExecContext(ctx,
		`UPDATE notice SET title = ?, is_notice = ?, contents = ?, author_id = ?,
		   updated_by = ?, updated_at = ?
		 WHERE notice_seq = ?`,
		fields.Title, fields.IsNotice, fields.Contents, fields.AuthorID,
		fields.AuthorID, now.Format(timeLayout), id)
	if err != nil {
		return fmt.Errorf("update notice: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("update notice: %w", err)
	}
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}

// Delete hard-removes a notice.
// PRE: id > 0
// POST: Row removed, or ErrNotFound if the id has no record
func (s *SQLiteStore) Delete(ctx context.Context, id int64) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM notice WHERE notice_seq = ?`, id)
	if err != nil {
		return fmt.Errorf("delete notice: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete notice: %w", err)
	}
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}

// scanNotice scans a single row into a Notice.
func scanNotice(row *sql.Row) (domain.Notice, error) {
	var n domain.Notice
	var createdAt, updatedAt string

	err := row.Scan(&n.ID, &n.Title, &n.IsNotice, &n.Contents, &n.AuthorID, &n.ReadCount,
		&n.CreatedBy, &createdAt, &n.UpdatedBy, &updatedAt)
	if err != nil {
		return domain.Notice{}, err
	}

	n.CreatedAt = parseTime(createdAt, "created_at", n.ID)
	n.UpdatedAt = parseTime(updatedAt, "updated_at", n.ID)
	return n, nil
}

// scanNotices scans multiple rows into a slice of Notices.
func scanNotices(rows *sql.Rows) ([]domain.Notice, error) {
	var notices []domain.Notice
	for rows.Next() {
		var n domain.Notice
		var createdAt, updatedAt string

		err := rows.Scan(&n.ID, &n.Title, &n.IsNotice, &n.Contents, &n.AuthorID, &n.ReadCount,
			&n.CreatedBy, &createdAt, &n.UpdatedBy, &updatedAt)
		if err != nil {
			return nil, err
		}

		n.CreatedAt = parseTime(createdAt, "created_at", n.ID)
		n.UpdatedAt = parseTime(updatedAt, "updated_at", n.ID)
		notices = append(notices, n)
	}
	return notices, rows.Err()
}

// parseTime parses a time string, logging a warning on failure.
func parseTime(raw, field string, noticeID int64) time.Time {
	t, err := time.Parse(timeLayout, raw)
	if err != nil {
		slog.Warn("notice: failed to parse time", "field", field, "notice_id", noticeID, "raw", raw, "error", err)
	}
	return t
}
