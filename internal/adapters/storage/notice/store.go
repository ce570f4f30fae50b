package notice

import (
	"context"
	"errors"
	"time"

	domain "noticeboard/internal/domain/notice"
)

// ErrNotFound is returned when an operation targets a notice id with no record.
var ErrNotFound = errors.New("notice not found")

// Store persists Notice state. The store owns identity generation: Insert
// assigns the id and callers never supply one.
type Store interface {
	// ListAll returns every notice, newest first. An empty board yields an
	// empty slice, not an error.
	ListAll(ctx context.Context) ([]domain.Notice, error)

	// Insert persists a new notice and returns the generated id.
	// The candidate carries all fields except ID.
	Insert(ctx context.Context, n domain.Notice) (int64, error)

	// GetByID fetches a notice. When incrementReadCount is true the read
	// count is bumped atomically and the returned record reflects the
	// post-increment state. Returns ErrNotFound when the id is absent.
	GetByID(ctx context.Context, id int64, incrementReadCount bool) (domain.Notice, error)

	// Update overwrites title, flag, contents and author, stamping
	// updated_by/updated_at. Identity, created stamps and read count are
	// never touched. Returns ErrNotFound when the id is absent.
	Update(ctx context.Context, id int64, fields UpdateFields, now time.Time) error

	// Delete hard-removes a notice. Returns ErrNotFound when the id is absent.
	Delete(ctx context.Context, id int64) error
}

// UpdateFields carries the mutable columns for Update.
type UpdateFields struct {
	Title    string
	IsNotice string
	Contents string
	AuthorID string
}
