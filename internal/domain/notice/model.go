package notice

import (
	"errors"
	"time"
)

// Pinned flag values — a notice is either pinned to the top of the board ("Y")
// or a regular post ("N").
const (
	FlagPinned  = "Y"
	FlagRegular = "N"
)

// MaxTitleLength is the column limit for notice titles.
const MaxTitleLength = 500

// ValidFlags contains all valid pinned-flag values.
var ValidFlags = []string{FlagPinned, FlagRegular}

// Domain errors
var (
	ErrEmptyTitle    = errors.New("notice title cannot be empty")
	ErrTitleTooLong  = errors.New("notice title cannot exceed 500 characters")
	ErrInvalidFlag   = errors.New("notice flag must be Y or N")
	ErrEmptyContents = errors.New("notice contents cannot be empty")
	ErrEmptyAuthor   = errors.New("notice author ID cannot be empty")
	ErrInvalidID     = errors.New("notice ID must be a positive integer")
)

// Notice represents a single announcement on the board.
// Contents supports Markdown formatting.
type Notice struct {
	ID        int64  // assigned by the store, never by callers
	Title     string
	IsNotice  string // Y = pinned notice, N = regular post
	Contents  string // Markdown content
	AuthorID  string // opaque user id supplied by the caller
	ReadCount int64  // incremented once per counted detail view
	CreatedBy string
	CreatedAt time.Time
	UpdatedBy string
	UpdatedAt time.Time
}

// Validate checks if the Notice has valid data.
// PRE: Notice struct is populated (ID may be zero before insert)
// POST: Returns nil if valid, error otherwise
func (n *Notice) Validate() error {
	if n.Title == "" {
		return ErrEmptyTitle
	}
	if len([]rune(n.Title)) > MaxTitleLength {
		return ErrTitleTooLong
	}
	if !isValidFlag(n.IsNotice) {
		return ErrInvalidFlag
	}
	if n.Contents == "" {
		return ErrEmptyContents
	}
	if n.AuthorID == "" {
		return ErrEmptyAuthor
	}
	return nil
}

// IsPinned returns true if the notice is pinned to the top of the board.
// INVARIANT: IsNotice field is not mutated
func (n *Notice) IsPinned() bool {
	return n.IsNotice == FlagPinned
}

// IsZero reports whether the notice is the blank placeholder returned
// when a detail lookup finds nothing.
func (n *Notice) IsZero() bool {
	return n.ID == 0 && n.Title == "" && n.Contents == ""
}

func isValidFlag(f string) bool {
	for _, v := range ValidFlags {
		if v == f {
			return true
		}
	}
	return false
}
