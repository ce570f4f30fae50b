package orchestrators

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"noticeboard/internal/adapters/email"
	noticeStore "noticeboard/internal/adapters/storage/notice"
	"noticeboard/internal/domain/notice"
)

// NoticeStoreForOrchestrator defines the store interface needed by notice orchestrators.
type NoticeStoreForOrchestrator interface {
	ListAll(ctx context.Context) ([]notice.Notice, error)
	Insert(ctx context.Context, n notice.Notice) (int64, error)
	GetByID(ctx context.Context, id int64, incrementReadCount bool) (notice.Notice, error)
	Update(ctx context.Context, id int64, fields noticeStore.UpdateFields, now time.Time) error
	Delete(ctx context.Context, id int64) error
}

// MsgResult is the uniform outcome of a mutating notice operation. Every
// create/update/delete call produces one, success or failure, so the caller
// always has a message to show the user.
type MsgResult struct {
	Success bool
	Msg     string
}

// User-facing result messages.
const (
	MsgCreated = "The notice has been registered."
	MsgUpdated = "The notice has been updated."
	MsgDeleted = "The notice has been deleted."
)

func failure(err error) MsgResult {
	return MsgResult{Msg: "The request failed: " + err.Error()}
}

// --- List Notices ---

// ListNoticesDeps holds dependencies for ListNotices.
type ListNoticesDeps struct {
	NoticeStore NoticeStoreForOrchestrator
}

// ExecuteListNotices returns every notice on the board, newest first.
// The list view never fails visibly: a store failure is logged and rendered
// as an empty board.
// PRE: none
// POST: Returns a non-nil slice
func ExecuteListNotices(ctx context.Context, deps ListNoticesDeps) []notice.Notice {
	notices, err := deps.NoticeStore.ListAll(ctx)
	if err != nil {
		slog.Error("notice_event", "event", "notice_list_failed", "error", err.Error())
		return []notice.Notice{}
	}
	if notices == nil {
		return []notice.Notice{}
	}
	return notices
}

// --- Create Notice ---

// CreateNoticeInput carries input for the create notice orchestrator.
type CreateNoticeInput struct {
	Title    string
	IsNotice string // Y = pinned notice, N = regular post
	Contents string
	AuthorID string // logged-in user id supplied by the handler layer
}

// CreateNoticeDeps holds dependencies for CreateNotice.
type CreateNoticeDeps struct {
	NoticeStore NoticeStoreForOrchestrator
	Now         func() time.Time

	// Announcer, when set, emails AnnounceTo about newly pinned notices.
	// A send failure never fails the create.
	Announcer    email.Sender
	AnnounceTo   []string
	AnnounceFrom string
}

// ExecuteCreateNotice creates a new notice with audit stamps and a zero read
// count. The store assigns the id.
// PRE: Title, IsNotice, Contents, AuthorID pass domain validation
// POST: Notice persisted with CreatedBy == UpdatedBy == AuthorID and
// CreatedAt == UpdatedAt
func ExecuteCreateNotice(ctx context.Context, input CreateNoticeInput, deps CreateNoticeDeps) MsgResult {
	now := deps.Now()
	n := notice.Notice{
		Title:     input.Title,
		IsNotice:  input.IsNotice,
		Contents:  input.Contents,
		AuthorID:  input.AuthorID,
		ReadCount: 0,
		CreatedBy: input.AuthorID,
		CreatedAt: now,
		UpdatedBy: input.AuthorID,
		UpdatedAt: now,
	}

	if err := n.Validate(); err != nil {
		return failure(err)
	}

	id, err := deps.NoticeStore.Insert(ctx, n)
	if err != nil {
		slog.Error("notice_event", "event", "notice_create_failed", "error", err.Error())
		return failure(err)
	}

	slog.Info("notice_event", "event", "notice_created", "notice_id", id, "pinned", n.IsPinned(), "author_id", input.AuthorID)

	if n.IsPinned() && deps.Announcer != nil && len(deps.AnnounceTo) > 0 {
		announcePinnedNotice(ctx, deps, id, n)
	}

	return MsgResult{Success: true, Msg: MsgCreated}
}

// announcePinnedNotice emails the configured recipients about a new pinned
// notice. Failures are logged, never propagated.
func announcePinnedNotice(ctx context.Context, deps CreateNoticeDeps, id int64, n notice.Notice) {
	_, err := deps.Announcer.Send(ctx, email.SendRequest{
		To:      deps.AnnounceTo,
		From:    deps.AnnounceFrom,
		Subject: "[Notice] " + n.Title,
		HTML:    fmt.Sprintf("<p>A new notice has been posted by %s.</p><pre>%s</pre>", n.AuthorID, n.Contents),
	})
	if err != nil {
		slog.Error("notice_event", "event", "notice_announce_failed", "notice_id", id, "error", err.Error())
		return
	}
	slog.Info("notice_event", "event", "notice_announced", "notice_id", id, "recipients", len(deps.AnnounceTo))
}

// --- Get Notice Detail ---

// GetNoticeDetailInput carries input for the detail orchestrator.
type GetNoticeDetailInput struct {
	ID                 int64
	IncrementReadCount bool // true for the public detail view, false for the edit view
}

// GetNoticeDetailDeps holds dependencies for GetNoticeDetail.
type GetNoticeDetailDeps struct {
	NoticeStore NoticeStoreForOrchestrator
}

// ExecuteGetNoticeDetail fetches one notice, optionally counting the read.
// A missing id yields a blank zero-value Notice rather than an error, so the
// detail view always has something to render.
// PRE: none
// POST: With increment, the returned record reflects the bumped read count;
// NotFound is converted to a blank Notice
func ExecuteGetNoticeDetail(ctx context.Context, input GetNoticeDetailInput, deps GetNoticeDetailDeps) (notice.Notice, error) {
	if input.ID <= 0 {
		return notice.Notice{}, notice.ErrInvalidID
	}

	n, err := deps.NoticeStore.GetByID(ctx, input.ID, input.IncrementReadCount)
	if errors.Is(err, noticeStore.ErrNotFound) {
		slog.Info("notice_event", "event", "notice_not_found", "notice_id", input.ID)
		return notice.Notice{}, nil
	}
	if err != nil {
		return notice.Notice{}, err
	}
	return n, nil
}

// --- Update Notice ---

// UpdateNoticeInput carries input for the update notice orchestrator.
type UpdateNoticeInput struct {
	ID       int64
	Title    string
	IsNotice string
	Contents string
	AuthorID string
}

// UpdateNoticeDeps holds dependencies for UpdateNotice.
type UpdateNoticeDeps struct {
	NoticeStore NoticeStoreForOrchestrator
	Now         func() time.Time
}

// ExecuteUpdateNotice overwrites the mutable fields of an existing notice.
// Identity, created stamps and read count are never sent to the store.
// PRE: fields pass domain validation
// POST: Notice updated with fresh updated stamps, or a failure message
// (including NotFound) with the store unchanged
func ExecuteUpdateNotice(ctx context.Context, input UpdateNoticeInput, deps UpdateNoticeDeps) MsgResult {
	if input.ID <= 0 {
		return failure(notice.ErrInvalidID)
	}

	candidate := notice.Notice{
		Title:    input.Title,
		IsNotice: input.IsNotice,
		Contents: input.Contents,
		AuthorID: input.AuthorID,
	}
	if err := candidate.Validate(); err != nil {
		return failure(err)
	}

	err := deps.NoticeStore.Update(ctx, input.ID, noticeStore.UpdateFields{
		Title:    input.Title,
		IsNotice: input.IsNotice,
		Contents: input.Contents,
		AuthorID: input.AuthorID,
	}, deps.Now())
	if err != nil {
		slog.Warn("notice_event", "event", "notice_update_failed", "notice_id", input.ID, "error", err.Error())
		return failure(err)
	}

	slog.Info("notice_event", "event", "notice_updated", "notice_id", input.ID, "author_id", input.AuthorID)
	return MsgResult{Success: true, Msg: MsgUpdated}
}

// --- Delete Notice ---

// DeleteNoticeInput carries input for the delete notice orchestrator.
type DeleteNoticeInput struct {
	ID int64
}

// DeleteNoticeDeps holds dependencies for DeleteNotice.
type DeleteNoticeDeps struct {
	NoticeStore NoticeStoreForOrchestrator
}

// ExecuteDeleteNotice hard-removes a notice.
// PRE: none
// POST: Notice removed, or a failure message (including NotFound)
func ExecuteDeleteNotice(ctx context.Context, input DeleteNoticeInput, deps DeleteNoticeDeps) MsgResult {
	if input.ID <= 0 {
		return failure(notice.ErrInvalidID)
	}

	if err := deps.NoticeStore.Delete(ctx, input.ID); err != nil {
		slog.Warn("notice_event", "event", "notice_delete_failed", "notice_id", input.ID, "error", err.Error())
		return failure(err)
	}

	slog.Info("notice_event", "event", "notice_deleted", "notice_id", input.ID)
	return MsgResult{Success: true, Msg: MsgDeleted}
}
