package web

import (
	"bytes"
	"embed"
	"encoding/json"
	"errors"
	"html/template"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/csrf"
	"github.com/yuin/goldmark"
	goldmarkHTML "github.com/yuin/goldmark/renderer/html"

	"noticeboard/internal/application/orchestrators"
	noticeDomain "noticeboard/internal/domain/notice"
)

// timeNow is a variable for testability.
var timeNow = time.Now

// mdRenderer is a goldmark instance configured for safe HTML output.
// Raw HTML in markdown input is escaped (WithUnsafe is NOT set), preventing XSS.
var mdRenderer = goldmark.New(
	goldmark.WithRendererOptions(
		goldmarkHTML.WithHardWraps(),
	),
)

// internalError logs the real error and returns a generic message to the client.
// This prevents leaking internal details per OWASP A05.
func internalError(w http.ResponseWriter, err error) {
	slog.Error("internal_error", "error", err.Error())
	http.Error(w, "internal server error", http.StatusInternalServerError)
}

// strictDecode decodes JSON from the request body, rejecting unknown fields.
func strictDecode(r *http.Request, v any) error {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	return dec.Decode(v)
}

// writeMsg writes the uniform {"msg": ...} result every mutating endpoint
// returns, success or failure.
func writeMsg(w http.ResponseWriter, res orchestrators.MsgResult) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]string{"msg": res.Msg})
}

//go:embed templates/*.html
var templatesFS embed.FS

const displayTimeLayout = "2006-01-02 15:04"

func renderTemplate(w http.ResponseWriter, r *http.Request, templateName string, data any) {
	funcMap := template.FuncMap{
		"csrfToken": func() string { return csrf.Token(r) },
		"renderMarkdown": func(md string) template.HTML {
			var buf bytes.Buffer
			if err := mdRenderer.Convert([]byte(md), &buf); err != nil {
				return template.HTML(template.HTMLEscapeString(md))
			}
			return template.HTML(buf.String())
		},
		"formatTime": func(t time.Time) string {
			if t.IsZero() {
				return ""
			}
			return t.Format(displayTimeLayout)
		},
		"isPinned": func(flag string) bool { return flag == noticeDomain.FlagPinned },
	}

	tpl, err := template.New("layout.html").Funcs(funcMap).ParseFS(templatesFS,
		"templates/layout.html", "templates/"+templateName)
	if err != nil {
		http.Error(w, "Template error: "+err.Error(), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := tpl.Execute(w, data); err != nil {
		http.Error(w, "Render error: "+err.Error(), http.StatusInternalServerError)
		return
	}
}

// parseNoticeSeq reads the nSeq query parameter as a positive integer id.
func parseNoticeSeq(r *http.Request) (int64, error) {
	raw := r.URL.Query().Get("nSeq")
	if raw == "" {
		return 0, noticeDomain.ErrInvalidID
	}
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return 0, noticeDomain.ErrInvalidID
	}
	return id, nil
}

// handleRoot redirects the bare domain to the board.
func handleRoot(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		http.NotFound(w, r)
		return
	}
	http.Redirect(w, r, "/notice/list", http.StatusSeeOther)
}

// handleNoticeList handles GET /notice/list.
// The board never fails visibly: store errors render as an empty list.
func handleNoticeList(w http.ResponseWriter, r *http.Request) {
	if r.Method != "GET" {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	notices := orchestrators.ExecuteListNotices(r.Context(), orchestrators.ListNoticesDeps{
		NoticeStore: stores.NoticeStore,
	})
	renderTemplate(w, r, "notice_list.html", map[string]any{
		"Notices": notices,
	})
}

// handleNoticeReg handles GET /notice/reg — the registration form.
func handleNoticeReg(w http.ResponseWriter, r *http.Request) {
	if r.Method != "GET" {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	renderTemplate(w, r, "notice_form.html", map[string]any{
		"AuthorID": options.AuthorID,
	})
}

// handleNoticeInfo handles GET /notice/info?nSeq=N — the public detail view.
// Viewing counts: the read counter is bumped as part of the fetch. A missing
// id renders a blank record rather than an error page.
func handleNoticeInfo(w http.ResponseWriter, r *http.Request) {
	handleNoticeDetail(w, r, true, "notice_detail.html")
}

// handleNoticeEditInfo handles GET /notice/edit?nSeq=N — the edit form.
// Loading a notice for editing is not a "read" and never touches the counter.
func handleNoticeEditInfo(w http.ResponseWriter, r *http.Request) {
	handleNoticeDetail(w, r, false, "notice_edit.html")
}

func handleNoticeDetail(w http.ResponseWriter, r *http.Request, increment bool, tmpl string) {
	if r.Method != "GET" {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	id, err := parseNoticeSeq(r)
	if err != nil {
		http.Error(w, "nSeq must be a positive integer", http.StatusBadRequest)
		return
	}

	n, err := orchestrators.ExecuteGetNoticeDetail(r.Context(), orchestrators.GetNoticeDetailInput{
		ID:                 id,
		IncrementReadCount: increment,
	}, orchestrators.GetNoticeDetailDeps{NoticeStore: stores.NoticeStore})
	if errors.Is(err, noticeDomain.ErrInvalidID) {
		http.Error(w, "nSeq must be a positive integer", http.StatusBadRequest)
		return
	}
	if err != nil {
		internalError(w, err)
		return
	}

	renderTemplate(w, r, tmpl, map[string]any{
		"Notice":   n,
		"Found":    !n.IsZero(),
		"AuthorID": options.AuthorID,
	})
}

// noticeMutationInput is the JSON body shared by the mutating API endpoints.
type noticeMutationInput struct {
	NSeq     int64  `json:"nSeq"`
	Title    string `json:"title"`
	NoticeYn string `json:"noticeYn"`
	Contents string `json:"contents"`
}

// handleAPINoticeList handles GET /api/notices — the JSON board.
func handleAPINoticeList(w http.ResponseWriter, r *http.Request) {
	if r.Method != "GET" {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	notices := orchestrators.ExecuteListNotices(r.Context(), orchestrators.ListNoticesDeps{
		NoticeStore: stores.NoticeStore,
	})
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(notices)
}

// handleAPINoticeInsert handles POST /api/notice/insert.
// The author is the placeholder logged-in user id, injected here the way a
// session layer eventually will.
func handleAPINoticeInsert(w http.ResponseWriter, r *http.Request) {
	if r.Method != "POST" {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	var input noticeMutationInput
	if err := strictDecode(r, &input); err != nil {
		http.Error(w, "invalid JSON", http.StatusBadRequest)
		return
	}

	res := orchestrators.ExecuteCreateNotice(r.Context(), orchestrators.CreateNoticeInput{
		Title:    input.Title,
		IsNotice: input.NoticeYn,
		Contents: input.Contents,
		AuthorID: options.AuthorID,
	}, orchestrators.CreateNoticeDeps{
		NoticeStore:  stores.NoticeStore,
		Now:          timeNow,
		Announcer:    options.Sender,
		AnnounceTo:   options.AnnounceTo,
		AnnounceFrom: options.AnnounceFrom,
	})
	writeMsg(w, res)
}

// handleAPINoticeUpdate handles POST /api/notice/update.
func handleAPINoticeUpdate(w http.ResponseWriter, r *http.Request) {
	if r.Method != "POST" {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	var input noticeMutationInput
	if err := strictDecode(r, &input); err != nil {
		http.Error(w, "invalid JSON", http.StatusBadRequest)
		return
	}

	res := orchestrators.ExecuteUpdateNotice(r.Context(), orchestrators.UpdateNoticeInput{
		ID:       input.NSeq,
		Title:    input.Title,
		IsNotice: input.NoticeYn,
		Contents: input.Contents,
		AuthorID: options.AuthorID,
	}, orchestrators.UpdateNoticeDeps{
		NoticeStore: stores.NoticeStore,
		Now:         timeNow,
	})
	writeMsg(w, res)
}

// handleAPINoticeDelete handles POST /api/notice/delete.
func handleAPINoticeDelete(w http.ResponseWriter, r *http.Request) {
	if r.Method != "POST" {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	var input struct {
		NSeq int64 `json:"nSeq"`
	}
	if err := strictDecode(r, &input); err != nil {
		http.Error(w, "invalid JSON", http.StatusBadRequest)
		return
	}

	res := orchestrators.ExecuteDeleteNotice(r.Context(), orchestrators.DeleteNoticeInput{
		ID: input.NSeq,
	}, orchestrators.DeleteNoticeDeps{NoticeStore: stores.NoticeStore})
	writeMsg(w, res)
}
