package web

import "net/http"

// registerRoutes attaches every handler to the mux.
// HTML pages live under /notice/, JSON endpoints under /api/.
func registerRoutes(mux *http.ServeMux) {
	mux.HandleFunc("/", handleRoot)

	// HTML views
	mux.HandleFunc("/notice/list", handleNoticeList)
	mux.HandleFunc("/notice/reg", handleNoticeReg)
	mux.HandleFunc("/notice/info", handleNoticeInfo)
	mux.HandleFunc("/notice/edit", handleNoticeEditInfo)

	// JSON API
	mux.HandleFunc("/api/notices", handleAPINoticeList)
	mux.HandleFunc("/api/notice/insert", handleAPINoticeInsert)
	mux.HandleFunc("/api/notice/update", handleAPINoticeUpdate)
	mux.HandleFunc("/api/notice/delete", handleAPINoticeDelete)
}
