package http

import (
	"log/slog"
	"net/http"
	"time"

	"skeletonkey/internal/core"
	"skeletonkey/internal/export"
)

// handleExportCSV streams the filtered, sorted record set as a CSV download.
// Pagination is ignored on purpose: an export is always the full selection.
func (s *Server) handleExportCSV(w http.ResponseWriter, r *http.Request) {
	filter, ok := queryFilter(w, r)
	if !ok {
		return
	}
	field, dir := parseSort(r.URL.Query())

	records, err := s.ledger.ListTransactions(r.Context())
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	sorted := core.SortBy(core.Apply(records, filter), field, dir)

	filename := "transactions-" + time.Now().Format("2006-01-02") + ".csv"
	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", `attachment; filename="`+filename+`"`)

	if err := export.WriteCSV(w, sorted); err != nil {
		// Headers are out the door; all we can do is log.
		slog.ErrorContext(r.Context(), "CSV export failed mid-stream", "error", err)
	}
}
