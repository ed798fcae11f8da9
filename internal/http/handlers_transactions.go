package http

import (
	"net/http"
	"strings"

	"skeletonkey/internal/core"
)

// transactionPage is the list response envelope. Total counts the filtered
// set, not the page.
type transactionPage struct {
	Transactions []core.Transaction `json:"transactions"`
	Total        int                `json:"total"`
	Page         int                `json:"page"`
	PageSize     int                `json:"page_size"`
	Pages        int                `json:"pages"`
}

func (s *Server) handleListTransactions(w http.ResponseWriter, r *http.Request) {
	filter, err := parseFilter(r.URL.Query())
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	field, dir := parseSort(r.URL.Query())
	page, pageSize := parsePagination(r.URL.Query())

	records, err := s.ledger.ListTransactions(r.Context())
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	filtered := core.Apply(records, filter)
	sorted := core.SortBy(filtered, field, dir)
	pageRecords := core.Paginate(sorted, pageSize, page)
	if pageRecords == nil {
		pageRecords = []core.Transaction{}
	}

	writeJSON(w, http.StatusOK, transactionPage{
		Transactions: pageRecords,
		Total:        len(filtered),
		Page:         page,
		PageSize:     pageSize,
		Pages:        core.PageCount(len(filtered), pageSize),
	})
}

func (s *Server) handleCreateTransaction(w http.ResponseWriter, r *http.Request) {
	var t core.Transaction
	if err := decodeJSON(r, &t); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	// IDs are assigned by the store.
	t.ID = ""

	saved, err := s.ledger.CreateTransaction(r.Context(), t)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	s.structLog.LogTransactionCreated(r.Context(), saved.ID, saved.Description, saved.Amount.Cents, saved.Category)
	s.invalidateAnalytics()
	writeJSON(w, http.StatusCreated, saved)
}

func (s *Server) handleGetTransaction(w http.ResponseWriter, r *http.Request) {
	t, err := s.ledger.GetTransaction(r.Context(), r.PathValue("id"))
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, t)
}

func (s *Server) handleUpdateTransaction(w http.ResponseWriter, r *http.Request) {
	var t core.Transaction
	if err := decodeJSON(r, &t); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	// The path, not the body, names the record.
	t.ID = r.PathValue("id")

	if err := s.ledger.UpdateTransaction(r.Context(), t); err != nil {
		writeServiceError(w, r, err)
		return
	}

	s.invalidateAnalytics()
	writeJSON(w, http.StatusOK, t)
}

func (s *Server) handleDeleteTransaction(w http.ResponseWriter, r *http.Request) {
	if err := s.ledger.DeleteTransaction(r.Context(), r.PathValue("id")); err != nil {
		writeServiceError(w, r, err)
		return
	}

	s.invalidateAnalytics()
	w.WriteHeader(http.StatusNoContent)
}

type renameCategoryRequest struct {
	From string `json:"from"`
	To   string `json:"to"`
}

func (s *Server) handleRenameCategory(w http.ResponseWriter, r *http.Request) {
	var req renameCategoryRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	req.From = strings.TrimSpace(req.From)
	req.To = strings.TrimSpace(req.To)
	if req.From == "" || req.To == "" {
		writeError(w, http.StatusUnprocessableEntity, "both from and to categories are required")
		return
	}

	n, err := s.ledger.RenameCategory(r.Context(), req.From, req.To)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	s.invalidateAnalytics()
	writeJSON(w, http.StatusOK, map[string]int{"renamed": n})
}
