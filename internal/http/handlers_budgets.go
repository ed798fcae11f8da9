package http

import (
	"net/http"

	"skeletonkey/internal/core"
)

func (s *Server) handleGetBudgets(w http.ResponseWriter, r *http.Request) {
	budgets, err := s.ledger.Budgets(r.Context())
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"budgets": budgets})
}

type saveBudgetsRequest struct {
	Budgets []core.Budget `json:"budgets"`
}

// handleSaveBudgets replaces the whole budget set. Partial updates are not
// supported; the dashboard always submits the full list.
func (s *Server) handleSaveBudgets(w http.ResponseWriter, r *http.Request) {
	var req saveBudgetsRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	if err := s.ledger.SaveBudgets(r.Context(), req.Budgets); err != nil {
		writeServiceError(w, r, err)
		return
	}

	s.invalidateAnalytics()

	budgets, err := s.ledger.Budgets(r.Context())
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"budgets": budgets})
}

// handleBudgetStatus reports each budget against the given month's spend,
// defaulting to the current month.
func (s *Server) handleBudgetStatus(w http.ResponseWriter, r *http.Request) {
	year, month := parseYearMonth(r.URL.Query())

	s.respondCached(w, r, func() (any, error) {
		budgets, err := s.ledger.Budgets(r.Context())
		if err != nil {
			return nil, err
		}
		records, err := s.ledger.ListTransactions(r.Context())
		if err != nil {
			return nil, err
		}
		reports := core.EvaluateBudgets(records, budgets, year, month)
		return map[string]any{
			"year":    year,
			"month":   month,
			"budgets": reports,
		}, nil
	})
}
