package http

import (
	"net/http"
	"strings"

	"skeletonkey/internal/core"
)

type summaryResponse struct {
	Totals         core.Totals `json:"totals"`
	SavingsRate    float64     `json:"savings_rate"`
	AverageExpense core.Money  `json:"average_expense"`
}

// queryFilter parses the filter up front so malformed queries come back as
// 400 instead of surfacing from the cache-build path.
func queryFilter(w http.ResponseWriter, r *http.Request) (core.Filter, bool) {
	filter, err := parseFilter(r.URL.Query())
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return core.Filter{}, false
	}
	return filter, true
}

func (s *Server) filteredRecords(r *http.Request, filter core.Filter) ([]core.Transaction, error) {
	records, err := s.ledger.ListTransactions(r.Context())
	if err != nil {
		return nil, err
	}
	return core.Apply(records, filter), nil
}

func (s *Server) handleSummary(w http.ResponseWriter, r *http.Request) {
	filter, ok := queryFilter(w, r)
	if !ok {
		return
	}
	s.respondCached(w, r, func() (any, error) {
		records, err := s.filteredRecords(r, filter)
		if err != nil {
			return nil, err
		}
		totals := core.Summarize(records)
		return summaryResponse{
			Totals:         totals,
			SavingsRate:    totals.SavingsRate(),
			AverageExpense: totals.AverageExpense(),
		}, nil
	})
}

func (s *Server) handleCategoryBreakdown(w http.ResponseWriter, r *http.Request) {
	filter, ok := queryFilter(w, r)
	if !ok {
		return
	}
	topN := parseTopN(r.URL.Query(), core.DefaultCategoryTopN)
	s.respondCached(w, r, func() (any, error) {
		records, err := s.filteredRecords(r, filter)
		if err != nil {
			return nil, err
		}
		return map[string]any{"categories": core.ByCategory(records, topN)}, nil
	})
}

func (s *Server) handleMonthBreakdown(w http.ResponseWriter, r *http.Request) {
	filter, ok := queryFilter(w, r)
	if !ok {
		return
	}
	s.respondCached(w, r, func() (any, error) {
		records, err := s.filteredRecords(r, filter)
		if err != nil {
			return nil, err
		}
		return map[string]any{"months": core.ByMonth(records)}, nil
	})
}

func (s *Server) handleMerchantBreakdown(w http.ResponseWriter, r *http.Request) {
	filter, ok := queryFilter(w, r)
	if !ok {
		return
	}
	topN := parseTopN(r.URL.Query(), core.DefaultMerchantTopN)
	s.respondCached(w, r, func() (any, error) {
		records, err := s.filteredRecords(r, filter)
		if err != nil {
			return nil, err
		}
		return map[string]any{"merchants": core.ByMerchant(records, topN)}, nil
	})
}

func (s *Server) handleWeekdayBreakdown(w http.ResponseWriter, r *http.Request) {
	filter, ok := queryFilter(w, r)
	if !ok {
		return
	}
	s.respondCached(w, r, func() (any, error) {
		records, err := s.filteredRecords(r, filter)
		if err != nil {
			return nil, err
		}
		return map[string]any{"weekdays": core.ByWeekday(records)}, nil
	})
}

// handleComparison contrasts the [from, to] window with the equal-length
// window immediately before it. Both bounds are required.
func (s *Server) handleComparison(w http.ResponseWriter, r *http.Request) {
	fromStr := strings.TrimSpace(r.URL.Query().Get("from"))
	toStr := strings.TrimSpace(r.URL.Query().Get("to"))
	if fromStr == "" || toStr == "" {
		writeError(w, http.StatusBadRequest, "from and to dates are required")
		return
	}
	from, err := core.ParseDate(fromStr)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid from date")
		return
	}
	to, err := core.ParseDate(toStr)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid to date")
		return
	}
	if to.Before(from.Time) {
		writeError(w, http.StatusBadRequest, "to must not precede from")
		return
	}

	s.respondCached(w, r, func() (any, error) {
		records, err := s.ledger.ListTransactions(r.Context())
		if err != nil {
			return nil, err
		}
		return core.ComparePeriods(records, from, to), nil
	})
}
