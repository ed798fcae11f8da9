package http

import (
	"encoding/base64"
	"log/slog"
	"net/http"
	"sort"
	"strings"

	"skeletonkey/internal/core"
	"skeletonkey/internal/insights"
)

// Document payloads are capped at 10 MB before base64 decoding.
const maxDocumentBytes = 10 << 20

type transactionInsightResponse struct {
	Insight  insights.TransactionInsight `json:"insight"`
	Fallback bool                        `json:"fallback"`
}

// handleTransactionInsight asks the model to enrich a single record. The
// endpoint degrades instead of failing: when the analyzer is absent or
// errors, a deterministic fallback built from the record itself comes back
// with fallback=true.
func (s *Server) handleTransactionInsight(w http.ResponseWriter, r *http.Request) {
	var t core.Transaction
	if err := decodeJSON(r, &t); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if err := t.Validate(); err != nil {
		writeError(w, http.StatusUnprocessableEntity, err.Error())
		return
	}

	if s.analyzer == nil {
		writeJSON(w, http.StatusOK, transactionInsightResponse{
			Insight:  fallbackInsight(t),
			Fallback: true,
		})
		return
	}

	categories, err := s.knownCategories(r)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	insight, err := s.analyzer.AnalyzeTransaction(r.Context(), t, categories)
	if err != nil {
		slog.WarnContext(r.Context(), "Transaction analysis failed, serving fallback",
			"error", err, "description", t.Description)
		writeJSON(w, http.StatusOK, transactionInsightResponse{
			Insight:  fallbackInsight(t),
			Fallback: true,
		})
		return
	}

	writeJSON(w, http.StatusOK, transactionInsightResponse{Insight: insight})
}

func fallbackInsight(t core.Transaction) insights.TransactionInsight {
	category := strings.TrimSpace(t.Category)
	if category == "" {
		category = core.UncategorizedBucket
	}
	return insights.TransactionInsight{
		CleanMerchant: core.NormalizeMerchant(t.DisplayMerchant()),
		Category:      category,
		Insight:       "Automatic analysis is unavailable right now.",
	}
}

// knownCategories collects the distinct category names in the ledger so the
// model picks from existing ones before inventing new labels.
func (s *Server) knownCategories(r *http.Request) ([]string, error) {
	records, err := s.ledger.ListTransactions(r.Context())
	if err != nil {
		return nil, err
	}
	seen := make(map[string]struct{})
	var out []string
	for _, t := range records {
		c := strings.TrimSpace(t.Category)
		if c == "" {
			continue
		}
		if _, ok := seen[c]; ok {
			continue
		}
		seen[c] = struct{}{}
		out = append(out, c)
	}
	sort.Strings(out)
	return out, nil
}

type documentInsightRequest struct {
	// Data is the base64-encoded document body.
	Data     string `json:"data"`
	MimeType string `json:"mime_type"`
	Mode     string `json:"mode"`
}

type documentInsightResponse struct {
	Result   string `json:"result"`
	Fallback bool   `json:"fallback"`
}

// handleDocumentInsight runs a bank statement or receipt through the model.
func (s *Server) handleDocumentInsight(w http.ResponseWriter, r *http.Request) {
	var req documentInsightRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if strings.TrimSpace(req.Data) == "" {
		writeError(w, http.StatusBadRequest, "data is required")
		return
	}
	if strings.TrimSpace(req.MimeType) == "" {
		writeError(w, http.StatusBadRequest, "mime_type is required")
		return
	}

	data, err := base64.StdEncoding.DecodeString(req.Data)
	if err != nil {
		writeError(w, http.StatusBadRequest, "data must be base64 encoded")
		return
	}
	if len(data) > maxDocumentBytes {
		writeError(w, http.StatusRequestEntityTooLarge, "document too large")
		return
	}

	if s.analyzer == nil {
		writeJSON(w, http.StatusOK, documentInsightResponse{
			Result:   "Automatic analysis is unavailable right now.",
			Fallback: true,
		})
		return
	}

	result, err := s.analyzer.AnalyzeDocument(r.Context(), data, req.MimeType, req.Mode)
	if err != nil {
		slog.WarnContext(r.Context(), "Document analysis failed, serving fallback",
			"error", err, "mime_type", req.MimeType, "mode", req.Mode)
		writeJSON(w, http.StatusOK, documentInsightResponse{
			Result:   "Automatic analysis is unavailable right now.",
			Fallback: true,
		})
		return
	}

	writeJSON(w, http.StatusOK, documentInsightResponse{Result: result})
}
