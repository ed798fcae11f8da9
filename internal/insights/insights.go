// Package insights is a thin wrapper around the Gemini API. It enriches
// single records and analyzes uploaded statement documents. Failures here
// must never take the dashboard down; callers degrade to a stub payload.
package insights

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"google.golang.org/genai"

	"skeletonkey/internal/core"
)

// TransactionInsight is the structured enrichment the model returns for a
// single ledger record.
type TransactionInsight struct {
	CleanMerchant           string `json:"clean_merchant"`
	Category                string `json:"category"`
	IsSubscriptionSuspected bool   `json:"is_subscription_suspected"`
	Insight                 string `json:"insight"`
}

// DocumentModes supported by AnalyzeDocument.
const (
	ModeSummary   = "summary"
	ModeAnomalies = "anomalies"
	ModeExtract   = "extract"
)

type Service struct {
	client *genai.Client
	model  string
}

// New creates an insights service. Credentials come from the environment
// (GEMINI_API_KEY), resolved by the genai client itself.
func New(ctx context.Context, model string) (*Service, error) {
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		HTTPOptions: genai.HTTPOptions{APIVersion: "v1"},
	})
	if err != nil {
		return nil, fmt.Errorf("create genai client: %w", err)
	}
	if model == "" {
		model = "gemini-2.5-flash"
	}
	return &Service{client: client, model: model}, nil
}

// AnalyzeTransaction asks the model to clean the merchant name, pick a
// category from the caller's list, flag suspected subscriptions, and write a
// one-sentence insight.
func (s *Service) AnalyzeTransaction(ctx context.Context, t core.Transaction, categories []string) (TransactionInsight, error) {
	contents := []*genai.Content{
		{
			Role: "user",
			Parts: []*genai.Part{
				{Text: buildTransactionPrompt(t, categories)},
			},
		},
	}

	cfg := &genai.GenerateContentConfig{
		ResponseMIMEType: "application/json",
		ResponseSchema:   transactionInsightSchema(),
	}

	resp, err := s.client.Models.GenerateContent(ctx, s.model, contents, cfg)
	if err != nil {
		return TransactionInsight{}, fmt.Errorf("generate content: %w", err)
	}

	rawText := resp.Text()
	if rawText == "" {
		return TransactionInsight{}, fmt.Errorf("empty response from model")
	}

	var insight TransactionInsight
	if err := json.Unmarshal([]byte(cleanModelJSON(rawText)), &insight); err != nil {
		return TransactionInsight{}, fmt.Errorf("unmarshal insight: %w\nraw response: %s", err, rawText)
	}
	return insight, nil
}

// AnalyzeDocument sends an uploaded statement (PDF or image) to the model
// with a mode-specific prompt and returns the model's plain-text answer.
func (s *Service) AnalyzeDocument(ctx context.Context, data []byte, mimeType, mode string) (string, error) {
	if len(data) == 0 {
		return "", fmt.Errorf("empty document")
	}

	contents := []*genai.Content{
		{
			Role: "user",
			Parts: []*genai.Part{
				{Text: documentPrompt(mode)},
				{
					InlineData: &genai.Blob{
						MIMEType: mimeType,
						Data:     data,
					},
				},
			},
		},
	}

	resp, err := s.client.Models.GenerateContent(ctx, s.model, contents, nil)
	if err != nil {
		return "", fmt.Errorf("generate content: %w", err)
	}

	text := strings.TrimSpace(resp.Text())
	if text == "" {
		return "", fmt.Errorf("empty response from model")
	}
	return text, nil
}

func transactionInsightSchema() *genai.Schema {
	return &genai.Schema{
		Type: genai.TypeObject,
		Properties: map[string]*genai.Schema{
			"clean_merchant": {
				Type:        genai.TypeString,
				Description: "Merchant name with processor noise and card numbers removed",
			},
			"category": {
				Type:        genai.TypeString,
				Description: "Best-fitting category from the provided list",
			},
			"is_subscription_suspected": {
				Type:        genai.TypeBoolean,
				Description: "Whether this looks like a recurring subscription charge",
			},
			"insight": {
				Type:        genai.TypeString,
				Description: "One short observation about this spending",
			},
		},
		Required: []string{"clean_merchant", "category", "is_subscription_suspected", "insight"},
	}
}

func buildTransactionPrompt(t core.Transaction, categories []string) string {
	var b strings.Builder
	b.WriteString("You are a personal finance assistant for a South African spending dashboard.\n")
	b.WriteString("Analyze this single bank transaction and respond with the requested JSON fields.\n\n")
	fmt.Fprintf(&b, "Description: %s\n", t.Description)
	if t.Merchant != "" {
		fmt.Fprintf(&b, "Merchant: %s\n", t.Merchant)
	}
	fmt.Fprintf(&b, "Amount: %s\n", t.Amount.String())
	if !t.Date.IsEmpty() {
		fmt.Fprintf(&b, "Date: %s\n", t.Date.String())
	}
	if t.Category != "" {
		fmt.Fprintf(&b, "Current category: %s\n", t.Category)
	}
	if len(categories) > 0 {
		fmt.Fprintf(&b, "\nPick the category from this list only: %s\n", strings.Join(categories, ", "))
	}
	b.WriteString("\nAmounts are in South African Rand. Negative amounts are spending, positive are income.\n")
	return b.String()
}

func documentPrompt(mode string) string {
	base := "You are a personal finance assistant. The attached file is a bank statement or receipt. Amounts are in South African Rand.\n\n"
	switch mode {
	case ModeAnomalies:
		return base + "List any unusual, duplicated, or suspicious charges you can find. Be specific: name the line items and amounts. If nothing stands out, say so."
	case ModeExtract:
		return base + "Extract every transaction as STRICT JSON: an array of objects with \"date\" (YYYY-MM-DD), \"description\", \"amount\" (number, negative for money out). Return ONLY valid raw JSON, no Markdown fences."
	default:
		return base + "Summarize this document in a few sentences: the period covered, total money in and out, and the largest spending areas."
	}
}

func cleanModelJSON(raw string) string {
	s := strings.TrimSpace(raw)

	// Handle ```json ... ``` or ``` ... ``` wrappers.
	if strings.HasPrefix(s, "```") {
		if idx := strings.Index(s, "\n"); idx != -1 {
			s = s[idx+1:]
		} else {
			return s
		}
		s = strings.TrimSpace(s)
	}

	if idx := strings.LastIndex(s, "```"); idx != -1 {
		s = s[:idx]
	}

	s = strings.TrimSpace(s)

	// If there's still junk around the JSON object, keep only from the first
	// brace to the matching last one.
	if start := strings.IndexAny(s, "[{"); start != -1 {
		if end := strings.LastIndexAny(s, "]}"); end != -1 && end > start {
			s = strings.TrimSpace(s[start : end+1])
		}
	}

	return s
}
