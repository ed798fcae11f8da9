package http

import (
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"time"

	"skeletonkey/internal/core"
)

const (
	defaultPageSize = 50
	maxPageSize     = 500
)

// parseFilter builds the record filter from query parameters. Every
// parameter is optional; absent parameters leave that criterion off.
//
//	search=uber            substring match on description and note
//	from=2026-01-01        inclusive date bounds
//	to=2026-01-31
//	category=Food&category=Transport   repeatable, also comma-separated
//	account=Absa Cheque
//	min_amount=100.00      absolute amount bounds in Rand
//	max_amount=999.99
//	type=income|expense|all
//	recurring=true
func parseFilter(query url.Values) (core.Filter, error) {
	var f core.Filter

	f.Search = sanitizeInput(query.Get("search"))

	if v := strings.TrimSpace(query.Get("from")); v != "" {
		d, err := core.ParseDate(v)
		if err != nil {
			return core.Filter{}, fmt.Errorf("invalid from date %q", v)
		}
		f.DateFrom = d
	}
	if v := strings.TrimSpace(query.Get("to")); v != "" {
		d, err := core.ParseDate(v)
		if err != nil {
			return core.Filter{}, fmt.Errorf("invalid to date %q", v)
		}
		f.DateTo = d
	}

	f.Categories = parseMultiValue(query["category"])
	f.Accounts = parseMultiValue(query["account"])

	if v := strings.TrimSpace(query.Get("min_amount")); v != "" {
		cents, err := core.ParseAmountToCents(v)
		if err != nil {
			return core.Filter{}, fmt.Errorf("invalid min_amount %q", v)
		}
		f.AmountMin = absCents(cents)
	}
	if v := strings.TrimSpace(query.Get("max_amount")); v != "" {
		cents, err := core.ParseAmountToCents(v)
		if err != nil {
			return core.Filter{}, fmt.Errorf("invalid max_amount %q", v)
		}
		f.AmountMax = absCents(cents)
	}

	switch v := strings.TrimSpace(query.Get("type")); v {
	case "", "all":
		f.Type = core.TypeAll
	case "income":
		f.Type = core.TypeIncome
	case "expense":
		f.Type = core.TypeExpense
	default:
		return core.Filter{}, fmt.Errorf("invalid type %q", v)
	}

	f.RecurringOnly = query.Get("recurring") == "true"

	return f, nil
}

// parseMultiValue flattens repeated parameters and comma-separated lists into
// one slice, dropping blanks.
func parseMultiValue(values []string) []string {
	var out []string
	for _, v := range values {
		for _, part := range strings.Split(v, ",") {
			if p := strings.TrimSpace(part); p != "" {
				out = append(out, p)
			}
		}
	}
	return out
}

func absCents(cents int64) int64 {
	if cents < 0 {
		return -cents
	}
	return cents
}

// parseSort reads sort=field and order=asc|desc. The default is newest first.
func parseSort(query url.Values) (core.SortField, core.SortDirection) {
	field := core.SortField(strings.TrimSpace(query.Get("sort")))
	if field == "" {
		field = core.SortDate
	}

	dir := core.SortDirection(strings.TrimSpace(query.Get("order")))
	switch dir {
	case core.Ascending, core.Descending:
	default:
		if field == core.SortDate {
			dir = core.Descending
		} else {
			dir = core.Ascending
		}
	}

	return field, dir
}

// parsePagination reads page and page_size with sane bounds.
func parsePagination(query url.Values) (page, pageSize int) {
	page = 1
	pageSize = defaultPageSize

	if v := strings.TrimSpace(query.Get("page")); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			page = n
		}
	}
	if v := strings.TrimSpace(query.Get("page_size")); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			pageSize = n
		}
	}
	if pageSize > maxPageSize {
		pageSize = maxPageSize
	}

	return page, pageSize
}

// parseTopN reads the top_n grouping cap, falling back to the given default.
// top_n=0 disables the cap and returns the full grouping.
func parseTopN(query url.Values, fallback int) int {
	v := strings.TrimSpace(query.Get("top_n"))
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil || n < 0 {
		return fallback
	}
	return n
}

// parseYearMonth extracts year and month, defaulting to the current month.
func parseYearMonth(query url.Values) (year, month int) {
	now := time.Now()
	year = now.Year()
	month = int(now.Month())

	if v := strings.TrimSpace(query.Get("year")); v != "" {
		if y, err := strconv.Atoi(v); err == nil && y > 0 {
			year = y
		}
	}
	if v := strings.TrimSpace(query.Get("month")); v != "" {
		if m, err := strconv.Atoi(v); err == nil && m >= 1 && m <= 12 {
			month = m
		}
	}

	return year, month
}

// sanitizeInput trims whitespace and strips control characters.
func sanitizeInput(s string) string {
	s = strings.TrimSpace(s)
	return strings.Map(func(r rune) rune {
		if r < 32 && r != 9 && r != 10 && r != 13 {
			return -1
		}
		return r
	}, s)
}
