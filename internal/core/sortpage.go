package core

import (
	"sort"
	"strings"
)

// Sortable fields for the ledger table.
const (
	SortDate        SortField = "date"
	SortAmount      SortField = "amount"
	SortDescription SortField = "description"
	SortMerchant    SortField = "merchant"
	SortCategory    SortField = "category"
	SortAccount     SortField = "account"
)

const (
	Ascending  SortDirection = "asc"
	Descending SortDirection = "desc"
)

type (
	SortField     string
	SortDirection string
)

// SortBy returns a new slice ordered by the given field. An unknown field
// compares everything as equal, which leaves the input order intact (the
// sort is stable). Direction flips the comparator, never the data.
func SortBy(records []Transaction, field SortField, dir SortDirection) []Transaction {
	out := make([]Transaction, len(records))
	copy(out, records)

	cmp := comparatorFor(field)
	if cmp == nil {
		return out
	}

	sort.SliceStable(out, func(i, j int) bool {
		c := cmp(out[i], out[j])
		if dir == Descending {
			return c > 0
		}
		return c < 0
	})
	return out
}

func comparatorFor(field SortField) func(a, b Transaction) int {
	switch field {
	case SortDate:
		return func(a, b Transaction) int {
			switch {
			case a.Date.Before(b.Date.Time):
				return -1
			case a.Date.After(b.Date.Time):
				return 1
			}
			return 0
		}
	case SortAmount:
		return func(a, b Transaction) int {
			return compareInt64(a.Amount.Cents, b.Amount.Cents)
		}
	case SortDescription:
		return func(a, b Transaction) int {
			return strings.Compare(strings.ToLower(a.Description), strings.ToLower(b.Description))
		}
	case SortMerchant:
		return func(a, b Transaction) int {
			return strings.Compare(strings.ToLower(a.DisplayMerchant()), strings.ToLower(b.DisplayMerchant()))
		}
	case SortCategory:
		return func(a, b Transaction) int {
			return strings.Compare(strings.ToLower(a.Category), strings.ToLower(b.Category))
		}
	case SortAccount:
		return func(a, b Transaction) int {
			return strings.Compare(strings.ToLower(a.Account), strings.ToLower(b.Account))
		}
	}
	return nil
}

func compareInt64(a, b int64) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	}
	return 0
}

// Paginate slices records into fixed-size pages. Pages are 1-indexed; a page
// past the end yields an empty slice, never an error. The displayed page
// indicator is the caller's job to clamp via PageCount.
func Paginate(records []Transaction, pageSize, page int) []Transaction {
	if pageSize <= 0 || page <= 0 {
		return []Transaction{}
	}
	start := (page - 1) * pageSize
	if start >= len(records) {
		return []Transaction{}
	}
	end := start + pageSize
	if end > len(records) {
		end = len(records)
	}
	out := make([]Transaction, end-start)
	copy(out, records[start:end])
	return out
}

// PageCount is the number of pages needed for total records, at least 1 for
// a non-empty set.
func PageCount(total, pageSize int) int {
	if total <= 0 || pageSize <= 0 {
		return 0
	}
	return (total + pageSize - 1) / pageSize
}
