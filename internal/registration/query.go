package registration

import (
	"strconv"
	"strings"
)

// ParseListQuery reads the list endpoint's query parameters. Unknown or
// malformed values fall back to defaults rather than failing the request.
func ParseListQuery(get func(string) string) ListQuery {
	q := ListQuery{
		Q:        strings.TrimSpace(get("q")),
		Payment:  ParsePayment(get("payment")),
		SortBy:   ParseSortKey(get("sortBy")),
		Asc:      strings.EqualFold(strings.TrimSpace(get("order")), "asc"),
		Page:     1,
		PageSize: DefaultPageSize,
	}

	if n, err := strconv.Atoi(strings.TrimSpace(get("limit"))); err == nil && n > 0 {
		q.PageSize = min(n, MaxPageSize)
	}
	if n, err := strconv.Atoi(strings.TrimSpace(get("page"))); err == nil && n > 1 {
		q.Page = n
	}
	return q
}

// ParsePayment maps paid/pending (any case) to a filter; anything else is all.
func ParsePayment(s string) PaymentFilter {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "paid":
		return PaymentPaid
	case "pending":
		return PaymentPending
	default:
		return PaymentAll
	}
}

// ParseSortKey accepts the three sortable fields and defaults to createdAt.
func ParseSortKey(s string) SortKey {
	switch SortKey(strings.TrimSpace(s)) {
	case SortByName:
		return SortByName
	case SortByStartDateTime:
		return SortByStartDateTime
	default:
		return SortByCreatedAt
	}
}
