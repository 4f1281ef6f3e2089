// Package adminview derives the admin dashboard from a full registration
// snapshot: filter, payment filter, sort, paginate and headline stats.
// Everything here is pure; the snapshot is refetched for each request.
package adminview

import (
	"math"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/yojana-dates/yojana-backend/internal/registration"
)

const (
	DefaultPageSize = 10
	MaxPageSize     = 100
	upcomingDays    = 7
)

// Controls are the dashboard inputs.
type Controls struct {
	Q        string
	Payment  registration.PaymentFilter
	SortBy   registration.SortKey
	Asc      bool
	Page     int
	PageSize int
}

// Stats always describe the unfiltered snapshot.
type Stats struct {
	Total    int `json:"total"`
	Paid     int `json:"paid"`
	Pending  int `json:"pending"`
	Upcoming int `json:"in7"`
}

type View struct {
	Rows       []registration.Registration `json:"rows"`
	Page       int                         `json:"page"`
	PageSize   int                         `json:"pageSize"`
	TotalPages int                         `json:"totalPages"`
	Matched    int                         `json:"matched"`
	Stats      Stats                       `json:"stats"`
}

// ParseControls reads dashboard query parameters. Bad values fall back to
// defaults: newest first, page 1, ten rows.
func ParseControls(get func(string) string) Controls {
	c := Controls{
		Q:        strings.TrimSpace(get("q")),
		Payment:  registration.ParsePayment(get("payment")),
		SortBy:   registration.ParseSortKey(get("sortBy")),
		Asc:      strings.EqualFold(strings.TrimSpace(get("order")), "asc"),
		Page:     1,
		PageSize: DefaultPageSize,
	}
	if n, err := strconv.Atoi(strings.TrimSpace(get("pageSize"))); err == nil && n > 0 {
		c.PageSize = min(n, MaxPageSize)
	}
	if n, err := strconv.Atoi(strings.TrimSpace(get("page"))); err == nil && n > 1 {
		c.Page = n
	}
	return c
}

// ===========================
// 🧮 Pipeline

// Apply runs the whole pipeline. all is not modified.
func Apply(all []registration.Registration, c Controls, now time.Time, loc *time.Location) View {
	list := Filter(all, c, loc)

	size := c.PageSize
	if size < 1 {
		size = DefaultPageSize
	}
	totalPages := max(1, int(math.Ceil(float64(len(list))/float64(size))))
	page := min(max(c.Page, 1), totalPages)

	from := min((page-1)*size, len(list))
	to := min(from+size, len(list))

	return View{
		Rows:       list[from:to],
		Page:       page,
		PageSize:   size,
		TotalPages: totalPages,
		Matched:    len(list),
		Stats:      ComputeStats(all, now),
	}
}

// Filter returns the matching records in display order, unpaginated. The
// export endpoint uses it directly.
func Filter(all []registration.Registration, c Controls, loc *time.Location) []registration.Registration {
	q := strings.ToLower(strings.TrimSpace(c.Q))

	list := make([]registration.Registration, 0, len(all))
	for _, r := range all {
		if q != "" && !strings.Contains(Haystack(r, loc), q) {
			continue
		}
		if !matchesPayment(r, c.Payment) {
			continue
		}
		list = append(list, r)
	}

	sortRows(list, c.SortBy, c.Asc)
	return list
}

// Haystack is the lower-cased text the free-text query is matched against:
// the non-empty fields followed by the formatted start and end.
func Haystack(r registration.Registration, loc *time.Location) string {
	fields := []string{
		r.Name,
		r.Email,
		r.Phone,
		string(r.Occasion),
		string(r.Experience),
		string(r.Dining),
		string(r.Budget),
		r.DietAllergies,
		r.EmergencyContact,
		collapseNewlines(r.PersonalNote),
	}

	parts := make([]string, 0, len(fields))
	for _, f := range fields {
		if f != "" {
			parts = append(parts, f)
		}
	}

	return strings.ToLower(strings.Join(parts, " ") +
		" " + registration.FormatDisplay(r.StartDateTime, loc) +
		" " + registration.FormatDisplay(r.EndDateTime, loc))
}

func collapseNewlines(s string) string {
	return strings.NewReplacer("\r\n", " ", "\n", " ").Replace(s)
}

func matchesPayment(r registration.Registration, p registration.PaymentFilter) bool {
	switch p {
	case registration.PaymentPaid:
		return r.PaymentConfirmed
	case registration.PaymentPending:
		return !r.PaymentConfirmed
	default:
		return true
	}
}

var epoch = time.Unix(0, 0)

func sortTime(t time.Time) time.Time {
	if t.IsZero() {
		return epoch
	}
	return t
}

// sortRows orders list in place. Equal keys keep their snapshot order in
// both directions.
func sortRows(list []registration.Registration, key registration.SortKey, asc bool) {
	cmp := func(a, b registration.Registration) int {
		switch key {
		case registration.SortByName:
			return strings.Compare(strings.ToLower(a.Name), strings.ToLower(b.Name))
		case registration.SortByStartDateTime:
			return sortTime(a.StartDateTime).Compare(sortTime(b.StartDateTime))
		default:
			return sortTime(a.CreatedAt).Compare(sortTime(b.CreatedAt))
		}
	}

	sort.SliceStable(list, func(i, j int) bool {
		c := cmp(list[i], list[j])
		if asc {
			return c < 0
		}
		return c > 0
	})
}

// ===========================
// 📊 Stats

// ComputeStats counts the snapshot. A start date counts as upcoming when
// the whole days until it, rounded up, are at most seven, so past dates
// count too.
func ComputeStats(all []registration.Registration, now time.Time) Stats {
	s := Stats{Total: len(all)}
	for _, r := range all {
		if r.PaymentConfirmed {
			s.Paid++
		}
		if !r.StartDateTime.IsZero() && daysUntil(r.StartDateTime, now) <= upcomingDays {
			s.Upcoming++
		}
	}
	s.Pending = s.Total - s.Paid
	return s
}

func daysUntil(t, now time.Time) int {
	return int(math.Ceil(t.Sub(now).Hours() / 24))
}
