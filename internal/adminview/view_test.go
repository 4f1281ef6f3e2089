package adminview

import (
	"fmt"
	"net/url"
	"reflect"
	"testing"
	"time"

	"github.com/yojana-dates/yojana-backend/internal/registration"
)

var (
	now  = time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)
	base = time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
)

func rec(id, name string, paid bool, created, start time.Time) registration.Registration {
	return registration.Registration{
		ID:               id,
		Name:             name,
		Email:            id + "@example.com",
		Phone:            "9800000000",
		Occasion:         registration.OccasionBirthday,
		Experience:       registration.ExperienceMysteryBox,
		Dining:           registration.DiningAsian,
		Budget:           registration.BudgetTBD,
		CreatedAt:        created,
		StartDateTime:    start,
		EndDateTime:      start.Add(3 * time.Hour),
		PaymentConfirmed: paid,
	}
}

func snapshot() []registration.Registration {
	return []registration.Registration{
		rec("a", "charlie", true, base, now.Add(48*time.Hour)),
		rec("b", "Alice", false, base.Add(time.Hour), now.Add(10*24*time.Hour)),
		rec("c", "bob", true, base.Add(2*time.Hour), now.Add(-72*time.Hour)),
		rec("d", "alice", true, base.Add(3*time.Hour), time.Time{}),
		rec("e", "Dev", false, base.Add(4*time.Hour), now.Add(7*24*time.Hour)),
	}
}

func ids(rows []registration.Registration) []string {
	out := make([]string, len(rows))
	for i, r := range rows {
		out[i] = r.ID
	}
	return out
}

func TestPaidSortedByNameAsc(t *testing.T) {
	c := Controls{Payment: registration.PaymentPaid, SortBy: registration.SortByName, Asc: true, Page: 1, PageSize: 10}
	v := Apply(snapshot(), c, now, time.UTC)

	if got, want := ids(v.Rows), []string{"d", "c", "a"}; !reflect.DeepEqual(got, want) {
		t.Fatalf("rows = %v, want %v", got, want)
	}
	if v.Matched != 3 {
		t.Fatalf("matched = %d", v.Matched)
	}
}

func TestDefaultOrderIsNewestFirst(t *testing.T) {
	c := ParseControls(url.Values{}.Get)
	v := Apply(snapshot(), c, now, time.UTC)
	if got, want := ids(v.Rows), []string{"e", "d", "c", "b", "a"}; !reflect.DeepEqual(got, want) {
		t.Fatalf("rows = %v, want %v", got, want)
	}
	if v.PageSize != DefaultPageSize {
		t.Fatalf("pageSize = %d", v.PageSize)
	}
}

func TestNameTiesKeepSnapshotOrderBothWays(t *testing.T) {
	all := snapshot()
	asc := Filter(all, Controls{SortBy: registration.SortByName, Asc: true}, time.UTC)
	desc := Filter(all, Controls{SortBy: registration.SortByName}, time.UTC)

	if got, want := ids(asc), []string{"b", "d", "c", "a", "e"}; !reflect.DeepEqual(got, want) {
		t.Fatalf("asc = %v, want %v", got, want)
	}
	if got, want := ids(desc), []string{"e", "a", "c", "b", "d"}; !reflect.DeepEqual(got, want) {
		t.Fatalf("desc = %v, want %v", got, want)
	}
}

func TestSortDirectionsMirrorWithDistinctKeys(t *testing.T) {
	all := []registration.Registration{
		rec("p", "Mira", false, base.Add(2*time.Hour), now.Add(5*time.Hour)),
		rec("q", "arun", true, base, now.Add(-time.Hour)),
		rec("r", "Zoya", false, base.Add(4*time.Hour), now.Add(2*time.Hour)),
		rec("s", "bela", true, base.Add(time.Hour), now.Add(9*time.Hour)),
	}

	for _, key := range []registration.SortKey{
		registration.SortByCreatedAt,
		registration.SortByStartDateTime,
		registration.SortByName,
	} {
		t.Run(string(key), func(t *testing.T) {
			asc := ids(Filter(all, Controls{SortBy: key, Asc: true}, time.UTC))
			desc := ids(Filter(all, Controls{SortBy: key}, time.UTC))

			reversed := make([]string, len(asc))
			for i, id := range asc {
				reversed[len(asc)-1-i] = id
			}
			if !reflect.DeepEqual(reversed, desc) {
				t.Fatalf("asc = %v, desc = %v", asc, desc)
			}
		})
	}
}

func TestStartSortTreatsMissingAsEpoch(t *testing.T) {
	got := ids(Filter(snapshot(), Controls{SortBy: registration.SortByStartDateTime, Asc: true}, time.UTC))
	if got[0] != "d" {
		t.Fatalf("missing start should sort first ascending, got %v", got)
	}
}

func TestFilterIsIdempotent(t *testing.T) {
	c := Controls{Q: "example", Payment: registration.PaymentPending, SortBy: registration.SortByCreatedAt}
	once := Filter(snapshot(), c, time.UTC)
	twice := Filter(once, c, time.UTC)
	if !reflect.DeepEqual(ids(once), ids(twice)) {
		t.Fatalf("once = %v, twice = %v", ids(once), ids(twice))
	}
}

func TestFilterDoesNotModifySnapshot(t *testing.T) {
	all := snapshot()
	before := ids(all)
	_ = Apply(all, Controls{SortBy: registration.SortByName, Asc: true, PageSize: 2}, now, time.UTC)
	if !reflect.DeepEqual(before, ids(all)) {
		t.Fatal("snapshot was reordered")
	}
}

func TestSearchMatchesFieldsAndDates(t *testing.T) {
	all := snapshot()
	all[1].PersonalNote = "Loves\nsunsets"

	tests := []struct {
		q    string
		want []string
	}{
		{"ALICE", []string{"b", "d"}},
		{"loves sunsets", []string{"b"}},
		{"mystery-box", []string{"a", "b", "c", "d", "e"}},
		{"3/12/2026", []string{"a"}},
		{"3/12/2026, 12:00:00 pm", []string{"a"}},
		{"3:00:00 PM", []string{"a", "b", "c", "e"}},
		{"no-such-thing", []string{}},
	}
	for _, tt := range tests {
		t.Run(tt.q, func(t *testing.T) {
			got := ids(Filter(all, Controls{Q: tt.q, SortBy: registration.SortByCreatedAt, Asc: true}, time.UTC))
			if !reflect.DeepEqual(got, tt.want) {
				t.Fatalf("q=%q rows = %v, want %v", tt.q, got, tt.want)
			}
		})
	}
}

func TestHaystackShowsDashForMissingDates(t *testing.T) {
	h := Haystack(registration.Registration{Name: "Zed"}, time.UTC)
	if h != "zed — —" {
		t.Fatalf("haystack = %q", h)
	}
}

func TestPaginationPartitionsFilteredList(t *testing.T) {
	var all []registration.Registration
	for i := 0; i < 23; i++ {
		all = append(all, rec(fmt.Sprintf("r%02d", i), "n", i%2 == 0, base.Add(time.Duration(i)*time.Minute), now))
	}

	c := Controls{SortBy: registration.SortByCreatedAt, Asc: true, PageSize: 5}
	var seen []string
	for page := 1; page <= 5; page++ {
		c.Page = page
		v := Apply(all, c, now, time.UTC)
		if v.TotalPages != 5 {
			t.Fatalf("totalPages = %d", v.TotalPages)
		}
		seen = append(seen, ids(v.Rows)...)
	}
	if !reflect.DeepEqual(seen, ids(Filter(all, c, time.UTC))) {
		t.Fatalf("pages do not partition the list: %v", seen)
	}
}

func TestPageClamped(t *testing.T) {
	all := snapshot()

	v := Apply(all, Controls{Page: 99, PageSize: 2}, now, time.UTC)
	if v.Page != 3 || len(v.Rows) != 1 {
		t.Fatalf("page = %d rows = %d", v.Page, len(v.Rows))
	}

	v = Apply(nil, Controls{Page: 4, PageSize: 10}, now, time.UTC)
	if v.Page != 1 || v.TotalPages != 1 || len(v.Rows) != 0 {
		t.Fatalf("empty view = %+v", v)
	}
}

func TestStatsUseUnfilteredSnapshot(t *testing.T) {
	c := Controls{Q: "charlie", Payment: registration.PaymentPending, PageSize: 10}
	v := Apply(snapshot(), c, now, time.UTC)

	want := Stats{Total: 5, Paid: 3, Pending: 2, Upcoming: 3}
	if v.Stats != want {
		t.Fatalf("stats = %+v, want %+v", v.Stats, want)
	}
	if v.Matched != 0 {
		t.Fatalf("matched = %d", v.Matched)
	}
}

func TestParseControls(t *testing.T) {
	q := url.Values{
		"q":        {"  asha "},
		"payment":  {"PAID"},
		"sortBy":   {"bogus"},
		"order":    {"asc"},
		"page":     {"2"},
		"pageSize": {"500"},
	}
	c := ParseControls(q.Get)
	want := Controls{Q: "asha", Payment: registration.PaymentPaid, SortBy: registration.SortByCreatedAt, Asc: true, Page: 2, PageSize: MaxPageSize}
	if c != want {
		t.Fatalf("controls = %+v, want %+v", c, want)
	}
}
