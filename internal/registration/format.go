package registration

import "time"

// DisplayLayout is the locale-style timestamp used in the dashboard search
// text and in confirmation emails.
const DisplayLayout = "1/2/2006, 3:04:05 PM"

// FormatDisplay renders t in loc, or an em dash when t is unset.
func FormatDisplay(t time.Time, loc *time.Location) string {
	if t.IsZero() {
		return "—"
	}
	if loc == nil {
		loc = time.Local
	}
	return t.In(loc).Format(DisplayLayout)
}
