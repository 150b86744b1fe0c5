package normalize

import (
	"fmt"
	"strings"
	"time"

	"github.com/araddon/dateparse"

	"countysales/internal/domain"
)

// ParseSaleDate reads the date formats county portals print (01/05/2024,
// 1/5/2024, 2024-01-05, Jan 5, 2024, ...). Slash dates are month first.
func ParseSaleDate(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, fmt.Errorf("empty date")
	}
	t, err := dateparse.ParseIn(s, time.UTC)
	if err != nil {
		return time.Time{}, fmt.Errorf("parse date %q: %w", s, err)
	}
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC), nil
}

// FormatDate renders a sale date as YYYY-MM-DD.
func FormatDate(t time.Time) string {
	return t.Format(domain.DateLayout)
}
