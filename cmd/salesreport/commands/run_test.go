package commands

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"countysales/internal/domain"
)

func TestParseWindow(t *testing.T) {
	t.Parallel()

	now := time.Date(2025, time.August, 12, 15, 4, 0, 0, time.UTC)
	day := func(m time.Month, d int) time.Time { return time.Date(2025, m, d, 0, 0, 0, 0, time.UTC) }

	got, err := parseWindow("", "", 120, now)
	require.NoError(t, err)
	require.Equal(t, domain.NewDateRange(day(time.April, 14), day(time.August, 12)), got)

	got, err = parseWindow("06/01/2025", "06/30/2025", 120, now)
	require.NoError(t, err)
	require.Equal(t, domain.NewDateRange(day(time.June, 1), day(time.June, 30)), got)

	got, err = parseWindow("", "06/30/2025", 29, now)
	require.NoError(t, err)
	require.Equal(t, day(time.June, 1), got.Start)

	_, err = parseWindow("2025-06-01", "", 120, now)
	require.Error(t, err)

	_, err = parseWindow("07/01/2025", "06/01/2025", 120, now)
	require.Error(t, err)
}
