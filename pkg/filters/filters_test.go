package filters

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	pkgerrors "github.com/angelmondragon/marketplace-backend/pkg/errors"
)

func TestDateRangeWindows(t *testing.T) {
	now := time.Date(2026, time.March, 10, 15, 30, 0, 0, time.UTC)
	day := func(y int, m time.Month, d int) time.Time { return time.Date(y, m, d, 0, 0, 0, 0, time.UTC) }

	cases := []struct {
		tag  DateRange
		from time.Time
		to   *time.Time
	}{
		{Last15Days, day(2026, time.February, 23), nil},
		{Last3Months, day(2025, time.December, 10), nil},
		{ThisYear, day(2026, time.January, 1), nil},
		{ThisMonth, day(2026, time.March, 1), nil},
	}
	for _, tc := range cases {
		w, err := tc.tag.Resolve(now)
		require.NoError(t, err)
		require.Truef(t, w.From.Equal(tc.from), "%s from=%v want %v", tc.tag, w.From, tc.from)
		require.Nil(t, w.To)
	}

	last, err := LastYear.Resolve(now)
	require.NoError(t, err)
	require.True(t, last.From.Equal(day(2025, time.January, 1)))
	require.NotNil(t, last.To)
	require.True(t, last.To.Equal(day(2026, time.January, 1)))
	require.True(t, last.Contains(time.Date(2025, time.December, 31, 23, 59, 0, 0, time.UTC)))
	require.False(t, last.Contains(day(2026, time.January, 1)))
}

func TestParseDateRangeRejectsUnknownTag(t *testing.T) {
	tag, err := ParseDateRange("ThisMonth")
	require.NoError(t, err)
	require.Equal(t, ThisMonth, tag)

	_, err = ParseDateRange("yesterday")
	require.True(t, pkgerrors.IsCode(err, pkgerrors.CodeValidation))
}

func TestNumberParsers(t *testing.T) {
	d, err := Decimal("min_total", "64.97")
	require.NoError(t, err)
	require.Equal(t, "64.97", d.String())

	d, err = Decimal("min_total", "")
	require.NoError(t, err)
	require.Nil(t, d)

	_, err = Decimal("min_total", "lots")
	require.True(t, pkgerrors.IsCode(err, pkgerrors.CodeValidation))

	n, err := Int("redemptions", "3")
	require.NoError(t, err)
	require.Equal(t, 3, *n)

	b, err := Bool("read", "false")
	require.NoError(t, err)
	require.False(t, *b)
	_, err = Bool("read", "maybe")
	require.Error(t, err)
}

func TestEscapeLike(t *testing.T) {
	require.Equal(t, `50\%\_off`, escapeLike("50%_off"))
}
