package market

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestTradingCalendar(t *testing.T) {
	// 2025-04-05 is a Saturday, 2025-04-06 a Sunday.
	saturday := date(2025, time.April, 5)
	sunday := date(2025, time.April, 6)
	friday := date(2025, time.April, 4)
	monday := date(2025, time.April, 7)

	t.Run("weekend is never a trading day", func(t *testing.T) {
		assert.False(t, IsTradingDay(saturday))
		assert.False(t, IsTradingDay(sunday))
		assert.True(t, IsTradingDay(friday))
		assert.True(t, IsTradingDay(monday))
	})

	tests := []struct {
		name      string
		from      time.Time
		wantNext  time.Time
		wantPrior time.Time
	}{
		{
			name:      "from Saturday",
			from:      saturday,
			wantNext:  monday,
			wantPrior: friday,
		},
		{
			name:      "from Sunday",
			from:      sunday,
			wantNext:  monday,
			wantPrior: friday,
		},
		{
			name:      "from Friday skips the weekend forward",
			from:      friday,
			wantNext:  monday,
			wantPrior: date(2025, time.April, 3),
		},
		{
			name:      "from Monday skips the weekend backward",
			from:      monday,
			wantNext:  date(2025, time.April, 8),
			wantPrior: friday,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			next := NextTradingDay(tt.from)
			prior := PriorTradingDay(tt.from)
			assert.Equal(t, tt.wantNext, next)
			assert.Equal(t, tt.wantPrior, prior)
			assert.True(t, IsTradingDay(next), "next trading day must never be a weekend")
			assert.True(t, IsTradingDay(prior), "prior trading day must never be a weekend")
		})
	}
}

func TestAddTradingDays(t *testing.T) {
	friday := date(2025, time.April, 4)

	tests := []struct {
		name string
		n    int
		want time.Time
	}{
		{"zero is identity", 0, friday},
		{"one crosses the weekend", 1, date(2025, time.April, 7)},
		{"five lands a full week later", 5, date(2025, time.April, 11)},
		{"ten lands two weeks later", 10, date(2025, time.April, 18)},
		{"negative five retreats a week", -5, date(2025, time.March, 28)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, AddTradingDays(friday, tt.n))
		})
	}
}
