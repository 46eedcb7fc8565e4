package stats

import (
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"eventstudy/internal/study"
)

func record(category string, horizons map[string]study.Value) study.ReturnRecord {
	return study.ReturnRecord{
		Event:    study.Event{Category: category},
		Horizons: horizons,
	}
}

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(discard{}, &slog.HandlerOptions{Level: slog.LevelError}))
}

type discard struct{}

func (discard) Write(p []byte) (int, error) { return len(p), nil }

func TestCollectHorizon(t *testing.T) {
	records := []study.ReturnRecord{
		record("a", map[string]study.Value{"30min": study.Present(0.01)}),
		record("a", map[string]study.Value{"30min": study.Absent()}),
		record("a", map[string]study.Value{"60min": study.Present(0.02)}),
		record("a", nil),
	}
	xs := CollectHorizon(records, "30min")
	assert.Equal(t, []float64{0.01}, xs, "absent and missing values stay out of the sample")
}

func TestSummarize(t *testing.T) {
	records := []study.ReturnRecord{
		record("Aggressive", map[string]study.Value{"30min": study.Present(0.010)}),
		record("Aggressive", map[string]study.Value{"30min": study.Present(-0.004)}),
		record("Aggressive", map[string]study.Value{"30min": study.Present(0.006)}),
		record("Aggressive", map[string]study.Value{"30min": study.Present(0.002)}),
		record("Defensive", map[string]study.Value{"30min": study.Present(0.003)}),
		record("Defensive", map[string]study.Value{"30min": study.Present(-0.001)}),
	}

	summary := Summarize(records, ByCategory, []string{"30min"}, DefaultMinGroupSize, quietLogger())
	require.Len(t, summary, 2)
	assert.Equal(t, []string{"Aggressive", "Defensive"}, summary.Groups())

	t.Run("large enough cell gets statistics and a test", func(t *testing.T) {
		cell := summary["Aggressive"].Horizons["30min"]
		assert.False(t, cell.Insufficient)
		assert.Equal(t, 4, cell.Stats.N)
		assert.InDelta(t, 0.0035, cell.Stats.Mean, 1e-12)
		require.NotNil(t, cell.Test)
		assert.Equal(t, 3.0, cell.Test.DF)
	})

	t.Run("small cell is insufficient, never zero-filled", func(t *testing.T) {
		cell := summary["Defensive"].Horizons["30min"]
		assert.True(t, cell.Insufficient)
		assert.Nil(t, cell.Test)
		assert.Zero(t, cell.Stats.N)
		assert.Equal(t, 2, cell.Usable, "the usable count survives gating")
	})

	t.Run("absent values do not count toward the minimum", func(t *testing.T) {
		recs := []study.ReturnRecord{
			record("x", map[string]study.Value{"1d": study.Present(0.01)}),
			record("x", map[string]study.Value{"1d": study.Present(0.02)}),
			record("x", map[string]study.Value{"1d": study.Absent()}),
			record("x", map[string]study.Value{"1d": study.Absent()}),
		}
		s := Summarize(recs, ByCategory, []string{"1d"}, DefaultMinGroupSize, quietLogger())
		cell := s["x"].Horizons["1d"]
		assert.True(t, cell.Insufficient, "two usable observations are below the floor of three")
		assert.Equal(t, 2, cell.Usable)
		assert.Equal(t, 4, s["x"].N, "the group size still counts every record")
	})

	t.Run("minimum group size floors at three", func(t *testing.T) {
		recs := []study.ReturnRecord{
			record("x", map[string]study.Value{"1d": study.Present(0.01)}),
			record("x", map[string]study.Value{"1d": study.Present(0.02)}),
		}
		s := Summarize(recs, ByCategory, []string{"1d"}, 1, quietLogger())
		assert.True(t, s["x"].Horizons["1d"].Insufficient)
	})

	t.Run("exactly three observations are enough", func(t *testing.T) {
		recs := []study.ReturnRecord{
			record("x", map[string]study.Value{"1d": study.Present(0.01)}),
			record("x", map[string]study.Value{"1d": study.Present(0.02)}),
			record("x", map[string]study.Value{"1d": study.Present(-0.01)}),
		}
		s := Summarize(recs, ByCategory, []string{"1d"}, DefaultMinGroupSize, quietLogger())
		cell := s["x"].Horizons["1d"]
		assert.False(t, cell.Insufficient)
		assert.Equal(t, 3, cell.Stats.N)
	})

	t.Run("zero-variance cell keeps statistics but drops the test", func(t *testing.T) {
		recs := []study.ReturnRecord{
			record("x", map[string]study.Value{"1d": study.Present(0.01)}),
			record("x", map[string]study.Value{"1d": study.Present(0.01)}),
			record("x", map[string]study.Value{"1d": study.Present(0.01)}),
		}
		s := Summarize(recs, ByCategory, []string{"1d"}, DefaultMinGroupSize, quietLogger())
		cell := s["x"].Horizons["1d"]
		assert.False(t, cell.Insufficient)
		assert.Equal(t, 3, cell.Stats.N)
		assert.Nil(t, cell.Test)
	})
}

func TestCompare(t *testing.T) {
	eventRecs := []study.ReturnRecord{
		record("event", map[string]study.Value{"30min": study.Present(0.010)}),
		record("event", map[string]study.Value{"30min": study.Present(0.008)}),
		record("event", map[string]study.Value{"30min": study.Present(0.012)}),
	}
	controlRecs := []study.ReturnRecord{
		record("control", map[string]study.Value{"30min": study.Present(0.001)}),
		record("control", map[string]study.Value{"30min": study.Present(-0.002)}),
		record("control", map[string]study.Value{"30min": study.Present(0.0005)}),
	}

	t.Run("both sides large enough", func(t *testing.T) {
		out := Compare(eventRecs, controlRecs, "event", "control", []string{"30min"}, DefaultMinGroupSize)
		require.Len(t, out, 1)
		cmp := out[0]
		assert.Equal(t, "event", cmp.GroupA)
		assert.Equal(t, "control", cmp.GroupB)
		assert.False(t, cmp.Insufficient)
		assert.InDelta(t, 0.010, cmp.MeanA, 1e-12)
		require.NotNil(t, cmp.Test)
		assert.Greater(t, cmp.Test.T, 0.0, "events outperform controls here")
	})

	t.Run("short side marks the cell insufficient", func(t *testing.T) {
		out := Compare(eventRecs, controlRecs[:2], "event", "control", []string{"30min"}, DefaultMinGroupSize)
		require.Len(t, out, 1)
		assert.True(t, out[0].Insufficient)
		assert.Nil(t, out[0].Test)
	})

	t.Run("unknown horizon has no usable sample", func(t *testing.T) {
		out := Compare(eventRecs, controlRecs, "event", "control", []string{"missing"}, DefaultMinGroupSize)
		require.Len(t, out, 1)
		assert.True(t, out[0].Insufficient)
	})
}
