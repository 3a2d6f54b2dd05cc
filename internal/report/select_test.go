package report

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testReport(id string, status Status, updatedAt time.Time) *DailyReport {
	return &DailyReport{
		ID:           id,
		ChildName:    "Ana",
		ReportStatus: status,
		UpdatedAt:    updatedAt,
	}
}

func TestPickPreferredNoCurrent(t *testing.T) {
	candidate := testReport("b", StatusPartial, time.Now())
	assert.Same(t, candidate, PickPreferred(nil, candidate))
}

func TestPickPreferredFullBeatsNewerPartial(t *testing.T) {
	day := time.Date(2026, 3, 4, 0, 0, 0, 0, time.UTC)
	full := testReport("a", StatusFull, day.Add(10*time.Hour))
	partial := testReport("b", StatusPartial, day.Add(11*time.Hour))

	assert.Same(t, full, PickPreferred(full, partial))
	assert.Same(t, full, PickPreferred(partial, full))
}

func TestPickPreferredRecency(t *testing.T) {
	day := time.Date(2026, 3, 4, 0, 0, 0, 0, time.UTC)
	older := testReport("a", StatusFull, day.Add(9*time.Hour))
	newer := testReport("b", StatusFull, day.Add(10*time.Hour))

	assert.Same(t, newer, PickPreferred(older, newer))
	assert.Same(t, older, PickPreferred(newer, older))
}

func TestPickPreferredTieFavorsCandidate(t *testing.T) {
	ts := time.Date(2026, 3, 4, 10, 0, 0, 0, time.UTC)
	a := testReport("a", StatusPartial, ts)
	b := testReport("b", StatusPartial, ts)
	assert.Same(t, b, PickPreferred(a, b))
}

func TestPickPreferredDateFallback(t *testing.T) {
	// updatedAt missing: the date bucket still provides recency.
	day := time.Date(2026, 3, 4, 0, 0, 0, 0, time.UTC)
	withDate := &DailyReport{ID: "a", ReportStatus: StatusPartial, Date: day}
	without := &DailyReport{ID: "b", ReportStatus: StatusPartial}

	assert.Equal(t, int64(0), without.EffectiveUnixMilli())
	assert.Same(t, withDate, PickPreferred(without, withDate))
}

func permutations(items []*DailyReport) [][]*DailyReport {
	if len(items) <= 1 {
		return [][]*DailyReport{append([]*DailyReport{}, items...)}
	}
	var out [][]*DailyReport
	for i := range items {
		rest := make([]*DailyReport, 0, len(items)-1)
		rest = append(rest, items[:i]...)
		rest = append(rest, items[i+1:]...)
		for _, tail := range permutations(rest) {
			out = append(out, append([]*DailyReport{items[i]}, tail...))
		}
	}
	return out
}

func TestFoldDeterminism(t *testing.T) {
	day := time.Date(2026, 3, 4, 0, 0, 0, 0, time.UTC)
	reports := []*DailyReport{
		testReport("full-old", StatusFull, day.Add(8*time.Hour)),
		testReport("partial-new", StatusPartial, day.Add(15*time.Hour)),
		testReport("full-new", StatusFull, day.Add(11*time.Hour)),
		testReport("partial-old", StatusPartial, day.Add(7*time.Hour)),
	}

	for _, perm := range permutations(reports) {
		var winner *DailyReport
		for _, r := range perm {
			winner = PickPreferred(winner, r)
		}
		require.NotNil(t, winner)
		assert.Equal(t, "full-new", winner.ID)
	}
}
