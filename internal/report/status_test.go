package report

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestStatusFromValue(t *testing.T) {
	assert.Equal(t, StatusPartial, StatusFromValue("partial"))
	assert.Equal(t, StatusFull, StatusFromValue("full"))
	// Legacy records without the field count as complete.
	assert.Equal(t, StatusFull, StatusFromValue(nil))
	assert.Equal(t, StatusFull, StatusFromValue("draft"))
}

func TestHasMeaningfulDraftContent(t *testing.T) {
	seeded := DailyReport{InTime: "09:15 AM", ReportStatus: StatusPartial}

	t.Run("auto-seeded inTime only", func(t *testing.T) {
		assert.False(t, HasMeaningfulDraftContent(seeded, "09:15"))
	})
	t.Run("inTime without attendance context", func(t *testing.T) {
		assert.True(t, HasMeaningfulDraftContent(seeded, ""))
	})
	t.Run("custom inTime", func(t *testing.T) {
		r := seeded
		r.InTime = "10:00 AM"
		assert.True(t, HasMeaningfulDraftContent(r, "09:15"))
	})
	t.Run("notes", func(t *testing.T) {
		r := seeded
		r.Notes = "ok"
		assert.True(t, HasMeaningfulDraftContent(r, "09:15"))
	})
	t.Run("whitespace-only text ignored", func(t *testing.T) {
		r := seeded
		r.Notes = "   "
		assert.False(t, HasMeaningfulDraftContent(r, "09:15"))
	})
	t.Run("checked flag", func(t *testing.T) {
		r := seeded
		r.SleepNot = true
		assert.True(t, HasMeaningfulDraftContent(r, "09:15"))
	})
	t.Run("feelings", func(t *testing.T) {
		r := seeded
		r.Feelings = []string{"Happy"}
		assert.True(t, HasMeaningfulDraftContent(r, "09:15"))
	})
}

func TestClassifyForDisplay(t *testing.T) {
	present := &AttendanceRecord{Status: Present, Time: "09:15"}
	absent := &AttendanceRecord{Status: Absent, Time: "09:20"}

	t.Run("no attendance", func(t *testing.T) {
		assert.Equal(t, DisplayNone, ClassifyForDisplay(&DailyReport{}, nil))
	})
	t.Run("absent child gets no classification", func(t *testing.T) {
		assert.Equal(t, DisplayNone, ClassifyForDisplay(&DailyReport{ReportStatus: StatusFull}, absent))
	})
	t.Run("present without report", func(t *testing.T) {
		assert.Equal(t, DisplayNotFilled, ClassifyForDisplay(nil, present))
	})
	t.Run("auto-seeded draft is not filled", func(t *testing.T) {
		r := &DailyReport{ReportStatus: StatusPartial, InTime: "09:15 AM"}
		assert.Equal(t, DisplayNotFilled, ClassifyForDisplay(r, present))
	})
	t.Run("draft with teacher content", func(t *testing.T) {
		r := &DailyReport{ReportStatus: StatusPartial, InTime: "09:15 AM", Notes: "ok"}
		assert.Equal(t, DisplayPartiallyFilled, ClassifyForDisplay(r, present))
	})
	t.Run("full report", func(t *testing.T) {
		r := &DailyReport{ReportStatus: StatusFull}
		assert.Equal(t, DisplayFullyFilled, ClassifyForDisplay(r, present))
	})
}
