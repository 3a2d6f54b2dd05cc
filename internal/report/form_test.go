package report

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testDefaults = Defaults{Themes: []string{"Space"}, CommonParentsNote: "Bring boots"}

func TestNewFormState(t *testing.T) {
	f := NewFormState("Ana", testDefaults)
	assert.Equal(t, "Ana", f.ChildName)
	assert.Equal(t, []string{"Space"}, f.Themes)
	assert.Equal(t, "Bring boots", f.CommonParentsNote)
	assert.Empty(t, f.InTime)
	assert.Empty(t, f.Feelings)
}

func TestFormFromReport(t *testing.T) {
	r := DailyReport{
		ChildName:     "Ana",
		InTime:        "09:15 AM",
		OutTime:       "04:30 PM",
		SleepFrom:     "01:00 PM",
		SleepTo:       "02:30 PM",
		Snack:         "Most",
		Meal:          "All",
		Feelings:      []string{"Happy", "Playful"},
		ThemeOfTheDay: []string{"Dinosaurs"},
		Notes:         "great day",
		ReportStatus:  StatusPartial,
	}
	f := FormFromReport(r, testDefaults)

	assert.Equal(t, "09:15", f.InTime)
	assert.Equal(t, "16:30", f.OutTime)
	assert.Equal(t, "13:00", f.SleepFrom)
	assert.Equal(t, "14:30", f.SleepTo)
	assert.Equal(t, []string{"Dinosaurs"}, f.Themes, "report themes outrank defaults")
	assert.Equal(t, "Bring boots", f.CommonParentsNote, "note falls back to defaults")
	assert.Equal(t, []string{"Happy", "Playful"}, f.Feelings)
}

func TestFormFromReportThemeFallback(t *testing.T) {
	f := FormFromReport(DailyReport{ChildName: "Ana"}, testDefaults)
	assert.Equal(t, []string{"Space"}, f.Themes)
}

func TestSeedInTimeOnlyWhenBlank(t *testing.T) {
	f := NewFormState("Ana", Defaults{})
	f.SeedInTime("09:15")
	assert.Equal(t, "09:15", f.InTime)

	// A later reconciliation must not clobber the value.
	f.SeedInTime("10:00")
	assert.Equal(t, "09:15", f.InTime)

	f.InTime = ""
	f.SeedInTime("")
	assert.Empty(t, f.InTime)
}

func TestFillEmailsFirstNonEmptyWins(t *testing.T) {
	f := NewFormState("Ana", Defaults{})
	f.FillEmails("mom@example.com", "")
	f.FillEmails("other@example.com", "dad@example.com")

	assert.Equal(t, "mom@example.com", f.Email)
	assert.Equal(t, "dad@example.com", f.Email2)
}

func TestApplyDefaultsNeverOverwrites(t *testing.T) {
	f := NewFormState("Ana", testDefaults)
	f.ApplyDefaults(Defaults{Themes: []string{"Ocean"}, CommonParentsNote: "changed"})

	assert.Equal(t, []string{"Space"}, f.Themes)
	assert.Equal(t, "Bring boots", f.CommonParentsNote)

	blank := NewFormState("Ana", Defaults{})
	blank.ApplyDefaults(Defaults{Themes: []string{"Ocean"}, CommonParentsNote: "note"})
	assert.Equal(t, []string{"Ocean"}, blank.Themes)
	assert.Equal(t, "note", blank.CommonParentsNote)
}

func TestValidate(t *testing.T) {
	assert.ErrorIs(t, FormState{ChildName: "  "}.Validate(), ErrNoChildSelected)
	assert.NoError(t, FormState{ChildName: "Ana"}.Validate())
}

func TestPayload(t *testing.T) {
	now := time.Date(2026, 3, 4, 16, 45, 0, 0, time.UTC)
	f := NewFormState("Ana", testDefaults)
	f.InTime = "09:15"
	f.OutTime = "16:30"
	f.Feelings = []string{"Happy"}

	p := f.Payload(StatusPartial, now)

	assert.Equal(t, "Ana", p["childName"])
	assert.Equal(t, "09:15 AM", p["inTime"])
	assert.Equal(t, "04:30 PM", p["outTime"])
	assert.Equal(t, []string{"Space"}, p["themeOfTheDay"])
	assert.Equal(t, "partial", p["reportStatus"])
	assert.Equal(t, now, p["date"])
	assert.Equal(t, now, p["updatedAt"])
	_, hasWorkingThemes := p["themes"]
	assert.False(t, hasWorkingThemes, "working theme list is not persisted under its own key")
	_, hasCreatedAt := p["createdAt"]
	assert.False(t, hasCreatedAt, "createdAt is stamped only on first create")
}

func TestReportFromDocument(t *testing.T) {
	fields := map[string]any{
		"childName":    "Ana",
		"inTime":       "09:15 AM",
		"feelings":     []any{"Happy", " Quiet "},
		"themes":       "Dinosaurs, Space",
		"sleepNot":     true,
		"poops":        float64(2),
		"reportStatus": "partial",
		"date":         "2026-03-04T10:00:00Z",
		"updatedAt":    time.Date(2026, 3, 4, 11, 0, 0, 0, time.UTC),
	}
	r := ReportFromDocument("doc-1", fields)

	require.Equal(t, "doc-1", r.ID)
	assert.Equal(t, []string{"Happy", "Quiet"}, r.Feelings)
	assert.Equal(t, []string{"Dinosaurs", "Space"}, r.ThemeOfTheDay, "legacy themes key honoured")
	assert.True(t, r.SleepNot)
	assert.Equal(t, "2", r.Poops)
	assert.Equal(t, StatusPartial, r.ReportStatus)
	assert.Equal(t, time.Date(2026, 3, 4, 11, 0, 0, 0, time.UTC).UnixMilli(), r.EffectiveUnixMilli())
}

func TestReportFromDocumentDefaultsToFull(t *testing.T) {
	r := ReportFromDocument("doc-2", map[string]any{"childName": "Ben"})
	assert.Equal(t, StatusFull, r.ReportStatus)
	assert.Equal(t, int64(0), r.EffectiveUnixMilli())
}
