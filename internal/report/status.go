package report

import "strings"

// DisplayState is the three-valued classification shown on the day view.
type DisplayState string

const (
	DisplayNone            DisplayState = ""
	DisplayNotFilled       DisplayState = "not_filled"
	DisplayPartiallyFilled DisplayState = "partial"
	DisplayFullyFilled     DisplayState = "full"
)

// Label returns the human-readable form used by the overview.
func (d DisplayState) Label() string {
	switch d {
	case DisplayNotFilled:
		return "Not filled"
	case DisplayPartiallyFilled:
		return "Partially filled"
	case DisplayFullyFilled:
		return "Fully filled"
	default:
		return ""
	}
}

// HasMeaningfulDraftContent reports whether a draft contains content
// beyond what auto-population supplies when attendance is marked. A
// report whose only content is an inTime matching the attendance
// check-in time is not meaningful. attendanceInTime24 must already be in
// 24-hour form.
func HasMeaningfulDraftContent(r DailyReport, attendanceInTime24 string) bool {
	reportInTime := To24Hour(r.InTime)
	hasCustomInTime := reportInTime != ""
	if reportInTime != "" && attendanceInTime24 != "" {
		hasCustomInTime = reportInTime != attendanceInTime24
	}

	hasTextInput := false
	for _, v := range []string{
		r.OutTime, r.Snack, r.Meal, r.SleepFrom, r.SleepTo,
		r.DiaperChanges, r.ToiletVisits, r.Poops, r.Notes, r.OuchReport,
	} {
		if strings.TrimSpace(v) != "" {
			hasTextInput = true
			break
		}
	}

	hasCheckedFlags := r.SleepNot || r.NoDiaper || r.Ouch
	hasFeelings := len(r.Feelings) > 0

	return hasCustomInTime || hasTextInput || hasCheckedFlags || hasFeelings
}

// ClassifyForDisplay derives the day view's report classification for a
// child from the preferred report and the attendance record. Children who
// are not marked present get no classification at all.
func ClassifyForDisplay(r *DailyReport, att *AttendanceRecord) DisplayState {
	if att == nil || att.Status != Present {
		return DisplayNone
	}
	if r == nil {
		return DisplayNotFilled
	}
	if r.ReportStatus == StatusPartial {
		if !HasMeaningfulDraftContent(*r, To24Hour(att.Time)) {
			return DisplayNotFilled
		}
		return DisplayPartiallyFilled
	}
	return DisplayFullyFilled
}
