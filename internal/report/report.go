// Package report holds the reconciliation core for daily reports: the
// model decoded from store documents, time normalization, completeness
// classification, preferred-report selection, and form-state merging.
package report

import (
	"strconv"
	"strings"
	"time"
)

// Status is the stored two-valued completeness tag on a report.
type Status string

const (
	StatusPartial Status = "partial"
	StatusFull    Status = "full"
)

// Attendance status values.
const (
	Present = "present"
	Absent  = "absent"
)

// StatusFromValue reads a stored reportStatus field. Anything other than
// an explicit "partial" counts as full, so legacy records without the
// field are treated as complete.
func StatusFromValue(v any) Status {
	if s, _ := v.(string); s == string(StatusPartial) {
		return StatusPartial
	}
	return StatusFull
}

// Child is a roster entry with up to two parent contact emails.
type Child struct {
	ID     string `json:"id"`
	Name   string `json:"name"`
	Email  string `json:"email,omitempty"`
	Email2 string `json:"email2,omitempty"`
}

// ChildFromDocument decodes a roster document.
func ChildFromDocument(id string, fields map[string]any) Child {
	return Child{
		ID:     id,
		Name:   str(fields["name"]),
		Email:  str(fields["email"]),
		Email2: str(fields["email2"]),
	}
}

// AttendanceRecord is one child's mark for the day. Time is 24-hour
// "HH:MM"; MarkedAt is a display timestamp.
type AttendanceRecord struct {
	Status   string `json:"status"`
	Time     string `json:"time"`
	MarkedAt string `json:"markedAt"`
}

// AttendanceFromValue decodes one entry of the per-day attendance
// aggregate's child map.
func AttendanceFromValue(v any) (AttendanceRecord, bool) {
	fields, ok := v.(map[string]any)
	if !ok {
		return AttendanceRecord{}, false
	}
	return AttendanceRecord{
		Status:   str(fields["status"]),
		Time:     str(fields["time"]),
		MarkedAt: str(fields["markedAt"]),
	}, true
}

// DailyReport is a child's report for one day as stored. Time fields are
// kept in their at-rest 12-hour labeled form; FormFromReport converts
// them for editing.
type DailyReport struct {
	ID                string
	ChildName         string
	InTime            string
	OutTime           string
	Snack             string
	Meal              string
	SleepFrom         string
	SleepTo           string
	SleepNot          bool
	NoDiaper          bool
	DiaperChanges     string
	ToiletVisits      string
	Poops             string
	Feelings          []string
	Notes             string
	ThemeOfTheDay     []string
	Email             string
	Email2            string
	Ouch              bool
	OuchReport        string
	CommonParentsNote string
	ReportStatus      Status
	Date              time.Time
	CreatedAt         time.Time
	UpdatedAt         time.Time
}

// ReportFromDocument decodes a dailyReports document. The stored status
// is normalized on the way in, list fields accept either a native list or
// a comma-delimited string, and the legacy "themes" key is honoured when
// "themeOfTheDay" is absent.
func ReportFromDocument(id string, fields map[string]any) DailyReport {
	themes := StringList(fields["themeOfTheDay"])
	if len(themes) == 0 {
		themes = StringList(fields["themes"])
	}
	return DailyReport{
		ID:                id,
		ChildName:         str(fields["childName"]),
		InTime:            str(fields["inTime"]),
		OutTime:           str(fields["outTime"]),
		Snack:             str(fields["snack"]),
		Meal:              str(fields["meal"]),
		SleepFrom:         str(fields["sleepFrom"]),
		SleepTo:           str(fields["sleepTo"]),
		SleepNot:          boolVal(fields["sleepNot"]),
		NoDiaper:          boolVal(fields["noDiaper"]),
		DiaperChanges:     str(fields["diaperChanges"]),
		ToiletVisits:      str(fields["toiletVisits"]),
		Poops:             str(fields["poops"]),
		Feelings:          StringList(fields["feelings"]),
		Notes:             str(fields["notes"]),
		ThemeOfTheDay:     themes,
		Email:             str(fields["email"]),
		Email2:            str(fields["email2"]),
		Ouch:              boolVal(fields["ouch"]),
		OuchReport:        str(fields["ouchReport"]),
		CommonParentsNote: str(fields["commonParentsNote"]),
		ReportStatus:      StatusFromValue(fields["reportStatus"]),
		Date:              timeVal(fields["date"]),
		CreatedAt:         timeVal(fields["createdAt"]),
		UpdatedAt:         timeVal(fields["updatedAt"]),
	}
}

// EffectiveUnixMilli is the report's recency for selection purposes: the
// later of updatedAt and date. Reports without a usable timestamp resolve
// to 0.
func (r DailyReport) EffectiveUnixMilli() int64 {
	return max(millis(r.UpdatedAt), millis(r.Date))
}

func millis(t time.Time) int64 {
	if t.IsZero() {
		return 0
	}
	return t.UnixMilli()
}

func str(v any) string {
	switch val := v.(type) {
	case string:
		return val
	case float64:
		return strconv.FormatFloat(val, 'f', -1, 64)
	case int:
		return strconv.Itoa(val)
	case int64:
		return strconv.FormatInt(val, 10)
	default:
		return ""
	}
}

func boolVal(v any) bool {
	b, _ := v.(bool)
	return b
}

// StringList accepts a native list, a []string, or a comma-delimited
// string and returns a trimmed list with empty items dropped.
func StringList(v any) []string {
	switch val := v.(type) {
	case []string:
		out := make([]string, 0, len(val))
		for _, item := range val {
			if trimmed := strings.TrimSpace(item); trimmed != "" {
				out = append(out, trimmed)
			}
		}
		return out
	case []any:
		out := make([]string, 0, len(val))
		for _, item := range val {
			if trimmed := strings.TrimSpace(str(item)); trimmed != "" {
				out = append(out, trimmed)
			}
		}
		return out
	case string:
		if strings.TrimSpace(val) == "" {
			return nil
		}
		var out []string
		for _, item := range strings.Split(val, ",") {
			if trimmed := strings.TrimSpace(item); trimmed != "" {
				out = append(out, trimmed)
			}
		}
		return out
	default:
		return nil
	}
}

// timeVal decodes a stored timestamp. Accepts time.Time, RFC3339(-nano)
// strings, and epoch milliseconds; anything else is the zero time.
func timeVal(v any) time.Time {
	switch val := v.(type) {
	case time.Time:
		return val
	case string:
		for _, layout := range []string{time.RFC3339Nano, time.RFC3339, "2006-01-02"} {
			if t, err := time.Parse(layout, val); err == nil {
				return t
			}
		}
		return time.Time{}
	case float64:
		return time.UnixMilli(int64(val))
	case int64:
		return time.UnixMilli(val)
	default:
		return time.Time{}
	}
}
