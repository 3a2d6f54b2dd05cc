package report

import (
	"errors"
	"strings"
	"time"
)

// ErrNoChildSelected is returned when a form without a child name is
// validated for saving.
var ErrNoChildSelected = errors.New("no child selected")

// Defaults are the per-day configuration defaults applied to blank form
// fields: the day's theme tags and the shared note to parents.
type Defaults struct {
	Themes            []string `json:"themes"`
	CommonParentsNote string   `json:"commonParentsNote"`
}

// FormState is the mutable working copy of a report for one editing
// session. Time fields are 24-hour while editing; Payload converts them
// back to the stored 12-hour form on save.
type FormState struct {
	ChildName         string   `json:"childName"`
	InTime            string   `json:"inTime"`
	OutTime           string   `json:"outTime"`
	Snack             string   `json:"snack"`
	Meal              string   `json:"meal"`
	SleepFrom         string   `json:"sleepFrom"`
	SleepTo           string   `json:"sleepTo"`
	SleepNot          bool     `json:"sleepNot"`
	NoDiaper          bool     `json:"noDiaper"`
	DiaperChanges     string   `json:"diaperChanges"`
	ToiletVisits      string   `json:"toiletVisits"`
	Poops             string   `json:"poops"`
	Feelings          []string `json:"feelings"`
	Notes             string   `json:"notes"`
	Themes            []string `json:"themes"`
	Email             string   `json:"email"`
	Email2            string   `json:"email2"`
	Ouch              bool     `json:"ouch"`
	OuchReport        string   `json:"ouchReport"`
	CommonParentsNote string   `json:"commonParentsNote"`
}

// NewFormState builds a blank form seeded with the child's name and the
// configuration defaults.
func NewFormState(childName string, defaults Defaults) FormState {
	return FormState{
		ChildName:         childName,
		Feelings:          []string{},
		Themes:            append([]string{}, defaults.Themes...),
		CommonParentsNote: defaults.CommonParentsNote,
	}
}

// FormFromReport maps a stored report into form state. Time fields are
// converted to 24-hour form; the theme list falls back to the
// configuration defaults when the report carries none, and the parents'
// note falls back likewise.
func FormFromReport(r DailyReport, defaults Defaults) FormState {
	f := NewFormState(r.ChildName, defaults)
	f.InTime = To24Hour(r.InTime)
	f.OutTime = To24Hour(r.OutTime)
	f.Snack = r.Snack
	f.Meal = r.Meal
	f.SleepFrom = To24Hour(r.SleepFrom)
	f.SleepTo = To24Hour(r.SleepTo)
	f.SleepNot = r.SleepNot
	f.NoDiaper = r.NoDiaper
	f.DiaperChanges = r.DiaperChanges
	f.ToiletVisits = r.ToiletVisits
	f.Poops = r.Poops
	f.Feelings = append([]string{}, r.Feelings...)
	f.Notes = r.Notes
	if len(r.ThemeOfTheDay) > 0 {
		f.Themes = append([]string{}, r.ThemeOfTheDay...)
	}
	f.Email = r.Email
	f.Email2 = r.Email2
	f.Ouch = r.Ouch
	f.OuchReport = r.OuchReport
	if r.CommonParentsNote != "" {
		f.CommonParentsNote = r.CommonParentsNote
	}
	return f
}

// SeedInTime fills the check-in time from an attendance record, but only
// while the field is still blank so reconciliation never clobbers a value
// the user already typed.
func (f *FormState) SeedInTime(time24 string) {
	if f.InTime == "" && time24 != "" {
		f.InTime = time24
	}
}

// FillEmails backfills parent contacts from the roster. First non-empty
// value wins; a field set earlier is never overwritten.
func (f *FormState) FillEmails(email, email2 string) {
	if f.Email == "" {
		f.Email = email
	}
	if f.Email2 == "" {
		f.Email2 = email2
	}
}

// ApplyDefaults fills configuration defaults into fields that are still
// empty. Fields with content keep it even when the defaults change.
func (f *FormState) ApplyDefaults(defaults Defaults) {
	if len(f.Themes) == 0 {
		f.Themes = append([]string{}, defaults.Themes...)
	}
	if f.CommonParentsNote == "" {
		f.CommonParentsNote = defaults.CommonParentsNote
	}
}

// Validate checks the form is saveable.
func (f FormState) Validate() error {
	if strings.TrimSpace(f.ChildName) == "" {
		return ErrNoChildSelected
	}
	return nil
}

// Payload builds the persistence field bag for an upsert: every form
// field except the working theme list, with times back in 12-hour form,
// the themes under the stored themeOfTheDay key, and the status and
// timestamps stamped in. createdAt is the caller's concern.
func (f FormState) Payload(status Status, now time.Time) map[string]any {
	return map[string]any{
		"childName":         f.ChildName,
		"inTime":            To12Hour(f.InTime),
		"outTime":           To12Hour(f.OutTime),
		"snack":             f.Snack,
		"meal":              f.Meal,
		"sleepFrom":         To12Hour(f.SleepFrom),
		"sleepTo":           To12Hour(f.SleepTo),
		"sleepNot":          f.SleepNot,
		"noDiaper":          f.NoDiaper,
		"diaperChanges":     f.DiaperChanges,
		"toiletVisits":      f.ToiletVisits,
		"poops":             f.Poops,
		"feelings":          append([]string{}, f.Feelings...),
		"notes":             f.Notes,
		"themeOfTheDay":     append([]string{}, f.Themes...),
		"email":             f.Email,
		"email2":            f.Email2,
		"ouch":              f.Ouch,
		"ouchReport":        f.OuchReport,
		"commonParentsNote": f.CommonParentsNote,
		"reportStatus":      string(status),
		"date":              now,
		"updatedAt":         now,
	}
}
