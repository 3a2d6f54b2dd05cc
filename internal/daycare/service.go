// Package daycare coordinates one session's view of the current day:
// roster, attendance, preferred daily reports, and theme configuration,
// reconciled into form state and overview rows.
package daycare

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sort"
	"sync"
	"time"

	"daycare/internal/report"
)

// ErrReportNotFull is returned when out-time marking is attempted for a
// child whose report is missing or not fully filled.
var ErrReportNotFull = errors.New("report not fully filled")

// MarkResult reports how far an attendance mark got. The local cache is
// updated optimistically and is deliberately not rolled back when
// persistence fails; callers that want stricter handling can check
// Persisted.
type MarkResult struct {
	Local     bool `json:"local"`
	Persisted bool `json:"persisted"`
}

// Service is the per-session context object. It holds read-through
// caches of the four independently loaded data sources for the current
// day and runs all reconciliation against the latest snapshot. Caches
// are replaced wholesale on successful loads and left at their prior
// value on load failure.
type Service struct {
	store Store
	now   func() time.Time

	mu              sync.Mutex
	kids            []report.Child
	attendance      map[string]report.AttendanceRecord
	attendanceDocID string
	reports         map[string]*report.DailyReport
	defaults        report.Defaults
	weeklyThemes    []string
	autoMarked      bool
}

// NewService creates a session service over a document store.
func NewService(store Store) *Service {
	return &Service{
		store:      store,
		now:        time.Now,
		attendance: make(map[string]report.AttendanceRecord),
		reports:    make(map[string]*report.DailyReport),
	}
}

// dayBounds returns the half-open local-time interval covering today.
func (s *Service) dayBounds() (time.Time, time.Time) {
	now := s.now()
	start := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	return start, start.AddDate(0, 0, 1)
}

// Refresh loads roster, attendance, reports, and configuration in
// parallel. The loads are order-independent and each installs its own
// cache; a failed load logs and leaves the prior snapshot in place.
func (s *Service) Refresh(ctx context.Context) {
	var wg sync.WaitGroup
	for name, load := range map[string]func(context.Context) error{
		"roster":     s.LoadRoster,
		"attendance": s.LoadAttendance,
		"reports":    s.LoadReports,
		"config":     s.LoadConfig,
	} {
		wg.Add(1)
		go func(name string, load func(context.Context) error) {
			defer wg.Done()
			if err := load(ctx); err != nil {
				log.Printf("load %s failed: %v", name, err)
			}
		}(name, load)
	}
	wg.Wait()
}

// LoadRoster replaces the cached roster.
func (s *Service) LoadRoster(ctx context.Context) error {
	docs, err := s.store.ListAll(ctx, CollectionRoster)
	if err != nil {
		return err
	}
	kids := make([]report.Child, 0, len(docs))
	for _, d := range docs {
		kids = append(kids, report.ChildFromDocument(d.ID, d.Fields))
	}
	s.mu.Lock()
	s.kids = kids
	s.mu.Unlock()
	return nil
}

// LoadAttendance replaces the cached per-child attendance map from
// today's aggregate document(s). When several aggregates exist their
// child maps are merged; the last document seen supplies the id used for
// subsequent field-path updates.
func (s *Service) LoadAttendance(ctx context.Context) error {
	start, end := s.dayBounds()
	docs, err := s.store.QueryByDateRange(ctx, CollectionAttendance, "date", start, end)
	if err != nil {
		return err
	}
	merged := make(map[string]report.AttendanceRecord)
	docID := ""
	for _, d := range docs {
		entries, ok := d.Fields["attendance"].(map[string]any)
		if !ok {
			continue
		}
		for name, v := range entries {
			if rec, ok := report.AttendanceFromValue(v); ok {
				merged[name] = rec
			}
		}
		docID = d.ID
	}
	s.mu.Lock()
	s.attendance = merged
	if docID != "" {
		s.attendanceDocID = docID
	}
	s.mu.Unlock()
	return nil
}

// LoadReports replaces the cached preferred-report-per-child map by
// folding the selector over today's report documents. Duplicate
// documents for a child collapse to one deterministic winner regardless
// of query order.
func (s *Service) LoadReports(ctx context.Context) error {
	start, end := s.dayBounds()
	docs, err := s.store.QueryByDateRange(ctx, CollectionReports, "date", start, end)
	if err != nil {
		return err
	}
	byChild := make(map[string]*report.DailyReport)
	for _, d := range docs {
		r := report.ReportFromDocument(d.ID, d.Fields)
		if r.ChildName == "" {
			continue
		}
		byChild[r.ChildName] = report.PickPreferred(byChild[r.ChildName], &r)
	}
	s.mu.Lock()
	s.reports = byChild
	s.mu.Unlock()
	return nil
}

// LoadConfig refreshes theme configuration. The common parents' note is
// only honoured when its stored date-stamp equals today's date.
func (s *Service) LoadConfig(ctx context.Context) error {
	doc, ok, err := s.store.GetDocument(ctx, CollectionConfig, ConfigDocID)
	if err != nil {
		return err
	}
	if !ok {
		return nil
	}

	weekly := report.StringList(doc.Fields["theme"])
	dayThemes := report.StringList(doc.Fields["themeOfTheDay"])
	note := ""
	noteDate, _ := doc.Fields["commonParentsNoteDate"].(string)
	if noteDate == s.now().Format("2006-01-02") {
		note, _ = doc.Fields["commonParentsNote"].(string)
	}

	s.mu.Lock()
	s.weeklyThemes = weekly
	s.defaults = report.Defaults{Themes: dayThemes, CommonParentsNote: note}
	s.mu.Unlock()
	return nil
}

// Roster returns the cached roster.
func (s *Service) Roster() []report.Child {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]report.Child{}, s.kids...)
}

// Config returns the weekly theme tags and the per-day defaults.
func (s *Service) Config() ([]string, report.Defaults) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string{}, s.weeklyThemes...), report.Defaults{
		Themes:            append([]string{}, s.defaults.Themes...),
		CommonParentsNote: s.defaults.CommonParentsNote,
	}
}

// FormFor builds the canonical editable form state for a child from the
// current snapshot: the preferred report when one exists, otherwise a
// blank form seeded with the attendance check-in time, with roster
// emails and configuration defaults filled into still-blank fields.
// Re-invoking with unchanged inputs yields identical state, and fields
// that already have content are never overwritten.
func (s *Service) FormFor(childName string) report.FormState {
	s.mu.Lock()
	defer s.mu.Unlock()

	var form report.FormState
	if r, ok := s.reports[childName]; ok {
		form = report.FormFromReport(*r, s.defaults)
	} else {
		form = report.NewFormState(childName, s.defaults)
		if rec, ok := s.attendance[childName]; ok && rec.Status == report.Present {
			form.SeedInTime(report.To24Hour(rec.Time))
		}
	}

	for _, kid := range s.kids {
		if kid.Name == childName {
			form.FillEmails(kid.Email, kid.Email2)
			break
		}
	}
	form.ApplyDefaults(s.defaults)
	return form
}

// MarkAttendance records a present/absent transition for a child.
// Re-marking overwrites the stored record; no history is kept. The local
// cache is updated first, then the mark is persisted under the child's
// key within the per-day aggregate, creating the aggregate on the first
// write of the day.
func (s *Service) MarkAttendance(ctx context.Context, childName, status string) (MarkResult, error) {
	if childName == "" {
		return MarkResult{}, errors.New("child name required")
	}
	if status != report.Present && status != report.Absent {
		return MarkResult{}, fmt.Errorf("invalid attendance status %q", status)
	}

	now := s.now()
	rec := report.AttendanceRecord{
		Status:   status,
		Time:     now.Format("15:04"),
		MarkedAt: now.Format("1/2/2006, 3:04 PM"),
	}
	fields := map[string]any{
		"status":   rec.Status,
		"time":     rec.Time,
		"markedAt": rec.MarkedAt,
	}

	s.mu.Lock()
	s.attendance[childName] = rec
	docID := s.attendanceDocID
	s.mu.Unlock()

	res := MarkResult{Local: true}
	if docID != "" {
		err := s.store.UpdateDocument(ctx, CollectionAttendance, docID, map[string]any{
			"attendance." + childName: fields,
			"date":                    now,
		})
		if err != nil {
			return res, fmt.Errorf("persist attendance: %w", err)
		}
	} else {
		id, err := s.store.CreateDocument(ctx, CollectionAttendance, map[string]any{
			"date":       now,
			"attendance": map[string]any{childName: fields},
		})
		if err != nil {
			return res, fmt.Errorf("persist attendance: %w", err)
		}
		s.mu.Lock()
		s.attendanceDocID = id
		s.mu.Unlock()
	}

	res.Persisted = true
	attendanceMarks.WithLabelValues(status).Inc()
	return res, nil
}

// EnsureAutoAbsent marks every roster child without an attendance record
// absent once the wall clock reaches noon. The sweep runs at most once
// per session; before noon it is a no-op and the latch stays open.
func (s *Service) EnsureAutoAbsent(ctx context.Context) {
	s.mu.Lock()
	if s.autoMarked || s.now().Hour() < 12 {
		s.mu.Unlock()
		return
	}
	s.autoMarked = true
	var unmarked []string
	for _, kid := range s.kids {
		if _, ok := s.attendance[kid.Name]; !ok {
			unmarked = append(unmarked, kid.Name)
		}
	}
	s.mu.Unlock()

	for _, name := range unmarked {
		if _, err := s.MarkAttendance(ctx, name, report.Absent); err != nil {
			log.Printf("auto-absent %s failed: %v", name, err)
		}
	}
	autoAbsentSweeps.Inc()
}

// SaveReport upserts a child's report from form state. An existing
// preferred report is updated in place under its id; otherwise a new
// document is created with a createdAt stamp. The cache entry feeds back
// into subsequent selections so a second save hits the same id.
func (s *Service) SaveReport(ctx context.Context, form report.FormState, status report.Status) (string, error) {
	if err := form.Validate(); err != nil {
		return "", err
	}

	now := s.now()
	payload := form.Payload(status, now)

	s.mu.Lock()
	existing := s.reports[form.ChildName]
	s.mu.Unlock()

	if existing != nil {
		if err := s.store.UpdateDocument(ctx, CollectionReports, existing.ID, payload); err != nil {
			return "", fmt.Errorf("update report: %w", err)
		}
		merged := report.ReportFromDocument(existing.ID, payload)
		merged.CreatedAt = existing.CreatedAt
		s.mu.Lock()
		s.reports[form.ChildName] = &merged
		s.mu.Unlock()
		reportSaves.WithLabelValues(string(status)).Inc()
		return existing.ID, nil
	}

	payload["createdAt"] = now
	id, err := s.store.CreateDocument(ctx, CollectionReports, payload)
	if err != nil {
		return "", fmt.Errorf("create report: %w", err)
	}
	created := report.ReportFromDocument(id, payload)
	s.mu.Lock()
	s.reports[form.ChildName] = &created
	s.mu.Unlock()
	reportSaves.WithLabelValues(string(status)).Inc()
	return id, nil
}

// MarkOutTime stamps the current time onto a fully filled report's
// outTime and bumps updatedAt. Children without a full report are
// rejected.
func (s *Service) MarkOutTime(ctx context.Context, childName string) (string, error) {
	s.mu.Lock()
	r := s.reports[childName]
	s.mu.Unlock()
	if r == nil || r.ReportStatus != report.StatusFull {
		return "", ErrReportNotFull
	}

	now := s.now()
	outTime := report.To12Hour(now.Format("15:04"))
	err := s.store.UpdateDocument(ctx, CollectionReports, r.ID, map[string]any{
		"outTime":   outTime,
		"updatedAt": now,
	})
	if err != nil {
		return "", fmt.Errorf("update out time: %w", err)
	}

	s.mu.Lock()
	if cur := s.reports[childName]; cur != nil {
		cur.OutTime = outTime
		cur.UpdatedAt = now
	}
	s.mu.Unlock()
	return outTime, nil
}

// EligibleChildren lists present children selectable for a new report:
// those whose report is not yet fully filled, plus the currently
// selected child so an in-progress edit stays reachable.
func (s *Service) EligibleChildren(selected string) []string {
	s.mu.Lock()
	defer s.mu.Unlock()

	var names []string
	for name, rec := range s.attendance {
		if rec.Status != report.Present {
			continue
		}
		r := s.reports[name]
		if r == nil || r.ReportStatus != report.StatusFull || name == selected {
			names = append(names, name)
		}
	}
	sort.Strings(names)
	return names
}

// OverviewRow is one child's line on the day view.
type OverviewRow struct {
	Name        string              `json:"name"`
	Status      string              `json:"status,omitempty"`
	Time        string              `json:"time,omitempty"`
	MarkedAt    string              `json:"markedAt,omitempty"`
	ReportState report.DisplayState `json:"reportState,omitempty"`
	ReportLabel string              `json:"reportLabel,omitempty"`
	ReportFull  bool                `json:"reportFull"`
	OutTime     string              `json:"outTime,omitempty"`
}

// Overview is the day view: marked-count progress, theme tags, and one
// row per roster child.
type Overview struct {
	Date         string        `json:"date"`
	MarkedCount  int           `json:"markedCount"`
	Total        int           `json:"total"`
	WeeklyThemes []string      `json:"weeklyThemes"`
	DayThemes    []string      `json:"dayThemes"`
	Rows         []OverviewRow `json:"rows"`
}

// Overview builds the day view from the current snapshot. Rows sort
// present children first and absent children last, then by name.
func (s *Service) Overview() Overview {
	s.mu.Lock()
	defer s.mu.Unlock()

	ov := Overview{
		Date:         s.now().Format("January 2, 2006"),
		Total:        len(s.kids),
		WeeklyThemes: append([]string{}, s.weeklyThemes...),
		DayThemes:    append([]string{}, s.defaults.Themes...),
	}

	for name, rec := range s.attendance {
		if !s.onRoster(name) {
			continue
		}
		if rec.Status == report.Present || rec.Status == report.Absent {
			ov.MarkedCount++
		}
	}

	kids := append([]report.Child{}, s.kids...)
	sort.SliceStable(kids, func(i, j int) bool {
		si, sj := s.attendance[kids[i].Name].Status, s.attendance[kids[j].Name].Status
		if si == report.Present && sj != report.Present {
			return true
		}
		if si != report.Present && sj == report.Present {
			return false
		}
		if si == report.Absent && sj != report.Absent {
			return false
		}
		if si != report.Absent && sj == report.Absent {
			return true
		}
		return kids[i].Name < kids[j].Name
	})

	for _, kid := range kids {
		row := OverviewRow{Name: kid.Name}
		var att *report.AttendanceRecord
		if rec, ok := s.attendance[kid.Name]; ok {
			att = &rec
			row.Status = rec.Status
			row.Time = rec.Time
			row.MarkedAt = rec.MarkedAt
		}
		r := s.reports[kid.Name]
		row.ReportState = report.ClassifyForDisplay(r, att)
		row.ReportLabel = row.ReportState.Label()
		if r != nil && r.ReportStatus == report.StatusFull {
			row.ReportFull = true
			row.OutTime = r.OutTime
		}
		ov.Rows = append(ov.Rows, row)
	}
	return ov
}

func (s *Service) onRoster(name string) bool {
	for _, kid := range s.kids {
		if kid.Name == name {
			return true
		}
	}
	return false
}
