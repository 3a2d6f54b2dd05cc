package daycare

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	attendanceMarks = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "daycare_attendance_marks_total",
		Help: "Attendance marks recorded, by status.",
	}, []string{"status"})

	reportSaves = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "daycare_report_saves_total",
		Help: "Daily report upserts, by target status.",
	}, []string{"status"})

	autoAbsentSweeps = promauto.NewCounter(prometheus.CounterOpts{
		Name: "daycare_auto_absent_sweeps_total",
		Help: "Auto-absent sweeps executed after the noon cutoff.",
	})
)
