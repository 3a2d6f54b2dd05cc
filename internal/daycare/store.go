package daycare

import (
	"context"
	"time"
)

// Document is one record in a collection: an opaque id plus a field bag.
type Document struct {
	ID     string
	Fields map[string]any
}

// Store is the persistence collaborator. Record identity is an opaque
// string id per collection. Dotted keys passed to UpdateDocument address
// nested paths, e.g. "attendance.Ana" updates one child's entry inside
// the per-day aggregate without touching its siblings.
type Store interface {
	QueryByDateRange(ctx context.Context, collection, field string, start, end time.Time) ([]Document, error)
	GetDocument(ctx context.Context, collection, id string) (Document, bool, error)
	CreateDocument(ctx context.Context, collection string, fields map[string]any) (string, error)
	UpdateDocument(ctx context.Context, collection, id string, fields map[string]any) error
	ListAll(ctx context.Context, collection string) ([]Document, error)
}

// Collections used by the service.
const (
	CollectionRoster     = "kidsInfo"
	CollectionAttendance = "attendance"
	CollectionReports    = "dailyReports"
	CollectionConfig     = "appConfig"
	CollectionDevices    = "devices"
)

// ConfigDocID is the well-known id of the theme configuration document.
const ConfigDocID = "themeOfTheWeek"
