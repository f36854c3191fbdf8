package domain

import "github.com/kailas-cloud/facilitydex/internal/domain/geo"

// Facility is a normalized point of service. Surrogate ids are run-scoped.
type Facility struct {
	ID           int
	SourceID     string
	Name         string
	TypeID       int
	TypeName     string
	OwnershipID  int // 0 when the facility has no ownership
	Ownership    string
	Address      string
	ContactName  string
	ContactPhone string
	ContactEmail string
	Position     geo.Point
	OpeningHours map[string]string
	LocationID   int // 0 when the location reference did not resolve
	Priority     int
	LastUpdated  string
}

// Location is a node of the administrative tree. Roots have ParentID 0 and Level 1.
type Location struct {
	ID       int
	SourceID string
	Name     string
	ParentID int
	Level    int
}

// CategoryGroup groups categories, e.g. services or equipment.
type CategoryGroup struct {
	ID       int
	SourceID string
	Names    map[string]string
}

// Category is a localized tag belonging to exactly one group.
type Category struct {
	ID       int
	SourceID string
	GroupID  int
	Names    map[string]string
}

// FacilityType is keyed by name; Priority defaults to 0.
type FacilityType struct {
	ID       int
	Name     string
	Priority int
}

// Ownership is derived from distinct facility ownership strings.
type Ownership struct {
	ID   int
	Name string
}
