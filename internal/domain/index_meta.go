package domain

import "time"

// IndexMeta describes the indexing run that populated the index.
type IndexMeta struct {
	RunID               string
	CreatedAt           time.Time
	Locales             []string
	AdministrativeDepth int
}
