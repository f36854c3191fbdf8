package indexing

import (
	"strings"

	"github.com/spf13/cast"

	"github.com/kailas-cloud/facilitydex/internal/domain"
	"github.com/kailas-cloud/facilitydex/internal/domain/geo"
)

// Graph is the normalized entity graph of one run.
type Graph struct {
	Facilities     []domain.Facility
	Locations      []domain.Location
	CategoryGroups []domain.CategoryGroup
	Categories     []domain.Category
	FacilityTypes  []domain.FacilityType
	Ownerships     []domain.Ownership
	// FacilityCategories maps a facility id to its category ids in link order.
	FacilityCategories  map[int][]int
	AdministrativeDepth int
}

type normalizer struct {
	locales []string
	report  *Report

	groups     *IDAssigner
	categories *IDAssigner
	locations  *IDAssigner
	facilities *IDAssigner
	types      *IDAssigner
	ownerships *IDAssigner

	priorities map[string]int
}

// Normalize validates ds and builds the entity graph. A missing category or
// category group translation fails the whole run with a *domain.TranslationError;
// every other anomaly skips the record and is noted in report.
func Normalize(ds *domain.Dataset, locales []string, report *Report) (*Graph, error) {
	if ds == nil {
		return nil, domain.ErrInvalidDataset
	}
	if err := checkTranslations(ds, locales); err != nil {
		return nil, err
	}

	n := &normalizer{
		locales:    locales,
		report:     report,
		groups:     NewIDAssigner(),
		categories: NewIDAssigner(),
		locations:  NewIDAssigner(),
		facilities: NewIDAssigner(),
		types:      NewIDAssigner(),
		ownerships: NewIDAssigner(),
		priorities: make(map[string]int),
	}
	g := &Graph{FacilityCategories: make(map[int][]int)}

	n.categoryGroups(ds.CategoryGroups, g)
	n.categoryRows(ds.Categories, g)
	n.facilityTypes(ds.FacilityTypes, g)
	n.locationTree(ds.Locations, g)
	n.facilityRows(ds.Facilities, g)
	n.links(ds.FacilityCategories, g)

	return g, nil
}

func checkTranslations(ds *domain.Dataset, locales []string) error {
	check := func(kind string, rows []domain.Row) error {
		for _, row := range rows {
			for _, l := range locales {
				if text(row[nameKey(l)]) == "" {
					return domain.NewMissingTranslation(kind, text(row["id"]), l)
				}
			}
		}
		return nil
	}
	if err := check(KindCategoryGroup, ds.CategoryGroups); err != nil {
		return err
	}
	return check(KindCategory, ds.Categories)
}

func (n *normalizer) categoryGroups(rows []domain.Row, g *Graph) {
	for _, row := range rows {
		sid := text(row["id"])
		if sid == "" {
			n.report.skip(KindCategoryGroup, sid, ReasonMissingID)
			continue
		}
		if _, dup := n.groups.Lookup(sid); dup {
			n.report.skip(KindCategoryGroup, sid, ReasonDuplicateID)
			continue
		}
		g.CategoryGroups = append(g.CategoryGroups, domain.CategoryGroup{
			ID:       n.groups.Assign(sid),
			SourceID: sid,
			Names:    n.names(row),
		})
	}
}

func (n *normalizer) categoryRows(rows []domain.Row, g *Graph) {
	for _, row := range rows {
		sid := text(row["id"])
		if sid == "" {
			n.report.skip(KindCategory, sid, ReasonMissingID)
			continue
		}
		if _, dup := n.categories.Lookup(sid); dup {
			n.report.skip(KindCategory, sid, ReasonDuplicateID)
			continue
		}
		groupID, ok := n.groups.Lookup(text(row["category_group_id"]))
		if !ok {
			n.report.skip(KindCategory, sid, ReasonUnknownGroup)
			continue
		}
		g.Categories = append(g.Categories, domain.Category{
			ID:       n.categories.Assign(sid),
			SourceID: sid,
			GroupID:  groupID,
			Names:    n.names(row),
		})
	}
}

// facilityTypes registers the supplied type list. Types first named by a
// facility are added later with priority 0.
func (n *normalizer) facilityTypes(rows []domain.Row, g *Graph) {
	for _, row := range rows {
		name := text(row["name"])
		if name == "" {
			n.report.skip(KindFacilityType, name, ReasonMissingName)
			continue
		}
		if _, dup := n.types.Lookup(name); dup {
			n.report.skip(KindFacilityType, name, ReasonDuplicateID)
			continue
		}

		priority := 0
		if v := row["priority"]; v != nil {
			p, err := cast.ToIntE(v)
			if err != nil {
				n.report.unresolved(KindFacilityType, name, ReasonInvalidPriority)
			} else {
				priority = p
			}
		}
		n.priorities[name] = priority
		g.FacilityTypes = append(g.FacilityTypes, domain.FacilityType{
			ID:       n.types.Assign(name),
			Name:     name,
			Priority: priority,
		})
	}
}

type locationRow struct {
	sid    string
	name   string
	parent int // row index, -1 for roots
	level  int // 0 unknown, -1 on or below a parent cycle
}

// locationTree resolves parents and levels. An unknown parent makes the
// location a root; locations on or under a parent cycle are skipped.
func (n *normalizer) locationTree(rows []domain.Row, g *Graph) {
	locs := make([]locationRow, 0, len(rows))
	parents := make([]string, 0, len(rows))
	pos := make(map[string]int, len(rows))

	for _, row := range rows {
		sid := text(row["id"])
		switch {
		case sid == "":
			n.report.skip(KindLocation, sid, ReasonMissingID)
			continue
		case text(row["name"]) == "":
			n.report.skip(KindLocation, sid, ReasonMissingName)
			continue
		}
		if _, dup := pos[sid]; dup {
			n.report.skip(KindLocation, sid, ReasonDuplicateID)
			continue
		}
		pos[sid] = len(locs)
		locs = append(locs, locationRow{sid: sid, name: text(row["name"]), parent: -1})
		parents = append(parents, text(row["parent_id"]))
	}

	for i, p := range parents {
		if p == "" {
			continue
		}
		if j, ok := pos[p]; ok {
			locs[i].parent = j
		} else {
			n.report.unresolved(KindLocation, locs[i].sid, ReasonUnknownParent)
		}
	}

	for i := range locs {
		resolveLevel(locs, i)
	}

	for i := range locs {
		if locs[i].level < 0 {
			n.report.skip(KindLocation, locs[i].sid, ReasonParentCycle)
			continue
		}
		n.locations.Assign(locs[i].sid)
	}
	for i := range locs {
		l := &locs[i]
		if l.level < 0 {
			continue
		}
		id, _ := n.locations.Lookup(l.sid)
		loc := domain.Location{ID: id, SourceID: l.sid, Name: l.name, Level: l.level}
		if l.parent >= 0 {
			loc.ParentID, _ = n.locations.Lookup(locs[l.parent].sid)
		}
		g.Locations = append(g.Locations, loc)
		g.AdministrativeDepth = max(g.AdministrativeDepth, l.level)
	}
}

// resolveLevel walks up from i until a root, a resolved node or a cycle,
// then fills in levels along the walked path.
func resolveLevel(locs []locationRow, i int) {
	if locs[i].level != 0 {
		return
	}
	var path []int
	onPath := make(map[int]bool)
	base := 0
	for cur := i; ; cur = locs[cur].parent {
		if locs[cur].level != 0 {
			base = locs[cur].level
			break
		}
		if onPath[cur] {
			base = -1
			break
		}
		onPath[cur] = true
		path = append(path, cur)
		if locs[cur].parent < 0 {
			break
		}
	}
	for j := len(path) - 1; j >= 0; j-- {
		if base < 0 {
			locs[path[j]].level = -1
			continue
		}
		base++
		locs[path[j]].level = base
	}
}

func (n *normalizer) facilityRows(rows []domain.Row, g *Graph) {
	for _, row := range rows {
		sid := text(row["id"])
		name := text(row["name"])
		typeName := text(row["facility_type"])

		var reason Reason
		switch {
		case sid == "":
			reason = ReasonMissingID
		case name == "":
			reason = ReasonMissingName
		case typeName == "":
			reason = ReasonMissingType
		case text(row["lat"]) == "":
			reason = ReasonMissingLat
		case text(row["lng"]) == "":
			reason = ReasonMissingLng
		}
		if reason != "" {
			n.report.skip(KindFacility, sid, reason)
			continue
		}

		lat, latErr := cast.ToFloat64E(row["lat"])
		lng, lngErr := cast.ToFloat64E(row["lng"])
		if latErr != nil || lngErr != nil || !geo.ValidateCoordinates(lat, lng) {
			n.report.skip(KindFacility, sid, ReasonInvalidPosition)
			continue
		}
		if _, dup := n.facilities.Lookup(sid); dup {
			n.report.skip(KindFacility, sid, ReasonDuplicateID)
			continue
		}

		f := domain.Facility{
			ID:           n.facilities.Assign(sid),
			SourceID:     sid,
			Name:         name,
			TypeName:     typeName,
			Address:      text(row["address"]),
			ContactName:  text(row["contact_name"]),
			ContactPhone: text(row["contact_phone"]),
			ContactEmail: text(row["contact_email"]),
			Position:     geo.Point{Lat: lat, Lng: lng},
			OpeningHours: make(map[string]string, len(n.locales)),
			LastUpdated:  text(row["last_update"]),
		}

		f.TypeID = n.facilityType(typeName, g)
		f.Priority = n.priorities[typeName]

		if own := text(row["ownership"]); own != "" {
			f.OwnershipID, f.Ownership = n.ownership(own, g), own
		}

		if loc := text(row["location_id"]); loc != "" {
			if id, ok := n.locations.Lookup(loc); ok {
				f.LocationID = id
			} else {
				n.report.unresolved(KindFacility, sid, ReasonUnknownLocation)
			}
		}

		for _, l := range n.locales {
			f.OpeningHours[l] = text(row["opening_hours:"+l])
		}

		g.Facilities = append(g.Facilities, f)
	}
}

func (n *normalizer) facilityType(name string, g *Graph) int {
	if id, ok := n.types.Lookup(name); ok {
		return id
	}
	id := n.types.Assign(name)
	g.FacilityTypes = append(g.FacilityTypes, domain.FacilityType{ID: id, Name: name})
	return id
}

func (n *normalizer) ownership(name string, g *Graph) int {
	if id, ok := n.ownerships.Lookup(name); ok {
		return id
	}
	id := n.ownerships.Assign(name)
	g.Ownerships = append(g.Ownerships, domain.Ownership{ID: id, Name: name})
	return id
}

// links attaches categories to accepted facilities; repeated links collapse.
func (n *normalizer) links(rows []domain.Row, g *Graph) {
	seen := make(map[[2]int]bool, len(rows))
	for _, row := range rows {
		fsid := text(row["facility_id"])
		csid := text(row["category_id"])
		ref := fsid + "/" + csid

		fid, ok := n.facilities.Lookup(fsid)
		if !ok {
			n.report.skip(KindFacilityCategory, ref, ReasonUnknownFacility)
			continue
		}
		cid, ok := n.categories.Lookup(csid)
		if !ok {
			n.report.skip(KindFacilityCategory, ref, ReasonUnknownCategory)
			continue
		}
		if seen[[2]int{fid, cid}] {
			continue
		}
		seen[[2]int{fid, cid}] = true
		g.FacilityCategories[fid] = append(g.FacilityCategories[fid], cid)
	}
}

func (n *normalizer) names(row domain.Row) map[string]string {
	names := make(map[string]string, len(n.locales))
	for _, l := range n.locales {
		names[l] = text(row[nameKey(l)])
	}
	return names
}

func nameKey(locale string) string {
	return "name:" + locale
}

// text coerces a scalar to its trimmed string form; numeric 0 becomes "0".
// Absent values and non-scalars yield "".
func text(v any) string {
	if v == nil {
		return ""
	}
	s, err := cast.ToStringE(v)
	if err != nil {
		return ""
	}
	return strings.TrimSpace(s)
}
