// Package schema is the registry of bridge survey columns: the fixed,
// ordered list of attribute names used to select and label rows.
package schema

import (
	"errors"
	"fmt"
	"strings"

	"github.com/deppfellow/bridge-api/internal/model"
	"github.com/jackc/pgx/v5"
)

// ErrSchemaDrift is returned whenever the backing table's columns no longer
// line up with the registry. Rows are never labeled in that state.
var ErrSchemaDrift = errors.New("schema drift")

// bridgeColumns is the column layout of the bridge survey table, in table order.
var bridgeColumns = []string{
	"Bridge_Name",
	"Project_Code",
	"Needs_Assessment",
	"Bridge_Opportunity_Level1_Government",
	"Bridge_Opportunity_Level2_Government",
	"Stage",
	"GPS_Latitude",
	"GPS_Longitude",
	"Bridge_Type",
	"Bridge_Span_m",
	"Individuals_Directly_Served",
	"year_2013_2014_Data",
	"Form_Name",
	"Created_By",
	"Bridge_Location_GPS_Latitude",
	"Proposed_Bridge_Location_GPS_Longitude",
	"Current_crossing_method",
	"Nearest_all_weather_crossing_point",
	"Days_per_year_river_flooded",
	"Flood_duration_rainy_season",
	"Market_access_blocked_by_river",
	"Education_access_blocked_by_river",
	"Health_access_blocked_by_river",
	"Other_access_blocked_by_river",
	"Primary_occupations",
	"Primary_crops_grown",
	"River_crossing_deaths_last_3_years",
	"River_crossing_injuries_last_3_years",
	"Incident_descriptions",
	"Notes_social_information",
	"Cell_service_quality",
	"Accessibility",
	"Name_nearest_city",
	"Name_nearest_paved_or_sealed_road",
	"Bridge_classification",
	"Flag_for_Rejection",
	"Rejection_Reason",
	"Bridge_Types",
	"Estimated_span_m",
	"Height_differential_between_banks",
	"General_Project_Photos",
	"CaseSafeID",
	"Senior_Engineering_Review_Conducted",
}

// Registry is an immutable ordered column list.
type Registry struct {
	columns    []string
	index      map[string]int
	selectList string
}

var defaultRegistry = mustNew(bridgeColumns)

// Default returns the process-wide bridge survey registry.
func Default() *Registry {
	return defaultRegistry
}

// New builds a registry from an ordered column list. Names must be
// non-empty and unique.
func New(columns []string) (*Registry, error) {
	if len(columns) == 0 {
		return nil, errors.New("schema: registry needs at least one column")
	}

	r := &Registry{
		columns: make([]string, len(columns)),
		index:   make(map[string]int, len(columns)),
	}
	quoted := make([]string, len(columns))

	for i, name := range columns {
		if strings.TrimSpace(name) == "" {
			return nil, fmt.Errorf("schema: column %d has an empty name", i)
		}
		if _, dup := r.index[name]; dup {
			return nil, fmt.Errorf("schema: duplicate column %q", name)
		}
		r.columns[i] = name
		r.index[name] = i
		quoted[i] = pgx.Identifier{name}.Sanitize()
	}
	r.selectList = strings.Join(quoted, ", ")

	return r, nil
}

func mustNew(columns []string) *Registry {
	r, err := New(columns)
	if err != nil {
		panic(err)
	}
	return r
}

// Columns returns a copy of the ordered column names.
func (r *Registry) Columns() []string {
	out := make([]string, len(r.columns))
	copy(out, r.columns)
	return out
}

// Len returns the number of columns.
func (r *Registry) Len() int {
	return len(r.columns)
}

// Index returns the position of a column.
func (r *Registry) Index(name string) (int, bool) {
	i, ok := r.index[name]
	return i, ok
}

// SelectList returns the columns as a quoted, comma-separated SQL list,
// ready to be placed after SELECT.
func (r *Registry) SelectList() string {
	return r.selectList
}

// CheckFields verifies that a result set's column names match the registry
// exactly, in count and in order.
func (r *Registry) CheckFields(names []string) error {
	if len(names) != len(r.columns) {
		return fmt.Errorf("%w: result has %d columns, registry expects %d", ErrSchemaDrift, len(names), len(r.columns))
	}
	for i, name := range names {
		if name != r.columns[i] {
			return fmt.Errorf("%w: column %d is %q, registry expects %q", ErrSchemaDrift, i, name, r.columns[i])
		}
	}
	return nil
}

// Missing returns the registry columns absent from the given set, in
// registry order.
func (r *Registry) Missing(present []string) []string {
	seen := make(map[string]struct{}, len(present))
	for _, name := range present {
		seen[name] = struct{}{}
	}

	var missing []string
	for _, name := range r.columns {
		if _, ok := seen[name]; !ok {
			missing = append(missing, name)
		}
	}
	return missing
}

// Label pairs a raw row with the registry's column names.
func (r *Registry) Label(values []any) (model.BridgeRecord, error) {
	if len(values) != len(r.columns) {
		return model.BridgeRecord{}, fmt.Errorf("%w: row has %d values, registry expects %d", ErrSchemaDrift, len(values), len(r.columns))
	}
	return model.NewBridgeRecord(r.columns, values), nil
}
