package compare

import "github.com/dd0wney/cluso-crosscheck/pkg/entities"

// DefaultTemporalFields are the field names that mark an entity as time-ordered
var DefaultTemporalFields = []string{"block", "blockNumber", "timestamp"}

// SeparateByTemporalFields partitions model entities by whether any field name
// is in temporalFields. A nil temporalFields uses DefaultTemporalFields.
func SeparateByTemporalFields(model *entities.Model, temporalFields []string) (temporal, nonTemporal []string) {
	set := temporalSet(temporalFields)
	temporal, nonTemporal = []string{}, []string{}
	for _, name := range model.Names() {
		if hasTemporalField(model.FieldNames(name), set) {
			temporal = append(temporal, name)
		} else {
			nonTemporal = append(nonTemporal, name)
		}
	}
	return temporal, nonTemporal
}

func temporalSet(fields []string) map[string]bool {
	if fields == nil {
		fields = DefaultTemporalFields
	}
	set := make(map[string]bool, len(fields))
	for _, f := range fields {
		set[f] = true
	}
	return set
}

func hasTemporalField(names []string, set map[string]bool) bool {
	for _, n := range names {
		if set[n] {
			return true
		}
	}
	return false
}
