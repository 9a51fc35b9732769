package records

import "github.com/opscart/assist-advisor/pkg/models"

// VehicleGroup is every service record for one vehicle, in input order
type VehicleGroup struct {
	Vehicle models.VehicleIdentity
	Records []models.ServiceRecord
}

// GroupByVehicle buckets service records by (model, registration).
// Groups come back in order of first appearance.
func GroupByVehicle(recs []models.ServiceRecord) []VehicleGroup {
	index := make(map[models.VehicleIdentity]int)
	var groups []VehicleGroup

	for _, r := range recs {
		id := r.Identity()
		i, ok := index[id]
		if !ok {
			i = len(groups)
			index[id] = i
			groups = append(groups, VehicleGroup{Vehicle: id})
		}
		groups[i].Records = append(groups[i].Records, r)
	}

	return groups
}

// Latest returns the most recent record of serviceType. When two records
// share a service date the later one in the slice wins.
func Latest(recs []models.ServiceRecord, serviceType string) (models.ServiceRecord, bool) {
	var latest models.ServiceRecord
	found := false

	for _, r := range recs {
		if r.ServiceType != serviceType {
			continue
		}
		if !found || !r.ServiceDate.Before(latest.ServiceDate) {
			latest = r
			found = true
		}
	}

	return latest, found
}
