package recommender

import (
	"fmt"
	"time"

	"github.com/opscart/assist-advisor/pkg/catalog"
	"github.com/opscart/assist-advisor/pkg/models"
	"github.com/opscart/assist-advisor/pkg/records"
)

const (
	oilChangeAlertMonths = 8
	// overdue months in alerts are counted from the regular 6-month interval
	oilChangeIntervalMonths = 6
)

// UrgentNeeds flags vehicles whose last oil change is more than eight
// months old, or that have no oil change on record at all. Warnings come
// back in order of each vehicle's first appearance in recs.
func UrgentNeeds(recs []models.ServiceRecord, now time.Time) []string {
	var warnings []string

	for _, group := range records.GroupByVehicle(recs) {
		vehicle := group.Vehicle.Key()

		last, ok := records.Latest(group.Records, string(catalog.OilChange))
		if !ok {
			warnings = append(warnings, fmt.Sprintf("%s: No oil change record found - immediate attention needed!", vehicle))
			continue
		}

		if monthsSince := monthsBetween(now, last.ServiceDate); monthsSince > oilChangeAlertMonths {
			warnings = append(warnings, fmt.Sprintf("%s: Oil change is %d months overdue!", vehicle, monthsSince-oilChangeIntervalMonths))
		}
	}

	return warnings
}
