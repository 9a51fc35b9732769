package records

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/opscart/assist-advisor/pkg/classifier"
	"github.com/opscart/assist-advisor/pkg/models"
)

var (
	ErrUnknownSortField     = errors.New("unknown sort field")
	ErrUnknownSortDirection = errors.New("unknown sort direction")
)

type SortField string

const (
	SortTimestamp       SortField = "timestamp"
	SortCustomerName    SortField = "customerName"
	SortRegistrationNo  SortField = "registrationNo"
	SortModel           SortField = "model"
	SortWorkshopName    SortField = "workshopName"
	SortAmountCollected SortField = "amountCollected"
)

type Direction string

const (
	Asc  Direction = "asc"
	Desc Direction = "desc"
)

// Search returns the records whose customer name, registration number or
// workshop name contain term. Matching ignores case and diacritics; an
// empty term matches everything.
func Search(recs []models.AssistRecord, term string) []models.AssistRecord {
	term = classifier.Normalize(term)

	out := make([]models.AssistRecord, 0, len(recs))
	for _, r := range recs {
		haystack := classifier.Normalize(strings.Join([]string{r.CustomerName, r.RegistrationNo, r.WorkshopName}, " "))
		if strings.Contains(haystack, term) {
			out = append(out, r)
		}
	}
	return out
}

// Sort returns a sorted copy of recs. Equal keys keep their input order.
// An empty direction sorts descending.
func Sort(recs []models.AssistRecord, field SortField, dir Direction) ([]models.AssistRecord, error) {
	less, err := comparator(field)
	if err != nil {
		return nil, err
	}

	switch dir {
	case Asc:
	case Desc, "":
		asc := less
		less = func(a, b *models.AssistRecord) bool { return asc(b, a) }
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownSortDirection, dir)
	}

	out := make([]models.AssistRecord, len(recs))
	copy(out, recs)
	sort.SliceStable(out, func(i, j int) bool {
		return less(&out[i], &out[j])
	})
	return out, nil
}

func comparator(field SortField) (func(a, b *models.AssistRecord) bool, error) {
	switch field {
	case SortTimestamp:
		return func(a, b *models.AssistRecord) bool { return a.Timestamp.Before(b.Timestamp) }, nil
	case SortCustomerName:
		return func(a, b *models.AssistRecord) bool { return a.CustomerName < b.CustomerName }, nil
	case SortRegistrationNo:
		return func(a, b *models.AssistRecord) bool { return a.RegistrationNo < b.RegistrationNo }, nil
	case SortModel:
		return func(a, b *models.AssistRecord) bool { return a.Model < b.Model }, nil
	case SortWorkshopName:
		return func(a, b *models.AssistRecord) bool { return a.WorkshopName < b.WorkshopName }, nil
	case SortAmountCollected:
		return func(a, b *models.AssistRecord) bool { return a.AmountCollected.LessThan(b.AmountCollected) }, nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownSortField, field)
	}
}
