package classifier

import (
	"strings"
	"unicode"

	"github.com/opscart/assist-advisor/pkg/models"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// categoryPatterns is checked top to bottom; the first group with a matching
// fragment decides the category.
var categoryPatterns = []struct {
	category  models.VehicleCategory
	fragments []string
}{
	{models.CategoryLuxury, []string{"bmw", "mercedes", "audi", "lexus", "porsche", "jaguar"}},
	{models.CategoryTruck, []string{"f-150", "silverado", "ram", "truck", "pickup"}},
	{models.CategorySUV, []string{"suv", "escape", "explorer", "tahoe", "suburban", "crv", "rav4", "highlander"}},
	{models.CategoryCompact, []string{"corolla", "civic", "focus", "yaris", "versa", "spark"}},
}

// Categorize maps a free-text model name to its pricing category.
// Models matching no known fragment are sedans.
func Categorize(modelName string) models.VehicleCategory {
	name := Normalize(modelName)

	for _, group := range categoryPatterns {
		for _, fragment := range group.fragments {
			if strings.Contains(name, fragment) {
				return group.category
			}
		}
	}

	return models.CategorySedan
}

// Normalize lower-cases s and strips diacritics so "Škoda Citigo" and
// "skoda citigo" compare equal.
func Normalize(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))

	t := transform.Chain(
		norm.NFD,
		runes.Remove(runes.In(unicode.Mn)),
		norm.NFC,
	)
	folded, _, err := transform.String(t, s)
	if err != nil {
		return s
	}
	return folded
}
