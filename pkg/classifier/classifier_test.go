package classifier

import (
	"testing"

	"github.com/opscart/assist-advisor/pkg/models"
	"github.com/stretchr/testify/assert"
)

func TestCategorize(t *testing.T) {
	tests := []struct {
		model    string
		expected models.VehicleCategory
	}{
		{"BMW 320d", models.CategoryLuxury},
		{"Mercedes-Benz C200", models.CategoryLuxury},
		{"Ford F-150", models.CategoryTruck},
		{"Dodge Ram 1500", models.CategoryTruck},
		{"Toyota RAV4", models.CategorySUV},
		{"Honda CRV", models.CategorySUV},
		{"Chevrolet Tahoe", models.CategorySUV},
		{"Honda Civic", models.CategoryCompact},
		{"Toyota Yaris", models.CategoryCompact},
		{"Toyota Camry", models.CategorySedan},
		{"Maruti Swift", models.CategorySedan},
		{"", models.CategorySedan},
	}

	for _, tt := range tests {
		t.Run(tt.model, func(t *testing.T) {
			assert.Equal(t, tt.expected, Categorize(tt.model))
		})
	}
}

func TestCategorizePrecedence(t *testing.T) {
	tests := []struct {
		name     string
		model    string
		expected models.VehicleCategory
	}{
		{"luxury beats truck", "BMW Pickup Truck", models.CategoryLuxury},
		{"truck beats suv", "Explorer Pickup", models.CategoryTruck},
		{"suv beats compact", "Focus SUV Edition", models.CategorySUV},
		{"luxury beats compact", "Audi Spark Concept", models.CategoryLuxury},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, Categorize(tt.model))
		})
	}
}

func TestCategorizeIsCaseInsensitive(t *testing.T) {
	assert.Equal(t, models.CategoryLuxury, Categorize("lExUs RX"))
	assert.Equal(t, models.CategoryCompact, Categorize("  COROLLA  "))
}

func TestCategorizeAlwaysValid(t *testing.T) {
	inputs := []string{"", " ", "???", "Škoda Octavia", "日本車", "ram", "RAMBLER"}
	for _, in := range inputs {
		assert.True(t, Categorize(in).Valid(), "input %q", in)
	}
}

func TestNormalize(t *testing.T) {
	assert.Equal(t, "skoda octavia", Normalize("  Škoda Octavia "))
	assert.Equal(t, "citroen c3", Normalize("Citroën C3"))
	assert.Equal(t, "", Normalize(""))
}
