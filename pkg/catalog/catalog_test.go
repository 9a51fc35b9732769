package catalog

import (
	"testing"

	"github.com/opscart/assist-advisor/pkg/models"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTypesOrder(t *testing.T) {
	types := Types()
	require.Len(t, types, 10)
	assert.Equal(t, OilChange, types[0])
	assert.Equal(t, MinorService, types[9])
}

func TestEverySpecIsComplete(t *testing.T) {
	for _, spec := range All() {
		t.Run(string(spec.Type), func(t *testing.T) {
			assert.Positive(t, spec.Interval.Months)
			assert.Positive(t, spec.Interval.Miles)
			assert.Positive(t, spec.LaborHours)
			assert.NotNil(t, spec.Parts)
			for _, category := range models.Categories {
				price, ok := spec.Price(category)
				require.True(t, ok, "missing price for %s", category)
				assert.True(t, price.IsPositive())
			}
		})
	}
}

func TestParse(t *testing.T) {
	tests := []struct {
		input    string
		expected ServiceType
		ok       bool
	}{
		{"Oil Change", OilChange, true},
		{"  timing belt ", TimingBelt, true},
		{"MINOR SERVICE", MinorService, true},
		{"Unknown Service", "", false},
		{"", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, ok := Parse(tt.input)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.expected, got)
		})
	}
}

func TestLookup(t *testing.T) {
	spec, ok := Lookup(TireRotation)
	require.True(t, ok)
	assert.Equal(t, Interval{Months: 6, Miles: 7500}, spec.Interval)
	assert.Empty(t, spec.Parts)

	_, ok = Lookup(ServiceType("Wheel Alignment"))
	assert.False(t, ok)
}

func TestPartsListIsCopy(t *testing.T) {
	spec, _ := Lookup(OilChange)
	parts := spec.PartsList()
	parts[0] = "changed"

	again, _ := Lookup(OilChange)
	assert.Equal(t, "Engine Oil", again.Parts[0])
}

func TestCanonical(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"Oil Change", "Oil Change"},
		{"  oil change ", "Oil Change"},
		{"TIMING BELT", "Timing Belt"},
		{" Wiper Blades ", "Wiper Blades"},
		{"", ""},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, Canonical(tt.in), "Canonical(%q)", tt.in)
	}
}

func TestDefaultsCannotBeChanged(t *testing.T) {
	parts := DefaultParts()
	parts[0] = "changed"
	assert.Equal(t, []string{"Standard parts"}, DefaultParts())

	assert.True(t, DefaultPrice().Equal(decimal.NewFromInt(100)))
	assert.Equal(t, 1.0, DefaultLaborHours())
}
