package repository

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func detail(brand, model string, desc *string) *CarDetail {
	d := &CarDetail{BrandName: brand, ModelName: model}
	d.Description = desc
	return d
}

func str(s string) *string { return &s }

func TestMatchesSearch(t *testing.T) {
	d := detail("Toyota", "Land Cruiser", str("Full option, low mileage"))

	assert.True(t, MatchesSearch("", d), "empty term matches everything")
	assert.True(t, MatchesSearch("   ", d), "whitespace-only term matches everything")
	assert.True(t, MatchesSearch("toyo", d), "brand substring, case-insensitive")
	assert.True(t, MatchesSearch("CRUISER", d), "model substring, case-insensitive")
	assert.True(t, MatchesSearch("low mileage", d), "description substring")
	assert.False(t, MatchesSearch("nissan", d))
}

func TestMatchesSearchNilDescription(t *testing.T) {
	d := detail("Kia", "Sorento", nil)
	assert.True(t, MatchesSearch("sorento", d))
	assert.False(t, MatchesSearch("leather", d))
}

func TestFilterBySearchPreservesOrder(t *testing.T) {
	cars := []*CarDetail{
		detail("Toyota", "Camry", nil),
		detail("Nissan", "Patrol", str("Toyota trade-in accepted")),
		detail("Honda", "Civic", nil),
		detail("Toyota", "Corolla", nil),
	}

	got := FilterBySearch("toyota", cars)
	if assert.Len(t, got, 3) {
		assert.Equal(t, "Camry", got[0].ModelName)
		assert.Equal(t, "Patrol", got[1].ModelName, "description matches count")
		assert.Equal(t, "Corolla", got[2].ModelName)
	}

	assert.Equal(t, cars, FilterBySearch("", cars), "empty term returns input unchanged")
	assert.Empty(t, FilterBySearch("lamborghini", cars))
}
