package services

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"

	"sales-dashboard/internal/models"
	"sales-dashboard/internal/seed"
)

func filterFixture() []models.Sale {
	return []models.Sale{
		{ID: "1", Date: day(2023, 1, 5), Customer: "Ana Silva", Category: "Áudio", Region: "Norte", Channel: "Online"},
		{ID: "2", Date: day(2023, 1, 31), Customer: "Bruno Costa", Category: "Redes", Region: "Sul", Channel: "Loja"},
		{ID: "3", Date: day(2023, 2, 1), Customer: "SILVANA Rocha", Category: "Áudio", Region: "Sul", Channel: "Online"},
		{ID: "4", Date: day(2023, 3, 9), Customer: "", Category: "", Region: "Norte", Channel: "Marketplace"},
	}
}

func ids(sales []models.Sale) []string {
	out := []string{}
	for _, s := range sales {
		out = append(out, s.ID)
	}
	return out
}

func TestApplyFilters(t *testing.T) {
	january := models.NewDateRange(day(2023, 1, 1), day(2023, 1, 31))

	tests := []struct {
		name    string
		filters models.Filters
		want    []string
	}{
		{"no filters", models.Filters{}, []string{"1", "2", "3", "4"}},
		{"empty category list", models.Filters{Categories: []string{}}, []string{"1", "2", "3", "4"}},
		{"absent category", models.Filters{Categories: []string{"X"}}, []string{}},
		{"inclusive date range", models.Filters{DateRange: &january}, []string{"1", "2"}},
		{"category and region", models.Filters{Categories: []string{"Áudio"}, Regions: []string{"Sul"}}, []string{"3"}},
		{"several channels", models.Filters{Channels: []string{"Loja", "Marketplace"}}, []string{"2", "4"}},
		{"customer case-insensitive", models.Filters{SearchCustomer: "silva"}, []string{"1", "3"}},
		{"customer trimmed", models.Filters{SearchCustomer: "  bruno "}, []string{"2"}},
		{"blank customer", models.Filters{SearchCustomer: "   "}, []string{"1", "2", "3", "4"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ids(ApplyFilters(filterFixture(), tt.filters)))
		})
	}
}

func TestApplyFilters_DoesNotMutateInput(t *testing.T) {
	sales := filterFixture()
	before := append([]models.Sale(nil), sales...)

	out := ApplyFilters(sales, models.Filters{})
	out[0].Customer = "changed"

	assert.Equal(t, before, sales)
}

func TestApplyFilters_Monotonic(t *testing.T) {
	sales := seed.Generate(300, rand.New(rand.NewSource(5)), day(2023, 1, 1))
	q1 := models.NewDateRange(day(2023, 1, 1), day(2023, 3, 31))

	steps := []models.Filters{
		{},
		{Channels: []string{"Online", "Loja"}},
		{Channels: []string{"Online", "Loja"}, Regions: []string{"Norte", "Lisboa"}},
		{Channels: []string{"Online", "Loja"}, Regions: []string{"Norte", "Lisboa"}, DateRange: &q1},
		{Channels: []string{"Online", "Loja"}, Regions: []string{"Norte", "Lisboa"}, DateRange: &q1, SearchCustomer: "a"},
	}

	prev := len(sales)
	for i, f := range steps {
		n := len(ApplyFilters(sales, f))
		assert.LessOrEqual(t, n, prev, "step %d", i)
		prev = n
	}
}
