package search

import (
	"fmt"
	"testing"

	"maestro/internal/models"

	"github.com/stretchr/testify/assert"
)

func testRegions() []models.Region {
	return []models.Region{
		{Name: "Московская область", Cities: []string{"Москва", "Можайск", "Подольск"}},
		{Name: "Ленинградская область", Cities: []string{"Санкт-Петербург", "Москва", "Мурино"}},
	}
}

func TestAutocomplete(t *testing.T) {
	idx := NewCityIndex(testRegions())

	// Порядок первого появления, без дублей
	assert.Equal(t, []string{"Москва", "Можайск"}, idx.Autocomplete("Мо"))
}

func TestAutocompletePrefix(t *testing.T) {
	idx := NewCityIndex(testRegions())

	assert.Equal(t, []string{"Москва"}, idx.Autocomplete("Мос"))
	assert.Equal(t, []string{"Москва"}, idx.Autocomplete("мос"))
	assert.Equal(t, []string{"Санкт-Петербург"}, idx.Autocomplete("санкт"))
	assert.Empty(t, idx.Autocomplete("Новосибирск"))
}

func TestAutocompleteMinPrefix(t *testing.T) {
	idx := NewCityIndex(testRegions())

	// Односимвольный префикс по рунам, не по байтам
	assert.Nil(t, idx.Autocomplete("М"))
	assert.Nil(t, idx.Autocomplete("  М  "))
	assert.NotEmpty(t, idx.Autocomplete("Мо"))
}

func TestAutocompleteLimit(t *testing.T) {
	region := models.Region{Name: "Тестовая область"}
	for i := 0; i < models.AutocompleteLimit+5; i++ {
		region.Cities = append(region.Cities, fmt.Sprintf("Городок-%02d", i))
	}
	idx := NewCityIndex([]models.Region{region})

	out := idx.Autocomplete("Городок")
	assert.Len(t, out, models.AutocompleteLimit)
	assert.Equal(t, "Городок-00", out[0])
}
