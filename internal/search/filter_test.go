package search

import (
	"net/url"
	"testing"

	"maestro/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalizeCollapsesAll(t *testing.T) {
	f := &Filter{City: "  Москва ", Category: "all", AccountType: "all"}
	f.Normalize()

	assert.Equal(t, "Москва", f.City)
	assert.Empty(t, f.Category)
	assert.Empty(t, f.AccountType)
}

func TestNormalizeStripsOffSchemaSubFilters(t *testing.T) {
	f := &Filter{
		Category: models.CategoryCook,
		Sub: SubFilters{
			Cuisine:    "итальянская",
			Genre:      "джаз",
			ShootTypes: []string{"свадьба"},
			Budget:     "средний",
		},
	}
	f.Normalize()

	// Жанр и типы съемки не входят в схему категории Повар
	assert.Equal(t, "итальянская", f.Sub.Cuisine)
	assert.Empty(t, f.Sub.Genre)
	assert.Nil(t, f.Sub.ShootTypes)
	assert.Equal(t, "средний", f.Sub.Budget)
}

func TestSerializeTransport(t *testing.T) {
	f := &Filter{
		City:     "Москва",
		Category: models.CategoryTransport,
		PriceMax: 50000,
		Sub: SubFilters{
			SubType:  "лимузин",
			Capacity: "8",
			Services: []string{"декор", "шампанское"},
		},
	}
	values := f.Serialize()

	assert.Equal(t, "Москва", values.Get("city"))
	assert.Equal(t, models.CategoryTransport, values.Get("category"))
	assert.Equal(t, "50000", values.Get("priceMax"))
	assert.Equal(t, "лимузин", values.Get("subType"))
	assert.Equal(t, "8", values.Get("capacity"))
	assert.Equal(t, "декор,шампанское", values.Get("services"))
	assert.Empty(t, values.Get("priceMin"))
}

func TestSerializeSkipsSubFiltersWithoutCategory(t *testing.T) {
	f := &Filter{
		City: "Москва",
		Sub:  SubFilters{Genre: "джаз", Budget: "высокий"},
	}
	values := f.Serialize()

	require.Len(t, values, 1)
	assert.Equal(t, "Москва", values.Get("city"))
}

func TestParseSerializeRoundTrip(t *testing.T) {
	filters := []*Filter{
		{},
		{City: "Казань"},
		{City: "Москва", Category: "all", AccountType: "all"},
		{
			City:     "Москва",
			Category: models.CategoryTransport,
			PriceMin: 10000,
			PriceMax: 50000,
			Sub: SubFilters{
				SubType:  "лимузин",
				Services: []string{"декор", "шампанское"},
			},
		},
		{
			Category:    models.CategoryHost,
			AccountType: models.AccountTypeAgency,
			Date:        "2026-09-12",
			Sub: SubFilters{
				Style:     "классика",
				Languages: []string{"русский", "английский"},
			},
		},
		{
			Category: models.CategoryPhotographer,
			Sub: SubFilters{
				ShootTypes:  []string{"свадьба", "репортаж"},
				Budget:      "средний",
				EventStyles: []string{"лофт"},
			},
		},
	}

	for _, f := range filters {
		encoded := f.Encode()

		parsed, err := ParseQuery(encoded)
		require.NoError(t, err)
		assert.Equal(t, f, parsed, "query %q", encoded)
		assert.Equal(t, encoded, parsed.Encode())
	}
}

func TestParseIgnoresBadPrices(t *testing.T) {
	values := url.Values{}
	values.Set("priceMin", "дорого")
	values.Set("priceMax", "100x")

	f := Parse(values)
	assert.Zero(t, f.PriceMin)
	assert.Zero(t, f.PriceMax)
}

func TestParseDropsUnknownCategorySubFilters(t *testing.T) {
	values := url.Values{}
	values.Set("category", "Фокусник")
	values.Set("genre", "джаз")

	f := Parse(values)
	assert.Equal(t, "Фокусник", f.Category)
	assert.Empty(t, f.Sub.Genre)
}

func TestSplitListTrimsAndDropsEmpty(t *testing.T) {
	assert.Equal(t, []string{"а", "б"}, splitList(" а , б ,, "))
	assert.Nil(t, splitList(""))
	assert.Nil(t, splitList(" , "))
}
