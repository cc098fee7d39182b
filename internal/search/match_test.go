package search

import (
	"testing"

	"maestro/internal/models"

	"github.com/stretchr/testify/assert"
)

func TestMatchesAttributes(t *testing.T) {
	attrs := map[string][]string{
		"shootTypes": {"свадьба", "репортаж"},
		"budget":     {"средний"},
	}

	f := &Filter{Category: models.CategoryPhotographer}
	assert.True(t, f.MatchesAttributes(attrs))

	f.Sub.ShootTypes = []string{"свадьба"}
	assert.True(t, f.MatchesAttributes(attrs))

	// Требуются все запрошенные значения списка
	f.Sub.ShootTypes = []string{"свадьба", "студия"}
	assert.False(t, f.MatchesAttributes(attrs))

	f.Sub.ShootTypes = nil
	f.Sub.Budget = "высокий"
	assert.False(t, f.MatchesAttributes(attrs))

	// Без категории фильтр подпунктов не применяется
	empty := &Filter{Sub: SubFilters{Genre: "джаз"}}
	assert.True(t, empty.MatchesAttributes(attrs))
}
