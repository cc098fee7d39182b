package search

import (
	"strings"

	"maestro/internal/models"
)

// CityIndex answers city-name prefix queries over a static region list.
type CityIndex struct {
	regions []models.Region
}

func NewCityIndex(regions []models.Region) *CityIndex {
	return &CityIndex{regions: regions}
}

// Autocomplete returns up to models.AutocompleteLimit distinct city names
// whose lowercase form starts with the lowercased prefix, preserving
// first-seen order. Prefixes shorter than models.AutocompleteMinPrefix
// yield nothing.
func (idx *CityIndex) Autocomplete(prefix string) []string {
	prefix = strings.TrimSpace(prefix)
	if len([]rune(prefix)) < models.AutocompleteMinPrefix {
		return nil
	}
	needle := strings.ToLower(prefix)

	seen := make(map[string]bool)
	var out []string
	for _, region := range idx.regions {
		for _, city := range region.Cities {
			if len(out) >= models.AutocompleteLimit {
				return out
			}
			if seen[city] {
				continue
			}
			if strings.HasPrefix(strings.ToLower(city), needle) {
				seen[city] = true
				out = append(out, city)
			}
		}
	}
	return out
}
