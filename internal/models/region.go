package models

// Region groups cities for the autocomplete index. Loaded from a static
// YAML file the same way item catalogs are.
type Region struct {
	Name   string   `yaml:"name" json:"name"`
	Cities []string `yaml:"cities" json:"cities"`
}
