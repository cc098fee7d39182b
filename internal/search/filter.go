package search

import (
	"net/url"
	"strconv"
	"strings"

	"maestro/internal/models"
)

// Filter is the performer discovery filter state. Empty Category and
// AccountType mean "all"; the literal "all" is normalized away so that a
// serialized query and its parsed form always compare equal.
type Filter struct {
	City        string
	Category    string
	AccountType string // individual, agency or empty for all
	Date        string // YYYY-MM-DD, optional
	PriceMin    int64
	PriceMax    int64
	Sub         SubFilters
}

// SubFilters holds every category-specific field. Only the fields listed in
// the selected category's schema are serialized; the rest are ignored.
type SubFilters struct {
	SubType     string   // Транспорт
	Capacity    string   // Транспорт
	Services    []string // Транспорт
	Cuisine     string   // Повар
	Genre       string   // Музыканты
	Lineup      string   // Музыканты
	Style       string   // Ведущий
	Languages   []string // Ведущий
	ShootTypes  []string // Фотограф
	Budget      string
	EventStyles []string
}

// categorySchemas maps each category to its admitted sub-filter keys.
var categorySchemas = map[string][]string{
	models.CategoryTransport:    {"subType", "capacity", "services", "budget", "eventStyles"},
	models.CategoryCook:         {"cuisine", "budget", "eventStyles"},
	models.CategoryMusicians:    {"genre", "lineup", "budget", "eventStyles"},
	models.CategoryHost:         {"style", "languages", "budget"},
	models.CategoryPhotographer: {"shootTypes", "budget", "eventStyles"},
}

// SubFilterKeys returns the admitted sub-filter keys for a category, or nil
// for an unknown or unselected category.
func SubFilterKeys(category string) []string {
	return categorySchemas[category]
}

// Normalize collapses "all" selections and strips sub-filter fields that do
// not belong to the selected category's schema.
func (f *Filter) Normalize() {
	f.City = strings.TrimSpace(f.City)
	if f.Category == "all" {
		f.Category = ""
	}
	if f.AccountType == "all" {
		f.AccountType = ""
	}

	allowed := make(map[string]bool)
	for _, key := range SubFilterKeys(f.Category) {
		allowed[key] = true
	}
	if !allowed["subType"] {
		f.Sub.SubType = ""
	}
	if !allowed["capacity"] {
		f.Sub.Capacity = ""
	}
	if !allowed["services"] {
		f.Sub.Services = nil
	}
	if !allowed["cuisine"] {
		f.Sub.Cuisine = ""
	}
	if !allowed["genre"] {
		f.Sub.Genre = ""
	}
	if !allowed["lineup"] {
		f.Sub.Lineup = ""
	}
	if !allowed["style"] {
		f.Sub.Style = ""
	}
	if !allowed["languages"] {
		f.Sub.Languages = nil
	}
	if !allowed["shootTypes"] {
		f.Sub.ShootTypes = nil
	}
	if !allowed["budget"] {
		f.Sub.Budget = ""
	}
	if !allowed["eventStyles"] {
		f.Sub.EventStyles = nil
	}
}

func (f *Filter) subValue(key string) string {
	switch key {
	case "subType":
		return f.Sub.SubType
	case "capacity":
		return f.Sub.Capacity
	case "services":
		return joinList(f.Sub.Services)
	case "cuisine":
		return f.Sub.Cuisine
	case "genre":
		return f.Sub.Genre
	case "lineup":
		return f.Sub.Lineup
	case "style":
		return f.Sub.Style
	case "languages":
		return joinList(f.Sub.Languages)
	case "shootTypes":
		return joinList(f.Sub.ShootTypes)
	case "budget":
		return f.Sub.Budget
	case "eventStyles":
		return joinList(f.Sub.EventStyles)
	}
	return ""
}

func (f *Filter) setSubValue(key, value string) {
	switch key {
	case "subType":
		f.Sub.SubType = value
	case "capacity":
		f.Sub.Capacity = value
	case "services":
		f.Sub.Services = splitList(value)
	case "cuisine":
		f.Sub.Cuisine = value
	case "genre":
		f.Sub.Genre = value
	case "lineup":
		f.Sub.Lineup = value
	case "style":
		f.Sub.Style = value
	case "languages":
		f.Sub.Languages = splitList(value)
	case "shootTypes":
		f.Sub.ShootTypes = splitList(value)
	case "budget":
		f.Sub.Budget = value
	case "eventStyles":
		f.Sub.EventStyles = splitList(value)
	}
}

// Serialize maps the filter to query parameters. Only non-empty fields are
// written; array values are joined with "," into a single value; sub-filter
// keys appear only for a known selected category.
func (f *Filter) Serialize() url.Values {
	f.Normalize()

	values := url.Values{}
	if f.City != "" {
		values.Set("city", f.City)
	}
	if f.Category != "" {
		values.Set("category", f.Category)
	}
	if f.AccountType != "" {
		values.Set("type", f.AccountType)
	}
	if f.Date != "" {
		values.Set("date", f.Date)
	}
	if f.PriceMin > 0 {
		values.Set("priceMin", strconv.FormatInt(f.PriceMin, 10))
	}
	if f.PriceMax > 0 {
		values.Set("priceMax", strconv.FormatInt(f.PriceMax, 10))
	}

	for _, key := range SubFilterKeys(f.Category) {
		if v := f.subValue(key); v != "" {
			values.Set(key, v)
		}
	}
	return values
}

// Encode returns the filter as a query string.
func (f *Filter) Encode() string {
	return f.Serialize().Encode()
}

// Parse rebuilds a filter from query parameters. Parse is the inverse of
// Serialize: Parse(Serialize(f)) equals the normalized f, arrays compared
// as sets after splitting on ",".
func Parse(values url.Values) *Filter {
	f := &Filter{
		City:        strings.TrimSpace(values.Get("city")),
		Category:    values.Get("category"),
		AccountType: values.Get("type"),
		Date:        values.Get("date"),
	}
	if raw := values.Get("priceMin"); raw != "" {
		if n, err := strconv.ParseInt(raw, 10, 64); err == nil {
			f.PriceMin = n
		}
	}
	if raw := values.Get("priceMax"); raw != "" {
		if n, err := strconv.ParseInt(raw, 10, 64); err == nil {
			f.PriceMax = n
		}
	}

	for _, key := range SubFilterKeys(f.Category) {
		if raw := values.Get(key); raw != "" {
			f.setSubValue(key, raw)
		}
	}

	f.Normalize()
	return f
}

// ParseQuery parses an encoded query string into a filter.
func ParseQuery(rawQuery string) (*Filter, error) {
	values, err := url.ParseQuery(rawQuery)
	if err != nil {
		return nil, err
	}
	return Parse(values), nil
}

func joinList(items []string) string {
	cleaned := make([]string, 0, len(items))
	for _, item := range items {
		if trimmed := strings.TrimSpace(item); trimmed != "" {
			cleaned = append(cleaned, trimmed)
		}
	}
	return strings.Join(cleaned, ",")
}

func splitList(raw string) []string {
	if raw == "" {
		return nil
	}
	parts := strings.Split(raw, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	if len(out) == 0 {
		return nil
	}
	return out
}
