package search

// MatchesAttributes reports whether a performer's attribute facets satisfy
// the selected category's sub-filters. A scalar filter requires its value
// among the performer's facet values; a list filter requires every
// requested value. With no category selected every performer matches.
func (f *Filter) MatchesAttributes(attrs map[string][]string) bool {
	for _, key := range SubFilterKeys(f.Category) {
		want := f.subValue(key)
		if want == "" {
			continue
		}
		have := attrs[key]
		for _, w := range splitList(want) {
			if !containsString(have, w) {
				return false
			}
		}
	}
	return true
}

func containsString(list []string, value string) bool {
	for _, item := range list {
		if item == value {
			return true
		}
	}
	return false
}
