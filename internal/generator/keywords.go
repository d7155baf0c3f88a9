package generator

import "strings"

// familyKeywords maps each seeded family to trigger words, in declaration
// order. Matching is plain lower-cased substring counting, not tokenized or
// stemmed; the citrus and fresh lists intentionally overlap ("fresh" counts
// for both).
var familyKeywords = []struct {
	name     string
	keywords []string
}{
	{"citrus", []string{"citrus", "lemon", "orange", "bergamot", "grapefruit", "lime", "fresh", "zesty"}},
	{"floral", []string{"floral", "flower", "rose", "jasmine", "lavender", "geranium", "ylang"}},
	{"woody", []string{"wood", "woody", "cedar", "sandalwood", "pine", "forest", "earthy"}},
	{"oriental", []string{"oriental", "spice", "vanilla", "amber", "cinnamon", "warm"}},
	{"fresh", []string{"fresh", "aqua", "water", "marine", "green", "mint", "cool"}},
	{"gourmand", []string{"sweet", "vanilla", "chocolate", "honey", "caramel", "dessert"}},
}

// ClassifyFamily picks the family whose keywords occur most often in the
// description. Ties break toward the first-declared family; a description
// matching nothing defaults to Fresh. Deterministic: no randomness, no model
// call.
func ClassifyFamily(description string) string {
	lowered := strings.ToLower(description)
	best := ""
	bestCount := 0
	for _, fk := range familyKeywords {
		count := 0
		for _, kw := range fk.keywords {
			if strings.Contains(lowered, kw) {
				count++
			}
		}
		if count > bestCount {
			best = fk.name
			bestCount = count
		}
	}
	if bestCount == 0 {
		best = "fresh"
	}
	return strings.ToUpper(best[:1]) + best[1:]
}
