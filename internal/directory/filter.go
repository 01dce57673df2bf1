package directory

import "strings"

// Filter holds the three independent directory predicates. Predicates are
// ANDed together; a zero-value field passes every producer.
type Filter struct {
	Search   string `json:"search"`
	Region   string `json:"region"`
	Category string `json:"category"`
}

// IsZero reports whether no predicate is set
func (f Filter) IsZero() bool {
	return f.Search == "" && f.Region == "" && f.Category == ""
}

// Matches evaluates all predicates against a single producer
func (f Filter) Matches(p *Producer) bool {
	return matchesSearch(p, f.Search) && matchesRegion(p, f.Region) && matchesCategory(p, f.Category)
}

// Apply returns the subset of producers matching every set predicate. The
// result preserves input order; the input slice is never modified.
func (f Filter) Apply(producers []*Producer) []*Producer {
	if f.IsZero() {
		out := make([]*Producer, len(producers))
		copy(out, producers)
		return out
	}

	out := make([]*Producer, 0, len(producers))
	for _, p := range producers {
		if f.Matches(p) {
			out = append(out, p)
		}
	}
	return out
}

// matchesSearch does a case-insensitive substring match against the company
// name, any product string, or the description.
func matchesSearch(p *Producer, search string) bool {
	if search == "" {
		return true
	}
	term := strings.ToLower(search)

	if strings.Contains(strings.ToLower(p.CompanyName), term) {
		return true
	}
	for _, product := range p.Products {
		if strings.Contains(strings.ToLower(product), term) {
			return true
		}
	}
	return strings.Contains(strings.ToLower(p.Description), term)
}

func matchesRegion(p *Producer, region string) bool {
	return region == "" || p.Region == region
}

func matchesCategory(p *Producer, category string) bool {
	if category == "" {
		return true
	}
	for _, c := range p.Categories {
		if c == category {
			return true
		}
	}
	return false
}
