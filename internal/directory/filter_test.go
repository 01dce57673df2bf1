package directory

import (
	"testing"

	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleProducers() []*Producer {
	return []*Producer{
		{
			CompanyName: "Ferme A",
			Region:      "Bretagne",
			Categories:  pq.StringArray{"Fruits et Légumes"},
			Products:    pq.StringArray{"Pommes", "Cidre doux"},
			Description: "Vergers en agriculture biologique",
		},
		{
			CompanyName: "Ferme B",
			Region:      "Île-de-France",
			Categories:  pq.StringArray{"Boissons"},
			Products:    pq.StringArray{"Jus de pomme"},
			Description: "Pressage artisanal",
		},
		{
			CompanyName: "Brasserie du Port",
			Region:      "Bretagne",
			Categories:  pq.StringArray{"Boissons", "Épicerie Fine"},
			Products:    pq.StringArray{"Bière blonde"},
			Description: "Brasserie familiale",
		},
	}
}

func names(producers []*Producer) []string {
	out := make([]string, 0, len(producers))
	for _, p := range producers {
		out = append(out, p.CompanyName)
	}
	return out
}

func TestFilterScenario(t *testing.T) {
	producers := sampleProducers()[:2] // Ferme A + Ferme B

	assert.Equal(t, []string{"Ferme A"}, names(Filter{Region: "Bretagne"}.Apply(producers)))
	assert.Equal(t, []string{"Ferme B"}, names(Filter{Category: "Boissons"}.Apply(producers)))
	assert.Equal(t, []string{"Ferme A", "Ferme B"}, names(Filter{Search: "Ferme"}.Apply(producers)))
}

func TestFilterEmptyPassesEverything(t *testing.T) {
	producers := sampleProducers()
	got := Filter{}.Apply(producers)
	require.Len(t, got, len(producers))
}

func TestFilterSearchFields(t *testing.T) {
	producers := sampleProducers()

	tests := []struct {
		name   string
		search string
		want   []string
	}{
		{"company name match", "brasserie du port", []string{"Brasserie du Port"}},
		{"product match", "cidre", []string{"Ferme A"}},
		{"description match", "artisanal", []string{"Ferme B"}},
		{"case insensitive", "FERME", []string{"Ferme A", "Ferme B"}},
		{"description and company", "brasserie", []string{"Brasserie du Port"}},
		{"no match", "fromage", []string{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := names(Filter{Search: tt.search}.Apply(producers))
			assert.Equal(t, tt.want, got)
		})
	}
}

// Filtering must be order-independent: applying the predicates one at a time
// in any permutation equals direct triple-predicate evaluation.
func TestFilterPredicatesCommute(t *testing.T) {
	producers := sampleProducers()
	search, region, category := "b", "Bretagne", "Boissons"

	direct := Filter{Search: search, Region: region, Category: category}.Apply(producers)

	permutations := [][]Filter{
		{{Search: search}, {Region: region}, {Category: category}},
		{{Search: search}, {Category: category}, {Region: region}},
		{{Region: region}, {Search: search}, {Category: category}},
		{{Region: region}, {Category: category}, {Search: search}},
		{{Category: category}, {Search: search}, {Region: region}},
		{{Category: category}, {Region: region}, {Search: search}},
	}

	for _, perm := range permutations {
		got := producers
		for _, f := range perm {
			got = f.Apply(got)
		}
		assert.Equal(t, names(direct), names(got))
	}
}

func TestFilterDoesNotMutateInput(t *testing.T) {
	producers := sampleProducers()
	before := names(producers)

	Filter{Region: "Bretagne"}.Apply(producers)

	assert.Equal(t, before, names(producers))
}

func TestFilterCategoryMembership(t *testing.T) {
	producers := sampleProducers()

	got := names(Filter{Category: "Boissons"}.Apply(producers))
	assert.Equal(t, []string{"Ferme B", "Brasserie du Port"}, got)

	got = names(Filter{Category: "Épicerie Fine"}.Apply(producers))
	assert.Equal(t, []string{"Brasserie du Port"}, got)
}
