package usecase

import (
	"testing"
)

func TestKeywordCatalog(t *testing.T) {
	catalog := NewKeywordCatalog()

	t.Run("has twelve categories in declaration order", func(t *testing.T) {
		categories := catalog.Categories()
		if len(categories) != 12 {
			t.Fatalf("Categories() = %d entries, want 12", len(categories))
		}
		if categories[0] != CategoryCertification {
			t.Errorf("first category = %s, want %s", categories[0], CategoryCertification)
		}
		if categories[len(categories)-1] != CategoryGeneral {
			t.Errorf("last category = %s, want %s", categories[len(categories)-1], CategoryGeneral)
		}
	})

	t.Run("certification keywords include core regulators", func(t *testing.T) {
		keywords := catalog.Keywords(CategoryCertification)
		want := []string{"FDA", "NMPA", "certification"}
		for _, w := range want {
			found := false
			for _, kw := range keywords {
				if kw == w {
					found = true
					break
				}
			}
			if !found {
				t.Errorf("certification keywords missing %q", w)
			}
		}
	})

	t.Run("product function keywords include the monitored device family", func(t *testing.T) {
		keywords := catalog.Keywords(CategoryProductFunction)
		want := []string{"Skin Analysis", "Skin Analyzer", "3D skin imaging system", "3D imaging"}
		for _, w := range want {
			found := false
			for _, kw := range keywords {
				if kw == w {
					found = true
					break
				}
			}
			if !found {
				t.Errorf("product_function keywords missing %q", w)
			}
		}
	})

	t.Run("all category is the concatenation of every list", func(t *testing.T) {
		all := catalog.Keywords(CategoryAll)
		sum := 0
		for _, count := range catalog.Counts() {
			sum += count
		}
		if len(all) != sum {
			t.Errorf("len(all) = %d, want %d", len(all), sum)
		}
	})

	t.Run("unknown category yields nil", func(t *testing.T) {
		if got := catalog.Keywords("nonexistent"); got != nil {
			t.Errorf("Keywords(nonexistent) = %v, want nil", got)
		}
	})

	t.Run("returned slices are copies", func(t *testing.T) {
		first := catalog.Keywords(CategoryRecall)
		first[0] = "mutated"
		second := catalog.Keywords(CategoryRecall)
		if second[0] == "mutated" {
			t.Error("mutating a returned slice must not affect the catalog")
		}
	})

	t.Run("counts cover every category", func(t *testing.T) {
		counts := catalog.Counts()
		if len(counts) != 12 {
			t.Errorf("Counts() = %d entries, want 12", len(counts))
		}
		for category, count := range counts {
			if count == 0 {
				t.Errorf("category %s has zero keywords", category)
			}
		}
	})
}

func TestKeywordCatalogSearch(t *testing.T) {
	catalog := NewKeywordCatalog()

	t.Run("search is case-insensitive", func(t *testing.T) {
		lower := catalog.Search("fda")
		upper := catalog.Search("FDA")
		if len(lower) == 0 {
			t.Fatal("expected hits for 'fda'")
		}
		if len(lower) != len(upper) {
			t.Errorf("case-insensitive search mismatch: %d vs %d", len(lower), len(upper))
		}
	})

	t.Run("empty term yields nothing", func(t *testing.T) {
		if got := catalog.Search("   "); got != nil {
			t.Errorf("Search(blank) = %v, want nil", got)
		}
	})

	t.Run("no hits yields empty result", func(t *testing.T) {
		if got := catalog.Search("zzzzzz"); len(got) != 0 {
			t.Errorf("Search(zzzzzz) = %v, want empty", got)
		}
	})
}

func TestContainsHighRiskKeywords(t *testing.T) {
	catalog := NewKeywordCatalog()

	tests := []struct {
		name     string
		keywords []string
		want     bool
	}{
		{"recall is high risk", []string{"medical device recall"}, true},
		{"death is high risk", []string{"serious injury or death"}, true},
		{"case does not matter", []string{"RECALL"}, true},
		{"benign keywords", []string{"certification", "standard"}, false},
		{"empty set", nil, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := catalog.ContainsHighRiskKeywords(tt.keywords); got != tt.want {
				t.Errorf("ContainsHighRiskKeywords(%v) = %v, want %v", tt.keywords, got, tt.want)
			}
		})
	}
}
