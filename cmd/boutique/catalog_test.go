package main

import (
	"testing"

	"goingmarry-api/internal/model"
)

func catalog() []model.Listing {
	return []model.Listing{
		{ID: "a", Name: "Silk Gown", Category: "Fashion", Price: 1500, CreatedAt: 3},
		{ID: "b", Name: "Brass Lamp", Category: "Home", Price: 300, CreatedAt: 1},
		{ID: "c", Name: "Pearl Veil", Category: "Fashion", Price: 500, CreatedAt: 2},
	}
}

func ids(items []model.Listing) []string {
	out := make([]string, len(items))
	for i, it := range items {
		out[i] = it.ID
	}
	return out
}

func equal(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func TestFilterByCategory(t *testing.T) {
	items := catalog()

	fashion := FilterByCategory(items, "Fashion")
	if !equal(ids(fashion), []string{"a", "c"}) {
		t.Errorf("Fashion filter = %v", ids(fashion))
	}

	all := FilterByCategory(items, "All")
	if len(all) != 3 {
		t.Errorf("'All' should keep everything, got %d", len(all))
	}

	none := FilterByCategory(items, "Electronics")
	if len(none) != 0 {
		t.Errorf("unknown category should match nothing, got %d", len(none))
	}

	// The input slice is never reordered or trimmed.
	if !equal(ids(items), []string{"a", "b", "c"}) {
		t.Error("filter must not mutate its input")
	}
}

func TestSortListings(t *testing.T) {
	items := catalog()

	newest := SortListings(items, SortNewest)
	if !equal(ids(newest), []string{"a", "c", "b"}) {
		t.Errorf("newest = %v", ids(newest))
	}

	cheap := SortListings(items, SortPriceLow)
	if !equal(ids(cheap), []string{"b", "c", "a"}) {
		t.Errorf("price-low = %v", ids(cheap))
	}

	dear := SortListings(items, SortPriceHigh)
	if !equal(ids(dear), []string{"a", "c", "b"}) {
		t.Errorf("price-high = %v", ids(dear))
	}

	// Unknown modes fall back to newest.
	fallback := SortListings(items, "bogus")
	if !equal(ids(fallback), []string{"a", "c", "b"}) {
		t.Errorf("fallback = %v", ids(fallback))
	}

	if !equal(ids(items), []string{"a", "b", "c"}) {
		t.Error("sort must not mutate its input")
	}
}

func TestSortIsStable(t *testing.T) {
	items := []model.Listing{
		{ID: "x", Price: 100, CreatedAt: 1},
		{ID: "y", Price: 100, CreatedAt: 2},
		{ID: "z", Price: 100, CreatedAt: 3},
	}

	sorted := SortListings(items, SortPriceLow)
	if !equal(ids(sorted), []string{"x", "y", "z"}) {
		t.Errorf("equal prices must keep relative order, got %v", ids(sorted))
	}
}

func TestCategories(t *testing.T) {
	got := Categories(catalog())
	if !equal(got, []string{"Fashion", "Home"}) {
		t.Errorf("Categories = %v", got)
	}
}

func TestRenderBold(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"plain text", "plain text"},
		{"**all bold**", "\x1b[1mall bold\x1b[0m"},
		{"hem taken up **2cm** total", "hem taken up \x1b[1m2cm\x1b[0m total"},
		{"dangling **marker", "dangling \x1b[1mmarker\x1b[0m"},
	}
	for _, tc := range cases {
		if got := renderBold(tc.in); got != tc.want {
			t.Errorf("renderBold(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}
