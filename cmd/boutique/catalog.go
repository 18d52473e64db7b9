package main

import (
	"sort"
	"strings"

	"goingmarry-api/internal/model"
)

// Sort modes for the catalog view.
const (
	SortNewest    = "newest"
	SortPriceLow  = "price-low"
	SortPriceHigh = "price-high"
)

// FilterByCategory returns the listings matching the category, or all
// listings when the category is empty or "All". The input is not modified.
func FilterByCategory(items []model.Listing, category string) []model.Listing {
	if category == "" || category == "All" {
		out := make([]model.Listing, len(items))
		copy(out, items)
		return out
	}

	out := make([]model.Listing, 0, len(items))
	for _, it := range items {
		if it.Category == category {
			out = append(out, it)
		}
	}
	return out
}

// SortListings orders a copy of the listings by the given mode. Unknown
// modes fall back to newest-first. Ties keep their relative order.
func SortListings(items []model.Listing, mode string) []model.Listing {
	out := make([]model.Listing, len(items))
	copy(out, items)

	switch mode {
	case SortPriceLow:
		sort.SliceStable(out, func(i, j int) bool { return out[i].Price < out[j].Price })
	case SortPriceHigh:
		sort.SliceStable(out, func(i, j int) bool { return out[i].Price > out[j].Price })
	default: // newest
		sort.SliceStable(out, func(i, j int) bool { return out[i].CreatedAt > out[j].CreatedAt })
	}
	return out
}

// Categories returns the distinct categories present, in first-seen order.
func Categories(items []model.Listing) []string {
	seen := make(map[string]bool)
	var out []string
	for _, it := range items {
		if it.Category != "" && !seen[it.Category] {
			seen[it.Category] = true
			out = append(out, it.Category)
		}
	}
	return out
}

// renderBold maps the **text** note convention onto terminal bold. An
// unpaired trailing marker just ends the bold run.
func renderBold(s string) string {
	var b strings.Builder
	open := false
	for {
		i := strings.Index(s, "**")
		if i < 0 {
			break
		}
		b.WriteString(s[:i])
		if open {
			b.WriteString("\x1b[0m")
		} else {
			b.WriteString("\x1b[1m")
		}
		open = !open
		s = s[i+2:]
	}
	b.WriteString(s)
	if open {
		b.WriteString("\x1b[0m")
	}
	return b.String()
}
