package player

import (
	"path"
	"sort"
	"strings"

	"github.com/lithammer/fuzzysearch/fuzzy"
)

// Resolver reconciles the file a player reports with the caller's playlist.
// Players report absolute, relative, escaped or title-only names, so identity is a heuristic.
type Resolver interface {
	// Same reports whether two reported names refer to the same file.
	Same(a, b string) bool

	// Resolve returns the playlist index of the reported file.
	Resolve(reported string, playlist []string) (int, bool)
}

// NewResolver returns the resolver registered under name, defaulting to containment.
func NewResolver(name string) Resolver {
	if name == "fuzzy" {
		return FuzzyResolver{}
	}
	return ContainsResolver{}
}

// ContainsResolver matches names by substring containment in either direction.
type ContainsResolver struct{}

func (ContainsResolver) Same(a, b string) bool {
	return contains(a, b)
}

func (ContainsResolver) Resolve(reported string, playlist []string) (int, bool) {
	if reported == "" {
		return -1, false
	}
	for i, file := range playlist {
		if contains(reported, file) {
			return i, true
		}
	}
	return -1, false
}

// FuzzyResolver falls back to ranked fuzzy matching on base names when containment fails.
// Useful with players that report a media title instead of a path.
type FuzzyResolver struct{}

func (FuzzyResolver) Same(a, b string) bool {
	if contains(a, b) {
		return true
	}
	return a != "" && b != "" && strings.EqualFold(stem(a), stem(b))
}

func (FuzzyResolver) Resolve(reported string, playlist []string) (int, bool) {
	if i, ok := (ContainsResolver{}).Resolve(reported, playlist); ok {
		return i, true
	}
	if reported == "" {
		return -1, false
	}

	stems := make([]string, len(playlist))
	for i, file := range playlist {
		stems[i] = stem(file)
	}

	ranks := fuzzy.RankFindNormalizedFold(stem(reported), stems)
	if len(ranks) == 0 {
		return -1, false
	}
	sort.Sort(ranks)
	return ranks[0].OriginalIndex, true
}

func contains(a, b string) bool {
	if a == "" || b == "" {
		return false
	}
	return strings.Contains(a, b) || strings.Contains(b, a)
}

// stem strips directories and extension, treating both separators alike.
func stem(name string) string {
	base := path.Base(strings.ReplaceAll(name, "\\", "/"))
	return strings.TrimSuffix(base, path.Ext(base))
}
