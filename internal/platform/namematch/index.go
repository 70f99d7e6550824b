package namematch

import (
	"sort"
	"strings"

	"github.com/lithammer/fuzzysearch/fuzzy"
)

// Index maps normalized player names to canonical player IDs. Feed rows
// carry free-text names, so lookups fold case and whitespace before
// matching, and fuzzy suggestions cover the rest.
type Index struct {
	byName map[string]string
	names  []string
	labels map[string]string
}

func NewIndex() *Index {
	return &Index{
		byName: make(map[string]string),
		labels: make(map[string]string),
	}
}

// Add registers a display name for a player ID. Later additions of the
// same normalized name win, so alternate names can override stale entries.
func (ix *Index) Add(playerID, name string) {
	key := Normalize(name)
	if key == "" || playerID == "" {
		return
	}
	if _, exists := ix.byName[key]; !exists {
		ix.names = append(ix.names, key)
	}
	ix.byName[key] = playerID
	ix.labels[key] = strings.TrimSpace(name)
}

// Lookup resolves a free-text name to a player ID.
func (ix *Index) Lookup(name string) (string, bool) {
	id, ok := ix.byName[Normalize(name)]
	return id, ok
}

// Suggestion is a candidate match for a name the index could not resolve.
type Suggestion struct {
	PlayerID string
	Name     string
	Distance int
}

// Suggest returns up to limit fuzzy candidates for an unresolved name,
// closest first. An exact hit returns that single candidate.
func (ix *Index) Suggest(name string, limit int) []Suggestion {
	key := Normalize(name)
	if key == "" || limit <= 0 {
		return nil
	}
	if id, ok := ix.byName[key]; ok {
		return []Suggestion{{PlayerID: id, Name: ix.labels[key], Distance: 0}}
	}

	ranks := fuzzy.RankFindNormalizedFold(key, ix.names)
	sort.Sort(ranks)

	out := make([]Suggestion, 0, limit)
	for _, r := range ranks {
		out = append(out, Suggestion{
			PlayerID: ix.byName[r.Target],
			Name:     ix.labels[r.Target],
			Distance: r.Distance,
		})
		if len(out) == limit {
			break
		}
	}
	return out
}

func (ix *Index) Len() int {
	return len(ix.byName)
}

// Normalize folds case and collapses interior whitespace so "V  Kohli "
// and "v kohli" resolve to the same key.
func Normalize(name string) string {
	return strings.Join(strings.Fields(strings.ToLower(name)), " ")
}
