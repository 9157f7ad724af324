// Package reconcile rebuilds the displayed entity list from a fresh snapshot
// and revalidates the current selection against it.
//
// Reconciliation is total and unconditional: the list is recomputed from
// scratch every time and never patched against the previous one.
package reconcile

import (
	"strings"

	"github.com/daviddao/scene_viewer/internal/scene"
)

// Result is the outcome of one reconciliation.
type Result struct {
	// Entries are the identifiers matching the filter, in snapshot order.
	Entries []string
	// Selection is the surviving selection, or "" when none.
	Selection string
	// Dropped counts entities skipped for a missing or repeated identifier.
	Dropped int
}

// Matches reports whether id contains filter, ignoring case. An empty
// filter matches everything.
func Matches(id, filter string) bool {
	if filter == "" {
		return true
	}
	return strings.Contains(strings.ToLower(id), strings.ToLower(filter))
}

// Reconcile computes the display entries for entities under filter and keeps
// selection only if that identifier is still present. A selected entity that
// the filter hides keeps its selection; only its list visibility changes.
func Reconcile(selection, filter string, entities []scene.Entity) Result {
	res := Result{Entries: make([]string, 0, len(entities))}
	seen := make(map[string]struct{}, len(entities))
	found := false
	for _, e := range entities {
		if e.ID == "" {
			res.Dropped++
			continue
		}
		if _, dup := seen[e.ID]; dup {
			res.Dropped++
			continue
		}
		seen[e.ID] = struct{}{}
		if e.ID == selection {
			found = true
		}
		if Matches(e.ID, filter) {
			res.Entries = append(res.Entries, e.ID)
		}
	}
	if selection != "" && found {
		res.Selection = selection
	}
	return res
}
