package domain

import (
	"reflect"
)

// TreeDiff represents the changes between two trees.
// It is designed to be serialized to JSON for partial updates on the client.
type TreeDiff struct {
	// Sections maps each changed section name to its new value.
	Sections map[string]any `json:"sections,omitempty"`

	// History is set when the undo/redo log changed shape.
	History *HistoryDelta `json:"history,omitempty"`
}

// HistoryDelta summarises the undo/redo log after a change.
type HistoryDelta struct {
	UndoDepth int `json:"undoDepth"`
	RedoDepth int `json:"redoDepth"`
	// Last is the newest undo entry, if any.
	Last *Action `json:"last,omitempty"`
}

// SectionNames lists the top-level sections in declaration order.
var SectionNames = []string{
	"scene", "objects", "layers", "ui", "tools",
	"preferences", "session", "recentFiles", "history", "performance",
}

// Sections returns the named sections of t keyed by their json names.
func (t *Tree) Sections() map[string]any {
	return map[string]any{
		"scene":       t.Scene,
		"objects":     t.Objects,
		"layers":      t.Layers,
		"ui":          t.UI,
		"tools":       t.Tools,
		"preferences": t.Preferences,
		"session":     t.Session,
		"recentFiles": t.RecentFiles,
		"history":     t.History,
		"performance": t.Performance,
	}
}

// Diff calculates the difference between oldTree and newTree.
// If oldTree is nil, every section of newTree is reported (initial load).
// It returns nil when nothing changed.
func Diff(oldTree, newTree *Tree) *TreeDiff {
	if newTree == nil {
		return nil
	}

	diff := &TreeDiff{Sections: make(map[string]any)}
	newSections := newTree.Sections()

	var oldSections map[string]any
	if oldTree != nil {
		oldSections = oldTree.Sections()
	}

	for _, name := range SectionNames {
		if name == "history" {
			continue
		}
		if oldSections == nil || !reflect.DeepEqual(oldSections[name], newSections[name]) {
			diff.Sections[name] = newSections[name]
		}
	}

	if oldTree == nil || !reflect.DeepEqual(oldTree.History, newTree.History) {
		diff.History = historyDelta(newTree.History)
	}

	if len(diff.Sections) == 0 && diff.History == nil {
		return nil
	}
	if len(diff.Sections) == 0 {
		diff.Sections = nil
	}
	return diff
}

func historyDelta(h HistorySection) *HistoryDelta {
	delta := &HistoryDelta{
		UndoDepth: len(h.UndoStack),
		RedoDepth: len(h.RedoStack),
	}
	if n := len(h.UndoStack); n > 0 {
		last := h.UndoStack[n-1].Clone()
		delta.Last = &last
	}
	return delta
}

// IsEmpty checks if the diff contains any actionable changes.
func (d *TreeDiff) IsEmpty() bool {
	return d == nil || (len(d.Sections) == 0 && d.History == nil)
}

// Touches reports whether the diff includes the named section.
func (d *TreeDiff) Touches(section string) bool {
	if d == nil {
		return false
	}
	if section == "history" {
		return d.History != nil
	}
	_, ok := d.Sections[section]
	return ok
}
