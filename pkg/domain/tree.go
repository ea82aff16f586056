package domain

import (
	"fmt"
	"slices"
)

// DefaultMaxHistorySize bounds the undo log when the tree carries no explicit size.
const DefaultMaxHistorySize = 50

// Tree is the single source of truth for everything the editor displays or persists.
// The json names of the sections and their fields are the segments of state paths
// such as "scene.currentCameraAngle".
type Tree struct {
	Scene       SceneSection       `json:"scene"`
	Objects     ObjectsSection     `json:"objects"`
	Layers      LayersSection      `json:"layers"`
	UI          UISection          `json:"ui"`
	Tools       ToolsSection       `json:"tools"`
	Preferences PreferencesSection `json:"preferences"`
	Session     SessionSection     `json:"session"`
	RecentFiles RecentFilesSection `json:"recentFiles"`
	History     HistorySection     `json:"history"`
	Performance PerformanceSection `json:"performance"`
}

// SceneSection holds camera and environment settings.
type SceneSection struct {
	CurrentCameraAngle float64 `json:"currentCameraAngle"`
	Zoom               float64 `json:"zoom"`
	GridVisible        bool    `json:"gridVisible"`
	GridSize           float64 `json:"gridSize"`
	BackgroundColor    string  `json:"backgroundColor"`
	BackgroundTheme    string  `json:"backgroundTheme"`
	BackgroundImage    string  `json:"backgroundImage"`
	FogEnabled         bool    `json:"fogEnabled"`
	FogColor           string  `json:"fogColor"`
	FogNear            float64 `json:"fogNear"`
	FogFar             float64 `json:"fogFar"`
}

// ObjectsSection tracks selection and object bookkeeping.
type ObjectsSection struct {
	// SelectedObjectID is 0 when nothing is selected.
	SelectedObjectID ObjectID `json:"selectedObjectId"`
	ObjectCount      int      `json:"objectCount"`
	NextObjectID     ObjectID `json:"nextObjectId"`
	DefaultType      Kind     `json:"defaultType"`
	DefaultColor     string   `json:"defaultColor"`
}

// LayersSection mirrors the layer store for display.
type LayersSection struct {
	CurrentLayerID int `json:"currentLayerId"`
	LayerCount     int `json:"layerCount"`
}

// UISection holds panel and theme flags.
type UISection struct {
	Theme               string `json:"theme"`
	LayersPanelOpen     bool   `json:"layersPanelOpen"`
	PropertiesPanelOpen bool   `json:"propertiesPanelOpen"`
	BackgroundPanelOpen bool   `json:"backgroundPanelOpen"`
	HelpVisible         bool   `json:"helpVisible"`
	SidebarWidth        int    `json:"sidebarWidth"`
}

// ToolsSection holds the active tool and its increments.
type ToolsSection struct {
	ActiveTool    string  `json:"activeTool"`
	SnapToGrid    bool    `json:"snapToGrid"`
	SnapIncrement float64 `json:"snapIncrement"`
	RotationStep  float64 `json:"rotationStep"`
	ScaleStep     float64 `json:"scaleStep"`
}

// PreferencesSection holds user preferences.
type PreferencesSection struct {
	AutoSave      bool              `json:"autoSave"`
	ConfirmDelete bool              `json:"confirmDelete"`
	ShowStats     bool              `json:"showStats"`
	Language      string            `json:"language"`
	Shortcuts     map[string]string `json:"shortcuts"`
}

// SessionSection identifies the editing session.
type SessionSection struct {
	ID string `json:"id"`
	// StartTime is in unix milliseconds.
	StartTime   int64 `json:"startTime"`
	ActionCount int   `json:"actionCount"`
}

// RecentFilesSection lists recently saved or opened scene documents, newest first.
type RecentFilesSection struct {
	Files    []string `json:"files"`
	MaxFiles int      `json:"maxFiles"`
}

// Push moves name to the front of the list, dropping older entries beyond MaxFiles.
func (r *RecentFilesSection) Push(name string) {
	files := slices.DeleteFunc(slices.Clone(r.Files), func(f string) bool { return f == name })
	files = append([]string{name}, files...)
	if r.MaxFiles > 0 && len(files) > r.MaxFiles {
		files = files[:r.MaxFiles]
	}
	r.Files = files
}

// HistorySection is the bounded undo/redo log.
type HistorySection struct {
	UndoStack      []Action `json:"undoStack"`
	RedoStack      []Action `json:"redoStack"`
	MaxHistorySize int      `json:"maxHistorySize"`
}

// Validate checks every entry of both logs.
func (h HistorySection) Validate() error {
	for i, a := range h.UndoStack {
		if err := a.Validate(); err != nil {
			return fmt.Errorf("undoStack[%d]: %w", i, err)
		}
	}
	for i, a := range h.RedoStack {
		if err := a.Validate(); err != nil {
			return fmt.Errorf("redoStack[%d]: %w", i, err)
		}
	}
	return nil
}

// PerformanceSection holds render statistics.
type PerformanceSection struct {
	FPS        float64 `json:"fps"`
	FrameCount int64   `json:"frameCount"`
	// LastFrameTime is in unix milliseconds.
	LastFrameTime int64   `json:"lastFrameTime"`
	RenderTimeMs  float64 `json:"renderTimeMs"`
}

// DefaultTree returns the hardcoded tree used when no snapshot can be loaded.
func DefaultTree() Tree {
	return Tree{
		Scene: SceneSection{
			CurrentCameraAngle: 0,
			Zoom:               1,
			GridVisible:        true,
			GridSize:           1,
			BackgroundColor:    "#f0f0f0",
			BackgroundTheme:    "default",
			FogEnabled:         false,
			FogColor:           "#f0f0f0",
			FogNear:            10,
			FogFar:             50,
		},
		Objects: ObjectsSection{
			NextObjectID: 1,
			DefaultType:  KindCube,
			DefaultColor: "#4a90d9",
		},
		Layers: LayersSection{
			CurrentLayerID: 1,
			LayerCount:     1,
		},
		UI: UISection{
			Theme:               "light",
			LayersPanelOpen:     true,
			PropertiesPanelOpen: true,
			SidebarWidth:        280,
		},
		Tools: ToolsSection{
			ActiveTool:    "select",
			SnapToGrid:    true,
			SnapIncrement: 1,
			RotationStep:  90,
			ScaleStep:     0.1,
		},
		Preferences: PreferencesSection{
			AutoSave:      true,
			ConfirmDelete: true,
			Language:      "en",
			Shortcuts: map[string]string{
				"undo":   "ctrl+z",
				"redo":   "ctrl+y",
				"delete": "delete",
			},
		},
		RecentFiles: RecentFilesSection{
			Files:    []string{},
			MaxFiles: 10,
		},
		History: HistorySection{
			UndoStack:      []Action{},
			RedoStack:      []Action{},
			MaxHistorySize: DefaultMaxHistorySize,
		},
	}
}

// Clone returns a deep copy of t.
func (t Tree) Clone() Tree {
	out := t
	if t.Preferences.Shortcuts != nil {
		out.Preferences.Shortcuts = make(map[string]string, len(t.Preferences.Shortcuts))
		for k, v := range t.Preferences.Shortcuts {
			out.Preferences.Shortcuts[k] = v
		}
	}
	if t.RecentFiles.Files != nil {
		out.RecentFiles.Files = append([]string{}, t.RecentFiles.Files...)
	}
	out.History.UndoStack = cloneActions(t.History.UndoStack)
	out.History.RedoStack = cloneActions(t.History.RedoStack)
	return out
}

// Normalize rewrites values that JSON does not tell apart, so the tree equals what a
// reload of its persisted form yields. Empty action details are omitted on encode and
// come back nil.
func (t *Tree) Normalize() {
	for _, stack := range [][]Action{t.History.UndoStack, t.History.RedoStack} {
		for i := range stack {
			if len(stack[i].Details) == 0 {
				stack[i].Details = nil
			}
		}
	}
}
