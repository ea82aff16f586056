package editor

import (
	"context"
	"encoding/json"
	"fmt"
	"slices"
	"strings"

	"github.com/aretw0/isoscene/pkg/domain"
	"github.com/aretw0/isoscene/pkg/layers"
	"github.com/aretw0/isoscene/pkg/scene"
)

// DocumentVersion is the format version written into scene documents.
const DocumentVersion = 1

// Document is a saved scene: layers, objects and the scene settings.
type Document struct {
	Version int    `json:"version"`
	Name    string `json:"name,omitempty"`
	// SavedAt is in unix milliseconds.
	SavedAt int64                `json:"savedAt"`
	Layers  layers.Snapshot      `json:"layers"`
	Objects []domain.Object      `json:"objects"`
	Scene   *domain.SceneSection `json:"scene,omitempty"`
}

func (e *Editor) autosaveKey() string {
	return e.key + ":autosave"
}

func (e *Editor) scenePrefix() string {
	return e.key + ":scene:"
}

// Document captures the current scene.
func (e *Editor) Document() Document {
	sc := e.state.Scene()
	return Document{
		Version: DocumentVersion,
		SavedAt: e.now().UnixMilli(),
		Layers:  e.layers.Export(),
		Objects: e.objects.All(),
		Scene:   &sc,
	}
}

// LoadDocument replaces the scene with doc. The history log is emptied since its entries
// refer to the previous scene. On error nothing changes.
func (e *Editor) LoadDocument(ctx context.Context, doc Document) error {
	return e.load(ctx, doc, "")
}

func (e *Editor) load(ctx context.Context, doc Document, recent string) error {
	if err := e.apply(doc); err != nil {
		return err
	}
	return e.commit(ctx, "document:load", func(t *domain.Tree) error {
		if doc.Scene != nil {
			t.Scene = *doc.Scene
		}
		if next := e.objects.MaxID() + 1; t.Objects.NextObjectID < next {
			t.Objects.NextObjectID = next
		}
		t.Objects.SelectedObjectID = 0
		t.History.UndoStack = []domain.Action{}
		t.History.RedoStack = []domain.Action{}
		if recent != "" {
			t.RecentFiles.Push(recent)
		}
		return nil
	})
}

// apply validates doc and swaps it into the layer store and object table.
func (e *Editor) apply(doc Document) error {
	if doc.Version > DocumentVersion {
		return fmt.Errorf("%w: document version %d is newer than %d", domain.ErrInvalidSnapshot, doc.Version, DocumentVersion)
	}
	store := layers.NewStore()
	if err := store.Restore(doc.Layers); err != nil {
		return err
	}
	// Ids handed out earlier in this session stay retired.
	store.ReserveIDs(e.layers.NextLayerID())
	table := scene.NewTable()
	if err := table.Restore(doc.Objects); err != nil {
		return err
	}

	placed := store.AllObjects()
	for _, id := range placed {
		if _, ok := table.Get(id); !ok {
			return fmt.Errorf("%w: layer refers to missing object %d", domain.ErrInvalidSnapshot, id)
		}
	}
	if len(placed) != table.Len() {
		return fmt.Errorf("%w: %d objects but %d layer entries", domain.ErrInvalidSnapshot, table.Len(), len(placed))
	}

	e.layers = store
	e.objects = table
	return nil
}

// SaveScene stores the current scene under name and adds it to the recent files.
func (e *Editor) SaveScene(ctx context.Context, name string) error {
	name, err := sceneName(name)
	if err != nil {
		return err
	}
	doc := e.Document()
	doc.Name = name
	if err := e.writeDocument(ctx, e.scenePrefix()+name, doc); err != nil {
		return err
	}
	e.state.AddRecentFile(ctx, name)
	return nil
}

// OpenScene loads the scene saved under name.
func (e *Editor) OpenScene(ctx context.Context, name string) error {
	name, err := sceneName(name)
	if err != nil {
		return err
	}
	doc, err := e.readDocument(ctx, e.scenePrefix()+name)
	if err != nil {
		return err
	}
	return e.load(ctx, doc, name)
}

// DeleteScene removes a saved scene.
func (e *Editor) DeleteScene(ctx context.Context, name string) error {
	name, err := sceneName(name)
	if err != nil {
		return err
	}
	return e.store.Delete(ctx, e.scenePrefix()+name)
}

// ListScenes returns the names of saved scenes, sorted.
func (e *Editor) ListScenes(ctx context.Context) ([]string, error) {
	keys, err := e.store.List(ctx)
	if err != nil {
		return nil, err
	}
	prefix := e.scenePrefix()
	var names []string
	for _, k := range keys {
		if name, ok := strings.CutPrefix(k, prefix); ok {
			names = append(names, name)
		}
	}
	slices.Sort(names)
	return names, nil
}

func sceneName(name string) (string, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return "", fmt.Errorf("%w: scene name is required", domain.ErrInvalidSnapshot)
	}
	return name, nil
}

func (e *Editor) writeDocument(ctx context.Context, key string, doc Document) error {
	data, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("encode scene: %w", err)
	}
	if err := e.store.Save(ctx, key, data); err != nil {
		return fmt.Errorf("save scene: %w", err)
	}
	return nil
}

func (e *Editor) readDocument(ctx context.Context, key string) (Document, error) {
	data, err := e.store.Load(ctx, key)
	if err != nil {
		return Document{}, err
	}
	var doc Document
	if err := json.Unmarshal(data, &doc); err != nil {
		return Document{}, fmt.Errorf("%w: %v", domain.ErrInvalidSnapshot, err)
	}
	return doc, nil
}

// autosave writes the scene when the autoSave preference is on. Failures are logged.
func (e *Editor) autosave(ctx context.Context) {
	if !e.state.Snapshot().Preferences.AutoSave {
		return
	}
	if err := e.writeDocument(ctx, e.autosaveKey(), e.Document()); err != nil {
		e.logger.Error("Autosave failed", "err", err)
	}
}
