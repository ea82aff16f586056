package layers

import (
	"fmt"

	"github.com/aretw0/isoscene/pkg/domain"
)

// DefaultLayerName names the layer every store starts with.
const DefaultLayerName = "Default Layer"

// Layer is a named, orderable, visibility-toggleable container of object handles.
type Layer struct {
	ID      int               `json:"id"`
	Name    string            `json:"name"`
	Visible bool              `json:"visible"`
	Objects []domain.ObjectID `json:"objects"`
}

func (l *Layer) clone() Layer {
	out := *l
	out.Objects = append([]domain.ObjectID{}, l.Objects...)
	return out
}

func (l *Layer) indexOf(handle domain.ObjectID) int {
	for i, h := range l.Objects {
		if h == handle {
			return i
		}
	}
	return -1
}

// Store owns the ordered layers of one scene.
type Store struct {
	layers    []*Layer
	currentID int
	nextID    int
}

// NewStore creates a store holding the default layer (id 1) as current.
func NewStore() *Store {
	return &Store{
		layers:    []*Layer{{ID: 1, Name: DefaultLayerName, Visible: true, Objects: []domain.ObjectID{}}},
		currentID: 1,
		nextID:    2,
	}
}

func (s *Store) index(id int) int {
	for i, l := range s.layers {
		if l.ID == id {
			return i
		}
	}
	return -1
}

func (s *Store) find(id int) *Layer {
	if i := s.index(id); i >= 0 {
		return s.layers[i]
	}
	return nil
}

// AddLayer appends a new layer and makes it current. An empty name defaults to "Layer <id>".
func (s *Store) AddLayer(name string) Layer {
	id := s.nextID
	if name == "" {
		name = fmt.Sprintf("Layer %d", id)
	}
	l := &Layer{ID: id, Name: name, Visible: true, Objects: []domain.ObjectID{}}
	s.layers = append(s.layers, l)
	s.currentID = id
	s.nextID++
	return l.clone()
}

// RemoveLayer deletes a layer. It refuses to remove the last layer.
// When the current layer is removed, the first remaining layer becomes current.
// Objects of the removed layer are orphaned: no query reaches them afterwards.
func (s *Store) RemoveLayer(id int) bool {
	if len(s.layers) <= 1 {
		return false
	}
	i := s.index(id)
	if i < 0 {
		return false
	}
	s.layers = append(s.layers[:i], s.layers[i+1:]...)
	if s.currentID == id {
		s.currentID = s.layers[0].ID
	}
	return true
}

// RenameLayer changes the display name of a layer. Names need not be unique.
func (s *Store) RenameLayer(id int, name string) bool {
	l := s.find(id)
	if l == nil {
		return false
	}
	l.Name = name
	return true
}

// SetCurrentLayer selects the layer new objects are added to.
func (s *Store) SetCurrentLayer(id int) bool {
	if s.find(id) == nil {
		return false
	}
	s.currentID = id
	return true
}

// AddObjectToCurrentLayer appends handle to the current layer.
func (s *Store) AddObjectToCurrentLayer(handle domain.ObjectID) bool {
	l := s.find(s.currentID)
	if l == nil {
		return false
	}
	l.Objects = append(l.Objects, handle)
	return true
}

// RemoveObjectFromLayer removes the first occurrence of handle, searching layers in order.
func (s *Store) RemoveObjectFromLayer(handle domain.ObjectID) bool {
	for _, l := range s.layers {
		if i := l.indexOf(handle); i >= 0 {
			l.Objects = append(l.Objects[:i], l.Objects[i+1:]...)
			return true
		}
	}
	return false
}

// MoveObjectToLayer detaches handle from wherever it is and appends it to the target layer.
// An unknown target leaves the store untouched.
func (s *Store) MoveObjectToLayer(handle domain.ObjectID, targetID int) bool {
	target := s.find(targetID)
	if target == nil {
		return false
	}
	s.RemoveObjectFromLayer(handle)
	target.Objects = append(target.Objects, handle)
	return true
}

// ReorderLayers replaces the order with ids, which must be a permutation of the current ids.
func (s *Store) ReorderLayers(ids []int) bool {
	if len(ids) != len(s.layers) {
		return false
	}
	byID := make(map[int]*Layer, len(s.layers))
	for _, l := range s.layers {
		byID[l.ID] = l
	}
	reordered := make([]*Layer, 0, len(ids))
	seen := make(map[int]bool, len(ids))
	for _, id := range ids {
		l, ok := byID[id]
		if !ok || seen[id] {
			return false
		}
		seen[id] = true
		reordered = append(reordered, l)
	}
	s.layers = reordered
	return true
}

// MoveLayerUp swaps the layer with its predecessor.
func (s *Store) MoveLayerUp(id int) bool {
	i := s.index(id)
	if i <= 0 {
		return false
	}
	s.layers[i-1], s.layers[i] = s.layers[i], s.layers[i-1]
	return true
}

// MoveLayerDown swaps the layer with its successor.
func (s *Store) MoveLayerDown(id int) bool {
	i := s.index(id)
	if i < 0 || i >= len(s.layers)-1 {
		return false
	}
	s.layers[i], s.layers[i+1] = s.layers[i+1], s.layers[i]
	return true
}

// ToggleLayerVisibility flips the visible flag and returns the new value.
// ok is false when the layer does not exist.
func (s *Store) ToggleLayerVisibility(id int) (visible bool, ok bool) {
	l := s.find(id)
	if l == nil {
		return false, false
	}
	l.Visible = !l.Visible
	return l.Visible, true
}

// SetLayerVisibility sets the visible flag explicitly.
func (s *Store) SetLayerVisibility(id int, visible bool) bool {
	l := s.find(id)
	if l == nil {
		return false
	}
	l.Visible = visible
	return true
}

// AllObjects returns every handle in layer order, then insertion order.
func (s *Store) AllObjects() []domain.ObjectID {
	return s.collect(false)
}

// VisibleObjects returns the handles of visible layers in layer order, then insertion order.
func (s *Store) VisibleObjects() []domain.ObjectID {
	return s.collect(true)
}

func (s *Store) collect(onlyVisible bool) []domain.ObjectID {
	out := []domain.ObjectID{}
	for _, l := range s.layers {
		if onlyVisible && !l.Visible {
			continue
		}
		out = append(out, l.Objects...)
	}
	return out
}

// Layers returns a copy of the layers in order.
func (s *Store) Layers() []Layer {
	out := make([]Layer, len(s.layers))
	for i, l := range s.layers {
		out[i] = l.clone()
	}
	return out
}

// Layer returns a copy of one layer.
func (s *Store) Layer(id int) (Layer, bool) {
	l := s.find(id)
	if l == nil {
		return Layer{}, false
	}
	return l.clone(), true
}

// IDs returns the layer ids in order.
func (s *Store) IDs() []int {
	out := make([]int, len(s.layers))
	for i, l := range s.layers {
		out[i] = l.ID
	}
	return out
}

// Len returns the number of layers.
func (s *Store) Len() int { return len(s.layers) }

// CurrentLayerID returns the id of the current layer.
func (s *Store) CurrentLayerID() int { return s.currentID }

// NextLayerID returns the id the next AddLayer call will assign.
func (s *Store) NextLayerID() int { return s.nextID }

// LayerOf returns the id of the first layer holding handle.
func (s *Store) LayerOf(handle domain.ObjectID) (int, bool) {
	for _, l := range s.layers {
		if l.indexOf(handle) >= 0 {
			return l.ID, true
		}
	}
	return 0, false
}
