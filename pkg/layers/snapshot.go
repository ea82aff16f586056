package layers

import (
	"fmt"

	"github.com/aretw0/isoscene/pkg/domain"
)

// Snapshot is the serializable form of a Store, used by scene documents.
type Snapshot struct {
	Layers         []Layer `json:"layers"`
	CurrentLayerID int     `json:"currentLayerId"`
	NextLayerID    int     `json:"nextLayerId"`
}

// Export captures the store.
func (s *Store) Export() Snapshot {
	return Snapshot{
		Layers:         s.Layers(),
		CurrentLayerID: s.currentID,
		NextLayerID:    s.nextID,
	}
}

// Restore replaces the store contents with snap after validating it.
// On error the store is unchanged.
func (s *Store) Restore(snap Snapshot) error {
	if len(snap.Layers) == 0 {
		return fmt.Errorf("%w: at least one layer is required", domain.ErrInvalidSnapshot)
	}
	seen := make(map[int]bool, len(snap.Layers))
	maxID := 0
	current := false
	restored := make([]*Layer, 0, len(snap.Layers))
	for _, l := range snap.Layers {
		if l.ID <= 0 {
			return fmt.Errorf("%w: layer id %d is not positive", domain.ErrInvalidSnapshot, l.ID)
		}
		if seen[l.ID] {
			return fmt.Errorf("%w: duplicate layer id %d", domain.ErrInvalidSnapshot, l.ID)
		}
		seen[l.ID] = true
		if l.ID > maxID {
			maxID = l.ID
		}
		if l.ID == snap.CurrentLayerID {
			current = true
		}
		cp := l.clone()
		restored = append(restored, &cp)
	}
	if !current {
		return fmt.Errorf("%w: current layer %d does not exist", domain.ErrInvalidSnapshot, snap.CurrentLayerID)
	}
	next := snap.NextLayerID
	if next <= maxID {
		next = maxID + 1
	}

	s.layers = restored
	s.currentID = snap.CurrentLayerID
	s.nextID = next
	return nil
}

// ReserveIDs raises the id counter to at least next so ids below it are never handed out.
func (s *Store) ReserveIDs(next int) {
	if next > s.nextID {
		s.nextID = next
	}
}
