package scene

import (
	"fmt"
	"math"
	"slices"

	"github.com/aretw0/isoscene/pkg/domain"
)

// Scale bounds applied by ScaleBy.
const (
	MinScale = 0.1
	MaxScale = 10.0
)

// Table owns every object in the scene, keyed by id.
// Not safe for concurrent use.
type Table struct {
	objects map[domain.ObjectID]*domain.Object
}

// NewTable returns an empty table.
func NewTable() *Table {
	return &Table{objects: make(map[domain.ObjectID]*domain.Object)}
}

// Add places a new object of kind at pos. The id is allocated by the caller and must be unused.
func (t *Table) Add(id domain.ObjectID, kind domain.Kind, pos domain.Vec3, color string) (domain.Object, error) {
	if !kind.Valid() {
		return domain.Object{}, fmt.Errorf("%w: %q", domain.ErrUnknownKind, kind)
	}
	if id <= 0 {
		return domain.Object{}, fmt.Errorf("%w: object id must be positive, got %d", domain.ErrInvalidSnapshot, id)
	}
	if _, exists := t.objects[id]; exists {
		return domain.Object{}, fmt.Errorf("%w: object %d already exists", domain.ErrInvalidSnapshot, id)
	}
	obj := &domain.Object{
		ID:       id,
		Kind:     kind,
		Position: pos,
		Scale:    1,
		Color:    color,
		Visible:  true,
	}
	t.objects[id] = obj
	return *obj, nil
}

// Get returns a copy of the object with id.
func (t *Table) Get(id domain.ObjectID) (domain.Object, bool) {
	obj, ok := t.objects[id]
	if !ok {
		return domain.Object{}, false
	}
	return *obj, true
}

// Remove deletes the object with id.
func (t *Table) Remove(id domain.ObjectID) bool {
	if _, ok := t.objects[id]; !ok {
		return false
	}
	delete(t.objects, id)
	return true
}

func (t *Table) update(id domain.ObjectID, fn func(o *domain.Object)) (domain.Object, error) {
	obj, ok := t.objects[id]
	if !ok {
		return domain.Object{}, fmt.Errorf("%w: %d", domain.ErrObjectNotFound, id)
	}
	fn(obj)
	return *obj, nil
}

// Move translates the object by delta.
func (t *Table) Move(id domain.ObjectID, delta domain.Vec3) (domain.Object, error) {
	return t.update(id, func(o *domain.Object) { o.Position = o.Position.Add(delta) })
}

// SetPosition places the object at pos.
func (t *Table) SetPosition(id domain.ObjectID, pos domain.Vec3) (domain.Object, error) {
	return t.update(id, func(o *domain.Object) { o.Position = pos })
}

// Rotate turns the object by step degrees about the Y axis.
func (t *Table) Rotate(id domain.ObjectID, step float64) (domain.Object, error) {
	return t.update(id, func(o *domain.Object) { o.Rotation = NormalizeAngle(o.Rotation + step) })
}

// ScaleBy multiplies the uniform scale by factor, clamped to [MinScale, MaxScale].
func (t *Table) ScaleBy(id domain.ObjectID, factor float64) (domain.Object, error) {
	return t.update(id, func(o *domain.Object) {
		o.Scale = math.Min(MaxScale, math.Max(MinScale, o.Scale*factor))
	})
}

// SetColor replaces the object colour. The value is not validated here.
func (t *Table) SetColor(id domain.ObjectID, color string) (domain.Object, error) {
	return t.update(id, func(o *domain.Object) { o.Color = color })
}

// SetVisible records the outcome of the render pass for one object.
func (t *Table) SetVisible(id domain.ObjectID, visible bool) bool {
	obj, ok := t.objects[id]
	if ok {
		obj.Visible = visible
	}
	return ok
}

// All returns copies of every object ordered by id.
func (t *Table) All() []domain.Object {
	out := make([]domain.Object, 0, len(t.objects))
	for _, obj := range t.objects {
		out = append(out, *obj)
	}
	slices.SortFunc(out, func(a, b domain.Object) int { return int(a.ID - b.ID) })
	return out
}

// Len returns the number of objects.
func (t *Table) Len() int {
	return len(t.objects)
}

// MaxID returns the highest id in the table, or 0 when empty.
func (t *Table) MaxID() domain.ObjectID {
	var max domain.ObjectID
	for id := range t.objects {
		if id > max {
			max = id
		}
	}
	return max
}

// Restore replaces the table contents. Objects are validated first; on error the table is untouched.
func (t *Table) Restore(objects []domain.Object) error {
	next := make(map[domain.ObjectID]*domain.Object, len(objects))
	for _, obj := range objects {
		if obj.ID <= 0 {
			return fmt.Errorf("%w: object id must be positive, got %d", domain.ErrInvalidSnapshot, obj.ID)
		}
		if !obj.Kind.Valid() {
			return fmt.Errorf("%w: object %d: %w", domain.ErrInvalidSnapshot, obj.ID, domain.ErrUnknownKind)
		}
		if _, dup := next[obj.ID]; dup {
			return fmt.Errorf("%w: duplicate object id %d", domain.ErrInvalidSnapshot, obj.ID)
		}
		o := obj
		next[obj.ID] = &o
	}
	t.objects = next
	return nil
}
