package http

import (
	"context"
	"fmt"
	"net/http"
	"strconv"

	"github.com/aretw0/isoscene/pkg/domain"
	"github.com/aretw0/isoscene/pkg/editor"
	"github.com/aretw0/isoscene/pkg/layers"
	"github.com/go-chi/chi/v5"
)

// -- State --

type pathValue struct {
	Path  string `json:"path"`
	Value any    `json:"value"`
}

// GetState handles GET /workspaces/{ws}/state.
func (s *Server) GetState(w http.ResponseWriter, r *http.Request) {
	s.withEditor(w, r, func(ctx context.Context, e *editor.Editor) (int, any, error) {
		return http.StatusOK, e.State().Snapshot(), nil
	})
}

// UpdateState handles PATCH /workspaces/{ws}/state.
func (s *Server) UpdateState(w http.ResponseWriter, r *http.Request) {
	var partial map[string]any
	if err := s.decode(r, &partial); err != nil {
		s.writeError(w, err)
		return
	}
	s.withEditor(w, r, func(ctx context.Context, e *editor.Editor) (int, any, error) {
		if err := e.State().UpdateState(ctx, partial); err != nil {
			return 0, nil, err
		}
		return http.StatusOK, e.State().Snapshot(), nil
	})
}

// ClearState handles DELETE /workspaces/{ws}/state.
func (s *Server) ClearState(w http.ResponseWriter, r *http.Request) {
	s.withEditor(w, r, func(ctx context.Context, e *editor.Editor) (int, any, error) {
		e.State().Clear(ctx)
		return http.StatusNoContent, nil, nil
	})
}

// ResetState handles POST /workspaces/{ws}/state/reset.
func (s *Server) ResetState(w http.ResponseWriter, r *http.Request) {
	s.withEditor(w, r, func(ctx context.Context, e *editor.Editor) (int, any, error) {
		e.State().Reset(ctx)
		return http.StatusOK, e.State().Snapshot(), nil
	})
}

// GetStateProperty handles GET /workspaces/{ws}/state/{path}.
func (s *Server) GetStateProperty(w http.ResponseWriter, r *http.Request) {
	path := chi.URLParam(r, "path")
	s.withEditor(w, r, func(ctx context.Context, e *editor.Editor) (int, any, error) {
		v, ok := e.State().GetStateProperty(path)
		if !ok {
			return 0, nil, fmt.Errorf("%w: %s", domain.ErrPathNotFound, path)
		}
		return http.StatusOK, pathValue{Path: path, Value: v}, nil
	})
}

// SetStateProperty handles PUT /workspaces/{ws}/state/{path}.
func (s *Server) SetStateProperty(w http.ResponseWriter, r *http.Request) {
	path := chi.URLParam(r, "path")
	var body struct {
		Value any `json:"value"`
	}
	if err := s.decode(r, &body); err != nil {
		s.writeError(w, err)
		return
	}
	s.withEditor(w, r, func(ctx context.Context, e *editor.Editor) (int, any, error) {
		if err := e.State().SetStateProperty(ctx, path, body.Value); err != nil {
			return 0, nil, err
		}
		v, _ := e.State().GetStateProperty(path)
		return http.StatusOK, pathValue{Path: path, Value: v}, nil
	})
}

// -- Layers --

type layerList struct {
	Layers         []layers.Layer `json:"layers"`
	CurrentLayerID int            `json:"currentLayerId"`
}

func listOf(e *editor.Editor) layerList {
	return layerList{Layers: e.Layers(), CurrentLayerID: e.CurrentLayerID()}
}

// ListLayers handles GET /workspaces/{ws}/layers.
func (s *Server) ListLayers(w http.ResponseWriter, r *http.Request) {
	s.withEditor(w, r, func(ctx context.Context, e *editor.Editor) (int, any, error) {
		return http.StatusOK, listOf(e), nil
	})
}

// AddLayer handles POST /workspaces/{ws}/layers.
func (s *Server) AddLayer(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Name string `json:"name"`
	}
	if err := s.decode(r, &body); err != nil {
		s.writeError(w, err)
		return
	}
	s.withEditor(w, r, func(ctx context.Context, e *editor.Editor) (int, any, error) {
		return http.StatusCreated, e.AddLayer(ctx, body.Name), nil
	})
}

// ReorderLayers handles PUT /workspaces/{ws}/layers/order.
func (s *Server) ReorderLayers(w http.ResponseWriter, r *http.Request) {
	var body struct {
		IDs []int `json:"ids"`
	}
	if err := s.decode(r, &body); err != nil {
		s.writeError(w, err)
		return
	}
	s.withEditor(w, r, func(ctx context.Context, e *editor.Editor) (int, any, error) {
		if !e.ReorderLayers(ctx, body.IDs) {
			return 0, nil, fmt.Errorf("%w: ids must be a permutation of the current layers", errBadRequest)
		}
		return http.StatusOK, listOf(e), nil
	})
}

// RemoveLayer handles DELETE /workspaces/{ws}/layers/{id}.
func (s *Server) RemoveLayer(w http.ResponseWriter, r *http.Request) {
	id, err := intParam(r, "id")
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.withEditor(w, r, func(ctx context.Context, e *editor.Editor) (int, any, error) {
		if _, ok := e.Layer(id); !ok {
			return 0, nil, layerNotFound(id)
		}
		if !e.RemoveLayer(ctx, id) {
			return 0, nil, fmt.Errorf("%w: the last layer cannot be removed", errConflict)
		}
		return http.StatusNoContent, nil, nil
	})
}

// LayerOperation handles POST /workspaces/{ws}/layers/{id}/{op}.
func (s *Server) LayerOperation(w http.ResponseWriter, r *http.Request) {
	id, err := intParam(r, "id")
	if err != nil {
		s.writeError(w, err)
		return
	}
	var body struct {
		Name string `json:"name"`
	}
	if err := s.decode(r, &body); err != nil {
		s.writeError(w, err)
		return
	}
	op := chi.URLParam(r, "op")
	s.withEditor(w, r, func(ctx context.Context, e *editor.Editor) (int, any, error) {
		if _, ok := e.Layer(id); !ok {
			return 0, nil, layerNotFound(id)
		}
		var ok bool
		switch op {
		case "rename":
			ok = e.RenameLayer(ctx, id, body.Name)
		case "up":
			ok = e.MoveLayerUp(ctx, id)
		case "down":
			ok = e.MoveLayerDown(ctx, id)
		case "visibility":
			_, ok = e.ToggleLayerVisibility(ctx, id)
		case "current":
			ok = e.SetCurrentLayer(ctx, id)
		default:
			return 0, nil, fmt.Errorf("%w: unknown layer operation %q", errBadRequest, op)
		}
		if !ok {
			return 0, nil, fmt.Errorf("%w: %s on layer %d", errConflict, op, id)
		}
		return http.StatusOK, listOf(e), nil
	})
}

func layerNotFound(id int) error {
	return fmt.Errorf("%w: layer %d", domain.ErrPathNotFound, id)
}

// -- Objects --

// ListObjects handles GET /workspaces/{ws}/objects.
func (s *Server) ListObjects(w http.ResponseWriter, r *http.Request) {
	s.withEditor(w, r, func(ctx context.Context, e *editor.Editor) (int, any, error) {
		objs := e.Objects()
		if objs == nil {
			objs = []domain.Object{}
		}
		return http.StatusOK, objs, nil
	})
}

// AddObject handles POST /workspaces/{ws}/objects.
func (s *Server) AddObject(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Kind     domain.Kind `json:"kind"`
		Position domain.Vec3 `json:"position"`
	}
	if err := s.decode(r, &body); err != nil {
		s.writeError(w, err)
		return
	}
	s.withEditor(w, r, func(ctx context.Context, e *editor.Editor) (int, any, error) {
		obj, err := e.AddObject(ctx, body.Kind, body.Position)
		if err != nil {
			return 0, nil, err
		}
		return http.StatusCreated, obj, nil
	})
}

// DeleteObject handles DELETE /workspaces/{ws}/objects/{id}.
func (s *Server) DeleteObject(w http.ResponseWriter, r *http.Request) {
	id, err := intParam(r, "id")
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.withEditor(w, r, func(ctx context.Context, e *editor.Editor) (int, any, error) {
		if err := e.DeleteObject(ctx, domain.ObjectID(id)); err != nil {
			return 0, nil, err
		}
		return http.StatusNoContent, nil, nil
	})
}

type objectRequest struct {
	Delta     domain.Vec3 `json:"delta"`
	Clockwise bool        `json:"clockwise"`
	Grow      bool        `json:"grow"`
	LayerID   int         `json:"layerId"`
	Color     string      `json:"color"`
}

// ObjectOperation handles POST /workspaces/{ws}/objects/{id}/{op}.
func (s *Server) ObjectOperation(w http.ResponseWriter, r *http.Request) {
	n, err := intParam(r, "id")
	if err != nil {
		s.writeError(w, err)
		return
	}
	var body objectRequest
	if err := s.decode(r, &body); err != nil {
		s.writeError(w, err)
		return
	}
	id := domain.ObjectID(n)
	op := chi.URLParam(r, "op")
	s.withEditor(w, r, func(ctx context.Context, e *editor.Editor) (int, any, error) {
		var (
			obj domain.Object
			err error
		)
		switch op {
		case "select":
			if err = e.SelectObject(ctx, id); err == nil {
				obj, _ = e.Object(id)
			}
		case "move":
			obj, err = e.MoveObject(ctx, id, body.Delta)
		case "rotate":
			obj, err = e.RotateObject(ctx, id, body.Clockwise)
		case "scale":
			obj, err = e.ScaleObject(ctx, id, body.Grow)
		case "color":
			obj, err = e.SetObjectColor(ctx, id, body.Color)
		case "layer":
			if _, ok := e.Object(id); !ok {
				return 0, nil, fmt.Errorf("%w: %d", domain.ErrObjectNotFound, id)
			}
			if _, ok := e.Layer(body.LayerID); !ok {
				return 0, nil, layerNotFound(body.LayerID)
			}
			if !e.MoveObjectToLayer(ctx, id, body.LayerID) {
				return 0, nil, fmt.Errorf("%w: object %d is not on any layer", errConflict, id)
			}
			obj, _ = e.Object(id)
		default:
			return 0, nil, fmt.Errorf("%w: unknown object operation %q", errBadRequest, op)
		}
		if err != nil {
			return 0, nil, err
		}
		return http.StatusOK, obj, nil
	})
}

// -- View --

// RotateCamera handles POST /workspaces/{ws}/camera/rotate.
func (s *Server) RotateCamera(w http.ResponseWriter, r *http.Request) {
	body := struct {
		Clockwise bool `json:"clockwise"`
	}{Clockwise: true}
	if err := s.decode(r, &body); err != nil {
		s.writeError(w, err)
		return
	}
	s.withEditor(w, r, func(ctx context.Context, e *editor.Editor) (int, any, error) {
		e.RotateCamera(ctx, body.Clockwise)
		return http.StatusOK, e.State().Scene(), nil
	})
}

// SetZoom handles PUT /workspaces/{ws}/camera/zoom.
func (s *Server) SetZoom(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Zoom float64 `json:"zoom"`
	}
	if err := s.decode(r, &body); err != nil {
		s.writeError(w, err)
		return
	}
	s.withEditor(w, r, func(ctx context.Context, e *editor.Editor) (int, any, error) {
		e.SetZoom(ctx, body.Zoom)
		return http.StatusOK, e.State().Scene(), nil
	})
}

// SetBackground handles PUT /workspaces/{ws}/background.
func (s *Server) SetBackground(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Theme string `json:"theme"`
		Color string `json:"color"`
	}
	if err := s.decode(r, &body); err != nil {
		s.writeError(w, err)
		return
	}
	s.withEditor(w, r, func(ctx context.Context, e *editor.Editor) (int, any, error) {
		var err error
		switch {
		case body.Theme != "":
			_, err = e.ApplyTheme(ctx, body.Theme)
		case body.Color != "":
			_, err = e.SetBackgroundColor(ctx, body.Color)
		default:
			err = fmt.Errorf("%w: theme or color is required", errBadRequest)
		}
		if err != nil {
			return 0, nil, err
		}
		return http.StatusOK, e.State().Scene(), nil
	})
}

// SetFog handles PUT /workspaces/{ws}/fog.
func (s *Server) SetFog(w http.ResponseWriter, r *http.Request) {
	var fog editor.Fog
	if err := s.decode(r, &fog); err != nil {
		s.writeError(w, err)
		return
	}
	s.withEditor(w, r, func(ctx context.Context, e *editor.Editor) (int, any, error) {
		out, err := e.SetFog(ctx, fog)
		if err != nil {
			return 0, nil, err
		}
		return http.StatusOK, out, nil
	})
}

// RenderFrame handles POST /workspaces/{ws}/frame.
func (s *Server) RenderFrame(w http.ResponseWriter, r *http.Request) {
	s.withEditor(w, r, func(ctx context.Context, e *editor.Editor) (int, any, error) {
		stats := e.Frame(ctx)
		if stats.Visible == nil {
			stats.Visible = []domain.ObjectID{}
		}
		return http.StatusOK, stats, nil
	})
}

// -- History --

// GetHistory handles GET /workspaces/{ws}/history.
func (s *Server) GetHistory(w http.ResponseWriter, r *http.Request) {
	s.withEditor(w, r, func(ctx context.Context, e *editor.Editor) (int, any, error) {
		return http.StatusOK, e.State().Snapshot().History, nil
	})
}

// HistoryOperation handles POST /workspaces/{ws}/history/{op}.
func (s *Server) HistoryOperation(w http.ResponseWriter, r *http.Request) {
	op := chi.URLParam(r, "op")
	s.withEditor(w, r, func(ctx context.Context, e *editor.Editor) (int, any, error) {
		var (
			action domain.Action
			ok     bool
		)
		switch op {
		case "undo":
			action, ok = e.Undo(ctx)
		case "redo":
			action, ok = e.Redo(ctx)
		default:
			return 0, nil, fmt.Errorf("%w: unknown history operation %q", errBadRequest, op)
		}
		if !ok {
			return 0, nil, fmt.Errorf("%w: nothing to %s", errConflict, op)
		}
		return http.StatusOK, action, nil
	})
}

// -- Scenes --

// ListScenes handles GET /workspaces/{ws}/scenes.
func (s *Server) ListScenes(w http.ResponseWriter, r *http.Request) {
	s.withEditor(w, r, func(ctx context.Context, e *editor.Editor) (int, any, error) {
		names, err := e.ListScenes(ctx)
		if err != nil {
			return 0, nil, err
		}
		if names == nil {
			names = []string{}
		}
		return http.StatusOK, map[string][]string{"scenes": names}, nil
	})
}

// SaveScene handles PUT /workspaces/{ws}/scenes/{name}.
func (s *Server) SaveScene(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")
	s.withEditor(w, r, func(ctx context.Context, e *editor.Editor) (int, any, error) {
		if err := e.SaveScene(ctx, name); err != nil {
			return 0, nil, err
		}
		return http.StatusNoContent, nil, nil
	})
}

// OpenScene handles POST /workspaces/{ws}/scenes/{name}.
func (s *Server) OpenScene(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")
	s.withEditor(w, r, func(ctx context.Context, e *editor.Editor) (int, any, error) {
		if err := e.OpenScene(ctx, name); err != nil {
			return 0, nil, err
		}
		return http.StatusOK, listOf(e), nil
	})
}

// DeleteScene handles DELETE /workspaces/{ws}/scenes/{name}.
func (s *Server) DeleteScene(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")
	s.withEditor(w, r, func(ctx context.Context, e *editor.Editor) (int, any, error) {
		if err := e.DeleteScene(ctx, name); err != nil {
			return 0, nil, err
		}
		return http.StatusNoContent, nil, nil
	})
}

func intParam(r *http.Request, name string) (int, error) {
	raw := chi.URLParam(r, name)
	n, err := strconv.Atoi(raw)
	if err != nil || n < 0 {
		return 0, fmt.Errorf("%w: %s must be a non-negative integer, got %q", errBadRequest, name, raw)
	}
	return n, nil
}
