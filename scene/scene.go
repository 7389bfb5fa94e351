// Package scene layers models, instances and fixed-point camera
// matrices on top of the rast framebuffer.
//
// A Scene owns its models and a generational free-list of instances;
// the Renderer transforms every live instance's triangles through the
// projection*view matrix with Q16.16 fused-multiply-adds and submits
// them to the rasterizer.
package scene

import (
	"errors"
	"fmt"

	"github.com/gogpu/rast/internal/fixed"
	"github.com/gogpu/rast/internal/freelist"
)

// Scene capacity limits.
const (
	// MaxModels bounds the number of models a scene can hold.
	MaxModels = 256

	// MaxInstances bounds the number of live instances.
	MaxInstances = 512
)

// Scene errors.
var (
	// ErrSceneFull is returned when the model or instance capacity is
	// exhausted.
	ErrSceneFull = errors.New("scene: capacity exhausted")

	// ErrUnknownModel is returned when instancing a model id the
	// scene does not hold.
	ErrUnknownModel = errors.New("scene: unknown model id")
)

// ModelID identifies a model within its scene. Models are never
// removed, so the id is a plain dense index.
type ModelID uint32

// InstanceID identifies a live instance. The id is generational:
// removing the instance invalidates it and any later lookup with the
// stale id fails.
type InstanceID = freelist.ID

// ModelData is the mesh payload accepted by AddModel: Q16.16 position
// triples and index triples in counter-clockwise source order.
type ModelData struct {
	Positions []fixed.S1516
	Indices   []uint32
}

// ModelSource loads mesh data from an external format. The OBJ loader
// in a host application implements this; the scene package itself
// never touches files.
type ModelSource interface {
	// LoadModels parses filename, resolving material references
	// against materialBase, and returns one ModelData per shape.
	LoadModels(filename, materialBase string) ([]ModelData, error)
}

// Model is a mesh owned by a scene: dense Q16.16 positions plus index
// triples, rewound clockwise at load time.
type Model struct {
	positions []fixed.S1516
	indices   []uint32
}

// TriangleCount returns the number of triangles in the model.
func (m *Model) TriangleCount() int {
	return len(m.indices) / 3
}

// instance is the per-instance payload; the world transform hook is
// reserved and instances currently carry only their model.
type instance struct {
	model ModelID
}

// Scene owns a bounded set of models, a free-list of instances and
// the current view and projection matrices.
type Scene struct {
	models    []Model
	instances *freelist.List[instance]

	view       Mat4
	projection Mat4
}

// New creates an empty scene with identity view and projection.
func New() *Scene {
	return &Scene{
		models:     make([]Model, 0, MaxModels),
		instances:  freelist.New[instance](MaxInstances),
		view:       Identity(),
		projection: Identity(),
	}
}

// AddModel copies data into the scene and returns the new model's id.
// Source indices are counter-clockwise; they are stored with the last
// two indices of every triangle swapped so triangles arrive clockwise
// in window space.
func (s *Scene) AddModel(data ModelData) (ModelID, error) {
	if len(s.models) == MaxModels {
		return 0, fmt.Errorf("%w: %d models", ErrSceneFull, MaxModels)
	}
	if len(data.Indices)%3 != 0 {
		return 0, fmt.Errorf("scene: index count %d not a multiple of three", len(data.Indices))
	}

	m := Model{
		positions: append([]fixed.S1516(nil), data.Positions...),
		indices:   append([]uint32(nil), data.Indices...),
	}
	for i := 0; i+2 < len(m.indices); i += 3 {
		m.indices[i+1], m.indices[i+2] = m.indices[i+2], m.indices[i+1]
	}

	s.models = append(s.models, m)
	return ModelID(len(s.models) - 1), nil
}

// AddModels loads every shape of a model file through src and adds
// them to the scene. It returns the id of the first added model and
// the number added.
func (s *Scene) AddModels(src ModelSource, filename, materialBase string) (first ModelID, n int, err error) {
	shapes, err := src.LoadModels(filename, materialBase)
	if err != nil {
		return 0, 0, fmt.Errorf("scene: loading %s: %w", filename, err)
	}

	first = ModelID(len(s.models))
	for _, data := range shapes {
		if _, err := s.AddModel(data); err != nil {
			return first, n, err
		}
		n++
	}
	return first, n, nil
}

// Model returns the model with the given id, or nil.
func (s *Scene) Model(id ModelID) *Model {
	if int(id) >= len(s.models) {
		return nil
	}
	return &s.models[id]
}

// AddInstance places an instance of the given model in the scene and
// returns its generational id.
func (s *Scene) AddInstance(model ModelID) (InstanceID, error) {
	if int(model) >= len(s.models) {
		return 0, fmt.Errorf("%w: %d", ErrUnknownModel, model)
	}
	if s.instances.Len() == s.instances.Cap() {
		return 0, fmt.Errorf("%w: %d instances", ErrSceneFull, MaxInstances)
	}
	return s.instances.Add(instance{model: model}), nil
}

// RemoveInstance deletes an instance. It reports whether the id was
// live; a stale or double-removed id is a no-op.
func (s *Scene) RemoveInstance(id InstanceID) bool {
	return s.instances.Remove(id)
}

// InstanceCount returns the number of live instances.
func (s *Scene) InstanceCount() int {
	return s.instances.Len()
}

// SetView stores the view matrix.
func (s *Scene) SetView(m Mat4) {
	s.view = m
}

// SetProjection stores the projection matrix.
func (s *Scene) SetProjection(m Mat4) {
	s.projection = m
}
