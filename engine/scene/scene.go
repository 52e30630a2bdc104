package scene

import (
	"sync"

	"github.com/Carmen-Shannon/oxy-vr/engine/camera"
	"github.com/Carmen-Shannon/oxy-vr/engine/game_object"
)

// Scene is an entity store with camera and object component managers plus the
// active camera that non-stereo rendering and camera snapshots read from.
// Thread-safe for concurrent access.
type Scene interface {
	// Name returns the scene's identifier.
	Name() string

	// SetName sets the scene's identifier.
	SetName(name string)

	// Active returns whether this scene is currently active for rendering.
	Active() bool

	// SetActive sets whether this scene is active for rendering.
	SetActive(active bool)

	// Camera returns the scene's active camera.
	Camera() camera.Camera

	// SetCamera replaces the scene's active camera.
	//
	// Parameters:
	//   - cam: the new camera
	SetCamera(cam camera.Camera)

	// CreateEntity allocates a new entity id. The id is never InvalidEntity.
	//
	// Returns:
	//   - Entity: the new entity
	CreateEntity() Entity

	// RemoveEntity detaches every component from e and forgets the entity.
	//
	// Parameters:
	//   - e: the entity to remove
	RemoveEntity(e Entity)

	// EntityCount returns the number of live entities.
	//
	// Returns:
	//   - int: count of entities created and not removed
	EntityCount() int

	// Cameras returns the camera component store.
	//
	// Returns:
	//   - *ComponentManager[camera.Camera]: the camera store
	Cameras() *ComponentManager[camera.Camera]

	// Objects returns the game object component store.
	//
	// Returns:
	//   - *ComponentManager[game_object.GameObject]: the object store
	Objects() *ComponentManager[game_object.GameObject]

	// Add creates an entity for obj, assigns the entity id to the object and stores it.
	//
	// Parameters:
	//   - obj: the object to add
	//
	// Returns:
	//   - Entity: the entity the object was attached to
	Add(obj game_object.GameObject) Entity

	// Update advances every enabled object by dt and the scene clock.
	//
	// Parameters:
	//   - dt: elapsed time in seconds
	Update(dt float32)

	// Time returns the accumulated scene time in seconds.
	Time() float64

	// UpdateCount returns how many times Update has run.
	UpdateCount() uint64
}

type scene struct {
	mu *sync.RWMutex

	name   string
	active bool

	registry map[Entity]struct{}
	nextID   uint64

	cam     camera.Camera
	cameras *ComponentManager[camera.Camera]
	objects *ComponentManager[game_object.GameObject]

	time        float64
	updateCount uint64
}

// Ensure scene implements Scene interface.
var _ Scene = &scene{}

// NewScene creates a new active Scene. A default camera is created when none is supplied.
//
// Parameters:
//   - name: the name of the scene
//   - options: functional options to further configure the scene
//
// Returns:
//   - Scene: the newly created scene
func NewScene(name string, options ...SceneBuilderOption) Scene {
	s := &scene{
		mu:       &sync.RWMutex{},
		name:     name,
		active:   true,
		registry: make(map[Entity]struct{}),
		nextID:   1,
		cameras:  NewComponentManager[camera.Camera](),
		objects:  NewComponentManager[game_object.GameObject](),
	}

	for _, option := range options {
		option(s)
	}

	if s.cam == nil {
		s.cam = camera.NewCamera()
	}

	return s
}

func (s *scene) Name() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.name
}

func (s *scene) SetName(name string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.name = name
}

func (s *scene) Active() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.active
}

func (s *scene) SetActive(active bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.active = active
}

func (s *scene) Camera() camera.Camera {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.cam
}

func (s *scene) SetCamera(cam camera.Camera) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cam = cam
}

func (s *scene) CreateEntity() Entity {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.createEntity()
}

// createEntity allocates the next id. Caller must hold the write lock.
func (s *scene) createEntity() Entity {
	e := Entity(s.nextID)
	s.nextID++
	s.registry[e] = struct{}{}
	return e
}

func (s *scene) RemoveEntity(e Entity) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.registry[e]; !exists {
		return
	}
	delete(s.registry, e)
	s.cameras.Remove(e)
	s.objects.Remove(e)
}

func (s *scene) EntityCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.registry)
}

func (s *scene) Cameras() *ComponentManager[camera.Camera] {
	return s.cameras
}

func (s *scene) Objects() *ComponentManager[game_object.GameObject] {
	return s.objects
}

func (s *scene) Add(obj game_object.GameObject) Entity {
	s.mu.Lock()
	defer s.mu.Unlock()

	e := s.createEntity()
	obj.SetID(uint64(e))
	s.objects.Create(e, obj)
	return e
}

func (s *scene) Update(dt float32) {
	for _, e := range s.objects.Entities() {
		if obj, ok := s.objects.Get(e); ok && obj.Enabled() {
			obj.Update(dt)
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.time += float64(dt)
	s.updateCount++
}

func (s *scene) Time() float64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.time
}

func (s *scene) UpdateCount() uint64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.updateCount
}
