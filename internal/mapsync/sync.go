package mapsync

import (
	"errors"
	"fmt"
	"log"
	"sort"
	"sync"

	"github.com/paulmach/orb"
)

// ErrUnknownMap is returned when a camera change names a map that was never registered
var ErrUnknownMap = errors.New("unknown map")

// Kind names the camera property that changed
type Kind string

const (
	KindCenter Kind = "center"
	KindZoom   Kind = "zoom"
)

// Camera is the view state of one map panel
type Camera struct {
	Center orb.Point `json:"center"`
	Zoom   float64   `json:"zoom"`
}

// Change is a single camera update emitted by a map
type Change struct {
	Kind   Kind      `json:"kind"`
	Center orb.Point `json:"center"`
	Zoom   float64   `json:"zoom"`
}

// Handle is a live map whose camera can be driven by the synchronizer
type Handle interface {
	Camera() Camera
	SetCenter(center orb.Point)
	SetZoom(zoom float64)
}

// Synchronizer mirrors camera changes between registered maps.
// It is owned by the page controller; there is no package level registry.
type Synchronizer struct {
	mux     sync.RWMutex
	maps    map[string]Handle
	enabled bool
}

// New creates a synchronizer with the given initial sync state
func New(enabled bool) *Synchronizer {
	return &Synchronizer{
		maps:    make(map[string]Handle),
		enabled: enabled,
	}
}

// RegisterMap binds a handle to a map id, replacing any previous handle for that id
func (s *Synchronizer) RegisterMap(id string, handle Handle) {
	s.mux.Lock()
	defer s.mux.Unlock()
	if _, ok := s.maps[id]; ok {
		log.Printf("[sync] replacing map handle %s", id)
	}
	s.maps[id] = handle
}

// Map returns the handle registered for id
func (s *Synchronizer) Map(id string) (Handle, bool) {
	s.mux.RLock()
	defer s.mux.RUnlock()
	h, ok := s.maps[id]
	return h, ok
}

// IDs returns the registered map ids in sorted order
func (s *Synchronizer) IDs() []string {
	s.mux.RLock()
	defer s.mux.RUnlock()
	ids := make([]string, 0, len(s.maps))
	for id := range s.maps {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// SetSyncEnabled switches propagation on or off
func (s *Synchronizer) SetSyncEnabled(enabled bool) {
	s.mux.Lock()
	s.enabled = enabled
	s.mux.Unlock()
}

// Enabled reports whether camera changes are propagated
func (s *Synchronizer) Enabled() bool {
	s.mux.RLock()
	defer s.mux.RUnlock()
	return s.enabled
}

// Toggle flips the sync state and returns the new value
func (s *Synchronizer) Toggle() bool {
	s.mux.Lock()
	s.enabled = !s.enabled
	enabled := s.enabled
	s.mux.Unlock()
	log.Printf("[sync] map synchronization enabled=%v", enabled)
	return enabled
}

// OnCameraChange applies a change from originID to every other registered map.
// The origin is never written back. It returns the number of maps updated.
func (s *Synchronizer) OnCameraChange(originID string, change Change) (int, error) {
	targets, enabled, err := s.targets(originID)
	if err != nil {
		return 0, err
	}
	if !enabled {
		return 0, nil
	}

	switch change.Kind {
	case KindCenter:
		for _, h := range targets {
			h.SetCenter(change.Center)
		}
	case KindZoom:
		for _, h := range targets {
			h.SetZoom(change.Zoom)
		}
	default:
		return 0, fmt.Errorf("unsupported camera change %q", change.Kind)
	}
	return len(targets), nil
}

// Align copies the full camera of originID onto every other map regardless of the sync flag
func (s *Synchronizer) Align(originID string) error {
	origin, ok := s.Map(originID)
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnknownMap, originID)
	}
	camera := origin.Camera()

	s.mux.RLock()
	targets := s.othersLocked(originID)
	s.mux.RUnlock()

	for _, h := range targets {
		h.SetCenter(camera.Center)
		h.SetZoom(camera.Zoom)
	}
	return nil
}

// targets snapshots the maps to update so handle setters run outside the lock
func (s *Synchronizer) targets(originID string) ([]Handle, bool, error) {
	s.mux.RLock()
	defer s.mux.RUnlock()
	if _, ok := s.maps[originID]; !ok {
		return nil, false, fmt.Errorf("%w: %s", ErrUnknownMap, originID)
	}
	if !s.enabled {
		return nil, false, nil
	}
	return s.othersLocked(originID), true, nil
}

func (s *Synchronizer) othersLocked(originID string) []Handle {
	ret := make([]Handle, 0, len(s.maps))
	for id, h := range s.maps {
		if id == originID {
			continue
		}
		ret = append(ret, h)
	}
	return ret
}
