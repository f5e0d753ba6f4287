package mapsync

import (
	"sync"

	"github.com/paulmach/orb"
)

// DefaultCamera is the initial view over the continental United States
var DefaultCamera = Camera{Center: orb.Point{-98.5795, 39.8283}, Zoom: 4}

// Viewport is the server side handle for one map panel.
// Browsers render it; OnChange is called whenever the synchronizer moves it.
type Viewport struct {
	ID       string
	OnChange func(id string, camera Camera)

	mux    sync.Mutex
	camera Camera
}

// NewViewport creates a viewport at the given camera
func NewViewport(id string, camera Camera, onChange func(id string, camera Camera)) *Viewport {
	return &Viewport{ID: id, camera: camera, OnChange: onChange}
}

func (v *Viewport) Camera() Camera {
	v.mux.Lock()
	defer v.mux.Unlock()
	return v.camera
}

func (v *Viewport) SetCenter(center orb.Point) {
	v.update(func(c *Camera) bool {
		if c.Center.Equal(center) {
			return false
		}
		c.Center = center
		return true
	})
}

func (v *Viewport) SetZoom(zoom float64) {
	v.update(func(c *Camera) bool {
		if c.Zoom == zoom {
			return false
		}
		c.Zoom = zoom
		return true
	})
}

// Record stores a camera reported by the browser that owns this viewport without notifying
func (v *Viewport) Record(change Change) {
	v.mux.Lock()
	defer v.mux.Unlock()
	switch change.Kind {
	case KindCenter:
		v.camera.Center = change.Center
	case KindZoom:
		v.camera.Zoom = change.Zoom
	}
}

// update ignores no-op sets so a browser echoing a pushed camera cannot loop
func (v *Viewport) update(fn func(c *Camera) bool) {
	v.mux.Lock()
	changed := fn(&v.camera)
	camera := v.camera
	v.mux.Unlock()
	if changed && v.OnChange != nil {
		v.OnChange(v.ID, camera)
	}
}
