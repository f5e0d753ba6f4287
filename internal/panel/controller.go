package panel

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/paulmach/orb/geojson"
	"golang.org/x/sync/errgroup"

	"github.com/Zachdehooge/energy-dashboard/internal/choropleth"
	"github.com/Zachdehooge/energy-dashboard/internal/fetcher"
	"github.com/Zachdehooge/energy-dashboard/internal/mapsync"
	"github.com/Zachdehooge/energy-dashboard/internal/scenario"
)

// ErrUnknownPanel is returned for a map id that has no panel
var ErrUnknownPanel = errors.New("unknown panel")

// FeatureSource fetches the feature collection of a scenario
type FeatureSource interface {
	FetchFeatures(ctx context.Context, s scenario.Scenario) (*geojson.FeatureCollection, error)
}

// EconomicSource fetches the statistics rows of a scenario year
type EconomicSource interface {
	FetchEconomicData(ctx context.Context, country, year string) ([]fetcher.EconomicRecord, error)
}

// Panel is the state of one scenario map panel
type Panel struct {
	Scenario  scenario.Scenario          `json:"scenario"`
	Camera    mapsync.Camera             `json:"camera"`
	Legend    choropleth.Legend          `json:"legend"`
	Features  *geojson.FeatureCollection `json:"-"`
	Economic  []fetcher.EconomicRecord   `json:"economic"`
	Loading   bool                       `json:"loading"`
	Error     string                     `json:"error,omitempty"`
	UpdatedAt time.Time                  `json:"updatedAt"`
}

// Options configures a Controller
type Options struct {
	Country     string
	LegendSteps int
	Sync        bool
	Timeout     time.Duration
}

// Controller owns the synchronizer and the panels of the comparison view
type Controller struct {
	features FeatureSource
	economic EconomicSource
	options  Options
	sync     *mapsync.Synchronizer

	// OnUpdate receives each panel snapshot after a load cycle finishes
	OnUpdate func(id string, p Panel)
	// OnCamera receives cameras pushed onto a viewport by the synchronizer
	OnCamera func(id string, camera mapsync.Camera)

	mux       sync.RWMutex
	order     []string
	panels    map[string]*Panel
	viewports map[string]*mapsync.Viewport
	pending   sync.WaitGroup
}

// New creates a controller; economic may be nil when no statistics endpoint exists
func New(features FeatureSource, economic EconomicSource, options Options) *Controller {
	if options.LegendSteps <= 0 {
		options.LegendSteps = choropleth.DefaultSteps
	}
	if options.Timeout <= 0 {
		options.Timeout = 30 * time.Second
	}
	return &Controller{
		features:  features,
		economic:  economic,
		options:   options,
		sync:      mapsync.New(options.Sync),
		panels:    make(map[string]*Panel),
		viewports: make(map[string]*mapsync.Viewport),
	}
}

// Sync exposes the synchronizer owned by the controller
func (c *Controller) Sync() *mapsync.Synchronizer {
	return c.sync
}

// Add registers a panel and its map handle without loading it
func (c *Controller) Add(s scenario.Scenario) error {
	if err := s.Validate(); err != nil {
		return err
	}
	viewport := mapsync.NewViewport(s.MapID, mapsync.DefaultCamera, c.cameraPushed)

	c.mux.Lock()
	if _, ok := c.panels[s.MapID]; !ok {
		c.order = append(c.order, s.MapID)
	}
	c.panels[s.MapID] = &Panel{
		Scenario: s,
		Legend:   choropleth.NoDataLegend(s.Carrier, s.Variable),
		Economic: []fetcher.EconomicRecord{},
	}
	c.viewports[s.MapID] = viewport
	c.mux.Unlock()

	c.sync.RegisterMap(s.MapID, viewport)
	return nil
}

// Init adds the given panels, loads them concurrently and aligns every map to the first
func (c *Controller) Init(ctx context.Context, scenarios []scenario.Scenario) error {
	for _, s := range scenarios {
		if err := c.Add(s); err != nil {
			return err
		}
	}

	g, gctx := errgroup.WithContext(ctx)
	for _, s := range scenarios {
		id := s.MapID
		g.Go(func() error {
			return c.Load(gctx, id)
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}

	if len(scenarios) > 0 {
		return c.sync.Align(scenarios[0].MapID)
	}
	return nil
}

// Select records a new scenario for a panel and reloads it in the background.
// In flight loads are not cancelled; whichever finishes last is shown.
func (c *Controller) Select(s scenario.Scenario) error {
	if err := s.Validate(); err != nil {
		return err
	}

	c.mux.Lock()
	p, ok := c.panels[s.MapID]
	if !ok {
		c.mux.Unlock()
		return fmt.Errorf("%w: %s", ErrUnknownPanel, s.MapID)
	}
	p.Scenario = s
	p.Loading = true
	c.mux.Unlock()

	log.Printf("[panel] updating %s", s)
	c.pending.Add(1)
	go func() {
		defer c.pending.Done()
		ctx, cancel := context.WithTimeout(context.Background(), c.options.Timeout)
		defer cancel()
		if err := c.load(ctx, s); err != nil {
			log.Printf("[panel] %s: %v", s.MapID, err)
		}
	}()
	return nil
}

// Wait blocks until background loads started by Select have finished
func (c *Controller) Wait() {
	c.pending.Wait()
}

// Load runs the fetch, style and legend cycle for the panel's current scenario
func (c *Controller) Load(ctx context.Context, id string) error {
	c.mux.RLock()
	p, ok := c.panels[id]
	var s scenario.Scenario
	if ok {
		s = p.Scenario
	}
	c.mux.RUnlock()
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnknownPanel, id)
	}
	return c.load(ctx, s)
}

// load never fails on remote errors: the panel falls back to a no data state
func (c *Controller) load(ctx context.Context, s scenario.Scenario) error {
	var errMsg string
	fc, err := c.features.FetchFeatures(ctx, s)
	if err != nil {
		log.Printf("[panel] %s: feature fetch failed: %v", s.MapID, err)
		errMsg = err.Error()
		fc = nil
	}
	if fc == nil {
		fc = geojson.NewFeatureCollection()
	}
	legend := choropleth.BuildLegend(fc.Features, s.Carrier, s.Variable, c.options.LegendSteps)

	economic := []fetcher.EconomicRecord{}
	if c.economic != nil {
		records, err := c.economic.FetchEconomicData(ctx, c.options.Country, s.Year)
		if err != nil {
			log.Printf("[panel] %s: economic data fetch failed: %v", s.MapID, err)
		} else {
			economic = records
		}
	}

	c.mux.Lock()
	p, ok := c.panels[s.MapID]
	if !ok {
		c.mux.Unlock()
		return fmt.Errorf("%w: %s", ErrUnknownPanel, s.MapID)
	}
	p.Scenario = s
	p.Features = fc
	p.Legend = legend
	p.Economic = economic
	p.Loading = false
	p.Error = errMsg
	p.UpdatedAt = time.Now().UTC()
	snapshot := c.snapshotLocked(s.MapID)
	c.mux.Unlock()

	log.Printf("[panel] %s loaded %d features, legend noData=%v", s, len(fc.Features), legend.NoData)
	if c.OnUpdate != nil {
		c.OnUpdate(s.MapID, snapshot)
	}
	return nil
}

// Panel returns a snapshot of one panel
func (c *Controller) Panel(id string) (Panel, error) {
	c.mux.RLock()
	defer c.mux.RUnlock()
	if _, ok := c.panels[id]; !ok {
		return Panel{}, fmt.Errorf("%w: %s", ErrUnknownPanel, id)
	}
	return c.snapshotLocked(id), nil
}

// Panels returns snapshots of every panel in registration order
func (c *Controller) Panels() []Panel {
	c.mux.RLock()
	defer c.mux.RUnlock()
	ret := make([]Panel, 0, len(c.order))
	for _, id := range c.order {
		ret = append(ret, c.snapshotLocked(id))
	}
	return ret
}

// Styled returns the visible features of a panel with their resolved styles
func (c *Controller) Styled(id string) (*geojson.FeatureCollection, error) {
	p, err := c.Panel(id)
	if err != nil {
		return nil, err
	}
	return choropleth.Apply(p.Features, p.Scenario.Carrier, p.Scenario.Variable), nil
}

// CameraChange records a move reported by a panel's browser and mirrors it to the other panels
func (c *Controller) CameraChange(id string, change mapsync.Change) (int, error) {
	c.mux.RLock()
	viewport, ok := c.viewports[id]
	c.mux.RUnlock()
	if !ok {
		return 0, fmt.Errorf("%w: %s", ErrUnknownPanel, id)
	}
	viewport.Record(change)
	return c.sync.OnCameraChange(id, change)
}

// ToggleSync flips camera synchronization and returns the new state
func (c *Controller) ToggleSync() bool {
	return c.sync.Toggle()
}

func (c *Controller) cameraPushed(id string, camera mapsync.Camera) {
	if c.OnCamera != nil {
		c.OnCamera(id, camera)
	}
}

func (c *Controller) snapshotLocked(id string) Panel {
	p := *c.panels[id]
	if v, ok := c.viewports[id]; ok {
		p.Camera = v.Camera()
	}
	p.Economic = make([]fetcher.EconomicRecord, len(p.Economic))
	copy(p.Economic, c.panels[id].Economic)
	return p
}
