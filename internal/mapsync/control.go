package mapsync

// SyncControl is the sync toggle button shown on every scenario map.
// It composes over a Synchronizer and reports clicks through OnToggle.
type SyncControl struct {
	sync     *Synchronizer
	OnToggle func(enabled bool)
}

// NewSyncControl creates a control driving s
func NewSyncControl(s *Synchronizer, onToggle func(enabled bool)) *SyncControl {
	return &SyncControl{sync: s, OnToggle: onToggle}
}

// Click flips synchronization and notifies the listener
func (c *SyncControl) Click() bool {
	enabled := c.sync.Toggle()
	if c.OnToggle != nil {
		c.OnToggle(enabled)
	}
	return enabled
}

// Enabled reports the current sync state
func (c *SyncControl) Enabled() bool {
	return c.sync.Enabled()
}

// Label is the button glyph
func (c *SyncControl) Label() string {
	return "⇄"
}

// Title describes what the next click does
func (c *SyncControl) Title() string {
	if c.sync.Enabled() {
		return "Disable synchronization"
	}
	return "Enable synchronization"
}

// CSSClass returns the classes applied to the control element
func (c *SyncControl) CSSClass() string {
	if c.sync.Enabled() {
		return "sync-control sync-enabled"
	}
	return "sync-control"
}
