package choropleth

import (
	"log"
	"math"

	colorful "github.com/lucasb-eyer/go-colorful"
)

// Gradient is a two stop color ramp for one carrier
type Gradient struct {
	From string `json:"from"`
	To   string `json:"to"`
}

// carrierGradients is the color ramp per carrier, low value first
var carrierGradients = map[string]Gradient{
	"solar":      {"#FFFF00", "#FF0000"},
	"onwind":     {"#00FFFF", "#0000FF"},
	"offwind-ac": {"#00FF00", "#008000"},
	"offwind-dc": {"#00FF80", "#004D40"},
	"ror":        {"#80FF00", "#4B8A08"},
	"biomass":    {"#FF8000", "#8B4513"},
	"coal":       {"#808080", "#000000"},
	"oil":        {"#FFA07A", "#8B0000"},
	"CCGT":       {"#FFD700", "#B8860B"},
	"geothermal": {"#FF69B4", "#8B008B"},
	"lignite":    {"#D2691E", "#8B4513"},
	"nuclear":    {"#7FFF00", "#006400"},
}

// DefaultGradient is used for carriers without their own ramp
var DefaultGradient = Gradient{From: "#FFFFFF", To: "#000000"}

// GradientFor returns the ramp for carrier, falling back to DefaultGradient
func GradientFor(carrier string) Gradient {
	if g, ok := carrierGradients[carrier]; ok {
		return g
	}
	return DefaultGradient
}

// At interpolates the ramp linearly in RGB, t is clamped to [0,1]
func (g Gradient) At(t float64) colorful.Color {
	if math.IsNaN(t) {
		t = 0
	}
	t = math.Max(0, math.Min(1, t))
	from, err := colorful.Hex(g.From)
	if err != nil {
		log.Printf("[choropleth] bad gradient stop %q: %v", g.From, err)
	}
	to, err := colorful.Hex(g.To)
	if err != nil {
		log.Printf("[choropleth] bad gradient stop %q: %v", g.To, err)
	}
	return from.BlendRgb(to, t).Clamped()
}

// scale maps v from [min,max] onto the ramp; a flat range maps to the upper stop.
// Halving both sides keeps the span finite for ranges near the float64 limits.
func (g Gradient) scale(v float64, r Range) colorful.Color {
	half := r.Max/2 - r.Min/2
	if half == 0 {
		return g.At(1)
	}
	return g.At((v/2 - r.Min/2) / half)
}
