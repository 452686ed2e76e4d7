// Package catalog holds the static list of explorable celestial bodies.
package catalog

import "strings"

// Kind is the broad physical category of a body.
type Kind string

const (
	KindRocky  Kind = "rocky"
	KindGas    Kind = "gas"
	KindIce    Kind = "ice"
	KindStar   Kind = "star"
	KindGalaxy Kind = "galaxy"
)

// Landable reports whether a body of this kind has a walkable surface.
func (k Kind) Landable() bool {
	switch k {
	case KindRocky, KindGas, KindIce:
		return true
	default:
		return false
	}
}

// Profile names the hand-authored surface rules a body uses. The empty
// profile means "derive from Kind".
type Profile string

const (
	ProfileNone      Profile = ""
	ProfileCratered  Profile = "cratered"
	ProfileVolcanic  Profile = "volcanic"
	ProfileTemperate Profile = "temperate"
	ProfileDusty     Profile = "dusty"
)

// Body describes one entry of the catalog. Values are immutable once loaded.
type Body struct {
	ID          string  `json:"id"`
	Name        string  `json:"name"`         // English name used for API queries
	DisplayName string  `json:"display_name"` // Name shown in the UI
	Kind        Kind    `json:"kind"`
	Profile     Profile `json:"profile,omitempty"`
	Description string  `json:"description"`

	Color           string `json:"color"`
	SurfaceColor    string `json:"surface_color,omitempty"`
	AtmosphereColor string `json:"atmosphere_color,omitempty"`

	Radius        float64 `json:"radius"`
	Distance      float64 `json:"distance"`
	OrbitSpeed    float64 `json:"orbit_speed"`
	RotationSpeed float64 `json:"rotation_speed"`
	HasRings      bool    `json:"has_rings,omitempty"`
}

// GroundColor returns the surface colour override, or the body colour.
func (b Body) GroundColor() string {
	if b.SurfaceColor != "" {
		return b.SurfaceColor
	}
	return b.Color
}

// SkyColor returns the atmosphere colour, or black for airless bodies.
func (b Body) SkyColor() string {
	if b.AtmosphereColor != "" {
		return b.AtmosphereColor
	}
	return "#000000"
}

// Bodies is the ordered catalog: the Sun, eight planets, three nearby stars
// and one galaxy.
var Bodies = []Body{
	{
		ID:            "sun",
		Name:          "Sun",
		DisplayName:   "Sun",
		Kind:          KindStar,
		Description:   "The heart of our system, a yellow dwarf star and the source of life.",
		Color:         "#FFD700",
		Radius:        12,
		Distance:      0,
		OrbitSpeed:    0,
		RotationSpeed: 0.005,
	},
	{
		ID:            "mercury",
		Name:          "Mercury",
		DisplayName:   "Mercury",
		Kind:          KindRocky,
		Profile:       ProfileCratered,
		Description:   "The smallest planet and the closest to the Sun.",
		Color:         "#A5A5A5",
		Radius:        2,
		Distance:      35,
		OrbitSpeed:    0.8,
		RotationSpeed: 0.01,
	},
	{
		ID:              "venus",
		Name:            "Venus",
		DisplayName:     "Venus",
		Kind:            KindRocky,
		Profile:         ProfileVolcanic,
		Description:     "The brightest planet in the sky, hot and toxic.",
		Color:           "#FFC649",
		AtmosphereColor: "#3a2a10",
		Radius:          3.8,
		Distance:        55,
		OrbitSpeed:      0.6,
		RotationSpeed:   0.005,
	},
	{
		ID:              "earth",
		Name:            "Earth",
		DisplayName:     "Earth",
		Kind:            KindRocky,
		Profile:         ProfileTemperate,
		Description:     "Home. The only place known to harbour life.",
		Color:           "#22A6FF",
		AtmosphereColor: "#1b3a5c",
		Radius:          4,
		Distance:        75,
		OrbitSpeed:      0.5,
		RotationSpeed:   0.02,
	},
	{
		ID:              "mars",
		Name:            "Mars",
		DisplayName:     "Mars",
		Kind:            KindRocky,
		Profile:         ProfileDusty,
		Description:     "The Red Planet, with a rusty iron-oxide surface.",
		Color:           "#FF4500",
		AtmosphereColor: "#3d1c10",
		Radius:          2.5,
		Distance:        95,
		OrbitSpeed:      0.4,
		RotationSpeed:   0.018,
	},
	{
		ID:              "jupiter",
		Name:            "Jupiter",
		DisplayName:     "Jupiter",
		Kind:            KindGas,
		Description:     "The largest planet, a giant ball of gas.",
		Color:           "#E0A679",
		AtmosphereColor: "#2b2016",
		Radius:          9,
		Distance:        140,
		OrbitSpeed:      0.2,
		RotationSpeed:   0.04,
	},
	{
		ID:              "saturn",
		Name:            "Saturn",
		DisplayName:     "Saturn",
		Kind:            KindGas,
		Description:     "Lord of the rings, circled by vast bands of ice.",
		Color:           "#F4D03F",
		AtmosphereColor: "#2a2410",
		Radius:          8,
		Distance:        190,
		OrbitSpeed:      0.15,
		RotationSpeed:   0.038,
		HasRings:        true,
	},
	{
		ID:              "uranus",
		Name:            "Uranus",
		DisplayName:     "Uranus",
		Kind:            KindIce,
		Description:     "An ice giant, tinted blue by methane in its atmosphere.",
		Color:           "#00FFFF",
		AtmosphereColor: "#0d2a2e",
		Radius:          6,
		Distance:        240,
		OrbitSpeed:      0.1,
		RotationSpeed:   0.03,
	},
	{
		ID:              "neptune",
		Name:            "Neptune",
		DisplayName:     "Neptune",
		Kind:            KindIce,
		Description:     "The farthest and windiest planet, deep blue.",
		Color:           "#3355FF",
		AtmosphereColor: "#0c1533",
		Radius:          5.8,
		Distance:        280,
		OrbitSpeed:      0.08,
		RotationSpeed:   0.032,
	},
	{
		ID:            "proxima",
		Name:          "Proxima Centauri",
		DisplayName:   "Proxima Centauri",
		Kind:          KindStar,
		Description:   "Our nearest stellar neighbour.",
		Color:         "#FF3333",
		Radius:        6,
		Distance:      350,
		OrbitSpeed:    0.02,
		RotationSpeed: 0.01,
	},
	{
		ID:            "sirius",
		Name:          "Sirius",
		DisplayName:   "Sirius",
		Kind:          KindStar,
		Description:   "The brightest star in the night sky.",
		Color:         "#FFFFFF",
		Radius:        8,
		Distance:      420,
		OrbitSpeed:    0.015,
		RotationSpeed: 0.01,
	},
	{
		ID:            "betelgeuse",
		Name:          "Betelgeuse",
		DisplayName:   "Betelgeuse",
		Kind:          KindStar,
		Description:   "A red supergiant on the verge of going supernova.",
		Color:         "#FF6600",
		Radius:        18,
		Distance:      550,
		OrbitSpeed:    0.01,
		RotationSpeed: 0.005,
	},
	{
		ID:            "andromeda",
		Name:          "Andromeda Galaxy",
		DisplayName:   "Andromeda",
		Kind:          KindGalaxy,
		Description:   "The nearest giant spiral galaxy.",
		Color:         "#D8B4FE",
		Radius:        60,
		Distance:      900,
		OrbitSpeed:    0.005,
		RotationSpeed: 0.001,
	},
}

// All returns a copy of the catalog in display order.
func All() []Body {
	out := make([]Body, len(Bodies))
	copy(out, Bodies)
	return out
}

// ByID looks up a body by its identifier (case-insensitive).
func ByID(id string) (Body, bool) {
	id = strings.ToLower(strings.TrimSpace(id))
	for _, b := range Bodies {
		if b.ID == id {
			return b, true
		}
	}
	return Body{}, false
}

// Landable returns the bodies that have a surface view.
func Landable() []Body {
	var out []Body
	for _, b := range Bodies {
		if b.Kind.Landable() {
			out = append(out, b)
		}
	}
	return out
}
