package surface

import (
	"encoding/json"
	"fmt"
	"io"
	"math"
	"strings"

	"github.com/ali-sdg/cosmos-walker/internal/catalog"
	"github.com/ali-sdg/cosmos-walker/internal/scatter"
	"github.com/ali-sdg/cosmos-walker/internal/terrain"
)

// MeshExport is the JSON-serializable representation of a built surface.
type MeshExport struct {
	Body     string       `json:"body"`
	Class    string       `json:"class"`
	Seed     uint64       `json:"seed"`
	Extent   float64      `json:"extent"`
	Segments int          `json:"segments"`
	Animated bool         `json:"animated"`
	Heights  []float64    `json:"heights"` // row-major, rows along +Z
	Colors   []string     `json:"colors"`  // hex, same order as Heights
	Rocks    []RockExport `json:"rocks,omitempty"`
	Sky      SkyExport    `json:"sky"`
}

// SkyExport carries the lighting a renderer needs to draw the surface.
type SkyExport struct {
	Background string     `json:"background"`
	Sun        [3]float64 `json:"sun"`
	Intensity  float64    `json:"intensity"`
	Ambient    float64    `json:"ambient"`
	Tint       string     `json:"tint"`
	FogNear    float64    `json:"fog_near"`
	FogFar     float64    `json:"fog_far"`
	Stars      bool       `json:"stars"`
}

// RockExport is a JSON-friendly scatter instance.
type RockExport struct {
	Layer    string     `json:"layer"`
	Position [3]float64 `json:"position"`
	Rotation [3]float64 `json:"rotation"`
	Scale    [3]float64 `json:"scale"`
	Color    string     `json:"color"`
}

// FrameExport carries one animation frame: elevations only, since colours and
// grid positions do not change.
type FrameExport struct {
	Time    float64   `json:"t"`
	Heights []float64 `json:"heights"`
}

// Export converts a built mesh and its rocks to an exportable format.
func Export(m *Mesh, rocks []scatter.Instance) *MeshExport {
	out := &MeshExport{
		Body:     m.body.ID,
		Class:    terrain.Classify(m.body).String(),
		Seed:     m.terrain.Field().Seed(),
		Extent:   m.cfg.Extent,
		Segments: m.cfg.Segments,
		Animated: m.animated,
		Heights:  roundAll(m.heights),
		Colors:   make([]string, len(m.colors)),
		Sky:      exportSky(m.body),
	}
	for k, c := range m.colors {
		out.Colors[k] = c.Hex()
	}
	for _, r := range rocks {
		out.Rocks = append(out.Rocks, RockExport{
			Layer:    r.Layer,
			Position: r.Position,
			Rotation: r.Rotation,
			Scale:    r.Scale,
			Color:    r.Color.Hex(),
		})
	}
	return out
}

func exportSky(b catalog.Body) SkyExport {
	l := LightingFor(b)
	return SkyExport{
		Background: l.Sky.Hex(),
		Sun:        l.Sun,
		Intensity:  l.Intensity,
		Ambient:    l.Ambient,
		Tint:       l.Tint.Hex(),
		FogNear:    l.FogNear,
		FogFar:     l.FogFar,
		Stars:      b.AtmosphereColor == "",
	}
}

// Frame captures the current elevations at time t.
func Frame(m *Mesh, t float64) *FrameExport {
	return &FrameExport{Time: t, Heights: roundAll(m.heights)}
}

// WriteJSON writes the export as JSON to the given writer.
func (e *MeshExport) WriteJSON(w io.Writer) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(e)
}

// Stats summarises the elevation buffer.
type Stats struct {
	Min, Max, Mean float64
	Rocks          int
}

// Summarize computes elevation statistics.
func Summarize(m *Mesh, rocks []scatter.Instance) Stats {
	s := Stats{Min: math.Inf(1), Max: math.Inf(-1), Rocks: len(rocks)}
	sum := 0.0
	for _, h := range m.heights {
		s.Min = math.Min(s.Min, h)
		s.Max = math.Max(s.Max, h)
		sum += h
	}
	if len(m.heights) > 0 {
		s.Mean = sum / float64(len(m.heights))
	}
	return s
}

// WriteSummary writes a short text report of the surface.
func WriteSummary(w io.Writer, m *Mesh, rocks []scatter.Instance) {
	s := Summarize(m, rocks)
	fmt.Fprintf(w, "Surface of %s (%s)\n", m.body.DisplayName, terrain.Classify(m.body))
	fmt.Fprintln(w, strings.Repeat("─", 40))
	fmt.Fprintf(w, "%-10s %d x %d vertices, %.0f units\n", "Grid", m.Side(), m.Side(), m.cfg.Extent)
	fmt.Fprintf(w, "%-10s %.2f .. %.2f (mean %.2f)\n", "Elevation", s.Min, s.Max, s.Mean)
	fmt.Fprintf(w, "%-10s %d\n", "Rocks", s.Rocks)
	if m.animated {
		fmt.Fprintf(w, "%-10s %s\n", "Motion", "rolling cloud deck")
	}
}

func roundAll(hs []float64) []float64 {
	out := make([]float64, len(hs))
	for i, h := range hs {
		out[i] = math.Round(h*1000) / 1000
	}
	return out
}
