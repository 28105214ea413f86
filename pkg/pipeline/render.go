package pipeline

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"sort"

	"github.com/unolab/unolayout/pkg/buildinfo"
	"github.com/unolab/unolayout/pkg/gds"
	"github.com/unolab/unolayout/pkg/layout"
)

// Summary is the JSON artifact: what a downstream tool needs to place the
// chip without reading the GDS.
type Summary struct {
	Name     string             `json:"name"`
	BBox     [4]float64         `json:"bbox"`
	Cells    int                `json:"cells"`
	Polygons int                `json:"polygons"`
	Layers   []string           `json:"layers"`
	Ports    []PortSummary      `json:"ports,omitempty"`
	Info     map[string]float64 `json:"info,omitempty"`
	GDS      *gds.Stats         `json:"gds,omitempty"`
	// Generator names the tool version that produced the artifact.
	Generator string `json:"generator"`
}

// PortSummary describes one port of the top cell.
type PortSummary struct {
	Name        string  `json:"name"`
	X           float64 `json:"x"`
	Y           float64 `json:"y"`
	Orientation float64 `json:"orientation"`
	Width       float64 `json:"width"`
	Layer       string  `json:"layer"`
	Type        string  `json:"type"`
}

// Export writes top in the requested formats. libName names the GDS
// library.
func Export(top *layout.Component, libName string, opts Options) (map[string][]byte, error) {
	if err := opts.ValidateForExport(); err != nil {
		return nil, err
	}
	if opts.Flatten {
		top = flattenCell(top)
	}

	artifacts := make(map[string][]byte)
	for _, format := range opts.Formats {
		var data []byte
		var err error

		switch format {
		case FormatGDS:
			data, _, err = exportGDS(top, libName, opts)
		case FormatJSON:
			data, err = exportJSON(top, libName, opts)
		default:
			return nil, fmt.Errorf("unsupported format: %s", format)
		}

		if err != nil {
			return nil, fmt.Errorf("export %s: %w", format, err)
		}
		artifacts[format] = data
	}
	return artifacts, nil
}

func exportGDS(top *layout.Component, libName string, opts Options) ([]byte, gds.Stats, error) {
	var buf bytes.Buffer
	st, err := gds.Write(&buf, top, gds.Options{
		LibName:   libName,
		Unit:      opts.Unit,
		Precision: opts.Precision,
		Timestamp: opts.Timestamp,
	})
	if err != nil {
		return nil, gds.Stats{}, err
	}
	return buf.Bytes(), st, nil
}

// exportJSON summarizes top. The GDS record counts come from a stream
// written to io.Discard so the summary is the same whether or not the GDS
// artifact was requested alongside it.
func exportJSON(top *layout.Component, libName string, opts Options) ([]byte, error) {
	st, err := gds.Write(io.Discard, top, gds.Options{
		LibName:   libName,
		Unit:      opts.Unit,
		Precision: opts.Precision,
		Timestamp: opts.Timestamp,
	})
	if err != nil {
		return nil, err
	}
	s := Summarize(top)
	s.GDS = &st
	s.Generator = buildinfo.Generator()
	return json.MarshalIndent(s, "", "  ")
}

// Summarize collects the bounding box, hierarchy counts and ports of top.
func Summarize(top *layout.Component) Summary {
	b := top.BBox()
	s := Summary{
		Name: top.Name,
		BBox: [4]float64{b.LLx, b.LLy, b.URx, b.URy},
		Info: top.Info,
	}
	cells := top.Cells()
	s.Cells = len(cells)
	for _, c := range cells {
		s.Polygons += len(c.Polygons)
	}
	for _, l := range top.Layers() {
		s.Layers = append(s.Layers, l.String())
	}
	sort.Strings(s.Layers)
	for _, p := range top.Ports() {
		s.Ports = append(s.Ports, PortSummary{
			Name:        p.Name,
			X:           p.Center.X,
			Y:           p.Center.Y,
			Orientation: p.Orientation,
			Width:       p.Width,
			Layer:       p.Layer.String(),
			Type:        string(p.Type),
		})
	}
	if len(s.Info) == 0 {
		s.Info = nil
	}
	return s
}

// flattenCell returns a single cell holding every polygon and label of the
// hierarchy under top.
func flattenCell(top *layout.Component) *layout.Component {
	flat := layout.New(top.Name)
	flat.Polygons = top.Flatten()
	flat.Labels = top.FlatLabels()
	flat.AddPorts(top.Ports(), "")
	for k, v := range top.Info {
		flat.SetInfo(k, v)
	}
	return flat
}
