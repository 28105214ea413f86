package wg

import (
	"time"

	"seehuhn.de/go/geom/vec"

	"github.com/unolab/unolayout/pkg/errors"
	"github.com/unolab/unolayout/pkg/gds"
	"github.com/unolab/unolayout/pkg/layout"
	"github.com/unolab/unolayout/pkg/pdk"
	"github.com/unolab/unolayout/pkg/primitives"
)

// timestampTextSize is the text height of [Timestamp].
const timestampTextSize = 50

// TimestampParams configures [Timestamp].
type TimestampParams struct {
	Position      [2]float64 `json:"position,omitempty"`
	QuadrantLabel string     `json:"quadrant_label"`
	// DesignerLogo is a GDS file placed to the right of the stamp,
	// bottom-aligned with it.
	DesignerLogo  string  `json:"designer_logo,omitempty"`
	LogoGDSHeight float64 `json:"logo_gds_height,omitempty"`
	// Time is the stamped instant; zero means now.
	Time time.Time `json:"-"`
}

// DefaultTimestampParams returns a stamp for an unnamed quadrant.
func DefaultTimestampParams() TimestampParams {
	return TimestampParams{QuadrantLabel: "QUAD_NAME", LogoGDSHeight: 64}
}

// Timestamp returns a version stamp (date, time, quadrant label) with its
// top-left line at Position and an optional designer logo beside it.
func Timestamp(cfg *pdk.Config, p TimestampParams) (*layout.Component, error) {
	vp := primitives.DefaultVersionStampParams()
	vp.Labels = []string{p.QuadrantLabel}
	vp.TextSize = timestampTextSize
	vp.Time = p.Time
	stamp, err := primitives.VersionStamp(cfg, vp)
	if err != nil {
		return nil, err
	}
	c := layout.New(layout.CellName("timestamp", stamp.Name, p.Position, p.DesignerLogo))
	s := c.Add(stamp).Move(vec.Vec2{X: p.Position[0], Y: p.Position[1]})
	if p.DesignerLogo != "" {
		logo, err := DesignerLogo(cfg, LogoParams{Height: 75, File: p.DesignerLogo, GDSHeight: p.LogoGDSHeight})
		if err != nil {
			return nil, err
		}
		l := c.Add(logo)
		l.Move(vec.Vec2{X: s.XMax() - l.XMax(), Y: s.YMin() - l.YMin()})
	}
	return c, nil
}

// LogoParams configures [DesignerLogo].
type LogoParams struct {
	// Height is the placed logo height.
	Height float64 `json:"height"`
	// File is a GDS file holding the logo, assumed square.
	File string `json:"file"`
	// GDSHeight is the logo height inside File.
	GDSHeight float64 `json:"gds_height"`
}

// DefaultLogoParams returns a 75 µm logo drawn 64 units high.
func DefaultLogoParams() LogoParams {
	return LogoParams{Height: 75, GDSHeight: 64}
}

// DesignerLogo imports the top structure of a GDS file, flattens it,
// scales it to Height and puts every polygon on LABEL.
func DesignerLogo(cfg *pdk.Config, p LogoParams) (*layout.Component, error) {
	if p.File == "" {
		return nil, errors.Parameter("designer_logo", "file", "no designer logo file supplied")
	}
	if !(p.Height > 0) || !(p.GDSHeight > 0) {
		return nil, errors.Parameter("designer_logo", "height/gds_height", "must be positive, got %g/%g", p.Height, p.GDSHeight)
	}
	lib, err := gds.ReadFile(p.File)
	if err != nil {
		return nil, err
	}
	top, err := lib.Top()
	if err != nil {
		return nil, err
	}
	polys, err := lib.Flatten(top)
	if err != nil {
		return nil, err
	}
	scale := p.Height / p.GDSHeight
	c := layout.New(layout.CellName("designer_logo", p, top))
	for _, poly := range polys {
		pts := make([]vec.Vec2, len(poly.Points))
		for i, pt := range poly.Points {
			pts[i] = pt.Mul(scale)
		}
		c.AddPolygon(cfg.Layers.Label, pts...)
	}
	return c, nil
}
