package primitives

import (
	"time"

	"seehuhn.de/go/geom/vec"

	"github.com/unolab/unolayout/pkg/errors"
	"github.com/unolab/unolayout/pkg/layout"
	"github.com/unolab/unolayout/pkg/pdk"
)

// VersionStampParams configures [VersionStamp].
type VersionStampParams struct {
	Labels   []string `json:"labels,omitempty"`
	TextSize float64  `json:"text_size,omitempty"`
	Layer    string   `json:"layer,omitempty"`
	// Time is the stamped instant; zero means now.
	Time time.Time `json:"-"`
}

// DefaultVersionStampParams returns a stamp on the LABEL layer.
func DefaultVersionStampParams() VersionStampParams {
	return VersionStampParams{TextSize: 10, Layer: "LABEL"}
}

// lineSpacing is the baseline distance between stamp lines in text
// heights.
const lineSpacing = 1.5

// VersionStamp writes the build date, the build time and then each label
// on its own line, top line at the origin and the rest below it.
func VersionStamp(cfg *pdk.Config, p VersionStampParams) (*layout.Component, error) {
	size := pdk.Or(p.TextSize, cfg.TextSize)
	if size < 0 {
		return nil, errors.Parameter("version_stamp", "text_size", "must be positive, got %g", size)
	}
	l, err := cfg.Layer(p.Layer, cfg.Layers.Label)
	if err != nil {
		return nil, err
	}
	t := p.Time
	if t.IsZero() {
		t = time.Now()
	}
	lines := append([]string{t.Format("2006-01-02"), t.Format("15:04:05")}, p.Labels...)

	c := layout.New(layout.CellName("version_stamp", lines, size, l))
	for i, s := range lines {
		if s == "" {
			continue
		}
		txt, err := layout.Text(s, size, l, layout.JustifyLeft)
		if err != nil {
			return nil, err
		}
		c.Add(txt).Move(vec.Vec2{Y: -lineSpacing * size * float64(i)})
	}
	c.SetInfo("lines", float64(len(lines)))
	return c, nil
}
