package wg

import (
	"seehuhn.de/go/geom/vec"

	"github.com/unolab/unolayout/pkg/errors"
	"github.com/unolab/unolayout/pkg/layout"
	"github.com/unolab/unolayout/pkg/pdk"
	"github.com/unolab/unolayout/pkg/primitives"
)

// DieParams configures [DieAndFloorplan].
type DieParams struct {
	DieWidth float64 `json:"die_width"`
	DesWidth float64 `json:"des_width,omitempty"`
}

// DefaultDieParams returns a 10 mm die around the process design area.
func DefaultDieParams() DieParams {
	return DieParams{DieWidth: 10000}
}

// DieAndFloorplan returns the square die outline on DIE and the design
// area on FLOORPLAN, both centered on the origin.
func DieAndFloorplan(cfg *pdk.Config, p DieParams) (*layout.Component, error) {
	des := pdk.Or(p.DesWidth, cfg.DesWidth)
	if !(p.DieWidth > 0) || !(des > 0) {
		return nil, errors.Parameter("die_and_floorplan", "die_width/des_width", "must be positive, got %g/%g", p.DieWidth, des)
	}
	c := layout.New(layout.CellName("die_and_floorplan", p.DieWidth, des))
	c.Add(primitives.NewRectangle(p.DieWidth, p.DieWidth, cfg.Layers.Die, true))
	c.Add(primitives.NewRectangle(des, des, cfg.Layers.Floorplan, true))
	return c, nil
}

// Dimensions of the ANT multi-project wafer quadrant.
const (
	antDesWidth    = 8780
	antTrenchWidth = 260
	antOuterWidth  = 9300
)

// Ant4x4Template returns the ANT quadrant: the design area and the cross
// of deep edge trench that separates the four dies.
func Ant4x4Template(cfg *pdk.Config) *layout.Component {
	c := layout.New(layout.CellName("ant_4x4_template", cfg.Layers.Floorplan, cfg.Layers.AntEdgeTrench))
	c.Add(primitives.NewRectangle(antDesWidth, antDesWidth, cfg.Layers.Floorplan, true))
	c.Add(primitives.NewRectangle(antDesWidth, antTrenchWidth, cfg.Layers.AntEdgeTrench, true))
	c.Add(primitives.NewRectangle(antTrenchWidth, antDesWidth, cfg.Layers.AntEdgeTrench, true))
	return c
}

// AntTrenchPerimeter returns the edge trench ring between the ANT design
// area and the quadrant edge.
func AntTrenchPerimeter(cfg *pdk.Config) *layout.Component {
	c := layout.New(layout.CellName("ant_trench_perimeter", cfg.Layers.AntEdgeTrench))
	side := layout.New(layout.CellName("ant_trench_side", cfg.Layers.AntEdgeTrench))
	side.AddPolygon(cfg.Layers.AntEdgeTrench,
		vec.Vec2{X: -antOuterWidth / 2, Y: antDesWidth / 2},
		vec.Vec2{X: antOuterWidth / 2, Y: antDesWidth / 2},
		vec.Vec2{X: antOuterWidth / 2, Y: antOuterWidth / 2},
		vec.Vec2{X: -antOuterWidth / 2, Y: antOuterWidth / 2},
	)
	for _, angle := range []float64{0, 90, 180, 270} {
		c.Add(side).Rotate(angle)
	}
	return c
}

// MLACrossParams configures [MLACross].
type MLACrossParams struct {
	Thick  float64 `json:"thick"`
	Length float64 `json:"length"`
	// Dot marks the corner a cross belongs to with a circle DotDX/DotDY
	// below and left of its center.
	Dot    bool    `json:"dot,omitempty"`
	DotRad float64 `json:"dot_rad"`
	DotDX  float64 `json:"dot_dx"`
	DotDY  float64 `json:"dot_dy"`
	Layer  string  `json:"layer,omitempty"`
}

// DefaultMLACrossParams returns a 200 µm alignment cross on LABEL.
func DefaultMLACrossParams() MLACrossParams {
	return MLACrossParams{Thick: 20, Length: 200, DotRad: 10, DotDX: 50, DotDY: 50, Layer: "LABEL"}
}

// MLACross returns a maskless-lithography alignment cross.
func MLACross(cfg *pdk.Config, p MLACrossParams) (*layout.Component, error) {
	if !(p.Thick > 0) || p.Length < p.Thick {
		return nil, errors.Parameter("mla_cross", "thick/length", "need 0 < thick ≤ length, got %g/%g", p.Thick, p.Length)
	}
	if p.Dot && !(p.DotRad > 0) {
		return nil, errors.Parameter("mla_cross", "dot_rad", "must be positive, got %g", p.DotRad)
	}
	l, err := cfg.Layer(p.Layer, cfg.Layers.Label)
	if err != nil {
		return nil, err
	}
	return newMLACross(p, l), nil
}

func newMLACross(p MLACrossParams, l layout.Layer) *layout.Component {
	c := layout.New(layout.CellName("mla_cross", p, l))
	c.Add(primitives.NewCross(p.Length, p.Thick, l))
	if p.Dot {
		c.Add(primitives.NewCircle(p.DotRad, l)).Move(vec.Vec2{X: -p.DotDX, Y: -p.DotDY})
	}
	return c
}

// MLACrossesParams configures [MLACrosses].
type MLACrossesParams struct {
	DX    float64 `json:"dx"`
	DY    float64 `json:"dy"`
	Layer string  `json:"layer,omitempty"`
	// Arrow adds two "this way up" arrows at (±DX/2, DY).
	Arrow bool `json:"arrow"`
}

// DefaultMLACrossesParams returns crosses at (±4000, ±4000) with arrows.
func DefaultMLACrossesParams() MLACrossesParams {
	return MLACrossesParams{DX: 4000, DY: 4000, Layer: "LABEL", Arrow: true}
}

// MLACrosses returns four alignment crosses at (±DX, ±DY), mirrored into
// their quadrants.
func MLACrosses(cfg *pdk.Config, p MLACrossesParams) (*layout.Component, error) {
	l, err := cfg.Layer(p.Layer, cfg.Layers.Label)
	if err != nil {
		return nil, err
	}
	cross := newMLACross(DefaultMLACrossParams(), l)
	c := layout.New(layout.CellName("mla_crosses", p, l))
	for i := 0; i < 4; i++ {
		ref := c.Add(cross).Move(vec.Vec2{X: p.DX, Y: p.DY})
		if i == 1 || i == 3 {
			ref.MirrorX(0)
		}
		if i == 2 || i == 3 {
			ref.MirrorY(0)
		}
	}
	if p.Arrow {
		a := NewArrow(100, cfg.Layers.Label)
		c.Add(a).Move(vec.Vec2{X: p.DX / 2, Y: p.DY})
		c.Add(a).Move(vec.Vec2{X: -p.DX / 2, Y: p.DY})
	}
	return c, nil
}

// ArrowParams configures [Arrow].
type ArrowParams struct {
	Height float64 `json:"height"`
	Layer  string  `json:"layer,omitempty"`
}

// DefaultArrowParams returns a 25 µm arrow on LABEL.
func DefaultArrowParams() ArrowParams {
	return ArrowParams{Height: 25, Layer: "LABEL"}
}

// Arrow returns an upward arrow spanning y ∈ [−Height, Height].
func Arrow(cfg *pdk.Config, p ArrowParams) (*layout.Component, error) {
	if err := errors.ValidatePositive("arrow", "height", p.Height); err != nil {
		return nil, err
	}
	l, err := cfg.Layer(p.Layer, cfg.Layers.Label)
	if err != nil {
		return nil, err
	}
	return NewArrow(p.Height, l), nil
}

var arrowShape = []vec.Vec2{
	{X: -0.2, Y: -1}, {X: 0.2, Y: -1}, {X: 0.2, Y: 0.6}, {X: 0.4, Y: 0.6},
	{X: 0, Y: 1}, {X: -0.4, Y: 0.6}, {X: -0.2, Y: 0.6}, {X: -0.2, Y: 0},
}

// NewArrow builds an arrow of the given height.
func NewArrow(height float64, l layout.Layer) *layout.Component {
	c := layout.New(layout.CellName("arrow", height, l))
	pts := make([]vec.Vec2, len(arrowShape))
	for i, p := range arrowShape {
		pts[i] = p.Mul(height)
	}
	c.AddPolygon(l, pts...)
	return c
}

// BoschQuadrantsParams configures [BoschForQuadrants].
type BoschQuadrantsParams struct {
	BoschWidth float64 `json:"bosch_width,omitempty"`
	DesWidth   float64 `json:"des_width,omitempty"`
}

// BoschForQuadrants returns the cross of deep Bosch etch that splits the
// design area into four quadrants.
func BoschForQuadrants(cfg *pdk.Config, p BoschQuadrantsParams) (*layout.Component, error) {
	bw := pdk.Or(p.BoschWidth, cfg.BoschWidth)
	dw := pdk.Or(p.DesWidth, cfg.DesWidth)
	if !(bw > 0) || dw < bw {
		return nil, errors.Parameter("bosch_for_quadrants", "bosch_width/des_width", "need 0 < bosch_width ≤ des_width, got %g/%g", bw, dw)
	}
	c := layout.New(layout.CellName("bosch_for_quadrants", bw, dw))
	c.Add(primitives.NewRectangle(bw, dw, cfg.Layers.Bosch, true))
	c.Add(primitives.NewRectangle(dw, bw, cfg.Layers.Bosch, true))
	return c, nil
}

// DicingLanesParams configures [DicingLanes].
type DicingLanesParams struct {
	// LanesX are the x positions of vertical lanes, LanesY the y
	// positions of horizontal ones.
	LanesX []float64 `json:"lanes_x"`
	LanesY []float64 `json:"lanes_y"`
	// BladeWidth is the dicing kerf, used by the end ticks.
	BladeWidth float64 `json:"blade_width,omitempty"`
	// TickSeparation is the distance between the marks at both ends of
	// a lane.
	TickSeparation float64 `json:"tick_separation,omitempty"`
	TickLayer      string  `json:"tick_layer,omitempty"`
	Crosses        bool    `json:"crosses"`
	EndTicks       bool    `json:"end_ticks,omitempty"`
	Bosch          bool    `json:"bosch"`
	BoschWidth     float64 `json:"bosch_width,omitempty"`
	BoschLength    float64 `json:"bosch_length,omitempty"`
	BoschLayer     string  `json:"bosch_layer,omitempty"`
}

// DefaultDicingLanesParams returns crosses and Bosch trenches for no
// lanes; callers fill in LanesX and LanesY.
func DefaultDicingLanesParams() DicingLanesParams {
	return DicingLanesParams{TickLayer: "LABEL", Crosses: true, Bosch: true, BoschLayer: "BOSCH"}
}

// DicingLanes marks dicing lanes with alignment crosses at both ends,
// optional bevelled end ticks, and a Bosch trench along each lane.
func DicingLanes(cfg *pdk.Config, p DicingLanesParams) (*layout.Component, error) {
	const kind = "dicing_lanes"
	blade := pdk.Or(p.BladeWidth, cfg.DiceWidth)
	sep := pdk.Or(p.TickSeparation, cfg.DesWidth+500)
	bw := pdk.Or(p.BoschWidth, cfg.BoschWidth)
	bl := pdk.Or(p.BoschLength, cfg.DesWidth)
	if !(sep > 0) || !(bw > 0) || !(bl > 0) || !(blade > 0) {
		return nil, errors.Parameter(kind, "dimensions", "must be positive, got tick separation %g, bosch %g × %g, blade %g", sep, bw, bl, blade)
	}
	tl, err := cfg.Layer(p.TickLayer, cfg.Layers.Label)
	if err != nil {
		return nil, err
	}
	boschLayer, err := cfg.Layer(p.BoschLayer, cfg.Layers.Bosch)
	if err != nil {
		return nil, err
	}

	c := layout.New(layout.CellName(kind, p, blade, sep, bw, bl, tl, boschLayer))
	if p.Crosses {
		cross := newMLACross(DefaultMLACrossParams(), tl)
		for _, x := range p.LanesX {
			c.Add(cross).Move(vec.Vec2{X: x, Y: sep / 2})
			c.Add(cross).Move(vec.Vec2{X: x, Y: -sep / 2})
		}
		for _, y := range p.LanesY {
			c.Add(cross).Move(vec.Vec2{X: sep / 2, Y: y})
			c.Add(cross).Move(vec.Vec2{X: -sep / 2, Y: y})
		}
	}
	if p.EndTicks {
		ticks := NewDicingEndTicks(sep, blade, tl)
		for _, x := range p.LanesX {
			c.Add(ticks).Rotate(90).MoveX(x)
		}
		for _, y := range p.LanesY {
			c.Add(ticks).MoveY(y)
		}
	}
	if p.Bosch {
		vert := primitives.NewRectangle(bw, bl, boschLayer, true)
		horz := primitives.NewRectangle(bl, bw, boschLayer, true)
		for _, x := range p.LanesX {
			c.Add(vert).MoveX(x)
		}
		for _, y := range p.LanesY {
			c.Add(horz).MoveY(y)
		}
	}
	return c, nil
}

// DicingEndTicksParams configures [DicingEndTicks].
type DicingEndTicksParams struct {
	Separation float64 `json:"separation"`
	LaneWidth  float64 `json:"lane_width,omitempty"`
	Layer      string  `json:"layer,omitempty"`
}

// DicingEndTicks returns four bevelled ticks framing both ends of a
// horizontal lane: the ticks sit Separation apart and just outside the
// LaneWidth kerf.
func DicingEndTicks(cfg *pdk.Config, p DicingEndTicksParams) (*layout.Component, error) {
	lw := pdk.Or(p.LaneWidth, cfg.DiceWidth)
	if !(p.Separation > 0) || !(lw > 0) {
		return nil, errors.Parameter("dicing_end_ticks", "separation/lane_width", "must be positive, got %g/%g", p.Separation, lw)
	}
	l, err := cfg.Layer(p.Layer, cfg.Layers.Label)
	if err != nil {
		return nil, err
	}
	return NewDicingEndTicks(p.Separation, lw, l), nil
}

// NewDicingEndTicks builds the four end ticks of a lane.
func NewDicingEndTicks(sep, lane float64, l layout.Layer) *layout.Component {
	tick := NewDicingTick(75, 75, 5, l)
	c := layout.New(layout.CellName("dicing_end_ticks", sep, lane, l))
	c.Add(tick).Rotate(90).Move(vec.Vec2{X: sep / 2, Y: lane / 2})
	c.Add(tick).Rotate(180).Move(vec.Vec2{X: sep / 2, Y: -lane / 2})
	c.Add(tick).Move(vec.Vec2{X: -sep / 2, Y: lane / 2})
	c.Add(tick).Rotate(270).Move(vec.Vec2{X: -sep / 2, Y: -lane / 2})
	return c
}

// DicingTickParams configures [DicingTickSingle].
type DicingTickParams struct {
	W1       float64    `json:"w1"`
	W2       float64    `json:"w2"`
	Bevel    float64    `json:"bevel"`
	Layer    string     `json:"layer,omitempty"`
	Position [2]float64 `json:"position,omitempty"`
}

// DefaultDicingTickParams returns a 75 µm tick with a 5 µm bevel.
func DefaultDicingTickParams() DicingTickParams {
	return DicingTickParams{W1: 75, W2: 75, Bevel: 5, Layer: "LABEL"}
}

// DicingTickSingle returns an L-shaped corner tick: W1 along x, W2 along
// y, with the inner corner cut at Bevel.
func DicingTickSingle(cfg *pdk.Config, p DicingTickParams) (*layout.Component, error) {
	if !(p.Bevel > 0) || p.W1 <= p.Bevel || p.W2 <= p.Bevel {
		return nil, errors.Parameter("dicing_tick_single", "w1/w2/bevel", "need 0 < bevel < w1, w2, got %g/%g/%g", p.W1, p.W2, p.Bevel)
	}
	l, err := cfg.Layer(p.Layer, cfg.Layers.Label)
	if err != nil {
		return nil, err
	}
	c := NewDicingTick(p.W1, p.W2, p.Bevel, l)
	if p.Position != [2]float64{} {
		moved := layout.New(layout.CellName("dicing_tick_at", c.Name, p.Position))
		moved.Add(c).Move(vec.Vec2{X: p.Position[0], Y: p.Position[1]})
		return moved, nil
	}
	return c, nil
}

// NewDicingTick builds a tick at the origin.
func NewDicingTick(w1, w2, bevel float64, l layout.Layer) *layout.Component {
	c := layout.New(layout.CellName("dicing_tick", w1, w2, bevel, l))
	c.AddPolygon(l,
		vec.Vec2{X: 0, Y: 0},
		vec.Vec2{X: w1, Y: 0},
		vec.Vec2{X: w1, Y: bevel},
		vec.Vec2{X: bevel, Y: w2},
		vec.Vec2{X: 0, Y: w2},
	)
	return c
}
