package wg

import (
	"math"

	"github.com/unolab/unolayout/pkg/errors"
	"github.com/unolab/unolayout/pkg/layout"
	"github.com/unolab/unolayout/pkg/pdk"
	"github.com/unolab/unolayout/pkg/primitives"
)

// Apodization describes a grating whose fill factor falls linearly with
// distance from the first tooth. Period i is λc/(nᵢ − sin θ), with
// nᵢ = Fᵢ·No + (1−Fᵢ)·Ne and Fᵢ = F0 − R·xᵢ, where xᵢ is where the period
// starts.
type Apodization struct {
	// FiberAngle θ is the fiber tilt in degrees.
	FiberAngle float64 `json:"fiber_angle"`
	// N is the number of periods.
	N  int     `json:"n"`
	F0 float64 `json:"f0"`
	// R is the fill factor decrease per micron.
	R      float64 `json:"r"`
	Lambda float64 `json:"lambda_c"`
	No     float64 `json:"no"`
	Ne     float64 `json:"ne"`
}

// DefaultApodization returns the TE apodization at 1.55 µm.
func DefaultApodization() Apodization {
	return Apodization{FiberAngle: 12, N: 30, F0: 0.9, R: 0.025, Lambda: 1.55, No: 2.69, Ne: 1.444}
}

// Teeth returns the gap and tooth width of every period: each tooth is
// Fᵢ·Λᵢ wide and is preceded by a (1−Fᵢ)·Λᵢ gap.
func (a Apodization) Teeth(kind string) (gaps, widths []float64, err error) {
	if a.N < 1 {
		return nil, nil, errors.Parameter(kind, "n", "must be at least 1, got %d", a.N)
	}
	if !(a.Lambda > 0) {
		return nil, nil, errors.Parameter(kind, "lambda_c", "must be positive, got %g", a.Lambda)
	}
	sin := math.Sin(a.FiberAngle * math.Pi / 180)
	var x float64
	for i := 0; i < a.N; i++ {
		f := a.F0 - a.R*x
		if !(f > 0) || f > 1 {
			return nil, nil, errors.Parameter(kind, "f0/r", "fill factor of period %d is %g, outside (0, 1]", i, f)
		}
		neff := f*a.No + (1-f)*a.Ne
		if !(neff > sin) {
			return nil, nil, errors.Parameter(kind, "no/ne", "effective index %g of period %d does not exceed sin(fiber_angle)", neff, i)
		}
		period := a.Lambda / (neff - sin)
		widths = append(widths, f*period)
		gaps = append(gaps, (1-f)*period)
		x += period
	}
	return gaps, widths, nil
}

// ApodizedRectangularParams configures [ApodizedGratingCouplerRectangular].
type ApodizedRectangularParams struct {
	Apodization
	WidthGrating float64              `json:"width_grating"`
	LengthTaper  float64              `json:"length_taper"`
	Width        float64              `json:"width,omitempty"`
	XS           *layout.CrossSection `json:"-"`
}

// DefaultApodizedRectangularParams returns a 20 µm wide grating behind a
// 300 µm taper.
func DefaultApodizedRectangularParams() ApodizedRectangularParams {
	return ApodizedRectangularParams{Apodization: DefaultApodization(), WidthGrating: 20, LengthTaper: 300}
}

// ApodizedGratingCouplerRectangular returns a straight grating coupler
// with apodized teeth.
func ApodizedGratingCouplerRectangular(cfg *pdk.Config, p ApodizedRectangularParams) (*layout.Component, error) {
	gaps, widths, err := p.Teeth("apodized_grating_coupler_rectangular")
	if err != nil {
		return nil, err
	}
	return primitives.GratingCouplerRectangularArbitrary(cfg, primitives.GratingRectangularParams{
		Gaps:         gaps,
		Widths:       widths,
		WidthGrating: p.WidthGrating,
		LengthTaper:  p.LengthTaper,
		Width:        p.Width,
		XS:           p.XS,
	})
}

// ApodizedFocusedParams configures [ApodizedGratingCouplerFocused].
type ApodizedFocusedParams struct {
	Apodization
	LengthTaper float64 `json:"length_taper"`
	TaperAngle  float64 `json:"taper_angle"`
	// NEff and NClad shape the confocal tooth ellipses.
	NEff  float64              `json:"neff"`
	NClad float64              `json:"nclad"`
	Width float64              `json:"width,omitempty"`
	XS    *layout.CrossSection `json:"-"`
}

// DefaultApodizedFocusedParams returns a 40° focusing grating behind a
// 50 µm taper.
func DefaultApodizedFocusedParams() ApodizedFocusedParams {
	e := primitives.DefaultGratingEllipticalParams()
	return ApodizedFocusedParams{
		Apodization: DefaultApodization(),
		LengthTaper: 50,
		TaperAngle:  e.TaperAngle,
		NEff:        e.NEff,
		NClad:       e.NClad,
	}
}

// ApodizedGratingCouplerFocused returns a focusing grating coupler with
// apodized teeth. The fiber angle sets both the apodization and the
// ellipse eccentricity.
func ApodizedGratingCouplerFocused(cfg *pdk.Config, p ApodizedFocusedParams) (*layout.Component, error) {
	gaps, widths, err := p.Teeth("apodized_grating_coupler_focused")
	if err != nil {
		return nil, err
	}
	return primitives.GratingCouplerEllipticalArbitrary(cfg, primitives.GratingEllipticalParams{
		Gaps:        gaps,
		Widths:      widths,
		TaperLength: p.LengthTaper,
		TaperAngle:  p.TaperAngle,
		FiberAngle:  p.FiberAngle,
		NEff:        p.NEff,
		NClad:       p.NClad,
		Width:       p.Width,
		XS:          p.XS,
	})
}
