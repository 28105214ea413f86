package registry

import (
	"github.com/unolab/unolayout/pkg/awg"
	"github.com/unolab/unolayout/pkg/chips"
	"github.com/unolab/unolayout/pkg/devices"
	"github.com/unolab/unolayout/pkg/fixture"
	"github.com/unolab/unolayout/pkg/heater"
	"github.com/unolab/unolayout/pkg/primitives"
	"github.com/unolab/unolayout/pkg/teststruct"
	"github.com/unolab/unolayout/pkg/wg"
)

// Package groups used by `unolayout list`.
const (
	groupPrimitives = "primitives"
	groupWG         = "wg"
	groupHeater     = "heater"
	groupDevices    = "devices"
	groupAWG        = "awg"
	groupTest       = "teststruct"
	groupFixture    = "fixture"
	groupChips      = "chips"
)

// All is the canonical list of registered components. It is filled in
// init because nested builds look components up in it.
var All []*Spec

func init() {
	All = []*Spec{
		// primitives
		simple("straight", groupPrimitives, "straight waveguide", primitives.DefaultStraightParams, primitives.Straight),
		simple("bend_circular", groupPrimitives, "circular waveguide bend", primitives.DefaultBendParams, primitives.BendCircular),
		simple("bend_euler", groupPrimitives, "Euler waveguide bend", primitives.DefaultBendParams, primitives.BendEuler),
		simple("bend_s", groupPrimitives, "S-bend with a lateral offset", primitives.DefaultBendSParams, primitives.BendS),
		simple("taper", groupPrimitives, "linear width taper", primitives.DefaultTaperParams, primitives.Taper),
		simple("taper_cross_section", groupPrimitives, "taper between two cross-sections", primitives.DefaultTaperCrossSectionParams, primitives.TaperCrossSection),
		simple("rectangle", groupPrimitives, "filled rectangle", primitives.DefaultRectangleParams, primitives.Rectangle),
		simple("bbox", groupPrimitives, "filled box from its edges", func() primitives.BBoxParams {
			return primitives.BBoxParams{Right: 100, Top: 100}
		}, primitives.BBox),
		simple("circle", groupPrimitives, "filled circle", primitives.DefaultCircleParams, primitives.Circle),
		simple("cross", groupPrimitives, "alignment cross", primitives.DefaultCrossParams, primitives.Cross),
		simple("text", groupPrimitives, "polygon text", primitives.DefaultTextParams, primitives.Text),
		simple("version_stamp", groupPrimitives, "date and label stamp", primitives.DefaultVersionStampParams, primitives.VersionStamp),
		simple("coupler", groupPrimitives, "symmetric directional coupler", primitives.DefaultCouplerParams, primitives.Coupler),
		simple("coupler_straight", groupPrimitives, "two parallel straights", primitives.DefaultCouplerStraightParams, primitives.CouplerStraight),
		simple("mmi1x2", groupPrimitives, "1×2 multimode interference splitter", primitives.DefaultMMI1x2Params, primitives.MMI1x2),
		wrapping("mzi", groupPrimitives, "Mach-Zehnder interferometer around a splitter", "splitter",
			Child{Component: "mmi1x2"}, primitives.DefaultMZIParams, primitives.MZI),
		simple("grating_coupler_rectangular_arbitrary", groupPrimitives, "rectangular grating with per-tooth gaps and widths", primitives.DefaultGratingRectangularParams, primitives.GratingCouplerRectangularArbitrary),
		simple("grating_coupler_elliptical_arbitrary", groupPrimitives, "focusing grating with per-tooth gaps and widths", primitives.DefaultGratingEllipticalParams, primitives.GratingCouplerEllipticalArbitrary),
		wrapping("grating_coupler_array", groupPrimitives, "row of gratings at a fixed pitch", "grating",
			Child{Component: "grating_coupler_rectangular_arbitrary"}, primitives.DefaultGratingArrayParams, primitives.GratingCouplerArray),

		// wg
		simple("edge_coupler", groupWG, "inverse-taper edge coupler", zero[wg.EdgeCouplerParams], wg.EdgeCoupler),
		wrapping("edge_coupler_array", groupWG, "row of edge couplers", "coupler",
			Child{Component: "edge_coupler"}, wg.DefaultEdgeCouplerArrayParams, wg.EdgeCouplerArray),
		simple("edge_coupler_pair", groupWG, "input and output edge couplers on two chip edges", zero[wg.EdgeCouplerPairParams], wg.EdgeCouplerPair),
		simple("edge_coupler_tri", groupWG, "one input and two output edge couplers", zero[wg.EdgeCouplerTriParams], wg.EdgeCouplerTri),
		simple("straight_waveguide", groupWG, "edge coupler pair joined by a routed waveguide", zero[wg.EdgeCouplerPairParams], wg.StraightWaveguide),
		simple("coupler_asymmetric", groupWG, "asymmetric coupler section", wg.DefaultCouplerAsymmetricParams, wg.CouplerAsymmetric),
		simple("coupler_asymmetric_full", groupWG, "asymmetric coupler with bends", wg.DefaultCouplerAsymmetricFullParams, wg.CouplerAsymmetricFull),
		simple("asymmetric_coupler", groupWG, "asymmetric directional coupler", wg.DefaultAsymmetricCouplerParams, wg.AsymmetricCoupler),
		simple("fib_structures", groupWG, "focused-ion-beam cut test lines", wg.DefaultFIBParams, wg.FIBStructures),
		simple("random_fill_naive", groupWG, "grid fill with jittered squares", wg.DefaultRandomFillParams, wg.RandomFillNaive),
		simple("random_fill_poisson", groupWG, "Poisson-disc fill", wg.DefaultRandomFillParams, wg.RandomFillPoisson),
		simple("apodized_grating_coupler_rectangular", groupWG, "apodized rectangular grating coupler", wg.DefaultApodizedRectangularParams, wg.ApodizedGratingCouplerRectangular),
		simple("apodized_grating_coupler_focused", groupWG, "apodized focusing grating coupler", wg.DefaultApodizedFocusedParams, wg.ApodizedGratingCouplerFocused),
		simple("die_and_floorplan", groupWG, "die outline and design area", wg.DefaultDieParams, wg.DieAndFloorplan),
		simple("ant_4x4_template", groupWG, "4×4 chip template", zero[struct{}], fixed(wg.Ant4x4Template)),
		simple("ant_trench_perimeter", groupWG, "trench ring around the template", zero[struct{}], fixed(wg.AntTrenchPerimeter)),
		simple("mla_cross", groupWG, "maskless-lithography alignment cross", wg.DefaultMLACrossParams, wg.MLACross),
		simple("mla_crosses", groupWG, "alignment crosses at the die corners", wg.DefaultMLACrossesParams, wg.MLACrosses),
		simple("arrow", groupWG, "direction arrow", wg.DefaultArrowParams, wg.Arrow),
		simple("bosch_for_quadrants", groupWG, "Bosch etch cross splitting the die", zero[wg.BoschQuadrantsParams], wg.BoschForQuadrants),
		simple("dicing_lanes", groupWG, "dicing lane marks", wg.DefaultDicingLanesParams, wg.DicingLanes),
		simple("dicing_end_ticks", groupWG, "ticks framing both ends of a lane", func() wg.DicingEndTicksParams {
			return wg.DicingEndTicksParams{Separation: 1000}
		}, wg.DicingEndTicks),
		simple("dicing_tick_single", groupWG, "single bevelled dicing tick", wg.DefaultDicingTickParams, wg.DicingTickSingle),
		simple("normal_mmi_with_sbend", groupWG, "MMI with S-bend fan-out", zero[wg.NormalMMIParams], wg.NormalMMIWithSBend),
		simple("y_splitter_adiabatic", groupWG, "adiabatic Y splitter", wg.DefaultYSplitterParams, wg.YSplitterAdiabatic),
		simple("mode_filter", groupWG, "Euler-bend higher-order mode filter", zero[wg.ModeFilterParams], wg.ModeFilter),
		simple("timestamp", groupWG, "date stamp", wg.DefaultTimestampParams, wg.Timestamp),
		simple("designer_logo", groupWG, "designer logo", wg.DefaultLogoParams, wg.DesignerLogo),

		// heater
		simple("rect_heater", groupHeater, "straight heater strip with lead ports", heater.DefaultRectHeaterParams, heater.RectHeater),
		simple("rect_pad", groupHeater, "bond pad with routing port", heater.DefaultRectPadParams, heater.RectPad),
		wrapping("pad_array", groupHeater, "grid of pads", "pad",
			Child{Component: "rect_pad"}, heater.DefaultPadArrayParams, heater.PadArray),
		simple("snake_heater", groupHeater, "meandering heater", heater.DefaultSnakeHeaterParams, heater.SnakeHeater),

		// devices
		wrapping("mzi_unbalanced", groupDevices, "unbalanced MZI between edge couplers", "coupler",
			Child{Component: "coupler"}, devices.DefaultMZIUnbalancedParams, devices.MZIUnbalanced),
		simple("dir_pol_splitter", groupDevices, "directional polarization splitter", devices.DefaultDirPolSplitterParams, devices.DirPolSplitter),
		simple("racetrack", groupDevices, "racetrack resonator", devices.DefaultRacetrackParams, devices.Racetrack),
		wrapping("routed_racetrack", groupDevices, "racetrack routed to edge couplers", "ring",
			Child{Component: "racetrack"}, devices.DefaultRoutedRacetrackParams, devices.RoutedRacetrack),

		// awg
		simple("rowland_fsp", groupAWG, "free-space propagation region on a Rowland circle", awg.DefaultRowlandFSPParams, awg.RowlandFSP),
		simple("awg_bend", groupAWG, "array waveguide of exact length", func() awg.BendParams {
			return awg.BendParams{D: 100, Phi: 30, Length: 106}
		}, awg.Bend),
		simple("awg", groupAWG, "arrayed waveguide grating", awg.DefaultParams, awg.AWG),

		// teststruct
		simple("bosch_gap_test", groupTest, "row of Bosch trenches of increasing width", teststruct.DefaultBoschGapParams, teststruct.BoschGapTest),
		simple("bosch_bridge_test", groupTest, "waveguides across Bosch bridges", teststruct.DefaultBoschBridgeParams, teststruct.BoschBridgeTest),
		simple("routing_test_structure", groupTest, "two pads joined by a metal trace", teststruct.DefaultPadPairParams, teststruct.RoutingTestStructure),
		simple("straight_heater_test_structure", groupTest, "straight heater between pads", teststruct.DefaultStraightHeaterTestParams, teststruct.StraightHeaterTestStructure),
		simple("snake_heater_test_structure", groupTest, "snake heater between pads", teststruct.DefaultSnakeHeaterTestParams, teststruct.SnakeHeaterTestStructure),

		// fixture
		wrapping("generic_2port", groupFixture, "two-port device between edge couplers", "dut",
			Child{Component: "straight"}, fixture.DefaultGeneric2PortParams, fixture.Generic2Port),
		wrapping("generic_3port", groupFixture, "three-port device between edge couplers", "dut",
			Child{Component: "mmi1x2"}, fixture.DefaultGeneric3PortParams, fixture.Generic3Port),

		// chips
		wrapping("sixteen_grating_3rings", groupChips, "sixteen gratings with loopbacks and three rings", "grating",
			Child{Component: "apodized_grating_coupler_rectangular"}, chips.DefaultSixteenGratingParams, chips.SixteenGrating3Rings),
		simple("full_chip", groupChips, "full die with TE/TM grating rows", chips.DefaultFullChipParams, chips.FullChip),
	}
}
