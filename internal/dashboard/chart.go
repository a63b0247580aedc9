package dashboard

import "fmt"

// Fixed chart geometry. The y axis always spans 20–45 °C.
const (
	ChartYMin = 20.0
	ChartYMax = 45.0

	chartWidth   = 520.0
	chartHeight  = 340.0
	marginLeft   = 56.0
	marginRight  = 16.0
	marginTop    = 40.0
	marginBottom = 40.0
	barFill      = 0.8 // share of a slot the bar occupies
	tickStep     = 5.0
	labelOffset  = 0.5 // °C above the bar top
)

// Bar is one horizon's bar in SVG user units.
type Bar struct {
	Horizon  string
	X        float64
	Y        float64
	Width    float64
	Height   float64
	Color    string
	HasValue bool
	Label    string
	LabelX   float64
	LabelY   float64
	// AxisX is the centre of the slot where the horizon name is printed.
	AxisX float64
}

type Tick struct {
	Value float64
	Y     float64
	Label string
}

// Chart is a bar chart of WBGT by horizon, ready for the SVG template.
type Chart struct {
	Title      string
	YLabel     string
	Width      float64
	Height     float64
	PlotLeft   float64
	PlotTop    float64
	PlotWidth  float64
	PlotHeight float64
	PlotBottom float64
	PlotRight  float64

	// Text anchors.
	TitleX     float64
	YLabelY    float64
	TickLabelX float64
	AxisLabelY float64

	Bars  []Bar
	Ticks []Tick
}

// BuildChart lays out one bar per result. Results without a value get an
// axis slot but no bar and no label.
func BuildChart(results []HorizonResult) Chart {
	c := Chart{
		Title:      "Predicted WBGT by Forecast Horizon",
		YLabel:     "WBGT (°C)",
		Width:      chartWidth,
		Height:     chartHeight,
		PlotLeft:   marginLeft,
		PlotTop:    marginTop,
		PlotWidth:  chartWidth - marginLeft - marginRight,
		PlotHeight: chartHeight - marginTop - marginBottom,
	}
	c.PlotBottom = c.PlotTop + c.PlotHeight
	c.PlotRight = c.PlotLeft + c.PlotWidth
	c.TitleX = c.Width / 2
	c.YLabelY = c.PlotTop + c.PlotHeight/2
	c.TickLabelX = c.PlotLeft - 6
	c.AxisLabelY = c.PlotBottom + 18

	for v := ChartYMin; v <= ChartYMax; v += tickStep {
		c.Ticks = append(c.Ticks, Tick{Value: v, Y: c.yFor(v), Label: fmt.Sprintf("%.0f", v)})
	}

	if len(results) == 0 {
		return c
	}

	slot := c.PlotWidth / float64(len(results))
	for i, r := range results {
		centre := c.PlotLeft + slot*(float64(i)+0.5)
		bar := Bar{
			Horizon: r.Horizon,
			Width:   slot * barFill,
			Color:   r.Band.Color,
			AxisX:   centre,
		}
		bar.X = centre - bar.Width/2

		if r.WBGT != nil {
			top := c.yFor(*r.WBGT)
			bar.HasValue = true
			bar.Y = top
			bar.Height = c.PlotBottom - top
			bar.Label = fmt.Sprintf("%.1f", *r.WBGT)
			bar.LabelX = centre
			bar.LabelY = c.yFor(*r.WBGT + labelOffset)
		}
		c.Bars = append(c.Bars, bar)
	}
	return c
}

// yFor maps a temperature to a y coordinate, clamped to the plot area.
func (c Chart) yFor(v float64) float64 {
	frac := (v - ChartYMin) / (ChartYMax - ChartYMin)
	if frac < 0 {
		frac = 0
	}
	if frac > 1 {
		frac = 1
	}
	return c.PlotTop + c.PlotHeight*(1-frac)
}
