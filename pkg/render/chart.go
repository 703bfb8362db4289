package render

import (
	"bytes"
	"encoding/xml"
	"image"
	"image/color"
	"image/png"
	"strconv"
	"strings"
	"sync"

	"f1schedulebot/pkg/views"

	"github.com/llgcode/draw2d"
	"github.com/llgcode/draw2d/draw2dimg"
	"github.com/llgcode/draw2d/draw2dkit"
	"github.com/llgcode/draw2d/draw2dsvg"
	"github.com/pkg/errors"
)

const (
	ChartWidth  = 300
	barHeight   = 6.0
	barGap      = 1.0
	chartMargin = 4.0
)

var (
	mu         = sync.Mutex{}
	background = color.RGBA{0x00, 0x00, 0x00, 0xff}
	track      = color.RGBA{0x33, 0x33, 0x33, 0xff}
)

// ChartHeight is the height needed to draw one bar per row.
func ChartHeight(rows int) int {
	return int(2*chartMargin + float64(rows)*(barHeight+barGap))
}

// ResultsChartPNG draws one bar per classified driver, in finishing order,
// as long as the laps they completed and coloured with their team colour.
func ResultsChartPNG(rows []views.ResultRow) ([]byte, error) {
	mu.Lock()
	defer mu.Unlock()
	if len(rows) == 0 {
		return nil, errors.New("no results to draw")
	}

	dest := image.NewRGBA(image.Rect(0, 0, ChartWidth, ChartHeight(len(rows))))
	gc := draw2dimg.NewGraphicContext(dest)
	drawChart(gc, rows)

	var b bytes.Buffer
	if err := png.Encode(&b, dest); err != nil {
		return nil, errors.Wrap(err, "encode chart png")
	}
	return b.Bytes(), nil
}

func ResultsChartSVG(rows []views.ResultRow) ([]byte, error) {
	mu.Lock()
	defer mu.Unlock()
	if len(rows) == 0 {
		return nil, errors.New("no results to draw")
	}

	dest := draw2dsvg.NewSvg()
	gc := draw2dsvg.NewGraphicContext(dest)
	drawChart(gc, rows)

	var b bytes.Buffer
	b.WriteString(xml.Header)
	if err := xml.NewEncoder(&b).Encode(dest); err != nil {
		return nil, errors.Wrap(err, "encode chart svg")
	}
	return b.Bytes(), nil
}

func drawChart(gc draw2d.GraphicContext, rows []views.ResultRow) {
	height := float64(ChartHeight(len(rows)))
	fillRect(gc, background, 0, 0, ChartWidth, height)

	maxLaps := 0
	for _, row := range rows {
		if row.Laps > maxLaps {
			maxLaps = row.Laps
		}
	}
	full := ChartWidth - 2*chartMargin

	for idx, row := range rows {
		y := chartMargin + float64(idx)*(barHeight+barGap)
		fillRect(gc, track, chartMargin, y, chartMargin+full, y+barHeight)
		if maxLaps == 0 || row.Laps == 0 {
			continue
		}
		length := full * float64(row.Laps) / float64(maxLaps)
		fillRect(gc, ParseColour(row.TeamColour), chartMargin, y, chartMargin+length, y+barHeight)
	}
}

func fillRect(gc draw2d.GraphicContext, c color.Color, x1, y1, x2, y2 float64) {
	gc.Save()
	gc.SetFillColor(c)
	gc.BeginPath()
	draw2dkit.Rectangle(gc, x1, y1, x2, y2)
	gc.Fill()
	gc.Restore()
}

// ParseColour reads "#RRGGBB" or "RRGGBB"; anything else is grey.
func ParseColour(hex string) color.RGBA {
	hex = strings.TrimPrefix(hex, "#")
	grey := color.RGBA{0x88, 0x88, 0x88, 0xff}
	if len(hex) != 6 {
		return grey
	}
	v, err := strconv.ParseUint(hex, 16, 32)
	if err != nil {
		return grey
	}
	return color.RGBA{uint8(v >> 16), uint8(v >> 8), uint8(v), 0xff}
}
