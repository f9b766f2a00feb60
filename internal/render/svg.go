// Package render draws scenes as SVG and self-contained HTML pages.
package render

import (
	"bytes"
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"

	svg "github.com/ajstarks/svgo"

	"github.com/hitboard/hitboard/internal/scene"
)

const fontFamily = `font-family="-apple-system,BlinkMacSystemFont,&quot;Segoe UI&quot;,Roboto,Helvetica,Arial,sans-serif"`

// errWriter remembers the first write error; svgo does not report them.
type errWriter struct {
	w   io.Writer
	err error
}

func (e *errWriter) Write(p []byte) (int, error) {
	if e.err != nil {
		return 0, e.err
	}
	n, err := e.w.Write(p)
	e.err = err
	return n, err
}

// SVG writes sc as a standalone SVG document.
func SVG(w io.Writer, sc *scene.Scene) error {
	if sc == nil {
		return fmt.Errorf("scene cannot be nil")
	}
	ew := &errWriter{w: w}
	canvas := svg.New(ew)
	canvas.Start(int(math.Ceil(sc.Width)), int(math.Ceil(sc.Height)),
		fontFamily, `font-size="12px"`, fmt.Sprintf(`data-chart="%s"`, sc.Chart))
	if sc.Title != "" {
		canvas.Title(sc.Title)
	}
	canvas.Rect(0, 0, int(math.Ceil(sc.Width)), int(math.Ceil(sc.Height)), `fill="#ffffff"`)

	// Message scenes are laid out in canvas coordinates.
	if sc.Message == "" {
		ox, oy := sc.Margin.Left, sc.Margin.Top
		if sc.Origin != (scene.XY{}) {
			ox, oy = sc.Origin.X, sc.Origin.Y
		}
		canvas.Gtransform(fmt.Sprintf("translate(%s,%s)", num(ox), num(oy)))
	}
	for i, sh := range sc.Shapes {
		drawShape(canvas, i, sh)
	}
	if sc.Message == "" {
		canvas.Gend()
	}
	canvas.End()
	return ew.err
}

// SVGString renders sc to a string.
func SVGString(sc *scene.Scene) (string, error) {
	var buf bytes.Buffer
	if err := SVG(&buf, sc); err != nil {
		return "", err
	}
	return buf.String(), nil
}

func drawShape(canvas *svg.SVG, i int, sh scene.Shape) {
	attrs := attributes(i, sh)
	switch sh.Kind {
	case scene.KindRect:
		canvas.Rect(round(sh.X), round(sh.Y), round(sh.W), round(sh.H), attrs...)
	case scene.KindLine:
		canvas.Line(round(sh.X), round(sh.Y), round(sh.X2), round(sh.Y2), attrs...)
	case scene.KindCircle:
		canvas.Circle(round(sh.X), round(sh.Y), round(sh.R), attrs...)
	case scene.KindPath:
		canvas.Path(sh.D, attrs...)
	case scene.KindPolyline:
		if d := pathData(sh.Points, false); d != "" {
			canvas.Path(d, attrs...)
		}
	case scene.KindPolygon:
		if d := pathData(sh.Points, true); d != "" {
			canvas.Path(d, attrs...)
		}
	case scene.KindText:
		lines := strings.Split(sh.Text, "\n")
		for k, line := range lines {
			y := sh.Y + float64(k)*fontSize(sh)*1.1
			canvas.Text(round(sh.X), round(y), line, attrs...)
		}
	}
}

// attributes returns svgo attribute strings. svgo treats any argument
// containing '=' as raw attributes.
func attributes(i int, sh scene.Shape) []string {
	var b strings.Builder
	attr := func(k, v string) {
		if v != "" {
			fmt.Fprintf(&b, ` %s="%s"`, k, escape(v))
		}
	}
	attr("class", sh.Class)
	attr("data-id", sh.ID)
	attr("data-i", strconv.Itoa(i))

	fill := sh.Fill
	if fill == "" && sh.Kind != scene.KindLine {
		switch sh.Kind {
		case scene.KindText:
			fill = "#333333"
		case scene.KindPolyline:
			fill = "none"
		}
	}
	attr("fill", fill)
	attr("stroke", sh.Stroke)
	if sh.StrokeWidth > 0 {
		attr("stroke-width", num(sh.StrokeWidth))
	}
	attr("stroke-dasharray", sh.Dash)
	if sh.Opacity < 1 {
		attr("opacity", num(sh.Opacity))
	}

	if sh.Kind == scene.KindText {
		attr("text-anchor", sh.Anchor)
		attr("dominant-baseline", sh.Baseline)
		if sh.FontSize > 0 {
			attr("font-size", num(sh.FontSize))
		}
		if sh.Bold {
			attr("font-weight", "bold")
		}
	}
	return []string{strings.TrimSpace(b.String())}
}

func fontSize(sh scene.Shape) float64 {
	if sh.FontSize > 0 {
		return sh.FontSize
	}
	return 12
}

func pathData(points []scene.XY, closed bool) string {
	var path []byte
	for i, p := range points {
		if !isFinite(p.X) || !isFinite(p.Y) {
			continue
		}
		if len(path) == 0 {
			path = append(path, 'M')
		} else if i > 0 {
			path = append(path, 'L')
		}
		path = strconv.AppendFloat(path, p.X, 'g', 6, 64)
		path = append(path, ' ')
		path = strconv.AppendFloat(path, p.Y, 'g', 6, 64)
	}
	if closed && len(path) > 0 {
		path = append(path, 'Z')
	}
	return string(path)
}

func isFinite(x float64) bool { return !math.IsNaN(x) && !math.IsInf(x, 0) }

func round(x float64) int {
	if !isFinite(x) {
		return 0
	}
	return int(math.Round(x))
}

func num(x float64) string { return strconv.FormatFloat(x, 'g', 6, 64) }

var attrEscaper = strings.NewReplacer(`&`, "&amp;", `<`, "&lt;", `>`, "&gt;", `"`, "&quot;")

func escape(s string) string { return attrEscaper.Replace(s) }
