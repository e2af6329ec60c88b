package choropleth

import (
	"bytes"
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"image/png"

	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"
)

const (
	legendPadding  = 10
	legendRow      = 22
	legendSwatch   = 16
	legendMinWidth = 160
)

// RenderLegendPNG draws a localised legend as a PNG: a title line followed by
// one swatch and label per entry. The bitmap face only covers ASCII, so labels
// in other scripts render as placeholder glyphs.
func RenderLegendPNG(lg Legend) ([]byte, error) {
	face := basicfont.Face7x13

	width := legendMinWidth
	if w := font.MeasureString(face, lg.Title).Ceil() + 2*legendPadding; w > width {
		width = w
	}
	for _, e := range lg.Entries {
		w := 2*legendPadding + legendSwatch + 8 + font.MeasureString(face, e.Label).Ceil()
		if w > width {
			width = w
		}
	}
	height := 2*legendPadding + legendRow*(len(lg.Entries)+1)

	img := image.NewNRGBA(image.Rect(0, 0, width, height))
	draw.Draw(img, img.Bounds(), &image.Uniform{C: color.NRGBA{255, 255, 255, 255}}, image.Point{}, draw.Src)

	ascent := face.Metrics().Ascent.Ceil()
	ink := color.NRGBA{33, 33, 33, 255}
	drawText(img, lg.Title, legendPadding, legendPadding+ascent, ink, face)

	for i, e := range lg.Entries {
		top := legendPadding + legendRow*(i+1)
		r, g, b, a := e.Color.RGBA()
		swatch := image.Rect(legendPadding, top, legendPadding+legendSwatch, top+legendSwatch)
		draw.Draw(img, swatch, &image.Uniform{C: color.NRGBA{r, g, b, a}}, image.Point{}, draw.Src)
		drawText(img, e.Label, legendPadding+legendSwatch+8, top+(legendSwatch+ascent)/2, ink, face)
	}

	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil, fmt.Errorf("encode legend png: %w", err)
	}
	return buf.Bytes(), nil
}

func drawText(img draw.Image, text string, x, y int, c color.NRGBA, face font.Face) {
	d := &font.Drawer{
		Dst:  img,
		Src:  image.NewUniform(c),
		Face: face,
		Dot:  fixed.P(x, y),
	}
	d.DrawString(text)
}
