// Package colormap implements a static catalog of named colormaps,
// grouped into the same categories as matplotlib's reference gallery, plus
// the thumbnail rendering used to preview a colormap as a small strip PNG.
package colormap

import (
	"bytes"
	"image"
	"image/color"
	"log"

	"github.com/cciaimaging/tilepyramid/internal/encode"
)

// DefaultName is used whenever a caller asks for an unknown colormap name.
const DefaultName = "jet"

// stop is one control point of a piecewise-linear gradient.
type stop struct {
	t    float64
	r, g, b byte
}

// Colormap maps a normalized value in [0, 1] to an RGBA color by linearly
// interpolating between control-point stops.
type Colormap struct {
	Name     string
	Category string
	stops    []stop
	bad      color.RGBA // color rendered for masked/invalid input, alpha 0
}

// At returns the interpolated color for t, clamped to [0, 1].
func (c Colormap) At(t float64) color.RGBA {
	if t <= c.stops[0].t {
		s := c.stops[0]
		return color.RGBA{R: s.r, G: s.g, B: s.b, A: 255}
	}
	last := c.stops[len(c.stops)-1]
	if t >= last.t {
		return color.RGBA{R: last.r, G: last.g, B: last.b, A: 255}
	}
	for i := 1; i < len(c.stops); i++ {
		if t > c.stops[i].t {
			continue
		}
		a, b := c.stops[i-1], c.stops[i]
		span := b.t - a.t
		f := 0.0
		if span > 0 {
			f = (t - a.t) / span
		}
		return color.RGBA{
			R: lerp(a.r, b.r, f),
			G: lerp(a.g, b.g, f),
			B: lerp(a.b, b.b, f),
			A: 255,
		}
	}
	return color.RGBA{R: last.r, G: last.g, B: last.b, A: 255}
}

// Bad returns the color rendered for masked or non-finite input: the
// colormap's "bad" color (black, by convention) at alpha 0.
func (c Colormap) Bad() color.RGBA { return c.bad }

func lerp(a, b byte, f float64) byte {
	return byte(float64(a) + (float64(b)-float64(a))*f)
}

// Category groups a set of related colormaps under a name and description,
// mirroring the reference gallery's category structure.
type Category struct {
	Name        string
	Description string
	Colormaps   []string
}

var (
	catalog    = map[string]Colormap{}
	categories []Category
)

func register(category string, stops []stop, names ...string) {
	for _, name := range names {
		if len(stops) < 2 {
			log.Printf("colormap: invalid colormap %q: fewer than two stops", name)
			continue
		}
		catalog[name] = Colormap{Name: name, Category: category, stops: stops, bad: color.RGBA{A: 0}}
	}
}

// Lookup returns the named colormap and whether it exists in the catalog.
func Lookup(name string) (Colormap, bool) {
	c, ok := catalog[name]
	return c, ok
}

// Categories returns the catalog's categories in reference-gallery order.
func Categories() []Category { return categories }

// Thumbnail renders the named colormap as a 256x2 PNG strip, mirroring the
// shape of the original's get_cmaps() output.
func Thumbnail(name string) ([]byte, error) {
	cm, ok := Lookup(name)
	if !ok {
		cm, _ = Lookup(DefaultName)
	}
	img := image.NewRGBA(image.Rect(0, 0, 256, 2))
	for x := 0; x < 256; x++ {
		c := cm.At(float64(x) / 255.0)
		img.SetRGBA(x, 0, c)
		img.SetRGBA(x, 1, c)
	}
	enc := &encode.PNGEncoder{}
	var buf bytes.Buffer
	data, err := enc.Encode(img)
	if err != nil {
		return nil, err
	}
	buf.Write(data)
	return buf.Bytes(), nil
}
