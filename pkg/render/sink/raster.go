package sink

import (
	"bytes"
	"image"
	"image/color"
	"image/png"
	"math"
	"sync"

	"github.com/HugoSmits86/nativewebp"
	"golang.org/x/image/draw"
	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/goregular"
	"golang.org/x/image/font/opentype"
	"golang.org/x/image/math/fixed"

	"github.com/matzehuels/spheregrid/pkg/render"
)

// maxCanvasPixels bounds the supersampled drawing canvas (128 MiB of RGBA).
// Larger outputs are drawn with a lower supersample factor.
const maxCanvasPixels = 1 << 25

// RasterOption configures PNG and WebP rendering.
type RasterOption func(*rasterRenderer)

type rasterRenderer struct {
	scale       float64
	supersample int
	background  color.Color
	labels      bool
}

// WithScale sets the output scale factor (default 1).
func WithScale(s float64) RasterOption {
	return func(r *rasterRenderer) {
		if s > 0 {
			r.scale = s
		}
	}
}

// WithSupersample sets how many times larger the frame is drawn before it is
// filtered down (default 4).
func WithSupersample(n int) RasterOption {
	return func(r *rasterRenderer) {
		if n > 0 {
			r.supersample = n
		}
	}
}

// WithRasterBackground fills the image before drawing. The default is transparent.
func WithRasterBackground(c color.Color) RasterOption {
	return func(r *rasterRenderer) { r.background = c }
}

// WithoutRasterLabels draws bare discs.
func WithoutRasterLabels() RasterOption { return func(r *rasterRenderer) { r.labels = false } }

func newRasterRenderer(opts ...RasterOption) rasterRenderer {
	r := rasterRenderer{scale: 1, supersample: 4, labels: true}
	for _, opt := range opts {
		opt(&r)
	}
	return r
}

// RenderImage rasterizes f.
func RenderImage(f render.Frame, opts ...RasterOption) *image.RGBA {
	r := newRasterRenderer(opts...)

	width := max(1, int(math.Round(f.Width*r.scale)))
	height := max(1, int(math.Round(f.Height*r.scale)))
	n := canvasSupersample(width, height, r.supersample)
	k := r.scale * float64(n)

	big := image.NewRGBA(image.Rect(0, 0, width*n, height*n))
	if r.background != nil {
		draw.Draw(big, big.Bounds(), image.NewUniform(r.background), image.Point{}, draw.Src)
	}

	faces := faceCache{}
	for _, e := range f.PaintOrder() {
		alpha := uint8(math.Round(255 * min(1, e.Opacity)))
		disc := &circleMask{cx: e.X * k, cy: e.Y * k, r: e.Size / 2 * k, alpha: alpha}
		draw.DrawMask(big, disc.Bounds(), image.NewUniform(NodeColor(e.Index)), image.Point{}, disc, disc.Bounds().Min, draw.Over)

		if r.labels && e.Name != "" {
			face, err := faces.get(labelSize(e.Size) * k)
			if err == nil {
				drawTextCentered(big, face, e.X*k, e.Y*k, e.Name, color.NRGBA{255, 255, 255, alpha})
			}
		}
	}

	// The canvas is premultiplied already, so it can be filtered directly.
	dst := image.NewRGBA(image.Rect(0, 0, width, height))
	draw.CatmullRom.Scale(dst, dst.Bounds(), big, big.Bounds(), draw.Src, nil)
	return dst
}

// canvasSupersample lowers want until a width x height output drawn at that
// factor fits maxCanvasPixels. It never goes below 1.
func canvasSupersample(width, height, want int) int {
	n := max(1, want)
	for n > 1 && width*n*height*n > maxCanvasPixels {
		n--
	}
	return n
}

// RenderPNG renders f as PNG.
func RenderPNG(f render.Frame, opts ...RasterOption) ([]byte, error) {
	var buf bytes.Buffer
	if err := png.Encode(&buf, RenderImage(f, opts...)); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// RenderWebP renders f as lossless WebP.
func RenderWebP(f render.Frame, opts ...RasterOption) ([]byte, error) {
	var buf bytes.Buffer
	if err := nativewebp.Encode(&buf, RenderImage(f, opts...), nil); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// circleMask is an alpha mask that is opaque (up to alpha) inside a disc.
type circleMask struct {
	cx, cy, r float64
	alpha     uint8
}

func (c *circleMask) ColorModel() color.Model { return color.AlphaModel }

func (c *circleMask) Bounds() image.Rectangle {
	return image.Rect(
		int(math.Floor(c.cx-c.r)), int(math.Floor(c.cy-c.r)),
		int(math.Ceil(c.cx+c.r))+1, int(math.Ceil(c.cy+c.r))+1,
	)
}

func (c *circleMask) At(x, y int) color.Color {
	dx := float64(x) + 0.5 - c.cx
	dy := float64(y) + 0.5 - c.cy
	if dx*dx+dy*dy <= c.r*c.r {
		return color.Alpha{A: c.alpha}
	}
	return color.Alpha{}
}

var goRegular = sync.OnceValues(func() (*opentype.Font, error) {
	return opentype.Parse(goregular.TTF)
})

// faceCache holds Go Regular faces by whole-pixel size. Faces are not safe
// for concurrent use, so each render gets its own cache.
type faceCache map[int]font.Face

func (fc faceCache) get(size float64) (font.Face, error) {
	px := max(1, int(math.Round(size)))
	if f, ok := fc[px]; ok {
		return f, nil
	}

	fnt, err := goRegular()
	if err != nil {
		return nil, err
	}
	face, err := opentype.NewFace(fnt, &opentype.FaceOptions{
		Size:    float64(px),
		DPI:     72,
		Hinting: font.HintingNone,
	})
	if err != nil {
		return nil, err
	}
	fc[px] = face
	return face, nil
}

func drawTextCentered(dst draw.Image, face font.Face, x, y float64, text string, c color.Color) {
	width := font.MeasureString(face, text)
	m := face.Metrics()
	// Center the glyph box vertically on y.
	baseline := y + float64(m.Ascent-m.Descent)/64/2

	d := &font.Drawer{
		Dst:  dst,
		Src:  image.NewUniform(c),
		Face: face,
		Dot: fixed.Point26_6{
			X: fixed.Int26_6(x*64) - width/2,
			Y: fixed.Int26_6(baseline * 64),
		},
	}
	d.DrawString(text)
}
