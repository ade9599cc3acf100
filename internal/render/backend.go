package render

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	"image/png"
	"io"

	chart "github.com/wcharczuk/go-chart/v2"
)

// ContentTypePNG is the media type of every rendered image.
const ContentTypePNG = "image/png"

// ErrCanvasReleased is returned when a canvas is used after Release.
var ErrCanvasReleased = errors.New("canvas already released")

// ErrCanvasEmpty is returned by Image when nothing was drawn.
var ErrCanvasEmpty = errors.New("canvas has no content")

// Image is a rendered, encoded chart.
type Image struct {
	Data        []byte
	Width       int
	Height      int
	ContentType string
}

// Plotter draws itself with a go-chart renderer provider.
type Plotter interface {
	Render(rp chart.RendererProvider, w io.Writer) error
}

// Canvas is a single-use drawing surface. Plot and Paint replace earlier
// content; Release must be called exactly once when the caller is done.
type Canvas interface {
	Plot(p Plotter) error
	Paint(img image.Image) error
	Image() (Image, error)
	Release()
}

// Backend creates canvases.
type Backend interface {
	Create(width, height int) (Canvas, error)
}

// PNGBackend renders go-chart plots and raster images to PNG.
type PNGBackend struct{}

// Create returns a PNG canvas of the given size.
func (PNGBackend) Create(width, height int) (Canvas, error) {
	if width <= 0 || height <= 0 {
		return nil, fmt.Errorf("invalid canvas size %dx%d", width, height)
	}
	return &pngCanvas{width: width, height: height}, nil
}

type pngCanvas struct {
	width, height int
	buf           bytes.Buffer
	released      bool
}

func (c *pngCanvas) Plot(p Plotter) error {
	if c.released {
		return ErrCanvasReleased
	}
	c.buf.Reset()
	if err := p.Render(chart.PNG, &c.buf); err != nil {
		c.buf.Reset()
		return fmt.Errorf("plot: %w", err)
	}
	return nil
}

func (c *pngCanvas) Paint(img image.Image) error {
	if c.released {
		return ErrCanvasReleased
	}
	c.buf.Reset()
	if err := png.Encode(&c.buf, img); err != nil {
		c.buf.Reset()
		return fmt.Errorf("encode png: %w", err)
	}
	return nil
}

func (c *pngCanvas) Image() (Image, error) {
	if c.released {
		return Image{}, ErrCanvasReleased
	}
	if c.buf.Len() == 0 {
		return Image{}, ErrCanvasEmpty
	}
	data := make([]byte, c.buf.Len())
	copy(data, c.buf.Bytes())
	return Image{Data: data, Width: c.width, Height: c.height, ContentType: ContentTypePNG}, nil
}

func (c *pngCanvas) Release() {
	c.released = true
	c.buf = bytes.Buffer{}
}
