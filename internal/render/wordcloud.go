package render

import (
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"math"
	"sync"

	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/font/gofont/goregular"
	"golang.org/x/image/font/opentype"
	"golang.org/x/image/math/fixed"

	apperrors "chartsvc/internal/errors"
	"chartsvc/internal/stats"
)

const (
	wordPadding   = 2
	gridCell      = 2
	spiralSpacing = 8.0
	spiralStep    = 4.0
	titleBand     = 24
)

var (
	fontOnce  sync.Once
	wordFont  *opentype.Font
	errFont   error
	titleFace = basicfont.Face7x13
)

func loadWordFont() (*opentype.Font, error) {
	fontOnce.Do(func() {
		wordFont, errFont = opentype.Parse(goregular.TTF)
	})
	return wordFont, errFont
}

// FontSize maps a relative frequency in (0, 1] to a font size:
// max * (s*f + (1-s)), clamped to [min, max].
func FontSize(relFreq float64, opts WordCloudOptions) float64 {
	s := opts.RelativeScaling
	size := opts.MaxFontSize * (s*relFreq + (1 - s))
	return math.Max(opts.MinFontSize, math.Min(opts.MaxFontSize, size))
}

// PlacedWord is a word positioned on the cloud.
type PlacedWord struct {
	Text  string
	Size  int
	Rect  image.Rectangle
	Color color.RGBA
}

func prepareWordCloud(spec ChartSpec, in Input, pal Palette) (drawFunc, error) {
	if in.Frequencies == nil || in.Frequencies.Len() == 0 {
		return nil, apperrors.NewEmptyDatasetError("no words to render")
	}
	entries := in.Frequencies.Top(spec.WordCloud.MaxWords)

	return func(cv Canvas) error {
		img, _, err := drawWordCloud(spec, entries, pal)
		if err != nil {
			return err
		}
		return cv.Paint(img)
	}, nil
}

func drawWordCloud(spec ChartSpec, entries []stats.Entry, pal Palette) (*image.RGBA, []PlacedWord, error) {
	f, err := loadWordFont()
	if err != nil {
		return nil, nil, fmt.Errorf("load font: %w", err)
	}
	faces := newFaceCache(f)
	defer faces.Close()

	bounds := image.Rect(0, 0, spec.Width, spec.Height)
	img := image.NewRGBA(bounds)
	draw.Draw(img, bounds, image.White, image.Point{}, draw.Src)

	occ := newOccupancy(spec.Width, spec.Height, gridCell)
	if spec.Title != "" {
		drawTitle(img, spec.Title)
		occ.mark(image.Rect(0, 0, spec.Width, titleBand))
	}

	placed, err := layoutWords(entries, spec.WordCloud, pal, faces, occ)
	if err != nil {
		return nil, nil, err
	}

	for _, w := range placed {
		face, err := faces.face(w.Size)
		if err != nil {
			return nil, nil, err
		}
		d := font.Drawer{
			Dst:  img,
			Src:  image.NewUniform(w.Color),
			Face: face,
			Dot:  fixed.P(w.Rect.Min.X+wordPadding, w.Rect.Min.Y+wordPadding+face.Metrics().Ascent.Ceil()),
		}
		d.DrawString(w.Text)
	}
	return img, placed, nil
}

// layoutWords places words in frequency order on an Archimedean spiral.
// A word that does not fit is shrunk down to the minimum size and dropped if
// it still does not fit. Sizes never increase along the order.
func layoutWords(entries []stats.Entry, opts WordCloudOptions, pal Palette, faces *faceCache, occ *occupancy) ([]PlacedWord, error) {
	if len(entries) == 0 {
		return nil, nil
	}
	maxCount := float64(entries[0].Count)
	minSize := int(math.Ceil(opts.MinFontSize))
	last := int(math.Floor(opts.MaxFontSize))

	var placed []PlacedWord
	for i, e := range entries {
		size := int(math.Round(FontSize(float64(e.Count)/maxCount, opts)))
		if size > last {
			size = last
		}
		for ; size >= minSize; size = shrink(size, minSize) {
			face, err := faces.face(size)
			if err != nil {
				return nil, err
			}
			m := face.Metrics()
			w := font.MeasureString(face, e.Key).Ceil() + 2*wordPadding
			h := (m.Ascent + m.Descent).Ceil() + 2*wordPadding

			if rect, ok := occ.findSpiral(w, h); ok {
				occ.mark(rect)
				placed = append(placed, PlacedWord{Text: e.Key, Size: size, Rect: rect, Color: pal.RGBA(i)})
				last = size
				break
			}
		}
	}
	return placed, nil
}

// shrink returns the next smaller size to try, or lowest-1 when exhausted.
func shrink(size, lowest int) int {
	if size == lowest {
		return lowest - 1
	}
	next := size - int(math.Max(1, float64(size)/10))
	if next < lowest {
		return lowest
	}
	return next
}

func drawTitle(img *image.RGBA, title string) {
	d := font.Drawer{Dst: img, Src: image.Black, Face: titleFace}
	w := d.MeasureString(title).Ceil()
	x := (img.Bounds().Dx() - w) / 2
	if x < 4 {
		x = 4
	}
	d.Dot = fixed.P(x, (titleBand+titleFace.Metrics().Ascent.Ceil())/2)
	d.DrawString(title)
}

type faceCache struct {
	font  *opentype.Font
	faces map[int]font.Face
}

func newFaceCache(f *opentype.Font) *faceCache {
	return &faceCache{font: f, faces: make(map[int]font.Face)}
}

func (c *faceCache) face(size int) (font.Face, error) {
	if face, ok := c.faces[size]; ok {
		return face, nil
	}
	face, err := opentype.NewFace(c.font, &opentype.FaceOptions{
		Size:    float64(size),
		DPI:     72,
		Hinting: font.HintingNone,
	})
	if err != nil {
		return nil, fmt.Errorf("create %dpt face: %w", size, err)
	}
	c.faces[size] = face
	return face, nil
}

func (c *faceCache) Close() {
	for _, face := range c.faces {
		face.Close()
	}
}

// occupancy tracks used canvas area on a coarse grid with a summed-area
// table, so a rectangle can be tested in constant time.
type occupancy struct {
	width, height int
	cell          int
	cols, rows    int
	filled        []bool
	sum           []int32
}

func newOccupancy(width, height, cell int) *occupancy {
	cols := (width + cell - 1) / cell
	rows := (height + cell - 1) / cell
	return &occupancy{
		width:  width,
		height: height,
		cell:   cell,
		cols:   cols,
		rows:   rows,
		filled: make([]bool, cols*rows),
		sum:    make([]int32, (cols+1)*(rows+1)),
	}
}

func (o *occupancy) cells(r image.Rectangle) (x0, y0, x1, y1 int) {
	x0, y0 = r.Min.X/o.cell, r.Min.Y/o.cell
	x1 = (r.Max.X + o.cell - 1) / o.cell
	y1 = (r.Max.Y + o.cell - 1) / o.cell
	return x0, y0, min(x1, o.cols), min(y1, o.rows)
}

func (o *occupancy) free(r image.Rectangle) bool {
	if r.Min.X < 0 || r.Min.Y < 0 || r.Max.X > o.width || r.Max.Y > o.height {
		return false
	}
	x0, y0, x1, y1 := o.cells(r)
	stride := o.cols + 1
	used := o.sum[y1*stride+x1] - o.sum[y0*stride+x1] - o.sum[y1*stride+x0] + o.sum[y0*stride+x0]
	return used == 0
}

func (o *occupancy) mark(r image.Rectangle) {
	x0, y0, x1, y1 := o.cells(r.Intersect(image.Rect(0, 0, o.width, o.height)))
	for y := y0; y < y1; y++ {
		for x := x0; x < x1; x++ {
			o.filled[y*o.cols+x] = true
		}
	}

	stride := o.cols + 1
	for y := y0; y < o.rows; y++ {
		var row int32
		for x := 0; x < o.cols; x++ {
			if o.filled[y*o.cols+x] {
				row++
			}
			o.sum[(y+1)*stride+x+1] = o.sum[y*stride+x+1] + row
		}
	}
}

// findSpiral walks outward from the canvas center and returns the first free
// w x h rectangle.
func (o *occupancy) findSpiral(w, h int) (image.Rectangle, bool) {
	if w > o.width || h > o.height {
		return image.Rectangle{}, false
	}
	cx, cy := float64(o.width)/2, float64(o.height)/2
	aspect := float64(o.height) / float64(o.width)
	maxR := math.Hypot(cx, cy/aspect)
	b := spiralSpacing / (2 * math.Pi)

	for theta := 0.0; ; {
		r := b * theta
		if r > maxR {
			return image.Rectangle{}, false
		}
		x := int(cx + r*math.Cos(theta) - float64(w)/2)
		y := int(cy + r*math.Sin(theta)*aspect - float64(h)/2)
		rect := image.Rect(x, y, x+w, y+h)
		if o.free(rect) {
			return rect, true
		}
		theta += spiralStep / math.Max(r, spiralStep)
	}
}
