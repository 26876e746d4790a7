package texture

import (
	"errors"
	"fmt"
	"image"
	"strings"

	// Decoders registered with image.Decode.
	_ "image/jpeg"
	_ "image/png"

	_ "golang.org/x/image/bmp"

	"github.com/achilleasa/whitted/asset"
	"github.com/achilleasa/whitted/log"
	"github.com/achilleasa/whitted/types"
	"github.com/chewxy/math32"
	"github.com/nfnt/resize"
)

var ErrEmptyImage = errors.New("texture: image has no pixels")

var logger = log.New("texture")

// Texture sampling filter.
type Filter uint8

const (
	Nearest Filter = iota
	Bilinear
)

func (f Filter) String() string {
	if f == Bilinear {
		return "bilinear"
	}
	return "nearest"
}

// Parse a filter name.
func ParseFilter(name string) (Filter, error) {
	switch strings.ToLower(name) {
	case "", "nearest":
		return Nearest, nil
	case "bilinear":
		return Bilinear, nil
	}
	return Nearest, fmt.Errorf("texture: unknown filter %q", name)
}

type Options struct {
	// Textures whose width or height exceeds MaxSize are downscaled to fit
	// while preserving their aspect ratio. Zero disables downscaling.
	MaxSize uint

	Filter Filter
}

// A decoded texture. Pixels are stored row-major starting with the top image
// row as linear RGB triplets in [0, 1].
type Texture struct {
	Width  uint32
	Height uint32
	Filter Filter

	Pixels []types.Vec3
}

// Decode a BMP, PNG or JPEG texture from a resource.
func New(res *asset.Resource, opts Options) (*Texture, error) {
	img, format, err := image.Decode(res)
	if err != nil {
		return nil, fmt.Errorf("texture: could not decode %s: %s", res.Path(), err.Error())
	}

	bounds := img.Bounds()
	if bounds.Empty() {
		return nil, ErrEmptyImage
	}

	if opts.MaxSize > 0 && (uint(bounds.Dx()) > opts.MaxSize || uint(bounds.Dy()) > opts.MaxSize) {
		img = resize.Thumbnail(opts.MaxSize, opts.MaxSize, img, resize.Lanczos3)
		logger.Debugf("downscaled %s from %dx%d to %dx%d", res.Path(), bounds.Dx(), bounds.Dy(), img.Bounds().Dx(), img.Bounds().Dy())
	}

	tex := FromImage(img, opts.Filter)
	logger.Infof("loaded %s texture %s (%dx%d, %s filtering)", format, res.Path(), tex.Width, tex.Height, tex.Filter)
	return tex, nil
}

// Create a texture from an image.
func FromImage(img image.Image, filter Filter) *Texture {
	bounds := img.Bounds()
	tex := &Texture{
		Width:  uint32(bounds.Dx()),
		Height: uint32(bounds.Dy()),
		Filter: filter,
		Pixels: make([]types.Vec3, 0, bounds.Dx()*bounds.Dy()),
	}

	for y := bounds.Min.Y; y < bounds.Max.Y; y++ {
		for x := bounds.Min.X; x < bounds.Max.X; x++ {
			r, g, b, _ := img.At(x, y).RGBA()
			tex.Pixels = append(tex.Pixels, types.XYZ(
				float32(r)/0xffff,
				float32(g)/0xffff,
				float32(b)/0xffff,
			))
		}
	}

	return tex
}

// Sample the texture at (u, v). Coordinates wrap around so any finite value
// is accepted; v = 0 addresses the bottom image row.
func (t *Texture) Sample(u, v float32) types.Vec3 {
	if len(t.Pixels) == 0 || !isFinite(u) || !isFinite(v) {
		return types.Vec3{}
	}

	u = wrap(u)
	v = wrap(v)

	if t.Filter == Bilinear {
		return t.sampleBilinear(u, v)
	}

	x := minInt(int(u*float32(t.Width)), int(t.Width)-1)
	y := minInt(int(v*float32(t.Height)), int(t.Height)-1)
	return t.texel(x, y)
}

func (t *Texture) sampleBilinear(u, v float32) types.Vec3 {
	fx := u*float32(t.Width) - 0.5
	fy := v*float32(t.Height) - 0.5
	x0 := math32.Floor(fx)
	y0 := math32.Floor(fy)
	tx := fx - x0
	ty := fy - y0

	ix, iy := int(x0), int(y0)
	bottom := t.texel(ix, iy).Lerp(t.texel(ix+1, iy), tx)
	top := t.texel(ix, iy+1).Lerp(t.texel(ix+1, iy+1), tx)
	return bottom.Lerp(top, ty)
}

// Fetch the texel at column x and row y counted from the bottom. Indices wrap.
func (t *Texture) texel(x, y int) types.Vec3 {
	w, h := int(t.Width), int(t.Height)
	x = ((x % w) + w) % w
	y = ((y % h) + h) % h
	return t.Pixels[(h-1-y)*w+x]
}

func wrap(f float32) float32 {
	f -= math32.Floor(f)
	if f >= 1 {
		f = 0
	}
	return f
}

func isFinite(f float32) bool {
	return !math32.IsNaN(f) && !math32.IsInf(f, 0)
}

func minInt(a, b int) int {
	if a < b {
		return a
	}
	return b
}
