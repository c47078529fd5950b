// Package preprocess turns uploaded images into the fixed-shape tensor the
// classifier was trained on.
//
// Pipeline: decode, resize to Size x Size with one fixed filter, drop alpha
// (grayscale expands to three equal channels), lay out as (1, H, W, 3) and
// scale 8-bit channel values to [0, 1] as float32.
package preprocess

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	"image/color"
	"io"
	"strings"

	"github.com/disintegration/imaging"
	"github.com/nfnt/resize"

	"github.com/Brownie44l1/leafdoc/internal/model"
)

// ErrUnreadableImage is returned when the input is not a decodable image.
var ErrUnreadableImage = errors.New("unreadable image")

const (
	DefaultSize   = 224
	DefaultFilter = "bicubic"
	channels      = 3

	// DefaultMaxPixels matches Pillow's decompression bomb limit.
	DefaultMaxPixels = 89_478_485
)

var filters = map[string]resize.InterpolationFunction{
	"nearest":  resize.NearestNeighbor,
	"bilinear": resize.Bilinear,
	"bicubic":  resize.Bicubic,
	"mitchell": resize.MitchellNetravali,
	"lanczos2": resize.Lanczos2,
	"lanczos3": resize.Lanczos3,
}

type Config struct {
	Size       int
	Filter     string
	AutoOrient bool
	// MaxPixels caps width*height declared by the image header.
	MaxPixels int64
}

// Normalizer is immutable and safe for concurrent use.
type Normalizer struct {
	size       uint
	filter     resize.InterpolationFunction
	autoOrient bool
	maxPixels  int64
}

func New(cfg Config) (*Normalizer, error) {
	if cfg.Size == 0 {
		cfg.Size = DefaultSize
	}
	if cfg.Size < 0 {
		return nil, fmt.Errorf("invalid image size %d", cfg.Size)
	}
	if cfg.Filter == "" {
		cfg.Filter = DefaultFilter
	}
	if cfg.MaxPixels == 0 {
		cfg.MaxPixels = DefaultMaxPixels
	}
	if cfg.MaxPixels < 0 {
		return nil, fmt.Errorf("invalid pixel limit %d", cfg.MaxPixels)
	}
	filter, err := ParseFilter(cfg.Filter)
	if err != nil {
		return nil, err
	}
	return &Normalizer{
		size:       uint(cfg.Size),
		filter:     filter,
		autoOrient: cfg.AutoOrient,
		maxPixels:  cfg.MaxPixels,
	}, nil
}

// ParseFilter resolves a resize filter name.
func ParseFilter(name string) (resize.InterpolationFunction, error) {
	f, ok := filters[strings.ToLower(name)]
	if !ok {
		return 0, fmt.Errorf("unknown resize filter %q", name)
	}
	return f, nil
}

// Shape returns the tensor shape Normalize produces.
func (n *Normalizer) Shape() []int64 {
	return []int64{1, int64(n.size), int64(n.size), channels}
}

// Decode reads one image. Any failure is ErrUnreadableImage. The header is
// checked against the pixel limit before any pixel buffer is allocated.
func (n *Normalizer) Decode(r io.Reader) (image.Image, error) {
	var head bytes.Buffer
	cfg, _, err := image.DecodeConfig(io.TeeReader(r, &head))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnreadableImage, err)
	}
	if cfg.Width <= 0 || cfg.Height <= 0 {
		return nil, fmt.Errorf("%w: image has no pixels", ErrUnreadableImage)
	}
	if pixels := int64(cfg.Width) * int64(cfg.Height); pixels > n.maxPixels {
		return nil, fmt.Errorf("%w: %dx%d image exceeds the %d pixel limit",
			ErrUnreadableImage, cfg.Width, cfg.Height, n.maxPixels)
	}

	img, err := imaging.Decode(io.MultiReader(&head, r), imaging.AutoOrientation(n.autoOrient))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnreadableImage, err)
	}
	if img.Bounds().Empty() {
		return nil, fmt.Errorf("%w: image has no pixels", ErrUnreadableImage)
	}
	return img, nil
}

// NormalizeReader decodes r and normalizes the result.
func (n *Normalizer) NormalizeReader(r io.Reader) (*model.Tensor, error) {
	img, err := n.Decode(r)
	if err != nil {
		return nil, err
	}
	return n.Normalize(img)
}

// Normalize converts a decoded image into a (1, size, size, 3) tensor.
func (n *Normalizer) Normalize(img image.Image) (*model.Tensor, error) {
	if img == nil || img.Bounds().Empty() {
		return nil, fmt.Errorf("%w: image has no pixels", ErrUnreadableImage)
	}

	resized := resize.Resize(n.size, n.size, img, n.filter)
	bounds := resized.Bounds()
	width, height := bounds.Dx(), bounds.Dy()
	if width != int(n.size) || height != int(n.size) {
		return nil, fmt.Errorf("resize produced %dx%d, want %dx%d", width, height, n.size, n.size)
	}

	tensor := model.NewTensor(n.Shape()...)
	data := tensor.Data
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			c := color.NRGBAModel.Convert(resized.At(bounds.Min.X+x, bounds.Min.Y+y)).(color.NRGBA)

			i := (y*width + x) * channels
			data[i] = float32(c.R) / 255.0
			data[i+1] = float32(c.G) / 255.0
			data[i+2] = float32(c.B) / 255.0
		}
	}
	return tensor, nil
}
