package integrations

import (
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	"image/png"
	"io"
	"math"
	"os"
	"strings"

	"github.com/gabriel-vasile/mimetype"
	"github.com/kerbaras/comics/pkg/data"
	_ "golang.org/x/image/bmp"
	"golang.org/x/image/draw"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"
)

// Lanczos3 is a windowed sinc resampling kernel with a support of 3.
var Lanczos3 = &draw.Kernel{
	Support: 3,
	At: func(t float64) float64 {
		if t == 0 {
			return 1
		}
		if t < 0 {
			t = -t
		}
		if t >= 3 {
			return 0
		}
		pt := math.Pi * t
		return 3 * math.Sin(pt) * math.Sin(pt/3) / (pt * pt)
	},
}

// sniffImage rejects files that are not images before any decoder runs.
func sniffImage(path string) error {
	mtype, err := mimetype.DetectFile(path)
	if err != nil {
		return err
	}
	if !strings.HasPrefix(mtype.String(), "image/") {
		return fmt.Errorf("unsupported content type %s", mtype.String())
	}
	return nil
}

// readImageSize decodes only the image header.
func readImageSize(path string) (data.Size, error) {
	if err := sniffImage(path); err != nil {
		return data.Size{}, err
	}

	f, err := os.Open(path)
	if err != nil {
		return data.Size{}, err
	}
	defer f.Close()

	cfg, _, err := image.DecodeConfig(f)
	if err != nil {
		return data.Size{}, fmt.Errorf("failed to decode image header: %w", err)
	}
	if cfg.Width <= 0 || cfg.Height <= 0 || uint64(cfg.Width) > math.MaxUint32 || uint64(cfg.Height) > math.MaxUint32 {
		return data.Size{}, fmt.Errorf("%w: %dx%d", ErrDegenerateSize, cfg.Width, cfg.Height)
	}
	return data.Size{W: uint32(cfg.Width), H: uint32(cfg.Height)}, nil
}

func decodeImage(path string) (image.Image, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	img, _, err := image.Decode(f)
	if err != nil {
		return nil, fmt.Errorf("failed to decode image: %w", err)
	}
	return img, nil
}

// resample scales img to exactly size. For Fill the source rectangle is
// first cropped around its center to the target aspect ratio.
func resample(img image.Image, size data.Size, mode ResizeMode) image.Image {
	src := img.Bounds()
	if _, ok := mode.(Fill); ok {
		src = cropToAspect(src, size)
	}

	dst := image.NewRGBA(image.Rect(0, 0, int(size.W), int(size.H)))
	Lanczos3.Scale(dst, dst.Bounds(), img, src, draw.Src, nil)
	return dst
}

// cropToAspect returns the largest centered sub-rectangle of r with the
// aspect ratio of size.
func cropToAspect(r image.Rectangle, size data.Size) image.Rectangle {
	w, h := int64(r.Dx()), int64(r.Dy())
	tw, th := int64(size.W), int64(size.H)

	if w*th > h*tw {
		cw := h * tw / th
		if cw < 1 {
			cw = 1
		}
		x0 := r.Min.X + int((w-cw)/2)
		return image.Rect(x0, r.Min.Y, x0+int(cw), r.Max.Y)
	}

	ch := w * th / tw
	if ch < 1 {
		ch = 1
	}
	y0 := r.Min.Y + int((h-ch)/2)
	return image.Rect(r.Min.X, y0, r.Max.X, y0+int(ch))
}

func encodePNG(w io.Writer, img image.Image) error {
	enc := png.Encoder{CompressionLevel: png.BestCompression}
	if err := enc.Encode(w, img); err != nil {
		return fmt.Errorf("failed to encode PNG: %w", err)
	}
	return nil
}

func copyFile(w io.Writer, path string) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()

	if _, err := io.Copy(w, f); err != nil {
		return fmt.Errorf("failed to copy %s: %w", path, err)
	}
	return nil
}
