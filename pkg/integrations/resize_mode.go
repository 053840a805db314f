package integrations

import (
	"errors"
	"fmt"

	"github.com/kerbaras/comics/pkg/data"
)

var (
	ErrDegenerateSize = errors.New("degenerate image size")
	ErrInvalidMode    = errors.New("invalid resize mode")
)

// Upper bounds for a requested target. Larger targets are rejected with
// ErrInvalidMode before any pixel buffer is allocated.
const (
	MaxSide   = 1 << 14
	MaxPixels = 1 << 25
)

// ResizeMode selects how the target size is derived from the original.
// Fit and Fill are the only implementations.
type ResizeMode interface {
	RequiredSize(original data.Size) (data.Size, error)
	cacheTag() string
}

// Fit preserves the aspect ratio when only one side is given and never
// enlarges. A zero field means "unspecified". Giving both sides stretches
// to exactly that box.
type Fit struct {
	W uint32
	H uint32
}

// Fill produces exactly W x H, cropping the source around its center to
// the target aspect ratio before scaling.
type Fill struct {
	W uint32
	H uint32
}

func (m Fit) RequiredSize(o data.Size) (data.Size, error) {
	if o.IsZero() {
		return data.Size{}, fmt.Errorf("%w: %dx%d", ErrDegenerateSize, o.W, o.H)
	}

	switch {
	case m.W != 0 && m.H == 0:
		if m.W >= o.W {
			return o, nil
		}
		return data.Size{W: m.W, H: scaleSide(m.W, o.H, o.W)}, nil
	case m.W == 0 && m.H != 0:
		if m.H >= o.H {
			return o, nil
		}
		return data.Size{W: scaleSide(m.H, o.W, o.H), H: m.H}, nil
	case m.W != 0 && m.H != 0:
		return checkTarget(m.W, m.H)
	default:
		return o, nil
	}
}

func (m Fit) cacheTag() string {
	return ""
}

func (m Fill) RequiredSize(o data.Size) (data.Size, error) {
	if m.W == 0 || m.H == 0 {
		return data.Size{}, fmt.Errorf("%w: fill needs both sides, got %dx%d", ErrInvalidMode, m.W, m.H)
	}
	if o.IsZero() {
		return data.Size{}, fmt.Errorf("%w: %dx%d", ErrDegenerateSize, o.W, o.H)
	}
	return checkTarget(m.W, m.H)
}

func (m Fill) cacheTag() string {
	return "fill."
}

// checkTarget bounds an explicit W x H target.
func checkTarget(w, h uint32) (data.Size, error) {
	if w > MaxSide || h > MaxSide || uint64(w)*uint64(h) > MaxPixels {
		return data.Size{}, fmt.Errorf("%w: %dx%d exceeds %dx%d or %d pixels", ErrInvalidMode, w, h, MaxSide, MaxSide, MaxPixels)
	}
	return data.Size{W: w, H: h}, nil
}

// scaleSide returns floor(side * num / den) without float rounding.
func scaleSide(side, num, den uint32) uint32 {
	return uint32(uint64(side) * uint64(num) / uint64(den))
}
