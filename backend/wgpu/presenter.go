//go:build !nogpu

// Package wgpu presents rasterizer output through a gogpu/wgpu HAL
// device. The rasterizer itself never touches the GPU; this package is
// the thin upload path from the packed color attachment to a BGRA8
// texture the host can composite or blit.
package wgpu

import (
	"errors"
	"fmt"

	types "github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu/hal"

	"github.com/gogpu/rast"
)

// Presenter errors.
var (
	// ErrNilDevice is returned when creating a presenter without a
	// HAL device or queue.
	ErrNilDevice = errors.New("wgpu: nil HAL device or queue")

	// ErrDestroyed is returned when presenting through a destroyed
	// presenter.
	ErrDestroyed = errors.New("wgpu: presenter destroyed")

	// ErrSizeMismatch is returned when the framebuffer does not match
	// the presenter texture dimensions.
	ErrSizeMismatch = errors.New("wgpu: framebuffer size does not match presenter")
)

// Presenter owns a GPU texture matching a framebuffer's dimensions and
// re-uploads the packed color attachment on every Present call.
type Presenter struct {
	device hal.Device
	queue  hal.Queue

	texture hal.Texture
	width   int
	height  int

	scratch   []byte
	destroyed bool
}

// NewPresenter creates the presentation texture on the given device.
// The texture format is BGRA8, the identity layout for the packed
// color plane, so uploads are a straight byte copy.
func NewPresenter(device hal.Device, queue hal.Queue, width, height int) (*Presenter, error) {
	if device == nil || queue == nil {
		return nil, ErrNilDevice
	}
	if width <= 0 || height <= 0 {
		return nil, fmt.Errorf("wgpu: invalid presenter size %dx%d", width, height)
	}

	desc := &hal.TextureDescriptor{
		Label: "rast presenter",
		Size: hal.Extent3D{
			Width:              uint32(width),
			Height:             uint32(height),
			DepthOrArrayLayers: 1,
		},
		MipLevelCount: 1,
		SampleCount:   1,
		Dimension:     types.TextureDimension2D,
		Format:        types.TextureFormatBGRA8Unorm,
		Usage:         types.TextureUsageCopyDst | types.TextureUsageTextureBinding,
	}

	texture, err := device.CreateTexture(desc)
	if err != nil {
		return nil, fmt.Errorf("wgpu: failed to create presenter texture: %w", err)
	}

	return &Presenter{
		device:  device,
		queue:   queue,
		texture: texture,
		width:   width,
		height:  height,
		scratch: make([]byte, width*height*4),
	}, nil
}

// Texture returns the presentation texture for binding by the host.
func (p *Presenter) Texture() hal.Texture {
	return p.texture
}

// Present packs fb's color attachment and uploads it to the
// presentation texture. The framebuffer dimensions must match the
// presenter's.
func (p *Presenter) Present(fb *rast.Framebuffer) error {
	if p.destroyed {
		return ErrDestroyed
	}
	if fb.Width() != p.width || fb.Height() != p.height {
		return fmt.Errorf("%w: %dx%d vs %dx%d",
			ErrSizeMismatch, fb.Width(), fb.Height(), p.width, p.height)
	}

	fb.PackRowMajor(rast.AttachmentColor, 0, 0, p.width, p.height,
		rast.PixelFormatBGRA8Unorm, p.scratch)

	dst := &hal.ImageCopyTexture{
		Texture:  p.texture,
		MipLevel: 0,
		Origin:   hal.Origin3D{X: 0, Y: 0, Z: 0},
		Aspect:   types.TextureAspectAll,
	}
	layout := &hal.ImageDataLayout{
		Offset:       0,
		BytesPerRow:  uint32(p.width * 4),
		RowsPerImage: uint32(p.height),
	}
	size := &hal.Extent3D{
		Width:              uint32(p.width),
		Height:             uint32(p.height),
		DepthOrArrayLayers: 1,
	}

	p.queue.WriteTexture(dst, p.scratch, layout, size)
	return nil
}

// Destroy releases the presentation texture. Destroy is idempotent.
func (p *Presenter) Destroy() {
	if p.destroyed {
		return
	}
	p.destroyed = true
	p.device.DestroyTexture(p.texture)
	p.texture = nil
}
