// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package render

import (
	"errors"
	"fmt"

	"github.com/gogpu/gpucontext"

	"github.com/gogpu/rast"
)

// Common errors returned by Canvas operations.
var (
	// ErrCanvasClosed is returned when operations are attempted on a
	// closed canvas.
	ErrCanvasClosed = errors.New("render: canvas is closed")

	// ErrInvalidDimensions is returned when width or height is invalid.
	ErrInvalidDimensions = errors.New("render: invalid dimensions")

	// ErrNilProvider is returned when a nil DeviceProvider is passed.
	ErrNilProvider = errors.New("render: nil DeviceProvider")

	// ErrInvalidRenderer is returned when the draw context does not
	// supply a gpucontext.TextureCreator.
	ErrInvalidRenderer = errors.New("render: drawer must supply a gpucontext.TextureCreator")

	// ErrInvalidDrawContext is returned when the created texture is
	// not drawable through gpucontext.
	ErrInvalidDrawContext = errors.New("render: texture does not implement gpucontext.Texture")
)

// textureDestroyer is the interface for destroying host textures.
type textureDestroyer interface {
	Destroy()
}

// Canvas manages the CPU-to-GPU pipeline for a rasterizer framebuffer:
// it packs the color attachment to RGBA and keeps a host texture in
// sync for presentation.
//
// Canvas is NOT safe for concurrent use.
type Canvas struct {
	fb       *rast.Framebuffer
	provider gpucontext.DeviceProvider
	texture  any // lazily created host texture
	pixels   []byte
	dirty    bool
	closed   bool
}

// NewCanvas creates a canvas presenting fb through the host device
// provider. The framebuffer stays owned by the caller; the canvas only
// reads it during Flush.
func NewCanvas(provider gpucontext.DeviceProvider, fb *rast.Framebuffer) (*Canvas, error) {
	if provider == nil {
		return nil, ErrNilProvider
	}
	if fb == nil {
		return nil, fmt.Errorf("%w: nil framebuffer", ErrInvalidDimensions)
	}
	return &Canvas{
		fb:       fb,
		provider: provider,
		pixels:   make([]byte, fb.Width()*fb.Height()*4),
		dirty:    true,
	}, nil
}

// Framebuffer returns the canvas's framebuffer.
// Returns nil if the canvas is closed.
func (c *Canvas) Framebuffer() *rast.Framebuffer {
	if c.closed {
		return nil
	}
	return c.fb
}

// Provider returns the DeviceProvider associated with this canvas.
func (c *Canvas) Provider() gpucontext.DeviceProvider {
	return c.provider
}

// MarkDirty flags the canvas for re-upload on the next Flush.
// Call it after drawing into the framebuffer.
func (c *Canvas) MarkDirty() {
	c.dirty = true
}

// Flush packs the framebuffer and returns the up-to-date host texture
// handle. On first use the texture is a pending placeholder that
// RenderTo materializes once a TextureCreator is available.
func (c *Canvas) Flush() (any, error) {
	if c.closed {
		return nil, ErrCanvasClosed
	}

	if !c.dirty && c.texture != nil {
		return c.texture, nil
	}

	c.fb.PackRowMajor(rast.AttachmentColor, 0, 0, c.fb.Width(), c.fb.Height(),
		rast.PixelFormatRGBA8Unorm, c.pixels)

	if c.texture == nil {
		c.texture = &pendingTexture{
			width:  c.fb.Width(),
			height: c.fb.Height(),
			data:   c.pixels,
		}
		c.dirty = false
		return c.texture, nil
	}

	if updater, ok := c.texture.(gpucontext.TextureUpdater); ok {
		if err := updater.UpdateData(c.pixels); err != nil {
			return nil, fmt.Errorf("render: texture update failed: %w", err)
		}
	}

	c.dirty = false
	return c.texture, nil
}

// RenderTo packs the framebuffer, uploads it, and draws the resulting
// texture at the origin of the host draw context.
func (c *Canvas) RenderTo(dc gpucontext.TextureDrawer) error {
	return c.RenderToPosition(dc, 0, 0)
}

// RenderToPosition is RenderTo at an arbitrary position.
func (c *Canvas) RenderToPosition(dc gpucontext.TextureDrawer, x, y float32) error {
	if c.closed {
		return ErrCanvasClosed
	}

	tex, err := c.Flush()
	if err != nil {
		return err
	}

	if pending, isPending := tex.(*pendingTexture); isPending {
		creator := dc.TextureCreator()
		if creator == nil {
			return ErrInvalidRenderer
		}

		realTex, err := creator.NewTextureFromRGBA(pending.width, pending.height, pending.data)
		if err != nil {
			return fmt.Errorf("render: NewTextureFromRGBA failed: %w", err)
		}

		c.texture = realTex
		tex = realTex
	}

	gpuTex, ok := tex.(gpucontext.Texture)
	if !ok {
		return ErrInvalidDrawContext
	}

	return dc.DrawTexture(gpuTex, x, y)
}

// Close releases the host texture. Close is idempotent.
func (c *Canvas) Close() error {
	if c.closed {
		return nil
	}
	c.closed = true

	if c.texture != nil {
		if destroyer, ok := c.texture.(textureDestroyer); ok {
			destroyer.Destroy()
		}
		c.texture = nil
	}
	return nil
}

// pendingTexture is a placeholder for texture creation: it holds the
// packed pixels until a TextureCreator is available in RenderTo.
type pendingTexture struct {
	width  int
	height int
	data   []byte
}
