// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package render

import (
	"github.com/gogpu/gpucontext"
	"github.com/gogpu/gputypes"

	"github.com/gogpu/rast"
)

// DeviceHandle provides GPU device access from the host application.
//
// The host (e.g. a gogpu.App) implements DeviceHandle and passes it to
// the presentation layer, which uses the shared device to upload the
// rasterizer's output. The key principle: this package RECEIVES the
// device from the host, it does not create one.
//
// DeviceHandle is an alias for gpucontext.DeviceProvider, keeping full
// compatibility with the gpucontext ecosystem.
type DeviceHandle = gpucontext.DeviceProvider

// TextureDescriptor describes parameters for creating a presentation
// texture. It mirrors the WebGPU GPUTextureDescriptor specification.
type TextureDescriptor struct {
	// Label is an optional debug label for the texture.
	Label string

	// Width is the texture width in pixels.
	Width uint32

	// Height is the texture height in pixels.
	Height uint32

	// Format is the texture pixel format.
	Format gputypes.TextureFormat
}

// DefaultTextureDescriptor returns a descriptor for a plain 2D
// presentation texture.
func DefaultTextureDescriptor(width, height uint32, format gputypes.TextureFormat) TextureDescriptor {
	return TextureDescriptor{
		Width:  width,
		Height: height,
		Format: format,
	}
}

// TextureFormatFor maps a framebuffer pack format onto the equivalent
// gputypes texture format. Depth readback words have no presentable
// texture equivalent and map onto Undefined; presentation always goes
// through the color attachment.
func TextureFormatFor(f rast.PixelFormat) gputypes.TextureFormat {
	switch f {
	case rast.PixelFormatRGBA8Unorm:
		return gputypes.TextureFormatRGBA8Unorm
	case rast.PixelFormatBGRA8Unorm:
		return gputypes.TextureFormatBGRA8Unorm
	}
	return gputypes.TextureFormatUndefined
}
