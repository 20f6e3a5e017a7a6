// Package wgpu_engine adapts a gogpu HAL device to the shader package's
// device interface. It is the one place that knows which native call backs
// each stage kind.
package wgpu_engine

import (
	"fmt"

	"github.com/gogpu/wgpu/hal"

	"github.com/emberengine/ember/shader"
)

// Device implements shader.Device on top of hal.Device. It holds a borrowed
// reference to the HAL device and never releases it; device setup and
// teardown belong to whoever bootstrapped the GPU context.
//
// Whether stage objects may be created from multiple goroutines at once is
// up to the HAL implementation; Device adds no locking of its own.
type Device struct {
	dev hal.Device
}

func New(dev hal.Device) *Device {
	if dev == nil {
		panic("wgpu_engine: nil HAL device")
	}
	return &Device{dev: dev}
}

func (d *Device) CreateVertexShader(label string, code []uint32) (shader.Handle, error) {
	return d.createModule(shader.StageVertex, label, code)
}

func (d *Device) CreateFragmentShader(label string, code []uint32) (shader.Handle, error) {
	return d.createModule(shader.StageFragment, label, code)
}

func (d *Device) CreateComputeShader(label string, code []uint32) (shader.Handle, error) {
	return d.createModule(shader.StageCompute, label, code)
}

func (d *Device) createModule(kind shader.StageKind, label string, code []uint32) (shader.Handle, error) {
	module, err := d.dev.CreateShaderModule(&hal.ShaderModuleDescriptor{
		Label: label,
		Source: hal.ShaderSource{
			SPIRV: code,
		},
	})
	if err != nil {
		return nil, fmt.Errorf("wgpu_engine: creating %s shader module: %w", kind, err)
	}
	return &moduleHandle{dev: d.dev, kind: kind, module: module}, nil
}

// moduleHandle owns one HAL shader module. The stage kind it was created for
// travels with the handle, so the concrete native type behind it is fixed at
// construction.
type moduleHandle struct {
	dev    hal.Device
	kind   shader.StageKind
	module hal.ShaderModule
}

func (h *moduleHandle) Kind() shader.StageKind { return h.kind }

// Release destroys the HAL module. The first call wins; later calls do
// nothing.
func (h *moduleHandle) Release() {
	if h.module == nil {
		return
	}
	h.dev.DestroyShaderModule(h.module)
	h.module = nil
	h.dev = nil
}

// HALModule unwraps the HAL shader module behind a handle created by this
// package, for callers that assemble pipelines directly against the HAL.
// Reports false for handles from other device implementations or for
// released handles.
func HALModule(h shader.Handle) (hal.ShaderModule, bool) {
	mh, ok := h.(*moduleHandle)
	if !ok || mh.module == nil {
		return nil, false
	}
	return mh.module, true
}
