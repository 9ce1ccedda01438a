package app

import (
	"errors"
	"unsafe"

	"github.com/go-gl/glfw/v3.3/glfw"
	"github.com/rajveermalviya/go-webgpu/wgpu"
)

const instanceBackends = wgpu.InstanceBackend_Vulkan

func createSurface(instance *wgpu.Instance, window *glfw.Window) (*wgpu.Surface, error) {
	display := glfw.GetX11Display()
	if display == nil {
		return nil, errors.New("no X11 display")
	}

	surface := instance.CreateSurface(&wgpu.SurfaceDescriptor{
		Label: "MapSurface",
		XlibWindow: &wgpu.SurfaceDescriptorFromXlibWindow{
			Display: unsafe.Pointer(display),
			Window:  uint32(window.GetX11Window()),
		},
	})
	if surface == nil {
		return nil, errors.New("wgpu rejected the X11 window")
	}
	return surface, nil
}
