package app

/*
#cgo CFLAGS: -x objective-c
#cgo LDFLAGS: -framework Cocoa -framework QuartzCore -framework Metal

#import <Cocoa/Cocoa.h>
#import <QuartzCore/CAMetalLayer.h>
#import <Metal/Metal.h>

// metalLayerFor returns the content view's CAMetalLayer, installing one
// sized to the view when the view is not layer-backed by Metal yet.
static void* metalLayerFor(void* handle) {
    NSWindow* window = (__bridge NSWindow*)handle;
    NSView* view = [window contentView];
    if (view == nil) {
        return NULL;
    }

    if ([view.layer isKindOfClass:[CAMetalLayer class]]) {
        return (__bridge void*)view.layer;
    }

    CAMetalLayer* layer = [CAMetalLayer layer];
    layer.device = MTLCreateSystemDefaultDevice();
    layer.pixelFormat = MTLPixelFormatBGRA8Unorm;
    layer.opaque = YES;
    layer.frame = view.bounds;
    layer.contentsScale = window.backingScaleFactor;

    view.wantsLayer = YES;
    view.layer = layer;
    return (__bridge void*)layer;
}
*/
import "C"

import (
	"errors"
	"unsafe"

	"github.com/go-gl/glfw/v3.3/glfw"
	"github.com/rajveermalviya/go-webgpu/wgpu"
)

const instanceBackends = wgpu.InstanceBackend_Metal

func createSurface(instance *wgpu.Instance, window *glfw.Window) (*wgpu.Surface, error) {
	handle := window.GetCocoaWindow()
	if handle == nil {
		return nil, errors.New("window has no Cocoa handle")
	}

	layer := C.metalLayerFor(handle)
	if layer == nil {
		return nil, errors.New("window has no content view for a Metal layer")
	}

	surface := instance.CreateSurface(&wgpu.SurfaceDescriptor{
		Label:      "MapSurface",
		MetalLayer: &wgpu.SurfaceDescriptorFromMetalLayer{Layer: unsafe.Pointer(layer)},
	})
	if surface == nil {
		return nil, errors.New("wgpu rejected the Metal layer")
	}
	return surface, nil
}
