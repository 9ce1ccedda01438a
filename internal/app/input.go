package app

import (
	"image"
	"math"

	"github.com/go-gl/glfw/v3.3/glfw"

	"staticmapviewer/internal/controller"
)

var keyCommands = map[glfw.Key]controller.Command{
	glfw.KeyPageUp:   controller.Widen,
	glfw.KeyPageDown: controller.Narrow,
	glfw.KeyUp:       controller.PanUp,
	glfw.KeyDown:     controller.PanDown,
	glfw.KeyLeft:     controller.PanLeft,
	glfw.KeyRight:    controller.PanRight,
}

func commandFor(key glfw.Key) (controller.Command, bool) {
	cmd, ok := keyCommands[key]
	return cmd, ok
}

// toLayout maps a cursor position in window coordinates to form coordinates
func toLayout(x, y float64, winW, winH, layoutW, layoutH int) image.Point {
	if winW > 0 && winH > 0 {
		x = x * float64(layoutW) / float64(winW)
		y = y * float64(layoutH) / float64(winH)
	}
	return image.Pt(int(math.Floor(x)), int(math.Floor(y)))
}
