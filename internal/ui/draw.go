package ui

import (
	"image"
	"image/color"
	"image/draw"
	"sync"

	xdraw "golang.org/x/image/draw"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/font/gofont/goregular"
	"golang.org/x/image/font/opentype"
	"golang.org/x/image/math/fixed"

	"staticmapviewer/internal/layout"
)

const fontSize = 13

var (
	background  = color.RGBA{R: 240, G: 240, B: 240, A: 255}
	controlFill = color.RGBA{R: 255, G: 255, B: 255, A: 255}
	buttonFill  = color.RGBA{R: 225, G: 225, B: 225, A: 255}
	border      = color.RGBA{R: 122, G: 122, B: 122, A: 255}
	focusBorder = color.RGBA{R: 0, G: 120, B: 215, A: 255}
	textColor   = color.RGBA{R: 20, G: 20, B: 20, A: 255}
	hintColor   = color.RGBA{R: 150, G: 150, B: 150, A: 255}
	mapFill     = color.RGBA{R: 160, G: 195, B: 207, A: 255}
)

var (
	faceOnce sync.Once
	face     font.Face
)

// textFace returns the Go regular face, falling back to the fixed 7x13 face
func textFace() font.Face {
	faceOnce.Do(func() {
		face = basicfont.Face7x13
		f, err := opentype.Parse(goregular.TTF)
		if err != nil {
			return
		}
		if ff, err := opentype.NewFace(f, &opentype.FaceOptions{
			Size:    fontSize,
			DPI:     72,
			Hinting: font.HintingFull,
		}); err == nil {
			face = ff
		}
	})
	return face
}

// Compose draws the whole form, map image included, onto a new RGBA image
// the size of the window.
func (f *Form) Compose() *image.RGBA {
	win := f.layout.Window
	img := image.NewRGBA(image.Rect(0, 0, win.Width, win.Height))
	fill(img, img.Bounds(), background)

	for _, w := range f.layout.Widgets {
		r := w.Bounds()
		switch w.Kind {
		case layout.Image:
			f.drawImage(img, r)
		case layout.Radio:
			f.drawRadio(img, w)
		case layout.Input:
			f.drawInput(img, w)
		case layout.Button:
			fill(img, r, buttonFill)
			outline(img, r, border)
			drawCentered(img, w.Text, r, textColor)
		case layout.Label:
			text := w.Text
			if w.ID == layout.StatusID {
				text = f.status
			}
			drawLeft(img, text, r, textColor)
		}
	}
	return img
}

func (f *Form) drawImage(dst *image.RGBA, r image.Rectangle) {
	if f.mapImg == nil {
		fill(dst, r, mapFill)
		return
	}
	src := f.mapImg.Bounds()
	if src.Dx() == r.Dx() && src.Dy() == r.Dy() {
		draw.Draw(dst, r, f.mapImg, src.Min, draw.Src)
		return
	}
	xdraw.ApproxBiLinear.Scale(dst, r, f.mapImg, src, xdraw.Src, nil)
}

func (f *Form) drawRadio(dst *image.RGBA, w layout.Widget) {
	r := w.Bounds()
	size := r.Dy() - 8
	if size < 6 {
		size = 6
	}
	box := image.Rect(r.Min.X, r.Min.Y+(r.Dy()-size)/2, r.Min.X+size, r.Min.Y+(r.Dy()-size)/2+size)
	circle(dst, box, controlFill, border)
	if f.selected[w.Group] == w.ID {
		circle(dst, box.Inset(size/4), focusBorder, focusBorder)
	}
	drawLeft(dst, w.Text, image.Rect(box.Max.X+6, r.Min.Y, r.Max.X, r.Max.Y), textColor)
}

func (f *Form) drawInput(dst *image.RGBA, w layout.Widget) {
	r := w.Bounds()
	fill(dst, r, controlFill)
	focused := f.focused == w.ID
	if focused {
		outline(dst, r, focusBorder)
	} else {
		outline(dst, r, border)
	}

	inner := r.Inset(4)
	text := f.text[w.ID]
	if text == "" && !focused {
		drawLeft(dst, w.Placeholder, inner, hintColor)
		return
	}
	end := drawLeft(dst, text, inner, textColor)
	if focused {
		caret := image.Rect(end+1, inner.Min.Y+1, end+2, inner.Max.Y-1).Intersect(inner)
		fill(dst, caret, textColor)
	}
}

func fill(dst *image.RGBA, r image.Rectangle, c color.Color) {
	draw.Draw(dst, r, &image.Uniform{C: c}, image.Point{}, draw.Src)
}

func outline(dst *image.RGBA, r image.Rectangle, c color.Color) {
	src := &image.Uniform{C: c}
	draw.Draw(dst, image.Rect(r.Min.X, r.Min.Y, r.Max.X, r.Min.Y+1), src, image.Point{}, draw.Src)
	draw.Draw(dst, image.Rect(r.Min.X, r.Max.Y-1, r.Max.X, r.Max.Y), src, image.Point{}, draw.Src)
	draw.Draw(dst, image.Rect(r.Min.X, r.Min.Y, r.Min.X+1, r.Max.Y), src, image.Point{}, draw.Src)
	draw.Draw(dst, image.Rect(r.Max.X-1, r.Min.Y, r.Max.X, r.Max.Y), src, image.Point{}, draw.Src)
}

// circle fills the disc inscribed in r and strokes its edge
func circle(dst *image.RGBA, r image.Rectangle, fillColor, edge color.RGBA) {
	cx := float64(r.Min.X+r.Max.X-1) / 2
	cy := float64(r.Min.Y+r.Max.Y-1) / 2
	rad := float64(r.Dx()) / 2
	for y := r.Min.Y; y < r.Max.Y; y++ {
		for x := r.Min.X; x < r.Max.X; x++ {
			dx, dy := float64(x)-cx, float64(y)-cy
			d := dx*dx + dy*dy
			switch {
			case d <= (rad-1)*(rad-1):
				dst.SetRGBA(x, y, fillColor)
			case d <= rad*rad:
				dst.SetRGBA(x, y, edge)
			}
		}
	}
}

// drawLeft draws text vertically centered at the left of r, clipped to r,
// and returns the x coordinate where the text ends.
func drawLeft(dst *image.RGBA, text string, r image.Rectangle, c color.Color) int {
	return drawText(dst, text, r, r.Min.X, c)
}

func drawCentered(dst *image.RGBA, text string, r image.Rectangle, c color.Color) {
	width := font.MeasureString(textFace(), text).Ceil()
	drawText(dst, text, r, r.Min.X+(r.Dx()-width)/2, c)
}

func drawText(dst *image.RGBA, text string, r image.Rectangle, x int, c color.Color) int {
	face := textFace()
	m := face.Metrics()
	y := r.Min.Y + (r.Dy()-m.Height.Ceil())/2 + m.Ascent.Ceil()

	clip, ok := dst.SubImage(r).(*image.RGBA)
	if !ok {
		return x
	}
	d := &font.Drawer{
		Dst:  clip,
		Src:  image.NewUniform(c),
		Face: face,
		Dot:  fixed.P(x, y),
	}
	d.DrawString(text)
	end := d.Dot.X.Ceil()
	if end > r.Max.X {
		end = r.Max.X
	}
	return end
}
