package ui

import (
	"fmt"
	"image"

	"go.uber.org/zap"
	"golang.org/x/image/draw"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"

	"github.com/Faultbox/revolve/internal/engine"
	"github.com/Faultbox/revolve/internal/engine/gpu"
)

// texture is the GPU side of the canvas.
type texture interface {
	engine.Texture
	Upload(levels []*image.RGBA)
	Delete()
}

// Canvas rasterizes the control tree into a texture at target resolution
// and draws it over the backdrop.
type Canvas struct {
	root *Root
	log  *zap.Logger

	img      *image.RGBA
	tex      texture
	revision uint64
	uploaded bool

	newTexture func() texture
}

// NewCanvas creates a canvas for root.
func NewCanvas(root *Root, log *zap.Logger) *Canvas {
	if log == nil {
		log = zap.NewNop()
	}
	return &Canvas{
		root:       root,
		log:        log,
		newTexture: func() texture { return gpu.NewTexture() },
	}
}

func targetSize(t engine.Target) (int, int) {
	if s, ok := t.(gpu.Sizer); ok {
		return s.Size()
	}
	return 0, 0
}

// Scale returns target pixels per logical unit.
func (c *Canvas) Scale(t engine.Target) float32 {
	_, h := targetSize(t)
	_, vh := c.root.Viewport()
	if h <= 0 || vh <= 0 {
		return 1
	}
	return float32(h) / vh
}

// Create rasterizes the tree when it changed since the last upload. It
// fails for an empty target.
func (c *Canvas) Create(_ engine.Device, t engine.Target) bool {
	w, h := targetSize(t)
	if w <= 0 || h <= 0 {
		return false
	}
	if c.img == nil || c.img.Bounds().Dx() != w || c.img.Bounds().Dy() != h {
		c.img = image.NewRGBA(image.Rect(0, 0, w, h))
		c.uploaded = false
	}
	if c.uploaded && c.revision == c.root.Revision() {
		return true
	}

	Rasterize(c.root, c.img, c.Scale(t))
	if c.tex == nil {
		c.tex = c.newTexture()
	}
	c.tex.Upload([]*image.RGBA{c.img})
	c.revision = c.root.Revision()
	c.uploaded = true
	return true
}

// Draw draws the backdrop and then the controls. Canvas content is top
// row first while the blit samples bottom row first, hence the inverted
// vertical flip.
func (c *Canvas) Draw(cmd engine.Command, _ engine.Target) {
	b := c.root.Backdrop()
	if b.texture != nil {
		u, v := b.uvScale()
		cmd.DrawTexture(b.texture, engine.TextureDraw{
			ScaleX: u,
			ScaleY: v,
			FlipH:  b.flipH,
			FlipV:  !b.flipV,
			Linear: b.linear,
		})
	}
	if c.uploaded {
		cmd.DrawTexture(c.tex, engine.TextureDraw{ScaleX: 1, ScaleY: 1, FlipV: true})
	}
}

// Close releases the texture.
func (c *Canvas) Close() {
	if c.tex != nil {
		c.tex.Delete()
		c.tex = nil
	}
	c.uploaded = false
}

// Rasterize draws the dialog into dst, which covers the viewport at scale
// pixels per logical unit. The backdrop is not drawn.
func Rasterize(r *Root, dst *image.RGBA, scale float32) {
	draw.Draw(dst, dst.Bounds(), image.Transparent, image.Point{}, draw.Src)

	d := r.dialog
	fill(dst, d.rect, scale, ColorPanelBg)
	outline(dst, d.rect, scale, ColorPanelBorder)
	fill(dst, d.titleBar(), scale, ColorTitleBar)
	label(dst, r.title.rect, scale, r.title.text, ColorText, false)

	b := r.button
	bg := ColorButtonNormal
	switch {
	case b.active:
		bg = ColorButtonActive
	case b.hovered:
		bg = ColorButtonHover
	}
	fill(dst, b.rect, scale, bg)
	outline(dst, b.rect, scale, ColorPanelBorder)
	label(dst, b.rect, scale, b.label, ColorText, true)

	for _, s := range r.sliders {
		label(dst, Rect{s.rect.X, s.rect.Y, sliderLabel, s.rect.H}, scale, s.label, ColorText, false)

		track := s.track
		fill(dst, track, scale, ColorTrack)
		filled := track
		filled.W *= s.fraction()
		accent := ColorHighlight
		if s.active {
			accent = accent.Lighten(0.3)
		}
		fill(dst, filled, scale, accent)
		outline(dst, track, scale, ColorPanelBorder)

		value := Rect{track.X + track.W, s.rect.Y, sliderValue, s.rect.H}
		label(dst, value, scale, fmt.Sprintf("%.*f", s.digits, s.value), ColorText, true)
	}
}

func (r Rect) pixels(scale float32) image.Rectangle {
	return image.Rect(
		int(r.X*scale), int(r.Y*scale),
		int((r.X+r.W)*scale+0.5), int((r.Y+r.H)*scale+0.5),
	)
}

func fill(dst *image.RGBA, r Rect, scale float32, c Color) {
	draw.Draw(dst, r.pixels(scale), image.NewUniform(c.RGBA()), image.Point{}, draw.Over)
}

func outline(dst *image.RGBA, r Rect, scale float32, c Color) {
	p := r.pixels(scale)
	src := image.NewUniform(c.RGBA())
	for _, edge := range []image.Rectangle{
		image.Rect(p.Min.X, p.Min.Y, p.Max.X, p.Min.Y+1),
		image.Rect(p.Min.X, p.Max.Y-1, p.Max.X, p.Max.Y),
		image.Rect(p.Min.X, p.Min.Y, p.Min.X+1, p.Max.Y),
		image.Rect(p.Max.X-1, p.Min.Y, p.Max.X, p.Max.Y),
	} {
		draw.Draw(dst, edge, src, image.Point{}, draw.Over)
	}
}

// label draws text vertically centred in r, horizontally centred or left
// aligned.
func label(dst *image.RGBA, r Rect, scale float32, text string, c Color, center bool) {
	face := basicfont.Face7x13
	p := r.pixels(scale)
	m := face.Metrics()
	x := p.Min.X
	if center {
		x += (p.Dx() - font.MeasureString(face, text).Ceil()) / 2
	}
	y := p.Min.Y + (p.Dy()+m.Ascent.Ceil()-m.Descent.Ceil())/2
	d := &font.Drawer{
		Dst:  dst,
		Src:  image.NewUniform(c.RGBA()),
		Face: face,
		Dot:  fixed.P(x, y),
	}
	d.DrawString(text)
}
