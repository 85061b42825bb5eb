package ui

import "image/color"

// Color is an RGBA color with float components in [0, 1].
type Color struct {
	R, G, B, A float32
}

// Theme colors.
var (
	ColorTransparent  = Color{0, 0, 0, 0}
	ColorPanelBg      = Color{0.08, 0.08, 0.12, 0.85}
	ColorPanelBorder  = Color{0.3, 0.3, 0.4, 1}
	ColorTitleBar     = Color{0.15, 0.15, 0.2, 1}
	ColorButtonNormal = Color{0.15, 0.15, 0.2, 1}
	ColorButtonHover  = Color{0.25, 0.25, 0.35, 1}
	ColorButtonActive = Color{0.1, 0.3, 0.5, 1}
	ColorTrack        = Color{0.05, 0.05, 0.08, 1}
	ColorText         = Color{0.9, 0.9, 0.9, 1}
	ColorHighlight    = Color{0.2, 0.6, 0.9, 1}
)

// RGBA converts to a premultiplied 8-bit color.
func (c Color) RGBA() color.RGBA {
	a := clamp01(c.A)
	return color.RGBA{
		R: uint8(clamp01(c.R)*a*255 + 0.5),
		G: uint8(clamp01(c.G)*a*255 + 0.5),
		B: uint8(clamp01(c.B)*a*255 + 0.5),
		A: uint8(a*255 + 0.5),
	}
}

// Lighten returns a lighter version of the color.
func (c Color) Lighten(factor float32) Color {
	return Color{
		R: c.R + (1-c.R)*factor,
		G: c.G + (1-c.G)*factor,
		B: c.B + (1-c.B)*factor,
		A: c.A,
	}
}

func clamp01(v float32) float32 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
