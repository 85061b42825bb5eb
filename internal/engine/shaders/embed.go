// Package shaders provides embedded GLSL shader sources.
package shaders

import _ "embed"

// FullscreenVertexShader draws one triangle covering the viewport from
// gl_VertexID alone.
//
//go:embed fullscreen.vert
var FullscreenVertexShader string

// BackgroundVertexShader is the vertex shader for the background pass.
//
//go:embed background.vert
var BackgroundVertexShader string

// BackgroundFragmentShader is the fragment shader for the background pass.
//
//go:embed background.frag
var BackgroundFragmentShader string

// BlitFragmentShader copies a texture over the target with alpha blending.
//
//go:embed blit.frag
var BlitFragmentShader string

// GBufferVertexShader is the vertex shader for the geometry pass.
//
//go:embed gbuffer.vert
var GBufferVertexShader string

// GBufferFragmentShader is the fragment shader for the geometry pass.
//
//go:embed gbuffer.frag
var GBufferFragmentShader string

// LightFragmentShader accumulates point lights from the G-buffer.
//
//go:embed light.frag
var LightFragmentShader string

// OcclusionFragmentShader estimates ambient occlusion from view positions.
//
//go:embed occlusion.frag
var OcclusionFragmentShader string

// LuminanceFragmentShader writes log luminance of the lit image.
//
//go:embed luminance.frag
var LuminanceFragmentShader string

// CompositeFragmentShader tone maps the lit image.
//
//go:embed composite.frag
var CompositeFragmentShader string
