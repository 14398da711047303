// Package shaders provides embedded GLSL shader sources.
package shaders

import _ "embed"

// DiscVertexShader places and stretches the item discs.
//
//go:embed disc.vert
var DiscVertexShader string

// DiscFragmentShader samples each disc's atlas cell.
//
//go:embed disc.frag
var DiscFragmentShader string
