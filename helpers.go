// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package gfx

// NamedAttr returns a vertex attribute bound by name.
func NamedAttr(name string, offset int, format VertexFormat) VertexAttrDesc {
	return VertexAttrDesc{Name: name, Offset: offset, Format: format}
}

// NamedUniform returns a uniform block member. arrayCount 0 means 1.
func NamedUniform(name string, offset int, typ UniformType, arrayCount int) UniformDesc {
	return UniformDesc{Name: name, Offset: offset, Type: typ, ArrayCount: arrayCount}
}

// NamedImage returns a shader image slot.
func NamedImage(name string, typ ImageType) ShaderImageDesc {
	return ShaderImageDesc{Name: name, Type: typ}
}
