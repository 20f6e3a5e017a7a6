// Package shaders holds the engine's builtin WGSL stage sources and the
// program descriptions built from them.
package shaders

import (
	_ "embed"

	"github.com/emberengine/ember/shader"
)

//go:embed blit.wgsl
var blitWGSL string

//go:embed clear.wgsl
var clearWGSL string

// StageSource is one named builtin stage: a stage kind plus the WGSL module
// that defines its entry point. Several stages may share a module.
type StageSource struct {
	Name string
	Kind shader.StageKind
	WGSL string
}

// Collection lists every builtin stage source.
var Collection = []StageSource{
	{Name: "blit_vs", Kind: shader.StageVertex, WGSL: blitWGSL},
	{Name: "blit_fs", Kind: shader.StageFragment, WGSL: blitWGSL},
	{Name: "clear_cs", Kind: shader.StageCompute, WGSL: clearWGSL},
}

// Blit describes the full-screen blit program that presents a rendered
// texture to a surface.
func Blit() shader.ProgramDescription {
	return shader.ProgramDescription{
		Label: "blit",
		Stages: []shader.StageDescription{
			{Kind: shader.StageVertex, Origin: shader.OriginSource, Source: blitWGSL},
			{Kind: shader.StageFragment, Origin: shader.OriginSource, Source: blitWGSL},
		},
	}
}

// Clear describes the compute program that zeroes a storage buffer.
func Clear() shader.ProgramDescription {
	return shader.ProgramDescription{
		Label: "clear",
		Stages: []shader.StageDescription{
			{Kind: shader.StageCompute, Origin: shader.OriginSource, Source: clearWGSL},
		},
	}
}
