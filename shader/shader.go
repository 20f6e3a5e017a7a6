// Package shader turns declarative shader program descriptions into live
// native stage objects and manages their combined lifetime.
//
// A Program is built from a ProgramDescription, which lists one
// StageDescription per stage. Each stage is resolved either from WGSL source
// text (compiled on the fly) or from precompiled SPIR-V bytecode, handed to
// the device, and owned by the Program until Release is called.
//
// A Program and its stage modules are meant to be constructed, queried and
// released from a single rendering or resource-loading goroutine; the package
// provides no internal locking. Building independent Programs concurrently
// against the same device is only as safe as the device implementation says
// it is.
package shader

import (
	"fmt"

	"golang.org/x/exp/constraints"
)

// StageKind identifies one programmable stage of a shader program. The set is
// closed; switches over it treat unknown values as a code defect.
type StageKind int

const (
	StageVertex StageKind = iota + 1
	StageFragment
	StageCompute
)

func (kind StageKind) String() string {
	switch kind {
	case StageVertex:
		return "vertex"
	case StageFragment:
		return "fragment"
	case StageCompute:
		return "compute"
	default:
		panic(fmt.Sprintf("unhandled value %d", int(kind)))
	}
}

// StageOrigin says how a stage's bytecode is obtained.
type StageOrigin int

const (
	// OriginSource compiles the stage from WGSL source text.
	OriginSource StageOrigin = iota + 1
	// OriginBytecode uses precompiled SPIR-V bytecode as-is.
	OriginBytecode
)

// spirvWordSize is the size of a SPIR-V instruction stream word in bytes.
const spirvWordSize = 4

// StageDescription describes the input for one shader stage. Exactly one of
// Source and Bytecode is consulted, selected by Origin.
type StageDescription struct {
	Kind     StageKind
	Origin   StageOrigin
	Source   string
	Bytecode []byte
}

func (desc *StageDescription) validate() error {
	switch desc.Origin {
	case OriginSource:
		if desc.Source == "" {
			return fmt.Errorf("shader: %s stage has a source origin but no source text", desc.Kind)
		}
	case OriginBytecode:
		if len(desc.Bytecode) == 0 {
			return fmt.Errorf("shader: %s stage has a bytecode origin but no bytecode", desc.Kind)
		}
		if n := len(desc.Bytecode); nextMultipleOf(n, spirvWordSize) != n {
			return fmt.Errorf("shader: %s stage bytecode is %d bytes, which is not a whole number of SPIR-V words", desc.Kind, n)
		}
	default:
		panic(fmt.Sprintf("unhandled value %d", int(desc.Origin)))
	}
	return nil
}

// ProgramDescription describes a complete shader program as an ordered list
// of stage descriptions. The order of Stages is preserved in the resulting
// Program; when a kind repeats, the first occurrence wins.
type ProgramDescription struct {
	Label  string
	Stages []StageDescription
}

func nextMultipleOf[T constraints.Integer](x, y T) T {
	r := x % y
	if r == 0 {
		return x
	} else {
		return x + y - r
	}
}
