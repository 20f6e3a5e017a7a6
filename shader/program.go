package shader

import (
	"fmt"

	"honnef.co/go/safeish"
)

type stageModule struct {
	kind   StageKind
	handle Handle
}

// Program owns the native stage objects for one logical shader program. No
// two stage modules share a kind. A Program is either fully constructed or
// not constructed at all: if any stage fails, NewProgram releases everything
// it created so far and returns only the error.
type Program struct {
	label    string
	modules  []stageModule
	warnings []string
}

// NewProgram builds a program from the given description. Stages are
// processed in order; a stage whose kind was already seen is skipped and
// recorded as a warning. comp may be nil if no stage uses OriginSource.
func NewProgram(dev Device, comp StageCompiler, desc ProgramDescription) (*Program, error) {
	if dev == nil {
		return nil, fmt.Errorf("shader: device is required")
	}

	prog := &Program{
		label:   desc.Label,
		modules: make([]stageModule, 0, len(desc.Stages)),
	}
	for _, stage := range desc.Stages {
		if _, ok := prog.Module(stage.Kind); ok {
			prog.warnings = append(prog.warnings,
				fmt.Sprintf("duplicate %s stage in program %q ignored", stage.Kind, desc.Label))
			continue
		}
		mod, warn, err := newStageModule(dev, comp, desc.Label, stage)
		if err != nil {
			prog.Release()
			return nil, err
		}
		if warn != "" {
			prog.warnings = append(prog.warnings, warn)
		}
		prog.modules = append(prog.modules, mod)
	}
	return prog, nil
}

// newStageModule resolves one stage description into a live stage module.
// Bytecode produced by compilation is only used to create the native object
// and does not outlive this function.
func newStageModule(dev Device, comp StageCompiler, label string, desc StageDescription) (stageModule, string, error) {
	if err := desc.validate(); err != nil {
		return stageModule{}, "", err
	}

	var (
		code []uint32
		warn string
	)
	switch desc.Origin {
	case OriginSource:
		if comp == nil {
			return stageModule{}, "", fmt.Errorf("shader: %s stage needs compiling, but no stage compiler was provided", desc.Kind)
		}
		result, err := comp.Compile(desc.Kind, desc.Source)
		if err != nil {
			if result.Diagnostics != "" {
				return stageModule{}, "", fmt.Errorf("shader: compiling %s stage: %w\n%s", desc.Kind, err, result.Diagnostics)
			}
			return stageModule{}, "", fmt.Errorf("shader: compiling %s stage: %w", desc.Kind, err)
		}
		warn = result.Diagnostics
		code, err = bytecodeWords(desc.Kind, result.Bytecode)
		if err != nil {
			return stageModule{}, "", err
		}
	case OriginBytecode:
		var err error
		code, err = bytecodeWords(desc.Kind, desc.Bytecode)
		if err != nil {
			return stageModule{}, "", err
		}
	default:
		panic(fmt.Sprintf("unhandled value %d", int(desc.Origin)))
	}

	stageLabel := desc.Kind.String()
	if label != "" {
		stageLabel = label + "/" + stageLabel
	}

	var (
		handle Handle
		err    error
	)
	switch desc.Kind {
	case StageVertex:
		handle, err = dev.CreateVertexShader(stageLabel, code)
	case StageFragment:
		handle, err = dev.CreateFragmentShader(stageLabel, code)
	case StageCompute:
		handle, err = dev.CreateComputeShader(stageLabel, code)
	default:
		panic(fmt.Sprintf("unhandled value %d", int(desc.Kind)))
	}
	if err != nil {
		return stageModule{}, "", fmt.Errorf("shader: creating %s stage object: %w", desc.Kind, err)
	}
	return stageModule{kind: desc.Kind, handle: handle}, warn, nil
}

// bytecodeWords reinterprets SPIR-V bytecode as its word stream. The byte
// length must be a whole number of words.
func bytecodeWords(kind StageKind, bytecode []byte) ([]uint32, error) {
	n := len(bytecode)
	if n == 0 {
		return nil, fmt.Errorf("shader: %s stage produced no bytecode", kind)
	}
	if nextMultipleOf(n, spirvWordSize) != n {
		return nil, fmt.Errorf("shader: %s stage bytecode is %d bytes, which is not a whole number of SPIR-V words", kind, n)
	}
	return safeish.SliceCast[[]uint32](bytecode), nil
}

// Module returns the native handle for the given stage kind, or false when
// the program has no stage of that kind. Lookup is a linear scan; programs
// hold single-digit stage counts.
func (prog *Program) Module(kind StageKind) (Handle, bool) {
	for _, mod := range prog.modules {
		if mod.kind == kind {
			return mod.handle, true
		}
	}
	return nil, false
}

// Stages returns the stage kinds present in the program, in construction
// order.
func (prog *Program) Stages() []StageKind {
	kinds := make([]StageKind, len(prog.modules))
	for i, mod := range prog.modules {
		kinds[i] = mod.kind
	}
	return kinds
}

func (prog *Program) Label() string { return prog.label }

// Warnings returns the non-fatal diagnostics gathered during construction:
// ignored duplicate stages and compiler warnings.
func (prog *Program) Warnings() []string { return prog.warnings }

// Release releases every owned native handle exactly once and clears the
// stage storage. Calling Release again afterwards is a no-op.
func (prog *Program) Release() {
	for i := range prog.modules {
		prog.modules[i].handle.Release()
		prog.modules[i].handle = nil
	}
	prog.modules = prog.modules[:0]
}
