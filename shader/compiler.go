package shader

import (
	"fmt"
	"strings"

	"github.com/gogpu/naga"
	"github.com/gogpu/naga/ir"
	"github.com/gogpu/naga/spirv"
)

// CompilationResult is the outcome of compiling one stage. Bytecode is
// present only on success. Diagnostics is caller-owned text that may
// accompany either outcome: warnings next to a successful compile, error
// detail next to a failed one.
type CompilationResult struct {
	Bytecode    []byte
	Diagnostics string
}

// StageCompiler compiles WGSL source text for one stage kind into SPIR-V
// bytecode. A failed compile reports via the error; the result may still
// carry diagnostic text describing the failure.
type StageCompiler interface {
	Compile(kind StageKind, source string) (CompilationResult, error)
}

type CompilerOptions struct {
	// Debug emits OpName/OpLine debug information into the bytecode.
	Debug bool
	// SkipValidation disables IR validation before code generation.
	SkipValidation bool
}

// Compiler is the naga-backed StageCompiler.
type Compiler struct {
	opts CompilerOptions
}

func NewCompiler(opts *CompilerOptions) *Compiler {
	var o CompilerOptions
	if opts != nil {
		o = *opts
	}
	return &Compiler{opts: o}
}

// EntryPointName returns the entry point a stage of the given kind must
// define.
func EntryPointName(kind StageKind) string {
	switch kind {
	case StageVertex:
		return "vs_main"
	case StageFragment:
		return "fs_main"
	case StageCompute:
		return "cs_main"
	default:
		panic(fmt.Sprintf("unhandled value %d", int(kind)))
	}
}

func targetStage(kind StageKind) ir.ShaderStage {
	switch kind {
	case StageVertex:
		return ir.StageVertex
	case StageFragment:
		return ir.StageFragment
	case StageCompute:
		return ir.StageCompute
	default:
		panic(fmt.Sprintf("unhandled value %d", int(kind)))
	}
}

// Compile translates WGSL source text into SPIR-V for the given stage kind.
// The module must define the entry point named EntryPointName(kind) with a
// matching stage attribute. Entry points for other stage kinds may share the
// module; additional entry points of the requested kind are ignored and
// reported as a diagnostic.
func (c *Compiler) Compile(kind StageKind, source string) (CompilationResult, error) {
	if source == "" {
		return CompilationResult{}, fmt.Errorf("shader: compiling %s stage: empty source text", kind)
	}

	ast, err := naga.Parse(source)
	if err != nil {
		return CompilationResult{Diagnostics: err.Error()},
			fmt.Errorf("shader: parsing %s stage: %w", kind, err)
	}
	module, err := naga.LowerWithSource(ast, source)
	if err != nil {
		return CompilationResult{Diagnostics: err.Error()},
			fmt.Errorf("shader: lowering %s stage: %w", kind, err)
	}

	if !c.opts.SkipValidation {
		verrs, err := naga.Validate(module)
		if err != nil {
			return CompilationResult{Diagnostics: err.Error()},
				fmt.Errorf("shader: validating %s stage: %w", kind, err)
		}
		if len(verrs) > 0 {
			diag := formatValidationErrors(verrs)
			return CompilationResult{Diagnostics: diag},
				fmt.Errorf("shader: validating %s stage: %s", kind, verrs[0].Error())
		}
	}

	warn, err := checkEntryPoints(module, kind)
	if err != nil {
		return CompilationResult{Diagnostics: err.Error()},
			fmt.Errorf("shader: %w", err)
	}

	code, err := naga.GenerateSPIRV(module, spirv.Options{
		Version: spirv.Version1_3,
		Debug:   c.opts.Debug,
	})
	if err != nil {
		return CompilationResult{Diagnostics: err.Error()},
			fmt.Errorf("shader: generating %s stage bytecode: %w", kind, err)
	}
	return CompilationResult{Bytecode: code, Diagnostics: warn}, nil
}

// checkEntryPoints verifies that the module defines the entry point required
// for kind. Extra entry points of the same kind are legal but suspicious, so
// they come back as a warning.
func checkEntryPoints(module *ir.Module, kind StageKind) (warning string, err error) {
	want := EntryPointName(kind)
	stage := targetStage(kind)

	found := false
	var ignored []string
	for _, ep := range module.EntryPoints {
		if ep.Stage != stage {
			continue
		}
		if ep.Name == want {
			found = true
		} else {
			ignored = append(ignored, ep.Name)
		}
	}
	if !found {
		var all []string
		for _, ep := range module.EntryPoints {
			all = append(all, ep.Name)
		}
		if len(all) == 0 {
			return "", fmt.Errorf("%s stage defines no entry points, want %q", kind, want)
		}
		return "", fmt.Errorf("%s stage does not define entry point %q, have %s",
			kind, want, strings.Join(all, ", "))
	}
	if len(ignored) > 0 {
		warning = fmt.Sprintf("%s stage defines additional %s entry points that will not run: %s",
			kind, kind, strings.Join(ignored, ", "))
	}
	return warning, nil
}

func formatValidationErrors(verrs []ir.ValidationError) string {
	var sb strings.Builder
	for i, verr := range verrs {
		if i > 0 {
			sb.WriteByte('\n')
		}
		sb.WriteString(verr.Error())
	}
	return sb.String()
}
