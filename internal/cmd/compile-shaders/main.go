// Command compile-shaders preprocesses a directory of WGSL sources and
// compiles every stage they define to SPIR-V, producing the precompiled
// bytecode that OriginBytecode stage descriptions consume.
//
// Output files are named <module>.<stage>.spv, where <stage> is vs, fs or
// cs depending on the entry points the module defines.
package main

import (
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/gogpu/naga"
	"github.com/gogpu/naga/ir"

	"github.com/emberengine/ember/shader"
)

func main() {
	var (
		in      string
		out     string
		debug   bool
		verbose bool
	)
	defines := map[string]struct{}{}
	flag.Usage = func() {
		fmt.Fprintf(flag.CommandLine.Output(), "Usage: %s [-v] [-debug] [-define name] -in <dir> -out <dir>\n", os.Args[0])
		flag.PrintDefaults()
	}
	flag.StringVar(&in, "in", "", "Path to `directory` of WGSL sources")
	flag.StringVar(&out, "out", "./out", "Path to output `directory`")
	flag.BoolVar(&debug, "debug", false, "Emit debug information into the bytecode")
	flag.BoolVar(&verbose, "v", false, "Be verbose")
	flag.Func("define", "Preprocessor `name` to define (may be repeated)", func(s string) error {
		defines[s] = struct{}{}
		return nil
	})
	flag.Parse()

	if in == "" || len(flag.Args()) != 0 {
		flag.Usage()
		os.Exit(2)
	}

	dief := func(f string, v ...any) {
		fmt.Fprintf(os.Stderr, f, v...)
		fmt.Fprintln(os.Stderr)
		os.Exit(1)
	}

	matches, err := filepath.Glob(filepath.Join(in, "*.wgsl"))
	if err != nil {
		panic(err)
	}

	if err := os.MkdirAll(out, 0777); err != nil {
		dief("Couldn't create output directory: %s", err)
	}

	p := Preprocessor{
		ImportDir: filepath.Join(in, "shared"),
		Defines:   defines,
		Verbose:   verbose,
	}
	comp := shader.NewCompiler(&shader.CompilerOptions{Debug: debug})

	for i, m := range matches {
		if verbose {
			if i != 0 {
				fmt.Fprintln(os.Stderr)
			}
			fmt.Fprintf(os.Stderr, "compiling %s\n", filepath.Base(m))
		}
		src, err := os.ReadFile(m)
		if err != nil {
			dief("Couldn't read %q: %s", m, err)
		}

		pre, err := p.Preprocess(src, filepath.Base(m))
		if err != nil {
			dief("Couldn't preprocess source: %s", err)
		}

		kinds, err := moduleStages(string(pre))
		if err != nil {
			dief("Couldn't analyze %q: %s", m, err)
		}
		if len(kinds) == 0 {
			dief("%q defines no entry points with conventional names", m)
		}

		name := strings.TrimSuffix(filepath.Base(m), ".wgsl")
		for _, kind := range kinds {
			result, err := comp.Compile(kind, string(pre))
			if result.Diagnostics != "" {
				fmt.Fprintln(os.Stderr, result.Diagnostics)
			}
			if err != nil {
				dief("Couldn't compile %s stage of %q: %s", kind, m, err)
			}
			outName := fmt.Sprintf("%s.%s.spv", name, stageSuffix(kind))
			if err := os.WriteFile(filepath.Join(out, outName), result.Bytecode, 0666); err != nil {
				dief("Couldn't write %q: %s", outName, err)
			}
			if verbose {
				fmt.Fprintf(os.Stderr, "wrote %s (%d bytes)\n", outName, len(result.Bytecode))
			}
		}
	}
}

// moduleStages reports the stage kinds a module defines entry points for,
// going by the conventional entry point names. Entry points with other
// names are left for the compiler's own checks to report.
func moduleStages(source string) ([]shader.StageKind, error) {
	ast, err := naga.Parse(source)
	if err != nil {
		return nil, err
	}
	module, err := naga.LowerWithSource(ast, source)
	if err != nil {
		return nil, err
	}
	var kinds []shader.StageKind
	for _, ep := range module.EntryPoints {
		kind, ok := stageKind(ep.Stage)
		if !ok {
			continue
		}
		if ep.Name == shader.EntryPointName(kind) {
			kinds = append(kinds, kind)
		}
	}
	return kinds, nil
}

func stageKind(stage ir.ShaderStage) (shader.StageKind, bool) {
	switch stage {
	case ir.StageVertex:
		return shader.StageVertex, true
	case ir.StageFragment:
		return shader.StageFragment, true
	case ir.StageCompute:
		return shader.StageCompute, true
	default:
		return 0, false
	}
}

func stageSuffix(kind shader.StageKind) string {
	switch kind {
	case shader.StageVertex:
		return "vs"
	case shader.StageFragment:
		return "fs"
	case shader.StageCompute:
		return "cs"
	default:
		panic(fmt.Sprintf("unhandled value %d", int(kind)))
	}
}
