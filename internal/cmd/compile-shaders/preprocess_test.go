package main

import (
	"strings"
	"testing"
)

func preprocess(t *testing.T, p *Preprocessor, source string) string {
	t.Helper()
	out, err := p.Preprocess([]byte(source), "test.wgsl")
	if err != nil {
		t.Fatalf("Preprocess failed: %v", err)
	}
	return string(out)
}

func TestPreprocessConditionals(t *testing.T) {
	source := `always
#ifdef feature
with feature
#else
without feature
#endif
#ifndef feature
negated without feature
#endif
`

	p := &Preprocessor{}
	got := preprocess(t, p, source)
	for _, want := range []string{"always", "without feature", "negated without feature"} {
		if !strings.Contains(got, want) {
			t.Errorf("output lacks %q:\n%s", want, got)
		}
	}
	if strings.Contains(got, "with feature\n") {
		t.Errorf("inactive branch survived:\n%s", got)
	}

	p = &Preprocessor{Defines: map[string]struct{}{"feature": {}}}
	got = preprocess(t, p, source)
	if !strings.Contains(got, "with feature") {
		t.Errorf("active branch missing:\n%s", got)
	}
	for _, absent := range []string{"without feature", "negated"} {
		if strings.Contains(got, absent) {
			t.Errorf("inactive branch %q survived:\n%s", absent, got)
		}
	}
	if strings.Contains(got, "#") {
		t.Errorf("directive leaked into output:\n%s", got)
	}
}

func TestPreprocessNestedConditionals(t *testing.T) {
	source := `#ifdef outer
#ifdef inner
both
#endif
outer only
#endif
`

	p := &Preprocessor{Defines: map[string]struct{}{"outer": {}}}
	got := preprocess(t, p, source)
	if strings.Contains(got, "both") {
		t.Errorf("nested inactive branch survived:\n%s", got)
	}
	if !strings.Contains(got, "outer only") {
		t.Errorf("outer branch missing:\n%s", got)
	}

	p = &Preprocessor{Defines: map[string]struct{}{"inner": {}}}
	if got := preprocess(t, p, source); strings.TrimSpace(got) != "" {
		t.Errorf("inactive outer branch survived:\n%s", got)
	}
}

func TestPreprocessImport(t *testing.T) {
	p := &Preprocessor{
		imports: map[string][]byte{"util": []byte("fn helper() {}\n")},
	}
	got := preprocess(t, p, "#import util\nfn main_body() {}\n")
	if !strings.Contains(got, "fn helper()") {
		t.Errorf("import not substituted:\n%s", got)
	}
	if !strings.Contains(got, "fn main_body()") {
		t.Errorf("body lost:\n%s", got)
	}
}

func TestPreprocessImportInInactiveBranch(t *testing.T) {
	p := &Preprocessor{
		imports: map[string][]byte{"util": []byte("fn helper() {}\n")},
	}
	got := preprocess(t, p, "#ifdef feature\n#import util\n#endif\n")
	if strings.Contains(got, "helper") {
		t.Errorf("import in inactive branch substituted:\n%s", got)
	}
}

func TestPreprocessCommentedDirective(t *testing.T) {
	p := &Preprocessor{}
	got := preprocess(t, p, "// #ifdef feature\ncode\n")
	if !strings.Contains(got, "// #ifdef feature") {
		t.Errorf("commented directive not preserved:\n%s", got)
	}
}

func TestPreprocessErrors(t *testing.T) {
	tests := []struct {
		name   string
		source string
		want   string
	}{
		{"mismatched endif", "#endif\n", "mismatched endif"},
		{"dangling else", "#else\n", "else without matching"},
		{"double else", "#ifdef x\n#else\n#else\n#endif\n", "second else"},
		{"unterminated ifdef", "#ifdef x\ncode\n", "unterminated"},
		{"unknown directive", "#frobnicate\n", "unknown preprocessor directive"},
		{"import without argument", "#import\n", "#import needs an argument"},
	}
	p := &Preprocessor{}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := p.Preprocess([]byte(tt.source), "test.wgsl")
			if err == nil {
				t.Fatal("Preprocess succeeded, want error")
			}
			if !strings.Contains(err.Error(), tt.want) {
				t.Errorf("error %q does not mention %q", err, tt.want)
			}
		})
	}
}
