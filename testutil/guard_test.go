package testutil

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"golang.org/x/tools/go/packages"
)

type recordingFatal struct{ msg string }

func (r *recordingFatal) Fatalf(format string, args ...any) { r.msg = format }

func TestImportUnder(t *testing.T) {
	match := ImportUnder("internal/blob", "/cmd/")
	cases := map[string]bool{
		"assemblycore/internal/blob":             true,
		"assemblycore/internal/blob/core":        true,
		"assemblycore/internal/blobby":           false,
		"assemblycore/cmd/assemblycore":          true,
		"assemblycore/internal/core":             false,
		"example.com/assemblycore/internal/blob": false,
	}
	for in, want := range cases {
		if got := match(in); got != want {
			t.Fatalf("ImportUnder(%q)=%v want %v", in, got, want)
		}
	}
}

func TestInternalImportForbiddenPredicate(t *testing.T) {
	if !InternalImportForbidden("assemblycore/internal/core") || InternalImportForbidden("assemblycore/pkg/domain") {
		t.Fatalf("unexpected predicate result")
	}
}

func TestDirectImportViolations(t *testing.T) {
	dir := t.TempDir()
	src := "package x\n\nimport (\n\t\"fmt\"\n\t\"assemblycore/internal/blob\"\n)\n\nvar _ = fmt.Sprint\n"
	if err := os.WriteFile(filepath.Join(dir, "x.go"), []byte(src), 0o600); err != nil {
		t.Fatalf("write: %v", err)
	}
	if err := os.WriteFile(filepath.Join(dir, "x_test.go"), []byte("package x\n\nimport _ \"assemblycore/internal/csvio\"\n"), 0o600); err != nil {
		t.Fatalf("write: %v", err)
	}
	viols, err := directImportViolations(dir, ImportUnder("internal"))
	if err != nil {
		t.Fatalf("scan: %v", err)
	}
	if len(viols) != 1 || viols[0] != "assemblycore/internal/blob (in x.go)" {
		t.Fatalf("unexpected violations %v", viols)
	}
	if _, err := directImportViolations(filepath.Join(dir, "missing"), ImportUnder("internal")); err == nil {
		t.Fatalf("expected error for missing dir")
	}
}

func TestTransitiveViolationsWalkGraph(t *testing.T) {
	orig := loadPackages
	defer func() { loadPackages = orig }()
	leaf := &packages.Package{PkgPath: "assemblycore/internal/infra/blob/s3", Imports: map[string]*packages.Package{}}
	mid := &packages.Package{PkgPath: "assemblycore/internal/blob", Imports: map[string]*packages.Package{"s3": leaf}}
	root := &packages.Package{PkgPath: "assemblycore/internal/core", Imports: map[string]*packages.Package{"blob": mid}}
	loadPackages = func(string) ([]*packages.Package, error) { return []*packages.Package{root}, nil }

	viols, err := transitiveDependencyViolations("./...", ImportUnder("internal/infra"))
	if err != nil {
		t.Fatalf("walk: %v", err)
	}
	if len(viols) != 1 || viols[0] != leaf.PkgPath {
		t.Fatalf("unexpected violations %v", viols)
	}

	loadPackages = func(string) ([]*packages.Package, error) { return nil, errors.New("boom") }
	if _, err := transitiveDependencyViolations("./...", ImportUnder("internal")); err == nil {
		t.Fatalf("expected load error")
	}
}

func TestFailHelpers(t *testing.T) {
	var r recordingFatal
	failIfTransitiveViolations(&r, "reason", nil)
	failIfDirectViolations(&r, "reason", nil)
	if r.msg != "" {
		t.Fatalf("no violations should not fail")
	}
	failIfDirectViolations(&r, "reason", []string{"x"})
	if !strings.Contains(r.msg, "direct imports") {
		t.Fatalf("unexpected message %q", r.msg)
	}
	failIfTransitiveViolations(&r, "reason", []string{"x"})
	if !strings.Contains(r.msg, "transitive") {
		t.Fatalf("unexpected message %q", r.msg)
	}
}
