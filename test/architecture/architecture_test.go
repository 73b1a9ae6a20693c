package architecture_test

import (
	"go/ast"
	"go/parser"
	"go/token"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

// TestDomainNotDependOnOuterLayers ensures the domain layer imports neither
// the service/infrastructure/api layers nor transport and storage packages.
func TestDomainNotDependOnOuterLayers(t *testing.T) {
	forbiddenImports := []string{
		"internal/service",
		"internal/infrastructure",
		"internal/api",
		"internal/metrics",
		"database/sql",
		"net/http",
		"google.golang.org/grpc",
	}

	domainFiles := globGoFiles(t, "../../internal/domain")
	if len(domainFiles) == 0 {
		t.Fatal("no domain files found")
	}

	for _, file := range domainFiles {
		if strings.HasSuffix(file, "_test.go") {
			continue
		}

		for _, imp := range getFileImports(t, file) {
			for _, forbidden := range forbiddenImports {
				if strings.Contains(imp, forbidden) {
					t.Errorf("Domain file %s imports outer layer: %s", file, imp)
				}
			}
		}
	}
}

// TestServiceNotDependOnAPIOrInfrastructure ensures services see their
// collaborators only through the interfaces they declare themselves.
func TestServiceNotDependOnAPIOrInfrastructure(t *testing.T) {
	forbiddenImports := []string{
		"internal/api",
		"internal/infrastructure",
	}

	serviceFiles := globGoFiles(t, "../../internal/service")
	if len(serviceFiles) == 0 {
		t.Fatal("no service files found")
	}

	for _, file := range serviceFiles {
		if strings.HasSuffix(file, "_test.go") {
			continue
		}

		for _, imp := range getFileImports(t, file) {
			for _, forbidden := range forbiddenImports {
				if strings.Contains(imp, forbidden) {
					t.Errorf("Service file %s imports %s", file, imp)
				}
			}
		}
	}
}

// TestValueObjectsAreImmutable ensures value objects don't have setters
func TestValueObjectsAreImmutable(t *testing.T) {
	valueFiles, err := filepath.Glob("../../internal/domain/values/*.go")
	if err != nil {
		t.Fatal(err)
	}

	for _, file := range valueFiles {
		if strings.HasSuffix(file, "_test.go") {
			continue
		}

		fset := token.NewFileSet()
		node, err := parser.ParseFile(fset, file, nil, parser.ParseComments)
		if err != nil {
			t.Errorf("Failed to parse %s: %v", file, err)
			continue
		}

		ast.Inspect(node, func(n ast.Node) bool {
			if fn, ok := n.(*ast.FuncDecl); ok {
				if fn.Recv != nil && strings.HasPrefix(fn.Name.Name, "Set") {
					t.Errorf("Value object in %s has setter method: %s", file, fn.Name.Name)
				}
			}
			return true
		})
	}
}

// Helper functions

func globGoFiles(t *testing.T, root string) []string {
	t.Helper()

	var files []string
	err := filepath.WalkDir(root, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() && strings.HasSuffix(path, ".go") {
			files = append(files, path)
		}
		return nil
	})
	if err != nil {
		t.Fatalf("Failed to walk %s: %v", root, err)
	}
	return files
}

func getFileImports(t *testing.T, filename string) []string {
	t.Helper()

	content, err := os.ReadFile(filename)
	if err != nil {
		t.Fatalf("Failed to read %s: %v", filename, err)
	}

	fset := token.NewFileSet()
	node, err := parser.ParseFile(fset, filename, content, parser.ImportsOnly)
	if err != nil {
		t.Fatalf("Failed to parse %s: %v", filename, err)
	}

	imports := make([]string, 0, len(node.Imports))
	for _, imp := range node.Imports {
		if imp.Path != nil {
			imports = append(imports, strings.Trim(imp.Path.Value, `"`))
		}
	}
	return imports
}
