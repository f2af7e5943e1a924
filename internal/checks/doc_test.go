package checks

import (
	"go/ast"
	"go/parser"
	"go/token"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// 目录下各检查包的导出常量、类型与构造函数都带文档注释
func TestCatalogueExportsDocumented(t *testing.T) {
	files, err := filepath.Glob(filepath.Join(".", "*", "*.go"))
	require.NoError(t, err)
	require.NotEmpty(t, files)
	fset := token.NewFileSet()
	for _, path := range files {
		if strings.HasSuffix(path, "_test.go") {
			continue
		}
		f, err := parser.ParseFile(fset, path, nil, parser.ParseComments)
		require.NoError(t, err, path)
		for _, decl := range f.Decls {
			switch d := decl.(type) {
			case *ast.FuncDecl:
				if d.Recv == nil && d.Name.IsExported() {
					assert.NotNil(t, d.Doc, "%s: func %s", path, d.Name.Name)
				}
			case *ast.GenDecl:
				if d.Tok == token.IMPORT || d.Lparen.IsValid() {
					continue
				}
				for _, spec := range d.Specs {
					var name *ast.Ident
					switch s := spec.(type) {
					case *ast.ValueSpec:
						name = s.Names[0]
					case *ast.TypeSpec:
						name = s.Name
					}
					if name != nil && name.IsExported() {
						assert.NotNil(t, d.Doc, "%s: %s", path, name.Name)
					}
				}
			}
		}
	}
}
