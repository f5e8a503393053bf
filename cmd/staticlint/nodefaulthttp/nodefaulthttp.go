package nodefaulthttp

import (
	"go/ast"
	"go/types"
	"strings"

	"golang.org/x/tools/go/analysis"
)

// Analyzer reports requests made through net/http's package-level client.
// Such requests skip the session cookie jar, so the backend would see them
// as coming from a new anonymous session.
var Analyzer = &analysis.Analyzer{
	Name: "nodefaulthttp",
	Doc:  "prohibits net/http's default client outside tests",
	Run:  run,
}

var forbidden = map[string]bool{
	"DefaultClient": true,
	"Get":           true,
	"Head":          true,
	"Post":          true,
	"PostForm":      true,
}

func run(pass *analysis.Pass) (interface{}, error) {
	for _, file := range pass.Files {
		filename := pass.Fset.File(file.Pos()).Name()
		if strings.HasSuffix(filename, "_test.go") {
			continue
		}

		ast.Inspect(file, func(n ast.Node) bool {
			sel, ok := n.(*ast.SelectorExpr)
			if !ok || !forbidden[sel.Sel.Name] {
				return true
			}

			ident, ok := sel.X.(*ast.Ident)
			if !ok {
				return true
			}

			pkgName, ok := pass.TypesInfo.Uses[ident].(*types.PkgName)
			if ok && pkgName.Imported().Path() == "net/http" {
				pass.Reportf(sel.Pos(), "use the smrs client instead of http.%s", sel.Sel.Name)
			}

			return true
		})
	}
	return nil, nil
}
