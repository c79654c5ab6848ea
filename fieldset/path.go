package fieldset

import "github.com/vektah/gqlparser/v2/ast"

// Path is an ordered sequence of response names with the literal token "@"
// inserted for every list wrapper in the field's type, so the executor
// knows at which depth to flatten a dependent fetch's result into its
// parent.
type Path []string

// AddPath returns a new Path with responseName appended, followed by one
// "@" marker per list wrapper declared on fieldType before its named type
// is reached. NonNull wrappers add no marker.
func AddPath(path Path, responseName string, fieldType *ast.Type) Path {
	out := make(Path, len(path), len(path)+2)
	copy(out, path)
	out = append(out, responseName)
	for cur := fieldType; cur != nil && cur.NamedType == ""; cur = cur.Elem {
		out = append(out, "@")
	}
	return out
}

// Strings returns p as a []string, the JSON-serializable shape of a
// Flatten.path.
func (p Path) Strings() []string {
	return []string(p)
}
