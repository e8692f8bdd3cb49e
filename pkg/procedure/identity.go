package procedure

import (
	"reflect"
	"strings"
)

// Identifiable lets a procedure declare its own stable identifier instead
// of the reflection-derived default.
type Identifiable interface {
	Identity() Identity
}

// IdentityOf returns the identity a procedure is stored and registered
// under. Types implementing Identifiable answer for themselves; otherwise
// the identity derives from the implementing type: its package path with
// slashes turned into dots as the module, the type name as the class. The
// derivation is deterministic, so registering with IdentityOf at startup
// guarantees stored headers resolve back to the same factory.
func IdentityOf(p Procedure) Identity {
	if ident, ok := p.(Identifiable); ok {
		return ident.Identity()
	}
	t := reflect.TypeOf(p)
	for t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	return Identity{
		Module: strings.ReplaceAll(t.PkgPath(), "/", "."),
		Class:  t.Name(),
	}
}
