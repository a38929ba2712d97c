package codegen

import (
	"strconv"
	"strings"
)

// dartReserved lists the words Dart does not accept as identifiers.
var dartReserved = map[string]bool{
	"assert": true, "break": true, "case": true, "catch": true,
	"class": true, "const": true, "continue": true, "default": true,
	"do": true, "else": true, "enum": true, "extends": true,
	"false": true, "final": true, "finally": true, "for": true,
	"if": true, "in": true, "is": true, "new": true,
	"null": true, "rethrow": true, "return": true, "super": true,
	"switch": true, "this": true, "throw": true, "true": true,
	"try": true, "var": true, "void": true, "while": true,
	"with": true,
}

// ident returns name as a legal Dart identifier.
func ident(name string) string {
	if dartReserved[name] {
		return name + "_"
	}
	return name
}

// selectorName turns an Objective-C selector into a method name:
// "initWithX:y:" becomes "initWithX_y".
func selectorName(sel string) string {
	sel = strings.TrimSuffix(sel, ":")
	return ident(strings.ReplaceAll(sel, ":", "_"))
}

// paramName names a parameter, inventing one for unnamed parameters.
func paramName(name string, i int) string {
	if name == "" {
		return "__p" + strconv.Itoa(i)
	}
	return ident(name)
}
