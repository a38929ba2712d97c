// Package runtimelib describes the Dart runtime value library that generated
// code calls into: its import URIs, wrapper class names and the API versions
// this generator can target.
package runtimelib

import (
	"fmt"
	"regexp"

	"github.com/Masterminds/semver/v3"

	"github.com/objc2dart/objc2dart/internal/errors"
)

const (
	// APIVersion is the runtime API revision the emitted code is written against.
	APIVersion = "1.0.0"
	// SupportedRange lists runtime releases compatible with APIVersion.
	SupportedRange = ">= 1.0.0, < 2.0.0"
	// DefaultPackage is the Dart package that ships the runtime library.
	DefaultPackage = "this"
)

// Wrapper class names exposed by the runtime.
const (
	Int8            = "CInt8"
	Uint8           = "CUint8"
	Int16           = "CInt16"
	Uint16          = "CUint16"
	Int32           = "CInt32"
	Uint32          = "CUint32"
	Int64           = "CInt64"
	Uint64          = "CUint64"
	Float           = "CFloat"
	Double          = "CDouble"
	Pointer         = "CPointer"
	FunctionPointer = "CFunctionPointer"
	Composite       = "CComposite"
	VarArgs         = "CVarArgs"

	Void       = "void"
	Dynamic    = "dynamic"
	ObjectBase = "NSObject"
)

// Module paths relative to the runtime package root.
const (
	TypesModule  = "c/types.dart"
	StdlibModule = "libc/stdlib.dart"
	StdargModule = "libc/stdarg.dart"
	ObjectModule = "objc/NSObject.dart"
)

var packageName = regexp.MustCompile(`^[a-z][a-z0-9_]*$`)

// Imports returns the import URIs every generated unit starts with.
func Imports(pkg string) []string {
	if pkg == "" {
		pkg = DefaultPackage
	}
	modules := []string{TypesModule, StdlibModule, StdargModule, ObjectModule}
	uris := make([]string, len(modules))
	for i, m := range modules {
		uris[i] = fmt.Sprintf("package:%s/%s", pkg, m)
	}
	return uris
}

// ValidatePackage checks that pkg is a legal Dart package name.
func ValidatePackage(pkg string) error {
	if !packageName.MatchString(pkg) {
		return errors.Config("runtime_package", fmt.Sprintf("%q is not a valid Dart package name", pkg))
	}
	return nil
}

// CheckCompatible reports whether the given runtime release implements the
// API the generator emits calls against.
func CheckCompatible(version string) error {
	v, err := semver.NewVersion(version)
	if err != nil {
		return errors.Config("runtime_version", fmt.Sprintf("invalid version %q: %v", version, err))
	}
	c, err := semver.NewConstraint(SupportedRange)
	if err != nil {
		return errors.Config("runtime_version", fmt.Sprintf("invalid supported range: %v", err))
	}
	if ok, reasons := c.Validate(v); !ok {
		msg := fmt.Sprintf("runtime %s is outside %s", v, SupportedRange)
		if len(reasons) > 0 {
			msg += ": " + reasons[0].Error()
		}
		return errors.Config("runtime_version", msg)
	}
	return nil
}
