package runtimelib

import (
	"testing"

	"github.com/objc2dart/objc2dart/internal/errors"
	"github.com/objc2dart/objc2dart/internal/testrunner/assert"
)

func TestImports(t *testing.T) {
	got := Imports("")
	want := []string{
		"package:this/c/types.dart",
		"package:this/libc/stdlib.dart",
		"package:this/libc/stdarg.dart",
		"package:this/objc/NSObject.dart",
	}
	assert.Len(t, got, len(want))
	for i := range want {
		assert.Equal(t, got[i], want[i])
	}

	assert.Equal(t, Imports("cruntime")[0], "package:cruntime/c/types.dart")
}

func TestCheckCompatible(t *testing.T) {
	tests := []struct {
		version string
		ok      bool
	}{
		{"1.0.0", true},
		{"1.4.2", true},
		{"v1.9.0", true},
		{"0.9.0", false},
		{"2.0.0", false},
		{"not-a-version", false},
	}

	for _, tt := range tests {
		t.Run(tt.version, func(t *testing.T) {
			err := CheckCompatible(tt.version)
			if tt.ok {
				assert.NoError(t, err)
				return
			}
			assert.Error(t, err)
			assert.True(t, errors.Is(err, errors.CategoryConfig), "want config error, got ", err)
		})
	}
}

func TestAPIVersionIsSupported(t *testing.T) {
	assert.NoError(t, CheckCompatible(APIVersion))
}

func TestValidatePackage(t *testing.T) {
	assert.NoError(t, ValidatePackage("this"))
	assert.NoError(t, ValidatePackage("c_runtime2"))
	assert.Error(t, ValidatePackage("Bad-Name"))
	assert.Error(t, ValidatePackage(""))
}
