// Package test contains assertion helpers shared by plotline tests.
package test

import (
	"errors"
	"fmt"
	"runtime"
	"testing"

	"github.com/ava12/plotline"
)

func fatalf(t *testing.T, message string, params ...any) {
	t.Helper()
	if len(params) > 0 {
		message = fmt.Sprintf(message, params...)
	}
	_, thisFile, _, _ := runtime.Caller(0)
	file := thisFile
	line := 0
	for i := 2; file == thisFile; i++ {
		_, file, line, _ = runtime.Caller(i)
	}
	t.Fatalf("%s at %s:%d", message, file, line)
}

func Assert(t *testing.T, cond bool, message string, params ...any) {
	t.Helper()
	if !cond {
		fatalf(t, message, params...)
	}
}

func Expect(t *testing.T, cond bool, expected, got any) {
	t.Helper()
	if !cond {
		fatalf(t, "expecting %v, got %v", expected, got)
	}
}

func ExpectBool(t *testing.T, expected, got bool) {
	t.Helper()
	Expect(t, expected == got, expected, got)
}

func ExpectInt(t *testing.T, expected, got int) {
	t.Helper()
	Expect(t, expected == got, expected, got)
}

func ExpectString(t *testing.T, expected, got string) {
	t.Helper()
	if expected != got {
		fatalf(t, "expecting %q, got %q", expected, got)
	}
}

// ExpectNoError fails the test if e is not nil.
func ExpectNoError(t *testing.T, e error) {
	t.Helper()
	if e != nil {
		fatalf(t, "unexpected error: %s", e.Error())
	}
}

// ExpectErrorCode fails the test unless e wraps *plotline.Error with given code.
func ExpectErrorCode(t *testing.T, expected int, e error) {
	t.Helper()
	var pe *plotline.Error
	if errors.As(e, &pe) && pe.Code == expected {
		return
	}

	fatalf(t, "expecting error code %d, got %v", expected, e)
}

// ErrorCode returns the code of wrapped *plotline.Error or 0.
func ErrorCode(e error) int {
	var pe *plotline.Error
	if errors.As(e, &pe) {
		return pe.Code
	}
	return 0
}
