// Package llvmir adapts textual LLVM IR modules to path tracking.
//
// Modules are handled with github.com/llir/llvm: this package decodes the
// annotation table, projects functions into [pathtrack.Graph] values and
// inserts coverage recorder calls on behalf of [pathtrack.Apply].
//
// Only the typed pointer dialect (i8*, void ()*) is understood, as emitted by
// LLVM 14 and older. Modules using opaque ptr types are rejected with
// [ErrUnsupportedIR].
package llvmir

import (
	"errors"
	"fmt"
	"io"
	"os"
	"regexp"
	"strings"

	"github.com/llir/llvm/asm"
	"github.com/llir/llvm/ir"
)

// ErrUnsupportedIR is returned for modules written in the opaque pointer
// dialect.
var ErrUnsupportedIR = errors.New("opaque pointer IR is not supported, emit typed pointers (LLVM 14 or older)")

// Load parses the LLVM IR module stored in the given file.
func Load(path string) (*ir.Module, error) {
	src, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read module: %w", err)
	}

	return Parse(path, src)
}

// Parse parses LLVM IR module text. The name is only used in error messages.
func Parse(name string, src []byte) (*ir.Module, error) {
	m, err := asm.ParseString(name, string(src))
	if err != nil {
		if opaquePointers(string(src)) {
			return nil, fmt.Errorf("parse module %s: %w", name, ErrUnsupportedIR)
		}

		return nil, fmt.Errorf("parse module %s: %w", name, err)
	}

	return m, nil
}

// Write prints the module in the textual form.
func Write(w io.Writer, m *ir.Module) error {
	if _, err := io.WriteString(w, m.String()); err != nil {
		return fmt.Errorf("write module: %w", err)
	}

	return nil
}

// Func looks for a function defined (not just declared) in the module.
func Func(m *ir.Module, name string) *ir.Func {
	for _, f := range m.Funcs {
		if f.Name() == name && len(f.Blocks) > 0 {
			return f
		}
	}

	return nil
}

var (
	irStringLiteral = regexp.MustCompile(`"[^"]*"`)
	irPtrType       = regexp.MustCompile(`(^|[^\w.$%@!#-])ptr([^\w.$-]|$)`)
)

// opaquePointers tells if the source uses the ptr type keyword anywhere
// outside of comments and string literals.
func opaquePointers(src string) bool {
	for _, line := range strings.Split(src, "\n") {
		line = irStringLiteral.ReplaceAllString(line, `""`)
		if i := strings.IndexByte(line, ';'); i >= 0 {
			line = line[:i]
		}

		if irPtrType.MatchString(line) {
			return true
		}
	}

	return false
}
