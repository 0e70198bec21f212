// Package outcome defines the canonical codes (TP-series) a path tracking
// run ends with. Each code names one distinct reason for the module to be
// left as is, or the fact it was instrumented.
//
// Code numbering scheme:
//
//	000–009  Module was instrumented
//	010–049  Input did not match (declined, not an error)
//	050–099  Instrumentation declined for IR reasons
package outcome

import "fmt"

// Code represents a run outcome code (TP-series).
type Code int

const (
	codeInvalid Code = iota

	TP000Instrumented
	TP010SourceMismatch
	TP020NoAnnotations
	TP030TargetNotFound
	TP040NoPaths
	TP050AlreadyInstrumented
	TP060RecorderConflict
	TP070InstrumentationFailed
)

// String returns the canonical code and short name of the outcome.
// Example: "TP000: Instrumented"
func (c Code) String() string {
	switch c {
	case TP000Instrumented:
		return "TP000: Instrumented"
	case TP010SourceMismatch:
		return "TP010: SourceMismatch"
	case TP020NoAnnotations:
		return "TP020: NoAnnotations"
	case TP030TargetNotFound:
		return "TP030: TargetNotFound"
	case TP040NoPaths:
		return "TP040: NoPaths"
	case TP050AlreadyInstrumented:
		return "TP050: AlreadyInstrumented"
	case TP060RecorderConflict:
		return "TP060: RecorderConflict"
	case TP070InstrumentationFailed:
		return "TP070: InstrumentationFailed"
	default:
		return fmt.Sprintf("outcome-unknown(%d)", c)
	}
}

// Description returns the human-readable explanation of the outcome.
func (c Code) Description() string {
	switch c {
	case TP000Instrumented:
		return "Blocks on paths to the target line were instrumented."
	case TP010SourceMismatch:
		return "Module source file name differs from the configured one."
	case TP020NoAnnotations:
		return "Module has no usable annotation table entries."
	case TP030TargetNotFound:
		return "No annotated function has an instruction on the target line."
	case TP040NoPaths:
		return "Target block cannot be reached from the function entry."
	case TP050AlreadyInstrumented:
		return "Every block on the paths already calls the coverage recorder."
	case TP060RecorderConflict:
		return "Coverage recorder symbol exists with an incompatible signature."
	case TP070InstrumentationFailed:
		return "Recorder call could not be inserted, blocks handled before the failure keep their calls."
	default:
		return "Unknown outcome."
	}
}

// Changed tells if the outcome means the module was modified. A
// [TP070InstrumentationFailed] run may still leave changes behind, check the
// run result for them.
func (c Code) Changed() bool {
	return c == TP000Instrumented
}

// Instrumented is a shortcut for the [TP000Instrumented] code.
func Instrumented() Code { return TP000Instrumented }

// SourceMismatch is a shortcut for the [TP010SourceMismatch] code.
func SourceMismatch() Code { return TP010SourceMismatch }

// NoAnnotations is a shortcut for the [TP020NoAnnotations] code.
func NoAnnotations() Code { return TP020NoAnnotations }

// TargetNotFound is a shortcut for the [TP030TargetNotFound] code.
func TargetNotFound() Code { return TP030TargetNotFound }

// NoPaths is a shortcut for the [TP040NoPaths] code.
func NoPaths() Code { return TP040NoPaths }

// AlreadyInstrumented is a shortcut for the [TP050AlreadyInstrumented] code.
func AlreadyInstrumented() Code { return TP050AlreadyInstrumented }

// RecorderConflict is a shortcut for the [TP060RecorderConflict] code.
func RecorderConflict() Code { return TP060RecorderConflict }

// InstrumentationFailed is a shortcut for the [TP070InstrumentationFailed] code.
func InstrumentationFailed() Code { return TP070InstrumentationFailed }
