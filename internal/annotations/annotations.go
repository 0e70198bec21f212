// Package annotations selects the functions marked for path tracking.
//
// Hosts decode their own annotation storage (the llvm.global.annotations
// table, Go directives) into a plain list of [Record] values; the selection
// itself never looks at host structures.
package annotations

// Record is a single entry of an annotation table.
type Record struct {
	// Function is the name of the annotated function. Empty when the
	// table entry does not resolve to a function.
	Function string

	// Annotation is the attribute string attached to the function.
	Annotation string

	// File and Line point to the annotation in the sources.
	File string
	Line int
}

// Scan returns the names of annotated functions in table order, each once.
// Records without a resolved function are skipped. A non-empty annotation
// keeps only records carrying exactly that attribute string.
func Scan(records []Record, annotation string) []string {
	var (
		res  []string
		seen = map[string]struct{}{}
	)
	for _, rec := range records {
		if rec.Function == "" {
			continue
		}
		if annotation != "" && rec.Annotation != annotation {
			continue
		}
		if _, ok := seen[rec.Function]; ok {
			continue
		}

		seen[rec.Function] = struct{}{}
		res = append(res, rec.Function)
	}

	return res
}
