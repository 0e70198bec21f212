package llvmir

import (
	"bytes"

	"github.com/llir/llvm/ir"
	"github.com/llir/llvm/ir/constant"

	"github.com/sirkon/trackpaths/internal/annotations"
)

// AnnotationsGlobal is the name of the global holding the annotation table.
const AnnotationsGlobal = "llvm.global.annotations"

// Annotations decodes the module annotation table. A module without the
// table, or with a table of unexpected shape, has no records.
//
// Every element of the table produces a record even if it does not refer
// to a function, its Function is left empty then.
func Annotations(m *ir.Module) []annotations.Record {
	var table *ir.Global
	for _, g := range m.Globals {
		if g.Name() == AnnotationsGlobal {
			table = g
			break
		}
	}
	if table == nil {
		return nil
	}

	arr, ok := table.Init.(*constant.Array)
	if !ok {
		return nil
	}

	res := make([]annotations.Record, 0, len(arr.Elems))
	for _, elem := range arr.Elems {
		res = append(res, annotationRecord(elem))
	}

	return res
}

func annotationRecord(c constant.Constant) annotations.Record {
	var rec annotations.Record

	entry, ok := c.(*constant.Struct)
	if !ok {
		return rec
	}

	fields := entry.Fields
	if len(fields) > 0 {
		if f, ok := stripCasts(fields[0]).(*ir.Func); ok {
			rec.Function = f.Name()
		}
	}
	if len(fields) > 1 {
		rec.Annotation = cString(fields[1])
	}
	if len(fields) > 2 {
		rec.File = cString(fields[2])
	}
	if len(fields) > 3 {
		if v, ok := fields[3].(*constant.Int); ok && v.X.IsInt64() {
			rec.Line = int(v.X.Int64())
		}
	}

	return rec
}

// stripCasts removes pointer casts around a constant.
func stripCasts(c constant.Constant) constant.Constant {
	for {
		switch v := c.(type) {
		case *constant.ExprBitCast:
			c = v.From
		case *constant.ExprAddrSpaceCast:
			c = v.From
		default:
			return c
		}
	}
}

// cString reads a NUL terminated string from a constant pointing to a
// global character array, either directly or through a GEP.
func cString(c constant.Constant) string {
	c = stripCasts(c)
	if gep, ok := c.(*constant.ExprGetElementPtr); ok {
		c = stripCasts(gep.Src)
	}

	g, ok := c.(*ir.Global)
	if !ok {
		return ""
	}

	data, ok := g.Init.(*constant.CharArray)
	if !ok {
		return ""
	}

	if i := bytes.IndexByte(data.X, 0); i >= 0 {
		return string(data.X[:i])
	}

	return string(data.X)
}
