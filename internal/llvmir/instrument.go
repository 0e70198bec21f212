package llvmir

import (
	"errors"
	"fmt"
	"slices"

	"github.com/llir/llvm/ir"
	"github.com/llir/llvm/ir/constant"
	"github.com/llir/llvm/ir/types"

	"github.com/sirkon/trackpaths/internal/pathtrack"
)

// DefaultRecorder is the name of the coverage recording routine.
const DefaultRecorder = "___optmuzz_coverage"

// ErrRecorderSignature is returned when the module already has a symbol
// named after the recorder which is not a void(i64) function.
var ErrRecorderSignature = errors.New("coverage recorder has incompatible signature")

// Instrumenter inserts recorder calls into blocks of a single function.
type Instrumenter struct {
	module   *ir.Module
	fn       *ir.Func
	name     string
	recorder *ir.Func
}

var _ pathtrack.Instrumenter = (*Instrumenter)(nil)

// NewInstrumenter is [Instrumenter] constructor. Block indices it receives
// are the ones of the [Graph] built from the same function.
func NewInstrumenter(m *ir.Module, f *ir.Func, recorder string) *Instrumenter {
	if recorder == "" {
		recorder = DefaultRecorder
	}

	return &Instrumenter{
		module: m,
		fn:     f,
		name:   recorder,
	}
}

func recorderSig() *types.FuncType {
	return types.NewFunc(types.Void, types.I64)
}

// Declare gets or inserts the recorder declaration.
func (ins *Instrumenter) Declare() (bool, error) {
	if ins.recorder != nil {
		return false, nil
	}

	for _, g := range ins.module.Globals {
		if g.Name() == ins.name {
			return false, fmt.Errorf("global @%s: %w", ins.name, ErrRecorderSignature)
		}
	}

	for _, f := range ins.module.Funcs {
		if f.Name() != ins.name {
			continue
		}

		if !f.Sig.Equal(recorderSig()) {
			return false, fmt.Errorf("function @%s of type %s: %w", ins.name, f.Sig, ErrRecorderSignature)
		}

		ins.recorder = f
		return false, nil
	}

	ins.recorder = ins.module.NewFunc(ins.name, types.Void, ir.NewParam("", types.I64))
	return true, nil
}

// Instrumented checks if the block already calls the recorder.
func (ins *Instrumenter) Instrumented(block int) bool {
	for _, inst := range ins.fn.Blocks[block].Insts {
		if ins.isRecorderCall(inst) {
			return true
		}
	}

	return false
}

// Instrument inserts the call at the first insertion point of the block.
func (ins *Instrumenter) Instrument(block int, id uint64) error {
	if ins.recorder == nil {
		return errors.New("coverage recorder is not declared")
	}

	b := ins.fn.Blocks[block]
	pos, ok := insertionPoint(b)
	if !ok {
		return fmt.Errorf("block %s: %w", b.Name(), pathtrack.ErrNoInsertionPoint)
	}

	call := ir.NewCall(ins.recorder, constant.NewInt(types.I64, int64(id)))
	b.Insts = slices.Insert(b.Insts, pos, ir.Instruction(call))

	return nil
}

func (ins *Instrumenter) isRecorderCall(inst ir.Instruction) bool {
	call, ok := inst.(*ir.InstCall)
	if !ok {
		return false
	}

	f, ok := call.Callee.(*ir.Func)
	return ok && f.Name() == ins.name
}

// insertionPoint returns the position in block instructions a new
// instruction can be placed at: past leading phi nodes and past an
// exception handling pad.
func insertionPoint(b *ir.Block) (int, bool) {
	if _, ok := b.Term.(*ir.TermCatchSwitch); ok {
		return 0, false
	}

	pos := 0
	for pos < len(b.Insts) {
		if _, ok := b.Insts[pos].(*ir.InstPhi); !ok {
			break
		}
		pos++
	}

	if pos < len(b.Insts) {
		switch b.Insts[pos].(type) {
		case *ir.InstLandingPad, *ir.InstCatchPad, *ir.InstCleanupPad:
			pos++
		}
	}

	return pos, true
}
