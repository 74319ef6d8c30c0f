package codegen

import (
	"github.com/llir/llvm/ir"
	"github.com/llir/llvm/ir/constant"
	"github.com/llir/llvm/ir/enum"
	"github.com/llir/llvm/ir/types"

	"telepathy/internal/mir"
)

const llvmMemorySize = 8192

// llvmEmitter lowers a sequenced Program into an LLVM module: every
// register becomes a stack slot (an i64 alloca) so that Move and the
// sequencer's register-reuse discipline translate directly into
// store/load pairs rather than needing SSA reconstruction, and the tape
// is one zero-initialized global byte array indexed by pointer+state,
// mirroring the C89 target's addressing convention.
type llvmEmitter struct {
	module  *ir.Module
	memory  *ir.Global
	getchar *ir.Func
	putchar *ir.Func
	locals  []*ir.InstAlloca
}

// EmitLLVM lowers program into an LLVM IR module whose main function
// returns 0 on completion.
func EmitLLVM(program mir.Program) *ir.Module {
	e := &llvmEmitter{module: ir.NewModule()}

	arrayType := types.NewArray(llvmMemorySize, types.I8)
	e.memory = e.module.NewGlobalDef("telepathy_memory", constant.NewZeroInitializer(arrayType))

	e.getchar = e.module.NewFunc("getchar", types.I32)
	e.putchar = e.module.NewFunc("putchar", types.I32, ir.NewParam("", types.I32))

	main := e.module.NewFunc("main", types.I32)
	entry := main.NewBlock("entry")

	e.locals = make([]*ir.InstAlloca, program.Locals)
	for i := range e.locals {
		e.locals[i] = entry.NewAlloca(types.I64)
	}

	end := e.lowerBody(main, program.Bodies, 0, entry)
	end.NewRet(constant.NewInt(types.I32, 0))

	return e.module
}

func (e *llvmEmitter) lowerBody(f *ir.Func, bodies [][]mir.Instruction, index int, cur *ir.Block) *ir.Block {
	for _, insn := range bodies[index] {
		switch v := insn.(type) {
		case mir.Select:
			cur = e.lowerSelect(f, bodies, v, cur)
		case mir.Repeat:
			cur = e.lowerRepeat(f, bodies, v, cur)
		default:
			e.lowerSimple(cur, insn)
		}
	}
	return cur
}

func (e *llvmEmitter) lowerSimple(cur *ir.Block, insn mir.Instruction) {
	switch v := insn.(type) {
	case mir.Memory:
		cur.NewStore(constant.NewInt(types.I64, llvmMemorySize/2), e.locals[v.Result])
	case mir.IO:
		cur.NewStore(constant.NewInt(types.I64, 0), e.locals[v.Result])
	case mir.Integer:
		cur.NewStore(constant.NewInt(types.I64, int64(v.Value)), e.locals[v.Result])
	case mir.Move:
		val := cur.NewLoad(types.I64, e.locals[v.From])
		cur.NewStore(val, e.locals[v.To])
	case mir.Add:
		lhs := cur.NewLoad(types.I64, e.locals[v.Lhs])
		rhs := cur.NewLoad(types.I64, e.locals[v.Rhs])
		cur.NewStore(cur.NewAdd(lhs, rhs), e.locals[v.Result])
	case mir.Sub:
		lhs := cur.NewLoad(types.I64, e.locals[v.Lhs])
		rhs := cur.NewLoad(types.I64, e.locals[v.Rhs])
		cur.NewStore(cur.NewSub(lhs, rhs), e.locals[v.Result])
	case mir.Load:
		ptr := e.cellAddress(cur, v.Pointer, v.State)
		byteVal := cur.NewLoad(types.I8, ptr)
		cur.NewStore(cur.NewZExt(byteVal, types.I64), e.locals[v.Result])
	case mir.Store:
		ptr := e.cellAddress(cur, v.Pointer, v.State)
		val := cur.NewLoad(types.I64, e.locals[v.Value])
		cur.NewStore(cur.NewTrunc(val, types.I8), ptr)
	case mir.Ask:
		got := cur.NewCall(e.getchar)
		cur.NewStore(cur.NewSExt(got, types.I64), e.locals[v.Result])
	case mir.Tell:
		val := cur.NewLoad(types.I64, e.locals[v.Value])
		cur.NewCall(e.putchar, cur.NewTrunc(val, types.I32))
	}
}

func (e *llvmEmitter) cellAddress(cur *ir.Block, pointer, state mir.Register) *ir.InstGetElementPtr {
	ptrVal := cur.NewLoad(types.I64, e.locals[pointer])
	stateVal := cur.NewLoad(types.I64, e.locals[state])
	index := cur.NewAdd(ptrVal, stateVal)
	return cur.NewGetElementPtr(e.memory.ContentType, e.memory, constant.NewInt(types.I64, 0), index)
}

func (e *llvmEmitter) lowerSelect(f *ir.Func, bodies [][]mir.Instruction, v mir.Select, cur *ir.Block) *ir.Block {
	cont := f.NewBlock("")

	arms := make([]*ir.Block, len(v.Code))
	for i := range arms {
		arms[i] = f.NewBlock("")
	}

	condVal := cur.NewLoad(types.I64, e.locals[v.Condition])
	var cases []*ir.Case
	for i := 0; i < len(arms)-1; i++ {
		cases = append(cases, ir.NewCase(constant.NewInt(types.I64, int64(i)), arms[i]))
	}
	cur.NewSwitch(condVal, arms[len(arms)-1], cases...)

	for i, code := range v.Code {
		end := e.lowerBody(f, bodies, code, arms[i])
		end.NewBr(cont)
	}

	return cont
}

func (e *llvmEmitter) lowerRepeat(f *ir.Func, bodies [][]mir.Instruction, v mir.Repeat, cur *ir.Block) *ir.Block {
	loop := f.NewBlock("")
	cont := f.NewBlock("")

	cur.NewBr(loop)
	end := e.lowerBody(f, bodies, v.Code, loop)

	condVal := end.NewLoad(types.I64, e.locals[v.Condition])
	cmp := end.NewICmp(enum.IPredNE, condVal, constant.NewInt(types.I64, 0))
	end.NewCondBr(cmp, loop, cont)

	return cont
}
