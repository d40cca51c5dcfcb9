package script

import (
	lua "github.com/yuin/gopher-lua"

	"github.com/dshills/bufferlab/internal/engine/buffer"
)

// bufferModule implements the buf table.
type bufferModule struct {
	b buffer.Buffer
}

func newBufferModule(b buffer.Buffer) *bufferModule {
	return &bufferModule{b: b}
}

// table builds the Lua table of module functions.
func (m *bufferModule) table(L *lua.LState) *lua.LTable {
	return L.SetFuncs(L.NewTable(), map[string]lua.LGFunction{
		"insert":               m.insert,
		"delete_left":          m.repeat(m.b.DeleteLeft),
		"delete_right":         m.repeat(m.b.DeleteRight),
		"move_left":            m.repeat(m.b.MoveLeft),
		"move_right":           m.repeat(m.b.MoveRight),
		"clear":                m.clear,
		"reset_tracking":       m.resetTracking,
		"set_expansion_factor": m.setExpansionFactor,
		"text":                 m.text,
		"cursor":               m.cursor,
		"len":                  m.bufLen,
		"memory":               m.memory,
		"op_count":             m.opCount,
		"last_op":              m.lastOp,
		"kind":                 m.kind,
		"tokens":               m.tokens,
		"stats":                m.stats,
		"gap":                  m.gap,
		"nodes":                m.nodes,
		"validate":             m.validate,
	})
}

// insert(s)
// Inserts each rune of s before the cursor.
func (m *bufferModule) insert(L *lua.LState) int {
	buffer.InsertString(m.b, L.CheckString(1))
	return 0
}

// cancelCheckInterval is how many repeated operations run between checks
// of the script's context.
const cancelCheckInterval = 1024

// repeat wraps a contract operation as fn([n]); n defaults to 1.
func (m *bufferModule) repeat(op func()) lua.LGFunction {
	return func(L *lua.LState) int {
		n := L.OptInt(1, 1)
		if n < 0 {
			L.ArgError(1, "count must be >= 0")
			return 0
		}
		ctx := L.Context()
		for i := range n {
			if ctx != nil && i%cancelCheckInterval == 0 && ctx.Err() != nil {
				L.RaiseError("interrupted after %d of %d operations: %v", i, n, ctx.Err())
				return 0
			}
			op()
		}
		return 0
	}
}

// clear()
func (m *bufferModule) clear(L *lua.LState) int {
	m.b.Clear()
	return 0
}

// reset_tracking()
func (m *bufferModule) resetTracking(L *lua.LState) int {
	m.b.ResetOperationTracking()
	return 0
}

// set_expansion_factor(f) -> bool
// Returns false when the engine has no gap.
func (m *bufferModule) setExpansionFactor(L *lua.LState) int {
	f := float64(L.CheckNumber(1))
	gi, ok := m.b.(buffer.GapInspector)
	if ok {
		gi.SetExpansionFactor(f)
	}
	L.Push(lua.LBool(ok))
	return 1
}

// text() -> string
func (m *bufferModule) text(L *lua.LState) int {
	L.Push(lua.LString(m.b.Text()))
	return 1
}

// cursor() -> number
// Returns the 0-based cursor position in cells.
func (m *bufferModule) cursor(L *lua.LState) int {
	L.Push(lua.LNumber(m.b.Cursor()))
	return 1
}

// len() -> number
// Returns the number of cells.
func (m *bufferModule) bufLen(L *lua.LState) int {
	L.Push(lua.LNumber(m.b.Len()))
	return 1
}

// memory() -> number
func (m *bufferModule) memory(L *lua.LState) int {
	L.Push(lua.LNumber(m.b.MemoryEstimate()))
	return 1
}

// op_count() -> number
func (m *bufferModule) opCount(L *lua.LState) int {
	L.Push(lua.LNumber(m.b.OperationCount()))
	return 1
}

// last_op() -> string
func (m *bufferModule) lastOp(L *lua.LState) int {
	L.Push(lua.LString(m.b.LastOperation()))
	return 1
}

// kind() -> string
func (m *bufferModule) kind(L *lua.LState) int {
	L.Push(lua.LString(m.b.Kind().String()))
	return 1
}

// tokens() -> string
// Returns the rendered display tokens.
func (m *bufferModule) tokens(L *lua.LState) int {
	L.Push(lua.LString(buffer.Render(m.b.DisplayTokens())))
	return 1
}

// stats() -> {chars, words, lines}
func (m *bufferModule) stats(L *lua.LState) int {
	s := buffer.Stats(m.b.Text())
	t := L.NewTable()
	t.RawSetString("chars", lua.LNumber(s.Chars))
	t.RawSetString("words", lua.LNumber(s.Words))
	t.RawSetString("lines", lua.LNumber(s.Lines))
	L.Push(t)
	return 1
}

// gap() -> {size, used, free, factor} or nil
func (m *bufferModule) gap(L *lua.LState) int {
	gi, ok := m.b.(buffer.GapInspector)
	if !ok {
		L.Push(lua.LNil)
		return 1
	}
	g := gi.GapInfo()
	t := L.NewTable()
	t.RawSetString("size", lua.LNumber(g.Size))
	t.RawSetString("used", lua.LNumber(g.Used))
	t.RawSetString("free", lua.LNumber(g.Free()))
	t.RawSetString("factor", lua.LNumber(g.ExpansionFactor))
	L.Push(t)
	return 1
}

// nodes() -> {len, ...} or nil
func (m *bufferModule) nodes(L *lua.LState) int {
	ni, ok := m.b.(buffer.NodeInspector)
	if !ok {
		L.Push(lua.LNil)
		return 1
	}
	t := L.NewTable()
	for _, n := range ni.NodeLens() {
		t.Append(lua.LNumber(n))
	}
	L.Push(t)
	return 1
}

// validate() -> true | false, message
func (m *bufferModule) validate(L *lua.LState) int {
	v, ok := m.b.(buffer.Validator)
	if !ok {
		L.Push(lua.LTrue)
		return 1
	}
	if err := v.Validate(); err != nil {
		L.Push(lua.LFalse)
		L.Push(lua.LString(err.Error()))
		return 2
	}
	L.Push(lua.LTrue)
	return 1
}
