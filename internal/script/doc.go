// Package script runs Lua scenario scripts against a session's engine.
//
// Scripts run in a sandbox with only the base, table, string and math
// libraries. The engine is exposed as the global table buf, also loadable
// with require("buf"):
//
//	buf.insert("Hello")      -- one insert per rune
//	buf.move_left(3)         -- optional repeat count
//	buf.insert("X")
//	assert(buf.text() == "HeXllo")
//	assert(buf.cursor() == 3) -- cursor positions are 0-based
//
// Queries: text, cursor, len, memory, op_count, last_op, kind, tokens,
// stats, gap (nil unless the engine has one), nodes (nil unless linked)
// and validate. Mutations: insert, delete_left, delete_right, move_left,
// move_right, clear, reset_tracking and set_expansion_factor.
//
// Every run is bounded by a timeout through the Lua state's context.
package script
