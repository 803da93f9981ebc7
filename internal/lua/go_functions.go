package lua

import (
	"context"
	"log"
	"time"

	"github.com/Inspyre-Softworks/led-matrix-battery/internal/display"
	"github.com/Inspyre-Softworks/led-matrix-battery/internal/matrix"

	lua "github.com/yuin/gopher-lua"
)

// registerGoFunctions exposes the matrix API to the given Lua state.
// Scripts run inside the pattern's context, so every blocking helper
// takes ctx and wakes up when the pattern is stopped.
func (e *Engine) registerGoFunctions(L *lua.LState, ctx context.Context) {
	L.SetGlobal("set_brightness", L.NewFunction(e.luaSetBrightness))
	L.SetGlobal("show_percentage", L.NewFunction(e.luaShowPercentage))
	L.SetGlobal("show_string", L.NewFunction(e.luaShowString))
	L.SetGlobal("draw_pattern", L.NewFunction(e.luaDrawPattern))
	L.SetGlobal("draw_grid", L.NewFunction(e.luaDrawGrid))
	L.SetGlobal("animate", L.NewFunction(e.luaAnimate))
	L.SetGlobal("clear", L.NewFunction(e.luaClear))
	L.SetGlobal("print", L.NewFunction(luaPrint))

	L.SetGlobal("sleep", L.NewFunction(luaSleepCancellable(ctx)))
	L.SetGlobal("should_stop", L.NewFunction(luaShouldStop(ctx)))

	L.SetGlobal("eq", L.NewFunction(e.luaEq))
	L.SetGlobal("show_symbols", L.NewFunction(e.luaShowSymbols))
	L.SetGlobal("light_leds", L.NewFunction(e.luaLightLEDs))

	L.SetGlobal("breathe", L.NewFunction(e.luaBreathe(ctx)))
	L.SetGlobal("flash", L.NewFunction(e.luaFlash(ctx)))
	L.SetGlobal("scroll", L.NewFunction(e.luaScroll(ctx)))
}

func luaPrint(L *lua.LState) int {
	log.Printf("[LUA] %s", L.ToString(1))
	return 0
}

func (e *Engine) luaSetBrightness(L *lua.LState) int {
	if err := matrix.SetBrightness(e.transport, L.ToInt(1)); err != nil {
		L.RaiseError("set_brightness: %v", err)
	}
	return 0
}

func (e *Engine) luaShowPercentage(L *lua.LState) int {
	if err := matrix.ShowPercentage(e.transport, L.ToInt(1)); err != nil {
		L.RaiseError("show_percentage: %v", err)
	}
	return 0
}

func (e *Engine) luaShowString(L *lua.LState) int {
	if err := matrix.ShowString(e.transport, L.ToString(1)); err != nil {
		L.RaiseError("show_string: %v", err)
	}
	return 0
}

func (e *Engine) luaDrawPattern(L *lua.LState) int {
	if err := matrix.DrawPattern(e.transport, L.ToString(1)); err != nil {
		L.RaiseError("draw_pattern: %v", err)
	}
	return 0
}

// gridFromTable reads a Lua table of Height rows, each a table of Width
// cell values, into a grid. Extra rows and cells are ignored.
func gridFromTable(tbl *lua.LTable) *display.Grid {
	grid := display.NewGrid()
	y := 0
	tbl.ForEach(func(_, row lua.LValue) {
		rowTbl, ok := row.(*lua.LTable)
		if !ok || y >= display.Height {
			return
		}
		x := 0
		rowTbl.ForEach(func(_, cell lua.LValue) {
			if x < display.Width {
				grid.Set(x, y, int(lua.LVAsNumber(cell)))
			}
			x++
		})
		y++
	})
	return grid
}

// luaDrawGrid draws a table of rows as a black/white bitmap.
func (e *Engine) luaDrawGrid(L *lua.LState) int {
	grid := gridFromTable(L.CheckTable(1))
	if err := matrix.DrawGrid(e.transport, grid); err != nil {
		L.RaiseError("draw_grid: %v", err)
	}
	return 0
}

// luaEq draws up to nine values as an equalizer growing from the middle
// row.
func (e *Engine) luaEq(L *lua.LState) int {
	tbl := L.CheckTable(1)
	var vals []int
	tbl.ForEach(func(_, v lua.LValue) {
		vals = append(vals, int(lua.LVAsNumber(v)))
	})
	if err := matrix.DrawGrid(e.transport, display.Equalizer(vals)); err != nil {
		L.RaiseError("eq: %v", err)
	}
	return 0
}

// luaShowSymbols renders named symbols (and single characters) stacked
// like show_string.
func (e *Engine) luaShowSymbols(L *lua.LState) int {
	tbl := L.CheckTable(1)
	var names []string
	tbl.ForEach(func(_, v lua.LValue) {
		names = append(names, lua.LVAsString(v))
	})
	if err := matrix.DrawGrid(e.transport, display.RenderSymbols(names)); err != nil {
		L.RaiseError("show_symbols: %v", err)
	}
	return 0
}

func (e *Engine) luaLightLEDs(L *lua.LState) int {
	if err := matrix.LightLEDs(e.transport, L.ToInt(1)); err != nil {
		L.RaiseError("light_leds: %v", err)
	}
	return 0
}

func (e *Engine) luaAnimate(L *lua.LState) int {
	if err := matrix.Animate(e.transport, L.ToBool(1)); err != nil {
		L.RaiseError("animate: %v", err)
	}
	return 0
}

func (e *Engine) luaClear(L *lua.LState) int {
	if err := matrix.Clear(e.transport); err != nil {
		L.RaiseError("clear: %v", err)
	}
	return 0
}

// cancellableSleep waits for d or until ctx is cancelled, reporting
// whether the cancel happened first.
func cancellableSleep(ctx context.Context, d time.Duration) bool {
	select {
	case <-time.After(d):
		return false
	case <-ctx.Done():
		return true
	}
}

func luaSleepCancellable(ctx context.Context) lua.LGFunction {
	return func(L *lua.LState) int {
		ms := L.ToInt(1)
		cancellableSleep(ctx, time.Duration(ms)*time.Millisecond)
		return 0
	}
}

func luaShouldStop(ctx context.Context) lua.LGFunction {
	return func(L *lua.LState) int {
		select {
		case <-ctx.Done():
			L.Push(lua.LBool(true))
		default:
			L.Push(lua.LBool(false))
		}
		return 1
	}
}

// luaBreathe pulses the raw display brightness for the given duration in
// milliseconds. Bright values look alike, so the top of the cycle moves
// faster than the dark tail.
func (e *Engine) luaBreathe(ctx context.Context) lua.LGFunction {
	return func(L *lua.LState) int {
		durationMs := L.ToInt(1)
		deadline := time.Now().Add(time.Duration(durationMs) * time.Millisecond)

		setRaw := func(v int) {
			_ = e.transport.Send(matrix.BuildCommand(matrix.CmdBrightness, byte(v)))
		}
		phase := func(steps int, delay time.Duration, value func(i int) int) bool {
			for i := 0; i < steps; i++ {
				setRaw(value(i))
				if cancellableSleep(ctx, delay) {
					return true
				}
			}
			return false
		}

		fast, slow := 30*time.Millisecond, 60*time.Millisecond
		for time.Now().Before(deadline) {
			if phase(10, fast, func(i int) int { return 250 - i*20 }) ||
				phase(10, slow, func(i int) int { return 50 - i*5 }) ||
				phase(10, slow, func(i int) int { return i * 5 }) ||
				phase(10, fast, func(i int) int { return 50 + i*20 }) {
				return 0
			}
		}
		return 0
	}
}

// luaFlash alternates a fully lit and a cleared display for a total
// duration at a given frequency (in Hz).
func (e *Engine) luaFlash(ctx context.Context) lua.LGFunction {
	return func(L *lua.LState) int {
		durationMs := L.ToInt(1)
		hz := float64(L.ToNumber(2))

		if hz <= 0 {
			return 0
		}
		duration := time.Duration(durationMs) * time.Millisecond
		halfPeriod := time.Duration(float64(time.Second) / hz / 2)

		lit := display.NewGrid()
		lit.Fill(1)

		startTime := time.Now()
		for time.Since(startTime) < duration {
			_ = matrix.DrawGrid(e.transport, lit)
			if cancellableSleep(ctx, halfPeriod) {
				return 0
			}
			_ = matrix.Clear(e.transport)
			if cancellableSleep(ctx, halfPeriod) {
				return 0
			}
		}
		return 0
	}
}

// luaScroll draws a grid and walks it down the display with wrap-around,
// one row per step.
func (e *Engine) luaScroll(ctx context.Context) lua.LGFunction {
	return func(L *lua.LState) int {
		grid := gridFromTable(L.CheckTable(1))
		steps := L.ToInt(2)
		delay := time.Duration(L.ToInt(3)) * time.Millisecond
		if delay <= 0 {
			delay = 100 * time.Millisecond
		}

		for i := 0; i < steps; i++ {
			if err := matrix.DrawGrid(e.transport, grid.ShiftedDown(i, true)); err != nil {
				L.RaiseError("scroll: %v", err)
				return 0
			}
			if cancellableSleep(ctx, delay) {
				return 0
			}
		}
		return 0
	}
}
