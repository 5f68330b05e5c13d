package sched

// HookPos defines the enum of possible hooking positions
type HookPos struct {
	Name string
}

// HookCtx is the context that holds all the information about the site that a
// hook is triggered
type HookCtx struct {
	Domain Hookable
	Pos    *HookPos
	Item   interface{}
	Detail interface{}
}

// Hookable defines an object that accept Hooks
type Hookable interface {
	// AcceptHook registers a hook
	AcceptHook(hook Hook)

	// NumHooks returns the number of hooks registered
	NumHooks() int
}

// HookPosAfterTick triggers after a tick is applied. The Item is the
// TickReport and the Detail is the resulting State.
var HookPosAfterTick = &HookPos{Name: "AfterTick"}

// HookPosProcessDone triggers once for every process that completes. The Item
// is the completed Process.
var HookPosProcessDone = &HookPos{Name: "ProcessDone"}

// HookPosSimulationDone triggers when the last defined process completes. The
// Item is the final State.
var HookPosSimulationDone = &HookPos{Name: "SimulationDone"}

// HookPosReset triggers after the simulation returns to time zero. The Item
// is the new State.
var HookPosReset = &HookPos{Name: "Reset"}

// HookPosCommand triggers after a control command other than a tick is
// applied. The Item is the Command and the Detail is the resulting State.
var HookPosCommand = &HookPos{Name: "Command"}

// Hook is a short piece of program that can be invoked by a hookable object.
type Hook interface {
	// Func determines what to do if hook is invoked.
	Func(ctx HookCtx)
}

// HookFunc adapts a plain function to the Hook interface.
type HookFunc func(ctx HookCtx)

// Func calls f(ctx).
func (f HookFunc) Func(ctx HookCtx) {
	f(ctx)
}

// A HookableBase provides some utility function for other type that implement
// the Hookable interface.
type HookableBase struct {
	Hooks []Hook
}

// NewHookableBase creates a HookableBase object
func NewHookableBase() *HookableBase {
	h := new(HookableBase)
	h.Hooks = make([]Hook, 0)
	return h
}

// AcceptHook register a hook
func (h *HookableBase) AcceptHook(hook Hook) {
	h.Hooks = append(h.Hooks, hook)
}

// NumHooks returns the number of hooks registered.
func (h *HookableBase) NumHooks() int {
	return len(h.Hooks)
}

// InvokeHook triggers the register Hooks
func (h *HookableBase) InvokeHook(ctx HookCtx) {
	for _, hook := range h.Hooks {
		hook.Func(ctx)
	}
}
