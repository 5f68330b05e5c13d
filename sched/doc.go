// Package sched implements the scheduling simulation engine.
//
// The engine is a pure state machine. A State holds the process definitions,
// the ready queue, one slot per processing unit, and the completed list.
// Tick and Apply never modify their input; they compute the next State from
// a deep copy, so every transition is atomic.
//
// One tick always runs the same phases in the same order:
//
//  1. advance the clock
//  2. admit due processes to the ready queue
//  3. age the running processes and their time slices
//  4. retire processes that have no remaining time
//  5. return Round Robin processes whose slice expired to the queue tail
//  6. dispatch onto free units with SelectNext
//  7. for SRTF, swap out running processes that have more remaining time
//     than the best ready process
//
// Phase 7 extends the strict admit, age, complete, expire, dispatch order.
// It is on by default and Options.DispatchOnlySRTF (the SetEviction
// command) turns it off, leaving SRTF with dispatch-time selection only.
//
// At time zero the state is primed: zero-arrival processes are ready and
// already dispatched, so a process arriving at time zero with a burst of
// three completes at time three.
package sched
