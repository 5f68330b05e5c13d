package sched

import (
	"errors"
	"fmt"
	"strings"
)

// Errors reported by ProcessSpec.Validate.
var (
	ErrEmptyName       = errors.New("process name must not be empty")
	ErrNegativeArrival = errors.New("arrival time must not be negative")
	ErrInvalidBurst    = errors.New("burst time must be at least 1")
)

// NoUnit marks a process that has never been placed on a processing unit.
const NoUnit = -1

// ProcessSpec is the user-supplied definition of a process.
type ProcessSpec struct {
	Name        string `json:"name" yaml:"name"`
	ArrivalTime int    `json:"arrival_time" yaml:"arrival"`
	BurstTime   int    `json:"burst_time" yaml:"burst"`
	Priority    int    `json:"priority" yaml:"priority"`
}

// Validate checks a definition before it enters the simulation. The
// engine itself assumes validated input.
func (s ProcessSpec) Validate() error {
	if strings.TrimSpace(s.Name) == "" {
		return ErrEmptyName
	}

	if s.ArrivalTime < 0 {
		return fmt.Errorf("%w: got %d", ErrNegativeArrival, s.ArrivalTime)
	}

	if s.BurstTime < 1 {
		return fmt.Errorf("%w: got %d", ErrInvalidBurst, s.BurstTime)
	}

	return nil
}

// A Process is a unit of simulated work.
type Process struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	ArrivalTime int    `json:"arrival_time"`
	BurstTime   int    `json:"burst_time"`
	Priority    int    `json:"priority"`

	RemainingTime int `json:"remaining_time"`

	Started      bool `json:"started"`
	StartTime    int  `json:"start_time"`
	ResponseTime int  `json:"response_time"`

	Finished       bool `json:"finished"`
	FinishTime     int  `json:"finish_time"`
	WaitingTime    int  `json:"waiting_time"`
	TurnaroundTime int  `json:"turnaround_time"`

	// LastUnit is the index of the unit the process last ran on, or NoUnit.
	LastUnit int `json:"last_unit"`
}

// NewProcess creates a fresh process from a definition.
func NewProcess(id string, spec ProcessSpec) Process {
	p := Process{
		ID:          id,
		Name:        strings.TrimSpace(spec.Name),
		ArrivalTime: spec.ArrivalTime,
		BurstTime:   spec.BurstTime,
		Priority:    spec.Priority,
	}

	return p.resetProgress()
}

// Spec returns the definition the process was created from.
func (p Process) Spec() ProcessSpec {
	return ProcessSpec{
		Name:        p.Name,
		ArrivalTime: p.ArrivalTime,
		BurstTime:   p.BurstTime,
		Priority:    p.Priority,
	}
}

func (p Process) resetProgress() Process {
	p.RemainingTime = p.BurstTime
	p.Started = false
	p.StartTime = 0
	p.ResponseTime = 0
	p.Finished = false
	p.FinishTime = 0
	p.WaitingTime = 0
	p.TurnaroundTime = 0
	p.LastUnit = NoUnit

	return p
}

// dispatched stamps the first-dispatch fields. Later dispatches only move
// the process to the given unit.
func (p Process) dispatched(now, unit int) Process {
	if !p.Started {
		p.Started = true
		p.StartTime = now
		p.ResponseTime = now - p.ArrivalTime
	}

	p.LastUnit = unit

	return p
}

func (p Process) finished(now int) Process {
	p.Finished = true
	p.FinishTime = now
	p.TurnaroundTime = p.FinishTime - p.ArrivalTime
	p.WaitingTime = p.TurnaroundTime - p.BurstTime

	return p
}
