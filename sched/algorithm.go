package sched

import (
	"errors"
	"fmt"
	"strings"
)

// ErrUnknownAlgorithm is returned when an algorithm name cannot be parsed.
var ErrUnknownAlgorithm = errors.New("unknown scheduling algorithm")

// Algorithm names a scheduling policy.
type Algorithm string

// The supported scheduling policies.
const (
	FCFS       Algorithm = "FCFS"
	SJF        Algorithm = "SJF"
	SRTF       Algorithm = "SRTF"
	Priority   Algorithm = "Priority"
	RoundRobin Algorithm = "RoundRobin"
)

// Algorithms lists every supported policy in display order.
var Algorithms = []Algorithm{FCFS, SJF, SRTF, Priority, RoundRobin}

var algorithmAliases = map[string]Algorithm{
	"fcfs":                    FCFS,
	"fifo":                    FCFS,
	"first-come-first-served": FCFS,
	"sjf":                     SJF,
	"shortest-job-first":      SJF,
	"srtf":                    SRTF,
	"srt":                     SRTF,
	"shortest-remaining-time": SRTF,
	"priority":                Priority,
	"prio":                    Priority,
	"roundrobin":              RoundRobin,
	"round-robin":             RoundRobin,
	"rr":                      RoundRobin,
}

// ParseAlgorithm converts a user supplied name into an Algorithm.
func ParseAlgorithm(name string) (Algorithm, error) {
	key := strings.ToLower(strings.TrimSpace(name))
	key = strings.ReplaceAll(key, "_", "-")

	alg, ok := algorithmAliases[key]
	if !ok {
		return "", fmt.Errorf("%w: %q", ErrUnknownAlgorithm, name)
	}

	return alg, nil
}

// Known tells if the algorithm is one of the supported policies.
func (a Algorithm) Known() bool {
	for _, k := range Algorithms {
		if a == k {
			return true
		}
	}

	return false
}

// Preemptive reports whether a running process can lose its unit before it
// completes.
func (a Algorithm) Preemptive() bool {
	return a == RoundRobin || a == SRTF
}

func (a Algorithm) String() string {
	return string(a)
}
