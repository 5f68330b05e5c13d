// Package scenario loads process definitions and simulation settings from
// YAML scenario files and CSV process lists.
package scenario

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/sarchlab/cpusched/sched"
)

// Errors reported while loading a scenario.
var (
	ErrUnsupportedFormat = errors.New("unsupported scenario format")
	ErrInvalidRow        = errors.New("invalid process row")
	ErrInvalidSetting    = errors.New("invalid setting")
)

// A Scenario is a set of process definitions and the settings to simulate
// them with. Zero settings keep the simulator's current values.
type Scenario struct {
	Algorithm    string              `yaml:"algorithm"`
	Quantum      int                 `yaml:"quantum"`
	Units        int                 `yaml:"units"`
	SRTFEviction *bool               `yaml:"srtfEviction"`
	Processes    []sched.ProcessSpec `yaml:"processes"`
}

// Load reads a scenario from a file. The format is chosen by the extension:
// .yaml and .yml files are scenarios, .csv files are process lists.
func Load(path string) (*Scenario, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var sc *Scenario

	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".yaml", ".yml":
		sc, err = ParseYAML(f)
	case ".csv":
		sc, err = ParseCSV(f)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedFormat, ext)
	}

	if err != nil {
		return nil, fmt.Errorf("load %s: %w", path, err)
	}

	return sc, nil
}

// ParseYAML decodes and validates a YAML scenario. Unknown keys are errors.
func ParseYAML(r io.Reader) (*Scenario, error) {
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)

	sc := &Scenario{}
	if err := dec.Decode(sc); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("YAML parse error: %w", err)
	}

	if err := sc.Validate(); err != nil {
		return nil, err
	}

	return sc, nil
}

// ParseCSV reads a process list with the columns name, burst, arrival and
// an optional priority. A header row starting with "name" and lines
// starting with # are skipped.
func ParseCSV(r io.Reader) (*Scenario, error) {
	reader := csv.NewReader(r)
	reader.Comment = '#'
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	sc := &Scenario{}

	for first := true; ; first = false {
		row, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}

		if err != nil {
			return nil, fmt.Errorf("reading CSV: %w", err)
		}

		line, _ := reader.FieldPos(0)
		if first && strings.EqualFold(strings.TrimSpace(row[0]), "name") {
			continue
		}

		spec, err := parseRow(row)
		if err == nil {
			err = spec.Validate()
		}

		if err != nil {
			return nil, fmt.Errorf("%w on line %d: %w", ErrInvalidRow, line, err)
		}

		sc.Processes = append(sc.Processes, spec)
	}

	return sc, nil
}

func parseRow(row []string) (sched.ProcessSpec, error) {
	if len(row) < 3 || len(row) > 4 {
		return sched.ProcessSpec{}, fmt.Errorf("expected 3 or 4 columns, got %d", len(row))
	}

	spec := sched.ProcessSpec{Name: strings.TrimSpace(row[0])}

	fields := []struct {
		name string
		dst  *int
	}{
		{"burst", &spec.BurstTime},
		{"arrival", &spec.ArrivalTime},
		{"priority", &spec.Priority},
	}

	for j, col := range row[1:] {
		v, err := strconv.Atoi(strings.TrimSpace(col))
		if err != nil {
			return sched.ProcessSpec{}, fmt.Errorf("%s: %w", fields[j].name, err)
		}

		*fields[j].dst = v
	}

	return spec, nil
}

// Validate checks the settings and every process definition.
func (sc *Scenario) Validate() error {
	if sc.Algorithm != "" {
		if _, err := sched.ParseAlgorithm(sc.Algorithm); err != nil {
			return err
		}
	}

	if sc.Quantum < 0 {
		return fmt.Errorf("%w: quantum %d", ErrInvalidSetting, sc.Quantum)
	}

	if sc.Units < 0 {
		return fmt.Errorf("%w: units %d", ErrInvalidSetting, sc.Units)
	}

	for i, p := range sc.Processes {
		if err := p.Validate(); err != nil {
			return fmt.Errorf("process %d (%q): %w", i+1, p.Name, err)
		}
	}

	return nil
}
