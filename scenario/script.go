// Package scenario drives an observer.System from a YAML script: an initial
// state tree, a set of path watches and a sequence of mutation steps. Every
// watcher callback is recorded as an Event.
package scenario

import (
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v2"
)

var (
	ErrUnknownOp = errors.New("scenario: unknown step op")
	ErrBadTarget = errors.New("scenario: step target is not a container")
)

// Step operations.
const (
	OpSet    = "set"
	OpDelete = "delete"
	OpPush   = "push"
	OpPop    = "pop"
	OpSplice = "splice"
	OpTick   = "tick"
)

// Watch is a path watched for the whole run.
type Watch struct {
	// Name labels events; it defaults to Path.
	Name string `json:"name,omitempty" yaml:"name,omitempty"`

	Path string `json:"path" yaml:"path"`

	Deep      bool `json:"deep,omitempty" yaml:"deep,omitempty"`
	Immediate bool `json:"immediate,omitempty" yaml:"immediate,omitempty"`

	// Sync runs the watcher on every change instead of once per tick.
	Sync bool `json:"sync,omitempty" yaml:"sync,omitempty"`
}

func (w Watch) label() string {
	if w.Name != "" {
		return w.Name
	}
	return w.Path
}

// Step is one mutation of the state.
type Step struct {
	// Doc is an opaque documentation string.
	Doc string `json:"doc,omitempty" yaml:"doc,omitempty"`

	Op   string `json:"op" yaml:"op"`
	Path string `json:"path,omitempty" yaml:"path,omitempty"`

	// Value is the value written by set.
	Value interface{} `json:"value,omitempty" yaml:"value,omitempty"`

	// Values are inserted by push and splice.
	Values []interface{} `json:"values,omitempty" yaml:"values,omitempty"`

	// Start and Count select the elements removed by splice.
	Start int `json:"start,omitempty" yaml:"start,omitempty"`
	Count int `json:"count,omitempty" yaml:"count,omitempty"`
}

// Script is a complete scenario.
type Script struct {
	// Doc is an opaque documentation string.
	Doc string `json:"doc,omitempty" yaml:"doc,omitempty"`

	// State is the initial root data, in document order.
	State yaml.MapSlice `json:"state" yaml:"state"`

	Watches []Watch `json:"watch,omitempty" yaml:"watch,omitempty"`
	Steps   []Step  `json:"steps,omitempty" yaml:"steps,omitempty"`
}

// Parse decodes a YAML script.
func Parse(bs []byte) (*Script, error) {
	var s Script
	if err := yaml.Unmarshal(bs, &s); err != nil {
		return nil, fmt.Errorf("scenario: parse: %w", err)
	}
	for i, step := range s.Steps {
		switch step.Op {
		case OpSet, OpDelete, OpPush, OpPop, OpSplice, OpTick:
		default:
			return nil, fmt.Errorf("%w %q at step %d", ErrUnknownOp, step.Op, i+1)
		}
	}
	return &s, nil
}

// LoadFile reads and parses the script at filename.
func LoadFile(filename string) (*Script, error) {
	bs, err := os.ReadFile(filename)
	if err != nil {
		return nil, err
	}
	return Parse(bs)
}
