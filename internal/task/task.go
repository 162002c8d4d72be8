// Package task resolves the writing tasks a user can trigger: the built-in
// kinds plus any definitions loaded from task packs. Resolution happens once
// at submission; the resolved Task is what travels with an operation.
package task

import (
	"fmt"
	"strings"
)

// Kind tags the task variants the coordinator understands.
type Kind string

const (
	KindRewrite   Kind = "rewrite"
	KindProofread Kind = "proofread"
	KindShorten   Kind = "shorten"
	KindExpand    Kind = "expand"
	KindCustom    Kind = "custom"
)

// Valid reports whether the kind is one of the known variants.
func (k Kind) Valid() bool {
	switch k {
	case KindRewrite, KindProofread, KindShorten, KindExpand, KindCustom:
		return true
	}
	return false
}

// Task is a resolved task variant. Downstream code branches on Kind and
// sends Instruction to the backend; nothing re-parses raw user input after
// resolution.
type Task struct {
	Kind        Kind
	Name        string
	Instruction string
}

// Normalized returns a trimmed copy of the task.
func (t Task) Normalized() Task {
	return Task{
		Kind:        Kind(strings.ToLower(strings.TrimSpace(string(t.Kind)))),
		Name:        strings.ToLower(strings.TrimSpace(t.Name)),
		Instruction: strings.TrimSpace(t.Instruction),
	}
}

// Validate ensures the task can be dispatched.
func (t Task) Validate() error {
	normalized := t.Normalized()
	if !normalized.Kind.Valid() {
		return fmt.Errorf("task: unknown kind %q", t.Kind)
	}
	if normalized.Name == "" {
		return fmt.Errorf("task: name is required")
	}
	if normalized.Instruction == "" {
		return fmt.Errorf("task %s: instruction is required", normalized.Name)
	}
	return nil
}

// Definition describes a task loaded from a pack.
//
// The struct mirrors the on-disk schema under .redraft/tasks/*.yaml and is
// intentionally narrow so packs can be validated before they reach the
// resolver.
type Definition struct {
	ID          string `json:"id" yaml:"id"`
	Name        string `json:"name,omitempty" yaml:"name,omitempty"`
	Description string `json:"description,omitempty" yaml:"description,omitempty"`
	Kind        string `json:"kind,omitempty" yaml:"kind,omitempty"`
	Instruction string `json:"instruction" yaml:"instruction"`
	Version     string `json:"version,omitempty" yaml:"version,omitempty"`
}

// Normalized returns a trimmed, copy-on-write variant of the definition.
func (def Definition) Normalized() Definition {
	return Definition{
		ID:          strings.ToLower(strings.TrimSpace(def.ID)),
		Name:        strings.TrimSpace(def.Name),
		Description: strings.TrimSpace(def.Description),
		Kind:        strings.ToLower(strings.TrimSpace(def.Kind)),
		Instruction: strings.TrimSpace(def.Instruction),
		Version:     strings.TrimSpace(def.Version),
	}
}

// Validate ensures the pack definition is well-formed.
func (def Definition) Validate() error {
	normalized := def.Normalized()
	if normalized.ID == "" {
		return fmt.Errorf("task pack: id is required")
	}
	if strings.ContainsAny(normalized.ID, " \t/\\") {
		return fmt.Errorf("task pack %s: id must be a plain slug", normalized.ID)
	}
	if normalized.Instruction == "" {
		return fmt.Errorf("task pack %s: instruction is required", normalized.ID)
	}
	if normalized.Kind != "" && !Kind(normalized.Kind).Valid() {
		return fmt.Errorf("task pack %s: unknown kind %q", normalized.ID, def.Kind)
	}
	return nil
}

// Task materializes the resolved variant for this definition. Definitions
// without an explicit kind become custom tasks carrying their instruction.
func (def Definition) Task() Task {
	normalized := def.Normalized()
	kind := Kind(normalized.Kind)
	if normalized.Kind == "" {
		kind = KindCustom
	}
	return Task{
		Kind:        kind,
		Name:        normalized.ID,
		Instruction: normalized.Instruction,
	}
}
