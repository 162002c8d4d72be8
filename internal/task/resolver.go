package task

import (
	"fmt"
	"sort"
	"strings"
	"sync"
)

var builtinInstructions = map[Kind]string{
	KindRewrite:   "Rewrite the passage so it reads naturally while keeping its meaning and tone.",
	KindProofread: "Fix spelling, grammar, and punctuation. Change nothing else.",
	KindShorten:   "Tighten the passage. Keep the meaning, cut the filler.",
	KindExpand:    "Develop the passage with one or two sentences of supporting detail.",
}

// Resolver maps raw kind strings and pack ids to resolved Tasks.
type Resolver struct {
	mu    sync.RWMutex
	packs map[string]Definition
}

// NewResolver returns a resolver that knows the built-in kinds.
func NewResolver() *Resolver {
	return &Resolver{packs: map[string]Definition{}}
}

// RegisterDefinition installs a pack definition. Returns an error if the id
// is already taken or shadows a built-in kind.
func (r *Resolver) RegisterDefinition(def Definition) error {
	if err := def.Validate(); err != nil {
		return err
	}
	normalized := def.Normalized()
	if isBuiltinName(normalized.ID) {
		return fmt.Errorf("task pack %s: id shadows a built-in kind", normalized.ID)
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.packs[normalized.ID]; exists {
		return fmt.Errorf("task pack %s: already registered", normalized.ID)
	}
	r.packs[normalized.ID] = normalized
	return nil
}

// RegisterFiles installs every loaded definition file, reporting the first
// failure with its source path.
func (r *Resolver) RegisterFiles(files []DefinitionFile) error {
	for _, file := range files {
		if err := r.RegisterDefinition(file.Definition); err != nil {
			return fmt.Errorf("%s: %w", file.Path, err)
		}
	}
	return nil
}

// Resolve turns (kind, instruction) into a Task. kind may be a built-in
// kind name or a registered pack id. For built-in kinds a non-empty
// instruction is appended as user emphasis; custom tasks require one.
func (r *Resolver) Resolve(kind, instruction string) (Task, error) {
	key := strings.ToLower(strings.TrimSpace(kind))
	if key == "" {
		return Task{}, fmt.Errorf("task: kind is required")
	}
	instruction = strings.TrimSpace(instruction)

	if key == string(KindCustom) {
		if instruction == "" {
			return Task{}, fmt.Errorf("task: custom tasks require an instruction")
		}
		return Task{Kind: KindCustom, Name: string(KindCustom), Instruction: instruction}, nil
	}
	if base, ok := builtinInstructions[Kind(key)]; ok {
		resolved := Task{Kind: Kind(key), Name: key, Instruction: base}
		if instruction != "" {
			resolved.Instruction = base + " " + instruction
		}
		return resolved, nil
	}

	r.mu.RLock()
	def, ok := r.packs[key]
	r.mu.RUnlock()
	if !ok {
		return Task{}, fmt.Errorf("task: unknown kind %q", kind)
	}
	return def.Task(), nil
}

// Names returns every resolvable name: built-in kinds first, then pack ids,
// each group sorted.
func (r *Resolver) Names() []string {
	builtin := make([]string, 0, len(builtinInstructions)+1)
	for kind := range builtinInstructions {
		builtin = append(builtin, string(kind))
	}
	builtin = append(builtin, string(KindCustom))
	sort.Strings(builtin)

	r.mu.RLock()
	packIDs := make([]string, 0, len(r.packs))
	for id := range r.packs {
		packIDs = append(packIDs, id)
	}
	r.mu.RUnlock()
	sort.Strings(packIDs)

	return append(builtin, packIDs...)
}

// Definitions returns the registered pack definitions sorted by id.
func (r *Resolver) Definitions() []Definition {
	r.mu.RLock()
	defer r.mu.RUnlock()
	defs := make([]Definition, 0, len(r.packs))
	for _, def := range r.packs {
		defs = append(defs, def)
	}
	sort.Slice(defs, func(i, j int) bool { return defs[i].ID < defs[j].ID })
	return defs
}

func isBuiltinName(id string) bool {
	if id == string(KindCustom) {
		return true
	}
	_, ok := builtinInstructions[Kind(id)]
	return ok
}
