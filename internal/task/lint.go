package task

import "fmt"

// Lint checks a set of loaded definitions for the cross-pack problems the
// per-definition Validate cannot see: duplicate ids between packs and ids
// that shadow built-in kinds. Per-definition failures are reported with
// their source path so the findings read like compiler output.
func Lint(files []DefinitionFile) []error {
	var errs []error
	seen := make(map[string]string, len(files))
	for _, file := range files {
		if err := file.Definition.Validate(); err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", file.Path, err))
			continue
		}
		id := file.Definition.Normalized().ID
		if isBuiltinName(id) {
			errs = append(errs, fmt.Errorf("%s: id %q shadows a built-in task kind", file.Path, id))
		}
		if prev, exists := seen[id]; exists {
			errs = append(errs, fmt.Errorf("%s: id %q already defined in %s", file.Path, id, prev))
			continue
		}
		seen[id] = file.Path
	}
	return errs
}
