package dispatch

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// Registry is the name -> unit mapping for one dispatcher run.
//
// It is built once by scanning the task collection root, so resolution is
// total (Found or ErrTaskNotFound) and never races with the filesystem
// between a probe and the exec. Task units added while the process runs are
// picked up on the next scheduler invocation, which is all the freshness a
// periodic toolbox needs.
type Registry struct {
	root  string
	units map[string]Unit
}

// Scan builds the registry from the top level of root.
//
// Rules:
//   - regular files with any executable bit register as UnitScript
//   - directories containing an executable entryPoint file register as
//     UnitDirEntryPoint
//   - dotfiles, non-executable files (config, logs, .env) and names in
//     skip are ignored
func Scan(root, entryPoint string, skip ...string) (*Registry, error) {
	if strings.TrimSpace(entryPoint) == "" {
		entryPoint = "run"
	}
	entries, err := os.ReadDir(root)
	if err != nil {
		return nil, fmt.Errorf("scan task root %s: %w", root, err)
	}

	skipSet := make(map[string]bool, len(skip))
	for _, s := range skip {
		skipSet[s] = true
	}

	units := make(map[string]Unit)
	for _, e := range entries {
		name := e.Name()
		if strings.HasPrefix(name, ".") || skipSet[name] {
			continue
		}

		if e.IsDir() {
			ep := filepath.Join(root, name, entryPoint)
			if isExecutableFile(ep) {
				units[name] = Unit{Name: name, Kind: UnitDirEntryPoint, Path: ep}
			}
			continue
		}
		// isExecutableFile stats (following symlinks), so a symlinked
		// script still registers.
		if isExecutableFile(filepath.Join(root, name)) {
			units[name] = Unit{Name: name, Kind: UnitScript, Path: filepath.Join(root, name)}
		}
	}

	return &Registry{root: root, units: units}, nil
}

func isExecutableFile(path string) bool {
	info, err := os.Stat(path)
	if err != nil || !info.Mode().IsRegular() {
		return false
	}
	return info.Mode().Perm()&0o111 != 0
}

func (r *Registry) Root() string { return r.root }

// Resolve maps a task name to its unit.
func (r *Registry) Resolve(name string) (Unit, error) {
	u, ok := r.units[name]
	if !ok {
		return Unit{}, fmt.Errorf("%w: %s", ErrTaskNotFound, name)
	}
	return u, nil
}

// Units returns all registered units sorted by name.
func (r *Registry) Units() []Unit {
	out := make([]Unit, 0, len(r.units))
	for _, u := range r.units {
		out = append(out, u)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}
