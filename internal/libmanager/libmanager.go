// Package libmanager resolves a project's external library declarations
// (the ManagedOption group of SPEC_FULL.md §4.G) into files under
// lib/managed/<configuration>/, using hashicorp/go-getter the same way the
// teacher resolves remote Terraform source - a shallow-cloned getter map
// via getter.Client so concurrent managed-option resolutions across
// projects never race on the package-level getter.Getters map.
package libmanager

import (
	"context"
	"os"
	"path/filepath"

	"github.com/forgebuild/forge/internal/errors"
	"github.com/hashicorp/go-getter"
)

// Dependency is one external library declaration: a go-getter source
// string (local path, URL, or go-getter "detector" shorthand) to resolve
// into a file under the configuration's managed directory.
type Dependency struct {
	Source string
	Name   string // destination file name under lib/managed/<configuration>/
}

// Manager resolves a project's managed dependencies for ManagedOption
// (spec.md §4.G): Synchronize, Validate, QuietUpdate.
type Manager struct {
	// Root is the project root; managed jars land under
	// Root/lib/managed/<configuration>/.
	Root string
}

func (m *Manager) managedDir(configuration string) string {
	return filepath.Join(m.Root, "lib", "managed", configuration)
}

// Synchronize resolves every dependency for configuration, downloading or
// copying each into the managed directory, and removes anything already
// there for names no longer declared.
func (m *Manager) Synchronize(ctx context.Context, configuration string, deps []Dependency) error {
	dir := m.managedDir(configuration)

	if err := os.MkdirAll(dir, 0o755); err != nil {
		return errors.NewIOFailure("creating managed dir "+dir, err)
	}

	want := make(map[string]bool, len(deps))

	for _, dep := range deps {
		want[dep.Name] = true

		if err := m.fetch(ctx, dep, dir); err != nil {
			return err
		}
	}

	return m.pruneUndeclared(dir, want)
}

func (m *Manager) fetch(ctx context.Context, dep Dependency, dir string) error {
	client := &getter.Client{
		Ctx:  ctx,
		Src:  dep.Source,
		Dst:  filepath.Join(dir, dep.Name),
		Mode: getter.ClientModeFile,
	}

	// Shallow-clone the getter map rather than mutating the shared
	// package-level getter.Getters, matching the concurrent-goroutine
	// safety the teacher relies on when resolving multiple sources at once.
	client.Getters = map[string]getter.Getter{}

	for name, g := range getter.Getters {
		client.Getters[name] = g
	}

	if err := client.Get(); err != nil {
		return errors.NewIOFailure("resolving dependency "+dep.Source, err)
	}

	return nil
}

func (m *Manager) pruneUndeclared(dir string, want map[string]bool) error {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}

		return errors.NewIOFailure("reading managed dir "+dir, err)
	}

	for _, entry := range entries {
		if want[entry.Name()] {
			continue
		}

		if err := os.RemoveAll(filepath.Join(dir, entry.Name())); err != nil {
			return errors.NewIOFailure("removing stale managed dependency "+entry.Name(), err)
		}
	}

	return nil
}

// Validate reports whether every dependency in deps is already present in
// configuration's managed directory, without resolving anything.
func (m *Manager) Validate(configuration string, deps []Dependency) (bool, error) {
	dir := m.managedDir(configuration)

	for _, dep := range deps {
		path := filepath.Join(dir, dep.Name)

		if _, err := os.Stat(path); err != nil {
			if os.IsNotExist(err) {
				return false, nil
			}

			return false, errors.NewIOFailure("checking managed dependency "+path, err)
		}
	}

	return true, nil
}

// QuietUpdate resolves only dependencies missing from the managed
// directory, leaving anything already present untouched - the common case
// for everyday builds, where a full Synchronize's pruning pass is
// unwanted.
func (m *Manager) QuietUpdate(ctx context.Context, configuration string, deps []Dependency) error {
	dir := m.managedDir(configuration)

	if err := os.MkdirAll(dir, 0o755); err != nil {
		return errors.NewIOFailure("creating managed dir "+dir, err)
	}

	for _, dep := range deps {
		path := filepath.Join(dir, dep.Name)

		if _, err := os.Stat(path); err == nil {
			continue
		}

		if err := m.fetch(ctx, dep, dir); err != nil {
			return err
		}
	}

	return nil
}
