package analysis

import (
	"bufio"
	"context"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/gofrs/flock"

	"github.com/forgebuild/forge/internal/errors"
)

const (
	fileSourceDeps         = "dependencies"
	fileGeneratedClasses   = "generated_files"
	fileTests              = "tests"
	fileProjectDefinitions = "projects"
	fileExternalDeps       = "external_dependencies"

	lockFileName  = ".analysis.lock"
	lockTimeout   = 10 * time.Second
	valueJoinChar = string(os.PathListSeparator)
)

// Save persists each map as a line-oriented key/value text file under dir
// (one file per map; see the file* constants). A sibling lock file
// serializes concurrent Save/Load calls from two invocations of the tool
// against the same project (SPEC_FULL.md §4.B).
func (st *Store) Save(dir string) error {
	unlock, err := lockDir(dir)
	if err != nil {
		return err
	}
	defer unlock()

	if err := os.MkdirAll(dir, 0o755); err != nil {
		return errors.NewIOFailure("could not create analysis directory "+dir, err)
	}

	writers := map[string]map[string]stringSet{
		fileSourceDeps:         st.SourceDeps,
		fileGeneratedClasses:   st.GeneratedClasses,
		fileTests:              st.Tests,
		fileProjectDefinitions: st.ProjectDefinitions,
		fileExternalDeps:       st.ExternalDeps,
	}

	for name, m := range writers {
		if err := writeKVFile(filepath.Join(dir, name), m); err != nil {
			return err
		}
	}

	return nil
}

// Load reads each map file back from dir. A missing file yields an empty
// map, not an error; any other I/O error is surfaced as a single textual
// error.
func (st *Store) Load(dir string) error {
	unlock, err := lockDir(dir)
	if err != nil {
		return err
	}
	defer unlock()

	loaded := New()

	readers := map[string]*map[string]stringSet{
		fileSourceDeps:         &loaded.SourceDeps,
		fileGeneratedClasses:   &loaded.GeneratedClasses,
		fileTests:              &loaded.Tests,
		fileProjectDefinitions: &loaded.ProjectDefinitions,
		fileExternalDeps:       &loaded.ExternalDeps,
	}

	for name, dst := range readers {
		m, err := readKVFile(filepath.Join(dir, name))
		if err != nil {
			return err
		}

		*dst = m
	}

	*st = *loaded

	return nil
}

func lockDir(dir string) (func(), error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, errors.NewIOFailure("could not create analysis directory "+dir, err)
	}

	lock := flock.New(filepath.Join(dir, lockFileName))

	ctx, cancel := context.WithTimeout(context.Background(), lockTimeout)
	defer cancel()

	ok, err := lock.TryLockContext(ctx, 50*time.Millisecond)
	if err != nil {
		return nil, errors.NewIOFailure("could not acquire analysis lock", err)
	}

	if !ok {
		return nil, errors.IOFailuref("timed out waiting for analysis lock in %s", dir)
	}

	return func() { _ = lock.Unlock() }, nil
}

func writeKVFile(path string, m map[string]stringSet) error {
	file, err := os.Create(path)
	if err != nil {
		return errors.NewIOFailure("could not write analysis file "+path, err)
	}
	defer file.Close()

	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}

	sort.Strings(keys)

	w := bufio.NewWriter(file)

	for _, k := range keys {
		values := m[k].sorted()
		if _, err := w.WriteString(k + "\t" + strings.Join(values, valueJoinChar) + "\n"); err != nil {
			return errors.NewIOFailure("could not write analysis file "+path, err)
		}
	}

	if err := w.Flush(); err != nil {
		return errors.NewIOFailure("could not write analysis file "+path, err)
	}

	return nil
}

func readKVFile(path string) (map[string]stringSet, error) {
	file, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return map[string]stringSet{}, nil
		}

		return nil, errors.NewIOFailure("could not read analysis file "+path, err)
	}
	defer file.Close()

	out := map[string]stringSet{}

	scanner := bufio.NewScanner(file)
	scanner.Buffer(make([]byte, 0, 64*1024), 16*1024*1024)

	for scanner.Scan() {
		line := scanner.Text()
		if line == "" {
			continue
		}

		key, rest, found := strings.Cut(line, "\t")
		if !found {
			return nil, errors.ParseFailuref("malformed analysis record in %s: %q", path, line)
		}

		if rest == "" {
			out[key] = stringSet{}
			continue
		}

		out[key] = newSet(strings.Split(rest, valueJoinChar)...)
	}

	if err := scanner.Err(); err != nil {
		return nil, errors.NewIOFailure("could not read analysis file "+path, err)
	}

	return out, nil
}
