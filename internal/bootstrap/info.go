// Package bootstrap implements the two-stage project loader of
// SPEC_FULL.md §4.H: read project/info, launch the already-built builder
// sub-project binary (when present) as an isolated process, without
// compiling it, and wrap the
// descriptor it reports back into a native project.Project. Grounded on
// the teacher's config-loading-then-instantiating shape (config.go reads
// terragrunt.hcl before anything else runs), adapted to a two-file
// (info + optional builder) rather than single-file load.
package bootstrap

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/forgebuild/forge/internal/errors"
)

// MetadataDir is the fixed subdirectory name holding a project's info
// file and optional builder sub-project (spec.md §6: "project/").
const MetadataDir = "project"

// DefaultBuilderClass is used when a project-info file omits its third
// line (spec.md §4.H step 1).
const DefaultBuilderClass = "DefaultProject"

// Info is the parsed contents of <root>/project/info: 2 or 3 text lines
// (name, version, optional builder class).
type Info struct {
	Name         string
	Version      string
	BuilderClass string
}

// ReadInfo reads <root>/project/info. A missing metadata directory
// prompts interactively (via prompt, reading from in and writing to out)
// for a name and version and writes a new info file; a missing info file
// inside an existing metadata directory is an error (spec.md §4.H step 1).
func ReadInfo(root string, in io.Reader, out io.Writer) (*Info, error) {
	metaDir := filepath.Join(root, MetadataDir)
	infoPath := filepath.Join(metaDir, "info")

	if _, err := os.Stat(metaDir); os.IsNotExist(err) {
		return promptForInfo(metaDir, infoPath, in, out)
	}

	data, err := os.ReadFile(infoPath)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.NewConfigFailure(fmt.Sprintf("missing project info file at %s", infoPath), err)
		}

		return nil, errors.NewIOFailure("reading "+infoPath, err)
	}

	return parseInfo(string(data))
}

func parseInfo(contents string) (*Info, error) {
	lines := strings.Split(strings.TrimRight(contents, "\n"), "\n")

	if len(lines) < 2 || strings.TrimSpace(lines[0]) == "" || strings.TrimSpace(lines[1]) == "" {
		return nil, errors.NewConfigFailure("project info file must contain at least a name line and a version line", nil)
	}

	info := &Info{
		Name:         strings.TrimSpace(lines[0]),
		Version:      strings.TrimSpace(lines[1]),
		BuilderClass: DefaultBuilderClass,
	}

	if len(lines) >= 3 && strings.TrimSpace(lines[2]) != "" {
		info.BuilderClass = strings.TrimSpace(lines[2])
	}

	return info, nil
}

func promptForInfo(metaDir, infoPath string, in io.Reader, out io.Writer) (*Info, error) {
	reader := bufio.NewReader(in)

	fmt.Fprint(out, "No project metadata found. Enter project name: ")

	name, err := reader.ReadString('\n')
	if err != nil && err != io.EOF {
		return nil, errors.NewIOFailure("reading project name", err)
	}

	fmt.Fprint(out, "Enter project version: ")

	version, err := reader.ReadString('\n')
	if err != nil && err != io.EOF {
		return nil, errors.NewIOFailure("reading project version", err)
	}

	info := &Info{
		Name:         strings.TrimSpace(name),
		Version:      strings.TrimSpace(version),
		BuilderClass: DefaultBuilderClass,
	}

	if err := os.MkdirAll(metaDir, 0o755); err != nil {
		return nil, errors.NewIOFailure("creating "+metaDir, err)
	}

	contents := info.Name + "\n" + info.Version + "\n"
	if err := os.WriteFile(infoPath, []byte(contents), 0o644); err != nil {
		return nil, errors.NewIOFailure("writing "+infoPath, err)
	}

	return info, nil
}
