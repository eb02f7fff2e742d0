// Package archive implements the jar/zip packaging shim spec.md §1 names as
// an external collaborator: PackageOption (SPEC_FULL.md §4.G) describes
// what to write, this package writes it. Entries are ordinary zip
// archives; stdlib archive/zip's Writer is kept for the zip format and
// header handling, but the DEFLATE implementation is swapped for
// klauspost/compress/flate via zip.Writer.RegisterCompressor, the standard
// way to plug a faster compressor into the stdlib zip writer without
// reimplementing the zip format itself.
package archive

import (
	"archive/zip"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"sort"

	kflate "github.com/klauspost/compress/flate"

	"github.com/forgebuild/forge/internal/errors"
)

// Entry is one file to place in the archive at Name.
type Entry struct {
	Name string
	Path string
}

// Manifest is the set of manifest attributes written to
// META-INF/MANIFEST.MF; Go has no jar-manifest library in this family's
// dependency set, so the format (a Manifest-Version line, then one
// "Name: value" line per attribute) is written by hand (justified in
// DESIGN.md).
type Manifest map[string]string

// Write creates a jar/zip archive at dest containing entries plus, when
// manifest is non-empty, a META-INF/MANIFEST.MF. Entries are written in
// name-sorted order so archives are reproducible across runs.
func Write(dest string, entries []Entry, manifest Manifest) error {
	if err := os.MkdirAll(filepath.Dir(dest), 0o755); err != nil {
		return errors.NewIOFailure("creating archive directory for "+dest, err)
	}

	out, err := os.Create(dest)
	if err != nil {
		return errors.NewIOFailure("creating archive "+dest, err)
	}
	defer out.Close()

	zw := zip.NewWriter(out)
	defer zw.Close()

	registerFastDeflate(zw)

	sorted := append([]Entry{}, entries...)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Name < sorted[j].Name })

	if len(manifest) > 0 {
		if err := writeManifest(zw, manifest); err != nil {
			return err
		}
	}

	for _, entry := range sorted {
		if err := writeEntry(zw, entry); err != nil {
			return err
		}
	}

	if err := zw.Close(); err != nil {
		return errors.NewIOFailure("finalizing archive "+dest, err)
	}

	return nil
}

// registerFastDeflate swaps the stdlib zip package's default DEFLATE
// implementation for klauspost/compress's, which is materially faster at
// the same compression level - the jar/zip format itself is unaffected,
// so plugging it in via RegisterCompressor needs no change to how entries
// are addressed or read back.
func registerFastDeflate(zw *zip.Writer) {
	zw.RegisterCompressor(zip.Deflate, func(w io.Writer) (io.WriteCloser, error) {
		return kflate.NewWriter(w, kflate.DefaultCompression)
	})
}

func writeManifest(zw *zip.Writer, manifest Manifest) error {
	w, err := zw.Create("META-INF/MANIFEST.MF")
	if err != nil {
		return errors.NewIOFailure("writing manifest header", err)
	}

	if _, err := fmt.Fprintf(w, "Manifest-Version: 1.0\n"); err != nil {
		return errors.NewIOFailure("writing manifest", err)
	}

	names := make([]string, 0, len(manifest))
	for k := range manifest {
		names = append(names, k)
	}

	sort.Strings(names)

	for _, name := range names {
		if _, err := fmt.Fprintf(w, "%s: %s\n", name, manifest[name]); err != nil {
			return errors.NewIOFailure("writing manifest", err)
		}
	}

	return nil
}

func writeEntry(zw *zip.Writer, entry Entry) error {
	data, err := os.ReadFile(entry.Path)
	if err != nil {
		return errors.NewIOFailure("reading "+entry.Path, err)
	}

	w, err := zw.Create(entry.Name)
	if err != nil {
		return errors.NewIOFailure("writing entry "+entry.Name, err)
	}

	if _, err := w.Write(data); err != nil {
		return errors.NewIOFailure("writing entry "+entry.Name, err)
	}

	return nil
}

// WalkDir collects every regular file under root as an Entry whose Name is
// the file's path relative to root, for PackageOption's "recursive"
// variant (spec.md §4.G).
func WalkDir(root string) ([]Entry, error) {
	var entries []Entry

	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}

		if d.IsDir() {
			return nil
		}

		rel, err := filepath.Rel(root, path)
		if err != nil {
			return err
		}

		entries = append(entries, Entry{Name: filepath.ToSlash(rel), Path: path})

		return nil
	})
	if err != nil {
		return nil, errors.NewIOFailure("walking "+root, err)
	}

	return entries, nil
}
