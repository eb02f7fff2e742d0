// Package buildconfig parses the optional project/options.hcl overlay
// (SPEC_FULL.md §4.G): a team-level file that pins CompileOption and
// PackageOption values without recompiling the builder project; no
// ScaladocOption or ManagedOption values are read from it. Grounded on the teacher's catalog.Config.Load
// (hclparse.NewParser + gohcl.DecodeBody against a tagged struct), which
// is this family's idiomatic way of reading a small, flat HCL file.
package buildconfig

import (
	"os"

	"github.com/forgebuild/forge/internal/errors"
	"github.com/forgebuild/forge/internal/project"
	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"
	"github.com/mitchellh/mapstructure"
	"github.com/zclconf/go-cty/cty"
)

// FileName is the overlay's fixed name under a project root's metadata
// directory; absence of the file is not an error.
const FileName = "options.hcl"

// schema is the flat HCL surface; every field is optional. hcl's own
// struct tags do the attribute decoding, including the `manifest` map that
// toOverlay turns into a PackageOption ManifestEntries; mapstructure only
// maps the `target` string onto project.TargetPlatform, following the
// teacher's split of "hcl owns the grammar, mapstructure owns mapping
// untyped values into Go values".
type schema struct {
	Deprecation *bool             `hcl:"deprecation,optional"`
	Unchecked   *bool             `hcl:"unchecked,optional"`
	Optimize    *bool             `hcl:"optimize,optional"`
	Target      *string           `hcl:"target,optional"`
	MainClass   *string           `hcl:"main_class,optional"`
	JarName     *string           `hcl:"jar_name,optional"`
	OutputDir   *string           `hcl:"output_dir,optional"`
	Recursive   *bool             `hcl:"recursive,optional"`
	Manifest    map[string]string `hcl:"manifest,optional"`
	// Raw is left as an unevaluated expression rather than []string;
	// toOverlay evaluates it against an empty (nil) context, so it must be
	// a literal list of strings (a reference to an HCL variable fails to
	// evaluate), and walks the resulting cty.Value itself (see
	// ctyStringList), the same split
	// gohcl/cty does throughout the teacher's config package.
	Raw hcl.Expression `hcl:"raw,optional"`
}

// Overlay is the decoded, option-group-shaped view of options.hcl.
type Overlay struct {
	Compile []project.CompileOption
	Package []project.PackageOption
}

// Load reads path (a project/options.hcl file) and decodes it into an
// Overlay. A missing file yields an empty, non-error Overlay - the overlay
// is purely additive (SPEC_FULL.md §4.G).
func Load(path string) (*Overlay, error) {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return &Overlay{}, nil
	}

	parser := hclparse.NewParser()

	file, diags := parser.ParseHCLFile(path)
	if diags.HasErrors() {
		return nil, errors.NewParseFailure("parsing "+path+": "+diags.Error(), diags)
	}

	var raw schema

	if diags := gohcl.DecodeBody(file.Body, nil, &raw); diags.HasErrors() {
		return nil, errors.NewParseFailure("decoding "+path+": "+diags.Error(), diags)
	}

	return toOverlay(&raw)
}

func toOverlay(raw *schema) (*Overlay, error) {
	overlay := &Overlay{}

	if raw.Deprecation != nil && *raw.Deprecation {
		overlay.Compile = append(overlay.Compile, project.Deprecation{})
	}

	if raw.Unchecked != nil && *raw.Unchecked {
		overlay.Compile = append(overlay.Compile, project.Unchecked{})
	}

	if raw.Optimize != nil && *raw.Optimize {
		overlay.Compile = append(overlay.Compile, project.Optimize{})
	}

	if raw.Target != nil {
		var platform project.TargetPlatform

		if err := mapstructure.Decode(*raw.Target, &platform); err != nil {
			return nil, errors.NewParseFailure("decoding target: "+err.Error(), err)
		}

		overlay.Compile = append(overlay.Compile, project.Target{Platform: platform})
	}

	if raw.MainClass != nil {
		overlay.Package = append(overlay.Package, project.MainClass{Name: *raw.MainClass})
	}

	if raw.JarName != nil {
		overlay.Package = append(overlay.Package, project.JarName{Name: *raw.JarName})
	}

	if raw.OutputDir != nil {
		overlay.Package = append(overlay.Package, project.OutputDir{Path: *raw.OutputDir})
	}

	if raw.Recursive != nil && *raw.Recursive {
		overlay.Package = append(overlay.Package, project.Recursive{})
	}

	if len(raw.Manifest) > 0 {
		overlay.Package = append(overlay.Package, project.ManifestEntries{Entries: raw.Manifest})
	}

	if raw.Raw != nil {
		flags, err := ctyStringList(raw.Raw)
		if err != nil {
			return nil, err
		}

		for _, flag := range flags {
			overlay.Compile = append(overlay.Compile, project.RawCompileOption{Value: flag})
		}
	}

	return overlay, nil
}

// ctyStringList evaluates expr against an empty context and walks the
// resulting cty.Value as a list/tuple of strings, mirroring the teacher's
// ctySliceToStringSlice (config/cty_helpers.go) rather than hcl's own
// decode-into-[]string path, since expr may be a bare literal list with no
// declared type the gohcl struct tag machinery can target directly.
func ctyStringList(expr hcl.Expression) ([]string, error) {
	val, diags := expr.Value(nil)
	if diags.HasErrors() {
		return nil, errors.NewParseFailure("evaluating raw: "+diags.Error(), diags)
	}

	if val.IsNull() {
		return nil, nil
	}

	if !val.CanIterateElements() {
		return nil, errors.NewParseFailure("raw must be a list of strings", nil)
	}

	out := make([]string, 0)

	it := val.ElementIterator()
	for it.Next() {
		_, elem := it.Element()

		if elem.Type() != cty.String {
			return nil, errors.NewParseFailure("raw elements must be strings, got "+elem.Type().FriendlyName(), nil)
		}

		out = append(out, elem.AsString())
	}

	return out, nil
}

// MergeCompile appends overlay entries after explicit ones - code wins
// because ResolveCompileOptions keeps the first occurrence of every
// single-value kind (SPEC_FULL.md §4.G: "the overlay never overrides an
// option explicitly set in code").
func (o *Overlay) MergeCompile(explicit []project.CompileOption) []project.CompileOption {
	return append(append([]project.CompileOption{}, explicit...), o.Compile...)
}

// MergePackage appends overlay entries after explicit ones, same
// code-wins precedence as MergeCompile.
func (o *Overlay) MergePackage(explicit []project.PackageOption) []project.PackageOption {
	return append(append([]project.PackageOption{}, explicit...), o.Package...)
}

