package testshim

// Framework describes one supported test framework (spec.md §4.I):
// display name, the super-class name its tests extend, whether its tests
// are module-objects rather than classes, and the binary that runs them.
type Framework struct {
	DisplayName string
	SuperName   string
	IsModule    bool
	RunnerPath  string
}

func (f Framework) key() frameworkKey { return frameworkKey{f.SuperName, f.IsModule} }

type frameworkKey struct {
	superName string
	isModule  bool
}

// Partition groups defs by the (super-class, is-module) key against the
// given frameworks, returning, per framework display name, the test
// definitions it owns. Definitions matching no framework are omitted
// (spec.md is silent on this case; the tool simply does not run them).
func Partition(frameworks []Framework, defs []Definition) map[string][]Definition {
	byKey := make(map[frameworkKey]Framework, len(frameworks))
	for _, fw := range frameworks {
		byKey[fw.key()] = fw
	}

	out := make(map[string][]Definition)

	for _, def := range defs {
		fw, ok := byKey[frameworkKey{def.SuperName, def.IsModule}]
		if !ok {
			continue
		}

		out[fw.DisplayName] = append(out[fw.DisplayName], def)
	}

	return out
}
