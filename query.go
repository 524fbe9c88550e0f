package agpconf

import "github.com/hashicorp/hcl/v2"

// Summary is a read-only overview of a model for diagnostics.
type Summary struct {
	BuildTypes       []string                  `json:"buildTypes" yaml:"buildTypes"`                                 // Build type names
	Flavors          map[string][]string       `json:"flavors,omitempty" yaml:"flavors,omitempty"`                   // Flavor names by dimension, "" for dimensionless
	FlavorDimensions []string                  `json:"flavorDimensions,omitempty" yaml:"flavorDimensions,omitempty"` // Declared dimensions
	Variants         []string                  `json:"variants" yaml:"variants"`                                     // Variant names
	Unrecognized     []UnrecognizedDeclaration `json:"unrecognized,omitempty" yaml:"unrecognized,omitempty"`         // Found but not understood
}

// UnrecognizedDeclaration is a declaration the model does not interpret.
type UnrecognizedDeclaration struct {
	Path  string    `json:"path" yaml:"path"`   // Dotted path including the key
	Raw   string    `json:"raw" yaml:"raw"`     // Verbatim source text
	Range hcl.Range `json:"range" yaml:"range"` // Source range
}

// Inspect summarizes the declared build types, flavors, variants and unrecognized declarations.
func (m *Model) Inspect() Summary {
	s := Summary{FlavorDimensions: append([]string(nil), m.FlavorDimensions...)}

	for _, bt := range m.BuildTypes {
		s.BuildTypes = append(s.BuildTypes, bt.Name)
	}

	if len(m.ProductFlavors) > 0 {
		s.Flavors = make(map[string][]string)
		for _, f := range m.ProductFlavors {
			dim := m.FlavorDimension(f)
			s.Flavors[dim] = append(s.Flavors[dim], f.Name)
		}
	}

	for _, req := range m.VariantRequests() {
		s.Variants = append(s.Variants, req.Name())
	}

	for _, d := range m.Unrecognized {
		s.Unrecognized = append(s.Unrecognized, UnrecognizedDeclaration{
			Path:  d.FullPath(),
			Raw:   d.Raw,
			Range: d.Range,
		})
	}

	return s
}
