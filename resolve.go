package agpconf

import (
	"slices"
	"strings"
)

// Request selects one variant: one flavor per dimension (or none) and a build type.
type Request struct {
	Flavors   []string `json:"flavors,omitempty" yaml:"flavors,omitempty"` // Selected flavor names
	BuildType string   `json:"buildType" yaml:"buildType"`                 // Build type name
}

// Name returns the variant name of the request, e.g. devRelease.
func (r Request) Name() string {
	return variantName(r.Flavors, r.BuildType)
}

// Variant is the resolved configuration of one build variant.
type Variant struct {
	Name                      string             `json:"name" yaml:"name"`                                                               // AGP variant name
	Flavors                   []string           `json:"flavors,omitempty" yaml:"flavors,omitempty"`                                     // Flavors in dimension order
	BuildType                 string             `json:"buildType" yaml:"buildType"`                                                     // Build type name
	ApplicationID             string             `json:"applicationId" yaml:"applicationId"`                                             // Final id including suffixes
	Namespace                 string             `json:"namespace,omitempty" yaml:"namespace,omitempty"`                                 // android.namespace
	MinSdk                    int                `json:"minSdk" yaml:"minSdk"`                                                           // Minimum SDK
	TargetSdk                 int                `json:"targetSdk" yaml:"targetSdk"`                                                     // Target SDK
	CompileSdk                int                `json:"compileSdk,omitempty" yaml:"compileSdk,omitempty"`                               // Compile SDK, zero if absent
	VersionCode               int                `json:"versionCode" yaml:"versionCode"`                                                 // Version code
	VersionName               string             `json:"versionName,omitempty" yaml:"versionName,omitempty"`                             // Final name including suffixes
	IsMinifyEnabled           bool               `json:"isMinifyEnabled" yaml:"isMinifyEnabled"`                                         // Code shrinking
	IsDebuggable              bool               `json:"isDebuggable" yaml:"isDebuggable"`                                               // Debuggable APK
	IsShrinkResources         bool               `json:"isShrinkResources" yaml:"isShrinkResources"`                                     // Resource shrinking
	SigningConfig             *SigningConfig     `json:"signingConfig,omitempty" yaml:"signingConfig,omitempty"`                         // Resolved signing config
	BuildConfigFields         []BuildConfigField `json:"buildConfigFields,omitempty" yaml:"buildConfigFields,omitempty"`                 // Merged fields
	ProguardFiles             []string           `json:"proguardFiles,omitempty" yaml:"proguardFiles,omitempty"`                         // Literal paths and external references
	TestInstrumentationRunner string             `json:"testInstrumentationRunner,omitempty" yaml:"testInstrumentationRunner,omitempty"` // Instrumentation runner
}

// Resolve computes the effective configuration of one variant.
// It is a pure function of the model and the request.
func (m *Model) Resolve(req Request, opt *ResolveOptions) (Variant, error) {
	ropt := opt.normalize()

	bt := m.BuildType(req.BuildType)
	if bt == nil {
		return Variant{}, resolveErrorf(UnknownBuildType, "android.buildTypes."+req.BuildType, "build type %q is not declared", req.BuildType)
	}

	flavors, err := m.selectFlavors(req.Flavors)
	if err != nil {
		return Variant{}, err
	}

	r := resolver{model: m, flavors: flavors}
	v := Variant{BuildType: bt.Name}
	for _, f := range flavors {
		v.Flavors = append(v.Flavors, f.Name)
	}
	v.Name = variantName(v.Flavors, bt.Name)

	// Application id and its suffixes.
	appID, scope := pickSetting(r, func(c *VariantConfig) *Setting[string] { return c.ApplicationID })
	switch {
	case appID != nil && appID.Invalid:
		return Variant{}, invalidField(scope, "applicationId", appID.Raw)
	case appID != nil:
		v.ApplicationID = appID.Value
	case ropt.NamespaceFallback && m.Namespace != nil && !m.Namespace.Invalid && m.Namespace.Value != "":
		v.ApplicationID = m.Namespace.Value
	default:
		return Variant{}, resolveErrorf(MissingApplicationId, "android.defaultConfig.applicationId",
			"neither defaultConfig nor a selected flavor sets applicationId")
	}

	if m.Namespace != nil && !m.Namespace.Invalid {
		v.Namespace = m.Namespace.Value
	}

	// Base values: first flavor in dimension order, then defaultConfig.
	minSdk, scope := pickSetting(r, func(c *VariantConfig) *Setting[int] { return c.MinSdk })
	if v.MinSdk, err = intValue(minSdk, scope, "minSdk", 1); err != nil {
		return Variant{}, err
	}
	targetSdk, scope := pickSetting(r, func(c *VariantConfig) *Setting[int] { return c.TargetSdk })
	if v.TargetSdk, err = intValue(targetSdk, scope, "targetSdk", v.MinSdk); err != nil {
		return Variant{}, err
	}
	versionCode, scope := pickSetting(r, func(c *VariantConfig) *Setting[int] { return c.VersionCode })
	if v.VersionCode, err = intValue(versionCode, scope, "versionCode", 0); err != nil {
		return Variant{}, err
	}
	if v.CompileSdk, err = intValue(m.DefaultConfig.CompileSdk, "android", "compileSdk", 0); err != nil {
		return Variant{}, err
	}

	versionName, scope := pickSetting(r, func(c *VariantConfig) *Setting[string] { return c.VersionName })
	if versionName != nil && versionName.Invalid {
		return Variant{}, invalidField(scope, "versionName", versionName.Raw)
	}
	runner, scope := pickSetting(r, func(c *VariantConfig) *Setting[string] { return c.TestInstrumentationRunner })
	if runner != nil && runner.Invalid {
		return Variant{}, invalidField(scope, "testInstrumentationRunner", runner.Raw)
	}
	if runner != nil {
		v.TestInstrumentationRunner = runner.Value
	}

	// Suffixes: flavors in dimension order, then the build type.
	type suffixes struct{ appID, versionName *Setting[string] }
	var chain []suffixes
	var scopes []string
	for _, f := range flavors {
		chain = append(chain, suffixes{f.ApplicationIDSuffix, f.VersionNameSuffix})
		scopes = append(scopes, flavorScope(f.Name))
	}
	chain = append(chain, suffixes{bt.ApplicationIDSuffix, bt.VersionNameSuffix})
	scopes = append(scopes, buildTypeScope(bt.Name))

	for i, s := range chain {
		if s.appID != nil {
			if s.appID.Invalid {
				return Variant{}, invalidField(scopes[i], "applicationIdSuffix", s.appID.Raw)
			}
			v.ApplicationID = joinSuffix(v.ApplicationID, s.appID.Value, ".")
		}
		if s.versionName != nil {
			if s.versionName.Invalid {
				return Variant{}, invalidField(scopes[i], "versionNameSuffix", s.versionName.Raw)
			}
			// No suffix without a base version name.
			if versionName != nil {
				versionName = &Setting[string]{Value: joinSuffix(versionName.Value, s.versionName.Value, "-")}
			}
		}
	}
	if versionName != nil {
		v.VersionName = versionName.Value
	}

	// Build type flags.
	btScope := buildTypeScope(bt.Name)
	if v.IsMinifyEnabled, err = boolValue(bt.IsMinifyEnabled, btScope, "isMinifyEnabled", false); err != nil {
		return Variant{}, err
	}
	if v.IsDebuggable, err = boolValue(bt.IsDebuggable, btScope, "isDebuggable", bt.Name == "debug"); err != nil {
		return Variant{}, err
	}
	if v.IsShrinkResources, err = boolValue(bt.IsShrinkResources, btScope, "isShrinkResources", false); err != nil {
		return Variant{}, err
	}

	// Signing: build type, then flavors, then defaultConfig.
	ref := bt.SigningConfig
	for _, f := range flavors {
		if ref != nil {
			break
		}
		ref = f.SigningConfig
	}
	if ref == nil {
		ref = m.DefaultConfig.SigningConfig
	}
	if ref != nil {
		if ref.Invalid {
			return Variant{}, resolveErrorf(InvalidFieldValue, ref.Path, "cannot determine a signing config name from %s", ref.Raw)
		}
		sc := m.SigningConfig(ref.Name)
		if sc == nil {
			return Variant{}, resolveErrorf(DanglingReference, ref.Path, "signing config %q is not declared", ref.Name)
		}
		v.SigningConfig = cloneSigningConfig(sc)
	}

	// Build config fields and proguard files: defaultConfig, flavors, build type.
	fields := slices.Clone(m.DefaultConfig.BuildConfigFields)
	proguard := slices.Clone(m.DefaultConfig.ProguardFiles)
	for _, f := range flavors {
		for _, fld := range f.BuildConfigFields {
			fields = mergeField(fields, fld)
		}
		proguard = append(proguard, f.ProguardFiles...)
	}
	for _, fld := range bt.BuildConfigFields {
		fields = mergeField(fields, fld)
	}
	proguard = append(proguard, bt.ProguardFiles...)

	v.BuildConfigFields = fields
	for _, p := range proguard {
		if p.Kind == ValueString {
			v.ProguardFiles = append(v.ProguardFiles, p.Str)
			continue
		}
		v.ProguardFiles = append(v.ProguardFiles, p.String())
	}

	return v, nil
}

// ResolveAll resolves every variant returned by VariantRequests.
// Failed variants are reported in the error slice at the same index.
func (m *Model) ResolveAll(opt *ResolveOptions) ([]Variant, []error) {
	reqs := m.VariantRequests()
	out := make([]Variant, len(reqs))
	errs := make([]error, len(reqs))
	for i, req := range reqs {
		out[i], errs[i] = m.Resolve(req, opt)
	}

	return out, errs
}

// VariantRequests enumerates every flavor combination times every build type,
// in dimension order and declaration order.
func (m *Model) VariantRequests() []Request {
	combos := [][]string{nil}
	for _, group := range m.flavorGroups() {
		next := make([][]string, 0, len(combos)*len(group))
		for _, c := range combos {
			for _, f := range group {
				next = append(next, append(slices.Clone(c), f))
			}
		}
		combos = next
	}

	out := make([]Request, 0, len(combos)*len(m.BuildTypes))
	for _, c := range combos {
		for _, bt := range m.BuildTypes {
			out = append(out, Request{Flavors: c, BuildType: bt.Name})
		}
	}

	return out
}

// ParseRequest builds a request from an AGP variant name such as devRelease.
func (m *Model) ParseRequest(name string) (Request, error) {
	for _, req := range m.VariantRequests() {
		if req.Name() == name {
			return req, nil
		}
	}

	for _, bt := range m.BuildTypes {
		if name == bt.Name || strings.HasSuffix(name, capitalize(bt.Name)) {
			return Request{}, resolveErrorf(UnknownFlavor, "", "variant %q does not match any flavor combination", name)
		}
	}

	return Request{}, resolveErrorf(UnknownBuildType, "", "variant %q does not end with a declared build type", name)
}

// flavorGroups returns flavor names per declared dimension, skipping dimensions without flavors.
// Without declared dimensions all flavors form one group.
func (m *Model) flavorGroups() [][]string {
	if len(m.ProductFlavors) == 0 {
		return nil
	}

	if len(m.FlavorDimensions) == 0 {
		names := make([]string, 0, len(m.ProductFlavors))
		for _, f := range m.ProductFlavors {
			names = append(names, f.Name)
		}
		return [][]string{names}
	}

	var out [][]string
	for _, dim := range m.FlavorDimensions {
		var names []string
		for _, f := range m.ProductFlavors {
			if m.FlavorDimension(f) == dim {
				names = append(names, f.Name)
			}
		}
		if len(names) > 0 {
			out = append(out, names)
		}
	}

	return out
}

// selectFlavors validates the requested flavors and orders them by dimension.
func (m *Model) selectFlavors(names []string) ([]*ProductFlavor, error) {
	chosen := make(map[string]*ProductFlavor, len(names))
	var dimensionless []*ProductFlavor

	for _, name := range names {
		f := m.ProductFlavor(name)
		if f == nil {
			return nil, resolveErrorf(UnknownFlavor, flavorScope(name), "flavor %q is not declared", name)
		}
		if f.Dimension != nil && f.Dimension.Invalid {
			return nil, invalidField(flavorScope(name), "dimension", f.Dimension.Raw)
		}

		if len(m.FlavorDimensions) == 0 {
			if f.Dimension != nil {
				return nil, resolveErrorf(UnknownDimension, flavorScope(name)+".dimension",
					"dimension %q is not declared in flavorDimensions", f.Dimension.Value)
			}
			if len(names) > 1 {
				return nil, resolveErrorf(UnknownDimension, flavorScope(name),
					"flavorDimensions is not declared; only one flavor can be selected")
			}
			dimensionless = append(dimensionless, f)
			continue
		}

		dim := m.FlavorDimension(f)
		switch {
		case dim == "":
			return nil, resolveErrorf(IncompleteFlavorSelection, flavorScope(name),
				"flavor %q has no dimension and the project declares %d", name, len(m.FlavorDimensions))
		case !m.hasDimension(dim):
			return nil, resolveErrorf(UnknownDimension, flavorScope(name)+".dimension",
				"dimension %q is not declared in flavorDimensions", dim)
		}

		if prev, ok := chosen[dim]; ok {
			return nil, resolveErrorf(ConflictingFlavors, flavorScope(name),
				"flavors %q and %q both belong to dimension %q", prev.Name, name, dim)
		}
		chosen[dim] = f
	}

	out := make([]*ProductFlavor, 0, len(names))
	for _, group := range m.flavorGroupsByDimension() {
		f, ok := chosen[group]
		if !ok {
			return nil, resolveErrorf(IncompleteFlavorSelection, "android.flavorDimensions",
				"no flavor selected for dimension %q", group)
		}
		out = append(out, f)
	}

	return append(out, dimensionless...), nil
}

// flavorGroupsByDimension returns the declared dimensions that have at least one flavor.
func (m *Model) flavorGroupsByDimension() []string {
	var out []string
	for _, dim := range m.FlavorDimensions {
		for _, f := range m.ProductFlavors {
			if m.FlavorDimension(f) == dim {
				out = append(out, dim)
				break
			}
		}
	}

	return out
}

// resolver carries the selected flavors for field lookups.
type resolver struct {
	model   *Model
	flavors []*ProductFlavor
}

// pickSetting returns the first setting declared by a flavor, then defaultConfig, with its scope.
func pickSetting[T any](r resolver, get func(*VariantConfig) *Setting[T]) (*Setting[T], string) {
	for _, f := range r.flavors {
		if s := get(&f.VariantConfig); s != nil {
			return s, flavorScope(f.Name)
		}
	}

	return get(&r.model.DefaultConfig.VariantConfig), "android.defaultConfig"
}

// intValue returns the value of s, def when absent, or InvalidFieldValue.
func intValue(s *Setting[int], scope, key string, def int) (int, error) {
	switch {
	case s == nil:
		return def, nil
	case s.Invalid:
		return 0, invalidField(scope, key, s.Raw)
	default:
		return s.Value, nil
	}
}

// boolValue returns the value of s, def when absent, or InvalidFieldValue.
func boolValue(s *Setting[bool], scope, key string, def bool) (bool, error) {
	switch {
	case s == nil:
		return def, nil
	case s.Invalid:
		return false, invalidField(scope, key, s.Raw)
	default:
		return s.Value, nil
	}
}

// invalidField builds an InvalidFieldValue error.
func invalidField(scope, key, raw string) error {
	return resolveErrorf(InvalidFieldValue, scope+"."+key, "cannot use %s", raw)
}

// joinSuffix appends suffix to base with sep, unless suffix already starts with sep.
func joinSuffix(base, suffix, sep string) string {
	if suffix == "" {
		return base
	}
	if strings.HasPrefix(suffix, sep) {
		return base + suffix
	}

	return base + sep + suffix
}

// variantName builds an AGP variant name: flavors then build type in lower camel case.
func variantName(flavors []string, buildType string) string {
	if len(flavors) == 0 {
		return buildType
	}

	var b strings.Builder
	b.WriteString(flavors[0])
	for _, f := range flavors[1:] {
		b.WriteString(capitalize(f))
	}
	b.WriteString(capitalize(buildType))

	return b.String()
}

// capitalize upper-cases the first ASCII letter of s.
func capitalize(s string) string {
	if s == "" || s[0] < 'a' || s[0] > 'z' {
		return s
	}

	return string(s[0]-'a'+'A') + s[1:]
}

// cloneSigningConfig copies sc so variants never share model state.
func cloneSigningConfig(sc *SigningConfig) *SigningConfig {
	cp := *sc
	for _, p := range []**Value{&cp.KeyAlias, &cp.KeyPassword, &cp.StoreFile, &cp.StorePassword, &cp.StoreType} {
		if *p != nil {
			v := cloneValue(**p)
			*p = &v
		}
	}

	return &cp
}

// cloneValue deep-copies v.
func cloneValue(v Value) Value {
	if v.List == nil {
		return v
	}

	items := make([]Value, len(v.List))
	for i, item := range v.List {
		items[i] = cloneValue(item)
	}
	v.List = items

	return v
}

// flavorScope returns the declaration scope of a flavor.
func flavorScope(name string) string {
	return "android.productFlavors." + name
}

// buildTypeScope returns the declaration scope of a build type.
func buildTypeScope(name string) string {
	return "android.buildTypes." + name
}
