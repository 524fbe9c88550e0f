package agpconf

import (
	"fmt"
	"strings"

	"github.com/hashicorp/hcl/v2"
	"github.com/zclconf/go-cty/cty"
	"github.com/zclconf/go-cty/cty/convert"
	"github.com/zclconf/go-cty/cty/gocty"
)

// Build maps normalized declarations onto a typed model.
// Later declarations of a key override earlier ones in the same scope.
// Build never fails; values that cannot be coerced are kept as invalid settings.
func Build(n *Normalized, opt *ParseOptions) *Model {
	b := &builder{
		opt: opt.normalize(),
		m:   &Model{},
	}
	if n == nil {
		n = &Normalized{}
	}

	b.m.Entries = n.Entries
	b.m.Diagnostics = append(b.m.Diagnostics, n.Diagnostics...)

	// debug and release always exist.
	b.m.BuildTypes = []*BuildType{{Name: "debug", Implicit: true}, {Name: "release", Implicit: true}}

	for _, e := range n.Entries {
		b.declareEntry(e)
	}
	for _, d := range n.Declarations {
		b.apply(d)
	}

	return b.m
}

// builder accumulates a Model.
type builder struct {
	opt ParseOptions
	m   *Model
}

// declareEntry creates the container entry e if it is an android container entry.
func (b *builder) declareEntry(e Entry) {
	if len(e.Path) != 3 || e.Path[0] != scopeAndroid {
		return
	}

	switch e.Container {
	case ContainerBuildTypes:
		bt := b.m.BuildType(e.Name)
		switch {
		case bt == nil:
			bt = b.buildType(e.Name)
			bt.Range = e.Range
		case bt.Implicit:
			bt.Implicit = false
			bt.Range = e.Range
		}
	case ContainerProductFlavors:
		b.productFlavor(e.Name, e.Range)
	case ContainerSigningConfigs:
		b.signingConfig(e.Name, e.Range)
	}
}

// apply applies one declaration.
func (b *builder) apply(d Declaration) {
	if d.Status != Recognized {
		b.m.Unrecognized = append(b.m.Unrecognized, d)
		return
	}

	key := canonicalKey(d.Key)
	switch scopePattern(d.Path) {
	case scopePlugins:
		b.applyPlugin(d, key)
	case scopeDependencies:
		b.m.Dependencies = append(b.m.Dependencies, Dependency{
			Configuration: d.Key,
			Notation:      notation(d),
			Verbatim:      d.Value.Kind != ValueString,
		})
	case scopeAndroid:
		b.applyAndroid(d, key)
	case scopeDefaultConfig:
		if key == "compileSdk" {
			b.m.DefaultConfig.CompileSdk = b.intSetting(d)
			return
		}
		b.applyVariantConfig(&b.m.DefaultConfig.VariantConfig, d, key)
	case scopeBuildTypes:
		b.applyBuildType(b.buildType(d.Path[2]), d, key)
	case scopeProductFlavors:
		b.applyFlavor(b.productFlavor(d.Path[2], d.Range), d, key)
	case scopeSigningConfigs:
		b.applySigning(b.signingConfig(d.Path[2], d.Range), d, key)
	}
}

// applyPlugin records a plugin id.
func (b *builder) applyPlugin(d Declaration, key string) {
	id := d.Raw
	if d.Value.Kind == ValueString {
		id = d.Value.Str
		if key == "kotlin" {
			id = "org.jetbrains.kotlin." + id
		}
	}

	b.m.Plugins = append(b.m.Plugins, id)
}

// applyAndroid applies a top-level android { } setting.
func (b *builder) applyAndroid(d Declaration, key string) {
	switch key {
	case "namespace":
		b.m.Namespace = b.stringSetting(d)
	case "compileSdk":
		b.m.DefaultConfig.CompileSdk = b.intSetting(d)
	case "buildToolsVersion":
		b.m.BuildToolsVersion = b.stringSetting(d)
	case "flavorDimensions":
		dims, ok := stringItems(d.Value)
		if !ok {
			b.invalid(d, "flavorDimensions must be a list of string literals")
			return
		}
		if d.Op != OpAppend {
			b.m.FlavorDimensions = nil
		}
		for _, dim := range dims {
			if !b.m.hasDimension(dim) {
				b.m.FlavorDimensions = append(b.m.FlavorDimensions, dim)
			}
		}
	}
}

// applyVariantConfig applies a setting shared by defaultConfig and flavors.
func (b *builder) applyVariantConfig(c *VariantConfig, d Declaration, key string) {
	switch key {
	case "applicationId":
		c.ApplicationID = b.stringSetting(d)
	case "minSdk":
		c.MinSdk = b.intSetting(d)
	case "targetSdk":
		c.TargetSdk = b.intSetting(d)
	case "versionCode":
		c.VersionCode = b.intSetting(d)
	case "versionName":
		c.VersionName = b.stringSetting(d)
	case "testInstrumentationRunner":
		c.TestInstrumentationRunner = b.stringSetting(d)
	case "signingConfig":
		c.SigningConfig = signingRef(d)
	case "buildConfigField":
		c.BuildConfigFields = b.buildConfigField(c.BuildConfigFields, d)
	case "proguardFiles":
		c.ProguardFiles = append(c.ProguardFiles, d.Value.Items()...)
	}
}

// applyBuildType applies a build type setting.
func (b *builder) applyBuildType(bt *BuildType, d Declaration, key string) {
	switch key {
	case "isMinifyEnabled":
		bt.IsMinifyEnabled = b.boolSetting(d)
	case "isDebuggable":
		bt.IsDebuggable = b.boolSetting(d)
	case "isShrinkResources":
		bt.IsShrinkResources = b.boolSetting(d)
	case "applicationIdSuffix":
		bt.ApplicationIDSuffix = b.stringSetting(d)
	case "versionNameSuffix":
		bt.VersionNameSuffix = b.stringSetting(d)
	case "signingConfig":
		bt.SigningConfig = signingRef(d)
	case "buildConfigField":
		bt.BuildConfigFields = b.buildConfigField(bt.BuildConfigFields, d)
	case "proguardFiles":
		bt.ProguardFiles = append(bt.ProguardFiles, d.Value.Items()...)
	}
}

// applyFlavor applies a product flavor setting.
func (b *builder) applyFlavor(f *ProductFlavor, d Declaration, key string) {
	switch key {
	case "dimension":
		f.Dimension = b.stringSetting(d)
	case "applicationIdSuffix":
		f.ApplicationIDSuffix = b.stringSetting(d)
	case "versionNameSuffix":
		f.VersionNameSuffix = b.stringSetting(d)
	default:
		b.applyVariantConfig(&f.VariantConfig, d, key)
	}
}

// applySigning applies a signing config setting. Values are kept opaque.
func (b *builder) applySigning(sc *SigningConfig, d Declaration, key string) {
	v := d.Value
	switch key {
	case "keyAlias":
		sc.KeyAlias = &v
	case "keyPassword":
		sc.KeyPassword = &v
	case "storeFile":
		sc.StoreFile = &v
	case "storePassword":
		sc.StorePassword = &v
	case "storeType":
		sc.StoreType = &v
	}
}

// buildType returns the build type named name, creating it if needed.
func (b *builder) buildType(name string) *BuildType {
	if bt := b.m.BuildType(name); bt != nil {
		return bt
	}

	bt := &BuildType{Name: name}
	b.m.BuildTypes = append(b.m.BuildTypes, bt)
	return bt
}

// productFlavor returns the flavor named name, creating it if needed.
func (b *builder) productFlavor(name string, rng hcl.Range) *ProductFlavor {
	if f := b.m.ProductFlavor(name); f != nil {
		return f
	}

	f := &ProductFlavor{Name: name, Range: rng}
	b.m.ProductFlavors = append(b.m.ProductFlavors, f)
	return f
}

// signingConfig returns the signing config named name, creating it if needed.
func (b *builder) signingConfig(name string, rng hcl.Range) *SigningConfig {
	if sc := b.m.SigningConfig(name); sc != nil {
		return sc
	}

	sc := &SigningConfig{Name: name, Range: rng}
	b.m.SigningConfigs = append(b.m.SigningConfigs, sc)
	return sc
}

// stringSetting coerces a declaration to a string setting.
func (b *builder) stringSetting(d Declaration) *Setting[string] {
	s := newSetting[string](d, cty.String)
	if s.Invalid {
		b.invalid(d, "expected a string literal")
	}

	return s
}

// boolSetting coerces a declaration to a boolean setting.
func (b *builder) boolSetting(d Declaration) *Setting[bool] {
	s := newSetting[bool](d, cty.Bool)
	if s.Invalid {
		b.invalid(d, "expected true or false")
	}

	return s
}

// intSetting coerces a declaration to a non-negative integer setting.
func (b *builder) intSetting(d Declaration) *Setting[int] {
	s := newSetting[int](d, cty.Number)
	if !s.Invalid && s.Value < 0 {
		s.Invalid = true
	}
	if !s.Invalid && b.opt.DisableRelaxedNumbers && d.Value.Kind != ValueInt {
		s.Invalid = true
	}
	if s.Invalid {
		b.invalid(d, "expected a non-negative integer literal")
	}

	return s
}

// buildConfigField parses buildConfigField(type, name, value) and merges it into fields.
func (b *builder) buildConfigField(fields []BuildConfigField, d Declaration) []BuildConfigField {
	parts, ok := stringItems(d.Value)
	if !ok || len(parts) != 3 {
		b.invalid(d, "buildConfigField expects three string literals: type, name, value")
		return fields
	}

	return mergeField(fields, BuildConfigField{Type: parts[0], Name: parts[1], Value: parts[2]})
}

// invalid records a warning about a value that could not be used.
func (b *builder) invalid(d Declaration, detail string) {
	rng := d.Range
	b.m.Diagnostics = append(b.m.Diagnostics, &hcl.Diagnostic{
		Severity: hcl.DiagWarning,
		Summary:  "Invalid value",
		Detail:   fmt.Sprintf("%s = %s: %s.", d.FullPath(), d.Raw, detail),
		Subject:  &rng,
	})
}

// newSetting converts a declaration value to T through cty.
func newSetting[T any](d Declaration, ty cty.Type) *Setting[T] {
	val, ok := coerce[T](d.Value, ty)
	return &Setting[T]{Value: val, Raw: d.Raw, Invalid: !ok, Range: d.Range}
}

// coerce converts v to the cty type ty and then to T.
// Unknown values (references, external calls) and null never coerce.
func coerce[T any](v Value, ty cty.Type) (T, bool) {
	var out T
	cv, err := convert.Convert(v.Cty(), ty)
	if err != nil || !cv.IsWhollyKnown() || cv.IsNull() {
		return out, false
	}
	if err := gocty.FromCtyValue(cv, &out); err != nil {
		return out, false
	}

	return out, true
}

// stringItems returns the items of v as strings. Integers are accepted and formatted.
func stringItems(v Value) ([]string, bool) {
	items := v.Items()
	out := make([]string, 0, len(items))
	for _, item := range items {
		s, ok := coerce[string](item, cty.String)
		if !ok {
			return nil, false
		}
		out = append(out, s)
	}

	return out, true
}

// mergeField replaces a same-named field in place or appends f.
func mergeField(fields []BuildConfigField, f BuildConfigField) []BuildConfigField {
	for i := range fields {
		if fields[i].Name == f.Name {
			fields[i] = f
			return fields
		}
	}

	return append(fields, f)
}

// signingRef extracts a signing config name from the accepted reference forms:
// signingConfigs.getByName("x"), signingConfigs["x"], signingConfigs.x and "x".
// null clears the reference.
func signingRef(d Declaration) *SigningConfigRef {
	ref := &SigningConfigRef{Raw: d.Raw, Path: d.FullPath(), Range: d.Range}
	v := d.Value
	switch v.Kind {
	case ValueNull:
		return nil
	case ValueString:
		ref.Name = v.Str
	case ValueRef:
		name, ok := strings.CutPrefix(v.Str, ContainerSigningConfigs+".")
		if ok && name != "" && !strings.Contains(name, ".") {
			ref.Name = name
		}
	case ValueExternal:
		switch v.Str {
		case "signingConfigs.getByName", "signingConfigs.get", "signingConfigs.named", "signingConfigs.findByName":
			if len(v.List) == 1 && v.List[0].Kind == ValueString {
				ref.Name = v.List[0].Str
			}
		}
	}

	ref.Invalid = ref.Name == ""
	return ref
}

// notation renders a dependency notation: string literals as is, anything else verbatim.
func notation(d Declaration) string {
	if d.Value.Kind == ValueString {
		return d.Value.Str
	}

	return d.Raw
}
