package agpconf

// IssueLevel represents severity of validation issue.
type IssueLevel string

const (
	// IssueError indicates a validation error.
	IssueError IssueLevel = "error"
	// IssueWarning indicates a validation warning.
	IssueWarning IssueLevel = "warning"
)

// Issue represents a validation issue.
type Issue struct {
	Level   IssueLevel `json:"level" yaml:"level"`                   // Severity level
	Code    string     `json:"code,omitempty" yaml:"code,omitempty"` // Machine-readable code
	Message string     `json:"message" yaml:"message"`               // Issue message
	Path    string     `json:"path,omitempty" yaml:"path,omitempty"` // Declaration path or offending text
}

// applicationPlugin is the plugin id of an application module.
const applicationPlugin = "com.android.application"

// Validate lints a model and returns issues. Issues never prevent resolution;
// they point at settings that are legal but likely wrong.
func Validate(m *Model, opt *ValidateOptions) []Issue {
	vopt := opt.normalize()
	var out []Issue
	if m == nil {
		return out
	}

	if isApplication(m) && m.DefaultConfig.ApplicationID == nil {
		missing := len(m.ProductFlavors) == 0
		for _, f := range m.ProductFlavors {
			if f.ApplicationID == nil {
				missing = true
				break
			}
		}
		if missing {
			out = append(out, Issue{Level: IssueError, Code: "missing_application_id", Message: "application module without applicationId", Path: "android.defaultConfig.applicationId"})
		}
	}

	out = append(out, validateSettings(m)...)
	out = append(out, validateDimensions(m)...)
	out = append(out, validateSigning(m)...)

	if !vopt.DisableSdkRangeCheck {
		out = append(out, validateSdkRange("android.defaultConfig", m.DefaultConfig.MinSdk, m.DefaultConfig.TargetSdk, m.DefaultConfig.CompileSdk)...)
		for _, f := range m.ProductFlavors {
			minSdk, targetSdk := f.MinSdk, f.TargetSdk
			if minSdk == nil {
				minSdk = m.DefaultConfig.MinSdk
			}
			if targetSdk == nil {
				targetSdk = m.DefaultConfig.TargetSdk
			}
			if f.MinSdk == nil && f.TargetSdk == nil {
				continue
			}
			out = append(out, validateSdkRange(flavorScope(f.Name), minSdk, targetSdk, m.DefaultConfig.CompileSdk)...)
		}
	}

	if !vopt.DisableExternalCheck {
		out = append(out, validateExternals(m)...)
	}

	if !vopt.DisableUnrecognizedCheck {
		for _, d := range m.Unrecognized {
			msg := "unrecognized declaration"
			if d.Key == "" {
				msg = "unparsed statement"
			}
			out = append(out, Issue{Level: IssueWarning, Code: "unrecognized", Message: msg, Path: d.FullPath()})
		}
	}

	return out
}

// isApplication checks if the model applies the Android application plugin.
func isApplication(m *Model) bool {
	for _, p := range m.Plugins {
		if p == applicationPlugin {
			return true
		}
	}

	return false
}

// validateSettings reports settings whose value could not be coerced.
func validateSettings(m *Model) []Issue {
	var out []Issue
	invalid := func(path string, bad bool) {
		if bad {
			out = append(out, Issue{Level: IssueError, Code: "invalid_value", Message: "value cannot be used", Path: path})
		}
	}

	checkConfig := func(scope string, c *VariantConfig) {
		invalid(scope+".applicationId", isInvalid(c.ApplicationID))
		invalid(scope+".minSdk", isInvalid(c.MinSdk))
		invalid(scope+".targetSdk", isInvalid(c.TargetSdk))
		invalid(scope+".versionCode", isInvalid(c.VersionCode))
		invalid(scope+".versionName", isInvalid(c.VersionName))
		invalid(scope+".testInstrumentationRunner", isInvalid(c.TestInstrumentationRunner))
	}

	invalid("android.namespace", isInvalid(m.Namespace))
	invalid("android.compileSdk", isInvalid(m.DefaultConfig.CompileSdk))
	checkConfig("android.defaultConfig", &m.DefaultConfig.VariantConfig)

	for _, f := range m.ProductFlavors {
		scope := flavorScope(f.Name)
		invalid(scope+".dimension", isInvalid(f.Dimension))
		invalid(scope+".applicationIdSuffix", isInvalid(f.ApplicationIDSuffix))
		invalid(scope+".versionNameSuffix", isInvalid(f.VersionNameSuffix))
		checkConfig(scope, &f.VariantConfig)
	}

	for _, bt := range m.BuildTypes {
		scope := buildTypeScope(bt.Name)
		invalid(scope+".isMinifyEnabled", isInvalid(bt.IsMinifyEnabled))
		invalid(scope+".isDebuggable", isInvalid(bt.IsDebuggable))
		invalid(scope+".isShrinkResources", isInvalid(bt.IsShrinkResources))
		invalid(scope+".applicationIdSuffix", isInvalid(bt.ApplicationIDSuffix))
		invalid(scope+".versionNameSuffix", isInvalid(bt.VersionNameSuffix))
	}

	return out
}

// validateDimensions checks flavors against flavorDimensions.
func validateDimensions(m *Model) []Issue {
	var out []Issue
	used := make(map[string]struct{}, len(m.FlavorDimensions))

	for _, f := range m.ProductFlavors {
		path := flavorScope(f.Name) + ".dimension"
		switch {
		case f.Dimension != nil && !f.Dimension.Invalid && !m.hasDimension(f.Dimension.Value):
			out = append(out, Issue{Level: IssueError, Code: "unknown_dimension", Message: "flavor dimension not declared in flavorDimensions", Path: path})
		case f.Dimension == nil && len(m.FlavorDimensions) > 1:
			out = append(out, Issue{Level: IssueError, Code: "missing_dimension", Message: "flavor without dimension in a multi-dimension project", Path: path})
		}
		if dim := m.FlavorDimension(f); dim != "" {
			used[dim] = struct{}{}
		}
	}

	for _, dim := range m.FlavorDimensions {
		if _, ok := used[dim]; !ok {
			out = append(out, Issue{Level: IssueWarning, Code: "empty_dimension", Message: "flavor dimension without flavors", Path: "android.flavorDimensions." + dim})
		}
	}

	return out
}

// validateSigning checks signing config references.
func validateSigning(m *Model) []Issue {
	refs := []*SigningConfigRef{m.DefaultConfig.SigningConfig}
	for _, f := range m.ProductFlavors {
		refs = append(refs, f.SigningConfig)
	}
	for _, bt := range m.BuildTypes {
		refs = append(refs, bt.SigningConfig)
	}

	var out []Issue
	for _, ref := range refs {
		switch {
		case ref == nil:
			continue
		case ref.Invalid:
			out = append(out, Issue{Level: IssueError, Code: "invalid_signing_ref", Message: "cannot determine signing config name", Path: ref.Path})
		case m.SigningConfig(ref.Name) == nil:
			out = append(out, Issue{Level: IssueError, Code: "dangling_reference", Message: "signing config not declared: " + ref.Name, Path: ref.Path})
		}
	}

	for _, sc := range m.SigningConfigs {
		if sc.StoreFile == nil {
			out = append(out, Issue{Level: IssueWarning, Code: "missing_store_file", Message: "signing config without storeFile", Path: "android.signingConfigs." + sc.Name})
		}
	}

	return out
}

// validateSdkRange checks minSdk <= targetSdk <= compileSdk for valid, present values.
func validateSdkRange(scope string, minSdk, targetSdk, compileSdk *Setting[int]) []Issue {
	var out []Issue
	if isValid(minSdk) && isValid(targetSdk) && minSdk.Value > targetSdk.Value {
		out = append(out, Issue{Level: IssueWarning, Code: "sdk_range", Message: "minSdk greater than targetSdk", Path: scope + ".minSdk"})
	}
	if isValid(targetSdk) && isValid(compileSdk) && targetSdk.Value > compileSdk.Value {
		out = append(out, Issue{Level: IssueWarning, Code: "sdk_range", Message: "targetSdk greater than compileSdk", Path: scope + ".targetSdk"})
	}

	return out
}

// validateExternals validates external references in proguard files and signing configs.
func validateExternals(m *Model) []Issue {
	var out []Issue
	check := func(path string, v *Value) {
		if v == nil {
			return
		}
		ref, ok := ClassifyExternal(*v)
		if !ok {
			return
		}
		for _, issue := range ref.Validate() {
			out = append(out, withPathContext(issue, path))
		}
	}

	checkAll := func(path string, vals []Value) {
		for i := range vals {
			check(path, &vals[i])
		}
	}

	checkAll("android.defaultConfig.proguardFiles", m.DefaultConfig.ProguardFiles)
	for _, f := range m.ProductFlavors {
		checkAll(flavorScope(f.Name)+".proguardFiles", f.ProguardFiles)
	}
	for _, bt := range m.BuildTypes {
		checkAll(buildTypeScope(bt.Name)+".proguardFiles", bt.ProguardFiles)
	}
	for _, sc := range m.SigningConfigs {
		scope := "android.signingConfigs." + sc.Name
		check(scope+".keyAlias", sc.KeyAlias)
		check(scope+".keyPassword", sc.KeyPassword)
		check(scope+".storeFile", sc.StoreFile)
		check(scope+".storePassword", sc.StorePassword)
		check(scope+".storeType", sc.StoreType)
	}

	return out
}

// isInvalid checks if a setting is present but invalid.
func isInvalid[T any](s *Setting[T]) bool {
	return s != nil && s.Invalid
}

// isValid checks if a setting is present and valid.
func isValid[T any](s *Setting[T]) bool {
	return s != nil && !s.Invalid
}

// withPathContext adds declaration context to an issue.
func withPathContext(issue Issue, path string) Issue {
	if path == "" {
		return issue
	}

	if issue.Path == "" {
		issue.Path = path
		return issue
	}

	issue.Path = path + ": " + issue.Path
	return issue
}
