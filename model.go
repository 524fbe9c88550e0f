package agpconf

import (
	"github.com/hashicorp/hcl/v2"
)

// Setting is an optional typed setting. A nil *Setting means the key was never declared.
type Setting[T any] struct {
	Value   T         `json:"value" yaml:"value"`                         // Coerced value
	Raw     string    `json:"raw,omitempty" yaml:"raw,omitempty"`         // Verbatim source text
	Invalid bool      `json:"invalid,omitempty" yaml:"invalid,omitempty"` // Declared but not coercible
	Range   hcl.Range `json:"-" yaml:"-"`                                 // Source range of the declaration
}

// SigningConfigRef is a reference to a signing config by name.
type SigningConfigRef struct {
	Name    string    `json:"name,omitempty" yaml:"name,omitempty"`       // Referenced name
	Raw     string    `json:"raw,omitempty" yaml:"raw,omitempty"`         // Verbatim source text
	Path    string    `json:"path" yaml:"path"`                           // Declaration path
	Invalid bool      `json:"invalid,omitempty" yaml:"invalid,omitempty"` // Name could not be determined
	Range   hcl.Range `json:"-" yaml:"-"`                                 // Source range
}

// BuildConfigField is one buildConfigField(type, name, value) entry.
type BuildConfigField struct {
	Type  string `json:"type" yaml:"type"`   // Java type, e.g. String
	Name  string `json:"name" yaml:"name"`   // Field name
	Value string `json:"value" yaml:"value"` // Literal Java expression
}

// SigningConfig is a named signing configuration. Values are opaque and never evaluated.
type SigningConfig struct {
	Name          string    `json:"name" yaml:"name"`                                       // Entry name
	KeyAlias      *Value    `json:"keyAlias,omitempty" yaml:"keyAlias,omitempty"`           // Key alias
	KeyPassword   *Value    `json:"keyPassword,omitempty" yaml:"keyPassword,omitempty"`     // Key password
	StoreFile     *Value    `json:"storeFile,omitempty" yaml:"storeFile,omitempty"`         // Keystore file
	StorePassword *Value    `json:"storePassword,omitempty" yaml:"storePassword,omitempty"` // Keystore password
	StoreType     *Value    `json:"storeType,omitempty" yaml:"storeType,omitempty"`         // Keystore type
	Range         hcl.Range `json:"-" yaml:"-"`                                             // Source range of the first declaration
}

// VariantConfig holds the settings shared by defaultConfig and product flavors.
type VariantConfig struct {
	ApplicationID             *Setting[string]   `json:"applicationId,omitempty" yaml:"applicationId,omitempty"`
	MinSdk                    *Setting[int]      `json:"minSdk,omitempty" yaml:"minSdk,omitempty"`
	TargetSdk                 *Setting[int]      `json:"targetSdk,omitempty" yaml:"targetSdk,omitempty"`
	VersionCode               *Setting[int]      `json:"versionCode,omitempty" yaml:"versionCode,omitempty"`
	VersionName               *Setting[string]   `json:"versionName,omitempty" yaml:"versionName,omitempty"`
	TestInstrumentationRunner *Setting[string]   `json:"testInstrumentationRunner,omitempty" yaml:"testInstrumentationRunner,omitempty"`
	SigningConfig             *SigningConfigRef  `json:"signingConfig,omitempty" yaml:"signingConfig,omitempty"`
	BuildConfigFields         []BuildConfigField `json:"buildConfigFields,omitempty" yaml:"buildConfigFields,omitempty"`
	ProguardFiles             []Value            `json:"proguardFiles,omitempty" yaml:"proguardFiles,omitempty"`
}

// DefaultConfig is the android.defaultConfig baseline.
type DefaultConfig struct {
	VariantConfig `yaml:",inline"`
	CompileSdk    *Setting[int] `json:"compileSdk,omitempty" yaml:"compileSdk,omitempty"` // From android.compileSdk
}

// BuildType is a named build type.
type BuildType struct {
	Name                string             `json:"name" yaml:"name"`                                                   // Entry name
	IsMinifyEnabled     *Setting[bool]     `json:"isMinifyEnabled,omitempty" yaml:"isMinifyEnabled,omitempty"`         // Code shrinking
	IsDebuggable        *Setting[bool]     `json:"isDebuggable,omitempty" yaml:"isDebuggable,omitempty"`               // Debuggable APK
	IsShrinkResources   *Setting[bool]     `json:"isShrinkResources,omitempty" yaml:"isShrinkResources,omitempty"`     // Resource shrinking
	ApplicationIDSuffix *Setting[string]   `json:"applicationIdSuffix,omitempty" yaml:"applicationIdSuffix,omitempty"` // Appended to applicationId
	VersionNameSuffix   *Setting[string]   `json:"versionNameSuffix,omitempty" yaml:"versionNameSuffix,omitempty"`     // Appended to versionName
	SigningConfig       *SigningConfigRef  `json:"signingConfig,omitempty" yaml:"signingConfig,omitempty"`             // Signing config reference
	BuildConfigFields   []BuildConfigField `json:"buildConfigFields,omitempty" yaml:"buildConfigFields,omitempty"`     // Ordered, unique by name
	ProguardFiles       []Value            `json:"proguardFiles,omitempty" yaml:"proguardFiles,omitempty"`             // Literal or external references
	Implicit            bool               `json:"implicit,omitempty" yaml:"implicit,omitempty"`                       // Never declared in the script
	Range               hcl.Range          `json:"-" yaml:"-"`                                                         // Source range of the first entry
}

// ProductFlavor is a named product flavor.
type ProductFlavor struct {
	Name                string           `json:"name" yaml:"name"`                                                   // Entry name
	Dimension           *Setting[string] `json:"dimension,omitempty" yaml:"dimension,omitempty"`                     // Declared dimension
	ApplicationIDSuffix *Setting[string] `json:"applicationIdSuffix,omitempty" yaml:"applicationIdSuffix,omitempty"` // Appended to applicationId
	VersionNameSuffix   *Setting[string] `json:"versionNameSuffix,omitempty" yaml:"versionNameSuffix,omitempty"`     // Appended to versionName
	VariantConfig       `yaml:",inline"`
	Range               hcl.Range `json:"-" yaml:"-"` // Source range of the first entry
}

// Dependency is one dependencies { configuration(notation) } line.
type Dependency struct {
	Configuration string `json:"configuration" yaml:"configuration"`           // e.g. implementation
	Notation      string `json:"notation" yaml:"notation"`                     // Coordinates or verbatim expression
	Verbatim      bool   `json:"verbatim,omitempty" yaml:"verbatim,omitempty"` // Notation is source text, not a string literal
}

// Model is the typed configuration of one build script. It is read-only after Build.
type Model struct {
	Namespace         *Setting[string] `json:"namespace,omitempty" yaml:"namespace,omitempty"`                 // android.namespace
	BuildToolsVersion *Setting[string] `json:"buildToolsVersion,omitempty" yaml:"buildToolsVersion,omitempty"` // android.buildToolsVersion
	Plugins           []string         `json:"plugins,omitempty" yaml:"plugins,omitempty"`                     // Applied plugin ids
	FlavorDimensions  []string         `json:"flavorDimensions,omitempty" yaml:"flavorDimensions,omitempty"`   // Dimension order
	DefaultConfig     DefaultConfig    `json:"defaultConfig" yaml:"defaultConfig"`                             // Baseline settings
	BuildTypes        []*BuildType     `json:"buildTypes,omitempty" yaml:"buildTypes,omitempty"`               // In declaration order, implicit first
	ProductFlavors    []*ProductFlavor `json:"productFlavors,omitempty" yaml:"productFlavors,omitempty"`       // In declaration order
	SigningConfigs    []*SigningConfig `json:"signingConfigs,omitempty" yaml:"signingConfigs,omitempty"`       // In declaration order
	Dependencies      []Dependency     `json:"dependencies,omitempty" yaml:"dependencies,omitempty"`           // In declaration order
	Entries           []Entry          `json:"entries,omitempty" yaml:"entries,omitempty"`                     // Named entries as written
	Unrecognized      []Declaration    `json:"unrecognized,omitempty" yaml:"unrecognized,omitempty"`           // Kept but not interpreted
	Diagnostics       hcl.Diagnostics  `json:"-" yaml:"-"`                                                     // Normalization and build warnings
}

// BuildType returns the build type named name, or nil.
func (m *Model) BuildType(name string) *BuildType {
	for _, bt := range m.BuildTypes {
		if bt.Name == name {
			return bt
		}
	}

	return nil
}

// ProductFlavor returns the product flavor named name, or nil.
func (m *Model) ProductFlavor(name string) *ProductFlavor {
	for _, f := range m.ProductFlavors {
		if f.Name == name {
			return f
		}
	}

	return nil
}

// SigningConfig returns the signing config named name, or nil.
func (m *Model) SigningConfig(name string) *SigningConfig {
	for _, sc := range m.SigningConfigs {
		if sc.Name == name {
			return sc
		}
	}

	return nil
}

// FlavorDimension returns the effective dimension of f: its declared dimension,
// or the only declared dimension when f has none. Empty means dimensionless.
func (m *Model) FlavorDimension(f *ProductFlavor) string {
	if f.Dimension != nil && !f.Dimension.Invalid {
		return f.Dimension.Value
	}
	if f.Dimension == nil && len(m.FlavorDimensions) == 1 {
		return m.FlavorDimensions[0]
	}

	return ""
}

// hasDimension checks if dim is declared in flavorDimensions.
func (m *Model) hasDimension(dim string) bool {
	for _, d := range m.FlavorDimensions {
		if d == dim {
			return true
		}
	}

	return false
}
