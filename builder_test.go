package agpconf

import (
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// parseModel runs the whole pipeline on src.
func parseModel(t *testing.T, src string, opt *ParseOptions) *Model {
	t.Helper()

	m, err := Parse([]byte(src), opt)
	require.NoError(t, err)

	return m
}

// loadFixture parses a script from testdata.
func loadFixture(t testing.TB, name string) *Model {
	t.Helper()

	m, err := DecodeFile(filepath.Join("testdata", name), nil)
	require.NoError(t, err)

	return m
}

// modelOpts ignores source positions, verbatim text and syntax-dependent bookkeeping.
var modelOpts = cmp.Options{
	cmpopts.IgnoreFields(Setting[string]{}, "Raw", "Range"),
	cmpopts.IgnoreFields(Setting[int]{}, "Raw", "Range"),
	cmpopts.IgnoreFields(Setting[bool]{}, "Raw", "Range"),
	cmpopts.IgnoreFields(SigningConfigRef{}, "Raw", "Range"),
	cmpopts.IgnoreFields(BuildType{}, "Range"),
	cmpopts.IgnoreFields(ProductFlavor{}, "Range"),
	cmpopts.IgnoreFields(SigningConfig{}, "Range"),
	cmpopts.IgnoreFields(Model{}, "Entries", "Unrecognized", "Diagnostics"),
	cmpopts.EquateEmpty(),
}

func TestBuildFixtures(t *testing.T) {
	tests := []struct {
		file          string
		applicationID string
		minSdk        int
		compileSdk    int
		buildTypes    []string
		flavors       int
		dependencies  int
	}{
		{"1.build.gradle.kts", "com.example.app", 21, 33, []string{"debug", "release"}, 0, 2},
		{"2.build.gradle.kts", "com.company.myapp", 19, 31, []string{"debug", "release"}, 0, 4},
		{"3.build.gradle.kts", "org.flutter.app.example", 16, 32, []string{"debug", "release"}, 2, 4},
		{"4.build.gradle", "org.flutter.app.example", 16, 32, []string{"debug", "release"}, 2, 4},
		{"5.build.gradle.kts", "com.example.modernapp", 24, 34, []string{"debug", "release"}, 0, 12},
	}

	for _, tt := range tests {
		t.Run(tt.file, func(t *testing.T) {
			m := loadFixture(t, tt.file)

			require.NotNil(t, m.DefaultConfig.ApplicationID)
			assert.Equal(t, tt.applicationID, m.DefaultConfig.ApplicationID.Value)
			require.NotNil(t, m.DefaultConfig.MinSdk)
			assert.Equal(t, tt.minSdk, m.DefaultConfig.MinSdk.Value)
			require.NotNil(t, m.DefaultConfig.CompileSdk)
			assert.Equal(t, tt.compileSdk, m.DefaultConfig.CompileSdk.Value)

			var names []string
			for _, bt := range m.BuildTypes {
				names = append(names, bt.Name)
			}
			assert.Equal(t, tt.buildTypes, names)
			assert.Len(t, m.ProductFlavors, tt.flavors)
			assert.Len(t, m.Dependencies, tt.dependencies)
			assert.Contains(t, m.Plugins, "com.android.application")
		})
	}
}

func TestBuildFixtureDetails(t *testing.T) {
	m := loadFixture(t, "3.build.gradle.kts")

	assert.Equal(t, []string{"com.android.application", "org.jetbrains.kotlin.android", "org.jetbrains.kotlin.kapt"}, m.Plugins)
	assert.Equal(t, []string{"env"}, m.FlavorDimensions)
	require.NotNil(t, m.BuildToolsVersion)
	assert.Equal(t, "32.0.0", m.BuildToolsVersion.Value)

	release := m.BuildType("release")
	require.NotNil(t, release)
	assert.False(t, release.Implicit)
	require.NotNil(t, release.SigningConfig)
	assert.Equal(t, "release", release.SigningConfig.Name)
	assert.Equal(t, "android.buildTypes.release.signingConfig", release.SigningConfig.Path)
	assert.Equal(t, []Value{NewDefaultProguardFile("proguard-android.txt"), StringValue("proguard-rules.pro")}, release.ProguardFiles)

	sc := m.SigningConfig("release")
	require.NotNil(t, sc)
	require.NotNil(t, sc.StoreFile)
	assert.Equal(t, NewFileRef("keystore.jks"), *sc.StoreFile)
	assert.Equal(t, StringValue("key"), *sc.KeyAlias)
	assert.Nil(t, sc.StoreType)

	dev := m.ProductFlavor("dev")
	require.NotNil(t, dev)
	assert.Equal(t, "env", dev.Dimension.Value)
	assert.Equal(t, ".dev", dev.ApplicationIDSuffix.Value)
	assert.Equal(t, "-dev", dev.VersionNameSuffix.Value)
	assert.Empty(t, m.Unrecognized)

	five := loadFixture(t, "5.build.gradle.kts")
	require.NotNil(t, five.Namespace)
	assert.Equal(t, "com.example.modernapp", five.Namespace.Value)
	assert.NotEmpty(t, five.Unrecognized)
	assert.Equal(t, Dependency{Configuration: "kapt", Notation: "com.google.dagger:hilt-compiler:2.46"}, five.Dependencies[5])
}

func TestBuildGroovyMatchesKotlin(t *testing.T) {
	kts := loadFixture(t, "3.build.gradle.kts")
	groovy := loadFixture(t, "4.build.gradle")

	if diff := cmp.Diff(kts, groovy, modelOpts); diff != "" {
		t.Fatalf("models differ (-kts +groovy):\n%s", diff)
	}
}

func TestBuildLastWriteWins(t *testing.T) {
	m := parseModel(t, `
android {
    defaultConfig {
        minSdk = 21
        minSdkVersion 23
    }
    buildTypes {
        release { isMinifyEnabled = false }
    }
    buildTypes {
        create("release") {
            isMinifyEnabled = true
            isShrinkResources = true
        }
    }
}
android.defaultConfig.minSdk = 24
`, nil)

	assert.Equal(t, 24, m.DefaultConfig.MinSdk.Value)

	release := m.BuildType("release")
	require.NotNil(t, release)
	assert.True(t, release.IsMinifyEnabled.Value)
	assert.True(t, release.IsShrinkResources.Value)
	assert.Len(t, m.BuildTypes, 2)
}

func TestBuildCoercion(t *testing.T) {
	tests := []struct {
		name    string
		src     string
		opt     *ParseOptions
		want    int
		invalid bool
	}{
		{name: "literal", src: `minSdk = 21`, want: 21},
		{name: "quoted numeral", src: `minSdk = "21"`, want: 21},
		{name: "quoted numeral strict", src: `minSdk = "21"`, opt: &ParseOptions{DisableRelaxedNumbers: true}, invalid: true},
		{name: "underscores", src: `minSdk = 2_1`, want: 21},
		{name: "not a number", src: `minSdk = "abc"`, invalid: true},
		{name: "negative", src: `minSdk = -1`, invalid: true},
		{name: "reference", src: `minSdk = libs.versions.minSdk.get().toInt()`, invalid: true},
		{name: "boolean", src: `minSdk = true`, invalid: true},
		{name: "null", src: `minSdk = null`, invalid: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := parseModel(t, "android { defaultConfig { "+tt.src+" } }", tt.opt)
			s := m.DefaultConfig.MinSdk
			require.NotNil(t, s)
			assert.Equal(t, tt.invalid, s.Invalid)
			if tt.invalid {
				require.NotEmpty(t, m.Diagnostics)
				assert.Equal(t, "Invalid value", m.Diagnostics[len(m.Diagnostics)-1].Summary)
				return
			}
			assert.Equal(t, tt.want, s.Value)
		})
	}
}

func TestBuildInvalidKeepsRaw(t *testing.T) {
	m := parseModel(t, `android { buildTypes { release { isMinifyEnabled = project.hasProperty("min") } } }`, nil)

	s := m.BuildType("release").IsMinifyEnabled
	require.NotNil(t, s)
	assert.True(t, s.Invalid)
	assert.Equal(t, `project.hasProperty("min")`, s.Raw)
}

func TestBuildFlavorDimensions(t *testing.T) {
	tests := []struct {
		name string
		src  string
		want []string
	}{
		{"append", `flavorDimensions += "env"; flavorDimensions += listOf("tier")`, []string{"env", "tier"}},
		{"replace", `flavorDimensions += "env"; flavorDimensions = listOf("tier")`, []string{"tier"}},
		{"call replaces", `flavorDimensions += "env"; flavorDimensions("a", "b")`, []string{"a", "b"}},
		{"dedupe", `flavorDimensions("env", "env", "tier")`, []string{"env", "tier"}},
		{"add", `flavorDimensions.add("env"); flavorDimensions.add("tier")`, []string{"env", "tier"}},
		{"add all", `flavorDimensions += "env"; flavorDimensions.addAll(listOf("tier", "abi"))`, []string{"env", "tier", "abi"}},
		{"groovy add", "flavorDimensions.add 'env'\nflavorDimensions.add 'tier'", []string{"env", "tier"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := parseModel(t, "android { "+tt.src+" }", nil)
			assert.Equal(t, tt.want, m.FlavorDimensions)
		})
	}
}

func TestBuildFlavorDimensionsAddResolves(t *testing.T) {
	m := parseModel(t, `android {
    defaultConfig { applicationId = "com.example" }
    flavorDimensions.add("env")
    productFlavors {
        create("dev") { dimension = "env" }
    }
}`, nil)

	v, err := m.Resolve(Request{Flavors: []string{"dev"}, BuildType: "debug"}, nil)
	require.NoError(t, err)
	assert.Equal(t, "devDebug", v.Name)
	assert.Empty(t, m.Unrecognized)
}

func TestBuildFactoryForms(t *testing.T) {
	t.Run("dotted factories", func(t *testing.T) {
		m := parseModel(t, `android {
    defaultConfig { applicationId = "com.example" }
    signingConfigs.create("release") {
        storeFile = file("release.jks")
    }
    buildTypes.getByName("release") {
        isMinifyEnabled = true
        signingConfig = signingConfigs.getByName("release")
    }
}
android.productFlavors.create("dev") { applicationIdSuffix = ".dev" }`, nil)

		var names []string
		for _, bt := range m.BuildTypes {
			names = append(names, bt.Name)
		}
		assert.Equal(t, []string{"debug", "release"}, names)
		require.Len(t, m.SigningConfigs, 1)
		assert.Equal(t, "release", m.SigningConfigs[0].Name)
		require.Len(t, m.ProductFlavors, 1)
		assert.Equal(t, "dev", m.ProductFlavors[0].Name)
		assert.Empty(t, m.Unrecognized)

		v, err := m.Resolve(Request{Flavors: []string{"dev"}, BuildType: "release"}, nil)
		require.NoError(t, err)
		assert.True(t, v.IsMinifyEnabled)
		assert.Equal(t, "com.example.dev", v.ApplicationID)
		require.NotNil(t, v.SigningConfig)
		assert.Equal(t, "release", v.SigningConfig.Name)
	})

	t.Run("non-literal names", func(t *testing.T) {
		m := parseModel(t, `android {
    buildTypes {
        getByName(BuildTypes.RELEASE) {
            isMinifyEnabled = true
        }
    }
    buildTypes.getByName(BuildTypes.DEBUG) {
        isDebuggable = false
    }
}`, nil)

		var names []string
		for _, bt := range m.BuildTypes {
			names = append(names, bt.Name)
			assert.True(t, bt.Implicit, bt.Name)
			assert.Nil(t, bt.IsMinifyEnabled, bt.Name)
			assert.Nil(t, bt.IsDebuggable, bt.Name)
		}
		assert.Equal(t, []string{"debug", "release"}, names)
		assert.Equal(t, []string{"debug", "release"}, m.Inspect().Variants)

		var paths []string
		for _, d := range m.Unrecognized {
			paths = append(paths, d.FullPath())
		}
		assert.Equal(t, []string{
			"android.buildTypes.getByName",
			"android.buildTypes.getByName.isMinifyEnabled",
			"android.buildTypes.getByName",
			"android.buildTypes.getByName.isDebuggable",
		}, paths)
	})
}

func TestBuildStringTemplatesAreInvalid(t *testing.T) {
	m := parseModel(t, `android {
    defaultConfig {
        applicationId = "com.example"
        versionName = "1.0.$build"
        testInstrumentationRunner = "${pkg}.Runner"
    }
}`, nil)

	vc := m.DefaultConfig.VariantConfig
	require.NotNil(t, vc.VersionName)
	assert.True(t, vc.VersionName.Invalid)
	assert.Equal(t, `"1.0.$build"`, vc.VersionName.Raw)
	require.NotNil(t, vc.TestInstrumentationRunner)
	assert.True(t, vc.TestInstrumentationRunner.Invalid)

	_, err := m.Resolve(Request{BuildType: "debug"}, nil)
	assert.True(t, IsResolutionError(err, InvalidFieldValue), "got %v", err)
}

func TestBuildConfigFields(t *testing.T) {
	m := parseModel(t, `
android {
    defaultConfig {
        buildConfigField("String", "A", "\"1\"")
        buildConfigField("int", "B", "2")
        buildConfigField("String", "A", "\"3\"")
        buildConfigField("String", "C")
    }
}
`, nil)

	assert.Equal(t, []BuildConfigField{
		{Type: "String", Name: "A", Value: `"3"`},
		{Type: "int", Name: "B", Value: "2"},
	}, m.DefaultConfig.BuildConfigFields)
	assert.Equal(t, "Invalid value", m.Diagnostics[len(m.Diagnostics)-1].Summary)
}

func TestBuildSigningReferences(t *testing.T) {
	tests := []struct {
		src     string
		name    string
		invalid bool
		absent  bool
	}{
		{src: `signingConfigs.getByName("upload")`, name: "upload"},
		{src: `signingConfigs["upload"]`, name: "upload"},
		{src: `signingConfigs.upload`, name: "upload"},
		{src: `"upload"`, name: "upload"},
		{src: `signingConfigs.findByName(keyName)`, invalid: true},
		{src: `debugSigning`, invalid: true},
		{src: `null`, absent: true},
	}

	for _, tt := range tests {
		t.Run(tt.src, func(t *testing.T) {
			m := parseModel(t, "android { buildTypes { release { signingConfig = "+tt.src+" } } }", nil)
			ref := m.BuildType("release").SigningConfig
			if tt.absent {
				assert.Nil(t, ref)
				return
			}
			require.NotNil(t, ref)
			assert.Equal(t, tt.invalid, ref.Invalid)
			assert.Equal(t, tt.name, ref.Name)
			assert.Equal(t, tt.src, ref.Raw)
		})
	}
}

func TestBuildImplicitBuildTypes(t *testing.T) {
	m := parseModel(t, `android { buildTypes { debug { } ; create("staging") { } } }`, nil)

	require.Len(t, m.BuildTypes, 3)
	assert.Equal(t, "debug", m.BuildTypes[0].Name)
	assert.False(t, m.BuildTypes[0].Implicit)
	assert.Equal(t, "release", m.BuildTypes[1].Name)
	assert.True(t, m.BuildTypes[1].Implicit)
	assert.Equal(t, "staging", m.BuildTypes[2].Name)
	assert.False(t, m.BuildTypes[2].Implicit)
	assert.Equal(t, 1, m.BuildTypes[2].Range.Start.Line)
}

func TestBuildPluginsAndDependencies(t *testing.T) {
	m := parseModel(t, `
plugins {
    id("com.android.library")
    kotlin("android")
    alias(libs.plugins.compose)
}
dependencies {
    implementation(project(":core"))
    testImplementation "junit:junit:4.13.2"
}
`, nil)

	assert.Equal(t, []string{"com.android.library", "org.jetbrains.kotlin.android", "libs.plugins.compose"}, m.Plugins)
	assert.Equal(t, []Dependency{
		{Configuration: "implementation", Notation: `project(":core")`, Verbatim: true},
		{Configuration: "testImplementation", Notation: "junit:junit:4.13.2"},
	}, m.Dependencies)
}

func TestBuildNoAndroidBlock(t *testing.T) {
	m := parseModel(t, `rootProject.name = "demo"`, nil)

	assert.Nil(t, m.Namespace)
	assert.Nil(t, m.DefaultConfig.ApplicationID)
	assert.Len(t, m.BuildTypes, 2)
	require.Len(t, m.Unrecognized, 1)
	assert.Equal(t, "rootProject.name", m.Unrecognized[0].FullPath())
}

func TestBuildNil(t *testing.T) {
	m := Build(nil, nil)
	require.NotNil(t, m)
	assert.Len(t, m.BuildTypes, 2)
}
