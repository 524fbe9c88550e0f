package agpconf

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

// issueCodes returns path=code pairs of issues.
func issueCodes(issues []Issue) []string {
	out := make([]string, 0, len(issues))
	for _, issue := range issues {
		out = append(out, issue.Path+"="+issue.Code)
	}

	return out
}

func TestValidateFixturesClean(t *testing.T) {
	for _, file := range []string{"1.build.gradle.kts", "2.build.gradle.kts", "3.build.gradle.kts", "4.build.gradle"} {
		t.Run(file, func(t *testing.T) {
			m := loadFixture(t, file)
			opt := &ValidateOptions{DisableUnrecognizedCheck: true}
			assert.Empty(t, Validate(m, opt))
		})
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name string
		src  string
		opt  *ValidateOptions
		want []string
	}{
		{
			name: "application without id",
			src:  `plugins { id("com.android.application") }`,
			want: []string{"android.defaultConfig.applicationId=missing_application_id"},
		},
		{
			name: "every flavor sets an id",
			src: `plugins { id("com.android.application") }
android { productFlavors { create("a") { applicationId = "x.a" } } }`,
		},
		{
			name: "library without id",
			src:  `plugins { id("com.android.library") }`,
		},
		{
			name: "invalid settings",
			src:  `android { compileSdk = "x"; defaultConfig { applicationId = "a"; minSdk = -2 }; buildTypes { release { isDebuggable = "no" } } }`,
			want: []string{
				"android.compileSdk=invalid_value",
				"android.defaultConfig.minSdk=invalid_value",
				"android.buildTypes.release.isDebuggable=invalid_value",
			},
		},
		{
			name: "dimensions",
			src: `android {
    flavorDimensions += listOf("env", "tier", "abi")
    productFlavors {
        create("dev") { dimension = "env" }
        create("free") { dimension = "store" }
        create("plain") { }
    }
}`,
			want: []string{
				"android.productFlavors.free.dimension=unknown_dimension",
				"android.productFlavors.plain.dimension=missing_dimension",
				"android.flavorDimensions.tier=empty_dimension",
				"android.flavorDimensions.abi=empty_dimension",
			},
		},
		{
			name: "signing",
			src: `android {
    signingConfigs { create("upload") { keyAlias = "k" } }
    buildTypes {
        release { signingConfig = signingConfigs.getByName("missing") }
        debug { signingConfig = chooseSigning() }
    }
}`,
			want: []string{
				"android.buildTypes.debug.signingConfig=invalid_signing_ref",
				"android.buildTypes.release.signingConfig=dangling_reference",
				"android.signingConfigs.upload=missing_store_file",
			},
		},
		{
			name: "sdk range",
			src:  `android { compileSdk = 30; defaultConfig { minSdk = 31; targetSdk = 33 } }`,
			want: []string{
				"android.defaultConfig.targetSdk=sdk_range",
			},
		},
		{
			name: "sdk range in flavor",
			src:  `android { defaultConfig { targetSdk = 30 }; productFlavors { create("new") { minSdk = 33 } } }`,
			want: []string{
				"android.productFlavors.new.minSdk=sdk_range",
			},
		},
		{
			name: "sdk range disabled",
			src:  `android { compileSdk = 30; defaultConfig { minSdk = 31; targetSdk = 33 } }`,
			opt:  &ValidateOptions{DisableSdkRangeCheck: true},
		},
		{
			name: "externals",
			src: `android {
    buildTypes {
        release { proguardFiles(getDefaultProguardFile("proguard-fast.txt"), fileTree("rules")) }
    }
    signingConfigs { create("ci") { storeFile = file("") } }
}`,
			want: []string{
				"android.buildTypes.release.proguardFiles: proguard-fast.txt=unknown_proguard_file",
				`android.buildTypes.release.proguardFiles: fileTree=unknown_external`,
				`android.signingConfigs.ci.storeFile: file("")=empty_path`,
			},
		},
		{
			name: "externals disabled",
			src:  `android { buildTypes { release { proguardFiles(fileTree("rules")) } } }`,
			opt:  &ValidateOptions{DisableExternalCheck: true},
		},
		{
			name: "unrecognized",
			src:  "android { lint { abortOnError = false } }\n@file:Suppress(\"x\")",
			want: []string{
				"android.lint.abortOnError=unrecognized",
				"=unrecognized",
			},
		},
		{
			name: "unrecognized disabled",
			src:  `android { lint { abortOnError = false } }`,
			opt:  &ValidateOptions{DisableUnrecognizedCheck: true},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := parseModel(t, tt.src, nil)
			got := issueCodes(Validate(m, tt.opt))
			if len(tt.want) == 0 {
				assert.Empty(t, got)
				return
			}
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestValidateLevels(t *testing.T) {
	m := parseModel(t, `android { lint { abortOnError = false }; defaultConfig { minSdk = "x" } }`, nil)

	var levels []IssueLevel
	for _, issue := range Validate(m, nil) {
		levels = append(levels, issue.Level)
	}
	assert.Equal(t, []IssueLevel{IssueError, IssueWarning}, levels)
}

func TestValidateNil(t *testing.T) {
	assert.Empty(t, Validate(nil, nil))
}
