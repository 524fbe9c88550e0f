package app

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewConfig_Defaults(t *testing.T) {
	cfg, err := NewConfig(Config{Paths: []string{"build.gradle.kts"}})
	require.NoError(t, err)

	assert.Equal(t, ModeResolve, cfg.Mode)
	assert.Equal(t, FormatJSON, cfg.Format)
	assert.Equal(t, 1, cfg.WorkerCount)
	assert.False(t, cfg.explicitRequest())
}

func TestNewConfig_Errors(t *testing.T) {
	paths := []string{"build.gradle.kts"}

	testCases := []struct {
		name    string
		cfg     Config
		wantErr string
	}{
		{"no paths", Config{}, "at least one build script path is required"},
		{"unknown mode", Config{Paths: paths, Mode: "print"}, `unknown mode "print"`},
		{"variant with build type", Config{Paths: paths, Variant: "devRelease", BuildType: "release"}, "variant cannot be combined"},
		{"variant with flavor", Config{Paths: paths, Variant: "devRelease", Flavors: []string{"dev"}}, "variant cannot be combined"},
		{"flavor without build type", Config{Paths: paths, Flavors: []string{"dev"}}, "flavor requires build-type"},
		{"request in inspect mode", Config{Paths: paths, Mode: ModeInspect, Variant: "debug"}, "cannot be used in inspect mode"},
		{"request in validate mode", Config{Paths: paths, Mode: ModeValidate, BuildType: "debug"}, "cannot be used in validate mode"},
		{"unknown format", Config{Paths: paths, Format: "xml"}, `unknown output format "xml"`},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			cfg, err := NewConfig(tc.cfg)
			require.Error(t, err)
			assert.Nil(t, cfg)
			assert.Contains(t, err.Error(), tc.wantErr)
		})
	}
}

func TestNewConfig_ExplicitRequest(t *testing.T) {
	cfg, err := NewConfig(Config{Paths: []string{"a"}, BuildType: "release", Flavors: []string{"dev"}, WorkerCount: 8})
	require.NoError(t, err)
	assert.True(t, cfg.explicitRequest())
	assert.Equal(t, 8, cfg.WorkerCount)

	cfg, err = NewConfig(Config{Paths: []string{"a"}, Variant: "devRelease"})
	require.NoError(t, err)
	assert.True(t, cfg.explicitRequest())
}
