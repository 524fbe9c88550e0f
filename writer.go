package agpconf

import (
	"bufio"
	"bytes"
	"io"
	"os"
	"strconv"
	"strings"
)

// Encode writes a Model to writer as a canonical Kotlin DSL build script.
// The output is lossy: only the typed model is written. Unrecognized
// declarations such as compileOptions or lint blocks are dropped; callers that
// need them read Model.Unrecognized or Inspect.
func Encode(w io.Writer, m *Model, opt *FormatOptions) error {
	fopt := opt.normalize()
	// Buffered writer reduces syscall overhead and short writes.
	bw := bufio.NewWriter(w)
	wr := &writer{w: bw, indent: fopt.Indent}
	if err := wr.writeModel(m); err != nil {
		return err
	}

	return bw.Flush()
}

// EncodeFile writes a Model to a file.
func EncodeFile(path string, m *Model, opt *FormatOptions) error {
	b, err := Format(m, opt)
	if err != nil {
		return err
	}

	return os.WriteFile(path, b, 0o600)
}

// Format renders a Model to bytes. Like Encode it drops unrecognized declarations.
func Format(m *Model, opt *FormatOptions) ([]byte, error) {
	var buf bytes.Buffer
	if err := Encode(&buf, m, opt); err != nil {
		return nil, err
	}

	return buf.Bytes(), nil
}

// writer writes a Model to a writer.
type writer struct {
	w      io.Writer // Writer to write to
	err    error     // First write error
	indent string    // Indentation string
	cache  []string  // Cache of indentation strings
	level  int       // Current nesting level
}

// writeModel writes plugins, android and dependencies blocks.
func (w *writer) writeModel(m *Model) error {
	if m == nil {
		return nil
	}

	if len(m.Plugins) > 0 {
		w.open("plugins")
		for _, p := range m.Plugins {
			w.line("id(" + quoteString(p) + ")")
		}
		w.close()
		w.writeString("\n")
	}

	w.open("android")
	w.stringSetting("namespace", m.Namespace)
	w.intSetting("compileSdk", m.DefaultConfig.CompileSdk)
	w.stringSetting("buildToolsVersion", m.BuildToolsVersion)

	w.writeString("\n")
	w.open("defaultConfig")
	w.writeVariantConfig(&m.DefaultConfig.VariantConfig)
	w.close()

	if len(m.SigningConfigs) > 0 {
		w.writeString("\n")
		w.open(ContainerSigningConfigs)
		for _, sc := range m.SigningConfigs {
			w.writeSigningConfig(sc)
		}
		w.close()
	}

	if buildTypes := declaredBuildTypes(m.BuildTypes); len(buildTypes) > 0 {
		w.writeString("\n")
		w.open(ContainerBuildTypes)
		for _, bt := range buildTypes {
			w.writeBuildType(bt)
		}
		w.close()
	}

	if len(m.FlavorDimensions) > 0 {
		w.writeString("\n")
		dims := make([]Value, 0, len(m.FlavorDimensions))
		for _, d := range m.FlavorDimensions {
			dims = append(dims, StringValue(d))
		}
		w.line("flavorDimensions += " + ListValue(dims...).String())
	}

	if len(m.ProductFlavors) > 0 {
		w.writeString("\n")
		w.open(ContainerProductFlavors)
		for _, f := range m.ProductFlavors {
			w.writeFlavor(f)
		}
		w.close()
	}
	w.close()

	if len(m.Dependencies) > 0 {
		w.writeString("\n")
		w.open("dependencies")
		for _, d := range m.Dependencies {
			notation := d.Notation
			if !d.Verbatim {
				notation = quoteString(notation)
			}
			w.line(d.Configuration + "(" + notation + ")")
		}
		w.close()
	}

	return w.err
}

// writeVariantConfig writes settings shared by defaultConfig and flavors.
func (w *writer) writeVariantConfig(c *VariantConfig) {
	w.stringSetting("applicationId", c.ApplicationID)
	w.intSetting("minSdk", c.MinSdk)
	w.intSetting("targetSdk", c.TargetSdk)
	w.intSetting("versionCode", c.VersionCode)
	w.stringSetting("versionName", c.VersionName)
	w.stringSetting("testInstrumentationRunner", c.TestInstrumentationRunner)
	w.signingRef(c.SigningConfig)
	w.buildConfigFields(c.BuildConfigFields)
	w.proguardFiles(c.ProguardFiles)
}

// writeSigningConfig writes one signing config entry.
func (w *writer) writeSigningConfig(sc *SigningConfig) {
	w.open(entryHeader("create", sc.Name))
	w.opaque("keyAlias", sc.KeyAlias)
	w.opaque("keyPassword", sc.KeyPassword)
	w.opaque("storeFile", sc.StoreFile)
	w.opaque("storePassword", sc.StorePassword)
	w.opaque("storeType", sc.StoreType)
	w.close()
}

// writeBuildType writes one build type entry. debug and release always exist and are looked up.
func (w *writer) writeBuildType(bt *BuildType) {
	factory := "create"
	if bt.Name == "debug" || bt.Name == "release" {
		factory = "getByName"
	}

	w.open(entryHeader(factory, bt.Name))
	w.boolSetting("isMinifyEnabled", bt.IsMinifyEnabled)
	w.boolSetting("isDebuggable", bt.IsDebuggable)
	w.boolSetting("isShrinkResources", bt.IsShrinkResources)
	w.stringSetting("applicationIdSuffix", bt.ApplicationIDSuffix)
	w.stringSetting("versionNameSuffix", bt.VersionNameSuffix)
	w.signingRef(bt.SigningConfig)
	w.buildConfigFields(bt.BuildConfigFields)
	w.proguardFiles(bt.ProguardFiles)
	w.close()
}

// writeFlavor writes one product flavor entry.
func (w *writer) writeFlavor(f *ProductFlavor) {
	w.open(entryHeader("create", f.Name))
	w.stringSetting("dimension", f.Dimension)
	w.stringSetting("applicationIdSuffix", f.ApplicationIDSuffix)
	w.stringSetting("versionNameSuffix", f.VersionNameSuffix)
	w.writeVariantConfig(&f.VariantConfig)
	w.close()
}

// stringSetting writes `key = "value"`; invalid settings keep their source text.
func (w *writer) stringSetting(key string, s *Setting[string]) {
	if s == nil {
		return
	}
	if s.Invalid {
		w.assign(key, s.Raw)
		return
	}

	w.assign(key, quoteString(s.Value))
}

// intSetting writes `key = 21`.
func (w *writer) intSetting(key string, s *Setting[int]) {
	if s == nil {
		return
	}
	if s.Invalid {
		w.assign(key, s.Raw)
		return
	}

	w.assign(key, strconv.Itoa(s.Value))
}

// boolSetting writes `key = true`.
func (w *writer) boolSetting(key string, s *Setting[bool]) {
	if s == nil {
		return
	}
	if s.Invalid {
		w.assign(key, s.Raw)
		return
	}

	w.assign(key, strconv.FormatBool(s.Value))
}

// opaque writes an opaque value as is.
func (w *writer) opaque(key string, v *Value) {
	if v == nil {
		return
	}

	w.assign(key, v.String())
}

// signingRef writes `signingConfig = signingConfigs.getByName("x")`.
func (w *writer) signingRef(ref *SigningConfigRef) {
	if ref == nil {
		return
	}
	if ref.Invalid {
		w.assign("signingConfig", ref.Raw)
		return
	}

	w.assign("signingConfig", ContainerSigningConfigs+".getByName("+quoteString(ref.Name)+")")
}

// buildConfigFields writes buildConfigField calls in order.
func (w *writer) buildConfigFields(fields []BuildConfigField) {
	for _, f := range fields {
		w.line("buildConfigField(" + quoteString(f.Type) + ", " + quoteString(f.Name) + ", " + quoteString(f.Value) + ")")
	}
}

// proguardFiles writes one proguardFiles call.
func (w *writer) proguardFiles(files []Value) {
	if len(files) == 0 {
		return
	}

	w.line("proguardFiles(" + joinValues(files) + ")")
}

// assign writes `key = expr`.
func (w *writer) assign(key, expr string) {
	w.line(key + " = " + expr)
}

// open writes `header {` and increases the nesting level.
func (w *writer) open(header string) {
	w.line(header + " {")
	w.level++
}

// close decreases the nesting level and writes `}`.
func (w *writer) close() {
	w.level--
	w.line("}")
}

// line writes one indented line.
func (w *writer) line(s string) {
	w.writeIndent()
	w.writeString(s)
	w.writeString("\n")
}

// writeIndent writes the current indentation level to the writer.
func (w *writer) writeIndent() {
	if w.level <= 0 {
		return
	}

	// Cache repeated indentation strings per nesting level.
	w.writeString(w.indentFor(w.level))
}

// writeString writes a string to the writer. The first error is kept and later writes are skipped.
func (w *writer) writeString(s string) {
	if w.err != nil {
		return
	}

	_, w.err = io.WriteString(w.w, s)
}

// indentFor returns the indentation string for a nesting level.
func (w *writer) indentFor(level int) string {
	if level <= 0 {
		return ""
	}

	if len(w.cache) <= level {
		w.cache = append(w.cache, make([]string, level-len(w.cache)+1)...)
	}
	if w.cache[level] == "" {
		// Cache computed indentation for this level.
		w.cache[level] = strings.Repeat(w.indent, level)
	}

	return w.cache[level]
}

// entryHeader renders `factory("name")`.
func entryHeader(factory, name string) string {
	return factory + "(" + quoteString(name) + ")"
}

// declaredBuildTypes drops implicit build types that carry no settings.
func declaredBuildTypes(all []*BuildType) []*BuildType {
	out := make([]*BuildType, 0, len(all))
	for _, bt := range all {
		if bt.Implicit && bt.IsMinifyEnabled == nil && bt.IsDebuggable == nil && bt.IsShrinkResources == nil &&
			bt.ApplicationIDSuffix == nil && bt.VersionNameSuffix == nil && bt.SigningConfig == nil &&
			len(bt.BuildConfigFields) == 0 && len(bt.ProguardFiles) == 0 {
			continue
		}
		out = append(out, bt)
	}

	return out
}
