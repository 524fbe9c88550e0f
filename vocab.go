package agpconf

import "strings"

// Containers whose children are named entries.
const (
	ContainerBuildTypes     = "buildTypes"
	ContainerProductFlavors = "productFlavors"
	ContainerSigningConfigs = "signingConfigs"
)

// Scope patterns. A "*" segment stands for any entry name.
const (
	scopePlugins        = "plugins"
	scopeDependencies   = "dependencies"
	scopeAndroid        = "android"
	scopeDefaultConfig  = "android.defaultConfig"
	scopeBuildTypes     = "android.buildTypes.*"
	scopeProductFlavors = "android.productFlavors.*"
	scopeSigningConfigs = "android.signingConfigs.*"
)

// anyKey marks a scope where every key is recognized.
const anyKey = "*"

// vocabulary lists the keys the model builder understands per scope pattern.
var vocabulary = map[string]map[string]struct{}{
	scopePlugins:      keySet("id", "kotlin", "alias"),
	scopeDependencies: keySet(anyKey),
	scopeAndroid: keySet(
		"namespace", "compileSdk", "compileSdkVersion", "buildToolsVersion", "flavorDimensions",
	),
	scopeDefaultConfig: keySet(
		"applicationId", "minSdk", "minSdkVersion", "targetSdk", "targetSdkVersion",
		"versionCode", "versionName", "testInstrumentationRunner",
		"signingConfig", "buildConfigField", "proguardFiles", "proguardFile",
	),
	scopeBuildTypes: keySet(
		"isMinifyEnabled", "minifyEnabled", "isDebuggable", "debuggable",
		"isShrinkResources", "shrinkResources", "applicationIdSuffix", "versionNameSuffix",
		"signingConfig", "buildConfigField", "proguardFiles", "proguardFile",
	),
	scopeProductFlavors: keySet(
		"dimension", "applicationId", "applicationIdSuffix", "versionNameSuffix",
		"minSdk", "minSdkVersion", "targetSdk", "targetSdkVersion",
		"versionCode", "versionName", "testInstrumentationRunner",
		"signingConfig", "buildConfigField", "proguardFiles", "proguardFile",
	),
	scopeSigningConfigs: keySet(
		"keyAlias", "keyPassword", "storeFile", "storePassword", "storeType",
	),
}

// keyAliases maps Groovy and legacy key spellings to canonical Kotlin DSL keys.
var keyAliases = map[string]string{
	"minSdkVersion":     "minSdk",
	"targetSdkVersion":  "targetSdk",
	"compileSdkVersion": "compileSdk",
	"minifyEnabled":     "isMinifyEnabled",
	"debuggable":        "isDebuggable",
	"shrinkResources":   "isShrinkResources",
	"proguardFile":      "proguardFiles",
}

// entryFactories name container entries: create("release") { ... }.
var entryFactories = keySet("create", "register", "maybeCreate", "getByName", "named")

// containerWildcards configure every entry of a container: all { ... }.
var containerWildcards = keySet("all", "configureEach")

// collectionAdds append to a list setting: flavorDimensions.add("env").
var collectionAdds = keySet("add", "addAll")

// keySet builds a set from keys.
func keySet(keys ...string) map[string]struct{} {
	out := make(map[string]struct{}, len(keys))
	for _, k := range keys {
		out[k] = struct{}{}
	}

	return out
}

// canonicalKey returns the canonical spelling of key.
func canonicalKey(key string) string {
	if c, ok := keyAliases[key]; ok {
		return c
	}

	return key
}

// isContainer checks if a block name holds named entries.
func isContainer(name string) bool {
	switch name {
	case ContainerBuildTypes, ContainerProductFlavors, ContainerSigningConfigs:
		return true
	default:
		return false
	}
}

// isEntryFactory checks if a call name creates or looks up a container entry.
func isEntryFactory(name string) bool {
	_, ok := entryFactories[name]
	return ok
}

// isWildcard checks if a container child configures every entry instead of naming one.
func isWildcard(name string) bool {
	_, ok := containerWildcards[name]
	return ok
}

// isCollectionAdd checks if a call name appends to a list setting.
func isCollectionAdd(name string) bool {
	_, ok := collectionAdds[name]
	return ok
}

// scopePattern converts a declaration path to its vocabulary pattern,
// replacing entry names under containers by "*". Wildcard blocks are kept
// as written and never match the vocabulary.
func scopePattern(path []string) string {
	parts := make([]string, len(path))
	for i, seg := range path {
		if i > 0 && isContainer(path[i-1]) && !isWildcard(seg) {
			parts[i] = "*"
			continue
		}
		parts[i] = seg
	}

	return strings.Join(parts, ".")
}

// isKnownKey checks if key is part of the vocabulary at path.
func isKnownKey(path []string, key string) bool {
	keys, ok := vocabulary[scopePattern(path)]
	if !ok {
		return false
	}
	if _, ok := keys[anyKey]; ok {
		return true
	}

	_, ok = keys[key]
	return ok
}
