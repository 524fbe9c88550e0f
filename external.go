package agpconf

import (
	"strings"
)

// ExternalKind indicates what an opaque external call refers to.
type ExternalKind string

const (
	// ExternalFile is file("x") and its project-relative variants.
	ExternalFile ExternalKind = "file"
	// ExternalDefaultProguardFile is getDefaultProguardFile("x").
	ExternalDefaultProguardFile ExternalKind = "defaultProguardFile"
	// ExternalEnv is an environment variable lookup.
	ExternalEnv ExternalKind = "env"
	// ExternalProperty is a Gradle or project property lookup.
	ExternalProperty ExternalKind = "property"
	// ExternalOther is any other call.
	ExternalOther ExternalKind = "other"
)

// externalFuncs maps call names to their kind.
var externalFuncs = map[string]ExternalKind{
	"file":                          ExternalFile,
	"project.file":                  ExternalFile,
	"rootProject.file":              ExternalFile,
	"layout.projectDirectory.file":  ExternalFile,
	"getDefaultProguardFile":        ExternalDefaultProguardFile,
	"System.getenv":                 ExternalEnv,
	"providers.environmentVariable": ExternalEnv,
	"project.property":              ExternalProperty,
	"property":                      ExternalProperty,
	"findProperty":                  ExternalProperty,
	"project.findProperty":          ExternalProperty,
	"providers.gradleProperty":      ExternalProperty,
	"rootProject.extra.get":         ExternalProperty,
	"extra.get":                     ExternalProperty,
	"signingConfigs.getByName":      ExternalOther,
}

// providerAccessors unwrap Provider lookups: providers.environmentVariable("X").get().
var providerAccessors = keySet("get", "getOrElse", "orElse", "getOrNull")

// knownDefaultProguardFiles are the files getDefaultProguardFile accepts.
var knownDefaultProguardFiles = keySet("proguard-android.txt", "proguard-android-optimize.txt")

// ExternalRef is a classified opaque call. It is never evaluated.
type ExternalRef struct {
	Kind ExternalKind `json:"kind" yaml:"kind"`                     // Reference kind
	Func string       `json:"func" yaml:"func"`                     // Call name
	Args []string     `json:"args,omitempty" yaml:"args,omitempty"` // String literals as is, other arguments rendered
	Raw  string       `json:"raw" yaml:"raw"`                       // Rendered call
}

// NewFileRef creates a file("path") value.
func NewFileRef(path string) Value {
	return ExternalValue("file", StringValue(path))
}

// NewDefaultProguardFile creates a getDefaultProguardFile("name") value.
func NewDefaultProguardFile(name string) Value {
	return ExternalValue("getDefaultProguardFile", StringValue(name))
}

// NewEnvRef creates a System.getenv("name") value.
func NewEnvRef(name string) Value {
	return ExternalValue("System.getenv", StringValue(name))
}

// ClassifyExternal classifies an external value. Other value kinds yield false.
func ClassifyExternal(v Value) (ExternalRef, bool) {
	if v.Kind != ValueExternal {
		return ExternalRef{}, false
	}

	// Provider accessors carry the provider as their first argument.
	if _, ok := providerAccessors[v.Str]; ok && len(v.List) > 0 && v.List[0].Kind == ValueExternal {
		return ClassifyExternal(v.List[0])
	}

	ref := ExternalRef{Func: v.Str, Raw: v.String(), Kind: ExternalOther}
	if kind, ok := externalFuncs[v.Str]; ok {
		ref.Kind = kind
	}

	for _, a := range v.List {
		if a.Kind == ValueString {
			ref.Args = append(ref.Args, a.Str)
			continue
		}
		ref.Args = append(ref.Args, a.String())
	}

	return ref, true
}

// Arg returns the first argument or an empty string.
func (r ExternalRef) Arg() string {
	if len(r.Args) == 0 {
		return ""
	}

	return r.Args[0]
}

// Validate validates this external reference.
func (r ExternalRef) Validate() []Issue {
	var out []Issue

	if r.Kind == ExternalOther {
		if _, ok := externalFuncs[r.Func]; !ok {
			out = append(out, Issue{Level: IssueWarning, Code: "unknown_external", Message: "unknown external function", Path: r.Func})
		}
	}

	if !externalArgsOK(r.Kind, r.Args) {
		out = append(out, Issue{Level: IssueWarning, Code: "external_args", Message: "unexpected external argument count", Path: r.Raw})
	}

	if r.Kind == ExternalDefaultProguardFile && len(r.Args) == 1 {
		if _, ok := knownDefaultProguardFiles[r.Args[0]]; !ok {
			out = append(out, Issue{Level: IssueWarning, Code: "unknown_proguard_file", Message: "unknown default proguard file", Path: r.Args[0]})
		}
	}

	if r.Kind == ExternalFile && len(r.Args) == 1 && strings.TrimSpace(r.Args[0]) == "" {
		out = append(out, Issue{Level: IssueWarning, Code: "empty_path", Message: "file reference with empty path", Path: r.Raw})
	}

	return out
}

// externalArgsOK checks the argument count of a classified call.
func externalArgsOK(kind ExternalKind, args []string) bool {
	switch kind {
	case ExternalFile, ExternalDefaultProguardFile, ExternalEnv:
		return len(args) == 1
	case ExternalProperty:
		return len(args) == 1 || len(args) == 2
	default:
		return true
	}
}
