package agpconf

// ParseOptions controls tokenizing, parsing and model building.
type ParseOptions struct {
	// Filename is recorded in source ranges and diagnostics.
	Filename string
	// DisableComments disables // and /* */ comments.
	DisableComments bool
	// DisableGroovy disables Groovy-only syntax: single-quoted strings and command calls (`minSdkVersion 21`).
	DisableGroovy bool
	// DisableRelaxedNumbers rejects quoted numerals ("21") for integer settings.
	// By default they are converted like any other literal.
	DisableRelaxedNumbers bool
}

// ResolveOptions controls variant resolution.
type ResolveOptions struct {
	// NamespaceFallback uses android.namespace as the base application id
	// when neither a flavor nor defaultConfig declares applicationId.
	NamespaceFallback bool
}

// FormatOptions controls writer formatting.
type FormatOptions struct {
	// Indent is the indentation string for nested blocks (default is four spaces).
	Indent string
}

// ValidateOptions controls validation rules.
type ValidateOptions struct {
	// DisableUnrecognizedCheck suppresses warnings for declarations outside the known vocabulary.
	DisableUnrecognizedCheck bool
	// DisableExternalCheck disables validation of opaque external calls (file, getDefaultProguardFile, ...).
	DisableExternalCheck bool
	// DisableSdkRangeCheck disables the minSdk <= targetSdk <= compileSdk check.
	DisableSdkRangeCheck bool
}

// normalize normalizes the ParseOptions.
func (o *ParseOptions) normalize() ParseOptions {
	if o == nil {
		return ParseOptions{}
	}

	return *o
}

// normalize normalizes the ResolveOptions.
func (o *ResolveOptions) normalize() ResolveOptions {
	if o == nil {
		return ResolveOptions{}
	}

	return *o
}

// normalize normalizes the FormatOptions.
func (o *FormatOptions) normalize() FormatOptions {
	if o == nil {
		return FormatOptions{Indent: "    "}
	}

	out := *o
	if out.Indent == "" {
		out.Indent = "    "
	}

	return out
}

// normalize normalizes the ValidateOptions.
func (o *ValidateOptions) normalize() ValidateOptions {
	if o == nil {
		return ValidateOptions{}
	}

	return *o
}
