/*
Package agpconf extracts the effective Android build configuration of every
build variant from a Gradle build script written in the Kotlin or Groovy DSL.

The script is never executed. It goes through a fixed pipeline: tokens, a
generic block tree, flat declarations, a typed Model and finally resolved
Variants. Assignment form (applicationId = "x") and call form
(applicationId("x")) produce the same declarations, and container entries
written as debug { } or create("debug") { } produce the same entries.
Declarations outside the known vocabulary are kept and reported.

Reader example:

	m, err := agpconf.DecodeFile("app/build.gradle.kts", nil)
	if err != nil {
		// handle error
	}

Resolver example:

	v, err := m.Resolve(agpconf.Request{Flavors: []string{"dev"}, BuildType: "release"}, nil)
	if agpconf.IsResolutionError(err, agpconf.MissingApplicationId) {
		// no applicationId for this variant
	}
	_ = v.ApplicationID

Variant listing example:

	for _, req := range m.VariantRequests() {
		v, err := m.Resolve(req, nil)
		if err != nil {
			continue
		}
		_ = v.Name
	}

Diagnostics example:

	s := m.Inspect()
	for _, u := range s.Unrecognized {
		_ = u.Path
	}

Validator example:

	issues := agpconf.Validate(m, nil)
	if len(issues) != 0 {
		// handle validation issues
	}

Writer example:

	out, err := agpconf.Format(m, nil)
	if err != nil {
		// handle error
	}
*/
package agpconf
