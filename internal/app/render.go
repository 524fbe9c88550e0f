package app

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"gopkg.in/yaml.v3"
)

// render writes reports in the given format.
func render(w io.Writer, format string, reports []Report) error {
	switch format {
	case FormatYAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(reports); err != nil {
			return err
		}
		return enc.Close()

	case FormatText:
		return renderText(w, reports)

	default:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(reports)
	}
}

// renderText writes one aligned table per report.
func renderText(w io.Writer, reports []Report) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	for i, r := range reports {
		if i > 0 {
			fmt.Fprintln(tw)
		}
		fmt.Fprintf(tw, "# %s\n", r.File)
		if r.Error != "" {
			fmt.Fprintf(tw, "error\t%s\n", r.Error)
		}

		for _, v := range r.Variants {
			if v.Variant == nil {
				fmt.Fprintf(tw, "%s\terror\t%s\n", v.Name, v.Error)
				continue
			}
			fmt.Fprintf(tw, "%s\t%s\t%s\tminSdk=%d\ttargetSdk=%d\tversionCode=%d\n",
				v.Name, v.Variant.ApplicationID, v.Variant.VersionName,
				v.Variant.MinSdk, v.Variant.TargetSdk, v.Variant.VersionCode)
		}

		if s := r.Summary; s != nil {
			fmt.Fprintf(tw, "buildTypes\t%s\n", strings.Join(s.BuildTypes, ", "))
			fmt.Fprintf(tw, "flavorDimensions\t%s\n", strings.Join(s.FlavorDimensions, ", "))
			fmt.Fprintf(tw, "variants\t%s\n", strings.Join(s.Variants, ", "))
			for _, u := range s.Unrecognized {
				fmt.Fprintf(tw, "unrecognized\t%s\t%s\n", u.Path, u.Raw)
			}
		}

		for _, issue := range r.Issues {
			fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", issue.Level, issue.Code, issue.Path, issue.Message)
		}
	}

	return tw.Flush()
}
