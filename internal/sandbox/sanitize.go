package sandbox

import "regexp"

// Line patterns for module syntax. Whitespace classes stay on one line so
// line numbers in later error messages still match the user's code.
var (
	importLine     = regexp.MustCompile(`(?m)^[ \t]*import[ \t]+.*$`)
	namedExportRow = regexp.MustCompile(`(?m)^[ \t]*export[ \t]+(\*|\{[^}\n]*\})([ \t]+from[ \t]+.*?)?[ \t]*;?[ \t]*$`)
	exportKeyword  = regexp.MustCompile(`(?m)^([ \t]*)export[ \t]+(default[ \t]+)?`)
)

// Sanitize strips module syntax so code can run as plain top-level
// statements. Import lines and named export lists are blanked, and the export
// keyword is removed from declarations. Anything else passes through as is;
// syntax this does not recognise surfaces later as an execution error.
func Sanitize(code string) string {
	code = importLine.ReplaceAllString(code, "")
	code = namedExportRow.ReplaceAllString(code, "")
	return exportKeyword.ReplaceAllString(code, "$1")
}
