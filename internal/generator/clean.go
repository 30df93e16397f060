package generator

import (
	"regexp"
	"strings"
)

var (
	fencedBlock   = regexp.MustCompile("(?s)```(?:javascript|typescript|js|ts)?\\n(.*?)```")
	leadingFence  = regexp.MustCompile("^```(?:javascript|typescript|js|ts)?\\n?")
	trailingFence = regexp.MustCompile("\\n?```$")
)

// CleanOutput strips markdown fences from model output. The first fenced
// block wins; otherwise stray leading and trailing fences are removed.
func CleanOutput(text string) string {
	if text == "" {
		return ""
	}

	if m := fencedBlock.FindStringSubmatch(text); m != nil {
		return strings.TrimSpace(m[1])
	}

	text = leadingFence.ReplaceAllString(text, "")
	text = trailingFence.ReplaceAllString(text, "")
	return strings.TrimSpace(text)
}
