package domain

import (
	"regexp"
	"strings"
)

var tagRe = regexp.MustCompile(`#(\w+)`)

// ExtractTags pulls #word tags out of content, lower-cased and deduplicated,
// in order of first appearance.
func ExtractTags(content string) []string {
	matches := tagRe.FindAllStringSubmatch(content, -1)
	if len(matches) == 0 {
		return nil
	}
	tags := make([]string, 0, len(matches))
	seen := make(map[string]struct{}, len(matches))
	for _, m := range matches {
		tag := strings.ToLower(m[1])
		if _, ok := seen[tag]; ok {
			continue
		}
		seen[tag] = struct{}{}
		tags = append(tags, tag)
	}
	return tags
}
