package util

import "strings"

// tagDelimiters covers the comma variants seen in mixed Chinese/English
// input: ASCII comma, full-width comma, small comma, ideographic comma.
const tagDelimiters = ",，﹐、"

// SplitTags normalizes a free-text tag field into discrete labels. Whitespace
// around each label is trimmed and empty labels are dropped. Duplicates are
// kept; ordering follows the input.
func SplitTags(raw string) []string {
	tags := []string{}
	for _, tag := range strings.FieldsFunc(raw, func(r rune) bool {
		return strings.ContainsRune(tagDelimiters, r)
	}) {
		tag = strings.TrimSpace(tag)
		if tag == "" {
			continue
		}
		tags = append(tags, tag)
	}
	return tags
}
