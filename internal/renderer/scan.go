package renderer

import (
	"regexp"
	"strings"
)

// markerPattern matches {{ name }} where the interior holds no brace.
var markerPattern = regexp.MustCompile(`\{\{([^{}]+)\}\}`)

// Marker returns the normalized marker text for name.
func Marker(name string) string {
	return "{{" + name + "}}"
}

// Scan returns the distinct placeholder names in template, trimmed, in order of
// first occurrence. Malformed markers are ignored.
func Scan(template string) []string {
	names := []string{}
	seen := make(map[string]struct{})

	for _, match := range markerPattern.FindAllStringSubmatch(template, -1) {
		name := strings.TrimSpace(match[1])
		if name == "" {
			continue
		}
		if _, ok := seen[name]; ok {
			continue
		}
		seen[name] = struct{}{}
		names = append(names, name)
	}

	return names
}
