package revision

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

var versionSuffix = regexp.MustCompile(`\s*\(v\d+\.\d+\)\s*`)

// NextVersion bumps the minor part of a "major.minor" version. Empty input starts at "1.0";
// unparseable parts fall back to major 1, minor 0.
func NextVersion(current string) string {
	current = strings.TrimSpace(current)
	if current == "" {
		return "1.0"
	}
	majorPart, minorPart, _ := strings.Cut(current, ".")
	major := leadingInt(majorPart)
	if major == 0 {
		major = 1
	}
	minor := leadingInt(minorPart)
	return fmt.Sprintf("%d.%d", major, minor+1)
}

// VersionedName drops any "(vX.Y)" suffixes from name and appends the new one.
func VersionedName(name, version string) string {
	clean := strings.TrimSpace(versionSuffix.ReplaceAllString(name, " "))
	return fmt.Sprintf("%s (v%s)", clean, version)
}

func leadingInt(s string) int {
	s = strings.TrimSpace(s)
	end := 0
	for end < len(s) && s[end] >= '0' && s[end] <= '9' {
		end++
	}
	if end == 0 {
		return 0
	}
	n, err := strconv.Atoi(s[:end])
	if err != nil {
		return 0
	}
	return n
}
