package archive

import (
	"regexp"
	"strings"
)

// ArtifactMatcher recognises the archives this package produced for one
// unit, and leftover temp files of them. Only the unit's top level counts.
type ArtifactMatcher struct {
	re *regexp.Regexp
}

func NewArtifactMatcher(dirName string) ArtifactMatcher {
	return ArtifactMatcher{
		re: regexp.MustCompile(`^\.?` + regexp.QuoteMeta(dirName) + `_\d{2}-\d{2}-\d{2}(_\d+)?\.zip(\.tmp)?$`),
	}
}

// Match reports whether rel, a slash-separated path inside the unit, is
// one of the unit's archives.
func (m ArtifactMatcher) Match(rel string) bool {
	if strings.Contains(rel, "/") {
		return false
	}
	return m.re.MatchString(rel)
}

// IsArtifact is NewArtifactMatcher(dirName).Match(rel) for one-off checks.
func IsArtifact(dirName, rel string) bool {
	return NewArtifactMatcher(dirName).Match(rel)
}
