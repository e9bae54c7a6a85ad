package spotify

import (
	"regexp"
	"strings"
)

var versionSuffixes = []*regexp.Regexp{
	regexp.MustCompile(` - Remastered \d{4}`),
	regexp.MustCompile(` - Remastered`),
	regexp.MustCompile(` \(Remastered \d{4}\)`),
	regexp.MustCompile(` \(Remastered\)`),
	regexp.MustCompile(` - \d{4} Remaster`),
	regexp.MustCompile(` - Live`),
	regexp.MustCompile(` \(Live\)`),
	regexp.MustCompile(` - Radio Edit`),
	regexp.MustCompile(` - Edit`),
	regexp.MustCompile(` - Mono`),
	regexp.MustCompile(` - Stereo`),
}

// cleanTrackName strips version markers like "Remastered 2011" and anything
// after a " - " separator so a search finds the original recording.
func cleanTrackName(name string) string {
	for _, re := range versionSuffixes {
		name = re.ReplaceAllString(name, "")
	}
	name, _, _ = strings.Cut(name, " - ")
	return strings.TrimSpace(name)
}
