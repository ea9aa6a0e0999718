// Package detail resolves best-effort structured detail for a single post on
// the cookie-authenticated feed platforms: media, native video, external
// links, embedded YouTube, and a screenshot with the engagement metrics in
// frame.
package detail

import "regexp"

// resolutionPriority orders candidate video encodings, best first.
var resolutionPriority = []string{"1080", "720", "360", "270"}

var resolutionTokens = map[string]*regexp.Regexp{}

func init() {
	for _, res := range resolutionPriority {
		// Match the token as a standalone number, e.g. "1280x720" or
		// "720p", but not "2700".
		resolutionTokens[res] = regexp.MustCompile(`(?:^|[^0-9])` + res + `(?:[^0-9]|$)`)
	}
}

// SelectVideoURL picks the best native-video URL out of the candidates
// observed for one post. Exact resolution matches win in priority order;
// with no resolution token anywhere, the longest URL string wins (longer
// encoded URLs tend to indicate higher bitrate).
func SelectVideoURL(candidates []string) string {
	if len(candidates) == 0 {
		return ""
	}

	for _, res := range resolutionPriority {
		re := resolutionTokens[res]
		for _, c := range candidates {
			if re.MatchString(c) {
				return c
			}
		}
	}

	longest := candidates[0]
	for _, c := range candidates[1:] {
		if len(c) > len(longest) {
			longest = c
		}
	}
	return longest
}
