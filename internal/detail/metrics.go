package detail

import (
	"regexp"
	"strconv"
	"strings"
)

var metricPattern = regexp.MustCompile(`([\d,.]+[KkMm]?)\s*(repl|repost|retweet|like|view|bookmark|quote)`)

// ParseMetrics reads engagement counts out of a metrics row's accessible
// label (e.g. "12 replies, 3 reposts, 480 likes, 10K views"). Unknown or
// unparsable parts are skipped.
func ParseMetrics(label string) map[string]int64 {
	out := make(map[string]int64)
	for _, m := range metricPattern.FindAllStringSubmatch(strings.ToLower(label), -1) {
		n, ok := parseCount(m[1])
		if !ok {
			continue
		}
		switch m[2] {
		case "repl":
			out["replies"] = n
		case "repost", "retweet":
			out["reposts"] = n
		case "like":
			out["likes"] = n
		case "view":
			out["views"] = n
		case "bookmark":
			out["bookmarks"] = n
		case "quote":
			out["quotes"] = n
		}
	}
	return out
}

func parseCount(s string) (int64, bool) {
	s = strings.ReplaceAll(s, ",", "")
	mult := int64(1)
	switch {
	case strings.HasSuffix(s, "k"), strings.HasSuffix(s, "K"):
		mult = 1000
		s = s[:len(s)-1]
	case strings.HasSuffix(s, "m"), strings.HasSuffix(s, "M"):
		mult = 1000000
		s = s[:len(s)-1]
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, false
	}
	return int64(f * float64(mult)), true
}
