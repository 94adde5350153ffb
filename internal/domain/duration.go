package domain

import (
	"regexp"
	"strconv"
	"strings"
)

var durationToken = regexp.MustCompile(`(?i)(\d+)\s*([dhms])`)

// ParseDuration converts a human duration string such as "1d 2h 10m 5s"
// (spaces optional) into total seconds. Returns -1 when no valid token is
// found or the total is not positive.
func ParseDuration(input string) int64 {
	input = strings.TrimSpace(input)
	if input == "" {
		return -1
	}

	var total int64
	found := false
	for _, m := range durationToken.FindAllStringSubmatch(input, -1) {
		found = true
		v, err := strconv.ParseInt(m[1], 10, 64)
		if err != nil {
			return -1
		}
		switch strings.ToLower(m[2]) {
		case "d":
			total += v * 86400
		case "h":
			total += v * 3600
		case "m":
			total += v * 60
		case "s":
			total += v
		}
	}
	if !found || total <= 0 {
		return -1
	}
	return total
}

// IsDurationString reports whether the input contains at least one duration token.
func IsDurationString(input string) bool {
	return durationToken.MatchString(strings.TrimSpace(input))
}

// FormatDuration renders seconds as a compact human string, e.g. 90061 -> "1d 1h 1m 1s".
func FormatDuration(totalSeconds int64) string {
	if totalSeconds <= 0 {
		return "0s"
	}

	days := totalSeconds / 86400
	totalSeconds -= days * 86400
	hours := totalSeconds / 3600
	totalSeconds -= hours * 3600
	minutes := totalSeconds / 60
	seconds := totalSeconds - minutes*60

	var sb strings.Builder
	if days > 0 {
		sb.WriteString(strconv.FormatInt(days, 10))
		sb.WriteString("d ")
	}
	if hours > 0 {
		sb.WriteString(strconv.FormatInt(hours, 10))
		sb.WriteString("h ")
	}
	if minutes > 0 {
		sb.WriteString(strconv.FormatInt(minutes, 10))
		sb.WriteString("m ")
	}
	if seconds > 0 || sb.Len() == 0 {
		sb.WriteString(strconv.FormatInt(seconds, 10))
		sb.WriteString("s")
	}
	return strings.TrimSpace(sb.String())
}
