package source

import (
	"fmt"
	"regexp"
	"strconv"
)

var (
	jaDatePattern  = regexp.MustCompile(`(\d{1,2})月\s*(\d{1,2})日`)
	isoDatePattern = regexp.MustCompile(`(\d{4})-(\d{2})-(\d{2})`)
)

// ParseDate reads an ISO date or a Japanese "3月5日" date placed in year.
// It returns "" when text holds neither.
func ParseDate(text string, year int) string {
	if m := isoDatePattern.FindString(text); m != "" {
		return m
	}
	m := jaDatePattern.FindStringSubmatch(text)
	if m == nil {
		return ""
	}
	month, _ := strconv.Atoi(m[1])
	day, _ := strconv.Atoi(m[2])
	if month < 1 || month > 12 || day < 1 || day > 31 {
		return ""
	}
	return fmt.Sprintf("%04d-%02d-%02d", year, month, day)
}
