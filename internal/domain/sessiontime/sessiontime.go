// Package sessiontime converts session clocks between Japan Standard Time and
// UTC using the fixed +09:00 offset.
package sessiontime

import (
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"
)

const (
	dateLayout  = "2006-01-02"
	clockLayout = "15:04"

	// JSTOffset is the fixed distance of Japan Standard Time ahead of UTC.
	JSTOffset = 9 * time.Hour

	// Local clocks past midnight are written as 24:00-29:59 on Japanese
	// schedules; anything beyond 47:59 is rejected.
	maxHour = 47
)

var (
	ErrInvalidClock = errors.New("invalid clock")
	ErrInvalidDate  = errors.New("invalid date")
)

var clockPattern = regexp.MustCompile(`(\d{1,2})\s*[:：]\s*(\d{2})`)

// reference anchors clocks that arrive without a date.
var reference = time.Date(2000, time.January, 15, 0, 0, 0, 0, time.UTC)

// Moment is a calendar date plus an "HH:MM" clock. Date is empty when the
// input had none.
type Moment struct {
	Date  string
	Clock string
}

// ParseClock extracts the first "H:MM" clock from text. Hours up to 47 are
// accepted so that late-night local times survive parsing.
func ParseClock(text string) (hour, minute int, err error) {
	m := clockPattern.FindStringSubmatch(text)
	if m == nil {
		return 0, 0, fmt.Errorf("%w: %q", ErrInvalidClock, text)
	}
	hour, _ = strconv.Atoi(m[1])
	minute, _ = strconv.Atoi(m[2])
	if hour > maxHour || minute > 59 {
		return 0, 0, fmt.Errorf("%w: %q", ErrInvalidClock, text)
	}
	return hour, minute, nil
}

// JSTToUTC converts a JST date and clock to UTC. "02:00" on 2023-03-05
// becomes 17:00 on 2023-03-04, and "25:30" on 2023-03-04 becomes 16:30 on
// 2023-03-04.
func JSTToUTC(date, clock string) (Moment, error) {
	return shift(date, clock, -JSTOffset)
}

// UTCToJST converts a UTC date and clock to JST.
func UTCToJST(date, clock string) (Moment, error) {
	return shift(date, clock, JSTOffset)
}

// FromTime formats an instant as UTC and JST moments.
func FromTime(t time.Time) (utc, jst Moment) {
	u := t.UTC()
	j := u.Add(JSTOffset)
	return Moment{Date: u.Format(dateLayout), Clock: u.Format(clockLayout)},
		Moment{Date: j.Format(dateLayout), Clock: j.Format(clockLayout)}
}

func shift(date, clock string, offset time.Duration) (Moment, error) {
	hour, minute, err := ParseClock(clock)
	if err != nil {
		return Moment{}, err
	}
	base := reference
	date = strings.TrimSpace(date)
	if date != "" {
		base, err = time.Parse(dateLayout, date)
		if err != nil {
			return Moment{}, fmt.Errorf("%w: %q", ErrInvalidDate, date)
		}
	}
	t := base.Add(time.Duration(hour)*time.Hour + time.Duration(minute)*time.Minute + offset)
	out := Moment{Clock: t.Format(clockLayout)}
	if date != "" {
		out.Date = t.Format(dateLayout)
	}
	return out, nil
}
