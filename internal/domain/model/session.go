package model

import (
	"cmp"
	"slices"
	"strings"
)

// SessionName is the fixed vocabulary of weekend sessions.
type SessionName string

const (
	FreePractice1    SessionName = "Free Practice 1"
	FreePractice2    SessionName = "Free Practice 2"
	FreePractice3    SessionName = "Free Practice 3"
	SprintQualifying SessionName = "Sprint Qualifying"
	Sprint           SessionName = "Sprint"
	Qualifying       SessionName = "Qualifying"
	GrandPrix        SessionName = "Race"
)

var sessionOrder = map[SessionName]int{
	FreePractice1:    1,
	FreePractice2:    2,
	FreePractice3:    3,
	SprintQualifying: 4,
	Sprint:           5,
	Qualifying:       6,
	GrandPrix:        7,
}

// Rank is the position of the name in the vocabulary, 0 when unknown.
func (n SessionName) Rank() int { return sessionOrder[n] }

// Session is one timed on-track activity. Date is the UTC calendar date;
// TimeUTC and TimeJST are "HH:MM" clocks.
type Session struct {
	Name    SessionName `json:"name"`
	Date    string      `json:"date"`
	TimeUTC string      `json:"time_utc"`
	TimeJST string      `json:"time_jst"`
}

type sessionKeyword struct {
	needle string
	name   SessionName
}

// Checked in order: "sprint qualifying" must win over both "sprint" and
// "qualifying".
var sessionKeywords = []sessionKeyword{
	{"フリー走行1", FreePractice1},
	{"フリー走行2", FreePractice2},
	{"フリー走行3", FreePractice3},
	{"fp1", FreePractice1},
	{"fp2", FreePractice2},
	{"fp3", FreePractice3},
	{"practice1", FreePractice1},
	{"practice2", FreePractice2},
	{"practice3", FreePractice3},
	{"スプリント予選", SprintQualifying},
	{"スプリントシュートアウト", SprintQualifying},
	{"sprintqualifying", SprintQualifying},
	{"sprintshootout", SprintQualifying},
	{"スプリント", Sprint},
	{"sprint", Sprint},
	{"予選", Qualifying},
	{"qualifying", Qualifying},
	{"決勝", GrandPrix},
	{"race", GrandPrix},
}

var sessionFolder = strings.NewReplacer(" ", "", "　", "", "・", "", "-", "", "_", "")

// ParseSessionName maps free text in English or Japanese onto the session
// vocabulary.
func ParseSessionName(text string) (SessionName, bool) {
	folded := sessionFolder.Replace(strings.ToLower(strings.TrimSpace(text)))
	if folded == "" {
		return "", false
	}
	for _, kw := range sessionKeywords {
		if strings.Contains(folded, kw.needle) {
			return kw.name, true
		}
	}
	return "", false
}

// SortSessions orders sessions by UTC date and clock, falling back to
// vocabulary order when either side is undated.
func SortSessions(sessions []Session) {
	slices.SortStableFunc(sessions, func(a, b Session) int {
		if a.Date != "" && b.Date != "" {
			if c := cmp.Compare(a.Date+a.TimeUTC, b.Date+b.TimeUTC); c != 0 {
				return c
			}
		}
		return cmp.Compare(a.Name.Rank(), b.Name.Rank())
	})
}
