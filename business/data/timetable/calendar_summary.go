package timetable

import (
	"strings"
)

// weekdayNames is Monday..Sunday to match Calendar's field order.
var weekdayNames = [7]string{"Monday", "Tuesday", "Wednesday", "Thursday", "Friday", "Saturday", "Sunday"}

// Summarise produces a short human-readable description of a Calendar's
// operating pattern: a humanised weekday range, followed by any bank
// holiday or serviced-organisation phrases, with a final pass that
// collapses a handful of known malformed upstream phrasings into their
// canonical forms.
func Summarise(c *Calendar) string {
	var parts []string

	if weekdays := humanizeWeekdays(c); weekdays != "" {
		parts = append(parts, weekdays)
	}

	for _, bh := range c.BankHols {
		if bh.Operation {
			parts = append(parts, "also "+bh.BankHoliday)
		} else {
			parts = append(parts, "not "+bh.BankHoliday)
		}
	}

	for _, cd := range c.Dates {
		if cd.Summary == "" {
			continue
		}
		if cd.Operation {
			parts = append(parts, "also "+cd.Summary)
		} else {
			parts = append(parts, "not "+cd.Summary)
		}
	}

	summary := strings.Join(parts, ", ")
	return collapseKnownMalformedPhrases(summary)
}

// humanizeWeekdays turns a weekday mask into a phrase such as "Monday to
// Friday" or "Saturday to Sunday" for one contiguous run of two or more
// days, "every day" for all seven, and otherwise lists each day in the
// plural, such as "Mondays and Wednesdays".
func humanizeWeekdays(c *Calendar) string {
	mask := []bool{c.Mon, c.Tue, c.Wed, c.Thu, c.Fri, c.Sat, c.Sun}

	count := 0
	for _, v := range mask {
		if v {
			count++
		}
	}
	if count == 0 {
		return ""
	}
	if count == 7 {
		return "every day"
	}

	// find the longest contiguous run of operating weekdays
	bestStart, bestLen := -1, 0
	curStart, curLen := -1, 0
	for i := 0; i < 7; i++ {
		if mask[i] {
			if curLen == 0 {
				curStart = i
			}
			curLen++
			if curLen > bestLen {
				bestStart, bestLen = curStart, curLen
			}
		} else {
			curLen = 0
		}
	}

	if bestLen == count && bestLen > 1 {
		return weekdayNames[bestStart] + " to " + weekdayNames[bestStart+bestLen-1]
	}

	var days []string
	for i := 0; i < 7; i++ {
		if mask[i] {
			days = append(days, weekdayNames[i]+"s")
		}
	}
	return strings.Join(days, " and ")
}

// malformedPhrases is a post-pass table of known-broken upstream phrasings
// mapped to their canonical replacement. Grows as new spellings surface in
// real feeds; per §9 new variants should be added here rather than silently
// dropped.
var malformedPhrases = []struct {
	broken    string
	canonical string
}{
	{"not School vacation in session", "not school holidays"},
	{"also School vacation in session", "school holidays"},
}

func collapseKnownMalformedPhrases(s string) string {
	for _, m := range malformedPhrases {
		s = strings.ReplaceAll(s, m.broken, m.canonical)
	}
	return s
}
