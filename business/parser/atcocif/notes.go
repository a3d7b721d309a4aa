package atcocif

import "strings"

// normaliseNoteText lower-cases and collapses whitespace runs, the
// normalisation §4.4 requires before matching a QN note against the
// recognised pick-up/set-down variants.
func normaliseNoteText(s string) string {
	fields := strings.Fields(strings.ToLower(s))
	return strings.Join(fields, " ")
}

// pickUpOnlyVariants and setDownOnlyVariants are the spellings observed in
// real ATCO-CIF feeds. New spellings should be logged rather than silently
// dropped (§9); they fall back to becoming a trip-level footnote instead of
// flipping a StopTime's pickup/set-down flags.
var pickUpOnlyVariants = []string{
	"pick up only",
	"pick up  only",
}

var setDownOnlyVariants = []string{
	"set down only",
	".set down only",
}

func isPickUpOnlyNote(text string) bool {
	return matchesVariant(text, pickUpOnlyVariants)
}

func isSetDownOnlyNote(text string) bool {
	return matchesVariant(text, setDownOnlyVariants)
}

func matchesVariant(text string, variants []string) bool {
	normalised := normaliseNoteText(text)
	for _, v := range variants {
		if normalised == normaliseNoteText(v) {
			return true
		}
	}
	return false
}
