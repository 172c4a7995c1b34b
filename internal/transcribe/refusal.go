package transcribe

import (
	"regexp"
	"strings"
)

// RefusalDetector decides whether a recognition response is a refusal rather
// than transcribed text. Kept pluggable so tests can substitute a fake
// without pattern-matching on real model phrasing.
type RefusalDetector func(text string) bool

// refusalMaxLen bounds how long a response can be and still count as a
// refusal. Real page transcriptions are far longer than apology phrases.
const refusalMaxLen = 160

var refusalRe = regexp.MustCompile(`(?i)\b(i'?m sorry|i am sorry|i apologi[sz]e|i can(?:no|')t (?:help|assist|transcribe)|unable to (?:help|assist|transcribe))`)

// DefaultRefusalDetector treats an empty result, or a short apologetic
// response, as a model refusal.
func DefaultRefusalDetector(text string) bool {
	t := strings.TrimSpace(text)
	if t == "" {
		return true
	}
	return len(t) <= refusalMaxLen && refusalRe.MatchString(t)
}
