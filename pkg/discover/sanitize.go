package discover

import "regexp"

// MaxQueryLength bounds free-text search input.
const MaxQueryLength = 200

var injectionREs = []*regexp.Regexp{
	regexp.MustCompile(`(?i)<script[^>]*>`),
	regexp.MustCompile(`(?i)javascript:`),
	regexp.MustCompile(`(?i)on\w+\s*=`),
	regexp.MustCompile(`(?i)<iframe`),
}

// ContainsInjection reports whether s carries markup or script fragments that
// must never be forwarded or echoed back. Plain punctuation such as "&" or
// quotes is allowed.
func ContainsInjection(s string) bool {
	for _, re := range injectionREs {
		if re.MatchString(s) {
			return true
		}
	}
	return false
}
