package security

import "regexp"

// denyPattern pairs a compiled regex with the human-readable reason a
// command matching it is refused outright, regardless of quoting.
type denyPattern struct {
	re     *regexp.Regexp
	reason string
}

// DefaultDenyPatterns is the built-in shell tool's refusal list: commands
// that are destructive enough to reject unconditionally rather than merely
// flag as risky (that's AnalyzeCommandQuoteAware's job).
var DefaultDenyPatterns = []string{
	`rm\s+-rf\s+/(\s|$)`,
	`rm\s+-rf\s+/\*`,
	`>\s*/dev/(sda|nvme|disk)`,
	`:\(\)\s*\{\s*:\s*\|\s*:\s*&\s*\}\s*;\s*:`,
	`\|\s*(sudo\s+)?(sh|bash|zsh)\b`,
	`\bsudo\b`,
	`\beval\b`,
	`chmod\s+-R?\s*777\b`,
	`>\s*/etc/`,
}

var compiledDenyPatterns []denyPattern

func init() {
	compiledDenyPatterns = compileDenyPatterns(DefaultDenyPatterns)
}

func compileDenyPatterns(patterns []string) []denyPattern {
	out := make([]denyPattern, 0, len(patterns))
	for _, p := range patterns {
		re, err := regexp.Compile(p)
		if err != nil {
			continue
		}
		out = append(out, denyPattern{re: re, reason: "command matches deny pattern: " + p})
	}
	return out
}

// MatchDenyPattern returns the reason the command is denied, and true, if
// cmd matches any configured deny pattern. Matching runs against
// StripQuoted(cmd) rather than the raw command, so a deny pattern never
// fires on a denied word or metacharacter that only appears inside a
// quoted string literal (e.g. `echo "rm -rf /"`). A nil/empty patterns
// slice falls back to DefaultDenyPatterns.
func MatchDenyPattern(cmd string, patterns []string) (string, bool) {
	list := compiledDenyPatterns
	if len(patterns) > 0 {
		list = compileDenyPatterns(patterns)
	}
	unquoted := StripQuoted(cmd)
	for _, dp := range list {
		if dp.re.MatchString(unquoted) {
			return dp.reason, true
		}
	}
	return "", false
}
