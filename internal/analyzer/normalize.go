package analyzer

import (
	"regexp"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/unicode/norm"

	"jobanalyzer/internal/errors"
)

// minAnalyzableLength is the character count below which text is returned as is.
const minAnalyzableLength = 10

var (
	whitespaceRunRe = regexp.MustCompile(`[\s\p{Z}\v]+`)
	disallowedRe    = regexp.MustCompile(`[^\p{L}\p{N}\p{Mn}\p{Pc}\s\-+#.()\[\]/:,;!?&@]`)
	yearsRe         = regexp.MustCompile(`(?i)\b(\d+)\+\s*years?\b`)
	dotJSRe         = regexp.MustCompile(`(?i)\b(\w+)\s*\.\s*js\b`)
	multiSpaceRe    = regexp.MustCompile(` {2,}`)
)

// NormalizeText cleans raw posting text before extraction. Text that is not
// valid UTF-8 is rejected with an INVALID_INPUT error. Text shorter than ten
// characters after trimming is returned trimmed and otherwise untouched.
func NormalizeText(text string, logger *errors.Logger) (string, error) {
	if !utf8.ValidString(text) {
		return "", errors.NewValidationError(errors.ErrCodeInvalidInput, "input text is not valid UTF-8", nil)
	}

	text = strings.TrimSpace(text)
	if utf8.RuneCountInString(text) < minAnalyzableLength {
		if logger != nil {
			logger.Warn("Text too short for meaningful analysis", "length", utf8.RuneCountInString(text))
		}
		return text, nil
	}

	text = norm.NFKC.String(text)
	text = whitespaceRunRe.ReplaceAllString(text, " ")
	text = disallowedRe.ReplaceAllString(text, " ")
	text = yearsRe.ReplaceAllString(text, "${1}+ years")
	text = dotJSRe.ReplaceAllString(text, "${1}.js")
	text = multiSpaceRe.ReplaceAllString(text, " ")

	return strings.TrimSpace(text), nil
}
