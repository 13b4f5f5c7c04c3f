package pdf

import (
	"regexp"
	"strings"
	"unicode"
)

// Text-layer usability thresholds. Tuned on Polish-language municipal
// documents; recalibrate before pointing this at a different corpus.
const (
	minMeaningfulChars      = 300
	maxNonPrintableRatio    = 0.30
	maxArtifactOtherChars   = 50
	minCharsPerPage         = 100.0
	maxReplacementRun       = 3
	maxCharRepeatRun        = 10
	maxControlChars         = 3
	controlCharWindow       = 1000
	specialToLetterMinChars = 100
	minCommonWordTextLen    = 200
	commonWordsPerChars     = 100
	minPatternRepeats       = 5
	shortTokenRatio         = 0.70
	shortTokenMinTokens     = 20
	shortTokenMaxLen        = 2
)

// Verdict explains why a PDF text layer was rejected in favour of the
// rasterize-and-OCR path.
type Verdict struct {
	Usable bool
	Reason string
}

// pageArtifactRe matches page-number decorations like "-- 1 of 8 --",
// "— 3 z 10 —" and similar, in either hyphen or dash variants.
var pageArtifactRe = regexp.MustCompile(`[-–—]{1,2}\s*\d+\s+(?:of|z)\s+\d+\s*[-–—]{1,2}`)

// CommonWords is the lexicon used by the garbled-text common-word check:
// Polish function words plus municipal-governance vocabulary. Exported as a
// variable so a different deployment can swap in its own lexicon.
var CommonWords = []string{
	// function words
	"i", "w", "z", "na", "do", "nie", "się", "jest", "oraz", "dla",
	"od", "po", "przez", "przy", "pod", "jako", "tym", "tego", "które",
	// municipal-governance vocabulary
	"uchwała", "uchwały", "sesja", "sesji", "rada", "rady", "gmina",
	"gminy", "miasto", "miasta", "burmistrz", "wójt", "protokół",
	"zarządzenie", "sprawie", "budżet", "budżetu", "radny", "radnych",
	"posiedzenie", "głosowanie", "załącznik", "paragraf", "artykuł",
}

// ClassifyTextLayer decides whether the extracted PDF text layer can be used
// directly or the document must be rasterized and OCR'd. Any single trigger
// rejects the layer: extraction failures here are silent and inconsistent
// (broken encoding tables, embedded-font Unicode maps), so no one signal is
// trusted on its own.
func ClassifyTextLayer(text string, pageCount int) Verdict {
	collapsed := collapseWhitespace(text)
	runes := []rune(collapsed)

	if len(runes) < minMeaningfulChars {
		return Verdict{Reason: "text layer too short"}
	}

	if nonPrintableRatio(runes) > maxNonPrintableRatio {
		return Verdict{Reason: "too many non-printable characters"}
	}

	if isOnlyPageArtifacts(collapsed) {
		return Verdict{Reason: "only page-number artifacts"}
	}

	if pageCount > 0 && float64(len(runes))/float64(pageCount) < minCharsPerPage {
		return Verdict{Reason: "too few characters per page"}
	}

	if reason := garbledReason(runes); reason != "" {
		return Verdict{Reason: reason}
	}

	if lacksCommonWords(collapsed, runes) {
		return Verdict{Reason: "no recognizable words"}
	}

	if reason := repeatedPatternReason(collapsed); reason != "" {
		return Verdict{Reason: reason}
	}

	return Verdict{Usable: true}
}

func collapseWhitespace(text string) string {
	var sb strings.Builder
	prevSpace := false
	for _, r := range text {
		if unicode.IsSpace(r) {
			if !prevSpace && sb.Len() > 0 {
				sb.WriteByte(' ')
				prevSpace = true
			}
		} else {
			sb.WriteRune(r)
			prevSpace = false
		}
	}
	return strings.TrimSpace(sb.String())
}

func nonPrintableRatio(runes []rune) float64 {
	if len(runes) == 0 {
		return 0
	}
	nonPrintable := 0
	for _, r := range runes {
		if !unicode.IsPrint(r) && r != ' ' {
			nonPrintable++
		}
	}
	return float64(nonPrintable) / float64(len(runes))
}

// isOnlyPageArtifacts reports whether the text is essentially just
// "-- N of M --" page decorations.
func isOnlyPageArtifacts(text string) bool {
	if !pageArtifactRe.MatchString(text) {
		return false
	}
	remainder := pageArtifactRe.ReplaceAllString(text, "")
	remainder = strings.TrimSpace(remainder)
	return len([]rune(remainder)) < maxArtifactOtherChars
}

func garbledReason(runes []rune) string {
	replacementRun := 0
	repeatRun := 1
	var prev rune
	controlChars := 0
	letters := 0
	specials := 0

	for i, r := range runes {
		if r == unicode.ReplacementChar {
			replacementRun++
			if replacementRun >= maxReplacementRun {
				return "replacement character run"
			}
		} else {
			replacementRun = 0
		}

		if i > 0 && r == prev && r != ' ' {
			repeatRun++
			if repeatRun >= maxCharRepeatRun {
				return "character repeated excessively"
			}
		} else {
			repeatRun = 1
		}
		prev = r

		if i < controlCharWindow && unicode.IsControl(r) && r != '\n' && r != '\t' {
			controlChars++
			if controlChars > maxControlChars {
				return "control characters in text"
			}
		}

		switch {
		case unicode.IsLetter(r):
			letters++
		case !unicode.IsDigit(r) && !unicode.IsSpace(r) && !unicode.IsPunct(r):
			specials++
		}
	}

	if len(runes) >= specialToLetterMinChars && specials > letters/2 {
		return "special characters outnumber letters"
	}
	return ""
}

// lacksCommonWords checks that long text contains at least one lexicon word
// per hundred characters. Short documents are exempt: legitimate short text
// can easily miss the lexicon.
func lacksCommonWords(text string, runes []rune) bool {
	if len(runes) < minCommonWordTextLen {
		return false
	}
	lower := strings.ToLower(text)
	matches := 0
	for _, tok := range strings.Fields(lower) {
		tok = strings.Trim(tok, ".,;:!?()\"'")
		for _, w := range CommonWords {
			if tok == w {
				matches++
				break
			}
		}
	}
	required := len(runes) / commonWordsPerChars
	if required < 1 {
		required = 1
	}
	return matches < required
}

func repeatedPatternReason(text string) string {
	runes := []rune(text)
	for size := 2; size <= 4; size++ {
		if len(runes) < size*minPatternRepeats {
			continue
		}
		for i := 0; i+size*minPatternRepeats <= len(runes); i++ {
			pattern := runes[i : i+size]
			repeats := 1
			for j := i + size; j+size <= len(runes); j += size {
				if !equalRunes(runes[j:j+size], pattern) {
					break
				}
				repeats++
			}
			if repeats >= minPatternRepeats && !isSpaceRun(pattern) {
				return "repeated character pattern"
			}
		}
	}

	tokens := strings.Fields(text)
	if len(tokens) > shortTokenMinTokens {
		short := 0
		for _, tok := range tokens {
			if len([]rune(tok)) <= shortTokenMaxLen {
				short++
			}
		}
		if float64(short)/float64(len(tokens)) > shortTokenRatio {
			return "mostly fragment tokens"
		}
	}
	return ""
}

func equalRunes(a, b []rune) bool {
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func isSpaceRun(pattern []rune) bool {
	for _, r := range pattern {
		if !unicode.IsSpace(r) {
			return false
		}
	}
	return true
}
