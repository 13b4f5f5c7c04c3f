package metadata

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/arbovm/levenshtein"

	"go-doc-ingest/pkg/models"
)

// contentWindow is how much of the document body participates in
// extraction; metadata sits in the header region of municipal documents.
const contentWindow = 1000

// sessionWindow is how far around the word "sesja" a session number may sit.
const sessionWindow = 40

var (
	sessionWordRe = regexp.MustCompile(`(?i)sesj\w*`)
	arabicRe      = regexp.MustCompile(`\b(\d{1,3})\b`)
	romanTokenRe  = regexp.MustCompile(`\b([IVXLCDM]{1,8})\b`)

	// Document numbers: XV/123/24 or Nr 123/456/24 forms
	romanDocNumberRe = regexp.MustCompile(`\b([IVXLCDM]+/\d+/\d{2,4})\b`)
	plainDocNumberRe = regexp.MustCompile(`(?i)\bNr\.?\s*(\d+/\d+/\d{2,4})\b`)

	dateDotRe   = regexp.MustCompile(`\b(\d{1,2})\.(\d{1,2})\.(\d{4})\b`)
	dateDashRe  = regexp.MustCompile(`\b(\d{1,2})-(\d{1,2})-(\d{4})\b`)
	dateISORe   = regexp.MustCompile(`\b(\d{4})-(\d{1,2})-(\d{1,2})\b`)
	dateMonthRe = regexp.MustCompile(`(?i)\b(\d{1,2})\s+(stycznia|lutego|marca|kwietnia|maja|czerwca|lipca|sierpnia|września|wrzesnia|października|pazdziernika|listopada|grudnia)\s+(\d{4})\b`)

	whitespaceRe = regexp.MustCompile(`\s+`)

	// Branding suffixes appended by municipal sites: "... | Urząd Miejski w X"
	brandingRe = regexp.MustCompile(`\s*[|–—-]\s*(?i:urz[aą]d|gmina|miasto|bip|biuletyn|starostwo|rada)\b.*$`)
)

var polishMonths = map[string]time.Month{
	"stycznia": time.January, "lutego": time.February, "marca": time.March,
	"kwietnia": time.April, "maja": time.May, "czerwca": time.June,
	"lipca": time.July, "sierpnia": time.August,
	"września": time.September, "wrzesnia": time.September,
	"października": time.October, "pazdziernika": time.October,
	"listopada": time.November, "grudnia": time.December,
}

var sessionTypeKeywords = []struct {
	keyword string
	kind    models.SessionType
}{
	{"nadzwyczajn", models.SessionExtraordinary},
	{"budżetow", models.SessionBudget},
	{"budzetow", models.SessionBudget},
	{"inauguracyjn", models.SessionConstituent},
	{"konstytuuj", models.SessionConstituent},
}

// Extract builds the normalized bibliographic record from a title and the
// beginning of the document body. It is a pure function: identical input
// always yields identical output.
func Extract(title, content string) models.NormalizedMetadata {
	if len(content) > contentWindow {
		content = content[:contentWindow]
	}
	haystack := title + "\n" + content

	meta := models.NormalizedMetadata{
		SessionType: detectSessionType(haystack),
	}

	if n, ok := extractSessionNumber(haystack); ok {
		meta.SessionNumber = n
	}
	if date, ok := extractPublishDate(haystack); ok {
		meta.PublishDate = date
	}
	if num, ok := extractDocumentNumber(haystack); ok {
		meta.DocumentNumber = num
	}

	meta.NormalizedTitle = NormalizeTitle(title, meta.SessionNumber)
	return meta
}

// NormalizeTitle strips trailing site-branding suffixes and collapses
// whitespace. When a session number is known the title collapses to its
// canonical "Sesja N" form, which is what deduplication keys on.
func NormalizeTitle(title string, sessionNumber int) string {
	title = brandingRe.ReplaceAllString(title, "")
	title = strings.TrimSpace(whitespaceRe.ReplaceAllString(title, " "))
	if sessionNumber > 0 {
		return fmt.Sprintf("Sesja %d", sessionNumber)
	}
	return title
}

// extractSessionNumber tries Arabic numerals near the word "sesja" first,
// then Roman numerals in the same neighborhood.
func extractSessionNumber(text string) (int, bool) {
	loc := sessionWordRe.FindStringIndex(text)
	if loc == nil {
		return 0, false
	}

	start := loc[0] - sessionWindow
	if start < 0 {
		start = 0
	}
	end := loc[1] + sessionWindow
	if end > len(text) {
		end = len(text)
	}
	window := text[start:end]

	if m := arabicRe.FindStringSubmatch(window); m != nil {
		if n, err := strconv.Atoi(m[1]); err == nil && n >= 1 && n <= MaxSessionNumber {
			return n, true
		}
	}

	for _, m := range romanTokenRe.FindAllStringSubmatch(window, -1) {
		if n, ok := RomanToArabic(m[1]); ok && n >= 1 && n <= MaxSessionNumber {
			// Reject tokens that merely look Roman ("I" in prose is rare in
			// Polish titles, but canonical form weeds out false hits)
			if ArabicToRoman(n) == strings.ToUpper(m[1]) {
				return n, true
			}
		}
	}
	return 0, false
}

// extractPublishDate tries the date formats in fixed order and validates
// the year range and calendar validity.
func extractPublishDate(text string) (string, bool) {
	if m := dateDotRe.FindStringSubmatch(text); m != nil {
		return buildDate(m[3], m[2], m[1])
	}
	if m := dateDashRe.FindStringSubmatch(text); m != nil {
		return buildDate(m[3], m[2], m[1])
	}
	if m := dateISORe.FindStringSubmatch(text); m != nil {
		return buildDate(m[1], m[2], m[3])
	}
	if m := dateMonthRe.FindStringSubmatch(text); m != nil {
		month, ok := polishMonths[strings.ToLower(m[2])]
		if !ok {
			return "", false
		}
		return buildDate(m[3], strconv.Itoa(int(month)), m[1])
	}
	return "", false
}

func buildDate(yearStr, monthStr, dayStr string) (string, bool) {
	year, _ := strconv.Atoi(yearStr)
	month, _ := strconv.Atoi(monthStr)
	day, _ := strconv.Atoi(dayStr)

	if year < 2000 || year > 2030 {
		return "", false
	}
	if month < 1 || month > 12 || day < 1 || day > 31 {
		return "", false
	}
	// Round-trip through time.Date to reject impossible calendar dates
	t := time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)
	if t.Year() != year || int(t.Month()) != month || t.Day() != day {
		return "", false
	}
	return t.Format("2006-01-02"), true
}

func extractDocumentNumber(text string) (string, bool) {
	if m := romanDocNumberRe.FindStringSubmatch(text); m != nil {
		return m[1], true
	}
	if m := plainDocNumberRe.FindStringSubmatch(text); m != nil {
		return m[1], true
	}
	return "", false
}

func detectSessionType(text string) models.SessionType {
	lower := strings.ToLower(text)
	for _, entry := range sessionTypeKeywords {
		if strings.Contains(lower, entry.keyword) {
			return entry.kind
		}
	}
	return models.SessionOrdinary
}

// DedupKey builds the deduplication key for the storage collaborator:
// exact source URL first, then normalized title plus document type.
func DedupKey(sourceURL, normalizedTitle, docType string) string {
	if sourceURL != "" {
		return strings.ToLower(strings.TrimSpace(sourceURL))
	}
	return strings.ToLower(strings.TrimSpace(normalizedTitle)) + "|" + strings.ToLower(docType)
}

// TitlesMatch reports whether two normalized titles should be treated as
// the same document, tolerating small OCR edit noise.
func TitlesMatch(a, b string) bool {
	a = strings.ToLower(strings.TrimSpace(a))
	b = strings.ToLower(strings.TrimSpace(b))
	if a == "" || b == "" {
		return false
	}
	if a == b {
		return true
	}
	return levenshtein.Distance(a, b) <= 2
}
