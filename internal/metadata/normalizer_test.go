package metadata

import (
	"testing"

	"go-doc-ingest/pkg/models"
)

func TestExtractArabicWinsOverRoman(t *testing.T) {
	// Both a Roman prefix and an Arabic "nr 5" sit near "Sesja"; the
	// Arabic form wins and the branding suffix is stripped.
	meta := Extract("XV Sesja Rady Miejskiej nr 5 | Urząd Miejski w Drawnie", "")

	if meta.SessionNumber != 5 {
		t.Errorf("expected session number 5, got %d", meta.SessionNumber)
	}
	if meta.NormalizedTitle != "Sesja 5" {
		t.Errorf("expected normalized title \"Sesja 5\", got %q", meta.NormalizedTitle)
	}
}

func TestExtractRomanSessionNumber(t *testing.T) {
	meta := Extract("XV Sesja Rady Miejskiej", "")
	if meta.SessionNumber != 15 {
		t.Errorf("expected session number 15 from Roman numeral, got %d", meta.SessionNumber)
	}
	if meta.NormalizedTitle != "Sesja 15" {
		t.Errorf("expected normalized title \"Sesja 15\", got %q", meta.NormalizedTitle)
	}
}

func TestExtractNoSessionWord(t *testing.T) {
	meta := Extract("Zarządzenie Burmistrza nr 12", "")
	if meta.SessionNumber != 0 {
		t.Errorf("no session word present, expected 0, got %d", meta.SessionNumber)
	}
	if meta.NormalizedTitle != "Zarządzenie Burmistrza nr 12" {
		t.Errorf("title should pass through cleaned, got %q", meta.NormalizedTitle)
	}
}

func TestExtractSessionNumberOutOfRange(t *testing.T) {
	meta := Extract("Sesja nr 999", "")
	if meta.SessionNumber != 0 {
		t.Errorf("expected out-of-range number to be rejected, got %d", meta.SessionNumber)
	}
}

func TestExtractPublishDateFormats(t *testing.T) {
	cases := []struct {
		text string
		want string
	}{
		{"Protokół sesji z dnia 15.03.2024", "2024-03-15"},
		{"Protokół sesji z dnia 5-11-2023", "2023-11-05"},
		{"Opublikowano 2024-01-09", "2024-01-09"},
		{"z dnia 7 września 2022 roku", "2022-09-07"},
		{"z dnia 7 wrzesnia 2022 roku", "2022-09-07"},
	}
	for _, tc := range cases {
		meta := Extract("Tytuł", tc.text)
		if meta.PublishDate != tc.want {
			t.Errorf("Extract(%q): expected date %q, got %q", tc.text, tc.want, meta.PublishDate)
		}
	}
}

func TestExtractPublishDateRejectsInvalid(t *testing.T) {
	for _, text := range []string{
		"z dnia 31.02.2024", // impossible calendar date
		"z dnia 15.03.1995", // before the plausible year range
		"z dnia 15.03.2077", // after the plausible year range
	} {
		meta := Extract("Tytuł", text)
		if meta.PublishDate != "" {
			t.Errorf("Extract(%q): expected no date, got %q", text, meta.PublishDate)
		}
	}
}

func TestExtractDocumentNumber(t *testing.T) {
	meta := Extract("Uchwała Nr XV/123/24 Rady Miejskiej", "")
	if meta.DocumentNumber != "XV/123/24" {
		t.Errorf("expected document number XV/123/24, got %q", meta.DocumentNumber)
	}

	meta = Extract("Zarządzenie", "Zarządzenie Nr 12/45/2024 Burmistrza")
	if meta.DocumentNumber != "12/45/2024" {
		t.Errorf("expected document number 12/45/2024, got %q", meta.DocumentNumber)
	}
}

func TestDetectSessionType(t *testing.T) {
	cases := []struct {
		text string
		want models.SessionType
	}{
		{"Protokół sesji nadzwyczajnej", models.SessionExtraordinary},
		{"Sesja budżetowa rady gminy", models.SessionBudget},
		{"Sesja inauguracyjna nowej kadencji", models.SessionConstituent},
		{"Zwyczajna sesja rady", models.SessionOrdinary},
	}
	for _, tc := range cases {
		meta := Extract(tc.text, "")
		if meta.SessionType != tc.want {
			t.Errorf("Extract(%q): expected type %s, got %s", tc.text, tc.want, meta.SessionType)
		}
	}
}

func TestNormalizeTitleStripsBranding(t *testing.T) {
	got := NormalizeTitle("Ogłoszenie   o   konkursie | BIP Gminy Drawno", 0)
	if got != "Ogłoszenie o konkursie" {
		t.Errorf("expected branding stripped and whitespace collapsed, got %q", got)
	}
}

func TestExtractUsesOnlyContentWindow(t *testing.T) {
	// A date buried past the content window must be ignored.
	padding := make([]byte, contentWindow)
	for i := range padding {
		padding[i] = 'a'
	}
	meta := Extract("Tytuł", string(padding)+" 15.03.2024")
	if meta.PublishDate != "" {
		t.Errorf("date outside the window should be ignored, got %q", meta.PublishDate)
	}
}

func TestDedupKey(t *testing.T) {
	if got := DedupKey("https://bip.drawno.pl/doc/5", "Sesja 5", "pdf"); got != "https://bip.drawno.pl/doc/5" {
		t.Errorf("source URL should win as dedup key, got %q", got)
	}
	if got := DedupKey("", "Sesja 5", "PDF"); got != "sesja 5|pdf" {
		t.Errorf("expected title|type fallback key, got %q", got)
	}
}

func TestTitlesMatch(t *testing.T) {
	if !TitlesMatch("Sesja 5", "Sesja 5") {
		t.Error("identical titles must match")
	}
	if !TitlesMatch("Sesja 5", "Sesja 5.") {
		t.Error("one-character OCR noise must still match")
	}
	if TitlesMatch("Ogłoszenie o konkursie", "Protokół z sesji") {
		t.Error("unrelated titles must not match")
	}
	if TitlesMatch("", "Sesja 5") {
		t.Error("empty title must not match anything")
	}
}
