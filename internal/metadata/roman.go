package metadata

import "strings"

// MaxSessionNumber bounds session numbers to a plausible council range.
const MaxSessionNumber = 200

var romanValues = map[byte]int{
	'I': 1, 'V': 5, 'X': 10, 'L': 50, 'C': 100, 'D': 500, 'M': 1000,
}

var romanDigits = []struct {
	value  int
	symbol string
}{
	{1000, "M"}, {900, "CM"}, {500, "D"}, {400, "CD"},
	{100, "C"}, {90, "XC"}, {50, "L"}, {40, "XL"},
	{10, "X"}, {9, "IX"}, {5, "V"}, {4, "IV"}, {1, "I"},
}

// RomanToArabic converts a Roman numeral using standard subtractive
// notation. Returns false for empty input or invalid characters.
func RomanToArabic(s string) (int, bool) {
	s = strings.ToUpper(strings.TrimSpace(s))
	if s == "" {
		return 0, false
	}

	total := 0
	for i := 0; i < len(s); i++ {
		value, ok := romanValues[s[i]]
		if !ok {
			return 0, false
		}
		if i+1 < len(s) {
			next, ok := romanValues[s[i+1]]
			if !ok {
				return 0, false
			}
			if value < next {
				total -= value
				continue
			}
		}
		total += value
	}
	if total <= 0 {
		return 0, false
	}
	return total, true
}

// ArabicToRoman converts a positive integer to its canonical Roman form.
func ArabicToRoman(n int) string {
	if n <= 0 {
		return ""
	}
	var sb strings.Builder
	for _, d := range romanDigits {
		for n >= d.value {
			sb.WriteString(d.symbol)
			n -= d.value
		}
	}
	return sb.String()
}
