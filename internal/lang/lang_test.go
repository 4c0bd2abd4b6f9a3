package lang

import "testing"

func TestToLocale(t *testing.T) {
	tests := []struct {
		name  string
		code3 string
		want  string
	}{
		{"english", "eng", "en-US"},
		{"english_uk", "eng_GB", "en-GB"},
		{"chinese", "chi", "zh"},
		{"chinese_simplified", "chi_CN", "zh-Hans"},
		{"german_bibliographic", "ger", "de"},
		{"german_terminologic", "deu", "de"},
		{"unknown", "xyz", "en"},
		{"empty", "", "en"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := ToLocale(tc.code3); got != tc.want {
				t.Errorf("ToLocale(%q) = %q, want %q", tc.code3, got, tc.want)
			}
		})
	}
}
