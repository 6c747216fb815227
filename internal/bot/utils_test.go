package bot

import "testing"

func TestBuildKeywordRegex(t *testing.T) {
	regex := BuildKeywordRegex([]string{"заказы", "заказ", "orders"})

	tests := []struct {
		name string
		text string
		want string
	}{
		{"exact_match", "заказы", "заказы"},
		{"keyword_with_argument", "заказ 101", "заказ"},
		{"longest_first", "заказы на неделю", "заказы"},
		{"case_insensitive", "Orders", "Orders"},
		{"no_space_no_match", "заказынет", ""},
		{"keyword_not_at_start", "покажи заказы", ""},
		{"unrelated", "привет", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := MatchKeyword(regex, tt.text); got != tt.want {
				t.Errorf("MatchKeyword(%q) = %q, want %q", tt.text, got, tt.want)
			}
		})
	}
}

func TestBuildKeywordRegex_QuotesMeta(t *testing.T) {
	// Slash-prefixed commands contain no regex meaning after quoting
	regex := BuildKeywordRegex([]string{"/reload"})
	if got := MatchKeyword(regex, "/reload"); got != "/reload" {
		t.Errorf("MatchKeyword(/reload) = %q", got)
	}
	if got := MatchKeyword(regex, "xreload"); got != "" {
		t.Errorf("MatchKeyword(xreload) = %q, want no match", got)
	}
}

func TestBuildKeywordRegex_EmptyPanics(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Error("BuildKeywordRegex(nil) should panic")
		}
	}()
	BuildKeywordRegex(nil)
}

func TestExtractSearchTerm(t *testing.T) {
	tests := []struct {
		name    string
		text    string
		keyword string
		want    string
	}{
		{"keyword_prefix", "заказ 101", "заказ", "101"},
		{"keyword_only", "заказы", "заказы", ""},
		{"empty_keyword", "  10.11.2025  ", "", "10.11.2025"},
		{"keyword_suffix", "101 заказ", "заказ", "101"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ExtractSearchTerm(tt.text, tt.keyword); got != tt.want {
				t.Errorf("ExtractSearchTerm(%q, %q) = %q, want %q", tt.text, tt.keyword, got, tt.want)
			}
		})
	}
}

func TestNormalizeWhitespace(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"через   3   дня", "через 3 дня"},
		{"  сегодня  ", "сегодня"},
		{"один\tдва\nтри", "один два три"},
		{"", ""},
	}

	for _, tt := range tests {
		if got := normalizeWhitespace(tt.in); got != tt.want {
			t.Errorf("normalizeWhitespace(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
