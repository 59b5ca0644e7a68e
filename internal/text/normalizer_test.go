package text

import (
	"strings"
	"testing"
)

func TestIntToChinese(t *testing.T) {
	cases := map[int64]string{
		0:             "零",
		1:             "一",
		10:            "十",
		12:            "十二",
		19:            "十九",
		20:            "二十",
		101:           "一百零一",
		110:           "一百一十",
		1001:          "一千零一",
		10000:         "一万",
		100000000:     "一亿",
		-5:            "负五",
		50001:         "五万零一",
		123456789:     "一亿二千三百四十五万六千七百八十九",
	}
	for n, want := range cases {
		if got := IntToChinese(n); got != want {
			t.Errorf("IntToChinese(%d) = %q, want %q", n, got, want)
		}
	}
}

func TestRomanToInt(t *testing.T) {
	cases := []struct {
		in   string
		want int
		ok   bool
	}{
		{"IV", 4, true},
		{"IX", 9, true},
		{"MCMLXXXIV", 1984, true},
		{"XL", 40, true},
		{"XC", 90, true},
		{"CD", 400, true},
		{"CM", 900, true},
		{"I", 0, false},
		{"", 0, false},
		{"ABC", 0, false},
	}
	for _, c := range cases {
		got, ok := RomanToInt(c.in)
		if ok != c.ok {
			t.Errorf("RomanToInt(%q) ok = %v, want %v", c.in, ok, c.ok)
			continue
		}
		if ok && got != c.want {
			t.Errorf("RomanToInt(%q) = %d, want %d", c.in, got, c.want)
		}
	}
}

func TestNormalizeSpeechPercent(t *testing.T) {
	if got := NormalizeSpeech("50%", LangEN); got != "fifty percent" {
		t.Errorf("got %q", got)
	}
	if got := NormalizeSpeech("50%", LangZH); got != "百分之五十" {
		t.Errorf("got %q", got)
	}
}

func TestNormalizeSpeechYear(t *testing.T) {
	got := NormalizeSpeech("The year 2024 was good.", LangEN)
	if !strings.Contains(got, "twenty twenty-four") {
		t.Errorf("expected %q to contain %q", got, "twenty twenty-four")
	}
}

func TestNormalizeSpeechPhone(t *testing.T) {
	got := NormalizeSpeech("13812345678", LangZH)
	if !strings.Contains(got, "一") || !strings.Contains(got, "三") {
		t.Errorf("phone number not read digit-by-digit: %q", got)
	}
}

func TestNormalizeSpeechCurrency(t *testing.T) {
	got := NormalizeSpeech("$5", LangEN)
	if !strings.Contains(got, "five") || !strings.Contains(got, "dollars") {
		t.Errorf("got %q", got)
	}
}

func TestNormalizeSpeechIdempotent(t *testing.T) {
	texts := []string{
		"Hello world, how are you today?",
		"你好世界，今天天气很好。",
	}
	for _, text := range texts {
		once := NormalizeSpeech(text, LangAuto)
		twice := NormalizeSpeech(once, LangAuto)
		if once != twice {
			t.Errorf("normalization not idempotent: once=%q twice=%q", once, twice)
		}
	}
}

func TestNormalizeSpeechFraction(t *testing.T) {
	got := NormalizeSpeech("3/4 cup of flour", LangEN)
	if !strings.Contains(got, "three quarters") {
		t.Errorf("got %q, want fraction read as quarters", got)
	}

	got = NormalizeSpeech("2/3 的人", LangZH)
	if !strings.Contains(got, "三分之二") {
		t.Errorf("got %q, want 三分之二", got)
	}
}

func TestOrdinalEnglish(t *testing.T) {
	cases := map[int]string{
		1: "first", 2: "second", 3: "third", 5: "fifth",
		9: "ninth", 11: "eleventh", 12: "twelfth", 20: "twentieth",
		21: "twenty-first", 22: "twenty-second", 23: "twenty-third",
	}
	for n, want := range cases {
		if got := ordinalEnglish(n); got != want {
			t.Errorf("ordinalEnglish(%d) = %q, want %q", n, got, want)
		}
	}
}

func TestFractionToWordsHalfAndQuarter(t *testing.T) {
	if got := fractionToWords(1, 2, LangEN); got != "one half" {
		t.Errorf("fractionToWords(1,2) = %q, want %q", got, "one half")
	}
	if got := fractionToWords(3, 4, LangEN); got != "three quarters" {
		t.Errorf("fractionToWords(3,4) = %q, want %q", got, "three quarters")
	}
	if got := fractionToWords(1, 3, LangEN); got != "one third" {
		t.Errorf("fractionToWords(1,3) = %q, want %q", got, "one third")
	}
	if got := fractionToWords(2, 5, LangEN); got != "two fifths" {
		t.Errorf("fractionToWords(2,5) = %q, want %q", got, "two fifths")
	}
}

func TestCardinalEnglish(t *testing.T) {
	cases := map[int]string{
		0:    "zero",
		12:   "twelve",
		42:   "forty-two",
		100:  "one hundred",
		101:  "one hundred and one",
		1984: "one thousand nine hundred and eighty-four",
	}
	for n, want := range cases {
		if got := cardinalEnglish(n); got != want {
			t.Errorf("cardinalEnglish(%d) = %q, want %q", n, got, want)
		}
	}
}
