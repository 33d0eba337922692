package i18n

import "testing"

func TestNormalize(t *testing.T) {
	if got := Normalize(""); got != DefaultLanguage {
		t.Fatalf("empty normalize should fall back to default, got %q", got)
	}
	if got := Normalize("EN-us"); got != LanguageEnglish {
		t.Fatalf("expected english normalization, got %q", got)
	}
	if got := Normalize("ja"); got != Language("ja") {
		t.Fatalf("expected passthrough for unknown language, got %q", got)
	}
}

func TestFor_FallsBackToDefault(t *testing.T) {
	if got, want := For("fr").Header, For(DefaultLanguage).Header; got != want {
		t.Fatalf("For(fr).Header = %q, want %q", got, want)
	}
	if got := For("english").Running; got != "=== Running command ===" {
		t.Fatalf("For(english).Running = %q", got)
	}
	for lang, m := range catalogues {
		if m.Header == "" || m.Running == "" || m.NotFound == "" || m.ProfileReadWarn == "" {
			t.Fatalf("catalogue %q has empty entries: %+v", lang, m)
		}
	}
}
