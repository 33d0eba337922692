package shellenv

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/sirupsen/logrus"

	"ninja-mcp/internal/i18n"
	"ninja-mcp/internal/logger"
)

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
}

func TestParseProfile(t *testing.T) {
	profile := strings.Join([]string{
		`# comment`,
		`export FOO="bar baz"`,
		`export SINGLE='one two'`,
		`export BARE=plain`,
		`  export INDENTED=yes  `,
		`[ -d /opt ] && export GUARDED=1`,
		`export PATH="/opt/depot_tools:$PATH"`,
		`export MISMATCH="left'`,
		`export EMPTY=`,
		`export BLANK=   `,
		`FOO_NOT_EXPORTED=1`,
		`export lower_case=ok`,
	}, "\n")

	got, err := ParseProfile(strings.NewReader(profile))
	if err != nil {
		t.Fatalf("ParseProfile: %v", err)
	}
	want := map[string]string{
		"FOO":        "bar baz",
		"SINGLE":     "one two",
		"BARE":       "plain",
		"INDENTED":   "yes",
		"GUARDED":    "1",
		"PATH":       "/opt/depot_tools:$PATH",
		"MISMATCH":   `"left'`,
		"BLANK":      "",
		"lower_case": "ok",
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("ParseProfile mismatch (-want +got):\n%s", diff)
	}
}

func TestScrapeProfiles_LaterFileWins(t *testing.T) {
	home := t.TempDir()
	writeFile(t, filepath.Join(home, ".zprofile"), "export A=from-zprofile\nexport ONLY_FIRST=1\n")
	writeFile(t, filepath.Join(home, ".zshrc"), "export A=from-zshrc\n")

	got := ScrapeProfiles([]string{
		filepath.Join(home, ".zprofile"),
		filepath.Join(home, "missing"),
		filepath.Join(home, ".zshrc"),
	}, i18n.For(i18n.LanguageEnglish), logger.Discard())
	want := map[string]string{"A": "from-zshrc", "ONLY_FIRST": "1"}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("ScrapeProfiles mismatch (-want +got):\n%s", diff)
	}
}

func TestScrapeProfiles_UnreadableIsSwallowed(t *testing.T) {
	home := t.TempDir()
	// 目录无法按文件读取，应被记录并跳过。
	dir := filepath.Join(home, ".zprofile")
	if err := os.Mkdir(dir, 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	writeFile(t, filepath.Join(home, ".zshrc"), "export OK=1\n")

	got := ScrapeProfiles([]string{dir, filepath.Join(home, ".zshrc")}, i18n.For(i18n.LanguageEnglish), logger.Discard())
	if diff := cmp.Diff(map[string]string{"OK": "1"}, got); diff != "" {
		t.Fatalf("ScrapeProfiles mismatch (-want +got):\n%s", diff)
	}
}

func TestResolve_UnreadableProfileWarningFollowsLanguage(t *testing.T) {
	cases := []struct {
		lang i18n.Language
		want string
	}{
		{lang: i18n.LanguageEnglish, want: "cannot read profile"},
		{lang: i18n.LanguageChinese, want: "无法读取配置文件"},
	}
	for _, tc := range cases {
		t.Run(string(tc.lang), func(t *testing.T) {
			home := t.TempDir()
			if err := os.Mkdir(filepath.Join(home, ".zprofile"), 0o755); err != nil {
				t.Fatalf("mkdir: %v", err)
			}
			var buf bytes.Buffer
			l := logrus.New()
			l.SetOutput(&buf)
			l.SetFormatter(logger.PlainFormatter{})

			r := New(Options{
				Home:     home,
				Profiles: []string{".zprofile"},
				Language: tc.lang,
				Environ:  func() []string { return nil },
				Log:      logrus.NewEntry(l),
			})
			r.Resolve(context.Background())

			if !strings.Contains(buf.String(), tc.want) {
				t.Fatalf("warning %q not logged, got:\n%s", tc.want, buf.String())
			}
		})
	}
}

func newTestResolver(home string, opts Options) *Resolver {
	opts.Home = home
	if opts.Profiles == nil {
		opts.Profiles = []string{".zprofile", ".zshrc"}
	}
	if opts.Environ == nil {
		opts.Environ = func() []string {
			return []string{"HOME=" + home, "PATH=/usr/bin:/host/bin", "KEEP=inherited", "A=inherited"}
		}
	}
	opts.Log = logger.Discard()
	return New(opts)
}

func TestResolve_Precedence(t *testing.T) {
	home := t.TempDir()
	writeFile(t, filepath.Join(home, ".zprofile"), "export A=scraped\nexport PATH=\"/opt/tools:/usr/bin\"\n")

	r := newTestResolver(home, Options{FallbackPath: []string{"/usr/local/bin", "/usr/bin", "/bin"}})
	got := r.Resolve(context.Background())

	if got["KEEP"] != "inherited" {
		t.Fatalf("KEEP = %q, want inherited value", got["KEEP"])
	}
	if got["A"] != "scraped" {
		t.Fatalf("A = %q, want scraped value to override inherited", got["A"])
	}
	if want := "/opt/tools:/usr/bin:/usr/local/bin:/bin"; got["PATH"] != want {
		t.Fatalf("PATH = %q, want %q", got["PATH"], want)
	}
}

func TestResolve_InheritedPathWhenNotScraped(t *testing.T) {
	home := t.TempDir()
	r := newTestResolver(home, Options{FallbackPath: []string{"/opt/homebrew/bin"}})
	got := r.Resolve(context.Background())
	if want := "/usr/bin:/host/bin:/opt/homebrew/bin"; got["PATH"] != want {
		t.Fatalf("PATH = %q, want %q", got["PATH"], want)
	}
}

func TestResolve_Idempotent(t *testing.T) {
	home := t.TempDir()
	writeFile(t, filepath.Join(home, ".zprofile"), "export FOO=\"bar baz\"\n")
	writeFile(t, filepath.Join(home, ".zshrc"), "export PATH=/x:$PATH\n")

	r := newTestResolver(home, Options{FallbackPath: []string{"/bin"}})
	first := r.Resolve(context.Background())
	second := r.Resolve(context.Background())
	if diff := cmp.Diff(first, second); diff != "" {
		t.Fatalf("Resolve not idempotent (-first +second):\n%s", diff)
	}
	if first["FOO"] != "bar baz" {
		t.Fatalf("FOO = %q, want %q", first["FOO"], "bar baz")
	}
}

func TestResolve_EnvFile(t *testing.T) {
	home := t.TempDir()
	writeFile(t, filepath.Join(home, "build.env"), "DEPOT_TOOLS=/opt/depot_tools\nexport GN_ARGS=\"is_debug=false\"\n")

	r := newTestResolver(home, Options{Strategy: StrategyEnvFile, EnvFile: "~/build.env"})
	got := r.Resolve(context.Background())
	if got["DEPOT_TOOLS"] != "/opt/depot_tools" {
		t.Fatalf("DEPOT_TOOLS = %q", got["DEPOT_TOOLS"])
	}
	if got["GN_ARGS"] != "is_debug=false" {
		t.Fatalf("GN_ARGS = %q", got["GN_ARGS"])
	}
}

func TestResolve_EnvFileMissingIsSwallowed(t *testing.T) {
	home := t.TempDir()
	r := newTestResolver(home, Options{Strategy: StrategyEnvFile, EnvFile: filepath.Join(home, "nope.env")})
	got := r.Resolve(context.Background())
	if got["KEEP"] != "inherited" {
		t.Fatalf("inherited environment lost: %v", got)
	}
}

func TestResolve_InheritIgnoresProfiles(t *testing.T) {
	home := t.TempDir()
	writeFile(t, filepath.Join(home, ".zprofile"), "export A=scraped\n")
	r := newTestResolver(home, Options{Strategy: StrategyInherit})
	if got := r.Resolve(context.Background()); got["A"] != "inherited" {
		t.Fatalf("A = %q, want inherited", got["A"])
	}
}

func TestResolve_LoginShell(t *testing.T) {
	if _, err := os.Stat("/bin/sh"); err != nil {
		t.Skip("/bin/sh not available")
	}
	home := t.TempDir()
	r := newTestResolver(home, Options{Strategy: StrategyLoginShell, Shell: "/bin/sh"})
	got := r.Lookup(context.Background())
	if got["KEEP"] != "inherited" {
		t.Fatalf("captured environment missing KEEP: %v", got)
	}
}

func TestParseCapture(t *testing.T) {
	out := []byte("motd noise\n" + captureBegin + "A=1\x00B=two=2\x00\x00" + captureEnd + "trailing")
	got, err := parseCapture(out)
	if err != nil {
		t.Fatalf("parseCapture: %v", err)
	}
	if diff := cmp.Diff(map[string]string{"A": "1", "B": "two=2"}, got); diff != "" {
		t.Fatalf("parseCapture mismatch (-want +got):\n%s", diff)
	}
	if _, err := parseCapture([]byte("no markers")); err == nil {
		t.Fatalf("expected error without markers")
	}
}

func TestParseStrategy(t *testing.T) {
	cases := map[string]Strategy{
		"":            StrategyProfile,
		"Profile":     StrategyProfile,
		"login-shell": StrategyLoginShell,
		"env-file":    StrategyEnvFile,
		"inherit":     StrategyInherit,
	}
	for in, want := range cases {
		got, err := ParseStrategy(in)
		if err != nil || got != want {
			t.Fatalf("ParseStrategy(%q) = %q, %v; want %q", in, got, err, want)
		}
	}
	if _, err := ParseStrategy("magic"); err == nil {
		t.Fatalf("expected error for unknown strategy")
	}
}

func TestAugmentPathAndEnviron(t *testing.T) {
	if got := AugmentPath("", []string{"/a", "/a", " ", "/b"}); got != "/a:/b" {
		t.Fatalf("AugmentPath = %q", got)
	}
	// 空条目表示当前目录，需要保留。
	if got := AugmentPath("/x::/y", []string{"/y", "/z"}); got != "/x::/y:/z" {
		t.Fatalf("AugmentPath with empty entry = %q", got)
	}
	got := Environ(map[string]string{"B": "2", "A": "1"})
	if diff := cmp.Diff([]string{"A=1", "B=2"}, got); diff != "" {
		t.Fatalf("Environ mismatch (-want +got):\n%s", diff)
	}
}
