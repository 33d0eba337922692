// Package shellenv rebuilds the environment a build child process should see
// when the host was started without an interactive shell.
package shellenv

import (
	"bufio"
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"os/exec"
	"path/filepath"
	"regexp"
	"sort"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"ninja-mcp/internal/i18n"
	"ninja-mcp/internal/logger"
)

// Strategy selects how variables beyond the inherited environment are found.
type Strategy string

const (
	// StrategyProfile scrapes `export NAME=VALUE` lines from profile files.
	StrategyProfile Strategy = "profile"
	// StrategyLoginShell runs a login shell once and captures its environment.
	StrategyLoginShell Strategy = "login-shell"
	// StrategyEnvFile reads an explicit dotenv file.
	StrategyEnvFile Strategy = "env-file"
	// StrategyInherit uses the inherited environment only.
	StrategyInherit Strategy = "inherit"
)

// ParseStrategy maps a config value to a Strategy. Empty selects StrategyProfile.
func ParseStrategy(value string) (Strategy, error) {
	switch s := Strategy(strings.ToLower(strings.TrimSpace(value))); s {
	case "":
		return StrategyProfile, nil
	case StrategyProfile, StrategyLoginShell, StrategyEnvFile, StrategyInherit:
		return s, nil
	default:
		return "", fmt.Errorf("unknown env strategy %q", value)
	}
}

const defaultCaptureTimeout = 15 * time.Second

// Options configures a Resolver. Zero values fall back to the process defaults.
type Options struct {
	Strategy     Strategy
	Home         string
	Profiles     []string
	Shell        string
	EnvFile      string
	FallbackPath []string
	// Language selects the warning text for unreadable profiles.
	Language i18n.Language
	// Environ supplies the inherited environment; os.Environ when nil.
	Environ func() []string
	// CaptureTimeout bounds the login-shell capture.
	CaptureTimeout time.Duration
	Log            *logger.LogEntry
}

// Resolver produces a PATH-augmented environment map. It keeps no state
// between calls; every Resolve re-reads its sources.
type Resolver struct {
	opts Options
	log  *logger.LogEntry
}

func New(opts Options) *Resolver {
	if opts.Strategy == "" {
		opts.Strategy = StrategyProfile
	}
	if opts.Environ == nil {
		opts.Environ = os.Environ
	}
	if opts.CaptureTimeout <= 0 {
		opts.CaptureTimeout = defaultCaptureTimeout
	}
	log := opts.Log
	if log == nil {
		log = logger.Named("shellenv")
	}
	return &Resolver{opts: opts, log: log}
}

// Resolve merges, in increasing precedence, the inherited environment, the
// variables found by the configured strategy, and PATH extended with the
// fallback directories. It never fails.
func (r *Resolver) Resolve(ctx context.Context) map[string]string {
	env := ParseEnviron(r.opts.Environ())
	inheritedPath := env["PATH"]

	found := r.Lookup(ctx)
	for k, v := range found {
		env[k] = v
	}

	path := found["PATH"]
	if path == "" {
		path = inheritedPath
	}
	env["PATH"] = AugmentPath(path, r.opts.FallbackPath)
	return env
}

// Lookup returns only the variables contributed by the strategy.
func (r *Resolver) Lookup(ctx context.Context) map[string]string {
	switch r.opts.Strategy {
	case StrategyLoginShell:
		return r.captureLoginShell(ctx)
	case StrategyEnvFile:
		return r.readEnvFile()
	case StrategyInherit:
		return map[string]string{}
	default:
		return ScrapeProfiles(r.profilePaths(), i18n.For(r.opts.Language), r.log)
	}
}

func (r *Resolver) home() string {
	if r.opts.Home != "" {
		return r.opts.Home
	}
	home, err := os.UserHomeDir()
	if err != nil {
		r.log.Warnf("cannot determine home directory: %v", err)
		return ""
	}
	return home
}

func (r *Resolver) profilePaths() []string {
	home := r.home()
	paths := make([]string, 0, len(r.opts.Profiles))
	for _, p := range r.opts.Profiles {
		p = strings.TrimSpace(p)
		if p == "" {
			continue
		}
		if !filepath.IsAbs(p) {
			if home == "" {
				continue
			}
			p = filepath.Join(home, p)
		}
		paths = append(paths, p)
	}
	return paths
}

// ProfilePaths exposes the absolute profile file list, in precedence order.
func (r *Resolver) ProfilePaths() []string {
	return r.profilePaths()
}

var exportPattern = regexp.MustCompile(`export\s+([A-Za-z0-9_]+)=(.+)`)

// ParseProfile scans a shell profile for `export NAME=VALUE` lines. One layer
// of matching single or double quotes is stripped from VALUE. No expansion is
// performed, so `$VAR` references are kept literally.
func ParseProfile(rd io.Reader) (map[string]string, error) {
	vars := make(map[string]string)
	scanner := bufio.NewScanner(rd)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		m := exportPattern.FindStringSubmatch(scanner.Text())
		if m == nil {
			continue
		}
		vars[m[1]] = unquote(strings.TrimSpace(m[2]))
	}
	return vars, scanner.Err()
}

func unquote(value string) string {
	if len(value) < 2 {
		return value
	}
	first, last := value[0], value[len(value)-1]
	if first == last && (first == '"' || first == '\'') {
		return value[1 : len(value)-1]
	}
	return value
}

// ScrapeProfiles parses each file in order; later files win for duplicate
// names. Missing files are skipped, other failures are logged and skipped.
func ScrapeProfiles(paths []string, msgs i18n.Messages, log *logger.LogEntry) map[string]string {
	vars := make(map[string]string)
	for _, path := range paths {
		found, err := scrapeFile(path)
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				continue
			}
			if log != nil {
				log.WithField("path", path).Warnf("%s: %v", msgs.ProfileReadWarn, err)
			}
			continue
		}
		for k, v := range found {
			vars[k] = v
		}
	}
	return vars
}

func scrapeFile(path string) (map[string]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return ParseProfile(f)
}

func (r *Resolver) readEnvFile() map[string]string {
	path := strings.TrimSpace(r.opts.EnvFile)
	if path == "" {
		r.log.Warn("env-file strategy selected but no env_file configured")
		return map[string]string{}
	}
	if strings.HasPrefix(path, "~/") {
		if home := r.home(); home != "" {
			path = filepath.Join(home, path[2:])
		}
	}
	vars, err := godotenv.Read(path)
	if err != nil {
		r.log.WithField("path", path).Warnf("cannot read env file: %v", err)
		return map[string]string{}
	}
	return vars
}

const (
	captureBegin = "__NINJA_MCP_ENV_BEGIN__"
	captureEnd   = "__NINJA_MCP_ENV_END__"
)

func (r *Resolver) captureLoginShell(ctx context.Context) map[string]string {
	shell := r.opts.Shell
	if shell == "" {
		shell = os.Getenv("SHELL")
	}
	if shell == "" {
		r.log.Warn("login-shell strategy selected but no shell is known")
		return map[string]string{}
	}

	ctx, cancel := context.WithTimeout(ctx, r.opts.CaptureTimeout)
	defer cancel()

	script := fmt.Sprintf("printf '%%s' %s; env -0; printf '%%s' %s", captureBegin, captureEnd)
	cmd := exec.CommandContext(ctx, shell, "-l", "-i", "-c", script)
	cmd.Env = r.opts.Environ()
	if home := r.home(); home != "" {
		cmd.Dir = home
	}
	out, err := cmd.Output()
	if err != nil {
		r.log.WithField("shell", shell).Warnf("login shell capture failed: %v", err)
		return map[string]string{}
	}
	vars, err := parseCapture(out)
	if err != nil {
		r.log.WithField("shell", shell).Warnf("login shell capture unusable: %v", err)
		return map[string]string{}
	}
	return vars
}

func parseCapture(out []byte) (map[string]string, error) {
	begin := bytes.LastIndex(out, []byte(captureBegin))
	end := bytes.LastIndex(out, []byte(captureEnd))
	if begin < 0 || end < 0 || end < begin {
		return nil, errors.New("environment markers not found")
	}
	body := out[begin+len(captureBegin) : end]
	entries := strings.Split(string(body), "\x00")
	return ParseEnviron(entries), nil
}

// ParseEnviron converts KEY=VALUE entries into a map. Entries without a key
// are dropped; later duplicates win.
func ParseEnviron(entries []string) map[string]string {
	env := make(map[string]string, len(entries))
	for _, kv := range entries {
		key, value, ok := strings.Cut(kv, "=")
		if !ok || key == "" {
			continue
		}
		env[key] = value
	}
	return env
}

// AugmentPath appends each directory in extra that path does not already list.
// Empty entries inside path are kept, since they name the current directory;
// an empty path contributes nothing.
func AugmentPath(path string, extra []string) string {
	parts := make([]string, 0, 16)
	seen := make(map[string]struct{})
	if path != "" {
		for _, p := range strings.Split(path, string(os.PathListSeparator)) {
			parts = append(parts, p)
			if p != "" {
				seen[p] = struct{}{}
			}
		}
	}
	for _, dir := range extra {
		dir = strings.TrimSpace(dir)
		if dir == "" {
			continue
		}
		if _, ok := seen[dir]; ok {
			continue
		}
		seen[dir] = struct{}{}
		parts = append(parts, dir)
	}
	return strings.Join(parts, string(os.PathListSeparator))
}

// Environ renders the map as sorted KEY=VALUE entries for exec.Cmd.Env.
func Environ(env map[string]string) []string {
	keys := make([]string, 0, len(env))
	for k := range env {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	out := make([]string, 0, len(keys))
	for _, k := range keys {
		out = append(out, k+"="+env[k])
	}
	return out
}
