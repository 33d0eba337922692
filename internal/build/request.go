package build

import (
	"fmt"
	"path/filepath"
	"strings"

	validation "github.com/go-ozzo/ozzo-validation/v4"
)

// Target is a build target accepted by the compile tool.
type Target string

const (
	TargetWebview Target = "embedded_browser_webview"
	TargetBrowser Target = "chrome"
)

// Targets lists the accepted targets in schema order.
var Targets = []Target{TargetWebview, TargetBrowser}

// TargetNames returns Targets as plain strings.
func TargetNames() []string {
	names := make([]string, 0, len(Targets))
	for _, t := range Targets {
		names = append(names, string(t))
	}
	return names
}

// targetAliases maps the short names accepted on the command line.
var targetAliases = map[string]Target{
	"webview":                  TargetWebview,
	"webview2":                 TargetWebview,
	"embedded_browser_webview": TargetWebview,
	"browser":                  TargetBrowser,
	"edge":                     TargetBrowser,
	"chrome":                   TargetBrowser,
}

// AliasNames returns the accepted short names, sorted.
func AliasNames() []string {
	return []string{"browser", "chrome", "edge", "embedded_browser_webview", "webview", "webview2"}
}

// ParseTarget resolves a short name or full target name.
func ParseTarget(name string) (Target, bool) {
	t, ok := targetAliases[strings.ToLower(strings.TrimSpace(name))]
	return t, ok
}

// Request holds the compile tool arguments.
type Request struct {
	WorkDir   string `json:"workDir"`
	BuildPath string `json:"buildPath"`
	Target    Target `json:"target"`
}

// RequestFromArguments reads the tool arguments. Missing or non-string
// values become empty strings.
func RequestFromArguments(args map[string]any) Request {
	get := func(key string) string {
		if v, ok := args[key].(string); ok {
			return v
		}
		return ""
	}
	return Request{
		WorkDir:   get("workDir"),
		BuildPath: get("buildPath"),
		Target:    Target(get("target")),
	}
}

func (r Request) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.WorkDir, validation.Required),
		validation.Field(&r.BuildPath, validation.Required),
		validation.Field(&r.Target, validation.Required, validation.In(TargetWebview, TargetBrowser)),
	)
}

// checkRoots rejects a workDir outside every allowed root. An empty root
// list allows everything.
func checkRoots(workDir string, roots []string) error {
	if len(roots) == 0 {
		return nil
	}
	if !withinRoots(workDir, roots) {
		return fmt.Errorf("workDir %s is outside the allowed roots (%s)", workDir, strings.Join(roots, ", "))
	}
	return nil
}

func withinRoots(path string, roots []string) bool {
	abs, err := filepath.Abs(path)
	if err != nil {
		return false
	}
	for _, r := range roots {
		if strings.TrimSpace(r) == "" {
			continue
		}
		rootAbs, err := filepath.Abs(r)
		if err != nil {
			continue
		}
		rel, err := filepath.Rel(rootAbs, abs)
		if err != nil {
			continue
		}
		if rel == "." || (rel != ".." && !strings.HasPrefix(rel, ".."+string(filepath.Separator))) {
			return true
		}
	}
	return false
}
