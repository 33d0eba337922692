package runner

import (
	"path/filepath"
	"strings"

	"github.com/kballard/go-shellquote"

	"ninja-mcp/internal/i18n"
)

// Script builds the wrapper shell program for spec: a diagnostic banner,
// guarded sourcing of each profile, interpreter info after sourcing, then the
// command itself. The command's exit status is the script's exit status.
func (r *Runner) Script(spec Spec) string {
	msg := i18n.For(r.opts.Language)
	var b strings.Builder

	echo := func(text string) {
		b.WriteString("echo " + shellquote.Join(text) + "; ")
	}
	labeled := func(label, variable string) {
		b.WriteString("printf '%s: %s\\n' " + shellquote.Join(label) + ` "$` + variable + `"; `)
	}
	locate := func(name string) {
		b.WriteString("command -v " + name + " || echo " + shellquote.Join(msg.NotFound+" "+name) + "; ")
	}

	echo(msg.Header)
	labeled(msg.Shell, "SHELL")
	labeled(msg.User, "USER")
	labeled(msg.Home, "HOME")
	echo(msg.Path)
	b.WriteString(`echo "$PATH" | tr ':' '\n'; `)
	echo(msg.Interpreters)
	locate("python")
	locate("python3")
	echo(msg.Footer)

	for _, p := range r.opts.Profiles {
		target := profileRef(p)
		if target == "" {
			continue
		}
		b.WriteString("if [ -f " + target + " ]; then . " + target + " 2>/dev/null; fi; ")
	}

	echo(msg.AfterProfiles)
	locate("python")
	locate("python3")
	for _, py := range []string{"python", "python3"} {
		b.WriteString(py + " --version 2>&1 || echo " + shellquote.Join(py+" "+msg.VersionFailed) + "; ")
	}
	echo(msg.Running)

	b.WriteString(shellquote.Join(append([]string{spec.Command}, spec.Args...)...))
	return b.String()
}

// profileRef quotes a profile path for the script; relative names resolve
// against $HOME at run time.
func profileRef(p string) string {
	p = strings.TrimSpace(p)
	switch {
	case p == "":
		return ""
	case filepath.IsAbs(p):
		return shellquote.Join(p)
	default:
		p = strings.TrimPrefix(p, "~/")
		return `"$HOME"/` + shellquote.Join(p)
	}
}
