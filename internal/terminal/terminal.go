package terminal

import (
	"fmt"
	"strings"
)

// spawnTemplates maps known terminal emulators to their launch command
// templates. {title} expands to the window title; {command} expands to the
// full argv of the program run inside the terminal.
var spawnTemplates = map[string]string{
	"alacritty":      "alacritty --title {title} -e {command}",
	"kitty":          "kitty --title {title} {command}",
	"foot":           "foot --title {title} {command}",
	"wezterm":        "wezterm start -- {command}",
	"urxvt":          "urxvt -title {title} -e {command}",
	"st":             "st -t {title} -e {command}",
	"xterm":          "xterm -title {title} -e {command}",
	"gnome-terminal": "gnome-terminal --title {title} -- {command}",
}

// Options carries the per-spawn template values.
type Options struct {
	Title   string
	Command []string
}

// SpawnArgv resolves term into the argv used to launch a terminal window.
// term is either a known emulator name or a full command template containing
// the {command} placeholder. {command} must appear as a word of its own and
// expands to multiple argv entries; {title} is substituted within words.
func SpawnArgv(term string, opts Options) ([]string, error) {
	template := strings.TrimSpace(term)
	if !strings.Contains(template, "{command}") {
		t, ok := spawnTemplates[strings.ToLower(template)]
		if !ok {
			return nil, fmt.Errorf("no spawn template for terminal %q", term)
		}
		template = t
	}

	words, err := SplitCommand(template)
	if err != nil {
		return nil, fmt.Errorf("invalid terminal template %q: %w", term, err)
	}

	argv := make([]string, 0, len(words)+len(opts.Command))
	expanded := false
	for _, w := range words {
		if w == "{command}" {
			argv = append(argv, opts.Command...)
			expanded = true
			continue
		}
		argv = append(argv, strings.ReplaceAll(w, "{title}", opts.Title))
	}
	if !expanded {
		return nil, fmt.Errorf("terminal template %q must use {command} as a standalone word", term)
	}
	if len(argv) == 0 {
		return nil, fmt.Errorf("terminal template %q produced an empty command", term)
	}
	return argv, nil
}

// SplitCommand splits a command template into words, honoring single quotes,
// double quotes and backslash escapes.
func SplitCommand(s string) ([]string, error) {
	var out []string
	var buf strings.Builder
	inSingle := false
	inDouble := false
	escaped := false

	flush := func() {
		if buf.Len() == 0 {
			return
		}
		out = append(out, buf.String())
		buf.Reset()
	}

	for _, r := range s {
		if escaped {
			buf.WriteRune(r)
			escaped = false
			continue
		}
		if !inSingle && r == '\\' {
			escaped = true
			continue
		}
		if !inDouble && r == '\'' {
			inSingle = !inSingle
			continue
		}
		if !inSingle && r == '"' {
			inDouble = !inDouble
			continue
		}
		if !inSingle && !inDouble {
			if r == ' ' || r == '\t' || r == '\n' || r == '\r' {
				flush()
				continue
			}
		}
		buf.WriteRune(r)
	}

	if escaped {
		return nil, fmt.Errorf("unfinished escape in command template")
	}
	if inSingle || inDouble {
		return nil, fmt.Errorf("unterminated quote in command template")
	}

	flush()
	return out, nil
}
