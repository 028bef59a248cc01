package editor

import (
	"slices"
	"strings"
)

// DefaultKeys returns the built-in shortcut table.
func DefaultKeys() map[string]string {
	return map[string]string{
		"ctrl+b":       "bold",
		"ctrl+i":       "italic",
		"ctrl+u":       "underline",
		"ctrl+k":       "createLink",
		"ctrl+z":       "undo",
		"ctrl+shift+z": "redo",
		"ctrl+y":       "redo",
		"ctrl+alt+0":   "formatBlock p",
		"ctrl+alt+1":   "formatBlock h1",
		"ctrl+alt+2":   "formatBlock h2",
		"ctrl+alt+3":   "formatBlock h3",
		"enter":        "insertParagraph",
		"backspace":    "delete",
		"delete":       "forwardDelete",
		"ctrl+a":       "selectAll",
	}
}

var modifierOrder = []string{"ctrl", "alt", "shift", "meta"}

var modifierAlias = map[string]string{
	"control": "ctrl",
	"cmd":     "meta",
	"command": "meta",
	"super":   "meta",
	"win":     "meta",
	"option":  "alt",
	"opt":     "alt",
}

// NormalizeChord brings a chord into canonical form: lower case, modifiers
// in ctrl, alt, shift, meta order, then the key. "Shift+Ctrl+Z" becomes
// "ctrl+shift+z".
func NormalizeChord(chord string) string {
	parts := strings.Split(strings.ToLower(strings.TrimSpace(chord)), "+")
	var mods []string
	key := ""
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if a, ok := modifierAlias[p]; ok {
			p = a
		}
		switch {
		case p == "":
			// "ctrl++" names the plus key.
			key = "+"
		case slices.Contains(modifierOrder, p):
			if !slices.Contains(mods, p) {
				mods = append(mods, p)
			}
		default:
			key = p
		}
	}
	slices.SortFunc(mods, func(a, b string) int {
		return slices.Index(modifierOrder, a) - slices.Index(modifierOrder, b)
	})
	if key != "" {
		mods = append(mods, key)
	}
	return strings.Join(mods, "+")
}

func normalizeKeys(keys map[string]string) map[string]string {
	out := make(map[string]string, len(keys))
	for chord, cmd := range keys {
		if chord = NormalizeChord(chord); chord != "" && strings.TrimSpace(cmd) != "" {
			out[chord] = cmd
		}
	}
	return out
}

// Binding returns the command line bound to a chord.
func (e *Editor) Binding(chord string) (string, bool) {
	cmd, ok := e.keys[NormalizeChord(chord)]
	return cmd, ok
}

// HandleKey runs the command bound to chord. It reports whether the chord
// was bound, in which case the host must suppress its default handling.
// createLink without a target asks Options.PromptLink; a cancelled prompt
// is a handled no-op.
func (e *Editor) HandleKey(chord string) (bool, error) {
	line, ok := e.Binding(chord)
	if !ok {
		return false, nil
	}
	fields := strings.Fields(line)
	name, args := fields[0], fields[1:]

	if name == "createLink" && len(args) == 0 {
		if e.opts.PromptLink == nil {
			return true, nil
		}
		href, ok := e.opts.PromptLink()
		if !ok || strings.TrimSpace(href) == "" {
			return true, nil
		}
		args = []string{href}
	}
	return true, e.Execute(name, args...)
}
