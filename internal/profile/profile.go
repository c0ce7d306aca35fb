// Package profile renders, writes and applies the static keyboard lighting profile.
//
// The profile is a line-oriented text file read by the keyboard tool:
//
//	# comment
//	a RRGGBB            set all keys
//	g <group> RRGGBB    set one key group
//	c                   commit the preceding directives
package profile

import (
	"bufio"
	"bytes"
	"fmt"
	"strings"
	"time"

	"ledkb-setup/internal/config"
)

const (
	directiveAll    = "a"
	directiveGroup  = "g"
	directiveCommit = "c"

	fkeysGroup = "fkeys"
)

// Group is one "g" directive.
type Group struct {
	Name  string
	Color string
}

// KeyboardProfile is generated once per run and never patched in place.
type KeyboardProfile struct {
	AllKeysColor string
	FKeysColor   string
	Groups       []Group
	TargetPath   string
	GeneratedAt  time.Time
}

// Generate builds the profile for settings. The result depends only on its
// inputs; now is passed in so output is reproducible.
func Generate(s config.Settings, now time.Time) KeyboardProfile {
	groups := make([]Group, 0, len(s.Groups))
	for _, g := range s.Groups {
		groups = append(groups, Group{Name: g.Name, Color: g.Color})
	}
	return KeyboardProfile{
		AllKeysColor: s.AllKeysColor,
		FKeysColor:   s.FKeysColor,
		Groups:       groups,
		TargetPath:   s.ProfilePath,
		GeneratedAt:  now.UTC(),
	}
}

// Directives returns the directive lines in file order.
func (p KeyboardProfile) Directives() []string {
	lines := []string{
		fmt.Sprintf("%s %s", directiveAll, p.AllKeysColor),
		fmt.Sprintf("%s %s %s", directiveGroup, fkeysGroup, p.FKeysColor),
	}
	for _, g := range p.Groups {
		lines = append(lines, fmt.Sprintf("%s %s %s", directiveGroup, g.Name, g.Color))
	}
	return append(lines, directiveCommit)
}

// Render produces the file content: a comment header followed by directives.
func (p KeyboardProfile) Render() []byte {
	var b bytes.Buffer
	fmt.Fprintf(&b, "# Keyboard lighting profile generated by %s\n", config.AppName)
	fmt.Fprintf(&b, "# Generated at %s\n", p.GeneratedAt.Format(time.RFC3339))
	b.WriteString("# Changes are overwritten on the next setup run.\n")
	b.WriteString("\n")
	for _, line := range p.Directives() {
		b.WriteString(line)
		b.WriteByte('\n')
	}
	return b.Bytes()
}

// Parse returns the directive lines of a profile file, normalized to single
// spaces, and rejects lines that are not part of the grammar.
func Parse(content []byte) ([]string, error) {
	var directives []string
	sc := bufio.NewScanner(bytes.NewReader(content))
	lineNo := 0
	for sc.Scan() {
		lineNo++
		line := strings.TrimSpace(sc.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		fields := strings.Fields(line)
		if err := checkDirective(fields); err != nil {
			return nil, fmt.Errorf("line %d: %w", lineNo, err)
		}
		directives = append(directives, strings.Join(fields, " "))
	}
	if err := sc.Err(); err != nil {
		return nil, err
	}
	return directives, nil
}

func checkDirective(fields []string) error {
	switch fields[0] {
	case directiveAll:
		if len(fields) != 2 || !config.IsRGBHex(fields[1]) {
			return fmt.Errorf("expected %q, got %q", "a RRGGBB", strings.Join(fields, " "))
		}
	case directiveGroup:
		if len(fields) != 3 || !config.IsRGBHex(fields[2]) {
			return fmt.Errorf("expected %q, got %q", "g <group> RRGGBB", strings.Join(fields, " "))
		}
	case directiveCommit:
		if len(fields) != 1 {
			return fmt.Errorf("commit takes no arguments, got %q", strings.Join(fields, " "))
		}
	default:
		return fmt.Errorf("unknown directive %q", fields[0])
	}
	return nil
}
