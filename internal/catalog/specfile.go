package catalog

import (
	"bufio"
	"fmt"
	"io"
	"regexp"
	"strings"
)

var (
	macroDefRegex = regexp.MustCompile(`^%(?:global|define)\s+(\S+)\s+(.*)$`)
	macroRefRegex = regexp.MustCompile(`%\{([!?]*)([A-Za-z0-9_]+)(?::([^{}]*))?\}`)
	bareRefRegex  = regexp.MustCompile(`%([A-Za-z_][A-Za-z0-9_]*)`)
	tagRegex      = regexp.MustCompile(`^(Name|Version|BuildRequires|Requires(?:\([a-z,]+\))?)\s*:\s*(.*)$`)
)

// versionOperators separate a requirement name from its version constraint.
var versionOperators = map[string]bool{"=": true, "==": true, "<": true, "<=": true, ">": true, ">=": true}

// maxExpansions bounds nested macro expansion.
const maxExpansions = 8

// ParseSpec reads an RPM spec file. sclPrefix replaces %{?scl_prefix} and
// defines %scl, so %{?scl:...} bodies expand only for SCL builds.
func ParseSpec(r io.Reader, sclPrefix string) (Package, error) {
	macros := map[string]string{"scl_prefix": sclPrefix}
	if sclPrefix != "" {
		macros["scl"] = strings.TrimSuffix(sclPrefix, "-")
	}
	var pkg Package
	seenBuild := map[string]bool{}
	seenRun := map[string]bool{}

	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		if m := macroDefRegex.FindStringSubmatch(line); m != nil {
			macros[m[1]] = expandMacros(strings.TrimSpace(m[2]), macros)
			continue
		}
		m := tagRegex.FindStringSubmatch(line)
		if m == nil {
			continue
		}
		value := expandMacros(m[2], macros)
		switch tag := m[1]; {
		case tag == "Name":
			if pkg.Name == "" {
				pkg.Name = value
				macros["name"] = value
			}
		case tag == "Version":
			if pkg.Version == "" {
				pkg.Version = value
				macros["version"] = value
			}
		case tag == "BuildRequires":
			pkg.BuildRequires = appendNames(pkg.BuildRequires, seenBuild, value)
		default:
			pkg.Requires = appendNames(pkg.Requires, seenRun, value)
		}
	}
	if err := scanner.Err(); err != nil {
		return Package{}, fmt.Errorf("reading spec file: %w", err)
	}

	// A package never needs itself to build.
	pkg.BuildRequires = removeName(pkg.BuildRequires, pkg.Name)
	return pkg, nil
}

// expandMacros substitutes %{name}, %{?name}, %{?name:body},
// %{!?name:body} and bare %name references, innermost first. Unknown
// conditional macros expand to nothing; unknown plain macros are kept.
func expandMacros(s string, macros map[string]string) string {
	for i := 0; i < maxExpansions; i++ {
		next := macroRefRegex.ReplaceAllStringFunc(s, func(ref string) string {
			m := macroRefRegex.FindStringSubmatch(ref)
			negate := strings.Contains(m[1], "!")
			conditional := strings.Contains(m[1], "?")
			v, defined := macros[m[2]]
			hasBody := strings.Contains(ref, ":")
			switch {
			case conditional && hasBody:
				if defined != negate {
					return m[3]
				}
				return ""
			case defined:
				return v
			case conditional:
				return ""
			}
			return ref
		})
		next = bareRefRegex.ReplaceAllStringFunc(next, func(ref string) string {
			if v, ok := macros[ref[1:]]; ok {
				return v
			}
			return ref
		})
		if next == s {
			break
		}
		s = next
	}
	return s
}

// appendNames splits a requirement list such as "a >= 1.0, b c" and
// appends the names not seen before. Virtual provides such as
// rubygem(rake) are kept; file paths and unexpanded macros are not.
func appendNames(dst []string, seen map[string]bool, value string) []string {
	fields := strings.Fields(strings.ReplaceAll(value, ",", " "))
	for i := 0; i < len(fields); i++ {
		f := fields[i]
		if versionOperators[f] {
			i++ // skip the version operand
			continue
		}
		if strings.HasPrefix(f, "/") || strings.Contains(f, "%") {
			continue
		}
		if !seen[f] {
			seen[f] = true
			dst = append(dst, f)
		}
	}
	return dst
}

func removeName(names []string, name string) []string {
	out := names[:0]
	for _, n := range names {
		if n != name {
			out = append(out, n)
		}
	}
	return out
}
