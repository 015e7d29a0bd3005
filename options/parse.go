/*
 * parse.go, part of gauss.
 *
 * Copyright 2012 Raul Mera <rmera{at}chemDOThelsinkiDOTfi>
 *
 * This program is free software; you can redistribute it and/or modify
 * it under the terms of the GNU Lesser General Public License as
 * published by the Free Software Foundation; either version 2.1 of the
 * License, or (at your option) any later version.
 *
 * This program is distributed in the hope that it will be useful,
 * but WITHOUT ANY WARRANTY; without even the implied warranty of
 * MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
 * GNU General Public License for more details.
 *
 * You should have received a copy of the GNU Lesser General
 * Public License along with this program.  If not, see
 * <http://www.gnu.org/licenses/>.
 *
 */
/***Dedicated to the long life of the Ven. Khenpo Phuntzok Tenzin Rinpoche***/

package options

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"
)

// SyntaxError is returned when an options file can't be parsed.
// Line is 1-based.
type SyntaxError struct {
	File   string
	Line   int
	Text   string
	Reason string
}

func (err *SyntaxError) Error() string {
	where := fmt.Sprintf("line %d", err.Line)
	if err.File != "" {
		where = err.File + ":" + fmt.Sprint(err.Line)
	}
	return fmt.Sprintf("options: %s: %s: %q", where, err.Reason, err.Text)
}

const bom = "\ufeff"

// isComment reports whether the trimmed line is a comment.
func isComment(trimmed string) bool {
	return strings.HasPrefix(trimmed, "#") || strings.HasPrefix(trimmed, ";")
}

// splitAssignment splits "key = value" or "key: value" at the first
// separator. ok is false if the line has no separator.
func splitAssignment(line string) (key, value string, ok bool) {
	i := strings.IndexAny(line, "=:")
	if i < 0 {
		return "", "", false
	}
	return strings.TrimSpace(line[:i]), strings.TrimSpace(line[i+1:]), true
}

// Parse reads an options document from r.
//
// The format has bracketed section headers, comment lines starting with
// '#' or ';', and "key = value" lines. Keys are case-sensitive and values
// are kept verbatim, placeholders in braces included, except for the
// surrounding whitespace. Every option must belong to a section, and
// neither sections nor keys within a section may be repeated.
func Parse(r io.Reader) (*Document, error) {
	doc := New()
	var current *Section
	scanner := bufio.NewScanner(r)
	lineno := 0
	for scanner.Scan() {
		lineno++
		raw := scanner.Text()
		if lineno == 1 {
			raw = strings.TrimPrefix(raw, bom)
		}
		line := strings.TrimSpace(raw)
		if line == "" || isComment(line) {
			continue
		}
		if strings.HasPrefix(line, "[") {
			if !strings.HasSuffix(line, "]") {
				return nil, &SyntaxError{Line: lineno, Text: raw, Reason: "unterminated section header"}
			}
			name := strings.TrimSpace(line[1 : len(line)-1])
			if name == "" {
				return nil, &SyntaxError{Line: lineno, Text: raw, Reason: "empty section name"}
			}
			if doc.Section(name) != nil {
				return nil, &SyntaxError{Line: lineno, Text: raw, Reason: fmt.Sprintf("duplicate section [%s]", name)}
			}
			current = doc.AddSection(name)
			continue
		}
		key, value, ok := splitAssignment(line)
		if !ok {
			return nil, &SyntaxError{Line: lineno, Text: raw, Reason: "expected 'key = value'"}
		}
		if current == nil {
			return nil, &SyntaxError{Line: lineno, Text: raw, Reason: "option outside of any section"}
		}
		if key == "" {
			return nil, &SyntaxError{Line: lineno, Text: raw, Reason: "empty option name"}
		}
		if value == "" {
			return nil, &SyntaxError{Line: lineno, Text: raw, Reason: fmt.Sprintf("empty value for %s.%s", current.Name(), key)}
		}
		if current.Has(key) {
			return nil, &SyntaxError{Line: lineno, Text: raw, Reason: fmt.Sprintf("duplicate option %s.%s", current.Name(), key)}
		}
		current.Set(key, value)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("options: reading document: %w", err)
	}
	return doc, nil
}

// ParseString parses an options document held in s.
func ParseString(s string) (*Document, error) {
	return Parse(strings.NewReader(s))
}

// ParseFile parses the options file at path. Syntax errors carry the
// file name.
func ParseFile(path string) (*Document, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("options: %w", err)
	}
	defer f.Close()
	doc, err := Parse(f)
	if serr, ok := err.(*SyntaxError); ok {
		serr.File = path
	}
	return doc, err
}
