/*
 * template.go, part of gauss.
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

package launch

import (
	"fmt"
	"strings"
)

// PlaceholderError is returned when a template can't be expanded, either
// because a placeholder has no value or because the braces don't match.
type PlaceholderError struct {
	Template string
	Name     string //empty for syntax problems
	Reason   string
}

func (err *PlaceholderError) Error() string {
	if err.Name != "" {
		return fmt.Sprintf("launch: %s {%s} in %q", err.Reason, err.Name, err.Template)
	}
	return fmt.Sprintf("launch: %s in %q", err.Reason, err.Template)
}

// scan walks the template calling lit for literal text and ph for each
// placeholder name. "{{" and "}}" are literal braces.
func scan(template string, lit func(string), ph func(string) error) error {
	var b strings.Builder
	for i := 0; i < len(template); i++ {
		c := template[i]
		switch {
		case c == '{' && i+1 < len(template) && template[i+1] == '{':
			b.WriteByte('{')
			i++
		case c == '}' && i+1 < len(template) && template[i+1] == '}':
			b.WriteByte('}')
			i++
		case c == '{':
			end := strings.IndexByte(template[i+1:], '}')
			if end < 0 {
				return &PlaceholderError{template, "", "unterminated placeholder"}
			}
			name := template[i+1 : i+1+end]
			if name == "" || strings.ContainsAny(name, "{ \t") {
				return &PlaceholderError{template, "", fmt.Sprintf("malformed placeholder %q", "{"+name+"}")}
			}
			lit(b.String())
			b.Reset()
			if err := ph(name); err != nil {
				return err
			}
			i += end + 1
		case c == '}':
			return &PlaceholderError{template, "", "unmatched '}'"}
		default:
			b.WriteByte(c)
		}
	}
	lit(b.String())
	return nil
}

// Placeholders returns the names of the placeholders in template, in the
// order they appear, repeated names included.
func Placeholders(template string) ([]string, error) {
	var names []string
	err := scan(template, func(string) {}, func(name string) error {
		names = append(names, name)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return names, nil
}

// Expand replaces each {name} in template with vars[name]. A placeholder
// without a value is an error: nothing is left unexpanded.
func Expand(template string, vars map[string]string) (string, error) {
	var b strings.Builder
	err := scan(template, func(s string) { b.WriteString(s) }, func(name string) error {
		v, ok := vars[name]
		if !ok {
			return &PlaceholderError{template, name, "no value for placeholder"}
		}
		b.WriteString(v)
		return nil
	})
	if err != nil {
		return "", err
	}
	return b.String(), nil
}
