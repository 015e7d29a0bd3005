/*
 * document.go, part of gauss.
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
	"strings"
)

// Section is a named group of options. The options keep the order
// in which they were read or set.
type Section struct {
	name   string
	keys   []string
	values map[string]string
}

func newSection(name string) *Section {
	return &Section{name: name, values: make(map[string]string)}
}

// Name returns the name of the section, without brackets.
func (S *Section) Name() string {
	return S.name
}

// Keys returns the option names of the section in document order.
func (S *Section) Keys() []string {
	ret := make([]string, len(S.keys))
	copy(ret, S.keys)
	return ret
}

// Get returns the value of the option key and whether it is present.
func (S *Section) Get(key string) (string, bool) {
	v, ok := S.values[key]
	return v, ok
}

// Has reports whether the option key is set in the section.
func (S *Section) Has(key string) bool {
	_, ok := S.values[key]
	return ok
}

// Set sets key to value, keeping the original position of key if
// it was already present.
func (S *Section) Set(key, value string) {
	if _, ok := S.values[key]; !ok {
		S.keys = append(S.keys, key)
	}
	S.values[key] = value
}

// Delete removes key from the section. It does nothing if the key is absent.
func (S *Section) Delete(key string) {
	if _, ok := S.values[key]; !ok {
		return
	}
	delete(S.values, key)
	for i, k := range S.keys {
		if k == key {
			S.keys = append(S.keys[:i], S.keys[i+1:]...)
			break
		}
	}
}

// Len returns the number of options in the section.
func (S *Section) Len() int {
	return len(S.keys)
}

// Map returns a copy of the options of the section as a plain map.
func (S *Section) Map() map[string]string {
	ret := make(map[string]string, len(S.values))
	for k, v := range S.values {
		ret[k] = v
	}
	return ret
}

// Document is a parsed options file: an ordered set of sections, each one
// an ordered set of key/value pairs. Comments are not kept.
type Document struct {
	order    []string
	sections map[string]*Section
}

// New returns an empty Document.
func New() *Document {
	return &Document{sections: make(map[string]*Section)}
}

// Sections returns the section names in document order.
func (D *Document) Sections() []string {
	ret := make([]string, len(D.order))
	copy(ret, D.order)
	return ret
}

// Section returns the section with the given name, or nil if there is none.
func (D *Document) Section(name string) *Section {
	return D.sections[name]
}

// AddSection returns the section name, creating it at the end of the
// document if needed.
func (D *Document) AddSection(name string) *Section {
	if s, ok := D.sections[name]; ok {
		return s
	}
	s := newSection(name)
	D.sections[name] = s
	D.order = append(D.order, name)
	return s
}

// Get returns the value of key in section, and whether it was found.
func (D *Document) Get(section, key string) (string, bool) {
	s := D.sections[section]
	if s == nil {
		return "", false
	}
	return s.Get(key)
}

// Has reports whether key is set in section.
func (D *Document) Has(section, key string) bool {
	_, ok := D.Get(section, key)
	return ok
}

// Set sets key to value in section, creating the section if needed.
func (D *Document) Set(section, key, value string) {
	D.AddSection(section).Set(key, value)
}

// Map returns the whole document as nested plain maps.
func (D *Document) Map() map[string]map[string]string {
	ret := make(map[string]map[string]string, len(D.order))
	for _, name := range D.order {
		ret[name] = D.sections[name].Map()
	}
	return ret
}

// WriteTo writes the document in the same format Parse reads. Parsing
// the output gives back a document with the same mapping.
func (D *Document) WriteTo(w io.Writer) (int64, error) {
	bw := bufio.NewWriter(w)
	var n int64
	for i, name := range D.order {
		if i > 0 {
			c, _ := bw.WriteString("\n")
			n += int64(c)
		}
		c, _ := fmt.Fprintf(bw, "[%s]\n", name)
		n += int64(c)
		s := D.sections[name]
		for _, k := range s.keys {
			c, _ = fmt.Fprintf(bw, "%s = %s\n", k, s.values[k])
			n += int64(c)
		}
	}
	return n, bw.Flush()
}

// String returns the document as WriteTo would write it.
func (D *Document) String() string {
	var b strings.Builder
	D.WriteTo(&b)
	return b.String()
}
