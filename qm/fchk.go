/*
 * fchk.go, part of gauss.
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

package qm

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"regexp"
	"strconv"
	"strings"
)

//Fchk is the content of a Gaussian formatted checkpoint file.
//Values in Data are int, float64, string or bool for scalars, and
//[]int, []float64, []bool or string for arrays.
type Fchk struct {
	Title       string
	Calculation string
	Method      string
	Basis       string
	Keys        []string //in file order
	Data        map[string]any
}

//ReadFchk reads and parses the formatted checkpoint file with the given name.
func ReadFchk(name string) (*Fchk, error) {
	f, err := os.Open(name)
	if err != nil {
		return nil, newError(ErrNoFchk, name, "", err, "os.Open", "ReadFchk")
	}
	defer f.Close()
	ret, err := ParseFchk(f)
	if err != nil {
		return nil, errDecorate(err, "ReadFchk "+name)
	}
	return ret, nil
}

//Fortran drops the E in the format for large exponents, so 1.0-100 means 1.0E-100.
var noExponent = regexp.MustCompile(`([0-9])-`)

//Values per line and width of each, for the array types.
var fchkLayout = map[byte][2]int{
	'I': {6, 12},
	'R': {5, 16},
	'C': {5, 12},
	'H': {9, 8},
	'L': {72, 1},
}

//field returns line[start:start+width], clipped to the line length.
func field(line string, start, width int) string {
	if start >= len(line) {
		return ""
	}
	end := start + width
	if end > len(line) {
		end = len(line)
	}
	return line[start:end]
}

//ParseFchk parses formatted checkpoint data. Each entry is a control line
//with the name in columns 1-40, the type in column 44 and, for arrays, N= in
//columns 48-49 and the count after it. Scalars have the value on the control
//line, arrays on the following lines, in fixed-width fields.
func ParseFchk(r io.Reader) (*Fchk, error) {
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	lineno := 0
	next := func() (string, bool) {
		if !sc.Scan() {
			return "", false
		}
		lineno++
		return strings.TrimRight(sc.Text(), "\r"), true
	}
	bad := func(format string, a ...any) error {
		return newError(ErrNoFchk, "", fmt.Sprintf("line %d: ", lineno)+fmt.Sprintf(format, a...), nil, "ParseFchk")
	}
	ret := &Fchk{Data: make(map[string]any)}
	title, ok := next()
	if !ok {
		return nil, bad("empty file")
	}
	ret.Title = strings.TrimSpace(title)
	//Type line (A10,A30,A30)
	line, ok := next()
	if !ok {
		return nil, bad("no type line")
	}
	ret.Calculation = strings.TrimSpace(field(line, 0, 10))
	ret.Method = strings.TrimSpace(field(line, 10, 30))
	ret.Basis = strings.TrimSpace(field(line, 40, 30))
	for {
		line, ok = next()
		if !ok {
			break
		}
		if strings.TrimSpace(line) == "" {
			continue
		}
		if len(line) < 44 {
			return nil, bad("control line too short: %q", line)
		}
		key := strings.TrimSpace(line[:40])
		code := line[43]
		if field(line, 47, 2) != "N=" {
			v, err := fchkScalar(code, strings.TrimSpace(field(line, 49, len(line))))
			if err != nil {
				return nil, bad("%s: %v", key, err)
			}
			ret.Keys = append(ret.Keys, key)
			ret.Data[key] = v
			continue
		}
		count, err := strconv.Atoi(strings.TrimSpace(field(line, 49, 12)))
		if err != nil || count < 0 {
			return nil, bad("%s: bad count", key)
		}
		layout, ok := fchkLayout[code]
		if !ok {
			return nil, bad("%s: unknown type %q", key, code)
		}
		perLine, width := layout[0], layout[1]
		var ints []int
		var reals []float64
		var bools []bool
		var text strings.Builder
		for i := 0; i < count; {
			line, ok = next()
			if !ok {
				return nil, bad("%s: file ends after %d of %d values", key, i, count)
			}
			for j := 0; j < perLine && i < count; j, i = j+1, i+1 {
				f := field(line, j*width, width)
				switch code {
				case 'I':
					v, err := strconv.Atoi(strings.TrimSpace(f))
					if err != nil {
						return nil, bad("%s: %v", key, err)
					}
					ints = append(ints, v)
				case 'R':
					v, err := strconv.ParseFloat(noExponent.ReplaceAllString(strings.TrimSpace(f), "${1}E-"), 64)
					if err != nil {
						return nil, bad("%s: %v", key, err)
					}
					reals = append(reals, v)
				case 'C', 'H':
					text.WriteString(f)
				case 'L':
					bools = append(bools, f == "T")
				}
			}
		}
		ret.Keys = append(ret.Keys, key)
		switch code {
		case 'I':
			ret.Data[key] = ints
		case 'R':
			ret.Data[key] = reals
		case 'C', 'H':
			ret.Data[key] = strings.TrimRight(text.String(), " ")
		case 'L':
			ret.Data[key] = bools
		}
	}
	if err := sc.Err(); err != nil {
		return nil, newError(ErrNoFchk, "", "", err, "ParseFchk")
	}
	return ret, nil
}

func fchkScalar(code byte, value string) (any, error) {
	switch code {
	case 'I':
		return strconv.Atoi(value)
	case 'R':
		return strconv.ParseFloat(noExponent.ReplaceAllString(value, "${1}E-"), 64)
	case 'C':
		return value, nil
	case 'L':
		return value == "T", nil
	}
	return nil, fmt.Errorf("unknown type %q", code)
}

//Int returns the integer scalar with the given key.
func (F *Fchk) Int(key string) (int, bool) {
	v, ok := F.Data[key].(int)
	return v, ok
}

//Float returns the real scalar with the given key.
func (F *Fchk) Float(key string) (float64, bool) {
	v, ok := F.Data[key].(float64)
	return v, ok
}

//Ints returns the integer array with the given key.
func (F *Fchk) Ints(key string) ([]int, bool) {
	v, ok := F.Data[key].([]int)
	return v, ok
}

//Floats returns the real array with the given key.
func (F *Fchk) Floats(key string) ([]float64, bool) {
	v, ok := F.Data[key].([]float64)
	return v, ok
}

//Scalars returns the scalar entries only, which are small enough to
//be written in the results file.
func (F *Fchk) Scalars() map[string]any {
	ret := make(map[string]any)
	for k, v := range F.Data {
		switch t := v.(type) {
		case int, float64, bool:
			ret[k] = t
		case string:
			if len(t) <= 80 {
				ret[k] = t
			}
		}
	}
	return ret
}
