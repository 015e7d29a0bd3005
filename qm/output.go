/*
 * output.go, part of gauss.
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
	"io"
	"os"
	"strconv"
	"strings"
)

//OptTrace is the convergence history of a geometry optimization.
type OptTrace struct {
	Steps     int  `yaml:"steps"`
	Converged bool `yaml:"converged"`

	MaxForce        []float64 `yaml:"maximum_force"`
	RMSForce        []float64 `yaml:"rms_force"`
	MaxDisplacement []float64 `yaml:"maximum_displacement"`
	RMSDisplacement []float64 `yaml:"rms_displacement"`

	MaxForceThreshold        float64 `yaml:"maximum_force_threshold"`
	RMSForceThreshold        float64 `yaml:"rms_force_threshold"`
	MaxDisplacementThreshold float64 `yaml:"maximum_displacement_threshold"`
	RMSDisplacementThreshold float64 `yaml:"rms_displacement_threshold"`
}

//Composite holds the summary of a composite model chemistry (CBS-* or Gn).
type Composite struct {
	Model     string             `yaml:"model"`
	Values    map[string]float64 `yaml:"values"`
	Summary   string             `yaml:"summary"`
	Citations []string           `yaml:"citations,omitempty"`
}

//LogData is what is taken from a Gaussian log file.
type LogData struct {
	Success  bool
	Version  string //e.g. G16
	Revision string //e.g. C.01
	Month    string
	Year     string

	Optimization *OptTrace  //nil if there was no optimization
	Composite    *Composite //nil if the method isn't composite
}

//ReadLog reads and parses the Gaussian log file with the given name.
//method is the method of the calculation, needed to find composite summaries.
func ReadLog(name, method string) (*LogData, error) {
	f, err := os.Open(name)
	if err != nil {
		return nil, newError(ErrNoLog, name, "", err, "os.Open", "ReadLog")
	}
	defer f.Close()
	ret, err := ParseLog(f, method)
	if err != nil {
		return nil, errDecorate(err, "ReadLog "+name)
	}
	return ret, nil
}

const convergenceHeader = "Item               Value     Threshold  Converged?"

//ParseLog parses Gaussian log data.
func ParseLog(r io.Reader, method string) (*LogData, error) {
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	var lines []string
	for sc.Scan() {
		lines = append(lines, strings.TrimRight(sc.Text(), "\r"))
	}
	if err := sc.Err(); err != nil {
		return nil, newError(ErrNoLog, "", "", err, "ParseLog")
	}
	ret := new(LogData)
	//Did it end properly?
	for i := len(lines) - 1; i >= 0; i-- {
		if strings.TrimSpace(lines[i]) != "" {
			ret.Success = strings.Contains(lines[i], "Normal termination")
			break
		}
	}
	ret.parseVersion(lines)
	ret.Optimization = parseConvergence(lines)
	m := strings.ToUpper(strings.TrimSpace(method))
	switch {
	case strings.HasPrefix(m, "CBS-"):
		ret.Composite = parseCBS(lines, m)
	case IsComposite(m):
		ret.Composite = parseGn(lines, m[:2])
	}
	return ret, nil
}

//parseVersion reads the banner after the citation, e.g.
// Gaussian 09:  EM64M-G09RevE.01 30-Nov-2015
func (L *LogData) parseVersion(lines []string) {
	for i, line := range lines {
		if !strings.Contains(line, "Cite this work") {
			continue
		}
		for j := i + 1; j < len(lines)-1; j++ {
			if !strings.Contains(lines[j], "**********************") {
				continue
			}
			banner := lines[j+1]
			if !strings.Contains(banner, "Gaussian") {
				return
			}
			f := strings.Fields(banner)
			var date, rev []string
			if len(f) == 4 {
				date = strings.Split(f[3], "-")
				rev = strings.SplitN(f[2], "Rev", 2)
			}
			if len(date) != 3 || len(rev) != 2 {
				logger.Warn().Str("banner", strings.TrimSpace(banner)).Msg("could not find the Gaussian version")
				return
			}
			L.Version = "G" + strings.Trim(f[1], ":")
			L.Revision = rev[1]
			L.Month = date[1]
			L.Year = date[2]
			return
		}
		return
	}
}

//parseConvergence collects the optimization convergence tables.
func parseConvergence(lines []string) *OptTrace {
	var T *OptTrace
	rows := []struct {
		first, second string
		values        func(*OptTrace) *[]float64
		threshold     func(*OptTrace) *float64
	}{
		{"Maximum", "Force", func(t *OptTrace) *[]float64 { return &t.MaxForce }, func(t *OptTrace) *float64 { return &t.MaxForceThreshold }},
		{"RMS", "Force", func(t *OptTrace) *[]float64 { return &t.RMSForce }, func(t *OptTrace) *float64 { return &t.RMSForceThreshold }},
		{"Maximum", "Displacement", func(t *OptTrace) *[]float64 { return &t.MaxDisplacement }, func(t *OptTrace) *float64 { return &t.MaxDisplacementThreshold }},
		{"RMS", "Displacement", func(t *OptTrace) *[]float64 { return &t.RMSDisplacement }, func(t *OptTrace) *float64 { return &t.RMSDisplacementThreshold }},
	}
	for i := 0; i < len(lines); i++ {
		if strings.TrimSpace(lines[i]) != convergenceHeader {
			continue
		}
		if T == nil {
			T = new(OptTrace)
		}
		T.Steps++
		converged := true
		for _, row := range rows {
			i++
			if i >= len(lines) {
				break
			}
			f := strings.Fields(lines[i])
			if len(f) != 5 || f[0] != row.first || f[1] != row.second {
				continue
			}
			value, err1 := strconv.ParseFloat(f[2], 64)
			threshold, err2 := strconv.ParseFloat(f[3], 64)
			if err1 != nil || err2 != nil {
				logger.Warn().Str("line", lines[i]).Msg("bad convergence line")
				continue
			}
			vals := row.values(T)
			*vals = append(*vals, value)
			*row.threshold(T) = threshold
			if f[4] != "YES" {
				converged = false
			}
		}
		T.Converged = converged
	}
	return T
}

//compositeValues reads "key= value" pairs, two per line, splitting lines
//longer than long at column split.
func compositeValues(text []string, method string, split, long int, values map[string]float64) {
	for _, line := range text {
		line = strings.TrimSpace(line)
		parts := []string{line}
		if len(line) > long {
			parts = []string{line[:split], line[split+1:]}
		}
		for _, p := range parts {
			key, value, ok := strings.Cut(p, "=")
			if !ok {
				continue
			}
			key = strings.TrimSpace(key)
			v, err := strconv.ParseFloat(strings.TrimSpace(value), 64)
			if err != nil {
				continue
			}
			if strings.HasPrefix(key, method) {
				key = strings.TrimSpace(strings.TrimPrefix(key, method))
			} else if key == "E(Empiric)" {
				key = "E(empirical)"
			}
			values[key] = v
		}
	}
}

//parseCBS reads the last "Complete Basis Set" summary of the log, e.g.
// Temperature=               298.150000 Pressure=                       1.000000
// CBS-4 Enthalpy=            -78.435964 CBS-4 Free Energy=            -78.460753
func parseCBS(lines []string, method string) *Composite {
	match := method + " Enthalpy="
	end := -1
	for i := len(lines) - 1; i >= 0; i-- {
		if strings.Contains(lines[i], match) {
			end = i
			break
		}
	}
	if end < 0 {
		return nil
	}
	start := -1
	for i := end; i >= 0; i-- {
		if strings.Contains(lines[i], "Complete Basis Set") {
			start = i
			break
		}
	}
	if start < 0 {
		return nil
	}
	text := lines[start : end+1]
	C := &Composite{Model: method, Values: make(map[string]float64)}
	i := 1
	for ; i < len(text); i++ {
		t := strings.TrimSpace(text[i])
		if t == "" {
			break
		}
		C.Citations = append(C.Citations, t)
	}
	if i < len(text) {
		compositeValues(text[i+1:], method, 37, 40, C.Values)
	}
	C.Summary = strings.Join(text, "\n")
	return C
}

//parseGn reads the last Gn summary, which has no header: everything from
//the previous blank line to the enthalpy line.
func parseGn(lines []string, method string) *Composite {
	match := method + " Enthalpy="
	end := -1
	for i := len(lines) - 1; i >= 0; i-- {
		if strings.Contains(lines[i], match) {
			end = i
			break
		}
	}
	if end < 0 {
		return nil
	}
	start := end
	for start > 0 && strings.TrimSpace(lines[start-1]) != "" {
		start--
	}
	text := lines[start : end+1]
	C := &Composite{Model: method, Values: make(map[string]float64)}
	compositeValues(text, method, 36, 36, C.Values)
	C.Summary = strings.Repeat(" ", 20) + method + " composite method extrapolation\n\n" + strings.Join(text, "\n")
	return C
}
