/*
 * route.go, part of gauss.
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
	"fmt"
	"strconv"
	"strings"
)

var optConvergence = map[string]string{
	"":          "",
	"default":   "",
	"tight":     "Tight",
	"verytight": "VeryTight",
	"loose":     "Loose",
}

//IsComposite returns true for the composite model chemistries (CBS-*, G1 to G4),
//which take no basis set.
func IsComposite(method string) bool {
	m := strings.ToUpper(strings.TrimSpace(method))
	if strings.HasPrefix(m, "CBS-") {
		return true
	}
	return len(m) >= 2 && isInString([]string{"G1", "G2", "G3", "G4"}, m[:2])
}

//maxCycles evaluates the maximum number of optimization steps. expr is
//"default" (0 is returned), an integer, or a product of integers and nAtoms.
func maxCycles(expr string, nAtoms int) (int, error) {
	expr = strings.TrimSpace(expr)
	if expr == "" || expr == "default" {
		return 0, nil
	}
	ret := 1
	for _, f := range strings.Split(expr, "*") {
		f = strings.TrimSpace(f)
		if f == "nAtoms" {
			ret *= nAtoms
			continue
		}
		v, err := strconv.Atoi(f)
		if err != nil {
			return 0, fmt.Errorf("max geometry steps %q must be default, an integer or a product with nAtoms", expr)
		}
		ret *= v
	}
	if ret < 1 {
		return 0, fmt.Errorf("max geometry steps %q gives %d", expr, ret)
	}
	return ret, nil
}

//OptKeyword returns the Opt route keyword for the settings, for a system
//with nAtoms atoms.
func (O OptSettings) OptKeyword(nAtoms int) (string, error) {
	sub := make([]string, 0, 4)
	conv, ok := optConvergence[strings.ToLower(strings.TrimSpace(O.Convergence))]
	if !ok {
		return "", fmt.Errorf("don't recognize the geometry convergence %q", O.Convergence)
	}
	if conv != "" {
		sub = append(sub, conv)
	}
	steps, err := maxCycles(O.MaxSteps, nAtoms)
	if err != nil {
		return "", err
	}
	if steps > 0 {
		sub = append(sub, fmt.Sprintf("MaxCycles=%d", steps))
	}
	switch h := strings.TrimSpace(O.RecalcHessian); h {
	case "", "never":
	case "every step":
		sub = append(sub, "CalcAll")
	case "at beginning":
		sub = append(sub, "CalcFC")
	case "HF at beginning":
		sub = append(sub, "CalcHFFC")
	default:
		n, err := strconv.Atoi(h)
		if err != nil || n < 1 {
			return "", fmt.Errorf("don't recognize the hessian recalculation %q", h)
		}
		sub = append(sub, fmt.Sprintf("RecalcFC=%d", n))
	}
	switch c := strings.TrimSpace(O.Coordinates); {
	case strings.Contains(c, "GIC"):
		sub = append(sub, "GIC")
	case c == "" || c == "redundant":
		sub = append(sub, "Redundant")
	case c == "cartesian":
		sub = append(sub, "Cartesian")
	default:
		return "", fmt.Errorf("don't recognize optimization coordinates %q", c)
	}
	if len(sub) == 1 {
		return "Opt=" + sub[0], nil
	}
	return "Opt=(" + strings.Join(sub, ",") + ")", nil
}

//RouteKeywords returns the keywords for the route section (the line starting with #)
//for the calculation Q on a system with nAtoms atoms.
func RouteKeywords(Q *Calc, nAtoms int) ([]string, error) {
	method := strings.TrimSpace(Q.Method)
	if method == "" {
		return nil, newError(ErrBadSettings, "", "no method given", nil, "RouteKeywords")
	}
	kw := make([]string, 0, 4)
	if IsComposite(method) || Q.Basis == "" {
		kw = append(kw, method)
	} else {
		kw = append(kw, method+"/"+strings.TrimSpace(Q.Basis))
	}
	if Q.Optimize {
		opt, err := Q.Opt.OptKeyword(nAtoms)
		if err != nil {
			return nil, newError(ErrBadSettings, "", opt, err, "OptKeyword", "RouteKeywords")
		}
		kw = append(kw, opt)
	}
	if Q.Freq && !IsComposite(method) {
		kw = append(kw, "Freq")
	}
	kw = append(kw, strings.Fields(Q.Others)...)
	return kw, nil
}
