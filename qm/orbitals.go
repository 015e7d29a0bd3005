/*
 * orbitals.go, part of gauss.
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

//orbitalIndex reads one orbital: HOMO, LUMO, HOMO-n, LUMO+n, or a bare
//integer which counts down from the HOMO if negative and up from the
//LUMO otherwise.
func orbitalIndex(s string, homo int) (int, error) {
	s = strings.ToUpper(strings.TrimSpace(s))
	switch s {
	case "HOMO":
		return homo, nil
	case "LUMO":
		return homo + 1, nil
	}
	t := strings.TrimPrefix(strings.TrimPrefix(s, "HOMO"), "LUMO")
	n, err := strconv.Atoi(t)
	if err != nil {
		return 0, fmt.Errorf("qm: can't understand orbital %q", s)
	}
	if n < 0 {
		return homo + n, nil
	}
	return homo + 1 + n, nil
}

//ParseOrbitals returns the 0-based orbital indexes in a selection such as
//"HOMO-1:LUMO+1, -3" or "all". Ranges use ":" or "..", and include both ends.
//Orbitals outside 0 to nmo-1 are dropped, as are repeated ones.
func ParseOrbitals(sel string, homo, nmo int) ([]int, error) {
	sel = strings.TrimSpace(sel)
	var all []int
	if strings.EqualFold(sel, "all") {
		for i := 0; i < nmo; i++ {
			all = append(all, i)
		}
		return all, nil
	}
	for _, chunk := range strings.Split(sel, ",") {
		chunk = strings.TrimSpace(chunk)
		if chunk == "" {
			return nil, fmt.Errorf("qm: empty item in orbital selection %q", sel)
		}
		first, last, isRange := strings.Cut(chunk, ":")
		if !isRange {
			first, last, isRange = strings.Cut(chunk, "..")
		}
		a, err := orbitalIndex(first, homo)
		if err != nil {
			return nil, err
		}
		b := a
		if isRange {
			if b, err = orbitalIndex(last, homo); err != nil {
				return nil, err
			}
		}
		a, b = max(a, 0), min(b, nmo-1)
		for i := a; i <= b; i++ {
			all = append(all, i)
		}
	}
	seen := make(map[int]bool)
	ret := make([]int, 0, len(all))
	for _, v := range all {
		if seen[v] {
			continue
		}
		seen[v] = true
		ret = append(ret, v)
	}
	return ret, nil
}

//CubeName returns the name of the cube file for orbital mo. prefix is
//empty unless the calculation is spin polarized, where it is α- or β-.
func CubeName(mo, homo int, prefix string) string {
	switch {
	case mo == homo:
		return prefix + "HOMO.cube"
	case mo < homo:
		return fmt.Sprintf("%sHOMO-%d.cube", prefix, homo-mo)
	case mo == homo+1:
		return prefix + "LUMO.cube"
	default:
		return fmt.Sprintf("%sLUMO+%d.cube", prefix, mo-homo-1)
	}
}
