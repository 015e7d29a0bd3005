/*
 * installation.go, part of gauss.
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

// Installation is the way the external program is located and started.
type Installation string

const (
	Conda   Installation = "conda"
	Modules Installation = "modules"
	Local   Installation = "local"
	Docker  Installation = "docker"
)

// Installations lists the accepted values of the installation option.
var Installations = []Installation{Conda, Modules, Local, Docker}

// ParseInstallation returns the Installation named by s. Only the exact,
// lower case, names are accepted.
func ParseInstallation(s string) (Installation, error) {
	for _, v := range Installations {
		if string(v) == s {
			return v, nil
		}
	}
	names := make([]string, len(Installations))
	for i, v := range Installations {
		names[i] = string(v)
	}
	return "", fmt.Errorf("unknown installation %q, must be one of %s", s, strings.Join(names, ", "))
}

// String implements fmt.Stringer.
func (I Installation) String() string {
	return string(I)
}
