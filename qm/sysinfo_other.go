//go:build !linux

/*
 * sysinfo_other.go, part of gauss.
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
	"errors"
	"runtime"
)

//HostInfo returns the number of CPUs of the machine. The total memory
//is only known on Linux, elsewhere it is zero and an error is returned.
func HostInfo() (SystemInfo, error) {
	return SystemInfo{Cores: runtime.NumCPU()}, errors.New("qm: total memory unknown on " + runtime.GOOS)
}
