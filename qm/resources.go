/*
 * resources.go, part of gauss.
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
	"math"
	"strconv"
	"strings"
)

//Humanize scales memory, in bytes, to the largest unit that keeps the value
//under 10 of the next unit, e.g. 1253656 with kilo=1024 gives "1224KiB".
//The value is truncated to an integer since Gaussian allows no decimal points.
//kilo must be 1000 or 1024.
func Humanize(memory float64, kilo int) (string, error) {
	var units []string
	switch kilo {
	case 1000:
		units = []string{"", "k", "M", "G", "T", "P"}
	case 1024:
		units = []string{"", "Ki", "Mi", "Gi", "Ti", "Pi"}
	default:
		return "", fmt.Errorf("qm: kilo must be 1000 or 1024, not %d", kilo)
	}
	if memory < 0 || math.IsNaN(memory) || math.IsInf(memory, 0) {
		return "", fmt.Errorf("qm: can't humanize %v bytes", memory)
	}
	k := float64(kilo)
	for i, unit := range units {
		if memory < 10*k || i == len(units)-1 {
			return fmt.Sprintf("%d%sB", int64(memory), unit), nil
		}
		memory /= k
	}
	panic("unreachable")
}

var memUnits = map[string]float64{
	"":   1,
	"k":  1000,
	"K":  1000,
	"M":  1000 * 1000,
	"G":  1000 * 1000 * 1000,
	"T":  1000 * 1000 * 1000 * 1000,
	"P":  1000 * 1000 * 1000 * 1000 * 1000,
	"Ki": 1024,
	"Mi": 1024 * 1024,
	"Gi": 1024 * 1024 * 1024,
	"Ti": 1024 * 1024 * 1024 * 1024,
	"Pi": 1024 * 1024 * 1024 * 1024 * 1024,
}

//Dehumanize returns the number of bytes in a human readable amount such as
//"1.2 GB", "800MB", "4 GiB" or a bare number of bytes.
func Dehumanize(memory string) (float64, error) {
	s := strings.TrimSpace(memory)
	i := strings.IndexFunc(s, func(r rune) bool {
		return !(r >= '0' && r <= '9' || r == '.' || r == 'e' || r == 'E' || r == '+')
	})
	num, unit := s, ""
	if i >= 0 {
		num, unit = strings.TrimSpace(s[:i]), strings.TrimSpace(s[i:])
	}
	amount, err := strconv.ParseFloat(num, 64)
	if err != nil || amount < 0 {
		return 0, fmt.Errorf("qm: memory must be <number> <units>, e.g. 1.23 GB, not %q", memory)
	}
	if unit != "" {
		unit = strings.TrimSuffix(unit, "B")
	}
	f, ok := memUnits[unit]
	if !ok {
		return 0, fmt.Errorf("qm: don't recognize the units on %q", memory)
	}
	return amount * f, nil
}

//MinMemory is the least memory given to Gaussian, in bytes.
const MinMemory = 800 * 1000 * 1000

//ResourceRequest is what the Gaussian options ask for.
type ResourceRequest struct {
	NCores string //"available" or a number
	Memory string //"available", "all" or an amount, e.g. "4 GB"
}

//ResourceLimits are the limits set for all the programs run on the machine.
type ResourceLimits struct {
	Parallelism string //none, mpi, openmp or any
	NCores      string //"available" or a number
	Memory      string //"available", "all" or an amount
}

//SystemInfo describes the machine.
type SystemInfo struct {
	Cores       int
	TotalMemory uint64 //bytes
}

//Resources are the threads and memory Gaussian will use.
type Resources struct {
	Threads     int
	MemoryBytes float64
	Memory      string //formatted for %Mem
}

func orAvailable(s string) string {
	s = strings.TrimSpace(s)
	if s == "" {
		return "available"
	}
	return s
}

//PlanResources works out how many threads and how much memory to use.
//Threads are only used with openmp or any parallelism, never exceeding
//the cores of the machine or the global limit. Memory "available" means a
//share of the total in proportion to the threads used. The memory is capped
//by the global limit and never goes under MinMemory.
func PlanResources(req ResourceRequest, lim ResourceLimits, sys SystemInfo) (*Resources, error) {
	if sys.Cores < 1 {
		sys.Cores = 1
	}
	threads := 1
	if p := strings.ToLower(strings.TrimSpace(lim.Parallelism)); p == "openmp" || p == "any" {
		if n := orAvailable(req.NCores); n == "available" {
			threads = sys.Cores
		} else {
			v, err := strconv.Atoi(n)
			if err != nil {
				return nil, fmt.Errorf("qm: ncores %q is neither a number nor available", n)
			}
			threads = v
		}
		if threads > sys.Cores {
			threads = sys.Cores
		}
		if threads < 1 {
			threads = 1
		}
		if n := orAvailable(lim.NCores); n != "available" {
			v, err := strconv.Atoi(n)
			if err != nil {
				return nil, fmt.Errorf("qm: global ncores %q is neither a number nor available", n)
			}
			if v >= 1 && v < threads {
				threads = v
			}
		}
	}
	share := float64(threads) / float64(sys.Cores)
	amount := func(what, s string) (float64, error) {
		switch s = orAvailable(s); s {
		case "all", "available":
			if sys.TotalMemory == 0 {
				return 0, fmt.Errorf("qm: %s memory %q needs the total memory of the machine, which is unknown", what, s)
			}
			if s == "all" {
				return float64(sys.TotalMemory), nil
			}
			return float64(sys.TotalMemory) * share, nil
		default:
			return Dehumanize(s)
		}
	}
	limit, err := amount("global", lim.Memory)
	if err != nil {
		return nil, err
	}
	memory, err := amount("requested", req.Memory)
	if err != nil {
		return nil, err
	}
	memory = math.Min(memory, limit)
	if memory < MinMemory {
		memory = MinMemory
	}
	formatted, err := Humanize(memory, 1000)
	if err != nil {
		return nil, err
	}
	logger.Debug().Int("threads", threads).Str("memory", formatted).Msg("planned resources")
	return &Resources{Threads: threads, MemoryBytes: memory, Memory: formatted}, nil
}
