/*
 * input.go, part of gauss.
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
	"strings"

	"github.com/rmera/gauss"
	v3 "github.com/rmera/gauss/v3"
)

//Deck is a Gaussian input file.
type Deck struct {
	Checkpoint string //without the .chk extension
	Memory     string //as accepted by %Mem, e.g. 800MB
	Threads    int
	Keywords   []string
	Title      string
	Charge     int
	Multi      int
	Atoms      gauss.Atomer
	Coords     *v3.Matrix
}

//WriteTo writes the deck to w.
func (D *Deck) WriteTo(w io.Writer) (int64, error) {
	if D.Atoms == nil || D.Coords == nil {
		return 0, newError(ErrMissingCharges, D.Title, "", nil, "WriteTo")
	}
	if D.Atoms.Len() != D.Coords.NVecs() {
		return 0, newError(ErrCantInput, D.Title, fmt.Sprintf("%d atoms but %d coordinates", D.Atoms.Len(), D.Coords.NVecs()), nil, "WriteTo")
	}
	title := strings.TrimSpace(strings.ReplaceAll(D.Title, "\n", " "))
	if title == "" {
		title = "gauss"
	}
	cw := &countWriter{w: bufio.NewWriter(w)}
	fmt.Fprintf(cw, "%%Chk=%s\n", D.Checkpoint)
	fmt.Fprintf(cw, "%%Mem=%s\n", D.Memory)
	fmt.Fprintf(cw, "%%NProcShared=%d\n", D.Threads)
	fmt.Fprintf(cw, "# %s\n", strings.Join(D.Keywords, " "))
	fmt.Fprintf(cw, " \n%s\n \n", title)
	fmt.Fprintf(cw, "%d    %d\n", D.Charge, D.Multi)
	for i := 0; i < D.Atoms.Len(); i++ {
		c := D.Coords.Vec(i)
		fmt.Fprintf(cw, "%-2s   %10.6f %10.6f %10.6f\n", D.Atoms.Atom(i).Symbol, c[0], c[1], c[2])
	}
	fmt.Fprintf(cw, " \n")
	if cw.err == nil {
		cw.err = cw.w.Flush()
	}
	return cw.n, cw.err
}

//String returns the deck as text.
func (D *Deck) String() string {
	var b strings.Builder
	D.WriteTo(&b)
	return b.String()
}

//countWriter counts the bytes written and keeps the first error.
type countWriter struct {
	w   *bufio.Writer
	n   int64
	err error
}

func (c *countWriter) Write(p []byte) (int, error) {
	if c.err != nil {
		return 0, c.err
	}
	n, err := c.w.Write(p)
	c.n += int64(n)
	c.err = err
	return n, err
}
