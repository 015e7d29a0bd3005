/*
 * files.go, part of gauss.
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

package gauss

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/klauspost/compress/gzip"
	v3 "github.com/rmera/gauss/v3"
)

//XYZRead reads an xyz file, returning a Molecule with all the frames in it.
//Files with a .gz extension are decompressed on the fly.
//The comment line of the first frame becomes the name of the molecule.
func XYZRead(xyzname string) (*Molecule, error) {
	xyzfile, err := os.Open(xyzname)
	if err != nil {
		return nil, &CError{err.Error(), []string{"os.Open", "XYZRead"}}
	}
	defer xyzfile.Close()
	var r io.Reader = xyzfile
	if strings.HasSuffix(xyzname, ".gz") {
		gz, err := gzip.NewReader(xyzfile)
		if err != nil {
			return nil, &CError{err.Error(), []string{"gzip.NewReader", "XYZRead"}}
		}
		defer gz.Close()
		r = gz
	}
	mol, err := XYZReadFrom(r)
	if err != nil {
		return nil, errDecorate(err, "XYZRead "+xyzname)
	}
	return mol, nil
}

//XYZReadFrom reads xyz-formatted data from r. All the frames must
//contain the same atoms, in the same order, which is not checked except
//for their number.
func XYZReadFrom(r io.Reader) (*Molecule, error) {
	xyz := bufio.NewReader(r)
	var top *Topology
	var name string
	coords := make([]*v3.Matrix, 0, 1)
	for frame := 0; ; frame++ {
		ats, c, comment, err := xyzReadFrame(xyz, frame)
		if err == io.EOF {
			if frame > 0 {
				break
			}
			return nil, &CError{"Empty XYZ file", []string{"XYZReadFrom"}}
		}
		if err != nil {
			return nil, errDecorate(err, "XYZReadFrom")
		}
		if frame == 0 {
			top = NewTopology(0, 1, ats)
			top.ResetIDs()
			name = comment
		} else if len(ats) != top.Len() {
			return nil, &CError{fmt.Sprintf("Frame %d has %d atoms, the first one has %d", frame, len(ats), top.Len()), []string{"XYZReadFrom"}}
		}
		coords = append(coords, c)
	}
	mol, err := NewMolecule(top, coords)
	if err != nil {
		return nil, errDecorate(err, "XYZReadFrom")
	}
	mol.Name = name
	return mol, nil
}

//xyzReadFrame reads one frame. It returns io.EOF, undecorated, only if nothing
//but blank lines was left to read.
func xyzReadFrame(xyz *bufio.Reader, frame int) ([]*Atom, *v3.Matrix, string, error) {
	var line string
	var err error
	for {
		line, err = xyz.ReadString('\n')
		if strings.TrimSpace(line) != "" {
			break
		}
		if err != nil {
			if err == io.EOF {
				return nil, nil, "", io.EOF
			}
			return nil, nil, "", &CError{err.Error(), []string{"xyzReadFrame"}}
		}
	}
	natoms, err := strconv.Atoi(strings.TrimSpace(line))
	if err != nil || natoms < 1 {
		return nil, nil, "", &CError{fmt.Sprintf("Ill formatted XYZ file: bad atom count %q in frame %d", strings.TrimSpace(line), frame), []string{"xyzReadFrame"}}
	}
	comment, err := xyz.ReadString('\n')
	if err != nil && !(err == io.EOF && comment != "") {
		return nil, nil, "", &CError{fmt.Sprintf("Ill formatted XYZ file: no comment line in frame %d", frame), []string{"xyzReadFrame"}}
	}
	molecule := make([]*Atom, natoms)
	coords := make([]float64, natoms*3)
	for i := 0; i < natoms; i++ {
		line, err = xyz.ReadString('\n')
		if err != nil && !(err == io.EOF && line != "") {
			return nil, nil, "", &CError{fmt.Sprintf("Ill formatted XYZ file: frame %d ends after %d of %d atoms", frame, i, natoms), []string{"xyzReadFrame"}}
		}
		fields := strings.Fields(line)
		if len(fields) < 4 {
			return nil, nil, "", &CError{fmt.Sprintf("Line for atom %d in frame %d ill formed", i, frame), []string{"xyzReadFrame"}}
		}
		molecule[i] = NewAtom(fields[0])
		for j := 0; j < 3; j++ {
			coords[i*3+j], err = strconv.ParseFloat(fields[j+1], 64)
			if err != nil {
				return nil, nil, "", &CError{fmt.Sprintf("Bad coordinate for atom %d in frame %d: %s", i, frame, err), []string{"strconv.ParseFloat", "xyzReadFrame"}}
			}
		}
	}
	mcoords, err := v3.NewMatrix(coords)
	if err != nil {
		return nil, nil, "", errDecorate(err, "xyzReadFrame")
	}
	return molecule, mcoords, strings.TrimSpace(comment), nil
}

//XYZWrite writes the coordinates coords for the atoms in an XYZ file with name xyzname which will
//be created for that. If the file exist it will be overwritten.
func XYZWrite(xyzname string, coords *v3.Matrix, atoms Atomer) error {
	out, err := os.Create(xyzname)
	if err != nil {
		return &CError{err.Error(), []string{"os.Create", "XYZWrite"}}
	}
	defer out.Close()
	if err := XYZWriteTo(out, "", coords, atoms); err != nil {
		return errDecorate(err, "XYZWrite")
	}
	return out.Close()
}

//XYZWriteTo writes one xyz frame to w, using comment as the second line.
func XYZWriteTo(w io.Writer, comment string, coords *v3.Matrix, atoms Atomer) error {
	if coords == nil || atoms == nil || coords.NVecs() != atoms.Len() {
		return &CError{"Nil or mismatched coordinates and atoms", []string{"XYZWriteTo"}}
	}
	comment = strings.ReplaceAll(comment, "\n", " ")
	if _, err := fmt.Fprintf(w, "%-4d\n%s\n", atoms.Len(), comment); err != nil {
		return &CError{err.Error(), []string{"XYZWriteTo"}}
	}
	for i := 0; i < atoms.Len(); i++ {
		c := coords.Vec(i)
		_, err := fmt.Fprintf(w, "%-2s  %12.6f%12.6f%12.6f\n", atoms.Atom(i).Symbol, c[0], c[1], c[2])
		if err != nil {
			return &CError{err.Error(), []string{"XYZWriteTo"}}
		}
	}
	return nil
}
