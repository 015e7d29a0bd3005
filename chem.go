/*
 * chem.go, part of gauss.
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
	"fmt"

	v3 "github.com/rmera/gauss/v3"
)

/**Note: Some functions here panic instead of returning errors. This is because they are "fundamental"
 * functions. If something goes wrong here, the program is most likely wrong and should
 * crash. Most panics are related to using the function on a nil object or trying to access out-of bounds
 * fields**/

//Atom contains the atoms read except for the coordinates, which will be in a matrix.
type Atom struct {
	Name   string
	ID     int
	Tag    int //Just added this for something that someone might want to keep that is not a float.
	Mass   float64
	Charge float64 //partial charge, if known
	Symbol string
}

//Atom methods

//Copy returns a copy of the Atom object.
func (A *Atom) Copy() *Atom {
	if A == nil {
		panic("Attempted to copy a nil atom")
	}
	ret := *A
	return &ret
}

//NewAtom returns an atom for the element symbol, with the mass filled from the
//tables and the symbol normalized, so "CL" becomes "Cl".
func NewAtom(symbol string) *Atom {
	s := normalizeSymbol(symbol)
	return &Atom{Name: s, Symbol: s, Mass: Mass(s)}
}

/*****Topology type***/

//Topology contains information about a molecule which is not expected to change in time (i.e. everything except for coordinates)
type Topology struct {
	Atoms  []*Atom
	charge int
	multi  int
}

//NewTopology returns a topology with charge charge, multiplicity multi and the atoms ats.
//The multiplicity is set to 1 if a value lower than 1 is given.
func NewTopology(charge, multi int, ats ...[]*Atom) *Topology {
	top := new(Topology)
	if len(ats) > 0 && ats[0] != nil {
		top.Atoms = ats[0]
	} else {
		top.Atoms = make([]*Atom, 0)
	}
	top.charge = charge
	top.SetMulti(multi)
	return top
}

/*Topology methods*/

//Charge gets the total charge of the topology
func (T *Topology) Charge() int {
	return T.charge
}

//Multi returns the multiplicity in the topology
func (T *Topology) Multi() int {
	return T.multi
}

//SetCharge sets the total charge of the topology to i
func (T *Topology) SetCharge(i int) {
	T.charge = i
}

//SetMulti sets the multiplicity in the topology to i
func (T *Topology) SetMulti(i int) {
	if i < 1 {
		i = 1
	}
	T.multi = i
}

//Atom returns the Atom corresponding to the index i
//of the Atom slice in the Topology. Panics if
//out of range.
func (T *Topology) Atom(i int) *Atom {
	if i >= T.Len() {
		panic("Topology: Requested Atom out of bounds")
	}
	return T.Atoms[i]
}

//AppendAtom appends an atom at the end of the topology
func (T *Topology) AppendAtom(at *Atom) {
	T.Atoms = append(T.Atoms, at)
}

//Len returns the number of atoms in the topology.
func (T *Topology) Len() int {
	return len(T.Atoms)
}

//ResetIDs sets the current order of atoms as ID, starting from 1.
func (T *Topology) ResetIDs() {
	for i, at := range T.Atoms {
		at.ID = i + 1
	}
}

//Masses returns a slice of float64 with the masses of the atoms in the topology, or nil and an error if they have not been calculated
func (T *Topology) Masses() ([]float64, error) {
	mass := make([]float64, T.Len())
	for i, at := range T.Atoms {
		if at.Mass == 0 {
			return nil, &CError{fmt.Sprintf("Not all the masses have been obtained: atom %d (%s)", i, at.Symbol), []string{"Masses"}}
		}
		mass[i] = at.Mass
	}
	return mass, nil
}

//Copy returns a deep copy of the topology.
func (T *Topology) Copy() *Topology {
	ats := make([]*Atom, T.Len())
	for i, at := range T.Atoms {
		ats[i] = at.Copy()
	}
	return NewTopology(T.charge, T.multi, ats)
}

/**Type Molecule**/

//Molecule contains all the info for a molecule in many states. The info that is expected to change between states,
//Coordinates, is not part of the Topology.
type Molecule struct {
	*Topology
	Coords []*v3.Matrix
	Name   string //taken from the comment line of XYZ files
}

//NewMolecule makes a molecule with ats atoms and coords coordinates.
//It returns an error if the number of atoms doesn't match the number of
//vectors in every frame.
func NewMolecule(ats *Topology, coords []*v3.Matrix) (*Molecule, error) {
	if ats == nil {
		return nil, &CError{"Supplied a nil Topology", []string{"NewMolecule"}}
	}
	mol := &Molecule{Topology: ats, Coords: coords}
	if err := mol.Corrupted(); err != nil {
		return nil, errDecorate(err, "NewMolecule")
	}
	return mol, nil
}

//AddFrame appends a set of coordinates to the molecule.
//It will panic if the number of coordinates doesn't match the number of atoms.
func (M *Molecule) AddFrame(newframe *v3.Matrix) {
	if newframe.NVecs() != M.Len() {
		panic("Molecule: Wrong number of coordinates in new frame")
	}
	M.Coords = append(M.Coords, newframe)
}

//LenFrames returns the number of frames in the molecule
func (M *Molecule) LenFrames() int {
	return len(M.Coords)
}

//Corrupted checks whether the molecule is corrupted, i.e. the
//coordinates don't match the number of atoms.
func (M *Molecule) Corrupted() error {
	lastbad := -1
	for i, c := range M.Coords {
		if c == nil || c.NVecs() != M.Len() {
			lastbad = i
		}
	}
	if lastbad >= 0 {
		return &CError{fmt.Sprintf("Inconsistent coordinates/atoms in frame %d", lastbad), []string{"Corrupted"}}
	}
	return nil
}

//CError is the error type for the root package. Errors from other packages
//may implement Error too, so they can be decorated on the way up.
type CError struct {
	msg  string
	deco []string
}

func (err *CError) Error() string { return err.msg }

//Decorate will add the dec string to the decoration slice of strings of the error,
//and return the resulting slice. An empty dec just returns the slice.
func (err *CError) Decorate(dec string) []string {
	if dec == "" {
		return err.deco
	}
	err.deco = append(err.deco, dec)
	return err.deco
}

//errDecorate decorates err with the caller's name if it implements Error,
//and returns it unchanged otherwise.
func errDecorate(err error, caller string) error {
	if err2, ok := err.(Error); ok {
		err2.Decorate(caller)
	}
	return err
}
