/*
 * results.go, part of gauss.
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
	"os"

	"github.com/rmera/gauss"
	v3 "github.com/rmera/gauss/v3"
	"gonum.org/v1/gonum/floats"
	"gopkg.in/yaml.v3"
)

//SpinOrbitals summarizes the frontier orbitals for one spin. Indexes are
//0-based, energies in Hartree.
type SpinOrbitals struct {
	Spin     string    `yaml:"spin,omitempty"` //alpha or beta, empty if not spin polarized
	HOMO     int       `yaml:"homo"`
	NHOMO    int       `yaml:"n_homo"` //1-based HOMO number
	EHOMO    float64   `yaml:"e_homo"`
	EHOMO1   *float64  `yaml:"e_homo_1,omitempty"`
	ELUMO    *float64  `yaml:"e_lumo,omitempty"`
	ELUMO1   *float64  `yaml:"e_lumo_1,omitempty"`
	Gap      *float64  `yaml:"e_gap,omitempty"`
	Energies []float64 `yaml:"-"`
}

//Results is everything known about a finished Gaussian run.
type Results struct {
	Success  bool   `yaml:"success"`
	Program  string `yaml:"program"`
	Version  string `yaml:"version,omitempty"`
	Revision string `yaml:"revision,omitempty"`
	Month    string `yaml:"month,omitempty"`
	Year     string `yaml:"year,omitempty"`

	Calculation string `yaml:"calculation,omitempty"`
	Method      string `yaml:"method,omitempty"`
	Basis       string `yaml:"basis,omitempty"`
	Model       string `yaml:"model,omitempty"`

	NAtoms       int     `yaml:"n_atoms"`
	Charge       int     `yaml:"charge"`
	Multiplicity int     `yaml:"multiplicity"`
	TotalEnergy  float64 `yaml:"total_energy"` //Hartree

	Optimization *OptTrace      `yaml:"optimization,omitempty"`
	Composite    *Composite     `yaml:"composite,omitempty"`
	Orbitals     []SpinOrbitals `yaml:"orbitals,omitempty"`
	NMO          int            `yaml:"n_mo,omitempty"`

	Dipole          []float64 `yaml:"dipole_moment,omitempty"` //atomic units
	DipoleMagnitude float64   `yaml:"dipole_moment_magnitude,omitempty"`
	DipoleDebye     float64   `yaml:"dipole_moment_debye,omitempty"`

	Scalars map[string]any `yaml:"fchk,omitempty"`
	Fchk    *Fchk          `yaml:"-"`
}

//SpinPolarized returns true if there are separate alpha and beta orbitals.
func (R *Results) SpinPolarized() bool {
	return len(R.Orbitals) == 2
}

//Collect puts together the results from the formatted checkpoint and
//the log. Either can be nil.
func Collect(F *Fchk, L *LogData) *Results {
	R := &Results{Program: Gaussian, Multiplicity: 1}
	if L != nil {
		R.Success = L.Success
		R.Version, R.Revision, R.Month, R.Year = L.Version, L.Revision, L.Month, L.Year
		R.Optimization = L.Optimization
		R.Composite = L.Composite
	}
	if F != nil {
		R.Fchk = F
		R.Scalars = F.Scalars()
		R.Calculation, R.Method, R.Basis = F.Calculation, F.Method, F.Basis
		R.NAtoms, _ = F.Int("Number of atoms")
		R.Charge, _ = F.Int("Charge")
		if m, ok := F.Int("Multiplicity"); ok {
			R.Multiplicity = m
		}
		R.TotalEnergy, _ = F.Float("Total Energy")
		R.Model = R.Method + "/" + R.Basis
		R.collectOrbitals(F)
		if d, ok := F.Floats("Dipole Moment"); ok && len(d) == 3 {
			R.Dipole = d
			R.DipoleMagnitude = floats.Norm(d, 2)
			R.DipoleDebye = R.DipoleMagnitude * gauss.AU2Debye
		}
	}
	if R.Composite != nil {
		R.Model = R.Composite.Model
		if e, ok := R.Composite.Values["Free Energy"]; ok {
			R.TotalEnergy = e
		}
	}
	return R
}

func (R *Results) collectOrbitals(F *Fchk) {
	alpha, ok := F.Floats("Alpha Orbital Energies")
	if !ok || len(alpha) == 0 {
		return
	}
	R.NMO = len(alpha)
	nalpha, _ := F.Int("Number of alpha electrons")
	nbeta, _ := F.Int("Number of beta electrons")
	beta, polarized := F.Floats("Beta Orbital Energies")
	if !polarized {
		R.Orbitals = []SpinOrbitals{frontier("", alpha, nalpha-1)}
		return
	}
	R.Orbitals = []SpinOrbitals{frontier("alpha", alpha, nalpha-1), frontier("beta", beta, nbeta-1)}
}

func frontier(spin string, es []float64, homo int) SpinOrbitals {
	S := SpinOrbitals{Spin: spin, HOMO: homo, NHOMO: homo + 1, Energies: es}
	at := func(i int) *float64 {
		if i < 0 || i >= len(es) {
			return nil
		}
		v := es[i]
		return &v
	}
	if e := at(homo); e != nil {
		S.EHOMO = *e
	}
	S.EHOMO1 = at(homo - 1)
	S.ELUMO = at(homo + 1)
	S.ELUMO1 = at(homo + 2)
	if S.ELUMO != nil && homo >= 0 {
		gap := *S.ELUMO - S.EHOMO
		S.Gap = &gap
	}
	return S
}

//Geometry returns the last geometry in the formatted checkpoint, in Angstrom,
//and the atoms for it.
func (R *Results) Geometry() (*v3.Matrix, *gauss.Topology, error) {
	if R.Fchk == nil {
		return nil, nil, newError(ErrNoGeometry, "", "no formatted checkpoint data", nil, "Geometry")
	}
	c, ok := R.Fchk.Floats("Current cartesian coordinates")
	if !ok {
		return nil, nil, newError(ErrNoGeometry, "", "no cartesian coordinates", nil, "Geometry")
	}
	z, ok := R.Fchk.Ints("Atomic numbers")
	if !ok || 3*len(z) != len(c) {
		return nil, nil, newError(ErrNoGeometry, "", fmt.Sprintf("%d coordinates for %d atomic numbers", len(c), len(z)), nil, "Geometry")
	}
	coords := make([]float64, len(c))
	copy(coords, c)
	floats.Scale(gauss.Bohr2A, coords)
	M, err := v3.NewMatrix(coords)
	if err != nil {
		return nil, nil, errDecorate(err, "Geometry")
	}
	top := gauss.NewTopology(R.Charge, R.Multiplicity)
	for _, n := range z {
		s, err := gauss.Symbol(n)
		if err != nil {
			return nil, nil, errDecorate(err, "Geometry")
		}
		top.AppendAtom(gauss.NewAtom(s))
	}
	top.ResetIDs()
	return M, top, nil
}

//WriteYAML writes the results to the file with the given name.
func (R *Results) WriteYAML(name string) error {
	data, err := yaml.Marshal(R)
	if err != nil {
		return newError(ErrCantInput, name, "can't encode results", err, "yaml.Marshal", "WriteYAML")
	}
	if err := os.WriteFile(name, data, 0o644); err != nil {
		return newError(ErrCantInput, name, "can't write results", err, "os.WriteFile", "WriteYAML")
	}
	return nil
}

//ReadResults reads results previously written with WriteYAML. The raw
//checkpoint data is not kept in the file, so Fchk is nil.
func ReadResults(name string) (*Results, error) {
	data, err := os.ReadFile(name)
	if err != nil {
		return nil, newError(ErrNoLog, name, "", err, "os.ReadFile", "ReadResults")
	}
	R := new(Results)
	if err := yaml.Unmarshal(data, R); err != nil {
		return nil, newError(ErrNoLog, name, "can't decode results", err, "yaml.Unmarshal", "ReadResults")
	}
	return R, nil
}
