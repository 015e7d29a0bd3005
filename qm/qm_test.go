/*
 * qm_test.go, part of gauss.
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
	"context"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"github.com/klauspost/compress/gzip"
	"github.com/rmera/gauss"
	"github.com/rmera/gauss/launch"
	"github.com/rmera/gauss/options"
	v3 "github.com/rmera/gauss/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const delta = 1e-9

func water(Te *testing.T) (*v3.Matrix, *gauss.Topology) {
	Te.Helper()
	coords, err := v3.NewMatrix([]float64{0, 0, 0.117, 0, 0.757, -0.469, 0, -0.757, -0.469})
	require.NoError(Te, err)
	top := gauss.NewTopology(0, 1)
	for _, s := range []string{"O", "H", "H"} {
		top.AppendAtom(gauss.NewAtom(s))
	}
	return coords, top
}

func TestHumanize(Te *testing.T) {
	cases := []struct {
		bytes float64
		kilo  int
		want  string
	}{
		{1253656, 1024, "1224KiB"},
		{5e8, 1000, "500MB"},
		{999, 1000, "999B"},
		{16e9, 1000, "16GB"},
		{4 * 1024 * 1024 * 1024, 1024, "4096MiB"},
	}
	for _, c := range cases {
		got, err := Humanize(c.bytes, c.kilo)
		require.NoError(Te, err)
		assert.Equal(Te, c.want, got)
	}
	_, err := Humanize(1, 3)
	assert.Error(Te, err)
	_, err = Humanize(-1, 1000)
	assert.Error(Te, err)
}

func TestDehumanize(Te *testing.T) {
	cases := map[string]float64{
		"1.2 GB": 1.2e9,
		"800MB":  8e8,
		"4 GiB":  4 * 1024 * 1024 * 1024,
		"1024":   1024,
		"2 kB":   2000,
		" 3 K ":  3000,
		"1.5 Mi": 1.5 * 1024 * 1024,
	}
	for in, want := range cases {
		got, err := Dehumanize(in)
		require.NoError(Te, err, in)
		assert.InDelta(Te, want, got, 1e-3, in)
	}
	for _, bad := range []string{"", "lots", "3 XB", "GB", "-1 GB"} {
		_, err := Dehumanize(bad)
		assert.Error(Te, err, bad)
	}
}

func TestPlanResources(Te *testing.T) {
	sys := SystemInfo{Cores: 8, TotalMemory: 16e9}
	avail := ResourceRequest{NCores: "available", Memory: "available"}
	res, err := PlanResources(avail, ResourceLimits{Parallelism: "any"}, sys)
	require.NoError(Te, err)
	assert.Equal(Te, 8, res.Threads)
	assert.Equal(Te, "16GB", res.Memory)

	res, err = PlanResources(ResourceRequest{NCores: "4", Memory: "available"},
		ResourceLimits{Parallelism: "openmp", NCores: "2", Memory: "all"}, sys)
	require.NoError(Te, err)
	assert.Equal(Te, 2, res.Threads)
	assert.Equal(Te, "4000MB", res.Memory)

	//no threads without shared memory parallelism, and never under the minimum memory
	res, err = PlanResources(ResourceRequest{NCores: "4", Memory: "100 MB"}, ResourceLimits{Parallelism: "mpi"}, sys)
	require.NoError(Te, err)
	assert.Equal(Te, 1, res.Threads)
	assert.Equal(Te, "800MB", res.Memory)
	assert.InDelta(Te, float64(MinMemory), res.MemoryBytes, delta)

	res, err = PlanResources(ResourceRequest{NCores: "64", Memory: "8 GB"}, ResourceLimits{Parallelism: "any", Memory: "2 GB"}, sys)
	require.NoError(Te, err)
	assert.Equal(Te, 8, res.Threads)
	assert.Equal(Te, "2000MB", res.Memory)

	_, err = PlanResources(avail, ResourceLimits{Parallelism: "any"}, SystemInfo{Cores: 2})
	assert.Error(Te, err)
	_, err = PlanResources(ResourceRequest{NCores: "lots"}, ResourceLimits{Parallelism: "any"}, sys)
	assert.Error(Te, err)
}

func TestHostInfo(Te *testing.T) {
	sys, err := HostInfo()
	assert.GreaterOrEqual(Te, sys.Cores, 1)
	if runtime.GOOS == "linux" {
		require.NoError(Te, err)
		assert.NotZero(Te, sys.TotalMemory)
	}
}

func TestRouteKeywords(Te *testing.T) {
	Q := &Calc{
		Method:   "B3LYP",
		Basis:    "6-31G(d)",
		Optimize: true,
		Opt: OptSettings{
			Convergence:   "tight",
			MaxSteps:      "6*nAtoms",
			RecalcHessian: "at beginning",
			Coordinates:   "redundant",
		},
		Freq:   true,
		Others: "SCF=Tight  Int=UltraFine",
	}
	kw, err := RouteKeywords(Q, 3)
	require.NoError(Te, err)
	assert.Equal(Te, []string{"B3LYP/6-31G(d)", "Opt=(Tight,MaxCycles=18,CalcFC,Redundant)", "Freq", "SCF=Tight", "Int=UltraFine"}, kw)

	//composite methods take no basis, and include their own frequencies
	kw, err = RouteKeywords(&Calc{Method: "CBS-QB3", Basis: "6-31G", Freq: true}, 3)
	require.NoError(Te, err)
	assert.Equal(Te, []string{"CBS-QB3"}, kw)
	assert.True(Te, IsComposite("g4mp2"))
	assert.False(Te, IsComposite("B3LYP"))

	_, err = RouteKeywords(&Calc{}, 3)
	assert.Error(Te, err)
}

func TestOptKeyword(Te *testing.T) {
	Q := new(Calc)
	Q.SetDefaults()
	kw, err := Q.Opt.OptKeyword(5)
	require.NoError(Te, err)
	assert.Equal(Te, "Opt=Redundant", kw)

	kw, err = OptSettings{RecalcHessian: "5", Coordinates: "GIC"}.OptKeyword(5)
	require.NoError(Te, err)
	assert.Equal(Te, "Opt=(RecalcFC=5,GIC)", kw)

	kw, err = OptSettings{Convergence: "VeryTight", MaxSteps: "100", RecalcHessian: "every step", Coordinates: "cartesian"}.OptKeyword(5)
	require.NoError(Te, err)
	assert.Equal(Te, "Opt=(VeryTight,MaxCycles=100,CalcAll,Cartesian)", kw)

	bad := []OptSettings{
		{Convergence: "extreme"},
		{MaxSteps: "n*2"},
		{MaxSteps: "0"},
		{RecalcHessian: "sometimes"},
		{Coordinates: "polar"},
	}
	for _, b := range bad {
		_, err := b.OptKeyword(5)
		assert.Error(Te, err, fmt.Sprintf("%+v", b))
	}
}

func TestDeck(Te *testing.T) {
	coords, top := water(Te)
	D := &Deck{
		Checkpoint: "gaussian",
		Memory:     "800MB",
		Threads:    2,
		Keywords:   []string{"B3LYP/STO-3G", "Opt=Redundant"},
		Title:      "water\nmolecule",
		Charge:     0,
		Multi:      1,
		Atoms:      top,
		Coords:     coords,
	}
	want := "%Chk=gaussian\n%Mem=800MB\n%NProcShared=2\n# B3LYP/STO-3G Opt=Redundant\n \nwater molecule\n \n0    1\n" +
		"O      0.000000   0.000000   0.117000\n" +
		"H      0.000000   0.757000  -0.469000\n" +
		"H      0.000000  -0.757000  -0.469000\n \n"
	var b strings.Builder
	n, err := D.WriteTo(&b)
	require.NoError(Te, err)
	assert.Equal(Te, want, b.String())
	assert.Equal(Te, int64(len(want)), n)

	D.Atoms = gauss.NewTopology(0, 1)
	_, err = D.WriteTo(io.Discard)
	assert.Error(Te, err)
}

func TestParseFchk(Te *testing.T) {
	F, err := ReadFchk("testdata/water/gaussian.fchk")
	require.NoError(Te, err)
	assert.Equal(Te, "water", F.Title)
	assert.Equal(Te, "FOpt", F.Calculation)
	assert.Equal(Te, "RB3LYP", F.Method)
	assert.Equal(Te, "STO-3G", F.Basis)
	assert.Equal(Te, "Number of atoms", F.Keys[0])
	n, ok := F.Int("Number of atoms")
	assert.True(Te, ok)
	assert.Equal(Te, 3, n)
	z, ok := F.Ints("Atomic numbers")
	assert.True(Te, ok)
	assert.Equal(Te, []int{8, 1, 1}, z)
	c, ok := F.Floats("Current cartesian coordinates")
	require.True(Te, ok)
	require.Len(Te, c, 9)
	assert.InDelta(Te, -1.4309, c[7], delta)
	e, ok := F.Float("Total Energy")
	assert.True(Te, ok)
	assert.InDelta(Te, -75.3129876543, e, delta)
	s := F.Scalars()
	assert.Contains(Te, s, "Charge")
	assert.NotContains(Te, s, "Atomic numbers")

	//Fortran drops the exponent letter for three-digit exponents
	text := "tiny\nSP        RHF                           STO-3G\n" +
		fmt.Sprintf("%-40s   I     %12d\n", "Charge", -1) +
		fmt.Sprintf("%-40s   R   N=%12d\n", "Tiny values", 2) +
		fmt.Sprintf("%16s%16s\n", "1.00000000-100", "-2.50000000-101") +
		fmt.Sprintf("%-40s   C   N=%12d\n", "Route", 2) +
		fmt.Sprintf("%-12s%-12s\n", "#P B3LYP/STO", "-3G Freq")
	F, err = ParseFchk(strings.NewReader(text))
	require.NoError(Te, err)
	tiny, ok := F.Floats("Tiny values")
	require.True(Te, ok)
	assert.InDelta(Te, 1e-100, tiny[0], 1e-110)
	assert.InDelta(Te, -2.5e-101, tiny[1], 1e-110)
	q, _ := F.Int("Charge")
	assert.Equal(Te, -1, q)
	assert.Equal(Te, "#P B3LYP/STO-3G Freq", F.Data["Route"])

	for _, bad := range []string{
		"",
		"title\n",
		"title\nSP        RHF\nToo short   I\n",
		"title\nSP        RHF\n" + fmt.Sprintf("%-40s   I   N=%12d\n", "Atomic numbers", 8) + "           8\n",
	} {
		_, err := ParseFchk(strings.NewReader(bad))
		assert.Error(Te, err, bad)
	}
}

func TestParseLog(Te *testing.T) {
	L, err := ReadLog("testdata/water/output.txt", "B3LYP")
	require.NoError(Te, err)
	assert.True(Te, L.Success)
	assert.Equal(Te, "G16", L.Version)
	assert.Equal(Te, "C.01", L.Revision)
	assert.Equal(Te, "Jul", L.Month)
	assert.Equal(Te, "2019", L.Year)
	assert.Nil(Te, L.Composite)
	T := L.Optimization
	require.NotNil(Te, T)
	assert.Equal(Te, 2, T.Steps)
	assert.True(Te, T.Converged)
	assert.Equal(Te, []float64{0.012345, 0.000120}, T.MaxForce)
	assert.Equal(Te, []float64{0.015000, 0.000600}, T.RMSDisplacement)
	assert.InDelta(Te, 0.00045, T.MaxForceThreshold, delta)
	assert.InDelta(Te, 0.0012, T.RMSDisplacementThreshold, delta)

	L, err = ParseLog(strings.NewReader(" Error termination via Lnk1e\n\n"), "B3LYP")
	require.NoError(Te, err)
	assert.False(Te, L.Success)
	assert.Nil(Te, L.Optimization)
	assert.Empty(Te, L.Version)

	_, err = ReadLog("testdata/nothere.log", "")
	assert.Error(Te, err)
}

func TestCompositeCBS(Te *testing.T) {
	L, err := ReadLog("testdata/cbs4.log", "CBS-4")
	require.NoError(Te, err)
	assert.True(Te, L.Success)
	assert.Equal(Te, "G09", L.Version)
	assert.Equal(Te, "E.01", L.Revision)
	assert.Equal(Te, "Nov", L.Month)
	assert.Equal(Te, "2015", L.Year)
	C := L.Composite
	require.NotNil(Te, C)
	assert.Equal(Te, "CBS-4", C.Model)
	assert.Len(Te, C.Citations, 4)
	assert.Equal(Te, "M. R. Nyden and G. A. Petersson, JCP 75, 1843 (1981)", C.Citations[0])
	assert.Len(Te, C.Values, 14)
	assert.InDelta(Te, -78.460753, C.Values["Free Energy"], delta)
	assert.InDelta(Te, -78.439921, C.Values["(0 K)"], delta)
	assert.InDelta(Te, -0.075463, C.Values["DE(Empirical)"], delta)
	assert.InDelta(Te, 298.15, C.Values["Temperature"], delta)
	assert.True(Te, strings.HasPrefix(C.Summary, " Complete Basis Set"))
	assert.True(Te, strings.HasSuffix(C.Summary, "-78.460753"))

	R := Collect(nil, L)
	assert.Equal(Te, "CBS-4", R.Model)
	assert.InDelta(Te, -78.460753, R.TotalEnergy, delta)
}

func TestCompositeGn(Te *testing.T) {
	L, err := ReadLog("testdata/g4.log", "G4")
	require.NoError(Te, err)
	assert.False(Te, L.Success)
	C := L.Composite
	require.NotNil(Te, C)
	assert.Equal(Te, "G4", C.Model)
	assert.Empty(Te, C.Citations)
	assert.InDelta(Te, -0.041682, C.Values["E(empirical)"], delta)
	assert.InDelta(Te, -78.542752, C.Values["Free Energy"], delta)
	assert.InDelta(Te, -78.52188, C.Values["(0 K)"], delta)
	assert.InDelta(Te, -0.117567, C.Values["E(Delta-G3XP)"], delta)
	assert.NotContains(Te, C.Values, "E(Empiric)")
	assert.True(Te, strings.HasPrefix(C.Summary, strings.Repeat(" ", 20)+"G4 composite method extrapolation\n\n"))

	//no summary for other methods
	L, err = ReadLog("testdata/g4.log", "B3LYP")
	require.NoError(Te, err)
	assert.Nil(Te, L.Composite)
}

func TestCollect(Te *testing.T) {
	R, err := ParseDir("testdata/water", "B3LYP")
	require.NoError(Te, err)
	assert.True(Te, R.Success)
	assert.Equal(Te, Gaussian, R.Program)
	assert.Equal(Te, "G16", R.Version)
	assert.Equal(Te, 3, R.NAtoms)
	assert.Equal(Te, 0, R.Charge)
	assert.Equal(Te, 1, R.Multiplicity)
	assert.Equal(Te, "RB3LYP/STO-3G", R.Model)
	assert.InDelta(Te, -75.3129876543, R.TotalEnergy, delta)
	assert.Equal(Te, 7, R.NMO)
	assert.False(Te, R.SpinPolarized())
	require.Len(Te, R.Orbitals, 1)
	O := R.Orbitals[0]
	assert.Equal(Te, 4, O.HOMO)
	assert.Equal(Te, 5, O.NHOMO)
	assert.InDelta(Te, -0.25, O.EHOMO, delta)
	require.NotNil(Te, O.ELUMO)
	assert.InDelta(Te, 0.35, *O.ELUMO, delta)
	require.NotNil(Te, O.Gap)
	assert.InDelta(Te, 0.6, *O.Gap, delta)
	assert.InDelta(Te, -0.3, *O.EHOMO1, delta)
	assert.InDelta(Te, 0.5, *O.ELUMO1, delta)
	assert.InDelta(Te, 0.6, R.DipoleMagnitude, delta)
	assert.InDelta(Te, 0.6*gauss.AU2Debye, R.DipoleDebye, delta)
	require.NotNil(Te, R.Optimization)
	assert.True(Te, R.Optimization.Converged)

	_, err = ParseDir(Te.TempDir(), "B3LYP")
	assert.Error(Te, err)
	assert.True(Te, errors.Is(err, os.ErrNotExist))
}

func TestSpinPolarized(Te *testing.T) {
	F, err := ReadFchk("testdata/triplet.fchk")
	require.NoError(Te, err)
	R := Collect(F, nil)
	assert.False(Te, R.Success)
	assert.Equal(Te, 3, R.Multiplicity)
	require.True(Te, R.SpinPolarized())
	assert.Equal(Te, "alpha", R.Orbitals[0].Spin)
	assert.Equal(Te, 4, R.Orbitals[0].HOMO)
	assert.Equal(Te, "beta", R.Orbitals[1].Spin)
	assert.Equal(Te, 2, R.Orbitals[1].HOMO)
	assert.InDelta(Te, -0.48, R.Orbitals[1].EHOMO, delta)
	assert.InDelta(Te, 0.1, *R.Orbitals[1].ELUMO, delta)
}

func TestGeometry(Te *testing.T) {
	R, err := ParseDir("testdata/water", "")
	require.NoError(Te, err)
	coords, top, err := R.Geometry()
	require.NoError(Te, err)
	assert.Equal(Te, 3, coords.NVecs())
	assert.Equal(Te, 3, top.Len())
	assert.Equal(Te, "O", top.Atom(0).Symbol)
	assert.Equal(Te, "H", top.Atom(2).Symbol)
	assert.Equal(Te, 1, top.Atom(0).ID)
	assert.InDelta(Te, 0.2214*gauss.Bohr2A, coords.At(0, 2), delta)
	assert.InDelta(Te, -1.4309*gauss.Bohr2A, coords.At(2, 1), delta)

	_, _, err = (&Results{}).Geometry()
	assert.Error(Te, err)
}

func TestResultsYAML(Te *testing.T) {
	R, err := ParseDir("testdata/water", "B3LYP")
	require.NoError(Te, err)
	name := filepath.Join(Te.TempDir(), ResultsFile)
	require.NoError(Te, R.WriteYAML(name))
	back, err := ReadResults(name)
	require.NoError(Te, err)
	assert.Nil(Te, back.Fchk)
	if diff := cmp.Diff(R, back, cmpopts.IgnoreFields(Results{}, "Fchk"), cmpopts.IgnoreFields(SpinOrbitals{}, "Energies")); diff != "" {
		Te.Errorf("results changed after writing and reading (-want +got):\n%s", diff)
	}
	_, err = ReadResults(filepath.Join(Te.TempDir(), "none.yaml"))
	assert.Error(Te, err)
}

func TestParseOrbitals(Te *testing.T) {
	cases := []struct {
		sel  string
		want []int
	}{
		{"HOMO", []int{4}},
		{"lumo", []int{5}},
		{"HOMO-1:LUMO+1", []int{3, 4, 5, 6}},
		{"-1, 0", []int{3, 5}},
		{"all", []int{0, 1, 2, 3, 4, 5, 6}},
		{"LUMO..LUMO+5, HOMO", []int{5, 6, 4}},
		{"HOMO, HOMO", []int{4}},
		{"HOMO-9", []int{}},
		{"HOMO:LUMO+300000000", []int{4, 5, 6}},
		{"-300000000:HOMO-3", []int{0, 1}},
		{"LUMO+100:LUMO+300000000", []int{}},
	}
	for _, c := range cases {
		got, err := ParseOrbitals(c.sel, 4, 7)
		require.NoError(Te, err, c.sel)
		assert.Equal(Te, c.want, got, c.sel)
	}
	for _, bad := range []string{"foo", "HOMO,,LUMO", "HOMO:bar"} {
		_, err := ParseOrbitals(bad, 4, 7)
		assert.Error(Te, err, bad)
	}
}

func TestCubeName(Te *testing.T) {
	assert.Equal(Te, "HOMO.cube", CubeName(4, 4, ""))
	assert.Equal(Te, "α-HOMO-2.cube", CubeName(2, 4, "α-"))
	assert.Equal(Te, "LUMO.cube", CubeName(5, 4, ""))
	assert.Equal(Te, "β-LUMO+2.cube", CubeName(7, 4, "β-"))
}

func TestCubeJobs(Te *testing.T) {
	R, err := ParseDir("testdata/water", "B3LYP")
	require.NoError(Te, err)
	jobs, err := cubeJobs(CubeRequest{TotalDensity: true, SpinDensity: true, Orbitals: "HOMO:LUMO"}, R)
	require.NoError(Te, err)
	assert.Equal(Te, []cubeJob{
		{"1 Density=SCF gaussian.fchk Total_Density.cube -2 h", "Total_Density.cube"},
		{"1 MO=5 gaussian.fchk HOMO.cube -2 h", "HOMO.cube"},
		{"1 MO=6 gaussian.fchk LUMO.cube -2 h", "LUMO.cube"},
	}, jobs)

	F, err := ReadFchk("testdata/triplet.fchk")
	require.NoError(Te, err)
	jobs, err = cubeJobs(CubeRequest{SpinDensity: true, Orbitals: "HOMO", Points: "80"}, Collect(F, nil))
	require.NoError(Te, err)
	assert.Equal(Te, []cubeJob{
		{"1 Spin=SCF gaussian.fchk Spin_Density.cube 80 h", "Spin_Density.cube"},
		{"1 AMO=5 gaussian.fchk α-HOMO.cube 80 h", "α-HOMO.cube"},
		{"1 BMO=3 gaussian.fchk β-HOMO.cube 80 h", "β-HOMO.cube"},
	}, jobs)

	_, err = cubeJobs(CubeRequest{Orbitals: "HOMO"}, &Results{})
	assert.Error(Te, err)
}

func TestGzipCubes(Te *testing.T) {
	dir := Te.TempDir()
	for _, name := range []string{"HOMO.cube", "LUMO.cube"} {
		require.NoError(Te, os.WriteFile(filepath.Join(dir, name), []byte("cube "+name), 0o644))
	}
	require.NoError(Te, os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("not a cube"), 0o644))
	n, err := GzipCubes(dir)
	require.NoError(Te, err)
	assert.Equal(Te, 2, n)
	assert.NoFileExists(Te, filepath.Join(dir, "HOMO.cube"))
	assert.FileExists(Te, filepath.Join(dir, "notes.txt"))
	f, err := os.Open(filepath.Join(dir, "LUMO.cube.gz"))
	require.NoError(Te, err)
	defer f.Close()
	gz, err := gzip.NewReader(f)
	require.NoError(Te, err)
	data, err := io.ReadAll(gz)
	require.NoError(Te, err)
	assert.Equal(Te, "cube LUMO.cube", string(data))
}

func TestConvergencePlot(Te *testing.T) {
	L, err := ReadLog("testdata/water/output.txt", "B3LYP")
	require.NoError(Te, err)
	name := filepath.Join(Te.TempDir(), PlotFile)
	require.NoError(Te, ConvergencePlot(L.Optimization, name))
	info, err := os.Stat(name)
	require.NoError(Te, err)
	assert.NotZero(Te, info.Size())
	assert.Error(Te, ConvergencePlot(nil, name))
}

func TestError(Te *testing.T) {
	inner := errors.New("boom")
	err := newError(ErrNoLog, "water", "output.txt", inner, "ReadLog")
	errDecorate(err, "ParseDir")
	assert.Equal(Te, []string{"ReadLog", "ParseDir"}, err.Decorate(""))
	assert.True(Te, err.Critical())
	assert.True(Te, errors.Is(err, inner))
	assert.Equal(Te, ErrNoLog, err.Message())
	assert.Contains(Te, err.Error(), "(Gaussian/water)")
	assert.False(Te, IsProbableProblem(err))
}

//fakeGaussian writes executable scripts standing in for the Gaussian
//programs, and returns options for a local installation using them.
func fakeGaussian(Te *testing.T, scripts map[string]string) *launch.Config {
	Te.Helper()
	if runtime.GOOS == "windows" {
		Te.Skip("needs a POSIX shell")
	}
	root := Te.TempDir()
	bin := filepath.Join(root, "g16")
	require.NoError(Te, os.Mkdir(bin, 0o755))
	for name, body := range scripts {
		require.NoError(Te, os.WriteFile(filepath.Join(bin, name), []byte("#!/bin/sh\n"+body+"\n"), 0o755))
	}
	doc, err := options.ParseString("[local]\ninstallation = local\ncode = g16\nroot-directory = " + bin + "\ngaussian-root = " + root + "\n")
	require.NoError(Te, err)
	cfg, err := launch.FromDocument(doc)
	require.NoError(Te, err)
	return cfg
}

func fixture(Te *testing.T, name string) string {
	Te.Helper()
	abs, err := filepath.Abs(filepath.Join("testdata", "water", name))
	require.NoError(Te, err)
	return abs
}

func copyFixtures(Te *testing.T, dir string) {
	Te.Helper()
	for _, name := range []string{OutputFile, FchkFile} {
		data, err := os.ReadFile(fixture(Te, name))
		require.NoError(Te, err)
		require.NoError(Te, os.WriteFile(filepath.Join(dir, name), data, 0o644))
	}
}

func TestGaussianHandleRun(Te *testing.T) {
	cfg := fakeGaussian(Te, map[string]string{
		"g16":     fmt.Sprintf("cat > stdin.copy\necho \"$g09root\" > root.txt\ncat '%s'", fixture(Te, OutputFile)),
		"formchk": fmt.Sprintf("cp '%s' gaussian.fchk", fixture(Te, FchkFile)),
	})
	dir := filepath.Join(Te.TempDir(), "run")
	coords, top := water(Te)
	var H Handle = NewGaussianHandle(cfg)
	G := H.(*GaussianHandle)
	G.SetDir(dir)
	G.SetResources(ResourceRequest{NCores: "1", Memory: "1 GB"}, ResourceLimits{Parallelism: "any", Memory: "2 GB"})
	H.SetName("water")
	Q := &Calc{Basis: "STO-3G", Optimize: true}
	Q.SetDefaults()
	require.NoError(Te, H.BuildInput(coords, top, Q))
	assert.Equal(Te, 1, G.Resources().Threads)
	input, err := os.ReadFile(filepath.Join(dir, InputFile))
	require.NoError(Te, err)
	assert.Contains(Te, string(input), "# B3LYP/STO-3G Opt=Redundant\n")
	assert.Contains(Te, string(input), "%Mem=1000MB\n")
	assert.Contains(Te, string(input), "%Chk=gaussian\n")

	require.NoError(Te, H.Run(context.Background()))
	for _, name := range []string{SuccessFile, ResultsFile, PlotFile, OutputFile, FchkFile} {
		assert.FileExists(Te, filepath.Join(dir, name))
	}
	stdin, err := os.ReadFile(filepath.Join(dir, "stdin.copy"))
	require.NoError(Te, err)
	assert.Equal(Te, string(input), string(stdin))
	root, err := os.ReadFile(filepath.Join(dir, "root.txt"))
	require.NoError(Te, err)
	assert.Equal(Te, cfg.Local.GaussianRoot, strings.TrimSpace(string(root)))
	assert.Equal(Te, filepath.Dir(cfg.Local.RootDirectory), cfg.Local.GaussianRoot)

	E, err := H.Energy()
	require.NoError(Te, err)
	assert.InDelta(Te, -75.3129876543*gauss.H2Kcal, E, 1e-6)
	geo, err := H.OptimizedGeometry(top)
	require.NoError(Te, err)
	assert.Equal(Te, 3, geo.NVecs())
	_, err = H.OptimizedGeometry(gauss.NewTopology(0, 1))
	assert.Error(Te, err)

	//a finished directory is only parsed
	again := NewGaussianHandle(nil)
	again.SetDir(dir)
	require.NoError(Te, again.Run(context.Background()))
	require.NotNil(Te, again.Results())
	assert.True(Te, again.Results().Success)
}

func TestGaussianHandleInputOnly(Te *testing.T) {
	cfg := fakeGaussian(Te, map[string]string{"g16": "exit 1"})
	dir := Te.TempDir()
	coords, top := water(Te)
	G := NewGaussianHandle(cfg)
	G.SetDir(dir)
	G.SetResources(ResourceRequest{Memory: "1 GB"}, ResourceLimits{Parallelism: "none", Memory: "1 GB"})
	G.SetnCPU(1)
	require.NoError(Te, G.BuildInput(coords, top, &Calc{Method: "CBS-QB3", InputOnly: true}))
	require.NoError(Te, G.Run(context.Background()))
	assert.FileExists(Te, filepath.Join(dir, InputFile))
	assert.NoFileExists(Te, filepath.Join(dir, OutputFile))
	input, err := os.ReadFile(filepath.Join(dir, InputFile))
	require.NoError(Te, err)
	assert.Contains(Te, string(input), "# CBS-QB3\n")
}

func TestGaussianHandleFailure(Te *testing.T) {
	cfg := fakeGaussian(Te, map[string]string{"g16": "echo 'it went wrong' >&2\nexit 3"})
	dir := Te.TempDir()
	coords, top := water(Te)
	G := NewGaussianHandle(cfg)
	G.SetDir(dir)
	G.SetResources(ResourceRequest{Memory: "1 GB"}, ResourceLimits{Parallelism: "none", Memory: "1 GB"})
	G.SetnCPU(1)
	require.NoError(Te, G.BuildInput(coords, top, nil))
	err := G.Run(context.Background())
	require.Error(Te, err)
	var exit *launch.ExitError
	require.True(Te, errors.As(err, &exit))
	assert.Equal(Te, 3, exit.Code)
	assert.Contains(Te, exit.Stderr, "it went wrong")
	var qerr *Error
	require.True(Te, errors.As(err, &qerr))
	assert.Equal(Te, ErrNotRunning, qerr.Message())
	assert.NoFileExists(Te, filepath.Join(dir, SuccessFile))

	//an unfinished log gives the energy with a non critical error
	copyFixtures(Te, dir)
	log := filepath.Join(dir, OutputFile)
	require.NoError(Te, os.WriteFile(log, []byte(" SCF Done:  E(RB3LYP) =  -75.3\n Error termination\n"), 0o644))
	P := NewGaussianHandle(cfg)
	P.SetDir(dir)
	E, err := P.Energy()
	require.Error(Te, err)
	assert.True(Te, IsProbableProblem(err))
	assert.False(Te, err.(*Error).Critical())
	assert.False(Te, math.IsNaN(E))
	assert.InDelta(Te, -75.3129876543*gauss.H2Kcal, E, 1e-6)
}

func TestMakeCubes(Te *testing.T) {
	cfg := fakeGaussian(Te, map[string]string{"cubegen": "echo \"$2\" > \"$4\""})
	dir := Te.TempDir()
	copyFixtures(Te, dir)
	G := NewGaussianHandle(cfg)
	G.SetDir(dir)
	report, err := G.MakeCubes(context.Background(), CubeRequest{TotalDensity: true, Orbitals: "HOMO-1:HOMO"})
	require.NoError(Te, err)
	assert.Equal(Te, 3, report.Created)
	assert.Zero(Te, report.Failed)
	assert.Equal(Te, "Created 3 density and orbital cube files.", report.String())
	for _, name := range []string{"Total_Density.cube.gz", "HOMO.cube.gz", "HOMO-1.cube.gz"} {
		assert.FileExists(Te, filepath.Join(dir, name))
	}

	cfg = fakeGaussian(Te, map[string]string{"cubegen": "exit 1"})
	dir = Te.TempDir()
	copyFixtures(Te, dir)
	G = NewGaussianHandle(cfg)
	G.SetDir(dir)
	report, err = G.MakeCubes(context.Background(), CubeRequest{Orbitals: "HOMO:LUMO"})
	require.NoError(Te, err)
	assert.Equal(Te, 2, report.Failed)
	assert.Len(Te, report.Errors, 2)
	assert.Zero(Te, report.Created)
	assert.Contains(Te, report.String(), "2 errors")
}
