/*
 * run.go, part of gauss.
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

package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rmera/gauss"
	"github.com/rmera/gauss/launch"
	"github.com/rmera/gauss/qm"
	"github.com/spf13/cobra"
)

type runFlags struct {
	xyz          string
	dir          string
	method       string
	basis        string
	others       string
	charge       int
	multi        int
	optimize     bool
	freq         bool
	convergence  string
	maxSteps     string
	hessian      string
	coordinates  string
	ncores       string
	memory       string
	parallelism  string
	maxCores     string
	maxMemory    string
	version      string
	installation string
	inputOnly    bool
	ignoreUnconv bool
	cubes        bool
	orbitals     string
	grace        time.Duration
}

func newRunCmd(g *globals) *cobra.Command {
	f := new(runFlags)
	cmd := &cobra.Command{
		Use:   "run -x MOLECULE.xyz",
		Short: "Run a Gaussian calculation on a molecule",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return f.run(ctx, g, cmd)
		},
	}
	fl := cmd.Flags()
	fl.StringVarP(&f.xyz, "xyz", "x", "", "molecule, in XYZ format (.gz accepted)")
	fl.StringVar(&f.dir, "dir", ".", "directory for the calculation files")
	fl.StringVar(&f.method, "method", "B3LYP", "method or composite model chemistry")
	fl.StringVar(&f.basis, "basis", "6-31G(d)", "basis set, ignored for composite methods")
	fl.StringVar(&f.others, "keywords", "", "extra route keywords")
	fl.IntVar(&f.charge, "charge", 0, "total charge")
	fl.IntVar(&f.multi, "multiplicity", 1, "spin multiplicity")
	fl.BoolVar(&f.optimize, "optimize", false, "optimize the geometry")
	fl.BoolVar(&f.freq, "freq", false, "compute frequencies and thermochemistry")
	fl.StringVar(&f.convergence, "convergence", "default", "optimization convergence: default, tight, verytight or loose")
	fl.StringVar(&f.maxSteps, "max-steps", "default", "maximum optimization steps, e.g. 100 or 6*nAtoms")
	fl.StringVar(&f.hessian, "recalc-hessian", "never", "never, every step, at beginning, HF at beginning, or every N steps")
	fl.StringVar(&f.coordinates, "coordinates", "redundant", "optimization coordinates: redundant, cartesian or GIC")
	fl.StringVar(&f.ncores, "ncores", "available", "cores to use")
	fl.StringVar(&f.memory, "memory", "available", "memory to use, e.g. 4 GB, available or all")
	fl.StringVar(&f.parallelism, "parallelism", "any", "allowed parallelism: none, mpi, openmp or any")
	fl.StringVar(&f.maxCores, "max-cores", "available", "most cores any program may use")
	fl.StringVar(&f.maxMemory, "max-memory", "available", "most memory any program may use")
	fl.StringVar(&f.version, "version", version, "version of the container image, or latest")
	fl.StringVar(&f.installation, "installation", "", "override the installation of the options")
	fl.BoolVar(&f.inputOnly, "input-only", false, "write the input but don't run Gaussian")
	fl.BoolVar(&f.ignoreUnconv, "ignore-unconverged", false, "don't fail if the optimization doesn't converge")
	fl.BoolVar(&f.cubes, "density", false, "write the total (and spin) density cube files")
	fl.StringVar(&f.orbitals, "orbitals", "", "orbitals to write as cube files, e.g. HOMO-1:LUMO+1")
	fl.DurationVar(&f.grace, "grace", 5*time.Second, "time Gaussian gets to exit after an interrupt")
	cmd.MarkFlagRequired("xyz")
	return cmd
}

func (f *runFlags) calc() *qm.Calc {
	return &qm.Calc{
		Method:   f.method,
		Basis:    f.basis,
		Optimize: f.optimize,
		Opt: qm.OptSettings{
			Convergence:   f.convergence,
			MaxSteps:      f.maxSteps,
			RecalcHessian: f.hessian,
			Coordinates:   f.coordinates,
		},
		Freq:              f.freq,
		Others:            f.others,
		InputOnly:         f.inputOnly,
		IgnoreUnconverged: f.ignoreUnconv,
	}
}

func (f *runFlags) run(ctx context.Context, g *globals, cmd *cobra.Command) error {
	cfg, err := g.config()
	if err != nil {
		return err
	}
	mol, err := gauss.XYZRead(f.xyz)
	if err != nil {
		return err
	}
	mol.SetCharge(f.charge)
	mol.SetMulti(f.multi)
	name := mol.Name
	if name == "" {
		name = f.xyz
	}
	G := qm.NewGaussianHandle(cfg)
	G.SetName(name)
	G.SetDir(f.dir)
	G.SetVersion(f.version)
	G.SetGrace(f.grace)
	if f.installation != "" {
		inst, err := launch.ParseInstallation(f.installation)
		if err != nil {
			return err
		}
		G.SetInstallation(inst)
	}
	G.SetResources(qm.ResourceRequest{NCores: f.ncores, Memory: f.memory},
		qm.ResourceLimits{Parallelism: f.parallelism, NCores: f.maxCores, Memory: f.maxMemory})
	if err := G.BuildInput(mol.Coords[mol.LenFrames()-1], mol, f.calc()); err != nil {
		return err
	}
	if f.inputOnly {
		fmt.Fprintf(cmd.OutOrStdout(), "input written to %s\n", G.Dir())
		return nil
	}
	g.logger.Info().Str("dir", G.Dir()).Int("atoms", mol.Len()).Msg("running Gaussian")
	err = G.Run(ctx)
	if err != nil && G.Results() == nil {
		return err
	}
	out := cmd.OutOrStdout()
	R := G.Results()
	fmt.Fprintf(out, "%s %s: E = %.8f Eh\n", R.Program, R.Model, R.TotalEnergy)
	if err != nil {
		return err
	}
	if f.cubes || f.orbitals != "" {
		report, err := G.MakeCubes(ctx, qm.CubeRequest{TotalDensity: f.cubes, SpinDensity: f.cubes, Orbitals: f.orbitals})
		if err != nil {
			return err
		}
		fmt.Fprintln(out, report)
	}
	return nil
}
