/*
 * gaussian.go, part of gauss.
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
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/rmera/gauss"
	"github.com/rmera/gauss/launch"
	v3 "github.com/rmera/gauss/v3"
)

//Files in the run directory.
const (
	InputFile   = "input.dat"
	OutputFile  = "output.txt"
	Checkpoint  = "gaussian" //%Chk name
	ChkFile     = "gaussian.chk"
	FchkFile    = "gaussian.fchk"
	SuccessFile = "success.dat"
	ResultsFile = "results.yaml"
	PlotFile    = "convergence.png"
)

//GaussianHandle builds, runs and reads Gaussian calculations.
//Note that the default methods and basis are NOT considered part of the API,
//so they can always change.
type GaussianHandle struct {
	inputname    string
	dir          string
	cfg          *launch.Config
	installation launch.Installation
	version      string
	executor     launch.Executor
	request      ResourceRequest
	limits       ResourceLimits
	resources    *Resources
	defmethod    string
	defbasis     string
	calc         *Calc
	results      *Results
}

//NewGaussianHandle returns a handle that launches Gaussian as described by cfg.
func NewGaussianHandle(cfg *launch.Config) *GaussianHandle {
	run := new(GaussianHandle)
	run.cfg = cfg
	run.SetDefaults()
	return run
}

//GaussianHandle methods

func (O *GaussianHandle) SetDefaults() {
	O.inputname = "gauss"
	O.dir = "."
	O.defmethod = "B3LYP"
	O.defbasis = "6-31G(d)"
	O.version = ""
	O.request = ResourceRequest{NCores: "available", Memory: "available"}
	O.limits = ResourceLimits{Parallelism: "any", NCores: "available", Memory: "available"}
}

//SetName sets the title of the job.
func (O *GaussianHandle) SetName(name string) {
	O.inputname = name
}

//SetDir sets the directory where the calculation files are written.
func (O *GaussianHandle) SetDir(dir string) {
	O.dir = dir
}

func (O *GaussianHandle) Dir() string {
	return O.dir
}

//SetVersion sets the value for the {version} of a container image, a
//semantic version or "latest". There is no default: an image that uses
//{version} can only be launched after SetVersion.
func (O *GaussianHandle) SetVersion(version string) {
	O.version = version
}

//SetInstallation overrides the installation given in the options.
func (O *GaussianHandle) SetInstallation(inst launch.Installation) {
	O.installation = inst
}

//SetResources sets the cores and memory requested, and the global limits.
func (O *GaussianHandle) SetResources(req ResourceRequest, lim ResourceLimits) {
	O.request = req
	O.limits = lim
}

//Sets the number of CPU to be used
func (O *GaussianHandle) SetnCPU(cpu int) {
	O.request.NCores = strconv.Itoa(cpu)
}

//SetGrace sets how long a cancelled Gaussian gets to exit before it is killed.
func (O *GaussianHandle) SetGrace(d time.Duration) {
	O.executor.Grace = d
}

//Resources returns the resources planned by BuildInput, nil before it.
func (O *GaussianHandle) Resources() *Resources {
	return O.resources
}

func (O *GaussianHandle) threads() int {
	if O.resources == nil || O.resources.Threads < 1 {
		return 1
	}
	return O.resources.Threads
}

func (O *GaussianHandle) path(name string) string {
	return filepath.Join(O.dir, name)
}

//BuildInput builds an input for Gaussian in the run directory. The settings
//in Q are copied, with the default method and basis filled in if missing.
func (O *GaussianHandle) BuildInput(coords *v3.Matrix, atoms gauss.AtomMultiCharger, Q *Calc) error {
	if atoms == nil || coords == nil {
		return newError(ErrMissingCharges, O.inputname, "", nil, "BuildInput")
	}
	q := Calc{}
	if Q != nil {
		q = *Q
	} else {
		q.SetDefaults()
	}
	if q.Method == "" {
		q.Method = O.defmethod
	}
	if q.Basis == "" && !IsComposite(q.Method) {
		q.Basis = O.defbasis
	}
	keywords, err := RouteKeywords(&q, atoms.Len())
	if err != nil {
		return errDecorate(err, "BuildInput")
	}
	sys, err := HostInfo()
	if err != nil {
		logger.Warn().Err(err).Msg("incomplete host information")
	}
	res, err := PlanResources(O.request, O.limits, sys)
	if err != nil {
		return newError(ErrBadSettings, O.inputname, "resources", err, "PlanResources", "BuildInput")
	}
	deck := &Deck{
		Checkpoint: Checkpoint,
		Memory:     res.Memory,
		Threads:    res.Threads,
		Keywords:   keywords,
		Title:      O.inputname,
		Charge:     atoms.Charge(),
		Multi:      atoms.Multi(),
		Atoms:      atoms,
		Coords:     coords,
	}
	if err := os.MkdirAll(O.dir, 0o755); err != nil {
		return newError(ErrCantInput, O.inputname, O.dir, err, "os.MkdirAll", "BuildInput")
	}
	f, err := os.Create(O.path(InputFile))
	if err != nil {
		return newError(ErrCantInput, O.inputname, "", err, "os.Create", "BuildInput")
	}
	defer f.Close()
	if _, err := deck.WriteTo(f); err != nil {
		return errDecorate(err, "BuildInput")
	}
	if err := f.Close(); err != nil {
		return newError(ErrCantInput, O.inputname, "", err, "Close", "BuildInput")
	}
	O.calc = &q
	O.resources = res
	O.results = nil
	logger.Info().Str("dir", O.dir).Int("threads", res.Threads).Str("memory", res.Memory).
		Strs("keywords", keywords).Msg("Gaussian input written")
	return nil
}

//env is the environment for Gaussian and its utilities.
func (O *GaussianHandle) env() map[string]string {
	env := map[string]string{}
	if O.cfg != nil && O.cfg.Local.GaussianRoot != "" {
		env["g09root"] = O.cfg.Local.GaussianRoot
	}
	return env
}

//launch runs code (the configured Gaussian command if empty) in the run
//directory with the strategy of the options. stdin and stdout are file
//names in the run directory, optional.
func (O *GaussianHandle) launch(ctx context.Context, code, stdin, stdout string) error {
	if O.cfg == nil {
		return newError(ErrNotRunning, O.inputname, "no launch configuration", nil, "launch")
	}
	n := strconv.Itoa(O.threads())
	vars := map[string]string{"NTASKS": n, "NCORES": n}
	if O.resources != nil {
		vars["MEMORY"] = O.resources.Memory
	}
	plan, err := launch.Resolve(O.cfg, launch.Request{
		Vars:         vars,
		Version:      O.version,
		WorkDir:      O.dir,
		Env:          O.env(),
		Installation: O.installation,
		Code:         code,
	})
	if err != nil {
		return newError(ErrNotRunning, O.inputname, "can't resolve the command", err, "launch.Resolve", "launch")
	}
	spec := launch.RunSpec{Dir: O.dir}
	if stdin != "" {
		spec.Stdin = O.path(stdin)
	}
	if stdout != "" {
		spec.Stdout = O.path(stdout)
	}
	if _, err := O.executor.Run(ctx, plan, spec); err != nil {
		return newError(ErrNotRunning, O.inputname, plan.Code[0], err, "Executor.Run", "launch")
	}
	return nil
}

//Run runs Gaussian on the input written by BuildInput, then formchk, and
//collects the results. A directory with a success file is not run again,
//only parsed. The results are written to results.yaml, and a convergence plot
//for optimizations.
func (O *GaussianHandle) Run(ctx context.Context) error {
	if _, err := os.Stat(O.path(SuccessFile)); err == nil {
		logger.Info().Str("dir", O.dir).Msg("previous successful run found, not running Gaussian again")
		if _, err := O.Parse(); err != nil {
			return errDecorate(err, "Run")
		}
		return nil
	}
	if O.calc == nil {
		return newError(ErrNotRunning, O.inputname, "no input built", nil, "Run")
	}
	if O.calc.InputOnly {
		logger.Info().Str("input", O.path(InputFile)).Msg("input only, Gaussian not run")
		return nil
	}
	if err := O.launch(ctx, "", InputFile, OutputFile); err != nil {
		return errDecorate(err, "Run")
	}
	if err := O.launch(ctx, "formchk "+ChkFile, "", ""); err != nil {
		return errDecorate(err, "Run")
	}
	R, err := O.Parse()
	if err != nil {
		return errDecorate(err, "Run")
	}
	if err := R.WriteYAML(O.path(ResultsFile)); err != nil {
		return errDecorate(err, "Run")
	}
	if R.Optimization != nil {
		if err := ConvergencePlot(R.Optimization, O.path(PlotFile)); err != nil {
			logger.Warn().Err(err).Msg("no convergence plot")
		}
	}
	if !R.Success {
		e := newError(ErrProbableProblem, O.inputname, "no normal termination", nil, "Run")
		return e
	}
	if err := os.WriteFile(O.path(SuccessFile), []byte("success"), 0o644); err != nil {
		return newError(ErrCantInput, O.inputname, SuccessFile, err, "os.WriteFile", "Run")
	}
	if O.calc.Optimize && R.Optimization != nil && !R.Optimization.Converged && !O.calc.IgnoreUnconverged {
		return newError(ErrUnconverged, O.inputname, strconv.Itoa(R.Optimization.Steps)+" steps", nil, "Run")
	}
	return nil
}

//Parse reads the log and the formatted checkpoint in the run directory.
func (O *GaussianHandle) Parse() (*Results, error) {
	method := ""
	if O.calc != nil {
		method = O.calc.Method
	}
	R, err := ParseDir(O.dir, method)
	if err != nil {
		return nil, errDecorate(err, "Parse")
	}
	O.results = R
	return R, nil
}

//Results returns the results of the last Run or Parse, or nil.
func (O *GaussianHandle) Results() *Results {
	return O.results
}

//ParseDir collects the results in a run directory. Either the log or the
//formatted checkpoint may be missing, not both. method is only needed to
//read the summary of composite methods.
func ParseDir(dir, method string) (*Results, error) {
	var L *LogData
	var F *Fchk
	var err error
	logname := filepath.Join(dir, OutputFile)
	if _, serr := os.Stat(logname); serr == nil {
		if L, err = ReadLog(logname, method); err != nil {
			return nil, errDecorate(err, "ParseDir")
		}
	}
	fchkname := filepath.Join(dir, FchkFile)
	if _, serr := os.Stat(fchkname); serr == nil {
		if F, err = ReadFchk(fchkname); err != nil {
			return nil, errDecorate(err, "ParseDir")
		}
	}
	if L == nil && F == nil {
		return nil, newError(ErrNoLog, dir, "neither "+OutputFile+" nor "+FchkFile+" found", os.ErrNotExist, "ParseDir")
	}
	R := Collect(F, L)
	logger.Debug().Str("dir", dir).Bool("success", R.Success).Float64("energy", R.TotalEnergy).Msg("parsed results")
	return R, nil
}

func (O *GaussianHandle) parsed() (*Results, error) {
	if O.results != nil {
		return O.results, nil
	}
	return O.Parse()
}

//Energy returns the total energy of the last calculation, in kcal/mol.
//For composite methods it is the free energy of the extrapolation.
//If the calculation didn't end normally the energy is returned together
//with an Error ("Probable problem in calculation") which is not critical.
func (O *GaussianHandle) Energy() (float64, error) {
	R, err := O.parsed()
	if err != nil {
		return 0, errDecorate(err, "Energy")
	}
	if R.TotalEnergy == 0 {
		return 0, newError(ErrNoEnergy, O.inputname, "", nil, "Energy")
	}
	E := R.TotalEnergy * gauss.H2Kcal
	if !R.Success {
		e := newError(ErrProbableProblem, O.inputname, "", nil, "Energy")
		e.critical = false
		return E, e
	}
	return E, nil
}

//OptimizedGeometry reads the last geometry from the formatted checkpoint, in Angstrom.
//atoms, if not nil, must have as many atoms as the geometry.
//Returns the geometry and a non-critical Error ("Probable problem in calculation")
//if the calculation didn't end normally.
func (O *GaussianHandle) OptimizedGeometry(atoms gauss.Atomer) (*v3.Matrix, error) {
	R, err := O.parsed()
	if err != nil {
		return nil, errDecorate(err, "OptimizedGeometry")
	}
	coords, _, err := R.Geometry()
	if err != nil {
		return nil, errDecorate(err, "OptimizedGeometry")
	}
	if atoms != nil && atoms.Len() != coords.NVecs() {
		return nil, newError(ErrNoGeometry, O.inputname, "the atoms don't match the geometry", nil, "OptimizedGeometry")
	}
	if !R.Success {
		e := newError(ErrProbableProblem, O.inputname, "", nil, "OptimizedGeometry")
		e.critical = false
		return coords, e
	}
	return coords, nil
}

//IsProbableProblem returns true if err is the non-critical Error returned
//for results of a calculation that didn't end normally.
func IsProbableProblem(err error) bool {
	var e *Error
	return errors.As(err, &e) && e.message == ErrProbableProblem
}
