/*
 * cube.go, part of gauss.
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
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"

	"github.com/klauspost/compress/gzip"
	"golang.org/x/sync/errgroup"
)

//CubeRequest says which cube files to generate from a finished calculation.
type CubeRequest struct {
	TotalDensity bool
	SpinDensity  bool   //only for spin polarized calculations
	Orbitals     string //orbital selection, see ParseOrbitals. Empty for none.
	Points       string //cubegen grid specification, -2 (coarse) by default
}

//CubeReport tells how the generation went.
type CubeReport struct {
	Created int     //compressed cube files
	Failed  int     //cubegen runs that failed
	Errors  []error //one per failed run
}

func (C *CubeReport) String() string {
	if C.Failed > 0 {
		return fmt.Sprintf("Created %d density and orbital cube files, but there were %d errors trying to create cube files.", C.Created, C.Failed)
	}
	return fmt.Sprintf("Created %d density and orbital cube files.", C.Created)
}

//cubeJob is one cubegen run.
type cubeJob struct {
	args string
	file string
}

//cubeJobs lists the cubegen runs needed for req, using the orbital data in R.
func cubeJobs(req CubeRequest, R *Results) ([]cubeJob, error) {
	npts := req.Points
	if npts == "" {
		npts = "-2"
	}
	var jobs []cubeJob
	add := func(kind, file string) {
		jobs = append(jobs, cubeJob{fmt.Sprintf("1 %s %s %s %s h", kind, FchkFile, file, npts), file})
	}
	if req.TotalDensity {
		add("Density=SCF", "Total_Density.cube")
	}
	if req.SpinDensity && R.SpinPolarized() {
		add("Spin=SCF", "Spin_Density.cube")
	}
	if req.Orbitals == "" {
		return jobs, nil
	}
	if len(R.Orbitals) == 0 {
		return nil, newError(ErrBadSettings, "", "orbitals requested but no orbital energies available", nil, "cubeJobs")
	}
	for i, spin := range R.Orbitals {
		mos, err := ParseOrbitals(req.Orbitals, spin.HOMO, R.NMO)
		if err != nil {
			return nil, newError(ErrBadSettings, "", req.Orbitals, err, "ParseOrbitals", "cubeJobs")
		}
		l1, l2 := "", ""
		if R.SpinPolarized() {
			l1 = []string{"A", "B"}[i]
			l2 = []string{"α-", "β-"}[i]
		}
		for _, mo := range mos {
			add(fmt.Sprintf("%sMO=%d", l1, mo+1), CubeName(mo, spin.HOMO, l2))
		}
	}
	return jobs, nil
}

//MakeCubes runs cubegen for the requested densities and orbitals, at most
//as many at a time as the threads of the calculation, and then compresses
//the cube files. Failed runs are counted in the report and don't stop the
//others. The error is only for a cancelled context or bad settings.
func (O *GaussianHandle) MakeCubes(ctx context.Context, req CubeRequest) (*CubeReport, error) {
	R := O.results
	if R == nil {
		var err error
		if R, err = O.Parse(); err != nil {
			return nil, errDecorate(err, "MakeCubes")
		}
	}
	jobs, err := cubeJobs(req, R)
	if err != nil {
		return nil, errDecorate(err, "MakeCubes")
	}
	report := new(CubeReport)
	var mu sync.Mutex
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(O.threads())
	for _, job := range jobs {
		job := job
		g.Go(func() error {
			err := O.launch(gctx, "cubegen "+job.args, "", "")
			if err == nil {
				logger.Debug().Str("file", job.file).Msg("cube created")
				return nil
			}
			if gctx.Err() != nil {
				return gctx.Err()
			}
			logger.Error().Err(err).Str("file", job.file).Msg("cubegen failed")
			mu.Lock()
			report.Failed++
			report.Errors = append(report.Errors, err)
			mu.Unlock()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return report, newError(ErrNotRunning, O.inputname, "cubegen", err, "MakeCubes")
	}
	n, err := GzipCubes(O.dir)
	report.Created = n
	if err != nil {
		return report, errDecorate(err, "MakeCubes")
	}
	logger.Info().Int("created", report.Created).Int("failed", report.Failed).Msg("cube files")
	return report, nil
}

//GzipCubes compresses every .cube file in dir to .cube.gz and removes the
//original. It returns the number of files compressed.
func GzipCubes(dir string) (int, error) {
	paths, err := filepath.Glob(filepath.Join(dir, "*.cube"))
	if err != nil {
		return 0, err
	}
	n := 0
	for _, path := range paths {
		if err := gzipFile(path, path+".gz"); err != nil {
			return n, newError(ErrCantInput, path, "can't compress cube file", err, "gzipFile", "GzipCubes")
		}
		if err := os.Remove(path); err != nil {
			return n, newError(ErrCantInput, path, "can't remove cube file", err, "os.Remove", "GzipCubes")
		}
		n++
	}
	return n, nil
}

func gzipFile(in, out string) error {
	src, err := os.Open(in)
	if err != nil {
		return err
	}
	defer src.Close()
	dst, err := os.Create(out)
	if err != nil {
		return err
	}
	defer dst.Close()
	gz := gzip.NewWriter(dst)
	if _, err := io.Copy(gz, src); err != nil {
		return err
	}
	if err := gz.Close(); err != nil {
		return err
	}
	return dst.Close()
}
