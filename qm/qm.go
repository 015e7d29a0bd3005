/*
 * qm.go, part of gauss.
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

	"github.com/rmera/gauss"
	v3 "github.com/rmera/gauss/v3"
)

//Gaussian is the program name used in errors and results.
const Gaussian = "Gaussian"

//Handle allows to set QM calculations. The GaussianHandle is the
//only implementation.
type Handle interface {

	//Sets the name for the job, used as the title of the input.
	SetName(name string)

	//BuildInput builds an input for the QM program based int the data in
	//atoms, coords and C. returns only error.
	BuildInput(coords *v3.Matrix, atoms gauss.AtomMultiCharger, Q *Calc) error

	//Run runs the QM program for a calculation previously set,
	//and waits for it to finish or for ctx to be cancelled.
	Run(ctx context.Context) error

	//Energy gets the last energy for a  calculation by parsing the
	//QM program's output file. Return error if fail. Also returns
	//Error ("Probable problem in calculation")
	//if there is a energy but the calculation didnt end properly.
	Energy() (float64, error)

	//OptimizedGeometry reads the optimized geometry from a calculation
	//output. Returns error if fail. Returns Error ("Probable problem
	//in calculation") if there is a geometry but the calculation didnt
	//end properly*
	OptimizedGeometry(atoms gauss.Atomer) (*v3.Matrix, error)
}

//OptSettings controls a geometry optimization.
type OptSettings struct {
	Convergence   string //default, tight, verytight or loose
	MaxSteps      string //default, an integer, or an expression like 6*nAtoms
	RecalcHessian string //never, every step, at beginning, HF at beginning, or every N steps
	Coordinates   string //redundant, cartesian or anything containing GIC
}

//Calc holds the settings of a calculation, independent of how Gaussian is run.
type Calc struct {
	Method   string
	Basis    string
	Optimize bool
	Opt      OptSettings
	Freq     bool   //frequencies and thermochemistry
	Others   string //route keywords added verbatim

	//InputOnly means the input is written but Gaussian is not run.
	InputOnly bool
	//IgnoreUnconverged means an optimization that didn't converge is not an error.
	IgnoreUnconverged bool
}

//SetDefaults sets the defaults for the optimization settings.
func (Q *Calc) SetDefaults() {
	Q.Opt = OptSettings{
		Convergence:   "default",
		MaxSteps:      "default",
		RecalcHessian: "never",
		Coordinates:   "redundant",
	}
}

//Error messages
const (
	ErrProbableProblem = "Probable problem in calculation"
	ErrNoEnergy        = "Couldn't obtain energy"
	ErrNoGeometry      = "Couldn't obtain geometry"
	ErrNotRunning      = "Couldn't run calculation"
	ErrCantInput       = "Couldn't create input"
	ErrMissingCharges  = "Missing charges or coordinates"
	ErrNoFchk          = "Couldn't read the formatted checkpoint file"
	ErrNoLog           = "Couldn't read the log file"
	ErrUnconverged     = "Geometry optimization failed to converge"
	ErrBadSettings     = "Invalid calculation settings"
)

//Error is the error type of the package. It carries the program and
//input involved, and the list of functions it went through.
type Error struct {
	message    string
	program    string
	inputname  string
	additional string
	deco       []string
	critical   bool
	err        error
}

func newError(message, inputname, additional string, err error, deco ...string) *Error {
	return &Error{message: message, program: Gaussian, inputname: inputname, additional: additional, deco: deco, critical: true, err: err}
}

//Error returns a string with an error message.
func (err *Error) Error() string {
	msg := fmt.Sprintf("%s (%s/%s) Message: %s", err.message, err.program, err.inputname, err.additional)
	if err.err != nil {
		msg += ": " + err.err.Error()
	}
	return msg
}

//Message returns the short message of the error, one of the Err constants.
func (err *Error) Message() string { return err.message }

//Unwrap returns the underlying error, if any.
func (err *Error) Unwrap() error { return err.err }

//Decorate will add the dec string to the decoration slice of strings of the error,
//and return the resulting slice.
func (err *Error) Decorate(dec string) []string {
	if dec == "" {
		return err.deco
	}
	err.deco = append(err.deco, dec)
	return err.deco
}

//Critical returns whether the error is critical or it can be ignored
func (err *Error) Critical() bool { return err.critical }

//errDecorate decorates err with the caller's name if it implements gauss.Error.
func errDecorate(err error, caller string) error {
	if err2, ok := err.(gauss.Error); ok {
		err2.Decorate(caller)
	}
	return err
}

//Utilities here

//isInString returns true if test is in container, false otherwise.
func isInString(container []string, test string) bool {
	for _, i := range container {
		if test == i {
			return true
		}
	}
	return false
}
