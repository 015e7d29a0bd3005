/*
 * doc.go, part of gauss.
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

/*Package gauss is the main package of the gauss library. It provides atom and molecule
structures and the facilities for reading and writing the XYZ files used to move geometries
in and out of Gaussian.


	**gauss Capabilities**


    Reads/writes XYZ files, including multi-frame ones.

    Keeps the charge and multiplicity of a system together with its atoms,
	so the qm package can build complete Gaussian input decks.

    Reads a declarative options file (package options) that tells how Gaussian
	is installed on a machine: through conda, environment modules, a plain local
	installation or a container.

    Resolves that file into the exact command to execute and runs it (package launch).

    Generates input for, runs and recovers results from Gaussian calculations
	(package qm). Gaussian must be obtained independently from its distributor.

gauss uses its own matrix type for coordinates, v3.Matrix, based on gonum.org/v1/gonum/mat.
Each row of a v3.Matrix represents one point in space.*/
package gauss
