/*
 * default.go, part of gauss.
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

package options

import (
	_ "embed"
)

//go:embed gaussian.ini
var defaultINI string

// DefaultText returns the text of the gaussian.ini file shipped with
// the package, comments included.
func DefaultText() string {
	return defaultINI
}

// Default returns the parsed shipped gaussian.ini. It panics if the
// embedded file is malformed, which can only be a packaging bug.
func Default() *Document {
	doc, err := ParseString(defaultINI)
	if err != nil {
		panic(err)
	}
	return doc
}
