/*
 * main_test.go, part of gauss.
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
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

//gaussrun runs the command with args and returns what it printed.
func gaussrun(Te *testing.T, args ...string) (string, string, error) {
	Te.Helper()
	cmd := newRootCmd()
	var out, errout bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&errout)
	cmd.SetArgs(append([]string{"--log-level", "error"}, args...))
	err := cmd.Execute()
	return out.String(), errout.String(), err
}

func TestShow(Te *testing.T) {
	out, _, err := gaussrun(Te, "show")
	require.NoError(Te, err)
	assert.Equal(Te, "[docker]\ncode = g09\ncontainer = ghcr.io/molssi-seamm/seamm-gaussian:{version}\n\n[local]\ninstallation = local\ncode = g09\n", out)
}

func TestCheck(Te *testing.T) {
	out, _, err := gaussrun(Te, "check")
	require.NoError(Te, err)
	assert.Contains(Te, out, "installation: local\n")
	assert.Contains(Te, out, "command: g09\n")

	ini := filepath.Join("..", "..", "options", "testdata", "modules.ini")
	out, _, err = gaussrun(Te, "check", "-f", ini)
	require.NoError(Te, err)
	assert.Contains(Te, out, "installation: modules\n")
	assert.Contains(Te, out, "module load gaussian/g16 && module load openmpi && exec g16")

	out, _, err = gaussrun(Te, "check", "-f", ini, "--installation", "docker", "--version", "2024.1.1")
	require.NoError(Te, err)
	assert.Contains(Te, out, "image: ghcr.io/molssi-seamm/seamm-gaussian:2024.1.1\n")
	assert.Contains(Te, out, "platform: linux/amd64\n")
	assert.Contains(Te, out, "--platform linux/amd64")

	//the image matches this build unless asked otherwise
	out, _, err = gaussrun(Te, "check", "--installation", "docker")
	require.NoError(Te, err)
	assert.Contains(Te, out, "image: ghcr.io/molssi-seamm/seamm-gaussian:"+version+"\n")
	out, _, err = gaussrun(Te, "check", "--installation", "docker", "--version", "latest")
	require.NoError(Te, err)
	assert.Contains(Te, out, "image: ghcr.io/molssi-seamm/seamm-gaussian:latest\n")
	run := newRunCmd(new(globals))
	assert.Equal(Te, version, run.Flags().Lookup("version").DefValue)

	_, errout, err := gaussrun(Te, "check", "-f", ini, "--installation", "slurm")
	assert.Error(Te, err)
	assert.Contains(Te, errout, "installation")

	_, _, err = gaussrun(Te, "check", "-f", "nothere.ini")
	assert.Error(Te, err)
}

func TestParse(Te *testing.T) {
	out, _, err := gaussrun(Te, "parse", filepath.Join("..", "..", "qm", "testdata", "water"))
	require.NoError(Te, err)
	var got map[string]any
	require.NoError(Te, yaml.Unmarshal([]byte(out), &got))
	assert.Equal(Te, true, got["success"])
	assert.Equal(Te, "G16", got["version"])
	assert.Equal(Te, 3, got["n_atoms"])

	_, _, err = gaussrun(Te, "parse", Te.TempDir())
	assert.Error(Te, err)
	_, _, err = gaussrun(Te, "parse")
	assert.Error(Te, err)
}

func TestRunInputOnly(Te *testing.T) {
	dir := filepath.Join(Te.TempDir(), "ethanol")
	out, _, err := gaussrun(Te, "run", "-x", filepath.Join("..", "..", "testdata", "ethanol.xyz"),
		"--dir", dir, "--input-only", "--optimize", "--convergence", "tight", "--charge", "1", "--multiplicity", "2",
		"--parallelism", "none", "--memory", "1 GB", "--max-memory", "2 GB")
	require.NoError(Te, err)
	assert.Contains(Te, out, "input written to")
	input, err := os.ReadFile(filepath.Join(dir, "input.dat"))
	require.NoError(Te, err)
	assert.Contains(Te, string(input), "%Mem=1000MB\n%NProcShared=1\n# B3LYP/6-31G(d) Opt=(Tight,Redundant)\n \nethanol\n \n1    2\n")

	_, _, err = gaussrun(Te, "run", "--dir", dir)
	assert.Error(Te, err)
}

func TestLogFlags(Te *testing.T) {
	_, _, err := gaussrun(Te, "--log-format", "xml", "version")
	assert.Error(Te, err)
	_, _, err = gaussrun(Te, "--log-level", "loud", "version")
	assert.Error(Te, err)
	out, _, err := gaussrun(Te, "--log-format", "json", "version")
	require.NoError(Te, err)
	assert.Contains(Te, out, "gaussrun 0.3.0 (")
}
