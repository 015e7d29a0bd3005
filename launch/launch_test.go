/*
 * launch_test.go, part of gauss.
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

package launch

import (
	"errors"
	"path/filepath"
	"strings"
	"testing"

	"github.com/rmera/gauss/options"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mustDoc(Te *testing.T, text string) *options.Document {
	Te.Helper()
	doc, err := options.ParseString(text)
	require.NoError(Te, err)
	return doc
}

func TestParseInstallation(Te *testing.T) {
	for _, name := range []string{"conda", "modules", "local", "docker"} {
		inst, err := ParseInstallation(name)
		require.NoError(Te, err)
		assert.Equal(Te, name, inst.String())
	}
	for _, bad := range []string{"", "Local", "slurm", " local"} {
		_, err := ParseInstallation(bad)
		assert.Error(Te, err, bad)
	}
}

func TestFromDocumentDefault(Te *testing.T) {
	cfg, err := FromDocument(options.Default())
	require.NoError(Te, err)
	assert.Equal(Te, Local, cfg.Local.Installation)
	assert.Equal(Te, "g09", cfg.Local.Code)
	assert.Empty(Te, cfg.Local.RootDirectory)
	assert.Empty(Te, cfg.Local.GaussianRoot)
	require.NotNil(Te, cfg.Docker)
	assert.Equal(Te, "ghcr.io/molssi-seamm/seamm-gaussian:{version}", cfg.Docker.Container)
	assert.Empty(Te, cfg.Docker.Platform)
}

func TestFromDocumentErrors(Te *testing.T) {
	tests := []struct {
		name    string
		text    string
		section string
		key     string
	}{
		{"no local", "[docker]\ncode = g09\n", "local", "installation"},
		{"no installation", "[local]\ncode = g09\n", "local", "installation"},
		{"bad installation", "[local]\ninstallation = slurm\ncode = g09\n", "local", "installation"},
		{"no code", "[local]\ninstallation = local\n", "local", "code"},
		{"modules missing", "[local]\ninstallation = modules\ncode = g09\n", "local", "modules"},
		{"conda env missing", "[local]\ninstallation = conda\ncode = g09\n", "local", "conda-environment"},
		{"docker section missing", "[local]\ninstallation = docker\n", "docker", "container"},
		{"docker no container", "[docker]\ncode = g09\n[local]\ninstallation = docker\n", "docker", "container"},
		{"docker no code", "[docker]\ncontainer = img\n[local]\ninstallation = docker\n", "docker", "code"},
	}
	for _, tt := range tests {
		Te.Run(tt.name, func(t *testing.T) {
			_, err := FromDocument(mustDoc(t, tt.text))
			var cerr *ConfigError
			require.ErrorAs(t, err, &cerr)
			assert.Equal(t, tt.section, cerr.Section)
			assert.Equal(t, tt.key, cerr.Key)
			assert.Contains(t, err.Error(), "["+tt.section+"] "+tt.key)
		})
	}
}

func TestExpand(Te *testing.T) {
	vars := map[string]string{"NTASKS": "8", "version": "2024.1.2"}
	got, err := Expand("mpiexec -np {NTASKS} g16", vars)
	require.NoError(Te, err)
	assert.Equal(Te, "mpiexec -np 8 g16", got)

	got, err = Expand("{{literal}} {NTASKS}{NTASKS}", vars)
	require.NoError(Te, err)
	assert.Equal(Te, "{literal} 88", got)

	got, err = Expand("no placeholders", nil)
	require.NoError(Te, err)
	assert.Equal(Te, "no placeholders", got)

	_, err = Expand("g16 -p={NCORES}", vars)
	var perr *PlaceholderError
	require.ErrorAs(Te, err, &perr)
	assert.Equal(Te, "NCORES", perr.Name)

	for _, bad := range []string{"g16 {NTASKS", "g16 }", "g16 {}", "g16 {a b}"} {
		_, err := Expand(bad, vars)
		require.ErrorAs(Te, err, &perr, bad)
		assert.Empty(Te, perr.Name)
	}
}

func TestPlaceholders(Te *testing.T) {
	names, err := Placeholders("ghcr.io/molssi-seamm/seamm-gaussian:{version}")
	require.NoError(Te, err)
	assert.Equal(Te, []string{"version"}, names)
	names, err = Placeholders("{a} {{b}} {c} {a}")
	require.NoError(Te, err)
	assert.Equal(Te, []string{"a", "c", "a"}, names)
}

func TestFromDocumentRoots(Te *testing.T) {
	cfg, err := FromDocument(mustDoc(Te, "[local]\ninstallation = local\ncode = g16\nroot-directory = /opt/gaussian/g16\ngaussian-root = /opt/gaussian\n"))
	require.NoError(Te, err)
	assert.Equal(Te, "/opt/gaussian/g16", cfg.Local.RootDirectory)
	assert.Equal(Te, "/opt/gaussian", cfg.Local.GaussianRoot)
}

func TestResolveLocal(Te *testing.T) {
	cfg, err := FromDocument(options.Default())
	require.NoError(Te, err)
	plan, err := Resolve(cfg, Request{})
	require.NoError(Te, err)
	assert.Equal(Te, []string{"g09"}, plan.Args)
	assert.Equal(Te, Local, plan.Installation)

	cfg.Local.RootDirectory = "/opt/gaussian/g09"
	cfg.Local.Code = "g09 -c={NTASKS}"
	plan, err = Resolve(cfg, Request{Vars: map[string]string{"NTASKS": "4"}})
	require.NoError(Te, err)
	assert.Equal(Te, []string{filepath.Join("/opt/gaussian/g09", "g09"), "-c=4"}, plan.Args)

	//the utilities live next to Gaussian
	plan, err = Resolve(cfg, Request{Code: "formchk gaussian.chk"})
	require.NoError(Te, err)
	assert.Equal(Te, []string{filepath.Join("/opt/gaussian/g09", "formchk"), "gaussian.chk"}, plan.Args)

	cfg.Local.Code = "/usr/local/bin/g09"
	cfg.Local.SetupEnvironment = "/opt/gaussian/g09/bsd/g09.profile"
	plan, err = Resolve(cfg, Request{})
	require.NoError(Te, err)
	assert.Equal(Te, []string{"sh", "-c", ". /opt/gaussian/g09/bsd/g09.profile && exec /usr/local/bin/g09"}, plan.Args)
	assert.Equal(Te, []string{"/usr/local/bin/g09"}, plan.Code)

	cfg.Local.Code = "g09 {NTASKS}"
	_, err = Resolve(cfg, Request{})
	var perr *PlaceholderError
	assert.ErrorAs(Te, err, &perr)
}

func TestResolveModules(Te *testing.T) {
	doc, err := options.ParseFile("../options/testdata/modules.ini")
	require.NoError(Te, err)
	cfg, err := FromDocument(doc)
	require.NoError(Te, err)
	assert.Equal(Te, []string{"gaussian/g16", "openmpi"}, cfg.Local.Modules)
	plan, err := Resolve(cfg, Request{})
	require.NoError(Te, err)
	require.Len(Te, plan.Args, 4)
	assert.Equal(Te, []string{"bash", "-l", "-c"}, plan.Args[:3])
	assert.Equal(Te, "module load gaussian/g16 && module load openmpi && exec g16", plan.Args[3])

	cfg.Local.Modules = []string{"b", "a", "c"}
	plan, err = Resolve(cfg, Request{})
	require.NoError(Te, err)
	assert.True(Te, strings.HasPrefix(plan.Args[3], "module load b && module load a && module load c"))
}

func TestResolveConda(Te *testing.T) {
	doc, err := options.ParseFile("../options/testdata/conda.ini")
	require.NoError(Te, err)
	cfg, err := FromDocument(doc)
	require.NoError(Te, err)
	plan, err := Resolve(cfg, Request{})
	require.NoError(Te, err)
	assert.Equal(Te, []string{"/opt/miniconda/bin/conda", "run", "--no-capture-output", "-n", "seamm-gaussian", "g16"}, plan.Args)

	cfg.Local.CondaEnvironment = "/opt/envs/gaussian"
	cfg.Local.Conda = ""
	plan, err = Resolve(cfg, Request{})
	require.NoError(Te, err)
	assert.Equal(Te, []string{"conda", "run", "--no-capture-output", "-p", "/opt/envs/gaussian", "g16"}, plan.Args)
}

func TestResolveDocker(Te *testing.T) {
	doc, err := options.ParseFile("../options/testdata/modules.ini")
	require.NoError(Te, err)
	cfg, err := FromDocument(doc)
	require.NoError(Te, err)
	dir := Te.TempDir()
	plan, err := Resolve(cfg, Request{
		Installation: Docker,
		Version:      "v2024.10.1",
		WorkDir:      dir,
		Env:          map[string]string{"g09root": "/opt"},
	})
	require.NoError(Te, err)
	assert.Equal(Te, Docker, plan.Installation)
	assert.Equal(Te, "ghcr.io/molssi-seamm/seamm-gaussian:v2024.10.1", plan.Image)
	assert.Equal(Te, "linux/amd64", plan.Platform)
	assert.Equal(Te, "docker", plan.Args[0])
	assert.Equal(Te, []string{"g16"}, plan.Args[len(plan.Args)-1:])
	joined := strings.Join(plan.Args, " ")
	assert.Contains(Te, joined, "--platform linux/amd64")
	assert.Contains(Te, joined, "-v "+dir+":"+ContainerWorkDir)
	assert.Contains(Te, joined, "-e g09root=/opt")
	assert.Empty(Te, plan.Env)

	_, err = Resolve(cfg, Request{Installation: Docker, Version: "not a version"})
	var cerr *ConfigError
	require.ErrorAs(Te, err, &cerr)
	assert.Equal(Te, "container", cerr.Key)

	_, err = Resolve(cfg, Request{Installation: Docker})
	require.ErrorAs(Te, err, &cerr)

	plan, err = Resolve(cfg, Request{Installation: Docker, Version: "latest"})
	require.NoError(Te, err)
	assert.Equal(Te, "ghcr.io/molssi-seamm/seamm-gaussian:latest", plan.Image)

	cfg.Runtime = "podman"
	cfg.Docker.Platform = ""
	plan, err = Resolve(cfg, Request{Installation: Docker, Version: "1.2.3"})
	require.NoError(Te, err)
	assert.Equal(Te, "podman", plan.Args[0])
	assert.NotContains(Te, plan.Args, "--platform")
}

func TestResolveHelperCode(Te *testing.T) {
	doc, err := options.ParseFile("../options/testdata/modules.ini")
	require.NoError(Te, err)
	cfg, err := FromDocument(doc)
	require.NoError(Te, err)
	plan, err := Resolve(cfg, Request{Code: "formchk gaussian.chk"})
	require.NoError(Te, err)
	assert.Equal(Te, []string{"formchk", "gaussian.chk"}, plan.Code)
	assert.Equal(Te, "module load gaussian/g16 && module load openmpi && exec formchk gaussian.chk", plan.Args[3])

	plan, err = Resolve(cfg, Request{Installation: Docker, Version: "latest", Code: "cubegen 1 MO=5 gaussian.fchk HOMO.cube -2 h"})
	require.NoError(Te, err)
	assert.Equal(Te, []string{"cubegen", "1", "MO=5", "gaussian.fchk", "HOMO.cube", "-2", "h"}, plan.Code)
}

func TestResolveOverrideValidates(Te *testing.T) {
	cfg, err := FromDocument(mustDoc(Te, "[local]\ninstallation = local\ncode = g09\n"))
	require.NoError(Te, err)
	_, err = Resolve(cfg, Request{Installation: Docker})
	var cerr *ConfigError
	require.True(Te, errors.As(err, &cerr))
	assert.Equal(Te, "docker", cerr.Section)
	_, err = Resolve(cfg, Request{Installation: Modules})
	require.True(Te, errors.As(err, &cerr))
	assert.Equal(Te, "modules", cerr.Key)
}

func TestQuoteWord(Te *testing.T) {
	assert.Equal(Te, "g09", quoteWord("g09"))
	assert.Equal(Te, "''", quoteWord(""))
	assert.Equal(Te, "'a b'", quoteWord("a b"))
	assert.Equal(Te, `'it'\''s'`, quoteWord("it's"))
	assert.Equal(Te, "/opt/g09/bsd/g09.profile", quoteWord("/opt/g09/bsd/g09.profile"))
}
