/*
 * plan.go, part of gauss.
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
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"sort"
	"strings"

	"github.com/blang/semver"
	"github.com/google/uuid"
	"github.com/mattn/go-shellwords"
)

// ContainerWorkDir is where the working directory is mounted in a container.
const ContainerWorkDir = "/home/gauss"

// Request carries what the caller knows at launch time.
type Request struct {
	//Vars are the values for the placeholders in the code template,
	//for instance NTASKS.
	Vars map[string]string

	//Version replaces {version} in the container image. It must be a
	//semantic version (a leading v is accepted) or "latest".
	Version string

	//WorkDir is mounted into the container. Only used for docker.
	WorkDir string

	//Env is added to the environment of the program.
	Env map[string]string

	//Installation overrides the strategy selected in the options, if set.
	Installation Installation

	//Code replaces the code template of the options. It is used for helper
	//programs such as formchk or cubegen that must run in the same
	//environment as the main program.
	Code string
}

func (R Request) code(configured string) string {
	if R.Code != "" {
		return R.Code
	}
	return configured
}

// Plan is a resolved command, ready to be executed.
type Plan struct {
	Installation Installation

	//Code is the expanded program command line, split into words, before
	//any wrapping by the strategy.
	Code []string

	//Args is the full command: Args[0] is the executable.
	Args []string

	//Env is added to the inherited environment. For containers it is
	//already part of Args and Env is empty.
	Env map[string]string

	Image    string //docker only
	Platform string //docker only, passed as given
}

// String returns the command as a single shell-quoted line.
func (P *Plan) String() string {
	return quoteWords(P.Args)
}

// Command returns an exec.Cmd for the plan. The environment of the
// current process is inherited, with P.Env on top.
func (P *Plan) Command(ctx context.Context) *exec.Cmd {
	cmd := exec.CommandContext(ctx, P.Args[0], P.Args[1:]...)
	if len(P.Env) > 0 {
		cmd.Env = append(os.Environ(), envList(P.Env)...)
	}
	return cmd
}

// envList returns env as sorted KEY=value strings.
func envList(env map[string]string) []string {
	ret := make([]string, 0, len(env))
	for k, v := range env {
		ret = append(ret, k+"="+v)
	}
	sort.Strings(ret)
	return ret
}

// Resolve builds the Plan for the selected installation.
func Resolve(cfg *Config, req Request) (*Plan, error) {
	inst := cfg.Local.Installation
	if req.Installation != "" {
		inst = req.Installation
	}
	if err := cfg.validateFor(inst); err != nil {
		return nil, err
	}
	var plan *Plan
	var err error
	switch inst {
	case Docker:
		plan, err = resolveDocker(cfg, req)
	case Modules:
		plan, err = resolveModules(cfg, req)
	case Conda:
		plan, err = resolveConda(cfg, req)
	default:
		plan, err = resolveLocal(cfg, req)
	}
	if err != nil {
		return nil, err
	}
	plan.Installation = inst
	logger.Debug().Str("installation", string(inst)).Str("command", plan.String()).Msg("resolved launch plan")
	return plan, nil
}

// expandCode expands the placeholders of a code template and splits the
// result in words with shell rules. No variable expansion is done.
func expandCode(section, code string, vars map[string]string) ([]string, error) {
	expanded, err := Expand(code, vars)
	if err != nil {
		return nil, err
	}
	words, err := shellwords.Parse(expanded)
	if err != nil {
		return nil, &ConfigError{section, KeyCode, err.Error()}
	}
	if len(words) == 0 {
		return nil, &ConfigError{section, KeyCode, "empty command"}
	}
	return words, nil
}

// imageVersion checks that v can be used for the {version} placeholder.
func imageVersion(v string) (string, error) {
	v = strings.TrimSpace(v)
	if v == "latest" {
		return v, nil
	}
	if v == "" {
		return "", fmt.Errorf("no version given")
	}
	if _, err := semver.ParseTolerant(v); err != nil {
		return "", fmt.Errorf("version %q: %w", v, err)
	}
	return v, nil
}

func resolveDocker(cfg *Config, req Request) (*Plan, error) {
	code, err := expandCode(SectionDocker, req.code(cfg.Docker.Code), req.Vars)
	if err != nil {
		return nil, err
	}
	names, err := Placeholders(cfg.Docker.Container)
	if err != nil {
		return nil, err
	}
	vars := make(map[string]string, len(req.Vars)+1)
	for k, v := range req.Vars {
		vars[k] = v
	}
	for _, n := range names {
		if n == "version" {
			v, err := imageVersion(req.Version)
			if err != nil {
				return nil, &ConfigError{SectionDocker, KeyContainer, err.Error()}
			}
			vars["version"] = v
		}
	}
	image, err := Expand(cfg.Docker.Container, vars)
	if err != nil {
		return nil, err
	}
	runtime := cfg.Runtime
	if runtime == "" {
		runtime = "docker"
	}
	args := []string{runtime, "run", "--rm", "-i", "--name", "gaussrun-" + uuid.NewString()}
	if cfg.Docker.Platform != "" {
		args = append(args, "--platform", cfg.Docker.Platform)
	}
	if req.WorkDir != "" {
		dir, err := filepath.Abs(req.WorkDir)
		if err != nil {
			return nil, err
		}
		args = append(args, "-v", dir+":"+ContainerWorkDir, "-w", ContainerWorkDir)
	}
	for _, e := range envList(req.Env) {
		args = append(args, "-e", e)
	}
	args = append(args, image)
	args = append(args, code...)
	return &Plan{Code: code, Args: args, Image: image, Platform: cfg.Docker.Platform}, nil
}

func resolveModules(cfg *Config, req Request) (*Plan, error) {
	code, err := expandCode(SectionLocal, req.code(cfg.Local.Code), req.Vars)
	if err != nil {
		return nil, err
	}
	steps := make([]string, 0, len(cfg.Local.Modules)+1)
	for _, m := range cfg.Local.Modules {
		steps = append(steps, "module load "+quoteWord(m))
	}
	steps = append(steps, "exec "+quoteWords(code))
	//A login shell, so the module function is defined.
	args := []string{"bash", "-l", "-c", strings.Join(steps, " && ")}
	return &Plan{Code: code, Args: args, Env: req.Env}, nil
}

func resolveConda(cfg *Config, req Request) (*Plan, error) {
	code, err := expandCode(SectionLocal, req.code(cfg.Local.Code), req.Vars)
	if err != nil {
		return nil, err
	}
	conda := cfg.Local.Conda
	if conda == "" {
		conda = "conda"
	}
	env := cfg.Local.CondaEnvironment
	args := []string{conda, "run", "--no-capture-output"}
	if strings.ContainsRune(env, filepath.Separator) {
		args = append(args, "-p", env)
	} else {
		args = append(args, "-n", env)
	}
	args = append(args, code...)
	return &Plan{Code: code, Args: args, Env: req.Env}, nil
}

func resolveLocal(cfg *Config, req Request) (*Plan, error) {
	code, err := expandCode(SectionLocal, req.code(cfg.Local.Code), req.Vars)
	if err != nil {
		return nil, err
	}
	if root := cfg.Local.RootDirectory; root != "" && !filepath.IsAbs(code[0]) {
		code[0] = filepath.Join(root, code[0])
	}
	args := code
	if setup := cfg.Local.SetupEnvironment; setup != "" {
		//The environment set up by the script only lives in this shell.
		script := ". " + quoteWord(setup) + " && exec " + quoteWords(code)
		args = []string{"sh", "-c", script}
	}
	return &Plan{Code: code, Args: args, Env: req.Env}, nil
}

// safeChars are left unquoted by quoteWord.
const safeChars = "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789-_./:=@%+,"

// quoteWord quotes s for a POSIX shell, if needed.
func quoteWord(s string) string {
	if s == "" {
		return "''"
	}
	if strings.Trim(s, safeChars) == "" {
		return s
	}
	return "'" + strings.ReplaceAll(s, "'", `'\''`) + "'"
}

func quoteWords(words []string) string {
	q := make([]string, len(words))
	for i, w := range words {
		q[i] = quoteWord(w)
	}
	return strings.Join(q, " ")
}
