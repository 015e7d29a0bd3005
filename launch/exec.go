/*
 * exec.go, part of gauss.
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
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"time"
)

// RunSpec says where and with which files a Plan is executed.
type RunSpec struct {
	Dir    string            //working directory, the current one if empty
	Env    map[string]string //added on top of the Plan environment
	Stdin  string            //file fed to the standard input, optional
	Stdout string            //file receiving the standard output; captured if empty
}

// Result is the outcome of a finished process.
type Result struct {
	ExitCode int
	Stdout   string //empty if the output went to a file
	Stderr   string
	Duration time.Duration
}

// ExitError is returned when the process ran but exited with a non-zero status.
type ExitError struct {
	Command string
	Code    int
	Stderr  string
}

func (err *ExitError) Error() string {
	msg := fmt.Sprintf("launch: %s: exit status %d", err.Command, err.Code)
	if err.Stderr != "" {
		msg += ": " + lastLines(err.Stderr, 5)
	}
	return msg
}

// Executor runs plans as child processes. The zero value is ready to use.
type Executor struct {
	//Grace is how long a cancelled process gets between SIGTERM and
	//SIGKILL. Defaults to 5 seconds.
	Grace time.Duration
}

// Run executes plan and waits for it to finish. The process gets its own
// process group, which is terminated if ctx is cancelled.
func (E *Executor) Run(ctx context.Context, plan *Plan, spec RunSpec) (*Result, error) {
	if plan == nil || len(plan.Args) == 0 {
		return nil, errors.New("launch: empty plan")
	}
	cmd := plan.Command(ctx)
	cmd.Dir = spec.Dir
	if len(spec.Env) > 0 {
		if cmd.Env == nil {
			cmd.Env = os.Environ()
		}
		cmd.Env = append(cmd.Env, envList(spec.Env)...)
	}
	grace := E.Grace
	if grace <= 0 {
		grace = 5 * time.Second
	}
	setProcessGroup(cmd, grace)
	cmd.WaitDelay = grace

	if spec.Stdin != "" {
		in, err := os.Open(spec.Stdin)
		if err != nil {
			return nil, fmt.Errorf("launch: stdin: %w", err)
		}
		defer in.Close()
		cmd.Stdin = in
	}
	var stdout, stderr bytes.Buffer
	if spec.Stdout != "" {
		out, err := os.Create(spec.Stdout)
		if err != nil {
			return nil, fmt.Errorf("launch: stdout: %w", err)
		}
		defer out.Close()
		cmd.Stdout = out
	} else {
		cmd.Stdout = &stdout
	}
	cmd.Stderr = &stderr

	log := logger.With().Str("command", plan.String()).Str("dir", spec.Dir).Logger()
	log.Info().Msg("starting")
	start := time.Now()
	err := cmd.Run()
	res := &Result{
		Stdout:   stdout.String(),
		Stderr:   stderr.String(),
		Duration: time.Since(start),
	}
	if cmd.ProcessState != nil {
		res.ExitCode = cmd.ProcessState.ExitCode()
	}
	if ctx.Err() != nil {
		log.Warn().Dur("after", res.Duration).Msg("cancelled")
		return res, fmt.Errorf("launch: %s: %w", plan.Args[0], ctx.Err())
	}
	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		log.Error().Int("exit_code", res.ExitCode).Dur("duration", res.Duration).Msg("failed")
		return res, &ExitError{Command: plan.String(), Code: res.ExitCode, Stderr: res.Stderr}
	}
	if err != nil {
		return res, fmt.Errorf("launch: %s: %w", plan.Args[0], err)
	}
	log.Info().Dur("duration", res.Duration).Msg("finished")
	return res, nil
}

// lastLines returns the last n lines of s.
func lastLines(s string, n int) string {
	lines := bytes.Split(bytes.TrimRight([]byte(s), "\n"), []byte("\n"))
	if len(lines) > n {
		lines = lines[len(lines)-n:]
	}
	return string(bytes.Join(lines, []byte("\n")))
}

