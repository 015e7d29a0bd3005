/*
 * root.go, part of gauss.
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
	"fmt"
	"io"
	"os"
	"time"

	"github.com/rmera/gauss/launch"
	"github.com/rmera/gauss/options"
	"github.com/rmera/gauss/qm"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
)

//Global flags
type globals struct {
	logLevel  string
	logFormat string
	options   string //options file, the built in defaults if empty
	logger    zerolog.Logger
}

func newRootCmd() *cobra.Command {
	g := new(globals)
	root := &cobra.Command{
		Use:           "gaussrun",
		Short:         "Run Gaussian as described by an options file",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return g.setupLogging(cmd.ErrOrStderr())
		},
	}
	root.PersistentFlags().StringVar(&g.logLevel, "log-level", "info", "log level: trace, debug, info, warn or error")
	root.PersistentFlags().StringVar(&g.logFormat, "log-format", "console", "log format: console or json")
	root.PersistentFlags().StringVarP(&g.options, "file", "f", "", "Gaussian options file (the defaults if not given)")
	root.AddCommand(newCheckCmd(g), newShowCmd(g), newRunCmd(g), newParseCmd(g), newVersionCmd())
	root.SetFlagErrorFunc(func(cmd *cobra.Command, err error) error {
		return fmt.Errorf("%w\n%s", err, cmd.UsageString())
	})
	return wrapErrors(root)
}

//wrapErrors prints the error of any command, so main only sets the exit status.
func wrapErrors(root *cobra.Command) *cobra.Command {
	for _, c := range root.Commands() {
		run := c.RunE
		if run == nil {
			continue
		}
		c.RunE = func(cmd *cobra.Command, args []string) error {
			err := run(cmd, args)
			if err != nil {
				fmt.Fprintln(cmd.ErrOrStderr(), "gaussrun:", err)
			}
			return err
		}
	}
	return root
}

func (g *globals) setupLogging(w io.Writer) error {
	level, err := zerolog.ParseLevel(g.logLevel)
	if err != nil {
		return fmt.Errorf("bad --log-level: %w", err)
	}
	switch g.logFormat {
	case "json":
	case "console":
		w = zerolog.ConsoleWriter{Out: w, TimeFormat: time.Kitchen}
	default:
		return fmt.Errorf("bad --log-format %q, must be console or json", g.logFormat)
	}
	g.logger = zerolog.New(w).Level(level).With().Timestamp().Logger()
	launch.SetLogger(g.logger.With().Str("component", "launch").Logger())
	qm.SetLogger(g.logger.With().Str("component", "qm").Logger())
	return nil
}

//document reads the options file, or the defaults.
func (g *globals) document() (*options.Document, error) {
	if g.options == "" {
		g.logger.Debug().Msg("using the default options")
		return options.Default(), nil
	}
	if _, err := os.Stat(g.options); err != nil {
		return nil, err
	}
	return options.ParseFile(g.options)
}

func (g *globals) config() (*launch.Config, error) {
	doc, err := g.document()
	if err != nil {
		return nil, err
	}
	return launch.FromDocument(doc)
}
