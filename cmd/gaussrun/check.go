/*
 * check.go, part of gauss.
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
	"strconv"

	"github.com/rmera/gauss/launch"
	"github.com/spf13/cobra"
)

func newCheckCmd(g *globals) *cobra.Command {
	var imageVersion, installation string
	var ntasks int
	cmd := &cobra.Command{
		Use:   "check",
		Short: "Validate the options and print the command that would be run",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := g.config()
			if err != nil {
				return err
			}
			n := strconv.Itoa(ntasks)
			plan, err := launch.Resolve(cfg, launch.Request{
				Vars:         map[string]string{"NTASKS": n, "NCORES": n},
				Version:      imageVersion,
				WorkDir:      ".",
				Installation: launch.Installation(installation),
			})
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "installation: %s\n", plan.Installation)
			if plan.Image != "" {
				fmt.Fprintf(out, "image: %s\n", plan.Image)
			}
			if plan.Platform != "" {
				fmt.Fprintf(out, "platform: %s\n", plan.Platform)
			}
			fmt.Fprintf(out, "command: %s\n", plan.String())
			return nil
		},
	}
	cmd.Flags().StringVar(&imageVersion, "version", version, "version of the container image, or latest")
	cmd.Flags().StringVar(&installation, "installation", "", "override the installation of the options")
	cmd.Flags().IntVar(&ntasks, "ntasks", 1, "value for the NTASKS and NCORES placeholders")
	return cmd
}
