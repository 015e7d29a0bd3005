/*
 * parse.go, part of gauss.
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
	"github.com/rmera/gauss/qm"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

func newParseCmd(g *globals) *cobra.Command {
	var method string
	cmd := &cobra.Command{
		Use:   "parse DIR",
		Short: "Read the results of a finished run and print them as YAML",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			R, err := qm.ParseDir(args[0], method)
			if err != nil {
				return err
			}
			g.logger.Debug().Str("dir", args[0]).Bool("success", R.Success).Msg("parsed")
			enc := yaml.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent(2)
			if err := enc.Encode(R); err != nil {
				return err
			}
			return enc.Close()
		},
	}
	cmd.Flags().StringVar(&method, "method", "", "method of the calculation, needed for composite summaries")
	return cmd
}
