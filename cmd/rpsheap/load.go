/*
Copyright (C) 2026  The RefPerSys-Go Authors

	This program is free software: you can redistribute it and/or modify
	it under the terms of the GNU General Public License as published by
	the Free Software Foundation, either version 3 of the License, or
	(at your option) any later version.

	This program is distributed in the hope that it will be useful,
	but WITHOUT ANY WARRANTY; without even the implied warranty of
	MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
	GNU General Public License for more details.

	You should have received a copy of the GNU General Public License
	along with this program.  If not, see <https://www.gnu.org/licenses/>.
*/

package main

import (
	"fmt"

	"github.com/refpersys/rpsheap/heap"
	"github.com/spf13/cobra"
)

var loadCmd = &cobra.Command{
	Use:   "load <dir>",
	Short: "Load a heap directory and report its size",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		reg, err := loadRegistry(cmd, args[0])
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "loaded %d objects, %d roots, %d symbols\n",
			reg.Size(), reg.RootCount(), reg.SymbolCount())
		return nil
	},
}

func init() {
	rootCmd.AddCommand(loadCmd)
}

// loadRegistry is shared by load, verify and stats: it wires a Store for
// dir and delegates to heap.Load with the logger/backend flags common to
// every subcommand that reads a heap directory.
func loadRegistry(cmd *cobra.Command, dir string) (*heap.Registry, error) {
	store, err := newStore(dir)
	if err != nil {
		return nil, err
	}
	cfg := &heap.Config{
		AcceptedFormats:    heap.DefaultAcceptedFormats,
		Logger:             rootLogger,
		Store:              store,
		HardcodedRootCount: flagRootCount,
	}
	return heap.Load(cmd.Context(), cfg)
}
