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

var verifyCmd = &cobra.Command{
	Use:   "verify <dir>",
	Short: "Load a heap directory and report any invariant violations",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		reg, err := loadRegistry(cmd, args[0])
		if err != nil {
			return err
		}
		problems := verifyRegistry(reg)
		out := cmd.OutOrStdout()
		if len(problems) == 0 {
			fmt.Fprintln(out, "ok: no invariant violations found")
			return nil
		}
		for _, p := range problems {
			fmt.Fprintln(out, p)
		}
		return fmt.Errorf("%d invariant violation(s) found", len(problems))
	},
}

func init() {
	rootCmd.AddCommand(verifyCmd)
}

// verifyRegistry re-checks some invariants the loader already enforces
// (every id resolved, every object indexed under a known space is
// non-transient and has a class), as a standalone sanity pass
// independent of a fresh load. Objects in no space index are not
// examined, and membership in more than one space is not checked.
func verifyRegistry(reg *heap.Registry) []string {
	var problems []string

	for _, id := range reg.UnresolvedIDs() {
		problems = append(problems, fmt.Sprintf("unresolved object id: %s", id))
	}

	for _, spaceID := range reg.KnownSpaces() {
		for _, o := range reg.SpaceMembersSorted(spaceID) {
			if o.RefTransient() {
				problems = append(problems, fmt.Sprintf("object %s indexed under space %s but reports transient", o.Id(), spaceID))
			}
			if o.Class() == nil {
				problems = append(problems, fmt.Sprintf("object %s has no class bound", o.Id()))
			}
		}
	}

	return problems
}
