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
	"os"
	"path/filepath"
	"sort"

	units "github.com/docker/go-units"
	"github.com/spf13/cobra"
)

var statsCmd = &cobra.Command{
	Use:   "stats <dir>",
	Short: "Print object counts and on-disk space-file sizes",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		dir := args[0]
		reg, err := loadRegistry(cmd, dir)
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "objects:  %d\n", reg.Size())
		fmt.Fprintf(out, "roots:    %d\n", reg.RootCount())
		fmt.Fprintf(out, "symbols:  %d\n", reg.SymbolCount())

		sizes, total, err := spaceFileSizes(filepath.Join(dir, "persistore"))
		if err != nil {
			return err
		}
		fmt.Fprintf(out, "spaces:   %d files, %s total\n", len(sizes), units.HumanSize(float64(total)))
		for _, sz := range sizes {
			fmt.Fprintf(out, "  %-40s %s\n", sz.name, units.HumanSize(float64(sz.bytes)))
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(statsCmd)
}

type fileSize struct {
	name  string
	bytes int64
}

// spaceFileSizes reports per-file and total byte counts under a
// persistore/ directory, human-formatted at the call site via
// units.HumanSize the way a container runtime reports image/layer sizes.
func spaceFileSizes(persistoreDir string) ([]fileSize, int64, error) {
	entries, err := os.ReadDir(persistoreDir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, 0, nil
		}
		return nil, 0, err
	}
	var sizes []fileSize
	var total int64
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		info, err := e.Info()
		if err != nil {
			return nil, 0, err
		}
		sizes = append(sizes, fileSize{name: e.Name(), bytes: info.Size()})
		total += info.Size()
	}
	sort.Slice(sizes, func(i, j int) bool { return sizes[i].name < sizes[j].name })
	return sizes, total, nil
}
