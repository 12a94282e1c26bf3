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
	"archive/tar"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/pierrec/lz4/v4"
	"github.com/refpersys/rpsheap/heap"
	"github.com/spf13/cobra"
)

var (
	flagSourceDir string
	flagArchive   bool
)

var dumpCmd = &cobra.Command{
	Use:   "dump <dir>",
	Short: "Load a heap directory, rescan it, and dump it back out",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		dir := args[0]
		reg, err := loadRegistry(cmd, dir)
		if err != nil {
			return err
		}
		store, err := newStore(dir)
		if err != nil {
			return err
		}

		var sources []heap.SourceFile
		if flagSourceDir != "" {
			sources, err = gatherSourceFiles(flagSourceDir)
			if err != nil {
				return err
			}
		}

		cfg := &heap.Config{
			AcceptedFormats: heap.DefaultAcceptedFormats,
			Logger:          rootLogger,
			Store:           store,
		}
		if err := heap.Dump(cmd.Context(), cfg, reg, sources); err != nil {
			return err
		}

		if flagArchive {
			archivePath := filepath.Clean(dir) + ".tar.lz4"
			if err := archiveDir(dir, archivePath); err != nil {
				return fmt.Errorf("archiving %s: %w", dir, err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "dumped %s, archived to %s\n", dir, archivePath)
			return nil
		}

		fmt.Fprintf(cmd.OutOrStdout(), "dumped %s\n", dir)
		return nil
	},
}

func init() {
	dumpCmd.Flags().StringVar(&flagSourceDir, "sources", "", "directory of source files to scan for constant literals")
	dumpCmd.Flags().BoolVar(&flagArchive, "archive", false, "also write a .tar.lz4 archive of the dumped directory")
	rootCmd.AddCommand(dumpCmd)
}

// gatherSourceFiles walks root collecting every regular file as a
// heap.SourceFile for the dumper's constant-literal scan.
// This reads directly off the OS filesystem rather than through a Store,
// since the source tree being scanned is not itself the heap directory.
func gatherSourceFiles(root string) ([]heap.SourceFile, error) {
	var out []heap.SourceFile
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		data, err := os.ReadFile(path)
		if err != nil {
			return err
		}
		rel, err := filepath.Rel(root, path)
		if err != nil {
			rel = path
		}
		out = append(out, heap.SourceFile{Path: rel, Contents: data})
		return nil
	})
	return out, err
}

// archiveDir tars dir and lz4-compresses the result in one pass, an
// optional convenience the core dump format doesn't require.
func archiveDir(dir, archivePath string) error {
	out, err := os.Create(archivePath)
	if err != nil {
		return err
	}
	defer out.Close()

	zw := lz4.NewWriter(out)
	defer zw.Close()

	tw := tar.NewWriter(zw)
	defer tw.Close()

	return filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		rel, err := filepath.Rel(dir, path)
		if err != nil {
			return err
		}
		if rel == "." {
			return nil
		}
		info, err := d.Info()
		if err != nil {
			return err
		}
		hdr, err := tar.FileInfoHeader(info, "")
		if err != nil {
			return err
		}
		hdr.Name = rel
		if err := tw.WriteHeader(hdr); err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		data, err := os.ReadFile(path)
		if err != nil {
			return err
		}
		_, err = tw.Write(data)
		return err
	})
}
