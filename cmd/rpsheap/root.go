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
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

var (
	flagBackend   string
	flagS3Bucket  string
	flagS3Prefix  string
	flagVerbose   bool
	flagRootCount int
	rootLogger    = logrus.New()
)

// rootCmd is the base command for rpsheap: a multi-subcommand cobra
// root, with each subcommand registering itself from its own file.
var rootCmd = &cobra.Command{
	Use:   "rpsheap",
	Short: "Reflective persistent object heap loader/dumper",
	Long: `rpsheap loads and dumps the reflective persistent object heap: a
directory of text space files plus a manifest, reconstituted into an
in-memory graph of typed, globally identified objects.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		if flagVerbose {
			rootLogger.SetLevel(logrus.DebugLevel)
		}
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&flagBackend, "backend", "file", "storage backend: file, s3, or ceph")
	rootCmd.PersistentFlags().StringVar(&flagS3Bucket, "s3-bucket", "", "S3 bucket name (backend=s3)")
	rootCmd.PersistentFlags().StringVar(&flagS3Prefix, "s3-prefix", "", "S3 key prefix (backend=s3)")
	rootCmd.PersistentFlags().BoolVarP(&flagVerbose, "verbose", "v", false, "enable debug logging")
	rootCmd.PersistentFlags().IntVar(&flagRootCount, "root-count", -1,
		"expected number of global roots; -1 accepts whatever the manifest declares")
}

// newStore builds the Store backend selected by --backend, shared by every
// subcommand that touches a heap directory.
func newStore(dir string) (heap.Store, error) {
	switch flagBackend {
	case "", "file":
		return heap.NewFileStore(dir), nil
	case "s3":
		return heap.NewS3Store(heap.S3Config{Bucket: flagS3Bucket, Prefix: flagS3Prefix}), nil
	case "ceph":
		return heap.NewCephStore(heap.CephConfig{Pool: flagS3Bucket, Prefix: flagS3Prefix}), nil
	default:
		return nil, fmt.Errorf("unknown backend %q", flagBackend)
	}
}
