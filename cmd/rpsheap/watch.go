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
	"os/signal"
	"syscall"

	"github.com/refpersys/rpsheap/heap"
	"github.com/spf13/cobra"
)

var watchCmd = &cobra.Command{
	Use:   "watch <dir>",
	Short: "Watch a heap directory and reload it whenever it changes on disk",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		dir := args[0]
		out := cmd.OutOrStdout()

		reload := func() {
			reg, err := loadRegistry(cmd, dir)
			if err != nil {
				fmt.Fprintf(out, "reload failed: %v\n", err)
				return
			}
			fmt.Fprintf(out, "reloaded %s: %d objects\n", dir, reg.Size())
		}
		reload()

		dw, err := heap.WatchDir(dir, reload)
		if err != nil {
			return err
		}
		defer dw.Close()

		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
		fmt.Fprintf(out, "watching %s, press ctrl-c to stop\n", dir)
		<-sigCh
		return nil
	},
}

func init() {
	rootCmd.AddCommand(watchCmd)
}
