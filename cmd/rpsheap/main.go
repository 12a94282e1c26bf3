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

// Command rpsheap drives the reflective persistent object heap from the
// shell: load a heap directory, dump it back out, watch it for external
// changes, verify its invariants, or print size statistics.
package main

import "os"

func main() {
	if err := rootCmd.Execute(); err != nil {
		rootLogger.Error(err)
		os.Exit(1)
	}
}
