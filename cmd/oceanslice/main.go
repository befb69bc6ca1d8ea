/*
Copyright © 2021 the OceanSlice authors.
This file is part of OceanSlice.

OceanSlice is free software: you can redistribute it and/or modify
it under the terms of the GNU General Public License as published by
the Free Software Foundation, either version 3 of the License, or
(at your option) any later version.

OceanSlice is distributed in the hope that it will be useful,
but WITHOUT ANY WARRANTY; without even the implied warranty of
MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
GNU General Public License for more details.

You should have received a copy of the GNU General Public License
along with OceanSlice.  If not, see <http://www.gnu.org/licenses/>.
*/

// Command oceanslice is a command-line interface for subsetting and
// plotting ocean model output.
package main

import (
	"fmt"
	"os"

	"github.com/spatialmodel/oceanslice/oceanutil"
)

func main() {
	cfg := oceanutil.InitializeConfig()
	if err := cfg.Root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
