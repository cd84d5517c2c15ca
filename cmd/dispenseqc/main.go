/*
Copyright © 2026 the dispenseqc authors.
This file is part of dispenseqc.

dispenseqc is free software: you can redistribute it and/or modify
it under the terms of the GNU General Public License as published by
the Free Software Foundation, either version 3 of the License, or
(at your option) any later version.

dispenseqc is distributed in the hope that it will be useful,
but WITHOUT ANY WARRANTY; without even the implied warranty of
MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
GNU General Public License for more details.

You should have received a copy of the GNU General Public License
along with dispenseqc.  If not, see <http://www.gnu.org/licenses/>.
*/


// Command dispenseqc is a command-line interface for dispenser quality
// control from plate-reader exports.
package main

import (
	"fmt"
	"os"

	"github.com/dispenseqc/dispenseqc/qcutil"
)

func main() {
	cfg := qcutil.InitializeConfig()
	if err := cfg.Root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
