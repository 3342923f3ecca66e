// SPDX-License-Identifier: MPL-2.0

package main

import cmd "github.com/cfinfer/cfinfer/cmd/cfinfer"

func main() {
	cmd.Execute()
}
