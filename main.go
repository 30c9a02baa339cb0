// SPDX-License-Identifier: MPL-2.0

package main

import "github.com/kakadu-engine/kbuild/cmd/kbuild"

func main() {
	cmd.Execute()
}
