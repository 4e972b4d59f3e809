// SPDX-FileCopyrightText: 2023 Comcast Cable Communications Management, LLC
// SPDX-License-Identifier: Apache-2.0

// Command postald serves a post collection over HTTP.
package main

import (
	"fmt"
	"os"

	"github.com/xmidt-org/postal/internal/appfx"
)

func main() {
	err := run(os.Args[1:])
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
	}

	os.Exit(appfx.ExitCode(err))
}
