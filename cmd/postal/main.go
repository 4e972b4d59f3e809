// SPDX-FileCopyrightText: 2023 Comcast Cable Communications Management, LLC
// SPDX-License-Identifier: Apache-2.0

// Command postal is a command line client for a remote post collection.
//
//	postal [flags] list|get <id>|create|update <id>|delete <id>|comments <id>|watch
package main

import "os"

func main() {
	os.Exit(run(os.Args[1:], os.Stdin, os.Stdout, os.Stderr))
}
