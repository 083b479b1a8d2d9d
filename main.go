// askdesk - terminal chat client for the campus assistant.
//
// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later
package main

import "github.com/jeranaias/askdesk/internal/cli"

func main() {
	cli.Execute()
}
