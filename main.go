// Copyright (c) HashiCorp, Inc.
// SPDX-License-Identifier: MPL-2.0

package main

import "github.com/baitcode/starknet-deploy/cmd"

func main() {
	cmd.Execute()
}
