// Copyright © 2018 One Concern

package main

import (
	"github.com/oneconcern/depot/cmd/depot/cmd"
)

func main() {
	cmd.Execute()
}
