//go:build cli
// +build cli

package main

import (
	_ "vitastore.GO/custom"

	"vitastore.GO/cmd"
	"vitastore.GO/config"
)

func main() {
	config.LoadEnv()
	cmd.Execute()
}
