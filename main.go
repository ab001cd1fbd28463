// Package main is the entry point for the scour CLI.
package main

import "scour.dev/pkg/scour/cmd"

func main() {
	cmd.Execute()
}
