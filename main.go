// main package for cachesnap command-line tool
// Package main is the entry point for the cachesnap CLI.
package main

import "cachesnap.dev/pkg/cachesnap/cmd"

func main() {
	cmd.Execute()
}
