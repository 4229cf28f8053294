// Package main is the entry point for the nbapts CLI tool, which builds
// rolling NBA player features and predicts points for upcoming matchups.
package main

import "github.com/pable/nba-points/cmd"

func main() {
	cmd.Execute()
}
