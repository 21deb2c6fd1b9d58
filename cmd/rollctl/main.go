/*
Package main is the entry point for rollctl, the offline administration
tool for a voterroll database.

Usage:

	rollctl [command]

Available Commands:

	import-voters  Load an electoral roll from a CSV file
	add-user       Create a canvasser or admin account
	search         Search the roll the way the API does
	export-pdf     Write the canvassing progress report

Examples:

	# Replace the roll with a fresh export
	rollctl --db-dsn ./voters.db import-voters roll.csv --replace

	# Create the first admin
	rollctl --db-dsn ./voters.db add-user admin --admin
*/
package main

import (
	"fmt"
	"os"
)

// Version information (set via ldflags during build)
var version = "dev"

func main() {
	if err := NewRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
