// Package main is the entry point for the gkectl CLI.
//
// gkectl provisions GKE clusters, node pools, Compute Engine instances and
// VPC resources, and follows the long-running operations they start until
// they finish.
//
// Commands: cluster, nodepool, vm, network, service-account, apply.
//
// For detailed usage information, run:
//
//	gkectl --help
package main

import (
	"fmt"
	"os"

	"github.com/imamik/gkectl/cmd/gkectl/commands"
)

// Version information set at build time.
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

func main() {
	commands.SetVersionInfo(version, commit, date)
	if err := commands.Root().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
