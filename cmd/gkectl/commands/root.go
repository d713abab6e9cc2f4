// Package commands defines the CLI command structure and flag bindings.
//
// This package contains cobra command definitions that handle argument parsing,
// flag binding, and validation. Command execution is delegated to handler
// functions in the handlers package.
package commands

import (
	"errors"

	"github.com/spf13/cobra"

	"github.com/imamik/gkectl/cmd/gkectl/handlers"
)

// Root returns the root command for the gkectl CLI.
//
// The root command carries the flags every subcommand shares: configuration
// file, project, logging and output format.
func Root() *cobra.Command {
	g := &handlers.Globals{}

	cmd := &cobra.Command{
		Use:   "gkectl",
		Short: "Provision GKE clusters and Compute Engine resources",
		Long: `Provision GKE clusters, node pools, Compute Engine instances and VPC
resources, and follow the long-running operations they start.

Configuration is read from gkectl.yaml in the current directory or any
parent directory unless --config is given.`,
		SilenceUsage: true,
	}

	flags := cmd.PersistentFlags()
	flags.StringVarP(&g.ConfigPath, "config", "c", "", "Path to configuration file (default: gkectl.yaml)")
	flags.StringVar(&g.Project, "project", "", "Project ID, overrides the configuration file")
	flags.CountVarP(&g.Verbosity, "verbose", "v", "Increase log verbosity (repeatable)")
	flags.StringVar(&g.LogFormat, "log-format", "auto", "Log format: auto, console or json")
	flags.StringVarP(&g.Output, "output", "o", handlers.OutputJSON, "Result format: json or yaml")
	flags.StringVar(&g.MetricsTextfile, "metrics-textfile", "", "Write Prometheus metrics to this file on exit")

	// Provisioning commands
	cmd.AddCommand(Cluster(g))
	cmd.AddCommand(NodePool(g))
	cmd.AddCommand(VM(g))
	cmd.AddCommand(Network(g))
	cmd.AddCommand(ServiceAccount(g))
	cmd.AddCommand(Apply(g))

	// Utility commands
	cmd.AddCommand(Version())
	cmd.AddCommand(Completion())

	return cmd
}

// runE wraps a handler call so the metrics file is written whether or not
// the command succeeded.
func runE(g *handlers.Globals, run func(cmd *cobra.Command, args []string) error) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) error {
		err := run(cmd, args)
		if merr := handlers.WriteMetrics(g.MetricsTextfile); merr != nil {
			return errors.Join(err, merr)
		}
		return err
	}
}

// targetFlags binds the location and cluster flags shared by most commands.
func targetFlags(cmd *cobra.Command, region, zone *string) {
	cmd.Flags().StringVar(region, "region", "", "Region (regional location)")
	cmd.Flags().StringVar(zone, "zone", "", "Zone (zonal location)")
	cmd.MarkFlagsMutuallyExclusive("region", "zone")
}

// paramFlags binds --params and --set.
func paramFlags(cmd *cobra.Command, p *handlers.ParamFlags) {
	cmd.Flags().StringVarP(&p.File, "params", "f", "", "YAML file of key/value parameters")
	cmd.Flags().StringArrayVar(&p.Sets, "set", nil, "Set a parameter as key=value (repeatable, overrides --params)")
}
