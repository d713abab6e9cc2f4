package commands

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/imamik/gkectl/cmd/gkectl/handlers"
	"github.com/imamik/gkectl/internal/provisioning"
)

// VM returns the command group for Compute Engine instances.
func VM(g *handlers.Globals) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "vm",
		Aliases: []string{"instance"},
		Short:   "Manage Compute Engine instances",
	}
	cmd.AddCommand(vmLaunch(g))
	cmd.AddCommand(vmAction(g))
	cmd.AddCommand(vmList(g))
	return cmd
}

func vmLaunch(g *handlers.Globals) *cobra.Command {
	var (
		params handlers.ParamFlags
		wait   bool
	)

	cmd := &cobra.Command{
		Use:   "launch",
		Short: "Create an instance",
		Long: `Create a Compute Engine instance.

With autoCreateStaticIP=true an external address named <name>-ext-addr is
reserved and attached first. If the instance cannot be created the address
is released again.

Examples:
  gkectl vm launch --set name=web-1 --set zone=europe-west1-b \
    --set machineType=e2-small --set sourceImage=projects/debian-cloud/global/images/family/debian-12 \
    --set autoCreateStaticIP=true --set tags=web,prod --wait`,
		Args: cobra.NoArgs,
		RunE: runE(g, func(cmd *cobra.Command, _ []string) error {
			return handlers.Create(cmd.Context(), *g, handlers.KindVM, params, "", provisioning.Target{}, wait)
		}),
	}

	paramFlags(cmd, &params)
	cmd.Flags().BoolVar(&wait, "wait", false, "Wait for the operation to finish")
	return cmd
}

func vmAction(g *handlers.Globals) *cobra.Command {
	var (
		zone string
		wait bool
	)

	names := make([]string, 0, len(provisioning.VMActions))
	for _, a := range provisioning.VMActions {
		names = append(names, string(a))
	}

	cmd := &cobra.Command{
		Use:   "action ACTION NAME",
		Short: "Run an action on an instance",
		Long: fmt.Sprintf(`Run an action on an instance. ACTION is one of %s.

Delete stops the instance and waits for it to stop before deleting it.`, strings.Join(names, ", ")),
		Args:      cobra.ExactArgs(2),
		ValidArgs: names,
		RunE: runE(g, func(cmd *cobra.Command, args []string) error {
			return handlers.VMAction(cmd.Context(), *g, args[0], zone, args[1], wait)
		}),
	}

	cmd.Flags().StringVar(&zone, "zone", "", "Zone of the instance")
	_ = cmd.MarkFlagRequired("zone")
	cmd.Flags().BoolVar(&wait, "wait", false, "Wait for the operation to finish")
	return cmd
}

func vmList(g *handlers.Globals) *cobra.Command {
	var zone string

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List instances in a zone",
		Args:  cobra.NoArgs,
		RunE: runE(g, func(cmd *cobra.Command, _ []string) error {
			return handlers.ListInstances(cmd.Context(), *g, zone)
		}),
	}

	cmd.Flags().StringVar(&zone, "zone", "", "Zone to list")
	_ = cmd.MarkFlagRequired("zone")
	return cmd
}
