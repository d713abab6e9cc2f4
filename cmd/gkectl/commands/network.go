package commands

import (
	"github.com/spf13/cobra"

	"github.com/imamik/gkectl/cmd/gkectl/handlers"
	"github.com/imamik/gkectl/internal/provisioning"
)

// Network returns the command group for VPC resources.
func Network(g *handlers.Globals) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "network",
		Short: "Create VPC networks, subnetworks, addresses, firewall rules and routes",
	}
	cmd.AddCommand(networkCreate(g, "vpc", handlers.KindVPC, "Create a VPC network",
		"name, description, autoCreateSubnetworks"))
	cmd.AddCommand(networkCreate(g, "subnet", handlers.KindSubnet, "Create a subnetwork",
		"network, name, region, range, description, privateIpGoogleAccess, enableFlowLogs"))
	cmd.AddCommand(networkCreate(g, "reserve-ip", handlers.KindReserveIP, "Reserve an internal address",
		"name, region, subnet, address"))
	cmd.AddCommand(networkCreate(g, "firewall", handlers.KindFirewall, "Create a firewall rule",
		"network, name, priority, direction, action, ipRange, protocol, ports"))
	cmd.AddCommand(networkCreate(g, "route", handlers.KindRoute, "Create a static route",
		"network, name, nextHopIp, destRange, priority, tags"))
	return cmd
}

func networkCreate(g *handlers.Globals, use, kind, short, keys string) *cobra.Command {
	var (
		params handlers.ParamFlags
		wait   bool
	)

	cmd := &cobra.Command{
		Use:   use,
		Short: short,
		Long:  short + ".\n\nParameters: " + keys + ".",
		Args:  cobra.NoArgs,
		RunE: runE(g, func(cmd *cobra.Command, _ []string) error {
			return handlers.Create(cmd.Context(), *g, kind, params, "", provisioning.Target{}, wait)
		}),
	}

	paramFlags(cmd, &params)
	cmd.Flags().BoolVar(&wait, "wait", false, "Wait for the operation to finish")
	return cmd
}
