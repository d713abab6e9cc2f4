package commands

import (
	"github.com/spf13/cobra"

	"github.com/imamik/gkectl/cmd/gkectl/handlers"
	"github.com/imamik/gkectl/internal/provisioning"
)

// NodePool returns the command group for node pools.
func NodePool(g *handlers.Globals) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "nodepool",
		Aliases: []string{"node-pool", "np"},
		Short:   "Manage node pools of a GKE cluster",
	}
	cmd.AddCommand(nodePoolCreate(g))
	cmd.AddCommand(nodePoolDelete(g))
	cmd.AddCommand(nodePoolList(g))
	return cmd
}

// clusterFlag binds --cluster, which node pool commands require.
func clusterFlag(cmd *cobra.Command, cluster *string) {
	cmd.Flags().StringVar(cluster, "cluster", "", "Cluster the node pool belongs to")
	_ = cmd.MarkFlagRequired("cluster")
}

func nodePoolCreate(g *handlers.Globals) *cobra.Command {
	var (
		params   handlers.ParamFlags
		target   provisioning.Target
		document string
		wait     bool
	)

	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create a node pool",
		Long: `Create a node pool in an existing cluster.

Required parameters are name, numberOfNodes and machineType, plus
customMachineCpuCount and customMachineMem for custom machine types.
Alternatively pass a container/v1 NodePool document with --from-file.

Examples:
  gkectl nodepool create --cluster prod --zone europe-west1-b \
    --set name=workers --set numberOfNodes=3 --set machineType=n2-custom \
    --set customMachineCpuCount=4 --set customMachineMem=16384`,
		Args: cobra.NoArgs,
		RunE: runE(g, func(cmd *cobra.Command, _ []string) error {
			return handlers.Create(cmd.Context(), *g, handlers.KindNodePool, params, document, target, wait)
		}),
	}

	paramFlags(cmd, &params)
	targetFlags(cmd, &target.Region, &target.Zone)
	clusterFlag(cmd, &target.Cluster)
	cmd.Flags().StringVar(&document, "from-file", "", "Node pool document: inline JSON, file path or s3://bucket/key")
	cmd.Flags().BoolVar(&wait, "wait", false, "Wait for the operation to finish")
	cmd.MarkFlagsMutuallyExclusive("from-file", "set")
	cmd.MarkFlagsMutuallyExclusive("from-file", "params")
	return cmd
}

func nodePoolDelete(g *handlers.Globals) *cobra.Command {
	var (
		target provisioning.Target
		wait   bool
	)

	cmd := &cobra.Command{
		Use:   "delete NAME",
		Short: "Delete a node pool",
		Args:  cobra.ExactArgs(1),
		RunE: runE(g, func(cmd *cobra.Command, args []string) error {
			target.NodePool = args[0]
			return handlers.DeleteNodePool(cmd.Context(), *g, target, wait)
		}),
	}

	targetFlags(cmd, &target.Region, &target.Zone)
	clusterFlag(cmd, &target.Cluster)
	cmd.Flags().BoolVar(&wait, "wait", false, "Wait for the operation to finish")
	return cmd
}

func nodePoolList(g *handlers.Globals) *cobra.Command {
	var target provisioning.Target

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List the node pools of a cluster",
		Args:  cobra.NoArgs,
		RunE: runE(g, func(cmd *cobra.Command, _ []string) error {
			return handlers.ListNodePools(cmd.Context(), *g, target)
		}),
	}

	targetFlags(cmd, &target.Region, &target.Zone)
	clusterFlag(cmd, &target.Cluster)
	return cmd
}
