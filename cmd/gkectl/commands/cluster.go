package commands

import (
	"github.com/spf13/cobra"

	"github.com/imamik/gkectl/cmd/gkectl/handlers"
	"github.com/imamik/gkectl/internal/provisioning"
)

// Cluster returns the command group for GKE clusters.
func Cluster(g *handlers.Globals) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "cluster",
		Short: "Manage GKE clusters",
	}
	cmd.AddCommand(clusterCreate(g))
	cmd.AddCommand(clusterDelete(g))
	cmd.AddCommand(clusterDescribe(g))
	cmd.AddCommand(clusterList(g))
	cmd.AddCommand(clusterCredentials(g))
	return cmd
}

func clusterCreate(g *handlers.Globals) *cobra.Command {
	var (
		params   handlers.ParamFlags
		target   provisioning.Target
		document string
		wait     bool
	)

	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create a cluster",
		Long: `Create a GKE cluster with a default node pool.

The cluster is described either by flat parameters (--params / --set) or by
a complete container/v1 Cluster document (--from-file). A document reference
is inline JSON, a file path or an s3://bucket/key URL; its location comes
from --region or --zone.

Examples:
  # Zonal cluster with three e2-medium nodes
  gkectl cluster create --set name=prod --set locationType=Zonal \
    --set zone=europe-west1-b --set version=1.30 --set numberOfNodes=3 \
    --set machineType=e2-medium

  # Regional cluster from a document, waiting for it to be ready
  gkectl cluster create --from-file cluster.json --region europe-west1 --wait`,
		Args: cobra.NoArgs,
		RunE: runE(g, func(cmd *cobra.Command, _ []string) error {
			return handlers.Create(cmd.Context(), *g, handlers.KindCluster, params, document, target, wait)
		}),
	}

	paramFlags(cmd, &params)
	targetFlags(cmd, &target.Region, &target.Zone)
	cmd.Flags().StringVar(&document, "from-file", "", "Cluster document: inline JSON, file path or s3://bucket/key")
	cmd.Flags().BoolVar(&wait, "wait", false, "Wait for the operation to finish")
	cmd.MarkFlagsMutuallyExclusive("from-file", "set")
	cmd.MarkFlagsMutuallyExclusive("from-file", "params")
	return cmd
}

func clusterDelete(g *handlers.Globals) *cobra.Command {
	var (
		target provisioning.Target
		wait   bool
	)

	cmd := &cobra.Command{
		Use:   "delete NAME",
		Short: "Delete a cluster",
		Args:  cobra.ExactArgs(1),
		RunE: runE(g, func(cmd *cobra.Command, args []string) error {
			target.Cluster = args[0]
			return handlers.DeleteCluster(cmd.Context(), *g, target, wait)
		}),
	}

	targetFlags(cmd, &target.Region, &target.Zone)
	cmd.Flags().BoolVar(&wait, "wait", false, "Wait for the operation to finish")
	return cmd
}

func clusterDescribe(g *handlers.Globals) *cobra.Command {
	var target provisioning.Target

	cmd := &cobra.Command{
		Use:   "describe NAME",
		Short: "Show a cluster",
		Args:  cobra.ExactArgs(1),
		RunE: runE(g, func(cmd *cobra.Command, args []string) error {
			target.Cluster = args[0]
			return handlers.DescribeCluster(cmd.Context(), *g, target)
		}),
	}

	targetFlags(cmd, &target.Region, &target.Zone)
	return cmd
}

func clusterList(g *handlers.Globals) *cobra.Command {
	var target provisioning.Target

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List clusters in a location",
		Args:  cobra.NoArgs,
		RunE: runE(g, func(cmd *cobra.Command, _ []string) error {
			return handlers.ListClusters(cmd.Context(), *g, target)
		}),
	}

	targetFlags(cmd, &target.Region, &target.Zone)
	return cmd
}

func clusterCredentials(g *handlers.Globals) *cobra.Command {
	var (
		target     provisioning.Target
		kubeconfig string
	)

	cmd := &cobra.Command{
		Use:   "credentials NAME",
		Short: "Show the CA certificate and endpoint of a cluster",
		Long: `Show the CA certificate and API endpoint of a cluster.

With --kubeconfig a kubeconfig using the gke-gcloud-auth-plugin is written.`,
		Args: cobra.ExactArgs(1),
		RunE: runE(g, func(cmd *cobra.Command, args []string) error {
			target.Cluster = args[0]
			return handlers.ClusterCredentials(cmd.Context(), *g, target, kubeconfig)
		}),
	}

	targetFlags(cmd, &target.Region, &target.Zone)
	cmd.Flags().StringVar(&kubeconfig, "kubeconfig", "", "Write a kubeconfig to this path")
	return cmd
}
