package commands

import (
	"github.com/spf13/cobra"

	"github.com/imamik/gkectl/cmd/gkectl/handlers"
	"github.com/imamik/gkectl/internal/provisioning"
)

// ServiceAccount returns the command group for Kubernetes service accounts.
func ServiceAccount(g *handlers.Globals) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "service-account",
		Aliases: []string{"sa"},
		Short:   "Manage Kubernetes service accounts in a cluster",
	}
	cmd.AddCommand(serviceAccountCreate(g))
	return cmd
}

func serviceAccountCreate(g *handlers.Globals) *cobra.Command {
	var (
		params     handlers.ParamFlags
		target     provisioning.Target
		keyFile    string
		kubeconfig string
	)

	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create a service account bound to a cluster role",
		Long: `Create a Kubernetes service account bound to a cluster role and print
its token, the cluster CA and the API endpoint.

kubectl runs inside the configured CLI container, logged in with the Google
service account key given by --key-file. Without a namespace the role is
bound cluster wide.

Parameters: name, clusterRole, namespace, roleBinding.

Examples:
  gkectl service-account create --cluster prod --zone europe-west1-b \
    --key-file key.json --set name=deployer --set clusterRole=edit \
    --set namespace=apps --kubeconfig deployer.kubeconfig`,
		Args: cobra.NoArgs,
		RunE: runE(g, func(cmd *cobra.Command, _ []string) error {
			return handlers.CreateServiceAccount(cmd.Context(), *g, keyFile, target, params, kubeconfig)
		}),
	}

	paramFlags(cmd, &params)
	targetFlags(cmd, &target.Region, &target.Zone)
	cmd.Flags().StringVar(&target.Cluster, "cluster", "", "Cluster to create the account in")
	_ = cmd.MarkFlagRequired("cluster")
	cmd.Flags().StringVar(&keyFile, "key-file", "", "Google service account JSON key used by the CLI container")
	_ = cmd.MarkFlagRequired("key-file")
	cmd.Flags().StringVar(&kubeconfig, "kubeconfig", "", "Write a kubeconfig for the new account to this path")
	return cmd
}
