package handlers

import (
	"context"
	"fmt"

	"github.com/imamik/gkectl/internal/kubeconfig"
	"github.com/imamik/gkectl/internal/provisioning"
)

// writeKubeconfig writes a kubeconfig for creds to path.
var writeKubeconfig = func(creds *provisioning.Credentials, path string) error {
	cfg, err := creds.Kubeconfig()
	if err != nil {
		return err
	}
	return kubeconfig.WriteFile(cfg, path)
}

// DeleteCluster deletes the cluster named by target and prints the operation.
func DeleteCluster(ctx context.Context, g Globals, target provisioning.Target, wait bool) error {
	ctx, sess, err := setup(ctx, g, scopeClusters)
	if err != nil {
		return err
	}
	defer sess.close()

	op, err := sess.orchestrator.DeleteCluster(ctx, target, wait)
	if err != nil {
		return err
	}
	return printResult(sess.output, op)
}

// DescribeCluster prints the cluster named by target.
func DescribeCluster(ctx context.Context, g Globals, target provisioning.Target) error {
	ctx, sess, err := setup(ctx, g, scopeClusters)
	if err != nil {
		return err
	}
	defer sess.close()

	cluster, err := sess.orchestrator.DescribeCluster(ctx, target)
	if err != nil {
		return err
	}
	return printResult(sess.output, cluster)
}

// ListClusters prints the clusters in the target location.
func ListClusters(ctx context.Context, g Globals, target provisioning.Target) error {
	ctx, sess, err := setup(ctx, g, scopeClusters)
	if err != nil {
		return err
	}
	defer sess.close()

	clusters, err := sess.orchestrator.ListClusters(ctx, target)
	if err != nil {
		return err
	}
	return printResult(sess.output, clusters)
}

// ClusterCredentials prints the CA certificate and endpoint of a cluster.
// With a kubeconfig path the credentials are also written there.
func ClusterCredentials(ctx context.Context, g Globals, target provisioning.Target, kubeconfigPath string) error {
	ctx, sess, err := setup(ctx, g, scopeClusters)
	if err != nil {
		return err
	}
	defer sess.close()

	creds, err := sess.orchestrator.ClusterCredentials(ctx, target)
	if err != nil {
		return err
	}
	if kubeconfigPath != "" {
		if err := writeKubeconfig(creds, kubeconfigPath); err != nil {
			return fmt.Errorf("failed to write kubeconfig: %w", err)
		}
		sess.logger.Info("kubeconfig written", "path", kubeconfigPath)
	}
	return printResult(sess.output, creds)
}

// DeleteNodePool deletes the node pool named by target and prints the operation.
func DeleteNodePool(ctx context.Context, g Globals, target provisioning.Target, wait bool) error {
	ctx, sess, err := setup(ctx, g, scopeClusters)
	if err != nil {
		return err
	}
	defer sess.close()

	op, err := sess.orchestrator.DeleteNodePool(ctx, target, wait)
	if err != nil {
		return err
	}
	return printResult(sess.output, op)
}

// ListNodePools prints the node pools of the target cluster.
func ListNodePools(ctx context.Context, g Globals, target provisioning.Target) error {
	ctx, sess, err := setup(ctx, g, scopeClusters)
	if err != nil {
		return err
	}
	defer sess.close()

	pools, err := sess.orchestrator.ListNodePools(ctx, target)
	if err != nil {
		return err
	}
	return printResult(sess.output, pools)
}
