package provisioning

import (
	"context"
	"fmt"
	"strings"

	container "google.golang.org/api/container/v1"
	clientcmdapi "k8s.io/client-go/tools/clientcmd/api"

	"github.com/imamik/gkectl/internal/address"
	"github.com/imamik/gkectl/internal/kubeconfig"
	"github.com/imamik/gkectl/internal/operation"
	"github.com/imamik/gkectl/internal/spec"
	"github.com/imamik/gkectl/internal/util/naming"
)

// defaultScheme is prefixed to endpoints reported without one.
const defaultScheme = "https://"

// Credentials are the values needed to reach a cluster's API server.
type Credentials struct {
	Cluster   address.Address `json:"-"`
	Endpoint  string          `json:"endpoint"`
	CAData    string          `json:"certificateAuthorityData"`
	Token     string          `json:"token,omitempty"`
	Namespace string          `json:"namespace,omitempty"`
}

// Kubeconfig returns a single-context kubeconfig named the way gcloud names
// cluster contexts. Without a token the context uses the gcloud auth plugin.
func (c *Credentials) Kubeconfig() (*clientcmdapi.Config, error) {
	return kubeconfig.Build(kubeconfig.Params{
		Name:      naming.KubeconfigContext(c.Cluster.Project, c.Cluster.Location.Value, c.Cluster.Cluster),
		Endpoint:  c.Endpoint,
		CAData:    c.CAData,
		Token:     c.Token,
		Namespace: c.Namespace,
	})
}

// EnsureScheme prefixes https:// to an endpoint without a scheme.
func EnsureScheme(endpoint string) string {
	if endpoint == "" || strings.Contains(endpoint, "://") {
		return endpoint
	}
	return defaultScheme + endpoint
}

// CreateBasicCluster creates a cluster with a default node pool built from
// the same parameters.
func (o *Orchestrator) CreateBasicCluster(ctx context.Context, p spec.ClusterParams, wait bool) (*operation.Operation, error) {
	doc, parent, err := spec.BuildCluster(o.project, p)
	if err != nil {
		return nil, err
	}
	return o.createCluster(ctx, parent, doc, wait)
}

// CreateClusterFromDocument creates a cluster from a caller-supplied
// container/v1 Cluster document in the target location.
func (o *Orchestrator) CreateClusterFromDocument(ctx context.Context, t Target, doc spec.Document, wait bool) (*operation.Operation, error) {
	parent, err := t.location(o.project)
	if err != nil {
		return nil, err
	}
	return o.createCluster(ctx, parent, spec.Prune(doc), wait)
}

func (o *Orchestrator) createCluster(ctx context.Context, parent address.Address, doc spec.Document, wait bool) (*operation.Operation, error) {
	cluster := &container.Cluster{}
	if err := doc.Decode(cluster); err != nil {
		return nil, err
	}
	resource := parent.Parent() + "/clusters/" + cluster.Name
	return o.track(ctx, kindCluster, resource, wait, func() (operation.Handle, error) {
		return o.clusters.CreateCluster(ctx, parent, cluster)
	})
}

// DeleteCluster deletes the target cluster and its node pools.
func (o *Orchestrator) DeleteCluster(ctx context.Context, t Target, wait bool) (*operation.Operation, error) {
	addr, err := t.cluster(o.project)
	if err != nil {
		return nil, err
	}
	return o.track(ctx, kindCluster, addr.String(), wait, func() (operation.Handle, error) {
		return o.clusters.DeleteCluster(ctx, addr)
	})
}

// DescribeCluster returns the target cluster.
func (o *Orchestrator) DescribeCluster(ctx context.Context, t Target) (*container.Cluster, error) {
	addr, err := t.cluster(o.project)
	if err != nil {
		return nil, err
	}
	return o.clusters.GetCluster(ctx, addr)
}

// ListClusters returns the clusters in the target location.
func (o *Orchestrator) ListClusters(ctx context.Context, t Target) ([]*container.Cluster, error) {
	parent, err := t.location(o.project)
	if err != nil {
		return nil, err
	}
	return o.clusters.ListClusters(ctx, parent)
}

// ClusterCredentials returns the API server endpoint and CA of the target
// cluster. The endpoint always carries a scheme.
func (o *Orchestrator) ClusterCredentials(ctx context.Context, t Target) (*Credentials, error) {
	addr, err := t.cluster(o.project)
	if err != nil {
		return nil, err
	}
	cluster, err := o.clusters.GetCluster(ctx, addr)
	if err != nil {
		return nil, err
	}
	if cluster.Endpoint == "" {
		return nil, fmt.Errorf("cluster %s has no endpoint yet (status %s)", addr, cluster.Status)
	}
	creds := &Credentials{Cluster: addr, Endpoint: EnsureScheme(cluster.Endpoint)}
	if cluster.MasterAuth != nil {
		creds.CAData = cluster.MasterAuth.ClusterCaCertificate
	}
	return creds, nil
}

// CreateNodePool adds a node pool to the target cluster.
func (o *Orchestrator) CreateNodePool(ctx context.Context, t Target, p spec.NodePoolParams, wait bool) (*operation.Operation, error) {
	if t.Cluster == "" {
		return nil, spec.MissingCluster()
	}
	addr, err := t.cluster(o.project)
	if err != nil {
		return nil, err
	}
	doc, err := spec.BuildNodePool(p)
	if err != nil {
		return nil, err
	}
	return o.createNodePool(ctx, addr, doc, wait)
}

// CreateNodePoolFromDocument adds a node pool described by a caller-supplied
// container/v1 NodePool document to the target cluster.
func (o *Orchestrator) CreateNodePoolFromDocument(ctx context.Context, t Target, doc spec.Document, wait bool) (*operation.Operation, error) {
	if t.Cluster == "" {
		return nil, spec.MissingCluster()
	}
	addr, err := t.cluster(o.project)
	if err != nil {
		return nil, err
	}
	return o.createNodePool(ctx, addr, spec.Prune(doc), wait)
}

func (o *Orchestrator) createNodePool(ctx context.Context, cluster address.Address, doc spec.Document, wait bool) (*operation.Operation, error) {
	pool := &container.NodePool{}
	if err := doc.Decode(pool); err != nil {
		return nil, err
	}
	resource := cluster.String() + "/nodePools/" + pool.Name
	return o.track(ctx, kindNodePool, resource, wait, func() (operation.Handle, error) {
		return o.clusters.CreateNodePool(ctx, cluster, pool)
	})
}

// DeleteNodePool removes the target node pool.
func (o *Orchestrator) DeleteNodePool(ctx context.Context, t Target, wait bool) (*operation.Operation, error) {
	if t.Cluster == "" {
		return nil, spec.MissingCluster()
	}
	addr, err := t.nodePool(o.project)
	if err != nil {
		return nil, err
	}
	return o.track(ctx, kindNodePool, addr.String(), wait, func() (operation.Handle, error) {
		return o.clusters.DeleteNodePool(ctx, addr)
	})
}

// ListNodePools returns the node pools of the target cluster.
func (o *Orchestrator) ListNodePools(ctx context.Context, t Target) ([]*container.NodePool, error) {
	addr, err := t.cluster(o.project)
	if err != nil {
		return nil, err
	}
	return o.clusters.ListNodePools(ctx, addr)
}
