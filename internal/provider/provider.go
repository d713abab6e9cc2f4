// Package provider defines the cloud client contracts the provisioning
// orchestrator consumes. Implementations live under internal/platform.
//
// Mutating calls return an [operation.Handle]; the orchestrator decides
// whether to return the submitted record or drive it to completion. Records
// use the google.golang.org/api container/v1 and compute/v1 types as the
// canonical shape for every backend.
package provider

import (
	"context"

	compute "google.golang.org/api/compute/v1"
	container "google.golang.org/api/container/v1"

	"github.com/imamik/gkectl/internal/address"
	"github.com/imamik/gkectl/internal/operation"
)

// ClusterAPI manages GKE clusters and node pools.
type ClusterAPI interface {
	CreateCluster(ctx context.Context, parent address.Address, cluster *container.Cluster) (operation.Handle, error)
	DeleteCluster(ctx context.Context, cluster address.Address) (operation.Handle, error)
	GetCluster(ctx context.Context, cluster address.Address) (*container.Cluster, error)
	ListClusters(ctx context.Context, parent address.Address) ([]*container.Cluster, error)

	CreateNodePool(ctx context.Context, cluster address.Address, pool *container.NodePool) (operation.Handle, error)
	DeleteNodePool(ctx context.Context, pool address.Address) (operation.Handle, error)
	ListNodePools(ctx context.Context, cluster address.Address) ([]*container.NodePool, error)
}

// ComputeAPI manages VM instances, addresses and VPC resources.
type ComputeAPI interface {
	InsertAddress(ctx context.Context, region string, addr *compute.Address) (operation.Handle, error)
	GetAddress(ctx context.Context, region, name string) (*compute.Address, error)
	DeleteAddress(ctx context.Context, region, name string) (operation.Handle, error)

	InsertInstance(ctx context.Context, zone string, inst *compute.Instance) (operation.Handle, error)
	GetInstance(ctx context.Context, zone, name string) (*compute.Instance, error)
	ListInstances(ctx context.Context, zone string) ([]*compute.Instance, error)
	StartInstance(ctx context.Context, zone, name string) (operation.Handle, error)
	StopInstance(ctx context.Context, zone, name string) (operation.Handle, error)
	ResetInstance(ctx context.Context, zone, name string) (operation.Handle, error)
	DeleteInstance(ctx context.Context, zone, name string) (operation.Handle, error)

	InsertNetwork(ctx context.Context, network *compute.Network) (operation.Handle, error)
	InsertSubnetwork(ctx context.Context, region string, subnet *compute.Subnetwork) (operation.Handle, error)
	InsertFirewall(ctx context.Context, firewall *compute.Firewall) (operation.Handle, error)
	InsertRoute(ctx context.Context, route *compute.Route) (operation.Handle, error)
}
