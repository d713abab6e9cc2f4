package gcp

import (
	"context"

	container "google.golang.org/api/container/v1"

	"github.com/imamik/gkectl/internal/address"
	"github.com/imamik/gkectl/internal/operation"
	"github.com/imamik/gkectl/internal/provider"
)

// Zonal addresses go through the projects.zones API, regional ones through
// projects.locations, so that operations are read back from the same scope.

// CreateCluster submits a cluster under parent.
func (c *Client) CreateCluster(ctx context.Context, parent address.Address, cluster *container.Cluster) (operation.Handle, error) {
	req := &container.CreateClusterRequest{Cluster: cluster}
	var (
		op  *container.Operation
		err error
	)
	if parent.Zonal() {
		op, err = c.container.Projects.Zones.Clusters.Create(parent.Project, parent.Location.Value, req).Context(ctx).Do()
	} else {
		op, err = c.container.Projects.Locations.Clusters.Create(parent.Parent(), req).Context(ctx).Do()
	}
	if err != nil {
		return nil, provider.WrapRequestError("clusters.create", parent.String(), err)
	}
	return c.gkeHandle(parent, op), nil
}

// DeleteCluster submits a cluster deletion.
func (c *Client) DeleteCluster(ctx context.Context, cluster address.Address) (operation.Handle, error) {
	var (
		op  *container.Operation
		err error
	)
	if cluster.Zonal() {
		op, err = c.container.Projects.Zones.Clusters.Delete(cluster.Project, cluster.Location.Value, cluster.Cluster).Context(ctx).Do()
	} else {
		op, err = c.container.Projects.Locations.Clusters.Delete(cluster.ClusterPath()).Context(ctx).Do()
	}
	if err != nil {
		return nil, provider.WrapRequestError("clusters.delete", cluster.String(), err)
	}
	return c.gkeHandle(cluster, op), nil
}

// GetCluster describes a cluster.
func (c *Client) GetCluster(ctx context.Context, cluster address.Address) (*container.Cluster, error) {
	var (
		out *container.Cluster
		err error
	)
	if cluster.Zonal() {
		out, err = c.container.Projects.Zones.Clusters.Get(cluster.Project, cluster.Location.Value, cluster.Cluster).Context(ctx).Do()
	} else {
		out, err = c.container.Projects.Locations.Clusters.Get(cluster.ClusterPath()).Context(ctx).Do()
	}
	if err != nil {
		return nil, provider.WrapRequestError("clusters.get", cluster.String(), err)
	}
	return out, nil
}

// ListClusters lists the clusters in a location.
func (c *Client) ListClusters(ctx context.Context, parent address.Address) ([]*container.Cluster, error) {
	var (
		resp *container.ListClustersResponse
		err  error
	)
	if parent.Zonal() {
		resp, err = c.container.Projects.Zones.Clusters.List(parent.Project, parent.Location.Value).Context(ctx).Do()
	} else {
		resp, err = c.container.Projects.Locations.Clusters.List(parent.Parent()).Context(ctx).Do()
	}
	if err != nil {
		return nil, provider.WrapRequestError("clusters.list", parent.Parent(), err)
	}
	return resp.Clusters, nil
}

// CreateNodePool submits a node pool under cluster.
func (c *Client) CreateNodePool(ctx context.Context, cluster address.Address, pool *container.NodePool) (operation.Handle, error) {
	req := &container.CreateNodePoolRequest{NodePool: pool}
	var (
		op  *container.Operation
		err error
	)
	if cluster.Zonal() {
		op, err = c.container.Projects.Zones.Clusters.NodePools.Create(cluster.Project, cluster.Location.Value, cluster.Cluster, req).Context(ctx).Do()
	} else {
		op, err = c.container.Projects.Locations.Clusters.NodePools.Create(cluster.ClusterPath(), req).Context(ctx).Do()
	}
	if err != nil {
		return nil, provider.WrapRequestError("nodePools.create", cluster.ClusterPath(), err)
	}
	return c.gkeHandle(cluster, op), nil
}

// DeleteNodePool submits a node pool deletion.
func (c *Client) DeleteNodePool(ctx context.Context, pool address.Address) (operation.Handle, error) {
	var (
		op  *container.Operation
		err error
	)
	if pool.Zonal() {
		op, err = c.container.Projects.Zones.Clusters.NodePools.Delete(pool.Project, pool.Location.Value, pool.Cluster, pool.NodePool).Context(ctx).Do()
	} else {
		op, err = c.container.Projects.Locations.Clusters.NodePools.Delete(pool.String()).Context(ctx).Do()
	}
	if err != nil {
		return nil, provider.WrapRequestError("nodePools.delete", pool.String(), err)
	}
	return c.gkeHandle(pool, op), nil
}

// ListNodePools lists the node pools of a cluster.
func (c *Client) ListNodePools(ctx context.Context, cluster address.Address) ([]*container.NodePool, error) {
	var (
		resp *container.ListNodePoolsResponse
		err  error
	)
	if cluster.Zonal() {
		resp, err = c.container.Projects.Zones.Clusters.NodePools.List(cluster.Project, cluster.Location.Value, cluster.Cluster).Context(ctx).Do()
	} else {
		resp, err = c.container.Projects.Locations.Clusters.NodePools.List(cluster.ClusterPath()).Context(ctx).Do()
	}
	if err != nil {
		return nil, provider.WrapRequestError("nodePools.list", cluster.ClusterPath(), err)
	}
	return resp.NodePools, nil
}
