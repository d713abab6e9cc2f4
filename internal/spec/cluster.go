package spec

import (
	"github.com/imamik/gkectl/internal/address"
)

// DefaultNodePoolName names the node pool created together with a basic cluster.
const DefaultNodePoolName = "default-pool"

// ReleaseChannelNone disables release channel enrollment.
const ReleaseChannelNone = "none"

// ClusterParams holds the flat parameters of a basic GKE cluster. The
// embedded node pool parameters describe its default node pool.
type ClusterParams struct {
	Name           string `mapstructure:"name"`
	LocationType   string `mapstructure:"locationType"`
	Region         string `mapstructure:"region"`
	Zone           string `mapstructure:"zone"`
	Version        string `mapstructure:"version"`
	ReleaseChannel string `mapstructure:"controlPlaneReleaseChannel"`
	Network        string `mapstructure:"network"`
	Subnetwork     string `mapstructure:"subnetwork"`

	NodePool NodePoolParams `mapstructure:",squash"`
}

// BuildCluster validates the parameters, resolves the cluster location and
// builds a container/v1 Cluster document carrying a default node pool.
func BuildCluster(project string, p ClusterParams) (Document, address.Address, error) {
	if p.Name == "" {
		return nil, address.Address{}, missing("name")
	}
	if p.LocationType == "" {
		return nil, address.Address{}, missing("locationType")
	}
	if p.Version == "" {
		return nil, address.Address{}, missing("version")
	}
	loc, err := address.ForLocationType(project, p.LocationType, p.Region, p.Zone)
	if err != nil {
		return nil, address.Address{}, err
	}

	np := p.NodePool
	np.Name = DefaultNodePoolName
	if np.Version == "" {
		np.Version = p.Version
	}
	pool, err := BuildNodePool(np)
	if err != nil {
		return nil, address.Address{}, err
	}

	var locations any
	if loc.Zonal() {
		locations = []any{loc.Location.Value}
	}
	var channel any
	if p.ReleaseChannel != "" && p.ReleaseChannel != ReleaseChannelNone {
		channel = map[string]any{"channel": p.ReleaseChannel}
	}

	doc := Document{
		"name":                  p.Name,
		"location":              loc.Location.Value,
		"locations":             locations,
		"releaseChannel":        channel,
		"initialClusterVersion": p.Version,
		"network":               optString(p.Network),
		"subnetwork":            optString(p.Subnetwork),
		"nodePools":             []any{map[string]any(pool)},
	}
	return Prune(doc), loc, nil
}
