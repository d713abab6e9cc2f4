// Package address builds canonical hierarchical resource paths for managed
// Kubernetes resources: project, then region or zone, then cluster, then
// node pool.
//
// Addresses are plain immutable values. Building one never performs I/O, and
// the same inputs always yield the same path, so a path can be reused to
// derive node pool and operation names for follow-up calls.
package address

import (
	"errors"
	"fmt"
	"strings"
)

// Sentinel errors for address resolution.
var (
	// ErrInvalidAddress is returned when both or neither of region/zone are given.
	ErrInvalidAddress = errors.New("invalid address")
	// ErrMissingIdentifier is returned when a required project, cluster or node pool id is empty.
	ErrMissingIdentifier = errors.New("missing identifier")
	// ErrMissingLocation is returned when a location type needs a zone or region that is absent.
	ErrMissingLocation = errors.New("missing location")
)

// Error describes why an address could not be resolved.
type Error struct {
	Field string
	Err   error
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s: %v", e.Field, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Kind distinguishes regional from zonal locations.
type Kind string

const (
	Region Kind = "region"
	Zone   Kind = "zone"
)

// Location types accepted for cluster creation.
const (
	LocationTypeZonal    = "Zonal"
	LocationTypeRegional = "Regional"
)

// Location is either a region or a zone.
type Location struct {
	Kind  Kind
	Value string
}

// collection returns the path segment for the location kind.
func (l Location) collection() string {
	if l.Kind == Zone {
		return "zones"
	}
	return "locations"
}

// Address identifies a location, cluster or node pool inside a project.
type Address struct {
	Project  string
	Location Location
	Cluster  string
	NodePool string
}

// ResolveLocation returns the location address for exactly one of region or zone.
func ResolveLocation(project, region, zone string) (Address, error) {
	if project == "" {
		return Address{}, &Error{Field: "project", Err: ErrMissingIdentifier}
	}
	switch {
	case region != "" && zone != "":
		return Address{}, &Error{Field: "location", Err: fmt.Errorf("%w: both region %q and zone %q given", ErrInvalidAddress, region, zone)}
	case region != "":
		return Address{Project: project, Location: Location{Kind: Region, Value: region}}, nil
	case zone != "":
		return Address{Project: project, Location: Location{Kind: Zone, Value: zone}}, nil
	default:
		return Address{}, &Error{Field: "location", Err: fmt.Errorf("%w: one of region or zone is required", ErrInvalidAddress)}
	}
}

// ResolveCluster returns the address of a cluster.
func ResolveCluster(project, region, zone, cluster string) (Address, error) {
	if cluster == "" {
		return Address{}, &Error{Field: "cluster", Err: ErrMissingIdentifier}
	}
	a, err := ResolveLocation(project, region, zone)
	if err != nil {
		return Address{}, err
	}
	a.Cluster = cluster
	return a, nil
}

// ResolveNodePool returns the address of a node pool inside a cluster.
func ResolveNodePool(project, region, zone, cluster, nodePool string) (Address, error) {
	if nodePool == "" {
		return Address{}, &Error{Field: "nodePool", Err: ErrMissingIdentifier}
	}
	a, err := ResolveCluster(project, region, zone, cluster)
	if err != nil {
		return Address{}, err
	}
	a.NodePool = nodePool
	return a, nil
}

// ForLocationType picks the cluster location from a "Zonal" or "Regional" location type.
// Zonal clusters need a zone and Regional clusters need a region; the other value is ignored.
func ForLocationType(project, locationType, region, zone string) (Address, error) {
	switch locationType {
	case LocationTypeZonal:
		if zone == "" {
			return Address{}, &Error{Field: "zone", Err: fmt.Errorf("%w: zonal cluster requires a zone", ErrMissingLocation)}
		}
		return ResolveLocation(project, "", zone)
	case LocationTypeRegional:
		if region == "" {
			return Address{}, &Error{Field: "region", Err: fmt.Errorf("%w: regional cluster requires a region", ErrMissingLocation)}
		}
		return ResolveLocation(project, region, "")
	default:
		return Address{}, &Error{Field: "locationType", Err: fmt.Errorf("%w: unknown location type %q", ErrInvalidAddress, locationType)}
	}
}

// Parent returns the location path, e.g. projects/p/locations/europe-west1.
func (a Address) Parent() string {
	return fmt.Sprintf("projects/%s/%s/%s", a.Project, a.Location.collection(), a.Location.Value)
}

// ClusterPath returns the cluster path, or the parent when no cluster is set.
func (a Address) ClusterPath() string {
	if a.Cluster == "" {
		return a.Parent()
	}
	return a.Parent() + "/clusters/" + a.Cluster
}

// String returns the most specific path the address describes.
func (a Address) String() string {
	if a.NodePool == "" {
		return a.ClusterPath()
	}
	return a.ClusterPath() + "/nodePools/" + a.NodePool
}

// OperationPath returns the path of an operation started at this address's location.
// Operation names that already carry a path are reduced to their last segment.
func (a Address) OperationPath(name string) string {
	if i := strings.LastIndex(name, "/"); i >= 0 {
		name = name[i+1:]
	}
	return a.Parent() + "/operations/" + name
}

// Zonal reports whether the address is scoped to a zone.
func (a Address) Zonal() bool {
	return a.Location.Kind == Zone
}

// RegionOf derives a region from a zone name such as europe-west1-b.
func RegionOf(zone string) string {
	if i := strings.LastIndex(zone, "-"); i > 0 {
		return zone[:i]
	}
	return zone
}
