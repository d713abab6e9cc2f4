package spec

import (
	"fmt"
	"strings"
)

// Firewall defaults.
const (
	DefaultFirewallPriority  = 1000
	DefaultFirewallProtocol  = "all"
	DefaultFirewallNetwork   = "default"
	DirectionIngress         = "INGRESS"
	DirectionEgress          = "EGRESS"
	FirewallActionAllow      = "allow"
	FirewallActionDeny       = "deny"
	AddressTypeExternal      = "EXTERNAL"
	AddressTypeInternal      = "INTERNAL"
	DefaultRoutePriority     = 0
	globalNetworkPathPattern = "projects/%s/global/networks/%s"
)

// VPCParams describes a VPC network.
type VPCParams struct {
	Name                  string `mapstructure:"name"`
	Description           string `mapstructure:"description"`
	AutoCreateSubnetworks bool   `mapstructure:"autoCreateSubnetworks"`
}

// BuildVPC builds a compute/v1 Network document. autoCreateSubnetworks is
// always sent because the API treats an absent value as legacy mode.
func BuildVPC(p VPCParams) (Document, error) {
	if p.Name == "" {
		return nil, missing("name")
	}
	return Prune(Document{
		"name":                  p.Name,
		"description":           optString(p.Description),
		"autoCreateSubnetworks": p.AutoCreateSubnetworks,
	}), nil
}

// SubnetParams describes a regional subnetwork.
type SubnetParams struct {
	Network               string `mapstructure:"network"`
	Name                  string `mapstructure:"name"`
	Description           string `mapstructure:"description"`
	Region                string `mapstructure:"region"`
	Range                 string `mapstructure:"range"`
	PrivateIPGoogleAccess *bool  `mapstructure:"privateIpGoogleAccess"`
	EnableFlowLogs        *bool  `mapstructure:"enableFlowLogs"`
}

// BuildSubnet builds a compute/v1 Subnetwork document.
func BuildSubnet(project string, p SubnetParams) (Document, error) {
	switch {
	case p.Network == "":
		return nil, missing("network")
	case p.Name == "":
		return nil, missing("name")
	case p.Region == "":
		return nil, missing("region")
	case p.Range == "":
		return nil, missing("range")
	}
	return Prune(Document{
		"name":                  p.Name,
		"description":           optString(p.Description),
		"network":               networkPath(project, p.Network),
		"region":                p.Region,
		"ipCidrRange":           p.Range,
		"privateIpGoogleAccess": optBool(p.PrivateIPGoogleAccess),
		"enableFlowLogs":        optBool(p.EnableFlowLogs),
	}), nil
}

// ReserveIPParams describes an internal address reserved in a subnetwork.
type ReserveIPParams struct {
	Name    string `mapstructure:"name"`
	Region  string `mapstructure:"region"`
	Subnet  string `mapstructure:"subnet"`
	Address string `mapstructure:"address"`
}

// BuildInternalAddress builds a compute/v1 Address document of type INTERNAL.
func BuildInternalAddress(p ReserveIPParams) (Document, error) {
	switch {
	case p.Name == "":
		return nil, missing("name")
	case p.Region == "":
		return nil, missing("region")
	case p.Subnet == "":
		return nil, missing("subnet")
	}
	return Prune(Document{
		"name":        p.Name,
		"addressType": AddressTypeInternal,
		"subnetwork":  fmt.Sprintf("regions/%s/subnetworks/%s", p.Region, p.Subnet),
		"address":     optString(p.Address),
	}), nil
}

// BuildExternalAddress builds a compute/v1 Address document of type EXTERNAL.
func BuildExternalAddress(name string) (Document, error) {
	if name == "" {
		return nil, missing("name")
	}
	return Document{"name": name, "addressType": AddressTypeExternal}, nil
}

// FirewallParams describes a VPC firewall rule.
type FirewallParams struct {
	Network   string   `mapstructure:"network"`
	Name      string   `mapstructure:"name"`
	Priority  *int     `mapstructure:"priority"`
	Direction string   `mapstructure:"direction"`
	Action    string   `mapstructure:"action"`
	IPRanges  []string `mapstructure:"ipRange"`
	Protocol  string   `mapstructure:"protocol"`
	Ports     []string `mapstructure:"ports"`
}

// BuildFirewall builds a compute/v1 Firewall document. The rule allows traffic
// unless the action is "deny"; IP ranges are source ranges for ingress rules
// and destination ranges for egress rules.
func BuildFirewall(project string, p FirewallParams) (Document, error) {
	if p.Name == "" {
		return nil, missing("name")
	}
	direction := strings.ToUpper(p.Direction)
	if direction == "" {
		direction = DirectionIngress
	}
	if direction != DirectionIngress && direction != DirectionEgress {
		return nil, invalid("direction", "must be %s or %s, got %q", DirectionIngress, DirectionEgress, p.Direction)
	}
	priority := DefaultFirewallPriority
	if p.Priority != nil {
		priority = *p.Priority
	}
	protocol := p.Protocol
	if protocol == "" {
		protocol = DefaultFirewallProtocol
	}
	network := p.Network
	if network == "" {
		network = DefaultFirewallNetwork
	}

	rule := []any{map[string]any{
		"IPProtocol": protocol,
		"ports":      optStrings(p.Ports),
	}}
	doc := Document{
		"name":      p.Name,
		"network":   fmt.Sprintf(globalNetworkPathPattern, project, network),
		"priority":  priority,
		"direction": direction,
	}
	switch strings.ToLower(p.Action) {
	case "", FirewallActionAllow:
		doc["allowed"] = rule
	case FirewallActionDeny:
		doc["denied"] = rule
	default:
		return nil, invalid("action", "must be %s or %s, got %q", FirewallActionAllow, FirewallActionDeny, p.Action)
	}
	if direction == DirectionIngress {
		doc["sourceRanges"] = optStrings(p.IPRanges)
	} else {
		doc["destinationRanges"] = optStrings(p.IPRanges)
	}
	return Prune(doc), nil
}

// RouteParams describes a static route.
type RouteParams struct {
	Network   string   `mapstructure:"network"`
	Name      string   `mapstructure:"name"`
	NextHopIP string   `mapstructure:"nextHopIp"`
	DestRange string   `mapstructure:"destRange"`
	Priority  *int     `mapstructure:"priority"`
	Tags      []string `mapstructure:"tags"`
}

// BuildRoute builds a compute/v1 Route document. The priority defaults to 0,
// the highest route priority.
func BuildRoute(project string, p RouteParams) (Document, error) {
	switch {
	case p.Network == "":
		return nil, missing("network")
	case p.Name == "":
		return nil, missing("name")
	case p.DestRange == "":
		return nil, missing("destRange")
	case p.NextHopIP == "":
		return nil, missing("nextHopIp")
	}
	priority := DefaultRoutePriority
	if p.Priority != nil {
		priority = *p.Priority
	}
	return Prune(Document{
		"name":      p.Name,
		"network":   fmt.Sprintf(globalNetworkPathPattern, project, p.Network),
		"nextHopIp": p.NextHopIP,
		"destRange": p.DestRange,
		"priority":  priority,
		"tags":      optStrings(p.Tags),
	}), nil
}

// networkPath expands a bare network name to its global path. Values that
// already contain a path are kept as given.
func networkPath(project, network string) string {
	if strings.Contains(network, "/") {
		return network
	}
	return fmt.Sprintf(globalNetworkPathPattern, project, network)
}
