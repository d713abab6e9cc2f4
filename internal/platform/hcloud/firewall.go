package hcloud

import (
	"context"
	"fmt"
	"net"
	"sort"
	"strings"

	"github.com/hetznercloud/hcloud-go/v2/hcloud"
	compute "google.golang.org/api/compute/v1"

	"github.com/imamik/gkectl/internal/operation"
	"github.com/imamik/gkectl/internal/provider"
	"github.com/imamik/gkectl/internal/util/labels"
)

// Hetzner firewalls only allow traffic and apply project wide; target tags
// select servers by label.
var anyIP = []string{"0.0.0.0/0", "::/0"}

// InsertFirewall creates a firewall from allow rules.
func (c *RealClient) InsertFirewall(ctx context.Context, fw *compute.Firewall) (operation.Handle, error) {
	resource := "global/firewalls/" + fw.Name
	if len(fw.Denied) > 0 {
		return nil, unsupported("firewalls.insert", resource, "deny rules")
	}
	rules, err := firewallRules(fw)
	if err != nil {
		return nil, err
	}

	opts := hcloud.FirewallCreateOpts{
		Name:   fw.Name,
		Rules:  rules,
		Labels: labels.New("firewall").Build(),
	}
	if len(fw.TargetTags) > 0 {
		tags := append([]string(nil), fw.TargetTags...)
		sort.Strings(tags)
		for _, tag := range tags {
			opts.ApplyTo = append(opts.ApplyTo, hcloud.FirewallResource{
				Type:          hcloud.FirewallResourceTypeLabelSelector,
				LabelSelector: &hcloud.FirewallResourceLabelSelector{Selector: tag},
			})
		}
	}

	res, _, err := c.client.Firewall.Create(ctx, opts)
	if err != nil {
		return nil, provider.WrapRequestError("firewalls.insert", resource, err)
	}
	return c.actionHandle(resource, res.Actions), nil
}

// firewallRules expands allow entries into one rule per protocol and port.
// The "all" protocol covers tcp, udp and icmp.
func firewallRules(fw *compute.Firewall) ([]hcloud.FirewallRule, error) {
	direction := hcloud.FirewallRuleDirectionIn
	ranges := fw.SourceRanges
	if strings.EqualFold(fw.Direction, "EGRESS") {
		direction = hcloud.FirewallRuleDirectionOut
		ranges = fw.DestinationRanges
	}
	if len(ranges) == 0 {
		ranges = anyIP
	}
	ipNets, err := parseCIDRs(ranges)
	if err != nil {
		return nil, err
	}

	var rules []hcloud.FirewallRule
	for _, allowed := range fw.Allowed {
		protocols := []hcloud.FirewallRuleProtocol{hcloud.FirewallRuleProtocol(strings.ToLower(allowed.IPProtocol))}
		if allowed.IPProtocol == "" || strings.EqualFold(allowed.IPProtocol, "all") {
			protocols = []hcloud.FirewallRuleProtocol{
				hcloud.FirewallRuleProtocolTCP,
				hcloud.FirewallRuleProtocolUDP,
				hcloud.FirewallRuleProtocolICMP,
			}
		}
		for _, proto := range protocols {
			ports := allowed.Ports
			if proto == hcloud.FirewallRuleProtocolICMP {
				ports = nil
			} else if len(ports) == 0 {
				ports = []string{"any"}
			}
			rule := hcloud.FirewallRule{
				Direction: direction,
				Protocol:  proto,
			}
			if direction == hcloud.FirewallRuleDirectionIn {
				rule.SourceIPs = ipNets
			} else {
				rule.DestinationIPs = ipNets
			}
			if fw.Description != "" {
				rule.Description = hcloud.Ptr(fw.Description)
			}
			if len(ports) == 0 {
				rules = append(rules, rule)
				continue
			}
			for _, port := range ports {
				r := rule
				r.Port = hcloud.Ptr(port)
				rules = append(rules, r)
			}
		}
	}
	return rules, nil
}

func parseCIDRs(ranges []string) ([]net.IPNet, error) {
	out := make([]net.IPNet, 0, len(ranges))
	for _, r := range ranges {
		_, ipNet, err := net.ParseCIDR(r)
		if err != nil {
			return nil, fmt.Errorf("invalid firewall range %q: %w", r, err)
		}
		out = append(out, *ipNet)
	}
	return out, nil
}
