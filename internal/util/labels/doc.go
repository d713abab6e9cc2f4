// Package labels builds the label sets gkectl attaches to Hetzner Cloud
// resources it creates.
//
// Keys use the gkectl.io domain prefix. Network tags map to labels with an
// empty value so firewall label selectors can target them.
package labels
