package spec

import "strings"

// CloudPlatformScope grants access to all Google Cloud APIs the service account is allowed to use.
const CloudPlatformScope = "https://www.googleapis.com/auth/cloud-platform"

// Access scope presets.
const (
	ScopesFull    = "full"
	ScopesDefault = "default"
)

// nodePoolDefaultScopes match the scopes GKE assigns to a node pool by default.
var nodePoolDefaultScopes = []string{
	"https://www.googleapis.com/auth/devstorage.read_only",
	"https://www.googleapis.com/auth/logging.write",
	"https://www.googleapis.com/auth/monitoring",
	"https://www.googleapis.com/auth/servicecontrol",
	"https://www.googleapis.com/auth/service.management.readonly",
	"https://www.googleapis.com/auth/trace.append",
}

// instanceDefaultScopes match the scopes Compute Engine assigns to a VM by default.
var instanceDefaultScopes = []string{
	"https://www.googleapis.com/auth/devstorage.read_only",
	"https://www.googleapis.com/auth/logging.write",
	"https://www.googleapis.com/auth/monitoring.write",
	"https://www.googleapis.com/auth/servicecontrol",
	"https://www.googleapis.com/auth/service.management.readonly",
	"https://www.googleapis.com/auth/trace.append",
}

// NodePoolScopes resolves the OAuth scopes for node pool VMs.
// An empty value behaves like "default".
func NodePoolScopes(value string) []string {
	switch strings.TrimSpace(value) {
	case ScopesFull:
		return []string{CloudPlatformScope}
	case "", ScopesDefault:
		return append([]string(nil), nodePoolDefaultScopes...)
	default:
		return splitScopes(value)
	}
}

// InstanceScopes resolves the OAuth scopes for a VM's service account.
// An empty value yields no scopes.
func InstanceScopes(value string) []string {
	switch strings.TrimSpace(value) {
	case "":
		return nil
	case ScopesFull:
		return []string{CloudPlatformScope}
	case ScopesDefault:
		return append([]string(nil), instanceDefaultScopes...)
	default:
		return splitScopes(value)
	}
}

func splitScopes(value string) []string {
	fields := strings.FieldsFunc(value, func(r rune) bool {
		return r == ',' || r == '\n'
	})
	var scopes []string
	for _, f := range fields {
		if f = strings.TrimSpace(f); f != "" {
			scopes = append(scopes, f)
		}
	}
	return scopes
}
