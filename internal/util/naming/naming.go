package naming

import "fmt"

// Naming functions for derived resources.
// Derived names are fixed so a resource created by one step can be found
// and removed by another.

// DefaultNodePool is the node pool created together with a basic cluster.
const DefaultNodePool = "default-pool"

// DefaultNamespace is used for service accounts when none is given.
const DefaultNamespace = "default"

// ExternalAddress is the static address reserved for a VM.
func ExternalAddress(vm string) string {
	return fmt.Sprintf("%s-ext-addr", vm)
}

// RoleBinding is the role binding created for a service account.
func RoleBinding(account string) string {
	return fmt.Sprintf("%s-binding", account)
}

// KubeconfigContext is the context name gcloud uses for a cluster.
func KubeconfigContext(project, location, cluster string) string {
	return fmt.Sprintf("gke_%s_%s_%s", project, location, cluster)
}
