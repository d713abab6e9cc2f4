package labels

import "strings"

// Standard label keys.
const (
	// KeyManagedBy identifies the tool that created a resource
	KeyManagedBy = "gkectl.io/managed-by"

	// KeyKind records the resource kind (instance, address, network, firewall)
	KeyKind = "gkectl.io/kind"

	// Prefix is shared by every key this package sets.
	Prefix = "gkectl.io/"
)

// ManagedByGkectl is the value of KeyManagedBy on resources created by gkectl.
const ManagedByGkectl = "gkectl"

// Builder accumulates labels for a single resource.
type Builder struct {
	labels map[string]string
}

// New returns a builder with the managed-by and kind labels set.
func New(kind string) *Builder {
	return &Builder{
		labels: map[string]string{
			KeyManagedBy: ManagedByGkectl,
			KeyKind:      kind,
		},
	}
}

// Merge adds all labels from extra. Existing gkectl.io keys are not overwritten.
func (b *Builder) Merge(extra map[string]string) *Builder {
	for k, v := range extra {
		if strings.HasPrefix(k, Prefix) {
			continue
		}
		b.labels[k] = v
	}
	return b
}

// WithTags adds each tag as a label with an empty value.
func (b *Builder) WithTags(tags []string) *Builder {
	for _, tag := range tags {
		if tag == "" || strings.HasPrefix(tag, Prefix) {
			continue
		}
		b.labels[tag] = ""
	}
	return b
}

// Build returns a copy of the labels map.
func (b *Builder) Build() map[string]string {
	result := make(map[string]string, len(b.labels))
	for k, v := range b.labels {
		result[k] = v
	}
	return result
}

// Strip returns labels without the keys this package manages.
func Strip(labels map[string]string) map[string]string {
	result := make(map[string]string, len(labels))
	for k, v := range labels {
		if strings.HasPrefix(k, Prefix) {
			continue
		}
		result[k] = v
	}
	return result
}

// IsManaged reports whether labels mark a resource as created by gkectl.
func IsManaged(labels map[string]string) bool {
	return labels[KeyManagedBy] == ManagedByGkectl
}
