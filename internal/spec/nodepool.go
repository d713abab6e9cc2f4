package spec

import (
	"fmt"
	"maps"
	"strconv"
)

// DefaultMaxPodsPerNode is applied when no pod limit is given.
const DefaultMaxPodsPerNode = 110

// NodePoolParams holds the flat parameters of a GKE node pool.
// Nil pointers and empty strings mean "not set".
type NodePoolParams struct {
	Name          string `mapstructure:"name"`
	NumberOfNodes *int   `mapstructure:"numberOfNodes"`
	Version       string `mapstructure:"version"`

	EnableAutoscaling bool `mapstructure:"enableAutoscaling"`
	MinNodes          *int `mapstructure:"minNodes"`
	MaxNodes          *int `mapstructure:"maxNodes"`
	MaxSurge          *int `mapstructure:"maxSurge"`
	MaxUnavailable    *int `mapstructure:"maxUnavailable"`
	MaxPodsPerNode    *int `mapstructure:"maxPodsPerNode"`

	MachineType         string `mapstructure:"machineType"`
	CustomMachineCPU    *int   `mapstructure:"customMachineCpuCount"`
	CustomMachineMemory *int   `mapstructure:"customMachineMem"`
	NodeImage           string `mapstructure:"nodeImage"`
	DiskType            string `mapstructure:"diskType"`
	DiskSizeGB          *int   `mapstructure:"diskSize"`
	DiskEncryptionKey   string `mapstructure:"diskEncryptionKey"`
	Preemptible         bool   `mapstructure:"preemptible"`

	NetworkTags               []string          `mapstructure:"networkTags"`
	ServiceAccount            string            `mapstructure:"serviceAccount"`
	AccessScopes              string            `mapstructure:"saAccessScopes"`
	EnableIntegrityMonitoring *bool             `mapstructure:"enableIntegrityMonitoring"`
	EnableSecureBoot          *bool             `mapstructure:"enableSecureBoot"`
	Labels                    map[string]string `mapstructure:"labels"`
	Metadata                  map[string]string `mapstructure:"gceInstanceMetadata"`
}

// MachineType returns the machine type, rewritten to <base>-<cpu>-<mem> when
// a custom CPU count or memory size is set. Both must be given together.
func MachineType(base string, cpu, memoryMB *int) (string, error) {
	if cpu == nil && memoryMB == nil {
		return base, nil
	}
	if base == "" {
		return "", missing("machineType")
	}
	if cpu == nil {
		return "", missing("customMachineCpuCount")
	}
	if memoryMB == nil {
		return "", missing("customMachineMem")
	}
	return fmt.Sprintf("%s-%d-%d", base, *cpu, *memoryMB), nil
}

// Validate checks the fields every node pool needs.
func (p NodePoolParams) Validate() error {
	if p.Name == "" {
		return missing("name")
	}
	if p.NumberOfNodes == nil || *p.NumberOfNodes <= 0 {
		return missing("numberOfNodes")
	}
	if p.MachineType == "" {
		return missing("machineType")
	}
	if p.DiskType == "" {
		return missing("diskType")
	}
	if p.DiskSizeGB == nil || *p.DiskSizeGB <= 0 {
		return missing("diskSize")
	}
	if p.EnableAutoscaling && p.MinNodes != nil && p.MaxNodes != nil && *p.MinNodes > *p.MaxNodes {
		return invalid("minNodes", "minimum %d exceeds maximum %d", *p.MinNodes, *p.MaxNodes)
	}
	return nil
}

// BuildNodePool builds a container/v1 NodePool document.
func BuildNodePool(p NodePoolParams) (Document, error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}
	machineType, err := MachineType(p.MachineType, p.CustomMachineCPU, p.CustomMachineMemory)
	if err != nil {
		return nil, err
	}

	maxPods := DefaultMaxPodsPerNode
	if p.MaxPodsPerNode != nil && *p.MaxPodsPerNode > 0 {
		maxPods = *p.MaxPodsPerNode
	}

	metadata := map[string]string{}
	maps.Copy(metadata, p.Metadata)
	metadata["disable-legacy-endpoints"] = "true"

	var autoscaling any
	if p.EnableAutoscaling {
		autoscaling = map[string]any{
			"enabled":      true,
			"minNodeCount": optInt(p.MinNodes),
			"maxNodeCount": optInt(p.MaxNodes),
		}
	}

	doc := Document{
		"name":             p.Name,
		"initialNodeCount": *p.NumberOfNodes,
		"version":          optString(p.Version),
		"autoscaling":      autoscaling,
		"maxPodsConstraint": map[string]any{
			"maxPodsPerNode": strconv.Itoa(maxPods),
		},
		"upgradeSettings": map[string]any{
			"maxSurge":       optInt(p.MaxSurge),
			"maxUnavailable": optInt(p.MaxUnavailable),
		},
		"management": map[string]any{
			"autoUpgrade": true,
			"autoRepair":  true,
		},
		"config": map[string]any{
			"machineType":    machineType,
			"diskType":       p.DiskType,
			"diskSizeGb":     *p.DiskSizeGB,
			"imageType":      optString(p.NodeImage),
			"bootDiskKmsKey": optString(p.DiskEncryptionKey),
			"metadata":       optMap(metadata),
			"tags":           optStrings(p.NetworkTags),
			"labels":         optMap(p.Labels),
			"serviceAccount": optString(p.ServiceAccount),
			"oauthScopes":    optStrings(NodePoolScopes(p.AccessScopes)),
			"preemptible":    p.Preemptible,
			"shieldedInstanceConfig": map[string]any{
				"enableSecureBoot":          optBool(p.EnableSecureBoot),
				"enableIntegrityMonitoring": optBool(p.EnableIntegrityMonitoring),
			},
		},
	}
	return Prune(doc), nil
}
