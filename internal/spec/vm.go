package spec

import (
	"fmt"
	"strconv"
)

// Network tags that open HTTP and HTTPS on the default firewall rules.
const (
	TagHTTPServer  = "http-server"
	TagHTTPSServer = "https-server"
)

// VMParams holds the flat parameters of a Compute Engine instance.
type VMParams struct {
	Name        string `mapstructure:"name"`
	Description string `mapstructure:"description"`
	Region      string `mapstructure:"region"`
	Zone        string `mapstructure:"zone"`

	MachineType    string `mapstructure:"machineType"`
	SourceImage    string `mapstructure:"sourceImage"`
	DiskType       string `mapstructure:"diskType"`
	DiskSizeGB     *int   `mapstructure:"diskSizeGb"`
	DiskAutoDelete bool   `mapstructure:"diskAutoDelete"`

	ServiceAccount string `mapstructure:"serviceAccount"`
	AccessScopes   string `mapstructure:"saAccessScopes"`

	AllowHTTP         bool             `mapstructure:"allowHttp"`
	AllowHTTPS        bool             `mapstructure:"allowHttps"`
	Network           string           `mapstructure:"network"`
	Subnetwork        string           `mapstructure:"subnetwork"`
	NetworkIP         string           `mapstructure:"networkIP"`
	NetworkInterfaces []map[string]any `mapstructure:"networkInterfaces"`
	CanIPForward      *bool            `mapstructure:"canIpForward"`

	Preemptible        bool              `mapstructure:"preemptible"`
	Tags               []string          `mapstructure:"tags"`
	Labels             map[string]string `mapstructure:"labels"`
	AutoCreateStaticIP bool              `mapstructure:"autoCreateStaticIP"`
}

// Validate checks the fields every instance needs.
func (p VMParams) Validate() error {
	if p.Name == "" {
		return missing("name")
	}
	if p.Zone == "" {
		return missing("zone")
	}
	if p.MachineType == "" {
		return missing("machineType")
	}
	return nil
}

// BuildVM builds a compute/v1 Instance document. The external address for
// AutoCreateStaticIP is not part of the document; see SpliceNatIP.
func BuildVM(project string, p VMParams) (Document, error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}

	tags := append([]string(nil), p.Tags...)
	if p.AllowHTTP {
		tags = append(tags, TagHTTPServer)
	}
	if p.AllowHTTPS {
		tags = append(tags, TagHTTPSServer)
	}

	var interfaces []any
	if p.Network != "" && p.Subnetwork != "" {
		interfaces = append(interfaces, map[string]any{
			"network":    p.Network,
			"subnetwork": p.Subnetwork,
			"networkIP":  optString(p.NetworkIP),
		})
	}
	for _, nic := range p.NetworkInterfaces {
		interfaces = append(interfaces, clone(nic))
	}

	var diskType, diskSize any
	if p.DiskType != "" {
		diskType = fmt.Sprintf("zones/%s/diskTypes/%s", p.Zone, p.DiskType)
	}
	if p.DiskSizeGB != nil {
		diskSize = strconv.Itoa(*p.DiskSizeGB)
	}

	onHostMaintenance := "MIGRATE"
	if p.Preemptible {
		onHostMaintenance = "TERMINATE"
	}

	var serviceAccounts any
	if p.ServiceAccount != "" {
		serviceAccounts = []any{map[string]any{
			"email":  p.ServiceAccount,
			"scopes": optStrings(InstanceScopes(p.AccessScopes)),
		}}
	}

	var tagBlock any
	if len(tags) > 0 {
		tagBlock = map[string]any{"items": optStrings(tags)}
	}

	doc := Document{
		"name":         p.Name,
		"description":  optString(p.Description),
		"machineType":  fmt.Sprintf("projects/%s/zones/%s/machineTypes/%s", project, p.Zone, p.MachineType),
		"canIpForward": optBool(p.CanIPForward),
		"labels":       optMap(p.Labels),
		"tags":         tagBlock,
		"scheduling": map[string]any{
			"automaticRestart":  !p.Preemptible,
			"onHostMaintenance": onHostMaintenance,
			"preemptible":       p.Preemptible,
		},
		"networkInterfaces": interfaces,
		"disks": []any{map[string]any{
			"boot": true,
			"initializeParams": map[string]any{
				"sourceImage": optString(p.SourceImage),
				"diskType":    diskType,
				"diskSizeGb":  diskSize,
			},
			"autoDelete": p.DiskAutoDelete,
			"mode":       "READ_WRITE",
			"type":       "PERSISTENT",
		}},
		"serviceAccounts": serviceAccounts,
	}
	return Prune(doc), nil
}

// SpliceNatIP places ip into networkInterfaces[0].accessConfigs[0].natIP,
// creating the interface and access config when they are absent.
func SpliceNatIP(doc Document, ip string) {
	interfaces, _ := doc["networkInterfaces"].([]any)
	if len(interfaces) == 0 {
		doc["networkInterfaces"] = []any{map[string]any{
			"accessConfigs": []any{map[string]any{"natIP": ip}},
		}}
		return
	}
	nic := asObject(interfaces[0])
	if nic == nil {
		nic = map[string]any{}
	}
	interfaces[0] = nic

	configs, _ := nic["accessConfigs"].([]any)
	if len(configs) == 0 {
		nic["accessConfigs"] = []any{map[string]any{"natIP": ip}}
		return
	}
	ac := asObject(configs[0])
	if ac == nil {
		ac = map[string]any{}
	}
	ac["natIP"] = ip
	configs[0] = ac
}

// NatIP returns networkInterfaces[0].accessConfigs[0].natIP of an instance document.
func NatIP(doc Document) (string, bool) {
	interfaces, _ := doc["networkInterfaces"].([]any)
	if len(interfaces) == 0 {
		return "", false
	}
	nic := asObject(interfaces[0])
	configs, _ := nic["accessConfigs"].([]any)
	if len(configs) == 0 {
		return "", false
	}
	ip, _ := asObject(configs[0])["natIP"].(string)
	return ip, ip != ""
}

func asObject(v any) map[string]any {
	switch t := v.(type) {
	case map[string]any:
		return t
	case Document:
		return t
	}
	return nil
}
