// Package kubeconfig assembles kubeconfig files for GKE clusters from the
// values the provisioning layer collects: endpoint, CA and optionally a
// service account token.
package kubeconfig

import (
	"encoding/base64"
	"errors"
	"fmt"
	"strings"

	"k8s.io/client-go/tools/clientcmd"
	clientcmdapi "k8s.io/client-go/tools/clientcmd/api"
)

// AuthPlugin is the exec credential plugin used when no token is given.
const AuthPlugin = "gke-gcloud-auth-plugin"

// Params describes one cluster entry.
type Params struct {
	// Name is used for the context, cluster and user entries.
	Name string
	// Endpoint is the API server URL including scheme.
	Endpoint string
	// CAData is the base64 encoded cluster CA as returned by the API.
	CAData string
	// Token is a bearer token. Without it the config calls AuthPlugin.
	Token string
	// Namespace is the context's default namespace.
	Namespace string
}

// Build returns a single-context kubeconfig.
func Build(p Params) (*clientcmdapi.Config, error) {
	if p.Name == "" {
		return nil, errors.New("kubeconfig name is required")
	}
	if p.Endpoint == "" {
		return nil, errors.New("cluster endpoint is required")
	}
	ca, err := base64.StdEncoding.DecodeString(strings.TrimSpace(p.CAData))
	if err != nil {
		return nil, fmt.Errorf("decode cluster CA: %w", err)
	}

	cluster := clientcmdapi.NewCluster()
	cluster.Server = p.Endpoint
	cluster.CertificateAuthorityData = ca

	user := clientcmdapi.NewAuthInfo()
	if p.Token != "" {
		user.Token = p.Token
	} else {
		user.Exec = &clientcmdapi.ExecConfig{
			APIVersion:         "client.authentication.k8s.io/v1beta1",
			Command:            AuthPlugin,
			InstallHint:        "Install gke-gcloud-auth-plugin for use with kubectl by following https://cloud.google.com/kubernetes-engine/docs/how-to/cluster-access-for-kubectl#install_plugin",
			ProvideClusterInfo: true,
			InteractiveMode:    clientcmdapi.IfAvailableExecInteractiveMode,
		}
	}

	ctx := clientcmdapi.NewContext()
	ctx.Cluster = p.Name
	ctx.AuthInfo = p.Name
	ctx.Namespace = p.Namespace

	cfg := clientcmdapi.NewConfig()
	cfg.Clusters[p.Name] = cluster
	cfg.AuthInfos[p.Name] = user
	cfg.Contexts[p.Name] = ctx
	cfg.CurrentContext = p.Name
	return cfg, nil
}

// Marshal serializes cfg as YAML.
func Marshal(cfg *clientcmdapi.Config) ([]byte, error) {
	data, err := clientcmd.Write(*cfg)
	if err != nil {
		return nil, fmt.Errorf("serialize kubeconfig: %w", err)
	}
	return data, nil
}

// WriteFile writes cfg to path with owner-only permissions.
func WriteFile(cfg *clientcmdapi.Config, path string) error {
	if err := clientcmd.WriteToFile(*cfg, path); err != nil {
		return fmt.Errorf("write kubeconfig %s: %w", path, err)
	}
	return nil
}
