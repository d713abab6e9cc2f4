package gcloudcli

import (
	"context"
	"errors"
	"fmt"

	"github.com/go-logr/logr"

	"github.com/imamik/gkectl/internal/address"
)

// ErrNotFound is returned when the CLI output lacks an expected value.
var ErrNotFound = errors.New("value not found in cli output")

// Environment variables the scripts read their arguments from.
const (
	envKeyFile      = "GKECTL_KEY_FILE"
	envProject      = "GKECTL_PROJECT"
	envCluster      = "GKECTL_CLUSTER"
	envLocation     = "GKECTL_LOCATION"
	envNamespace    = "GKECTL_NAMESPACE"
	envAccount      = "GKECTL_ACCOUNT"
	envRoleBinding  = "GKECTL_ROLE_BINDING"
	envClusterRole  = "GKECTL_CLUSTER_ROLE"
	envTokenSecret  = "GKECTL_TOKEN_SECRET"
	locationZone    = "--zone"
	locationRegion  = "--region"
	getCredentials  = `gcloud auth activate-service-account --key-file="$GKECTL_KEY_FILE" && gcloud container clusters get-credentials "$GKECTL_CLUSTER" %s="$GKECTL_LOCATION" --project="$GKECTL_PROJECT"`
	setNamespace    = `kubectl config set-context --current --namespace="$GKECTL_NAMESPACE"`
	namespacedSetup = `kubectl create namespace "$GKECTL_NAMESPACE" ; kubectl create serviceaccount "$GKECTL_ACCOUNT" --namespace "$GKECTL_NAMESPACE" ; kubectl create rolebinding "$GKECTL_ROLE_BINDING" --clusterrole="$GKECTL_CLUSTER_ROLE" --serviceaccount="$GKECTL_NAMESPACE:$GKECTL_ACCOUNT" --namespace="$GKECTL_NAMESPACE"`
	clusterSetup    = `kubectl create serviceaccount "$GKECTL_ACCOUNT" ; kubectl create clusterrolebinding "$GKECTL_ROLE_BINDING" --clusterrole="$GKECTL_CLUSTER_ROLE" --serviceaccount="default:$GKECTL_ACCOUNT"`
)

// ServiceAccount describes the account to create inside a cluster. An empty
// Namespace binds the role cluster wide.
type ServiceAccount struct {
	Namespace       string
	Name            string
	RoleBindingName string
	ClusterRole     string
}

// Client drives the containerised CLI.
type Client struct {
	runner Runner
	logger logr.Logger
}

// New creates a Client on top of runner.
func New(runner Runner, logger logr.Logger) *Client {
	return &Client{runner: runner, logger: logger}
}

// CreateServiceAccount creates the account and its role binding and returns
// the name of its token secret. The kubectl create calls may fail when the
// objects already exist; the account is described regardless.
func (c *Client) CreateServiceAccount(ctx context.Context, key KeyFile, cluster address.Address, sa ServiceAccount) (string, error) {
	setup := clusterSetup
	if sa.Namespace != "" {
		setup = namespacedSetup
	}
	env := c.env(key, cluster, sa.Namespace)
	env[envAccount] = sa.Name
	env[envRoleBinding] = sa.RoleBindingName
	env[envClusterRole] = sa.ClusterRole

	script := credentialsScript(cluster) + " && " + setup + " ; " + setNamespace + ` ; kubectl describe serviceaccount "$GKECTL_ACCOUNT"`
	out, err := c.run(ctx, "create service account", script, key, env)
	if err != nil {
		return "", err
	}
	name, ok := extractSecret(out)
	if !ok {
		return "", fmt.Errorf("token secret of service account %s: %w", sa.Name, ErrNotFound)
	}
	return name, nil
}

// LookupToken returns the bearer token stored in the named secret.
func (c *Client) LookupToken(ctx context.Context, key KeyFile, cluster address.Address, namespace, secret string) (string, error) {
	env := c.env(key, cluster, namespace)
	env[envTokenSecret] = secret

	script := credentialsScript(cluster) + " && " + setNamespace + ` ; kubectl describe secret "$GKECTL_TOKEN_SECRET"`
	out, err := c.run(ctx, "lookup token", script, key, env)
	if err != nil {
		return "", err
	}
	token, ok := extractTagValue(out, "token:")
	if !ok {
		return "", fmt.Errorf("token in secret %s: %w", secret, ErrNotFound)
	}
	return token, nil
}

// LookupCertAndEndpoint returns the base64 cluster CA and the API server
// endpoint from the kubeconfig gcloud writes.
func (c *Client) LookupCertAndEndpoint(ctx context.Context, key KeyFile, cluster address.Address, namespace string) (ca, endpoint string, err error) {
	script := credentialsScript(cluster) + " && " + setNamespace + " ; cat ~/.kube/config"
	out, err := c.run(ctx, "lookup certificate", script, key, c.env(key, cluster, namespace))
	if err != nil {
		return "", "", err
	}
	ca, ok := extractTagValue(out, "certificate-authority-data:")
	if !ok {
		return "", "", fmt.Errorf("certificate authority of cluster %s: %w", cluster.Cluster, ErrNotFound)
	}
	endpoint, ok = extractTagValue(out, "server:")
	if !ok {
		return "", "", fmt.Errorf("endpoint of cluster %s: %w", cluster.Cluster, ErrNotFound)
	}
	return ca, endpoint, nil
}

func (c *Client) run(ctx context.Context, what, script string, key KeyFile, env map[string]string) (string, error) {
	c.logger.V(1).Info("running cli", "step", what, "cluster", env[envCluster])
	out, err := c.runner.Run(ctx, Invocation{Script: script, Env: env, KeyDir: key.Dir})
	if err != nil {
		return "", fmt.Errorf("failed to %s: %w", what, err)
	}
	return out.Stdout, nil
}

func (c *Client) env(key KeyFile, cluster address.Address, namespace string) map[string]string {
	return map[string]string{
		envKeyFile:   key.ContainerPath(),
		envProject:   cluster.Project,
		envCluster:   cluster.Cluster,
		envLocation:  cluster.Location.Value,
		envNamespace: namespace,
	}
}

// credentialsScript authenticates and fetches cluster credentials for a
// zonal or regional cluster.
func credentialsScript(cluster address.Address) string {
	flag := locationRegion
	if cluster.Zonal() {
		flag = locationZone
	}
	return fmt.Sprintf(getCredentials, flag)
}
