package provisioning

import (
	"context"
	"fmt"

	"github.com/imamik/gkectl/internal/gcloudcli"
	"github.com/imamik/gkectl/internal/spec"
	"github.com/imamik/gkectl/internal/util/naming"
)

// ServiceAccountParams describes a Kubernetes service account to create
// inside a cluster. Without a namespace the role is bound cluster wide.
type ServiceAccountParams struct {
	Name        string `mapstructure:"name"`
	Namespace   string `mapstructure:"namespace"`
	ClusterRole string `mapstructure:"clusterRole"`
	RoleBinding string `mapstructure:"roleBinding"`
}

// CreateServiceAccount creates a service account bound to a cluster role and
// returns credentials authenticating as it. key is the JSON key of the
// Google service account the admin CLI logs in with.
func (o *Orchestrator) CreateServiceAccount(ctx context.Context, key []byte, t Target, p ServiceAccountParams) (*Credentials, error) {
	if o.cli == nil {
		return nil, ErrNoAdminCLI
	}
	if err := requireFields(
		field{"name", p.Name},
		field{"clusterRole", p.ClusterRole},
	); err != nil {
		return nil, err
	}
	if len(key) == 0 {
		return nil, &spec.ValidationError{Field: "key", Err: spec.ErrMissingField}
	}
	cluster, err := t.cluster(o.project)
	if err != nil {
		return nil, err
	}

	sa := gcloudcli.ServiceAccount{
		Namespace:       p.Namespace,
		Name:            p.Name,
		RoleBindingName: p.RoleBinding,
		ClusterRole:     p.ClusterRole,
	}
	if sa.RoleBindingName == "" {
		sa.RoleBindingName = naming.RoleBinding(p.Name)
	}
	namespace := p.Namespace
	if namespace == "" {
		namespace = naming.DefaultNamespace
	}

	log := o.observer.Logger().WithValues("cluster", cluster.String(), "serviceAccount", p.Name)
	creds := &Credentials{Cluster: cluster, Namespace: namespace}
	err = gcloudcli.WithKeyFile(key, func(kf gcloudcli.KeyFile) error {
		secret, err := o.cli.CreateServiceAccount(ctx, kf, cluster, sa)
		if err != nil {
			return err
		}
		log.V(1).Info("service account created", "tokenSecret", secret)

		token, err := o.cli.LookupToken(ctx, kf, cluster, namespace, secret)
		if err != nil {
			return err
		}
		ca, endpoint, err := o.cli.LookupCertAndEndpoint(ctx, kf, cluster, namespace)
		if err != nil {
			return err
		}
		creds.Token = token
		creds.CAData = ca
		creds.Endpoint = EnsureScheme(endpoint)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create service account %s: %w", p.Name, err)
	}
	log.Info("service account ready", "endpoint", creds.Endpoint)
	return creds, nil
}
