package handlers

import (
	"context"
	"fmt"
	"os"

	"github.com/imamik/gkectl/internal/provisioning"
)

// readFile reads the Google service account key (for testing injection).
var readFile = os.ReadFile

// CreateServiceAccount creates a Kubernetes service account in the target
// cluster through the admin CLI, logging in with the key in keyFile, and
// prints the credentials of the new account. With a kubeconfig path the
// credentials are also written there.
func CreateServiceAccount(ctx context.Context, g Globals, keyFile string, target provisioning.Target, params ParamFlags, kubeconfigPath string) error {
	values, err := params.values()
	if err != nil {
		return err
	}
	var p provisioning.ServiceAccountParams
	if err := decodeParams(values, &p); err != nil {
		return err
	}

	var key []byte
	if keyFile != "" {
		if key, err = readFile(keyFile); err != nil {
			return fmt.Errorf("failed to read key file: %w", err)
		}
	}

	ctx, sess, err := setup(ctx, g, scopeClusters)
	if err != nil {
		return err
	}
	defer sess.close()

	creds, err := sess.orchestrator.CreateServiceAccount(ctx, key, target, p)
	if err != nil {
		return err
	}
	if kubeconfigPath != "" {
		if err := writeKubeconfig(creds, kubeconfigPath); err != nil {
			return fmt.Errorf("failed to write kubeconfig: %w", err)
		}
		sess.logger.Info("kubeconfig written", "path", kubeconfigPath)
	}
	return printResult(sess.output, creds)
}
