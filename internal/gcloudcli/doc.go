// Package gcloudcli runs the gcloud and kubectl CLIs inside a container to
// reach into a cluster: creating a service account, reading its token and
// reading the cluster CA and endpoint from the generated kubeconfig.
//
// Every invocation is explicit. Values travel in the invocation's
// environment map and are referenced by the fixed scripts, so nothing is
// interpolated into shell text. The service account key is written to a
// private temporary directory that is mounted read-only into the container
// and removed when the surrounding [WithKeyFile] call returns.
package gcloudcli
