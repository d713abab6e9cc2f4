// Package config loads the gkectl configuration file and the environment
// driven timeouts.
//
// The file (gkectl.yaml, found by walking up from the working directory)
// names the project, the credentials to use, the compute backend and where
// spec documents stored in S3-compatible object storage live. Timeouts come
// from GKECTL_* environment variables so they can be tuned per invocation.
package config
