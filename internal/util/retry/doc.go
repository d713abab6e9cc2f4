// Package retry repeats provider calls that fail transiently.
//
// [Do] spaces attempts with a [wait.Backoff] and stops early on errors
// marked with [Permanent]. The Hetzner Cloud backend uses it for calls that
// hit locked resources.
package retry
