// Package preflight verifies the environment before a batch runs: directory
// permissions, free disk space, and external binaries.
package preflight
