// Package utils holds small helpers shared across packages that don't
// warrant a package of their own.
package utils

// Build metadata, stamped via -ldflags at release time.
var (
	Version   = "dev"
	Sha       = "HEAD"
	Buildtime = "dev"
)
