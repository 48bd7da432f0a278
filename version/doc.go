// Package version carries the client library version and the build
// metadata reported by the blx command.
//
// Version and GitCommit can be overridden at link time:
//
//	go build -ldflags "-X github.com/billinglogix/billinglogix-go/version.Version=1.2.0"
package version
