// Package main provides the entry point for the footprint CLI.
//
// footprint aggregates the public digital footprint of a domain or username
// from several OSINT providers into one report.
//
// Usage:
//
//	footprint analyze <target>...
//	footprint serve --listen :8080
//
// See --help for all available options.
package main

func main() {
	Execute()
}
