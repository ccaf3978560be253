// Package main provides the entry point for the iprecon CLI.
//
// iprecon takes a batch of IP addresses and reports, for each one, its
// approximate location, whether it answers on HTTP/HTTPS, which common
// service ports are open and which cloud provider owns it.
//
// Usage:
//
//	iprecon scan 8.8.8.8 1.1.1.1
//	iprecon scan --list ips.txt
//	iprecon serve
//
// See --help for all available options.
package main

// main is the entry point for iprecon.
func main() {
	Execute()
}
