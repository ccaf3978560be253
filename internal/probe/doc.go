// Package probe checks TCP reachability of an address.
//
// LivenessProbe decides whether a host is up by connecting to the standard
// web ports. PortScanner connects to a fixed list of well-known ports in
// parallel and reports the ones that accepted. Both perform plain TCP
// connects only: no banners are read and nothing is sent.
package probe
