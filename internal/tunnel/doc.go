// Package tunnel opens an SSH local port forward through a bastion host so
// the database endpoint, which is not publicly reachable, can be dialed on a
// loopback port.
//
// A Session owns one SSH client, one loopback listener and the goroutines
// that bridge accepted connections to the remote endpoint. Close releases all
// of them and waits for the goroutines to exit.
package tunnel
