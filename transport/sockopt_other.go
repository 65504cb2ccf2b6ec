//go:build !unix

package transport

import "net"

// Non-Unix platforms keep the kernel defaults.
func setSocketOptions(_ *net.UDPConn) {}
