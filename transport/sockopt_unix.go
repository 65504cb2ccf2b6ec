//go:build unix

package transport

/*------------------------------------------------------------------
 *
 * Purpose:	Socket tuning for the receive path. A burst of DATA
 *		segments between reads is normal at small inter-packet
 *		delays, so the kernel receive buffer gets room for a few
 *		full loops. SO_REUSEADDR is set as well; it is applied
 *		after the socket is already bound, so it does not affect
 *		this socket's own bind.
 *
 *------------------------------------------------------------------*/

import (
	"net"

	"golang.org/x/sys/unix"
)

const receiveBufferBytes = 4 << 20

func setSocketOptions(conn *net.UDPConn) {
	var rc, err = conn.SyscallConn()
	if err != nil {
		logger.Debug("no raw socket access", "err", err)

		return
	}

	_ = rc.Control(func(fd uintptr) {
		if err := unix.SetsockoptInt(int(fd), unix.SOL_SOCKET, unix.SO_REUSEADDR, 1); err != nil {
			logger.Debug("SO_REUSEADDR", "err", err)
		}

		if err := unix.SetsockoptInt(int(fd), unix.SOL_SOCKET, unix.SO_RCVBUF, receiveBufferBytes); err != nil {
			logger.Debug("SO_RCVBUF", "err", err)
		}
	})
}
