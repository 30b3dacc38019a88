package namesrv

import "net"

// bufferedListener applies socket buffer sizes to every accepted TCP
// connection. A size of 0 keeps the OS default.
type bufferedListener struct {
	net.Listener
	sndBuf int
	rcvBuf int
}

func (l *bufferedListener) Accept() (net.Conn, error) {
	conn, err := l.Listener.Accept()
	if err != nil {
		return nil, err
	}
	if tcp, ok := conn.(*net.TCPConn); ok {
		if l.sndBuf > 0 {
			_ = tcp.SetWriteBuffer(l.sndBuf)
		}
		if l.rcvBuf > 0 {
			_ = tcp.SetReadBuffer(l.rcvBuf)
		}
	}
	return conn, nil
}
