package main

import (
	"encoding/binary"
	"net"
)

// pcmSink is the minimal, in-scope stand-in for a device's audio
// output: RTP framing is an out-of-scope external collaborator
// concern (§1), so this writes each demodulated block straight to a
// UDP destination as big-endian 16-bit PCM with no header at all,
// rather than attempting a protocol-conformant RTP stack.
type pcmSink struct {
	conn *net.UDPConn
}

func newPCMSink(conn *net.UDPConn) *pcmSink {
	return &pcmSink{conn: conn}
}

// WriteBlock implements linear.Sink. marked is dropped on the floor:
// it exists to set an RTP marker bit this sink doesn't have.
func (s *pcmSink) WriteBlock(left, right []float32, marked bool) {
	n := len(left)
	if right != nil {
		n += len(right)
	}
	if n == 0 {
		return
	}

	buf := make([]byte, 0, n*2)
	for i, l := range left {
		buf = appendPCM16(buf, l)
		if right != nil {
			buf = appendPCM16(buf, right[i])
		}
	}

	s.conn.Write(buf)
}

func appendPCM16(buf []byte, v float32) []byte {
	s := v * 32767
	switch {
	case s > 32767:
		s = 32767
	case s < -32768:
		s = -32768
	}

	var tmp [2]byte
	binary.BigEndian.PutUint16(tmp[:], uint16(int16(s)))
	return append(buf, tmp[:]...)
}
