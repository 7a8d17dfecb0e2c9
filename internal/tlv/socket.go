package tlv

import (
	"net"
)

// Socket address family tags, matching the wire shapes used by the
// status plane for RTP destination / source fields: AF_INET is 6
// bytes (4 address + 2 port, network order), AF_INET6 is 10 bytes
// (first 8 bytes of the address + 2 port), AF_UNIX is a NUL-terminated
// path. An unknown family encodes zero bytes (the record is simply
// omitted by the caller).

// EncodeSocket writes a tag/length/value record for addr. addr may be
// *net.UDPAddr (IPv4 or IPv6) or *net.UnixAddr. Any other type, or a
// nil addr, writes nothing and returns 0.
func EncodeSocket(buf []byte, tag byte, addr net.Addr) int {
	switch a := addr.(type) {
	case *net.UDPAddr:
		if ip4 := a.IP.To4(); ip4 != nil {
			var body [6]byte
			copy(body[0:4], ip4)
			body[4] = byte(a.Port >> 8)
			body[5] = byte(a.Port)
			buf[0] = tag
			n := encodeLength(buf[1:], len(body))
			copy(buf[1+n:], body[:])
			return 1 + n + len(body)
		}
		if ip6 := a.IP.To16(); ip6 != nil {
			var body [10]byte
			copy(body[0:8], ip6[:8])
			body[8] = byte(a.Port >> 8)
			body[9] = byte(a.Port)
			buf[0] = tag
			n := encodeLength(buf[1:], len(body))
			copy(buf[1+n:], body[:])
			return 1 + n + len(body)
		}
		return 0

	case *net.UnixAddr:
		path := append([]byte(a.Name), 0)
		return EncodeString(buf, tag, path)

	default:
		return 0
	}
}

// SocketFamily reports which address family a decoded socket record
// most likely holds, inferred from its value length the way the wire
// format itself distinguishes them (there is no explicit family tag).
type SocketFamily int

const (
	SocketUnknown SocketFamily = iota
	SocketInet
	SocketInet6
	SocketUnix
)

// DecodeSocket reconstructs an address from a socket-valued TLV
// record. A 6-byte value decodes as AF_INET, a 10-byte value as
// AF_INET6 (with the low 8 bytes of the IPv6 address left zero, since
// only the first 8 were carried on the wire), and anything else is
// treated as a NUL-terminated AF_UNIX path.
func DecodeSocket(value []byte) (net.Addr, SocketFamily) {
	switch len(value) {
	case 6:
		ip := net.IPv4(value[0], value[1], value[2], value[3])
		port := int(value[4])<<8 | int(value[5])
		return &net.UDPAddr{IP: ip, Port: port}, SocketInet

	case 10:
		var ip [16]byte
		copy(ip[:8], value[:8])
		port := int(value[8])<<8 | int(value[9])
		return &net.UDPAddr{IP: net.IP(ip[:]), Port: port}, SocketInet6

	default:
		path := value
		if i := indexByte(path, 0); i >= 0 {
			path = path[:i]
		}
		return &net.UnixAddr{Name: string(path), Net: "unix"}, SocketUnix
	}
}

func indexByte(b []byte, c byte) int {
	for i, v := range b {
		if v == c {
			return i
		}
	}
	return -1
}
