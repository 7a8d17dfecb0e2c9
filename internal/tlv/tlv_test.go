package tlv

import (
	"math"
	"net"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"
)

func Test_EncodeDecodeUint_RoundTrip(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		tag := byte(rapid.IntRange(1, 255).Draw(t, "tag"))
		value := rapid.Uint64().Draw(t, "value")

		buf := make([]byte, 16)
		n := EncodeUint(buf, tag, value)

		records := Walk(buf[:n])
		require.Len(t, records, 1)
		assert.Equal(t, tag, records[0].Tag)
		assert.Equal(t, value, DecodeUint(records[0].Value))
	})
}

func Test_EncodeUint_ZeroIsTwoBytes(t *testing.T) {
	buf := make([]byte, 16)
	n := EncodeUint(buf, 7, 0)
	assert.Equal(t, 2, n)
	assert.Equal(t, []byte{7, 0}, buf[:2])
}

func Test_EncodeDecodeFloat_RoundTrip(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		tag := byte(rapid.IntRange(1, 255).Draw(t, "tag"))
		bits := rapid.Uint32().Draw(t, "bits")
		value := math.Float32frombits(bits)
		if math.IsNaN(float64(value)) {
			t.Skip("NaN handled separately")
		}

		buf := make([]byte, 16)
		n := EncodeFloat(buf, tag, value)
		records := Walk(buf[:n])
		require.Len(t, records, 1)
		assert.Equal(t, value, DecodeFloat(records[0].Value))
	})
}

func Test_EncodeFloat_NaNWritesNothing(t *testing.T) {
	buf := make([]byte, 16)
	n := EncodeFloat(buf, 9, float32(math.NaN()))
	assert.Equal(t, 0, n)
}

func Test_EncodeDouble_NaNWritesNothing(t *testing.T) {
	buf := make([]byte, 16)
	n := EncodeDouble(buf, 9, math.NaN())
	assert.Equal(t, 0, n)
}

func Test_FloatDouble_CrossConvert(t *testing.T) {
	buf := make([]byte, 16)

	// A double-width value read back as a float cross-converts rather
	// than reinterpreting raw bits.
	n := EncodeDouble(buf, 1, 3.5)
	records := Walk(buf[:n])
	require.Len(t, records, 1)
	assert.Equal(t, float32(3.5), DecodeFloat(records[0].Value))

	// And vice versa.
	n = EncodeFloat(buf, 1, 3.5)
	records = Walk(buf[:n])
	require.Len(t, records, 1)
	assert.Equal(t, 3.5, DecodeDouble(records[0].Value))
}

func Test_EncodeDecodeString_RoundTrip(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		tag := byte(rapid.IntRange(1, 255).Draw(t, "tag"))
		value := rapid.SliceOfN(rapid.Byte(), 0, 400).Draw(t, "value")

		buf := make([]byte, len(value)+8)
		n := EncodeString(buf, tag, value)
		records := Walk(buf[:n])
		require.Len(t, records, 1)
		assert.Equal(t, value, DecodeString(records[0].Value))
	})
}

func Test_EncodeString_LongLengthEscape(t *testing.T) {
	value := make([]byte, 300)
	buf := make([]byte, 320)
	n := EncodeString(buf, 5, value)

	assert.Equal(t, byte(5), buf[0])
	assert.Equal(t, byte(0x82), buf[1])
	assert.Equal(t, byte(0x01), buf[2])
	assert.Equal(t, byte(0x2c), buf[3])
	assert.Equal(t, 4+300, n)
}

func Test_EncodeSocket_Inet(t *testing.T) {
	addr := &net.UDPAddr{IP: net.IPv4(192, 168, 1, 2), Port: 0x1234}
	buf := make([]byte, 16)
	n := EncodeSocket(buf, 3, addr)
	require.Equal(t, 8, n) // tag + len + 6 bytes

	records := Walk(buf[:n])
	require.Len(t, records, 1)
	decoded, family := DecodeSocket(records[0].Value)
	assert.Equal(t, SocketInet, family)
	assert.Equal(t, addr.IP.To4().String(), decoded.(*net.UDPAddr).IP.String())
	assert.Equal(t, addr.Port, decoded.(*net.UDPAddr).Port)
}

func Test_EncodeSocket_UnknownFamilyWritesNothing(t *testing.T) {
	buf := make([]byte, 16)
	n := EncodeSocket(buf, 3, nil)
	assert.Equal(t, 0, n)
}

func Test_Walk_TerminatesOnTruncatedLength(t *testing.T) {
	// A declared length that runs past the buffer end must stop the
	// scan instead of panicking or looping.
	buf := []byte{1, 0x84, 0xff, 0xff, 0xff, 0xff} // claims a 4GB-ish length
	records := Walk(buf)
	assert.Empty(t, records)
}

func Test_Walk_StopsAtEOL(t *testing.T) {
	buf := make([]byte, 16)
	n := EncodeUint(buf, 11, 0x12345678)
	n += EncodeUint(buf[n:], 12, 0)
	n += EncodeEOL(buf[n:])
	n += EncodeUint(buf[n:], 13, 99) // should never be seen

	records := Walk(buf[:n])
	require.Len(t, records, 2)
	assert.Equal(t, byte(11), records[0].Tag)
	assert.Equal(t, byte(12), records[1].Tag)
}

func Test_Walk_NeverPanicsOnAdversarialInput(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		buf := rapid.SliceOfN(rapid.Byte(), 0, 64).Draw(t, "buf")
		// Must simply terminate, never panic, regardless of content.
		assert.NotPanics(t, func() { Walk(buf) })
	})
}

func Test_Decode_FullPacket(t *testing.T) {
	buf := make([]byte, 64)
	buf[0] = DirResponse
	n := 1
	n += EncodeUint(buf[n:], 0x0b, 0x12345678)
	n += EncodeUint(buf[n:], 0x0c, 0)
	n += EncodeUint(buf[n:], 0x0d, 0x0123456789ABCDEF)
	n += EncodeString(buf[n:], 0x0e, []byte("rx"))
	n += EncodeEOL(buf[n:])

	dir, records := Decode(buf[:n])
	assert.Equal(t, byte(DirResponse), dir)
	require.Len(t, records, 4)
	assert.Equal(t, uint64(0x12345678), DecodeUint(records[0].Value))
	assert.Equal(t, uint64(0), DecodeUint(records[1].Value))
	assert.Equal(t, uint64(0x0123456789ABCDEF), DecodeUint(records[2].Value))
	assert.Equal(t, "rx", string(DecodeString(records[3].Value)))
}
