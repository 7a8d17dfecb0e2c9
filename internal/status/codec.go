package status

import (
	"github.com/doismellburning/fxradiod/internal/tlv"
)

// Frame is the fixed status-frame content described in §4.7: command
// tag, command count, GPS-epoch nanosecond timestamp, free-text
// description, input sample rate, metadata packet counter,
// calibration, current tuned frequency, lock bit, demod kind, output
// sample rate and channel count, direct-conversion flag, spectrum
// edges, and bits-per-sample.
type Frame struct {
	CommandTag    uint32
	CommandCount  uint64
	TimestampNs   uint64
	Description   string
	InputSampRate uint32

	MetadataPackets uint64

	Calibrate     float64
	TunedFreqHz   float64
	Locked        bool
	Demod         DemodType

	OutputSampRate   uint32
	OutputChannels   uint32
	DirectConversion bool

	LowEdgeHz  float32
	HighEdgeHz float32

	BitsPerSample uint32
}

// Encode appends a complete status-direction TLV packet (direction
// byte, records, trailing EOL) for f to dst and returns the result.
// The Encode* primitives in package tlv write into a fixed buffer from
// its start and report the bytes written, mirroring the original's
// bp-pointer style; Encode drives that style against a scratch buffer
// and appends the used portion to dst.
func (f Frame) Encode(dst []byte) []byte {
	scratch := make([]byte, 1+16*12+len(f.Description)+8)
	n := 0

	n += tlv.EncodeUint(scratch[n:], TagCommandTag, uint64(f.CommandTag))
	n += tlv.EncodeUint(scratch[n:], TagCmdCnt, f.CommandCount)
	n += tlv.EncodeUint(scratch[n:], TagGPSTime, f.TimestampNs)
	n += tlv.EncodeString(scratch[n:], TagDescription, []byte(f.Description))
	n += tlv.EncodeUint(scratch[n:], TagInputSampRate, uint64(f.InputSampRate))
	n += tlv.EncodeUint(scratch[n:], TagOutputMetadataPackets, f.MetadataPackets)
	n += tlv.EncodeDouble(scratch[n:], TagCalibrate, f.Calibrate)
	n += tlv.EncodeDouble(scratch[n:], TagRadioFrequency, f.TunedFreqHz)
	n += tlv.EncodeUint(scratch[n:], TagLock, boolToUint(f.Locked))
	n += tlv.EncodeUint(scratch[n:], TagDemodType, uint64(f.Demod))
	n += tlv.EncodeUint(scratch[n:], TagOutputSampRate, uint64(f.OutputSampRate))
	n += tlv.EncodeUint(scratch[n:], TagOutputChannels, uint64(f.OutputChannels))
	n += tlv.EncodeUint(scratch[n:], TagDirectConversion, boolToUint(f.DirectConversion))
	n += tlv.EncodeFloat(scratch[n:], TagLowEdge, f.LowEdgeHz)
	n += tlv.EncodeFloat(scratch[n:], TagHighEdge, f.HighEdgeHz)
	n += tlv.EncodeUint(scratch[n:], TagOutputBitsPerSample, uint64(f.BitsPerSample))
	n += tlv.EncodeEOL(scratch[n:])

	dst = append(dst, DirectionStatus)
	dst = append(dst, scratch[:n]...)
	return dst
}

func boolToUint(b bool) uint64 {
	if b {
		return 1
	}
	return 0
}

// DecodeFrame parses a status-direction packet's records back into a
// Frame. Unknown tags are ignored, matching the TLV walker's
// forward-compatible decode policy (§3).
func DecodeFrame(packet []byte) Frame {
	var f Frame

	direction, records := tlv.Decode(packet)
	if direction != DirectionStatus {
		return f
	}

	for _, r := range records {
		switch r.Tag {
		case TagCommandTag:
			f.CommandTag = uint32(tlv.DecodeUint(r.Value))
		case TagCmdCnt:
			f.CommandCount = tlv.DecodeUint(r.Value)
		case TagGPSTime:
			f.TimestampNs = tlv.DecodeUint(r.Value)
		case TagDescription:
			f.Description = string(tlv.DecodeString(r.Value))
		case TagInputSampRate:
			f.InputSampRate = uint32(tlv.DecodeUint(r.Value))
		case TagOutputMetadataPackets:
			f.MetadataPackets = tlv.DecodeUint(r.Value)
		case TagCalibrate:
			f.Calibrate = tlv.DecodeDouble(r.Value)
		case TagRadioFrequency:
			f.TunedFreqHz = tlv.DecodeDouble(r.Value)
		case TagLock:
			f.Locked = tlv.DecodeUint(r.Value) != 0
		case TagDemodType:
			f.Demod = DemodType(tlv.DecodeUint(r.Value))
		case TagOutputSampRate:
			f.OutputSampRate = uint32(tlv.DecodeUint(r.Value))
		case TagOutputChannels:
			f.OutputChannels = uint32(tlv.DecodeUint(r.Value))
		case TagDirectConversion:
			f.DirectConversion = tlv.DecodeUint(r.Value) != 0
		case TagLowEdge:
			f.LowEdgeHz = tlv.DecodeFloat(r.Value)
		case TagHighEdge:
			f.HighEdgeHz = tlv.DecodeFloat(r.Value)
		case TagOutputBitsPerSample:
			f.BitsPerSample = uint32(tlv.DecodeUint(r.Value))
		}
	}

	return f
}

// Command is the subset of a received command packet's fields the
// command loop dispatches on (§4.7): the tracking tag, an optional
// calibration override, RF gain/attenuation, and a requested tuned
// frequency.
type Command struct {
	CommandTag uint32

	HasCalibrate bool
	Calibrate    float64

	HasRFGain bool
	RFGain    float32

	HasRFAtten bool
	RFAtten    float32

	HasFrequency bool
	FrequencyHz  float64
}

// DecodeCommand parses a command-direction packet into a Command.
// Tags this loop does not recognize are ignored.
func DecodeCommand(packet []byte) (Command, bool) {
	var c Command

	direction, records := tlv.Decode(packet)
	if direction != DirectionCommand {
		return c, false
	}

	for _, r := range records {
		switch r.Tag {
		case TagCommandTag:
			c.CommandTag = uint32(tlv.DecodeUint(r.Value))
		case TagCalibrate:
			c.HasCalibrate = true
			c.Calibrate = tlv.DecodeDouble(r.Value)
		case TagRFGain:
			c.HasRFGain = true
			c.RFGain = tlv.DecodeFloat(r.Value)
		case TagRFAtten:
			c.HasRFAtten = true
			c.RFAtten = tlv.DecodeFloat(r.Value)
		case TagRadioFrequency:
			c.HasFrequency = true
			c.FrequencyHz = tlv.DecodeDouble(r.Value)
		}
	}

	return c, true
}
