// Package status implements the per-device status/command loop
// described in §4.7: a fixed TLV status frame, and two cooperating
// loops (blocking command receive, once-per-second liveness monitor)
// over a shared UDP multicast group.
package status

// Tag values are the subset of ka9q-radio's status.h enum status_type
// this frame set actually uses, as exercised by the front-end status
// builders (airspyhf.c, rx888.c) and the matching listener
// (madpsy-ka9q_ubersdr's radiod_status.go).
const (
	TagEOL        = 0
	TagCommandTag = 1

	TagGPSTime        = 3
	TagDescription    = 4
	TagInputSampRate  = 6
	TagOutputSSRC     = 18
	TagCalibrate      = 17
	TagRadioFrequency = 19
	TagLock           = 28

	TagOutputSampRate         = 40
	TagOutputChannels         = 41
	TagOutputMetadataPackets  = 42
	TagOutputBitsPerSample    = 43
	TagDemodType              = 45
	TagDirectConversion       = 46
	TagLowEdge                = 50
	TagHighEdge               = 51
	TagCmdCnt                 = 52

	TagRFGain  = 97
	TagRFAtten = 96
)

// Direction byte values prefixing a complete TLV packet (§3, §6).
const (
	DirectionStatus  = 0
	DirectionCommand = 1
)

// DemodType mirrors channel.DemodKind's ordinal as encoded on the wire
// (TagDemodType), matching the original's demod_type enum ordering
// (LINEAR first).
type DemodType byte

const (
	DemodTypeLinear DemodType = iota
	DemodTypeFM
	DemodTypeWFM
	DemodTypeSpectrum
)
