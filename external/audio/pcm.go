package audio

import "encoding/binary"

// appendDownmixedStereo averages interleaved L/R int16 pairs into mono and
// appends them to dst as little-endian PCM. A trailing odd sample is ignored.
func appendDownmixedStereo(dst []byte, interleaved []int16) []byte {
	for i := 0; i+1 < len(interleaved); i += 2 {
		mixed := (int32(interleaved[i]) + int32(interleaved[i+1])) / 2
		dst = binary.LittleEndian.AppendUint16(dst, uint16(int16(mixed)))
	}
	return dst
}
