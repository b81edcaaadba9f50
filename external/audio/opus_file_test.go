//go:build opus

package audio

import (
	"bytes"
	"context"
	"encoding/binary"
	"errors"
	"io"
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/foxseedlab/zumka/internal/audio"
	"github.com/hraban/opus"
)

const testOpusFrameSamples = 960 // 20 ms at 48 kHz

var oggCRCTable = func() [256]uint32 {
	var table [256]uint32
	for i := range table {
		r := uint32(i) << 24
		for range 8 {
			if r&0x80000000 != 0 {
				r = r<<1 ^ 0x04c11db7
			} else {
				r <<= 1
			}
		}
		table[i] = r
	}
	return table
}()

func oggCRC(data []byte) uint32 {
	var crc uint32
	for _, b := range data {
		crc = crc<<8 ^ oggCRCTable[byte(crc>>24)^b]
	}
	return crc
}

// writeOggPage appends a single-packet Ogg page to buf.
func writeOggPage(buf *bytes.Buffer, packet []byte, headerType byte, granule uint64, seq uint32) {
	var lacing []byte
	n := len(packet)
	for n >= 255 {
		lacing = append(lacing, 255)
		n -= 255
	}
	lacing = append(lacing, byte(n))

	page := []byte("OggS")
	page = append(page, 0, headerType)
	page = binary.LittleEndian.AppendUint64(page, granule)
	page = binary.LittleEndian.AppendUint32(page, 0x5a554d4b)
	page = binary.LittleEndian.AppendUint32(page, seq)
	crcOffset := len(page)
	page = binary.LittleEndian.AppendUint32(page, 0)
	page = append(page, byte(len(lacing)))
	page = append(page, lacing...)
	page = append(page, packet...)
	binary.LittleEndian.PutUint32(page[crcOffset:], oggCRC(page))
	buf.Write(page)
}

// writeStereoOpusFile encodes frames of interleaved stereo PCM into an
// Ogg/Opus file with no pre-skip.
func writeStereoOpusFile(t *testing.T, frames [][]int16) string {
	t.Helper()
	enc, err := opus.NewEncoder(opusSampleRate, 2, opus.AppAudio)
	if err != nil {
		t.Fatalf("NewEncoder() error = %v", err)
	}

	var buf bytes.Buffer
	head := []byte("OpusHead")
	head = append(head, 1, 2)
	head = binary.LittleEndian.AppendUint16(head, 0)
	head = binary.LittleEndian.AppendUint32(head, opusSampleRate)
	head = binary.LittleEndian.AppendUint16(head, 0)
	head = append(head, 0)
	writeOggPage(&buf, head, 0x02, 0, 0)

	vendor := "zumka-test"
	tags := []byte("OpusTags")
	tags = binary.LittleEndian.AppendUint32(tags, uint32(len(vendor)))
	tags = append(tags, vendor...)
	tags = binary.LittleEndian.AppendUint32(tags, 0)
	writeOggPage(&buf, tags, 0, 0, 1)

	packet := make([]byte, 4000)
	for i, frame := range frames {
		n, err := enc.Encode(frame, packet)
		if err != nil {
			t.Fatalf("Encode() frame %d error = %v", i, err)
		}
		var headerType byte
		if i == len(frames)-1 {
			headerType = 0x04
		}
		granule := uint64((i + 1) * testOpusFrameSamples)
		writeOggPage(&buf, packet[:n], headerType, granule, uint32(i+2))
	}

	path := filepath.Join(t.TempDir(), "stereo.opus")
	if err := os.WriteFile(path, buf.Bytes(), 0o600); err != nil {
		t.Fatalf("failed to write fixture: %v", err)
	}
	return path
}

func readAllChunks(t *testing.T, src audio.Source) []byte {
	t.Helper()
	var out []byte
	for {
		chunk, err := src.Next(context.Background())
		if errors.Is(err, io.EOF) {
			return out
		}
		if err != nil {
			t.Fatalf("Next() error = %v", err)
		}
		out = append(out, chunk...)
	}
}

func TestOpusFileSourceDownmixesStereo(t *testing.T) {
	const (
		frameCount = 5
		amplitude  = 8000.0
	)
	// Left and right carry the same tone in opposite phase, so a correct
	// downmix is near silence while mislabelled interleaved samples are loud.
	frames := make([][]int16, frameCount)
	for f := range frames {
		frame := make([]int16, testOpusFrameSamples*2)
		for i := range testOpusFrameSamples {
			pos := f*testOpusFrameSamples + i
			v := int16(amplitude * math.Sin(2*math.Pi*440*float64(pos)/opusSampleRate))
			frame[2*i] = v
			frame[2*i+1] = -v
		}
		frames[f] = frame
	}
	path := writeStereoOpusFile(t, frames)

	src, err := OpenFile(path, 4000, testRawFormat)
	if err != nil {
		t.Fatalf("OpenFile() error = %v", err)
	}
	defer src.Close()

	format := src.Format()
	if format.SampleRateHertz != opusSampleRate || format.ChannelCount != 1 {
		t.Fatalf("Format() = %+v, want 48000 Hz mono", format)
	}

	data := readAllChunks(t, src)
	if want := frameCount * testOpusFrameSamples * 2; len(data) != want {
		t.Fatalf("decoded %d bytes, want %d (one mono sample per stereo frame)", len(data), want)
	}

	var sum float64
	for i := 0; i+1 < len(data); i += 2 {
		s := float64(int16(binary.LittleEndian.Uint16(data[i:])))
		sum += s * s
	}
	rms := math.Sqrt(sum / float64(len(data)/2))
	if rms > amplitude/8 {
		t.Fatalf("downmixed RMS = %.0f, want close to silence", rms)
	}
}
