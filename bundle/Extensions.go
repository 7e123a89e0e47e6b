package bundle

import (
	"math"

	log "github.com/sirupsen/logrus"

	"github.com/kpfaulkner/jxl-oneshot/jxlio"
)

// maxExtensionPayload bounds a single extension payload, in bytes.
const maxExtensionPayload = 1 << 20

const payloadChunk = 4096

type Extensions struct {
	ExtensionsKey uint64
	Payloads      [64][]byte
}

func NewExtensions() *Extensions {
	ex := &Extensions{}
	ex.ExtensionsKey = 0
	return ex
}

func NewExtensionsWithReader(reader jxlio.BitReader) (*Extensions, error) {
	ex := &Extensions{}
	var err error
	if ex.ExtensionsKey, err = reader.ReadU64(); err != nil {
		return nil, err
	}
	var lengths [64]uint64
	for i := 0; i < 64; i++ {
		if (1<<i)&ex.ExtensionsKey != 0 {
			length, err := reader.ReadU64()
			if err != nil {
				return nil, err
			}
			if length > math.MaxInt32 || length > maxExtensionPayload {
				log.Errorf("extension %d payload too large: %d", i, length)
				return nil, jxlio.Invalidf("extension %d payload too large: %d", i, length)
			}
			lengths[i] = length
		}
	}
	// declared lengths are untrusted until the bytes arrive, so payloads
	// grow with the input rather than being sized up front.
	for i := 0; i < 64; i++ {
		if lengths[i] == 0 {
			continue
		}
		payload := make([]byte, 0, min(lengths[i], payloadChunk))
		for j := uint64(0); j < lengths[i]; j++ {
			b, err := reader.ReadBits(8)
			if err != nil {
				return nil, err
			}
			payload = append(payload, byte(b))
		}
		ex.Payloads[i] = payload
	}
	return ex, nil
}

func (ex *Extensions) Write(writer *jxlio.BitWriter) {
	writer.WriteU64(ex.ExtensionsKey)
	for i := 0; i < 64; i++ {
		if (1<<i)&ex.ExtensionsKey != 0 {
			writer.WriteU64(uint64(len(ex.Payloads[i])))
		}
	}
	for i := 0; i < 64; i++ {
		if (1<<i)&ex.ExtensionsKey == 0 {
			continue
		}
		for _, b := range ex.Payloads[i] {
			writer.WriteBits(uint64(b), 8)
		}
	}
}
