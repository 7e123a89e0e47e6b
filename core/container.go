package core

import (
	"bytes"
	"encoding/binary"
	"io"

	log "github.com/sirupsen/logrus"

	"github.com/kpfaulkner/jxl-oneshot/jxlio"
)

var (
	CODESTREAM_SIGNATURE = [2]byte{0xFF, 0x0A}
	CONTAINER_SIGNATURE  = [12]byte{0x00, 0x00, 0x00, 0x0C, 0x4A, 0x58, 0x4C, 0x20, 0x0D, 0x0A, 0x87, 0x0A}

	JXLL = makeTag([]byte{'j', 'x', 'l', 'l'}, 0, 4)
	JXLP = makeTag([]byte{'j', 'x', 'l', 'p'}, 0, 4)
	JXLC = makeTag([]byte{'j', 'x', 'l', 'c'}, 0, 4)
)

const jxlpLastPart = 0x80000000

type ContainerBoxHeader struct {
	BoxType uint64

	// BoxSize is the payload size, header excluded.
	BoxSize uint64

	// Offset of the payload from the first box.
	Offset int

	// Truncated is set when the input ends inside the payload.
	Truncated bool
}

// BoxReader walks the boxes that follow the container signature.
type BoxReader struct {
	data  []byte
	pos   int
	level int32
}

func NewBoxReader(data []byte) *BoxReader {
	return &BoxReader{data: data}
}

// ReadBoxHeader returns io.EOF exactly at the end of the data and
// jxlio.ErrNotEnoughInput when the data ends inside a box header.
func (br *BoxReader) ReadBoxHeader() (*ContainerBoxHeader, error) {
	remaining := len(br.data) - br.pos
	if remaining == 0 {
		return nil, io.EOF
	}
	if remaining < 8 {
		return nil, jxlio.ErrNotEnoughInput
	}

	boxSize := uint64(binary.BigEndian.Uint32(br.data[br.pos:]))
	tag := makeTag(br.data, br.pos+4, 4)
	headerSize := uint64(8)
	if boxSize == 1 {
		if remaining < 16 {
			return nil, jxlio.ErrNotEnoughInput
		}
		boxSize = binary.BigEndian.Uint64(br.data[br.pos+8:])
		headerSize = 16
	}

	offset := br.pos + int(headerSize)
	available := uint64(len(br.data) - offset)
	var payload uint64
	if boxSize == 0 {
		// box runs to the end of the file
		payload = available
	} else {
		if boxSize < headerSize {
			log.Errorf("box size %d smaller than its header", boxSize)
			return nil, jxlio.Invalidf("invalid box size %d", boxSize)
		}
		payload = boxSize - headerSize
	}

	return &ContainerBoxHeader{
		BoxType:   tag,
		BoxSize:   payload,
		Offset:    offset,
		Truncated: payload > available,
	}, nil
}

func (br *BoxReader) payload(box *ContainerBoxHeader) []byte {
	end := len(br.data)
	if !box.Truncated {
		end = box.Offset + int(box.BoxSize)
	}
	return br.data[box.Offset:end]
}

// ReadCodestream returns the codestream carried by a jxlc box or by the
// concatenated jxlp boxes. When the input ends early the result is the
// prefix seen so far, so the header parser decides how much is missing.
func (br *BoxReader) ReadCodestream() ([]byte, error) {
	var codestream []byte
	seenJXLC := false
	nextPart := uint32(0)

	for {
		box, err := br.ReadBoxHeader()
		if err == io.EOF || jxlio.IsNotEnoughInput(err) {
			break
		}
		if err != nil {
			return nil, err
		}
		payload := br.payload(box)

		switch box.BoxType {
		case JXLL:
			if box.Truncated {
				return codestream, jxlio.ErrNotEnoughInput
			}
			if box.BoxSize != 1 {
				log.Errorf("jxll box size %d", box.BoxSize)
				return nil, jxlio.Invalidf("jxll box size should be 1, got %d", box.BoxSize)
			}
			if payload[0] != 5 && payload[0] != 10 {
				log.Errorf("invalid level %d", payload[0])
				return nil, jxlio.Invalidf("invalid level %d", payload[0])
			}
			br.level = int32(payload[0])

		case JXLC:
			if seenJXLC || nextPart > 0 {
				log.Errorf("unexpected jxlc box")
				return nil, jxlio.Invalidf("codestream split across jxlc and jxlp boxes")
			}
			seenJXLC = true
			codestream = payload
			return codestream, nil

		case JXLP:
			if seenJXLC {
				log.Errorf("unexpected jxlp box")
				return nil, jxlio.Invalidf("codestream split across jxlc and jxlp boxes")
			}
			if len(payload) < 4 {
				if box.Truncated {
					return codestream, nil
				}
				return nil, jxlio.Invalidf("jxlp box without sequence number")
			}
			index := binary.BigEndian.Uint32(payload)
			if index&^jxlpLastPart != nextPart {
				log.Errorf("jxlp box %d out of sequence, expected %d", index&^jxlpLastPart, nextPart)
				return nil, jxlio.Invalidf("jxlp box %d out of sequence", index&^jxlpLastPart)
			}
			nextPart++
			codestream = append(codestream, payload[4:]...)
			if index&jxlpLastPart != 0 {
				return codestream, nil
			}
		}

		if box.Truncated {
			break
		}
		br.pos = box.Offset + int(box.BoxSize)
	}

	if !seenJXLC && nextPart == 0 {
		return nil, jxlio.ErrNotEnoughInput
	}
	return codestream, nil
}

// extractCodestream checks the signature and strips the container if there
// is one. level is 0 unless a jxll box set it.
func extractCodestream(data []byte) (codestream []byte, level int32, err error) {
	if len(data) == 0 {
		return nil, 0, jxlio.ErrNotEnoughInput
	}
	switch data[0] {
	case CODESTREAM_SIGNATURE[0]:
		if len(data) < 2 {
			return nil, 0, jxlio.ErrNotEnoughInput
		}
		if data[1] != CODESTREAM_SIGNATURE[1] {
			return nil, 0, jxlio.Invalidf("not a JXL codestream: 0xFF0A magic mismatch")
		}
		return data, 0, nil

	case CONTAINER_SIGNATURE[0]:
		n := min(len(data), len(CONTAINER_SIGNATURE))
		if !bytes.Equal(data[:n], CONTAINER_SIGNATURE[:n]) {
			return nil, 0, jxlio.Invalidf("invalid container signature")
		}
		if n < len(CONTAINER_SIGNATURE) {
			return nil, 0, jxlio.ErrNotEnoughInput
		}
		br := NewBoxReader(data[len(CONTAINER_SIGNATURE):])
		codestream, err := br.ReadCodestream()
		if err != nil {
			return nil, 0, err
		}
		return codestream, br.level, nil
	}
	return nil, 0, jxlio.Invalidf("unrecognised signature byte 0x%02x", data[0])
}

func makeTag(bytes []uint8, offset int, length int) uint64 {
	tag := uint64(0)
	for i := offset; i < offset+length; i++ {
		tag = (tag << 8) | uint64(bytes[i])&0xFF
	}
	return tag
}
