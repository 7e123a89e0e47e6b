package core

import (
	"fmt"

	log "github.com/sirupsen/logrus"

	"github.com/kpfaulkner/jxl-oneshot/bundle"
	"github.com/kpfaulkner/jxl-oneshot/colour"
	"github.com/kpfaulkner/jxl-oneshot/frame"
	"github.com/kpfaulkner/jxl-oneshot/jxlio"
	"github.com/kpfaulkner/jxl-oneshot/options"
)

type SessionState int

const (
	StateIdle SessionState = iota
	StateHeaderParsed
	StatePixelsDecoded
	StateFailed
)

func (s SessionState) String() string {
	switch s {
	case StateIdle:
		return "Idle"
	case StateHeaderParsed:
		return "HeaderParsed"
	case StatePixelsDecoded:
		return "PixelsDecoded"
	case StateFailed:
		return "Failed"
	}
	return "Unknown"
}

type DecodeSessionOption func(s *DecodeSession)

// WithOptions sets the limits applied while parsing.
func WithOptions(opts *options.JXLOptions) DecodeSessionOption {
	return func(s *DecodeSession) {
		s.options = options.NewJXLOptions(opts)
	}
}

// parsedStream is everything HeaderParser yields for one input.
type parsedStream struct {
	header      *bundle.ImageHeader
	frameHeader *frame.FrameHeader
	codestream  []byte

	// offset of the ICC block in codestream
	dataOffset int

	// profile that decode returns when the stream embeds none
	synthesizedICC []byte
}

// DecodeSession runs probe and decode over one in-memory input. A session
// is single use: once it reaches PixelsDecoded or Failed it must not be
// called again. Sessions keep no shared state and may run in parallel.
type DecodeSession struct {
	data    []byte
	options *options.JXLOptions
	state   SessionState
	status  Status
}

func NewDecodeSession(data []byte, opts ...DecodeSessionOption) *DecodeSession {
	s := &DecodeSession{
		data:    data,
		options: options.NewJXLOptions(nil),
		state:   StateIdle,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *DecodeSession) State() SessionState {
	return s.state
}

// Status is the outcome of the last call, StatusOK while Idle.
func (s *DecodeSession) Status() Status {
	return s.status
}

func (s *DecodeSession) checkUsable(op string) {
	if s.state == StatePixelsDecoded || s.state == StateFailed {
		panic(fmt.Sprintf("jxl: %s on a session in state %s", op, s.state))
	}
}

func (s *DecodeSession) fail(op string, err error) Status {
	s.state = StateFailed
	s.status = StatusFromError(err)
	log.Debugf("%s: %s: %v", op, s.status, err)
	return s.status
}

// parse runs HeaderParser over the session's bytes. It never looks at the
// ICC block or the body.
func (s *DecodeSession) parse() (*parsedStream, error) {
	codestream, level, err := extractCodestream(s.data)
	if err != nil {
		return nil, err
	}
	opts := *s.options
	if level != 0 {
		opts.Level = level
	}

	reader := jxlio.NewBitreader(codestream)
	header, err := bundle.ParseImageHeader(reader, &opts)
	if err != nil {
		return nil, err
	}
	frameHeader, err := frame.NewFrameHeaderWithReader(reader, header, &opts)
	if err != nil {
		return nil, err
	}

	ps := &parsedStream{
		header:      header,
		frameHeader: frameHeader,
		codestream:  codestream,
		dataOffset:  reader.GetBytePos(),
	}
	if !header.ColourEncoding.UseIccProfile {
		if ps.synthesizedICC, err = colour.BuildICCProfile(header.ColourEncoding); err != nil {
			log.Errorf("cannot describe colour encoding: %v", err)
			return nil, jxlio.Invalidf("colour encoding has no ICC description: %v", err)
		}
	}
	if opts.Debug() {
		ps.logHeaders()
	}
	return ps, nil
}

func (ps *parsedStream) logHeaders() {
	size := ps.header.GetSize()
	log.Debugf("image %dx%d, %d bit, colour %s", size.Width, size.Height,
		ps.header.BitDepth.BitsPerSample, colour.Description(ps.header.ColourEncoding))
	for i, eci := range ps.header.ExtraChannelInfo {
		log.Debugf("extra channel %d: %s, %d bit", i, bundle.ExtraChannelTypeName(eci.EcType), eci.BitDepth.BitsPerSample)
	}
	log.Debugf("body %s, %d bytes, ICC %d bytes at offset %d", frame.EncodingName(ps.frameHeader.Encoding),
		ps.frameHeader.BodySize, ps.header.ICCSize, ps.dataOffset)
}

// checkComplete reports whether the ICC block and the body are all present.
func (ps *parsedStream) checkComplete() error {
	available := uint64(len(ps.codestream) - ps.dataOffset)
	if available < ps.header.ICCSize || available-ps.header.ICCSize < ps.frameHeader.BodySize {
		return jxlio.ErrNotEnoughInput
	}
	return nil
}

func (ps *parsedStream) iccSize() uint64 {
	if ps.header.ColourEncoding.UseIccProfile {
		return ps.header.ICCSize
	}
	return uint64(len(ps.synthesizedICC))
}

func (ps *parsedStream) streamInfo(format PixelFormat) StreamInfo {
	size := ps.header.GetSize()
	info := StreamInfo{
		Status:    StatusOK,
		Width:     size.Width,
		Height:    size.Height,
		AlphaBits: ps.header.AlphaBits(),
	}
	if format == NoPixelFormat {
		info.PixelsByteSize = ps.header.RawPixelSize()
		info.ICCByteSize = ps.header.ICCSize
		return info
	}
	info.PixelsByteSize = size.Area() * uint64(format.BytesPerPixel())
	info.ICCByteSize = ps.iccSize()
	return info
}

func checkFormat(op string, format PixelFormat, allowNone bool) {
	if format.IsValid() || (allowNone && format == NoPixelFormat) {
		return
	}
	panic(fmt.Sprintf("jxl: %s with pixel format %s", op, format))
}

// Probe parses the header only. With NoPixelFormat the sizes describe the
// stream's native pixel layout and embedded ICC block, otherwise the buffers
// Decode will return for format.
func (s *DecodeSession) Probe(format PixelFormat) StreamInfo {
	s.checkUsable("probe")
	checkFormat("probe", format, true)

	ps, err := s.parse()
	if err != nil {
		return StreamInfo{Status: s.fail("probe", err)}
	}
	s.state = StateHeaderParsed
	s.status = StatusOK
	info := ps.streamInfo(format)
	log.Debugf("probe: %dx%d alpha %d, %d pixel bytes, %d icc bytes", info.Width, info.Height, info.AlphaBits, info.PixelsByteSize, info.ICCByteSize)
	return info
}

// Decode re-parses the header, decodes the body and returns freshly
// allocated buffers.
func (s *DecodeSession) Decode(format PixelFormat) (Status, *DecodedImage) {
	s.checkUsable("decode")
	checkFormat("decode", format, false)

	ps, err := s.parse()
	if err == nil {
		err = ps.checkComplete()
	}
	if err != nil {
		return s.fail("decode", err), nil
	}
	info := ps.streamInfo(format)
	img := &DecodedImage{
		Width:       info.Width,
		Height:      info.Height,
		PixelFormat: format,
		Pixels:      make([]byte, info.PixelsByteSize),
		ICC:         make([]byte, info.ICCByteSize),
	}
	if err := s.decodeParsed(ps, format, img.Pixels, img.ICC); err != nil {
		return s.fail("decode", err), nil
	}
	return s.status, img
}

// DecodeInto decodes into caller owned buffers, which must be exactly the
// sizes a Probe with the same format reports. Wrong sizes panic.
func (s *DecodeSession) DecodeInto(format PixelFormat, pixels []byte, icc []byte) Status {
	s.checkUsable("decode")
	checkFormat("decode", format, false)

	ps, err := s.parse()
	if err != nil {
		return s.fail("decode", err)
	}
	info := ps.streamInfo(format)
	if uint64(len(pixels)) != info.PixelsByteSize || uint64(len(icc)) != info.ICCByteSize {
		panic(fmt.Sprintf("jxl: decode buffers are %d/%d bytes, probe reports %d/%d",
			len(pixels), len(icc), info.PixelsByteSize, info.ICCByteSize))
	}
	if err := s.decodeParsed(ps, format, pixels, icc); err != nil {
		return s.fail("decode", err)
	}
	return s.status
}

func (s *DecodeSession) decodeParsed(ps *parsedStream, format PixelFormat, pixels []byte, icc []byte) error {
	if err := ps.checkComplete(); err != nil {
		return err
	}
	reader := jxlio.NewBitreader(ps.codestream)
	if err := reader.SkipBytes(ps.dataOffset); err != nil {
		return err
	}
	if ps.header.ColourEncoding.UseIccProfile {
		embedded, err := reader.ReadBytes(int(ps.header.ICCSize))
		if err != nil {
			return err
		}
		copy(icc, embedded)
	} else {
		copy(icc, ps.synthesizedICC)
	}

	body, err := reader.ReadBytes(reader.Remaining())
	if err != nil {
		return err
	}
	f, err := frame.NewFrame(ps.header, ps.frameHeader, body)
	if err != nil {
		return err
	}
	renderPixels(f, format, pixels)

	s.state = StatePixelsDecoded
	s.status = StatusOK
	log.Debugf("decode: %dx%d %s body into %s", ps.header.Size.Width, ps.header.Size.Height,
		frame.EncodingName(ps.frameHeader.Encoding), format)
	return nil
}

// Probe runs a fresh session's Probe.
func Probe(data []byte, format PixelFormat, opts ...DecodeSessionOption) StreamInfo {
	return NewDecodeSession(data, opts...).Probe(format)
}

// Decode runs a fresh session's Decode.
func Decode(data []byte, format PixelFormat, opts ...DecodeSessionOption) (Status, *DecodedImage) {
	return NewDecodeSession(data, opts...).Decode(format)
}

// DecodeInto runs a fresh session's DecodeInto.
func DecodeInto(data []byte, format PixelFormat, pixels []byte, icc []byte, opts ...DecodeSessionOption) Status {
	return NewDecodeSession(data, opts...).DecodeInto(format, pixels, icc)
}
