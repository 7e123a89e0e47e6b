package options

const (
	DefaultLevel       = 5
	DefaultMaxICCSize  = 1 << 28
	DefaultMaxBodySize = 1 << 40
)

// JXLOptions bounds what a decode session will accept.
type JXLOptions struct {
	// Level is the codestream conformance level, 5 or 10. It sets the
	// dimension and area limits applied to the size header.
	Level int32

	// MaxICCSize caps the embedded ICC profile length.
	MaxICCSize uint64

	// MaxBodySize caps the declared pixel body length.
	MaxBodySize uint64

	debug bool
}

func NewJXLOptions(options *JXLOptions) *JXLOptions {

	opt := &JXLOptions{
		Level:       DefaultLevel,
		MaxICCSize:  DefaultMaxICCSize,
		MaxBodySize: DefaultMaxBodySize,
	}
	if options != nil {
		if options.Level != 0 {
			opt.Level = options.Level
		}
		if options.MaxICCSize != 0 {
			opt.MaxICCSize = options.MaxICCSize
		}
		if options.MaxBodySize != 0 {
			opt.MaxBodySize = options.MaxBodySize
		}
		opt.debug = options.debug
	}
	return opt
}

func (o *JXLOptions) WithDebug(debug bool) *JXLOptions {
	o.debug = debug
	return o
}

func (o *JXLOptions) Debug() bool {
	return o.debug
}

// MaxDimension returns the largest width or height allowed at this level.
func (o *JXLOptions) MaxDimension() uint64 {
	if o.Level <= 5 {
		return 1 << 18
	}
	return 1 << 28
}

// MaxArea returns the largest width*height allowed at this level.
func (o *JXLOptions) MaxArea() uint64 {
	if o.Level <= 5 {
		return 1 << 30
	}
	return 1 << 40
}
