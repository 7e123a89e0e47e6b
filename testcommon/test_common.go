package testcommon

import (
	"github.com/kpfaulkner/jxl-oneshot/jxlio"
)

// BitReaderFromWriter hands back a real reader over everything written to bw.
func BitReaderFromWriter(bw *jxlio.BitWriter) *jxlio.Bitreader {
	return jxlio.NewBitreader(bw.Bytes())
}
