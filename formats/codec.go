// SPDX-License-Identifier: EPL-2.0

package formats

import "strings"

// Codec identifies the algorithm that encodes sample data. Values are
// big-endian four character codes.
type Codec uint32

const (
	CodecUnknown       Codec = 0
	CodecLinearPCM     Codec = 'l'<<24 | 'p'<<16 | 'c'<<8 | 'm'
	CodecAAC           Codec = 'a'<<24 | 'a'<<16 | 'c'<<8 | ' '
	CodecAppleLossless Codec = 'a'<<24 | 'l'<<16 | 'a'<<8 | 'c'
	CodecFLAC          Codec = 'f'<<24 | 'l'<<16 | 'a'<<8 | 'c'
	CodecMPEGLayer3    Codec = '.'<<24 | 'm'<<16 | 'p'<<8 | '3'
	CodecIMA4          Codec = 'i'<<24 | 'm'<<16 | 'a'<<8 | '4'
	CodecVorbis        Codec = 'v'<<24 | 'o'<<16 | 'r'<<8 | 'b'
)

// FourCC returns the four character code of c.
func (c Codec) FourCC() string {
	return string([]byte{byte(c >> 24), byte(c >> 16), byte(c >> 8), byte(c)})
}

func (c Codec) String() string {
	if c == CodecUnknown {
		return "unknown"
	}
	return strings.TrimSpace(c.FourCC())
}

// Compressed reports whether the codec stores something other than raw samples.
func (c Codec) Compressed() bool {
	return c != CodecLinearPCM && c != CodecUnknown
}
