// SPDX-License-Identifier: EPL-2.0

package formats

import (
	"fmt"
	"strings"
)

// Quality is the caller selected compression tier.
type Quality int

const (
	// QualityStandard keeps the default encoder bitrate.
	QualityStandard Quality = iota
	// QualityHigh selects the high compression tier, trading bitrate for size.
	QualityHigh
)

const (
	standardBitRate = 128000
	highBitRate     = 96000
)

// BitRate returns the encoder bitrate in bits per second for lossy codecs.
func (q Quality) BitRate() int {
	if q == QualityHigh {
		return highBitRate
	}
	return standardBitRate
}

func (q Quality) String() string {
	if q == QualityHigh {
		return "high"
	}
	return "standard"
}

// ParseQuality parses "standard" or "high". The empty string is standard.
func ParseQuality(s string) (Quality, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "standard":
		return QualityStandard, nil
	case "high":
		return QualityHigh, nil
	default:
		return QualityStandard, fmt.Errorf("unknown quality tier %q", s)
	}
}
