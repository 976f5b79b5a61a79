// SPDX-License-Identifier: EPL-2.0

package ffmpeg

import (
	"bufio"
	"io"
	"strconv"
	"strings"
	"time"
)

// readProgress consumes ffmpeg -progress output. Each block ends with a
// progress=continue or progress=end line.
func readProgress(r io.Reader, total time.Duration, report func(float64)) error {
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		key, value, ok := strings.Cut(strings.TrimSpace(scanner.Text()), "=")
		if !ok || report == nil {
			continue
		}

		switch key {
		// out_time_ms carries microseconds as well
		case "out_time_us", "out_time_ms":
			if total <= 0 {
				continue
			}
			us, err := strconv.ParseInt(value, 10, 64)
			if err != nil || us < 0 {
				continue
			}
			report(min(float64(us)*float64(time.Microsecond)/float64(total), 1))
		case "progress":
			if value == "end" {
				report(1)
			}
		}
	}
	return scanner.Err()
}
