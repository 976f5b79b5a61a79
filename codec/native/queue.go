// SPDX-License-Identifier: EPL-2.0

package native

import "io"

// queue is an audio.Source fed by push. It reports (0, nil) while empty
// and io.EOF once closed and drained.
type queue struct {
	rate     int
	channels int

	data   []float32
	off    int
	closed bool
}

func newQueue(rate, channels int) *queue {
	return &queue{rate: rate, channels: channels}
}

func (q *queue) SampleRate() int { return q.rate }
func (q *queue) Channels() int   { return q.channels }
func (q *queue) BufSize() int    { return len(q.data) - q.off }
func (q *queue) Close() error    { return nil }

func (q *queue) push(samples []float32) {
	if q.off > 0 && q.off >= len(q.data)/2 {
		n := copy(q.data, q.data[q.off:])
		q.data = q.data[:n]
		q.off = 0
	}
	q.data = append(q.data, samples...)
}

// finish marks the end of input.
func (q *queue) finish() { q.closed = true }

func (q *queue) ReadSamples(dst []float32) (int, error) {
	avail := len(q.data) - q.off
	if avail == 0 {
		if q.closed {
			return 0, io.EOF
		}
		return 0, nil
	}

	n := copy(dst[:len(dst)-len(dst)%q.channels], q.data[q.off:])
	q.off += n
	return n, nil
}
