// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package ordering

import "code.hybscloud.com/atomix"

// detectionRing carries detections from the judging role to the
// reporter without either side blocking.
//
// Lamport's ring buffer with cached index optimization. The judging role
// is the only producer and the reporter the only consumer. A full ring
// drops the record; the judging role never waits on logging.
type detectionRing struct {
	_          pad
	head       atomix.Uint64 // Reporter reads from here
	_          pad
	cachedTail uint64 // Reporter's cached view of tail
	_          pad
	tail       atomix.Uint64 // Judging role writes here
	_          pad
	cachedHead uint64 // Judging role's cached view of head
	_          pad
	dropped    atomix.Uint64
	_          padShort
	buffer     []Detection
	mask       uint64
}

// newDetectionRing creates a ring holding at least capacity records.
// Capacity rounds up to the next power of 2.
func newDetectionRing(capacity int) *detectionRing {
	if capacity < 2 {
		panic("ordering: ring capacity must be >= 2")
	}

	n := uint64(roundToPow2(capacity))
	return &detectionRing{
		buffer: make([]Detection, n),
		mask:   n - 1,
	}
}

// publish queues d (producer only). If the reporter has fallen a full
// ring behind, d is dropped and counted instead.
func (q *detectionRing) publish(d *Detection) {
	tail := q.tail.LoadRelaxed()
	if tail-q.cachedHead > q.mask {
		q.cachedHead = q.head.LoadAcquire()
		if tail-q.cachedHead > q.mask {
			q.dropped.AddAcqRel(1)
			return
		}
	}

	q.buffer[tail&q.mask] = *d
	q.tail.StoreRelease(tail + 1)
}

// next removes the oldest record (consumer only).
// Returns ErrWouldBlock if nothing is queued.
func (q *detectionRing) next() (Detection, error) {
	head := q.head.LoadRelaxed()
	if head >= q.cachedTail {
		q.cachedTail = q.tail.LoadAcquire()
		if head >= q.cachedTail {
			return Detection{}, ErrWouldBlock
		}
	}

	d := q.buffer[head&q.mask]
	q.head.StoreRelease(head + 1)
	return d, nil
}

// drops returns how many records publish has discarded.
func (q *detectionRing) drops() uint64 {
	return q.dropped.LoadAcquire()
}

// capacity returns the number of records the ring holds.
func (q *detectionRing) capacity() int {
	return int(q.mask + 1)
}

// roundToPow2 rounds n up to the next power of 2.
func roundToPow2(n int) int {
	if n < 2 {
		return 2
	}
	n--
	n |= n >> 1
	n |= n >> 2
	n |= n >> 4
	n |= n >> 8
	n |= n >> 16
	n |= n >> 32
	return n + 1
}
