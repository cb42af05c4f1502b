// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package ordering

import "context"

// propagation is the write-propagation litmus engine.
//
//	incrementer   snapshotter     consumer
//	count++       t = count       d = b
//	              a = t           Read()
//	              Write()         c = a
//	              b = t           d ahead of c → reordered
//
// a is always written before b from the same snapshot of a counter that
// only grows, and b is read before a. A consumer that finds b ahead of a
// saw the second store before the first. There is no trial boundary:
// every consumer pass is one observation.
type propagation struct {
	count Word
	a, b  Word

	barrier Barrier
	judge   *judge
}

func newPropagation(mem Memory, b Barrier, j *judge) *propagation {
	return &propagation{
		count:   mem.Word(LocCount),
		a:       mem.Word(LocA),
		b:       mem.Word(LocB),
		barrier: b,
		judge:   j,
	}
}

// role0 is the incrementer. It never waits.
func (e *propagation) role0(context.Context) error {
	e.count.Add(1)
	return nil
}

// role1 is the snapshotter.
func (e *propagation) role1(context.Context) error {
	t := e.count.Load()
	e.a.Store(t)
	e.barrier.Write()
	e.b.Store(t)
	return nil
}

// role2 is the consumer.
func (e *propagation) role2(context.Context) error {
	d := e.b.Load()
	e.barrier.Read()
	c := e.a.Load()
	return e.judge.judge(ahead(d, c), Detection{A: c, B: d})
}

// ahead reports whether counter value b is newer than a, tolerating
// wraparound.
func ahead(b, a uint64) bool {
	return int64(b-a) > 0
}
