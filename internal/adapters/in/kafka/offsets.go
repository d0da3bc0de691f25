package kafka

import (
	"context"
	"sync"

	"github.com/segmentio/kafka-go"
)

type partitionKey struct {
	topic     string
	partition int
}

// partitionOffsets holds fetched messages of one partition in fetch order.
type partitionOffsets struct {
	inFlight  []kafka.Message
	finished  map[int64]struct{}
	committed int64
	hasCommit bool
}

// offsetTracker lets workers finish out of order while the committed offset of
// each partition only advances over a contiguous run of finished messages.
type offsetTracker struct {
	mu         sync.Mutex
	partitions map[partitionKey]*partitionOffsets

	// Serializes commits so a lower offset is never committed after a higher one.
	commitMu sync.Mutex
}

func newOffsetTracker() *offsetTracker {
	return &offsetTracker{partitions: make(map[partitionKey]*partitionOffsets)}
}

func (t *offsetTracker) add(msg kafka.Message) {
	t.mu.Lock()
	defer t.mu.Unlock()
	p := t.partition(msg)
	p.inFlight = append(p.inFlight, msg)
}

// finish marks msg done and returns the newest message that is now safe to
// commit, if any.
func (t *offsetTracker) finish(msg kafka.Message) (kafka.Message, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	p := t.partition(msg)
	p.finished[msg.Offset] = struct{}{}

	var (
		last kafka.Message
		ok   bool
	)
	for len(p.inFlight) > 0 {
		head := p.inFlight[0]
		if _, done := p.finished[head.Offset]; !done {
			break
		}
		delete(p.finished, head.Offset)
		p.inFlight = p.inFlight[1:]
		last, ok = head, true
	}
	return last, ok
}

func (t *offsetTracker) commit(ctx context.Context, r MessageReader, msg kafka.Message) error {
	ready, ok := t.finish(msg)
	if !ok {
		return nil
	}

	t.commitMu.Lock()
	defer t.commitMu.Unlock()

	t.mu.Lock()
	p := t.partition(ready)
	stale := p.hasCommit && ready.Offset <= p.committed
	t.mu.Unlock()
	if stale {
		return nil
	}

	if err := r.CommitMessages(ctx, ready); err != nil {
		return err
	}

	t.mu.Lock()
	p.committed, p.hasCommit = ready.Offset, true
	t.mu.Unlock()
	return nil
}

func (t *offsetTracker) partition(msg kafka.Message) *partitionOffsets {
	key := partitionKey{topic: msg.Topic, partition: msg.Partition}
	p, ok := t.partitions[key]
	if !ok {
		p = &partitionOffsets{finished: make(map[int64]struct{})}
		t.partitions[key] = p
	}
	return p
}
