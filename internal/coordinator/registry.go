package coordinator

import (
	"sort"

	"github.com/kingrea/redraft/internal/text"
)

// registry is the id → record store. It does no locking of its own: every
// call happens under the coordinator's mutex, which also guards the buffer
// and baseline the records describe.
type registry struct {
	ops map[string]*Operation
}

func newRegistry() *registry {
	return &registry{ops: map[string]*Operation{}}
}

func (r *registry) add(op *Operation) {
	r.ops[op.ID] = op
}

func (r *registry) find(id string) (*Operation, bool) {
	op, ok := r.ops[id]
	return op, ok
}

// markCompleted transitions pending → completed. Returns false when the id
// is gone (cancelled or cleaned up) or the record already settled; the
// caller treats false as "discard the result silently".
func (r *registry) markCompleted(id, result string) bool {
	op, ok := r.ops[id]
	if !ok || op.Status != StatusPending {
		return false
	}
	op.Status = StatusCompleted
	op.Result = result
	return true
}

// markError transitions pending → error under the same no-op rule.
func (r *registry) markError(id, message string) bool {
	op, ok := r.ops[id]
	if !ok || op.Status != StatusPending {
		return false
	}
	op.Status = StatusError
	op.Error = message
	return true
}

func (r *registry) remove(id string) bool {
	if _, ok := r.ops[id]; !ok {
		return false
	}
	delete(r.ops, id)
	return true
}

func (r *registry) removeAll() int {
	n := len(r.ops)
	r.ops = map[string]*Operation{}
	return n
}

func (r *registry) len() int {
	return len(r.ops)
}

// list returns clones of every record in submission order.
func (r *registry) list() []Operation {
	out := make([]Operation, 0, len(r.ops))
	for _, op := range r.ops {
		out = append(out, op.Clone())
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Seq < out[j].Seq })
	return out
}

// completedBefore returns clones of the completed records whose original
// span ends at or before start, excluding the given id. This is the set the
// remapper sums over.
func (r *registry) completedBefore(start int, excludeID string) []Operation {
	var out []Operation
	for _, op := range r.ops {
		if op.ID == excludeID || op.Status != StatusCompleted {
			continue
		}
		if op.Span.End <= start {
			out = append(out, op.Clone())
		}
	}
	return out
}

// overlapping returns the live record whose original span overlaps sp, if
// any. Every record still present counts as live: completed results have
// already claimed their stretch of the baseline.
func (r *registry) overlapping(sp text.Span) (*Operation, bool) {
	for _, op := range r.ops {
		if op.Span.Overlaps(sp) {
			return op, true
		}
	}
	return nil, false
}
