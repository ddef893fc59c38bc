package prescription

import "context"

// Journal is an append-only sink for rendered journal lines. Implementations
// must never rewrite or remove a line once it has been appended.
type Journal interface {
	Append(ctx context.Context, line string) error
}

// Journals pairs the prescription and remark sinks used by a Service.
type Journals struct {
	Prescriptions Journal
	Remarks       Journal
}
