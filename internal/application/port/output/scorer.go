package output

import "context"

// ScorerPort is the external scoring collaborator: an opaque inference
// call that receives a composed payload and returns raw structured-or-text
// output. Deadlines arrive on ctx; cancellation is best-effort and depends
// on the adapter honoring it.
type ScorerPort interface {
	Call(ctx context.Context, taskName string, payload string) (string, error)
}
