package ports

import (
	"context"

	"github.com/airband-io/airband/pkg/domain"
)

// ResponseValidator is the scoring collaborator. The engine treats the
// outcome as opaque except for IsCorrect, which selects the pass or fail
// edge on continue.
//
// The call may be slow (speech scoring, LLM grading); hosts run it outside
// the session lock and feed the outcome back through ResolveEvaluation,
// where stale tickets are dropped.
type ResponseValidator interface {
	Evaluate(ctx context.Context, req domain.ValidationRequest) (domain.ValidationOutcome, error)
}
