package app

import (
	"context"
	"fmt"

	"github.com/ananmuhameed/therapy-ai-platform/internal/core/pipeline"
	coresession "github.com/ananmuhameed/therapy-ai-platform/internal/core/session"
	"github.com/ananmuhameed/therapy-ai-platform/internal/ports/secondary"
)

// sessionStatusWriter is satisfied by both the session repository and a
// pipeline transaction, so status writes validate the same way on either path.
type sessionStatusWriter interface {
	UpdateSessionStatus(ctx context.Context, sessionID, status, errorStage, errorMessage string) error
}

// transitionSession is the single write path for session status. The move is
// checked against the transition table before the write; an invalid move is a
// conflict, never a silent overwrite. On success the in-memory record is
// advanced so later transitions within the same attempt see the new state.
func transitionSession(ctx context.Context, w sessionStatusWriter, sess *secondary.SessionRecord, to coresession.Status, errorStage, errorMessage string) error {
	from := coresession.Status(sess.Status)
	if !coresession.CanTransition(from, to) {
		return &pipeline.ConflictError{
			Reason: fmt.Sprintf("session %s cannot move from %s to %s", sess.ID, from, to),
		}
	}
	if err := w.UpdateSessionStatus(ctx, sess.ID, string(to), errorStage, errorMessage); err != nil {
		return err
	}
	sess.Status = string(to)
	sess.LastErrorStage = errorStage
	sess.LastErrorMessage = errorMessage
	return nil
}
