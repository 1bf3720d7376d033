package tools

import (
	"context"
	"errors"
	"fmt"

	"github.com/rahul2317-NRK/chatbot9/internal/models"
	"github.com/rahul2317-NRK/chatbot9/internal/store"
)

const defaultHistoryLimit = 20

// ErrSessionAccess is returned when the caller asks for another user's
// conversation.
var ErrSessionAccess = errors.New("access denied to this session")

func newRelevanceHandler(deps *Dependencies) func(context.Context, RelevanceArgs) (any, error) {
	return func(_ context.Context, args RelevanceArgs) (any, error) {
		if deps.Gate == nil {
			return nil, errors.New("relevance gate not configured")
		}
		return deps.Gate.Check(args.Prompt), nil
	}
}

func newHistoryHandler(deps *Dependencies) func(context.Context, HistoryArgs) (any, error) {
	return func(ctx context.Context, args HistoryArgs) (any, error) {
		limit := args.Limit
		if limit == 0 {
			limit = defaultHistoryLimit
		}

		if caller, ok := callerOf(ctx); ok {
			sess, err := deps.Store.GetSession(ctx, args.SessionID)
			switch {
			case errors.Is(err, store.ErrNotFound):
			case err != nil:
				return nil, fmt.Errorf("Failed to get chat history: %w", err)
			case !sess.AccessibleBy(caller):
				return nil, ErrSessionAccess
			}
		}

		msgs, err := deps.Store.GetHistory(ctx, args.SessionID, limit)
		if err != nil {
			return nil, fmt.Errorf("Failed to get chat history: %w", err)
		}

		history := models.ToHistory(msgs)
		return HistoryResult{
			History:      history,
			SessionID:    args.SessionID,
			MessageCount: len(history),
		}, nil
	}
}
