package rolldb

import (
	"context"
	"log/slog"

	"github.com/canvasstrack/voterroll/internal/logging"
)

// ReplaceVoters swaps the whole roll for voters in one transaction. Visit
// marks are kept. Marks whose voter disappears stop joining and drop out of
// every count, and they apply again if the voter id returns.
func (c *Client) ReplaceVoters(ctx context.Context, voters []Voter) error {
	err := c.WithTx(ctx, func(q *Queries) error {
		if err := q.DeleteAllVoters(ctx); err != nil {
			return err
		}
		return q.InsertVoters(ctx, voters, c.config.GetBulkInsertBatchSize())
	})
	if err != nil {
		return err
	}
	logging.LogOperation(c.logger, "voters_replaced", slog.Int("count", len(voters)))
	return nil
}

// BulkInsertVoters appends voters to the roll in one transaction.
func (c *Client) BulkInsertVoters(ctx context.Context, voters []Voter) error {
	err := c.WithTx(ctx, func(q *Queries) error {
		return q.InsertVoters(ctx, voters, c.config.GetBulkInsertBatchSize())
	})
	if err != nil {
		return err
	}
	logging.LogOperation(c.logger, "voters_inserted", slog.Int("count", len(voters)))
	return nil
}
