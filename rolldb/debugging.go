package rolldb

import (
	"context"
	"fmt"
)

// TableCounts returns the row count of every table the schema defines.
func (c *Client) TableCounts(ctx context.Context) (map[string]int, error) {
	counts := make(map[string]int)
	err := c.WithConn(ctx, func(q *Queries) error {
		for _, table := range []string{"voters", "voter_visits", "users"} {
			var query string

			// This prevents SQL injection by ensuring the query string is always a constant.
			switch table {
			case "voters":
				query = "SELECT COUNT(*) FROM voters"
			case "voter_visits":
				query = "SELECT COUNT(*) FROM voter_visits"
			case "users":
				query = "SELECT COUNT(*) FROM users"
			}

			var count int
			if err := q.db.QueryRowContext(ctx, query).Scan(&count); err != nil {
				return fmt.Errorf("failed to count %s: %w", table, err)
			}
			counts[table] = count
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return counts, nil
}
