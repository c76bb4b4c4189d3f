package db

import (
	"context"
	"database/sql"
	"fmt"
)

// Store 提供所有数据库操作，包括单条查询和事务
type Store interface {
	Querier
	AddUrlClicks(ctx context.Context, clicks map[string]int64) error
}

type SQLStore struct {
	*Queries
	db *sql.DB
}

func NewStore(db *sql.DB) Store {
	return &SQLStore{
		db:      db,
		Queries: New(db),
	}
}

func (store *SQLStore) execTx(ctx context.Context, fn func(*Queries) error) error {
	tx, err := store.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}

	q := New(tx)
	err = fn(q)
	if err != nil {
		if rbErr := tx.Rollback(); rbErr != nil {
			return fmt.Errorf("tx err: %v, rb err: %v", err, rbErr)
		}
		return err
	}

	return tx.Commit()
}

// AddUrlClicks 在一个事务中批量刷新聚合后的点击数
func (store *SQLStore) AddUrlClicks(ctx context.Context, clicks map[string]int64) error {
	return store.execTx(ctx, func(q *Queries) error {
		for code, count := range clicks {
			if count == 0 {
				continue
			}
			err := q.AddUrlClick(ctx, AddUrlClickParams{
				ShortCode: code,
				AddCount:  count,
			})
			if err != nil {
				return err
			}
		}
		return nil
	})
}
