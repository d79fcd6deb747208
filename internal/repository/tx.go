package repository

import (
	"context"

	"gorm.io/gorm"
)

type txKey struct{}

type txState struct {
	tx          *gorm.DB
	afterCommit []func()
}

// TxManager runs fn inside one database transaction. Repositories called
// with the ctx handed to fn take part in that transaction; nested calls
// join the outermost one.
type TxManager interface {
	WithinTx(ctx context.Context, fn func(ctx context.Context) error) error
	// AfterCommit defers hook until the outermost transaction in ctx has
	// committed. Without a transaction the hook runs immediately. Hooks of a
	// rolled back transaction are discarded.
	AfterCommit(ctx context.Context, hook func())
}

type gormTxManager struct {
	db *gorm.DB
}

func NewTxManager(db *gorm.DB) TxManager {
	return &gormTxManager{db}
}

func (m *gormTxManager) WithinTx(ctx context.Context, fn func(ctx context.Context) error) error {
	if _, ok := ctx.Value(txKey{}).(*txState); ok {
		return fn(ctx)
	}

	state := &txState{}
	err := m.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		state.tx = tx
		return fn(context.WithValue(ctx, txKey{}, state))
	})
	if err != nil {
		return err
	}
	for _, hook := range state.afterCommit {
		hook()
	}
	return nil
}

func (m *gormTxManager) AfterCommit(ctx context.Context, hook func()) {
	if state, ok := ctx.Value(txKey{}).(*txState); ok {
		state.afterCommit = append(state.afterCommit, hook)
		return
	}
	hook()
}

// conn returns the transaction carried by ctx, or db bound to ctx.
func conn(ctx context.Context, db *gorm.DB) *gorm.DB {
	if state, ok := ctx.Value(txKey{}).(*txState); ok && state.tx != nil {
		return state.tx
	}
	return db.WithContext(ctx)
}
