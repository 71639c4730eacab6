/*
 *  Copyright (c) 2023 Juice Technologies, Inc. All Rights Reserved.
 */
package database

import (
	"context"

	"gorm.io/gorm"

	"github.com/Juice-Labs/borrow/pkg/slot"
)

// Session borrows the database held by a slot. Every method delegates to the
// shared pool; Close gives the acquisition back.
type Session struct {
	handle *slot.Handle[*Database]
}

func Borrow(databases *slot.Slot[*Database]) (*Session, error) {
	handle, err := databases.Acquire()
	if err != nil {
		return nil, err
	}

	return &Session{handle: handle}, nil
}

func (session *Session) Database() *Database {
	return session.handle.Value()
}

func (session *Session) DB(ctx context.Context) *gorm.DB {
	return session.handle.Value().Gorm().WithContext(ctx)
}

func (session *Session) Ping(ctx context.Context) error {
	sqlDB, err := session.handle.Value().Gorm().DB()
	if err != nil {
		return err
	}

	return sqlDB.PingContext(ctx)
}

// Exec runs a statement and returns the number of affected rows.
func (session *Session) Exec(ctx context.Context, sql string, args ...any) (int64, error) {
	result := session.DB(ctx).Exec(sql, args...)
	return result.RowsAffected, result.Error
}

// Scalar runs a query and returns the first column of its first row.
func (session *Session) Scalar(ctx context.Context, sql string, args ...any) (any, error) {
	tx := session.DB(ctx).Raw(sql, args...)
	row := tx.Row()
	if row == nil {
		return nil, tx.Error
	}
	if err := row.Err(); err != nil {
		return nil, err
	}

	var value any
	if err := row.Scan(&value); err != nil {
		return nil, err
	}

	if bytes, ok := value.([]byte); ok {
		return string(bytes), nil
	}

	return value, nil
}

func (session *Session) Transaction(ctx context.Context, fn func(tx *gorm.DB) error) error {
	return session.DB(ctx).Transaction(fn)
}

func (session *Session) Close() error {
	return session.handle.Release()
}

// Era is the slot era the borrowed database belongs to.
func (session *Session) Era() uint64 {
	return session.handle.Era()
}
