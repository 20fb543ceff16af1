package mocks

import (
	"context"
	"fmt"
	"reflect"

	"github.com/rivalapexmediation/reconciler/core/warehouse"

	"github.com/stretchr/testify/mock"
)

// Conn is a mock implementation of warehouse.Conn
type Conn struct {
	mock.Mock
}

func (m *Conn) Select(ctx context.Context, dest any, query string, args ...any) error {
	called := m.Called(ctx, dest, query, args)
	return called.Error(0)
}

func (m *Conn) QueryRow(ctx context.Context, query string, args ...any) warehouse.Row {
	called := m.Called(ctx, query, args)
	if row, ok := called.Get(0).(warehouse.Row); ok {
		return row
	}
	return Row{}
}

func (m *Conn) Exec(ctx context.Context, query string, args ...any) error {
	called := m.Called(ctx, query, args)
	return called.Error(0)
}

func (m *Conn) PrepareBatch(ctx context.Context, query string) (warehouse.Batch, error) {
	called := m.Called(ctx, query)
	if batch, ok := called.Get(0).(warehouse.Batch); ok {
		return batch, called.Error(1)
	}
	return nil, called.Error(1)
}

func (m *Conn) Ping(ctx context.Context) error {
	called := m.Called(ctx)
	return called.Error(0)
}

func (m *Conn) Close() error {
	called := m.Called()
	return called.Error(0)
}

// Row is a canned single-row result for QueryRow expectations.
type Row struct {
	Values  []any
	ScanErr error
}

func (r Row) Scan(dest ...any) error {
	if r.ScanErr != nil {
		return r.ScanErr
	}
	if len(dest) > len(r.Values) {
		return fmt.Errorf("row holds %d values, scan wants %d", len(r.Values), len(dest))
	}
	for i := range dest {
		dv := reflect.ValueOf(dest[i])
		if dv.Kind() != reflect.Ptr || dv.IsNil() {
			return fmt.Errorf("scan destination %d is not a pointer", i)
		}
		sv := reflect.ValueOf(r.Values[i])
		if !sv.Type().AssignableTo(dv.Elem().Type()) {
			return fmt.Errorf("cannot scan %T into %T", r.Values[i], dest[i])
		}
		dv.Elem().Set(sv)
	}
	return nil
}

// Batch is a mock implementation of warehouse.Batch
type Batch struct {
	mock.Mock
}

func (m *Batch) Append(v ...any) error {
	called := m.Called(v)
	return called.Error(0)
}

func (m *Batch) Send() error {
	called := m.Called()
	return called.Error(0)
}
