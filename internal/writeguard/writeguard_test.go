package writeguard

import (
	"context"
	"errors"
	"testing"

	"soccerpipe/internal/pipelineerr"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeTx embeds the nil pgx.Tx interface so it satisfies pgx.Tx without
// reimplementing every method; only Exec/Commit/Rollback, the ones Authorize
// and WithAuthorizedTx actually call, are overridden.
type fakeTx struct {
	pgx.Tx
	execCalls   []string
	execErr     error
	commitErr   error
	rollbackErr error
	committed   bool
	rolledBack  bool
}

func (f *fakeTx) Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error) {
	f.execCalls = append(f.execCalls, sql)
	if f.execErr != nil {
		return pgconn.CommandTag{}, f.execErr
	}
	return pgconn.CommandTag{}, nil
}

func (f *fakeTx) Commit(ctx context.Context) error {
	f.committed = true
	return f.commitErr
}

func (f *fakeTx) Rollback(ctx context.Context) error {
	f.rolledBack = true
	return f.rollbackErr
}

type fakePool struct {
	tx       *fakeTx
	beginErr error
}

func (p *fakePool) Begin(ctx context.Context) (pgx.Tx, error) {
	if p.beginErr != nil {
		return nil, p.beginErr
	}
	return p.tx, nil
}

func TestAuthorize_RunsGateFunction(t *testing.T) {
	tx := &fakeTx{}
	err := Authorize(context.Background(), tx)
	require.NoError(t, err)
	require.Len(t, tx.execCalls, 1)
	assert.Contains(t, tx.execCalls[0], "authorize_pipeline_write")
}

func TestAuthorize_WrapsDenialAsWriteProtectionKind(t *testing.T) {
	tx := &fakeTx{execErr: errors.New("permission denied for relation matches_v2")}

	err := Authorize(context.Background(), tx)
	require.Error(t, err)

	var pe *pipelineerr.Error
	require.True(t, pipelineerr.As(err, &pe))
	assert.Equal(t, pipelineerr.KindWriteProtectionDeny, pe.Kind)
	assert.Equal(t, "writeguard", pe.Component)
}

func TestWithAuthorizedTx_CommitsOnSuccess(t *testing.T) {
	tx := &fakeTx{}
	pool := &fakePool{tx: tx}

	ranFn := false
	err := WithAuthorizedTx(context.Background(), pool, func(pgx.Tx) error {
		ranFn = true
		return nil
	})

	require.NoError(t, err)
	assert.True(t, ranFn)
	assert.True(t, tx.committed)
}

func TestWithAuthorizedTx_RollsBackWhenFnFails(t *testing.T) {
	tx := &fakeTx{}
	pool := &fakePool{tx: tx}
	fnErr := errors.New("boom")

	err := WithAuthorizedTx(context.Background(), pool, func(pgx.Tx) error {
		return fnErr
	})

	require.ErrorIs(t, err, fnErr)
	assert.False(t, tx.committed)
	assert.True(t, tx.rolledBack)
}

func TestWithAuthorizedTx_NeverCallsFnWhenAuthorizeFails(t *testing.T) {
	tx := &fakeTx{execErr: errors.New("denied")}
	pool := &fakePool{tx: tx}

	ranFn := false
	err := WithAuthorizedTx(context.Background(), pool, func(pgx.Tx) error {
		ranFn = true
		return nil
	})

	require.Error(t, err)
	assert.False(t, ranFn)
}
