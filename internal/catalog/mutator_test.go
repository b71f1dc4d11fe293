package catalog_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"CatalogDesk/internal/catalog"
)

func recordStates(ts *[]catalog.Transition) catalog.Observer {
	return func(t catalog.Transition) { *ts = append(*ts, t) }
}

func states(ts []catalog.Transition) []catalog.State {
	out := make([]catalog.State, 0, len(ts))
	for _, t := range ts {
		out = append(out, t.To)
	}
	return out
}

func TestMutator_CreateInvalidNeverReachesRemote(t *testing.T) {
	remote := &fakeRemote{}
	var ts []catalog.Transition
	m := catalog.NewMutator(remote, catalog.WithObserver(recordStates(&ts)))

	d := validDraft()
	d.Title = ""

	_, err := m.Create(context.Background(), d)
	require.ErrorIs(t, err, catalog.ErrInvalidDraft)

	var ve *catalog.ValidationError
	require.True(t, errors.As(err, &ve))
	assert.True(t, ve.Has(catalog.FieldTitle))

	assert.Equal(t, 0, remote.calls())
	assert.Equal(t, []catalog.State{catalog.StateValidating, catalog.StateValidationFailed}, states(ts))
	assert.Equal(t, catalog.StateValidationFailed, catalog.StateOf(err))
}

func TestMutator_CreateHugePriceIsValidationFailure(t *testing.T) {
	remote := &fakeRemote{}
	m := catalog.NewMutator(remote)

	d := validDraft()
	d.Price = "1e400"

	_, err := m.Create(context.Background(), d)

	var ve *catalog.ValidationError
	require.True(t, errors.As(err, &ve))
	assert.True(t, ve.Has(catalog.FieldPrice))
	assert.Equal(t, catalog.StateValidationFailed, catalog.StateOf(err))
	assert.Equal(t, 0, remote.calls())
}

func TestMutator_CreateSuccess(t *testing.T) {
	remote := &fakeRemote{}
	var ts []catalog.Transition
	m := catalog.NewMutator(remote, catalog.WithObserver(recordStates(&ts)))

	p, err := m.Create(context.Background(), validDraft())
	require.NoError(t, err)

	assert.Equal(t, 21, p.ID)
	assert.Equal(t, 1, remote.createCalls)
	assert.Equal(t, 10.0, remote.lastPayload.Price)
	assert.Equal(t, []catalog.State{
		catalog.StateValidating, catalog.StateSubmitting, catalog.StateSucceeded,
	}, states(ts))
	assert.Equal(t, catalog.StateIdle, ts[0].From)
	assert.Equal(t, catalog.OpCreate, ts[0].Op)
}

func TestMutator_UpdateRemote500(t *testing.T) {
	remote := &fakeRemote{products: shirtAndCup()}
	store := catalog.NewStore(remote)
	before, err := store.Load(context.Background())
	require.NoError(t, err)

	remote.writeErr = &catalog.RemoteError{Op: "remote.ReplaceProduct", Status: 500, Kind: catalog.ErrBadStatus}
	var ts []catalog.Transition
	m := catalog.NewMutator(remote, catalog.WithObserver(recordStates(&ts)))

	_, err = m.Update(context.Background(), 7, validDraft())
	require.Error(t, err)

	var re *catalog.RemoteError
	require.True(t, errors.As(err, &re))
	assert.Equal(t, 500, re.Status)
	assert.ErrorIs(t, err, catalog.ErrBadStatus)
	assert.False(t, catalog.IsNotFound(err))
	assert.Equal(t, catalog.StateRemoteFailed, catalog.StateOf(err))
	assert.Equal(t, catalog.StateRemoteFailed, ts[len(ts)-1].To)
	assert.Equal(t, 7, ts[len(ts)-1].ID)

	after, err := store.Snapshot()
	require.NoError(t, err)
	assert.Equal(t, before, after)
}

func TestMutator_UpdateValidatesIDAndDraftTogether(t *testing.T) {
	remote := &fakeRemote{}
	m := catalog.NewMutator(remote)

	d := validDraft()
	d.Price = "abc"

	_, err := m.Update(context.Background(), 0, d)

	var ve *catalog.ValidationError
	require.True(t, errors.As(err, &ve))
	assert.True(t, ve.Has("id"))
	assert.True(t, ve.Has(catalog.FieldPrice))
	assert.Equal(t, 0, remote.calls())
}

func TestMutator_UpdateSuccessKeepsID(t *testing.T) {
	remote := &fakeRemote{}
	m := catalog.NewMutator(remote)

	p, err := m.Update(context.Background(), 7, validDraft())
	require.NoError(t, err)
	assert.Equal(t, 7, p.ID)
	assert.Equal(t, 1, remote.replaceCalls)
}

func TestMutator_DeleteNotFound(t *testing.T) {
	remote := &fakeRemote{
		writeErr: &catalog.RemoteError{Op: "remote.DeleteProduct", Status: 200, Kind: catalog.ErrNotFound},
	}
	m := catalog.NewMutator(remote)

	err := m.Delete(context.Background(), 999)
	require.Error(t, err)

	var re *catalog.RemoteError
	assert.True(t, errors.As(err, &re))
	assert.True(t, catalog.IsNotFound(err))
	assert.Equal(t, 1, remote.deleteCalls)
}

func TestMutator_DeleteBadID(t *testing.T) {
	remote := &fakeRemote{}
	var ts []catalog.Transition
	m := catalog.NewMutator(remote, catalog.WithObserver(recordStates(&ts)))

	err := m.Delete(context.Background(), -1)
	require.ErrorIs(t, err, catalog.ErrInvalidDraft)
	assert.Equal(t, 0, remote.calls())
	assert.Equal(t, []catalog.State{catalog.StateValidating, catalog.StateValidationFailed}, states(ts))
}

func TestMutator_DeleteTwicePassesThrough(t *testing.T) {
	remote := &fakeRemote{}
	m := catalog.NewMutator(remote)

	require.NoError(t, m.Delete(context.Background(), 4))
	require.NoError(t, m.Delete(context.Background(), 4))
	assert.Equal(t, 2, remote.deleteCalls)
}

func TestMutator_FreshMachinePerCall(t *testing.T) {
	remote := &fakeRemote{}
	var ts []catalog.Transition
	m := catalog.NewMutator(remote, catalog.WithObserver(recordStates(&ts)))

	_, _ = m.Create(context.Background(), catalog.Draft{})
	ts = nil
	_, err := m.Create(context.Background(), validDraft())
	require.NoError(t, err)

	require.NotEmpty(t, ts)
	assert.Equal(t, catalog.StateIdle, ts[0].From)
}

func TestStateString(t *testing.T) {
	assert.Equal(t, "validation_failed", catalog.StateValidationFailed.String())
	assert.Equal(t, "remote_failed", catalog.StateRemoteFailed.String())
	assert.True(t, catalog.StateSucceeded.Terminal())
	assert.False(t, catalog.StateSubmitting.Terminal())
	assert.Equal(t, catalog.StateSucceeded, catalog.StateOf(nil))
}
