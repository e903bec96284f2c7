// Copyright © 2018 One Concern

package repo

import (
	"bytes"
	"context"
	"testing"

	"github.com/oneconcern/depot/pkg/core/status"
	"github.com/oneconcern/depot/pkg/errors"
	"github.com/oneconcern/depot/pkg/model"
	"github.com/oneconcern/depot/pkg/storage"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAddStatus(t *testing.T) {
	ctx := context.Background()
	home := testHome()
	require.NoError(t, home.Import(ctx, NewVersion(model.NewMetadata("test/comp/13"), nil)))

	statuses, err := home.Statuses(ctx, "test/comp/13")
	require.NoError(t, err)
	assert.Empty(t, statuses)

	require.NoError(t, home.AddStatus(ctx, "test/comp/13", Status{Key: "qa", Value: "failed"}))
	require.NoError(t, home.AddStatus(ctx, "test/comp/13", Status{Key: "qa", Value: "passed", Flags: map[string]string{"by": "jdoe", "build": "42"}}))

	statuses, err = home.Statuses(ctx, "test/comp/13")
	require.NoError(t, err)
	require.Len(t, statuses, 2)
	assert.Equal(t, Status{Key: "qa", Value: "failed"}, statuses[0])
	assert.Equal(t, "qa=passed (build=42, by=jdoe)", statuses[1].String())

	data, err := storage.ReadAll(ctx, home.info, "test/comp/13/"+StatusesFileName)
	require.NoError(t, err)
	assert.Equal(t, `[
  {
    "key": "qa",
    "value": "failed"
  },
  {
    "key": "qa",
    "value": "passed",
    "build": "42",
    "by": "jdoe"
  }
]
`, string(data))

	// statuses never show up as versions
	ids, err := home.Versions(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"test/comp/13"}, ids)

	// metadata is left untouched
	v, err := home.Resolve(ctx, "test/comp/13")
	require.NoError(t, err)
	assert.Equal(t, "test/comp/13", v.ID)
}

func TestAddStatusErrors(t *testing.T) {
	ctx := context.Background()
	home := testHome()

	err := home.AddStatus(ctx, "test/comp/14", Status{Key: "qa", Value: "passed"})
	require.Error(t, err)
	assert.True(t, errors.Is(err, status.ErrNotFound))

	require.NoError(t, home.Import(ctx, NewVersion(model.NewMetadata("test/comp/13"), nil)))
	for _, s := range []Status{
		{Value: "passed"},
		{Key: "qa", Value: "passed", Flags: map[string]string{"value": "x"}},
		{Key: "qa", Value: "passed", Flags: map[string]string{"": "x"}},
	} {
		err = home.AddStatus(ctx, "test/comp/13", s)
		require.Error(t, err)
		assert.Truef(t, errors.Is(err, model.ErrValidation), "status %v", s)
	}
}

func TestStatusesMalformed(t *testing.T) {
	ctx := context.Background()
	home := testHome()
	for _, data := range []string{`{"key": "qa"}`, `[{"key": 1}]`, `[{"key": "qa"`} {
		require.NoError(t, home.info.Put(ctx, "test/comp/13/"+StatusesFileName, bytes.NewBufferString(data), storage.OverWrite))
		_, err := home.Statuses(ctx, "test/comp/13")
		require.Errorf(t, err, "statuses %s", data)
		assert.True(t, errors.Is(err, model.ErrValidation))
	}
}
