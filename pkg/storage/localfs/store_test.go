// Copyright © 2018 One Concern

package localfs

import (
	"bytes"
	"context"
	"io"
	"strconv"
	"testing"

	"github.com/oneconcern/depot/pkg/errors"
	"github.com/oneconcern/depot/pkg/storage"
	"github.com/oneconcern/depot/pkg/storage/status"
	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestHas(t *testing.T) {
	bs := setupStore(t)

	has, err := bs.Has(context.Background(), "sixteentons")
	require.NoError(t, err)
	require.True(t, has)

	has, err = bs.Has(context.Background(), "heavy/seventeentons")
	require.NoError(t, err)
	require.True(t, has)

	has, err = bs.Has(context.Background(), "heavy")
	require.NoError(t, err)
	require.False(t, has, "directories are not objects")

	has, err = bs.Has(context.Background(), "fifteentons")
	require.NoError(t, err)
	require.False(t, has)
}

func TestGet(t *testing.T) {
	bs := setupStore(t)

	rdr, err := bs.Get(context.Background(), "sixteentons")
	require.NoError(t, err)
	b, err := io.ReadAll(rdr)
	require.NoError(t, err)
	require.NoError(t, rdr.Close())
	assert.Equal(t, "this is the text", string(b))

	b, err = storage.ReadAll(context.Background(), bs, "/heavy/seventeentons")
	require.NoError(t, err)
	assert.Equal(t, "this is the text for another thing", string(b))

	_, err = bs.Get(context.Background(), "fifteentons")
	assert.True(t, errors.Is(err, status.ErrNotExists))
}

func TestKeys(t *testing.T) {
	bs := setupStore(t)

	keys, err := bs.Keys(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"heavy/seventeentons", "sixteentons"}, keys)
}

func TestDelete(t *testing.T) {
	bs := setupStore(t)

	require.NoError(t, bs.Delete(context.Background(), "heavy/seventeentons"))
	require.NoError(t, bs.Delete(context.Background(), "heavy/seventeentons"), "deleting twice is not an error")
	k, _ := bs.Keys(context.Background())
	assert.Len(t, k, 1)
}

func TestClear(t *testing.T) {
	bs := setupStore(t)

	require.NoError(t, bs.Clear(context.Background()))
	k, err := bs.Keys(context.Background())
	require.NoError(t, err)
	require.Empty(t, k)
}

func TestPut(t *testing.T) {
	for _, atomic := range []bool{false, true} {
		bs := New(afero.NewMemMapFs(), Atomic(atomic))

		content := bytes.NewBufferString("here we go once again")
		err := bs.Put(context.Background(), "a/b/eighteentons", content, storage.NoOverWrite)
		require.NoError(t, err)

		b, err := storage.ReadAll(context.Background(), bs, "a/b/eighteentons")
		require.NoError(t, err)
		assert.Equal(t, "here we go once again", string(b))

		err = bs.Put(context.Background(), "a/b/eighteentons", bytes.NewBufferString("again"), storage.NoOverWrite)
		assert.True(t, errors.Is(err, status.ErrExists))

		require.NoError(t, bs.Put(context.Background(), "a/b/eighteentons", bytes.NewBufferString("again"), storage.OverWrite))
		b, err = storage.ReadAll(context.Background(), bs, "a/b/eighteentons")
		require.NoError(t, err)
		assert.Equal(t, "again", string(b))

		k, err := bs.Keys(context.Background())
		require.NoError(t, err)
		assert.Equal(t, []string{"a/b/eighteentons"}, k, "the staging area is never listed")
	}
}

func TestInvalidKeys(t *testing.T) {
	bs := New(afero.NewMemMapFs(), Atomic(true))
	for _, key := range []string{"", "/", ".", nestedPutStageName + "/x"} {
		err := bs.Put(context.Background(), key, bytes.NewBufferString("x"), storage.OverWrite)
		assert.Truef(t, errors.Is(err, status.ErrInvalidResource), "key %q", key)
	}
}

func TestKeysPrefix(t *testing.T) {
	bs := New(afero.NewMemMapFs())
	for i := 0; i < 10; i++ {
		require.NoError(t, bs.Put(context.Background(), "test/comp/13/e"+strconv.Itoa(i), bytes.NewBufferString("x"), storage.OverWrite))
		require.NoError(t, bs.Put(context.Background(), "test/comp/1/f"+strconv.Itoa(i), bytes.NewBufferString("x"), storage.OverWrite))
	}

	keys, err := bs.KeysPrefix(context.Background(), "test/comp/13")
	require.NoError(t, err)
	assert.Len(t, keys, 10)
	assert.Equal(t, "test/comp/13/e0", keys[0])

	keys, err = bs.KeysPrefix(context.Background(), "test/comp/1/")
	require.NoError(t, err)
	assert.Len(t, keys, 10)

	keys, err = bs.KeysPrefix(context.Background(), "test/comp/1/f3")
	require.NoError(t, err)
	assert.Equal(t, []string{"test/comp/1/f3"}, keys)

	keys, err = bs.KeysPrefix(context.Background(), "test/other")
	require.NoError(t, err)
	assert.Empty(t, keys)
}

func TestHasPrefix(t *testing.T) {
	bs := New(afero.NewMemMapFs(), Atomic(true))
	for i := 0; i < 3; i++ {
		require.NoError(t, bs.Put(context.Background(), "test/comp/13/sub/e"+strconv.Itoa(i), bytes.NewBufferString("x"), storage.OverWrite))
	}
	instrumented := storage.Instrument(zap.NewNop(), bs)

	for _, toPin := range []struct {
		prefix   string
		expected bool
	}{
		{prefix: "test/comp/13", expected: true},
		{prefix: "test/comp/13/", expected: true},
		{prefix: "test", expected: true},
		{prefix: "test/comp/13/sub/e1", expected: true},
		{prefix: "test/comp/1", expected: false},
		{prefix: "test/other", expected: false},
		{prefix: nestedPutStageName, expected: false},
	} {
		has, err := instrumented.HasPrefix(context.Background(), toPin.prefix)
		require.NoError(t, err)
		assert.Equalf(t, toPin.expected, has, "prefix %q", toPin.prefix)
	}

	// a left-over empty directory holds no key
	require.NoError(t, bs.Delete(context.Background(), "test/comp/13/sub/e0"))
	require.NoError(t, bs.Delete(context.Background(), "test/comp/13/sub/e1"))
	require.NoError(t, bs.Delete(context.Background(), "test/comp/13/sub/e2"))
	has, err := bs.HasPrefix(context.Background(), "test/comp/13")
	require.NoError(t, err)
	assert.False(t, has)
}

func TestCopyInstrumented(t *testing.T) {
	src := setupStore(t)
	dst := storage.Instrument(zap.NewNop(), New(afero.NewMemMapFs()))

	require.NoError(t, storage.Copy(context.Background(), src, "sixteentons", dst, "copies/sixteentons", storage.NoOverWrite))
	b, err := storage.ReadAll(context.Background(), dst, "copies/sixteentons")
	require.NoError(t, err)
	assert.Equal(t, "this is the text", string(b))
	assert.Equal(t, "localfs@memory", dst.String())
}

func setupStore(t testing.TB) storage.Store {
	t.Helper()

	fs := afero.NewMemMapFs()
	require.NoError(t, afero.WriteFile(fs, "sixteentons", []byte("this is the text"), 0600))
	require.NoError(t, fs.MkdirAll("heavy", 0700))
	require.NoError(t, afero.WriteFile(fs, "heavy/seventeentons", []byte("this is the text for another thing"), 0600))

	return New(fs)
}
