//go:build integration

package kv

import (
	"context"
	"testing"

	"github.com/c360studio/semrepo/repository"
	"github.com/c360studio/semstreams/natsclient"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newKVStore(t *testing.T) *Store {
	t.Helper()
	tc := natsclient.NewTestClient(t, natsclient.WithJetStream())
	js, err := tc.Client.JetStream()
	require.NoError(t, err)

	store, err := NewStore(context.Background(), js, "TEST")
	require.NoError(t, err)
	return store
}

func TestStore_ImportAndRead(t *testing.T) {
	ctx := context.Background()
	store := newKVStore(t)

	mem := repository.NewMemoryStore()
	_, err := mem.AddNodeWithID("/content", "folder", "content-id")
	require.NoError(t, err)
	_, err = mem.AddNodeWithID("/content/page", "page", "page-id")
	require.NoError(t, err)
	require.NoError(t, mem.SetProperty("/content/page", "title", repository.StringValue("Hello")))
	require.NoError(t, mem.SetMultiProperty("/content/page", "tags",
		[]repository.Value{repository.StringValue("a"), repository.StringValue("b")}))

	require.NoError(t, store.Import(ctx, mem.Records()))

	page, err := store.Node(ctx, "/content/page")
	require.NoError(t, err)
	assert.Equal(t, repository.NodeID("page-id"), page.ID)

	byID, err := store.NodeByID(ctx, "page-id")
	require.NoError(t, err)
	assert.Equal(t, page, byID)

	props, err := store.Properties(ctx, page)
	require.NoError(t, err)
	require.Len(t, props, 2)
	values, err := props[0].Values(ctx)
	require.NoError(t, err)
	assert.Equal(t, []repository.Value{repository.StringValue("a"), repository.StringValue("b")}, values)

	content, err := store.Node(ctx, "/content")
	require.NoError(t, err)
	children, err := store.Children(ctx, content)
	require.NoError(t, err)
	require.Len(t, children, 1)
	assert.Equal(t, "/content/page", children[0].Path)
}

func TestStore_NotFound(t *testing.T) {
	ctx := context.Background()
	store := newKVStore(t)

	_, err := store.Node(ctx, "/missing")
	assert.ErrorIs(t, err, repository.ErrNotFound)

	_, err = store.NodeByID(ctx, "missing")
	assert.ErrorIs(t, err, repository.ErrNotFound)

	err = store.Put(ctx, &repository.Record{Node: repository.Node{ID: "x", Path: "/a/b"}})
	assert.ErrorIs(t, err, repository.ErrNotFound)
}

func TestStore_Delete(t *testing.T) {
	ctx := context.Background()
	store := newKVStore(t)

	require.NoError(t, store.Put(ctx, &repository.Record{Node: repository.Node{ID: "a-id", Path: "/a"}}))
	require.NoError(t, store.Delete(ctx, "/a"))

	_, err := store.Node(ctx, "/a")
	assert.ErrorIs(t, err, repository.ErrNotFound)
}

func TestStore_ImportReplacesRoot(t *testing.T) {
	ctx := context.Background()
	store := newKVStore(t)

	oldRoot, err := store.Node(ctx, repository.RootPath)
	require.NoError(t, err)

	mem := repository.NewMemoryStore()
	require.NoError(t, store.Import(ctx, mem.Records()))

	root, err := store.Node(ctx, repository.RootPath)
	require.NoError(t, err)
	require.NotEqual(t, oldRoot.ID, root.ID)

	_, err = store.NodeByID(ctx, oldRoot.ID)
	assert.ErrorIs(t, err, repository.ErrNotFound)

	byID, err := store.NodeByID(ctx, root.ID)
	require.NoError(t, err)
	assert.Equal(t, root, byID)
}

func TestStore_PutReplacesNodeAtPath(t *testing.T) {
	ctx := context.Background()
	store := newKVStore(t)

	require.NoError(t, store.Put(ctx, &repository.Record{Node: repository.Node{ID: "first", Path: "/a"}}))
	require.NoError(t, store.Put(ctx, &repository.Record{Node: repository.Node{ID: "second", Path: "/a"}}))

	_, err := store.NodeByID(ctx, "first")
	assert.ErrorIs(t, err, repository.ErrNotFound)

	node, err := store.Node(ctx, "/a")
	require.NoError(t, err)
	assert.Equal(t, repository.NodeID("second"), node.ID)
}

func TestStore_PutMovesNode(t *testing.T) {
	ctx := context.Background()
	store := newKVStore(t)

	require.NoError(t, store.Put(ctx, &repository.Record{Node: repository.Node{ID: "n", Path: "/a"}}))
	require.NoError(t, store.Put(ctx, &repository.Record{Node: repository.Node{ID: "n", Path: "/b"}}))

	_, err := store.Node(ctx, "/a")
	assert.ErrorIs(t, err, repository.ErrNotFound)

	node, err := store.NodeByID(ctx, "n")
	require.NoError(t, err)
	assert.Equal(t, "/b", node.Path)
}
