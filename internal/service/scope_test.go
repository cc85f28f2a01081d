package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/openvault/openvault/internal/model"
)

func strPtr(s string) *string {
	return &s
}

func docIDs(docs []*model.Document) []string {
	ids := make([]string, 0, len(docs))
	for _, doc := range docs {
		ids = append(ids, doc.ID)
	}
	return ids
}

func TestAccessibleDocumentsRoomScope(t *testing.T) {
	docs := &fakeDocumentStore{docs: []*model.Document{
		{ID: "d2", RoomID: "r1", Ctime: 20},
		{ID: "d1", RoomID: "r1", Ctime: 10},
		{ID: "gone", RoomID: "r1", Ctime: 5, DeletedAt: int64Ptr(30)},
		{ID: "other", RoomID: "r2", Ctime: 1},
	}}
	svc := NewScopeService(&fakeFolderStore{}, docs)

	got, err := svc.AccessibleDocuments(context.Background(), &model.SharedLink{RoomID: "r1", Scope: model.LinkScopeRoom})
	require.NoError(t, err)
	require.Equal(t, []string{"d1", "d2"}, docIDs(got))
}

func TestAccessibleDocumentsDocumentScope(t *testing.T) {
	docs := &fakeDocumentStore{docs: []*model.Document{
		{ID: "d1", RoomID: "r1", Ctime: 10},
		{ID: "dropped", RoomID: "r1", Ctime: 20, DeletedAt: int64Ptr(99)},
	}}
	svc := NewScopeService(&fakeFolderStore{}, docs)

	got, err := svc.AccessibleDocuments(context.Background(), &model.SharedLink{
		RoomID: "r1", Scope: model.LinkScopeDocument, DocumentID: strPtr("d1"),
	})
	require.NoError(t, err)
	require.Equal(t, []string{"d1"}, docIDs(got))

	got, err = svc.AccessibleDocuments(context.Background(), &model.SharedLink{
		RoomID: "r1", Scope: model.LinkScopeDocument, DocumentID: strPtr("dropped"),
	})
	require.NoError(t, err)
	require.Empty(t, got)

	got, err = svc.AccessibleDocuments(context.Background(), &model.SharedLink{
		RoomID: "r1", Scope: model.LinkScopeDocument, DocumentID: strPtr("missing"),
	})
	require.NoError(t, err)
	require.Empty(t, got)
}

func TestAccessibleDocumentsFolderScopeSubtree(t *testing.T) {
	folders := &fakeFolderStore{folders: []*model.Folder{
		{ID: "root", RoomID: "r1"},
		{ID: "child", RoomID: "r1", ParentID: strPtr("root")},
		{ID: "grandchild", RoomID: "r1", ParentID: strPtr("child")},
		{ID: "sibling", RoomID: "r1"},
		{ID: "deleted-child", RoomID: "r1", ParentID: strPtr("root"), DeletedAt: int64Ptr(50)},
	}}
	// Insertion order deliberately disagrees with both hierarchy and ctime;
	// the result must come back ordered by creation time alone.
	docs := &fakeDocumentStore{docs: []*model.Document{
		{ID: "d-root", RoomID: "r1", FolderID: strPtr("root"), Ctime: 2},
		{ID: "d-grand", RoomID: "r1", FolderID: strPtr("grandchild"), Ctime: 1},
		{ID: "d-sibling", RoomID: "r1", FolderID: strPtr("sibling"), Ctime: 3},
		{ID: "d-under-deleted", RoomID: "r1", FolderID: strPtr("deleted-child"), Ctime: 4},
		{ID: "d-dropped", RoomID: "r1", FolderID: strPtr("root"), Ctime: 5, DeletedAt: int64Ptr(60)},
	}}
	svc := NewScopeService(folders, docs)

	got, err := svc.AccessibleDocuments(context.Background(), &model.SharedLink{
		RoomID: "r1", Scope: model.LinkScopeFolder, FolderID: strPtr("root"),
	})
	require.NoError(t, err)
	require.Equal(t, []string{"d-grand", "d-root"}, docIDs(got))
}

func TestAccessibleDocumentsFolderScopeDeletedRootFailsClosed(t *testing.T) {
	folders := &fakeFolderStore{folders: []*model.Folder{
		{ID: "root", RoomID: "r1", DeletedAt: int64Ptr(10)},
		{ID: "child", RoomID: "r1", ParentID: strPtr("root")},
	}}
	docs := &fakeDocumentStore{docs: []*model.Document{
		{ID: "d-child", RoomID: "r1", FolderID: strPtr("child"), Ctime: 1},
	}}
	svc := NewScopeService(folders, docs)

	got, err := svc.AccessibleDocuments(context.Background(), &model.SharedLink{
		RoomID: "r1", Scope: model.LinkScopeFolder, FolderID: strPtr("root"),
	})
	require.NoError(t, err)
	require.Empty(t, got)
}

func TestAccessibleDocumentsFolderScopeCycleTerminates(t *testing.T) {
	// Corrupt parent pointers forming a cycle must not hang the walk.
	folders := &fakeFolderStore{folders: []*model.Folder{
		{ID: "a", RoomID: "r1", ParentID: strPtr("b")},
		{ID: "b", RoomID: "r1", ParentID: strPtr("a")},
	}}
	docs := &fakeDocumentStore{docs: []*model.Document{
		{ID: "d-a", RoomID: "r1", FolderID: strPtr("a"), Ctime: 1},
		{ID: "d-b", RoomID: "r1", FolderID: strPtr("b"), Ctime: 2},
	}}
	svc := NewScopeService(folders, docs)

	got, err := svc.AccessibleDocuments(context.Background(), &model.SharedLink{
		RoomID: "r1", Scope: model.LinkScopeFolder, FolderID: strPtr("a"),
	})
	require.NoError(t, err)
	require.Equal(t, []string{"d-a", "d-b"}, docIDs(got))
}
