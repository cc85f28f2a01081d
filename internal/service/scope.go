package service

import (
	"context"

	"github.com/openvault/openvault/internal/model"
	appErr "github.com/openvault/openvault/internal/pkg/errors"
)

type FolderStore interface {
	ListByRoom(ctx context.Context, roomID string) ([]*model.Folder, error)
}

type DocumentStore interface {
	// Get returns a non-deleted document in the room, or ErrNotFound.
	Get(ctx context.Context, roomID, docID string) (*model.Document, error)
	// ListByRoom returns non-deleted documents in the room ordered by ctime
	// ascending.
	ListByRoom(ctx context.Context, roomID string) ([]*model.Document, error)
	// ListByFolders returns non-deleted documents whose folder_id is in
	// folderIDs, ordered by ctime ascending.
	ListByFolders(ctx context.Context, roomID string, folderIDs []string) ([]*model.Document, error)
}

// ScopeService resolves a link's scope (room, folder or document) into the
// concrete document set it grants access to.
type ScopeService struct {
	folders   FolderStore
	documents DocumentStore
}

func NewScopeService(folders FolderStore, documents DocumentStore) *ScopeService {
	return &ScopeService{folders: folders, documents: documents}
}

// AccessibleDocuments returns the documents reachable through link, ordered by
// creation time ascending. Soft-deleted folders and documents are excluded. A
// folder-scoped link whose target folder is deleted or missing resolves to an
// empty set rather than falling back to the room root.
func (s *ScopeService) AccessibleDocuments(ctx context.Context, link *model.SharedLink) ([]*model.Document, error) {
	switch link.Scope {
	case model.LinkScopeDocument:
		if link.DocumentID == nil {
			return nil, nil
		}
		doc, err := s.documents.Get(ctx, link.RoomID, *link.DocumentID)
		if err != nil {
			if appErr.IsNotFound(err) {
				return nil, nil
			}
			return nil, err
		}
		return []*model.Document{doc}, nil
	case model.LinkScopeFolder:
		if link.FolderID == nil {
			return nil, nil
		}
		subtree, err := s.folderSubtreeIDs(ctx, link.RoomID, *link.FolderID)
		if err != nil {
			return nil, err
		}
		if len(subtree) == 0 {
			return nil, nil
		}
		return s.documents.ListByFolders(ctx, link.RoomID, subtree)
	default:
		return s.documents.ListByRoom(ctx, link.RoomID)
	}
}

// folderSubtreeIDs collects the target folder and every active descendant by
// breadth-first traversal. The visited set makes the walk terminate even if
// the parent pointers form a cycle or dangle.
func (s *ScopeService) folderSubtreeIDs(ctx context.Context, roomID, rootID string) ([]string, error) {
	folders, err := s.folders.ListByRoom(ctx, roomID)
	if err != nil {
		return nil, err
	}

	active := make(map[string]*model.Folder, len(folders))
	for _, folder := range folders {
		if folder.Deleted() {
			continue
		}
		active[folder.ID] = folder
	}
	if _, ok := active[rootID]; !ok {
		return nil, nil
	}

	childrenByParent := make(map[string][]string)
	for _, folder := range active {
		if folder.ParentID == nil {
			continue
		}
		childrenByParent[*folder.ParentID] = append(childrenByParent[*folder.ParentID], folder.ID)
	}

	visited := map[string]bool{rootID: true}
	subtree := []string{rootID}
	queue := []string{rootID}
	for len(queue) > 0 {
		current := queue[0]
		queue = queue[1:]
		for _, child := range childrenByParent[current] {
			if visited[child] {
				continue
			}
			visited[child] = true
			subtree = append(subtree, child)
			queue = append(queue, child)
		}
	}
	return subtree, nil
}
