package service

import (
	"context"
	"sort"

	"github.com/openvault/openvault/internal/model"
	appErr "github.com/openvault/openvault/internal/pkg/errors"
)

// In-memory store fakes shared by the service tests.

type fakeAuthTokenStore struct {
	rows      []*model.ViewerAuthToken
	createErr error
}

func (s *fakeAuthTokenStore) DeleteUnused(_ context.Context, linkID, viewerEmail string) error {
	kept := s.rows[:0:0]
	for _, row := range s.rows {
		if row.LinkID == linkID && row.ViewerEmail == viewerEmail && row.UsedAt == nil {
			continue
		}
		kept = append(kept, row)
	}
	s.rows = kept
	return nil
}

func (s *fakeAuthTokenStore) Create(_ context.Context, t *model.ViewerAuthToken) error {
	if s.createErr != nil {
		return s.createErr
	}
	clone := *t
	s.rows = append(s.rows, &clone)
	return nil
}

func (s *fakeAuthTokenStore) MarkUsed(_ context.Context, linkID, viewerEmail, tokenHash string, now int64) (bool, error) {
	for _, row := range s.rows {
		if row.LinkID != linkID || row.ViewerEmail != viewerEmail || row.TokenHash != tokenHash {
			continue
		}
		if row.UsedAt != nil || row.ExpiresAt <= now {
			continue
		}
		used := now
		row.UsedAt = &used
		return true, nil
	}
	return false, nil
}

func (s *fakeAuthTokenStore) pending(linkID, viewerEmail string) []*model.ViewerAuthToken {
	var out []*model.ViewerAuthToken
	for _, row := range s.rows {
		if row.LinkID == linkID && row.ViewerEmail == viewerEmail && row.UsedAt == nil {
			out = append(out, row)
		}
	}
	return out
}

type fakeAccessLogStore struct {
	rows      []*model.LinkAccessLog
	insertErr error
}

func (s *fakeAccessLogStore) Insert(_ context.Context, entry *model.LinkAccessLog) error {
	if s.insertErr != nil {
		return s.insertErr
	}
	clone := *entry
	s.rows = append(s.rows, &clone)
	return nil
}

func (s *fakeAccessLogStore) CountByViewer(_ context.Context, linkID, viewerEmail string) (int64, error) {
	var n int64
	for _, row := range s.rows {
		if row.LinkID == linkID && row.ViewerEmail == viewerEmail {
			n++
		}
	}
	return n, nil
}

func (s *fakeAccessLogStore) LatestByTokenHash(_ context.Context, linkID, tokenHash string) (*model.LinkAccessLog, error) {
	var latest *model.LinkAccessLog
	for _, row := range s.rows {
		if row.LinkID != linkID || row.SessionTokenHash != tokenHash {
			continue
		}
		if latest == nil || row.StartedAt > latest.StartedAt {
			latest = row
		}
	}
	if latest == nil {
		return nil, appErr.ErrNotFound
	}
	clone := *latest
	return &clone, nil
}

type fakeFolderStore struct {
	folders []*model.Folder
}

func (s *fakeFolderStore) ListByRoom(_ context.Context, roomID string) ([]*model.Folder, error) {
	var out []*model.Folder
	for _, folder := range s.folders {
		if folder.RoomID == roomID {
			out = append(out, folder)
		}
	}
	return out, nil
}

type fakeDocumentStore struct {
	docs []*model.Document
}

func (s *fakeDocumentStore) Get(_ context.Context, roomID, docID string) (*model.Document, error) {
	for _, doc := range s.docs {
		if doc.RoomID == roomID && doc.ID == docID && !doc.Deleted() {
			return doc, nil
		}
	}
	return nil, appErr.ErrNotFound
}

func (s *fakeDocumentStore) ListByRoom(_ context.Context, roomID string) ([]*model.Document, error) {
	var out []*model.Document
	for _, doc := range s.docs {
		if doc.RoomID == roomID && !doc.Deleted() {
			out = append(out, doc)
		}
	}
	sortDocs(out)
	return out, nil
}

func (s *fakeDocumentStore) ListByFolders(_ context.Context, roomID string, folderIDs []string) ([]*model.Document, error) {
	wanted := make(map[string]bool, len(folderIDs))
	for _, id := range folderIDs {
		wanted[id] = true
	}
	var out []*model.Document
	for _, doc := range s.docs {
		if doc.RoomID != roomID || doc.Deleted() || doc.FolderID == nil {
			continue
		}
		if wanted[*doc.FolderID] {
			out = append(out, doc)
		}
	}
	sortDocs(out)
	return out, nil
}

func sortDocs(docs []*model.Document) {
	sort.Slice(docs, func(i, j int) bool {
		if docs[i].Ctime != docs[j].Ctime {
			return docs[i].Ctime < docs[j].Ctime
		}
		return docs[i].ID < docs[j].ID
	})
}

type fakeNdaStore struct {
	template    *model.NdaTemplate
	acceptances []*model.NdaAcceptance
}

func (s *fakeNdaStore) ActiveTemplate(_ context.Context, roomID string) (*model.NdaTemplate, error) {
	if s.template == nil || s.template.RoomID != roomID || !s.template.IsActive {
		return nil, appErr.ErrNotFound
	}
	return s.template, nil
}

func (s *fakeNdaStore) HasAcceptance(_ context.Context, linkID, viewerEmail, templateHash string) (bool, error) {
	for _, a := range s.acceptances {
		if a.LinkID == linkID && a.ViewerEmail == viewerEmail && a.TemplateHash == templateHash {
			return true, nil
		}
	}
	return false, nil
}

func (s *fakeNdaStore) InsertAcceptance(_ context.Context, acceptance *model.NdaAcceptance) error {
	clone := *acceptance
	s.acceptances = append(s.acceptances, &clone)
	return nil
}
