package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"school-admin/internal/model"
	"school-admin/internal/policy"
	"school-admin/internal/util"
)

// FolderService manages folders and file metadata. File bytes live in
// object storage; only the path reference is kept here. Every operation
// inside a folder passes through the lock gate.
type FolderService struct {
	folders FolderStore
	gate    *LockService
	usage   UsageInvalidator
	now     func() time.Time
	newID   func() string
}

func NewFolderService(folders FolderStore, gate *LockService, usage UsageInvalidator) *FolderService {
	if usage == nil {
		usage = noopInvalidator{}
	}
	return &FolderService{
		folders: folders,
		gate:    gate,
		usage:   usage,
		now:     func() time.Time { return time.Now().UTC() },
		newID:   uuid.NewString,
	}
}

func (s *FolderService) CreateFolder(ctx context.Context, caller model.Identity, req model.CreateFolderRequest, unlockToken string) (model.Folder, error) {
	if err := policy.Authorize(caller, policy.OpFolderWrite); err != nil {
		return model.Folder{}, err
	}
	if err := policy.ScopeDimension(caller, req.DimensionID); err != nil {
		return model.Folder{}, err
	}
	name, err := util.SanitizeName(req.Name)
	if err != nil {
		return model.Folder{}, err
	}

	if req.ParentID != nil {
		if err := s.enterFolder(ctx, caller, *req.ParentID, req.DimensionID, unlockToken); err != nil {
			return model.Folder{}, err
		}
	}

	folder := model.Folder{
		ID:          s.newID(),
		Name:        name,
		DimensionID: req.DimensionID,
		ParentID:    req.ParentID,
		CreatedBy:   caller.AdminID,
		CreatedAt:   s.now(),
	}
	if err := s.folders.CreateFolder(ctx, folder); err != nil {
		return model.Folder{}, err
	}
	return folder, nil
}

func (s *FolderService) ListContents(ctx context.Context, caller model.Identity, folderID string, unlockToken string) (model.FolderContents, error) {
	if err := policy.Authorize(caller, policy.OpFolderRead); err != nil {
		return model.FolderContents{}, err
	}
	folder, err := s.folders.FindFolder(ctx, folderID)
	if err != nil {
		return model.FolderContents{}, err
	}
	if err := policy.ScopeDimension(caller, folder.DimensionID); err != nil {
		return model.FolderContents{}, err
	}
	if err := s.gate.Authorize(ctx, folder.ID, caller.AdminID, unlockToken); err != nil {
		return model.FolderContents{}, err
	}

	folders, files, err := s.folders.ListContents(ctx, folder.ID)
	if err != nil {
		return model.FolderContents{}, err
	}
	return model.FolderContents{Folder: folder, Folders: folders, Files: files}, nil
}

// RegisterFile records metadata for bytes already stored externally.
func (s *FolderService) RegisterFile(ctx context.Context, caller model.Identity, req model.RegisterFileRequest, unlockToken string) (model.FileRecord, error) {
	if err := policy.Authorize(caller, policy.OpFolderWrite); err != nil {
		return model.FileRecord{}, err
	}
	if err := policy.ScopeDimension(caller, req.DimensionID); err != nil {
		return model.FileRecord{}, err
	}
	name, err := util.SanitizeName(req.Name)
	if err != nil {
		return model.FileRecord{}, err
	}
	path := strings.TrimSpace(req.Path)
	if path == "" {
		return model.FileRecord{}, fmt.Errorf("%w: path is required", model.ErrInvalidInput)
	}
	if req.Size != nil && *req.Size < 0 {
		return model.FileRecord{}, fmt.Errorf("%w: size cannot be negative", model.ErrInvalidInput)
	}

	if req.FolderID != nil {
		if err := s.enterFolder(ctx, caller, *req.FolderID, req.DimensionID, unlockToken); err != nil {
			return model.FileRecord{}, err
		}
	}

	now := s.now()
	file := model.FileRecord{
		ID:          s.newID(),
		Name:        name,
		Path:        path,
		Size:        req.Size,
		Type:        strings.TrimSpace(req.Type),
		DimensionID: req.DimensionID,
		FolderID:    req.FolderID,
		UploadedBy:  caller.AdminID,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := s.folders.CreateFile(ctx, file); err != nil {
		return model.FileRecord{}, err
	}
	s.usage.InvalidateUsage(ctx)
	return file, nil
}

func (s *FolderService) RenameFile(ctx context.Context, caller model.Identity, fileID string, newName string, unlockToken string) (model.FileRecord, error) {
	file, err := s.openFile(ctx, caller, fileID, unlockToken)
	if err != nil {
		return model.FileRecord{}, err
	}
	name, err := util.SanitizeName(newName)
	if err != nil {
		return model.FileRecord{}, err
	}
	return s.folders.RenameFile(ctx, file.ID, name)
}

// MoveFile relocates a file. Both the source and the target folder must
// admit the caller; a nil target moves the file to the dimension root.
func (s *FolderService) MoveFile(ctx context.Context, caller model.Identity, fileID string, target *string, unlockToken string) (model.FileRecord, error) {
	file, err := s.openFile(ctx, caller, fileID, unlockToken)
	if err != nil {
		return model.FileRecord{}, err
	}
	if target != nil {
		if err := s.enterFolder(ctx, caller, *target, file.DimensionID, unlockToken); err != nil {
			return model.FileRecord{}, err
		}
	}
	return s.folders.MoveFile(ctx, file.ID, target)
}

// DeleteFile moves a single file to the trash as an ungrouped item.
func (s *FolderService) DeleteFile(ctx context.Context, caller model.Identity, fileID string, unlockToken string) (model.TrashItem, error) {
	file, err := s.openFile(ctx, caller, fileID, unlockToken)
	if err != nil {
		return model.TrashItem{}, err
	}
	item := model.NewFileTrashItem(s.newID(), file, caller.AdminID, s.now())
	if err := s.folders.TrashFile(ctx, item); err != nil {
		return model.TrashItem{}, err
	}
	s.usage.InvalidateUsage(ctx)
	return item, nil
}

// DeleteFolder trashes a folder with its whole subtree as one group. Each
// task-locked folder inside the subtree must be admitted by one of
// unlockTokens, since unlock tokens are issued per folder.
func (s *FolderService) DeleteFolder(ctx context.Context, caller model.Identity, folderID string, unlockTokens []string) ([]model.TrashItem, error) {
	if err := policy.Authorize(caller, policy.OpFolderWrite); err != nil {
		return nil, err
	}
	folder, err := s.folders.FindFolder(ctx, folderID)
	if err != nil {
		return nil, err
	}
	if err := policy.ScopeDimension(caller, folder.DimensionID); err != nil {
		return nil, err
	}

	tree, err := s.folders.Subtree(ctx, folder.ID)
	if err != nil {
		return nil, err
	}
	for _, f := range append([]model.Folder{tree.Root}, tree.Folders...) {
		if f.TaskLocked && !s.admitsAny(ctx, f.ID, caller.AdminID, unlockTokens) {
			return nil, fmt.Errorf("%w: %s", model.ErrFolderLocked, f.Name)
		}
	}

	items := model.BuildTrashGroup(tree, caller.AdminID, s.now(), s.newID)
	if err := s.folders.TrashSubtree(ctx, tree, items); err != nil {
		return nil, err
	}
	s.usage.InvalidateUsage(ctx)
	return items, nil
}

func (s *FolderService) admitsAny(ctx context.Context, folderID string, userID string, tokens []string) bool {
	for _, token := range tokens {
		if s.gate.VerifyUnlock(ctx, folderID, token, userID) {
			return true
		}
	}
	return false
}

// enterFolder checks that folderID exists in dimensionID, lies in the
// caller's scope and admits the caller through the lock gate.
func (s *FolderService) enterFolder(ctx context.Context, caller model.Identity, folderID string, dimensionID int64, unlockToken string) error {
	folder, err := s.folders.FindFolder(ctx, folderID)
	if err != nil {
		return err
	}
	if folder.DimensionID != dimensionID {
		return fmt.Errorf("%w: folder belongs to another dimension", model.ErrInvalidInput)
	}
	if err := policy.ScopeDimension(caller, folder.DimensionID); err != nil {
		return err
	}
	return s.gate.Authorize(ctx, folder.ID, caller.AdminID, unlockToken)
}

func (s *FolderService) openFile(ctx context.Context, caller model.Identity, fileID string, unlockToken string) (model.FileRecord, error) {
	if err := policy.Authorize(caller, policy.OpFolderWrite); err != nil {
		return model.FileRecord{}, err
	}
	file, err := s.folders.FindFile(ctx, fileID)
	if err != nil {
		return model.FileRecord{}, err
	}
	if err := policy.ScopeDimension(caller, file.DimensionID); err != nil {
		return model.FileRecord{}, err
	}
	if file.FolderID != nil {
		if err := s.gate.Authorize(ctx, *file.FolderID, caller.AdminID, unlockToken); err != nil {
			return model.FileRecord{}, err
		}
	}
	return file, nil
}
