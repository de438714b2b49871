package model

import "time"

type ItemType string

const (
	ItemTypeFile   ItemType = "file"
	ItemTypeFolder ItemType = "folder"
)

// TrashItem represents a soft-deleted file or folder.
//
// RootDeletedFolderID groups the contents of a deleted folder: it equals
// ItemID for the folder that was deleted, points at that folder for every
// descendant, and is nil for a file deleted on its own.
type TrashItem struct {
	ID                  string    `json:"id"`
	ItemID              string    `json:"item_id"`
	ItemType            ItemType  `json:"item_type"`
	Name                string    `json:"name"`
	DimensionID         int64     `json:"dimension_id"`
	RootDeletedFolderID *string   `json:"root_deleted_folder_id"`
	DeletedAt           time.Time `json:"deleted_at"`
	DeletedBy           string    `json:"deleted_by"`
}

func (t TrashItem) IsTopLevel() bool {
	return t.RootDeletedFolderID == nil || *t.RootDeletedFolderID == t.ItemID
}

// TopLevel keeps only the items shown at the top of the trash view.
func TopLevel(items []TrashItem) []TrashItem {
	out := make([]TrashItem, 0, len(items))
	for _, item := range items {
		if item.IsTopLevel() {
			out = append(out, item)
		}
	}
	return out
}

// NewFileTrashItem builds the record for a file deleted on its own.
func NewFileTrashItem(id string, file FileRecord, deletedBy string, at time.Time) TrashItem {
	return TrashItem{
		ID:          id,
		ItemID:      file.ID,
		ItemType:    ItemTypeFile,
		Name:        file.Name,
		DimensionID: file.DimensionID,
		DeletedAt:   at,
		DeletedBy:   deletedBy,
	}
}

// BuildTrashGroup builds one record per node of a deleted subtree, all sharing
// the subtree root as RootDeletedFolderID. newID is called once per record.
func BuildTrashGroup(tree FolderSubtree, deletedBy string, at time.Time, newID func() string) []TrashItem {
	rootID := tree.Root.ID
	items := make([]TrashItem, 0, 1+len(tree.Folders)+len(tree.Files))

	add := func(itemID string, kind ItemType, name string, dimensionID int64) {
		root := rootID
		items = append(items, TrashItem{
			ID:                  newID(),
			ItemID:              itemID,
			ItemType:            kind,
			Name:                name,
			DimensionID:         dimensionID,
			RootDeletedFolderID: &root,
			DeletedAt:           at,
			DeletedBy:           deletedBy,
		})
	}

	add(tree.Root.ID, ItemTypeFolder, tree.Root.Name, tree.Root.DimensionID)
	for _, f := range tree.Folders {
		if f.ID == rootID {
			continue
		}
		add(f.ID, ItemTypeFolder, f.Name, f.DimensionID)
	}
	for _, f := range tree.Files {
		add(f.ID, ItemTypeFile, f.Name, f.DimensionID)
	}

	return items
}
