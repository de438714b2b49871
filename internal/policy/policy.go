// Package policy holds the single table deciding which role tiers may run
// which operation. Handlers and services consult it instead of comparing
// role numbers inline.
package policy

import (
	"fmt"

	"school-admin/internal/model"
)

type Operation string

const (
	OpTaskCreate         Operation = "task.create"
	OpTaskUpdate         Operation = "task.update"
	OpTaskReview         Operation = "task.review"
	OpTaskDelete         Operation = "task.delete"
	OpTaskRead           Operation = "task.read"
	OpTaskSubmit         Operation = "task.submit"
	OpRevisionCount      Operation = "revision.count"
	OpFolderWrite        Operation = "folder.write"
	OpFolderRead         Operation = "folder.read"
	OpFolderUnlock       Operation = "folder.unlock"
	OpTrashRead          Operation = "trash.read"
	OpTrashRestore       Operation = "trash.restore"
	OpStorageRead        Operation = "storage.read"
	OpAnnouncementCreate Operation = "announcement.create"
	OpAnnouncementManage Operation = "announcement.manage"
	OpAnnouncementRead   Operation = "announcement.read"
	OpActivityRead       Operation = "activity.read"
	OpSystemLogRead      Operation = "systemlog.read"
	OpAdminList          Operation = "admin.list"
	OpAdminProvision     Operation = "admin.provision"
	OpAdminDelete        Operation = "admin.delete"
	OpAdminForceSignOut  Operation = "admin.force_sign_out"
	OpDimensionRead      Operation = "dimension.read"
	OpDimensionManage    Operation = "dimension.manage"
)

var (
	everyone  = roles(model.RoleSuperAdmin, model.RoleAdmin, model.RoleOFP, model.RoleLeader)
	orgWide   = roles(model.RoleSuperAdmin, model.RoleAdmin, model.RoleOFP)
	superOnly = roles(model.RoleSuperAdmin)
)

var table = map[Operation]map[model.Role]bool{
	OpTaskCreate:         everyone,
	OpTaskUpdate:         everyone,
	OpTaskReview:         everyone,
	OpTaskDelete:         everyone,
	OpTaskRead:           everyone,
	OpTaskSubmit:         everyone,
	OpRevisionCount:      everyone,
	OpFolderWrite:        everyone,
	OpFolderRead:         everyone,
	OpFolderUnlock:       everyone,
	OpTrashRead:          everyone,
	OpTrashRestore:       everyone,
	OpStorageRead:        orgWide,
	OpAnnouncementCreate: orgWide,
	OpAnnouncementManage: everyone,
	OpAnnouncementRead:   everyone,
	OpActivityRead:       everyone,
	OpSystemLogRead:      orgWide,
	OpAdminList:          orgWide,
	OpAdminProvision:     superOnly,
	OpAdminDelete:        superOnly,
	OpAdminForceSignOut:  roles(model.RoleSuperAdmin, model.RoleAdmin),
	OpDimensionRead:      everyone,
	OpDimensionManage:    superOnly,
}

func roles(rs ...model.Role) map[model.Role]bool {
	out := make(map[model.Role]bool, len(rs))
	for _, r := range rs {
		out[r] = true
	}
	return out
}

// Allowed reports whether role may perform op. Unknown operations are denied.
func Allowed(op Operation, role model.Role) bool {
	return table[op][role]
}

// Authorize returns model.ErrForbidden when the caller's tier is not allowed.
func Authorize(id model.Identity, op Operation) error {
	if !Allowed(op, id.Role) {
		return fmt.Errorf("%w: %s not permitted for role %s", model.ErrForbidden, op, id.Role)
	}
	return nil
}

// ScopeDimension checks that the caller may act inside dimensionID.
// Leaders are confined to their assigned dimension.
func ScopeDimension(id model.Identity, dimensionID int64) error {
	if id.Role.OrgWide() {
		return nil
	}
	if id.DimensionID == nil || *id.DimensionID != dimensionID {
		return fmt.Errorf("%w: dimension %d is outside the caller's scope", model.ErrForbidden, dimensionID)
	}
	return nil
}

// DimensionFilter returns the dimension a query must be restricted to, or
// nil when the caller sees every dimension. A leader without an assigned
// dimension is denied.
func DimensionFilter(id model.Identity) (*int64, error) {
	if id.Role.OrgWide() {
		return nil, nil
	}
	if id.DimensionID == nil {
		return nil, fmt.Errorf("%w: leader has no assigned dimension", model.ErrForbidden)
	}
	d := *id.DimensionID
	return &d, nil
}
