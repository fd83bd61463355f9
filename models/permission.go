package models

import (
	"fmt"
	"strings"
)

type Permission string

const (
	PermissionRead     Permission = "read"
	PermissionTriage   Permission = "triage"
	PermissionWrite    Permission = "write"
	PermissionMaintain Permission = "maintain"
	PermissionAdmin    Permission = "admin"
)

// ParsePermission normalizes user input. The collaborator endpoint uses pull and push
// while invitations report read and write.
func ParsePermission(s string) (Permission, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "read", "pull":
		return PermissionRead, nil
	case "triage":
		return PermissionTriage, nil
	case "write", "push":
		return PermissionWrite, nil
	case "maintain":
		return PermissionMaintain, nil
	case "admin":
		return PermissionAdmin, nil
	}
	return "", fmt.Errorf("unknown permission %q", s)
}

// CollaboratorValue is the value expected by the add collaborator endpoint.
func (p Permission) CollaboratorValue() string {
	switch p {
	case PermissionRead:
		return "pull"
	case PermissionWrite:
		return "push"
	}
	return string(p)
}

// InvitationValue is the value expected by the update invitation endpoint.
func (p Permission) InvitationValue() string {
	return string(p)
}
