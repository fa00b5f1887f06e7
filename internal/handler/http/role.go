package http

import (
	"context"
	"net/http"
	"time"

	"github.com/cmlabs-hris/productivity-backend-go/internal/domain/role"
	"github.com/cmlabs-hris/productivity-backend-go/internal/handler/http/response"
	roleService "github.com/cmlabs-hris/productivity-backend-go/internal/service/role"
)

// RoleCache is the part of the role cache operators can see and poke.
type RoleCache interface {
	Snapshot() *roleService.Snapshot
	Refresh(ctx context.Context) (*roleService.Snapshot, error)
}

type RoleHandler interface {
	List(w http.ResponseWriter, r *http.Request)
	Refresh(w http.ResponseWriter, r *http.Request)
}

type RoleHandlerImpl struct {
	cache RoleCache
}

func NewRoleHandler(cache RoleCache) RoleHandler {
	return &RoleHandlerImpl{cache: cache}
}

// List implements RoleHandler.
func (h *RoleHandlerImpl) List(w http.ResponseWriter, r *http.Request) {
	response.Success(w, toSnapshotResponse(h.cache.Snapshot()))
}

// Refresh implements RoleHandler.
func (h *RoleHandlerImpl) Refresh(w http.ResponseWriter, r *http.Request) {
	snap, err := h.cache.Refresh(r.Context())
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.SuccessWithMessage(w, "Role profiles refreshed", toSnapshotResponse(snap))
}

func toSnapshotResponse(s *roleService.Snapshot) role.SnapshotResponse {
	profiles := s.Profiles()
	out := role.SnapshotResponse{
		LoadedAt: s.LoadedAt().UTC().Format(time.RFC3339),
		Fallback: role.ToProfileResponse(s.Fallback()),
		Profiles: make([]role.ProfileResponse, 0, len(profiles)),
	}
	for _, p := range profiles {
		out.Profiles = append(out.Profiles, role.ToProfileResponse(p))
	}
	return out
}
