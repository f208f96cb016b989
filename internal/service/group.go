package service

import (
	"context"
	"log/slog"
	"sync"

	"github.com/google/uuid"

	"github.com/reelmates/reelmates-core/internal/blob"
	"github.com/reelmates/reelmates-core/internal/domain"
	"github.com/reelmates/reelmates-core/internal/errors"
	"github.com/reelmates/reelmates-core/internal/library"
)

// Puller triggers a full pull after a group transition.
type Puller interface {
	FullPull(ctx context.Context) error
}

// GroupService tracks the active group and the locally remembered list
// of previously joined groups, and brackets every transition with the
// suppressed clear-then-fetch sequence that keeps one group's data from
// leaking into another's remote scope.
type GroupService struct {
	mu      sync.Mutex
	active  domain.GroupInfo
	known   domain.KnownGroups
	store   *blob.Store
	library *library.Library
	puller  Puller
	logger  *slog.Logger
}

// NewGroupService creates the group service and restores persisted
// state. Decode failures count as a detached device with no known
// groups.
func NewGroupService(store *blob.Store, lib *library.Library, logger *slog.Logger) *GroupService {
	s := &GroupService{
		store:   store,
		library: lib,
		logger:  logger,
	}

	if data, err := store.Get(blob.KeyCurrentGroupID); err == nil {
		s.active.ID = string(data)
	}
	if data, err := store.Get(blob.KeyCurrentGroup); err == nil {
		s.active.Name = string(data)
	}
	if err := store.GetJSON(blob.KeyKnownGroups, &s.known); err != nil && !errors.Is(err, blob.ErrNotFound) {
		logger.Warn("Failed to load known groups", "error", err)
	}

	return s
}

// SetPuller wires the full-pull trigger. Set once at startup.
func (s *GroupService) SetPuller(p Puller) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.puller = p
}

// Active returns the current group. A zero-id result means detached.
func (s *GroupService) Active() domain.GroupInfo {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.active
}

// Known returns the remembered group list.
func (s *GroupService) Known() domain.KnownGroups {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append(domain.KnownGroups(nil), s.known...)
}

// Create generates a fresh group, activates it, and atomically clears
// both collections under suppression. No pull follows: a brand new
// group has no remote data yet.
func (s *GroupService) Create(name string) domain.GroupInfo {
	info := domain.GroupInfo{ID: uuid.NewString(), Name: name}

	s.mu.Lock()
	s.activateLocked(info)
	s.mu.Unlock()

	s.library.Clear()
	s.logger.Info("Group created", "group_id", info.ID, "name", name)
	return info
}

// Join activates the group behind an invite code, clears both
// collections under suppression, and triggers a full pull of the new
// group's remote state. If the code matches a remembered group its
// cached display name is retained.
func (s *GroupService) Join(ctx context.Context, code string) domain.GroupInfo {
	info := domain.GroupInfo{ID: code}

	s.mu.Lock()
	for _, g := range s.known {
		if g.ID == code {
			info.Name = g.Name
			break
		}
	}
	s.activateLocked(info)
	puller := s.puller
	s.mu.Unlock()

	s.library.Clear()
	s.triggerPull(ctx, puller)

	s.logger.Info("Group joined", "group_id", code)
	return info
}

// Leave removes the active group from the remembered list, transitions
// to detached, clears both collections under suppression, and pulls the
// default ungrouped scope.
func (s *GroupService) Leave(ctx context.Context) {
	s.mu.Lock()
	left := s.active
	s.known = s.known.Remove(left.ID)
	s.active = domain.GroupInfo{}
	s.persistLocked()
	puller := s.puller
	s.mu.Unlock()

	s.library.Clear()
	s.triggerPull(ctx, puller)

	s.logger.Info("Group left", "group_id", left.ID)
}

// Forget deletes a group from the remembered list. Forgetting the
// active group also leaves it.
func (s *GroupService) Forget(ctx context.Context, groupID string) {
	s.mu.Lock()
	isActive := s.active.ID == groupID
	s.mu.Unlock()

	if isActive {
		s.Leave(ctx)
		return
	}

	s.mu.Lock()
	s.known = s.known.Remove(groupID)
	s.persistLocked()
	s.mu.Unlock()
}

// activateLocked sets the active group and registers it in the known
// list, refreshing its cached display name.
func (s *GroupService) activateLocked(info domain.GroupInfo) {
	s.active = info
	s.known = s.known.Upsert(info)
	s.persistLocked()
}

// persistLocked mirrors the group state to the blob store.
func (s *GroupService) persistLocked() {
	if err := s.store.Set(blob.KeyCurrentGroupID, []byte(s.active.ID)); err != nil {
		s.logger.Error("Failed to persist active group id", "error", err)
	}
	if err := s.store.Set(blob.KeyCurrentGroup, []byte(s.active.Name)); err != nil {
		s.logger.Error("Failed to persist active group name", "error", err)
	}
	if err := s.store.SetJSON(blob.KeyKnownGroups, s.known); err != nil {
		s.logger.Error("Failed to persist known groups", "error", err)
	}
}

// triggerPull runs the post-transition full pull in the background. The
// context is detached so the pull outlives the HTTP request that
// triggered the transition.
func (s *GroupService) triggerPull(ctx context.Context, puller Puller) {
	if puller == nil {
		return
	}
	ctx = context.WithoutCancel(ctx)
	go func() {
		if err := puller.FullPull(ctx); err != nil {
			s.logger.Warn("Post-transition pull failed, will retry on next refresh", "error", err)
		}
	}()
}
