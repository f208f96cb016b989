// Package service provides the business logic of the sync engine:
// reconciliation against the remote stores, rating merging, group
// lifecycle, credit migration, goals, and popularity enrichment.
package service

import (
	"context"
	"log/slog"
	"sort"
	"sync"
	"sync/atomic"

	"github.com/reelmates/reelmates-core/internal/domain"
	"github.com/reelmates/reelmates-core/internal/library"
	"github.com/reelmates/reelmates-core/internal/remote"
)

// maxConcurrentSync bounds the number of uploads/deletes in flight
// during one reconciliation pass.
const maxConcurrentSync = 4

// GroupState exposes the active group to collaborating services.
type GroupState interface {
	Active() domain.GroupInfo
}

// SyncService keeps the local library reconciled with the remote movie
// store. Local mutations flow in as collection deltas; pulls flow out
// as atomic library overwrites.
type SyncService struct {
	library *library.Library
	movies  remote.MovieStore
	ratings remote.RatingStore
	groups  GroupState
	logger  *slog.Logger

	pulling atomic.Bool
	wg      sync.WaitGroup
}

// NewSyncService creates a sync service. Call Wait before shutdown to
// drain in-flight background reconciliations.
func NewSyncService(lib *library.Library, movies remote.MovieStore, ratings remote.RatingStore, groups GroupState, logger *slog.Logger) *SyncService {
	return &SyncService{
		library: lib,
		movies:  movies,
		ratings: ratings,
		groups:  groups,
		logger:  logger,
	}
}

// CollectionChanged implements library.ChangeListener. The delta is
// reconciled in the background; the mutating caller is never blocked.
func (s *SyncService) CollectionChanged(old, updated []domain.Movie, backlog bool) {
	s.wg.Go(func() {
		s.Reconcile(context.Background(), old, updated, backlog)
	})
}

// Reconcile diffs the two snapshots and pushes the delta to the remote
// store: one delete per tombstone, one upsert per changed movie, with
// bounded concurrency. Every remote failure is logged and swallowed;
// the local state stays ahead of the remote until the next full pull.
func (s *SyncService) Reconcile(ctx context.Context, old, updated []domain.Movie, backlog bool) {
	res := library.Diff(old, updated)
	if len(res.Changed) == 0 && len(res.RemovedIDs) == 0 {
		return
	}

	sem := make(chan struct{}, maxConcurrentSync)
	var wg sync.WaitGroup

	for _, movieID := range res.RemovedIDs {
		wg.Go(func() {
			sem <- struct{}{}
			defer func() { <-sem }()

			if err := s.movies.Delete(ctx, movieID); err != nil {
				s.logger.Warn("Tombstone delete failed, will self-heal on next pull",
					"movie_id", movieID,
					"error", err,
				)
			}
		})
	}

	for _, m := range res.Changed {
		wg.Go(func() {
			sem <- struct{}{}
			defer func() { <-sem }()

			if err := s.movies.Save(ctx, m, backlog); err != nil {
				s.logger.Warn("Upload failed, local state stays ahead of remote",
					"movie_id", m.ID,
					"title", m.Title,
					"error", err,
				)
			}
		})
	}

	wg.Wait()

	s.logger.Debug("reconciliation pass complete",
		"backlog", backlog,
		"uploads", len(res.Changed),
		"deletes", len(res.RemovedIDs),
	)
}

// Syncing reports whether a full pull is in flight, for the UI's
// "still syncing" indicator.
func (s *SyncService) Syncing() bool {
	return s.pulling.Load()
}

// FullPull fetches the active group's complete remote state, folds in
// independently stored ratings, and atomically replaces the local
// library under suppression so nothing is re-uploaded. When the remote
// partition is empty and local data exists, the local collections are
// uploaded once instead; this covers first use of a scope with
// pre-existing local-only data.
func (s *SyncService) FullPull(ctx context.Context) error {
	s.pulling.Store(true)
	defer s.pulling.Store(false)

	groupID := s.groups.Active().ID

	records, err := s.movies.Fetch(ctx, groupID)
	if err != nil {
		s.logger.Warn("Full pull failed", "group_id", groupID, "error", err)
		return err
	}

	localWatched := s.library.Watched()
	localBacklog := s.library.Backlog()

	if len(records) == 0 && (len(localWatched) > 0 || len(localBacklog) > 0) {
		s.initialUpload(ctx, localWatched, localBacklog)
		return nil
	}

	var watched, backlog []domain.Movie
	movieIDs := make([]string, 0, len(records))
	for _, rec := range records {
		movieIDs = append(movieIDs, rec.Movie.ID)
		if rec.Backlog {
			backlog = append(backlog, rec.Movie)
		} else {
			watched = append(watched, rec.Movie)
		}
	}

	// Ratings embedded in fetched movies are stale copies; replace them
	// with the independently synchronized records, folded onto any local
	// ratings so an entry whose remote save failed survives the pull.
	if ratings, err := s.ratings.FetchRatings(ctx, groupID, movieIDs); err != nil {
		s.logger.Warn("Rating pull failed, keeping embedded ratings", "error", err)
	} else {
		local := make(map[string][]domain.Rating, len(localWatched)+len(localBacklog))
		for _, m := range localWatched {
			local[m.ID] = m.Ratings
		}
		for _, m := range localBacklog {
			local[m.ID] = m.Ratings
		}
		for i := range watched {
			watched[i].Ratings = domain.MergeRatings(local[watched[i].ID], ratings[watched[i].ID])
		}
		for i := range backlog {
			backlog[i].Ratings = domain.MergeRatings(local[backlog[i].ID], ratings[backlog[i].ID])
		}
	}

	sortWatched(watched)
	sortBacklog(backlog)

	s.library.ApplyRemote(watched, backlog)

	s.logger.Info("Full pull applied",
		"group_id", groupID,
		"watched", len(watched),
		"backlog", len(backlog),
	)
	return nil
}

// initialUpload seeds an empty remote partition from the local state.
func (s *SyncService) initialUpload(ctx context.Context, watched, backlog []domain.Movie) {
	s.logger.Info("Remote scope is empty, uploading local collections",
		"watched", len(watched),
		"backlog", len(backlog),
	)
	s.Reconcile(ctx, nil, watched, false)
	s.Reconcile(ctx, nil, backlog, true)
}

// Wait blocks until all background reconciliations have drained.
func (s *SyncService) Wait() {
	s.wg.Wait()
}

// sortWatched orders the watched list newest first; entries without a
// watch date sink to the end.
func sortWatched(movies []domain.Movie) {
	sort.SliceStable(movies, func(i, j int) bool {
		a, b := movies[i].WatchedAt, movies[j].WatchedAt
		switch {
		case a == nil:
			return false
		case b == nil:
			return true
		default:
			return a.After(*b)
		}
	})
}

// sortBacklog orders the backlog alphabetically.
func sortBacklog(movies []domain.Movie) {
	sort.SliceStable(movies, func(i, j int) bool {
		return movies[i].Title < movies[j].Title
	})
}
