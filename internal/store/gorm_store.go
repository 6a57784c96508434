// Package store implements the feed engine's persistence contract on gorm.
package store

import (
	"context"
	"fmt"
	"sync"
	"vinolog/backend/internal/feed"
	"vinolog/backend/internal/logger"
	"vinolog/backend/internal/models"

	"gorm.io/gorm"
)

// GormStore satisfies feed.Store against a gorm-managed database.
//
// It probes once for the optional feed columns (root_entry_id, is_feed_visible)
// and answers full-generation queries with feed.ErrMissingColumn when the schema
// predates them, so the aggregator can retry with the legacy generation.
type GormStore struct {
	db  *gorm.DB
	log *logger.Logger

	probeOnce      sync.Once
	hasFeedColumns bool
}

func New(db *gorm.DB, log *logger.Logger) *GormStore {
	return &GormStore{db: db, log: log.With("component", "store")}
}

func (s *GormStore) supportsFeedColumns() bool {
	s.probeOnce.Do(func() {
		m := s.db.Migrator()
		s.hasFeedColumns = m.HasColumn(&models.Entry{}, "root_entry_id") &&
			m.HasColumn(&models.Entry{}, "is_feed_visible")
		if !s.hasFeedColumns {
			s.log.Warn("entries table predates the feed columns, dedup disabled")
		}
	})
	return s.hasFeedColumns
}

// FeedCandidates returns one raw candidate window, created_at descending.
func (s *GormStore) FeedCandidates(ctx context.Context, q feed.CandidateQuery) ([]models.Entry, error) {
	if q.Generation == feed.SchemaFull && !s.supportsFeedColumns() {
		return nil, fmt.Errorf("feed candidate query: %w", feed.ErrMissingColumn)
	}

	tx := s.db.WithContext(ctx).
		Preload("Photos").
		Preload("Grapes").
		Where("owner_id <> ?", q.ExcludeOwner)

	if len(q.OwnerIDs) > 0 {
		tx = tx.Where("owner_id IN ?", q.OwnerIDs)
	}
	if q.PublicOnly {
		tx = tx.Where("entry_privacy = ?", string(feed.PrivacyPublic))
	}
	if q.Before != nil {
		tx = tx.Where("created_at < ?", *q.Before)
	}
	if q.Generation == feed.SchemaFull {
		tx = tx.Where("is_feed_visible IS NULL OR is_feed_visible = ?", true)
	}

	var rows []models.Entry
	if err := tx.Order("created_at DESC").Limit(q.Limit).Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

// AcceptedEdges returns accepted relations touching userID on either side.
func (s *GormStore) AcceptedEdges(ctx context.Context, userID uint) ([]models.UserRelation, error) {
	var rows []models.UserRelation
	err := s.db.WithContext(ctx).
		Where("(from_user_id = ? OR to_user_id = ?) AND status = ?", userID, userID, models.StatusAccepted).
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}

// AcceptedEdgesFrom returns accepted relations whose requester is in ids.
func (s *GormStore) AcceptedEdgesFrom(ctx context.Context, ids []uint) ([]models.UserRelation, error) {
	var rows []models.UserRelation
	err := s.db.WithContext(ctx).
		Where("from_user_id IN ? AND status = ?", ids, models.StatusAccepted).
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}

// AcceptedEdgesTo returns accepted relations whose recipient is in ids.
func (s *GormStore) AcceptedEdgesTo(ctx context.Context, ids []uint) ([]models.UserRelation, error) {
	var rows []models.UserRelation
	err := s.db.WithContext(ctx).
		Where("to_user_id IN ? AND status = ?", ids, models.StatusAccepted).
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}

func (s *GormStore) ReactionsByEntry(ctx context.Context, entryID uint) ([]models.Reaction, error) {
	var rows []models.Reaction
	err := s.db.WithContext(ctx).
		Where("entry_id = ?", entryID).
		Order("created_at ASC").
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}

// CommentsByEntry returns every comment on the entry oldest first, including
// soft-deleted rows so reply threading stays intact.
func (s *GormStore) CommentsByEntry(ctx context.Context, entryID uint) ([]models.Comment, error) {
	var rows []models.Comment
	err := s.db.WithContext(ctx).Unscoped().
		Where("entry_id = ?", entryID).
		Order("created_at ASC").
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}

// CommentCount counts live comments on the entry.
func (s *GormStore) CommentCount(ctx context.Context, entryID uint) (int64, error) {
	var count int64
	err := s.db.WithContext(ctx).Model(&models.Comment{}).
		Where("entry_id = ? AND body <> ?", entryID, models.DeletedCommentBody).
		Count(&count).Error
	if err != nil {
		return 0, err
	}
	return count, nil
}

func (s *GormStore) ProfilesByIDs(ctx context.Context, ids []uint) ([]feed.Profile, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	var users []models.User
	if err := s.db.WithContext(ctx).Where("id IN ?", ids).Find(&users).Error; err != nil {
		return nil, err
	}
	out := make([]feed.Profile, 0, len(users))
	for _, u := range users {
		out = append(out, feed.Profile{
			ID:          u.ID,
			DisplayName: u.DisplayName,
			Email:       u.Email,
			AvatarPath:  u.AvatarPath,
		})
	}
	return out, nil
}
