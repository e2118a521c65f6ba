// Package voting implements the up/down vote toggle shared by video and
// comment upvotes. One row exists per (user, target) pair; repeating the
// same vote flips it off, voting the other way switches and reactivates.
package voting

import (
	"errors"
	"time"

	"cinema-backend/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type TargetKind string

const (
	TargetVideo   TargetKind = "video"
	TargetComment TargetKind = "comment"
)

func (k TargetKind) table() string {
	if k == TargetComment {
		return "comment_upvotes"
	}
	return "video_upvotes"
}

func (k TargetKind) column() string {
	if k == TargetComment {
		return "comment_id"
	}
	return "video_id"
}

// Vote is the state of one user's vote on one target after a toggle.
type Vote struct {
	UpvoteType models.UpvoteType `json:"upvoteType"`
	Inactive   bool              `json:"inactive"`
}

// Toggle applies one vote action and returns the resulting state. The read
// and the insert/update run in one transaction with the existing row locked;
// two first votes racing on the same pair hit the unique pair index, so a
// duplicate row can never land.
func Toggle(db *gorm.DB, kind TargetKind, userID, targetID string, requested models.UpvoteType) (Vote, error) {
	var vote Vote

	err := db.Transaction(func(tx *gorm.DB) error {
		var existing struct {
			ID         string
			UpvoteType models.UpvoteType
			Inactive   bool
		}

		err := tx.Table(kind.table()).
			Select("id, upvote_type, inactive").
			Clauses(clause.Locking{Strength: "UPDATE"}).
			Where(kind.column()+" = ? AND user_id = ?", targetID, userID).
			Take(&existing).Error

		if errors.Is(err, gorm.ErrRecordNotFound) {
			err = tx.Table(kind.table()).Create(map[string]interface{}{
				"user_id":     userID,
				kind.column(): targetID,
				"upvote_type": requested,
				"inactive":    false,
				"created_at":  time.Now(),
			}).Error
			if err != nil {
				return err
			}
			vote = Vote{UpvoteType: requested, Inactive: false}
			return nil
		}
		if err != nil {
			return err
		}

		// Same button again toggles the vote off (or back on); a different
		// button switches the vote and always reactivates it.
		inactive := false
		if existing.UpvoteType == requested {
			inactive = !existing.Inactive
		}

		err = tx.Table(kind.table()).
			Where("id = ?", existing.ID).
			Updates(map[string]interface{}{
				"upvote_type": requested,
				"inactive":    inactive,
			}).Error
		if err != nil {
			return err
		}

		vote = Vote{UpvoteType: requested, Inactive: inactive}
		return nil
	})

	return vote, err
}

// Counts returns the active up and down vote totals for a target.
func Counts(db *gorm.DB, kind TargetKind, targetID string) (int64, int64, error) {
	var up, down int64

	err := db.Table(kind.table()).
		Where(kind.column()+" = ? AND upvote_type = ? AND inactive = ?", targetID, models.Up, false).
		Count(&up).Error
	if err != nil {
		return 0, 0, err
	}

	err = db.Table(kind.table()).
		Where(kind.column()+" = ? AND upvote_type = ? AND inactive = ?", targetID, models.Down, false).
		Count(&down).Error
	if err != nil {
		return 0, 0, err
	}

	return up, down, nil
}

// ActiveVote returns the user's active vote on a target, or nil.
func ActiveVote(db *gorm.DB, kind TargetKind, userID, targetID string) (*models.UpvoteType, error) {
	var existing struct {
		UpvoteType models.UpvoteType
	}

	err := db.Table(kind.table()).
		Select("upvote_type").
		Where(kind.column()+" = ? AND user_id = ? AND inactive = ?", targetID, userID, false).
		Take(&existing).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	return &existing.UpvoteType, nil
}
