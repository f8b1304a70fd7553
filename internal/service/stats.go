package service

import (
	"wishlist_system/internal/domain" // Importing domain models

	"gorm.io/gorm" // GORM ORM library
)

// Stats aggregates the landing-page figures across all wishlists
type Stats struct {
	db *gorm.DB // Database handle
}

// NewStats creates a Stats service backed by the given database
func NewStats(db *gorm.DB) *Stats {
	return &Stats{db: db}
}

// Contributor is one entry in the recent-contributors list
type Contributor struct {
	Name string `json:"name"` // Display name only
}

// StatsSummary is the landing-page aggregate payload
type StatsSummary struct {
	TotalCollected     float64       `json:"total_collected"`     // Sum of all contributions
	TotalGoal          float64       `json:"total_goal"`          // Sum of all gift prices
	RecentContributors []Contributor `json:"recent_contributors"` // Up to 5 most recent distinct contributors
}

// Summary computes the global totals plus the most recent distinct
// contributors, drawn from the 10 newest ledger entries
func (s *Stats) Summary() (*StatsSummary, error) {
	var totalCollected float64
	if err := s.db.Model(&domain.Contribution{}).
		Select("COALESCE(SUM(amount), 0)").
		Scan(&totalCollected).Error; err != nil {
		return nil, err
	}
	var totalGoal float64
	if err := s.db.Model(&domain.Gift{}).
		Select("COALESCE(SUM(price), 0)").
		Scan(&totalGoal).Error; err != nil {
		return nil, err
	}
	var recent []domain.Contribution
	if err := s.db.Order("created_at desc").Limit(10).Find(&recent).Error; err != nil {
		return nil, err
	}
	// Deduplicate by user while preserving recency order
	seen := make(map[uint]bool)
	ids := make([]uint, 0, len(recent))
	for _, c := range recent {
		if !seen[c.UserID] {
			seen[c.UserID] = true
			ids = append(ids, c.UserID)
		}
	}
	names := make(map[uint]string)
	if len(ids) > 0 {
		var users []domain.User
		if err := s.db.Where("id IN ?", ids).Find(&users).Error; err != nil {
			return nil, err
		}
		for _, u := range users {
			names[u.ID] = u.Name
		}
	}
	contributors := make([]Contributor, 0, 5)
	for _, id := range ids {
		contributors = append(contributors, Contributor{Name: userName(names, id)})
		if len(contributors) >= 5 {
			break
		}
	}
	return &StatsSummary{
		TotalCollected:     totalCollected,
		TotalGoal:          totalGoal,
		RecentContributors: contributors,
	}, nil
}
