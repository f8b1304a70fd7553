package service

import (
	"math/rand" // Randomized slug suffixes
	"strings"   // String manipulation

	"wishlist_system/internal/domain" // Importing domain models

	"gorm.io/gorm" // GORM ORM library
)

const slugAlphabet = "abcdefghijklmnopqrstuvwxyz0123456789" // Characters used in random slug parts

// randomSlug returns a random alphanumeric string of length n
func randomSlug(n int) string {
	b := make([]byte, n)
	for i := range b {
		b[i] = slugAlphabet[rand.Intn(len(slugAlphabet))]
	}
	return string(b)
}

// slugify lowercases the title, replaces spaces with hyphens and strips
// everything outside [a-z0-9-]; the result may be empty
func slugify(title string) string {
	base := strings.ReplaceAll(strings.ToLower(strings.TrimSpace(title)), " ", "-")
	var sb strings.Builder
	for _, ch := range base {
		if (ch >= 'a' && ch <= 'z') || (ch >= '0' && ch <= '9') || ch == '-' {
			sb.WriteRune(ch)
		}
	}
	return strings.Trim(sb.String(), "-")
}

// generateUniqueSlug derives a globally unique slug from a wishlist title.
// An empty base gets an 8-character random substitute; collisions get a
// 4-character random suffix for up to 10 attempts, after which a fully
// random 12-character slug guarantees termination.
func generateUniqueSlug(db *gorm.DB, title string) (string, error) {
	base := slugify(title)
	if base == "" {
		base = randomSlug(8)
	}
	slug := base
	for attempt := 0; attempt < 10; attempt++ {
		var count int64
		if err := db.Model(&domain.Wishlist{}).Where("slug = ?", slug).Count(&count).Error; err != nil {
			return "", err
		}
		if count == 0 {
			return slug, nil
		}
		slug = base + "-" + randomSlug(4)
	}
	return randomSlug(12), nil
}
