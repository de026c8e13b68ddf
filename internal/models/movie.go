package models

import (
	"time"

	"github.com/lib/pq"
)

// Movie release categories derived from the release date at sync time.
const (
	CategoryUpcoming   = "upcoming"
	CategoryTheatrical = "theatrical"
)

type Movie struct {
	ID          uint           `gorm:"primaryKey" json:"id"`
	TMDBID      int            `gorm:"uniqueIndex;not null" json:"tmdb_id"`
	Title       string         `gorm:"not null;index" json:"title"`
	Overview    string         `gorm:"type:text" json:"overview"`
	ReleaseDate string         `gorm:"type:date;index" json:"release_date"`
	Runtime     *int           `json:"runtime,omitempty"`
	Genres      pq.StringArray `gorm:"type:text[]" json:"genres"`
	PosterURL   *string        `json:"poster_url,omitempty"`
	BackdropURL *string        `json:"backdrop_url,omitempty"`
	TrailerURL  *string        `json:"trailer_url,omitempty"`
	Director    *string        `json:"director,omitempty"`
	Category    string         `gorm:"index" json:"category"`
	Language    string         `gorm:"size:10;index" json:"language"`

	// Certification and IsFeatured are curated by hand in the admin tooling
	// and are never part of the sync upsert column set.
	Certification *string `json:"certification,omitempty"`
	IsFeatured    bool    `json:"is_featured"`

	TMDBLastSyncedAt *time.Time `json:"tmdb_last_synced_at,omitempty"`
	CreatedAt        time.Time  `gorm:"index" json:"created_at"`
	UpdatedAt        time.Time  `json:"updated_at"`
}

func (Movie) TableName() string {
	return "movies"
}

// SyncedColumns is the set of columns the sync pipeline owns. Manual fields
// (certification, is_featured) are excluded so curator edits survive re-syncs.
func (Movie) SyncedColumns() []string {
	return []string{
		"title", "overview", "release_date", "runtime", "genres",
		"poster_url", "backdrop_url", "trailer_url", "director",
		"category", "language", "tmdb_last_synced_at", "updated_at",
	}
}

// MoviePlatform records where a movie can be streamed. Rows are maintained
// by hand; the sync pipelines only ever read this table.
type MoviePlatform struct {
	ID           uint      `gorm:"primaryKey" json:"id"`
	MovieID      uint      `gorm:"index;not null" json:"movie_id"`
	PlatformName string    `gorm:"not null" json:"platform_name"`
	WatchURL     string    `json:"watch_url"`
	CreatedAt    time.Time `json:"created_at"`
}

func (MoviePlatform) TableName() string {
	return "movie_platforms"
}
