package models

import "time"

// Person classifications stored on actors.person_type.
const (
	PersonTypeActor      = "actor"
	PersonTypeTechnician = "technician"
)

// Credit classifications stored on movie_cast.credit_type.
const (
	CreditTypeCast = "cast"
	CreditTypeCrew = "crew"
)

type Actor struct {
	ID           uint    `gorm:"primaryKey" json:"id"`
	TMDBPersonID int     `gorm:"uniqueIndex;not null" json:"tmdb_person_id"`
	Name         string  `gorm:"not null;index" json:"name"`
	PhotoURL     *string `json:"photo_url,omitempty"`
	PersonType   string  `gorm:"index" json:"person_type"`
	Gender       *int    `json:"gender,omitempty"`

	// BirthDate is populated by the birth-date backfill, TierRank by hand.
	// The seed pipeline never writes either.
	BirthDate *string `gorm:"type:date" json:"birth_date,omitempty"`
	TierRank  *int    `json:"tier_rank,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (Actor) TableName() string {
	return "actors"
}

// SyncedColumns is the set of columns the sync pipeline owns on actors.
func (Actor) SyncedColumns() []string {
	return []string{"name", "photo_url", "person_type", "gender", "updated_at"}
}

// MovieCast is a pure association row. Credits for a movie are replaced
// wholesale on every sync of that movie.
type MovieCast struct {
	ID           uint      `gorm:"primaryKey" json:"id"`
	MovieID      uint      `gorm:"index;not null" json:"movie_id"`
	ActorID      uint      `gorm:"index;not null" json:"actor_id"`
	RoleName     *string   `json:"role_name,omitempty"`
	DisplayOrder int       `json:"display_order"`
	CreditType   string    `gorm:"index" json:"credit_type"`
	RoleOrder    *int      `json:"role_order,omitempty"`
	CreatedAt    time.Time `json:"created_at"`
}

func (MovieCast) TableName() string {
	return "movie_cast"
}
