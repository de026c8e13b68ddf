package services

import "faniverz-sync/internal/tmdb"

// Canonical crew role display priorities: Director first, Editor last.
const (
	RoleOrderDirector        = 1
	RoleOrderProducer        = 2
	RoleOrderMusicDirector   = 3
	RoleOrderCinematographer = 4
	RoleOrderEditor          = 5
)

// CrewRole is one classified crew credit.
type CrewRole struct {
	Person    tmdb.CrewMember
	RoleName  string
	RoleOrder int
}

type roleMapping struct {
	Name  string
	Order int
}

// crewJobTable maps raw TMDB job titles to canonical roles. Jobs without a
// mapping are dropped from the credit set.
var crewJobTable = map[string]roleMapping{
	"Director":                {Name: "Director", Order: RoleOrderDirector},
	"Producer":                {Name: "Producer", Order: RoleOrderProducer},
	"Executive Producer":      {Name: "Producer", Order: RoleOrderProducer},
	"Original Music Composer": {Name: "Music Director", Order: RoleOrderMusicDirector},
	"Director of Photography": {Name: "Cinematographer", Order: RoleOrderCinematographer},
	"Cinematography":          {Name: "Cinematographer", Order: RoleOrderCinematographer},
	"Editor":                  {Name: "Editor", Order: RoleOrderEditor},
}

// ClassifyCrew maps a raw crew list to canonical roles, deduplicated by
// (person, role): someone credited as both Producer and Executive Producer
// yields a single Producer credit, first occurrence wins.
func ClassifyCrew(crew []tmdb.CrewMember) []CrewRole {
	type dedupKey struct {
		personID  int
		roleOrder int
	}

	seen := make(map[dedupKey]bool)
	var roles []CrewRole

	for _, member := range crew {
		mapping, ok := crewJobTable[member.Job]
		if !ok {
			continue
		}

		key := dedupKey{personID: member.ID, roleOrder: mapping.Order}
		if seen[key] {
			continue
		}
		seen[key] = true

		roles = append(roles, CrewRole{
			Person:    member,
			RoleName:  mapping.Name,
			RoleOrder: mapping.Order,
		})
	}

	return roles
}

// ExtractDirector returns the name of the first crew entry, in API-provided
// order, whose job is exactly "Director". If TMDB ever lists several
// directors only the first is kept.
func ExtractDirector(crew []tmdb.CrewMember) string {
	for _, member := range crew {
		if member.Job == "Director" {
			return member.Name
		}
	}
	return ""
}
