package services

import (
	"context"
	"fmt"
	"testing"

	"faniverz-sync/internal/models"
	"faniverz-sync/internal/tmdb"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBackfillBirthDates(t *testing.T) {
	actors := newFakeActorRepo()
	for i, id := range []int{11, 12, 13} {
		require.NoError(t, actors.Upsert(context.Background(), &models.Actor{
			TMDBPersonID: id,
			Name:         fmt.Sprintf("Person %d", i),
			PersonType:   models.PersonTypeActor,
		}))
	}

	api := newFakeAPI()
	api.persons[11] = &tmdb.PersonDetail{ID: 11, Name: "Person 0", Birthday: "1980-05-20"}
	api.persons[12] = &tmdb.PersonDetail{ID: 12, Name: "Person 1", Birthday: ""}
	api.personErr[13] = fmt.Errorf("TMDB API returned status 500")

	backfiller := NewBackfillService(actors, api, 0, testLogger())
	result, err := backfiller.BackfillBirthDates(context.Background(), 0)
	require.NoError(t, err)

	assert.Equal(t, 1, result.Updated)
	assert.Equal(t, 1, result.Missing)
	assert.Equal(t, 1, result.Failed)

	person, err := actors.FindByTMDBPersonID(context.Background(), 11)
	require.NoError(t, err)
	require.NotNil(t, person.BirthDate)
	assert.Equal(t, "1980-05-20", *person.BirthDate)
}
