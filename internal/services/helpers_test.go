package services

import (
	"context"
	"fmt"
	"io"
	"sync"
	"time"

	"faniverz-sync/internal/config"
	"faniverz-sync/internal/models"
	"faniverz-sync/internal/tmdb"

	"github.com/sirupsen/logrus"
)

func testLogger() *logrus.Logger {
	log := logrus.New()
	log.SetOutput(io.Discard)
	return log
}

func testConfig() *config.Config {
	return &config.Config{
		TMDB: config.TMDBConfig{
			Language:  "te",
			PageDelay: time.Millisecond,
		},
		Storage: config.StorageConfig{
			PosterBucket:   "movie-posters",
			BackdropBucket: "movie-backdrops",
			ProfileBucket:  "actor-profiles",
		},
		Sync: config.SyncConfig{
			SeedConcurrency:    3,
			MigrateConcurrency: 5,
			CastLimit:          15,
		},
	}
}

// ---- fake movie repository ----

type imageUpdate struct {
	id     uint
	column string
	url    string
}

type fakeMovieRepo struct {
	mu     sync.Mutex
	byTMDB map[int]*models.Movie
	nextID uint

	// ignoreExisting makes ExistingTMDBIDs report nothing, forcing every
	// candidate through the per-movie step (re-sync path).
	ignoreExisting bool
	upsertErr      error
	cdnMovies      []models.Movie
	imageUpdates   []imageUpdate
}

func newFakeMovieRepo() *fakeMovieRepo {
	return &fakeMovieRepo{byTMDB: make(map[int]*models.Movie)}
}

func (r *fakeMovieRepo) Upsert(ctx context.Context, movie *models.Movie) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.upsertErr != nil {
		return r.upsertErr
	}

	stored := *movie
	if existing, ok := r.byTMDB[movie.TMDBID]; ok {
		// Mirror the ON CONFLICT column list: manual fields and identity
		// come from the stored row.
		stored.ID = existing.ID
		stored.CreatedAt = existing.CreatedAt
		stored.Certification = existing.Certification
		stored.IsFeatured = existing.IsFeatured
	} else {
		r.nextID++
		stored.ID = r.nextID
	}
	r.byTMDB[movie.TMDBID] = &stored
	movie.ID = stored.ID
	return nil
}

func (r *fakeMovieRepo) FindByTMDBID(ctx context.Context, tmdbID int) (*models.Movie, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if m, ok := r.byTMDB[tmdbID]; ok {
		copied := *m
		return &copied, nil
	}
	return nil, nil
}

func (r *fakeMovieRepo) ExistingTMDBIDs(ctx context.Context, tmdbIDs []int) (map[int]bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	existing := make(map[int]bool)
	if r.ignoreExisting {
		return existing, nil
	}
	for _, id := range tmdbIDs {
		if _, ok := r.byTMDB[id]; ok {
			existing[id] = true
		}
	}
	return existing, nil
}

func (r *fakeMovieRepo) FindWithCDNImages(ctx context.Context, cdnHost string) ([]models.Movie, error) {
	return r.cdnMovies, nil
}

func (r *fakeMovieRepo) UpdateImageURL(ctx context.Context, id uint, column, url string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.imageUpdates = append(r.imageUpdates, imageUpdate{id: id, column: column, url: url})
	return nil
}

func (r *fakeMovieRepo) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.byTMDB)
}

// ---- fake actor repository ----

type fakeActorRepo struct {
	mu     sync.Mutex
	byTMDB map[int]*models.Actor
	nextID uint

	upsertErrFor map[int]error
	cdnActors    []models.Actor
	photoUpdates []imageUpdate
	birthUpdates map[uint]string
}

func newFakeActorRepo() *fakeActorRepo {
	return &fakeActorRepo{
		byTMDB:       make(map[int]*models.Actor),
		upsertErrFor: make(map[int]error),
		birthUpdates: make(map[uint]string),
	}
}

func (r *fakeActorRepo) Upsert(ctx context.Context, actor *models.Actor) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if err := r.upsertErrFor[actor.TMDBPersonID]; err != nil {
		return err
	}

	stored := *actor
	if existing, ok := r.byTMDB[actor.TMDBPersonID]; ok {
		stored.ID = existing.ID
		stored.BirthDate = existing.BirthDate
		stored.TierRank = existing.TierRank
	} else {
		r.nextID++
		stored.ID = r.nextID
	}
	r.byTMDB[actor.TMDBPersonID] = &stored
	actor.ID = stored.ID
	return nil
}

func (r *fakeActorRepo) FindByTMDBPersonID(ctx context.Context, tmdbPersonID int) (*models.Actor, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if a, ok := r.byTMDB[tmdbPersonID]; ok {
		copied := *a
		return &copied, nil
	}
	return nil, nil
}

func (r *fakeActorRepo) FindWithoutBirthDate(ctx context.Context, limit int) ([]models.Actor, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var out []models.Actor
	for _, a := range r.byTMDB {
		if a.BirthDate == nil {
			out = append(out, *a)
		}
		if limit > 0 && len(out) >= limit {
			break
		}
	}
	return out, nil
}

func (r *fakeActorRepo) UpdateBirthDate(ctx context.Context, id uint, birthDate string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.birthUpdates[id] = birthDate
	for _, a := range r.byTMDB {
		if a.ID == id {
			a.BirthDate = &birthDate
		}
	}
	return nil
}

func (r *fakeActorRepo) FindWithCDNPhotos(ctx context.Context, cdnHost string) ([]models.Actor, error) {
	return r.cdnActors, nil
}

func (r *fakeActorRepo) UpdatePhotoURL(ctx context.Context, id uint, url string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.photoUpdates = append(r.photoUpdates, imageUpdate{id: id, column: "photo_url", url: url})
	return nil
}

// ---- fake credit repository ----

type fakeCreditRepo struct {
	mu      sync.Mutex
	credits []models.MovieCast
	nextID  uint
}

func newFakeCreditRepo() *fakeCreditRepo {
	return &fakeCreditRepo{}
}

func (r *fakeCreditRepo) DeleteByMovieID(ctx context.Context, movieID uint) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	kept := r.credits[:0]
	for _, c := range r.credits {
		if c.MovieID != movieID {
			kept = append(kept, c)
		}
	}
	r.credits = kept
	return nil
}

func (r *fakeCreditRepo) Create(ctx context.Context, credit *models.MovieCast) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.nextID++
	credit.ID = r.nextID
	r.credits = append(r.credits, *credit)
	return nil
}

func (r *fakeCreditRepo) FindByMovieID(ctx context.Context, movieID uint) ([]models.MovieCast, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var out []models.MovieCast
	for _, c := range r.credits {
		if c.MovieID == movieID {
			out = append(out, c)
		}
	}
	return out, nil
}

// ---- fake sync log repository ----

type fakeSyncLogRepo struct {
	mu   sync.Mutex
	logs []*models.SyncLog
}

func newFakeSyncLogRepo() *fakeSyncLogRepo {
	return &fakeSyncLogRepo{}
}

func (r *fakeSyncLogRepo) Create(ctx context.Context, log *models.SyncLog) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.logs = append(r.logs, log)
	return nil
}

func (r *fakeSyncLogRepo) Update(ctx context.Context, log *models.SyncLog) error {
	return nil
}

func (r *fakeSyncLogRepo) GetLastRun(ctx context.Context, pipeline string) (*models.SyncLog, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i := len(r.logs) - 1; i >= 0; i-- {
		if r.logs[i].Pipeline == pipeline {
			return r.logs[i], nil
		}
	}
	return nil, nil
}

// ---- fake metadata API ----

type fakeAPI struct {
	mu          sync.Mutex
	discover    map[int][]tmdb.DiscoverResult
	discoverErr error
	details     map[int]*tmdb.MovieDetail
	detailErr   map[int]error
	persons     map[int]*tmdb.PersonDetail
	personErr   map[int]error
}

func newFakeAPI() *fakeAPI {
	return &fakeAPI{
		discover:  make(map[int][]tmdb.DiscoverResult),
		details:   make(map[int]*tmdb.MovieDetail),
		detailErr: make(map[int]error),
		persons:   make(map[int]*tmdb.PersonDetail),
		personErr: make(map[int]error),
	}
}

func (a *fakeAPI) DiscoverByYear(ctx context.Context, year int) ([]tmdb.DiscoverResult, error) {
	if a.discoverErr != nil {
		return nil, a.discoverErr
	}
	return a.discover[year], nil
}

func (a *fakeAPI) GetMovieDetail(ctx context.Context, tmdbID int) (*tmdb.MovieDetail, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if err := a.detailErr[tmdbID]; err != nil {
		return nil, err
	}
	if d, ok := a.details[tmdbID]; ok {
		return d, nil
	}
	return nil, fmt.Errorf("no detail for %d", tmdbID)
}

func (a *fakeAPI) GetPersonDetail(ctx context.Context, tmdbPersonID int) (*tmdb.PersonDetail, error) {
	if err := a.personErr[tmdbPersonID]; err != nil {
		return nil, err
	}
	if p, ok := a.persons[tmdbPersonID]; ok {
		return p, nil
	}
	return nil, fmt.Errorf("no person %d", tmdbPersonID)
}

func (a *fakeAPI) PosterURL(path string) string {
	if path == "" {
		return ""
	}
	return "https://image.tmdb.org/t/p/w500" + path
}

func (a *fakeAPI) BackdropURL(path string) string {
	if path == "" {
		return ""
	}
	return "https://image.tmdb.org/t/p/w1280" + path
}

func (a *fakeAPI) ProfileURL(path string) string {
	if path == "" {
		return ""
	}
	return "https://image.tmdb.org/t/p/w185" + path
}

// ---- fake image relay ----

type relayCall struct {
	sourceURL string
	bucket    string
	key       string
}

type fakeRelay struct {
	mu         sync.Mutex
	configured bool
	failFor    map[string]bool // sourceURL -> force pass-through
	calls      []relayCall
}

func newFakeRelay(configured bool) *fakeRelay {
	return &fakeRelay{configured: configured, failFor: make(map[string]bool)}
}

func (r *fakeRelay) Relay(ctx context.Context, sourceURL, bucket, key string) (string, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.calls = append(r.calls, relayCall{sourceURL: sourceURL, bucket: bucket, key: key})
	if !r.configured || sourceURL == "" || r.failFor[sourceURL] {
		return sourceURL, false
	}
	return "https://cdn.faniverz.test/" + bucket + "/" + key, true
}

func (r *fakeRelay) Configured() bool {
	return r.configured
}

func (r *fakeRelay) callCount() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.calls)
}

// ---- detail builders ----

func discoverItem(id int, title, date string) tmdb.DiscoverResult {
	return tmdb.DiscoverResult{ID: id, Title: title, ReleaseDate: date, PosterPath: fmt.Sprintf("/p%d.jpg", id)}
}

func movieDetail(id int, title, date string, cast []tmdb.CastMember, crew []tmdb.CrewMember) *tmdb.MovieDetail {
	return &tmdb.MovieDetail{
		ID:           id,
		Title:        title,
		Overview:     "overview of " + title,
		ReleaseDate:  date,
		Runtime:      150,
		Genres:       []tmdb.Genre{{ID: 28, Name: "Action"}, {ID: 18, Name: "Drama"}},
		PosterPath:   fmt.Sprintf("/p%d.jpg", id),
		BackdropPath: fmt.Sprintf("/b%d.jpg", id),
		Credits:      tmdb.Credits{Cast: cast, Crew: crew},
		Videos: tmdb.VideoList{Results: []tmdb.Video{
			{Key: fmt.Sprintf("trailer%d", id), Site: "YouTube", Type: "Trailer"},
		}},
	}
}
