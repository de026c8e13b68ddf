package tmdb

// DiscoverResult is one movie from the discover endpoint.
type DiscoverResult struct {
	ID          int    `json:"id"`
	Title       string `json:"title"`
	ReleaseDate string `json:"release_date"`
	PosterPath  string `json:"poster_path"`
}

// DiscoverResponse is a single page of discover results.
type DiscoverResponse struct {
	Page         int              `json:"page"`
	Results      []DiscoverResult `json:"results"`
	TotalPages   int              `json:"total_pages"`
	TotalResults int              `json:"total_results"`
}

type Genre struct {
	ID   int    `json:"id"`
	Name string `json:"name"`
}

// CastMember is a single cast entry, ordered by billing.
type CastMember struct {
	ID          int    `json:"id"`
	Name        string `json:"name"`
	Character   string `json:"character"`
	Order       int    `json:"order"`
	ProfilePath string `json:"profile_path"`
	Gender      int    `json:"gender"`
}

// CrewMember is a single crew entry identified by job title.
type CrewMember struct {
	ID          int    `json:"id"`
	Name        string `json:"name"`
	Job         string `json:"job"`
	Department  string `json:"department"`
	ProfilePath string `json:"profile_path"`
	Gender      int    `json:"gender"`
}

type Credits struct {
	Cast []CastMember `json:"cast"`
	Crew []CrewMember `json:"crew"`
}

type Video struct {
	Key  string `json:"key"`
	Site string `json:"site"`
	Type string `json:"type"`
}

type VideoList struct {
	Results []Video `json:"results"`
}

// MovieDetail is the response from GET /movie/{id} with credits and videos
// appended in the same round trip.
type MovieDetail struct {
	ID           int       `json:"id"`
	Title        string    `json:"title"`
	Overview     string    `json:"overview"`
	ReleaseDate  string    `json:"release_date"`
	Runtime      int       `json:"runtime"`
	Genres       []Genre   `json:"genres"`
	PosterPath   string    `json:"poster_path"`
	BackdropPath string    `json:"backdrop_path"`
	Credits      Credits   `json:"credits"`
	Videos       VideoList `json:"videos"`
}

// PersonDetail is the response from GET /person/{id}.
type PersonDetail struct {
	ID          int    `json:"id"`
	Name        string `json:"name"`
	Birthday    string `json:"birthday"`
	ProfilePath string `json:"profile_path"`
	Gender      int    `json:"gender"`
}
