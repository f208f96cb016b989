package tmdb

// SearchResult is one movie hit from a title search.
type SearchResult struct {
	ID          int64  `json:"id"`
	Title       string `json:"title"`
	ReleaseDate string `json:"release_date"`
	PosterPath  string `json:"poster_path"`
	Overview    string `json:"overview"`
}

// searchResponse is the catalog's search envelope.
type searchResponse struct {
	Page         int            `json:"page"`
	Results      []SearchResult `json:"results"`
	TotalPages   int            `json:"total_pages"`
	TotalResults int            `json:"total_results"`
}

// MovieDetails is the full catalog record for one movie.
type MovieDetails struct {
	ID          int64   `json:"id"`
	Title       string  `json:"title"`
	ReleaseDate string  `json:"release_date"`
	PosterPath  string  `json:"poster_path"`
	Runtime     int     `json:"runtime"`
	Genres      []Genre `json:"genres"`
}

// Genre is a catalog genre.
type Genre struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

// Keyword is a catalog keyword.
type Keyword struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

// keywordsResponse wraps a movie's keyword list.
type keywordsResponse struct {
	ID       int64     `json:"id"`
	Keywords []Keyword `json:"keywords"`
}

// CastCredit is one cast entry from a movie's credits.
type CastCredit struct {
	ID        int64  `json:"id"`
	Name      string `json:"name"`
	Character string `json:"character"`
	Order     int    `json:"order"`
}

// CrewCredit is one crew entry from a movie's credits.
type CrewCredit struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
	Job  string `json:"job"`
}

// Credits is a movie's full credit list.
type Credits struct {
	ID   int64        `json:"id"`
	Cast []CastCredit `json:"cast"`
	Crew []CrewCredit `json:"crew"`
}

// Person is a catalog person record.
type Person struct {
	ID         int64   `json:"id"`
	Name       string  `json:"name"`
	Popularity float64 `json:"popularity"`
}
