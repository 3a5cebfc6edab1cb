package model

// Movie is simple reference data describing a film that can be
// scheduled into showtimes.  Duration is expressed in minutes and
// ReleaseDate is kept as a plain string, matching the storage schema.
//
// Fields:
//  ID          – primary key identifier.
//  Title       – movie title.
//  Description – synopsis text.
//  Duration    – running time in minutes.
//  PosterURL   – URL of the poster image.
//  ReleaseDate – release date string.
type Movie struct {
	ID          uint64 `json:"id"`           // movies.id
	Title       string `json:"title"`        // movies.title
	Description string `json:"description"`  // movies.description
	Duration    uint32 `json:"duration"`     // movies.duration (minutes)
	PosterURL   string `json:"poster_url"`   // movies.poster_url
	ReleaseDate string `json:"release_date"` // movies.release_date
}
