package models

import (
	"time"
)

type Movie struct {
	ID          uint      `gorm:"primaryKey" json:"id" example:"1"`
	IMDBID      string    `gorm:"column:imdb_id;uniqueIndex;not null;size:16" json:"imdb_id" example:"tt1375666"`
	Title       string    `gorm:"not null;index" json:"title" example:"Inception"`
	Director    string    `json:"director" example:"Christopher Nolan"`
	Genre       string    `json:"genre" example:"Action, Adventure, Sci-Fi"`
	ReleaseYear int       `gorm:"index" json:"release_year" example:"2010"`
	Rating      float64   `gorm:"index;default:0" json:"rating" example:"8.8"`
	Description string    `gorm:"size:500" json:"description" example:"A thief who steals corporate secrets..."`
	Poster      string    `json:"poster" example:"https://m.media-amazon.com/images/M/inception.jpg"`
	Runtime     string    `json:"runtime" example:"148 min"`
	Users       []User    `gorm:"many2many:user_saved_movies;" json:"users,omitempty"`
	CreatedAt   time.Time `gorm:"index" json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

func (Movie) TableName() string {
	return "movies"
}

// MoviePatch carries a partial movie update. Nil fields keep their stored value.
type MoviePatch struct {
	Title       *string  `json:"title"`
	Director    *string  `json:"director"`
	Genre       *string  `json:"genre"`
	ReleaseYear *int     `json:"release_year"`
	Rating      *float64 `json:"rating"`
	Description *string  `json:"description"`
	Poster      *string  `json:"poster"`
	Runtime     *string  `json:"runtime"`
}
