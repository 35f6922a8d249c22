package models

import "time"

// Activity описывает туристическую активность каталога.
type Activity struct {
	ID          int64     `db:"id" json:"id"`
	Name        string    `db:"name" json:"name"`
	Description string    `db:"description" json:"description"`
	Location    string    `db:"location" json:"location"`
	CreatedAt   time.Time `db:"created_at" json:"created_at"`
}

// ActivityDetail содержит активность и отметку избранного для текущего посетителя.
type ActivityDetail struct {
	Activity   *Activity
	IsFavorite bool
}
