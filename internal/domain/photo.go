package domain

// Photo is a row of the photo source the game UI draws rounds from.
type Photo struct {
	ID       string  `db:"id" json:"id"`
	ImageURL string  `db:"image_url" json:"image_url"`
	Title    *string `db:"title" json:"title"`
	YearTrue int     `db:"year_true" json:"year_true"`
	YearMin  *int    `db:"year_min" json:"year_min"`
	YearMax  *int    `db:"year_max" json:"year_max"`
}

// PhotoReport summarises the photo set by decade and by year range.
type PhotoReport struct {
	Total    int            `json:"total"`
	ByDecade map[string]int `json:"by_decade"`
	ByRange  map[string]int `json:"by_range"`
}
