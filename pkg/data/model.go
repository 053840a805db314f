package data

// Comic is one entry of the comic index, in the order it appears in index.json.
type Comic struct {
	Title string
	Slug  string
	File  string // Image path relative to the images directory

	prev int // -1 when there is no previous entry
	next int // -1 when there is no next entry
}

// FoundComic is a resolved index lookup. Neighbours are exposed by slug only.
type FoundComic struct {
	Title    string
	Slug     string
	File     string
	PrevSlug string // "" for the first entry
	NextSlug string // "" for the last entry
}

// Size is the pixel dimensions of an image.
type Size struct {
	W uint32 `json:"w"`
	H uint32 `json:"h"`
}

func (s Size) IsZero() bool {
	return s.W == 0 || s.H == 0
}

// User is an admin account from users.json.
type User struct {
	Username string `json:"username"`
	Password string `json:"password"`
}
