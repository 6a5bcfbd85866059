package graph

// API-facing shapes. Books carry their author already resolved, matching what
// queries, mutations and the bookAdded event all return.

type User struct {
	ID            string `json:"id"`
	Username      string `json:"username"`
	FavoriteGenre string `json:"favoriteGenre,omitempty"`
}

type Token struct {
	Value string `json:"value"`
}

type Author struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Born      *int   `json:"born,omitempty"`
	BookCount int    `json:"bookCount"`
}

type Book struct {
	ID        string   `json:"id"`
	Title     string   `json:"title"`
	Published int      `json:"published"`
	Author    Author   `json:"author"`
	Genres    []string `json:"genres"`
}
