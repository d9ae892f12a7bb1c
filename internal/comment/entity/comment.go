package entity

// Comment is anonymous free text attached to a blog.
type Comment struct {
	ID      string `json:"id"`
	Content string `json:"content"`
	Blog    string `json:"blog"`
}
