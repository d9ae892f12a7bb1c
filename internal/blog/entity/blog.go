package entity

// Blog is a bookmarked post. User is the owner's id and is empty only for
// rows created before ownership existed.
type Blog struct {
	ID     string `json:"id"`
	Title  string `json:"title"`
	Author string `json:"author"`
	URL    string `json:"url"`
	Likes  int    `json:"likes"`
	User   string `json:"user,omitempty"`
}

// Owned reports whether the blog has a recorded owner.
func (b Blog) Owned() bool { return b.User != "" }
