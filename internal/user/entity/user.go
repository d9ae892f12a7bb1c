package entity

// User is a registered account. Blogs holds the ids of the blogs the user
// owns, in creation order.
type User struct {
	ID           string   `json:"id"`
	Username     string   `json:"username"`
	Name         string   `json:"name"`
	PasswordHash string   `json:"-"`
	Blogs        []string `json:"blogs"`
}

// AddBlog appends blogID unless it is already referenced.
func (u *User) AddBlog(blogID string) {
	for _, id := range u.Blogs {
		if id == blogID {
			return
		}
	}
	u.Blogs = append(u.Blogs, blogID)
}

// RemoveBlog drops blogID from the list and reports whether it was there.
func (u *User) RemoveBlog(blogID string) bool {
	for i, id := range u.Blogs {
		if id == blogID {
			u.Blogs = append(u.Blogs[:i:i], u.Blogs[i+1:]...)
			return true
		}
	}
	return false
}

// Clone returns a copy that shares no slice memory with u.
func (u User) Clone() User {
	u.Blogs = append([]string{}, u.Blogs...)
	return u
}
