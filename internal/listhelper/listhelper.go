// Package listhelper computes summary statistics over a list of blogs. The
// functions are pure and never touch storage.
package listhelper

import "github.com/ovaphlow/pitchfork/service-bloglist-go/internal/blog/entity"

// Summary is the public view of a single favorite blog.
type Summary struct {
	Title  string `json:"title"`
	Author string `json:"author"`
	Likes  int    `json:"likes"`
}

type AuthorBlogs struct {
	Author string `json:"author"`
	Blogs  int    `json:"blogs"`
}

type AuthorLikes struct {
	Author string `json:"author"`
	Likes  int    `json:"likes"`
}

// Dummy always returns 1.
func Dummy(blogs []entity.Blog) int {
	return 1
}

// TotalLikes sums the likes of all blogs.
func TotalLikes(blogs []entity.Blog) int {
	total := 0
	for _, b := range blogs {
		total += b.Likes
	}
	return total
}

// FavoriteBlog returns the blog with the most likes; the first one wins a
// tie. It returns nil for an empty list.
func FavoriteBlog(blogs []entity.Blog) *Summary {
	if len(blogs) == 0 {
		return nil
	}
	top := blogs[0]
	for _, b := range blogs[1:] {
		if b.Likes > top.Likes {
			top = b
		}
	}
	return &Summary{Title: top.Title, Author: top.Author, Likes: top.Likes}
}

// MostBlogs returns the author with the largest number of blogs.
func MostBlogs(blogs []entity.Blog) *AuthorBlogs {
	author, n := maxByAuthor(blogs, func(entity.Blog) int { return 1 })
	if n < 0 {
		return nil
	}
	return &AuthorBlogs{Author: author, Blogs: n}
}

// MostLikes returns the author whose blogs have the largest like total.
func MostLikes(blogs []entity.Blog) *AuthorLikes {
	author, n := maxByAuthor(blogs, func(b entity.Blog) int { return b.Likes })
	if n < 0 {
		return nil
	}
	return &AuthorLikes{Author: author, Likes: n}
}

// maxByAuthor groups blogs by author, sums weight per author and returns the
// author with the highest sum, preferring the author seen first. n is -1 for
// an empty list.
func maxByAuthor(blogs []entity.Blog, weight func(entity.Blog) int) (author string, n int) {
	sums := make(map[string]int)
	var order []string
	for _, b := range blogs {
		if _, ok := sums[b.Author]; !ok {
			order = append(order, b.Author)
		}
		sums[b.Author] += weight(b)
	}
	n = -1
	for _, a := range order {
		if sums[a] > n {
			author, n = a, sums[a]
		}
	}
	return author, n
}
