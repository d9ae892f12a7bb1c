package docstore

import (
	"fmt"

	"go.mongodb.org/mongo-driver/bson/primitive"

	blogentity "github.com/ovaphlow/pitchfork/service-bloglist-go/internal/blog/entity"
	commententity "github.com/ovaphlow/pitchfork/service-bloglist-go/internal/comment/entity"
	userentity "github.com/ovaphlow/pitchfork/service-bloglist-go/internal/user/entity"
)

type blogDoc struct {
	ID     primitive.ObjectID  `bson:"_id"`
	Title  string              `bson:"title"`
	Author string              `bson:"author"`
	URL    string              `bson:"url"`
	Likes  int                 `bson:"likes"`
	User   *primitive.ObjectID `bson:"user,omitempty"`
}

type userDoc struct {
	ID           primitive.ObjectID   `bson:"_id"`
	Username     string               `bson:"username"`
	Name         string               `bson:"name"`
	PasswordHash string               `bson:"passwordHash"`
	Blogs        []primitive.ObjectID `bson:"blogs"`
}

type commentDoc struct {
	ID      primitive.ObjectID `bson:"_id"`
	Content string             `bson:"content"`
	Blog    primitive.ObjectID `bson:"blog"`
}

func parseID(s string) (primitive.ObjectID, error) {
	oid, err := primitive.ObjectIDFromHex(s)
	if err != nil {
		return primitive.NilObjectID, fmt.Errorf("parse id %q: %w", s, err)
	}
	return oid, nil
}

func toBlogDoc(b *blogentity.Blog) (blogDoc, error) {
	oid, err := parseID(b.ID)
	if err != nil {
		return blogDoc{}, err
	}
	d := blogDoc{ID: oid, Title: b.Title, Author: b.Author, URL: b.URL, Likes: b.Likes}
	if b.User != "" {
		owner, err := parseID(b.User)
		if err != nil {
			return blogDoc{}, err
		}
		d.User = &owner
	}
	return d, nil
}

func (d blogDoc) entity() blogentity.Blog {
	b := blogentity.Blog{ID: d.ID.Hex(), Title: d.Title, Author: d.Author, URL: d.URL, Likes: d.Likes}
	if d.User != nil {
		b.User = d.User.Hex()
	}
	return b
}

func toUserDoc(u *userentity.User) (userDoc, error) {
	oid, err := parseID(u.ID)
	if err != nil {
		return userDoc{}, err
	}
	blogs, err := parseIDs(u.Blogs)
	if err != nil {
		return userDoc{}, err
	}
	return userDoc{ID: oid, Username: u.Username, Name: u.Name, PasswordHash: u.PasswordHash, Blogs: blogs}, nil
}

func (d userDoc) entity() userentity.User {
	blogs := make([]string, 0, len(d.Blogs))
	for _, b := range d.Blogs {
		blogs = append(blogs, b.Hex())
	}
	return userentity.User{ID: d.ID.Hex(), Username: d.Username, Name: d.Name, PasswordHash: d.PasswordHash, Blogs: blogs}
}

func toCommentDoc(c *commententity.Comment) (commentDoc, error) {
	oid, err := parseID(c.ID)
	if err != nil {
		return commentDoc{}, err
	}
	blog, err := parseID(c.Blog)
	if err != nil {
		return commentDoc{}, err
	}
	return commentDoc{ID: oid, Content: c.Content, Blog: blog}, nil
}

func (d commentDoc) entity() commententity.Comment {
	return commententity.Comment{ID: d.ID.Hex(), Content: d.Content, Blog: d.Blog.Hex()}
}

func parseIDs(ids []string) ([]primitive.ObjectID, error) {
	out := make([]primitive.ObjectID, 0, len(ids))
	for _, s := range ids {
		oid, err := parseID(s)
		if err != nil {
			return nil, err
		}
		out = append(out, oid)
	}
	return out, nil
}
