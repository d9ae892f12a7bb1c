// Package docstore persists users, blogs and comments as MongoDB documents.
// Users reference their blogs through an array of ObjectIDs and blogs point
// back at their owner through the user field.
package docstore

import (
	"context"
	"errors"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	blogentity "github.com/ovaphlow/pitchfork/service-bloglist-go/internal/blog/entity"
	commententity "github.com/ovaphlow/pitchfork/service-bloglist-go/internal/comment/entity"
	"github.com/ovaphlow/pitchfork/service-bloglist-go/internal/store"
	userentity "github.com/ovaphlow/pitchfork/service-bloglist-go/internal/user/entity"
	"github.com/ovaphlow/pitchfork/service-bloglist-go/pkg/utilities"
)

const (
	blogsCollection    = "blogs"
	usersCollection    = "users"
	commentsCollection = "comments"
)

// New builds a store over database db. The client is disconnected on Close.
func New(client *mongo.Client, db string) *store.Store {
	d := client.Database(db)
	return store.New(
		&Blogs{coll: d.Collection(blogsCollection)},
		&Users{coll: d.Collection(usersCollection)},
		&Comments{coll: d.Collection(commentsCollection)},
		client.Disconnect,
	)
}

// EnsureIndexes creates the unique username index and the comment lookup
// index. It is idempotent.
func EnsureIndexes(ctx context.Context, client *mongo.Client, db string) error {
	d := client.Database(db)
	_, err := d.Collection(usersCollection).Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "username", Value: 1}},
		Options: options.Index().SetUnique(true),
	})
	if err != nil {
		return fmt.Errorf("create users index: %w", err)
	}
	_, err = d.Collection(commentsCollection).Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{{Key: "blog", Value: 1}},
	})
	if err != nil {
		return fmt.Errorf("create comments index: %w", err)
	}
	return nil
}

func mapErr(op string, err error) error {
	if errors.Is(err, mongo.ErrNoDocuments) {
		return store.ErrNotFound
	}
	if mongo.IsDuplicateKeyError(err) {
		return store.ErrDuplicate
	}
	return fmt.Errorf("%s: %w", op, err)
}

type Blogs struct{ coll *mongo.Collection }

func (r *Blogs) List(ctx context.Context) ([]blogentity.Blog, error) {
	cur, err := r.coll.Find(ctx, bson.D{})
	if err != nil {
		return nil, mapErr("find blogs", err)
	}
	var docs []blogDoc
	if err := cur.All(ctx, &docs); err != nil {
		return nil, mapErr("decode blogs", err)
	}
	out := make([]blogentity.Blog, 0, len(docs))
	for _, d := range docs {
		out = append(out, d.entity())
	}
	return out, nil
}

func (r *Blogs) Get(ctx context.Context, id string) (*blogentity.Blog, error) {
	oid, err := parseID(id)
	if err != nil {
		return nil, err
	}
	var d blogDoc
	if err := r.coll.FindOne(ctx, bson.M{"_id": oid}).Decode(&d); err != nil {
		return nil, mapErr("find blog", err)
	}
	b := d.entity()
	return &b, nil
}

func (r *Blogs) Insert(ctx context.Context, b *blogentity.Blog) error {
	if b.ID == "" {
		b.ID = utilities.NewObjectID()
	}
	d, err := toBlogDoc(b)
	if err != nil {
		return err
	}
	if _, err := r.coll.InsertOne(ctx, d); err != nil {
		return mapErr("insert blog", err)
	}
	return nil
}

func (r *Blogs) Update(ctx context.Context, b *blogentity.Blog) error {
	d, err := toBlogDoc(b)
	if err != nil {
		return err
	}
	res, err := r.coll.ReplaceOne(ctx, bson.M{"_id": d.ID}, d)
	if err != nil {
		return mapErr("replace blog", err)
	}
	if res.MatchedCount == 0 {
		return store.ErrNotFound
	}
	return nil
}

func (r *Blogs) Delete(ctx context.Context, id string) error {
	oid, err := parseID(id)
	if err != nil {
		return err
	}
	res, err := r.coll.DeleteOne(ctx, bson.M{"_id": oid})
	if err != nil {
		return mapErr("delete blog", err)
	}
	if res.DeletedCount == 0 {
		return store.ErrNotFound
	}
	return nil
}

type Users struct{ coll *mongo.Collection }

func (r *Users) List(ctx context.Context) ([]userentity.User, error) {
	cur, err := r.coll.Find(ctx, bson.D{})
	if err != nil {
		return nil, mapErr("find users", err)
	}
	var docs []userDoc
	if err := cur.All(ctx, &docs); err != nil {
		return nil, mapErr("decode users", err)
	}
	out := make([]userentity.User, 0, len(docs))
	for _, d := range docs {
		out = append(out, d.entity())
	}
	return out, nil
}

func (r *Users) Get(ctx context.Context, id string) (*userentity.User, error) {
	oid, err := parseID(id)
	if err != nil {
		return nil, err
	}
	return r.findOne(ctx, bson.M{"_id": oid})
}

func (r *Users) GetByUsername(ctx context.Context, username string) (*userentity.User, error) {
	return r.findOne(ctx, bson.M{"username": username})
}

func (r *Users) findOne(ctx context.Context, filter bson.M) (*userentity.User, error) {
	var d userDoc
	if err := r.coll.FindOne(ctx, filter).Decode(&d); err != nil {
		return nil, mapErr("find user", err)
	}
	u := d.entity()
	return &u, nil
}

func (r *Users) Insert(ctx context.Context, u *userentity.User) error {
	if u.ID == "" {
		u.ID = utilities.NewObjectID()
	}
	if u.Blogs == nil {
		u.Blogs = []string{}
	}
	d, err := toUserDoc(u)
	if err != nil {
		return err
	}
	if _, err := r.coll.InsertOne(ctx, d); err != nil {
		return mapErr("insert user", err)
	}
	return nil
}

func (r *Users) Update(ctx context.Context, u *userentity.User) error {
	oid, err := parseID(u.ID)
	if err != nil {
		return err
	}
	blogs, err := parseIDs(u.Blogs)
	if err != nil {
		return err
	}
	res, err := r.coll.UpdateOne(ctx, bson.M{"_id": oid}, bson.M{
		"$set": bson.M{"name": u.Name, "blogs": blogs},
	})
	if err != nil {
		return mapErr("update user", err)
	}
	if res.MatchedCount == 0 {
		return store.ErrNotFound
	}
	return nil
}

type Comments struct{ coll *mongo.Collection }

func (r *Comments) ListByBlog(ctx context.Context, blogID string) ([]commententity.Comment, error) {
	oid, err := parseID(blogID)
	if err != nil {
		return nil, err
	}
	cur, err := r.coll.Find(ctx, bson.M{"blog": oid})
	if err != nil {
		return nil, mapErr("find comments", err)
	}
	var docs []commentDoc
	if err := cur.All(ctx, &docs); err != nil {
		return nil, mapErr("decode comments", err)
	}
	out := make([]commententity.Comment, 0, len(docs))
	for _, d := range docs {
		out = append(out, d.entity())
	}
	return out, nil
}

func (r *Comments) Insert(ctx context.Context, c *commententity.Comment) error {
	if c.ID == "" {
		c.ID = utilities.NewObjectID()
	}
	d, err := toCommentDoc(c)
	if err != nil {
		return err
	}
	if _, err := r.coll.InsertOne(ctx, d); err != nil {
		return mapErr("insert comment", err)
	}
	return nil
}
