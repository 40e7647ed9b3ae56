package blogservice

import (
	"context"
	"errors"

	"github.com/sushihentaime/bloglist/internal/common"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type blogDocument struct {
	ID     primitive.ObjectID `bson:"_id,omitempty"`
	Title  string             `bson:"title"`
	Author string             `bson:"author"`
	URL    string             `bson:"url"`
	Likes  int                `bson:"likes"`
	User   primitive.ObjectID `bson:"user"`
}

type ownerDocument struct {
	ID       primitive.ObjectID `bson:"_id"`
	Username string             `bson:"username"`
	Name     string             `bson:"name"`
}

func NewMongoModel(db *mongo.Database) *MongoModel {
	return &MongoModel{
		blogs: db.Collection(common.BlogsCollection),
		users: db.Collection(common.UsersCollection),
	}
}

func parseObjectID(id string) (primitive.ObjectID, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return primitive.NilObjectID, common.MalformedIDError(id, err)
	}
	return oid, nil
}

// owners loads the public fields of the given users keyed by id.
func (m *MongoModel) owners(ctx context.Context, ids []primitive.ObjectID) (map[primitive.ObjectID]Owner, error) {
	owners := make(map[primitive.ObjectID]Owner, len(ids))
	if len(ids) == 0 {
		return owners, nil
	}

	projection := options.Find().SetProjection(bson.M{"username": 1, "name": 1})
	cursor, err := m.users.Find(ctx, bson.M{"_id": bson.M{"$in": ids}}, projection)
	if err != nil {
		return nil, err
	}

	var docs []ownerDocument
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, err
	}

	for _, d := range docs {
		owners[d.ID] = Owner{ID: d.ID.Hex(), Username: d.Username, Name: d.Name}
	}

	return owners, nil
}

func (m *MongoModel) populate(ctx context.Context, docs ...blogDocument) ([]Blog, error) {
	ids := make([]primitive.ObjectID, 0, len(docs))
	for _, d := range docs {
		ids = append(ids, d.User)
	}

	owners, err := m.owners(ctx, ids)
	if err != nil {
		return nil, err
	}

	blogs := make([]Blog, 0, len(docs))
	for _, d := range docs {
		owner, ok := owners[d.User]
		if !ok {
			owner = Owner{ID: d.User.Hex()}
		}

		blogs = append(blogs, Blog{
			ID:     d.ID.Hex(),
			Title:  d.Title,
			Author: d.Author,
			URL:    d.URL,
			Likes:  d.Likes,
			User:   &owner,
		})
	}

	return blogs, nil
}

func (m *MongoModel) populateOne(ctx context.Context, doc blogDocument) (*Blog, error) {
	blogs, err := m.populate(ctx, doc)
	if err != nil {
		return nil, err
	}
	return &blogs[0], nil
}

// insertBlog stores b and pushes its id onto the owner's blogs list. The blog
// is removed again when the owner no longer exists.
func (m *MongoModel) insertBlog(ctx context.Context, b *Blog) error {
	userID, err := parseObjectID(b.User.ID)
	if err != nil {
		return err
	}

	doc := blogDocument{
		ID:     primitive.NewObjectID(),
		Title:  b.Title,
		Author: b.Author,
		URL:    b.URL,
		Likes:  b.Likes,
		User:   userID,
	}

	if _, err := m.blogs.InsertOne(ctx, doc); err != nil {
		return err
	}

	res, err := m.users.UpdateByID(ctx, userID, bson.M{"$push": bson.M{"blogs": doc.ID}})
	if err == nil && res.MatchedCount == 0 {
		err = ErrUserForeignKey
	}
	if err != nil {
		_, _ = m.blogs.DeleteOne(ctx, bson.M{"_id": doc.ID})
		return err
	}

	b.ID = doc.ID.Hex()
	return nil
}

func (m *MongoModel) getBlogByID(ctx context.Context, id string) (*Blog, error) {
	oid, err := parseObjectID(id)
	if err != nil {
		return nil, err
	}

	var doc blogDocument
	err = m.blogs.FindOne(ctx, bson.M{"_id": oid}).Decode(&doc)
	if err != nil {
		switch {
		case errors.Is(err, mongo.ErrNoDocuments):
			return nil, ErrRecordNotFound
		default:
			return nil, err
		}
	}

	return m.populateOne(ctx, doc)
}

// getBlogs returns all blogs in insertion order.
func (m *MongoModel) getBlogs(ctx context.Context) ([]Blog, error) {
	cursor, err := m.blogs.Find(ctx, bson.M{}, options.Find().SetSort(bson.D{{Key: "_id", Value: 1}}))
	if err != nil {
		return nil, err
	}

	var docs []blogDocument
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, err
	}

	return m.populate(ctx, docs...)
}

func (m *MongoModel) updateBlogLikes(ctx context.Context, id string, likes int) (*Blog, error) {
	oid, err := parseObjectID(id)
	if err != nil {
		return nil, err
	}

	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	var doc blogDocument
	err = m.blogs.FindOneAndUpdate(ctx, bson.M{"_id": oid}, bson.M{"$set": bson.M{"likes": likes}}, opts).Decode(&doc)
	if err != nil {
		switch {
		case errors.Is(err, mongo.ErrNoDocuments):
			return nil, ErrRecordNotFound
		default:
			return nil, err
		}
	}

	return m.populateOne(ctx, doc)
}

// deleteBlog removes the blog and pulls it from the owner's blogs list.
func (m *MongoModel) deleteBlog(ctx context.Context, id string) error {
	oid, err := parseObjectID(id)
	if err != nil {
		return err
	}

	var doc blogDocument
	err = m.blogs.FindOneAndDelete(ctx, bson.M{"_id": oid}).Decode(&doc)
	if err != nil {
		switch {
		case errors.Is(err, mongo.ErrNoDocuments):
			return ErrRecordNotFound
		default:
			return err
		}
	}

	_, err = m.users.UpdateByID(ctx, doc.User, bson.M{"$pull": bson.M{"blogs": doc.ID}})
	return err
}
