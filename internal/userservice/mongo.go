package userservice

import (
	"context"
	"errors"

	"github.com/sushihentaime/bloglist/internal/common"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type userDocument struct {
	ID           primitive.ObjectID   `bson:"_id,omitempty"`
	Username     string               `bson:"username"`
	Name         string               `bson:"name"`
	PasswordHash []byte               `bson:"passwordHash"`
	Blogs        []primitive.ObjectID `bson:"blogs"`
}

type blogRefDocument struct {
	ID     primitive.ObjectID `bson:"_id"`
	Title  string             `bson:"title"`
	Author string             `bson:"author"`
	URL    string             `bson:"url"`
}

// NewMongoModel returns a user store over the users collection of db and
// makes sure usernames are uniquely indexed.
func NewMongoModel(ctx context.Context, db *mongo.Database) (*MongoModel, error) {
	users := db.Collection(common.UsersCollection)

	_, err := users.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "username", Value: 1}},
		Options: options.Index().SetUnique(true),
	})
	if err != nil {
		return nil, err
	}

	return &MongoModel{
		users: users,
		blogs: db.Collection(common.BlogsCollection),
	}, nil
}

func (d userDocument) toUser() *User {
	return &User{
		ID:       d.ID.Hex(),
		Username: d.Username,
		Name:     d.Name,
		Password: Password{hash: d.PasswordHash},
	}
}

func (m *MongoModel) insertUser(ctx context.Context, u *User) error {
	// documents carry no schema, so the username rules are checked here
	if err := usernameError(u.Username); err != nil {
		return err
	}

	doc := userDocument{
		ID:           primitive.NewObjectID(),
		Username:     u.Username,
		Name:         u.Name,
		PasswordHash: u.Password.hash,
		Blogs:        []primitive.ObjectID{},
	}

	_, err := m.users.InsertOne(ctx, doc)
	if err != nil {
		switch {
		case mongo.IsDuplicateKeyError(err):
			return ErrDuplicateUsername
		default:
			return err
		}
	}

	u.ID = doc.ID.Hex()
	return nil
}

func (m *MongoModel) findOne(ctx context.Context, filter bson.M) (*User, error) {
	var doc userDocument

	err := m.users.FindOne(ctx, filter).Decode(&doc)
	if err != nil {
		switch {
		case errors.Is(err, mongo.ErrNoDocuments):
			return nil, ErrNotFound
		default:
			return nil, err
		}
	}

	return doc.toUser(), nil
}

func (m *MongoModel) getUserByUsername(ctx context.Context, username string) (*User, error) {
	return m.findOne(ctx, bson.M{"username": username})
}

func (m *MongoModel) getUserByID(ctx context.Context, id string) (*User, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, common.MalformedIDError(id, err)
	}

	return m.findOne(ctx, bson.M{"_id": oid})
}

// getUsers returns every user with its blogs populated in list order.
func (m *MongoModel) getUsers(ctx context.Context) ([]User, error) {
	cursor, err := m.users.Find(ctx, bson.M{}, options.Find().SetSort(bson.D{{Key: "_id", Value: 1}}))
	if err != nil {
		return nil, err
	}

	var docs []userDocument
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, err
	}

	var blogIDs []primitive.ObjectID
	for _, d := range docs {
		blogIDs = append(blogIDs, d.Blogs...)
	}

	refs := make(map[primitive.ObjectID]BlogRef, len(blogIDs))
	if len(blogIDs) > 0 {
		cursor, err := m.blogs.Find(ctx, bson.M{"_id": bson.M{"$in": blogIDs}})
		if err != nil {
			return nil, err
		}

		var blogs []blogRefDocument
		if err := cursor.All(ctx, &blogs); err != nil {
			return nil, err
		}

		for _, b := range blogs {
			refs[b.ID] = BlogRef{ID: b.ID.Hex(), Title: b.Title, Author: b.Author, URL: b.URL}
		}
	}

	users := make([]User, 0, len(docs))
	for _, d := range docs {
		u := d.toUser()
		u.Blogs = []BlogRef{}
		for _, id := range d.Blogs {
			if ref, ok := refs[id]; ok {
				u.Blogs = append(u.Blogs, ref)
			}
		}
		users = append(users, *u)
	}

	return users, nil
}
