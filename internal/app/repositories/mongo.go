package repositories

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"

	"github.com/kalpovskii/todo-api/internal/app/models"
)

const todoCollection = "todos"

type todoDocument struct {
	ID          primitive.ObjectID `bson:"_id,omitempty"`
	Title       string             `bson:"title"`
	Description string             `bson:"description"`
	Completed   bool               `bson:"completed"`
	CreatedAt   time.Time          `bson:"createdAt"`
	UpdatedAt   time.Time          `bson:"updatedAt"`
}

func (d todoDocument) toModel() *models.Todo {
	return &models.Todo{
		ID:          d.ID.Hex(),
		Title:       d.Title,
		Description: d.Description,
		Completed:   d.Completed,
		CreatedAt:   d.CreatedAt.UTC(),
		UpdatedAt:   d.UpdatedAt.UTC(),
	}
}

type MongoTodoRepo struct {
	client *mongo.Client
	coll   *mongo.Collection
}

func NewMongoTodoRepo(ctx context.Context, uri, database string) (*MongoTodoRepo, error) {
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("connect mongodb: %w", err)
	}

	if err := client.Ping(ctx, readpref.Primary()); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("ping mongodb: %w", err)
	}

	return &MongoTodoRepo{
		client: client,
		coll:   client.Database(database).Collection(todoCollection),
	}, nil
}

func (r *MongoTodoRepo) EnsureSchema(ctx context.Context) error {
	_, err := r.coll.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "createdAt", Value: -1}, {Key: "_id", Value: -1}},
		Options: options.Index().SetName("createdAt_desc"),
	})
	if err != nil {
		return fmt.Errorf("create todos index: %w", err)
	}
	return nil
}

func (r *MongoTodoRepo) Close(ctx context.Context) error {
	return r.client.Disconnect(ctx)
}

func (r *MongoTodoRepo) List(ctx context.Context) ([]models.Todo, error) {
	opts := options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}, {Key: "_id", Value: -1}})

	cur, err := r.coll.Find(ctx, bson.D{}, opts)
	if err != nil {
		return nil, fmt.Errorf("find todos: %w", err)
	}

	var docs []todoDocument
	if err := cur.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("decode todos: %w", err)
	}

	todos := make([]models.Todo, 0, len(docs))
	for _, d := range docs {
		todos = append(todos, *d.toModel())
	}
	return todos, nil
}

func (r *MongoTodoRepo) Get(ctx context.Context, id string) (*models.Todo, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, ErrNotFound
	}

	var doc todoDocument
	if err := r.coll.FindOne(ctx, bson.M{"_id": oid}).Decode(&doc); err != nil {
		return nil, mongoErr("find todo", err)
	}
	return doc.toModel(), nil
}

func (r *MongoTodoRepo) Create(ctx context.Context, in models.TodoInput) (*models.Todo, error) {
	// BSON dates carry milliseconds; truncate so the returned record matches
	// what a later read yields.
	now := time.Now().UTC().Truncate(time.Millisecond)
	doc := todoDocument{
		ID:          primitive.NewObjectID(),
		Title:       in.Title,
		Description: in.Description,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	if _, err := r.coll.InsertOne(ctx, doc); err != nil {
		return nil, fmt.Errorf("insert todo: %w", err)
	}
	return doc.toModel(), nil
}

func (r *MongoTodoRepo) Update(ctx context.Context, id string, patch models.TodoPatch) (*models.Todo, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, ErrNotFound
	}

	// Pipeline form so updatedAt can be pushed past its stored value when
	// two updates land within the same millisecond. Values go through
	// $literal so strings starting with "$" are not read as field paths.
	set := bson.D{}
	if patch.Title != nil {
		set = append(set, bson.E{Key: "title", Value: bson.D{{Key: "$literal", Value: *patch.Title}}})
	}
	if patch.Description != nil {
		set = append(set, bson.E{Key: "description", Value: bson.D{{Key: "$literal", Value: *patch.Description}}})
	}
	if patch.Completed != nil {
		set = append(set, bson.E{Key: "completed", Value: bson.D{{Key: "$literal", Value: *patch.Completed}}})
	}
	now := time.Now().UTC().Truncate(time.Millisecond)
	set = append(set, bson.E{Key: "updatedAt", Value: bson.D{{Key: "$max", Value: bson.A{
		now,
		bson.D{{Key: "$add", Value: bson.A{"$updatedAt", 1}}},
	}}}})

	update := mongo.Pipeline{bson.D{{Key: "$set", Value: set}}}
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	var doc todoDocument
	if err := r.coll.FindOneAndUpdate(ctx, bson.M{"_id": oid}, update, opts).Decode(&doc); err != nil {
		return nil, mongoErr("update todo", err)
	}
	return doc.toModel(), nil
}

func (r *MongoTodoRepo) Delete(ctx context.Context, id string) (*models.Todo, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, ErrNotFound
	}

	var doc todoDocument
	if err := r.coll.FindOneAndDelete(ctx, bson.M{"_id": oid}).Decode(&doc); err != nil {
		return nil, mongoErr("delete todo", err)
	}
	return doc.toModel(), nil
}

func mongoErr(op string, err error) error {
	if errors.Is(err, mongo.ErrNoDocuments) {
		return ErrNotFound
	}
	return fmt.Errorf("%s: %w", op, err)
}
