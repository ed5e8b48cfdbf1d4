package repositories

import (
	"context"
	"errors"
	"fmt"
	"time"

	apperrors "property-catalog/internal/errors"
	"property-catalog/internal/models"
	"property-catalog/internal/query"
	"property-catalog/internal/utils"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"golang.org/x/sync/errgroup"
)

type propertyRepository struct {
	collection *mongo.Collection
}

func NewPropertyRepository(collection *mongo.Collection) PropertyRepository {
	return &propertyRepository{collection: collection}
}

func (r *propertyRepository) record(operation string, start time.Time, err error) {
	utils.RecordMongoOperation(operation, r.collection.Name(), start, err)
}

func objectID(id string) (primitive.ObjectID, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return primitive.NilObjectID, apperrors.ErrNotFound
	}
	return oid, nil
}

func (r *propertyRepository) Find(ctx context.Context, q *query.Query) ([]models.Property, int64, error) {
	filter := q.Filter()

	var (
		total      int64
		properties []models.Property
	)
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		start := time.Now()
		n, err := r.collection.CountDocuments(gctx, filter)
		r.record("count_documents", start, err)
		if err != nil {
			return apperrors.NewStorageError("count properties", err)
		}
		total = n
		return nil
	})

	g.Go(func() error {
		opts := options.Find().
			SetSort(q.Sort()).
			SetSkip(q.Skip()).
			SetLimit(q.LimitN())

		start := time.Now()
		cursor, err := r.collection.Find(gctx, filter, opts)
		r.record("find", start, err)
		if err != nil {
			return apperrors.NewStorageError("find properties", err)
		}
		defer cursor.Close(gctx)

		start = time.Now()
		err = cursor.All(gctx, &properties)
		r.record("cursor_all", start, err)
		if err != nil {
			return apperrors.NewStorageError("decode properties", err)
		}
		return nil
	})

	if err := g.Wait(); err != nil {
		return nil, 0, err
	}
	if properties == nil {
		properties = []models.Property{}
	}
	return properties, total, nil
}

func (r *propertyRepository) FindByID(ctx context.Context, id string) (*models.Property, error) {
	oid, err := objectID(id)
	if err != nil {
		return nil, err
	}

	start := time.Now()
	var property models.Property
	err = r.collection.FindOne(ctx, bson.M{"_id": oid}).Decode(&property)
	if errors.Is(err, mongo.ErrNoDocuments) {
		r.record("find_one", start, nil)
		return nil, apperrors.ErrNotFound
	}
	r.record("find_one", start, err)
	if err != nil {
		return nil, apperrors.NewStorageError("find property", err)
	}
	return &property, nil
}

func (r *propertyRepository) Create(ctx context.Context, property *models.Property) error {
	property.ID = primitive.NewObjectID()

	start := time.Now()
	_, err := r.collection.InsertOne(ctx, property)
	r.record("insert_one", start, err)
	if err != nil {
		property.ID = primitive.NilObjectID
		return apperrors.NewStorageError("insert property", err)
	}
	return nil
}

func (r *propertyRepository) Update(ctx context.Context, id string, patch *models.PropertyPatch, imagePath *string, now time.Time) (*models.Property, error) {
	oid, err := objectID(id)
	if err != nil {
		return nil, err
	}

	set := bson.M{"updatedAt": now}
	if patch != nil {
		if patch.Name != nil {
			set["propertyName"] = *patch.Name
		}
		if patch.Type != nil {
			set["propertyType"] = *patch.Type
		}
		if patch.Location != nil {
			set["propertyLocation"] = *patch.Location
		}
		if patch.Price != nil {
			set["propertyPrice"] = *patch.Price
		}
		if patch.Description != nil {
			set["propertyDescription"] = *patch.Description
		}
	}
	if imagePath != nil {
		set["propertyImage"] = *imagePath
	}

	opts := options.FindOneAndUpdate().SetReturnDocument(options.Before)

	start := time.Now()
	var previous models.Property
	err = r.collection.FindOneAndUpdate(ctx, bson.M{"_id": oid}, bson.M{"$set": set}, opts).Decode(&previous)
	if errors.Is(err, mongo.ErrNoDocuments) {
		r.record("find_one_and_update", start, nil)
		return nil, apperrors.ErrNotFound
	}
	r.record("find_one_and_update", start, err)
	if err != nil {
		return nil, apperrors.NewStorageError("update property", err)
	}
	return &previous, nil
}

func (r *propertyRepository) Delete(ctx context.Context, id string) (*models.Property, error) {
	oid, err := objectID(id)
	if err != nil {
		return nil, err
	}

	start := time.Now()
	var removed models.Property
	err = r.collection.FindOneAndDelete(ctx, bson.M{"_id": oid}).Decode(&removed)
	if errors.Is(err, mongo.ErrNoDocuments) {
		r.record("find_one_and_delete", start, nil)
		return nil, apperrors.ErrNotFound
	}
	r.record("find_one_and_delete", start, err)
	if err != nil {
		return nil, apperrors.NewStorageError("delete property", err)
	}
	return &removed, nil
}

func (r *propertyRepository) ImagePaths(ctx context.Context) ([]string, error) {
	start := time.Now()
	values, err := r.collection.Distinct(ctx, "propertyImage", bson.M{"propertyImage": bson.M{"$type": "string"}})
	r.record("distinct", start, err)
	if err != nil {
		return nil, apperrors.NewStorageError("list image paths", err)
	}

	paths := make([]string, 0, len(values))
	for _, v := range values {
		s, ok := v.(string)
		if !ok {
			return nil, apperrors.NewStorageError("list image paths", fmt.Errorf("unexpected %T in propertyImage", v))
		}
		paths = append(paths, s)
	}
	return paths, nil
}
