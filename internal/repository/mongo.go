package repository

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"learnstudio/internal/model"

	"github.com/google/uuid"
	"github.com/samber/oops"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
)

const (
	usersCollection    = "users"
	resetsCollection   = "password_resets"
	progressCollection = "progress"
)

// MongoStore keeps users, reset records and progress in MongoDB collections
type MongoStore struct {
	client   *mongo.Client
	db       *mongo.Database
	users    *mongoUserRepository
	resets   *mongoResetRepository
	progress *mongoProgressRepository
}

// NewMongoStore wires the Mongo repositories onto the named database
func NewMongoStore(client *mongo.Client, dbName string) *MongoStore {
	db := client.Database(dbName)
	users := db.Collection(usersCollection)
	return &MongoStore{
		client:   client,
		db:       db,
		users:    &mongoUserRepository{coll: users},
		resets:   &mongoResetRepository{coll: db.Collection(resetsCollection), users: users},
		progress: &mongoProgressRepository{coll: db.Collection(progressCollection)},
	}
}

func (s *MongoStore) Users() UserRepository         { return s.users }
func (s *MongoStore) Resets() ResetRepository       { return s.resets }
func (s *MongoStore) Progress() ProgressRepository { return s.progress }

// Migrate creates the unique indexes the repositories rely on
func (s *MongoStore) Migrate(ctx context.Context) error {
	indexes := map[string][]mongo.IndexModel{
		usersCollection: {
			{Keys: bson.D{{Key: "email", Value: 1}}, Options: options.Index().SetUnique(true)},
			{Keys: bson.D{{Key: "id", Value: 1}}, Options: options.Index().SetUnique(true)},
			{Keys: bson.D{{Key: "role", Value: 1}}},
		},
		resetsCollection: {
			{Keys: bson.D{{Key: "email", Value: 1}}, Options: options.Index().SetUnique(true)},
		},
		progressCollection: {
			{Keys: bson.D{{Key: "user_id", Value: 1}, {Key: "day_number", Value: 1}}, Options: options.Index().SetUnique(true)},
		},
	}
	for name, models := range indexes {
		if _, err := s.db.Collection(name).Indexes().CreateMany(ctx, models); err != nil {
			return oops.Code("MONGO_INDEX_FAILED").With("collection", name).Wrap(err)
		}
	}
	return nil
}

func (s *MongoStore) Ping(ctx context.Context) error {
	return s.client.Ping(ctx, readpref.Primary())
}

func (s *MongoStore) Close(ctx context.Context) error {
	return s.client.Disconnect(ctx)
}

type mongoUserRepository struct {
	coll *mongo.Collection
}

func (r *mongoUserRepository) Create(ctx context.Context, user *model.User) error {
	if _, err := r.coll.InsertOne(ctx, user); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return ErrDuplicateEmail
		}
		return oops.Code("USER_CREATE_FAILED").With("email", user.Email).Wrap(err)
	}
	return nil
}

func (r *mongoUserRepository) findOne(ctx context.Context, filter bson.M) (*model.User, error) {
	user := &model.User{}
	if err := r.coll.FindOne(ctx, filter).Decode(user); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, nil
		}
		return nil, oops.Code("USER_FIND_FAILED").With("filter", filter).Wrap(err)
	}
	return user, nil
}

func (r *mongoUserRepository) FindByEmail(ctx context.Context, email string) (*model.User, error) {
	return r.findOne(ctx, bson.M{"email": email})
}

func (r *mongoUserRepository) FindByID(ctx context.Context, id string) (*model.User, error) {
	return r.findOne(ctx, bson.M{"id": id})
}

func (r *mongoUserRepository) CountByRole(ctx context.Context, role string) (int64, error) {
	count, err := r.coll.CountDocuments(ctx, bson.M{"role": role})
	if err != nil {
		return 0, oops.Code("USER_COUNT_FAILED").With("role", role).Wrap(err)
	}
	return count, nil
}

func (r *mongoUserRepository) ListByRole(ctx context.Context, role string) ([]model.User, error) {
	cursor, err := r.coll.Find(ctx, bson.M{"role": role}, options.Find().SetSort(bson.D{{Key: "created_at", Value: 1}}))
	if err != nil {
		return nil, oops.Code("USER_LIST_FAILED").With("role", role).Wrap(err)
	}
	users := []model.User{}
	if err := cursor.All(ctx, &users); err != nil {
		return nil, oops.Code("USER_LIST_FAILED").With("role", role).Wrap(err)
	}
	return users, nil
}

func (r *mongoUserRepository) update(ctx context.Context, id string, set bson.M) error {
	res, err := r.coll.UpdateOne(ctx, bson.M{"id": id}, bson.M{"$set": set})
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return ErrDuplicateEmail
		}
		return oops.Code("USER_UPDATE_FAILED").With("user_id", id).Wrap(err)
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *mongoUserRepository) UpdateEmail(ctx context.Context, id, email string, now time.Time) error {
	return r.update(ctx, id, bson.M{"email": email, "updated_at": now})
}

func (r *mongoUserRepository) UpdatePassword(ctx context.Context, id, passwordHash string, now time.Time) error {
	return r.update(ctx, id, bson.M{"password_hash": passwordHash, "updated_at": now})
}

func (r *mongoUserRepository) UpdateAvatar(ctx context.Context, id, avatar string, now time.Time) error {
	return r.update(ctx, id, bson.M{"avatar": avatar, "updated_at": now})
}

type mongoResetRepository struct {
	coll  *mongo.Collection
	users *mongo.Collection
}

func (r *mongoResetRepository) Upsert(ctx context.Context, reset *model.PasswordReset) error {
	_, err := r.coll.UpdateOne(ctx,
		bson.M{"email": reset.Email},
		bson.M{"$set": bson.M{
			"otp":        reset.OTP,
			"expires_at": reset.ExpiresAt,
			"used":       false,
			"created_at": reset.CreatedAt,
		}},
		options.Update().SetUpsert(true),
	)
	if err != nil {
		return oops.Code("RESET_UPSERT_FAILED").With("email", reset.Email).Wrap(err)
	}
	return nil
}

func (r *mongoResetRepository) FindByEmail(ctx context.Context, email string) (*model.PasswordReset, error) {
	reset := &model.PasswordReset{}
	if err := r.coll.FindOne(ctx, bson.M{"email": email}).Decode(reset); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, nil
		}
		return nil, oops.Code("RESET_FIND_FAILED").With("email", email).Wrap(err)
	}
	return reset, nil
}

// Consume relies on the single-document atomicity of FindOneAndUpdate: only
// one caller can match the record while used is still false. The password
// write is a second document, so a failed write hands the code back.
func (r *mongoResetRepository) Consume(ctx context.Context, email, otp string, now time.Time, passwordHash string) error {
	filter := bson.M{
		"email":      email,
		"otp":        otp,
		"used":       false,
		"expires_at": bson.M{"$gte": now},
	}
	err := r.coll.FindOneAndUpdate(ctx, filter, bson.M{"$set": bson.M{"used": true}}).Err()
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return ErrResetNotActive
		}
		return oops.Code("RESET_CONSUME_FAILED").With("email", email).Wrap(err)
	}

	res, err := r.users.UpdateOne(ctx, bson.M{"email": email},
		bson.M{"$set": bson.M{"password_hash": passwordHash, "updated_at": now}})
	if err == nil && res.MatchedCount == 0 {
		err = ErrNotFound
	}
	if err != nil {
		r.release(ctx, email, otp)
		if errors.Is(err, ErrNotFound) {
			return err
		}
		return oops.Code("RESET_CONSUME_FAILED").With("email", email).With("step", "password").Wrap(err)
	}
	return nil
}

// release marks a consumed code unused again after the password write failed
func (r *mongoResetRepository) release(ctx context.Context, email, otp string) {
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 5*time.Second)
	defer cancel()

	_, err := r.coll.UpdateOne(ctx,
		bson.M{"email": email, "otp": otp, "used": true},
		bson.M{"$set": bson.M{"used": false}})
	if err != nil {
		slog.ErrorContext(ctx, "reset code left consumed after failed password update", "email", email, "error", err)
	}
}

type mongoProgressRepository struct {
	coll *mongo.Collection
}

func (r *mongoProgressRepository) ListByUser(ctx context.Context, userID string) ([]model.DayProgress, error) {
	cursor, err := r.coll.Find(ctx, bson.M{"user_id": userID}, options.Find().SetSort(bson.D{{Key: "day_number", Value: 1}}))
	if err != nil {
		return nil, oops.Code("PROGRESS_LIST_FAILED").With("user_id", userID).Wrap(err)
	}
	progress := []model.DayProgress{}
	if err := cursor.All(ctx, &progress); err != nil {
		return nil, oops.Code("PROGRESS_LIST_FAILED").With("user_id", userID).Wrap(err)
	}
	for i := range progress {
		if progress[i].CompletedTasks == nil {
			progress[i].CompletedTasks = []string{}
		}
	}
	return progress, nil
}

func (r *mongoProgressRepository) upsert(ctx context.Context, userID string, day int, update bson.M) (*model.DayProgress, error) {
	opts := options.FindOneAndUpdate().SetUpsert(true).SetReturnDocument(options.After)
	p := &model.DayProgress{}
	err := r.coll.FindOneAndUpdate(ctx, bson.M{"user_id": userID, "day_number": day}, update, opts).Decode(p)
	if err != nil {
		return nil, err
	}
	if p.CompletedTasks == nil {
		p.CompletedTasks = []string{}
	}
	return p, nil
}

func (r *mongoProgressRepository) SetTask(ctx context.Context, userID string, day int, taskID string, completed bool, now time.Time) (*model.DayProgress, error) {
	var update bson.M
	if completed {
		update = bson.M{
			"$addToSet":    bson.M{"completed_tasks": taskID},
			"$set":         bson.M{"updated_at": now},
			"$setOnInsert": bson.M{"id": uuid.NewString(), "is_completed": false},
		}
	} else {
		update = bson.M{
			"$pull":        bson.M{"completed_tasks": taskID},
			"$set":         bson.M{"is_completed": false, "updated_at": now},
			"$unset":       bson.M{"completed_at": ""},
			"$setOnInsert": bson.M{"id": uuid.NewString()},
		}
	}
	p, err := r.upsert(ctx, userID, day, update)
	if err != nil {
		return nil, oops.Code("PROGRESS_TASK_FAILED").
			With("user_id", userID).
			With("day_number", day).
			With("task_id", taskID).
			Wrap(err)
	}
	return p, nil
}

func (r *mongoProgressRepository) CompleteDay(ctx context.Context, userID string, day int, now time.Time) error {
	_, err := r.coll.UpdateOne(ctx,
		bson.M{"user_id": userID, "day_number": day},
		bson.M{
			"$set":         bson.M{"is_completed": true, "completed_at": now, "updated_at": now},
			"$setOnInsert": bson.M{"id": uuid.NewString(), "completed_tasks": []string{}},
		},
		options.Update().SetUpsert(true),
	)
	if err != nil {
		return oops.Code("PROGRESS_DAY_FAILED").With("user_id", userID).With("day_number", day).Wrap(err)
	}
	return nil
}

func (r *mongoProgressRepository) SetDayCompletion(ctx context.Context, userID string, day int, completed bool, now time.Time) (*model.DayProgress, error) {
	update := bson.M{
		"$set":         bson.M{"is_completed": completed, "updated_at": now},
		"$setOnInsert": bson.M{"id": uuid.NewString(), "completed_tasks": []string{}},
	}
	if completed {
		update["$set"].(bson.M)["completed_at"] = now
	} else {
		update["$unset"] = bson.M{"completed_at": ""}
	}
	p, err := r.upsert(ctx, userID, day, update)
	if err != nil {
		return nil, oops.Code("PROGRESS_OVERRIDE_FAILED").With("user_id", userID).With("day_number", day).Wrap(err)
	}
	return p, nil
}
