package clients

import (
	"context"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
	"github.com/pkg/errors"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
	"go.uber.org/fx"
	"go.uber.org/zap"

	"github.com/festivo-org/concierge/models"
)

const (
	invitesCollection     = "invites"
	membershipsCollection = "memberships"

	inviteTokenIndex  = "UniqueInviteToken"
	pendingGuardIndex = "UniquePendingOwnerEmail"
	membershipIndex   = "UniqueOwnerMember"
)

type (
	MongoConfig struct {
		ConnectionString string        `split_words:"true" required:"true"`
		Database         string        `default:"concierge"`
		Timeout          time.Duration `default:"10s"`
	}

	MongoStoreClient struct {
		client      *mongo.Client
		invites     *mongo.Collection
		memberships *mongo.Collection
		logger      *zap.SugaredLogger
	}
)

func NewMongoStoreClient(config *MongoConfig, logger *zap.SugaredLogger) (*MongoStoreClient, error) {
	ctx, cancel := context.WithTimeout(context.Background(), config.Timeout)
	defer cancel()

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(config.ConnectionString))
	if err != nil {
		return nil, errors.Wrap(err, "connecting to mongo")
	}

	store := &MongoStoreClient{
		client:      client,
		invites:     client.Database(config.Database).Collection(invitesCollection),
		memberships: client.Database(config.Database).Collection(membershipsCollection),
		logger:      logger,
	}

	if err := store.EnsureIndexes(ctx); err != nil {
		return nil, err
	}

	return store, nil
}

// EnsureIndexes creates the indexes the duplicate guards rely on. The token
// index and the partial pending guard are the authoritative race arbiters;
// the application-level checks only exist for friendlier error messages.
func (c *MongoStoreClient) EnsureIndexes(ctx context.Context) error {
	inviteIndexes := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "token", Value: 1}},
			Options: options.Index().SetName(inviteTokenIndex).SetUnique(true),
		},
		{
			Keys: bson.D{{Key: "ownerId", Value: 1}, {Key: "inviteeEmail", Value: 1}},
			Options: options.Index().
				SetName(pendingGuardIndex).
				SetUnique(true).
				SetPartialFilterExpression(bson.D{{Key: "status", Value: models.StatusPending}}),
		},
		{
			Keys:    bson.D{{Key: "inviteeEmail", Value: 1}, {Key: "status", Value: 1}},
			Options: options.Index().SetName("InviteeEmailStatus"),
		},
	}
	if _, err := c.invites.Indexes().CreateMany(ctx, inviteIndexes); err != nil {
		return errors.Wrap(err, "creating invite indexes")
	}

	membershipIndexes := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "ownerId", Value: 1}, {Key: "memberUserId", Value: 1}},
			Options: options.Index().SetName(membershipIndex).SetUnique(true),
		},
		{
			Keys:    bson.D{{Key: "ownerId", Value: 1}, {Key: "memberEmail", Value: 1}},
			Options: options.Index().SetName("OwnerMemberEmail"),
		},
	}
	if _, err := c.memberships.Indexes().CreateMany(ctx, membershipIndexes); err != nil {
		return errors.Wrap(err, "creating membership indexes")
	}

	return nil
}

func (c *MongoStoreClient) Disconnect(ctx context.Context) error {
	return c.client.Disconnect(ctx)
}

func (c *MongoStoreClient) Ping(ctx context.Context) error {
	return c.client.Ping(ctx, readpref.Primary())
}

func (c *MongoStoreClient) InsertInvite(ctx context.Context, invite *models.Invite) error {
	if _, err := c.invites.InsertOne(ctx, invite); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			if indexName := duplicateKeyMessage(err); strings.Contains(indexName, pendingGuardIndex) {
				return ErrDuplicatePendingInvite
			}
			return ErrDuplicateToken
		}
		return errors.Wrap(err, "inserting invite")
	}
	return nil
}

func (c *MongoStoreClient) FindInviteByID(ctx context.Context, id string) (*models.Invite, error) {
	return c.findOneInvite(ctx, bson.M{"_id": id})
}

func (c *MongoStoreClient) FindInviteByToken(ctx context.Context, token string) (*models.Invite, error) {
	return c.findOneInvite(ctx, bson.M{"token": token})
}

func (c *MongoStoreClient) FindPendingInvite(ctx context.Context, ownerID, inviteeEmail string) (*models.Invite, error) {
	return c.findOneInvite(ctx, bson.M{
		"ownerId":      ownerID,
		"inviteeEmail": inviteeEmail,
		"status":       models.StatusPending,
	})
}

func (c *MongoStoreClient) findOneInvite(ctx context.Context, query bson.M) (*models.Invite, error) {
	result := &models.Invite{}
	if err := c.invites.FindOne(ctx, query).Decode(result); err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, nil
		}
		return nil, errors.Wrap(err, "finding invite")
	}
	return result, nil
}

func (c *MongoStoreClient) FindInvitesByOwner(ctx context.Context, ownerID string) ([]*models.Invite, error) {
	return c.findInvites(ctx, bson.M{"ownerId": ownerID})
}

func (c *MongoStoreClient) FindInvitesByEmail(ctx context.Context, inviteeEmail string, statuses []models.Status) ([]*models.Invite, error) {
	query := bson.M{"inviteeEmail": inviteeEmail}
	if len(statuses) > 0 {
		query["status"] = bson.M{"$in": statuses}
	}
	return c.findInvites(ctx, query)
}

func (c *MongoStoreClient) findInvites(ctx context.Context, query bson.M) ([]*models.Invite, error) {
	opts := options.Find().SetSort(bson.D{{Key: "created", Value: 1}})
	cursor, err := c.invites.Find(ctx, query, opts)
	if err != nil {
		return nil, errors.Wrap(err, "finding invites")
	}

	var results []*models.Invite
	if err := cursor.All(ctx, &results); err != nil {
		return nil, errors.Wrap(err, "decoding invites")
	}
	return results, nil
}

func (c *MongoStoreClient) TransitionInvite(ctx context.Context, id string, to models.Status) (*models.Invite, error) {
	filter := bson.M{"_id": id, "status": models.StatusPending}
	update := bson.M{"$set": bson.M{"status": to, "modified": time.Now().UTC()}}
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	result := &models.Invite{}
	if err := c.invites.FindOneAndUpdate(ctx, filter, update, opts).Decode(result); err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, ErrNotPending
		}
		return nil, errors.Wrapf(err, "transitioning invite to %s", to)
	}
	return result, nil
}

func (c *MongoStoreClient) AcceptInvite(ctx context.Context, invite *models.Invite, membership *models.Membership) error {
	session, err := c.client.StartSession()
	if err != nil {
		return errors.Wrap(err, "starting mongo session")
	}
	defer session.EndSession(ctx)

	_, err = session.WithTransaction(ctx, func(sessCtx mongo.SessionContext) (interface{}, error) {
		filter := bson.M{"_id": invite.ID, "status": models.StatusPending}
		update := bson.M{"$set": bson.M{"status": models.StatusAccepted, "modified": time.Now().UTC()}}
		opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

		if err := c.invites.FindOneAndUpdate(sessCtx, filter, update, opts).Decode(invite); err != nil {
			if err == mongo.ErrNoDocuments {
				return nil, ErrNotPending
			}
			return nil, errors.Wrap(err, "accepting invite")
		}

		if _, err := c.memberships.InsertOne(sessCtx, membership); err != nil {
			if mongo.IsDuplicateKeyError(err) {
				return nil, ErrDuplicateMembership
			}
			return nil, errors.Wrap(err, "inserting membership")
		}

		return nil, nil
	})
	return err
}

func (c *MongoStoreClient) FindMembershipByEmail(ctx context.Context, ownerID, memberEmail string) (*models.Membership, error) {
	query := bson.M{"ownerId": ownerID, "memberEmail": memberEmail}

	result := &models.Membership{}
	if err := c.memberships.FindOne(ctx, query).Decode(result); err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, nil
		}
		return nil, errors.Wrap(err, "finding membership")
	}
	return result, nil
}

func (c *MongoStoreClient) FindMembershipsByOwner(ctx context.Context, ownerID string) ([]*models.Membership, error) {
	opts := options.Find().SetSort(bson.D{{Key: "created", Value: 1}})
	cursor, err := c.memberships.Find(ctx, bson.M{"ownerId": ownerID}, opts)
	if err != nil {
		return nil, errors.Wrap(err, "finding memberships")
	}

	var results []*models.Membership
	if err := cursor.All(ctx, &results); err != nil {
		return nil, errors.Wrap(err, "decoding memberships")
	}
	return results, nil
}

// duplicateKeyMessage digs the failing index name out of a write exception so
// the two unique indexes on invites can be told apart.
func duplicateKeyMessage(err error) string {
	if we, ok := err.(mongo.WriteException); ok {
		for _, writeErr := range we.WriteErrors {
			if writeErr.Code == 11000 {
				return writeErr.Message
			}
		}
	}
	return ""
}

func mongoConfigProvider() (MongoConfig, error) {
	var config MongoConfig
	if err := envconfig.Process("mongo", &config); err != nil {
		return MongoConfig{}, err
	}
	return config, nil
}

func mongoStoreProvider(config MongoConfig, logger *zap.SugaredLogger, lc fx.Lifecycle) (*MongoStoreClient, error) {
	store, err := NewMongoStoreClient(&config, logger)
	if err != nil {
		return nil, err
	}
	lc.Append(fx.Hook{
		OnStop: func(ctx context.Context) error {
			return store.Disconnect(ctx)
		},
	})
	return store, nil
}

// MongoModule provides the store and the audit recorder, both backed by the
// same mongo client.
var MongoModule = fx.Options(
	fx.Provide(mongoConfigProvider),
	fx.Provide(mongoStoreProvider),
	fx.Provide(func(c *MongoStoreClient) StoreClient { return c }),
	fx.Provide(mongoAuditRecorderProvider),
)
