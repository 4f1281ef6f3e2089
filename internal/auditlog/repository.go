package auditlog

import (
	"context"
	"regexp"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type Repository interface {
	Create(ctx context.Context, log *AuditLog) error
	GetByFilter(ctx context.Context, filter AuditLogFilter) ([]AuditLog, int64, error)
}

type auditDocument struct {
	ID             primitive.ObjectID `bson:"_id,omitempty"`
	Action         string             `bson:"action"`
	RegistrationID string             `bson:"registrationId,omitempty"`
	Details        bson.M             `bson:"details"`
	IPAddress      string             `bson:"ipAddress"`
	Status         string             `bson:"status"`
	CreatedAt      time.Time          `bson:"createdAt"`
}

type mongoRepository struct {
	coll *mongo.Collection
}

func NewMongoRepository(db *mongo.Database) Repository {
	return &mongoRepository{coll: db.Collection("audit_logs")}
}

// Create inserts a new audit log entry
func (r *mongoRepository) Create(ctx context.Context, log *AuditLog) error {
	doc := auditDocument{
		Action:         log.Action,
		RegistrationID: log.RegistrationID,
		Details:        bson.M(log.Details),
		IPAddress:      log.IPAddress,
		Status:         log.Status,
		CreatedAt:      log.CreatedAt,
	}
	res, err := r.coll.InsertOne(ctx, doc)
	if err != nil {
		return err
	}
	if oid, ok := res.InsertedID.(primitive.ObjectID); ok {
		log.ID = oid.Hex()
	}
	return nil
}

// GetByFilter retrieves audit logs with filtering and pagination
func (r *mongoRepository) GetByFilter(ctx context.Context, filter AuditLogFilter) ([]AuditLog, int64, error) {
	q := buildMongoFilter(filter)

	total, err := r.coll.CountDocuments(ctx, q)
	if err != nil {
		return nil, 0, err
	}

	opts := options.Find().
		SetSort(bson.D{{Key: "createdAt", Value: -1}}).
		SetSkip(int64((filter.Page - 1) * filter.Limit)).
		SetLimit(int64(filter.Limit))
	cur, err := r.coll.Find(ctx, q, opts)
	if err != nil {
		return nil, 0, err
	}
	defer cur.Close(ctx)

	var docs []auditDocument
	if err := cur.All(ctx, &docs); err != nil {
		return nil, 0, err
	}

	logs := make([]AuditLog, 0, len(docs))
	for _, d := range docs {
		logs = append(logs, AuditLog{
			ID:             d.ID.Hex(),
			Action:         d.Action,
			RegistrationID: d.RegistrationID,
			Details:        map[string]interface{}(d.Details),
			IPAddress:      d.IPAddress,
			Status:         d.Status,
			CreatedAt:      d.CreatedAt,
		})
	}
	return logs, total, nil
}

func buildMongoFilter(filter AuditLogFilter) bson.M {
	q := bson.M{}
	if filter.Action != "" {
		q["action"] = primitive.Regex{Pattern: regexp.QuoteMeta(filter.Action), Options: "i"}
	}
	if filter.Status != "" {
		q["status"] = filter.Status
	}
	if filter.RegistrationID != "" {
		q["registrationId"] = filter.RegistrationID
	}
	return q
}
