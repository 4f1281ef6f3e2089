package registration

import (
	"context"
	"errors"
	"regexp"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/yojana-dates/yojana-backend/internal/apperror"
)

// CollectionName is shared with existing deployments of the intake form.
const CollectionName = "yojanaregistrations"

// Repository is the persistence gateway for registrations.
type Repository interface {
	Create(ctx context.Context, r *Registration) error
	GetByID(ctx context.Context, id string) (*Registration, error)
	List(ctx context.Context, q ListQuery) ([]Registration, int64, error)
	ListAll(ctx context.Context) ([]Registration, error)
	Update(ctx context.Context, id string, p *Patch) (*Registration, error)
	Delete(ctx context.Context, id string) error
}

var errNotFound = apperror.NotFound("Registration")

// ===========================
// 🍃 Mongo document

type registrationDocument struct {
	ID        primitive.ObjectID `bson:"_id,omitempty"`
	CreatedAt time.Time          `bson:"createdAt"`
	UpdatedAt time.Time          `bson:"updatedAt"`

	StartDateTime time.Time `bson:"startDateTime"`
	EndDateTime   time.Time `bson:"endDateTime"`

	Occasion   string `bson:"occasion"`
	Experience string `bson:"experience"`
	Dining     string `bson:"dining"`

	DietVeg       bool   `bson:"dietVeg"`
	DietHalal     bool   `bson:"dietHalal"`
	DietAllergies string `bson:"dietAllergies"`

	Flowers bool `bson:"flowers"`
	Cake    bool `bson:"cake"`

	Budget       string `bson:"budget"`
	PersonalNote string `bson:"personalNote"`

	Name             string `bson:"name"`
	Phone            string `bson:"phone"`
	Email            string `bson:"email"`
	EmergencyContact string `bson:"emergencyContact"`

	PaymentConfirmed bool `bson:"paymentConfirmed"`
}

func toDocument(r *Registration) registrationDocument {
	return registrationDocument{
		CreatedAt:        r.CreatedAt,
		UpdatedAt:        r.UpdatedAt,
		StartDateTime:    r.StartDateTime,
		EndDateTime:      r.EndDateTime,
		Occasion:         string(r.Occasion),
		Experience:       string(r.Experience),
		Dining:           string(r.Dining),
		DietVeg:          r.DietVeg,
		DietHalal:        r.DietHalal,
		DietAllergies:    r.DietAllergies,
		Flowers:          r.Flowers,
		Cake:             r.Cake,
		Budget:           string(r.Budget),
		PersonalNote:     r.PersonalNote,
		Name:             r.Name,
		Phone:            r.Phone,
		Email:            r.Email,
		EmergencyContact: r.EmergencyContact,
		PaymentConfirmed: r.PaymentConfirmed,
	}
}

func (d registrationDocument) toRegistration() Registration {
	return Registration{
		ID:               d.ID.Hex(),
		CreatedAt:        d.CreatedAt,
		UpdatedAt:        d.UpdatedAt,
		StartDateTime:    d.StartDateTime,
		EndDateTime:      d.EndDateTime,
		Occasion:         Occasion(d.Occasion),
		Experience:       Experience(d.Experience),
		Dining:           Dining(d.Dining),
		DietVeg:          d.DietVeg,
		DietHalal:        d.DietHalal,
		DietAllergies:    d.DietAllergies,
		Flowers:          d.Flowers,
		Cake:             d.Cake,
		Budget:           Budget(d.Budget),
		PersonalNote:     d.PersonalNote,
		Name:             d.Name,
		Phone:            d.Phone,
		Email:            d.Email,
		EmergencyContact: d.EmergencyContact,
		PaymentConfirmed: d.PaymentConfirmed,
	}
}

// ===========================
// 🍃 Mongo repository

type mongoRepository struct {
	coll *mongo.Collection
	now  func() time.Time
}

func NewMongoRepository(db *mongo.Database) Repository {
	return &mongoRepository{
		coll: db.Collection(CollectionName),
		now:  time.Now,
	}
}

// EnsureMongoIndexes creates the list and filter indexes if missing.
func EnsureMongoIndexes(ctx context.Context, db *mongo.Database) error {
	_, err := db.Collection(CollectionName).Indexes().CreateMany(ctx, []mongo.IndexModel{
		{Keys: bson.D{{Key: "createdAt", Value: -1}}},
		{Keys: bson.D{{Key: "startDateTime", Value: 1}}},
		{Keys: bson.D{{Key: "paymentConfirmed", Value: 1}}},
	})
	return err
}

func (r *mongoRepository) Create(ctx context.Context, reg *Registration) error {
	now := r.now().UTC().Truncate(time.Millisecond)
	reg.CreatedAt = now
	reg.UpdatedAt = now

	res, err := r.coll.InsertOne(ctx, toDocument(reg))
	if err != nil {
		return apperror.Transport("insert registration", err)
	}
	if oid, ok := res.InsertedID.(primitive.ObjectID); ok {
		reg.ID = oid.Hex()
	}
	return nil
}

func (r *mongoRepository) GetByID(ctx context.Context, id string) (*Registration, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, errNotFound
	}

	var doc registrationDocument
	err = r.coll.FindOne(ctx, bson.M{"_id": oid}).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, errNotFound
	}
	if err != nil {
		return nil, apperror.Transport("find registration", err)
	}
	reg := doc.toRegistration()
	return &reg, nil
}

func (r *mongoRepository) List(ctx context.Context, q ListQuery) ([]Registration, int64, error) {
	filter := buildMongoFilter(q)

	opts := options.Find().
		SetSort(buildMongoSort(q)).
		SetSkip(int64(q.Skip())).
		SetLimit(int64(q.PageSize))
	if q.SortBy == SortByName {
		opts.SetCollation(&options.Collation{Locale: "en", Strength: 2})
	}

	cur, err := r.coll.Find(ctx, filter, opts)
	if err != nil {
		return nil, 0, apperror.Transport("list registrations", err)
	}
	items, err := decodeAll(ctx, cur)
	if err != nil {
		return nil, 0, err
	}

	total, err := r.coll.CountDocuments(ctx, filter)
	if err != nil {
		return nil, 0, apperror.Transport("count registrations", err)
	}
	return items, total, nil
}

func (r *mongoRepository) ListAll(ctx context.Context) ([]Registration, error) {
	opts := options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}, {Key: "_id", Value: -1}})
	cur, err := r.coll.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, apperror.Transport("list registrations", err)
	}
	return decodeAll(ctx, cur)
}

func (r *mongoRepository) Update(ctx context.Context, id string, p *Patch) (*Registration, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, errNotFound
	}

	update := bson.M{"$set": buildMongoSet(p, r.now().UTC().Truncate(time.Millisecond))}
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	var doc registrationDocument
	err = r.coll.FindOneAndUpdate(ctx, bson.M{"_id": oid}, update, opts).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, errNotFound
	}
	if err != nil {
		return nil, apperror.Transport("update registration", err)
	}
	reg := doc.toRegistration()
	return &reg, nil
}

func (r *mongoRepository) Delete(ctx context.Context, id string) error {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return errNotFound
	}
	res, err := r.coll.DeleteOne(ctx, bson.M{"_id": oid})
	if err != nil {
		return apperror.Transport("delete registration", err)
	}
	if res.DeletedCount == 0 {
		return errNotFound
	}
	return nil
}

func decodeAll(ctx context.Context, cur *mongo.Cursor) ([]Registration, error) {
	defer cur.Close(ctx)

	var docs []registrationDocument
	if err := cur.All(ctx, &docs); err != nil {
		return nil, apperror.Transport("decode registrations", err)
	}
	out := make([]Registration, 0, len(docs))
	for _, d := range docs {
		out = append(out, d.toRegistration())
	}
	return out, nil
}

// buildMongoFilter turns the list query into a find filter. The search text
// is quoted so it matches literally.
func buildMongoFilter(q ListQuery) bson.M {
	filter := bson.M{}
	switch q.Payment {
	case PaymentPaid:
		filter["paymentConfirmed"] = true
	case PaymentPending:
		filter["paymentConfirmed"] = false
	}

	if q.Q != "" {
		rx := primitive.Regex{Pattern: regexp.QuoteMeta(q.Q), Options: "i"}
		or := make(bson.A, 0, len(SearchFields))
		for _, f := range SearchFields {
			or = append(or, bson.M{f: rx})
		}
		filter["$or"] = or
	}
	return filter
}

func buildMongoSort(q ListQuery) bson.D {
	dir := -1
	if q.Asc {
		dir = 1
	}
	return bson.D{{Key: string(q.SortBy), Value: dir}, {Key: "_id", Value: dir}}
}

func buildMongoSet(p *Patch, now time.Time) bson.M {
	set := bson.M{"updatedAt": now}
	if p.StartDateTime != nil {
		set["startDateTime"] = *p.StartDateTime
	}
	if p.EndDateTime != nil {
		set["endDateTime"] = *p.EndDateTime
	}
	if p.Occasion != nil {
		set["occasion"] = string(*p.Occasion)
	}
	if p.Experience != nil {
		set["experience"] = string(*p.Experience)
	}
	if p.Dining != nil {
		set["dining"] = string(*p.Dining)
	}
	if p.Budget != nil {
		set["budget"] = string(*p.Budget)
	}
	if p.DietVeg != nil {
		set["dietVeg"] = *p.DietVeg
	}
	if p.DietHalal != nil {
		set["dietHalal"] = *p.DietHalal
	}
	if p.DietAllergies != nil {
		set["dietAllergies"] = *p.DietAllergies
	}
	if p.Flowers != nil {
		set["flowers"] = *p.Flowers
	}
	if p.Cake != nil {
		set["cake"] = *p.Cake
	}
	if p.PersonalNote != nil {
		set["personalNote"] = *p.PersonalNote
	}
	if p.Name != nil {
		set["name"] = *p.Name
	}
	if p.Phone != nil {
		set["phone"] = *p.Phone
	}
	if p.Email != nil {
		set["email"] = *p.Email
	}
	if p.EmergencyContact != nil {
		set["emergencyContact"] = *p.EmergencyContact
	}
	if p.PaymentConfirmed != nil {
		set["paymentConfirmed"] = *p.PaymentConfirmed
	}
	return set
}
