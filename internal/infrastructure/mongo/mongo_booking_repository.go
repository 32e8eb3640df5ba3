package mongo

import (
	"context"
	"fmt"
	"time"

	"kazi-marketplace/internal/domain/aggregate"
	"kazi-marketplace/internal/domain/repository"
	"kazi-marketplace/pkg/errors"

	"github.com/shopspring/decimal"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// bookingDocument is the persisted shape of a booking. The budget is stored
// as a decimal string so no precision is lost round-tripping through BSON.
type bookingDocument struct {
	ID            string     `bson:"_id"`
	ClientID      string     `bson:"client_id"`
	ProviderID    string     `bson:"provider_id"`
	ServiceID     string     `bson:"service_id"`
	Title         string     `bson:"title"`
	Description   string     `bson:"description,omitempty"`
	Budget        string     `bson:"budget"`
	StartDate     *time.Time `bson:"start_date,omitempty"`
	EndDate       *time.Time `bson:"end_date,omitempty"`
	Status        string     `bson:"status"`
	ClientNotes   []string   `bson:"client_notes,omitempty"`
	ProviderNotes []string   `bson:"provider_notes,omitempty"`
	Version       int        `bson:"version"`
	CreatedAt     time.Time  `bson:"created_at"`
	UpdatedAt     time.Time  `bson:"updated_at"`
}

func toDocument(b *aggregate.Booking) *bookingDocument {
	return &bookingDocument{
		ID:            b.ID(),
		ClientID:      b.ClientID(),
		ProviderID:    b.ProviderID(),
		ServiceID:     b.ServiceID(),
		Title:         b.Title(),
		Description:   b.Description(),
		Budget:        b.Budget().String(),
		StartDate:     b.StartDate(),
		EndDate:       b.EndDate(),
		Status:        string(b.Status()),
		ClientNotes:   b.ClientNotes(),
		ProviderNotes: b.ProviderNotes(),
		Version:       b.Version(),
		CreatedAt:     b.CreatedAt(),
		UpdatedAt:     b.UpdatedAt(),
	}
}

func (d *bookingDocument) toAggregate() (*aggregate.Booking, error) {
	budget, err := decimal.NewFromString(d.Budget)
	if err != nil {
		return nil, errors.NewInternalError(fmt.Sprintf("stored budget %q is not a decimal: %v", d.Budget, err))
	}
	return aggregate.ReconstructBooking(
		d.ID, d.ClientID, d.ProviderID, d.ServiceID, d.Title, d.Description,
		budget, d.StartDate, d.EndDate, aggregate.BookingStatus(d.Status),
		d.ClientNotes, d.ProviderNotes,
		d.Version, d.CreatedAt, d.UpdatedAt,
	), nil
}

// MongoBookingRepository implements BookingRepository with MongoDB
type MongoBookingRepository struct {
	collection *mongo.Collection
	session    mongo.Session
}

// NewMongoBookingRepository creates a new MongoDB booking repository
func NewMongoBookingRepository(database *mongo.Database) *MongoBookingRepository {
	return &MongoBookingRepository{
		collection: database.Collection("bookings"),
	}
}

// SetTransaction implements TransactionalRepository
func (r *MongoBookingRepository) SetTransaction(tx interface{}) {
	if session, ok := tx.(mongo.Session); ok {
		r.session = session
	} else {
		r.session = nil
	}
}

// GetTransaction implements TransactionalRepository
func (r *MongoBookingRepository) GetTransaction() interface{} {
	return r.session
}

// IsTransactional implements TransactionalRepository
func (r *MongoBookingRepository) IsTransactional() bool {
	return r.session != nil
}

// opContext binds the active session to the operation context so writes join
// the unit of work's transaction.
func (r *MongoBookingRepository) opContext(ctx context.Context) context.Context {
	if r.session != nil {
		return mongo.NewSessionContext(ctx, r.session)
	}
	return ctx
}

// Save inserts a newly created booking.
func (r *MongoBookingRepository) Save(ctx context.Context, booking *aggregate.Booking) error {
	_, err := r.collection.InsertOne(r.opContext(ctx), toDocument(booking))
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return errors.NewConflictError("booking already exists: " + booking.ID())
		}
		return errors.NewStorageUnavailableError(fmt.Sprintf("failed to insert booking: %v", err))
	}
	return nil
}

// SaveTransition replaces a booking document only when the stored version
// still matches expectedVersion. The version guard in the update filter makes
// the check-and-write a single atomic operation on the server.
func (r *MongoBookingRepository) SaveTransition(ctx context.Context, booking *aggregate.Booking, expectedVersion int) error {
	opCtx := r.opContext(ctx)

	result, err := r.collection.ReplaceOne(opCtx,
		bson.M{"_id": booking.ID(), "version": expectedVersion},
		toDocument(booking),
	)
	if err != nil {
		return errors.NewStorageUnavailableError(fmt.Sprintf("failed to update booking: %v", err))
	}
	if result.MatchedCount == 0 {
		// Distinguish a missing booking from a lost race.
		count, err := r.collection.CountDocuments(opCtx, bson.M{"_id": booking.ID()})
		if err != nil {
			return errors.NewStorageUnavailableError(fmt.Sprintf("failed to check booking existence: %v", err))
		}
		if count == 0 {
			return errors.NewNotFoundError("booking")
		}
		return errors.NewConcurrentModificationError("booking " + booking.ID() + " was modified concurrently")
	}
	return nil
}

// GetByID retrieves a booking by ID.
func (r *MongoBookingRepository) GetByID(ctx context.Context, id string) (*aggregate.Booking, error) {
	var doc bookingDocument
	err := r.collection.FindOne(r.opContext(ctx), bson.M{"_id": id}).Decode(&doc)
	if err == mongo.ErrNoDocuments {
		return nil, errors.NewNotFoundError("booking")
	}
	if err != nil {
		return nil, errors.NewStorageUnavailableError(fmt.Sprintf("failed to load booking: %v", err))
	}
	return doc.toAggregate()
}

// List returns bookings matching the filter, oldest first.
func (r *MongoBookingRepository) List(ctx context.Context, filter repository.BookingFilter) ([]*aggregate.Booking, error) {
	query := bson.M{}

	if filter.UserID != "" {
		switch filter.Role {
		case aggregate.PartyClient:
			query["client_id"] = filter.UserID
		case aggregate.PartyProvider:
			query["provider_id"] = filter.UserID
		default:
			query["$or"] = bson.A{
				bson.M{"client_id": filter.UserID},
				bson.M{"provider_id": filter.UserID},
			}
		}
	}
	if filter.Status != "" {
		query["status"] = string(filter.Status)
	}
	if filter.From != nil || filter.To != nil {
		createdAt := bson.M{}
		if filter.From != nil {
			createdAt["$gte"] = *filter.From
		}
		if filter.To != nil {
			createdAt["$lte"] = *filter.To
		}
		query["created_at"] = createdAt
	}

	opCtx := r.opContext(ctx)
	cursor, err := r.collection.Find(opCtx, query, options.Find().SetSort(bson.D{{Key: "created_at", Value: 1}}))
	if err != nil {
		return nil, errors.NewStorageUnavailableError(fmt.Sprintf("failed to list bookings: %v", err))
	}
	defer cursor.Close(opCtx)

	var bookings []*aggregate.Booking
	for cursor.Next(opCtx) {
		var doc bookingDocument
		if err := cursor.Decode(&doc); err != nil {
			return nil, errors.NewStorageUnavailableError(fmt.Sprintf("failed to decode booking: %v", err))
		}
		booking, err := doc.toAggregate()
		if err != nil {
			return nil, err
		}
		bookings = append(bookings, booking)
	}
	if err := cursor.Err(); err != nil {
		return nil, errors.NewStorageUnavailableError(fmt.Sprintf("booking cursor error: %v", err))
	}
	return bookings, nil
}
