package mongo

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/oralvis/oralvis-api/internal/core/domain"
	"github.com/oralvis/oralvis-api/internal/core/ports"
)

const (
	scansCollection    = "scans"
	countersCollection = "counters"
	scanCounterID      = "scans"
)

// uploadDateDesc is the canonical ordering for every list operation.
var uploadDateDesc = bson.D{{Key: "upload_date", Value: -1}}

type ScanRepository struct {
	coll     *mongo.Collection
	counters *mongo.Collection
}

func NewScanRepository(db *mongo.Database) *ScanRepository {
	return &ScanRepository{
		coll:     db.Collection(scansCollection),
		counters: db.Collection(countersCollection),
	}
}

// nextID atomically increments and returns the scan ID sequence. IDs are
// monotonic across concurrent inserts because the $inc runs server-side.
func (r *ScanRepository) nextID(ctx context.Context) (int64, error) {
	var counter struct {
		Seq int64 `bson:"seq"`
	}
	err := r.counters.FindOneAndUpdate(ctx,
		bson.M{"_id": scanCounterID},
		bson.M{"$inc": bson.M{"seq": 1}},
		options.FindOneAndUpdate().SetUpsert(true).SetReturnDocument(options.After),
	).Decode(&counter)
	if err != nil {
		return 0, fmt.Errorf("next scan id: %w", err)
	}
	return counter.Seq, nil
}

func (r *ScanRepository) Insert(ctx context.Context, scan *domain.Scan) (*domain.Scan, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	id, err := r.nextID(ctx)
	if err != nil {
		return nil, err
	}

	stored := *scan
	stored.ID = id
	if _, err := r.coll.InsertOne(ctx, stored); err != nil {
		return nil, fmt.Errorf("insert scan: %w", err)
	}
	return &stored, nil
}

func (r *ScanRepository) FindByID(ctx context.Context, id int64) (*domain.Scan, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	var scan domain.Scan
	err := r.coll.FindOne(ctx, bson.M{"_id": id}).Decode(&scan)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrScanNotFound
		}
		return nil, fmt.Errorf("find scan: %w", err)
	}
	return &scan, nil
}

func (r *ScanRepository) FindAll(ctx context.Context) ([]*domain.Scan, error) {
	return r.find(ctx, bson.M{}, 0)
}

func (r *ScanRepository) FindByPatientID(ctx context.Context, patientID string) ([]*domain.Scan, error) {
	return r.find(ctx, bson.M{"patient_id": patientID}, 0)
}

func (r *ScanRepository) FindByUploader(ctx context.Context, uploaderID string, limit int) ([]*domain.Scan, error) {
	return r.find(ctx, bson.M{"uploaded_by": uploaderID}, int64(limit))
}

// Search matches the query as a case-insensitive substring of patient_name
// or patient_id, AND-combined with the optional exact filters.
func (r *ScanRepository) Search(ctx context.Context, filter ports.ScanSearchFilter) ([]*domain.Scan, error) {
	quoted := regexp.QuoteMeta(filter.Query)
	query := bson.M{
		"$or": bson.A{
			bson.M{"patient_name": bson.M{"$regex": quoted, "$options": "i"}},
			bson.M{"patient_id": bson.M{"$regex": quoted, "$options": "i"}},
		},
	}
	if filter.Region != "" {
		query["region"] = string(filter.Region)
	}
	if filter.ScanType != "" {
		query["scan_type"] = string(filter.ScanType)
	}

	return r.find(ctx, query, int64(filter.Limit))
}

func (r *ScanRepository) find(ctx context.Context, query bson.M, limit int64) ([]*domain.Scan, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	opts := options.Find().SetSort(uploadDateDesc)
	if limit > 0 {
		opts.SetLimit(limit)
	}

	cursor, err := r.coll.Find(ctx, query, opts)
	if err != nil {
		return nil, fmt.Errorf("find scans: %w", err)
	}
	defer cursor.Close(ctx)

	var scans []*domain.Scan
	if err := cursor.All(ctx, &scans); err != nil {
		return nil, fmt.Errorf("decode scans: %w", err)
	}
	return scans, nil
}

// Stats computes the dentist-facing aggregate view. Uploader emails are left
// empty; the service layer resolves them through the user repository.
func (r *ScanRepository) Stats(ctx context.Context) (*ports.ScanStats, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	stats := &ports.ScanStats{
		ScansByRegion: map[string]int64{},
		ScansByType:   map[string]int64{},
	}

	total, err := r.coll.CountDocuments(ctx, bson.M{})
	if err != nil {
		return nil, fmt.Errorf("count scans: %w", err)
	}
	stats.TotalScans = total

	patients, err := r.coll.Distinct(ctx, "patient_id", bson.M{})
	if err != nil {
		return nil, fmt.Errorf("distinct patients: %w", err)
	}
	stats.UniquePatients = int64(len(patients))

	weekAgo := time.Now().UTC().AddDate(0, 0, -7)
	recent, err := r.coll.CountDocuments(ctx, bson.M{"upload_date": bson.M{"$gte": weekAgo}})
	if err != nil {
		return nil, fmt.Errorf("count recent scans: %w", err)
	}
	stats.RecentUploads = recent

	if stats.ScansByRegion, err = r.countBy(ctx, "$region"); err != nil {
		return nil, err
	}
	if stats.ScansByType, err = r.countBy(ctx, "$scan_type"); err != nil {
		return nil, err
	}

	if stats.TopUploaders, err = r.topUploaders(ctx, 5); err != nil {
		return nil, err
	}
	return stats, nil
}

// countBy groups all scans by the given field and returns value → count.
func (r *ScanRepository) countBy(ctx context.Context, field string) (map[string]int64, error) {
	cursor, err := r.coll.Aggregate(ctx, mongo.Pipeline{
		{{Key: "$group", Value: bson.M{"_id": field, "count": bson.M{"$sum": 1}}}},
	})
	if err != nil {
		return nil, fmt.Errorf("group scans by %s: %w", field, err)
	}
	defer cursor.Close(ctx)

	counts := map[string]int64{}
	for cursor.Next(ctx) {
		var row struct {
			ID    string `bson:"_id"`
			Count int64  `bson:"count"`
		}
		if err := cursor.Decode(&row); err != nil {
			return nil, fmt.Errorf("decode group row: %w", err)
		}
		counts[row.ID] = row.Count
	}
	return counts, cursor.Err()
}

func (r *ScanRepository) topUploaders(ctx context.Context, limit int) ([]ports.UploaderCount, error) {
	cursor, err := r.coll.Aggregate(ctx, mongo.Pipeline{
		{{Key: "$group", Value: bson.M{"_id": "$uploaded_by", "count": bson.M{"$sum": 1}}}},
		{{Key: "$sort", Value: bson.D{{Key: "count", Value: -1}}}},
		{{Key: "$limit", Value: limit}},
	})
	if err != nil {
		return nil, fmt.Errorf("top uploaders: %w", err)
	}
	defer cursor.Close(ctx)

	var top []ports.UploaderCount
	for cursor.Next(ctx) {
		var row struct {
			ID    string `bson:"_id"`
			Count int64  `bson:"count"`
		}
		if err := cursor.Decode(&row); err != nil {
			return nil, fmt.Errorf("decode uploader row: %w", err)
		}
		top = append(top, ports.UploaderCount{UploaderID: row.ID, Count: row.Count})
	}
	return top, cursor.Err()
}

// EnsureIndexes creates the indexes backing the read paths.
func (r *ScanRepository) EnsureIndexes(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	indexes := []mongo.IndexModel{
		{Keys: bson.D{{Key: "patient_id", Value: 1}, {Key: "upload_date", Value: -1}}},
		{Keys: bson.D{{Key: "uploaded_by", Value: 1}, {Key: "upload_date", Value: -1}}},
		{Keys: uploadDateDesc},
	}

	_, err := r.coll.Indexes().CreateMany(ctx, indexes)
	return err
}
