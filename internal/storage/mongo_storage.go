// Path: internal/storage/mongo_storage.go
package storage

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"gh-trending/internal/config"
	"gh-trending/internal/domain"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const dateLayout = "2006-01-02"

// MongoSnapshotStore is the MongoDB implementation of the SnapshotStore
// interface. It owns the repos_daily, repos_details and repos_history
// collections.
type MongoSnapshotStore struct {
	client  *mongo.Client
	daily   *mongo.Collection
	details *mongo.Collection
	history *mongo.Collection
}

// NewMongoSnapshotStore creates a new storage adapter for trend data.
func NewMongoSnapshotStore(client *mongo.Client, db *mongo.Database, cfg config.DatabaseConfig) *MongoSnapshotStore {
	return &MongoSnapshotStore{
		client:  client,
		daily:   db.Collection(cfg.DailyCollection),
		details: db.Collection(cfg.DetailsCollection),
		history: db.Collection(cfg.HistoryCollection),
	}
}

// EnsureIndexes creates the unique and query indexes the store relies on.
// Safe to call on every startup; Mongo treats existing indexes as a no-op.
func (s *MongoSnapshotStore) EnsureIndexes(ctx context.Context) error {
	_, err := s.daily.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "date", Value: 1}, {Key: "repo_name", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
		{Keys: bson.D{{Key: "date", Value: 1}}},
		{Keys: bson.D{{Key: "repo_name", Value: 1}}},
		{Keys: bson.D{{Key: "date", Value: 1}, {Key: "rank", Value: 1}}},
	})
	if err != nil {
		return fmt.Errorf("failed to create repos_daily indexes: %w", err)
	}

	_, err = s.details.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{Keys: bson.D{{Key: "category", Value: 1}}},
		{Keys: bson.D{{Key: "owner", Value: 1}}},
		{Keys: bson.D{{Key: "language", Value: 1}}},
	})
	if err != nil {
		return fmt.Errorf("failed to create repos_details indexes: %w", err)
	}

	_, err = s.history.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "repo_name", Value: 1}, {Key: "date", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
		{Keys: bson.D{{Key: "date", Value: 1}}},
	})
	if err != nil {
		return fmt.Errorf("failed to create repos_history indexes: %w", err)
	}
	return nil
}

// UpsertSnapshot replaces the daily rows and history points for the given
// date with the supplied records. Both collections are written inside a
// single session transaction: either the full day is visible or none of it.
// Re-running the same day replaces rows in place, never duplicates.
func (s *MongoSnapshotStore) UpsertSnapshot(ctx context.Context, date string, repos []domain.Repo) error {
	if len(repos) == 0 {
		return nil
	}

	dailyModels := make([]mongo.WriteModel, len(repos))
	historyModels := make([]mongo.WriteModel, len(repos))
	for i, repo := range repos {
		repo.Date = date
		dailyModels[i] = mongo.NewReplaceOneModel().
			SetFilter(bson.M{"date": date, "repo_name": repo.RepoName}).
			SetReplacement(repo).
			SetUpsert(true)
		historyModels[i] = mongo.NewReplaceOneModel().
			SetFilter(bson.M{"repo_name": repo.RepoName, "date": date}).
			SetReplacement(domain.HistoryPoint{
				RepoName: repo.RepoName,
				Date:     date,
				Rank:     repo.Rank,
				Stars:    repo.Stars,
				Forks:    repo.Forks,
			}).
			SetUpsert(true)
	}

	session, err := s.client.StartSession()
	if err != nil {
		return fmt.Errorf("failed to start session: %w", err)
	}
	defer session.EndSession(ctx)

	_, err = session.WithTransaction(ctx, func(sc mongo.SessionContext) (interface{}, error) {
		if _, err := s.daily.BulkWrite(sc, dailyModels); err != nil {
			return nil, fmt.Errorf("daily bulk write: %w", err)
		}
		if _, err := s.history.BulkWrite(sc, historyModels); err != nil {
			return nil, fmt.Errorf("history bulk write: %w", err)
		}
		return nil, nil
	})
	if err != nil {
		return fmt.Errorf("failed to upsert snapshot for %s: %w", date, err)
	}
	return nil
}

// GetSnapshot returns the snapshot for the given date ordered by rank
// ascending. A date with no data yields an empty slice, not an error.
func (s *MongoSnapshotStore) GetSnapshot(ctx context.Context, date string) ([]domain.Repo, error) {
	opts := options.Find().SetSort(bson.D{{Key: "rank", Value: 1}})
	cursor, err := s.daily.Find(ctx, bson.M{"date": date}, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to query snapshot for %s: %w", date, err)
	}
	var repos []domain.Repo
	if err := cursor.All(ctx, &repos); err != nil {
		return nil, fmt.Errorf("failed to decode snapshot for %s: %w", date, err)
	}
	return repos, nil
}

// GetPriorSnapshot returns the snapshot for the calendar day immediately
// preceding date. "Prior" deliberately means exactly one day back, matching
// the one-day delta window: if that day's run was skipped the result is
// empty and the delta pass treats every repo as having no history.
func (s *MongoSnapshotStore) GetPriorSnapshot(ctx context.Context, date string) ([]domain.Repo, error) {
	prior, err := priorDate(date)
	if err != nil {
		return nil, err
	}
	return s.GetSnapshot(ctx, prior)
}

// priorDate returns the YYYY-MM-DD day before the given one.
func priorDate(date string) (string, error) {
	day, err := time.Parse(dateLayout, date)
	if err != nil {
		return "", fmt.Errorf("invalid date %q: %w", date, err)
	}
	return day.AddDate(0, 0, -1).Format(dateLayout), nil
}

// UpsertDetails replaces the detail document for each repository. Details
// are keyed by repository name only; there is no detail history.
func (s *MongoSnapshotStore) UpsertDetails(ctx context.Context, details []domain.RepoDetail) error {
	if len(details) == 0 {
		return nil
	}

	writeModels := make([]mongo.WriteModel, len(details))
	for i, detail := range details {
		detail.Solves = detail.Solves.OrEmpty()
		detail.Topics = detail.Topics.OrEmpty()
		writeModels[i] = mongo.NewReplaceOneModel().
			SetFilter(bson.M{"_id": detail.RepoName}).
			SetReplacement(detail).
			SetUpsert(true)
	}

	// SetOrdered(false) lets MongoDB process the operations in parallel.
	opts := options.BulkWrite().SetOrdered(false)
	if _, err := s.details.BulkWrite(ctx, writeModels, opts); err != nil {
		return fmt.Errorf("failed to upsert details: %w", err)
	}
	return nil
}

// GetDetail retrieves a single detail document by repository name.
// Returns nil, nil when no detail exists.
func (s *MongoSnapshotStore) GetDetail(ctx context.Context, repoName string) (*domain.RepoDetail, error) {
	var detail domain.RepoDetail
	err := s.details.FindOne(ctx, bson.M{"_id": repoName}).Decode(&detail)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to query detail for %s: %w", repoName, err)
	}
	return &detail, nil
}

// GetAllDetails returns every detail document keyed by repository name.
func (s *MongoSnapshotStore) GetAllDetails(ctx context.Context) (map[string]domain.RepoDetail, error) {
	cursor, err := s.details.Find(ctx, bson.D{})
	if err != nil {
		return nil, fmt.Errorf("failed to query details: %w", err)
	}
	var docs []domain.RepoDetail
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("failed to decode details: %w", err)
	}
	details := make(map[string]domain.RepoDetail, len(docs))
	for _, doc := range docs {
		details[doc.RepoName] = doc
	}
	return details, nil
}

// GetHistory returns the history points for one repository since the given
// date, ascending by date.
func (s *MongoSnapshotStore) GetHistory(ctx context.Context, repoName, since string) ([]domain.HistoryPoint, error) {
	filter := bson.M{"repo_name": repoName, "date": bson.M{"$gte": since}}
	opts := options.Find().SetSort(bson.D{{Key: "date", Value: 1}})
	cursor, err := s.history.Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to query history for %s: %w", repoName, err)
	}
	var points []domain.HistoryPoint
	if err := cursor.All(ctx, &points); err != nil {
		return nil, fmt.Errorf("failed to decode history for %s: %w", repoName, err)
	}
	return points, nil
}

// DeleteBefore removes daily rows and history points dated strictly before
// the cutoff and returns the number of documents removed. Detail documents
// are never touched: they are keyed by identity, not date.
func (s *MongoSnapshotStore) DeleteBefore(ctx context.Context, cutoff string) (int64, error) {
	filter := bson.M{"date": bson.M{"$lt": cutoff}}

	dailyRes, err := s.daily.DeleteMany(ctx, filter)
	if err != nil {
		return 0, fmt.Errorf("failed to delete old daily rows: %w", err)
	}
	historyRes, err := s.history.DeleteMany(ctx, filter)
	if err != nil {
		return dailyRes.DeletedCount, fmt.Errorf("failed to delete old history rows: %w", err)
	}
	return dailyRes.DeletedCount + historyRes.DeletedCount, nil
}

// AvailableDates returns the distinct snapshot dates, newest first, capped
// at limit.
func (s *MongoSnapshotStore) AvailableDates(ctx context.Context, limit int) ([]string, error) {
	raw, err := s.daily.Distinct(ctx, "date", bson.D{})
	if err != nil {
		return nil, fmt.Errorf("failed to list dates: %w", err)
	}
	dates := make([]string, 0, len(raw))
	for _, v := range raw {
		if d, ok := v.(string); ok {
			dates = append(dates, d)
		}
	}
	sort.Sort(sort.Reverse(sort.StringSlice(dates)))
	if limit > 0 && len(dates) > limit {
		dates = dates[:limit]
	}
	return dates, nil
}
