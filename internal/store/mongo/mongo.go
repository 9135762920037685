// Package mongo implementa core.Repository sobre MongoDB.
package mongo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"

	"github.com/fjcanyue/smart-survey/internal/store/core"
)

type Store struct {
	client  *mongo.Client
	surveys *mongo.Collection
	results *mongo.Collection
}

var _ core.Repository = (*Store)(nil)

// surveyDoc guarda el JSON como string para conservarlo tal cual.
type surveyDoc struct {
	ID         string    `bson:"_id"`
	Title      string    `bson:"title"`
	JSON       string    `bson:"json"`
	ThemeType  string    `bson:"themeType"`
	OwnerID    *string   `bson:"ownerId"`
	OwnerEmail *string   `bson:"ownerEmail"`
	CreatedAt  time.Time `bson:"createdAt"`
	UpdatedAt  time.Time `bson:"updatedAt"`
}

type resultDoc struct {
	ID        string    `bson:"_id"`
	SurveyID  string    `bson:"surveyId"`
	Data      string    `bson:"data"`
	CreatedAt time.Time `bson:"createdAt"`
}

func New(ctx context.Context, uri, database string) (*Store, error) {
	if uri == "" {
		return nil, errors.New("mongo: uri requerida")
	}
	opts := options.Client().ApplyURI(uri).SetServerAPIOptions(options.ServerAPI(options.ServerAPIVersion1))
	client, err := mongo.Connect(ctx, opts)
	if err != nil {
		return nil, fmt.Errorf("mongo connect: %w", err)
	}
	if err := client.Ping(ctx, readpref.Primary()); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("mongo ping: %w", err)
	}

	db := client.Database(database)
	s := &Store{client: client, surveys: db.Collection("surveys"), results: db.Collection("results")}
	if err := s.ensureIndexes(ctx); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, err
	}
	return s, nil
}

func (s *Store) ensureIndexes(ctx context.Context) error {
	if _, err := s.surveys.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{{Key: "ownerId", Value: 1}, {Key: "createdAt", Value: -1}},
	}); err != nil {
		return fmt.Errorf("mongo index surveys: %w", err)
	}
	if _, err := s.results.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{{Key: "surveyId", Value: 1}, {Key: "createdAt", Value: -1}},
	}); err != nil {
		return fmt.Errorf("mongo index results: %w", err)
	}
	return nil
}

func (s *Store) Ping(ctx context.Context) error { return s.client.Ping(ctx, readpref.Primary()) }

func (s *Store) Close() error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return s.client.Disconnect(ctx)
}

func toSurveyDoc(sv *core.Survey) surveyDoc {
	return surveyDoc{
		ID:         sv.ID,
		Title:      sv.Title,
		JSON:       string(sv.JSON),
		ThemeType:  sv.ThemeType,
		OwnerID:    sv.OwnerID,
		OwnerEmail: sv.OwnerEmail,
		CreatedAt:  sv.CreatedAt,
		UpdatedAt:  sv.UpdatedAt,
	}
}

func (d surveyDoc) survey() core.Survey {
	return core.Survey{
		ID:         d.ID,
		Title:      d.Title,
		JSON:       []byte(d.JSON),
		ThemeType:  d.ThemeType,
		OwnerID:    d.OwnerID,
		OwnerEmail: d.OwnerEmail,
		CreatedAt:  d.CreatedAt.UTC(),
		UpdatedAt:  d.UpdatedAt.UTC(),
	}
}

func (s *Store) CreateSurvey(ctx context.Context, sv *core.Survey) error {
	now := time.Now().UTC()
	if sv.CreatedAt.IsZero() {
		sv.CreatedAt = now
	}
	sv.UpdatedAt = now
	_, err := s.surveys.InsertOne(ctx, toSurveyDoc(sv))
	if mongo.IsDuplicateKeyError(err) {
		return core.ErrConflict
	}
	return err
}

func (s *Store) UpdateSurvey(ctx context.Context, sv *core.Survey) error {
	sv.UpdatedAt = time.Now().UTC()
	owners := bson.A{nil}
	if sv.OwnerID != nil {
		owners = append(owners, *sv.OwnerID)
	}
	filter := bson.M{"_id": sv.ID, "ownerId": bson.M{"$in": owners}}
	res, err := s.surveys.UpdateOne(ctx, filter, bson.M{"$set": bson.M{
		"title":      sv.Title,
		"json":       string(sv.JSON),
		"themeType":  sv.ThemeType,
		"ownerId":    sv.OwnerID,
		"ownerEmail": sv.OwnerEmail,
		"updatedAt":  sv.UpdatedAt,
	}})
	if err != nil {
		return err
	}
	if res.MatchedCount > 0 {
		return nil
	}
	n, err := s.surveys.CountDocuments(ctx, bson.M{"_id": sv.ID})
	if err != nil {
		return err
	}
	if n > 0 {
		return core.ErrOwned
	}
	return core.ErrNotFound
}

func (s *Store) GetSurvey(ctx context.Context, id string) (*core.Survey, error) {
	var doc surveyDoc
	if err := s.surveys.FindOne(ctx, bson.M{"_id": id}).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, core.ErrNotFound
		}
		return nil, err
	}
	sv := doc.survey()
	return &sv, nil
}

func (s *Store) ListSurveysByOwner(ctx context.Context, ownerID string, limit, offset int) ([]core.Survey, int, error) {
	filter := bson.M{"ownerId": ownerID}
	total, err := s.surveys.CountDocuments(ctx, filter)
	if err != nil {
		return nil, 0, err
	}
	opts := options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}}).SetSkip(int64(offset))
	if limit > 0 {
		opts.SetLimit(int64(limit))
	}
	cur, err := s.surveys.Find(ctx, filter, opts)
	if err != nil {
		return nil, 0, err
	}
	var docs []surveyDoc
	if err := cur.All(ctx, &docs); err != nil {
		return nil, 0, err
	}
	out := make([]core.Survey, 0, len(docs))
	for _, d := range docs {
		out = append(out, d.survey())
	}
	return out, int(total), nil
}

// DeleteSurvey no usa transacción (un standalone no las soporta). Si falla
// entre pasos la encuesta queda sin resultados, nunca al revés.
func (s *Store) DeleteSurvey(ctx context.Context, id string) error {
	if _, err := s.GetSurvey(ctx, id); err != nil {
		return err
	}
	if _, err := s.results.DeleteMany(ctx, bson.M{"surveyId": id}); err != nil {
		return err
	}
	res, err := s.surveys.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return core.ErrNotFound
	}
	return nil
}

func (s *Store) CreateResult(ctx context.Context, r *core.Result) error {
	if r.CreatedAt.IsZero() {
		r.CreatedAt = time.Now().UTC()
	}
	_, err := s.results.InsertOne(ctx, resultDoc{
		ID:        r.ID,
		SurveyID:  r.SurveyID,
		Data:      string(r.Data),
		CreatedAt: r.CreatedAt,
	})
	if mongo.IsDuplicateKeyError(err) {
		return core.ErrConflict
	}
	return err
}

func (s *Store) ListResults(ctx context.Context, surveyID string, limit, offset int) ([]core.Result, error) {
	opts := options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}}).SetSkip(int64(offset))
	if limit > 0 {
		opts.SetLimit(int64(limit))
	}
	cur, err := s.results.Find(ctx, bson.M{"surveyId": surveyID}, opts)
	if err != nil {
		return nil, err
	}
	var docs []resultDoc
	if err := cur.All(ctx, &docs); err != nil {
		return nil, err
	}
	out := make([]core.Result, 0, len(docs))
	for _, d := range docs {
		out = append(out, core.Result{ID: d.ID, SurveyID: d.SurveyID, Data: []byte(d.Data), CreatedAt: d.CreatedAt.UTC()})
	}
	return out, nil
}

func (s *Store) ResultStats(ctx context.Context, surveyID string) (core.ResultStats, error) {
	filter := bson.M{"surveyId": surveyID}
	total, err := s.results.CountDocuments(ctx, filter)
	if err != nil {
		return core.ResultStats{}, err
	}
	st := core.ResultStats{Total: int(total)}

	var latest resultDoc
	err = s.results.FindOne(ctx, filter, options.FindOne().SetSort(bson.D{{Key: "createdAt", Value: -1}})).Decode(&latest)
	switch {
	case errors.Is(err, mongo.ErrNoDocuments):
	case err != nil:
		return st, err
	default:
		t := latest.CreatedAt.UTC()
		st.LatestSubmission = &t
	}
	return st, nil
}
