package repository

import (
	"context"
	"time"

	"cloud.google.com/go/firestore"
	firestorepb "cloud.google.com/go/firestore/apiv1/firestorepb"
	"github.com/m-mizutani/goerr/v2"
	"github.com/m-mizutani/recall/pkg/interfaces"
	"github.com/m-mizutani/recall/pkg/model"
	"google.golang.org/api/iterator"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

const (
	collUsers     = "users"
	collMemories  = "memories"
	collSessions  = "sessions"
	collMessages  = "messages"
	collEvents    = "events"
	collSummaries = "day_summaries"
	collConfigs   = "configs"
)

// firestoreRepo implements Repository using Firestore
type firestoreRepo struct {
	client *firestore.Client
}

// NewFirestore creates a new Firestore repository
func NewFirestore(ctx context.Context, projectID, databaseName string) (interfaces.Repository, error) {
	client, err := firestore.NewClientWithDatabase(ctx, projectID, databaseName)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to create firestore client")
	}
	return &firestoreRepo{client: client}, nil
}

func (r *firestoreRepo) user(iin model.IIN) *firestore.DocumentRef {
	return r.client.Collection(collUsers).Doc(string(iin))
}

func (r *firestoreRepo) ListActiveMemories(ctx context.Context, iin model.IIN) ([]*model.ExistingMemoryRecord, error) {
	iter := r.user(iin).Collection(collMemories).
		Where("status", "==", string(model.RecordStatusActive)).
		Documents(ctx)
	defer iter.Stop()

	var records []*model.ExistingMemoryRecord
	for {
		doc, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, goerr.Wrap(model.ErrPersistence, "failed to list memories", goerr.V("iin", iin))
		}

		var rec model.ExistingMemoryRecord
		if err := doc.DataTo(&rec); err != nil {
			return nil, goerr.Wrap(model.ErrPersistence, "failed to decode memory record", goerr.V("doc", doc.Ref.ID))
		}
		rec.ID = model.MemoryID(doc.Ref.ID)
		records = append(records, &rec)
	}
	return records, nil
}

func (r *firestoreRepo) ListMessages(ctx context.Context, iin model.IIN, session model.SessionID, limit int) ([]model.Message, error) {
	iter := r.user(iin).Collection(collSessions).Doc(string(session)).Collection(collMessages).
		OrderBy("createdAt", firestore.Desc).
		Limit(limit).
		Documents(ctx)
	defer iter.Stop()

	var msgs []model.Message
	for {
		doc, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, goerr.Wrap(model.ErrPersistence, "failed to list messages", goerr.V("session", session))
		}

		var msg model.Message
		if err := doc.DataTo(&msg); err != nil {
			return nil, goerr.Wrap(model.ErrPersistence, "failed to decode message", goerr.V("doc", doc.Ref.ID))
		}
		msgs = append(msgs, msg)
	}

	// Query runs newest-first for the limit; callers want oldest-first
	for i, j := 0, len(msgs)-1; i < j; i, j = i+1, j-1 {
		msgs[i], msgs[j] = msgs[j], msgs[i]
	}
	return msgs, nil
}

func (r *firestoreRepo) CountMessages(ctx context.Context, iin model.IIN, session model.SessionID) (int, error) {
	coll := r.user(iin).Collection(collSessions).Doc(string(session)).Collection(collMessages)
	results, err := coll.NewAggregationQuery().WithCount("count").Get(ctx)
	if err != nil {
		return 0, goerr.Wrap(model.ErrPersistence, "failed to count messages", goerr.V("session", session))
	}

	count, ok := results["count"].(*firestorepb.Value)
	if !ok {
		return 0, goerr.Wrap(model.ErrPersistence, "count aggregation returned no value")
	}
	return int(count.GetIntegerValue()), nil
}

func (r *firestoreRepo) ListEvents(ctx context.Context, iin model.IIN, from, to time.Time, limit int) ([]model.CalendarEvent, error) {
	iter := r.user(iin).Collection(collEvents).
		Where("startsAt", ">=", from).
		Where("startsAt", "<", to).
		OrderBy("startsAt", firestore.Asc).
		Limit(limit).
		Documents(ctx)
	defer iter.Stop()

	var events []model.CalendarEvent
	for {
		doc, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, goerr.Wrap(model.ErrPersistence, "failed to list events", goerr.V("iin", iin))
		}

		var ev model.CalendarEvent
		if err := doc.DataTo(&ev); err != nil {
			return nil, goerr.Wrap(model.ErrPersistence, "failed to decode event", goerr.V("doc", doc.Ref.ID))
		}
		events = append(events, ev)
	}
	return events, nil
}

func (r *firestoreRepo) ListDaySummaries(ctx context.Context, iin model.IIN, days int) ([]model.DaySummary, error) {
	iter := r.user(iin).Collection(collSummaries).
		OrderBy("date", firestore.Desc).
		Limit(days).
		Documents(ctx)
	defer iter.Stop()

	var summaries []model.DaySummary
	for {
		doc, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, goerr.Wrap(model.ErrPersistence, "failed to list day summaries", goerr.V("iin", iin))
		}

		var s model.DaySummary
		if err := doc.DataTo(&s); err != nil {
			return nil, goerr.Wrap(model.ErrPersistence, "failed to decode day summary", goerr.V("doc", doc.Ref.ID))
		}
		summaries = append(summaries, s)
	}

	// Newest-first query, oldest-first contract
	for i, j := 0, len(summaries)-1; i < j; i, j = i+1, j-1 {
		summaries[i], summaries[j] = summaries[j], summaries[i]
	}
	return summaries, nil
}

func (r *firestoreRepo) GetStageConfig(ctx context.Context, iin model.IIN) (map[string]any, error) {
	doc, err := r.client.Collection(collConfigs).Doc(string(iin)).Get(ctx)
	if status.Code(err) == codes.NotFound {
		// Fall back to the shared default document
		doc, err = r.client.Collection(collConfigs).Doc("default").Get(ctx)
		if status.Code(err) == codes.NotFound {
			return nil, nil
		}
	}
	if err != nil {
		return nil, goerr.Wrap(model.ErrConfigLoad, "failed to get stage config", goerr.V("iin", iin))
	}
	return doc.Data(), nil
}

func (r *firestoreRepo) SaveMessage(ctx context.Context, iin model.IIN, session model.SessionID, msg model.Message) error {
	coll := r.user(iin).Collection(collSessions).Doc(string(session)).Collection(collMessages)
	if _, _, err := coll.Add(ctx, msg); err != nil {
		return goerr.Wrap(model.ErrPersistence, "failed to save message", goerr.V("session", session))
	}
	return nil
}
