package repository

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/m-mizutani/recall/pkg/interfaces"
	"github.com/m-mizutani/recall/pkg/model"
)

// Memory is an in-memory Repository for tests and the offline REPL
type Memory struct {
	mu sync.RWMutex

	Memories  map[model.IIN][]*model.ExistingMemoryRecord
	Messages  map[model.IIN]map[model.SessionID][]model.Message
	Events    map[model.IIN][]model.CalendarEvent
	Summaries map[model.IIN][]model.DaySummary
	Configs   map[model.IIN]map[string]any
}

var _ interfaces.Repository = &Memory{}

func NewMemory() *Memory {
	return &Memory{
		Memories:  map[model.IIN][]*model.ExistingMemoryRecord{},
		Messages:  map[model.IIN]map[model.SessionID][]model.Message{},
		Events:    map[model.IIN][]model.CalendarEvent{},
		Summaries: map[model.IIN][]model.DaySummary{},
		Configs:   map[model.IIN]map[string]any{},
	}
}

func (r *Memory) ListActiveMemories(_ context.Context, iin model.IIN) ([]*model.ExistingMemoryRecord, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var active []*model.ExistingMemoryRecord
	for _, rec := range r.Memories[iin] {
		if rec.Status == model.RecordStatusActive {
			active = append(active, rec)
		}
	}
	return active, nil
}

func (r *Memory) ListMessages(_ context.Context, iin model.IIN, session model.SessionID, limit int) ([]model.Message, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	msgs := r.Messages[iin][session]
	if len(msgs) > limit {
		msgs = msgs[len(msgs)-limit:]
	}
	out := make([]model.Message, len(msgs))
	copy(out, msgs)
	return out, nil
}

func (r *Memory) CountMessages(_ context.Context, iin model.IIN, session model.SessionID) (int, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.Messages[iin][session]), nil
}

func (r *Memory) ListEvents(_ context.Context, iin model.IIN, from, to time.Time, limit int) ([]model.CalendarEvent, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var events []model.CalendarEvent
	for _, ev := range r.Events[iin] {
		if !ev.StartsAt.Before(from) && ev.StartsAt.Before(to) {
			events = append(events, ev)
		}
	}
	sort.Slice(events, func(i, j int) bool {
		return events[i].StartsAt.Before(events[j].StartsAt)
	})
	if len(events) > limit {
		events = events[:limit]
	}
	return events, nil
}

func (r *Memory) ListDaySummaries(_ context.Context, iin model.IIN, days int) ([]model.DaySummary, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	summaries := make([]model.DaySummary, len(r.Summaries[iin]))
	copy(summaries, r.Summaries[iin])
	sort.Slice(summaries, func(i, j int) bool {
		return summaries[i].Date < summaries[j].Date
	})
	if len(summaries) > days {
		summaries = summaries[len(summaries)-days:]
	}
	return summaries, nil
}

func (r *Memory) GetStageConfig(_ context.Context, iin model.IIN) (map[string]any, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.Configs[iin], nil
}

func (r *Memory) SaveMessage(_ context.Context, iin model.IIN, session model.SessionID, msg model.Message) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.Messages[iin] == nil {
		r.Messages[iin] = map[model.SessionID][]model.Message{}
	}
	r.Messages[iin][session] = append(r.Messages[iin][session], msg)
	return nil
}
