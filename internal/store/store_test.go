package store

import (
	"context"
	"encoding/json"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/ppiankov/factline/internal/model"
)

func newTestStore(t *testing.T) Store {
	t.Helper()
	s, err := NewStore(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func testRecord(docID string, status model.DecisionStatus) *model.Record {
	rec := &model.Record{
		DocumentID: docID,
		Turns:      2,
		Facts: []model.Fact{
			{
				ID:         "f-0001",
				Kind:       model.KindMoney,
				Value:      model.FactValue{Money: &model.MoneyValue{Amount: 2_500_000, Currency: "USD"}},
				TurnIndex:  0,
				Start:      10,
				End:        15,
				SourceText: "$2.5M",
				SpeakerID:  "e-jaap",
				Confidence: 0.7,
			},
			{
				ID:         "f-0002",
				Kind:       model.KindPercent,
				Value:      model.FactValue{Percent: &model.PercentValue{Fraction: 1.5}},
				TurnIndex:  1,
				Start:      4,
				End:        8,
				SourceText: "150%",
				Confidence: 1.0,
			},
		},
		Entities: []model.Entity{
			{ID: "e-jaap", Name: "Jaap Vriesendorp", Role: model.RoleFounder, Aliases: []string{"JV"}},
		},
		Decision: model.Decision{Status: status},
	}
	if status == model.DecisionReview {
		rec.Contradictions = []model.Contradiction{
			{Rule: model.RuleGrowthConsistency, FactIDs: []string{"f-0002", "f-0001"}, Description: "growth mismatch", Retried: true},
		}
		rec.Decision.Contradictions = 1
	}
	return rec
}

func TestSaveAndGetRecord_RoundTrip(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	rec := testRecord("pitch-a", model.DecisionOK)
	require.NoError(t, s.SaveRecord(ctx, rec))

	got, err := s.GetRecord(ctx, "pitch-a")
	require.NoError(t, err)
	require.NotNil(t, got)

	want, err := json.Marshal(rec)
	require.NoError(t, err)
	have, err := json.Marshal(got)
	require.NoError(t, err)
	require.Equal(t, string(want), string(have), "stored record must round-trip byte-identical")
}

func TestGetRecord_Missing(t *testing.T) {
	s := newTestStore(t)

	got, err := s.GetRecord(context.Background(), "nope")
	require.NoError(t, err)
	require.Nil(t, got)
}

func TestSaveRecord_Idempotent(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	rec := testRecord("pitch-a", model.DecisionOK)
	require.NoError(t, s.SaveRecord(ctx, rec))

	// Re-save with fewer facts; the old rows must be replaced, not merged.
	rec.Facts = rec.Facts[:1]
	require.NoError(t, s.SaveRecord(ctx, rec))

	got, err := s.GetRecord(ctx, "pitch-a")
	require.NoError(t, err)
	require.Len(t, got.Facts, 1)

	stats, err := s.Stats(ctx)
	require.NoError(t, err)
	require.EqualValues(t, 1, stats.Documents)
	require.EqualValues(t, 1, stats.Facts)
}

func TestListDocuments_StatusFilter(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, s.SaveRecord(ctx, testRecord("pitch-a", model.DecisionOK)))
	require.NoError(t, s.SaveRecord(ctx, testRecord("pitch-b", model.DecisionReview)))
	require.NoError(t, s.SaveRecord(ctx, testRecord("pitch-c", model.DecisionOK)))

	all, err := s.ListDocuments(ctx, ListOpts{})
	require.NoError(t, err)
	require.Len(t, all, 3)
	require.Equal(t, "pitch-a", all[0].DocumentID)
	require.Equal(t, 2, all[0].Facts)
	require.Equal(t, 1, all[0].Entities)

	review, err := s.ListDocuments(ctx, ListOpts{Status: "review"})
	require.NoError(t, err)
	require.Len(t, review, 1)
	require.Equal(t, "pitch-b", review[0].DocumentID)
	require.Equal(t, 1, review[0].Contradictions)

	page, err := s.ListDocuments(ctx, ListOpts{Limit: 1, Offset: 1})
	require.NoError(t, err)
	require.Len(t, page, 1)
	require.Equal(t, "pitch-b", page[0].DocumentID)
}

func TestFactsByKind(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, s.SaveRecord(ctx, testRecord("pitch-b", model.DecisionOK)))
	require.NoError(t, s.SaveRecord(ctx, testRecord("pitch-a", model.DecisionOK)))

	money, err := s.FactsByKind(ctx, model.KindMoney, 0)
	require.NoError(t, err)
	require.Len(t, money, 2)
	require.Equal(t, "pitch-a", money[0].DocumentID, "ordered by document id")
	require.Equal(t, model.KindMoney, money[0].Fact.Kind)
	require.NotNil(t, money[0].Fact.Value.Money)
	require.InDelta(t, 2_500_000, money[0].Fact.Value.Money.Amount, 0.001)

	none, err := s.FactsByKind(ctx, model.KindDate, 0)
	require.NoError(t, err)
	require.Empty(t, none)
}

func TestDeleteRecord_Cascades(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, s.SaveRecord(ctx, testRecord("pitch-a", model.DecisionReview)))
	require.NoError(t, s.DeleteRecord(ctx, "pitch-a"))

	got, err := s.GetRecord(ctx, "pitch-a")
	require.NoError(t, err)
	require.Nil(t, got)

	stats, err := s.Stats(ctx)
	require.NoError(t, err)
	require.EqualValues(t, 0, stats.Documents)
	require.EqualValues(t, 0, stats.Facts)
	require.EqualValues(t, 0, stats.Entities)
	require.EqualValues(t, 0, stats.Flags)
}

func TestStats_ReportsSize(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, s.SaveRecord(ctx, testRecord("pitch-a", model.DecisionOK)))

	stats, err := s.Stats(ctx)
	require.NoError(t, err)
	require.EqualValues(t, 1, stats.Documents)
	require.EqualValues(t, 2, stats.Facts)
	require.EqualValues(t, 1, stats.Entities)
	require.Greater(t, stats.DBSizeBytes, int64(0))
}
