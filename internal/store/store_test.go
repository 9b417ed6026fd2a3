package store

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/verte-zerg/cryptology/internal/model"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	st, err := Open(filepath.Join(t.TempDir(), "nested", "history.db"))
	require.NoError(t, err)
	t.Cleanup(func() {
		_ = st.Close()
	})
	return st
}

func testRun(cipher string, minute int) model.RunRecord {
	start := time.Unix(0, 0).UTC().Add(time.Duration(minute) * time.Minute)
	end := start.Add(250 * time.Millisecond)
	return model.RunRecord{
		Cipher:      cipher,
		Fingerprint: Fingerprint(cipher),
		Key:         "KEY",
		KeyLength:   3,
		ChiSquare:   21.5,
		Letters:     593,
		Lines:       1,
		StartedAt:   start,
		EndedAt:     end,
		DurationMs:  end.Sub(start).Milliseconds(),
	}
}

func TestFingerprint(t *testing.T) {
	a := Fingerprint("attack at dawn")
	assert.Len(t, a, 64)
	assert.Equal(t, a, Fingerprint("attack at dawn"))
	assert.NotEqual(t, a, Fingerprint("attack at dusk"))
}

func TestInsertAndListRuns(t *testing.T) {
	st := openTestStore(t)
	ctx := context.Background()

	var lastID string
	for i := 0; i < 3; i++ {
		cands := []model.CandidateScore{
			{Candidate: 2, Key: "KE", Score: 80.25},
			{Candidate: 3, Key: "KEY", Score: 21.5},
		}
		id, err := st.InsertRun(ctx, testRun(model.CipherVigenere, i), cands)
		require.NoError(t, err)
		_, err = uuid.Parse(id)
		require.NoError(t, err)
		lastID = id
	}
	_, err := st.InsertRun(ctx, testRun(model.CipherCaesar, 10), nil)
	require.NoError(t, err)

	all, err := st.ListRuns(ctx, model.HistoryConfig{})
	require.NoError(t, err)
	require.Len(t, all, 4)
	assert.Equal(t, model.CipherCaesar, all[3].Cipher)
	assert.True(t, all[0].EndedAt.Before(all[1].EndedAt))

	vig, err := st.ListRuns(ctx, model.HistoryConfig{Cipher: model.CipherVigenere, Last: 2})
	require.NoError(t, err)
	require.Len(t, vig, 2)
	assert.Equal(t, lastID, vig[1].ID)
	assert.Equal(t, "KEY", vig[1].Key)
	assert.Equal(t, int64(250), vig[1].DurationMs)

	since := time.Unix(0, 0).UTC().Add(5 * time.Minute)
	recent, err := st.ListRuns(ctx, model.HistoryConfig{Since: &since})
	require.NoError(t, err)
	require.Len(t, recent, 1)

	cands, err := st.ListCandidates(ctx, lastID)
	require.NoError(t, err)
	require.Len(t, cands, 2)
	assert.Equal(t, 2, cands[0].Candidate)
	assert.Equal(t, "KEY", cands[1].Key)

	n, err := st.CountByFingerprint(ctx, Fingerprint(model.CipherVigenere))
	require.NoError(t, err)
	assert.Equal(t, 3, n)
}

func TestListRunsOrdersWithinSecond(t *testing.T) {
	st := openTestStore(t)
	ctx := context.Background()
	base := time.Date(2024, 3, 1, 12, 0, 1, 0, time.UTC)

	whole := testRun(model.CipherCaesar, 0)
	whole.Key = "WHOLE"
	whole.EndedAt = base
	half := testRun(model.CipherCaesar, 0)
	half.Key = "HALF"
	half.EndedAt = base.Add(500 * time.Millisecond)
	for _, run := range []model.RunRecord{whole, half} {
		_, err := st.InsertRun(ctx, run, nil)
		require.NoError(t, err)
	}

	runs, err := st.ListRuns(ctx, model.HistoryConfig{})
	require.NoError(t, err)
	require.Len(t, runs, 2)
	assert.Equal(t, "WHOLE", runs[0].Key)
	assert.Equal(t, "HALF", runs[1].Key)
	assert.True(t, runs[1].EndedAt.Equal(half.EndedAt))

	since := base.Add(200 * time.Millisecond)
	runs, err = st.ListRuns(ctx, model.HistoryConfig{Since: &since})
	require.NoError(t, err)
	require.Len(t, runs, 1)
	assert.Equal(t, "HALF", runs[0].Key)
}

func TestInsertRunKeepsGivenID(t *testing.T) {
	st := openTestStore(t)
	run := testRun(model.CipherCaesar, 0)
	run.ID = "fixed-id"
	id, err := st.InsertRun(context.Background(), run, nil)
	require.NoError(t, err)
	assert.Equal(t, "fixed-id", id)

	_, err = st.InsertRun(context.Background(), run, nil)
	assert.Error(t, err, "duplicate id must fail")
}
