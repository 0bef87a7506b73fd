package jobstore

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/ternarybob/arbor"
	"github.com/ternarybob/indago/internal/models"
)

func testStore() *Store {
	return New(DefaultRetention, arbor.NewLogger())
}

func newJob(url string) *models.ResearchJob {
	options := models.ResearchOptions{}
	options.Normalize(20)
	return models.NewResearchJob(url, "2756", "", "de", options, "203.0.113.9")
}

func TestCreateAndGet(t *testing.T) {
	store := testStore()
	job := newJob("https://example.com")

	require.NoError(t, store.Create(job, nil))

	got, ok := store.Get(job.ID)
	require.True(t, ok)
	assert.Equal(t, job.ID, got.ID)
	assert.Equal(t, models.JobStatusProcessing, got.Status)
	assert.Equal(t, 1, store.Count())
}

func TestGetReturnsSnapshot(t *testing.T) {
	store := testStore()
	job := newJob("https://example.com")
	require.NoError(t, store.Create(job, nil))

	first, ok := store.Get(job.ID)
	require.True(t, ok)
	first.Progress = 99
	first.Warnings = append(first.Warnings, "mutated copy")

	second, ok := store.Get(job.ID)
	require.True(t, ok)
	assert.Equal(t, 0, second.Progress)
	assert.Empty(t, second.Warnings)
}

func TestCreateRejectsDuplicateID(t *testing.T) {
	store := testStore()
	job := newJob("https://example.com")

	require.NoError(t, store.Create(job, nil))
	err := store.Create(job, nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "already exists")
}

func TestCreateRejectsMissingID(t *testing.T) {
	store := testStore()

	require.Error(t, store.Create(nil, nil))
	require.Error(t, store.Create(&models.ResearchJob{}, nil))
}

func TestUpdateMutatesStoredJob(t *testing.T) {
	store := testStore()
	job := newJob("https://example.com")
	require.NoError(t, store.Create(job, nil))

	ok := store.Update(job.ID, func(j *models.ResearchJob) {
		j.SetProgress(30, models.StepExtracting)
	})
	require.True(t, ok)

	got, ok := store.Get(job.ID)
	require.True(t, ok)
	assert.Equal(t, 30, got.Progress)
	assert.Equal(t, models.StepExtracting, got.Step)
}

func TestUpdateUnknownJob(t *testing.T) {
	store := testStore()
	assert.False(t, store.Update("missing", func(j *models.ResearchJob) {}))
}

func TestCancelFiresContextAndRemoves(t *testing.T) {
	store := testStore()
	job := newJob("https://example.com")
	ctx, cancel := context.WithCancel(context.Background())
	require.NoError(t, store.Create(job, cancel))

	require.True(t, store.Cancel(job.ID))

	select {
	case <-ctx.Done():
	default:
		t.Fatal("job context was not cancelled")
	}

	_, ok := store.Get(job.ID)
	assert.False(t, ok)
	assert.False(t, store.Cancel(job.ID))
}

func TestDeleteRemovesWithoutMarking(t *testing.T) {
	store := testStore()
	job := newJob("https://example.com")
	ctx, cancel := context.WithCancel(context.Background())
	require.NoError(t, store.Create(job, cancel))

	require.True(t, store.Delete(job.ID))

	// The context is still released so it does not leak.
	select {
	case <-ctx.Done():
	default:
		t.Fatal("job context was not released")
	}

	_, ok := store.Get(job.ID)
	assert.False(t, ok)
	assert.False(t, store.Delete(job.ID))
}

func TestSweepRemovesExpiredJobs(t *testing.T) {
	store := testStore()
	old := newJob("https://old.example.com")
	fresh := newJob("https://fresh.example.com")
	require.NoError(t, store.Create(old, nil))
	require.NoError(t, store.Create(fresh, nil))

	store.Update(old.ID, func(j *models.ResearchJob) {
		j.CreatedAt = time.Now().Add(-25 * time.Hour)
	})

	removed := store.Sweep()
	assert.Equal(t, 1, removed)

	_, ok := store.Get(old.ID)
	assert.False(t, ok)
	_, ok = store.Get(fresh.ID)
	assert.True(t, ok)
}

func TestCreateSweepsExpiredJobs(t *testing.T) {
	store := testStore()
	old := newJob("https://old.example.com")
	require.NoError(t, store.Create(old, nil))
	store.Update(old.ID, func(j *models.ResearchJob) {
		j.CreatedAt = time.Now().Add(-25 * time.Hour)
	})

	require.NoError(t, store.Create(newJob("https://fresh.example.com"), nil))

	_, ok := store.Get(old.ID)
	assert.False(t, ok)
	assert.Equal(t, 1, store.Count())
}

func TestSweepCancelsExpiredProcessingJobs(t *testing.T) {
	store := testStore()
	job := newJob("https://stuck.example.com")
	ctx, cancel := context.WithCancel(context.Background())
	require.NoError(t, store.Create(job, cancel))
	store.Update(job.ID, func(j *models.ResearchJob) {
		j.CreatedAt = time.Now().Add(-25 * time.Hour)
	})

	assert.Equal(t, 1, store.Sweep())

	select {
	case <-ctx.Done():
	default:
		t.Fatal("expired job context was not cancelled")
	}
}

func TestListNewestFirst(t *testing.T) {
	store := testStore()

	oldest := newJob("https://a.example.com")
	middle := newJob("https://b.example.com")
	newest := newJob("https://c.example.com")
	for _, job := range []*models.ResearchJob{oldest, middle, newest} {
		require.NoError(t, store.Create(job, nil))
	}
	store.Update(oldest.ID, func(j *models.ResearchJob) {
		j.CreatedAt = time.Now().Add(-2 * time.Hour)
	})
	store.Update(middle.ID, func(j *models.ResearchJob) {
		j.CreatedAt = time.Now().Add(-time.Hour)
	})

	jobs := store.List()
	require.Len(t, jobs, 3)
	assert.Equal(t, newest.ID, jobs[0].ID)
	assert.Equal(t, middle.ID, jobs[1].ID)
	assert.Equal(t, oldest.ID, jobs[2].ID)
}
