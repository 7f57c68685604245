package job

import (
	"testing"

	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/go-jobboard/jobboard/internal/db/models"
)

// setupTestDB creates an in-memory SQLite database for testing.
func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err, "failed to create test database")

	err = db.AutoMigrate(&models.Job{})
	require.NoError(t, err, "failed to migrate test database")

	return db
}

// seedJobs inserts test data into the database.
func seedJobs(t *testing.T, db *gorm.DB, jobs []models.Job) {
	t.Helper()

	for i := range jobs {
		err := db.Create(&jobs[i]).Error
		require.NoError(t, err, "failed to seed test data")
	}
}

func TestCreate(t *testing.T) {
	db := setupTestDB(t)

	j := &models.Job{
		Title:       "Backend Engineer",
		Company:     "Acme",
		Description: "Build services",
		Type:        models.JobTypeFullTime,
		ApplyURL:    "https://acme.example/apply",
		OwnerID:     "user-1",
	}

	require.NoError(t, Create(db, j))
	assert.NotEmpty(t, j.ID, "Create should assign an id")

	got, err := GetByID(db, j.ID)
	require.NoError(t, err)
	assert.Equal(t, "Backend Engineer", got.Title)

	// owner is mandatory
	err = Create(db, &models.Job{Title: "x", Company: "y", Description: "z", ApplyURL: "u"})
	assert.ErrorIs(t, err, ErrOwnerIDEmpty)
}

func TestGetOwned(t *testing.T) {
	db := setupTestDB(t)

	seedJobs(t, db, []models.Job{
		{ID: "job-1", Title: "A", Company: "C", Description: "D", Type: models.JobTypeContract, ApplyURL: "u", OwnerID: "owner-a"},
	})

	testCases := []struct {
		name    string
		id      string
		ownerID string
		wantErr error
	}{
		{name: "found for owner", id: "job-1", ownerID: "owner-a"},
		{name: "hidden from other owner", id: "job-1", ownerID: "owner-b", wantErr: ErrJobNotFound},
		{name: "missing id", id: "", ownerID: "owner-a", wantErr: ErrJobIDEmpty},
		{name: "missing owner", id: "job-1", ownerID: "", wantErr: ErrOwnerIDEmpty},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := GetOwned(db, tc.id, tc.ownerID)
			if tc.wantErr != nil {
				assert.ErrorIs(t, err, tc.wantErr)
				return
			}

			require.NoError(t, err)
			assert.Equal(t, tc.id, got.ID)
		})
	}
}

func TestListPublic(t *testing.T) {
	db := setupTestDB(t)

	seedJobs(t, db, []models.Job{
		{ID: "j1", Title: "Go Developer", Company: "Acme", Description: "services", Type: models.JobTypeFullTime, ApplyURL: "u", OwnerID: "o1"},
		{ID: "j2", Title: "Designer", Company: "Initech", Description: "ui work", Type: models.JobTypePartTime, ApplyURL: "u", OwnerID: "o1"},
		{ID: "j3", Title: "Go Platform Lead", Company: "Globex", Description: "lead the platform", Type: models.JobTypeFullTime, ApplyURL: "u", OwnerID: "o2"},
	})

	testCases := []struct {
		name      string
		filter    Filter
		wantIDs   []string
		wantTotal int64
	}{
		{name: "no filter returns all", filter: Filter{}, wantIDs: []string{"j1", "j2", "j3"}, wantTotal: 3},
		{name: "search matches title", filter: Filter{Search: "go"}, wantIDs: []string{"j1", "j3"}, wantTotal: 2},
		{name: "type filter", filter: Filter{Type: models.JobTypePartTime}, wantIDs: []string{"j2"}, wantTotal: 1},
		{name: "search and type", filter: Filter{Search: "go", Type: models.JobTypeFullTime}, wantIDs: []string{"j1", "j3"}, wantTotal: 2},
		{name: "pagination limit", filter: Filter{Limit: 2}, wantTotal: 3},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			jobs, total, err := ListPublic(db, tc.filter)
			require.NoError(t, err)
			assert.Equal(t, tc.wantTotal, total)

			if tc.filter.Limit > 0 {
				assert.LessOrEqual(t, len(jobs), tc.filter.Limit)
				return
			}

			ids := make([]string, 0, len(jobs))
			for _, j := range jobs {
				ids = append(ids, j.ID)
			}

			assert.ElementsMatch(t, tc.wantIDs, ids)
		})
	}
}

func TestUpdate(t *testing.T) {
	db := setupTestDB(t)

	seedJobs(t, db, []models.Job{
		{ID: "job-1", Title: "Old", Company: "C", Description: "D", Type: models.JobTypeContract, ApplyURL: "u", OwnerID: "owner-a"},
	})

	j := &models.Job{ID: "job-1", Title: "New", Company: "C", Description: "D", Type: models.JobTypeContract, ApplyURL: "u"}

	// wrong owner cannot update
	assert.ErrorIs(t, Update(db, j, "owner-b"), ErrJobNotFound)

	require.NoError(t, Update(db, j, "owner-a"))

	got, err := GetByID(db, "job-1")
	require.NoError(t, err)
	assert.Equal(t, "New", got.Title)
}

func TestDelete(t *testing.T) {
	db := setupTestDB(t)

	seedJobs(t, db, []models.Job{
		{ID: "job-1", Title: "A", Company: "C", Description: "D", Type: models.JobTypeContract, ApplyURL: "u", OwnerID: "owner-a"},
	})

	assert.ErrorIs(t, Delete(db, "job-1", "owner-b"), ErrJobNotFound)
	require.NoError(t, Delete(db, "job-1", "owner-a"))

	_, err := GetByID(db, "job-1")
	assert.ErrorIs(t, err, ErrJobNotFound)
}

func TestListByOwner(t *testing.T) {
	db := setupTestDB(t)

	seedJobs(t, db, []models.Job{
		{ID: "j1", Title: "A", Company: "C", Description: "D", Type: models.JobTypeContract, ApplyURL: "u", OwnerID: "o1"},
		{ID: "j2", Title: "B", Company: "C", Description: "D", Type: models.JobTypeContract, ApplyURL: "u", OwnerID: "o2"},
	})

	jobs, err := ListByOwner(db, "o1")
	require.NoError(t, err)
	require.Len(t, jobs, 1)
	assert.Equal(t, "j1", jobs[0].ID)
}
