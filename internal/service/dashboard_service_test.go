package service

import (
	"testing"
	"time"

	"scriptaffiliator/internal/model"
	"scriptaffiliator/internal/repository"
	"scriptaffiliator/internal/testdb"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDashboard(t *testing.T) {
	db := testdb.New(t)
	user := createUser(t, db, "dash@example.com")
	products := []model.Product{{UserID: user.ID, Name: "A"}, {UserID: user.ID, Name: "B"}}
	require.NoError(t, repository.NewProductRepo(db).CreateBatch(products))

	now := time.Date(2026, 3, 10, 15, 0, 0, 0, time.UTC)
	scripts := []model.Script{
		{UserID: user.ID, ProductID: products[0].ID, Content: "today", IsPublish: true, CreatedAt: now.Add(-time.Hour)},
		{UserID: user.ID, ProductID: products[0].ID, Content: "today 2", CreatedAt: now.Add(-2 * time.Hour)},
		{UserID: user.ID, ProductID: products[1].ID, Content: "two days ago", CreatedAt: now.AddDate(0, 0, -2)},
		{UserID: user.ID, ProductID: products[1].ID, Content: "too old", CreatedAt: now.AddDate(0, 0, -30)},
	}
	require.NoError(t, repository.NewScriptRepo(db).CreateBatch(scripts))

	svc := NewDashboardService(repository.NewProductRepo(db), repository.NewScriptRepo(db)).(*dashboardService)
	svc.now = func() time.Time { return now }

	stats, err := svc.GetDashboardStats(user.ID.String())
	require.NoError(t, err)
	assert.EqualValues(t, 2, stats.TotalProducts)
	assert.EqualValues(t, 4, stats.TotalScripts)
	assert.EqualValues(t, 1, stats.PublishedScripts)

	points, err := svc.GetScriptActivity(user.ID.String(), 3)
	require.NoError(t, err)
	require.Len(t, points, 3)
	assert.Equal(t, ActivityPoint{Date: "2026-03-08", Generated: 1}, points[0])
	assert.Equal(t, ActivityPoint{Date: "2026-03-09"}, points[1])
	assert.Equal(t, ActivityPoint{Date: "2026-03-10", Generated: 2, Published: 1}, points[2])

	_, err = svc.GetDashboardStats("")
	assert.ErrorIs(t, err, ErrMissingUserID)
}
