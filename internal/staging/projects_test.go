package staging

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/erazemk/stagehouse/internal/apperr"
	"github.com/erazemk/stagehouse/internal/model"
)

func TestCreateProject(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	start := time.Date(2024, 4, 1, 0, 0, 0, 0, time.UTC)
	end := start.AddDate(0, 1, 0)
	revenue := decimal.RequireFromString("2500.00")

	project, err := f.svc.CreateProject(ctx, f.alice, model.ProjectFields{
		Name:      "Harbor View",
		Address:   "1 Harbor View",
		StartDate: &start,
		EndDate:   &end,
		Revenue:   &revenue,
	})
	require.NoError(t, err)
	assert.Equal(t, model.ProjectStatusDraft, project.Status)
	assert.Equal(t, f.alice.UserID, project.OwnerID)
	assert.False(t, project.Highlighted)
	assert.False(t, project.InventoryAssigned)
	require.NotNil(t, project.Revenue)
	assert.True(t, project.Revenue.Equal(revenue))
	require.NotNil(t, project.StartDate)
	assert.True(t, project.StartDate.Equal(start))

	second := f.project(t, f.bob, "Second")
	assert.Greater(t, second.Priority, project.Priority)
}

func TestCreateProjectRejections(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	start := time.Date(2024, 4, 1, 0, 0, 0, 0, time.UTC)
	before := start.AddDate(0, 0, -1)

	_, err := f.svc.CreateProject(ctx, model.Identity{}, model.ProjectFields{Name: "x"})
	assert.True(t, apperr.Is(err, apperr.KindUnauthenticated))

	for _, fields := range []model.ProjectFields{
		{Name: ""},
		{Name: "x", Status: "archived"},
		{Name: "x", StartDate: &start, EndDate: &before},
	} {
		_, err := f.svc.CreateProject(ctx, f.alice, fields)
		assert.True(t, apperr.Is(err, apperr.KindInvariantViolation), "fields %+v", fields)
	}
}

func TestUpdateProject(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	project := f.project(t, f.alice, "Before")

	_, err := f.svc.UpdateProject(ctx, f.bob, project.ID, model.ProjectFields{Name: "Hijack"})
	assert.True(t, apperr.Is(err, apperr.KindUnauthorized))

	updated, err := f.svc.UpdateProject(ctx, f.alice, project.ID,
		model.ProjectFields{Name: "After", Status: model.ProjectStatusActive})
	require.NoError(t, err)
	assert.Equal(t, "After", updated.Name)
	assert.Equal(t, model.ProjectStatusActive, updated.Status)
	assert.Nil(t, updated.Revenue)

	byAdmin, err := f.svc.UpdateProject(ctx, f.admin, project.ID,
		model.ProjectFields{Name: "After", Status: model.ProjectStatusCompleted})
	require.NoError(t, err)
	assert.Equal(t, model.ProjectStatusCompleted, byAdmin.Status)
	assert.Equal(t, f.alice.UserID, byAdmin.OwnerID)
}

func TestProjectReadsRequireOwnership(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	project := f.project(t, f.alice, "Private")

	_, err := f.svc.GetProject(ctx, f.bob, project.ID)
	assert.True(t, apperr.Is(err, apperr.KindUnauthorized))
	_, err = f.svc.ListProjectImages(ctx, f.bob, project.ID)
	assert.True(t, apperr.Is(err, apperr.KindUnauthorized))
	_, err = f.svc.ListProjectAssignments(ctx, f.bob, project.ID, true)
	assert.True(t, apperr.Is(err, apperr.KindUnauthorized))

	_, err = f.svc.AddProjectImage(ctx, f.alice, project.ID, model.Image{Path: " "}, nil)
	assert.True(t, apperr.Is(err, apperr.KindInvariantViolation))
	_, err = f.svc.AddProjectImage(ctx, f.bob, project.ID, model.Image{Path: "https://img/p.jpg"}, nil)
	assert.True(t, apperr.Is(err, apperr.KindUnauthorized))
}
