package services

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/javajoker/storefront-backend/internal/models"
	"github.com/javajoker/storefront-backend/internal/testutil"
)

func slideRequest(title string, position int, active bool) *HeroSlideRequest {
	return &HeroSlideRequest{
		Title:     title,
		MediaURL:  "/uploads/hero/" + title + ".jpg",
		MediaType: models.MediaTypeImage,
		Position:  position,
		IsActive:  active,
	}
}

func TestHeroSlidesOrderingAndVisibility(t *testing.T) {
	db := testutil.NewDB(t)
	svc := NewContentService(db, NewNotificationService(testConfig()))
	ctx := context.Background()

	first, err := svc.CreateHeroSlide(ctx, slideRequest("first", 0, true))
	require.NoError(t, err)
	second, err := svc.CreateHeroSlide(ctx, slideRequest("second", 1, true))
	require.NoError(t, err)
	hidden, err := svc.CreateHeroSlide(ctx, slideRequest("hidden", 2, false))
	require.NoError(t, err)

	public, err := svc.HeroSlides(ctx, false)
	require.NoError(t, err)
	require.Len(t, public, 2)
	assert.Equal(t, first.ID, public[0].ID)

	require.NoError(t, svc.ReorderHeroSlides(ctx, &ReorderSlidesRequest{IDs: []uuid.UUID{hidden.ID, second.ID, first.ID}}))

	all, err := svc.HeroSlides(ctx, true)
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, []uuid.UUID{hidden.ID, second.ID, first.ID}, []uuid.UUID{all[0].ID, all[1].ID, all[2].ID})

	_, err = svc.CreateHeroSlide(ctx, &HeroSlideRequest{Title: "bad", MediaURL: "/x.gif", MediaType: "gif"})
	assert.Error(t, err)

	require.NoError(t, svc.DeleteHeroSlide(ctx, hidden.ID))
	assert.ErrorIs(t, svc.DeleteHeroSlide(ctx, hidden.ID), ErrNotFound)
}

func TestSTLModelDownloadCounts(t *testing.T) {
	db := testutil.NewDB(t)
	svc := NewContentService(db, NewNotificationService(testConfig()))
	ctx := context.Background()

	item, err := svc.CreateSTLModel(ctx, &STLModelRequest{
		Name:     "Vase",
		Price:    dec("0"),
		FileURL:  "/uploads/stl/vase.stl",
		IsActive: true,
	})
	require.NoError(t, err)

	for i := 0; i < 2; i++ {
		url, err := svc.DownloadSTLModel(ctx, item.ID)
		require.NoError(t, err)
		assert.Equal(t, "/uploads/stl/vase.stl", url)
	}

	reloaded, err := svc.STLModel(ctx, item.ID, false)
	require.NoError(t, err)
	assert.EqualValues(t, 2, reloaded.DownloadCount)

	req := &STLModelRequest{Name: "Vase", Price: dec("0"), FileURL: "/uploads/stl/vase.stl"}
	_, err = svc.UpdateSTLModel(ctx, item.ID, req)
	require.NoError(t, err)

	_, err = svc.DownloadSTLModel(ctx, item.ID)
	assert.ErrorIs(t, err, ErrNotFound)

	public, total, err := svc.STLModels(ctx, STLModelFilters{PaginationParams: firstPage})
	require.NoError(t, err)
	assert.Zero(t, total)
	assert.Empty(t, public)

	_, total, err = svc.STLModels(ctx, STLModelFilters{PaginationParams: firstPage, IncludeInactive: true})
	require.NoError(t, err)
	assert.EqualValues(t, 1, total)
}

func TestContactMessagesAreForwarded(t *testing.T) {
	db := testutil.NewDB(t)
	mailer := newRecordingMailer()
	svc := NewContentService(db, NewNotificationService(testConfig()).WithMailer(mailer))
	ctx := context.Background()

	settings, err := svc.ContactSettings(ctx)
	require.NoError(t, err)
	assert.Empty(t, settings.Email)

	_, err = svc.UpdateContactSettings(ctx, &ContactSettingsRequest{Email: "inbox@example.com", Phone: "+90 555"})
	require.NoError(t, err)
	_, err = svc.UpdateContactSettings(ctx, &ContactSettingsRequest{Email: "inbox@example.com", Phone: "+90 444"})
	require.NoError(t, err)

	var rows int64
	require.NoError(t, db.Model(&models.ContactSettings{}).Count(&rows).Error)
	assert.EqualValues(t, 1, rows)

	msg, err := svc.SubmitContactMessage(ctx, &ContactMessageRequest{
		Name:    "Deniz",
		Email:   "deniz@example.com",
		Subject: "Toptan",
		Message: "Toptan fiyat alabilir miyim?",
	})
	require.NoError(t, err)

	select {
	case <-mailer.sent:
	case <-time.After(2 * time.Second):
		t.Fatal("contact message was not forwarded")
	}
	assert.Equal(t, []string{"inbox@example.com"}, mailer.last(t).GetHeader("To"))

	unread, total, err := svc.ContactMessages(ctx, firstPage, true)
	require.NoError(t, err)
	assert.EqualValues(t, 1, total)
	assert.Equal(t, msg.ID, unread[0].ID)

	require.NoError(t, svc.MarkContactMessageRead(ctx, msg.ID, true))
	_, total, err = svc.ContactMessages(ctx, firstPage, true)
	require.NoError(t, err)
	assert.Zero(t, total)

	assert.ErrorIs(t, svc.MarkContactMessageRead(ctx, uuid.New(), true), ErrNotFound)

	_, err = svc.SubmitContactMessage(ctx, &ContactMessageRequest{Name: "D", Email: "nope", Message: "hi"})
	assert.Error(t, err)
}
