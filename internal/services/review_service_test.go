package services

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/javajoker/storefront-backend/internal/models"
	"github.com/javajoker/storefront-backend/internal/testutil"
	"github.com/javajoker/storefront-backend/internal/utils"
)

var firstPage = utils.PaginationParams{Page: 1, Limit: 20}

func productRating(t *testing.T, svc *ProductService, id uuid.UUID) float64 {
	t.Helper()

	product, err := svc.Get(context.Background(), id, true)
	require.NoError(t, err)
	return product.Rating
}

func TestReviewModerationDrivesRating(t *testing.T) {
	db := testutil.NewDB(t)
	products := NewProductService(db)
	svc := NewReviewService(db, products)
	ctx := context.Background()

	product := createProduct(t, db, "Planter", "30", 5)
	alice := createUser(t, db, "alice@example.com", models.UserRoleCustomer)
	bob := createUser(t, db, "bob@example.com", models.UserRoleCustomer)

	first, err := svc.CreateReview(ctx, alice.ID, product.ID, &CreateReviewRequest{Rating: 5, Comment: " Lovely "})
	require.NoError(t, err)
	assert.False(t, first.IsApproved)
	assert.Equal(t, "Lovely", first.Comment)

	second, err := svc.CreateReview(ctx, bob.ID, product.ID, &CreateReviewRequest{Rating: 2})
	require.NoError(t, err)

	// pending reviews are hidden and do not count
	reviews, total, err := svc.ProductReviews(ctx, product.ID, firstPage)
	require.NoError(t, err)
	assert.Zero(t, total)
	assert.Empty(t, reviews)
	assert.Zero(t, productRating(t, products, product.ID))

	_, err = svc.ModerateReview(ctx, first.ID, &ModerateReviewRequest{IsApproved: true})
	require.NoError(t, err)
	_, err = svc.ModerateReview(ctx, second.ID, &ModerateReviewRequest{IsApproved: true})
	require.NoError(t, err)
	assert.InDelta(t, 3.5, productRating(t, products, product.ID), 0.001)

	_, total, err = svc.ProductReviews(ctx, product.ID, firstPage)
	require.NoError(t, err)
	assert.EqualValues(t, 2, total)

	require.NoError(t, svc.DeleteReview(ctx, second.ID))
	assert.InDelta(t, 5.0, productRating(t, products, product.ID), 0.001)
	assert.ErrorIs(t, svc.DeleteReview(ctx, second.ID), ErrNotFound)
}

func TestReviewResubmissionReplacesAndRequeues(t *testing.T) {
	db := testutil.NewDB(t)
	products := NewProductService(db)
	svc := NewReviewService(db, products)
	ctx := context.Background()

	product := createProduct(t, db, "Bench", "300", 1)
	user := createUser(t, db, "critic@example.com", models.UserRoleCustomer)

	review, err := svc.CreateReview(ctx, user.ID, product.ID, &CreateReviewRequest{Rating: 4})
	require.NoError(t, err)
	_, err = svc.ModerateReview(ctx, review.ID, &ModerateReviewRequest{IsApproved: true})
	require.NoError(t, err)
	assert.InDelta(t, 4.0, productRating(t, products, product.ID), 0.001)

	again, err := svc.CreateReview(ctx, user.ID, product.ID, &CreateReviewRequest{Rating: 1})
	require.NoError(t, err)
	assert.Equal(t, review.ID, again.ID)
	assert.False(t, again.IsApproved)
	assert.Zero(t, productRating(t, products, product.ID))

	pending, total, err := svc.ListReviews(ctx, ModerationFilters{PaginationParams: firstPage, Pending: true})
	require.NoError(t, err)
	assert.EqualValues(t, 1, total)
	assert.Equal(t, 1, pending[0].Rating)
}

func TestReviewValidation(t *testing.T) {
	db := testutil.NewDB(t)
	svc := NewReviewService(db, NewProductService(db))
	ctx := context.Background()
	user := createUser(t, db, "critic@example.com", models.UserRoleCustomer)
	product := createProduct(t, db, "Bench", "300", 1)

	_, err := svc.CreateReview(ctx, user.ID, product.ID, &CreateReviewRequest{Rating: 6})
	assert.Error(t, err)

	_, err = svc.CreateReview(ctx, user.ID, uuid.New(), &CreateReviewRequest{Rating: 3})
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = svc.ModerateReview(ctx, uuid.New(), &ModerateReviewRequest{IsApproved: true})
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestQuestionsArePublishedOnAnswer(t *testing.T) {
	db := testutil.NewDB(t)
	svc := NewReviewService(db, NewProductService(db))
	ctx := context.Background()
	product := createProduct(t, db, "Shelf", "120", 2)

	question, err := svc.AskQuestion(ctx, nil, product.ID, &AskQuestionRequest{AuthorName: "Guest", Body: "Is it solid oak?"})
	require.NoError(t, err)
	assert.Nil(t, question.UserID)

	public, err := svc.ProductQuestions(ctx, product.ID)
	require.NoError(t, err)
	assert.Empty(t, public)

	_, total, err := svc.ListQuestions(ctx, ModerationFilters{PaginationParams: firstPage, Pending: true})
	require.NoError(t, err)
	assert.EqualValues(t, 1, total)

	answered, err := svc.AnswerQuestion(ctx, question.ID, &AnswerQuestionRequest{Answer: "Yes.", IsPublished: true})
	require.NoError(t, err)
	assert.NotNil(t, answered.AnsweredAt)

	public, err = svc.ProductQuestions(ctx, product.ID)
	require.NoError(t, err)
	require.Len(t, public, 1)
	assert.Equal(t, "Yes.", public[0].Answer)

	_, total, err = svc.ListQuestions(ctx, ModerationFilters{PaginationParams: firstPage, Pending: true})
	require.NoError(t, err)
	assert.Zero(t, total)

	require.NoError(t, svc.DeleteQuestion(ctx, question.ID))
	assert.ErrorIs(t, svc.DeleteQuestion(ctx, question.ID), ErrNotFound)

	_, err = svc.AskQuestion(ctx, nil, uuid.New(), &AskQuestionRequest{AuthorName: "Guest", Body: "Anyone there?"})
	assert.ErrorIs(t, err, ErrNotFound)
}
