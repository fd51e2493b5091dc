package repository_test

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math/rand"
	"sort"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jacentio/platewise"
	"github.com/jacentio/platewise/entity"
	"github.com/jacentio/platewise/rating"
	"github.com/jacentio/platewise/repository"
	"github.com/jacentio/platewise/store"
)

type fixture struct {
	ctx     context.Context
	backend *memBackend
	repo    *repository.Repository
	logs    *bytes.Buffer
}

func newFixture(t *testing.T, opts repository.Options) *fixture {
	t.Helper()
	logs := &bytes.Buffer{}
	if opts.Logger == nil {
		opts.Logger = slog.New(slog.NewJSONHandler(logs, &slog.HandlerOptions{Level: slog.LevelDebug}))
	}
	backend := newMemBackend()
	return &fixture{
		ctx:     context.Background(),
		backend: backend,
		repo:    repository.New(backend, store.DefaultConfig(), opts),
		logs:    logs,
	}
}

func (f *fixture) foodItem(t *testing.T, name string) *entity.FoodItem {
	t.Helper()
	item, err := f.repo.CreateFoodItem(f.ctx, entity.FoodItemInput{FoodName: name})
	require.NoError(t, err)
	return item
}

func (f *fixture) user(t *testing.T, name string) repository.Caller {
	t.Helper()
	u, err := f.repo.CreateUser(f.ctx, entity.UserInput{UserName: name, UserEmail: name + "@example.com"})
	require.NoError(t, err)
	return repository.Caller{Subject: u.EntityID}
}

func (f *fixture) review(t *testing.T, caller repository.Caller, foodID string, quality, quantity float64) *entity.Review {
	t.Helper()
	r, err := f.repo.CreateReview(f.ctx, caller, entity.ReviewInput{
		FoodID:   foodID,
		Quality:  entity.NumberOf(quality),
		Quantity: entity.NumberOf(quantity),
	})
	require.NoError(t, err)
	return r
}

func (f *fixture) totals(t *testing.T, foodID string) (float64, int) {
	t.Helper()
	item, err := f.repo.GetFoodItem(f.ctx, foodID)
	require.NoError(t, err)
	return item.TotalRating, item.NumReviews
}

// --- Aggregate maintenance ---

func TestReviewLifecycle_KeepsTotals(t *testing.T) {
	f := newFixture(t, repository.Options{})
	caller := f.user(t, "alice")

	food := f.foodItem(t, "Pho")
	assert.Zero(t, food.TotalRating)
	assert.Zero(t, food.NumReviews)

	a := f.review(t, caller, food.EntityID, 8, 5)
	assert.Equal(t, 8.0, a.Rating)
	total, n := f.totals(t, food.EntityID)
	assert.Equal(t, 8.0, total)
	assert.Equal(t, 1, n)

	b := f.review(t, caller, food.EntityID, 6, 1)
	assert.Equal(t, 2.68, b.Rating)
	total, n = f.totals(t, food.EntityID)
	assert.Equal(t, 10.68, total)
	assert.Equal(t, 2, n)

	_, err := f.repo.DeleteReview(f.ctx, a.EntityID)
	require.NoError(t, err)
	total, n = f.totals(t, food.EntityID)
	assert.Equal(t, 2.68, total)
	assert.Equal(t, 1, n)
}

func TestCreateReview_IncrementsAtomically(t *testing.T) {
	f := newFixture(t, repository.Options{})
	caller := f.user(t, "alice")
	food := f.foodItem(t, "Pho")

	f.review(t, caller, food.EntityID, 6, 1)

	require.Len(t, f.backend.updates, 1)
	call := f.backend.updates[0]
	assert.Equal(t, food.EntityID, call.ID)
	assert.Equal(t, entity.TypeFoodItem, call.In.RequireType)
	assert.Empty(t, call.In.Set)
	assert.Contains(t, call.In.Increment, "totalRating")
	assert.Contains(t, call.In.Increment, "numReviews")
}

func TestCreateReview_MissingFoodItem(t *testing.T) {
	f := newFixture(t, repository.Options{})
	caller := f.user(t, "alice")

	_, err := f.repo.CreateReview(f.ctx, caller, entity.ReviewInput{FoodID: "nope", Quality: "5", Quantity: "5"})
	assert.ErrorIs(t, err, platewise.ErrNotFound)
	assert.Zero(t, f.backend.count(entity.TypeReview))
}

func TestCreateReview_MissingUser(t *testing.T) {
	f := newFixture(t, repository.Options{})
	food := f.foodItem(t, "Pho")

	_, err := f.repo.CreateReview(f.ctx, repository.Caller{Subject: "ghost"}, entity.ReviewInput{FoodID: food.EntityID, Quality: "5", Quantity: "5"})
	assert.ErrorIs(t, err, platewise.ErrNotFound)

	total, n := f.totals(t, food.EntityID)
	assert.Zero(t, total)
	assert.Zero(t, n)
}

func TestCreateReview_UserIDMustBeAUser(t *testing.T) {
	f := newFixture(t, repository.Options{})
	food := f.foodItem(t, "Pho")

	_, err := f.repo.CreateReview(f.ctx, repository.Caller{Subject: food.EntityID}, entity.ReviewInput{FoodID: food.EntityID, Quality: "5", Quantity: "5"})
	assert.ErrorIs(t, err, platewise.ErrNotFound)
}

func TestCreateReview_Invalid(t *testing.T) {
	f := newFixture(t, repository.Options{})
	caller := f.user(t, "alice")
	food := f.foodItem(t, "Pho")

	_, err := f.repo.CreateReview(f.ctx, caller, entity.ReviewInput{FoodID: food.EntityID, Quality: "11", Quantity: "5"})
	assert.ErrorIs(t, err, platewise.ErrValidation)

	_, err = f.repo.CreateReview(f.ctx, repository.Caller{}, entity.ReviewInput{FoodID: food.EntityID, Quality: "5", Quantity: "5"})
	assert.ErrorIs(t, err, platewise.ErrValidation)

	assert.Empty(t, f.backend.updates)
}

func TestCreateReview_CompensatesFailedWrite(t *testing.T) {
	f := newFixture(t, repository.Options{})
	caller := f.user(t, "alice")
	food := f.foodItem(t, "Pho")
	f.review(t, caller, food.EntityID, 8, 5)

	boom := errors.New("throttled")
	f.backend.createErr = func(e store.Entity) error {
		if e.EntityType() == entity.TypeReview {
			return boom
		}
		return nil
	}

	_, err := f.repo.CreateReview(f.ctx, caller, entity.ReviewInput{FoodID: food.EntityID, Quality: "6", Quantity: "1"})
	assert.ErrorIs(t, err, boom)

	total, n := f.totals(t, food.EntityID)
	assert.Equal(t, 8.0, total)
	assert.Equal(t, 1, n)
	assert.Contains(t, f.logs.String(), "aggregate compensated")
}

func TestCreateReview_CompensationRunsOnCancelledContext(t *testing.T) {
	f := newFixture(t, repository.Options{})
	caller := f.user(t, "alice")
	food := f.foodItem(t, "Pho")

	ctx, cancel := context.WithCancel(f.ctx)
	f.backend.createErr = func(e store.Entity) error {
		cancel()
		return context.Canceled
	}

	_, err := f.repo.CreateReview(ctx, caller, entity.ReviewInput{FoodID: food.EntityID, Quality: "6", Quantity: "1"})
	assert.ErrorIs(t, err, context.Canceled)

	total, n := f.totals(t, food.EntityID)
	assert.Zero(t, total)
	assert.Zero(t, n)
}

func TestUpdateReview_MovesTotalByDifference(t *testing.T) {
	f := newFixture(t, repository.Options{})
	caller := f.user(t, "alice")
	food := f.foodItem(t, "Pho")
	a := f.review(t, caller, food.EntityID, 8, 5)
	f.review(t, caller, food.EntityID, 6, 1)

	updated, err := f.repo.UpdateReview(f.ctx, a.EntityID, entity.ReviewInput{Quality: "10", Quantity: "5"})
	require.NoError(t, err)

	assert.Equal(t, 10.0, updated.Rating)
	assert.Equal(t, a.EntityID, updated.EntityID)
	assert.Equal(t, food.EntityID, updated.FoodID)
	assert.Equal(t, caller.Subject, updated.UserID)

	total, n := f.totals(t, food.EntityID)
	assert.Equal(t, 12.68, total)
	assert.Equal(t, 2, n)
}

func TestUpdateReview_CannotMoveToAnotherFoodItem(t *testing.T) {
	f := newFixture(t, repository.Options{})
	caller := f.user(t, "alice")
	pho := f.foodItem(t, "Pho")
	pizza := f.foodItem(t, "Pizza")
	a := f.review(t, caller, pho.EntityID, 8, 5)

	updated, err := f.repo.UpdateReview(f.ctx, a.EntityID, entity.ReviewInput{FoodID: pizza.EntityID, Quality: "9", Quantity: "5"})
	require.NoError(t, err)
	assert.Equal(t, pho.EntityID, updated.FoodID)

	total, n := f.totals(t, pizza.EntityID)
	assert.Zero(t, total)
	assert.Zero(t, n)
	total, _ = f.totals(t, pho.EntityID)
	assert.Equal(t, 9.0, total)
}

func TestUpdateReview_SameRatingSkipsAggregate(t *testing.T) {
	f := newFixture(t, repository.Options{})
	caller := f.user(t, "alice")
	food := f.foodItem(t, "Pho")
	a := f.review(t, caller, food.EntityID, 8, 5)

	_, err := f.repo.UpdateReview(f.ctx, a.EntityID, entity.ReviewInput{Quality: "8.001", Quantity: "5"})
	require.NoError(t, err)

	assert.Equal(t, 1, f.backend.aggregateUpdates(func(updateCall) bool { return true }))
}

func TestUpdateReview_ConcurrentEditIsConflict(t *testing.T) {
	f := newFixture(t, repository.Options{})
	caller := f.user(t, "alice")
	food := f.foodItem(t, "Pho")
	a := f.review(t, caller, food.EntityID, 8, 5)

	// Another writer changes the rating between our read and our write.
	f.backend.updateErr = func(id string, in store.UpdateInput) error {
		if id == a.EntityID {
			f.backend.rows[id]["rating"] = &types.AttributeValueMemberN{Value: "9"}
		}
		return nil
	}

	_, err := f.repo.UpdateReview(f.ctx, a.EntityID, entity.ReviewInput{Quality: "10", Quantity: "5"})
	assert.ErrorIs(t, err, platewise.ErrConflict)
	assert.Equal(t, 409, platewise.HTTPStatus(err))

	total, n := f.totals(t, food.EntityID)
	assert.Equal(t, 8.0, total)
	assert.Equal(t, 1, n)
}

func TestUpdateReview_Missing(t *testing.T) {
	f := newFixture(t, repository.Options{})

	_, err := f.repo.UpdateReview(f.ctx, "nope", entity.ReviewInput{Quality: "5", Quantity: "5"})
	assert.ErrorIs(t, err, platewise.ErrNotFound)
}

func TestUpdateReview_FoodItemGone(t *testing.T) {
	f := newFixture(t, repository.Options{})
	caller := f.user(t, "alice")
	food := f.foodItem(t, "Pho")
	a := f.review(t, caller, food.EntityID, 8, 5)
	f.backend.remove(food.EntityID)

	_, err := f.repo.UpdateReview(f.ctx, a.EntityID, entity.ReviewInput{Quality: "9", Quantity: "5"})
	assert.ErrorIs(t, err, platewise.ErrNotFound)

	r, err := f.repo.GetReview(f.ctx, a.EntityID)
	require.NoError(t, err)
	assert.Equal(t, 8.0, r.Rating)
}

func TestDeleteReview_OnlyOnce(t *testing.T) {
	f := newFixture(t, repository.Options{})
	caller := f.user(t, "alice")
	food := f.foodItem(t, "Pho")
	a := f.review(t, caller, food.EntityID, 8, 5)
	f.review(t, caller, food.EntityID, 6, 1)

	deleted, err := f.repo.DeleteReview(f.ctx, a.EntityID)
	require.NoError(t, err)
	assert.Equal(t, a.EntityID, deleted.EntityID)

	_, err = f.repo.DeleteReview(f.ctx, a.EntityID)
	assert.ErrorIs(t, err, platewise.ErrNotFound)

	total, n := f.totals(t, food.EntityID)
	assert.Equal(t, 2.68, total)
	assert.Equal(t, 1, n)
}

func TestDeleteReview_WrongType(t *testing.T) {
	f := newFixture(t, repository.Options{})
	food := f.foodItem(t, "Pho")

	_, err := f.repo.DeleteReview(f.ctx, food.EntityID)
	assert.ErrorIs(t, err, platewise.ErrNotFound)
	assert.True(t, f.backend.has(food.EntityID))
}

func TestDeleteReview_FoodItemAlreadyGone(t *testing.T) {
	f := newFixture(t, repository.Options{})
	caller := f.user(t, "alice")
	food := f.foodItem(t, "Pho")
	a := f.review(t, caller, food.EntityID, 8, 5)
	f.backend.remove(food.EntityID)

	_, err := f.repo.DeleteReview(f.ctx, a.EntityID)
	require.NoError(t, err)
	assert.False(t, f.backend.has(a.EntityID))
}

func TestDeleteReview_AggregateFailureIsReported(t *testing.T) {
	f := newFixture(t, repository.Options{})
	caller := f.user(t, "alice")
	food := f.foodItem(t, "Pho")
	a := f.review(t, caller, food.EntityID, 8, 5)

	boom := errors.New("throttled")
	f.backend.updateErr = func(string, store.UpdateInput) error { return boom }

	_, err := f.repo.DeleteReview(f.ctx, a.EntityID)
	assert.ErrorIs(t, err, boom)
	assert.Contains(t, f.logs.String(), "food item totals not adjusted")
}

// Any sequence of review writes leaves every food item's totals equal to the
// sum and count of its live reviews.
func TestTotalsMatchLiveReviews(t *testing.T) {
	f := newFixture(t, repository.Options{})
	rng := rand.New(rand.NewSource(42))

	callers := []repository.Caller{f.user(t, "alice"), f.user(t, "bob")}
	foods := []*entity.FoodItem{f.foodItem(t, "Pho"), f.foodItem(t, "Pizza")}
	live := map[string]*entity.Review{}

	for i := 0; i < 200; i++ {
		quality := float64(rng.Intn(901)+100) / 100
		quantity := float64(rng.Intn(5) + 1)

		switch op := rng.Intn(3); {
		case op == 0 || len(live) == 0:
			r := f.review(t, callers[rng.Intn(2)], foods[rng.Intn(2)].EntityID, quality, quantity)
			live[r.EntityID] = r
		case op == 1:
			id := anyKey(rng, live)
			r, err := f.repo.UpdateReview(f.ctx, id, entity.ReviewInput{Quality: entity.NumberOf(quality), Quantity: entity.NumberOf(quantity)})
			require.NoError(t, err)
			live[id] = r
		default:
			id := anyKey(rng, live)
			_, err := f.repo.DeleteReview(f.ctx, id)
			require.NoError(t, err)
			delete(live, id)
		}
	}

	for _, food := range foods {
		want, count := 0.0, 0
		for _, r := range live {
			if r.FoodID == food.EntityID {
				want += r.Rating
				count++
			}
		}
		total, n := f.totals(t, food.EntityID)
		assert.Equal(t, rating.Round(want, 2), total, "food %s", food.FoodName)
		assert.Equal(t, count, n, "food %s", food.FoodName)
		assert.GreaterOrEqual(t, n, 0)
	}
}

func anyKey(rng *rand.Rand, m map[string]*entity.Review) string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys[rng.Intn(len(keys))]
}

// --- Food items and users ---

func TestUpdateFoodItem_KeepsTotals(t *testing.T) {
	f := newFixture(t, repository.Options{})
	caller := f.user(t, "alice")
	food, err := f.repo.CreateFoodItem(f.ctx, entity.FoodItemInput{
		FoodName:       "Pho",
		FoodOrigin:     "Vietnam",
		FoodAttributes: map[string]string{"description": "noodle soup"},
	})
	require.NoError(t, err)
	f.review(t, caller, food.EntityID, 8, 5)

	updated, err := f.repo.UpdateFoodItem(f.ctx, food.EntityID, entity.FoodItemInput{FoodName: "Pho Bo"})
	require.NoError(t, err)

	assert.Equal(t, "Pho Bo", updated.FoodName)
	assert.Empty(t, updated.FoodOrigin)
	assert.Nil(t, updated.FoodAttributes)
	assert.Equal(t, 8.0, updated.TotalRating)
	assert.Equal(t, 1, updated.NumReviews)
}

func TestUpdateFoodItem_Errors(t *testing.T) {
	f := newFixture(t, repository.Options{})
	food := f.foodItem(t, "Pho")

	_, err := f.repo.UpdateFoodItem(f.ctx, "nope", entity.FoodItemInput{FoodName: "x"})
	assert.ErrorIs(t, err, platewise.ErrNotFound)

	_, err = f.repo.UpdateFoodItem(f.ctx, food.EntityID, entity.FoodItemInput{})
	assert.ErrorIs(t, err, platewise.ErrValidation)
}

func TestGet_WrongTypeIsNotFound(t *testing.T) {
	f := newFixture(t, repository.Options{})
	caller := f.user(t, "alice")
	food := f.foodItem(t, "Pho")

	_, err := f.repo.GetUser(f.ctx, food.EntityID)
	assert.ErrorIs(t, err, platewise.ErrNotFound)
	_, err = f.repo.GetFoodItem(f.ctx, caller.Subject)
	assert.ErrorIs(t, err, platewise.ErrNotFound)
	_, err = f.repo.GetReview(f.ctx, caller.Subject)
	assert.ErrorIs(t, err, platewise.ErrNotFound)
	assert.Equal(t, 404, platewise.HTTPStatus(err))
}

func TestUpdateUser_KeepsCreated(t *testing.T) {
	f := newFixture(t, repository.Options{})
	caller := f.user(t, "alice")
	before, err := f.repo.GetUser(f.ctx, caller.Subject)
	require.NoError(t, err)

	updated, err := f.repo.UpdateUser(f.ctx, caller.Subject, entity.UserInput{UserName: "alicia", UserEmail: "alicia@example.com"})
	require.NoError(t, err)

	assert.Equal(t, "alicia", updated.UserName)
	assert.Equal(t, before.Created, updated.Created)

	_, err = f.repo.UpdateUser(f.ctx, caller.Subject, entity.UserInput{UserName: "alicia", UserEmail: "nope"})
	assert.ErrorIs(t, err, platewise.ErrValidation)
}

// --- Listing ---

func TestListFoodItems_Pages(t *testing.T) {
	f := newFixture(t, repository.Options{})
	for i := 0; i < 12; i++ {
		f.foodItem(t, fmt.Sprintf("Dish %02d", i))
	}

	first, err := f.repo.ListFoodItems(f.ctx, repository.ListOptions{Limit: 10})
	require.NoError(t, err)
	assert.Len(t, first.Items, 10)
	require.NotEmpty(t, first.NextCursor)

	second, err := f.repo.ListFoodItems(f.ctx, repository.ListOptions{Limit: 10, Cursor: first.NextCursor})
	require.NoError(t, err)
	assert.Len(t, second.Items, 2)
	assert.Empty(t, second.NextCursor)

	seen := map[string]bool{}
	for _, item := range append(first.Items, second.Items...) {
		seen[item.EntityID] = true
	}
	assert.Len(t, seen, 12)
}

func TestListFoodItems_PrefixFilter(t *testing.T) {
	f := newFixture(t, repository.Options{})
	f.foodItem(t, "Pho")
	f.foodItem(t, "Pizza")
	f.foodItem(t, "Bun Cha")

	page, err := f.repo.ListFoodItems(f.ctx, repository.ListOptions{Attribute: "foodName", Value: "P"})
	require.NoError(t, err)
	require.Len(t, page.Items, 2)
	assert.Equal(t, "Pho", page.Items[0].FoodName)
	assert.Equal(t, "Pizza", page.Items[1].FoodName)
}

func TestList_Rejects(t *testing.T) {
	f := newFixture(t, repository.Options{})

	_, err := f.repo.ListFoodItems(f.ctx, repository.ListOptions{Limit: 7})
	assert.ErrorIs(t, err, platewise.ErrValidation)

	_, err = f.repo.ListUsers(f.ctx, repository.ListOptions{Attribute: "foodName", Value: "x"})
	assert.ErrorIs(t, err, platewise.ErrValidation)

	_, err = f.repo.ListFoodItems(f.ctx, repository.ListOptions{Cursor: "not a cursor"})
	assert.ErrorIs(t, err, platewise.ErrInvalidCursor)
	assert.Equal(t, 400, platewise.HTTPStatus(err))
}

func TestListUsers_CreatedRange(t *testing.T) {
	f := newFixture(t, repository.Options{})
	f.user(t, "alice")
	f.user(t, "bob")

	yesterday := time.Now().UTC().AddDate(0, 0, -1).Format(time.DateOnly)

	page, err := f.repo.ListUsers(f.ctx, repository.ListOptions{StartDate: yesterday})
	require.NoError(t, err)
	assert.Len(t, page.Items, 2)

	page, err = f.repo.ListUsers(f.ctx, repository.ListOptions{EndDate: yesterday})
	require.NoError(t, err)
	assert.Empty(t, page.Items)
}

func TestListReviews_NewestFirst(t *testing.T) {
	f := newFixture(t, repository.Options{})
	for day := 1; day <= 12; day++ {
		item, err := entity.Marshal(entity.Review{
			EntityID:   fmt.Sprintf("r%02d", day),
			Type:       entity.TypeReview,
			FoodID:     "f1",
			UserID:     "u1",
			Quality:    8,
			Quantity:   5,
			Rating:     8,
			ReviewDate: fmt.Sprintf("2024-01-%02dT09:00:00Z", day),
		})
		require.NoError(t, err)
		f.backend.put(item)
	}

	opts := repository.ListOptions{StartDate: "2024-01-01", Limit: 10, Descending: true}
	first, err := f.repo.ListReviews(f.ctx, opts)
	require.NoError(t, err)
	require.Len(t, first.Items, 10)
	assert.Equal(t, "r12", first.Items[0].EntityID)
	assert.Equal(t, "r03", first.Items[9].EntityID)
	require.NotEmpty(t, first.NextCursor)

	opts.Cursor = first.NextCursor
	second, err := f.repo.ListReviews(f.ctx, opts)
	require.NoError(t, err)
	require.Len(t, second.Items, 2)
	assert.Equal(t, "r02", second.Items[0].EntityID)
	assert.Equal(t, "r01", second.Items[1].EntityID)
	assert.Empty(t, second.NextCursor)

	asc, err := f.repo.ListReviews(f.ctx, repository.ListOptions{StartDate: "2024-01-01", Limit: 10})
	require.NoError(t, err)
	assert.Equal(t, "r01", asc.Items[0].EntityID)
}

func TestListReviewsByFoodItemAndUser(t *testing.T) {
	f := newFixture(t, repository.Options{})
	alice, bob := f.user(t, "alice"), f.user(t, "bob")
	pho, pizza := f.foodItem(t, "Pho"), f.foodItem(t, "Pizza")
	f.review(t, alice, pho.EntityID, 8, 5)
	f.review(t, bob, pho.EntityID, 6, 1)
	f.review(t, alice, pizza.EntityID, 7, 3)

	page, err := f.repo.ListReviewsByFoodItem(f.ctx, pho.EntityID, repository.ListOptions{})
	require.NoError(t, err)
	assert.Len(t, page.Items, 2)

	page, err = f.repo.ListReviewsByUser(f.ctx, alice.Subject, repository.ListOptions{})
	require.NoError(t, err)
	assert.Len(t, page.Items, 2)
	for _, r := range page.Items {
		assert.Equal(t, alice.Subject, r.UserID)
	}

	page, err = f.repo.ListReviews(f.ctx, repository.ListOptions{})
	require.NoError(t, err)
	assert.Len(t, page.Items, 3)
}

func TestListReviewsByFoodItem_PrefixDoesNotMatch(t *testing.T) {
	f := newFixture(t, repository.Options{})
	caller := f.user(t, "alice")
	food := f.foodItem(t, "Pho")
	f.review(t, caller, food.EntityID, 8, 5)

	page, err := f.repo.ListReviewsByFoodItem(f.ctx, food.EntityID[:4], repository.ListOptions{})
	require.NoError(t, err)
	assert.Empty(t, page.Items)
}

func TestListReviews_BackendError(t *testing.T) {
	f := newFixture(t, repository.Options{})
	boom := errors.New("throttled")
	f.backend.queryErr = boom

	_, err := f.repo.ListReviews(f.ctx, repository.ListOptions{})
	assert.ErrorIs(t, err, boom)
	assert.Equal(t, 500, platewise.HTTPStatus(err))
}
