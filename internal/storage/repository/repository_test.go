package repository

import (
	"context"
	"database/sql"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/magabrotheeeer/subscription-payments/internal/models"
)

func TestStorage_Users(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}
	storage, cleanup := setupTestDatabase(t)
	defer cleanup()
	ctx := context.Background()

	uid, err := storage.RegisterUser(ctx, models.User{
		Email:        "user@example.com",
		Name:         "User",
		PasswordHash: "hashedpassword",
	})
	require.NoError(t, err)
	assert.NotEmpty(t, uid)

	// Повторная регистрация на тот же email — ErrEmailTaken
	_, err = storage.RegisterUser(ctx, models.User{
		Email:        "user@example.com",
		Name:         "Another User",
		PasswordHash: "otherhash",
	})
	assert.ErrorIs(t, err, ErrEmailTaken)

	user, err := storage.GetUserByEmail(ctx, "user@example.com")
	require.NoError(t, err)
	assert.Equal(t, uid, user.UID)
	assert.Equal(t, "User", user.Name)
	assert.Equal(t, "hashedpassword", user.PasswordHash)
	assert.False(t, user.CreatedAt.IsZero())

	_, err = storage.GetUserByEmail(ctx, "ghost@example.com")
	assert.ErrorIs(t, err, sql.ErrNoRows)
}

func TestStorage_PaymentLifecycle(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}
	storage, cleanup := setupTestDatabase(t)
	defer cleanup()
	ctx := context.Background()

	factory := NewTestDataFactory(storage)
	userUID := factory.CreateUser(t, "payer@example.com", "Payer", "hashedpassword")

	paymentID, err := storage.CreatePayment(ctx, models.Payment{
		UserUID: userUID,
		PlanID:  2,
		Amount:  1000,
	})
	require.NoError(t, err)
	require.Positive(t, paymentID)

	require.NoError(t, storage.SetPaymentGatewayID(ctx, paymentID, "TR0011abc"))

	payment, err := storage.FindPaymentByGatewayID(ctx, "TR0011abc")
	require.NoError(t, err)
	assert.Equal(t, paymentID, payment.ID)
	assert.Equal(t, userUID, payment.UserUID)
	assert.Equal(t, 2, payment.PlanID)
	assert.Equal(t, 1000.0, payment.Amount)
	assert.Equal(t, models.PaymentStatusPending, payment.Status)
	assert.Empty(t, payment.TransactionID)

	subscriptionID, err := storage.SettlePayment(ctx, paymentID, "AHB4521XQ", userUID, 2)
	require.NoError(t, err)
	require.Positive(t, subscriptionID)

	payment, err = storage.FindPaymentByGatewayID(ctx, "TR0011abc")
	require.NoError(t, err)
	assert.Equal(t, models.PaymentStatusCompleted, payment.Status)
	assert.Equal(t, "AHB4521XQ", payment.TransactionID)

	subs, err := storage.ListSubscriptionsByUser(ctx, userUID)
	require.NoError(t, err)
	require.Len(t, subs, 1)
	assert.Equal(t, subscriptionID, subs[0].ID)
	assert.Equal(t, 2, subs[0].PlanID)
	assert.Equal(t, models.SubscriptionStatusActive, subs[0].Status)
}

func TestStorage_FailPayment(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}
	storage, cleanup := setupTestDatabase(t)
	defer cleanup()
	ctx := context.Background()

	factory := NewTestDataFactory(storage)
	userUID := factory.CreateUser(t, "payer@example.com", "Payer", "hashedpassword")
	paymentID := factory.CreatePendingPayment(t, userUID, 3, 2000, "TR0022def")

	require.NoError(t, storage.FailPayment(ctx, paymentID))

	payment, err := storage.FindPaymentByGatewayID(ctx, "TR0022def")
	require.NoError(t, err)
	assert.Equal(t, models.PaymentStatusFailed, payment.Status)

	// Отказ не порождает подписку
	subs, err := storage.ListSubscriptionsByUser(ctx, userUID)
	require.NoError(t, err)
	assert.Empty(t, subs)
}

func TestStorage_FindPaymentByGatewayID_NotFound(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}
	storage, cleanup := setupTestDatabase(t)
	defer cleanup()

	_, err := storage.FindPaymentByGatewayID(context.Background(), "TRunknown")
	assert.ErrorIs(t, err, sql.ErrNoRows)
}

func TestStorage_ListSubscriptionsByUser_Order(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}
	storage, cleanup := setupTestDatabase(t)
	defer cleanup()
	ctx := context.Background()

	factory := NewTestDataFactory(storage)
	userUID := factory.CreateUser(t, "payer@example.com", "Payer", "hashedpassword")
	otherUID := factory.CreateUser(t, "other@example.com", "Other", "hashedpassword")

	factory.CreateSubscription(t, userUID, 1, models.SubscriptionStatusActive)
	factory.CreateSubscription(t, userUID, 2, models.SubscriptionStatusExpired)
	factory.CreateSubscription(t, otherUID, 3, models.SubscriptionStatusActive)

	subs, err := storage.ListSubscriptionsByUser(ctx, userUID)
	require.NoError(t, err)
	require.Len(t, subs, 2)
	for _, sub := range subs {
		assert.Equal(t, userUID, sub.UserUID)
	}
}

func TestStorage_ContextCancelled(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}
	storage, cleanup := setupTestDatabase(t)
	defer cleanup()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := storage.CreatePayment(ctx, models.Payment{UserUID: "uid", PlanID: 1, Amount: 500})
	assert.ErrorIs(t, err, context.Canceled)
}
