package service

import (
	"context"
	"errors"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/auth-service/internal/model"
)

func seedUser(t *testing.T, users *memUsers) model.User {
	t.Helper()
	u, err := users.Create(context.Background(), model.User{
		Username:  "alice",
		Email:     "a@x.com",
		FullName:  model.FullName{FirstName: "A", LastName: "L"},
		Role:      model.RoleUser,
		Addresses: []model.Address{},
	})
	require.NoError(t, err)
	return u
}

func sampleAddress(street string) AddressInput {
	return AddressInput{Street: street, City: "Pune", State: "MH", Zip: "411001", Country: "IN"}
}

func countDefaults(addrs []model.Address) int {
	n := 0
	for _, a := range addrs {
		if a.IsDefault {
			n++
		}
	}
	return n
}

func TestGetProfile(t *testing.T) {
	users := newMemUsers()
	svc := NewProfileService(users)
	u := seedUser(t, users)

	got, err := svc.GetProfile(context.Background(), u.ID)
	require.NoError(t, err)
	assert.Equal(t, "alice", got.Username)

	_, err = svc.GetProfile(context.Background(), "missing")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestUpdateProfile_OnlyProvidedFields(t *testing.T) {
	users := newMemUsers()
	svc := NewProfileService(users)
	u := seedUser(t, users)

	got, err := svc.UpdateProfile(context.Background(), u.ID, ProfileUpdate{FirstName: "Ann"})
	require.NoError(t, err)
	assert.Equal(t, "Ann", got.FullName.FirstName)
	assert.Equal(t, "L", got.FullName.LastName)
	assert.Equal(t, "alice", got.Username)

	got, err = svc.UpdateProfile(context.Background(), u.ID, ProfileUpdate{Username: "alice2"})
	require.NoError(t, err)
	assert.Equal(t, "alice2", got.Username)
	assert.Equal(t, "Ann", got.FullName.FirstName)
}

func TestUpdateProfile_UsernameTakenIsConflict(t *testing.T) {
	users := newMemUsers()
	svc := NewProfileService(users)
	u := seedUser(t, users)
	_, err := users.Create(context.Background(), model.User{Username: "bob", Email: "b@x.com", Role: model.RoleUser})
	require.NoError(t, err)

	_, err = svc.UpdateProfile(context.Background(), u.ID, ProfileUpdate{Username: "bob"})
	assert.ErrorIs(t, err, ErrConflict)
}

func TestAddAddress_DefaultIsExclusive(t *testing.T) {
	users := newMemUsers()
	svc := NewProfileService(users)
	u := seedUser(t, users)
	ctx := context.Background()

	addrs, err := svc.AddAddress(ctx, u.ID, sampleAddress("1 First St"), true)
	require.NoError(t, err)
	require.Len(t, addrs, 1)
	assert.True(t, addrs[0].IsDefault)
	assert.NotEmpty(t, addrs[0].ID)

	addrs, err = svc.AddAddress(ctx, u.ID, sampleAddress("2 Second St"), false)
	require.NoError(t, err)
	require.Len(t, addrs, 2)
	assert.True(t, addrs[0].IsDefault)
	assert.False(t, addrs[1].IsDefault)

	addrs, err = svc.AddAddress(ctx, u.ID, sampleAddress("3 Third St"), true)
	require.NoError(t, err)
	require.Len(t, addrs, 3)
	assert.Equal(t, 1, countDefaults(addrs))
	assert.True(t, addrs[2].IsDefault)
	assert.Equal(t, "1 First St", addrs[0].Street)
}

func TestUpdateAddress(t *testing.T) {
	users := newMemUsers()
	svc := NewProfileService(users)
	u := seedUser(t, users)
	ctx := context.Background()

	_, err := svc.AddAddress(ctx, u.ID, sampleAddress("1 First St"), true)
	require.NoError(t, err)
	addrs, err := svc.AddAddress(ctx, u.ID, sampleAddress("2 Second St"), false)
	require.NoError(t, err)
	second := addrs[1].ID

	yes := true
	addrs, err = svc.UpdateAddress(ctx, u.ID, second, AddressPatch{City: "Mumbai", IsDefault: &yes})
	require.NoError(t, err)
	assert.Equal(t, 1, countDefaults(addrs))
	assert.True(t, addrs[1].IsDefault)
	assert.Equal(t, "Mumbai", addrs[1].City)
	assert.Equal(t, "2 Second St", addrs[1].Street)
	assert.Equal(t, "Pune", addrs[0].City)

	no := false
	addrs, err = svc.UpdateAddress(ctx, u.ID, second, AddressPatch{IsDefault: &no})
	require.NoError(t, err)
	assert.Equal(t, 0, countDefaults(addrs))

	_, err = svc.UpdateAddress(ctx, u.ID, "missing", AddressPatch{City: "X"})
	assert.ErrorIs(t, err, ErrAddressNotFound)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestDeleteAddress(t *testing.T) {
	users := newMemUsers()
	svc := NewProfileService(users)
	u := seedUser(t, users)
	ctx := context.Background()

	_, err := svc.AddAddress(ctx, u.ID, sampleAddress("1 First St"), false)
	require.NoError(t, err)
	addrs, err := svc.AddAddress(ctx, u.ID, sampleAddress("2 Second St"), true)
	require.NoError(t, err)

	require.NoError(t, svc.DeleteAddress(ctx, u.ID, addrs[0].ID))
	got, err := svc.GetProfile(ctx, u.ID)
	require.NoError(t, err)
	require.Len(t, got.Addresses, 1)
	assert.Equal(t, addrs[1].ID, got.Addresses[0].ID)
}

func TestDeleteAddress_UnknownIDIsNoop(t *testing.T) {
	users := newMemUsers()
	svc := NewProfileService(users)
	u := seedUser(t, users)
	ctx := context.Background()

	_, err := svc.AddAddress(ctx, u.ID, sampleAddress("1 First St"), true)
	require.NoError(t, err)
	before, err := svc.GetProfile(ctx, u.ID)
	require.NoError(t, err)
	saves := users.saves

	require.NoError(t, svc.DeleteAddress(ctx, u.ID, "does-not-exist"))

	after, err := svc.GetProfile(ctx, u.ID)
	require.NoError(t, err)
	assert.Equal(t, before.Addresses, after.Addresses)
	assert.Equal(t, saves, users.saves)
}

func TestProfile_UnknownUserAndStoreErrors(t *testing.T) {
	users := newMemUsers()
	svc := NewProfileService(users)
	ctx := context.Background()

	_, err := svc.AddAddress(ctx, "missing", sampleAddress("x"), false)
	assert.ErrorIs(t, err, ErrNotFound)
	assert.ErrorIs(t, svc.DeleteAddress(ctx, "missing", "a"), ErrNotFound)

	users.err = errors.New("db down")
	_, err = svc.GetProfile(ctx, "any")
	assert.ErrorIs(t, err, ErrInternal)
}

// Any interleaving of adds and default toggles leaves at most one default,
// and exactly one right after a default was set.
func TestAddresses_AtMostOneDefaultUnderRandomSequences(t *testing.T) {
	users := newMemUsers()
	svc := NewProfileService(users)
	u := seedUser(t, users)
	ctx := context.Background()
	rng := rand.New(rand.NewSource(42))

	var addrs []model.Address
	for i := 0; i < 200; i++ {
		var err error
		makeDefault := rng.Intn(2) == 0
		if len(addrs) == 0 || rng.Intn(3) == 0 {
			addrs, err = svc.AddAddress(ctx, u.ID, sampleAddress("street"), makeDefault)
		} else {
			target := addrs[rng.Intn(len(addrs))].ID
			addrs, err = svc.UpdateAddress(ctx, u.ID, target, AddressPatch{IsDefault: &makeDefault})
		}
		require.NoError(t, err)
		if makeDefault {
			require.Equal(t, 1, countDefaults(addrs), "step %d", i)
		} else {
			require.LessOrEqual(t, countDefaults(addrs), 1, "step %d", i)
		}
	}
}
