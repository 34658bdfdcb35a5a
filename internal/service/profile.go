package service

import (
	"context"
	"errors"

	"github.com/google/uuid"

	"github.com/iliyamo/auth-service/internal/model"
	"github.com/iliyamo/auth-service/internal/repository"
)

// ProfileUpdate holds the editable profile fields.  Empty strings mean
// "keep the current value".
type ProfileUpdate struct {
	FirstName string
	LastName  string
	Username  string
}

// AddressInput is a complete address as submitted when adding one.
type AddressInput struct {
	Street  string
	City    string
	State   string
	Zip     string
	Country string
}

// AddressPatch is a partial address update.  Empty strings keep the current
// value; a nil IsDefault leaves the default flag alone.
type AddressPatch struct {
	Street    string
	City      string
	State     string
	Zip       string
	Country   string
	IsDefault *bool
}

// ProfileService manages a user's profile and addresses.  Every method is a
// read-modify-write of the whole user document through the store.
type ProfileService struct {
	users UserStore
}

func NewProfileService(users UserStore) *ProfileService {
	if users == nil {
		panic("nil store passed to NewProfileService")
	}
	return &ProfileService{users: users}
}

// GetProfile loads the user.
func (s *ProfileService) GetProfile(ctx context.Context, userID string) (model.User, error) {
	return s.load(ctx, userID)
}

// UpdateProfile applies the non-empty fields of upd.
func (s *ProfileService) UpdateProfile(ctx context.Context, userID string, upd ProfileUpdate) (model.User, error) {
	u, err := s.load(ctx, userID)
	if err != nil {
		return model.User{}, err
	}
	u.FullName.FirstName = coalesce(upd.FirstName, u.FullName.FirstName)
	u.FullName.LastName = coalesce(upd.LastName, u.FullName.LastName)
	u.Username = coalesce(upd.Username, u.Username)
	return s.save(ctx, u)
}

// AddAddress appends an address.  When isDefault is set every existing
// default is cleared first so exactly one default remains.
func (s *ProfileService) AddAddress(ctx context.Context, userID string, in AddressInput, isDefault bool) ([]model.Address, error) {
	u, err := s.load(ctx, userID)
	if err != nil {
		return nil, err
	}
	if isDefault {
		clearDefaults(u.Addresses)
	}
	u.Addresses = append(u.Addresses, model.Address{
		ID:        uuid.NewString(),
		Street:    in.Street,
		City:      in.City,
		State:     in.State,
		Zip:       in.Zip,
		Country:   in.Country,
		IsDefault: isDefault,
	})
	saved, err := s.save(ctx, u)
	if err != nil {
		return nil, err
	}
	return saved.Addresses, nil
}

// UpdateAddress patches one address.  ErrAddressNotFound when addressID is
// not in the user's list.
func (s *ProfileService) UpdateAddress(ctx context.Context, userID, addressID string, p AddressPatch) ([]model.Address, error) {
	u, err := s.load(ctx, userID)
	if err != nil {
		return nil, err
	}
	idx := indexOfAddress(u.Addresses, addressID)
	if idx < 0 {
		return nil, ErrAddressNotFound
	}
	if p.IsDefault != nil {
		if *p.IsDefault {
			clearDefaults(u.Addresses)
		}
		u.Addresses[idx].IsDefault = *p.IsDefault
	}
	a := &u.Addresses[idx]
	a.Street = coalesce(p.Street, a.Street)
	a.City = coalesce(p.City, a.City)
	a.State = coalesce(p.State, a.State)
	a.Zip = coalesce(p.Zip, a.Zip)
	a.Country = coalesce(p.Country, a.Country)

	saved, err := s.save(ctx, u)
	if err != nil {
		return nil, err
	}
	return saved.Addresses, nil
}

// DeleteAddress removes addressID.  An unknown id is not an error and does
// not touch the store.
func (s *ProfileService) DeleteAddress(ctx context.Context, userID, addressID string) error {
	u, err := s.load(ctx, userID)
	if err != nil {
		return err
	}
	idx := indexOfAddress(u.Addresses, addressID)
	if idx < 0 {
		return nil
	}
	u.Addresses = append(u.Addresses[:idx:idx], u.Addresses[idx+1:]...)
	_, err = s.save(ctx, u)
	return err
}

func (s *ProfileService) load(ctx context.Context, userID string) (model.User, error) {
	u, err := s.users.FindByID(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return model.User{}, ErrNotFound
		}
		return model.User{}, wrapInternal(err, "load user")
	}
	return u, nil
}

func (s *ProfileService) save(ctx context.Context, u model.User) (model.User, error) {
	saved, err := s.users.Save(ctx, u)
	if err != nil {
		if errors.Is(err, repository.ErrUserExists) {
			return model.User{}, ErrConflict
		}
		return model.User{}, wrapInternal(err, "save user")
	}
	return saved, nil
}

func clearDefaults(addrs []model.Address) {
	for i := range addrs {
		addrs[i].IsDefault = false
	}
}

func indexOfAddress(addrs []model.Address, id string) int {
	for i, a := range addrs {
		if a.ID == id {
			return i
		}
	}
	return -1
}

func coalesce(v, fallback string) string {
	if v != "" {
		return v
	}
	return fallback
}
