package store

import (
	"strings"

	"github.com/tugrulsicakyuz/mobile-delivy/apperr"
	"github.com/tugrulsicakyuz/mobile-delivy/client/model"

	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"
)

type IdentityStore struct {
	kv *KV
}

func NewIdentityStore(kv *KV) *IdentityStore {
	return &IdentityStore{kv: kv}
}

// Login fabricates a new identity with a random id and makes it current. Nothing is
// checked against the backend.
func (s *IdentityStore) Login(id model.Identity) (*model.Identity, error) {
	id.FullName = strings.TrimSpace(id.FullName)
	if id.FullName == "" {
		return nil, apperr.Validation("login", "full name is required")
	}
	switch id.Role {
	case model.RoleCustomer, model.RoleRestaurant:
	case model.RoleCourier:
		if strings.TrimSpace(id.VehicleInfo) == "" {
			return nil, apperr.Validation("login", "vehicle info is required for couriers")
		}
	default:
		return nil, apperr.Validation("login", "unknown role %q", id.Role)
	}

	id.ID = uuid.NewString()
	if err := s.kv.Put(keyIdentity, id); err != nil {
		return nil, err
	}
	log.Infof("Logged in %s as %s", id.ID, id.Role)
	return &id, nil
}

// Current returns the logged-in identity, or nil when nobody is.
func (s *IdentityStore) Current() (*model.Identity, error) {
	var id model.Identity
	ok, err := s.kv.Get(keyIdentity, &id)
	if err != nil || !ok {
		return nil, err
	}
	return &id, nil
}

// Logout forgets the identity together with everything cached on its behalf.
func (s *IdentityStore) Logout() error {
	if err := s.kv.Delete(keyIdentity, keyCart); err != nil {
		return err
	}
	for _, prefix := range []string{prefixMenu, prefixOrders, prefixMessages, prefixRead} {
		if err := s.kv.DeletePrefix(prefix); err != nil {
			return err
		}
	}
	return nil
}
