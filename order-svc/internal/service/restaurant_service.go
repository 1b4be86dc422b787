package service

import (
	"context"
	"io"
	"path/filepath"
	"strings"
	"time"

	"github.com/tugrulsicakyuz/mobile-delivy/apperr"
	"github.com/tugrulsicakyuz/mobile-delivy/order-svc/internal/domain"

	"github.com/lucsky/cuid"
	log "github.com/sirupsen/logrus"
)

var allowedImageTypes = map[string]bool{
	"image/jpeg": true,
	"image/png":  true,
	"image/gif":  true,
	"image/webp": true,
}

type RestaurantService struct {
	repo   RestaurantRepository
	cache  MenuCache
	images ImageStore
}

func NewRestaurantService(repo RestaurantRepository, cache MenuCache, images ImageStore) *RestaurantService {
	return &RestaurantService{repo: repo, cache: cache, images: images}
}

// Upsert creates the restaurant on its owner's first login and renames it afterwards.
func (s *RestaurantService) Upsert(ctx context.Context, rest *domain.Restaurant) error {
	if rest.ID == "" {
		return apperr.Validation("upsertRestaurant", "restaurant id is required")
	}
	if strings.TrimSpace(rest.Name) == "" {
		return apperr.Validation("upsertRestaurant", "restaurant name is required")
	}
	return s.repo.UpsertRestaurant(ctx, rest)
}

func (s *RestaurantService) List(ctx context.Context, activeOnly bool) ([]domain.Restaurant, error) {
	return s.repo.ListRestaurants(ctx, activeOnly)
}

func (s *RestaurantService) Get(ctx context.Context, id string) (*domain.Restaurant, error) {
	return s.repo.GetRestaurant(ctx, id)
}

func (s *RestaurantService) SetActive(ctx context.Context, id string, active bool) error {
	rows, err := s.repo.SetRestaurantActive(ctx, id, active)
	if err != nil {
		return err
	}
	if rows == 0 {
		return apperr.NotFound("setRestaurantActive", "restaurant %s not found", id)
	}
	return nil
}

func (s *RestaurantService) Delete(ctx context.Context, id string) error {
	rows, err := s.repo.DeleteRestaurant(ctx, id)
	if err != nil {
		return err
	}
	if rows == 0 {
		return apperr.NotFound("deleteRestaurant", "restaurant %s not found", id)
	}
	s.invalidate(ctx, id)
	return nil
}

func (s *RestaurantService) UploadCover(ctx context.Context, id, filename, contentType string, body io.Reader) (string, error) {
	if _, err := s.repo.GetRestaurant(ctx, id); err != nil {
		return "", err
	}
	url, err := s.saveImage(ctx, "restaurant_"+id+"_"+filepath.Base(filename), contentType, body)
	if err != nil {
		return "", err
	}
	if err := s.repo.UpdateRestaurantImage(ctx, id, url); err != nil {
		return "", err
	}
	return url, nil
}

func (s *RestaurantService) CreateMenuItem(ctx context.Context, item *domain.MenuItem) error {
	if err := validateMenuItem("createMenuItem", item); err != nil {
		return err
	}
	if _, err := s.repo.GetRestaurant(ctx, item.RestaurantID); err != nil {
		return err
	}
	item.ID = cuid.New()
	if err := s.repo.CreateMenuItem(ctx, item); err != nil {
		return err
	}
	s.invalidate(ctx, item.RestaurantID)
	return nil
}

// Menu serves the cached menu when present and repopulates the cache on a miss.
func (s *RestaurantService) Menu(ctx context.Context, restaurantID string) ([]domain.MenuItem, error) {
	if s.cache != nil {
		items, ok, err := s.cache.GetMenu(ctx, restaurantID)
		if err != nil {
			log.Warnf("Menu cache read failed for restaurant %s: %v", restaurantID, err)
		} else if ok {
			return items, nil
		}
	}

	items, err := s.repo.ListMenuItems(ctx, restaurantID)
	if err != nil {
		return nil, err
	}
	if s.cache != nil {
		if err := s.cache.SetMenu(ctx, restaurantID, items); err != nil {
			log.Warnf("Menu cache write failed for restaurant %s: %v", restaurantID, err)
		}
	}
	return items, nil
}

func (s *RestaurantService) UpdateMenuItem(ctx context.Context, item *domain.MenuItem) error {
	if err := validateMenuItem("updateMenuItem", item); err != nil {
		return err
	}
	rows, err := s.repo.UpdateMenuItem(ctx, item)
	if err != nil {
		return err
	}
	if rows == 0 {
		return apperr.NotFound("updateMenuItem", "menu item %s not found", item.ID)
	}
	s.invalidate(ctx, item.RestaurantID)
	return nil
}

func (s *RestaurantService) SetAvailability(ctx context.Context, restaurantID, itemID string, available bool) error {
	rows, err := s.repo.SetMenuItemAvailability(ctx, restaurantID, itemID, available)
	if err != nil {
		return err
	}
	if rows == 0 {
		return apperr.NotFound("setAvailability", "menu item %s not found", itemID)
	}
	s.invalidate(ctx, restaurantID)
	return nil
}

func (s *RestaurantService) DeleteMenuItem(ctx context.Context, restaurantID, itemID string) error {
	rows, err := s.repo.DeleteMenuItem(ctx, restaurantID, itemID)
	if err != nil {
		return err
	}
	if rows == 0 {
		return apperr.NotFound("deleteMenuItem", "menu item %s not found", itemID)
	}
	s.invalidate(ctx, restaurantID)
	return nil
}

func (s *RestaurantService) UploadMenuImage(ctx context.Context, restaurantID, itemID, filename, contentType string, body io.Reader) (string, error) {
	url, err := s.saveImage(ctx, "menu_"+restaurantID+"_"+itemID+"_"+filepath.Base(filename), contentType, body)
	if err != nil {
		return "", err
	}
	rows, err := s.repo.UpdateMenuItemImage(ctx, restaurantID, itemID, url)
	if err != nil {
		return "", err
	}
	if rows == 0 {
		return "", apperr.NotFound("uploadMenuImage", "menu item %s not found", itemID)
	}
	s.invalidate(ctx, restaurantID)
	return url, nil
}

func (s *RestaurantService) saveImage(ctx context.Context, name, contentType string, body io.Reader) (string, error) {
	if !allowedImageTypes[contentType] {
		return "", apperr.Validation("saveImage", "invalid file type %q: only JPEG, PNG, GIF, WebP allowed", contentType)
	}
	if s.images == nil {
		return "", apperr.Validation("saveImage", "image uploads are disabled")
	}
	name = time.Now().UTC().Format("20060102150405") + "_" + name
	return s.images.Save(ctx, name, contentType, body)
}

func (s *RestaurantService) invalidate(ctx context.Context, restaurantID string) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Invalidate(ctx, restaurantID); err != nil {
		log.Warnf("Failed to invalidate menu cache for restaurant %s: %v", restaurantID, err)
	}
}

func validateMenuItem(op string, item *domain.MenuItem) error {
	if item.RestaurantID == "" {
		return apperr.Validation(op, "restaurant id is required")
	}
	if strings.TrimSpace(item.Name) == "" {
		return apperr.Validation(op, "item name is required")
	}
	if item.Price <= 0 {
		return apperr.Validation(op, "price must be positive")
	}
	return nil
}
