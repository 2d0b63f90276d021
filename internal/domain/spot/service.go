package spot

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"

	"github.com/parkspot/parkspot-api/internal/pkg/imaging"
	"github.com/parkspot/parkspot-api/internal/pkg/logger"
	"github.com/parkspot/parkspot-api/internal/pkg/storage"
)

// Nearby is a listed spot with its distance from the caller, when known.
type Nearby struct {
	Spot       *Spot
	DistanceKm *float64
}

// Service handles the spot registry
type Service struct {
	repo          Repository
	storage       storage.Storage
	images        *imaging.Processor
	maxPhotoBytes int64
	now           func() time.Time
}

// NewService creates spot service
func NewService(repo Repository, st storage.Storage, images *imaging.Processor, maxPhotoBytes int64) *Service {
	return &Service{
		repo:          repo,
		storage:       st,
		images:        images,
		maxPhotoBytes: maxPhotoBytes,
		now:           time.Now,
	}
}

// Create registers a spot for the owner; every slot starts free.
func (s *Service) Create(ctx context.Context, ownerID uuid.UUID, req *CreateSpotRequest) (*Spot, error) {
	if req.Latitude == 0 && req.Longitude == 0 {
		return nil, ErrLocationRequired
	}
	if req.OperatingHoursEndMs <= req.OperatingHoursStartMs {
		return nil, ErrInvalidOperatingHours
	}

	isAvailable := true
	if req.IsAvailable != nil {
		isAvailable = *req.IsAvailable
	}

	now := s.now()
	spot := &Spot{
		ID:                    uuid.New(),
		OwnerID:               ownerID,
		Name:                  strings.TrimSpace(req.Name),
		ParkingType:           ParkingType(req.ParkingType),
		EmergencyContact:      strings.TrimSpace(req.EmergencyContact),
		VehicleTypes:          pq.StringArray(dedupe(req.VehicleTypes)),
		TotalSlots:            req.TotalSlots,
		AvailableSlots:        req.TotalSlots,
		PricePerHour:          req.PricePerHour,
		OperatingHoursStartMs: req.OperatingHoursStartMs,
		OperatingHoursEndMs:   req.OperatingHoursEndMs,
		Latitude:              req.Latitude,
		Longitude:             req.Longitude,
		IsAvailable:           isAvailable,
		CreatedAt:             now,
		UpdatedAt:             now,
	}

	if err := s.repo.Create(ctx, spot); err != nil {
		return nil, err
	}

	logger.FromContext(ctx).Info().
		Str("spot_id", spot.ID.String()).
		Int("total_slots", spot.TotalSlots).
		Msg("Parking spot created")
	return spot, nil
}

// GetByID returns a spot or ErrSpotNotFound
func (s *Service) GetByID(ctx context.Context, id uuid.UUID) (*Spot, error) {
	spot, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if spot == nil {
		return nil, ErrSpotNotFound
	}
	return spot, nil
}

// ListNearby returns listed spots, closest first when origin is given.
func (s *Service) ListNearby(ctx context.Context, origin *Point) ([]Nearby, error) {
	spots, err := s.repo.ListAvailable(ctx)
	if err != nil {
		return nil, err
	}

	out := make([]Nearby, 0, len(spots))
	for _, sp := range spots {
		n := Nearby{Spot: sp}
		if origin != nil {
			d := DistanceKm(*origin, Point{Lat: sp.Latitude, Lng: sp.Longitude})
			n.DistanceKm = &d
		}
		out = append(out, n)
	}

	if origin != nil {
		sort.SliceStable(out, func(i, j int) bool { return *out[i].DistanceKm < *out[j].DistanceKm })
	}
	return out, nil
}

// ListByOwner returns the owner's spots, newest first
func (s *Service) ListByOwner(ctx context.Context, ownerID uuid.UUID) ([]*Spot, error) {
	return s.repo.ListByOwner(ctx, ownerID)
}

// Update patches the supplied fields. available_slots is never touched.
func (s *Service) Update(ctx context.Context, ownerID, id uuid.UUID, req *UpdateSpotRequest) (*Spot, error) {
	spot, err := s.owned(ctx, ownerID, id)
	if err != nil {
		return nil, err
	}

	patch := req.ToPatch()
	if patch.Empty() {
		return nil, ErrNothingToUpdate
	}
	if patch.VehicleTypes != nil {
		patch.VehicleTypes = dedupe(patch.VehicleTypes)
	}

	start, end := spot.OperatingHoursStartMs, spot.OperatingHoursEndMs
	if patch.OperatingHoursStartMs != nil {
		start = *patch.OperatingHoursStartMs
	}
	if patch.OperatingHoursEndMs != nil {
		end = *patch.OperatingHoursEndMs
	}
	if end <= start {
		return nil, ErrInvalidOperatingHours
	}

	lat, lng := spot.Latitude, spot.Longitude
	if patch.Latitude != nil {
		lat = *patch.Latitude
	}
	if patch.Longitude != nil {
		lng = *patch.Longitude
	}
	if lat == 0 && lng == 0 {
		return nil, ErrLocationRequired
	}

	if err := s.repo.Update(ctx, id, patch); err != nil {
		return nil, err
	}
	return s.GetByID(ctx, id)
}

// Delete removes the spot unconditionally. Bookings that reference it are kept.
func (s *Service) Delete(ctx context.Context, ownerID, id uuid.UUID) error {
	spot, err := s.owned(ctx, ownerID, id)
	if err != nil {
		return err
	}

	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}

	if spot.PhotoURL.Valid {
		s.deletePhoto(ctx, spot.PhotoURL.String)
	}

	logger.FromContext(ctx).Info().Str("spot_id", id.String()).Msg("Parking spot deleted")
	return nil
}

// UploadPhoto stores a JPEG rendition of the image and points photo_url at it.
func (s *Service) UploadPhoto(ctx context.Context, ownerID, id uuid.UUID, file io.Reader) (*Spot, error) {
	spot, err := s.owned(ctx, ownerID, id)
	if err != nil {
		return nil, err
	}

	data, _, err := storage.ReadImage(file, s.maxPhotoBytes)
	if err != nil {
		switch {
		case errors.Is(err, storage.ErrFileTooLarge):
			return nil, ErrPhotoTooLarge
		case errors.Is(err, storage.ErrInvalidMimeType), errors.Is(err, storage.ErrEmptyFile):
			return nil, ErrPhotoInvalid
		}
		return nil, err
	}

	img, err := s.images.NormalizeJPEG(data)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrPhotoInvalid, err)
	}

	key := storage.PhotoKey(ownerID, s.now())
	if err := s.storage.Put(ctx, key, bytes.NewReader(img.Data), img.ContentType); err != nil {
		return nil, fmt.Errorf("store photo: %w", err)
	}

	url := s.storage.GetURL(key)
	if err := s.repo.UpdatePhotoURL(ctx, id, url); err != nil {
		_ = s.storage.Delete(ctx, key)
		return nil, err
	}

	if spot.PhotoURL.Valid {
		s.deletePhoto(ctx, spot.PhotoURL.String)
	}

	spot.PhotoURL.String, spot.PhotoURL.Valid = url, true
	return spot, nil
}

func (s *Service) owned(ctx context.Context, ownerID, id uuid.UUID) (*Spot, error) {
	spot, err := s.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !spot.IsOwnedBy(ownerID) {
		return nil, ErrNotSpotOwner
	}
	return spot, nil
}

func (s *Service) deletePhoto(ctx context.Context, url string) {
	key, ok := storage.KeyFromURL(s.storage, url)
	if !ok {
		return
	}
	if err := s.storage.Delete(ctx, key); err != nil {
		logger.FromContext(ctx).Warn().Err(err).Str("key", key).Msg("Failed to delete old spot photo")
	}
}

func dedupe(values []string) []string {
	seen := make(map[string]struct{}, len(values))
	out := make([]string, 0, len(values))
	for _, v := range values {
		if _, ok := seen[v]; ok {
			continue
		}
		seen[v] = struct{}{}
		out = append(out, v)
	}
	return out
}
