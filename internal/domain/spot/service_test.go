package spot

import (
	"bytes"
	"context"
	"errors"
	"image"
	"image/color"
	"image/png"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"

	"github.com/parkspot/parkspot-api/internal/pkg/imaging"
	"github.com/parkspot/parkspot-api/internal/pkg/storage"
)

func newSpot(owner uuid.UUID, total, available int) *Spot {
	return &Spot{
		ID:                    uuid.New(),
		OwnerID:               owner,
		Name:                  "Gulshan Plaza",
		ParkingType:           ParkingCovered,
		VehicleTypes:          pq.StringArray{"car"},
		TotalSlots:            total,
		AvailableSlots:        available,
		PricePerHour:          100,
		OperatingHoursStartMs: 8 * 3600 * 1000,
		OperatingHoursEndMs:   22 * 3600 * 1000,
		Latitude:              23.7925,
		Longitude:             90.4078,
		IsAvailable:           true,
	}
}

func newTestService(t *testing.T, repo Repository) (*Service, *storage.LocalStorage) {
	t.Helper()
	st, err := storage.NewLocalStorage(t.TempDir(), "http://media.test")
	if err != nil {
		t.Fatalf("local storage: %v", err)
	}
	return NewService(repo, st, imaging.NewProcessor(imaging.DefaultConfig()), 1<<20), st
}

func validCreate() *CreateSpotRequest {
	return &CreateSpotRequest{
		Name:                  " Banani Lot ",
		ParkingType:           "open",
		VehicleTypes:          []string{"car", "bike", "car"},
		TotalSlots:            4,
		PricePerHour:          80,
		OperatingHoursStartMs: 0,
		OperatingHoursEndMs:   86400000,
		Latitude:              23.7937,
		Longitude:             90.4066,
	}
}

func TestCreateStartsWithAllSlotsFree(t *testing.T) {
	repo := newMemRepo()
	svc, _ := newTestService(t, repo)
	owner := uuid.New()

	sp, err := svc.Create(context.Background(), owner, validCreate())
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if sp.AvailableSlots != 4 || sp.TotalSlots != 4 {
		t.Fatalf("expected 4/4 slots, got %d/%d", sp.AvailableSlots, sp.TotalSlots)
	}
	if sp.OwnerID != owner || sp.Name != "Banani Lot" || !sp.IsAvailable {
		t.Fatalf("unexpected spot %+v", sp)
	}
	if len(sp.VehicleTypes) != 2 {
		t.Fatalf("expected duplicate vehicle types removed, got %v", sp.VehicleTypes)
	}
}

func TestCreateRejectsMissingLocationAndBadHours(t *testing.T) {
	svc, _ := newTestService(t, newMemRepo())

	req := validCreate()
	req.Latitude, req.Longitude = 0, 0
	if _, err := svc.Create(context.Background(), uuid.New(), req); !errors.Is(err, ErrLocationRequired) {
		t.Fatalf("expected ErrLocationRequired, got %v", err)
	}

	req = validCreate()
	req.OperatingHoursStartMs, req.OperatingHoursEndMs = 5000, 5000
	if _, err := svc.Create(context.Background(), uuid.New(), req); !errors.Is(err, ErrInvalidOperatingHours) {
		t.Fatalf("expected ErrInvalidOperatingHours, got %v", err)
	}
}

func TestPriceOnlyEditPreservesAvailableSlots(t *testing.T) {
	owner := uuid.New()
	sp := newSpot(owner, 5, 3)
	repo := newMemRepo(sp)
	svc, _ := newTestService(t, repo)

	price := int64(150)
	updated, err := svc.Update(context.Background(), owner, sp.ID, &UpdateSpotRequest{PricePerHour: &price})
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if updated.PricePerHour != 150 {
		t.Fatalf("expected price 150, got %d", updated.PricePerHour)
	}
	if updated.AvailableSlots != 3 {
		t.Fatalf("available_slots must stay 3, got %d", updated.AvailableSlots)
	}
	if repo.writes != 0 {
		t.Fatalf("edit must not write the slot counter, got %d writes", repo.writes)
	}
}

func TestUpdateChecksOwnershipAndMergedHours(t *testing.T) {
	owner := uuid.New()
	sp := newSpot(owner, 5, 5)
	svc, _ := newTestService(t, newMemRepo(sp))

	name := "Stolen"
	if _, err := svc.Update(context.Background(), uuid.New(), sp.ID, &UpdateSpotRequest{Name: &name}); !errors.Is(err, ErrNotSpotOwner) {
		t.Fatalf("expected ErrNotSpotOwner, got %v", err)
	}

	end := int64(1000)
	if _, err := svc.Update(context.Background(), owner, sp.ID, &UpdateSpotRequest{OperatingHoursEndMs: &end}); !errors.Is(err, ErrInvalidOperatingHours) {
		t.Fatalf("end before stored start should fail, got %v", err)
	}

	if _, err := svc.Update(context.Background(), owner, sp.ID, &UpdateSpotRequest{}); !errors.Is(err, ErrNothingToUpdate) {
		t.Fatalf("expected ErrNothingToUpdate, got %v", err)
	}

	if _, err := svc.Update(context.Background(), owner, uuid.New(), &UpdateSpotRequest{Name: &name}); !errors.Is(err, ErrSpotNotFound) {
		t.Fatalf("expected ErrSpotNotFound, got %v", err)
	}
}

func TestDeleteIsOwnerOnly(t *testing.T) {
	owner := uuid.New()
	sp := newSpot(owner, 2, 0)
	repo := newMemRepo(sp)
	svc, _ := newTestService(t, repo)

	if err := svc.Delete(context.Background(), uuid.New(), sp.ID); !errors.Is(err, ErrNotSpotOwner) {
		t.Fatalf("expected ErrNotSpotOwner, got %v", err)
	}
	// Slots in use do not block deletion.
	if err := svc.Delete(context.Background(), owner, sp.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if len(repo.spots) != 0 {
		t.Fatal("spot should be gone")
	}
}

func TestListNearbySortsByDistance(t *testing.T) {
	owner := uuid.New()
	far := newSpot(owner, 1, 1)
	far.Latitude, far.Longitude = 22.3569, 91.7832 // Chattogram
	near := newSpot(owner, 1, 1)
	hidden := newSpot(owner, 1, 1)
	hidden.IsAvailable = false

	svc, _ := newTestService(t, newMemRepo(far, near, hidden))

	got, err := svc.ListNearby(context.Background(), &Point{Lat: 23.8103, Lng: 90.4125})
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("expected 2 listed spots, got %d", len(got))
	}
	if got[0].Spot.ID != near.ID || got[1].Spot.ID != far.ID {
		t.Fatal("expected nearest spot first")
	}
	if *got[1].DistanceKm < 200 || *got[1].DistanceKm > 230 {
		t.Fatalf("unexpected distance %.1f", *got[1].DistanceKm)
	}

	got, _ = svc.ListNearby(context.Background(), nil)
	if got[0].DistanceKm != nil {
		t.Fatal("distance should be omitted without an origin")
	}
}

func pngBytes(t *testing.T) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, 8, 8))
	img.Set(2, 2, color.RGBA{G: 200, A: 255})
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatalf("encode: %v", err)
	}
	return buf.Bytes()
}

func TestUploadPhotoReplacesPrevious(t *testing.T) {
	owner := uuid.New()
	sp := newSpot(owner, 1, 1)
	repo := newMemRepo(sp)
	svc, st := newTestService(t, repo)
	ctx := context.Background()

	svc.now = func() time.Time { return time.UnixMilli(1717000000000) }
	first, err := svc.UploadPhoto(ctx, owner, sp.ID, bytes.NewReader(pngBytes(t)))
	if err != nil {
		t.Fatalf("upload: %v", err)
	}
	wantKey := "parking_spot_photos/1717000000000-" + owner.String() + ".jpg"
	if first.PhotoURL.String != "http://media.test/"+wantKey {
		t.Fatalf("unexpected url %s", first.PhotoURL.String)
	}

	svc.now = func() time.Time { return time.UnixMilli(1717000005000) }
	if _, err := svc.UploadPhoto(ctx, owner, sp.ID, bytes.NewReader(pngBytes(t))); err != nil {
		t.Fatalf("second upload: %v", err)
	}
	if ok, _ := st.Exists(ctx, wantKey); ok {
		t.Fatal("previous photo should be deleted")
	}
	if !strings.HasSuffix(repo.spots[sp.ID].PhotoURL.String, "1717000005000-"+owner.String()+".jpg") {
		t.Fatalf("photo_url not updated: %s", repo.spots[sp.ID].PhotoURL.String)
	}

	if _, err := svc.UploadPhoto(ctx, owner, sp.ID, strings.NewReader("not an image")); !errors.Is(err, ErrPhotoInvalid) {
		t.Fatalf("expected ErrPhotoInvalid, got %v", err)
	}
}
