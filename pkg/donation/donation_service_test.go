package donation

import (
	"zerohunger-backend/domain"
	"zerohunger-backend/entities"
	"zerohunger-backend/pkg/geo"

	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// --- fakes -----------------------------------------------------------------

type fakeDonationRepository struct {
	mu          sync.Mutex
	donations   map[string]*entities.Donation
	restaurants *fakeRestaurantRepository
	ngos        *fakeNGORepository
}

func (r *fakeDonationRepository) CreateDonation(_ context.Context, donation *entities.Donation) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if donation.CreatedAt.IsZero() {
		donation.CreatedAt = time.Now()
	}
	stored := *donation
	r.donations[donation.ID.String()] = &stored
	return nil
}

func (r *fakeDonationRepository) GetDonationByID(_ context.Context, id string) (*entities.Donation, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	stored, ok := r.donations[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	d := *stored
	if r.restaurants != nil {
		if rest, ok := r.restaurants.restaurants[d.RestaurantID.String()]; ok {
			cp := *rest
			d.Restaurant = &cp
		}
	}
	if r.ngos != nil && d.NGOID != nil {
		if n, ok := r.ngos.ngos[d.NGOID.String()]; ok {
			cp := *n
			d.NGO = &cp
		}
	}
	return &d, nil
}

func (r *fakeDonationRepository) GetRestaurantDonations(_ context.Context, restaurantID string) ([]*entities.Donation, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var result []*entities.Donation
	for _, stored := range r.donations {
		if stored.RestaurantID.String() == restaurantID {
			d := *stored
			result = append(result, &d)
		}
	}
	sortByCreatedAtDesc(result)
	return result, nil
}

func (r *fakeDonationRepository) GetNGODonations(_ context.Context, ngoID string, statuses ...string) ([]*entities.Donation, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var result []*entities.Donation
	for _, stored := range r.donations {
		if stored.NGOID == nil || stored.NGOID.String() != ngoID {
			continue
		}
		if len(statuses) > 0 && !containsString(statuses, stored.Status) {
			continue
		}
		d := *stored
		result = append(result, &d)
	}
	sortByCreatedAtDesc(result)
	return result, nil
}

func (r *fakeDonationRepository) GetAllDonations(_ context.Context) ([]*entities.Donation, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var result []*entities.Donation
	for _, stored := range r.donations {
		d := *stored
		result = append(result, &d)
	}
	sortByCreatedAtDesc(result)
	return result, nil
}

func (r *fakeDonationRepository) GetNearbyDonations(_ context.Context, lat, lng, radiusKm float64, status string) ([]*entities.Donation, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	type withDistance struct {
		donation *entities.Donation
		distance float64
	}
	var matched []withDistance
	for _, stored := range r.donations {
		if stored.Status != status {
			continue
		}
		d := geo.Distance(lat, lng, stored.Location.Latitude, stored.Location.Longitude)
		if d > radiusKm {
			continue
		}
		cp := *stored
		matched = append(matched, withDistance{donation: &cp, distance: d})
	}
	sort.Slice(matched, func(i, j int) bool { return matched[i].distance < matched[j].distance })
	result := make([]*entities.Donation, 0, len(matched))
	for _, m := range matched {
		result = append(result, m.donation)
	}
	return result, nil
}

func (r *fakeDonationRepository) ClaimDonation(_ context.Context, id, ngoID string, claimedAt time.Time) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	d, ok := r.donations[id]
	if !ok || d.Status != entities.DonationStatusAvailable {
		return 0, nil
	}
	ngoUUID, err := uuid.Parse(ngoID)
	if err != nil {
		return 0, err
	}
	d.Status = entities.DonationStatusClaimed
	d.NGOID = &ngoUUID
	t := claimedAt
	d.ClaimedAt = &t
	return 1, nil
}

func (r *fakeDonationRepository) CompleteDonation(_ context.Context, id, ngoID string, deliveredAt time.Time) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	d, ok := r.donations[id]
	if !ok || d.Status != entities.DonationStatusClaimed || d.NGOID == nil || d.NGOID.String() != ngoID {
		return 0, nil
	}
	d.Status = entities.DonationStatusDelivered
	t := deliveredAt
	d.DeliveredAt = &t
	return 1, nil
}

func (r *fakeDonationRepository) CancelDonation(_ context.Context, id, adminID, reason string) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	d, ok := r.donations[id]
	if !ok {
		return 0, nil
	}
	if d.Status != entities.DonationStatusAvailable && d.Status != entities.DonationStatusClaimed {
		return 0, nil
	}
	adminUUID, err := uuid.Parse(adminID)
	if err != nil {
		return 0, err
	}
	d.Status = entities.DonationStatusCancelled
	d.CancelledBy = &adminUUID
	d.CancellationReason = reason
	return 1, nil
}

func (r *fakeDonationRepository) DeleteAvailableDonation(_ context.Context, id string) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	d, ok := r.donations[id]
	if !ok || d.Status != entities.DonationStatusAvailable {
		return 0, nil
	}
	delete(r.donations, id)
	return 1, nil
}

func (r *fakeDonationRepository) UpdateDonation(_ context.Context, id string, updates map[string]interface{}) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	d, ok := r.donations[id]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	for key, value := range updates {
		switch key {
		case "food_type":
			d.FoodType = value.(string)
		case "quantity":
			d.Quantity = value.(string)
		case "description":
			d.Description = value.(string)
		case "address":
			d.Address = value.(string)
		case "expiry_time":
			d.ExpiryTime = value.(time.Time)
		case "location_latitude":
			d.Location.Latitude = value.(float64)
		case "location_longitude":
			d.Location.Longitude = value.(float64)
		case "location_formatted_address":
			d.Location.FormattedAddress = value.(string)
		case "location_street":
			d.Location.Street = value.(string)
		case "location_city":
			d.Location.City = value.(string)
		case "location_state":
			d.Location.State = value.(string)
		case "location_zipcode":
			d.Location.Zipcode = value.(string)
		case "location_country_code":
			d.Location.CountryCode = value.(string)
		case "location_geocoded":
			d.Location.Geocoded = value.(bool)
		}
	}
	return nil
}

func (r *fakeDonationRepository) CountDonations(_ context.Context, status string) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var count int64
	for _, d := range r.donations {
		if status == "" || d.Status == status {
			count++
		}
	}
	return count, nil
}

type fakeNGORepository struct {
	mu   sync.Mutex
	ngos map[string]*entities.NGO
}

func (r *fakeNGORepository) GetNGOByID(_ context.Context, id string) (*entities.NGO, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	stored, ok := r.ngos[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	n := *stored
	return &n, nil
}

func (r *fakeNGORepository) GetVerifiedNGOEmailsNear(_ context.Context, lat, lng, radiusKm float64) ([]string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var emails []string
	for _, n := range r.ngos {
		if !n.Verified || !n.Location.HasCoordinates() {
			continue
		}
		if geo.Distance(lat, lng, n.Location.Latitude, n.Location.Longitude) <= radiusKm {
			emails = append(emails, n.Email)
		}
	}
	return emails, nil
}

func (r *fakeNGORepository) UpdateNGO(_ context.Context, id string, updates map[string]interface{}) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	n, ok := r.ngos[id]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	if v, ok := updates["operating_radius"]; ok {
		n.OperatingRadius = v.(float64)
	}
	if v, ok := updates["verified"]; ok {
		n.Verified = v.(bool)
	}
	return nil
}

func (r *fakeNGORepository) ListNGOs(_ context.Context, verifiedOnly bool) ([]*entities.NGO, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var result []*entities.NGO
	for _, stored := range r.ngos {
		if verifiedOnly && !stored.Verified {
			continue
		}
		n := *stored
		result = append(result, &n)
	}
	return result, nil
}

func (r *fakeNGORepository) ListUnverifiedNGOs(_ context.Context) ([]*entities.NGO, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var result []*entities.NGO
	for _, stored := range r.ngos {
		if !stored.Verified {
			n := *stored
			result = append(result, &n)
		}
	}
	return result, nil
}

func (r *fakeNGORepository) CountVerifiedNGOs(_ context.Context) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var count int64
	for _, n := range r.ngos {
		if n.Verified {
			count++
		}
	}
	return count, nil
}

type fakeRestaurantRepository struct {
	mu          sync.Mutex
	restaurants map[string]*entities.Restaurant
}

func (r *fakeRestaurantRepository) GetRestaurantByID(_ context.Context, id string) (*entities.Restaurant, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	stored, ok := r.restaurants[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	rest := *stored
	return &rest, nil
}

func (r *fakeRestaurantRepository) GetRestaurantsByIDs(_ context.Context, ids []string) ([]*entities.Restaurant, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var result []*entities.Restaurant
	for _, id := range ids {
		if stored, ok := r.restaurants[id]; ok {
			rest := *stored
			result = append(result, &rest)
		}
	}
	return result, nil
}

func (r *fakeRestaurantRepository) UpdateRestaurant(_ context.Context, id string, updates map[string]interface{}) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	rest, ok := r.restaurants[id]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	if v, ok := updates["verified"]; ok {
		rest.Verified = v.(bool)
	}
	return nil
}

func (r *fakeRestaurantRepository) ListRestaurants(_ context.Context, verifiedOnly bool) ([]*entities.Restaurant, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var result []*entities.Restaurant
	for _, stored := range r.restaurants {
		if verifiedOnly && !stored.Verified {
			continue
		}
		rest := *stored
		result = append(result, &rest)
	}
	return result, nil
}

func (r *fakeRestaurantRepository) ListUnverifiedRestaurants(_ context.Context) ([]*entities.Restaurant, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var result []*entities.Restaurant
	for _, stored := range r.restaurants {
		if !stored.Verified {
			rest := *stored
			result = append(result, &rest)
		}
	}
	return result, nil
}

func (r *fakeRestaurantRepository) CountVerifiedRestaurants(_ context.Context) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var count int64
	for _, rest := range r.restaurants {
		if rest.Verified {
			count++
		}
	}
	return count, nil
}

type fakeGeocoder struct {
	mu         sync.Mutex
	candidates map[string][]*domain.GeocodeResult
	calls      int
}

func (g *fakeGeocoder) Geocode(_ context.Context, address string) ([]*domain.GeocodeResult, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.calls++
	if candidates, ok := g.candidates[address]; ok {
		return candidates, nil
	}
	return nil, domain.ErrGeocodingFailed
}

func (g *fakeGeocoder) ReverseGeocode(_ context.Context, lat, lng float64) (*domain.GeocodeResult, error) {
	return nil, domain.ErrGeocodingFailed
}

func (g *fakeGeocoder) callCount() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.calls
}

type sentNotification struct {
	recipient string
	subject   string
	message   string
}

type recordingDispatcher struct {
	mu   sync.Mutex
	sent []sentNotification
}

func (d *recordingDispatcher) Notify(recipient, subject, message string) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.sent = append(d.sent, sentNotification{recipient, subject, message})
	return nil
}

func (d *recordingDispatcher) NotifyBulk(recipients []string, subject, message string) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	for _, recipient := range recipients {
		d.sent = append(d.sent, sentNotification{recipient, subject, message})
	}
	return nil
}

// waitFor polls until at least n notifications landed; dispatch is async.
func (d *recordingDispatcher) waitFor(t *testing.T, n int) []sentNotification {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		d.mu.Lock()
		if len(d.sent) >= n {
			sent := append([]sentNotification(nil), d.sent...)
			d.mu.Unlock()
			return sent
		}
		d.mu.Unlock()
		time.Sleep(10 * time.Millisecond)
	}
	t.Fatalf("timed out waiting for %d notifications", n)
	return nil
}

func sortByCreatedAtDesc(donations []*entities.Donation) {
	sort.Slice(donations, func(i, j int) bool {
		return donations[i].CreatedAt.After(donations[j].CreatedAt)
	})
}

func containsString(list []string, s string) bool {
	for _, item := range list {
		if item == s {
			return true
		}
	}
	return false
}

// --- fixture ---------------------------------------------------------------

type fixture struct {
	donations   *fakeDonationRepository
	ngos        *fakeNGORepository
	restaurants *fakeRestaurantRepository
	geocoder    *fakeGeocoder
	dispatcher  *recordingDispatcher
	service     DonationService
}

func newFixture() *fixture {
	donationRepo := &fakeDonationRepository{donations: map[string]*entities.Donation{}}
	ngoRepo := &fakeNGORepository{ngos: map[string]*entities.NGO{}}
	restaurantRepo := &fakeRestaurantRepository{restaurants: map[string]*entities.Restaurant{}}
	donationRepo.restaurants = restaurantRepo
	donationRepo.ngos = ngoRepo

	geocoder := &fakeGeocoder{candidates: map[string][]*domain.GeocodeResult{
		"MG Road, Bangalore": {{
			Latitude:         12.97,
			Longitude:        77.59,
			FormattedAddress: "MG Road, Bengaluru, Karnataka, India",
			City:             "Bengaluru",
			State:            "KA",
			CountryCode:      "in",
		}},
		"Anna Salai, Chennai": {{
			Latitude:         13.06,
			Longitude:        80.26,
			FormattedAddress: "Anna Salai, Chennai, Tamil Nadu, India",
			City:             "Chennai",
			State:            "TN",
			CountryCode:      "in",
		}},
	}}
	dispatcher := &recordingDispatcher{}

	service := NewDonationService(donationRepo, ngoRepo, restaurantRepo, geocoder, dispatcher, nil, nil)

	return &fixture{
		donations:   donationRepo,
		ngos:        ngoRepo,
		restaurants: restaurantRepo,
		geocoder:    geocoder,
		dispatcher:  dispatcher,
		service:     service,
	}
}

func (f *fixture) addRestaurant(name, email string, lat, lng float64) *entities.Restaurant {
	r := &entities.Restaurant{
		ID:    uuid.New(),
		Name:  name,
		Email: email,
		Location: entities.Location{
			Latitude:         lat,
			Longitude:        lng,
			FormattedAddress: name,
			Geocoded:         true,
		},
		Verified: true,
	}
	f.restaurants.restaurants[r.ID.String()] = r
	return r
}

func (f *fixture) addNGO(name, email string, verified bool, lat, lng, radius float64) *entities.NGO {
	n := &entities.NGO{
		ID:              uuid.New(),
		Name:            name,
		Email:           email,
		Phone:           "9000000000",
		OperatingRadius: radius,
		Verified:        verified,
	}
	if lat != 0 || lng != 0 {
		n.Location = entities.Location{
			Latitude:         lat,
			Longitude:        lng,
			FormattedAddress: name,
			Geocoded:         true,
		}
	}
	f.ngos.ngos[n.ID.String()] = n
	return n
}

func (f *fixture) addAvailableDonation(restaurantID uuid.UUID, foodType string, lat, lng float64) *entities.Donation {
	d := &entities.Donation{
		ID:           uuid.New(),
		RestaurantID: restaurantID,
		FoodType:     foodType,
		Quantity:     "10 servings",
		Description:  "surplus from lunch service",
		Address:      "MG Road, Bangalore",
		Location: entities.Location{
			Latitude:         lat,
			Longitude:        lng,
			FormattedAddress: "MG Road, Bengaluru, Karnataka, India",
			Geocoded:         true,
		},
		ExpiryTime: time.Now().Add(4 * time.Hour),
		Status:     entities.DonationStatusAvailable,
		Timestamp:  entities.Timestamp{CreatedAt: time.Now()},
	}
	f.donations.donations[d.ID.String()] = d
	return d
}

// --- creation --------------------------------------------------------------

func TestCreateDonation(t *testing.T) {
	f := newFixture()
	r := f.addRestaurant("Spice Garden", "spice@example.com", 12.96, 77.58)

	created, err := f.service.CreateDonation(context.Background(), domain.CreateDonationRequest{
		FoodType:    "Veg meals",
		Quantity:    "25 servings",
		Description: "leftover buffet",
		Address:     "MG Road, Bangalore",
		ExpiryTime:  time.Now().Add(2 * time.Hour).Format(time.RFC3339),
	}, r.ID.String())
	if err != nil {
		t.Fatalf("CreateDonation returned error: %v", err)
	}

	if created.Status != entities.DonationStatusAvailable {
		t.Errorf("new donation status = %s, want available", created.Status)
	}
	if created.Location.Latitude != 12.97 || created.Location.Longitude != 77.59 {
		t.Errorf("location not geocoded: (%f, %f)", created.Location.Latitude, created.Location.Longitude)
	}
	if created.Location.FormattedAddress == "" {
		t.Error("formatted address missing after geocoding")
	}
}

func TestCreateDonationUnresolvableAddress(t *testing.T) {
	f := newFixture()
	r := f.addRestaurant("Spice Garden", "spice@example.com", 12.96, 77.58)

	_, err := f.service.CreateDonation(context.Background(), domain.CreateDonationRequest{
		FoodType:    "Veg meals",
		Quantity:    "25 servings",
		Description: "leftover buffet",
		Address:     "no such place",
		ExpiryTime:  time.Now().Add(2 * time.Hour).Format(time.RFC3339),
	}, r.ID.String())
	if !errors.Is(err, domain.ErrGeocodingFailed) {
		t.Errorf("expected ErrGeocodingFailed, got %v", err)
	}

	count, _ := f.donations.CountDonations(context.Background(), "")
	if count != 0 {
		t.Errorf("donation persisted despite failed geocoding")
	}
}

func TestCreateDonationExpiryMustBeFuture(t *testing.T) {
	f := newFixture()
	r := f.addRestaurant("Spice Garden", "spice@example.com", 12.96, 77.58)

	_, err := f.service.CreateDonation(context.Background(), domain.CreateDonationRequest{
		FoodType:    "Veg meals",
		Quantity:    "25 servings",
		Description: "leftover buffet",
		Address:     "MG Road, Bangalore",
		ExpiryTime:  time.Now().Add(-time.Hour).Format(time.RFC3339),
	}, r.ID.String())
	if !errors.Is(err, domain.ErrExpiryNotInFuture) {
		t.Errorf("expected ErrExpiryNotInFuture, got %v", err)
	}
}

func TestCreateDonationNotifiesNearbyVerifiedNGOs(t *testing.T) {
	f := newFixture()
	r := f.addRestaurant("Spice Garden", "spice@example.com", 12.96, 77.58)

	// ~3 km away, inside the 10 km default fan-out
	f.addNGO("Near Shelter", "near@example.com", true, 12.997, 77.59, 10)
	// ~11 km away, outside
	f.addNGO("Far Shelter", "far@example.com", true, 13.069, 77.59, 10)
	// nearby but unverified
	f.addNGO("Unverified Shelter", "unverified@example.com", false, 12.98, 77.59, 10)

	_, err := f.service.CreateDonation(context.Background(), domain.CreateDonationRequest{
		FoodType:    "Veg meals",
		Quantity:    "25 servings",
		Description: "leftover buffet",
		Address:     "MG Road, Bangalore",
		ExpiryTime:  time.Now().Add(2 * time.Hour).Format(time.RFC3339),
	}, r.ID.String())
	if err != nil {
		t.Fatalf("CreateDonation returned error: %v", err)
	}

	sent := f.dispatcher.waitFor(t, 1)
	if len(sent) != 1 {
		t.Fatalf("expected exactly 1 notification, got %d", len(sent))
	}
	if sent[0].recipient != "near@example.com" {
		t.Errorf("notified %s, want near@example.com", sent[0].recipient)
	}
}

// --- claiming --------------------------------------------------------------

func TestClaimDonation(t *testing.T) {
	f := newFixture()
	r := f.addRestaurant("Spice Garden", "spice@example.com", 12.96, 77.58)
	n := f.addNGO("City Shelter", "shelter@example.com", true, 12.99, 77.60, 10)
	d := f.addAvailableDonation(r.ID, "Veg meals", 12.97, 77.59)

	claimed, err := f.service.ClaimDonation(context.Background(), d.ID.String(), n.ID.String())
	if err != nil {
		t.Fatalf("ClaimDonation returned error: %v", err)
	}

	if claimed.Status != entities.DonationStatusClaimed {
		t.Errorf("status = %s, want claimed", claimed.Status)
	}
	if claimed.NGOID != n.ID.String() {
		t.Errorf("ngo_id = %s, want %s", claimed.NGOID, n.ID)
	}
	if claimed.ClaimedAt == nil {
		t.Error("claimed_at not set")
	}

	sent := f.dispatcher.waitFor(t, 1)
	if sent[0].recipient != "spice@example.com" || sent[0].subject != "Donation Claimed" {
		t.Errorf("unexpected notification: %+v", sent[0])
	}
}

func TestClaimDonationUnverifiedNGO(t *testing.T) {
	f := newFixture()
	r := f.addRestaurant("Spice Garden", "spice@example.com", 12.96, 77.58)
	n := f.addNGO("City Shelter", "shelter@example.com", false, 12.99, 77.60, 10)
	d := f.addAvailableDonation(r.ID, "Veg meals", 12.97, 77.59)

	_, err := f.service.ClaimDonation(context.Background(), d.ID.String(), n.ID.String())
	if !errors.Is(err, domain.ErrAccountNotVerified) {
		t.Errorf("expected ErrAccountNotVerified, got %v", err)
	}
}

func TestClaimDonationNotFound(t *testing.T) {
	f := newFixture()
	n := f.addNGO("City Shelter", "shelter@example.com", true, 12.99, 77.60, 10)

	_, err := f.service.ClaimDonation(context.Background(), uuid.NewString(), n.ID.String())
	if !errors.Is(err, domain.ErrDonationNotFound) {
		t.Errorf("expected ErrDonationNotFound, got %v", err)
	}
}

func TestClaimExclusivity(t *testing.T) {
	f := newFixture()
	r := f.addRestaurant("Spice Garden", "spice@example.com", 12.96, 77.58)
	d := f.addAvailableDonation(r.ID, "Veg meals", 12.97, 77.59)

	const contenders = 16
	ngoIDs := make([]string, contenders)
	for i := 0; i < contenders; i++ {
		n := f.addNGO(fmt.Sprintf("Shelter %d", i), fmt.Sprintf("shelter%d@example.com", i), true, 12.99, 77.60, 10)
		ngoIDs[i] = n.ID.String()
	}

	var wg sync.WaitGroup
	results := make([]error, contenders)
	for i := 0; i < contenders; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, results[i] = f.service.ClaimDonation(context.Background(), d.ID.String(), ngoIDs[i])
		}(i)
	}
	wg.Wait()

	var winners, losers int
	winnerIdx := -1
	for i, err := range results {
		switch {
		case err == nil:
			winners++
			winnerIdx = i
		case errors.Is(err, domain.ErrDonationAlreadyClaimed):
			losers++
		default:
			t.Errorf("contender %d got unexpected error: %v", i, err)
		}
	}

	if winners != 1 {
		t.Fatalf("got %d winners, want exactly 1", winners)
	}
	if losers != contenders-1 {
		t.Errorf("got %d losers, want %d", losers, contenders-1)
	}

	final, err := f.donations.GetDonationByID(context.Background(), d.ID.String())
	if err != nil {
		t.Fatalf("reading final state: %v", err)
	}
	if final.Status != entities.DonationStatusClaimed {
		t.Errorf("final status = %s, want claimed", final.Status)
	}
	if final.NGOID == nil || final.NGOID.String() != ngoIDs[winnerIdx] {
		t.Errorf("final ngo does not match the winner")
	}
}

// --- completion and cancellation -------------------------------------------

func TestCompleteDonation(t *testing.T) {
	f := newFixture()
	r := f.addRestaurant("Spice Garden", "spice@example.com", 12.96, 77.58)
	n := f.addNGO("City Shelter", "shelter@example.com", true, 12.99, 77.60, 10)
	d := f.addAvailableDonation(r.ID, "Veg meals", 12.97, 77.59)

	if _, err := f.service.ClaimDonation(context.Background(), d.ID.String(), n.ID.String()); err != nil {
		t.Fatalf("claim: %v", err)
	}

	completed, err := f.service.CompleteDonation(context.Background(), d.ID.String(), n.ID.String())
	if err != nil {
		t.Fatalf("CompleteDonation returned error: %v", err)
	}
	if completed.Status != entities.DonationStatusDelivered {
		t.Errorf("status = %s, want delivered", completed.Status)
	}
	if completed.DeliveredAt == nil {
		t.Error("delivered_at not set")
	}
}

func TestCompleteDonationWrongNGO(t *testing.T) {
	f := newFixture()
	r := f.addRestaurant("Spice Garden", "spice@example.com", 12.96, 77.58)
	claimer := f.addNGO("City Shelter", "shelter@example.com", true, 12.99, 77.60, 10)
	other := f.addNGO("Other Shelter", "other@example.com", true, 12.99, 77.60, 10)
	d := f.addAvailableDonation(r.ID, "Veg meals", 12.97, 77.59)

	if _, err := f.service.ClaimDonation(context.Background(), d.ID.String(), claimer.ID.String()); err != nil {
		t.Fatalf("claim: %v", err)
	}

	_, err := f.service.CompleteDonation(context.Background(), d.ID.String(), other.ID.String())
	if !errors.Is(err, domain.ErrUnauthorizedDonationAccess) {
		t.Errorf("expected ErrUnauthorizedDonationAccess, got %v", err)
	}
}

func TestCompleteDonationNotClaimed(t *testing.T) {
	f := newFixture()
	r := f.addRestaurant("Spice Garden", "spice@example.com", 12.96, 77.58)
	n := f.addNGO("City Shelter", "shelter@example.com", true, 12.99, 77.60, 10)
	d := f.addAvailableDonation(r.ID, "Veg meals", 12.97, 77.59)

	_, err := f.service.CompleteDonation(context.Background(), d.ID.String(), n.ID.String())
	if !errors.Is(err, domain.ErrInvalidDonationState) {
		t.Errorf("expected ErrInvalidDonationState, got %v", err)
	}
}

func TestCancelDonation(t *testing.T) {
	f := newFixture()
	r := f.addRestaurant("Spice Garden", "spice@example.com", 12.96, 77.58)
	n := f.addNGO("City Shelter", "shelter@example.com", true, 12.99, 77.60, 10)
	d := f.addAvailableDonation(r.ID, "Veg meals", 12.97, 77.59)
	adminID := uuid.NewString()

	if _, err := f.service.ClaimDonation(context.Background(), d.ID.String(), n.ID.String()); err != nil {
		t.Fatalf("claim: %v", err)
	}

	cancelled, err := f.service.CancelDonation(context.Background(), d.ID.String(), adminID, "food safety concern")
	if err != nil {
		t.Fatalf("CancelDonation returned error: %v", err)
	}
	if cancelled.Status != entities.DonationStatusCancelled {
		t.Errorf("status = %s, want cancelled", cancelled.Status)
	}
	if cancelled.CancelledBy != adminID {
		t.Errorf("cancelled_by = %s, want %s", cancelled.CancelledBy, adminID)
	}
	if cancelled.CancellationReason != "food safety concern" {
		t.Errorf("reason = %q", cancelled.CancellationReason)
	}

	// both the restaurant and the claiming NGO hear about it
	sent := f.dispatcher.waitFor(t, 3) // claim notice + two cancellation notices
	recipients := map[string]bool{}
	for _, s := range sent {
		if s.subject == "Donation Cancellation" {
			recipients[s.recipient] = true
		}
	}
	if !recipients["spice@example.com"] || !recipients["shelter@example.com"] {
		t.Errorf("cancellation notices missing, got %v", recipients)
	}
}

func TestForwardOnlyTransitions(t *testing.T) {
	f := newFixture()
	r := f.addRestaurant("Spice Garden", "spice@example.com", 12.96, 77.58)
	n := f.addNGO("City Shelter", "shelter@example.com", true, 12.99, 77.60, 10)
	adminID := uuid.NewString()

	delivered := f.addAvailableDonation(r.ID, "Veg meals", 12.97, 77.59)
	if _, err := f.service.ClaimDonation(context.Background(), delivered.ID.String(), n.ID.String()); err != nil {
		t.Fatalf("claim: %v", err)
	}
	if _, err := f.service.CompleteDonation(context.Background(), delivered.ID.String(), n.ID.String()); err != nil {
		t.Fatalf("complete: %v", err)
	}

	if _, err := f.service.ClaimDonation(context.Background(), delivered.ID.String(), n.ID.String()); !errors.Is(err, domain.ErrDonationAlreadyClaimed) {
		t.Errorf("claim on delivered: expected ErrDonationAlreadyClaimed, got %v", err)
	}
	if _, err := f.service.CancelDonation(context.Background(), delivered.ID.String(), adminID, ""); !errors.Is(err, domain.ErrInvalidDonationState) {
		t.Errorf("cancel on delivered: expected ErrInvalidDonationState, got %v", err)
	}

	cancelled := f.addAvailableDonation(r.ID, "Bread", 12.97, 77.59)
	if _, err := f.service.CancelDonation(context.Background(), cancelled.ID.String(), adminID, "duplicate"); err != nil {
		t.Fatalf("cancel: %v", err)
	}
	if _, err := f.service.ClaimDonation(context.Background(), cancelled.ID.String(), n.ID.String()); !errors.Is(err, domain.ErrDonationAlreadyClaimed) {
		t.Errorf("claim on cancelled: expected ErrDonationAlreadyClaimed, got %v", err)
	}

	final, _ := f.donations.GetDonationByID(context.Background(), delivered.ID.String())
	if final.Status != entities.DonationStatusDelivered {
		t.Errorf("delivered donation left terminal state: %s", final.Status)
	}
}

// --- update and delete ------------------------------------------------------

func TestUpdateDonationOwnership(t *testing.T) {
	f := newFixture()
	owner := f.addRestaurant("Spice Garden", "spice@example.com", 12.96, 77.58)
	stranger := f.addRestaurant("Other Kitchen", "other@example.com", 12.90, 77.50)
	d := f.addAvailableDonation(owner.ID, "Veg meals", 12.97, 77.59)

	_, err := f.service.UpdateDonation(context.Background(), d.ID.String(),
		domain.Actor{ID: stranger.ID.String(), Role: domain.RoleRestaurant},
		domain.UpdateDonationRequest{Quantity: "5 servings"})
	if !errors.Is(err, domain.ErrUnauthorizedDonationAccess) {
		t.Errorf("expected ErrUnauthorizedDonationAccess, got %v", err)
	}

	unchanged, _ := f.donations.GetDonationByID(context.Background(), d.ID.String())
	if unchanged.Quantity != "10 servings" {
		t.Errorf("donation mutated by unauthorized update")
	}
}

func TestUpdateDonationClaimedRejectedForOwner(t *testing.T) {
	f := newFixture()
	owner := f.addRestaurant("Spice Garden", "spice@example.com", 12.96, 77.58)
	n := f.addNGO("City Shelter", "shelter@example.com", true, 12.99, 77.60, 10)
	d := f.addAvailableDonation(owner.ID, "Veg meals", 12.97, 77.59)

	if _, err := f.service.ClaimDonation(context.Background(), d.ID.String(), n.ID.String()); err != nil {
		t.Fatalf("claim: %v", err)
	}

	_, err := f.service.UpdateDonation(context.Background(), d.ID.String(),
		domain.Actor{ID: owner.ID.String(), Role: domain.RoleRestaurant},
		domain.UpdateDonationRequest{Quantity: "5 servings"})
	if !errors.Is(err, domain.ErrInvalidDonationState) {
		t.Errorf("expected ErrInvalidDonationState, got %v", err)
	}

	// an admin may still edit a claimed donation
	_, err = f.service.UpdateDonation(context.Background(), d.ID.String(),
		domain.Actor{ID: uuid.NewString(), Role: domain.RoleAdmin},
		domain.UpdateDonationRequest{Quantity: "5 servings"})
	if err != nil {
		t.Errorf("admin update on claimed donation failed: %v", err)
	}
}

func TestUpdateDonationGeocodeSkip(t *testing.T) {
	f := newFixture()
	owner := f.addRestaurant("Spice Garden", "spice@example.com", 12.96, 77.58)
	d := f.addAvailableDonation(owner.ID, "Veg meals", 12.97, 77.59)
	actor := domain.Actor{ID: owner.ID.String(), Role: domain.RoleRestaurant}

	before, _ := f.donations.GetDonationByID(context.Background(), d.ID.String())
	callsBefore := f.geocoder.callCount()

	if _, err := f.service.UpdateDonation(context.Background(), d.ID.String(), actor,
		domain.UpdateDonationRequest{Quantity: "30 servings"}); err != nil {
		t.Fatalf("update: %v", err)
	}

	after, _ := f.donations.GetDonationByID(context.Background(), d.ID.String())
	if after.Location != before.Location {
		t.Errorf("location changed on a non-address update: %+v vs %+v", after.Location, before.Location)
	}
	if f.geocoder.callCount() != callsBefore {
		t.Errorf("geocoder invoked for a non-address update")
	}
	if after.Quantity != "30 servings" {
		t.Errorf("quantity not updated")
	}
}

func TestUpdateDonationAddressChangeRegeocodes(t *testing.T) {
	f := newFixture()
	owner := f.addRestaurant("Spice Garden", "spice@example.com", 12.96, 77.58)
	d := f.addAvailableDonation(owner.ID, "Veg meals", 12.97, 77.59)
	actor := domain.Actor{ID: owner.ID.String(), Role: domain.RoleRestaurant}

	updated, err := f.service.UpdateDonation(context.Background(), d.ID.String(), actor,
		domain.UpdateDonationRequest{Address: "Anna Salai, Chennai"})
	if err != nil {
		t.Fatalf("update: %v", err)
	}

	if updated.Location.Latitude != 13.06 || updated.Location.Longitude != 80.26 {
		t.Errorf("location not re-geocoded: (%f, %f)", updated.Location.Latitude, updated.Location.Longitude)
	}
}

func TestDeleteDonation(t *testing.T) {
	f := newFixture()
	owner := f.addRestaurant("Spice Garden", "spice@example.com", 12.96, 77.58)
	stranger := f.addRestaurant("Other Kitchen", "other@example.com", 12.90, 77.50)
	n := f.addNGO("City Shelter", "shelter@example.com", true, 12.99, 77.60, 10)

	d := f.addAvailableDonation(owner.ID, "Veg meals", 12.97, 77.59)

	err := f.service.DeleteDonation(context.Background(), d.ID.String(),
		domain.Actor{ID: stranger.ID.String(), Role: domain.RoleRestaurant})
	if !errors.Is(err, domain.ErrUnauthorizedDonationAccess) {
		t.Errorf("expected ErrUnauthorizedDonationAccess, got %v", err)
	}

	claimedDonation := f.addAvailableDonation(owner.ID, "Bread", 12.97, 77.59)
	if _, err := f.service.ClaimDonation(context.Background(), claimedDonation.ID.String(), n.ID.String()); err != nil {
		t.Fatalf("claim: %v", err)
	}
	err = f.service.DeleteDonation(context.Background(), claimedDonation.ID.String(),
		domain.Actor{ID: owner.ID.String(), Role: domain.RoleRestaurant})
	if !errors.Is(err, domain.ErrInvalidDonationState) {
		t.Errorf("expected ErrInvalidDonationState on claimed donation, got %v", err)
	}

	if err := f.service.DeleteDonation(context.Background(), d.ID.String(),
		domain.Actor{ID: owner.ID.String(), Role: domain.RoleRestaurant}); err != nil {
		t.Fatalf("owner delete of available donation failed: %v", err)
	}
	if _, err := f.donations.GetDonationByID(context.Background(), d.ID.String()); !errors.Is(err, gorm.ErrRecordNotFound) {
		t.Errorf("donation still present after delete")
	}
}

// --- proximity matching -----------------------------------------------------

func TestNearbyRadiusContainment(t *testing.T) {
	f := newFixture()
	r := f.addRestaurant("Spice Garden", "spice@example.com", 12.96, 77.58)
	n := f.addNGO("City Shelter", "shelter@example.com", true, 12.97, 77.59, 5)

	inside := f.addAvailableDonation(r.ID, "Inside", 12.97+0.040, 77.59)   // ~4.4 km
	outside := f.addAvailableDonation(r.ID, "Outside", 12.97+0.046, 77.59) // ~5.1 km
	atOrigin := f.addAvailableDonation(r.ID, "Origin", 12.97, 77.59)

	results, err := f.service.GetNearbyDonations(context.Background(), n.ID.String())
	if err != nil {
		t.Fatalf("GetNearbyDonations returned error: %v", err)
	}

	ids := map[string]bool{}
	for _, d := range results {
		ids[d.ID] = true
	}
	if !ids[inside.ID.String()] || !ids[atOrigin.ID.String()] {
		t.Errorf("donations inside the radius missing from results")
	}
	if ids[outside.ID.String()] {
		t.Errorf("donation beyond the radius included in results")
	}

	// ascending distance with a computed annotation on each result
	var last float64 = -1
	for _, d := range results {
		if d.Distance == nil {
			t.Fatalf("result %s missing distance annotation", d.ID)
		}
		if *d.Distance < last {
			t.Errorf("results not sorted by ascending distance")
		}
		last = *d.Distance
	}
}

func TestNearbyRequiresVerificationAndLocation(t *testing.T) {
	f := newFixture()

	unverified := f.addNGO("Unverified", "u@example.com", false, 12.97, 77.59, 5)
	if _, err := f.service.GetNearbyDonations(context.Background(), unverified.ID.String()); !errors.Is(err, domain.ErrAccountNotVerified) {
		t.Errorf("expected ErrAccountNotVerified, got %v", err)
	}

	noLocation := f.addNGO("No Location", "n@example.com", true, 0, 0, 5)
	if _, err := f.service.GetNearbyDonations(context.Background(), noLocation.ID.String()); !errors.Is(err, domain.ErrLocationNotSet) {
		t.Errorf("expected ErrLocationNotSet, got %v", err)
	}

	// geocoded to exactly (0,0) is a real location, not a missing one
	atOrigin := &entities.NGO{
		ID:              uuid.New(),
		Name:            "Null Island Relief",
		Email:           "origin@example.com",
		OperatingRadius: 5,
		Verified:        true,
		Location:        entities.Location{Geocoded: true},
	}
	f.ngos.ngos[atOrigin.ID.String()] = atOrigin
	if _, err := f.service.GetNearbyDonations(context.Background(), atOrigin.ID.String()); err != nil {
		t.Errorf("nearby query from (0,0): unexpected error %v", err)
	}
}

func TestPublicDonations(t *testing.T) {
	f := newFixture()
	r := f.addRestaurant("Spice Garden", "spice@example.com", 12.96, 77.58)
	f.addAvailableDonation(r.ID, "Veg meals", 12.97, 77.59)

	results, err := f.service.GetPublicDonations(context.Background(), domain.PublicNearbyRequest{
		Latitude:  12.97,
		Longitude: 77.59,
		Radius:    5,
	})
	if err != nil {
		t.Fatalf("GetPublicDonations returned error: %v", err)
	}
	if len(results) != 1 {
		t.Fatalf("expected 1 result, got %d", len(results))
	}

	pub := results[0]
	if pub.FoodType != "Veg meals" || pub.RestaurantName != "Spice Garden" {
		t.Errorf("unexpected projection: %+v", pub)
	}
	if pub.Distance > 0.01 {
		t.Errorf("distance = %f, want ~0", pub.Distance)
	}
}

func TestPublicDonationsAtZeroCoordinates(t *testing.T) {
	f := newFixture()
	r := f.addRestaurant("Equator Kitchen", "equator@example.com", 0.01, 77.59)
	f.addAvailableDonation(r.ID, "Rice packs", 0, 77.59)

	results, err := f.service.GetPublicDonations(context.Background(), domain.PublicNearbyRequest{
		Latitude:  0,
		Longitude: 77.59,
		Radius:    5,
	})
	if err != nil {
		t.Fatalf("GetPublicDonations at latitude 0 returned error: %v", err)
	}
	if len(results) != 1 {
		t.Fatalf("expected 1 result, got %d", len(results))
	}
}

func TestPublicDonationsInvalidCoordinates(t *testing.T) {
	f := newFixture()

	_, err := f.service.GetPublicDonations(context.Background(), domain.PublicNearbyRequest{
		Latitude:  95,
		Longitude: 77.59,
		Radius:    5,
	})
	if !errors.Is(err, domain.ErrInvalidCoordinates) {
		t.Errorf("expected ErrInvalidCoordinates, got %v", err)
	}
}

// --- end-to-end -------------------------------------------------------------

func TestDonationLifecycleEndToEnd(t *testing.T) {
	f := newFixture()
	restaurantA := f.addRestaurant("Restaurant A", "a@example.com", 12.96, 77.58)
	ngoB := f.addNGO("NGO B", "b@example.com", true, 12.997, 77.59, 10) // ~3 km north
	ngoC := f.addNGO("NGO C", "c@example.com", true, 12.95, 77.59, 10)

	created, err := f.service.CreateDonation(context.Background(), domain.CreateDonationRequest{
		FoodType:    "Veg meals",
		Quantity:    "40 servings",
		Description: "wedding surplus",
		Address:     "MG Road, Bangalore",
		ExpiryTime:  time.Now().Add(2 * time.Hour).Format(time.RFC3339),
	}, restaurantA.ID.String())
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if created.Status != entities.DonationStatusAvailable {
		t.Fatalf("created status = %s", created.Status)
	}

	nearby, err := f.service.GetNearbyDonations(context.Background(), ngoB.ID.String())
	if err != nil {
		t.Fatalf("nearby: %v", err)
	}
	var found *domain.Donation
	for _, d := range nearby {
		if d.ID == created.ID {
			found = d
		}
	}
	if found == nil {
		t.Fatalf("created donation missing from NGO B's nearby results")
	}
	if *found.Distance < 2.5 || *found.Distance > 3.5 {
		t.Errorf("distance = %f, want ~3", *found.Distance)
	}

	if _, err := f.service.ClaimDonation(context.Background(), created.ID, ngoB.ID.String()); err != nil {
		t.Fatalf("NGO B claim: %v", err)
	}

	if _, err := f.service.ClaimDonation(context.Background(), created.ID, ngoC.ID.String()); !errors.Is(err, domain.ErrDonationAlreadyClaimed) {
		t.Fatalf("NGO C claim: expected ErrDonationAlreadyClaimed, got %v", err)
	}

	completed, err := f.service.CompleteDonation(context.Background(), created.ID, ngoB.ID.String())
	if err != nil {
		t.Fatalf("complete: %v", err)
	}
	if completed.Status != entities.DonationStatusDelivered || completed.DeliveredAt == nil {
		t.Errorf("completion state wrong: %+v", completed)
	}

	err = f.service.DeleteDonation(context.Background(), created.ID,
		domain.Actor{ID: restaurantA.ID.String(), Role: domain.RoleRestaurant})
	if !errors.Is(err, domain.ErrInvalidDonationState) {
		t.Errorf("delete on delivered donation: expected ErrInvalidDonationState, got %v", err)
	}
}
