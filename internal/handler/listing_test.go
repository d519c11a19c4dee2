package handler

import (
	"bytes"
	"context"
	"errors"
	"io/fs"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strconv"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/qmotor/car-marketplace/internal/model"
	"github.com/qmotor/car-marketplace/internal/repository"
	"github.com/qmotor/car-marketplace/internal/storage"
)

// =============================================================================
// Mocks
// =============================================================================

type mockListingCars struct {
	car     *model.Car
	deleted []uint64

	statusFrom string
	statusTo   string
	statusErr  error
}

func (m *mockListingCars) Create(ctx context.Context, c *model.Car) error {
	return errors.New("not implemented")
}

func (m *mockListingCars) GetByID(ctx context.Context, id uint64) (*model.Car, error) {
	if m.car != nil && m.car.ID == id {
		cp := *m.car
		return &cp, nil
	}
	return nil, repository.ErrCarNotFound
}

func (m *mockListingCars) UpdateOwned(ctx context.Context, c *model.Car, ownerID uint64) error {
	return errors.New("not implemented")
}

func (m *mockListingCars) UpdateStatusOwned(ctx context.Context, id, ownerID uint64, from, to string) error {
	m.statusFrom, m.statusTo = from, to
	return m.statusErr
}

func (m *mockListingCars) Delete(ctx context.Context, id, ownerID uint64) ([]string, error) {
	m.deleted = append(m.deleted, id)
	return nil, nil
}

type mockImageStore struct {
	count   int
	nextPos int

	nextID   uint64
	inserted []model.CarImage
	deleted  []uint64
}

func (m *mockImageStore) Insert(ctx context.Context, img *model.CarImage) error {
	m.nextID++
	img.ID = m.nextID
	m.inserted = append(m.inserted, *img)
	return nil
}

func (m *mockImageStore) CountByCar(ctx context.Context, carID uint64) (int, error) {
	return m.count, nil
}

func (m *mockImageStore) NextPosition(ctx context.Context, carID uint64) (int, error) {
	return m.nextPos, nil
}

func (m *mockImageStore) Delete(ctx context.Context, id, carID uint64) (string, error) {
	m.deleted = append(m.deleted, id)
	for _, img := range m.inserted {
		if img.ID == id {
			return img.URL, nil
		}
	}
	return "", repository.ErrImageNotFound
}

func (m *mockImageStore) PromoteFirstPrimary(ctx context.Context, carID uint64) error {
	return nil
}

// =============================================================================
// Helpers
// =============================================================================

const testOwnerID = uint64(42)

func draftCar(id uint64) *model.Car {
	return &model.Car{ID: id, UserID: testOwnerID, Status: model.StatusDraft}
}

func newUploadHandler(t *testing.T, cars *mockListingCars, imgs *mockImageStore) (*ListingHandler, string) {
	t.Helper()
	dir := t.TempDir()
	store, err := storage.New(dir, "http://files.test")
	require.NoError(t, err)
	return &ListingHandler{Cars: cars, Images: imgs, Store: store}, dir
}

func multipartImages(t *testing.T, names ...string) (*bytes.Buffer, string) {
	t.Helper()
	buf := &bytes.Buffer{}
	w := multipart.NewWriter(buf)
	for _, n := range names {
		fw, err := w.CreateFormFile("images", n)
		require.NoError(t, err)
		_, err = fw.Write([]byte("image bytes"))
		require.NoError(t, err)
	}
	require.NoError(t, w.Close())
	return buf, w.FormDataContentType()
}

func doUpload(t *testing.T, h *ListingHandler, carID uint64, names ...string) *httptest.ResponseRecorder {
	t.Helper()
	body, ctype := multipartImages(t, names...)
	e := echo.New()
	req := httptest.NewRequest(http.MethodPost, "/", body)
	req.Header.Set(echo.HeaderContentType, ctype)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.SetPath("/v1/listings/:id/images")
	c.SetParamNames("id")
	c.SetParamValues(strconv.FormatUint(carID, 10))
	c.Set("user_id", testOwnerID)
	require.NoError(t, h.UploadImages(c))
	return rec
}

func doSubmit(t *testing.T, h *ListingHandler, carID uint64) *httptest.ResponseRecorder {
	t.Helper()
	e := echo.New()
	req := httptest.NewRequest(http.MethodPost, "/", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.SetPath("/v1/listings/:id/submit")
	c.SetParamNames("id")
	c.SetParamValues(strconv.FormatUint(carID, 10))
	c.Set("user_id", testOwnerID)
	require.NoError(t, h.Submit(c))
	return rec
}

func countStoredFiles(t *testing.T, root string) int {
	t.Helper()
	n := 0
	err := filepath.WalkDir(root, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() {
			n++
		}
		return nil
	})
	require.NoError(t, err)
	return n
}

// =============================================================================
// Tests
// =============================================================================

func TestUploadFailureCompensatesFreshDraft(t *testing.T) {
	cars := &mockListingCars{car: draftCar(5)}
	imgs := &mockImageStore{}
	h, dir := newUploadHandler(t, cars, imgs)

	// The second file has a disallowed extension, so the first one is
	// already stored by the time the request fails.
	rec := doUpload(t, h, 5, "front.jpg", "clip.gif")

	assert.Equal(t, http.StatusUnsupportedMediaType, rec.Code)
	assert.Contains(t, rec.Body.String(), `"listing_removed":true`)

	require.Len(t, imgs.inserted, 1, "first file was saved before the failure")
	assert.Equal(t, []uint64{imgs.inserted[0].ID}, imgs.deleted, "saved row rolled back")
	assert.Equal(t, []uint64{5}, cars.deleted, "fresh draft removed outright")
	assert.Zero(t, countStoredFiles(t, dir), "no stored file survives the rollback")
}

func TestUploadFailureKeepsEstablishedListing(t *testing.T) {
	car := draftCar(5)
	car.Status = model.StatusPending
	cars := &mockListingCars{car: car}
	imgs := &mockImageStore{count: 2, nextPos: 2}
	h, dir := newUploadHandler(t, cars, imgs)

	rec := doUpload(t, h, 5, "front.jpg", "clip.gif")

	assert.Equal(t, http.StatusUnsupportedMediaType, rec.Code)
	assert.Contains(t, rec.Body.String(), `"listing_removed":false`)
	assert.Empty(t, cars.deleted, "a listing with prior images stays")
	require.Len(t, imgs.inserted, 1)
	assert.Equal(t, []uint64{imgs.inserted[0].ID}, imgs.deleted)
	assert.Zero(t, countStoredFiles(t, dir))
}

func TestUploadPositionsContinuePastGaps(t *testing.T) {
	// Two rows remain at positions 0 and 2 after a deletion; the next
	// upload must take position 3, not the row count.
	cars := &mockListingCars{car: draftCar(5)}
	imgs := &mockImageStore{count: 2, nextPos: 3}
	h, _ := newUploadHandler(t, cars, imgs)

	rec := doUpload(t, h, 5, "side.jpg")

	assert.Equal(t, http.StatusCreated, rec.Code)
	require.Len(t, imgs.inserted, 1)
	assert.Equal(t, 3, imgs.inserted[0].Position)
	assert.False(t, imgs.inserted[0].IsPrimary)
}

func TestSubmitRejectedWithoutImages(t *testing.T) {
	cars := &mockListingCars{car: draftCar(5)}
	imgs := &mockImageStore{count: 0}
	h, _ := newUploadHandler(t, cars, imgs)

	rec := doSubmit(t, h, 5)

	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	assert.Contains(t, rec.Body.String(), "reasons")
	assert.Empty(t, cars.statusTo, "draft never promoted")
}

func TestSubmitPromotesDraft(t *testing.T) {
	cars := &mockListingCars{car: draftCar(5)}
	imgs := &mockImageStore{count: 1}
	h, _ := newUploadHandler(t, cars, imgs)

	rec := doSubmit(t, h, 5)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, model.StatusDraft, cars.statusFrom)
	assert.Equal(t, model.StatusPending, cars.statusTo)
}
