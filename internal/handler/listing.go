package handler

import (
	"context"
	"errors"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/qmotor/car-marketplace/internal/model"
	"github.com/qmotor/car-marketplace/internal/repository"
	"github.com/qmotor/car-marketplace/internal/storage"
	"github.com/qmotor/car-marketplace/internal/utils"
	"github.com/qmotor/car-marketplace/internal/wizard"
)

// listingCarStore is the slice of CarRepo the submission workflow
// consumes; narrowed to an interface so the workflow is testable
// without a database.
type listingCarStore interface {
	Create(ctx context.Context, c *model.Car) error
	GetByID(ctx context.Context, id uint64) (*model.Car, error)
	UpdateOwned(ctx context.Context, c *model.Car, ownerID uint64) error
	UpdateStatusOwned(ctx context.Context, id, ownerID uint64, from, to string) error
	Delete(ctx context.Context, id, ownerID uint64) ([]string, error)
}

type listingImageStore interface {
	Insert(ctx context.Context, img *model.CarImage) error
	CountByCar(ctx context.Context, carID uint64) (int, error)
	NextPosition(ctx context.Context, carID uint64) (int, error)
	Delete(ctx context.Context, id, carID uint64) (string, error)
	PromoteFirstPrimary(ctx context.Context, carID uint64) error
}

type catalogChecker interface {
	ModelBelongsToBrand(ctx context.Context, modelID, brandID uint64) (bool, error)
}

// ListingHandler implements the seller submission workflow: create a
// draft, upload its images, then promote it to Pending. The draft stage
// keeps half-uploaded listings invisible to moderators; a submit only
// succeeds once the image requirements hold.
type ListingHandler struct {
	Cars   listingCarStore
	Images listingImageStore
	Brands catalogChecker
	Store  *storage.Store
}

func NewListingHandler(cars *repository.CarRepo, imgs *repository.CarImageRepo, brands *repository.BrandRepo, store *storage.Store) *ListingHandler {
	return &ListingHandler{Cars: cars, Images: imgs, Brands: brands, Store: store}
}

// listingReq is the create/edit payload. Price arrives as a string the
// way the form captures it ("25,000", "25000 USD"); digits are
// extracted before validation.
type listingReq struct {
	BrandID     uint64  `json:"brand_id"`
	ModelID     uint64  `json:"model_id"`
	Year        int     `json:"year"`
	Price       string  `json:"price"`
	Mileage     *int    `json:"mileage"`
	FuelType    string  `json:"fuel_type"`
	GearboxType string  `json:"gearbox_type"`
	BodyType    string  `json:"body_type"`
	Condition   string  `json:"condition"`
	Color       string  `json:"color"`
	Cylinders   *string `json:"cylinders"`
	Description *string `json:"description"`
}

// toCar validates the payload with the wizard predicates and builds the
// car row. Returns a *wizard.StepError for field failures.
func (req *listingReq) toCar(uid uint64) (*model.Car, error) {
	price, err := utils.ParsePrice(req.Price)
	if err != nil {
		price = 0 // fails the basic-info predicate below
	}
	form := wizard.Form{
		Basic: wizard.BasicInfo{
			BrandID: req.BrandID, ModelID: req.ModelID,
			Year: req.Year, Price: price,
		},
		Details: wizard.Details{
			Mileage: req.Mileage, FuelType: req.FuelType,
			GearboxType: req.GearboxType, BodyType: req.BodyType,
			Condition: req.Condition,
		},
	}
	if err := form.Basic.Validate(); err != nil {
		return nil, err
	}
	if err := form.Details.Validate(); err != nil {
		return nil, err
	}
	if strings.TrimSpace(req.Color) == "" {
		return nil, &wizard.StepError{Step: wizard.StepDetails, Reasons: []string{"color required"}}
	}
	if req.Cylinders != nil && !model.ValidEnum(*req.Cylinders, model.CylinderSizes) {
		return nil, &wizard.StepError{Step: wizard.StepDetails, Reasons: []string{"cylinders invalid"}}
	}
	return &model.Car{
		UserID:      uid,
		BrandID:     req.BrandID,
		ModelID:     req.ModelID,
		Year:        req.Year,
		Mileage:     *req.Mileage,
		Price:       price,
		Description: req.Description,
		FuelType:    req.FuelType,
		GearboxType: req.GearboxType,
		BodyType:    req.BodyType,
		Condition:   req.Condition,
		Color:       strings.TrimSpace(req.Color),
		Cylinders:   req.Cylinders,
	}, nil
}

func stepErrorResponse(c echo.Context, err error) error {
	var se *wizard.StepError
	if errors.As(err, &se) {
		return c.JSON(http.StatusUnprocessableEntity, echo.Map{
			"error":   "validation failed",
			"step":    se.Step.String(),
			"reasons": se.Reasons,
		})
	}
	return c.JSON(http.StatusBadRequest, echo.Map{"error": err.Error()})
}

// Create inserts a new listing in Draft status. The listing stays
// invisible until images are uploaded and Submit promotes it.
func (h *ListingHandler) Create(c echo.Context) error {
	uid := authedUserID(c)

	var req listingReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	car, err := req.toCar(uid)
	if err != nil {
		return stepErrorResponse(c, err)
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 10*time.Second)
	defer cancel()

	ok, err := h.Brands.ModelBelongsToBrand(ctx, car.ModelID, car.BrandID)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	if !ok {
		return c.JSON(http.StatusUnprocessableEntity, echo.Map{"error": "model does not belong to brand"})
	}

	car.Status = model.StatusDraft
	if err := h.Cars.Create(ctx, car); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "create listing failed"})
	}
	return c.JSON(http.StatusCreated, echo.Map{
		"id":     car.ID,
		"status": car.Status,
	})
}

// Update edits an owned listing. An approved listing that is edited
// drops back to Pending so the changes pass moderation again; drafts
// stay drafts.
func (h *ListingHandler) Update(c echo.Context) error {
	uid := authedUserID(c)
	id := pathID(c, "id")
	if id == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid car id"})
	}

	var req listingReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	car, err := req.toCar(uid)
	if err != nil {
		return stepErrorResponse(c, err)
	}
	car.ID = id

	ctx, cancel := context.WithTimeout(c.Request().Context(), 10*time.Second)
	defer cancel()

	ok, err := h.Brands.ModelBelongsToBrand(ctx, car.ModelID, car.BrandID)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	if !ok {
		return c.JSON(http.StatusUnprocessableEntity, echo.Map{"error": "model does not belong to brand"})
	}

	current, err := h.Cars.GetByID(ctx, id)
	if err != nil {
		if err == repository.ErrCarNotFound {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "car not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	switch current.Status {
	case model.StatusDraft:
		car.Status = model.StatusDraft
	case model.StatusSold:
		return c.JSON(http.StatusConflict, echo.Map{"error": "sold listings cannot be edited"})
	default:
		// Edits to live or rejected listings re-enter moderation.
		car.Status = model.StatusPending
	}

	if err := h.Cars.UpdateOwned(ctx, car, uid); err != nil {
		switch err {
		case repository.ErrCarNotFound:
			return c.JSON(http.StatusNotFound, echo.Map{"error": "car not found"})
		case repository.ErrForbidden:
			return c.JSON(http.StatusForbidden, echo.Map{"error": "not your listing"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "update failed"})
	}
	if car.Status != current.Status {
		if err := h.Cars.UpdateStatusOwned(ctx, id, uid, current.Status, car.Status); err != nil {
			if err == repository.ErrConflict {
				return c.JSON(http.StatusConflict, echo.Map{"error": "listing status changed concurrently"})
			}
			return c.JSON(http.StatusInternalServerError, echo.Map{"error": "update failed"})
		}
	}
	return c.JSON(http.StatusOK, echo.Map{
		"id":     id,
		"status": car.Status,
	})
}

// UploadImages stores the multipart files of the "images" field one by
// one, in order. Uploads are sequential so image positions follow the
// order the seller arranged; a failed file aborts the rest and the
// already-saved files of this request are removed again.
func (h *ListingHandler) UploadImages(c echo.Context) error {
	uid := authedUserID(c)
	id := pathID(c, "id")
	if id == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid car id"})
	}

	form, err := c.MultipartForm()
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "multipart form required"})
	}
	files := form.File["images"]
	if len(files) == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "no images provided"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 60*time.Second)
	defer cancel()

	car, err := h.ownedCar(ctx, c, id, uid)
	if car == nil {
		return err
	}
	if car.Status == model.StatusSold {
		return c.JSON(http.StatusConflict, echo.Map{"error": "sold listings cannot be changed"})
	}

	existing, err := h.Images.CountByCar(ctx, id)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	count := wizard.ImageCount{Existing: existing, New: len(files)}
	if count.Total() > wizard.MaxImages {
		return stepErrorResponse(c, count.Validate())
	}

	// Deletions leave position gaps, so new uploads continue from the
	// highest position rather than the row count.
	nextPos, err := h.Images.NextPosition(ctx, id)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}

	var saved []model.CarImage
	for i, fh := range files {
		if fh.Size > storage.MaxImageBytes {
			return h.abortUpload(ctx, c, car, existing, saved,
				http.StatusRequestEntityTooLarge, "image exceeds 5MB limit")
		}
		src, err := fh.Open()
		if err != nil {
			return h.abortUpload(ctx, c, car, existing, saved,
				http.StatusInternalServerError, "read upload failed")
		}
		url, err := h.Store.SaveCarImage(uid, id, fh.Filename, src)
		src.Close()
		if err != nil {
			if err == storage.ErrUnsupportedType {
				return h.abortUpload(ctx, c, car, existing, saved,
					http.StatusUnsupportedMediaType, err.Error())
			}
			return h.abortUpload(ctx, c, car, existing, saved,
				http.StatusInternalServerError, "store image failed")
		}

		img := model.CarImage{
			CarID:     id,
			URL:       url,
			IsPrimary: existing == 0 && i == 0,
			Position:  nextPos + i,
		}
		if err := h.Images.Insert(ctx, &img); err != nil {
			_ = h.Store.Remove(url)
			return h.abortUpload(ctx, c, car, existing, saved,
				http.StatusInternalServerError, "save image failed")
		}
		saved = append(saved, img)
	}

	parts := make([]carImagePart, 0, len(saved))
	for _, img := range saved {
		parts = append(parts, carImagePart{ID: img.ID, URL: img.URL, IsPrimary: img.IsPrimary, Position: img.Position})
	}
	return c.JSON(http.StatusCreated, echo.Map{"images": parts})
}

// Submit promotes a draft to Pending once the image requirements hold.
// The guarded update makes double submits a clean 409.
func (h *ListingHandler) Submit(c echo.Context) error {
	uid := authedUserID(c)
	id := pathID(c, "id")
	if id == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid car id"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	car, err := h.ownedCar(ctx, c, id, uid)
	if car == nil {
		return err
	}
	if car.Status != model.StatusDraft {
		return c.JSON(http.StatusConflict, echo.Map{"error": "only drafts can be submitted"})
	}

	n, err := h.Images.CountByCar(ctx, id)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	count := wizard.ImageCount{Existing: n}
	if err := count.Validate(); err != nil {
		return stepErrorResponse(c, err)
	}

	if err := h.Cars.UpdateStatusOwned(ctx, id, uid, model.StatusDraft, model.StatusPending); err != nil {
		switch err {
		case repository.ErrCarNotFound:
			return c.JSON(http.StatusNotFound, echo.Map{"error": "car not found"})
		case repository.ErrForbidden:
			return c.JSON(http.StatusForbidden, echo.Map{"error": "not your listing"})
		case repository.ErrConflict:
			return c.JSON(http.StatusConflict, echo.Map{"error": "listing already submitted"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "submit failed"})
	}
	return c.JSON(http.StatusOK, echo.Map{
		"id":     id,
		"status": model.StatusPending,
	})
}

// DeleteImage removes one image from an owned listing. A listing that
// already left Draft must keep at least one image.
func (h *ListingHandler) DeleteImage(c echo.Context) error {
	uid := authedUserID(c)
	id := pathID(c, "id")
	imageID := pathID(c, "imageID")
	if id == 0 || imageID == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	car, err := h.ownedCar(ctx, c, id, uid)
	if car == nil {
		return err
	}

	n, err := h.Images.CountByCar(ctx, id)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	if car.Status != model.StatusDraft {
		count := wizard.ImageCount{Existing: n, PendingDeletion: 1}
		if err := count.Validate(); err != nil {
			return stepErrorResponse(c, err)
		}
	}

	url, err := h.Images.Delete(ctx, imageID, id)
	if err != nil {
		if err == repository.ErrImageNotFound {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "image not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "delete failed"})
	}
	if err := h.Store.Remove(url); err != nil {
		log.Printf("listing: remove stored file %s failed: %v", url, err)
	}
	if err := h.Images.PromoteFirstPrimary(ctx, id); err != nil {
		log.Printf("listing: promote primary for car %d failed: %v", id, err)
	}
	return c.NoContent(http.StatusNoContent)
}

// ownedCar loads a car and enforces ownership. On failure it writes the
// response and returns a nil car; the error return is the written
// response's error value.
func (h *ListingHandler) ownedCar(ctx context.Context, c echo.Context, id, uid uint64) (*model.Car, error) {
	car, err := h.Cars.GetByID(ctx, id)
	if err != nil {
		if err == repository.ErrCarNotFound {
			return nil, c.JSON(http.StatusNotFound, echo.Map{"error": "car not found"})
		}
		return nil, c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	if car.UserID != uid {
		return nil, c.JSON(http.StatusForbidden, echo.Map{"error": "not your listing"})
	}
	return car, nil
}

// abortUpload compensates a failed multi-file upload: every file and
// row stored earlier in the same request is removed again, and a fresh
// draft that never had an image is deleted outright so no orphaned
// listing survives a broken submission.
func (h *ListingHandler) abortUpload(ctx context.Context, c echo.Context, car *model.Car, existing int, saved []model.CarImage, status int, msg string) error {
	for _, img := range saved {
		if _, err := h.Images.Delete(ctx, img.ID, img.CarID); err != nil {
			log.Printf("listing: rollback image row %d failed: %v", img.ID, err)
		}
		if err := h.Store.Remove(img.URL); err != nil {
			log.Printf("listing: rollback stored file %s failed: %v", img.URL, err)
		}
	}

	removed := false
	if car.Status == model.StatusDraft && existing == 0 {
		if _, err := h.Cars.Delete(ctx, car.ID, car.UserID); err != nil {
			log.Printf("listing: compensating delete of draft %d failed: %v", car.ID, err)
		} else {
			removed = true
		}
	}
	return c.JSON(status, echo.Map{
		"error":           msg,
		"listing_removed": removed,
	})
}
