package handler

import (
	"errors"
	"log/slog"
	"mime"
	"net/http"
	"net/url"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/PraneethKulukuri26/fooddeliveringBackend/internal/auth"
	"github.com/PraneethKulukuri26/fooddeliveringBackend/internal/handler/dto"
	"github.com/PraneethKulukuri26/fooddeliveringBackend/internal/model"
	"github.com/PraneethKulukuri26/fooddeliveringBackend/internal/service"
)

// multipartMemory is how much of a multipart body is held in memory
// before parts spill to temporary files.
const multipartMemory = 8 << 20

// imageField is the multipart field carrying the donation image.
const imageField = "image"

// DonationHandler handles HTTP requests for donation operations.
type DonationHandler struct {
	responder
	svc *service.DonationService
}

// NewDonationHandler creates a new DonationHandler.
func NewDonationHandler(svc *service.DonationService, logger *slog.Logger) *DonationHandler {
	return &DonationHandler{
		responder: responder{logger: logger},
		svc:       svc,
	}
}

// Create handles POST /api/donations. The body is multipart/form-data
// (with an optional image), a urlencoded form or JSON.
func (h *DonationHandler) Create(w http.ResponseWriter, r *http.Request) {
	req, image, cleanup, ok := h.parseCreate(w, r)
	if !ok {
		return
	}
	defer cleanup()

	donation, err := h.svc.CreateDonation(r.Context(), auth.UserFromContext(r.Context()), req.ToInput(), image)
	if err != nil {
		h.handleServiceError(w, r, err)
		return
	}

	h.logger.Info("donation_created",
		"donation_id", donation.ID,
		"donor_id", donation.DonorID,
		"has_image", donation.Image != nil,
	)
	writeJSON(w, http.StatusCreated, donation)
}

// List handles GET /api/donations.
func (h *DonationHandler) List(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()

	filter := model.DonationFilter{DonorID: query.Get("donor_id")}
	if l := query.Get("limit"); l != "" {
		limit, err := strconv.Atoi(l)
		if err != nil || limit < 1 {
			h.writeErrorDetails(w, http.StatusBadRequest, codeValidation, "limit must be a positive integer", map[string]string{
				"field": "limit",
			})
			return
		}
		filter.Limit = limit
	}

	donations, err := h.svc.ListDonations(r.Context(), filter)
	if err != nil {
		h.handleServiceError(w, r, err)
		return
	}
	if donations == nil {
		donations = []*model.Donation{}
	}
	writeJSON(w, http.StatusOK, donations)
}

// Get handles GET /api/donations/{id}.
func (h *DonationHandler) Get(w http.ResponseWriter, r *http.Request) {
	donation, err := h.svc.GetDonation(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.handleServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, donation)
}

// parseCreate reads a donation from whichever body encoding the client used.
// cleanup releases the uploaded file and any temporary files; it is only
// valid when ok is true.
func (h *DonationHandler) parseCreate(w http.ResponseWriter, r *http.Request) (req dto.CreateDonationRequest, image *service.ImageUpload, cleanup func(), ok bool) {
	cleanup = func() {}

	mediaType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	switch mediaType {
	case "multipart/form-data":
		if err := r.ParseMultipartForm(multipartMemory); err != nil {
			h.writeFormError(w, err)
			return req, nil, cleanup, false
		}
		form := r.MultipartForm
		req = donationFromForm(r.PostForm)

		file, header, err := r.FormFile(imageField)
		switch {
		case err == nil:
			image = &service.ImageUpload{Filename: header.Filename, Content: file}
			cleanup = func() {
				_ = file.Close()
				_ = form.RemoveAll()
			}
		case errors.Is(err, http.ErrMissingFile):
			cleanup = func() { _ = form.RemoveAll() }
		default:
			_ = form.RemoveAll()
			h.writeFormError(w, err)
			return req, nil, func() {}, false
		}
		return req, image, cleanup, true

	case "application/x-www-form-urlencoded":
		if err := r.ParseForm(); err != nil {
			h.writeFormError(w, err)
			return req, nil, cleanup, false
		}
		return donationFromForm(r.PostForm), nil, cleanup, true

	default:
		if !h.decodeJSON(w, r, &req) {
			return req, nil, cleanup, false
		}
		return req, nil, cleanup, true
	}
}

func (h *DonationHandler) writeFormError(w http.ResponseWriter, err error) {
	if isBodyTooLarge(err) {
		h.writeError(w, http.StatusRequestEntityTooLarge, codePayloadTooLarge, "Request body too large")
		return
	}
	h.writeError(w, http.StatusBadRequest, codeInvalidForm, "Invalid form body")
}

// donationFromForm maps form fields to a request. Absent fields stay nil;
// present but empty fields are kept as empty strings.
func donationFromForm(values url.Values) dto.CreateDonationRequest {
	return dto.CreateDonationRequest{
		Title:               values.Get("title"),
		Description:         formString(values, "description"),
		FoodPreparationTime: formString(values, "food_preparation_time"),
		ExpireTime:          formString(values, "expire_time"),
		PickTime:            formString(values, "pick_time"),
		Address:             formString(values, "address"),
		Latitude:            formValue(values, "latitude"),
		Longitude:           formValue(values, "longitude"),
	}
}

func formString(values url.Values, key string) *string {
	if _, ok := values[key]; !ok {
		return nil
	}
	v := values.Get(key)
	return &v
}

// formValue returns an untyped nil for an absent field.
func formValue(values url.Values, key string) any {
	if _, ok := values[key]; !ok {
		return nil
	}
	return values.Get(key)
}
