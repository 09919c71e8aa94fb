package http

import (
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/localloop/classifieds-service/internal/classified/domain"
	"github.com/localloop/classifieds-service/internal/classified/usecase"
	"github.com/localloop/classifieds-service/internal/platform/logger"
)

// Handler exposes the listing, profile and AI operations over HTTP JSON. It
// only translates requests; all verification and authorization happens in
// the usecases.
type Handler struct {
	lifecycle *usecase.LifecycleUsecase
	query     *usecase.QueryUsecase
	profile   *usecase.ProfileUsecase
	suggester domain.TagSuggester   // optional
	generator domain.ImageGenerator // optional
	logger    *logger.Logger
}

func NewHandler(
	lifecycle *usecase.LifecycleUsecase,
	query *usecase.QueryUsecase,
	profile *usecase.ProfileUsecase,
	suggester domain.TagSuggester,
	generator domain.ImageGenerator,
	log *logger.Logger,
) *Handler {
	return &Handler{
		lifecycle: lifecycle,
		query:     query,
		profile:   profile,
		suggester: suggester,
		generator: generator,
		logger:    log,
	}
}

type imagePayload struct {
	FileName string `json:"fileName"`
	Data     string `json:"data"` // data URI or raw base64
}

type listingRequest struct {
	Title       string   `json:"title"`
	Description string   `json:"description"`
	Price       *float64 `json:"price,omitempty"`
	Category    string   `json:"category"`
	Location    string   `json:"location"`
	Tags        []string `json:"tags"`
	ImageHint   string   `json:"imageHint"`
	// ImageURLs are already-hosted images: kept images on update,
	// pre-generated ones on create.
	ImageURLs []string       `json:"imageUrls"`
	Images    []imagePayload `json:"images"`
}

type listingResponse struct {
	ID          string   `json:"id"`
	Title       string   `json:"title"`
	Description string   `json:"description"`
	Price       *float64 `json:"price,omitempty"`
	Category    string   `json:"category"`
	Location    string   `json:"location"`
	Tags        []string `json:"tags"`
	ImageURLs   []string `json:"imageUrls"`
	ImageHint   string   `json:"imageHint"`
	AuthorID    string   `json:"authorId"`
	CreatedAt   string   `json:"createdAt"`
	UpdatedAt   string   `json:"updatedAt,omitempty"`
}

func toListingResponse(l *domain.Listing) listingResponse {
	resp := listingResponse{
		ID:          l.ID,
		Title:       l.Title,
		Description: l.Description,
		Price:       l.Price,
		Category:    string(l.Category),
		Location:    l.Location,
		Tags:        l.Tags,
		ImageURLs:   l.ImageURLs,
		ImageHint:   l.ImageHint,
		AuthorID:    l.AuthorID,
		CreatedAt:   l.CreatedAt.UTC().Format(time.RFC3339),
	}
	if l.UpdatedAt != nil {
		resp.UpdatedAt = l.UpdatedAt.UTC().Format(time.RFC3339)
	}
	return resp
}

func toListingResponses(listings []*domain.Listing) []listingResponse {
	out := make([]listingResponse, 0, len(listings))
	for _, l := range listings {
		out = append(out, toListingResponse(l))
	}
	return out
}

func (h *Handler) HandleListListings(w http.ResponseWriter, r *http.Request) {
	listings, degraded, err := h.query.ListAll(r.Context())
	if err != nil {
		h.writeError(w, err)
		return
	}

	q := r.URL.Query()
	filtered := usecase.Filter(listings, domain.Category(q.Get("category")), q.Get("location"), q.Get("q"))

	h.writeJSON(w, http.StatusOK, map[string]interface{}{
		"listings":      toListingResponses(filtered),
		"degradedOrder": degraded,
	})
}

func (h *Handler) HandleGetListing(w http.ResponseWriter, r *http.Request) {
	listing, err := h.query.GetByID(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.writeError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, toListingResponse(listing))
}

func (h *Handler) HandleMyListings(w http.ResponseWriter, r *http.Request) {
	listings, err := h.query.ListByAuthor(r.Context(), bearerToken(r))
	if err != nil {
		h.writeError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, map[string]interface{}{"listings": toListingResponses(listings)})
}

func (h *Handler) HandleCreateListing(w http.ResponseWriter, r *http.Request) {
	var req listingRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, fmt.Errorf("%w: invalid request body: %v", domain.ErrInvalidInput, err))
		return
	}
	input, images, err := toLifecycleInput(req)
	if err != nil {
		h.writeError(w, err)
		return
	}

	listing, err := h.lifecycle.Create(r.Context(), input, images, bearerToken(r))
	if err != nil {
		h.writeError(w, err)
		return
	}
	h.writeJSON(w, http.StatusCreated, toListingResponse(listing))
}

func (h *Handler) HandleUpdateListing(w http.ResponseWriter, r *http.Request) {
	var req listingRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, fmt.Errorf("%w: invalid request body: %v", domain.ErrInvalidInput, err))
		return
	}
	input, images, err := toLifecycleInput(req)
	if err != nil {
		h.writeError(w, err)
		return
	}

	listing, err := h.lifecycle.Update(r.Context(), chi.URLParam(r, "id"), input, images, bearerToken(r))
	if err != nil {
		h.writeError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, toListingResponse(listing))
}

func (h *Handler) HandleDeleteListing(w http.ResponseWriter, r *http.Request) {
	if err := h.lifecycle.Delete(r.Context(), chi.URLParam(r, "id"), bearerToken(r)); err != nil {
		h.writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) HandleGetOwnedListing(w http.ResponseWriter, r *http.Request) {
	listing, err := h.lifecycle.GetOwned(r.Context(), chi.URLParam(r, "id"), bearerToken(r))
	if err != nil {
		h.writeError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, toListingResponse(listing))
}

type profileResponse struct {
	ID          string `json:"id"`
	Email       string `json:"email"`
	Name        string `json:"name,omitempty"`
	Location    string `json:"location,omitempty"`
	PhoneNumber string `json:"phoneNumber,omitempty"`
}

func (h *Handler) HandleGetProfile(w http.ResponseWriter, r *http.Request) {
	profile, err := h.profile.GetProfile(r.Context(), bearerToken(r))
	if err != nil {
		h.writeError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, profileResponse{
		ID:          profile.ID,
		Email:       profile.Email,
		Name:        profile.Name,
		Location:    profile.Location,
		PhoneNumber: profile.PhoneNumber,
	})
}

func (h *Handler) HandleUpdateProfile(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Name        string `json:"name"`
		Location    string `json:"location"`
		PhoneNumber string `json:"phoneNumber"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, fmt.Errorf("%w: invalid request body: %v", domain.ErrInvalidInput, err))
		return
	}
	update := usecase.ProfileUpdate{Name: req.Name, Location: req.Location, PhoneNumber: req.PhoneNumber}
	if err := h.profile.UpdateProfile(r.Context(), update, bearerToken(r)); err != nil {
		h.writeError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, map[string]bool{"success": true})
}

func (h *Handler) HandleSuggestTags(w http.ResponseWriter, r *http.Request) {
	if h.suggester == nil {
		h.writeJSON(w, http.StatusOK, map[string][]string{"tags": {}})
		return
	}
	var req struct {
		Title       string `json:"title"`
		Description string `json:"description"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, fmt.Errorf("%w: invalid request body: %v", domain.ErrInvalidInput, err))
		return
	}

	tags, err := h.suggester.SuggestTags(r.Context(), req.Title, req.Description)
	if err != nil {
		// Suggestions are best-effort; the form proceeds without them.
		h.logger.Warn("HandleSuggestTags: suggestion failed", "error", err.Error())
		h.writeJSON(w, http.StatusOK, map[string][]string{"tags": {}})
		return
	}
	h.writeJSON(w, http.StatusOK, map[string][]string{"tags": tags})
}

func (h *Handler) HandleGenerateImage(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Title string `json:"title"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, fmt.Errorf("%w: invalid request body: %v", domain.ErrInvalidInput, err))
		return
	}

	if h.generator == nil {
		h.writeJSON(w, http.StatusOK, map[string]string{"imageUrl": "https://placehold.co/600x400.png"})
		return
	}
	url, err := h.generator.GenerateImage(r.Context(), req.Title)
	if err != nil {
		h.logger.Warn("HandleGenerateImage: generation failed", "error", err.Error())
		h.writeJSON(w, http.StatusOK, map[string]string{"imageUrl": "https://placehold.co/600x400.png"})
		return
	}
	h.writeJSON(w, http.StatusOK, map[string]string{"imageUrl": url})
}

func (h *Handler) HandleHealthz(w http.ResponseWriter, r *http.Request) {
	h.writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func toLifecycleInput(req listingRequest) (usecase.ListingInput, []usecase.ImagePayload, error) {
	images := make([]usecase.ImagePayload, 0, len(req.Images))
	for _, img := range req.Images {
		contentType, data, err := decodeDataURI(img.Data)
		if err != nil {
			return usecase.ListingInput{}, nil, fmt.Errorf("%w: image %q: %v", domain.ErrInvalidInput, img.FileName, err)
		}
		images = append(images, usecase.ImagePayload{
			FileName:    img.FileName,
			ContentType: contentType,
			Data:        data,
		})
	}
	input := usecase.ListingInput{
		Title:       req.Title,
		Description: req.Description,
		Price:       req.Price,
		Category:    domain.Category(req.Category),
		Location:    req.Location,
		Tags:        req.Tags,
		ImageHint:   req.ImageHint,
		ImageURLs:   req.ImageURLs,
	}
	return input, images, nil
}

// decodeDataURI accepts "data:<mime>;base64,<payload>" as produced by the web
// client, or bare base64.
func decodeDataURI(s string) (contentType string, data []byte, err error) {
	payload := s
	if strings.HasPrefix(s, "data:") {
		meta, rest, found := strings.Cut(strings.TrimPrefix(s, "data:"), ",")
		if !found {
			return "", nil, fmt.Errorf("malformed data URI")
		}
		contentType = strings.TrimSuffix(meta, ";base64")
		payload = rest
	}
	data, err = base64.StdEncoding.DecodeString(payload)
	if err != nil {
		return "", nil, fmt.Errorf("invalid base64 payload: %v", err)
	}
	return contentType, data, nil
}

func bearerToken(r *http.Request) string {
	header := r.Header.Get("Authorization")
	parts := strings.Fields(header)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") {
		return ""
	}
	return parts[1]
}

func (h *Handler) writeJSON(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		h.logger.Error("failed to encode response", "error", err.Error())
	}
}

func (h *Handler) writeError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, domain.ErrUnauthenticated):
		status = http.StatusUnauthorized
	case errors.Is(err, domain.ErrForbidden):
		status = http.StatusForbidden
	case errors.Is(err, domain.ErrListingNotFound), errors.Is(err, domain.ErrProfileNotFound):
		status = http.StatusNotFound
	case errors.Is(err, domain.ErrInvalidInput):
		status = http.StatusBadRequest
	case errors.Is(err, domain.ErrNotConfigured):
		status = http.StatusServiceUnavailable
	}
	if status == http.StatusInternalServerError {
		h.logger.Error("request failed", "error", err.Error())
	}
	h.writeJSON(w, status, map[string]string{"error": err.Error()})
}
