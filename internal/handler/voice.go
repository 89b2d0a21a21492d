package handler

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/mrdaebak/api/internal/database"
	"github.com/mrdaebak/api/internal/pricing"
	"github.com/mrdaebak/api/internal/service"
	"github.com/mrdaebak/api/internal/voice"
)

// maxAudioSize bounds uploaded recordings.
const maxAudioSize = 10 << 20

// VoiceClient is the voice ordering service. Satisfied by *voice.Client.
type VoiceClient interface {
	Transcribe(ctx context.Context, audio io.Reader, filename, language string) (string, error)
	Chat(ctx context.Context, messages []voice.ChatMessage) (*voice.ChatResponse, error)
	Confirm(ctx context.Context, history []voice.ChatMessage, finalMessage string) (*voice.ConfirmResponse, error)
}

// CartAdder adds a configured menu to a cart. Satisfied by *service.CartService.
type CartAdder interface {
	AddItem(ctx context.Context, customerID uuid.UUID, req service.LineRequest) (pricing.LineItem, error)
}

// MenuLister lists the catalog. Satisfied by *service.CatalogService.
type MenuLister interface {
	Menus(ctx context.Context) ([]pricing.Menu, error)
}

// VoiceHandler relays the voice ordering conversation and turns a confirmed
// conversation into a cart line.
type VoiceHandler struct {
	client  VoiceClient
	menus   MenuLister
	cart    CartAdder
	coupons WalletServicer
	now     func() time.Time
}

// NewVoiceHandler creates a new VoiceHandler.
func NewVoiceHandler(client VoiceClient, menus MenuLister, cart CartAdder, coupons WalletServicer) *VoiceHandler {
	return &VoiceHandler{client: client, menus: menus, cart: cart, coupons: coupons, now: time.Now}
}

// RegisterRoutes registers voice endpoints. Expected to be mounted at /voice.
func (h *VoiceHandler) RegisterRoutes(r chi.Router) {
	r.Post("/transcribe", h.Transcribe)
	r.Post("/chat", h.Chat)
	r.Post("/checkout", h.Checkout)
}

// --- Request / Response types ---

type chatRequest struct {
	Messages []voice.ChatMessage `json:"messages"`
}

type checkoutRequest struct {
	Messages     []voice.ChatMessage `json:"messages"`
	FinalMessage string              `json:"final_message"`
}

type checkoutResponse struct {
	Item             lineItemResponse   `json:"item"`
	DeliveryType     string             `json:"delivery_type"`
	ReservationTime  *time.Time         `json:"reservation_time"`
	CustomerCouponID *int64             `json:"customer_coupon_id"`
	Summary          voice.OrderSummary `json:"summary"`
}

// --- Handlers ---

// Transcribe handles POST /voice/transcribe with a multipart "file" field.
func (h *VoiceHandler) Transcribe(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxAudioSize)
	file, header, err := r.FormFile("file")
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "file is required"})
		return
	}
	defer file.Close()

	language := r.URL.Query().Get("language")
	if language == "" {
		language = "ko"
	}

	text, err := h.client.Transcribe(r.Context(), file, header.Filename, language)
	if err != nil {
		writeVoiceError(w, "transcribe", err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"transcript": text})
}

// Chat handles POST /voice/chat.
func (h *VoiceHandler) Chat(w http.ResponseWriter, r *http.Request) {
	var req chatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}
	if len(req.Messages) == 0 {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "messages are required"})
		return
	}

	resp, err := h.client.Chat(r.Context(), req.Messages)
	if err != nil {
		writeVoiceError(w, "voice chat", err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

// Checkout handles POST /voice/checkout. The conversation is confirmed with
// the voice service, the resulting summary is added to the cart, and the
// delivery type and spoken coupon are resolved for the order form.
func (h *VoiceHandler) Checkout(w http.ResponseWriter, r *http.Request) {
	var req checkoutRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}
	if len(req.Messages) == 0 {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "messages are required"})
		return
	}

	confirmed, err := h.client.Confirm(r.Context(), req.Messages, req.FinalMessage)
	if err != nil {
		writeVoiceError(w, "voice confirm", err)
		return
	}
	summary := confirmed.Order

	menus, err := h.menus.Menus(r.Context())
	if err != nil {
		writeServiceError(w, "list menus", err)
		return
	}
	line, err := voice.ToLineRequest(summary, menus)
	if err != nil {
		writeServiceError(w, "convert voice order", err)
		return
	}

	customerID := userID(r)
	item, err := h.cart.AddItem(r.Context(), customerID, line)
	if err != nil {
		writeServiceError(w, "add voice order to cart", err)
		return
	}

	resp := checkoutResponse{Item: toLineItemResponse(item), Summary: summary}
	deliveryType, at := voice.DeliveryType(summary.DeliveryTime, h.now())
	resp.DeliveryType = deliveryType
	resp.ReservationTime = at

	if grant, ok := h.matchCoupon(r.Context(), customerID, summary); ok {
		id := grant.ID
		resp.CustomerCouponID = &id
	}

	writeJSON(w, http.StatusOK, resp)
}

// matchCoupon finds the grant the customer asked for. A failed wallet lookup
// only loses the coupon suggestion.
func (h *VoiceHandler) matchCoupon(ctx context.Context, customerID uuid.UUID, s voice.OrderSummary) (database.CustomerCoupon, bool) {
	if s.UseCoupon == nil || !*s.UseCoupon || s.CouponCode == nil {
		return database.CustomerCoupon{}, false
	}
	grants, err := h.coupons.Wallet(ctx, customerID)
	if err != nil {
		log.Printf("ERROR: list wallet for voice checkout: %v", err)
		return database.CustomerCoupon{}, false
	}
	return voice.MatchCoupon(*s.CouponCode, grants)
}

func writeVoiceError(w http.ResponseWriter, op string, err error) {
	var upstream *voice.UpstreamError
	switch {
	case errors.Is(err, voice.ErrNotConfigured):
		writeJSON(w, http.StatusServiceUnavailable, map[string]string{"error": err.Error()})
	case errors.As(err, &upstream):
		log.Printf("ERROR: %s: %v", op, err)
		writeJSON(w, http.StatusBadGateway, map[string]string{"error": "voice service error"})
	default:
		log.Printf("ERROR: %s: %v", op, err)
		writeJSON(w, http.StatusBadGateway, map[string]string{"error": "voice service unavailable"})
	}
}
