package voice

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"reflect"
	"strings"
	"testing"
	"time"

	"github.com/mrdaebak/api/internal/database"
	"github.com/mrdaebak/api/internal/pricing"
)

func strPtr(s string) *string { return &s }
func intPtr(n int) *int       { return &n }

// =====================
// Converter
// =====================

func TestParseMenuItems(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want pricing.Customization
	}{
		{name: "two items", in: "에그 스크램블=1, 베이컨=2", want: pricing.Customization{"EGG_SCRAMBLE": 1, "BACON": 2}},
		{name: "unconfirmed skipped", in: "스테이크=미확인, 커피=1", want: pricing.Customization{"COFFEE": 1}},
		{name: "zero skipped", in: "샐러드=0", want: pricing.Customization{}},
		{name: "unknown name skipped", in: "랍스터=2", want: pricing.Customization{}},
		{name: "no equals", in: "스테이크", want: pricing.Customization{}},
		{name: "null", in: "빵=NULL", want: pricing.Customization{}},
		{name: "empty", in: "", want: pricing.Customization{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ParseMenuItems(tt.in)
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("got %v, want %v", got, tt.want)
			}
		})
	}
}

func TestToLineRequest(t *testing.T) {
	menus := []pricing.Menu{
		{ID: 1, Type: "VALENTINE"},
		{ID: 2, Type: "FRENCH"},
	}

	req, err := ToLineRequest(OrderSummary{
		MenuName:  strPtr(" 프렌치 디너 "),
		MenuStyle: strPtr("디럭스 스타일"),
		MenuItems: strPtr("스테이크=2, 와인(잔)=미확인"),
		Quantity:  intPtr(3),
	}, menus)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if req.MenuID != 2 || req.Style != "DELUXE" || req.Quantity != 3 {
		t.Errorf("unexpected request: %+v", req)
	}
	if !reflect.DeepEqual(req.Customization, pricing.Customization{"STEAK": 2}) {
		t.Errorf("customization: got %v", req.Customization)
	}
}

func TestToLineRequest_Defaults(t *testing.T) {
	menus := []pricing.Menu{{ID: 1, Type: "VALENTINE"}}

	req, err := ToLineRequest(OrderSummary{
		MenuName:  strPtr("발렌타인 디너"),
		MenuStyle: strPtr("모름"),
		Quantity:  intPtr(0),
	}, menus)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if req.Style != "SIMPLE" || req.Quantity != 1 || req.Customization != nil {
		t.Errorf("unexpected defaults: %+v", req)
	}
}

func TestToLineRequest_Errors(t *testing.T) {
	menus := []pricing.Menu{{ID: 1, Type: "VALENTINE"}}

	if _, err := ToLineRequest(OrderSummary{}, menus); !errors.Is(err, ErrMenuMissing) {
		t.Errorf("expected ErrMenuMissing, got: %v", err)
	}
	if _, err := ToLineRequest(OrderSummary{MenuName: strPtr("한식 디너")}, menus); !errors.Is(err, ErrUnknownMenu) {
		t.Errorf("expected ErrUnknownMenu, got: %v", err)
	}
	if _, err := ToLineRequest(OrderSummary{MenuName: strPtr("잉글리시 디너")}, menus); !errors.Is(err, ErrMenuUnavailable) {
		t.Errorf("expected ErrMenuUnavailable, got: %v", err)
	}
}

func TestDeliveryType(t *testing.T) {
	now := time.Date(2026, 2, 14, 18, 0, 0, 0, time.UTC)

	tests := []struct {
		name   string
		in     *string
		want   string
		wantAt bool
	}{
		{name: "missing", in: nil, want: "IMMEDIATE"},
		{name: "future", in: strPtr("2026-02-14T20:30:00"), want: "RESERVATION", wantAt: true},
		{name: "future with zone", in: strPtr("2026-02-15T09:00:00+09:00"), want: "RESERVATION", wantAt: true},
		{name: "past", in: strPtr("2026-02-14 17:00"), want: "IMMEDIATE"},
		{name: "unparseable", in: strPtr("지금 바로"), want: "IMMEDIATE"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, at := DeliveryType(tt.in, now)
			if got != tt.want {
				t.Errorf("type: got %s, want %s", got, tt.want)
			}
			if (at != nil) != tt.wantAt {
				t.Errorf("reservation time: got %v", at)
			}
		})
	}
}

// =====================
// Coupon matching
// =====================

func TestMatchCoupon(t *testing.T) {
	grants := []database.CustomerCoupon{
		{ID: 1, Code: "WELCOME", IsUsed: true, IsValid: true},
		{ID: 2, Code: "REGULAR10000", IsValid: true},
		{ID: 3, Code: "SPRING", IsValid: true},
		{ID: 4, Code: "AUTUMN", IsValid: false},
		{ID: 5, Code: "WINTER5000", IsValid: false},
		{ID: 6, Code: "WINTER", IsValid: true},
	}

	tests := []struct {
		name   string
		spoken string
		wantID int64
		wantOK bool
	}{
		{name: "exact", spoken: "spring", wantID: 3, wantOK: true},
		{name: "substring of code", spoken: "REGULAR", wantID: 2, wantOK: true},
		{name: "code inside phrase", spoken: "SPRING COUPON", wantID: 3, wantOK: true},
		{name: "alias", spoken: "단골 쿠폰", wantID: 2, wantOK: true},
		{name: "used grant ignored", spoken: "WELCOME", wantOK: false},
		{name: "disabled grant ignored", spoken: "AUTUMN", wantOK: false},
		{name: "disabled grant skipped for valid one", spoken: "WINTER5000", wantID: 6, wantOK: true},
		{name: "empty", spoken: "  ", wantOK: false},
		{name: "no match", spoken: "SUMMER", wantOK: false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g, ok := MatchCoupon(tt.spoken, grants)
			if ok != tt.wantOK {
				t.Fatalf("ok: got %v, want %v", ok, tt.wantOK)
			}
			if ok && g.ID != tt.wantID {
				t.Errorf("id: got %d, want %d", g.ID, tt.wantID)
			}
		})
	}
}

// =====================
// Client
// =====================

func TestClientChat(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/llm/generate" || r.Method != http.MethodPost {
			t.Errorf("unexpected request %s %s", r.Method, r.URL.Path)
		}
		var body struct {
			Messages []ChatMessage `json:"messages"`
		}
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			t.Errorf("decode body: %v", err)
		}
		if len(body.Messages) != 1 || body.Messages[0].Content != "프렌치 디너 주세요" {
			t.Errorf("unexpected messages: %+v", body.Messages)
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"message":"스타일은요?","orderConfirmed":false,"order":{"menuName":"프렌치 디너"}}`)) //nolint:errcheck
	}))
	defer srv.Close()

	resp, err := NewClient(srv.URL+"/").Chat(context.Background(), []ChatMessage{{Role: "user", Content: "프렌치 디너 주세요"}})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if resp.Message != "스타일은요?" || resp.Order == nil || *resp.Order.MenuName != "프렌치 디너" {
		t.Errorf("unexpected response: %+v", resp)
	}
}

func TestClientTranscribe(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.URL.Query().Get("language"); got != "ko" {
			t.Errorf("language: got %q", got)
		}
		f, _, err := r.FormFile("file")
		if err != nil {
			t.Errorf("form file: %v", err)
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		data, _ := io.ReadAll(f)
		if string(data) != "RIFF" {
			t.Errorf("audio: got %q", data)
		}
		w.Write([]byte(`{"text":"안녕하세요"}`)) //nolint:errcheck
	}))
	defer srv.Close()

	text, err := NewClient(srv.URL).Transcribe(context.Background(), strings.NewReader("RIFF"), "", "ko")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if text != "안녕하세요" {
		t.Errorf("got %q", text)
	}
}

func TestClientConfirm_UpstreamError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "model overloaded", http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	_, err := NewClient(srv.URL).Confirm(context.Background(), nil, "네")
	var upErr *UpstreamError
	if !errors.As(err, &upErr) || upErr.Status != http.StatusServiceUnavailable {
		t.Fatalf("expected UpstreamError 503, got: %v", err)
	}
}

func TestClient_NotConfigured(t *testing.T) {
	if _, err := NewClient("").Chat(context.Background(), nil); !errors.Is(err, ErrNotConfigured) {
		t.Fatalf("expected ErrNotConfigured, got: %v", err)
	}
}
