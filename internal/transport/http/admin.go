package http

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/voyatra/travel-booking/internal/app"
	"github.com/voyatra/travel-booking/internal/domain"
)

// AdminService is the minimal interface for reference-data endpoints.
type AdminService interface {
	CreateItem(ctx context.Context, in app.CreateItemInput) (domain.InventoryItem, error)
	ListItems(ctx context.Context, st domain.ServiceType) ([]domain.InventoryItem, error)
	CreatePromotion(ctx context.Context, in app.CreatePromotionInput) (domain.Promotion, error)
	ListPromotions(ctx context.Context) ([]domain.Promotion, error)
	CreatePromotionLink(ctx context.Context, in app.CreateLinkInput) (domain.PromotionLink, error)
	ListPromotionLinks(ctx context.Context, promotionID string) ([]domain.PromotionLink, error)
	CreateRefundPolicy(ctx context.Context, in app.CreateRefundPolicyInput) (domain.RefundPolicy, error)
	ListRefundPolicies(ctx context.Context, st domain.ServiceType) ([]domain.RefundPolicy, error)
}

// HandleAdminItems serves POST/GET /admin/items.
func HandleAdminItems(svc AdminService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodGet:
			items, err := svc.ListItems(r.Context(), domain.ServiceType(r.URL.Query().Get("service_type")))
			if err != nil {
				writeDomainError(w, err)
				return
			}
			resp := make([]itemResponse, 0, len(items))
			for _, it := range items {
				resp = append(resp, toItemResponse(it))
			}
			writeJSON(w, http.StatusOK, resp)
		case http.MethodPost:
			var req createItemRequest
			if !decodeBody(w, r, &req) {
				return
			}
			in := app.CreateItemInput{
				ServiceType:   domain.ServiceType(req.ServiceType),
				Name:          req.Name,
				UnitCapacity:  req.UnitCapacity,
				TotalCapacity: req.TotalCapacity,
			}
			price, err := decimal.NewFromString(req.UnitPrice)
			if err != nil {
				writeError(w, http.StatusBadRequest, codeInvalidPrice, "invalid unit_price")
				return
			}
			in.UnitPrice = price
			if req.StartsAt != "" {
				t, err := time.Parse(time.RFC3339, req.StartsAt)
				if err != nil {
					writeError(w, http.StatusBadRequest, codeInvalidTimeWindow, "invalid starts_at format")
					return
				}
				in.StartsAt = &t
			}
			item, err := svc.CreateItem(r.Context(), in)
			if err != nil {
				writeDomainError(w, err)
				return
			}
			writeJSON(w, http.StatusCreated, toItemResponse(item))
		default:
			writeError(w, http.StatusMethodNotAllowed, codeMethodNotAllowed, "method not allowed")
		}
	}
}

// HandleAdminPromotions serves POST/GET /admin/promotions and
// POST/GET /admin/promotions/{id}/links.
func HandleAdminPromotions(svc AdminService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if promoID, ok := parsePromotionLinksPath(r.URL.Path); ok {
			handlePromotionLinks(w, r, svc, promoID)
			return
		}
		if strings.Trim(r.URL.Path, "/") != "admin/promotions" {
			writeError(w, http.StatusNotFound, codeNotFound, "not found")
			return
		}

		switch r.Method {
		case http.MethodGet:
			promos, err := svc.ListPromotions(r.Context())
			if err != nil {
				writeDomainError(w, err)
				return
			}
			resp := make([]promotionResponse, 0, len(promos))
			for _, p := range promos {
				resp = append(resp, toPromotionResponse(p))
			}
			writeJSON(w, http.StatusOK, resp)
		case http.MethodPost:
			var req createPromotionRequest
			if !decodeBody(w, r, &req) {
				return
			}
			in := app.CreatePromotionInput{
				Title:       req.Title,
				ServiceType: domain.ServiceType(req.ServiceType),
				IsActive:    req.IsActive,
			}
			var err error
			if in.DiscountPercent, err = parseOptionalDecimal(req.DiscountPercent); err != nil {
				writeError(w, http.StatusBadRequest, codeInvalidDiscount, "invalid discount_percent")
				return
			}
			if in.DiscountAmount, err = parseOptionalDecimal(req.DiscountAmount); err != nil {
				writeError(w, http.StatusBadRequest, codeInvalidDiscount, "invalid discount_amount")
				return
			}
			if in.StartsAt, err = time.Parse(time.RFC3339, req.StartsAt); err != nil {
				writeError(w, http.StatusBadRequest, codeInvalidTimeWindow, "invalid starts_at format")
				return
			}
			if in.EndsAt, err = time.Parse(time.RFC3339, req.EndsAt); err != nil {
				writeError(w, http.StatusBadRequest, codeInvalidTimeWindow, "invalid ends_at format")
				return
			}
			promo, err := svc.CreatePromotion(r.Context(), in)
			if err != nil {
				writeDomainError(w, err)
				return
			}
			writeJSON(w, http.StatusCreated, toPromotionResponse(promo))
		default:
			writeError(w, http.StatusMethodNotAllowed, codeMethodNotAllowed, "method not allowed")
		}
	}
}

func handlePromotionLinks(w http.ResponseWriter, r *http.Request, svc AdminService, promoID string) {
	switch r.Method {
	case http.MethodGet:
		links, err := svc.ListPromotionLinks(r.Context(), promoID)
		if err != nil {
			writeDomainError(w, err)
			return
		}
		resp := make([]linkResponse, 0, len(links))
		for _, l := range links {
			resp = append(resp, toLinkResponse(l))
		}
		writeJSON(w, http.StatusOK, resp)
	case http.MethodPost:
		var req createLinkRequest
		if !decodeBody(w, r, &req) {
			return
		}
		in := app.CreateLinkInput{
			PromotionID: promoID,
			ItemID:      req.ItemID,
		}
		var err error
		if in.DiscountPercent, err = parseOptionalDecimal(req.DiscountPercent); err != nil {
			writeError(w, http.StatusBadRequest, codeInvalidDiscount, "invalid discount_percent")
			return
		}
		if in.DiscountAmount, err = parseOptionalDecimal(req.DiscountAmount); err != nil {
			writeError(w, http.StatusBadRequest, codeInvalidDiscount, "invalid discount_amount")
			return
		}
		link, err := svc.CreatePromotionLink(r.Context(), in)
		if err != nil {
			writeDomainError(w, err)
			return
		}
		writeJSON(w, http.StatusCreated, toLinkResponse(link))
	default:
		writeError(w, http.StatusMethodNotAllowed, codeMethodNotAllowed, "method not allowed")
	}
}

// HandleAdminRefundPolicies serves POST/GET /admin/refund-policies.
func HandleAdminRefundPolicies(svc AdminService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodGet:
			policies, err := svc.ListRefundPolicies(r.Context(), domain.ServiceType(r.URL.Query().Get("service_type")))
			if err != nil {
				writeDomainError(w, err)
				return
			}
			resp := make([]refundPolicyResponse, 0, len(policies))
			for _, p := range policies {
				resp = append(resp, toRefundPolicyResponse(p))
			}
			writeJSON(w, http.StatusOK, resp)
		case http.MethodPost:
			var req createRefundPolicyRequest
			if !decodeBody(w, r, &req) {
				return
			}
			in := app.CreateRefundPolicyInput{
				ServiceType:      domain.ServiceType(req.ServiceType),
				PolicyType:       domain.RefundPolicyType(req.PolicyType),
				HoursBeforeStart: req.HoursBeforeStart,
				IsActive:         req.IsActive,
			}
			var err error
			if in.RefundPercentage, err = parseOptionalDecimal(req.RefundPercentage); err != nil {
				writeError(w, http.StatusBadRequest, codeInvalidPolicy, "invalid refund_percentage")
				return
			}
			if in.RefundAmount, err = parseOptionalDecimal(req.RefundAmount); err != nil {
				writeError(w, http.StatusBadRequest, codeInvalidPolicy, "invalid refund_amount")
				return
			}
			policy, err := svc.CreateRefundPolicy(r.Context(), in)
			if err != nil {
				writeDomainError(w, err)
				return
			}
			writeJSON(w, http.StatusCreated, toRefundPolicyResponse(policy))
		default:
			writeError(w, http.StatusMethodNotAllowed, codeMethodNotAllowed, "method not allowed")
		}
	}
}

type createItemRequest struct {
	ServiceType   string `json:"service_type"`
	Name          string `json:"name"`
	UnitPrice     string `json:"unit_price"`
	UnitCapacity  int    `json:"unit_capacity,omitempty"`
	TotalCapacity int    `json:"total_capacity"`
	StartsAt      string `json:"starts_at,omitempty"`
}

type itemResponse struct {
	ID                string     `json:"id"`
	ServiceType       string     `json:"service_type"`
	Name              string     `json:"name"`
	UnitPrice         string     `json:"unit_price"`
	UnitCapacity      int        `json:"unit_capacity"`
	TotalCapacity     int        `json:"total_capacity"`
	AvailableCapacity int        `json:"available_capacity"`
	StartsAt          *time.Time `json:"starts_at,omitempty"`
}

func toItemResponse(it domain.InventoryItem) itemResponse {
	return itemResponse{
		ID:                it.ID,
		ServiceType:       string(it.ServiceType),
		Name:              it.Name,
		UnitPrice:         it.UnitPrice.StringFixed(2),
		UnitCapacity:      it.UnitCapacity,
		TotalCapacity:     it.TotalCapacity,
		AvailableCapacity: it.AvailableCapacity,
		StartsAt:          it.StartsAt,
	}
}

type createPromotionRequest struct {
	Title           string `json:"title"`
	ServiceType     string `json:"service_type"`
	DiscountPercent string `json:"discount_percent,omitempty"`
	DiscountAmount  string `json:"discount_amount,omitempty"`
	StartsAt        string `json:"starts_at"`
	EndsAt          string `json:"ends_at"`
	IsActive        bool   `json:"is_active"`
}

type promotionResponse struct {
	ID              string    `json:"id"`
	Title           string    `json:"title"`
	ServiceType     string    `json:"service_type"`
	DiscountPercent string    `json:"discount_percent,omitempty"`
	DiscountAmount  string    `json:"discount_amount,omitempty"`
	StartsAt        time.Time `json:"starts_at"`
	EndsAt          time.Time `json:"ends_at"`
	IsActive        bool      `json:"is_active"`
}

func toPromotionResponse(p domain.Promotion) promotionResponse {
	resp := promotionResponse{
		ID:          p.ID,
		Title:       p.Title,
		ServiceType: string(p.ServiceType),
		StartsAt:    p.StartsAt,
		EndsAt:      p.EndsAt,
		IsActive:    p.IsActive,
	}
	if p.DiscountPercent.Valid {
		resp.DiscountPercent = p.DiscountPercent.Decimal.String()
	}
	if p.DiscountAmount.Valid {
		resp.DiscountAmount = p.DiscountAmount.Decimal.StringFixed(2)
	}
	return resp
}

type createLinkRequest struct {
	ItemID          string `json:"item_id"`
	DiscountPercent string `json:"discount_percent,omitempty"`
	DiscountAmount  string `json:"discount_amount,omitempty"`
}

type linkResponse struct {
	ID              string `json:"id"`
	PromotionID     string `json:"promotion_id"`
	ItemID          string `json:"item_id"`
	DiscountPercent string `json:"discount_percent,omitempty"`
	DiscountAmount  string `json:"discount_amount,omitempty"`
}

func toLinkResponse(l domain.PromotionLink) linkResponse {
	resp := linkResponse{
		ID:          l.ID,
		PromotionID: l.PromotionID,
		ItemID:      l.ItemID,
	}
	if l.DiscountPercent.Valid {
		resp.DiscountPercent = l.DiscountPercent.Decimal.String()
	}
	if l.DiscountAmount.Valid {
		resp.DiscountAmount = l.DiscountAmount.Decimal.StringFixed(2)
	}
	return resp
}

type createRefundPolicyRequest struct {
	ServiceType      string `json:"service_type"`
	PolicyType       string `json:"policy_type"`
	RefundPercentage string `json:"refund_percentage,omitempty"`
	RefundAmount     string `json:"refund_amount,omitempty"`
	HoursBeforeStart *int   `json:"hours_before_start,omitempty"`
	IsActive         bool   `json:"is_active"`
}

type refundPolicyResponse struct {
	ID               string `json:"id"`
	ServiceType      string `json:"service_type"`
	PolicyType       string `json:"policy_type"`
	RefundPercentage string `json:"refund_percentage,omitempty"`
	RefundAmount     string `json:"refund_amount,omitempty"`
	HoursBeforeStart *int   `json:"hours_before_start,omitempty"`
	IsActive         bool   `json:"is_active"`
}

func toRefundPolicyResponse(p domain.RefundPolicy) refundPolicyResponse {
	resp := refundPolicyResponse{
		ID:               p.ID,
		ServiceType:      string(p.ServiceType),
		PolicyType:       string(p.PolicyType),
		HoursBeforeStart: p.HoursBeforeStart,
		IsActive:         p.IsActive,
	}
	if p.RefundPercentage.Valid {
		resp.RefundPercentage = p.RefundPercentage.Decimal.String()
	}
	if p.RefundAmount.Valid {
		resp.RefundAmount = p.RefundAmount.Decimal.StringFixed(2)
	}
	return resp
}

func decodeBody(w http.ResponseWriter, r *http.Request, v any) bool {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		writeError(w, http.StatusBadRequest, codeInvalidRequestBody, "invalid request body")
		return false
	}
	return true
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func parseOptionalDecimal(s string) (*decimal.Decimal, error) {
	if s == "" {
		return nil, nil
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return nil, err
	}
	return &d, nil
}

// parsePromotionLinksPath matches /admin/promotions/{id}/links.
func parsePromotionLinksPath(path string) (string, bool) {
	parts := strings.Split(strings.Trim(path, "/"), "/")
	if len(parts) != 4 {
		return "", false
	}
	if parts[0] != "admin" || parts[1] != "promotions" || parts[3] != "links" {
		return "", false
	}
	if parts[2] == "" {
		return "", false
	}
	return parts[2], true
}
