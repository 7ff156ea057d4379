package server

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/tournevent/shipping/pkg/fulfillment"
	"go.uber.org/zap"
)

const codeInvalidRequest = "INVALID_REQUEST"

type errorResponse struct {
	Code      string `json:"code"`
	Message   string `json:"message"`
	RequestID string `json:"requestId,omitempty"`
}

func (s *Server) handleShippingOptions(w http.ResponseWriter, r *http.Request) {
	var req fulfillment.ShippingOptionsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, r, http.StatusBadRequest, codeInvalidRequest, "invalid JSON: "+err.Error())
		return
	}
	if req.SiteID == "" {
		writeError(w, r, http.StatusBadRequest, codeInvalidRequest, "siteId is required")
		return
	}

	options, err := s.service.CreateShippingOptions(r.Context(), &req, parseEmbed(r))
	if err != nil {
		status, code := statusOf(err)
		if status >= http.StatusInternalServerError {
			s.logger.Ctx(r.Context()).Error("Shipping options failed",
				zap.String("request_id", middleware.GetReqID(r.Context())), zap.Error(err))
		}
		writeError(w, r, status, code, err.Error())
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_ = json.NewEncoder(w).Encode(options)
}

// parseEmbed accepts both ?embed=A,B and ?embed=A&embed=B.
func parseEmbed(r *http.Request) []string {
	var embed []string
	for _, v := range r.URL.Query()["embed"] {
		for _, t := range strings.Split(v, ",") {
			if t = strings.TrimSpace(t); t != "" {
				embed = append(embed, t)
			}
		}
	}
	return embed
}

func statusOf(err error) (int, string) {
	switch {
	case errors.Is(err, fulfillment.ErrSiteNotFound):
		return http.StatusNotFound, fulfillment.CodeSiteNotFound
	case errors.Is(err, fulfillment.ErrUnsupportedEmbedType):
		return http.StatusBadRequest, fulfillment.CodeUnsupportedEmbedType
	case errors.Is(err, fulfillment.ErrValidation):
		return http.StatusUnprocessableEntity, fulfillment.CodeValidation
	case errors.Is(err, fulfillment.ErrBackend):
		return http.StatusBadGateway, fulfillment.CodeBackend
	default:
		return http.StatusInternalServerError, "INTERNAL"
	}
}

func writeError(w http.ResponseWriter, r *http.Request, status int, code, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(errorResponse{
		Code:      code,
		Message:   message,
		RequestID: middleware.GetReqID(r.Context()),
	})
}
