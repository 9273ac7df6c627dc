package handlers

import (
	"net/http"
	"strconv"

	"lodge-backoffice/internal/services"
)

type PaymentHandler struct {
	paymentService *services.PaymentService
}

func NewPaymentHandler(paymentService *services.PaymentService) *PaymentHandler {
	return &PaymentHandler{paymentService: paymentService}
}

func (h *PaymentHandler) ListPayments(w http.ResponseWriter, r *http.Request) {
	room, _ := strconv.Atoi(r.URL.Query().Get("room"))
	year, _ := strconv.Atoi(r.URL.Query().Get("year"))
	month, _ := strconv.Atoi(r.URL.Query().Get("month"))

	if room <= 0 && (year <= 0 || month <= 0) {
		respondWithError(w, http.StatusBadRequest, "Provide room, or year and month")
		return
	}

	payments, err := h.paymentService.ListPayments(r.Context(), room, year, month)
	if err != nil {
		respondWithError(w, http.StatusInternalServerError, err.Error())
		return
	}

	respondWithJSON(w, http.StatusOK, payments)
}
