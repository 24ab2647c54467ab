package handler

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/fleetyard/rentledger/pkg/database"
	"github.com/fleetyard/rentledger/pkg/model"
	"github.com/fleetyard/rentledger/pkg/service"
)

type reserveReq struct {
	ProductID string    `json:"product_id"`
	OrderID   string    `json:"order_id"`
	StartsAt  time.Time `json:"start"`
	EndsAt    time.Time `json:"end"`
	Quantity  int       `json:"quantity"`
}

func Reserve(svc service.Reservation) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			http.Error(w, "only POST method allowed", http.StatusMethodNotAllowed)
			return
		}

		var req reserveReq
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, fmt.Sprintf("can't decode request: %v", err), http.StatusBadRequest)
			return
		}

		if req.ProductID == "" || req.OrderID == "" {
			http.Error(w, "product_id and order_id are required", http.StatusBadRequest)
			return
		}

		res, err := svc.Reserve(r.Context(), req.ProductID, req.OrderID, req.StartsAt, req.EndsAt, req.Quantity)
		if err != nil {
			respondError(w, err)
			return
		}

		respondJSON(w, http.StatusCreated, res)
	}
}

func Release(svc service.Reservation) http.HandlerFunc {
	return transition(svc.Release)
}

func Complete(svc service.Reservation) http.HandlerFunc {
	return transition(svc.Complete)
}

// Release and Complete differ only in the terminal status, the HTTP
// shape is shared: POST with the reservation id in the query string.
func transition(fn func(ctx context.Context, id string) (model.Reservation, error)) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			http.Error(w, "only POST method allowed", http.StatusMethodNotAllowed)
			return
		}

		id := r.URL.Query().Get("id")
		if id == "" {
			http.Error(w, "no id provided", http.StatusBadRequest)
			return
		}

		res, err := fn(r.Context(), id)
		if err != nil {
			respondError(w, err)
			return
		}

		respondJSON(w, http.StatusOK, res)
	}
}

func ReservationListPage(svc service.Reservation) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			http.Error(w, "only GET method allowed", http.StatusMethodNotAllowed)
			return
		}

		pageNum, pageSize, err := parsePage(r)
		if err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}

		filter := database.ReservationFilter{
			ProductID: r.URL.Query().Get("product_id"),
			OrderID:   r.URL.Query().Get("order_id"),
		}

		var resp ListPageResp[model.Reservation]

		resp.Page, resp.Total, err = svc.ListPage(r.Context(), filter, pageNum, pageSize)
		if err != nil {
			respondError(w, err)
			return
		}

		respondJSON(w, http.StatusOK, resp)
	}
}
