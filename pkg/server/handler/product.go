package handler

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/fleetyard/rentledger/pkg/model"
	"github.com/fleetyard/rentledger/pkg/service"
)

// Products dispatches /products: listing for GET, creation for POST.
func Products(svc service.Product) http.HandlerFunc {
	list := ProductListPage(svc)
	create := ProductCreate(svc)

	return func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodGet:
			list(w, r)
		case http.MethodPost:
			create(w, r)
		default:
			http.Error(w, "only GET and POST methods allowed", http.StatusMethodNotAllowed)
		}
	}
}

type createProductReq struct {
	Name           string `json:"name"`
	Category       string `json:"category"`
	DailyRateCents int    `json:"daily_rate_cents"`
	TotalQuantity  int    `json:"total_quantity"`
}

func ProductCreate(svc service.Product) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			http.Error(w, "only POST method allowed", http.StatusMethodNotAllowed)
			return
		}

		var req createProductReq
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, fmt.Sprintf("can't decode request: %v", err), http.StatusBadRequest)
			return
		}

		if req.Name == "" {
			http.Error(w, "name is required", http.StatusBadRequest)
			return
		}

		p, err := svc.Create(r.Context(), req.Name, req.Category, req.DailyRateCents, req.TotalQuantity)
		if err != nil {
			respondError(w, err)
			return
		}

		respondJSON(w, http.StatusCreated, p)
	}
}

func ProductGet(svc service.Product) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			http.Error(w, "only GET method allowed", http.StatusMethodNotAllowed)
			return
		}

		id := r.URL.Query().Get("id")
		if id == "" {
			http.Error(w, "no id provided", http.StatusBadRequest)
			return
		}

		p, err := svc.Get(r.Context(), id)
		if err != nil {
			respondError(w, err)
			return
		}

		respondJSON(w, http.StatusOK, p)
	}
}

func ProductListPage(svc service.Product) http.HandlerFunc {
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

		var resp ListPageResp[model.Product]

		resp.Page, resp.Total, err = svc.ListPage(r.Context(), pageNum, pageSize)
		if err != nil {
			respondError(w, err)
			return
		}

		respondJSON(w, http.StatusOK, resp)
	}
}
