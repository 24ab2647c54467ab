package handler

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/fleetyard/rentledger/pkg/model"
	"github.com/fleetyard/rentledger/pkg/service"
)

func CheckAvailability(svc service.Reservation) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			http.Error(w, "only POST method allowed", http.StatusMethodNotAllowed)
			return
		}

		var req model.AvailabilityRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, fmt.Sprintf("can't decode request: %v", err), http.StatusBadRequest)
			return
		}

		res, err := svc.CheckAvailability(r.Context(), req)
		if err != nil {
			respondError(w, err)
			return
		}

		respondJSON(w, http.StatusOK, res)
	}
}

type bulkAvailabilityReq struct {
	Items []model.AvailabilityRequest `json:"items"`
}

type bulkAvailabilityItem struct {
	model.AvailabilityRequest
	model.AvailabilityResult
	Error string `json:"error,omitempty"`
}

type bulkAvailabilityResp struct {
	Results []bulkAvailabilityItem `json:"results"`
}

func CheckAvailabilityBulk(svc service.Reservation) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			http.Error(w, "only POST method allowed", http.StatusMethodNotAllowed)
			return
		}

		var req bulkAvailabilityReq
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, fmt.Sprintf("can't decode request: %v", err), http.StatusBadRequest)
			return
		}

		checked := svc.CheckAvailabilityBulk(r.Context(), req.Items)

		resp := bulkAvailabilityResp{Results: make([]bulkAvailabilityItem, 0, len(checked))}
		for _, c := range checked {
			item := bulkAvailabilityItem{
				AvailabilityRequest: c.AvailabilityRequest,
				AvailabilityResult:  c.Result,
			}
			if c.Err != nil {
				item.Error = c.Err.Error()
			}

			resp.Results = append(resp.Results, item)
		}

		respondJSON(w, http.StatusOK, resp)
	}
}
