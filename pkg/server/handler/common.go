package handler

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/fleetyard/rentledger/pkg/database"
	"github.com/fleetyard/rentledger/pkg/model"
	"github.com/fleetyard/rentledger/pkg/service"
)

type ListPageResp[T any] struct {
	Page  []T `json:"page"`
	Total int `json:"total"`
}

// respondError maps ledger errors to status codes: unknown records are
// 404, validation failures 400, capacity and state conflicts 409.
func respondError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, database.ErrNotFound):
		http.Error(w, err.Error(), http.StatusNotFound)
	case errors.Is(err, model.ErrInvalidRange), errors.Is(err, model.ErrInvalidQuantity):
		http.Error(w, err.Error(), http.StatusBadRequest)
	case errors.Is(err, model.ErrUnavailable), errors.Is(err, model.ErrInvalidState):
		http.Error(w, err.Error(), http.StatusConflict)
	case errors.Is(err, service.ErrLimitExceeded):
		http.Error(w, err.Error(), http.StatusTooManyRequests)
	default:
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}

func respondJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		http.Error(w, fmt.Sprintf("can't encode response: %v", err), http.StatusInternalServerError)
	}
}

func parsePage(r *http.Request) (pageNum, pageSize int, err error) {
	q := r.URL.Query()
	pageNum = service.DefaultPageNum
	pageSize = service.DefaultPageSize

	if pn := q.Get("page_num"); pn != "" {
		pageNum, err = strconv.Atoi(pn)
		if err != nil {
			return 0, 0, fmt.Errorf("can't parse page_num: %w", err)
		}
	}

	if ps := q.Get("page_size"); ps != "" {
		pageSize, err = strconv.Atoi(ps)
		if err != nil {
			return 0, 0, fmt.Errorf("can't parse page_size: %w", err)
		}
	}

	if pageNum < 1 || pageSize < 1 {
		return 0, 0, fmt.Errorf("page_num and page_size must be positive, got %d and %d", pageNum, pageSize)
	}

	return pageNum, pageSize, nil
}
