package server

import (
	"net/http"

	"github.com/fleetyard/rentledger/pkg/server/handler"
	"github.com/fleetyard/rentledger/pkg/server/middleware"
	"github.com/fleetyard/rentledger/pkg/service"
)

func New(addr string, reservationSvc service.Reservation, productSvc service.Product) (*http.Server, error) {
	mux := http.NewServeMux()

	mux.Handle("/availability", handler.CheckAvailability(reservationSvc))
	mux.Handle("/availability/bulk", handler.CheckAvailabilityBulk(reservationSvc))
	mux.Handle("/reserve", handler.Reserve(reservationSvc))
	mux.Handle("/release", handler.Release(reservationSvc))
	mux.Handle("/complete", handler.Complete(reservationSvc))
	mux.Handle("/reservations", handler.ReservationListPage(reservationSvc))
	mux.Handle("/products", handler.Products(productSvc))
	mux.Handle("/product", handler.ProductGet(productSvc))

	chain := middleware.Chain{
		middleware.Log,
		middleware.Recovery,
	}

	return &http.Server{
		Addr:    addr,
		Handler: chain.Then(mux),
	}, nil
}
