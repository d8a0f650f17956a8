// Copyright (c) 2025 The ADR Ledger developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package api exposes the ledger over REST.
package api

import (
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/gorilla/handlers"
	"github.com/gorilla/mux"
	"github.com/inconshreveable/log15"
	"github.com/pkg/errors"

	"github.com/adranet/adrd/cert"
	"github.com/adranet/adrd/co"
	"github.com/adranet/adrd/eventdb"
	"github.com/adranet/adrd/staking"
	"github.com/adranet/adrd/token"
)

var logger = log15.New("pkg", "api")

// Options tunes the HTTP surface.
type Options struct {
	AllowedOrigins string
	EnableMetrics  bool
}

// API bundles the subsystems served over HTTP.
type API struct {
	engine *staking.Engine
	certs  *cert.Ledger
	tokens *token.Service
	events *eventdb.EventDB
}

// New builds the router over the given subsystems.
func New(
	engine *staking.Engine,
	certs *cert.Ledger,
	tokens *token.Service,
	events *eventdb.EventDB,
	opts Options,
) http.HandlerFunc {
	origins := strings.Split(strings.TrimSpace(opts.AllowedOrigins), ",")
	for i, o := range origins {
		origins[i] = strings.ToLower(strings.TrimSpace(o))
	}

	a := &API{
		engine: engine,
		certs:  certs,
		tokens: tokens,
		events: events,
	}

	router := mux.NewRouter()
	a.mount(router)

	if opts.EnableMetrics {
		router.Use(metricsMiddleware)
	}

	handler := handlers.CompressHandler(router)
	handler = handlers.CORS(
		handlers.AllowedOrigins(origins),
		handlers.AllowedHeaders([]string{"content-type"}),
	)(handler)
	return handler.ServeHTTP
}

func (a *API) mount(router *mux.Router) {
	sub := router.PathPrefix("/staking").Subrouter()
	sub.Path("/stakes").Methods(http.MethodPost).HandlerFunc(WrapHandlerFunc(a.handleStake))
	sub.Path("/unstake").Methods(http.MethodPost).HandlerFunc(WrapHandlerFunc(a.handleUnstake))
	sub.Path("/stakes/{address}").Methods(http.MethodGet).HandlerFunc(WrapHandlerFunc(a.handleStakeSummary))
	sub.Path("/config").Methods(http.MethodGet).HandlerFunc(WrapHandlerFunc(a.handleConfigSummary))

	sub = router.PathPrefix("/admin").Subrouter()
	sub.Path("/staking").Methods(http.MethodPost).HandlerFunc(WrapHandlerFunc(a.handleConfigure))
	sub.Path("/pause").Methods(http.MethodPost).HandlerFunc(WrapHandlerFunc(a.handlePause))
	sub.Path("/transfer").Methods(http.MethodPost).HandlerFunc(WrapHandlerFunc(a.handleAdminTransfer))
	sub.Path("/maxstake").Methods(http.MethodPost).HandlerFunc(WrapHandlerFunc(a.handleMaxStake))
	sub.Path("/paymenttoken").Methods(http.MethodPost).HandlerFunc(WrapHandlerFunc(a.handlePaymentToken))
	sub.Path("/reserve").Methods(http.MethodPost).HandlerFunc(WrapHandlerFunc(a.handleRewardReserve))
	sub.Path("/reserve/deposits").Methods(http.MethodPost).HandlerFunc(WrapHandlerFunc(a.handleReserveDeposit))

	sub = router.PathPrefix("/token").Subrouter()
	sub.Path("/transfers").Methods(http.MethodPost).HandlerFunc(WrapHandlerFunc(a.handleTransfer))
	sub.Path("/approvals").Methods(http.MethodPost).HandlerFunc(WrapHandlerFunc(a.handleApprove))
	sub.Path("/accounts/{mint}/{address}").Methods(http.MethodGet).HandlerFunc(WrapHandlerFunc(a.handleAccount))

	sub = router.PathPrefix("/certs").Subrouter()
	sub.Path("").Methods(http.MethodPost).HandlerFunc(WrapHandlerFunc(a.handleMintCert))
	sub.Path("/collection").Methods(http.MethodGet).HandlerFunc(WrapHandlerFunc(a.handleCollection))
	sub.Path("/{id:[0-9]+}").Methods(http.MethodGet).HandlerFunc(WrapHandlerFunc(a.handleGetCert))

	router.Path("/events").Methods(http.MethodGet).HandlerFunc(WrapHandlerFunc(a.handleEvents))
}

// Start serves the handler on addr and returns the base URL with a
// close func.
func Start(addr string, handler http.HandlerFunc) (string, func(), error) {
	listener, err := net.Listen("tcp", addr)
	if err != nil {
		return "", nil, errors.Wrapf(err, "listen API addr [%v]", addr)
	}

	srv := &http.Server{Handler: handler, ReadHeaderTimeout: time.Second, ReadTimeout: 5 * time.Second}
	var goes co.Goes
	goes.Go(func() {
		err := srv.Serve(listener)
		if err != http.ErrServerClosed {
			logger.Warn("API server stopped", "err", err)
		}
	})
	return "http://" + listener.Addr().String() + "/", func() {
		srv.Close()
		goes.Wait()
	}, nil
}
