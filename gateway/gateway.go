// Package gateway exposes the launchpad contract over HTTP. Every request
// becomes one Host.Execute call; the call environment comes from headers.
package gateway

import (
	"encoding/json"
	"io"
	"net/http"
	"strconv"
	"sync/atomic"
	"time"

	"github.com/CosmWasm/tinyjson/jwriter"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"okinoko_ido/contract"
	"okinoko_ido/sdk"
)

const (
	HeaderSender       = "X-Sender"
	HeaderTimestamp    = "X-Block-Timestamp"
	HeaderTxID         = "X-Tx-Id"
	HeaderDepositPurse = "X-Deposit-Purse"

	maxPayloadBytes = 1 << 20
)

// Handler serves contract calls and read-only views.
type Handler struct {
	host       *contract.Host
	contractID sdk.Address
	log        *zap.Logger
	height     atomic.Uint64

	// Now supplies the block time when a request does not carry one.
	Now func() time.Time
}

func NewHandler(host *contract.Host, contractID sdk.Address, log *zap.Logger) *Handler {
	if log == nil {
		log = zap.NewNop()
	}
	return &Handler{host: host, contractID: contractID, log: log, Now: time.Now}
}

// NewRouter builds a chi router with the standard middleware and h mounted.
func NewRouter(h *Handler) chi.Router {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(h.requestLogger)
	h.RegisterRoutes(r)
	return r
}

func (h *Handler) requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		next.ServeHTTP(ww, r)
		h.log.Debug("request",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Int("status", ww.Status()),
			zap.Int("bytes", ww.BytesWritten()),
			zap.Duration("took", time.Since(start)),
			zap.String("request_id", middleware.GetReqID(r.Context())),
		)
	})
}

func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Get("/livez", h.handleLiveness)
	r.Get("/entrypoints", h.handleEntryPoints)
	r.Post("/call/{entry}", h.handleCall)
	r.Get("/config", h.handleConfig)
	r.Get("/auctions/{id}", h.handleAuction)
	r.Get("/auctions/{id}/orders/{bidder}", h.handleBidderQuery("get_order"))
	r.Get("/auctions/{id}/tiers/{bidder}", h.handleBidderQuery("get_tier"))
	r.Get("/auctions/{id}/claims/{bidder}/{schedule}", h.handleBidderQuery("get_claim"))
}

func (h *Handler) handleLiveness(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusOK)
}

func (h *Handler) handleEntryPoints(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, contract.EntryPoints())
}

// envFromRequest reads the call environment. Missing tx ids get a fresh uuid
// and a missing timestamp takes the handler clock.
func (h *Handler) envFromRequest(r *http.Request, sender sdk.Address) (sdk.Env, error) {
	env := sdk.Env{
		ContractID:  h.contractID,
		TxID:        r.Header.Get(HeaderTxID),
		BlockHeight: h.height.Add(1),
		Timestamp:   h.Now().Unix(),
		Sender:      sender,
	}
	if env.TxID == "" {
		env.TxID = uuid.NewString()
	}
	if ts := r.Header.Get(HeaderTimestamp); ts != "" {
		v, err := strconv.ParseInt(ts, 10, 64)
		if err != nil {
			return env, err
		}
		env.Timestamp = v
	}
	if p := r.Header.Get(HeaderDepositPurse); p != "" {
		purse := sdk.Purse(p)
		env.DepositPurse = &purse
	}
	return env, nil
}

func (h *Handler) handleCall(w http.ResponseWriter, r *http.Request) {
	entry := chi.URLParam(r, "entry")
	sender := sdk.Address(r.Header.Get(HeaderSender))
	if sender == "" {
		http.Error(w, "missing "+HeaderSender+" header", http.StatusBadRequest)
		return
	}
	env, err := h.envFromRequest(r, sender)
	if err != nil {
		http.Error(w, "invalid "+HeaderTimestamp+" header", http.StatusBadRequest)
		return
	}

	payload, err := io.ReadAll(io.LimitReader(r.Body, maxPayloadBytes+1))
	if err != nil {
		http.Error(w, "failed to read body", http.StatusBadRequest)
		return
	}
	if len(payload) > maxPayloadBytes {
		http.Error(w, "payload too large", http.StatusRequestEntityTooLarge)
		return
	}

	h.execute(w, r, env, entry, payload, false)
}

func (h *Handler) handleConfig(w http.ResponseWriter, r *http.Request) {
	h.view(w, r, "get_config", []byte("{}"))
}

func (h *Handler) handleAuction(w http.ResponseWriter, r *http.Request) {
	out := jwriter.Writer{}
	out.RawString(`{"auction_id":`)
	out.String(chi.URLParam(r, "id"))
	out.RawByte('}')
	payload, _ := out.BuildBytes()
	h.view(w, r, "get_auction", payload)
}

func (h *Handler) handleBidderQuery(entry string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		out := jwriter.Writer{}
		out.RawString(`{"auction_id":`)
		out.String(chi.URLParam(r, "id"))
		out.RawString(`,"bidder":`)
		out.String(chi.URLParam(r, "bidder"))
		if s := chi.URLParam(r, "schedule"); s != "" {
			ts, err := strconv.ParseInt(s, 10, 64)
			if err != nil {
				http.Error(w, "invalid schedule time", http.StatusBadRequest)
				return
			}
			out.RawString(`,"schedule_time":`)
			out.Int64(ts)
		}
		out.RawByte('}')
		payload, _ := out.BuildBytes()
		h.view(w, r, entry, payload)
	}
}

// view runs a query as the contract itself and answers with its raw result.
func (h *Handler) view(w http.ResponseWriter, r *http.Request, entry string, payload []byte) {
	env, err := h.envFromRequest(r, h.contractID)
	if err != nil {
		http.Error(w, "invalid "+HeaderTimestamp+" header", http.StatusBadRequest)
		return
	}
	h.execute(w, r, env, entry, payload, true)
}

func (h *Handler) execute(w http.ResponseWriter, r *http.Request, env sdk.Env, entry string, payload []byte, raw bool) {
	receipt, err := h.host.Execute(r.Context(), env, entry, payload)
	if err != nil {
		h.log.Error("execute failed",
			zap.String("entry", entry),
			zap.String("request_id", middleware.GetReqID(r.Context())),
			zap.Error(err),
		)
		writeJSON(w, http.StatusInternalServerError, receipt)
		return
	}
	if !receipt.Success {
		writeJSON(w, statusFor(receipt), receipt)
		return
	}
	if raw {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(receipt.Ret))
		return
	}
	writeJSON(w, http.StatusOK, receipt)
}

func statusFor(r *contract.Receipt) int {
	if r.ErrCode == contract.ErrUnknownEntryPoint.Code && r.ErrName == contract.ErrUnknownEntryPoint.Name {
		return http.StatusNotFound
	}
	switch r.ErrKind {
	case contract.KindNotFound.String():
		return http.StatusNotFound
	case contract.KindAlreadyExists.String():
		return http.StatusConflict
	case contract.KindPermissionDenied.String():
		return http.StatusForbidden
	case contract.KindInvalidInput.String():
		return http.StatusBadRequest
	default:
		return http.StatusUnprocessableEntity
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
