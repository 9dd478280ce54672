package rpc

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"

	"posttree/native/post"
	"posttree/observability/metrics"
)

const (
	jsonRPCVersion  = "2.0"
	maxRequestBytes = 1 << 20 // 1 MiB
)

const (
	codeParseError     = -32700
	codeInvalidRequest = -32600
	codeMethodNotFound = -32601
	codeInvalidParams  = -32602
	codeServerError    = -32000
	codeUnauthorized   = -32001
	codeNotFound       = -32004
	codeOverflow       = -32005
)

// Server exposes the post engine over JSON-RPC 2.0.
type Server struct {
	engine *post.Engine
	logger *slog.Logger
}

// NewServer constructs an RPC server around the given engine.
func NewServer(engine *post.Engine, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	return &Server{engine: engine, logger: logger}
}

// Start serves RPC requests on addr until the listener fails.
func (s *Server) Start(addr string) error {
	mux := http.NewServeMux()
	mux.HandleFunc("/", s.handle)
	s.logger.Info("starting JSON-RPC server", slog.String("addr", addr))
	return http.ListenAndServe(addr, mux)
}

// Handler returns the HTTP handler, which tests mount directly.
func (s *Server) Handler() http.Handler {
	return http.HandlerFunc(s.handle)
}

type rpcRequest struct {
	JSONRPC string            `json:"jsonrpc"`
	Method  string            `json:"method"`
	Params  []json.RawMessage `json:"params"`
	ID      interface{}       `json:"id"`
}

type rpcResponse struct {
	JSONRPC string      `json:"jsonrpc"`
	ID      interface{} `json:"id"`
	Result  interface{} `json:"result,omitempty"`
	Error   *rpcError   `json:"error,omitempty"`
}

type rpcError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

func (s *Server) handle(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, nil, codeInvalidRequest, "POST required")
		return
	}
	body, err := io.ReadAll(io.LimitReader(r.Body, maxRequestBytes))
	if err != nil {
		writeError(w, http.StatusBadRequest, nil, codeParseError, "read request body")
		return
	}
	var req rpcRequest
	if err := json.Unmarshal(body, &req); err != nil {
		writeError(w, http.StatusBadRequest, nil, codeParseError, "parse request")
		return
	}
	if req.JSONRPC != jsonRPCVersion || req.Method == "" {
		writeError(w, http.StatusBadRequest, req.ID, codeInvalidRequest, "invalid JSON-RPC request")
		return
	}

	result, err := s.dispatch(req)
	metrics.Post().ObserveOp(req.Method, err)
	if err != nil {
		code, status := mapError(err)
		s.logger.Warn("rpc call failed",
			slog.String("method", req.Method),
			slog.Any("error", err))
		writeError(w, status, req.ID, code, err.Error())
		return
	}
	writeResult(w, req.ID, result)
}

func (s *Server) dispatch(req rpcRequest) (interface{}, error) {
	var params json.RawMessage
	if len(req.Params) > 0 {
		params = req.Params[0]
	}
	handler, ok := s.methods()[req.Method]
	if !ok {
		return nil, errMethodNotFound
	}
	return handler(params)
}

var errMethodNotFound = errors.New("method not found")

func decodeParams(raw json.RawMessage, out interface{}) error {
	if len(raw) == 0 {
		return fmt.Errorf("%w: missing params", post.ErrInvalidInput)
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("%w: %v", post.ErrInvalidInput, err)
	}
	return nil
}

func mapError(err error) (code int, status int) {
	switch {
	case errors.Is(err, errMethodNotFound):
		return codeMethodNotFound, http.StatusNotFound
	case errors.Is(err, post.ErrNotFound):
		return codeNotFound, http.StatusOK
	case errors.Is(err, post.ErrOverflow):
		return codeOverflow, http.StatusOK
	case errors.Is(err, post.ErrInvalidInput):
		return codeInvalidParams, http.StatusOK
	case errors.Is(err, post.ErrUnauthorized):
		return codeUnauthorized, http.StatusOK
	default:
		return codeServerError, http.StatusOK
	}
}

func observePage(n int) {
	metrics.Post().ObservePageSize(n)
}

func writeError(w http.ResponseWriter, status int, id interface{}, code int, message string) {
	if status != http.StatusOK {
		w.WriteHeader(status)
	}
	resp := rpcResponse{JSONRPC: jsonRPCVersion, ID: id, Error: &rpcError{Code: code, Message: message}}
	_ = json.NewEncoder(w).Encode(resp)
}

func writeResult(w http.ResponseWriter, id interface{}, result interface{}) {
	resp := rpcResponse{JSONRPC: jsonRPCVersion, ID: id, Result: result}
	_ = json.NewEncoder(w).Encode(resp)
}
