// Package rpctest answers Starknet JSON-RPC calls from canned results.
package rpctest

import (
	"encoding/json"
	"net/http"
	"sync"
	"testing"

	"github.com/jarcoal/httpmock"
)

const Endpoint = "http://127.0.0.1:5050/rpc"

// SepoliaChainID is the hex encoding of SN_SEPOLIA.
const SepoliaChainID = "0x534e5f5345504f4c4941"

// Error is answered as a JSON-RPC error object instead of a result.
type Error struct {
	Code    int         `json:"code"`
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
}

// HashNotFound is what nodes answer for a receipt that is not known yet.
var HashNotFound = Error{Code: 29, Message: "Transaction hash not found"}

// Receipt builds a transaction receipt with the given statuses.
func Receipt(txHash, finality, execution, revertReason string) map[string]interface{} {
	receipt := map[string]interface{}{
		"transaction_hash":    txHash,
		"type":                "INVOKE",
		"actual_fee":          map[string]interface{}{"amount": "0x1", "unit": "WEI"},
		"execution_status":    execution,
		"finality_status":     finality,
		"block_hash":          "0x1",
		"block_number":        1,
		"messages_sent":       []interface{}{},
		"events":              []interface{}{},
		"execution_resources": map[string]interface{}{"steps": 1},
	}
	if revertReason != "" {
		receipt["revert_reason"] = revertReason
	}
	return receipt
}

// FeeEstimate builds a starknet_estimateFee result with a single estimate.
func FeeEstimate(overallFee string) []interface{} {
	return []interface{}{map[string]interface{}{
		"gas_consumed":      "0x1",
		"gas_price":         overallFee,
		"data_gas_consumed": "0x0",
		"data_gas_price":    "0x1",
		"overall_fee":       overallFee,
		"unit":              "WEI",
	}}
}

type request struct {
	ID     json.RawMessage `json:"id"`
	Method string          `json:"method"`
	Params json.RawMessage `json:"params"`
}

// Server records the methods it was asked for.
type Server struct {
	mu      sync.Mutex
	results map[string]interface{}
	calls   []string
	params  map[string][]json.RawMessage
}

// Start activates httpmock on the default transport until the test ends.
func Start(t testing.TB, results map[string]interface{}) *Server {
	t.Helper()
	s := &Server{results: results, params: map[string][]json.RawMessage{}}

	httpmock.Activate()
	t.Cleanup(httpmock.DeactivateAndReset)
	httpmock.RegisterResponder(http.MethodPost, Endpoint, s.respond)
	return s
}

// Set replaces the answer for method.
func (s *Server) Set(method string, result interface{}) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.results[method] = result
}

func (s *Server) respond(req *http.Request) (*http.Response, error) {
	var msg request
	if err := json.NewDecoder(req.Body).Decode(&msg); err != nil {
		return httpmock.NewStringResponse(http.StatusBadRequest, err.Error()), nil
	}

	s.mu.Lock()
	s.calls = append(s.calls, msg.Method)
	s.params[msg.Method] = append(s.params[msg.Method], msg.Params)
	result, ok := s.results[msg.Method]
	s.mu.Unlock()

	if !ok {
		result = Error{Code: -32601, Message: "Method not found"}
	}
	if rpcErr, isErr := result.(Error); isErr {
		return httpmock.NewJsonResponse(http.StatusOK, map[string]interface{}{
			"jsonrpc": "2.0",
			"id":      msg.ID,
			"error":   rpcErr,
		})
	}
	return httpmock.NewJsonResponse(http.StatusOK, map[string]interface{}{
		"jsonrpc": "2.0",
		"id":      msg.ID,
		"result":  result,
	})
}

func (s *Server) Calls() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.calls...)
}

// Params returns the raw params of every call to method, oldest first.
func (s *Server) Params(method string) []json.RawMessage {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]json.RawMessage(nil), s.params[method]...)
}
