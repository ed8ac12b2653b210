// Package transport provides the request/response channel to the embedded
// frame runtime.
//
// The channel is an opaque RPC boundary identified by a procedure name and a
// params record. It carries frame-hosted login flows, legacy sharded-wallet
// operations, the shard-to-enclave migration call, and frame initialization.
// The wire format behind Call is owned by the frame runtime, not by this SDK.
package transport

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	apperrors "github.com/keystrand/keystrand-go/internal/platform/errors"
)

// Procedure names understood by the frame runtime.
const (
	ProcedureMigrateFromShardToEnclave  = "migrateFromShardToEnclave"
	ProcedureInitFrame                  = "initIframe"
	ProcedureLoginWithModal             = "loginWithModal"
	ProcedureLoginWithEmailVerification = "loginWithEmailVerification"
	ProcedureGetAddress                 = "getAddress"
	ProcedureGetUserStatus              = "getUserStatus"
	ProcedureStoreDeviceShare           = "storeDeviceShare"
	ProcedureSignMessage                = "signMessage"
	ProcedureLogout                     = "logout"
)

// Channel is a request/response pipe to the frame runtime.
type Channel interface {
	// Call invokes a remote procedure and decodes its response into result.
	// A nil result discards the response body.
	Call(ctx context.Context, procedure string, params any, result any) error
}

type envelope struct {
	Procedure string `json:"procedure"`
	Params    any    `json:"params,omitempty"`
}

type responseEnvelope struct {
	Data  json.RawMessage `json:"data"`
	Error *struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

// HTTPChannel speaks the frame protocol over HTTPS for hosts without an
// embeddable frame surface.
type HTTPChannel struct {
	endpoint   string
	httpClient *http.Client
	clientID   string
}

// NewHTTPChannel creates a channel against the frame bridge endpoint.
func NewHTTPChannel(endpoint, clientID string, httpClient *http.Client) *HTTPChannel {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	return &HTTPChannel{
		endpoint:   strings.TrimRight(endpoint, "/"),
		httpClient: httpClient,
		clientID:   clientID,
	}
}

// Call implements Channel.
func (c *HTTPChannel) Call(ctx context.Context, procedure string, params any, result any) error {
	raw, err := json.Marshal(envelope{Procedure: procedure, Params: params})
	if err != nil {
		return fmt.Errorf("encode %s call: %w", procedure, err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint+"/rpc", bytes.NewReader(raw))
	if err != nil {
		return fmt.Errorf("build %s call: %w", procedure, err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("x-ks-client-id", c.clientID)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return apperrors.Wrap(apperrors.CodeTransportFailure,
			fmt.Sprintf("call frame procedure %s", procedure), err)
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return apperrors.Wrap(apperrors.CodeTransportFailure,
			fmt.Sprintf("read %s response", procedure), err)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return apperrors.New(apperrors.CodeTransportFailure,
			fmt.Sprintf("frame procedure %s returned status %d", procedure, resp.StatusCode))
	}

	var wrapped responseEnvelope
	if err := json.Unmarshal(body, &wrapped); err != nil {
		return apperrors.Wrap(apperrors.CodeTransportFailure,
			fmt.Sprintf("decode %s response", procedure), err)
	}
	if wrapped.Error != nil {
		code := apperrors.Code(wrapped.Error.Code)
		if code == "" {
			code = apperrors.CodeTransportFailure
		}
		return apperrors.New(code, wrapped.Error.Message)
	}
	if result == nil || len(wrapped.Data) == 0 {
		return nil
	}
	if err := json.Unmarshal(wrapped.Data, result); err != nil {
		return apperrors.Wrap(apperrors.CodeTransportFailure,
			fmt.Sprintf("decode %s result", procedure), err)
	}
	return nil
}
