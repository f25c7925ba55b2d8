package repository

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"encoding/json"
	"strings"

	apperrors "social-campaign-backend/internal/errors"
)

// Constants for pagination
const (
	DefaultPageSize = 20
	MaxPageSize     = 100

	cursorVersion   = 1
	signatureLength = 16
)

// PageRequest carries the caller's page size and resume token.
type PageRequest struct {
	Limit     int    `json:"limit"`
	NextToken string `json:"nextToken,omitempty"`
}

// NewPageRequest creates a PageRequest, leaving limit clamping to
// GetEffectiveLimit.
func NewPageRequest(limit int, nextToken string) PageRequest {
	return PageRequest{Limit: limit, NextToken: nextToken}
}

// GetEffectiveLimit returns the limit to use, within bounds.
func (pr PageRequest) GetEffectiveLimit() int {
	if pr.Limit <= 0 {
		return DefaultPageSize
	}
	if pr.Limit > MaxPageSize {
		return MaxPageSize
	}
	return pr.Limit
}

// HasNextToken returns true if the request has a pagination token.
func (pr PageRequest) HasNextToken() bool {
	return pr.NextToken != ""
}

// Page is one page of query results.
//
// Filters other than the index key condition are applied after the store
// returns its page, so a page can hold fewer than Limit items, or none, while
// NextCursor is still set. Callers keep paging until NextCursor is empty.
// Scanned and Filtered say how many items the store returned and how many
// the filters dropped.
type Page[T any] struct {
	Items      []T    `json:"items"`
	NextCursor string `json:"nextCursor,omitempty"`
	HasMore    bool   `json:"hasMore"`
	Scanned    int    `json:"scanned"`
	Filtered   int    `json:"filtered"`
}

// CursorScope binds a cursor to the query that produced it. A cursor from
// one tenant, index or partition is rejected by every other.
type CursorScope struct {
	TenantID  string
	Index     string
	Partition string
	Prefix    string
}

func (s CursorScope) String() string {
	return strings.Join([]string{s.TenantID, s.Index, s.Partition, s.Prefix}, "|")
}

type cursorPayload struct {
	V int               `json:"v"`
	K map[string]string `json:"k"`
	S string            `json:"s"`
}

// CursorCodec turns store resume keys into opaque signed tokens and back.
type CursorCodec struct {
	secret []byte
}

// NewCursorCodec creates a codec signing with secret.
func NewCursorCodec(secret []byte) *CursorCodec {
	return &CursorCodec{secret: append([]byte(nil), secret...)}
}

// Encode returns the token for key, or "" when key is empty (no more pages).
func (c *CursorCodec) Encode(scope CursorScope, key map[string]string) (string, error) {
	if len(key) == 0 {
		return "", nil
	}
	sig, err := c.sign(scope, key)
	if err != nil {
		return "", err
	}
	data, err := json.Marshal(cursorPayload{V: cursorVersion, K: key, S: sig})
	if err != nil {
		return "", apperrors.NewInternal("encode cursor", err)
	}
	return base64.RawURLEncoding.EncodeToString(data), nil
}

// Decode validates token against scope and returns the resume key. An empty
// token means the first page and yields a nil key. Every other failure is
// INVALID_CURSOR: a bad cursor never silently restarts the listing.
//
// required lists the key attributes the resume key must carry, exactly.
func (c *CursorCodec) Decode(scope CursorScope, required []string, token string) (map[string]string, error) {
	if token == "" {
		return nil, nil
	}

	data, err := base64.RawURLEncoding.DecodeString(strings.TrimRight(token, "="))
	if err != nil {
		return nil, apperrors.NewInvalidCursor("not base64url", err)
	}
	var payload cursorPayload
	if err := json.Unmarshal(data, &payload); err != nil {
		return nil, apperrors.NewInvalidCursor("malformed payload", err)
	}
	if payload.V != cursorVersion {
		return nil, apperrors.NewInvalidCursor("unsupported version", nil)
	}
	if len(payload.K) != len(required) {
		return nil, apperrors.NewInvalidCursor("unexpected key attributes", nil)
	}
	for _, name := range required {
		if v, ok := payload.K[name]; !ok || v == "" {
			return nil, apperrors.NewInvalidCursor("missing key attribute "+name, nil)
		}
	}

	want, err := c.sign(scope, payload.K)
	if err != nil {
		return nil, err
	}
	if !hmac.Equal([]byte(want), []byte(payload.S)) {
		return nil, apperrors.NewInvalidCursor("signature mismatch", nil)
	}
	return payload.K, nil
}

func (c *CursorCodec) sign(scope CursorScope, key map[string]string) (string, error) {
	// json.Marshal sorts map keys, so the encoding is canonical.
	canonical, err := json.Marshal(key)
	if err != nil {
		return "", apperrors.NewInternal("sign cursor", err)
	}
	mac := hmac.New(sha256.New, c.secret)
	mac.Write([]byte(scope.String()))
	mac.Write([]byte{0})
	mac.Write(canonical)
	return base64.RawURLEncoding.EncodeToString(mac.Sum(nil)[:signatureLength]), nil
}
