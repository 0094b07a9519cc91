package api

import (
	"bytes"
	"encoding/json"
	"net/http"

	apperrors "github.com/utafrali/EcommerceGo/pkg/errors"
	"github.com/utafrali/EcommerceGo/pkg/httpclient"
)

// envelope covers the reply shapes the backend uses:
//
//	[...]                                 bare payload
//	{"success": true, "data": ...}        payload under data
//	{"success": true, "items": [...]}     cart listing
//	{"item": {...}}                       single item
//	{"data": {"items": [...], "has_more": true}}
type envelope struct {
	Success *bool           `json:"success"`
	Data    json.RawMessage `json:"data"`
	Items   json.RawMessage `json:"items"`
	Item    json.RawMessage `json:"item"`
	HasMore *bool           `json:"has_more"`
}

type nestedList struct {
	Items   json.RawMessage `json:"items"`
	HasMore *bool           `json:"has_more"`
}

// unwrap strips the envelope from a 2xx body and returns the payload.
// success:false is reported as an upstream error even on 2xx.
func unwrap(endpoint string, body []byte) (payload json.RawMessage, hasMore *bool, err error) {
	body = bytes.TrimSpace(body)
	if len(body) == 0 {
		return json.RawMessage("null"), nil, nil
	}
	if body[0] != '{' {
		return body, nil, nil
	}

	var env envelope
	if err := json.Unmarshal(body, &env); err != nil {
		return nil, nil, apperrors.Malformed(endpoint, err)
	}
	if env.Success != nil && !*env.Success {
		code, msg := httpclient.ParseErrorBody(body)
		return nil, nil, apperrors.Upstream(http.StatusOK, code, msg)
	}

	switch {
	case len(env.Data) > 0:
		return env.Data, env.HasMore, nil
	case len(env.Items) > 0:
		return env.Items, env.HasMore, nil
	case len(env.Item) > 0:
		return env.Item, env.HasMore, nil
	}
	return body, env.HasMore, nil
}

// decodeOne decodes a single-object reply into dst. It reports false when
// the payload is null.
func decodeOne(endpoint string, body []byte, dst any) (bool, error) {
	payload, _, err := unwrap(endpoint, body)
	if err != nil {
		return false, err
	}
	if isNull(payload) {
		return false, nil
	}
	if err := json.Unmarshal(payload, dst); err != nil {
		return false, apperrors.Malformed(endpoint, err)
	}
	return true, nil
}

// decodeList decodes a list reply. Lists nested as data.items are accepted,
// and a null payload is an empty list.
func decodeList[T any](endpoint string, body []byte) ([]T, *bool, error) {
	payload, hasMore, err := unwrap(endpoint, body)
	if err != nil {
		return nil, nil, err
	}
	if isNull(payload) {
		return []T{}, hasMore, nil
	}

	if payload[0] == '{' {
		var nested nestedList
		if err := json.Unmarshal(payload, &nested); err != nil {
			return nil, nil, apperrors.Malformed(endpoint, err)
		}
		if nested.HasMore != nil {
			hasMore = nested.HasMore
		}
		if isNull(nested.Items) {
			return []T{}, hasMore, nil
		}
		payload = nested.Items
	}

	var items []T
	if err := json.Unmarshal(payload, &items); err != nil {
		return nil, nil, apperrors.Malformed(endpoint, err)
	}
	if items == nil {
		items = []T{}
	}
	return items, hasMore, nil
}

func isNull(raw json.RawMessage) bool {
	raw = bytes.TrimSpace(raw)
	return len(raw) == 0 || bytes.Equal(raw, []byte("null"))
}
