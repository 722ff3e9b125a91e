package main

import (
	"bytes"
	"encoding/json"
	"errors"
	"net/url"
	"strings"
)

var errEmptyMessage = errors.New("msg must not be empty")

// pushPayload is what subscribers receive. Field order is part of the wire
// format; absent optional fields encode as null.
type pushPayload struct {
	Pusher *string `json:"pusher"`
	Msg    string  `json:"msg"`
	Type   *string `json:"type"`
	Level  *string `json:"level"`
	Date   *string `json:"date"`
}

func newPushPayload(form url.Values) (pushPayload, error) {
	msg := form.Get("msg")
	if strings.TrimSpace(msg) == "" {
		return pushPayload{}, errEmptyMessage
	}
	return pushPayload{
		Pusher: optional(form, "pusher"),
		Msg:    msg,
		Type:   optional(form, "type"),
		Level:  optional(form, "level"),
		Date:   optional(form, "date"),
	}, nil
}

func optional(form url.Values, key string) *string {
	if _, ok := form[key]; !ok {
		return nil
	}
	v := form.Get(key)
	return &v
}

// encode leaves <, > and & unescaped so clients see msg exactly as sent.
func (p pushPayload) encode() (string, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(p); err != nil {
		return "", err
	}
	return strings.TrimSuffix(buf.String(), "\n"), nil
}
