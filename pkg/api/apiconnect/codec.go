// Package apiconnect wires the api messages to Connect handlers and clients.
//
// Messages are plain Go structs, so every handler and client is configured
// with a JSON codec registered under the "json" name; requests use
// Content-Type application/json.
package apiconnect

import (
	"encoding/json"
	"fmt"

	"connectrpc.com/connect"
)

const codecName = "json"

type jsonCodec struct{}

func (jsonCodec) Name() string { return codecName }

func (jsonCodec) Marshal(msg any) ([]byte, error) {
	return json.Marshal(msg)
}

func (jsonCodec) Unmarshal(data []byte, msg any) error {
	if len(data) == 0 {
		return nil
	}
	if err := json.Unmarshal(data, msg); err != nil {
		return fmt.Errorf("unmarshal %T: %w", msg, err)
	}
	return nil
}

// WithJSON returns the option that installs the JSON codec. Constructors in
// this package apply it automatically.
func WithJSON() connect.Option {
	return connect.WithCodec(jsonCodec{})
}
