package session

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/vmihailenco/msgpack/v5"
	"nhooyr.io/websocket"
)

// MsgpackSubprotocol selects binary msgpack frames instead of JSON text frames
const MsgpackSubprotocol = "arena.msgpack"

// Codec encodes events and decodes commands for one connection
type Codec interface {
	Encode(v interface{}) ([]byte, error)
	Decode(data []byte, v interface{}) error
	MessageType() websocket.MessageType
}

// CodecFor returns the codec negotiated for subprotocol
func CodecFor(subprotocol string) Codec {
	if subprotocol == MsgpackSubprotocol {
		return msgpackCodec{}
	}
	return jsonCodec{}
}

type jsonCodec struct{}

func (jsonCodec) Encode(v interface{}) ([]byte, error) {
	return json.Marshal(v)
}

func (jsonCodec) Decode(data []byte, v interface{}) error {
	return json.Unmarshal(data, v)
}

func (jsonCodec) MessageType() websocket.MessageType {
	return websocket.MessageText
}

// msgpackCodec reuses the json struct tags so both encodings carry the same
// field names
type msgpackCodec struct{}

func (msgpackCodec) Encode(v interface{}) ([]byte, error) {
	var buf bytes.Buffer
	enc := msgpack.NewEncoder(&buf)
	enc.SetCustomStructTag("json")
	enc.UseCompactInts(true)
	if err := enc.Encode(v); err != nil {
		return nil, fmt.Errorf("failed to encode msgpack frame: %w", err)
	}
	return buf.Bytes(), nil
}

func (msgpackCodec) Decode(data []byte, v interface{}) error {
	dec := msgpack.NewDecoder(bytes.NewReader(data))
	dec.SetCustomStructTag("json")
	if err := dec.Decode(v); err != nil {
		return fmt.Errorf("failed to decode msgpack frame: %w", err)
	}
	return nil
}

func (msgpackCodec) MessageType() websocket.MessageType {
	return websocket.MessageBinary
}
