// Copyright ©2026 Dan Kortschak. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package rpc provides a JSON RPC 2 server and client for host capability
// queries and clipboard access.
package rpc

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"maps"
	"strconv"
	"strings"
	"time"

	"github.com/kortschak/jsonrpc2"
)

// Server methods.
const (
	Who    = "who"    // call Message[None] → Message[string] (version)
	Probe  = "probe"  // call Message[None] → Message[platform.Report]
	Status = "status" // call Message[None] → Message[ServerStatus]
	Stop   = "stop"   // notify any → nil
)

// Clipboard methods.
const (
	ClipboardGet     = "clipboard.get"     // call Message[None] → Message[string]
	ClipboardSet     = "clipboard.set"     // call Message[string] → Message[string] ("done")
	ClipboardClear   = "clipboard.clear"   // call Message[None] → Message[string] ("done")
	ClipboardMatches = "clipboard.matches" // call Message[string] → Message[bool]
)

// JSON RPC error codes.
const (
	ErrCodeInvalidMessage = 1 // an RPC message is invalid
	// Invalid message sub-codes:
	ErrCodeMessageSyntax       = 11 // syntax
	ErrCodeMessageUnknownField = 12 // unknown field
	ErrCodeShortMessage        = 13 // truncation
	ErrCodeMessageType         = 14 // type mismatch

	ErrCodeClipboard = 2 // an error was returned by the clipboard
	// Clipboard sub-codes:
	ErrCodeNoClipboard      = 21 // no clipboard strategy available
	ErrCodeClipboardTimeout = 22 // clipboard operation timed out
	ErrCodeClipboardClosed  = 23 // clipboard closed
)

// Message is the message passing container.
type Message[T any] struct {
	Time time.Time `json:"time"`
	UID  UID       `json:"uid,omitempty"`
	Body T         `json:"body,omitempty"`
}

// UID is a component's UID.
type UID struct {
	Module  string `json:"module,omitempty"`
	Service string `json:"service,omitempty"`
}

func (u UID) String() string {
	if u.Service == "" {
		return u.Module
	}
	return u.Module + "." + u.Service
}

func (u UID) IsZero() bool {
	return u == UID{}
}

// NewMessage is a convenience Message constructor. It populates the Time
// field and ensures that the sender's UID is included in the message.
func NewMessage[T any](uid UID, body T) *Message[T] {
	return &Message[T]{
		Time: time.Now(),
		UID:  uid,
		Body: body,
	}
}

// UnmarshalMessage is a strict equivalent of [json.Unmarshal]. Unknown
// fields and trailing data are rejected. Errors are returned as
// [jsonrpc2.WireError] with the ErrCodeInvalidMessage code and a
// sub-code in the data type field.
func UnmarshalMessage[T any](data []byte, v *Message[T]) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()
	err := dec.Decode(v)
	if err != nil {
		return invalidMessage(err.Error(), err, data)
	}
	if dec.More() {
		off := dec.InputOffset()
		msg := fmt.Sprintf("invalid character %s after top-level value at offset %d", quoteChar(data[off]), off)
		return invalidMessage(msg, &json.SyntaxError{Offset: off}, data)
	}
	return nil
}

// invalidMessage returns an ErrCodeInvalidMessage wire error describing
// the decoding error err for the message data.
func invalidMessage(msg string, err error, data []byte) error {
	type detail struct {
		Type    int    `json:"type,omitempty"`
		Offset  int64  `json:"offset,omitempty"`
		Message []byte `json:"msg"`
	}
	d := detail{Message: data}
	var (
		synErr  *json.SyntaxError
		typeErr *json.UnmarshalTypeError
	)
	switch {
	case errors.As(err, &synErr):
		d.Type = ErrCodeMessageSyntax
		d.Offset = synErr.Offset
	case errors.As(err, &typeErr):
		d.Type = ErrCodeMessageType
		d.Offset = typeErr.Offset
	case errors.Is(err, io.EOF), errors.Is(err, io.ErrUnexpectedEOF):
		d.Type = ErrCodeShortMessage
	case strings.HasPrefix(err.Error(), "json: unknown field"):
		d.Type = ErrCodeMessageUnknownField
	}
	return &jsonrpc2.WireError{
		Code:    ErrCodeInvalidMessage,
		Message: msg,
		Data:    wireData(d),
	}
}

// NewError returns an error that will be encoded correctly in the RPC protocol.
func NewError(code int64, message string, data any) error {
	return &jsonrpc2.WireError{
		Code:    code,
		Message: message,
		Data:    wireData(data),
	}
}

// AddWireErrorDetail updates the Data field of a [jsonrpc2.WireError] with the
// fields in details, overwriting fields if they already exist. If err is not a
// [jsonrpc2.WireError] or the Data field does not encode a map, the error is
// returned unmodified.
func AddWireErrorDetail(err error, details map[string]any) error {
	werr, ok := err.(*jsonrpc2.WireError)
	if !ok {
		return err
	}
	var data map[string]any
	if json.Unmarshal(werr.Data, &data) != nil || data == nil {
		return err
	}
	maps.Copy(data, details)
	werr.Data = wireData(data)
	return werr
}

// wireData returns the JSON encoding of data without HTML escaping.
// Encoding failures are reported in-band as a JSON string starting
// with '!'.
func wireData(data any) json.RawMessage {
	if data == nil {
		return nil
	}
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	err := enc.Encode(data)
	if err != nil {
		b, _ := json.Marshal("!" + err.Error())
		return b
	}
	return bytes.TrimSpace(buf.Bytes())
}

// quoteChar formats c as a single-quoted character literal.
func quoteChar(c byte) string {
	switch c {
	case '\'':
		return `'\''`
	case '"':
		return `'"'`
	}
	q := strconv.Quote(string(c))
	return "'" + q[1:len(q)-1] + "'"
}

// None is an empty parameter or response slot.
type None struct{}

// Duration is a time.Duration that is encoded in JSON as a duration string.
type Duration struct {
	time.Duration
}

func (d Duration) MarshalJSON() ([]byte, error) {
	return json.Marshal(d.String())
}

func (d *Duration) UnmarshalJSON(data []byte) error {
	var text string
	err := json.Unmarshal(data, &text)
	if err != nil {
		return err
	}
	d.Duration, err = time.ParseDuration(text)
	return err
}

// ServerStatus is the server status returned by a status call.
type ServerStatus struct {
	Version  string   `json:"version"`
	Network  string   `json:"network"`
	Addr     string   `json:"addr"`
	Uptime   Duration `json:"uptime"`
	Strategy string   `json:"strategy,omitempty"` // Empty until the clipboard is opened.
}
