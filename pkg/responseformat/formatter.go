// Package responseformat encodes REST responses as JSON or MessagePack.
package responseformat

import (
	"encoding/json"
	"io"
	"net/http"

	"github.com/vmihailenco/msgpack/v5"
)

// FormatParam is the query parameter that selects the encoding
const FormatParam = "format"

// MsgPack is the FormatParam value that selects MessagePack
const MsgPack = "msgpack"

// Formatter handles encoding and writing responses in JSON or MessagePack format
type Formatter struct{}

// NewFormatter creates a new response formatter
func NewFormatter() *Formatter {
	return &Formatter{}
}

// ErrorBody is the payload written by WriteError
type ErrorBody struct {
	Error string `json:"error"`
}

// WriteResponse writes data with status 200. JSON is the default format;
// MessagePack is used when format=msgpack is specified.
func (f *Formatter) WriteResponse(w http.ResponseWriter, req *http.Request, data any, headers map[string]string) error {
	return f.write(w, req, http.StatusOK, data, headers)
}

// WriteError writes an ErrorBody with the given status in the requested format
func (f *Formatter) WriteError(w http.ResponseWriter, req *http.Request, status int, message string) error {
	return f.write(w, req, status, ErrorBody{Error: message}, nil)
}

func (f *Formatter) write(w http.ResponseWriter, req *http.Request, status int, data any, headers map[string]string) error {
	for k, v := range headers {
		w.Header().Set(k, v)
	}
	w.Header().Set("Access-Control-Allow-Origin", "*")

	if WantsMsgPack(req) {
		w.Header().Set("Content-Type", "application/x-msgpack")
		w.WriteHeader(status)
		return EncodeMsgPack(w, data)
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	return json.NewEncoder(w).Encode(data)
}

// WantsMsgPack reports whether the request asked for MessagePack
func WantsMsgPack(req *http.Request) bool {
	return req.URL.Query().Get(FormatParam) == MsgPack
}

// EncodeMsgPack encodes data as MessagePack using the json struct tags
func EncodeMsgPack(w io.Writer, data any) error {
	enc := msgpack.NewEncoder(w)
	enc.SetCustomStructTag("json")
	return enc.Encode(data)
}
