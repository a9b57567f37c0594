// seehuhn.de/go/grade - colour grading transforms and 3D lookup tables
// Copyright (C) 2026  Jochen Voss <voss@seehuhn.de>
//
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// This program is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
// GNU General Public License for more details.
//
// You should have received a copy of the GNU General Public License
// along with this program.  If not, see <https://www.gnu.org/licenses/>.

// Package worker runs LUT generation off the caller's goroutine.
//
// Requests and responses are plain values which can be passed through
// channels or serialised as JSON.  A [Pool] evaluates requests on a fixed
// number of goroutines; a [Client] matches responses to requests by their
// request id.
package worker

import (
	"context"
	"encoding/binary"
	"encoding/json"
	"errors"
	"fmt"
	"math"

	"seehuhn.de/go/grade"
)

// Mode selects how the payload of a [Request] is interpreted.
type Mode string

// These are the supported request modes.
const (
	// ModePipeline treats the payload as a JSON encoded [grade.Pipeline].
	// This is the default.
	ModePipeline Mode = "pipeline"

	// ModeLegacyColor treats the payload as a JSON encoded
	// [grade.LegacyColorCorrection].
	ModeLegacyColor Mode = "legacyColor"
)

var (
	// ErrUnknownMode is reported for requests with an unsupported mode.
	ErrUnknownMode = errors.New("worker: unknown mode")

	// ErrClosed is returned when submitting to a closed pool or client.
	ErrClosed = errors.New("worker: closed")
)

// Request asks for a LUT to be generated.
type Request struct {
	// Key is an opaque value which is copied to the response.
	Key string `json:"key"`

	RequestID  uint64          `json:"requestId"`
	Resolution int             `json:"resolution"`
	Payload    json.RawMessage `json:"payload,omitempty"`
	Mode       Mode            `json:"mode,omitempty"`
}

// Response is the result of a [Request].
// On success, Data holds the LUT samples as little-endian float32 values,
// see [EncodeData].  On failure, Error is set and Data is empty.
type Response struct {
	Key        string `json:"key"`
	RequestID  uint64 `json:"requestId"`
	Resolution int    `json:"resolution,omitempty"`
	Data       []byte `json:"data,omitempty"`
	Error      string `json:"error,omitempty"`
}

// Err returns the failure reported in the response, or nil on success.
func (r *Response) Err() error {
	if r.Error == "" {
		return nil
	}
	return &RequestError{Key: r.Key, RequestID: r.RequestID, Message: r.Error}
}

// LUT decodes the table contained in a successful response.
func (r *Response) LUT() (*grade.LUT3D, error) {
	if err := r.Err(); err != nil {
		return nil, err
	}
	data, err := DecodeData(r.Data)
	if err != nil {
		return nil, err
	}
	lut := &grade.LUT3D{Resolution: r.Resolution, Data: data}
	if err := lut.CheckImported(); err != nil {
		return nil, err
	}
	return lut, nil
}

// RequestError is a failure reported by a worker.
type RequestError struct {
	Key       string
	RequestID uint64
	Message   string
}

func (e *RequestError) Error() string {
	return fmt.Sprintf("worker: request %d (%s): %s", e.RequestID, e.Key, e.Message)
}

// Transform builds the colour transform described by the request.
func (r *Request) Transform() (grade.Transformer, error) {
	switch r.Mode {
	case "", ModePipeline:
		p := &grade.Pipeline{}
		if len(r.Payload) > 0 {
			var err error
			p, err = grade.ParsePipeline(r.Payload)
			if err != nil {
				return nil, fmt.Errorf("decoding pipeline: %w", err)
			}
		}
		return grade.NewTransform(p), nil
	case ModeLegacyColor:
		lc := grade.DefaultLegacyColorCorrection()
		if len(r.Payload) > 0 {
			if err := json.Unmarshal(r.Payload, &lc); err != nil {
				return nil, fmt.Errorf("decoding legacy parameters: %w", err)
			}
		}
		return grade.NewLegacyTransform(lc), nil
	}
	return nil, fmt.Errorf("%w %q", ErrUnknownMode, r.Mode)
}

// Handle processes a single request.  Handle keeps no state between calls
// and may be called concurrently.
func Handle(ctx context.Context, req Request) Response {
	resp := Response{
		Key:       req.Key,
		RequestID: req.RequestID,
	}

	lut, err := generate(ctx, &req)
	if err != nil {
		grade.Logger().Warn("LUT request failed",
			"key", req.Key,
			"requestId", req.RequestID,
			"error", err)
		resp.Error = err.Error()
		return resp
	}

	resp.Resolution = lut.Resolution
	resp.Data = EncodeData(lut.Data)
	return resp
}

func generate(ctx context.Context, req *Request) (*grade.LUT3D, error) {
	t, err := req.Transform()
	if err != nil {
		return nil, err
	}
	return grade.GenerateLUT3DContext(ctx, req.Resolution, t)
}

// EncodeData converts LUT samples to little-endian IEEE 754 single
// precision values.
func EncodeData(data []float32) []byte {
	buf := make([]byte, 4*len(data))
	for i, v := range data {
		binary.LittleEndian.PutUint32(buf[4*i:], math.Float32bits(v))
	}
	return buf
}

// DecodeData is the inverse of [EncodeData].
func DecodeData(buf []byte) ([]float32, error) {
	if len(buf)%4 != 0 {
		return nil, fmt.Errorf("worker: data length %d is not a multiple of 4", len(buf))
	}
	data := make([]float32, len(buf)/4)
	for i := range data {
		data[i] = math.Float32frombits(binary.LittleEndian.Uint32(buf[4*i:]))
	}
	return data, nil
}
