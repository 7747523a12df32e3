// Package apiresp writes the JSON response envelope used by every API
// endpoint.
//
// Success bodies are {"success":true,"data":...,"message":"..."} and
// error bodies are {"success":false,"error":"..."}. The HTTP status
// carries the error kind: 404 for missing documents, 400 for bad input,
// 500 for everything else. Internal error details are never written to
// the client; handlers log them and send a generic message.
package apiresp

import (
	"encoding/json"
	"errors"
	"net/http"

	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

// Envelope is the success response body.
type Envelope struct {
	Success bool   `json:"success"`
	Data    any    `json:"data,omitempty"`
	Message string `json:"message,omitempty"`
}

// ErrorEnvelope is the failure response body.
type ErrorEnvelope struct {
	Success bool   `json:"success"`
	Error   string `json:"error"`
}

// OK writes a 200 with the given data.
func OK(w http.ResponseWriter, data any) {
	writeJSON(w, http.StatusOK, Envelope{Success: true, Data: data})
}

// OKMessage writes a 200 with data and a human-readable message.
func OKMessage(w http.ResponseWriter, data any, message string) {
	writeJSON(w, http.StatusOK, Envelope{Success: true, Data: data, Message: message})
}

// Created writes a 201 with the given data.
func Created(w http.ResponseWriter, data any) {
	writeJSON(w, http.StatusCreated, Envelope{Success: true, Data: data})
}

// BadRequest writes a 400 with the given client-safe message.
func BadRequest(w http.ResponseWriter, message string) {
	writeJSON(w, http.StatusBadRequest, ErrorEnvelope{Error: message})
}

// NotFound writes a 404 with the given client-safe message.
func NotFound(w http.ResponseWriter, message string) {
	writeJSON(w, http.StatusNotFound, ErrorEnvelope{Error: message})
}

// Unauthorized writes a 401.
func Unauthorized(w http.ResponseWriter) {
	writeJSON(w, http.StatusUnauthorized, ErrorEnvelope{Error: "unauthorized"})
}

// Forbidden writes a 403.
func Forbidden(w http.ResponseWriter) {
	writeJSON(w, http.StatusForbidden, ErrorEnvelope{Error: "forbidden"})
}

// TooManyRequests writes a 429 with the given message.
func TooManyRequests(w http.ResponseWriter, message string) {
	writeJSON(w, http.StatusTooManyRequests, ErrorEnvelope{Error: message})
}

// Conflict writes a 409 with the given client-safe message. Used for
// state guards (e.g. deleting an event that still has active shifts),
// not for shift time conflicts, which travel as data in a 200 envelope
// with has_conflicts set.
func Conflict(w http.ResponseWriter, message string) {
	writeJSON(w, http.StatusConflict, ErrorEnvelope{Error: message})
}

// Internal logs err and writes a 500 with a generic message.
func Internal(w http.ResponseWriter, log *zap.Logger, context string, err error) {
	log.Error(context, zap.Error(err))
	writeJSON(w, http.StatusInternalServerError, ErrorEnvelope{Error: "internal server error"})
}

// FromError maps store errors to responses: mongo.ErrNoDocuments becomes
// a 404 with notFoundMsg, anything else a logged 500.
func FromError(w http.ResponseWriter, log *zap.Logger, context string, err error, notFoundMsg string) {
	if errors.Is(err, mongo.ErrNoDocuments) {
		NotFound(w, notFoundMsg)
		return
	}
	Internal(w, log, context, err)
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}
