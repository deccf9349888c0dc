// Package httputil provides the JSON response helpers shared by kintree's
// HTTP handlers.
//
// # Responses
//
// [WriteJSON] encodes a value with a status code. [WriteError] renders any
// error as
//
//	{"code": "MEMBER_NOT_FOUND", "message": "family member not found: ada"}
//
// with a status derived from its [errors.Code] by [StatusFor]. Errors that
// carry no code are reported as INTERNAL_ERROR without their text, so
// driver messages never reach clients.
//
// # Requests
//
// [DecodeJSON] reads a size-limited JSON body and rejects unknown fields
// and trailing data with INVALID_INPUT.
package httputil
