// Package httphandler provides a queued handler that delivers each record
// to an HTTP endpoint.
//
// Records are sent as URL-encoded form data built from the record's
// attribute map (name, msg, levelname, ...), or as a JSON object when
// EncodingJSON is selected. GET places the payload in the query string,
// POST in the body.
//
// Responses are classified: 2xx succeeds and resets the backoff, 429 and
// 5xx (and transport errors) are retryable and delay the next attempt,
// any other status is permanent and the record is dropped without delay.
package httphandler
