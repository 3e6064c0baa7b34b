// Package sockethandler provides a queued handler that ships records to a
// remote collector over TCP or a Unix-domain socket, optionally wrapped in
// TLS.
//
// Each record is encoded with core.EncodeRecord and written as a frame: a
// 4-byte big-endian length followed by the payload. ReadFrame and
// DecodeFrame are the receiving side.
//
// A record that cannot be delivered is dropped. The handler then backs
// off before attempting the next record, and reconnects lazily.
package sockethandler
