// Package client contains the device-side building blocks below the
// services layer.
//
// # Overview
//
// The package provides:
//  1. Local Store bootstrap (InitDatabase, RunMigrations) wiring an SQLite
//     database, the embedded goose migrations and the media, blob and queue
//     repositories. Store.WithTx binds all three to one transaction.
//  2. A transport-agnostic contract for the upload receiver (see the Client
//     interface): Upload, Delete and Ping.
//  3. A concrete HTTP implementation (see HTTPClient) that posts multipart
//     uploads with a Bearer token and maps responses to sentinel errors.
//
// # Error Handling
//
// Common conditions are exposed as sentinel errors that callers can match with
// errors.Is: ErrUnavailable, ErrUnauthorized and common.ErrUploadRejected.
//
// Concurrency & Contexts
//
// HTTPClient and Store are safe for concurrent use. All operations accept
// context.Context and honor cancellation/timeouts.
package client
