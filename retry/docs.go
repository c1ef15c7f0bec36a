// Copyright 2024 The Alis Build Platform. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

/*
Package retry runs operations against a remote collaborator and retries them with exponential backoff
when the failure is classified as transient.

Classification is explicit: every error is reduced to a (kind, code) pair by a pure Classifier and the
pair is looked up in the Policy's retryable set. Errors without a structured status code are never
retried. Once the attempts are exhausted the last error is returned wrapped in an ExhaustedError,
whose message and unwrap chain are those of the original error.

The executor sleeps synchronously between attempts and performs no concurrent fan-out.
*/
package retry //import "go.alis.build/gsheets/retry"
