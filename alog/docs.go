// Copyright 2024 The Alis Build Platform. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package alog is a lightweight logging library inline with the Structured Logging principles:
// https://cloud.google.com/logging/docs/structured-logging
//
// using the LogEntry as
// defined by Google: https://cloud.google.com/logging/docs/reference/v2/rest/v2/LogEntry
//
// A *Logger is constructed by the caller and passed to each component that logs. A nil *Logger
// discards everything.
package alog //import "go.alis.build/gsheets/alog"
