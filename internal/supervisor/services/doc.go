// Cinematch - Movie Recommendation Front-End
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cinematch

// Package services adapts Cinematch components to suture.Service.
//
// Each wrapper implements Serve(ctx) error and String() and depends on a
// narrow interface rather than the concrete component:
//
//   - HTTPServerService: ListenAndServe / Shutdown of *http.Server
//   - DatasetService: one-shot catalog load that hands the dataset over
//   - StoreGCService: periodic value-log GC of the poster store
//
// Returning suture.ErrDoNotRestart marks a service as finished so the
// supervisor does not start it again.
package services
