// Cinematch - Movie Recommendation Front-End
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cinematch

/*
Package supervisor runs Cinematch's long-lived goroutines under a suture
supervisor tree.

The tree has two layers:

	cinematch (root)
	├── data-layer
	│   ├── dataset-loader     loads the catalog and similarity matrix once
	│   └── poster-store-gc    value-log GC for the persistent poster store
	└── api-layer
	    └── http-server        chi router, pages, websocket progress stream

A crash in the data layer restarts only that layer, so the HTTP server keeps
answering probes while a failed service backs off. Supervisor events are
logged through sutureslog on top of the zerolog bridge in internal/logging.

Services live in the services subpackage and only depend on small
interfaces, so they are tested with fakes instead of real servers.
*/
package supervisor
