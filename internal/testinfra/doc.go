// TasteTrail feedrank - Personalized Review Feed Ranking Service
// Copyright 2026 TasteTrail
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tastetrail/feedrank

// Package testinfra provides container-based test infrastructure for
// integration tests: throwaway Redis and Postgres instances via
// testcontainers, plus Docker availability checks.
//
// Everything here is behind the integration build tag; unit tests never
// touch Docker.
package testinfra
