package handler

// APIV1Prefix is the canonical base path for public HTTP API v1.
// Keep a single source of truth to avoid path drift across handlers and tests.
const APIV1Prefix = "/api/v1"

// gamePath is the per-game route prefix shared by the lineup and rotation handlers.
// gin needs the same wildcard name at the same segment across groups.
const gamePath = "/games/:game_id"
