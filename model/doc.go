// Package model defines the provider‑agnostic abstractions and concrete
// helpers for interacting with language / reasoning models inside TradeMesh.
//
// Core goals:
//   - Unify streaming + non‑streaming generation behind a single interface
//   - Keep request/response shapes minimal and transport independent
//   - Bound usage per run (Limiter: call budget + request rate)
//   - Facilitate lightweight mocking for tests (MockModel)
//
// Providers (e.g. OpenAI, Anthropic, Google AI) implement the Model
// interface from this package so higher layers (agents, tools) remain
// decoupled from vendor SDKs.
package model
