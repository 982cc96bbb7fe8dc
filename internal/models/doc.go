// Package models defines domain entities and persistence interfaces for the abx blend client.
//
// The package contains two categories of types:
//
// 1. Data Transfer Objects (DTOs): Lightweight structs mirroring the blend backend's wire shapes
//   - [Track] : Song metadata as returned by playlist generation
//   - [Artist] : Artist search suggestion
//   - [HistoryEntry] : A saved blend with its artists and tracks
//
// 2. Persistent Entities: Database-backed models with full lifecycle management
//   - [ArchivedEntry] : History entries archived to the local database
//
// All persistent entities implement the Model interface providing ID generation, timestamps, validation, and soft delete support.
// The Repository[T] interface defines standard CRUD operations for database access.
//
// [NormalizeEntry] reconciles the heterogeneous record shapes produced by the
// backend and the local cache into the canonical [HistoryEntry] form.
package models
