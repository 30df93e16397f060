/*
Package project stores named source/test pairs that can be re-run.

Stores:
  - MemoryStore: process memory, lost on restart
  - SQLStore: SQLite (modernc) or PostgreSQL via sqlx

IDs are prefixed ULIDs, so listing by ID descending is newest first.
Seeder loads project manifests (YAML, TOML or JSON) from a directory.
*/
package project
