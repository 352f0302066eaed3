// Package users keeps the account registry: one JSON profile per user in a
// flat directory, holding display name, streaming credentials, and sync
// preferences.
package users
