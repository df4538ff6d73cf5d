// Package chat runs grounded conversations over the catalog.
//
// A SessionStore manages sessions and their messages. An Orchestrator
// executes a turn: it embeds the user's prompt, searches the vector index
// for the nearest catalog entries, asks the completion model to answer
// using those entries as grounding, and commits the session update and
// both messages in a single transaction.
//
// Turns on one session are serialized by a per-session lock held from the
// session read through the commit, so no turn overwrites another.
package chat
