/*
Package session implements wizard session management.

The Manager owns every shared wizard state: it serializes operations on one
session with reference-counted local mutexes (plus an optional distributed
lock), persists each transition through a ports.StateStore and runs async
step actions outside the lock so that a second Advance sees the session as
busy instead of queueing behind it.
*/
package session
