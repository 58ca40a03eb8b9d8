/*
Package session implements session access orchestration.

The engine guarantees that exactly one transition is in flight per session;
this package enforces that guarantee for hosts, serializing mutations with
per-session reference-counted locks and, across replicas, an optional
distributed locker.
*/
package session
