/*
Package observability provides tools for monitoring the rulebook engine.

It turns runner lifecycle events into Prometheus metrics and structured log
records. Both are exposed as domain.LifecycleHooks, so they compose with any
other hooks through LifecycleHooks.Merge.
*/
package observability
