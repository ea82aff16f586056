/*
Package observability turns application state hooks into Prometheus metrics and
structured log lines.

Metrics are registered on a private registry so several editors, or several tests, can
run in one process; Handler exposes it for scraping.
*/
package observability
