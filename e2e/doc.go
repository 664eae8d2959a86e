//go:build e2e

// Package e2e provides end-to-end tests for the WorkFlow Pro harness.
//
// These tests are isolated from the standard test suite via build tags.
// They require a Chrome browser (auto-downloaded by Rod if not present)
// and are intended for CI pipelines or explicit local testing.
//
// Running E2E tests:
//
//	go test -tags=e2e ./e2e/...
//
// Running all tests except E2E:
//
//	go test ./...
//
// E2E tests use:
//   - Rod for browser automation (Chrome DevTools Protocol)
//   - the workflowpro-mock server as the application under test
//   - the page objects from pkg/harness/pages
//
// Test isolation:
// Each test starts its own mock server on a random port and opens its own
// isolated browser contexts. Tests can run in parallel.
package e2e
