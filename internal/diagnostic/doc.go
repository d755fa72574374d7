// Package diagnostic provides structured errors and warnings reported while
// inspecting and resolving errgen directives.
//
// Every diagnostic carries a stable code (e.g. "unknown_key",
// "unknown_field") and, when it comes from source, the position of the
// offending directive or field so the CLI can print file:line:col and the
// vet analyzer can attach it to the right node.
package diagnostic
