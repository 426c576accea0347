// Package diagnostic provides the severity-tagged messages the processor
// reports to its host build tool.
//
// Key capabilities:
//   - NOTE / WARNING / ERROR severities with stable codes
//   - Source and annotation locations for element-scoped messages
//   - A Messager sink interface with collecting, logging and tee implementations
//   - Deferred messages that a caller may decide to surface later
//
// Reporting an ERROR never aborts processing; the host decides whether the
// accumulated errors fail the build.
package diagnostic
