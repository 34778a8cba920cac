// Package operations provides a transactional operation orchestrator implementing the
// [SAGA pattern](https://microservices.io/patterns/data/saga.html) for multi-step
// in-process work without relying on a global ACID transaction. An ordered set of
// operations, each pairing a forward action with a compensating rollback action
// (following the [Compensating Transaction pattern](https://learn.microsoft.com/en-us/azure/architecture/patterns/compensating-transaction)),
// is executed with per-operation retry, timeout and cancellation handling; if any
// operation fails, every operation that started is compensated and all causes are
// returned as one ordered aggregated failure.
//
// The orchestrator supports pause/resume at well defined checkpoints, conditional
// skipping driven by predicates over a per-run shared context, parallel operation
// groups, and lifecycle notifications through a subscription mechanism.
// Compensating actions should be idempotent-safe: partial execution state is unknown
// to the coordinator, so a rollback may run after an execute that only partially
// completed.
package operations
