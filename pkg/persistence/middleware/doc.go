/*
Package middleware provides decorators for ports.LayoutRepository.

  - Locking serialises writes per layout filename, in process and optionally
    across replicas through a ports.DistributedLocker.
  - Metrics records operation counts and latencies in Prometheus.
  - Logging emits one structured record per operation.

Compose them with Chain.
*/
package middleware
