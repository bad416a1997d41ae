/*
Package ports defines the driven ports (interfaces) for the NovaPay wizard engine.

These interfaces decouple the controller from external implementations, allowing
sessions to live in memory, on disk or in Redis without the core knowing.

# Key Interfaces

  - Controller: The stateless wizard controller operating on domain.State values.
  - StateStore: Responsible for persisting and loading session State.
  - DistributedLocker: Provides distributed locking for handling concurrent session access.
*/
package ports
