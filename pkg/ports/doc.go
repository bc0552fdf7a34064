/*
Package ports defines the driven ports (interfaces) of the rulebook engine.

These interfaces decouple rule evaluation from where rules and facts come from,
allowing the same engine to run against files, Redis, a Loam repository or
in-memory fixtures.

# Key Interfaces

  - RuleLoader: produces the ordered rule book for one evaluation pass.
  - FactLoader: produces the fact set for one evaluation pass.
  - FactStore: a FactLoader whose fact set can be replaced wholesale.
  - Evaluator: the engine surface consumed by transport adapters (HTTP, MCP).
*/
package ports
