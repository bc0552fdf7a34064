/*
Package domain contains the core domain models of the rulebook evaluator.

It defines the logical condition tree, the fact set it is evaluated against, and the
rules and results that flow through the runner. This package is kept pure and free of
external dependencies like I/O or persistence, following Hexagonal Architecture principles.

# Key Entities

  - Node: A closed sum type over Leaf, Any, All and Val condition nodes.
  - FactSet: The immutable set of identifiers considered true for one evaluation pass.
  - Rule: A decoded (condition, payload) pair.
  - Outcome / Report: The per-rule results of a pass, and the pass summary.
*/
package domain
