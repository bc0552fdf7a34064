/*
Package rulebook evaluates declarative boolean rules against a set of known facts.

A rule pairs a condition tree with an opaque payload. The payload is returned
only when the condition holds. Conditions are nested logical trees:

  - a bare string is a leaf, true when the string is a known fact;
  - {"all": [...]} is true when every child holds (an empty list is true);
  - {"any": [...]} is true when at least one child holds (an empty list is false);
  - {"val": "x"} is a keyed leaf with the same meaning as "x".

A single child may be written without the surrounding list: {"all": "a"} means
{"all": ["a"]}. Evaluation is left to right and short-circuits.

# Error Policy

Conditions are decoded by a validating parser before evaluation. A malformed
rule or condition aborts the pass: rules after it are not evaluated and the
partial report is returned together with the error. WithContinueOnError
switches to per-rule isolation.

# Usage

	eng := rulebook.New(rulebook.WithLogger(logger))

	report, err := eng.RunSources(ctx,
		file.NewRuleLoader("rules.json"),
		file.NewFactStore("data.json"),
	)
	if err != nil {
		log.Fatal(err)
	}
	for _, payload := range report.Payloads() {
		fmt.Println(payload)
	}

Rules and facts can also come from memory, Redis (facts) or a Loam directory
(rules); see the pkg/adapters packages.
*/
package rulebook
